package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op   string
	args []string
}

type fakeBackend struct {
	checkErr  error
	issues    []api.Issue
	issuesErr error
	branches  []api.Branch
	files     map[string][]api.RepoFile
	filesErr  error
	submitErr error

	calls     []call
	submitted []api.JobRequest
}

func (f *fakeBackend) record(op string, args ...string) {
	f.calls = append(f.calls, call{op: op, args: args})
}

func (f *fakeBackend) CheckRepo(_ context.Context, owner, repo string) error {
	f.record("check-repo", owner, repo)
	return f.checkErr
}

func (f *fakeBackend) Issues(_ context.Context, repo string) ([]api.Issue, error) {
	f.record("issues", repo)
	return f.issues, f.issuesErr
}

func (f *fakeBackend) Branches(_ context.Context, repo string) ([]api.Branch, error) {
	f.record("branches", repo)
	return f.branches, nil
}

func (f *fakeBackend) Files(_ context.Context, branch, repo string) ([]api.RepoFile, error) {
	f.record("files", branch, repo)
	return f.files[branch], f.filesErr
}

func (f *fakeBackend) IndexRepository(_ context.Context, job api.JobRequest) (*api.JobResponse, error) {
	f.record("index-repository", job.RepoName)
	f.submitted = append(f.submitted, job)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &api.JobResponse{Status: "success"}, nil
}

type recordingView struct {
	step         Step
	loading      map[Step]bool
	issues       []api.Issue
	selIssue     *SelectedIssue
	branches     []api.Branch
	selBranch    string
	files        []api.RepoFile
	selFiles     map[string]struct{}
	commands     []CommandRow
	envVars      []EnvVarRow
	next         map[Step]bool
	err          string
	notInstalled string
}

func newRecordingView() *recordingView {
	return &recordingView{loading: map[Step]bool{}, next: map[Step]bool{}}
}

func (v *recordingView) ShowStep(s Step) { v.step = s }
func (v *recordingView) SetLoading(s Step, l bool) { v.loading[s] = l }
func (v *recordingView) SetNextEnabled(s Step, e bool) { v.next[s] = e }
func (v *recordingView) ShowError(msg string) { v.err = msg }
func (v *recordingView) ShowAppNotInstalled(r string) { v.notInstalled = r }

func (v *recordingView) RenderIssues(issues []api.Issue, sel *SelectedIssue) {
	v.issues, v.selIssue = issues, sel
}

func (v *recordingView) RenderBranches(branches []api.Branch, sel string) {
	v.branches, v.selBranch = branches, sel
}

func (v *recordingView) RenderFiles(files []api.RepoFile, sel map[string]struct{}) {
	v.files, v.selFiles = files, sel
}

func (v *recordingView) RenderCommands(cmds []CommandRow, vars []EnvVarRow, _ CommandRow) {
	v.commands, v.envVars = cmds, vars
}

func sampleBackend() *fakeBackend {
	return &fakeBackend{
		issues: []api.Issue{
			{ID: 1, Number: 10, Title: "Login crash", Body: "Crashes on submit"},
			{ID: 2, Number: 11, Title: "Dark mode", Body: "Add a DARK theme toggle"},
		},
		branches: []api.Branch{{Name: "main"}, {Name: "dev"}},
		files: map[string][]api.RepoFile{
			"main": {{Path: "a.go", Type: "file"}, {Path: "b.go", Type: "file"}, {Path: "docs/readme.md", Type: "file"}},
			"dev":  {{Path: "a.go", Type: "file"}, {Path: "c.go", Type: "file"}},
		},
	}
}

// run executes a load synchronously and applies it, following any
// follow-up load the controller asks for.
func run(t *testing.T, c *Controller, fn LoadFunc) {
	t.Helper()
	for fn != nil {
		fn = c.Apply(fn(context.Background()))
	}
}

func started(t *testing.T, b *fakeBackend, v View) *Controller {
	t.Helper()
	c := New(b, v, "octo", "hello-world")
	fn, err := c.Start()
	require.NoError(t, err)
	run(t, c, fn)
	return c
}

// atFiles drives the controller to step 3 with files for branch loaded.
func atFiles(t *testing.T, b *fakeBackend, v View, branch string) *Controller {
	t.Helper()
	c := started(t, b, v)
	require.NoError(t, c.SelectIssue(1))
	fn, err := c.Advance()
	require.NoError(t, err)
	run(t, c, fn)
	require.NoError(t, c.SelectBranch(branch))
	fn, err = c.Advance()
	require.NoError(t, err)
	run(t, c, fn)
	return c
}

func TestStart(t *testing.T) {
	t.Run("checks repo then loads issues", func(t *testing.T) {
		b := sampleBackend()
		v := newRecordingView()
		c := started(t, b, v)

		assert.Equal(t, []call{
			{op: "check-repo", args: []string{"octo", "hello-world"}},
			{op: "issues", args: []string{"hello-world"}},
		}, b.calls)
		assert.Equal(t, StepIssue, v.step)
		assert.Len(t, v.issues, 2)
		assert.False(t, v.next[StepIssue])
		assert.False(t, c.Loading())
	})

	t.Run("repository required", func(t *testing.T) {
		v := newRecordingView()
		c := New(sampleBackend(), v, "octo", "  ")
		fn, err := c.Start()
		require.ErrorIs(t, err, ErrRepoRequired)
		assert.Nil(t, fn)
		assert.Equal(t, "Repository name is required", v.err)
	})

	t.Run("app not installed", func(t *testing.T) {
		b := sampleBackend()
		b.checkErr = api.ErrAppNotInstalled
		v := newRecordingView()
		c := started(t, b, v)

		assert.Equal(t, "hello-world", v.notInstalled)
		assert.Empty(t, v.err)
		assert.Empty(t, c.State().Issues)
		assert.Len(t, b.calls, 1, "issues must not be fetched")
	})

	t.Run("check failure shows banner", func(t *testing.T) {
		b := sampleBackend()
		b.checkErr = &api.StatusError{Op: "check repository", Code: 500}
		v := newRecordingView()
		started(t, b, v)

		assert.Contains(t, v.err, "failed to verify repository status")
		assert.Empty(t, v.notInstalled)
	})
}

func TestToggleFileParity(t *testing.T) {
	tests := []struct {
		name    string
		toggles []string
		want    []string
	}{
		{"single", []string{"a.go"}, []string{"a.go"}},
		{"twice", []string{"a.go", "a.go"}, nil},
		{"three times", []string{"a.go", "a.go", "a.go"}, []string{"a.go"}},
		{"interleaved", []string{"a.go", "b.go", "a.go", "docs/readme.md", "b.go", "b.go"}, []string{"b.go", "docs/readme.md"}},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := atFiles(t, sampleBackend(), nil, "main")
			for _, p := range tt.toggles {
				require.NoError(t, c.ToggleFile(p))
			}

			var got []string
			for _, f := range []string{"a.go", "b.go", "docs/readme.md"} {
				if c.State().FileSelected(f) {
					got = append(got, f)
				}
			}
			assert.Equal(t, tt.want, got)
			assert.Len(t, c.State().SelectedFiles, len(tt.want))
		})
	}
}

func TestToggleFile_UnknownPath(t *testing.T) {
	c := atFiles(t, sampleBackend(), nil, "main")
	require.ErrorIs(t, c.ToggleFile("c.go"), ErrUnknownFile)
	assert.Empty(t, c.State().SelectedFiles)
}

func TestAdvance_Guards(t *testing.T) {
	t.Run("step 1 needs an issue", func(t *testing.T) {
		b := sampleBackend()
		c := started(t, b, nil)

		for range 3 {
			fn, err := c.Advance()
			require.ErrorIs(t, err, ErrStepIncomplete)
			assert.Nil(t, fn)
			assert.Equal(t, StepIssue, c.Step())
		}

		c.SetManualIssue("title only", "   ")
		_, err := c.Advance()
		require.ErrorIs(t, err, ErrStepIncomplete)
	})

	t.Run("step 2 needs a branch", func(t *testing.T) {
		c := started(t, sampleBackend(), nil)
		require.NoError(t, c.SelectIssue(2))
		fn, err := c.Advance()
		require.NoError(t, err)
		run(t, c, fn)

		_, err = c.Advance()
		require.ErrorIs(t, err, ErrStepIncomplete)
		assert.Equal(t, StepBranch, c.Step())
	})

	t.Run("step 3 needs a file", func(t *testing.T) {
		v := newRecordingView()
		c := atFiles(t, sampleBackend(), v, "main")
		_, err := c.Advance()
		require.ErrorIs(t, err, ErrStepIncomplete)
		assert.False(t, v.next[StepFiles])

		require.NoError(t, c.ToggleFile("a.go"))
		assert.True(t, v.next[StepFiles])
		fn, err := c.Advance()
		require.NoError(t, err)
		assert.Nil(t, fn, "commands step loads nothing")
		assert.Equal(t, StepCommands, c.Step())

		_, err = c.Advance()
		require.ErrorIs(t, err, ErrNoNextStep)
	})
}

func TestSetManualIssue(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  *SelectedIssue
	}{
		{"empty title", "", "x", nil},
		{"empty body", "x", "", nil},
		{"whitespace", "  ", "\t", nil},
		{"both set", "a", "b", &SelectedIssue{Title: "a", Body: "b", Manual: true}},
		{"trimmed", " a ", "\nb\n", &SelectedIssue{Title: "a", Body: "b", Manual: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newRecordingView()
			c := started(t, sampleBackend(), v)
			c.SetManualIssue(tt.title, tt.body)

			assert.Equal(t, tt.want, c.State().SelectedIssue)
			assert.Equal(t, tt.want != nil, v.next[StepIssue])
		})
	}
}

func TestSetManualIssue_ClearsPreviousSelection(t *testing.T) {
	c := started(t, sampleBackend(), nil)
	c.SetManualIssue("a", "b")
	require.NotNil(t, c.State().SelectedIssue)

	c.SetManualIssue("a", "")
	assert.Nil(t, c.State().SelectedIssue)
}

func TestSetIssueMode_KeepsEachChoice(t *testing.T) {
	c := started(t, sampleBackend(), nil)
	require.NoError(t, c.SelectIssue(2))

	c.SetIssueMode(IssueManual)
	assert.Nil(t, c.State().SelectedIssue)
	c.SetManualIssue("Manual", "Body")

	c.SetIssueMode(IssueExisting)
	require.NotNil(t, c.State().SelectedIssue)
	assert.Equal(t, int64(2), c.State().SelectedIssue.Issue.ID)

	c.SetIssueMode(IssueManual)
	assert.Equal(t, &SelectedIssue{Title: "Manual", Body: "Body", Manual: true}, c.State().SelectedIssue)
	title, body := c.ManualDraft()
	assert.Equal(t, "Manual", title)
	assert.Equal(t, "Body", body)
}

func TestSetIssueMode_DropsIssueGoneAfterReload(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := started(t, b, v)
	require.NoError(t, c.SelectIssue(2))

	c.SetIssueMode(IssueManual)
	b.issues = b.issues[:1]
	run(t, c, c.Reload())
	require.Len(t, c.State().Issues, 1)

	c.SetIssueMode(IssueExisting)
	assert.Nil(t, c.State().SelectedIssue)
	assert.False(t, v.next[StepIssue])
	_, err := c.Advance()
	require.ErrorIs(t, err, ErrStepIncomplete)
}

func TestReload_RefreshesSelectedIssue(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := started(t, b, v)
	require.NoError(t, c.SelectIssue(2))

	b.issues = []api.Issue{
		{ID: 1, Number: 10, Title: "Login crash", Body: "Crashes on submit"},
		{ID: 2, Number: 11, Title: "Dark mode v2", Body: "Add a DARK theme toggle"},
	}
	run(t, c, c.Reload())
	require.NotNil(t, c.State().SelectedIssue)
	assert.Equal(t, "Dark mode v2", c.State().SelectedIssue.Issue.Title)

	b.issues = b.issues[:1]
	run(t, c, c.Reload())
	assert.Nil(t, c.State().SelectedIssue)
	assert.False(t, v.next[StepIssue])
}

func TestSelectIssue_Unknown(t *testing.T) {
	c := started(t, sampleBackend(), nil)
	require.ErrorIs(t, c.SelectIssue(99), ErrUnknownIssue)
	assert.Nil(t, c.State().SelectedIssue)
}

func TestFilterIssues(t *testing.T) {
	v := newRecordingView()
	c := started(t, sampleBackend(), v)
	require.NoError(t, c.SelectIssue(1))
	before := append([]api.Issue(nil), c.State().Issues...)

	tests := []struct {
		term string
		want []int64
	}{
		{"crash", []int64{1}},
		{"CRASH", []int64{1}},
		{"dark", []int64{2}},
		{"theme", []int64{2}},
		{"", []int64{1, 2}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("term %q", tt.term), func(t *testing.T) {
			got := c.FilterIssues(tt.term)
			var ids []int64
			for _, is := range got {
				ids = append(ids, is.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, got, v.issues)
		})
	}

	assert.Equal(t, before, c.State().Issues)
	require.NotNil(t, c.State().SelectedIssue)
	assert.Equal(t, int64(1), c.State().SelectedIssue.Issue.ID)
}

func TestFilterFiles(t *testing.T) {
	c := atFiles(t, sampleBackend(), nil, "main")
	require.NoError(t, c.ToggleFile("a.go"))

	got := c.FilterFiles("DOCS")
	require.Len(t, got, 1)
	assert.Equal(t, "docs/readme.md", got[0].Path)
	assert.Len(t, c.State().Files, 3)
	assert.True(t, c.State().FileSelected("a.go"))
	assert.Equal(t, "DOCS", c.FileFilter())
}

func TestRemoveCommand_Renumbers(t *testing.T) {
	v := newRecordingView()
	c := New(sampleBackend(), v, "octo", "repo")
	c.AddCommand()
	c.AddCommand()
	require.NoError(t, c.SetCommand(0, "make", "first"))
	require.NoError(t, c.SetCommand(1, "make test", "second"))
	require.NoError(t, c.SetCommand(2, "make lint", "third"))

	require.NoError(t, c.RemoveCommand(1))

	require.Len(t, v.commands, 2)
	var labels []string
	for i := range v.commands {
		labels = append(labels, CommandLabel(i))
	}
	assert.Equal(t, []string{"Command 1", "Command 2"}, labels)
	assert.Equal(t, "make", v.commands[0].Command)
	assert.Equal(t, "make lint", v.commands[1].Command)
}

func TestRemoveCommand_Bounds(t *testing.T) {
	c := New(sampleBackend(), nil, "octo", "repo")
	require.ErrorIs(t, c.RemoveCommand(0), ErrLastCommand)
	require.ErrorIs(t, c.RemoveCommand(5), ErrRowIndex)
	require.ErrorIs(t, c.SetCommand(-1, "x", ""), ErrRowIndex)
	assert.Len(t, c.State().Commands, 1)
}

func TestEnvVars_RenumberAndRemoveAll(t *testing.T) {
	v := newRecordingView()
	c := New(sampleBackend(), v, "octo", "repo")
	for range 3 {
		c.AddEnvVar()
	}
	require.NoError(t, c.SetEnvVar(2, "C", "3"))
	require.NoError(t, c.RemoveEnvVar(0))
	require.NoError(t, c.RemoveEnvVar(0))

	require.Len(t, v.envVars, 1)
	assert.Equal(t, "C", v.envVars[0].Key)
	assert.Equal(t, "Environment Variable 1", EnvVarLabel(0))

	require.NoError(t, c.RemoveEnvVar(0))
	assert.Empty(t, c.State().EnvVars)
	require.ErrorIs(t, c.RemoveEnvVar(0), ErrRowIndex)
}

func TestCollect(t *testing.T) {
	c := New(sampleBackend(), nil, "octo", "repo")
	c.AddCommand()
	c.AddCommand()
	require.NoError(t, c.SetCommand(0, "  go build ./...  ", " build "))
	require.NoError(t, c.SetCommand(1, "   ", "ignored"))
	require.NoError(t, c.SetCommand(2, "go test ./...", ""))

	c.AddEnvVar()
	c.AddEnvVar()
	c.AddEnvVar()
	require.NoError(t, c.SetEnvVar(0, "GOFLAGS", "-mod=mod"))
	require.NoError(t, c.SetEnvVar(1, "", "orphan"))
	require.NoError(t, c.SetEnvVar(2, " CGO_ENABLED ", ""))

	assert.Equal(t, []api.Command{
		{Command: "go build ./...", Description: "build"},
		{Command: "go test ./..."},
	}, c.CollectCommands())
	assert.Equal(t, []api.EnvVar{
		{Key: "GOFLAGS", Value: "-mod=mod"},
		{Key: "CGO_ENABLED", Value: ""},
	}, c.CollectEnvVars())

	assert.Nil(t, c.CollectInstallCommand())
	c.SetInstallCommand(" go mod download ", "deps")
	assert.Equal(t, &api.Command{Command: "go mod download", Description: "deps"}, c.CollectInstallCommand())
}

func TestCollect_EmptyIsNotNil(t *testing.T) {
	c := New(sampleBackend(), nil, "octo", "repo")
	assert.NotNil(t, c.CollectCommands())
	assert.Empty(t, c.CollectCommands())
	assert.NotNil(t, c.CollectEnvVars())
}

func TestEndToEnd_IssueBranchFiles(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := started(t, b, v)
	b.calls = nil

	require.NoError(t, c.SelectIssue(2))
	fn, err := c.Advance()
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, StepBranch, c.Step())
	assert.True(t, c.Loading())
	assert.True(t, v.loading[StepBranch])

	run(t, c, fn)
	assert.Equal(t, []call{{op: "branches", args: []string{"hello-world"}}}, b.calls)
	assert.Equal(t, []api.Branch{{Name: "main"}, {Name: "dev"}}, v.branches)
	assert.False(t, v.loading[StepBranch])

	b.calls = nil
	require.NoError(t, c.SelectBranch("main"))
	fn, err = c.Advance()
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, StepFiles, c.Step())

	run(t, c, fn)
	assert.Equal(t, []call{{op: "files", args: []string{"main", "hello-world"}}}, b.calls)
	assert.Len(t, v.files, 3)
}

func TestRetreat_PreservesSelections(t *testing.T) {
	v := newRecordingView()
	c := atFiles(t, sampleBackend(), v, "main")
	require.NoError(t, c.ToggleFile("b.go"))

	c.Retreat()
	assert.Equal(t, StepBranch, c.Step())
	assert.Equal(t, "main", v.selBranch)
	assert.True(t, v.next[StepBranch])

	c.Retreat()
	assert.Equal(t, StepIssue, c.Step())
	require.NotNil(t, v.selIssue)
	assert.Equal(t, int64(1), v.selIssue.Issue.ID)

	c.Retreat()
	assert.Equal(t, StepIssue, c.Step())

	st := c.State()
	assert.Equal(t, "main", st.SelectedBranch)
	assert.True(t, st.FileSelected("b.go"))
}

func TestBranchChange_PrunesFiles(t *testing.T) {
	c := atFiles(t, sampleBackend(), nil, "main")
	require.NoError(t, c.ToggleFile("a.go"))
	require.NoError(t, c.ToggleFile("b.go"))

	c.Retreat()
	require.NoError(t, c.SelectBranch("dev"))
	fn, err := c.Advance()
	require.NoError(t, err)
	run(t, c, fn)

	st := c.State()
	assert.Equal(t, "dev", st.FilesBranch)
	assert.True(t, st.FileSelected("a.go"))
	assert.False(t, st.FileSelected("b.go"), "b.go does not exist on dev")
}

func TestLoad_NotReentrant(t *testing.T) {
	b := sampleBackend()
	c := New(b, nil, "octo", "hello-world")
	first, err := c.Start()
	require.NoError(t, err)
	require.NotNil(t, first)

	assert.Nil(t, c.Reload(), "no second load while one is in flight")
	assert.Nil(t, c.Reload())

	follow := c.Apply(first(context.Background()))
	require.NotNil(t, follow, "a load requested during flight is issued afterwards")
	run(t, c, follow)
	assert.False(t, c.Loading())
}

func TestLoad_StaleFilesDiscarded(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := started(t, b, v)
	require.NoError(t, c.SelectIssue(1))
	fn, err := c.Advance()
	require.NoError(t, err)
	run(t, c, fn)

	require.NoError(t, c.SelectBranch("main"))
	mainLoad, err := c.Advance()
	require.NoError(t, err)
	require.NotNil(t, mainLoad)

	// Switch branch while the main load is still in flight.
	c.Retreat()
	require.NoError(t, c.SelectBranch("dev"))
	devLoad, err := c.Advance()
	require.NoError(t, err)
	assert.Nil(t, devLoad)

	follow := c.Apply(mainLoad(context.Background()))
	assert.Empty(t, c.State().Files, "files for main must not be applied")
	require.NotNil(t, follow)

	run(t, c, follow)
	assert.Equal(t, "dev", c.State().FilesBranch)
	assert.Equal(t, []api.RepoFile{{Path: "a.go", Type: "file"}, {Path: "c.go", Type: "file"}}, v.files)
}

func TestLoad_StaleFileErrorDiscarded(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := started(t, b, v)
	require.NoError(t, c.SelectIssue(1))
	fn, err := c.Advance()
	require.NoError(t, err)
	run(t, c, fn)

	require.NoError(t, c.SelectBranch("dev"))
	devLoad, err := c.Advance()
	require.NoError(t, err)
	require.NotNil(t, devLoad)

	c.Retreat()
	require.NoError(t, c.SelectBranch("main"))
	mainLoad, err := c.Advance()
	require.NoError(t, err)
	assert.Nil(t, mainLoad)

	b.filesErr = errors.New("boom")
	follow := c.Apply(devLoad(context.Background()))
	assert.Empty(t, v.err, "failure for a branch no longer selected is not shown")
	require.NotNil(t, follow)

	b.filesErr = nil
	run(t, c, follow)
	assert.Empty(t, v.err)
	assert.Equal(t, StepFiles, c.State().Step)
	assert.Equal(t, "main", c.State().FilesBranch)
	assert.Len(t, v.files, 3)
}

func TestApply_SuccessClearsBanner(t *testing.T) {
	v := newRecordingView()
	c := atFiles(t, sampleBackend(), v, "main")

	c.Apply(Loaded{Step: StepFiles, Branch: "main", Err: errors.New("timeout")})
	require.Contains(t, v.err, "timeout")

	c.Apply(Loaded{Step: StepFiles, Branch: "main", Files: []api.RepoFile{{Path: "a.go", Type: "file"}}})
	assert.Empty(t, v.err)
	assert.Equal(t, []api.RepoFile{{Path: "a.go", Type: "file"}}, v.files)
}

func TestLoadError_KeepsSelectionsAndAllowsRetreat(t *testing.T) {
	b := sampleBackend()
	b.filesErr = errors.New("connection reset")
	v := newRecordingView()
	c := atFiles(t, b, v, "main")

	assert.Contains(t, v.err, "failed to load files")
	assert.Contains(t, v.err, "connection reset")
	assert.False(t, c.Loading())

	c.Retreat()
	assert.Empty(t, v.err, "banner cleared on navigation")
	st := c.State()
	assert.Equal(t, "main", st.SelectedBranch)
	require.NotNil(t, st.SelectedIssue)

	b.filesErr = nil
	fn, err := c.Advance()
	require.NoError(t, err)
	run(t, c, fn)
	assert.Len(t, v.files, 3)
}

func TestReload_RetriesCurrentStep(t *testing.T) {
	b := sampleBackend()
	b.issuesErr = errors.New("timeout")
	v := newRecordingView()
	c := started(t, b, v)
	require.Contains(t, v.err, "failed to load issues")

	b.issuesErr = nil
	run(t, c, c.Reload())
	assert.Empty(t, v.err)
	assert.Len(t, c.State().Issues, 2)
}

func TestSubmit(t *testing.T) {
	b := sampleBackend()
	v := newRecordingView()
	c := atFiles(t, b, v, "main")

	_, err := c.Submit()
	require.ErrorIs(t, err, ErrNotAtLastStep)

	require.NoError(t, c.ToggleFile("b.go"))
	require.NoError(t, c.ToggleFile("a.go"))
	_, err = c.Advance()
	require.NoError(t, err)
	require.NoError(t, c.SetCommand(0, "go test ./...", "tests"))
	c.AddEnvVar()
	require.NoError(t, c.SetEnvVar(0, "CI", "1"))

	submit, err := c.Submit()
	require.NoError(t, err)
	assert.True(t, c.Submitting())
	assert.False(t, v.next[StepCommands])

	_, err = c.Submit()
	require.ErrorIs(t, err, ErrSubmitting)

	res := submit(context.Background())
	require.NoError(t, c.Finish(res))
	assert.False(t, c.Submitting())
	assert.True(t, v.next[StepCommands])

	require.Len(t, b.submitted, 1)
	job := b.submitted[0]
	assert.Equal(t, "hello-world", job.RepoName)
	assert.Equal(t, "main", job.Branch)
	assert.Equal(t, []string{"a.go", "b.go"}, job.Files)
	assert.Equal(t, []api.Command{{Command: "go test ./...", Description: "tests"}}, job.Commands)
	assert.Equal(t, []api.EnvVar{{Key: "CI", Value: "1"}}, job.EnvVars)
	assert.Nil(t, job.InstallCommand)
	require.NotNil(t, job.Issue)
	assert.Equal(t, int64(1), job.Issue.ID)
	assert.False(t, job.Issue.Manual)
}

func TestSubmit_FailureIsReported(t *testing.T) {
	b := sampleBackend()
	b.submitErr = &api.StatusError{Op: "create job", Code: 502}
	c := atFiles(t, b, nil, "main")
	require.NoError(t, c.ToggleFile("a.go"))
	_, err := c.Advance()
	require.NoError(t, err)

	submit, err := c.Submit()
	require.NoError(t, err)
	res := submit(context.Background())

	err = c.Finish(res)
	var serr *api.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 502, serr.Code)
	assert.Equal(t, "hello-world", res.Request.RepoName)
}

func TestSelectedIssue_JobIssue(t *testing.T) {
	var none *SelectedIssue
	assert.Nil(t, none.JobIssue())

	manual := &SelectedIssue{Title: "t", Body: "b", Manual: true}
	assert.Equal(t, &api.JobIssue{Title: "t", Body: "b", Manual: true}, manual.JobIssue())

	labels := []api.Label{{Name: "bug", Color: "d73a4a"}}
	fetched := &SelectedIssue{Issue: &api.Issue{ID: 5, Number: 3, Title: "x", Body: "y", Labels: labels}}
	assert.Equal(t, &api.JobIssue{ID: 5, Number: 3, Title: "x", Body: "y", Labels: labels}, fetched.JobIssue())
}

func TestStep_Titles(t *testing.T) {
	assert.Equal(t, "Select Issue", StepIssue.Title())
	assert.Equal(t, "Configure Commands", StepCommands.Title())
	assert.Equal(t, "files", StepFiles.String())
	assert.Equal(t, "unknown", Step(9).String())
}
