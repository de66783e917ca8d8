// Package wizard holds the job-creation workflow: four linear steps (issue,
// branch, files, commands) whose selections are collected into a job
// submitted to the backend.
//
// The Controller is not safe for concurrent use. It is owned by a single
// event loop; backend calls are handed back to the caller as LoadFunc and
// SubmitFunc values to run elsewhere, and their results are fed back through
// Apply and Finish on the owning goroutine.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
)

var (
	// ErrStepIncomplete is returned by Advance when the current step's
	// selection does not satisfy its guard.
	ErrStepIncomplete = errors.New("step is incomplete")
	// ErrRepoRequired is returned by Start when no repository was given.
	ErrRepoRequired = errors.New("repository name is required")
	// ErrOwnerRequired is returned by Start without a signed-in owner.
	ErrOwnerRequired = errors.New("repository owner is required, sign in first")
	// ErrNotAtLastStep is returned by Submit outside the commands step.
	ErrNotAtLastStep = errors.New("job can only be submitted from the commands step")
	// ErrNoNextStep is returned by Advance from the commands step.
	ErrNoNextStep = errors.New("already at the last step")
	// ErrSubmitting is returned by Submit while a submission is in flight.
	ErrSubmitting = errors.New("job submission already in progress")
	// ErrUnknownIssue, ErrUnknownBranch and ErrUnknownFile reject selections
	// absent from the last fetched lists.
	ErrUnknownIssue  = errors.New("issue not found")
	ErrUnknownBranch = errors.New("branch not found")
	ErrUnknownFile   = errors.New("file not found")
	// ErrRowIndex is returned for an out-of-range command or variable row.
	ErrRowIndex = errors.New("row index out of range")
	// ErrLastCommand is returned when removing the only command row.
	ErrLastCommand = errors.New("at least one command row is required")
)

// Backend is the subset of the API client the wizard calls.
type Backend interface {
	CheckRepo(ctx context.Context, owner, repo string) error
	Issues(ctx context.Context, repo string) ([]api.Issue, error)
	Branches(ctx context.Context, repo string) ([]api.Branch, error)
	Files(ctx context.Context, branch, repo string) ([]api.RepoFile, error)
	IndexRepository(ctx context.Context, job api.JobRequest) (*api.JobResponse, error)
}

// View is the presentation the Controller drives. The slices and maps it is
// handed are copies and may be kept.
type View interface {
	ShowStep(step Step)
	SetLoading(step Step, loading bool)
	RenderIssues(issues []api.Issue, selected *SelectedIssue)
	RenderBranches(branches []api.Branch, selected string)
	RenderFiles(files []api.RepoFile, selected map[string]struct{})
	RenderCommands(commands []CommandRow, envVars []EnvVarRow, install CommandRow)
	SetNextEnabled(step Step, enabled bool)
	// ShowError displays a banner. An empty message clears it.
	ShowError(msg string)
	ShowAppNotInstalled(repo string)
}

// Loaded is the outcome of a LoadFunc.
type Loaded struct {
	Step     Step
	Branch   string // Branch the files were fetched for
	Issues   []api.Issue
	Branches []api.Branch
	Files    []api.RepoFile
	Err      error
}

// LoadFunc fetches the data of one step. It only touches the backend, so it
// may run on any goroutine.
type LoadFunc func(ctx context.Context) Loaded

// Submitted is the outcome of a SubmitFunc.
type Submitted struct {
	Request  api.JobRequest
	Response *api.JobResponse
	Err      error
}

// SubmitFunc posts the job.
type SubmitFunc func(ctx context.Context) Submitted

// Controller owns the WorkflowState of one wizard run.
type Controller struct {
	backend Backend
	view    View
	state   WorkflowState

	loading    bool
	pending    bool // a load was requested while another was in flight
	submitting bool

	picked      *api.Issue // existing-issue choice kept across mode switches
	manualTitle string
	manualBody  string

	issueFilter string
	fileFilter  string
}

// New creates a controller for owner/repo. A nil view discards rendering.
func New(backend Backend, view View, owner, repo string) *Controller {
	if view == nil {
		view = nopView{}
	}
	return &Controller{
		backend: backend,
		view:    view,
		state:   newState(strings.TrimSpace(owner), strings.TrimSpace(repo)),
	}
}

// SetView replaces the view and redraws the current step on it.
func (c *Controller) SetView(v View) {
	if v == nil {
		v = nopView{}
	}
	c.view = v
	c.show()
}

// State returns the workflow state. Callers must treat it as read-only.
func (c *Controller) State() WorkflowState { return c.state }

// Step returns the current step.
func (c *Controller) Step() Step { return c.state.Step }

// Loading reports whether a step load is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Submitting reports whether a job submission is in flight.
func (c *Controller) Submitting() bool { return c.submitting }

// ManualDraft returns the manual issue inputs as typed.
func (c *Controller) ManualDraft() (title, body string) { return c.manualTitle, c.manualBody }

// IssueFilter returns the active issue search term.
func (c *Controller) IssueFilter() string { return c.issueFilter }

// FileFilter returns the active file search term.
func (c *Controller) FileFilter() string { return c.fileFilter }

// Start shows step 1 and returns its load: verify the GitHub App can access
// the repository, then fetch its issues.
func (c *Controller) Start() (LoadFunc, error) {
	if c.state.Repo == "" {
		c.view.ShowError("Repository name is required")
		return nil, ErrRepoRequired
	}
	if c.state.Owner == "" {
		c.view.ShowError("Sign in before creating a job")
		return nil, ErrOwnerRequired
	}
	logger.Info("Starting job wizard for %s/%s", c.state.Owner, c.state.Repo)
	c.show()
	return c.load(), nil
}

// CanAdvance reports whether the guard of the current step holds.
func (c *Controller) CanAdvance() bool {
	return c.guard(c.state.Step)
}

func (c *Controller) guard(step Step) bool {
	switch step {
	case StepIssue:
		return c.state.SelectedIssue != nil
	case StepBranch:
		return c.state.SelectedBranch != ""
	case StepFiles:
		return len(c.state.SelectedFiles) > 0 && c.state.FilesBranch == c.state.SelectedBranch
	case StepCommands:
		return !c.submitting
	default:
		return false
	}
}

// Advance moves to the next step when the current step's guard holds and
// returns the load for the step entered, nil when it needs none or one is
// already in flight.
func (c *Controller) Advance() (LoadFunc, error) {
	if c.state.Step >= StepCommands {
		return nil, ErrNoNextStep
	}
	if !c.guard(c.state.Step) {
		return nil, ErrStepIncomplete
	}

	c.state.Step++
	logger.Debug("Wizard advanced to step %d (%s)", c.state.Step, c.state.Step)
	c.view.ShowError("")
	c.show()
	return c.load(), nil
}

// Retreat moves to the previous step. Selections are kept.
func (c *Controller) Retreat() {
	if c.state.Step <= StepIssue {
		return
	}
	c.state.Step--
	logger.Debug("Wizard retreated to step %d (%s)", c.state.Step, c.state.Step)
	c.view.ShowError("")
	c.show()
}

// Reload re-issues the current step's load. Failed loads are never retried
// automatically.
func (c *Controller) Reload() LoadFunc {
	c.view.ShowError("")
	return c.load()
}

func (c *Controller) load() LoadFunc {
	step := c.state.Step
	if step == StepCommands {
		return nil
	}
	if c.loading {
		c.pending = true
		return nil
	}

	b := c.backend
	owner, repo, branch := c.state.Owner, c.state.Repo, c.state.SelectedBranch

	var fn LoadFunc
	switch step {
	case StepIssue:
		fn = func(ctx context.Context) Loaded {
			if err := b.CheckRepo(ctx, owner, repo); err != nil {
				if errors.Is(err, api.ErrAppNotInstalled) {
					return Loaded{Step: step, Err: err}
				}
				return Loaded{Step: step, Err: fmt.Errorf("failed to verify repository status: %w", err)}
			}
			issues, err := b.Issues(ctx, repo)
			if err != nil {
				return Loaded{Step: step, Err: fmt.Errorf("failed to load issues: %w", err)}
			}
			return Loaded{Step: step, Issues: issues}
		}
	case StepBranch:
		fn = func(ctx context.Context) Loaded {
			branches, err := b.Branches(ctx, repo)
			if err != nil {
				return Loaded{Step: step, Err: fmt.Errorf("failed to load branches: %w", err)}
			}
			return Loaded{Step: step, Branches: branches}
		}
	case StepFiles:
		fn = func(ctx context.Context) Loaded {
			files, err := b.Files(ctx, branch, repo)
			if err != nil {
				return Loaded{Step: step, Branch: branch, Err: fmt.Errorf("failed to load files: %w", err)}
			}
			return Loaded{Step: step, Branch: branch, Files: files}
		}
	default:
		return nil
	}

	c.loading = true
	c.view.SetLoading(step, true)
	return fn
}

// Apply stores the result of a load and redraws. It returns a follow-up
// load when the step changed while the first was in flight.
func (c *Controller) Apply(l Loaded) LoadFunc {
	c.loading = false
	c.view.SetLoading(l.Step, false)

	current := l.Step == c.state.Step
	switch {
	case l.Step == StepFiles && l.Branch != c.state.SelectedBranch:
		logger.Debug("Discarding files for %q, branch is now %q", l.Branch, c.state.SelectedBranch)

	case l.Err != nil:
		logger.Warn("Loading %s for %s failed: %v", l.Step, c.state.Repo, l.Err)
		if current {
			if errors.Is(l.Err, api.ErrAppNotInstalled) {
				c.view.ShowAppNotInstalled(c.state.Repo)
			} else {
				c.view.ShowError(l.Err.Error())
			}
		}

	case l.Step == StepIssue:
		c.state.Issues = l.Issues
		c.refreshPicked()
		if current {
			c.view.ShowError("")
			c.renderIssues()
		}

	case l.Step == StepBranch:
		c.state.Branches = l.Branches
		if current {
			c.view.ShowError("")
			c.renderBranches()
		}

	case l.Step == StepFiles:
		c.state.Files = l.Files
		c.state.FilesBranch = l.Branch
		c.pruneFiles()
		if current {
			c.view.ShowError("")
			c.renderFiles()
		}
	}

	c.revalidate()

	if c.pending {
		c.pending = false
		return c.load()
	}
	return nil
}

// SelectIssue picks a fetched issue by id.
func (c *Controller) SelectIssue(id int64) error {
	idx := slices.IndexFunc(c.state.Issues, func(is api.Issue) bool { return is.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownIssue, id)
	}
	issue := c.state.Issues[idx]
	c.picked = &issue
	c.state.IssueMode = IssueExisting
	c.state.SelectedIssue = &SelectedIssue{Issue: &issue}
	c.renderIssues()
	c.revalidate()
	return nil
}

// SetIssueMode switches between a fetched and a manually written issue.
// Each mode keeps its own pending choice.
func (c *Controller) SetIssueMode(mode IssueMode) {
	c.state.IssueMode = mode
	if mode == IssueManual {
		c.applyManual()
	} else {
		c.state.SelectedIssue = nil
		c.refreshPicked()
	}
	c.renderIssues()
	c.revalidate()
}

// refreshPicked re-resolves the remembered issue against the last fetched
// list, dropping it when the issue is gone.
func (c *Controller) refreshPicked() {
	if c.picked == nil {
		return
	}
	idx := slices.IndexFunc(c.state.Issues, func(is api.Issue) bool { return is.ID == c.picked.ID })
	if idx < 0 {
		logger.Debug("Issue %d no longer listed, clearing choice", c.picked.ID)
		c.picked = nil
	} else {
		issue := c.state.Issues[idx]
		c.picked = &issue
	}
	if c.state.IssueMode != IssueExisting {
		return
	}
	if c.picked == nil {
		c.state.SelectedIssue = nil
	} else {
		c.state.SelectedIssue = &SelectedIssue{Issue: c.picked}
	}
}

// SetManualIssue records the manual inputs. The issue is selected only when
// both title and body are non-blank; otherwise the selection is cleared.
func (c *Controller) SetManualIssue(title, body string) {
	c.manualTitle, c.manualBody = title, body
	c.state.IssueMode = IssueManual
	c.applyManual()
	c.revalidate()
}

func (c *Controller) applyManual() {
	title := strings.TrimSpace(c.manualTitle)
	body := strings.TrimSpace(c.manualBody)
	if title == "" || body == "" {
		c.state.SelectedIssue = nil
		return
	}
	c.state.SelectedIssue = &SelectedIssue{Title: title, Body: body, Manual: true}
}

// FilterIssues renders and returns the fetched issues whose title or body
// contains term, ignoring case. The fetched list is left untouched.
func (c *Controller) FilterIssues(term string) []api.Issue {
	c.issueFilter = term
	return c.renderIssues()
}

// FilterFiles renders and returns the fetched files whose path contains
// term, ignoring case.
func (c *Controller) FilterFiles(term string) []api.RepoFile {
	c.fileFilter = term
	return c.renderFiles()
}

// SelectBranch picks a fetched branch by name.
func (c *Controller) SelectBranch(name string) error {
	if !slices.ContainsFunc(c.state.Branches, func(b api.Branch) bool { return b.Name == name }) {
		return fmt.Errorf("%w: %s", ErrUnknownBranch, name)
	}
	c.state.SelectedBranch = name
	c.renderBranches()
	c.revalidate()
	return nil
}

// ToggleFile adds path to the selection, or removes it if present.
func (c *Controller) ToggleFile(path string) error {
	if c.state.FilesBranch != c.state.SelectedBranch ||
		!slices.ContainsFunc(c.state.Files, func(f api.RepoFile) bool { return f.Path == path }) {
		return fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	if c.state.FileSelected(path) {
		delete(c.state.SelectedFiles, path)
	} else {
		c.state.SelectedFiles[path] = struct{}{}
	}
	c.renderFiles()
	c.revalidate()
	return nil
}

// pruneFiles drops selected paths absent from the current file list.
func (c *Controller) pruneFiles() {
	known := make(map[string]struct{}, len(c.state.Files))
	for _, f := range c.state.Files {
		known[f.Path] = struct{}{}
	}
	for path := range c.state.SelectedFiles {
		if _, ok := known[path]; !ok {
			delete(c.state.SelectedFiles, path)
		}
	}
}

// AddCommand appends an empty command row.
func (c *Controller) AddCommand() {
	c.state.Commands = append(c.state.Commands, CommandRow{})
	c.renderCommands()
}

// RemoveCommand deletes row i. The last remaining row cannot be removed.
func (c *Controller) RemoveCommand(i int) error {
	if i < 0 || i >= len(c.state.Commands) {
		return ErrRowIndex
	}
	if len(c.state.Commands) == 1 {
		return ErrLastCommand
	}
	c.state.Commands = slices.Delete(c.state.Commands, i, i+1)
	c.renderCommands()
	return nil
}

// SetCommand updates row i.
func (c *Controller) SetCommand(i int, command, description string) error {
	if i < 0 || i >= len(c.state.Commands) {
		return ErrRowIndex
	}
	c.state.Commands[i] = CommandRow{Command: command, Description: description}
	return nil
}

// AddEnvVar appends an empty variable row.
func (c *Controller) AddEnvVar() {
	c.state.EnvVars = append(c.state.EnvVars, EnvVarRow{})
	c.renderCommands()
}

// RemoveEnvVar deletes row i.
func (c *Controller) RemoveEnvVar(i int) error {
	if i < 0 || i >= len(c.state.EnvVars) {
		return ErrRowIndex
	}
	c.state.EnvVars = slices.Delete(c.state.EnvVars, i, i+1)
	c.renderCommands()
	return nil
}

// SetEnvVar updates row i.
func (c *Controller) SetEnvVar(i int, key, value string) error {
	if i < 0 || i >= len(c.state.EnvVars) {
		return ErrRowIndex
	}
	c.state.EnvVars[i] = EnvVarRow{Key: key, Value: value}
	return nil
}

// SetInstallCommand sets the optional install command.
func (c *Controller) SetInstallCommand(command, description string) {
	c.state.Install = CommandRow{Command: command, Description: description}
}

// CommandLabel is the display label of command row i.
func CommandLabel(i int) string { return fmt.Sprintf("Command %d", i+1) }

// EnvVarLabel is the display label of variable row i.
func EnvVarLabel(i int) string { return fmt.Sprintf("Environment Variable %d", i+1) }

// CollectCommands returns the trimmed command rows, skipping blank commands.
func (c *Controller) CollectCommands() []api.Command {
	out := make([]api.Command, 0, len(c.state.Commands))
	for _, row := range c.state.Commands {
		cmd := strings.TrimSpace(row.Command)
		if cmd == "" {
			continue
		}
		out = append(out, api.Command{Command: cmd, Description: strings.TrimSpace(row.Description)})
	}
	return out
}

// CollectEnvVars returns the trimmed variable rows, skipping blank keys.
// Empty values are kept.
func (c *Controller) CollectEnvVars() []api.EnvVar {
	out := make([]api.EnvVar, 0, len(c.state.EnvVars))
	for _, row := range c.state.EnvVars {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		out = append(out, api.EnvVar{Key: key, Value: strings.TrimSpace(row.Value)})
	}
	return out
}

// CollectInstallCommand returns the install command, or nil when blank.
func (c *Controller) CollectInstallCommand() *api.Command {
	cmd := strings.TrimSpace(c.state.Install.Command)
	if cmd == "" {
		return nil
	}
	return &api.Command{Command: cmd, Description: strings.TrimSpace(c.state.Install.Description)}
}

// JobRequest materializes the submission payload from the current state.
func (c *Controller) JobRequest() api.JobRequest {
	files := make([]string, 0, len(c.state.SelectedFiles))
	for path := range c.state.SelectedFiles {
		files = append(files, path)
	}
	slices.Sort(files)

	return api.JobRequest{
		RepoName:       c.state.Repo,
		Issue:          c.state.SelectedIssue.JobIssue(),
		Branch:         c.state.SelectedBranch,
		Files:          files,
		EnvVars:        c.CollectEnvVars(),
		InstallCommand: c.CollectInstallCommand(),
		Commands:       c.CollectCommands(),
	}
}

// Submit returns the job submission. Only one may be in flight.
func (c *Controller) Submit() (SubmitFunc, error) {
	if c.state.Step != StepCommands {
		return nil, ErrNotAtLastStep
	}
	if c.submitting {
		return nil, ErrSubmitting
	}

	req := c.JobRequest()
	c.submitting = true
	c.view.SetLoading(StepCommands, true)
	c.revalidate()
	logger.Info("Submitting job for %s (branch %s, %d files)", req.RepoName, req.Branch, len(req.Files))

	b := c.backend
	return func(ctx context.Context) Submitted {
		resp, err := b.IndexRepository(ctx, req)
		return Submitted{Request: req, Response: resp, Err: err}
	}, nil
}

// Finish records the outcome of a submission. A failure is logged and
// returned; the caller still leaves the wizard.
func (c *Controller) Finish(s Submitted) error {
	c.submitting = false
	c.view.SetLoading(StepCommands, false)
	c.revalidate()
	if s.Err != nil {
		logger.Error("Job submission for %s failed: %v", s.Request.RepoName, s.Err)
		return fmt.Errorf("submitting job: %w", s.Err)
	}
	logger.Info("Job submitted for %s", s.Request.RepoName)
	return nil
}

func (c *Controller) revalidate() {
	c.view.SetNextEnabled(c.state.Step, c.guard(c.state.Step))
}

// show draws the current step with whatever is cached for it.
func (c *Controller) show() {
	c.view.ShowStep(c.state.Step)
	switch c.state.Step {
	case StepIssue:
		c.renderIssues()
	case StepBranch:
		c.renderBranches()
	case StepFiles:
		c.renderFiles()
	case StepCommands:
		c.renderCommands()
	}
	c.revalidate()
}

func (c *Controller) renderIssues() []api.Issue {
	issues := filterIssues(c.state.Issues, c.issueFilter)
	c.view.RenderIssues(issues, c.state.SelectedIssue)
	return issues
}

func (c *Controller) renderBranches() {
	c.view.RenderBranches(slices.Clone(c.state.Branches), c.state.SelectedBranch)
}

func (c *Controller) renderFiles() []api.RepoFile {
	var files []api.RepoFile
	if c.state.FilesBranch == c.state.SelectedBranch {
		files = filterFiles(c.state.Files, c.fileFilter)
	}
	selected := make(map[string]struct{}, len(c.state.SelectedFiles))
	for path := range c.state.SelectedFiles {
		selected[path] = struct{}{}
	}
	c.view.RenderFiles(files, selected)
	return files
}

func (c *Controller) renderCommands() {
	c.view.RenderCommands(slices.Clone(c.state.Commands), slices.Clone(c.state.EnvVars), c.state.Install)
}

func filterIssues(issues []api.Issue, term string) []api.Issue {
	term = strings.ToLower(term)
	out := make([]api.Issue, 0, len(issues))
	for _, is := range issues {
		if strings.Contains(strings.ToLower(is.Title), term) || strings.Contains(strings.ToLower(is.Body), term) {
			out = append(out, is)
		}
	}
	return out
}

func filterFiles(files []api.RepoFile, term string) []api.RepoFile {
	term = strings.ToLower(term)
	out := make([]api.RepoFile, 0, len(files))
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Path), term) {
			out = append(out, f)
		}
	}
	return out
}

type nopView struct{}

func (nopView) ShowStep(Step) {}
func (nopView) SetLoading(Step, bool) {}
func (nopView) RenderIssues([]api.Issue, *SelectedIssue) {}
func (nopView) RenderBranches([]api.Branch, string) {}
func (nopView) RenderFiles([]api.RepoFile, map[string]struct{}) {}
func (nopView) RenderCommands([]CommandRow, []EnvVarRow, CommandRow) {}
func (nopView) SetNextEnabled(Step, bool) {}
func (nopView) ShowError(string) {}
func (nopView) ShowAppNotInstalled(string) {}
