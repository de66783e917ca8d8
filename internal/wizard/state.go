package wizard

import "github.com/forklift-dev/forklift/internal/api"

// Step is a wizard position, 1-based.
type Step int

const (
	StepIssue Step = iota + 1
	StepBranch
	StepFiles
	StepCommands
)

// StepCount is the number of wizard steps.
const StepCount = int(StepCommands)

func (s Step) String() string {
	switch s {
	case StepIssue:
		return "issue"
	case StepBranch:
		return "branch"
	case StepFiles:
		return "files"
	case StepCommands:
		return "commands"
	default:
		return "unknown"
	}
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepIssue:
		return "Select Issue"
	case StepBranch:
		return "Select Branch"
	case StepFiles:
		return "Select Files"
	case StepCommands:
		return "Configure Commands"
	default:
		return ""
	}
}

// IssueMode is the source of the step 1 issue.
type IssueMode int

const (
	IssueExisting IssueMode = iota
	IssueManual
)

// SelectedIssue is the issue attached to the job. Exactly one of Issue or
// Manual is set.
type SelectedIssue struct {
	Issue  *api.Issue
	Title  string
	Body   string
	Manual bool
}

// JobIssue converts the selection into its payload form.
func (s *SelectedIssue) JobIssue() *api.JobIssue {
	if s == nil {
		return nil
	}
	if s.Manual {
		return &api.JobIssue{Title: s.Title, Body: s.Body, Manual: true}
	}
	return &api.JobIssue{
		ID:     s.Issue.ID,
		Number: s.Issue.Number,
		Title:  s.Issue.Title,
		Body:   s.Issue.Body,
		Labels: s.Issue.Labels,
	}
}

// CommandRow is one editable command entry of step 4.
type CommandRow struct {
	Command     string
	Description string
}

// EnvVarRow is one editable environment variable entry of step 4.
type EnvVarRow struct {
	Key   string
	Value string
}

// WorkflowState is everything the wizard has collected for one repository.
type WorkflowState struct {
	Owner string
	Repo  string
	Step  Step

	IssueMode      IssueMode
	SelectedIssue  *SelectedIssue
	SelectedBranch string
	SelectedFiles  map[string]struct{}

	Commands []CommandRow
	EnvVars  []EnvVarRow
	Install  CommandRow

	// Last fetched lists. FilesBranch is the branch Files belongs to.
	Issues      []api.Issue
	Branches    []api.Branch
	Files       []api.RepoFile
	FilesBranch string
}

func newState(owner, repo string) WorkflowState {
	return WorkflowState{
		Owner:         owner,
		Repo:          repo,
		Step:          StepIssue,
		SelectedFiles: make(map[string]struct{}),
		Commands:      []CommandRow{{}},
	}
}

// FileSelected reports whether path is in the selection.
func (s WorkflowState) FileSelected(path string) bool {
	_, ok := s.SelectedFiles[path]
	return ok
}
