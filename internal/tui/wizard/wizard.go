// Package wizard is the terminal front end of the job-creation workflow.
// The Model renders the four steps in a centred modal and implements the
// workflow View; backend calls run as tea.Cmds and report back as messages.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	workflow "github.com/forklift-dev/forklift/internal/wizard"
)

// AdvanceMsg asks the wizard to move to the next step.
type AdvanceMsg struct{}

// SubmitMsg asks the wizard to submit the job.
type SubmitMsg struct{}

// TabExitForwardMsg is sent when tab leaves the last field of a step.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent when shift+tab leaves the first field of a step.
type TabExitBackwardMsg struct{}

type loadedMsg struct {
	workflow.Loaded
}

type submittedMsg struct {
	workflow.Submitted
}

func advance() tea.Msg         { return AdvanceMsg{} }
func submit() tea.Msg          { return SubmitMsg{} }
func tabExitForward() tea.Msg  { return TabExitForwardMsg{} }
func tabExitBackward() tea.Msg { return TabExitBackwardMsg{} }

// DefaultTimeout bounds each backend call made by the wizard.
const DefaultTimeout = 30 * time.Second

// Options configures a wizard run.
type Options struct {
	Owner   string
	Repo    string
	Backend workflow.Backend
	// Timeout bounds each backend call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result is the outcome of a wizard run.
type Result struct {
	Request   api.JobRequest
	Response  *api.JobResponse
	Err       error // Submission or start-up failure
	Submitted bool  // A submission was attempted
	Cancelled bool
	// AppNotInstalled is set when the wizard stopped because the GitHub App
	// cannot access the repository.
	AppNotInstalled bool
}

// Model is the Bubbletea model of the job wizard.
type Model struct {
	ctrl    *workflow.Controller
	ctx     context.Context
	timeout time.Duration
	repo    string
	owner   string

	step    workflow.Step
	refocus bool
	loading [workflow.StepCount + 1]bool

	issueStep    *IssueStep
	branchStep   *BranchStep
	filesStep    *FilesStep
	commandsStep *CommandsStep

	buttons        *ButtonBar
	buttonsFocused bool
	nextEnabled    bool

	spinner      spinner.Model
	errMsg       string
	notInstalled string

	result Result
	width  int
	height int
}

// NewModel creates the wizard for opts.Owner/opts.Repo.
func NewModel(ctx context.Context, opts Options) *Model {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t := theme.Current()
	ctrl := workflow.New(opts.Backend, nil, opts.Owner, opts.Repo)
	m := &Model{
		ctrl:         ctrl,
		ctx:          ctx,
		timeout:      timeout,
		repo:         opts.Repo,
		owner:        opts.Owner,
		step:         workflow.StepIssue,
		issueStep:    NewIssueStep(ctrl),
		branchStep:   NewBranchStep(ctrl),
		filesStep:    NewFilesStep(ctrl),
		commandsStep: NewCommandsStep(ctrl),
		buttons:      NewButtonBar(CreateBackNextButtons(true, false, "Next →")),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
		width:  80,
		height: 24,
	}
	ctrl.SetView(m)
	return m
}

// RunWizard runs the wizard as a standalone program and returns its result.
func RunWizard(ctx context.Context, opts Options) (*Result, error) {
	m := NewModel(ctx, opts)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return wizModel.Result(), nil
}

// Result returns the outcome so far.
func (m *Model) Result() *Result {
	r := m.result
	return &r
}

// Controller exposes the workflow state driven by this model.
func (m *Model) Controller() *workflow.Controller {
	return m.ctrl
}

// Init verifies the repository and loads its issues.
func (m *Model) Init() tea.Cmd {
	fn, err := m.ctrl.Start()
	if err != nil {
		m.result.Err = err
		return tea.Quit
	}
	m.refocus = false
	return tea.Batch(m.spinner.Tick, m.load(fn), m.focusStep(false))
}

// load runs fn off the UI goroutine.
func (m *Model) load(fn workflow.LoadFunc) tea.Cmd {
	if fn == nil {
		return nil
	}
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return loadedMsg{fn(ctx)}
	}
}

func (m *Model) send(fn workflow.SubmitFunc) tea.Cmd {
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return submittedMsg{fn(ctx)}
	}
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if m.refocus {
		m.refocus = false
		cmd = tea.Batch(cmd, m.focusStep(false))
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case loadedMsg:
		return m.load(m.ctrl.Apply(msg.Loaded))

	case submittedMsg:
		err := m.ctrl.Finish(msg.Submitted)
		m.result.Submitted = true
		m.result.Request = msg.Request
		m.result.Response = msg.Response
		m.result.Err = err
		return tea.Quit

	case AdvanceMsg:
		return m.advance()

	case SubmitMsg:
		return m.submit()

	case TabExitForwardMsg:
		m.focusButtons(true)
		return nil

	case TabExitBackwardMsg:
		m.focusButtons(false)
		return nil

	case IssueBodyEditedMsg:
		return m.issueStep.Update(msg)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.result.Cancelled = true
		return tea.Quit
	case "esc":
		return m.back()
	case "ctrl+r":
		m.notInstalled = ""
		m.result.AppNotInstalled = false
		return m.load(m.ctrl.Reload())
	}

	if m.notInstalled != "" {
		if s := msg.String(); s == "enter" || s == "q" {
			return tea.Quit
		}
		return nil
	}

	if m.buttonsFocused {
		return m.handleButtonKey(msg)
	}
	return m.forward(msg)
}

func (m *Model) handleButtonKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "right":
		if !m.buttons.FocusNext() {
			return m.leaveButtons(false)
		}
	case "shift+tab", "left":
		if !m.buttons.FocusPrev() {
			return m.leaveButtons(true)
		}
	case "enter", "space", " ":
		btn, ok := m.buttons.FocusedButton()
		if !ok || btn.State == ButtonDisabled {
			return nil
		}
		switch btn.ID {
		case ButtonBack:
			return m.back()
		case ButtonNext:
			if m.step == workflow.StepCommands {
				return m.submit()
			}
			return m.advance()
		}
	}
	return nil
}

// forward sends msg to the current step.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	switch m.step {
	case workflow.StepIssue:
		return m.issueStep.Update(msg)
	case workflow.StepBranch:
		return m.branchStep.Update(msg)
	case workflow.StepFiles:
		return m.filesStep.Update(msg)
	case workflow.StepCommands:
		return m.commandsStep.Update(msg)
	}
	return nil
}

func (m *Model) advance() tea.Cmd {
	if m.step == workflow.StepCommands {
		return m.submit()
	}
	fn, err := m.ctrl.Advance()
	if err != nil {
		logger.Debug("Advance from %s refused: %v", m.step, err)
		return nil
	}
	return m.load(fn)
}

func (m *Model) back() tea.Cmd {
	if m.notInstalled != "" || m.step == workflow.StepIssue {
		m.result.Cancelled = true
		return tea.Quit
	}
	m.ctrl.Retreat()
	return nil
}

func (m *Model) submit() tea.Cmd {
	fn, err := m.ctrl.Submit()
	if err != nil {
		if !errors.Is(err, workflow.ErrSubmitting) {
			logger.Debug("Submit refused: %v", err)
		}
		return nil
	}
	return m.send(fn)
}

func (m *Model) focusButtons(first bool) {
	m.blurStep()
	m.buttonsFocused = true
	if first {
		m.buttons.FocusFirst()
	} else {
		m.buttons.FocusLast()
	}
}

func (m *Model) leaveButtons(last bool) tea.Cmd {
	m.buttons.Blur()
	m.buttonsFocused = false
	return m.focusStep(last)
}

func (m *Model) blurStep() {
	m.issueStep.Blur()
	m.filesStep.Blur()
	m.commandsStep.Blur()
}

// focusStep gives focus to the first or last field of the current step.
func (m *Model) focusStep(last bool) tea.Cmd {
	m.blurStep()
	m.buttons.Blur()
	m.buttonsFocused = false
	switch m.step {
	case workflow.StepIssue:
		if last {
			return m.issueStep.FocusLast()
		}
		return m.issueStep.Focus()
	case workflow.StepCommands:
		if last {
			return m.commandsStep.FocusLast()
		}
		return m.commandsStep.Focus()
	}
	return nil
}

// contentSize is the space available to a step inside the modal.
func (m *Model) contentSize() (int, int) {
	width := max(40, m.modalWidth()-6)
	// Title, breadcrumbs, banners, spinner and buttons.
	height := max(10, m.height-14)
	return width, height
}

func (m *Model) modalWidth() int {
	return max(60, min(100, m.width-10))
}

func (m *Model) updateSizes() {
	w, h := m.contentSize()
	m.issueStep.SetSize(w, h)
	m.branchStep.SetSize(w, h)
	m.filesStep.SetSize(w, h)
	m.commandsStep.SetSize(w, h)
	m.buttons.SetWidth(w)
}

// ShowStep switches the visible step.
func (m *Model) ShowStep(step workflow.Step) {
	if step != m.step {
		m.refocus = true
	}
	m.step = step
	m.updateButtons()
}

// SetLoading toggles the spinner for step.
func (m *Model) SetLoading(step workflow.Step, loading bool) {
	if step >= workflow.StepIssue && step <= workflow.StepCommands {
		m.loading[step] = loading
	}
}

// RenderIssues shows the filtered issues.
func (m *Model) RenderIssues(issues []api.Issue, selected *workflow.SelectedIssue) {
	m.issueStep.SetIssues(issues, selected)
}

// RenderBranches shows the branches.
func (m *Model) RenderBranches(branches []api.Branch, selected string) {
	m.branchStep.SetBranches(branches, selected)
}

// RenderFiles shows the filtered files.
func (m *Model) RenderFiles(files []api.RepoFile, selected map[string]struct{}) {
	m.filesStep.SetFiles(files, selected)
}

// RenderCommands rebuilds the command and variable inputs.
func (m *Model) RenderCommands(commands []workflow.CommandRow, envVars []workflow.EnvVarRow, install workflow.CommandRow) {
	m.commandsStep.SetRows(commands, envVars, install)
}

// SetNextEnabled updates the Next button.
func (m *Model) SetNextEnabled(step workflow.Step, enabled bool) {
	if step != m.step {
		return
	}
	m.nextEnabled = enabled
	m.updateButtons()
}

// ShowError shows msg in the error banner. An empty msg clears it.
func (m *Model) ShowError(msg string) {
	m.errMsg = msg
}

// ShowAppNotInstalled replaces the step with installation instructions.
func (m *Model) ShowAppNotInstalled(repo string) {
	m.notInstalled = repo
	m.result.AppNotInstalled = true
	m.buttons.Blur()
	m.buttonsFocused = false
}

func (m *Model) updateButtons() {
	label := "Next →"
	if m.step == workflow.StepCommands {
		label = "Create Job"
		if m.ctrl.Submitting() {
			label = "Creating..."
		}
	}
	m.buttons.SetButtons(CreateBackNextButtons(m.step == workflow.StepIssue, m.nextEnabled, label))
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal(m.renderBody())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) renderBody() string {
	s := theme.Current().S()
	var sections []string

	if m.errMsg != "" {
		sections = append(sections, s.ErrorBanner.Render("✗ "+m.errMsg), "")
	}

	if m.notInstalled != "" {
		sections = append(sections,
			s.Item.Render(fmt.Sprintf("The Forklift GitHub App cannot access %q.", m.notInstalled)),
			"",
			s.ItemMuted.Render("Install it for your account, then retry:"),
			s.HintKey.Render("  forklift repos install "+m.owner),
			"",
			renderHintBar("ctrl+r", "retry", "enter", "close"),
		)
		return strings.Join(sections, "\n")
	}

	if m.loading[m.step] {
		label := "Loading " + m.step.String() + "..."
		if m.step == workflow.StepCommands {
			label = "Creating job..."
		}
		sections = append(sections, m.spinner.View()+" "+s.ItemMuted.Render(label), "")
	}

	switch m.step {
	case workflow.StepIssue:
		sections = append(sections, m.issueStep.View())
	case workflow.StepBranch:
		sections = append(sections, m.branchStep.View())
	case workflow.StepFiles:
		sections = append(sections, m.filesStep.View())
	case workflow.StepCommands:
		sections = append(sections, m.commandsStep.View())
	}

	sections = append(sections, "", m.buttons.Render())
	return strings.Join(sections, "\n")
}

// renderBreadcrumbs shows every step, marking done and active ones.
func (m *Model) renderBreadcrumbs() string {
	s := theme.Current().S()
	parts := make([]string, 0, workflow.StepCount)
	for step := workflow.StepIssue; step <= workflow.StepCommands; step++ {
		label := fmt.Sprintf("%d %s", step, step.Title())
		switch {
		case step == m.step:
			parts = append(parts, s.StepActive.Render(label))
		case step < m.step:
			parts = append(parts, s.StepDone.Render("✓ "+step.Title()))
		default:
			parts = append(parts, s.StepInactive.Render(label))
		}
	}
	return strings.Join(parts, s.HintSeparator.Render(" › "))
}

// renderModal wraps the body in a modal container with title.
func (m *Model) renderModal(body string) string {
	s := theme.Current().S()

	title := fmt.Sprintf("New Job · %s/%s - Step %d of %d: %s",
		m.owner, m.repo, m.step, workflow.StepCount, m.step.Title())
	sections := []string{
		s.ModalTitle.Render(title),
		m.renderBreadcrumbs(),
		"",
		body,
	}

	modal := s.ModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
