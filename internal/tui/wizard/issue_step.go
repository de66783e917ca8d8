package wizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	workflow "github.com/forklift-dev/forklift/internal/wizard"
)

// IssueBodyEditedMsg carries the manual issue body back from $EDITOR.
type IssueBodyEditedMsg struct {
	Body string
}

// Focus targets inside the issue step.
const (
	issueFocusSearch = iota // existing mode: search input
	issueFocusList          // existing mode: issue list
	issueFocusTitle         // manual mode: title input
	issueFocusBody          // manual mode: body textarea
)

// IssueStep lets the user pick a fetched issue or write one.
type IssueStep struct {
	ctrl *workflow.Controller

	issues   []api.Issue
	selected *workflow.SelectedIssue
	list     listWindow
	focus    int

	search textinput.Model
	title  textinput.Model
	body   textarea.Model

	// Rendered markdown of the highlighted issue, keyed by id and width.
	previewID    int64
	previewWidth int
	preview      string

	width  int
	height int
}

// NewIssueStep creates the issue step.
func NewIssueStep(ctrl *workflow.Controller) *IssueStep {
	body := textarea.New()
	body.Placeholder = "Describe the problem or the change..."
	body.ShowLineNumbers = false
	body.CharLimit = 10000
	body.SetWidth(60)
	body.SetHeight(6)

	s := &IssueStep{
		ctrl:   ctrl,
		search: newInput("Search issues...", 60),
		title:  newInput("Issue title", 60),
		body:   body,
		width:  60,
		height: 16,
	}
	s.list.height = 6
	return s
}

// Init focuses the first input of the current mode.
func (s *IssueStep) Init() tea.Cmd {
	if s.ctrl.State().IssueMode == workflow.IssueManual {
		return s.setFocus(issueFocusTitle)
	}
	return s.setFocus(issueFocusList)
}

// Focus gives focus to the step's first field.
func (s *IssueStep) Focus() tea.Cmd {
	return s.Init()
}

// FocusLast gives focus to the step's last field.
func (s *IssueStep) FocusLast() tea.Cmd {
	if s.manual() {
		return s.setFocus(issueFocusBody)
	}
	return s.setFocus(issueFocusList)
}

// Blur removes focus from all inputs.
func (s *IssueStep) Blur() {
	s.search.Blur()
	s.title.Blur()
	s.body.Blur()
	s.focus = -1
}

func (s *IssueStep) setFocus(f int) tea.Cmd {
	s.Blur()
	s.focus = f
	switch f {
	case issueFocusSearch:
		return s.search.Focus()
	case issueFocusTitle:
		return s.title.Focus()
	case issueFocusBody:
		return s.body.Focus()
	}
	return nil
}

func (s *IssueStep) manual() bool {
	return s.ctrl.State().IssueMode == workflow.IssueManual
}

// SetSize updates the dimensions for the issue step.
func (s *IssueStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.search.SetWidth(width - 2)
	s.title.SetWidth(width - 2)
	s.body.SetWidth(width)
	s.body.SetHeight(max(4, height-8))
	// Search, blank line, list, blank line, preview, hint bar.
	s.list.height = max(3, (height-6)/2)
	s.previewWidth = 0
}

// SetIssues receives the filtered issues to display.
func (s *IssueStep) SetIssues(issues []api.Issue, selected *workflow.SelectedIssue) {
	s.issues = issues
	s.selected = selected
	s.list.clamp(len(issues))
}

// Update handles messages for the issue step.
func (s *IssueStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case IssueBodyEditedMsg:
		s.body.SetValue(strings.TrimRight(msg.Body, "\n"))
		s.syncManual()
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+t":
			return s.toggleMode()
		case "ctrl+e":
			if s.manual() && os.Getenv("EDITOR") != "" {
				return s.openEditor()
			}
			return nil
		}
		if s.manual() {
			return s.updateManual(msg)
		}
		return s.updateExisting(msg)
	}

	return nil
}

func (s *IssueStep) toggleMode() tea.Cmd {
	if s.manual() {
		s.ctrl.SetIssueMode(workflow.IssueExisting)
		return s.setFocus(issueFocusList)
	}
	s.ctrl.SetIssueMode(workflow.IssueManual)
	return s.setFocus(issueFocusTitle)
}

func (s *IssueStep) updateExisting(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up":
		s.list.up(len(s.issues))
		return nil
	case "down":
		s.list.down(len(s.issues))
		return nil
	case "k", "j":
		if s.focus == issueFocusList {
			if msg.String() == "k" {
				s.list.up(len(s.issues))
			} else {
				s.list.down(len(s.issues))
			}
			return nil
		}
	case "/":
		if s.focus == issueFocusList {
			return s.setFocus(issueFocusSearch)
		}
	case "tab":
		if s.focus == issueFocusSearch {
			return s.setFocus(issueFocusList)
		}
		return tabExitForward
	case "shift+tab":
		if s.focus == issueFocusList {
			return s.setFocus(issueFocusSearch)
		}
		return tabExitBackward
	case "enter":
		if len(s.issues) == 0 {
			return nil
		}
		issue := s.issues[s.list.cursor]
		if err := s.ctrl.SelectIssue(issue.ID); err != nil {
			logger.Warn("Selecting issue #%d: %v", issue.Number, err)
			return nil
		}
		return advance
	}

	if s.focus != issueFocusSearch {
		return nil
	}
	before := s.search.Value()
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if s.search.Value() != before {
		s.ctrl.FilterIssues(s.search.Value())
		s.list.cursor = 0
		s.list.clamp(len(s.issues))
	}
	return cmd
}

func (s *IssueStep) updateManual(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		if s.focus == issueFocusTitle {
			return s.setFocus(issueFocusBody)
		}
		return tabExitForward
	case "shift+tab":
		if s.focus == issueFocusBody {
			return s.setFocus(issueFocusTitle)
		}
		return tabExitBackward
	case "enter":
		if s.focus == issueFocusTitle {
			return s.setFocus(issueFocusBody)
		}
	case "ctrl+s":
		if s.ctrl.CanAdvance() {
			return advance
		}
		return nil
	}

	var cmd tea.Cmd
	switch s.focus {
	case issueFocusTitle:
		s.title, cmd = s.title.Update(msg)
	case issueFocusBody:
		s.body, cmd = s.body.Update(msg)
	default:
		return nil
	}
	s.syncManual()
	return cmd
}

func (s *IssueStep) syncManual() {
	s.ctrl.SetManualIssue(s.title.Value(), s.body.Value())
}

// openEditor launches $EDITOR on the manual issue body.
func (s *IssueStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "forklift_issue_*.md")
	if err != nil {
		logger.Warn("Creating editor temp file: %v", err)
		return nil
	}
	path := tmpfile.Name()
	if _, err := tmpfile.WriteString(s.body.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(path)
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("forklift", path)
	if err != nil {
		_ = os.Remove(path)
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return IssueBodyEditedMsg{Body: string(content)}
	})
}

// View renders the issue step.
func (s *IssueStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	existing, manual := st.ItemSelected.Render("● Existing issue"), st.ItemMuted.Render("○ Write an issue")
	if s.manual() {
		existing, manual = st.ItemMuted.Render("○ Existing issue"), st.ItemSelected.Render("● Write an issue")
	}
	b.WriteString(existing + "   " + manual + "\n\n")

	if s.manual() {
		b.WriteString(fieldLabel("Title", s.focus == issueFocusTitle) + "\n")
		b.WriteString(s.title.View() + "\n\n")
		b.WriteString(fieldLabel("Description", s.focus == issueFocusBody) + "\n")
		b.WriteString(s.body.View() + "\n\n")

		pairs := []string{"tab", "next field", "ctrl+s", "continue", "ctrl+t", "pick existing"}
		if os.Getenv("EDITOR") != "" {
			pairs = append(pairs, "ctrl+e", "edit in $EDITOR")
		}
		b.WriteString(renderHintBar(append(pairs, "esc", "cancel")...))
		return b.String()
	}

	b.WriteString(s.search.View() + "\n\n")

	if len(s.issues) == 0 {
		msg := "No open issues"
		if s.ctrl.IssueFilter() != "" {
			msg = "No issues match your search"
		}
		b.WriteString(st.ItemMuted.Italic(true).Render(msg) + "\n")
	} else {
		start, end := s.list.bounds(len(s.issues))
		for i := start; i < end; i++ {
			b.WriteString(s.renderIssue(s.issues[i], i == s.list.cursor) + "\n")
		}
		if preview := s.renderPreview(s.issues[s.list.cursor]); preview != "" {
			b.WriteString("\n" + preview + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"/", "search",
		"enter", "select",
		"ctrl+t", "write issue",
		"esc", "cancel",
	))
	return b.String()
}

func (s *IssueStep) renderIssue(issue api.Issue, cursor bool) string {
	st := theme.Current().S()

	mark := st.Unchecked.Render("○")
	if s.selected != nil && !s.selected.Manual && s.selected.Issue.ID == issue.ID {
		mark = st.Checked.Render("●")
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, theme.LabelStyle(l.Color).Render(l.Name))
	}

	title := truncate(fmt.Sprintf("#%d %s", issue.Number, issue.Title), s.width-8)
	line := mark + " " + title
	if len(labels) > 0 {
		line += " " + strings.Join(labels, " ")
	}

	if cursor {
		return st.ItemSelected.Render("▸ ") + line
	}
	return "  " + line
}

// renderPreview renders the first lines of the highlighted issue body as
// markdown.
func (s *IssueStep) renderPreview(issue api.Issue) string {
	if strings.TrimSpace(issue.Body) == "" {
		return ""
	}
	if issue.ID != s.previewID || s.previewWidth != s.width || s.preview == "" {
		s.previewID = issue.ID
		s.previewWidth = s.width
		s.preview = renderMarkdown(issue.Body, s.width)
	}

	lines := strings.Split(s.preview, "\n")
	maxLines := max(2, s.height-s.list.height-6)
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], theme.Current().S().ItemMuted.Render("…"))
	}
	return strings.Join(lines, "\n")
}

// renderMarkdown renders markdown with glamour, falling back to plain text.
func renderMarkdown(content string, width int) string {
	width = min(max(width, 20), 120)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
