package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	workflow "github.com/forklift-dev/forklift/internal/wizard"
)

type rowKind int

const (
	rowInstall rowKind = iota
	rowCommand
	rowEnvVar
)

// commandRow is one editable line: two inputs side by side.
type commandRow struct {
	kind   rowKind
	index  int // Position within its kind
	inputs [2]textinput.Model
}

func (r *commandRow) label() string {
	switch r.kind {
	case rowInstall:
		return "Install Command (optional)"
	case rowCommand:
		return workflow.CommandLabel(r.index)
	default:
		return workflow.EnvVarLabel(r.index)
	}
}

// CommandsStep edits the install command, the command list and the
// environment variables.
type CommandsStep struct {
	ctrl  *workflow.Controller
	rows  []commandRow
	focus int // Flat index over rows*2 inputs
	list  listWindow

	width int
}

// NewCommandsStep creates the commands step.
func NewCommandsStep(ctrl *workflow.Controller) *CommandsStep {
	s := &CommandsStep{ctrl: ctrl, width: 60}
	s.list.height = 5
	return s
}

// SetSize updates the dimensions for the commands step.
func (s *CommandsStep) SetSize(width, height int) {
	s.width = width
	// Each row takes a label line, an input line and a gap.
	s.list.height = max(2, (height-2)/3)
	for i := range s.rows {
		s.sizeRow(&s.rows[i])
	}
}

func (s *CommandsStep) sizeRow(r *commandRow) {
	w := max(10, (s.width-4)/2)
	r.inputs[0].SetWidth(w)
	r.inputs[1].SetWidth(w)
}

// SetRows rebuilds the inputs from the controller's rows, keeping focus on
// the same position.
func (s *CommandsStep) SetRows(commands []workflow.CommandRow, envVars []workflow.EnvVarRow, install workflow.CommandRow) {
	rows := make([]commandRow, 0, 1+len(commands)+len(envVars))
	rows = append(rows, s.newRow(rowInstall, 0, "Install command, e.g. npm ci", "Description", install.Command, install.Description))
	for i, c := range commands {
		rows = append(rows, s.newRow(rowCommand, i, "Command, e.g. go test ./...", "Description", c.Command, c.Description))
	}
	for i, v := range envVars {
		rows = append(rows, s.newRow(rowEnvVar, i, "KEY", "value", v.Key, v.Value))
	}
	s.rows = rows
	s.setFocus(s.focus)
}

func (s *CommandsStep) newRow(kind rowKind, index int, ph0, ph1, v0, v1 string) commandRow {
	r := commandRow{kind: kind, index: index}
	r.inputs[0] = newInput(ph0, 30)
	r.inputs[1] = newInput(ph1, 30)
	r.inputs[0].SetValue(v0)
	r.inputs[1].SetValue(v1)
	s.sizeRow(&r)
	return r
}

func (s *CommandsStep) fieldCount() int { return len(s.rows) * 2 }

// Focus gives focus to the first input.
func (s *CommandsStep) Focus() tea.Cmd { return s.setFocus(0) }

// FocusLast gives focus to the last input.
func (s *CommandsStep) FocusLast() tea.Cmd { return s.setFocus(s.fieldCount() - 1) }

// Blur removes focus from all inputs.
func (s *CommandsStep) Blur() {
	for i := range s.rows {
		s.rows[i].inputs[0].Blur()
		s.rows[i].inputs[1].Blur()
	}
}

func (s *CommandsStep) setFocus(f int) tea.Cmd {
	s.Blur()
	if s.fieldCount() == 0 {
		s.focus = 0
		return nil
	}
	s.focus = max(0, min(f, s.fieldCount()-1))
	s.list.cursor = s.focus / 2
	s.list.clamp(len(s.rows))
	return s.rows[s.focus/2].inputs[s.focus%2].Focus()
}

// focusRow focuses the first input of the given row.
func (s *CommandsStep) focusRow(kind rowKind, index int) tea.Cmd {
	for i, r := range s.rows {
		if r.kind == kind && r.index == index {
			return s.setFocus(i * 2)
		}
	}
	return nil
}

// Update handles messages for the commands step.
func (s *CommandsStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "tab", "down":
		if s.focus >= s.fieldCount()-1 {
			if keyMsg.String() == "tab" {
				return tabExitForward
			}
			return nil
		}
		return s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		if s.focus == 0 {
			if keyMsg.String() == "shift+tab" {
				return tabExitBackward
			}
			return nil
		}
		return s.setFocus(s.focus - 1)
	case "ctrl+a":
		s.ctrl.AddCommand()
		return s.focusRow(rowCommand, len(s.ctrl.State().Commands)-1)
	case "ctrl+e":
		s.ctrl.AddEnvVar()
		return s.focusRow(rowEnvVar, len(s.ctrl.State().EnvVars)-1)
	case "ctrl+d":
		return s.removeFocusedRow()
	case "enter":
		if s.focus < s.fieldCount()-1 {
			return s.setFocus(s.focus + 1)
		}
		return submit
	case "ctrl+s":
		return submit
	}

	if s.fieldCount() == 0 {
		return nil
	}
	r := &s.rows[s.focus/2]
	var cmd tea.Cmd
	r.inputs[s.focus%2], cmd = r.inputs[s.focus%2].Update(keyMsg)
	s.sync(r)
	return cmd
}

func (s *CommandsStep) sync(r *commandRow) {
	v0, v1 := r.inputs[0].Value(), r.inputs[1].Value()
	var err error
	switch r.kind {
	case rowInstall:
		s.ctrl.SetInstallCommand(v0, v1)
	case rowCommand:
		err = s.ctrl.SetCommand(r.index, v0, v1)
	case rowEnvVar:
		err = s.ctrl.SetEnvVar(r.index, v0, v1)
	}
	if err != nil {
		logger.Warn("Updating %s: %v", r.label(), err)
	}
}

func (s *CommandsStep) removeFocusedRow() tea.Cmd {
	if s.fieldCount() == 0 {
		return nil
	}
	r := s.rows[s.focus/2]
	var err error
	switch r.kind {
	case rowInstall:
		s.ctrl.SetInstallCommand("", "")
		s.SetRows(s.ctrl.State().Commands, s.ctrl.State().EnvVars, s.ctrl.State().Install)
		return s.setFocus(s.focus)
	case rowCommand:
		err = s.ctrl.RemoveCommand(r.index)
	case rowEnvVar:
		err = s.ctrl.RemoveEnvVar(r.index)
	}
	if err != nil {
		logger.Debug("Removing %s: %v", r.label(), err)
		return nil
	}
	return s.setFocus(s.focus)
}

// View renders the commands step.
func (s *CommandsStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	start, end := s.list.bounds(len(s.rows))
	if start > 0 {
		b.WriteString(st.ItemMuted.Render("  ↑ more") + "\n")
	}
	for i := start; i < end; i++ {
		r := &s.rows[i]
		focused := s.focus/2 == i
		label := r.label()
		if r.kind == rowEnvVar || (r.kind == rowCommand && len(s.ctrl.State().Commands) > 1) {
			label += st.ItemMuted.Render("  (ctrl+d remove)")
		}
		b.WriteString(fieldLabel(label, focused) + "\n")
		b.WriteString(r.inputs[0].View() + "  " + r.inputs[1].View() + "\n\n")
	}
	if end < len(s.rows) {
		b.WriteString(st.ItemMuted.Render("  ↓ more") + "\n")
	}

	b.WriteString(renderHintBar(
		"tab", "next field",
		"ctrl+a", "add command",
		"ctrl+e", "add variable",
		"ctrl+s", "create job",
		"esc", "back",
	))
	return b.String()
}
