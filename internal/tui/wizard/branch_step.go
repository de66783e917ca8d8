package wizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	workflow "github.com/forklift-dev/forklift/internal/wizard"
)

// BranchStep lists the repository's branches.
type BranchStep struct {
	ctrl     *workflow.Controller
	branches []api.Branch
	selected string
	list     listWindow
	width    int
}

// NewBranchStep creates the branch step.
func NewBranchStep(ctrl *workflow.Controller) *BranchStep {
	s := &BranchStep{ctrl: ctrl, width: 60}
	s.list.height = 10
	return s
}

// SetSize updates the dimensions for the branch step.
func (s *BranchStep) SetSize(width, height int) {
	s.width = width
	s.list.height = max(3, height-2)
}

// SetBranches receives the branches to display. The cursor starts on the
// selected branch.
func (s *BranchStep) SetBranches(branches []api.Branch, selected string) {
	s.branches = branches
	if selected != s.selected {
		for i, b := range branches {
			if b.Name == selected {
				s.list.cursor = i
			}
		}
	}
	s.selected = selected
	s.list.clamp(len(branches))
}

// Update handles messages for the branch step.
func (s *BranchStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		s.list.up(len(s.branches))
	case "down", "j":
		s.list.down(len(s.branches))
	case "space", " ":
		s.choose()
	case "enter":
		if s.choose() {
			return advance
		}
	case "tab":
		return tabExitForward
	case "shift+tab":
		return tabExitBackward
	}
	return nil
}

func (s *BranchStep) choose() bool {
	if len(s.branches) == 0 {
		return false
	}
	name := s.branches[s.list.cursor].Name
	if err := s.ctrl.SelectBranch(name); err != nil {
		logger.Warn("Selecting branch %s: %v", name, err)
		return false
	}
	return true
}

// View renders the branch step.
func (s *BranchStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	if len(s.branches) == 0 {
		b.WriteString(st.ItemMuted.Italic(true).Render("No branches found") + "\n")
	} else {
		start, end := s.list.bounds(len(s.branches))
		for i := start; i < end; i++ {
			name := s.branches[i].Name
			mark := st.Unchecked.Render("○")
			if name == s.selected {
				mark = st.Checked.Render("●")
			}
			line := mark + " " + truncate(name, s.width-6)
			if i == s.list.cursor {
				b.WriteString(st.ItemSelected.Render("▸ ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"↑↓/j/k", "navigate",
		"space", "select",
		"enter", "select & continue",
		"esc", "back",
	))
	return b.String()
}
