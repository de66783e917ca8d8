package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	workflow "github.com/forklift-dev/forklift/internal/wizard"
)

// FilesStep is a filterable checklist of the branch's files.
type FilesStep struct {
	ctrl     *workflow.Controller
	files    []api.RepoFile
	selected map[string]struct{}
	list     listWindow

	search        textinput.Model
	searchFocused bool

	width int
}

// NewFilesStep creates the files step.
func NewFilesStep(ctrl *workflow.Controller) *FilesStep {
	s := &FilesStep{
		ctrl:     ctrl,
		selected: map[string]struct{}{},
		search:   newInput("Filter files...", 60),
		width:    60,
	}
	s.list.height = 10
	return s
}

// SetSize updates the dimensions for the files step.
func (s *FilesStep) SetSize(width, height int) {
	s.width = width
	s.search.SetWidth(width - 2)
	// Filter, counter, blank lines and hint bar.
	s.list.height = max(3, height-5)
}

// Blur removes focus from the filter input.
func (s *FilesStep) Blur() {
	s.searchFocused = false
	s.search.Blur()
}

// SetFiles receives the filtered files and the current selection.
func (s *FilesStep) SetFiles(files []api.RepoFile, selected map[string]struct{}) {
	s.files = files
	s.selected = selected
	s.list.clamp(len(files))
}

// Update handles messages for the files step.
func (s *FilesStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up":
		s.list.up(len(s.files))
		return nil
	case "down":
		s.list.down(len(s.files))
		return nil
	case "enter":
		if s.searchFocused {
			s.Blur()
			return nil
		}
		if s.ctrl.CanAdvance() {
			return advance
		}
		return nil
	case "tab":
		if s.searchFocused {
			s.Blur()
			return nil
		}
		return tabExitForward
	case "shift+tab":
		if !s.searchFocused {
			s.searchFocused = true
			return s.search.Focus()
		}
		s.Blur()
		return tabExitBackward
	}

	if s.searchFocused {
		before := s.search.Value()
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(keyMsg)
		if s.search.Value() != before {
			s.ctrl.FilterFiles(s.search.Value())
			s.list.cursor = 0
			s.list.clamp(len(s.files))
		}
		return cmd
	}

	switch keyMsg.String() {
	case "k":
		s.list.up(len(s.files))
	case "j":
		s.list.down(len(s.files))
	case "/":
		s.searchFocused = true
		return s.search.Focus()
	case "space", " ":
		if len(s.files) == 0 {
			return nil
		}
		path := s.files[s.list.cursor].Path
		if err := s.ctrl.ToggleFile(path); err != nil {
			logger.Warn("Toggling %s: %v", path, err)
		}
	}
	return nil
}

// View renders the files step.
func (s *FilesStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.search.View() + "\n")
	b.WriteString(st.Subtitle.Render(fmt.Sprintf("%d selected · %d shown", len(s.selected), len(s.files))) + "\n\n")

	if len(s.files) == 0 {
		msg := "No files on this branch"
		if s.ctrl.FileFilter() != "" {
			msg = "No files match your filter"
		}
		b.WriteString(st.ItemMuted.Italic(true).Render(msg) + "\n")
	} else {
		start, end := s.list.bounds(len(s.files))
		for i := start; i < end; i++ {
			f := s.files[i]
			box := st.Unchecked.Render("[ ]")
			if _, ok := s.selected[f.Path]; ok {
				box = st.Checked.Render("[✓]")
			}
			size := st.ItemMuted.Render(formatSize(f.Size))
			line := box + " " + truncate(f.Path, s.width-16) + " " + size
			if i == s.list.cursor {
				b.WriteString(st.ItemSelected.Render("▸ ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n")
	if s.searchFocused {
		b.WriteString(renderHintBar("type", "filter", "enter/tab", "done", "esc", "back"))
	} else {
		b.WriteString(renderHintBar(
			"↑↓/j/k", "navigate",
			"space", "toggle",
			"/", "filter",
			"enter", "continue",
			"esc", "back",
		))
	}
	return b.String()
}

// formatSize renders a byte count in the largest whole unit.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
