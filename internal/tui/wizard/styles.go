package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/forklift-dev/forklift/internal/tui/theme"
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "enter", "select", "esc", "back")
// Returns: "↑↓ navigate • enter select • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// newInput creates a single-line input styled like the rest of the wizard.
func newInput(placeholder string, width int) textinput.Model {
	t := theme.Current()
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(width)
	return ti
}

// fieldLabel renders a label above an input, highlighted when focused.
func fieldLabel(label string, focused bool) string {
	s := theme.Current().S()
	if focused {
		return s.ItemSelected.Render(label)
	}
	return s.Subtitle.Render(label)
}

// truncate cuts s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// listWindow keeps a cursor visible inside a fixed-height list.
type listWindow struct {
	cursor int
	offset int
	height int
}

func (w *listWindow) clamp(n int) {
	if w.height < 1 {
		w.height = 1
	}
	w.cursor = max(0, min(w.cursor, n-1))
	if w.cursor < w.offset {
		w.offset = w.cursor
	}
	if w.cursor >= w.offset+w.height {
		w.offset = w.cursor - w.height + 1
	}
	w.offset = max(0, min(w.offset, n-w.height))
}

func (w *listWindow) up(n int) {
	w.cursor--
	w.clamp(n)
}

func (w *listWindow) down(n int) {
	w.cursor++
	w.clamp(n)
}

// bounds returns the visible slice range.
func (w *listWindow) bounds(n int) (start, end int) {
	w.clamp(n)
	return w.offset, min(n, w.offset+w.height)
}
