package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/forklift-dev/forklift/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonID identifies what a button does.
type ButtonID int

const (
	ButtonBack ButtonID = iota
	ButtonNext
)

// Button represents a single button in the button bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	focused int // -1 when the bar does not have focus
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		focused: -1,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetButtons replaces the buttons, keeping focus on the same position when
// it is still enabled.
func (b *ButtonBar) SetButtons(buttons []Button) {
	b.buttons = buttons
	if b.focused >= len(buttons) || (b.focused >= 0 && buttons[b.focused].State == ButtonDisabled) {
		b.focused = -1
		b.FocusFirst()
	}
}

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() bool {
	for i, btn := range b.buttons {
		if btn.State != ButtonDisabled {
			b.focused = i
			return true
		}
	}
	return false
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() bool {
	for i := len(b.buttons) - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focused = i
			return true
		}
	}
	return false
}

// FocusNext moves focus right. It returns false when already at the last
// enabled button.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focused + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focused = i
			return true
		}
	}
	return false
}

// FocusPrev moves focus left. It returns false when already at the first
// enabled button.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focused - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focused = i
			return true
		}
	}
	return false
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() {
	b.focused = -1
}

// FocusedButton returns the focused button, or false when none is.
func (b *ButtonBar) FocusedButton() (Button, bool) {
	if b.focused < 0 || b.focused >= len(b.buttons) {
		return Button{}, false
	}
	return b.buttons[b.focused], true
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	t := theme.Current()
	base := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)
	normalStyle := base.
		Foreground(lipgloss.Color(t.FgBase)).
		Background(lipgloss.Color(t.BgSurface0))
	disabledStyle := base.
		Foreground(lipgloss.Color(t.BgOverlay)).
		Background(lipgloss.Color(t.BgMantle))
	focusedStyle := base.
		Foreground(lipgloss.Color(t.BgBase)).
		Background(lipgloss.Color(t.Tertiary)).
		Bold(true)

	rendered := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		switch {
		case btn.State == ButtonDisabled:
			rendered = append(rendered, disabledStyle.Render(btn.Label))
		case i == b.focused || btn.State == ButtonFocused:
			rendered = append(rendered, focusedStyle.Render(btn.Label))
		default:
			rendered = append(rendered, normalStyle.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// CreateBackNextButtons creates the standard Back/Next pair. On the first
// step Back reads "Cancel".
func CreateBackNextButtons(first, nextEnabled bool, nextLabel string) []Button {
	backLabel := "← Back"
	if first {
		backLabel = "Cancel"
	}

	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}

	return []Button{
		{ID: ButtonBack, Label: backLabel, State: ButtonNormal},
		{ID: ButtonNext, Label: nextLabel, State: nextState},
	}
}
