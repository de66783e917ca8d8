package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	Subtitle    lipgloss.Style

	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	Item         lipgloss.Style
	ItemMuted    lipgloss.Style
	ItemSelected lipgloss.Style
	ItemCursor   lipgloss.Style

	Checked   lipgloss.Style
	Unchecked lipgloss.Style

	ErrorBanner   lipgloss.Style
	SuccessBanner lipgloss.Style

	StepActive   lipgloss.Style
	StepDone     lipgloss.Style
	StepInactive lipgloss.Style

	// Badge is the base for coloured labels; callers set the colours.
	Badge   lipgloss.Style
	Private lipgloss.Style
	Public  lipgloss.Style
}
