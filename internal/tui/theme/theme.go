// Package theme holds the colour palette and pre-built lipgloss styles
// shared by the terminal views.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgMantle   string
	BgBase     string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	styles     *Styles
	stylesOnce sync.Once
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the active theme.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		Subtitle:    lipgloss.NewStyle().Foreground(c(t.FgMuted)),

		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Tertiary)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),

		HintKey:       lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(c(t.BgSurface2)),

		Item:         lipgloss.NewStyle().Foreground(c(t.FgBase)),
		ItemMuted:    lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		ItemSelected: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		ItemCursor:   lipgloss.NewStyle().Foreground(c(t.BgBase)).Background(c(t.Tertiary)),

		Checked:   lipgloss.NewStyle().Foreground(c(t.Success)),
		Unchecked: lipgloss.NewStyle().Foreground(c(t.BgOverlay)),

		ErrorBanner: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(c(t.Error)).
			PaddingLeft(1),
		SuccessBanner: lipgloss.NewStyle().
			Foreground(c(t.Success)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(c(t.Success)).
			PaddingLeft(1),

		StepActive:   lipgloss.NewStyle().Foreground(c(t.BgBase)).Background(c(t.Primary)).Bold(true).Padding(0, 1),
		StepDone:     lipgloss.NewStyle().Foreground(c(t.Success)).Padding(0, 1),
		StepInactive: lipgloss.NewStyle().Foreground(c(t.BgOverlay)).Padding(0, 1),

		Badge:   lipgloss.NewStyle().Padding(0, 1),
		Private: lipgloss.NewStyle().Foreground(c(t.Warning)),
		Public:  lipgloss.NewStyle().Foreground(c(t.Success)),
	}
}
