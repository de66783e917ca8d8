package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// InterpolateColor blends between two hex colors based on position (0.0 to 1.0)
func InterpolateColor(colorA, colorB string, pos float64) string {
	r1, g1, b1 := ParseHexColor(colorA)
	r2, g2, b2 := ParseHexColor(colorB)

	r := uint8(float64(r1)*(1-pos) + float64(r2)*pos)
	g := uint8(float64(g1)*(1-pos) + float64(g2)*pos)
	b := uint8(float64(b1)*(1-pos) + float64(b2)*pos)

	return FormatHexColor(r, g, b)
}

// ParseHexColor extracts RGB values from hex color string.
// Malformed input yields black.
func ParseHexColor(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")

	var r, g, b uint8
	if len(hex) == 6 {
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return 0, 0, 0
		}
	}
	return r, g, b
}

// FormatHexColor converts RGB values to hex color string
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ApplyGradient colours each rune of every line of text along a horizontal
// gradient from colorA to colorB.
func ApplyGradient(text, colorA, colorB string) string {
	lines := strings.Split(text, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	if width < 2 {
		width = 2
	}

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, r := range []rune(line) {
			if r == ' ' {
				sb.WriteRune(r)
				continue
			}
			pos := float64(j) / float64(width-1)
			color := InterpolateColor(colorA, colorB, pos)
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
	}
	return sb.String()
}

// LabelStyle colours a GitHub label badge. hex may omit the leading '#'.
// Text is dark or light depending on the background's luminance.
func LabelStyle(hex string) lipgloss.Style {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	r, g, b := ParseHexColor(hex)
	fg := "#11111b"
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) < 128 {
		fg = "#cdd6f4"
	}
	return Current().S().Badge.
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(fg))
}
