package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored symbol
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// RenderPadRow renders a row of colored symbols with spacing
func RenderPadRow(colors [][3]uint8, symbol rune) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c, symbol))
	}
	return out.String()
}

// Bar describes a progress bar
type Bar struct {
	Width     int
	Full      rune
	Empty     rune
	FullColor [3]uint8
	RestColor [3]uint8
}

// Render draws the bar filled to frac (0-1)
func (b Bar) Render(frac float64) string {
	if b.Width <= 0 {
		return ""
	}
	frac = max(0, min(1, frac))
	filled := int(frac * float64(b.Width))

	full := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(b.FullColor)))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(b.RestColor)))
	return full.Render(strings.Repeat(string(b.Full), filled)) +
		rest.Render(strings.Repeat(string(b.Empty), b.Width-filled))
}

// FormatMillis renders a duration as m:ss.t
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d.%d", ms/60000, (ms/1000)%60, (ms/100)%10)
}

// RenderLegendItem renders a single legend item: "● Name - description"
func RenderLegendItem(color [3]uint8, symbol rune, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, symbol), name, desc)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
