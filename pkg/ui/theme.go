package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// CellColor returns a heat-map fill for the terminal. Below ANSI256 the
// palette collapses to red/white/blue so the diverging reading survives.
func CellColor(hex string, variance float64) lipgloss.TerminalColor {
	if TermProfile >= colorprofile.ANSI256 {
		return lipgloss.Color(hex)
	}
	switch {
	case variance < 0:
		return lipgloss.ANSIColor(4)
	case variance > 0:
		return lipgloss.ANSIColor(1)
	default:
		return lipgloss.ANSIColor(7)
	}
}

var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorOutline = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
)

// Theme holds the styles used by the explorer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Title   lipgloss.Style
	Desc    lipgloss.Style
	Axis    lipgloss.Style
	Tooltip lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Outline lipgloss.Style
}

// DefaultTheme builds the explorer styles on the default renderer.
func DefaultTheme() Theme {
	return NewTheme(lipgloss.DefaultRenderer())
}

// NewTheme builds the explorer styles on r.
func NewTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: r,
		Title:    r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Desc:     r.NewStyle().Foreground(ColorSubtext),
		Axis:     r.NewStyle().Foreground(ColorMuted),
		Tooltip: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Foreground(ColorText).
			Padding(0, 1).
			Align(lipgloss.Center),
		Status:  r.NewStyle().Foreground(ColorSubtext).Italic(true),
		Error:   r.NewStyle().Foreground(ColorDanger).Bold(true),
		Outline: r.NewStyle().Foreground(ColorOutline).Bold(true),
	}
}
