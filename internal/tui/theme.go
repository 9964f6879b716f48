// Package tui renders terminal output for the gemini-bridge CLI.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// TermTheme holds all color values for a TUI theme.
type TermTheme struct {
	Name string

	Accent    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color
}

// DarkTheme is the default dark terminal theme.
var DarkTheme = TermTheme{
	Name:      "dark",
	Accent:    lipgloss.Color("#4285f4"),
	Success:   lipgloss.Color("#22c55e"),
	Error:     lipgloss.Color("#ef4444"),
	Primary:   lipgloss.Color("#e0e0e8"),
	Secondary: lipgloss.Color("#888888"),
	Dim:       lipgloss.Color("#5a5a70"),
}

// LightTheme is the light terminal theme.
var LightTheme = TermTheme{
	Name:      "light",
	Accent:    lipgloss.Color("#1a56c4"),
	Success:   lipgloss.Color("#15803d"),
	Error:     lipgloss.Color("#b91c1c"),
	Primary:   lipgloss.Color("#0f172a"),
	Secondary: lipgloss.Color("#374151"),
	Dim:       lipgloss.Color("#4b5563"),
}

// DetectTheme returns the appropriate theme based on flag, env, or detection.
func DetectTheme(flagVal string) TermTheme {
	switch strings.ToLower(flagVal) {
	case "dark":
		return DarkTheme
	case "light":
		return LightTheme
	}

	if env := os.Getenv("GEMINI_BRIDGE_THEME"); env != "" {
		switch strings.ToLower(env) {
		case "dark":
			return DarkTheme
		case "light":
			return LightTheme
		}
	}

	// COLORFGBG is "fg;bg"; 7 and 15 are light backgrounds.
	if colorfgbg := os.Getenv("COLORFGBG"); colorfgbg != "" {
		parts := strings.Split(colorfgbg, ";")
		if len(parts) >= 2 {
			bg := parts[len(parts)-1]
			if bg == "15" || bg == "7" {
				return LightTheme
			}
		}
	}

	return DarkTheme
}

// StyleSet contains pre-computed lipgloss styles derived from a theme.
type StyleSet struct {
	Theme TermTheme

	Title      lipgloss.Style
	AccentTxt  lipgloss.Style
	DimTxt     lipgloss.Style
	SuccessTxt lipgloss.Style
	ErrorTxt   lipgloss.Style
	PrimaryTxt lipgloss.Style

	SummaryKey   lipgloss.Style
	SummaryValue lipgloss.Style
	BorderedBox  lipgloss.Style
}

// NewStyleSet creates a StyleSet from a theme.
func NewStyleSet(theme TermTheme) *StyleSet {
	return &StyleSet{
		Theme: theme,

		Title:      lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		AccentTxt:  lipgloss.NewStyle().Foreground(theme.Accent),
		DimTxt:     lipgloss.NewStyle().Foreground(theme.Dim),
		SuccessTxt: lipgloss.NewStyle().Foreground(theme.Success),
		ErrorTxt:   lipgloss.NewStyle().Foreground(theme.Error),
		PrimaryTxt: lipgloss.NewStyle().Foreground(theme.Primary),

		SummaryKey: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Width(14),
		SummaryValue: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Dim).
			Padding(0, 1),
	}
}

// PlainStyleSet returns styles that render text unchanged, for pipes and
// redirected output.
func PlainStyleSet() *StyleSet {
	plain := lipgloss.NewStyle()
	return &StyleSet{
		Title:        plain,
		AccentTxt:    plain,
		DimTxt:       plain,
		SuccessTxt:   plain,
		ErrorTxt:     plain,
		PrimaryTxt:   plain,
		SummaryKey:   plain.Width(14),
		SummaryValue: plain,
		BorderedBox:  plain,
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
