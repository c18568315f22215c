// Package ui provides the visual styling for the Locobot interactive CLI.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#10182b")
	LightPrimary    = lipgloss.Color("#0d47a1")
	LightAccent     = lipgloss.Color("#00897b")
	LightMuted      = lipgloss.Color("#90a4ae")
	LightBorder     = lipgloss.Color("#cfd8dc")

	// Dark mode colors (the native look: 2045 terminal neon)
	DarkBackground = lipgloss.Color("#0b1020")
	DarkForeground = lipgloss.Color("#e6f1ff")
	DarkPrimary    = lipgloss.Color("#00e5ff")
	DarkAccent     = lipgloss.Color("#ff2bd6")
	DarkMuted      = lipgloss.Color("#4a5a78")
	DarkBorder     = lipgloss.Color("#27324d")

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the active color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme guesses the terminal background from COLORFGBG, defaulting to
// dark.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx == 7 || bgIdx >= 9 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles bundles the lipgloss styles used across the chat interface.
type Styles struct {
	Theme Theme

	Header    lipgloss.Style
	Badge     lipgloss.Style
	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Spinner   lipgloss.Style
	Content   lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	AgentTag  lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Background).
			Background(theme.Primary).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Prompt:    lipgloss.NewStyle().Foreground(theme.Primary),
		UserInput: lipgloss.NewStyle().Foreground(theme.Foreground),
		Spinner:   lipgloss.NewStyle().Foreground(theme.Accent),
		Content:   lipgloss.NewStyle().Padding(0, 1),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		Bold:      lipgloss.NewStyle().Bold(true),
		Error:     lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(Success),
		Warning:   lipgloss.NewStyle().Foreground(Warning),
		AgentTag: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
	}
}

// DefaultStyles returns styles for the auto-detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider draws a horizontal rule of the given width.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 80
	}
	return lipgloss.NewStyle().
		Foreground(s.Theme.Border).
		Render(strings.Repeat("─", width))
}
