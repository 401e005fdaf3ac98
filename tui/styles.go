package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#2E7D32")
	ColorSecondary = lipgloss.Color("#81C784")
	ColorMuted     = lipgloss.Color("#8A8A8A")
	ColorText      = lipgloss.Color("#E0E0E0")
	ColorError     = lipgloss.Color("#E57373")
	ColorBorder    = lipgloss.Color("#4E4E4E")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	textStyle  = lipgloss.NewStyle().Foreground(ColorText)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorError).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
