package tui

import "github.com/charmbracelet/lipgloss"

// Palette colours.
var (
	colourPrimary   = lipgloss.Color("#7C3AED")
	colourSecondary = lipgloss.Color("#06B6D4")
	colourText      = lipgloss.Color("#CDD6F4")
	colourMuted     = lipgloss.Color("#6C7086")
	colourSuccess   = lipgloss.Color("#A6E3A1")
	colourWarning   = lipgloss.Color("#F9E2AF")
	colourError     = lipgloss.Color("#F38BA8")
	colourBorder    = lipgloss.Color("#45475A")
)

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	URL      lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Input    lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(colourSecondary),
		Normal:   lipgloss.NewStyle().Foreground(colourText),
		Muted:    lipgloss.NewStyle().Foreground(colourMuted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(colourText).Background(colourPrimary),
		URL:      lipgloss.NewStyle().Underline(true).Foreground(colourSecondary),
		Error:    lipgloss.NewStyle().Foreground(colourError),
		Success:  lipgloss.NewStyle().Foreground(colourSuccess),
		Warning:  lipgloss.NewStyle().Foreground(colourWarning),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 1),
	}
}
