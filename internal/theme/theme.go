package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary Color = "99" // Purple - titles, headers
	ColorMuted   Color = "241"
	ColorSubtle  Color = "245"
)

// Semantic colors
const (
	ColorError   Color = "196"
	ColorWarning Color = "178"
	ColorSuccess Color = "2"
)

// Ticket status colors
const (
	ColorBacklog     Color = "8"   // Gray
	ColorReady       Color = "33"  // Blue
	ColorInProgress  Color = "226" // Yellow
	ColorAIReview    Color = "205" // Pink
	ColorHumanReview Color = "141" // Purple
	ColorDone        Color = "46"  // Green
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSubtle)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)
)

var statusStyles = map[string]lipgloss.Style{
	"backlog":      lipgloss.NewStyle().Foreground(ColorBacklog),
	"ready":        lipgloss.NewStyle().Foreground(ColorReady),
	"in_progress":  lipgloss.NewStyle().Foreground(ColorInProgress),
	"ai_review":    lipgloss.NewStyle().Foreground(ColorAIReview),
	"human_review": lipgloss.NewStyle().Foreground(ColorHumanReview),
	"done":         lipgloss.NewStyle().Foreground(ColorDone),
}

// StatusStyle returns the style for a ticket status name
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

var sessionStyles = map[string]lipgloss.Style{
	"idle":         lipgloss.NewStyle().Foreground(ColorBacklog),
	"analyzing":    lipgloss.NewStyle().Foreground(ColorReady),
	"implementing": lipgloss.NewStyle().Foreground(ColorInProgress),
	"testing":      lipgloss.NewStyle().Foreground(ColorAIReview),
	"committing":   lipgloss.NewStyle().Foreground(ColorHumanReview),
	"reviewing":    lipgloss.NewStyle().Foreground(ColorHumanReview),
	"done":         lipgloss.NewStyle().Foreground(ColorDone),
}

// SessionStateStyle returns the style for a session state name
func SessionStateStyle(state string) lipgloss.Style {
	if s, ok := sessionStyles[state]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
