package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(11).
			Align(lipgloss.Center)

	EmptySlotStyle = CardStyle.
			BorderForeground(lipgloss.Color("#3A3A3A")).
			Foreground(lipgloss.Color("#3A3A3A"))

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262"))
)

// featureColors colour the third feature of classic cards.
var featureColors = []lipgloss.Color{"#FF6B6B", "#96CEB4", "#B388FF"}

// tokenColors tell players apart on the grid; they repeat past eight players.
var tokenColors = []lipgloss.Color{
	"#FFD700", "#04B575", "#4FC3F7", "#FF8A65",
	"#BA68C8", "#F06292", "#AED581", "#90A4AE",
}

func tokenStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(tokenColors[player%len(tokenColors)]).
		Bold(true)
}
