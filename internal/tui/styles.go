package tui

import "github.com/charmbracelet/lipgloss"

// Frame insets: rounded border plus padding.
const (
	frameTop  = 2
	frameLeft = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fffafa")).
			Background(lipgloss.Color("#d6336c")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6336c")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c2255c"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f783ac")).
			Padding(1, 2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#d6336c")).
			Padding(1, 3).
			Align(lipgloss.Center)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fffafa")).
			Background(lipgloss.Color("#d6336c")).
			Padding(0, 2)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f783ac")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(5).
			Align(lipgloss.Center)

	cursorCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#d6336c"))

	redSuitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e03131")).Bold(true)
	royalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59f00")).Bold(true)
	matchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("245"))

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("#d6336c")).
			Bold(true).
			Underline(true)

	paddleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d6336c"))

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6336c"))
)
