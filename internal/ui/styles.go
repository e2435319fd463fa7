package ui

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	AdminIcon      = "👑"
	DoneIcon       = "✅"
	PendingIcon    = "⏳"
	DisconnectIcon = "🔌"
)

// Lipgloss styles shared across all screens
var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().MarginTop(1)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	viewerStyle = lipgloss.NewStyle().Bold(true)
)
