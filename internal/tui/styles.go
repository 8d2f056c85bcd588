// internal/tui/styles.go

package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("#D97706") // gravel orange
	colorMuted   = lipgloss.Color("#8A8A8A")
	colorError   = lipgloss.Color("#DC2626")
	colorSuccess = lipgloss.Color("#16A34A")
	colorMine    = lipgloss.Color("#F59E0B")
	colorBadge   = lipgloss.Color("#EF4444")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	unreadStyle   = lipgloss.NewStyle().Bold(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(colorBadge).Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2).
			Width(56)

	celebrationStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(colorSuccess).
				Padding(1, 4).
				Align(lipgloss.Center)

	mineStyle   = lipgloss.NewStyle().Foreground(colorMine)
	theirsStyle = lipgloss.NewStyle()
)
