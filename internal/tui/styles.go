package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("205")
	secondary = lipgloss.Color("63")
	subtle    = lipgloss.Color("240")
	errColor  = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1)

	sideStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 2).
			Width(34)

	leaderStyle = sideStyle.BorderForeground(secondary)

	nameStyle    = lipgloss.NewStyle().Bold(true)
	counterStyle = lipgloss.NewStyle().Bold(true).Foreground(secondary)
	mutedStyle   = lipgloss.NewStyle().Foreground(subtle)
	errorStyle   = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)
