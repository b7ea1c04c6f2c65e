package tui

import "github.com/charmbracelet/lipgloss"

var (
	surface  = lipgloss.Color("#45475a")
	text     = lipgloss.Color("#cdd6f4")
	subtext  = lipgloss.Color("#a6adc8")
	lavender = lipgloss.Color("#b4befe")
	sapphire = lipgloss.Color("#74c7ec")
	green    = lipgloss.Color("#a6e3a1")
	peach    = lipgloss.Color("#fab387")
	red      = lipgloss.Color("#f38ba8")

	appStyle = lipgloss.NewStyle().Foreground(text).Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Foreground(sapphire).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(subtext)
	errorStyle = lipgloss.NewStyle().Foreground(red)

	cardStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(surface).
		Padding(0, 1).
		Width(60)

	activeCardStyle = cardStyle.BorderForeground(lavender)

	barFill    = lipgloss.NewStyle().Foreground(green)
	barLowFill = lipgloss.NewStyle().Foreground(red).Bold(true)
	barEmpty   = lipgloss.NewStyle().Foreground(surface)

	stressStyle = lipgloss.NewStyle().
		Foreground(peach).
		Bold(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(peach).
		Padding(0, 2)
)
