package tui

import "charm.land/lipgloss/v2"

var (
	colorPrimary = lipgloss.Color("#38BDF8")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorText    = lipgloss.Color("#F8FAFC")
	colorDim     = lipgloss.Color("#94A3B8")
	colorBorder  = lipgloss.Color("#334155")
	colorCard    = lipgloss.Color("#1E293B")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	hintStyle     = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	answerStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	optionStyle   = lipgloss.NewStyle().Foreground(colorText)
	correctStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	wrongStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	cardStyle = lipgloss.NewStyle().
		Background(colorCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2)
)
