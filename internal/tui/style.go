package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#8B5CF6")
	accentColor  = lipgloss.Color("#10B981")
	warnColor    = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#64748B")
	textColor    = lipgloss.Color("#F8FAFC")
	bgDark       = lipgloss.Color("#0F172A")
	bgLight      = lipgloss.Color("#334155")
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(textColor).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(16).
			Foreground(textColor)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(bgLight).
			Padding(0, 1)

	focusedInputStyle = inputStyle.BorderForeground(primaryColor)

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(bgLight)

	focusedGridStyle = gridStyle.BorderForeground(primaryColor)

	buttonStyle = lipgloss.NewStyle().
			Background(bgLight).
			Foreground(textColor).
			Padding(0, 3).
			MarginRight(1)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	menuItemStyle = lipgloss.NewStyle().
			Background(accentColor).
			Foreground(bgDark).
			Bold(true).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	warnDialogStyle  = dialogStyle.BorderForeground(warnColor)
	errorDialogStyle = dialogStyle.BorderForeground(errorColor)

	dialogTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)
