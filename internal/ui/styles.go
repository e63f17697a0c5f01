package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application. Large type and strong contrast on
// purpose: the primary audience reads this on big fonts.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("203") // Red
)

// TitleBar style for the pane headers.
var TitleBar = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// TakenItem style for medications already taken today.
var TakenItem = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Padding(0, 1)

// CountdownLabel style for the time-remaining suffix.
var CountdownLabel = lipgloss.NewStyle().
	Foreground(colorHighlight)

// OverdueLabel style for overdue items.
var OverdueLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWarning)

// CategoryBadge style for news category tags.
var CategoryBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// ErrorLine style for the store error indicator. Shown alongside stale
// items, never instead of them.
var ErrorLine = lipgloss.NewStyle().
	Foreground(colorWarning).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in the status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)
