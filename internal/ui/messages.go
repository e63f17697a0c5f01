// Package ui provides the Bubble Tea TUI for the companion dashboard.
package ui

// ScheduleRefreshed is sent when a background schedule refresh settles.
type ScheduleRefreshed struct {
	Err error
}

// NewsRefreshed is sent when a news refresh or search settles. Err is
// only set by searches; background refreshes never fail outright.
type NewsRefreshed struct {
	Err error
}

// MedicationToggled is sent when an optimistic taken-toggle settles.
// On error the store has already rolled the flag back; the UI only needs
// to re-render and show the message.
type MedicationToggled struct {
	ID  string
	Err error
}

// RefreshTick triggers a manual refresh cycle.
type RefreshTick struct{}
