// Package schedule merges the backend's heterogeneous calendar resources
// (medications, appointments, community events) into one canonical item
// shape and owns the in-memory collections behind the schedule view.
package schedule

import (
	"time"

	"github.com/abelbrown/companion/internal/timeleft"
)

// Kind identifies which backend resource an Item came from.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindAppointment Kind = "appointment"
	KindEvent       Kind = "event"
)

// Item is the unified schedule entry. It is derived, never persisted back:
// the backend resource it was normalized from stays the record of truth.
type Item struct {
	ID    string
	Kind  Kind
	Title string

	// When is the due timestamp. Nil for medications, which the backend
	// keys by a time-of-day label instead of a date.
	When *time.Time

	// TimeOfDay is the medication dose label ("08:00", "evening").
	TimeOfDay string

	Location string
	Dosage   string

	// Taken is meaningful only for KindMedication; always false otherwise.
	Taken bool

	// OwnerID is the senior this item belongs to in a caregiver's
	// multi-senior view. Empty means the authenticated user.
	OwnerID string
}

// Countdown returns the human time-remaining label for the item, or ""
// when the item has no due timestamp. Recomputed on every read; the label
// is never stored on the item.
func (i Item) Countdown(now time.Time) string {
	if i.When == nil {
		return ""
	}
	return timeleft.Until(*i.When, now)
}
