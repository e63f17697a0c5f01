package schedule

import (
	"time"

	"github.com/abelbrown/companion/internal/api"
)

// dateTimeLayouts are the timestamp shapes the backend has been observed
// to emit. Tried in order; a value matching none of them normalizes to a
// nil When rather than an error.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWhen parses a backend timestamp string. Returns nil for empty or
// unparsable values.
func ParseWhen(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// FromAppointment normalizes an appointment record. The kind comes from
// the endpoint, except that the backend folds community events into the
// appointments collection and marks them with type "event".
func FromAppointment(a api.Appointment) Item {
	kind := KindAppointment
	if a.Type == string(KindEvent) {
		kind = KindEvent
	}
	return Item{
		ID:       a.ID,
		Kind:     kind,
		Title:    a.Title,
		When:     ParseWhen(a.DateTime),
		Location: a.Location,
		OwnerID:  a.SeniorID,
	}
}

// FromMedication normalizes a medication record. Medications carry a
// time-of-day label instead of a timestamp, so When stays nil.
func FromMedication(m api.Medication) Item {
	return Item{
		ID:        m.ID,
		Kind:      KindMedication,
		Title:     m.Name,
		TimeOfDay: m.Time,
		Dosage:    m.Dosage,
		Taken:     m.IsTaken,
		OwnerID:   m.SeniorID,
	}
}

// FromEvent normalizes a community event record.
func FromEvent(e api.Event) Item {
	return Item{
		ID:       e.ID,
		Kind:     KindEvent,
		Title:    e.Title,
		When:     ParseWhen(e.DateTime),
		Location: e.Location,
	}
}

// FromAppointments normalizes a slice of appointment records.
func FromAppointments(appts []api.Appointment) []Item {
	items := make([]Item, len(appts))
	for i, a := range appts {
		items[i] = FromAppointment(a)
	}
	return items
}

// FromMedications normalizes a slice of medication records.
func FromMedications(meds []api.Medication) []Item {
	items := make([]Item, len(meds))
	for i, m := range meds {
		items[i] = FromMedication(m)
	}
	return items
}

// FromEvents normalizes a slice of event records.
func FromEvents(events []api.Event) []Item {
	items := make([]Item, len(events))
	for i, e := range events {
		items[i] = FromEvent(e)
	}
	return items
}
