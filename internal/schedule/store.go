package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abelbrown/companion/internal/api"
	"github.com/abelbrown/companion/internal/logging"
	"github.com/abelbrown/companion/internal/optimistic"
)

// Backend is the slice of the API client the store needs. Declared here
// so tests can substitute a fake.
type Backend interface {
	GetAppointments(ctx context.Context, seniorID string) ([]api.Appointment, error)
	GetMedications(ctx context.Context, seniorID string) ([]api.Medication, error)
	UpdateMedication(ctx context.Context, id, seniorID string, patch api.MedicationPatch) (api.Medication, error)
	GetEvents(ctx context.Context) ([]api.Event, error)
	JoinEvent(ctx context.Context, id string) error
}

// Status is the lifecycle of a collection: Idle until the first load,
// Loading while a fetch is outstanding, then Ready or Failed. A Failed
// collection keeps its previous items - stale data beats a blank screen.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// State is a read-only snapshot of a collection's lifecycle for the UI.
type State struct {
	Status Status
	Err    string
}

// collection holds one resource slice together with its load sequencing.
// issued counts loads started, applied the newest load that has committed.
// A completion with seq <= applied lost the race to a later load and is
// discarded wholesale so it cannot resurrect deleted items.
type collection struct {
	items   []Item
	status  Status
	err     string
	issued  uint64
	applied uint64
}

// ErrToggleInFlight is returned when a medication toggle is requested
// while a previous toggle of the same medication has not settled.
var ErrToggleInFlight = errors.New("a change to this medication is already in flight")

// ErrNotFound is returned when the targeted item is not in the collection.
var ErrNotFound = errors.New("item not found")

// Store owns the schedule collections for the session. All methods are
// safe for concurrent use; loads may overlap and follow a strict
// last-initiated-wins rule per collection.
type Store struct {
	mu      sync.Mutex
	backend Backend

	appointments collection
	events       collection
	medications  collection

	// toggling guards at most one in-flight taken-toggle per medication.
	toggling map[string]bool
}

// NewStore creates a Store backed by the given client.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:  backend,
		toggling: make(map[string]bool),
	}
}

// beginLoad marks a collection loading and allocates its sequence number.
func (s *Store) beginLoad(c *collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.issued++
	c.status = StatusLoading
	return c.issued
}

// finishLoad commits a load result unless a later load already committed.
// On error the previous items are retained and only the state changes.
func (s *Store) finishLoad(c *collection, seq uint64, items []Item, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= c.applied {
		// A more recently initiated load has already committed; this
		// result is stale, including its error.
		return
	}
	c.applied = seq
	if err != nil {
		c.status = StatusFailed
		c.err = err.Error()
		return
	}
	c.items = items
	c.status = StatusReady
	c.err = ""
}

// LoadAppointments fetches and replaces the appointment slice wholesale.
// The returned error is also recorded in the collection state; callers
// that only render may ignore it.
func (s *Store) LoadAppointments(ctx context.Context) error {
	seq := s.beginLoad(&s.appointments)
	appts, err := s.backend.GetAppointments(ctx, "")
	if err != nil {
		logging.Warn("appointment load failed", "err", err)
		s.finishLoad(&s.appointments, seq, nil, err)
		return err
	}
	s.finishLoad(&s.appointments, seq, FromAppointments(appts), nil)
	return nil
}

// LoadEvents fetches and replaces the community event slice wholesale.
func (s *Store) LoadEvents(ctx context.Context) error {
	seq := s.beginLoad(&s.events)
	events, err := s.backend.GetEvents(ctx)
	if err != nil {
		logging.Warn("event load failed", "err", err)
		s.finishLoad(&s.events, seq, nil, err)
		return err
	}
	s.finishLoad(&s.events, seq, FromEvents(events), nil)
	return nil
}

// LoadMedications fetches and replaces the medication slice wholesale.
// ownerID scopes the fetch for caregiver views; the collection is
// replaced, not merged, so overlapping loads for different owners resolve
// to whichever load was initiated last.
func (s *Store) LoadMedications(ctx context.Context, ownerID string) error {
	seq := s.beginLoad(&s.medications)
	meds, err := s.backend.GetMedications(ctx, ownerID)
	if err != nil {
		logging.Warn("medication load failed", "err", err, "owner", ownerID)
		s.finishLoad(&s.medications, seq, nil, err)
		return err
	}
	s.finishLoad(&s.medications, seq, FromMedications(meds), nil)
	return nil
}

// ToggleTaken flips a medication's taken flag locally, then confirms the
// change with the backend. On failure the exact prior value is restored
// and the error returned; the UI sees the flip immediately either way.
func (s *Store) ToggleTaken(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.medications.items {
		if s.medications.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return fmt.Errorf("toggle medication %s: %w", id, ErrNotFound)
	}
	if s.toggling[id] {
		s.mu.Unlock()
		return ErrToggleInFlight
	}
	s.toggling[id] = true
	next := !s.medications.items[idx].Taken
	ownerID := s.medications.items[idx].OwnerID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.toggling, id)
		s.mu.Unlock()
	}()

	err := optimistic.Update(ctx,
		func() bool { return s.takenValue(id) },
		func(v bool) { s.setTaken(id, v) },
		next,
		func(ctx context.Context) error {
			med, err := s.backend.UpdateMedication(ctx, id, ownerID, api.MedicationPatch{IsTaken: &next})
			if err != nil {
				return err
			}
			// Reconcile with the canonical record the backend returned.
			s.reconcileMedication(med)
			return nil
		})
	if err != nil {
		logging.Warn("medication toggle failed, rolled back", "id", id, "err", err)
		s.mu.Lock()
		s.medications.err = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("failed to toggle medication: %w", err)
	}
	return nil
}

func (s *Store) takenValue(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.medications.items {
		if s.medications.items[i].ID == id {
			return s.medications.items[i].Taken
		}
	}
	return false
}

func (s *Store) setTaken(id string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.medications.items {
		if s.medications.items[i].ID == id {
			s.medications.items[i].Taken = v
			return
		}
	}
}

func (s *Store) reconcileMedication(med api.Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.medications.items {
		if s.medications.items[i].ID == med.ID {
			s.medications.items[i] = FromMedication(med)
			return
		}
	}
}

// JoinEvent signs the user up for an event and refreshes the event slice
// so attendance is reflected.
func (s *Store) JoinEvent(ctx context.Context, id string) error {
	if err := s.backend.JoinEvent(ctx, id); err != nil {
		s.mu.Lock()
		s.events.status = StatusFailed
		s.events.err = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("failed to join event: %w", err)
	}
	return s.LoadEvents(ctx)
}

// Upcoming returns appointments and events in chronological order, items
// without a timestamp last. A pure function of the backing collections,
// recomputed on every call.
func (s *Store) Upcoming() []Item {
	s.mu.Lock()
	out := make([]Item, 0, len(s.appointments.items)+len(s.events.items))
	for _, it := range s.appointments.items {
		if it.Kind == KindAppointment || it.Kind == KindEvent {
			out = append(out, it)
		}
	}
	out = append(out, s.events.items...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].When, out[j].When
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// Medications returns a copy of the medication slice.
func (s *Store) Medications() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.medications.items))
	copy(out, s.medications.items)
	return out
}

// AppointmentsState returns the appointment collection lifecycle.
func (s *Store) AppointmentsState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Status: s.appointments.status, Err: s.appointments.err}
}

// EventsState returns the event collection lifecycle.
func (s *Store) EventsState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Status: s.events.status, Err: s.events.err}
}

// MedicationsState returns the medication collection lifecycle.
func (s *Store) MedicationsState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Status: s.medications.status, Err: s.medications.err}
}

// Loading reports whether any collection has a fetch outstanding.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments.status == StatusLoading ||
		s.events.status == StatusLoading ||
		s.medications.status == StatusLoading
}

// Seed installs snapshot items without touching load sequencing. Used at
// startup to show the last good data before the first fetch settles.
func (s *Store) Seed(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		switch it.Kind {
		case KindMedication:
			s.medications.items = append(s.medications.items, it)
		case KindEvent:
			s.events.items = append(s.events.items, it)
		default:
			s.appointments.items = append(s.appointments.items, it)
		}
	}
}

// Snapshot returns every item the store currently holds, for persistence.
func (s *Store) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.appointments.items)+len(s.events.items)+len(s.medications.items))
	out = append(out, s.appointments.items...)
	out = append(out, s.events.items...)
	out = append(out, s.medications.items...)
	return out
}

// NextDue returns the soonest upcoming item after now, if any.
func (s *Store) NextDue(now time.Time) (Item, bool) {
	for _, it := range s.Upcoming() {
		if it.When != nil && it.When.After(now) {
			return it, true
		}
	}
	return Item{}, false
}
