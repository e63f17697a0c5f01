package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/companion/internal/api"
	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
)

// fakeClient satisfies both stores' backend interfaces.
type fakeClient struct {
	updated     []string
	joined      []string
	queries     []string
	updateErr   error
	medications []api.Medication
}

func (f *fakeClient) GetAppointments(ctx context.Context, seniorID string) ([]api.Appointment, error) {
	return nil, nil
}

func (f *fakeClient) GetMedications(ctx context.Context, seniorID string) ([]api.Medication, error) {
	return f.medications, nil
}

func (f *fakeClient) UpdateMedication(ctx context.Context, id, seniorID string, patch api.MedicationPatch) (api.Medication, error) {
	f.updated = append(f.updated, id)
	if f.updateErr != nil {
		return api.Medication{}, f.updateErr
	}
	return api.Medication{ID: id, IsTaken: *patch.IsTaken}, nil
}

func (f *fakeClient) GetEvents(ctx context.Context) ([]api.Event, error) {
	return nil, nil
}

func (f *fakeClient) JoinEvent(ctx context.Context, id string) error {
	f.joined = append(f.joined, id)
	return nil
}

func (f *fakeClient) GetNews(ctx context.Context, q api.NewsQuery) ([]api.Article, error) {
	f.queries = append(f.queries, q.Query)
	return nil, nil
}

func (f *fakeClient) GetProfile(ctx context.Context) (api.Profile, error) {
	return api.Profile{}, nil
}

func newTestApp(client *fakeClient) (App, *schedule.Store, *news.Store) {
	scheduleStore := schedule.NewStore(client)
	newsStore := news.NewStore(news.NewPipeline(client, nil))
	return NewApp(scheduleStore, newsStore, nil), scheduleStore, newsStore
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, app App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = app.Update(key(k))
		app = model.(App)
	}
	return app, cmd
}

func TestTabCyclesPanes(t *testing.T) {
	app, _, _ := newTestApp(&fakeClient{})

	if app.pane != PaneSchedule {
		t.Fatalf("initial pane = %v, want schedule", app.pane)
	}
	app, _ = press(t, app, "tab")
	if app.pane != PaneMedications {
		t.Errorf("after one tab pane = %v, want medications", app.pane)
	}
	app, _ = press(t, app, "tab", "tab")
	if app.pane != PaneSchedule {
		t.Errorf("after three tabs pane = %v, want schedule again", app.pane)
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	app, scheduleStore, _ := newTestApp(&fakeClient{})
	when := time.Now().Add(time.Hour)
	scheduleStore.Seed([]schedule.Item{
		{ID: "a1", Kind: schedule.KindAppointment, Title: "Checkup", When: &when},
		{ID: "a2", Kind: schedule.KindAppointment, Title: "Dentist", When: &when},
	})

	app, _ = press(t, app, "down", "down", "down", "down")
	if app.cursor != 1 {
		t.Errorf("cursor = %d, want clamped to 1", app.cursor)
	}
	app, _ = press(t, app, "up", "up", "up")
	if app.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", app.cursor)
	}
}

func TestToggleKeySendsMedicationToggled(t *testing.T) {
	client := &fakeClient{}
	app, scheduleStore, _ := newTestApp(client)
	scheduleStore.Seed([]schedule.Item{
		{ID: "m1", Kind: schedule.KindMedication, Title: "Aspirin"},
	})

	_, cmd := press(t, app, "tab", "t")
	if cmd == nil {
		t.Fatal("t on a medication should return a command")
	}
	result := cmd()
	msg, ok := result.(MedicationToggled)
	if !ok {
		t.Fatalf("command produced %T, want MedicationToggled", result)
	}
	if msg.ID != "m1" || msg.Err != nil {
		t.Errorf("got %+v, want id m1 with nil error", msg)
	}
	if len(client.updated) != 1 || client.updated[0] != "m1" {
		t.Errorf("backend updates = %v, want [m1]", client.updated)
	}
}

func TestToggleFailureShowsErrorLine(t *testing.T) {
	client := &fakeClient{updateErr: errors.New("backend down")}
	app, scheduleStore, _ := newTestApp(client)
	scheduleStore.Seed([]schedule.Item{
		{ID: "m1", Kind: schedule.KindMedication, Title: "Aspirin"},
	})

	app, cmd := press(t, app, "tab", "t")
	model, _ := app.Update(cmd())
	app = model.(App)

	if app.errLine == "" {
		t.Fatal("failed toggle should surface an error line")
	}
	if !strings.Contains(app.View(), "backend down") {
		t.Error("view should include the toggle error")
	}
}

func TestEnterJoinsSelectedEvent(t *testing.T) {
	client := &fakeClient{}
	app, scheduleStore, _ := newTestApp(client)
	when := time.Now().Add(time.Hour)
	scheduleStore.Seed([]schedule.Item{
		{ID: "e1", Kind: schedule.KindEvent, Title: "Bingo Night", When: &when},
	})

	_, cmd := press(t, app, "enter")
	if cmd == nil {
		t.Fatal("enter on an event should return a command")
	}
	if msg := cmd().(ScheduleRefreshed); msg.Err != nil {
		t.Fatalf("join failed: %v", msg.Err)
	}
	if len(client.joined) != 1 || client.joined[0] != "e1" {
		t.Errorf("backend joins = %v, want [e1]", client.joined)
	}
}

func TestSearchSubmitsQuery(t *testing.T) {
	client := &fakeClient{}
	app, _, _ := newTestApp(client)

	app, _ = press(t, app, "tab", "tab", "/")
	if !app.searching {
		t.Fatal("/ on the news pane should enter search mode")
	}
	app, _ = press(t, app, "walk")
	app, cmd := press(t, app, "enter")
	if app.searching {
		t.Error("submitting should leave search mode")
	}
	if cmd == nil {
		t.Fatal("submitting a query should return a command")
	}
	if msg := cmd().(NewsRefreshed); msg.Err != nil {
		t.Fatalf("search failed: %v", msg.Err)
	}
	if len(client.queries) != 1 || client.queries[0] != "walk" {
		t.Errorf("backend queries = %v, want [walk]", client.queries)
	}
}

func TestSearchEscapeCancels(t *testing.T) {
	app, _, _ := newTestApp(&fakeClient{})

	app, _ = press(t, app, "tab", "tab", "/", "walk", "esc")
	if app.searching {
		t.Error("esc should leave search mode")
	}
}

func TestViewRendersSeededSchedule(t *testing.T) {
	app, scheduleStore, _ := newTestApp(&fakeClient{})
	when := time.Now().Add(2 * time.Hour)
	scheduleStore.Seed([]schedule.Item{
		{ID: "a1", Kind: schedule.KindAppointment, Title: "Checkup", When: &when, Location: "Clinic"},
	})

	view := app.View()
	if !strings.Contains(view, "Checkup") {
		t.Error("view should list the seeded appointment")
	}
	if !strings.Contains(view, "left") {
		t.Error("view should include the countdown label")
	}
}

func TestViewMarksTakenMedications(t *testing.T) {
	app, scheduleStore, _ := newTestApp(&fakeClient{})
	scheduleStore.Seed([]schedule.Item{
		{ID: "m1", Kind: schedule.KindMedication, Title: "Aspirin", Taken: true},
		{ID: "m2", Kind: schedule.KindMedication, Title: "Lisinopril"},
	})

	app, _ = press(t, app, "tab")
	view := app.View()
	if !strings.Contains(view, "[x] Aspirin") {
		t.Error("taken medication should render checked")
	}
	if !strings.Contains(view, "[ ] Lisinopril") {
		t.Error("pending medication should render unchecked")
	}
}
