package coord

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/companion/internal/api"
	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
	"github.com/abelbrown/companion/internal/snapshot"
)

// fakeBackend satisfies both schedule.Backend and news.Backend.
type fakeBackend struct {
	mu      sync.Mutex
	fetched map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fetched: make(map[string]int)}
}

func (f *fakeBackend) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched[key]++
}

func (f *fakeBackend) counts(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[key]
}

func (f *fakeBackend) GetAppointments(ctx context.Context, seniorID string) ([]api.Appointment, error) {
	f.count("appointments")
	return []api.Appointment{{ID: "a1", Title: "Checkup", DateTime: "2025-06-10T09:30:00Z"}}, nil
}

func (f *fakeBackend) GetMedications(ctx context.Context, seniorID string) ([]api.Medication, error) {
	f.count("medications")
	return []api.Medication{{ID: "m1", Name: "Aspirin", Time: "08:00"}}, nil
}

func (f *fakeBackend) UpdateMedication(ctx context.Context, id, seniorID string, patch api.MedicationPatch) (api.Medication, error) {
	return api.Medication{}, nil
}

func (f *fakeBackend) GetEvents(ctx context.Context) ([]api.Event, error) {
	f.count("events")
	return []api.Event{{ID: "e1", Title: "Bingo", DateTime: "2025-06-12T18:00:00Z"}}, nil
}

func (f *fakeBackend) JoinEvent(ctx context.Context, id string) error { return nil }

func (f *fakeBackend) GetNews(ctx context.Context, q api.NewsQuery) ([]api.Article, error) {
	f.count("news:" + q.Category)
	return []api.Article{{Title: "N", URL: "http://example.com/n", PublishedAt: "2025-06-01T10:00:00Z"}}, nil
}

func (f *fakeBackend) GetProfile(ctx context.Context) (api.Profile, error) {
	return api.Profile{NewsCategories: "health"}, nil
}

func newStores(backend *fakeBackend) (*schedule.Store, *news.Store) {
	return schedule.NewStore(backend), news.NewStore(news.NewPipeline(backend, nil))
}

func TestRefreshLoadsEveryCollection(t *testing.T) {
	backend := newFakeBackend()
	scheduleStore, newsStore := newStores(backend)

	c := New(scheduleStore, newsStore, nil, time.Minute)
	c.Refresh(context.Background(), nil) // nil program is fine

	for _, key := range []string{"appointments", "events", "medications", "news:health"} {
		if backend.counts(key) != 1 {
			t.Errorf("%s fetched %d times, want 1", key, backend.counts(key))
		}
	}
	if len(scheduleStore.Upcoming()) != 2 {
		t.Errorf("expected 2 upcoming items, got %d", len(scheduleStore.Upcoming()))
	}
	if len(newsStore.Articles()) != 1 {
		t.Errorf("expected 1 article, got %d", len(newsStore.Articles()))
	}
}

func TestRefreshWritesSnapshot(t *testing.T) {
	backend := newFakeBackend()
	scheduleStore, newsStore := newStores(backend)

	snap, err := snapshot.Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()

	c := New(scheduleStore, newsStore, snap, time.Minute)
	c.Refresh(context.Background(), nil)

	items, err := snap.LoadSchedule()
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 snapshot items, got %d", len(items))
	}
	articles, err := snap.LoadArticles()
	if err != nil {
		t.Fatalf("LoadArticles failed: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("expected 1 snapshot article, got %d", len(articles))
	}
}

func TestStartAndWaitStopOnCancel(t *testing.T) {
	backend := newFakeBackend()
	scheduleStore, newsStore := newStores(backend)

	ctx, cancel := context.WithCancel(context.Background())
	c := New(scheduleStore, newsStore, nil, time.Hour)
	c.Start(ctx, nil)

	// Initial refresh happens promptly.
	deadline := time.Now().Add(2 * time.Second)
	for backend.counts("appointments") == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if backend.counts("appointments") == 0 {
		t.Fatal("initial refresh never ran")
	}

	cancel()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}
