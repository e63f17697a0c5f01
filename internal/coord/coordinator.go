// Package coord runs the background refresh loop for the dashboard.
package coord

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/companion/internal/logging"
	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
	"github.com/abelbrown/companion/internal/snapshot"
	"github.com/abelbrown/companion/internal/ui"
)

// defaultInterval is used when the configured cadence is missing.
const defaultInterval = 5 * time.Minute

// maxConcurrentRefreshes bounds the per-cycle fan-out.
const maxConcurrentRefreshes = 4

// Coordinator refreshes the schedule and news stores on a fixed cadence
// and snapshots the results. Context cancellation is the ONLY stop
// mechanism.
type Coordinator struct {
	schedule *schedule.Store
	news     *news.Store
	snap     *snapshot.Store // optional: nil disables snapshots
	interval time.Duration
	wg       sync.WaitGroup
}

// New creates a Coordinator. snap may be nil.
func New(scheduleStore *schedule.Store, newsStore *news.Store, snap *snapshot.Store, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Coordinator{
		schedule: scheduleStore,
		news:     newsStore,
		snap:     snap,
		interval: interval,
	}
}

// Start begins background refreshing. Performs an initial refresh
// immediately, then one per interval. program may be nil (tests).
func (c *Coordinator) Start(ctx context.Context, program *tea.Program) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.Refresh(ctx, program)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Refresh(ctx, program)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Refresh runs one full cycle: every collection concurrently, a snapshot
// of whatever succeeded, then completion messages. Individual load
// failures never abort the cycle; the stores keep their stale items and
// carry the error in their state.
func (c *Coordinator) Refresh(ctx context.Context, program *tea.Program) {
	start := time.Now()

	var apptErr, eventErr, medErr error
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentRefreshes)
	g.Go(func() error { apptErr = c.schedule.LoadAppointments(ctx); return nil })
	g.Go(func() error { eventErr = c.schedule.LoadEvents(ctx); return nil })
	g.Go(func() error { medErr = c.schedule.LoadMedications(ctx, ""); return nil })
	g.Go(func() error { c.news.Refresh(ctx); return nil })
	g.Wait()

	c.saveSnapshot()
	logging.Debug("refresh cycle complete", "took", time.Since(start))

	if program != nil {
		program.Send(ui.ScheduleRefreshed{Err: errors.Join(apptErr, eventErr, medErr)})
		program.Send(ui.NewsRefreshed{})
	}
}

// saveSnapshot persists the stores' current contents. The stores retain
// stale items across failed loads, so the snapshot is always the last
// good data.
func (c *Coordinator) saveSnapshot() {
	if c.snap == nil {
		return
	}
	if err := c.snap.SaveSchedule(c.schedule.Snapshot()); err != nil {
		logging.Warn("schedule snapshot failed", "err", err)
	}
	if err := c.snap.SaveArticles(c.news.Articles()); err != nil {
		logging.Warn("article snapshot failed", "err", err)
	}
}
