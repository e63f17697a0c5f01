package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/companion/internal/api"
	"github.com/abelbrown/companion/internal/config"
	"github.com/abelbrown/companion/internal/coord"
	"github.com/abelbrown/companion/internal/logging"
	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
	"github.com/abelbrown/companion/internal/snapshot"
	"github.com/abelbrown/companion/internal/ui"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Data directory: ~/.companion/
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if err := logging.Init(dataDir); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		// Load already fell back to defaults; just record what happened.
		logging.Warn("config load failed, using defaults", "err", err)
	}

	// Snapshot store: last good schedule and news, shown before the
	// first refresh lands or when the backend is unreachable.
	snap, err := snapshot.Open(filepath.Join(dataDir, "companion.db"))
	if err != nil {
		log.Fatalf("Failed to open snapshot database: %v", err)
	}
	defer snap.Close()

	client := api.NewClient(cfg.Backend.URL, cfg.Backend.Token)

	scheduleStore := schedule.NewStore(client)
	if items, err := snap.LoadSchedule(); err != nil {
		logging.Warn("schedule snapshot unreadable", "err", err)
	} else {
		scheduleStore.Seed(items)
	}

	pipeline := news.NewPipeline(client, cfg.News.RSSExtras)
	if cfg.News.Categories != "" {
		pipeline.SetCategoryOverride(cfg.News.Categories)
	}
	newsStore := news.NewStore(pipeline)
	if articles, err := snap.LoadArticles(); err != nil {
		logging.Warn("article snapshot unreadable", "err", err)
	} else {
		newsStore.Seed(articles)
	}

	coordinator := coord.New(scheduleStore, newsStore, snap,
		time.Duration(cfg.RefreshMinutes)*time.Minute)

	var program *tea.Program
	app := ui.NewApp(scheduleStore, newsStore, func() {
		coordinator.Refresh(ctx, program)
	})
	program = tea.NewProgram(app, tea.WithAltScreen())

	coordinator.Start(ctx, program)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}

	// Graceful shutdown
	cancel()
	coordinator.Wait()
}
