// Package snapshot persists the last good schedule and news batch.
//
// This is not a cache: exactly one batch per table, replaced wholesale on
// every successful refresh. Its only job is the cold-start and dead-backend
// path - showing the last data the backend confirmed instead of a blank
// screen.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB serializes
// access; each save runs in a single transaction.
package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
)

// Store holds the snapshot database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schedule_items (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		when_at DATETIME,
		time_of_day TEXT,
		location TEXT,
		dosage TEXT,
		taken INTEGER DEFAULT 0,
		owner_id TEXT
	);

	CREATE TABLE IF NOT EXISTS articles (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		image_url TEXT,
		description TEXT,
		source_name TEXT,
		published_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSchedule replaces the schedule snapshot with items, in order.
func (s *Store) SaveSchedule(items []schedule.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM schedule_items"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO schedule_items (position, id, kind, title, when_at, time_of_day, location, dosage, taken, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		var when any
		if item.When != nil {
			when = item.When.UTC()
		}
		if _, err := stmt.Exec(i, item.ID, string(item.Kind), item.Title, when,
			item.TimeOfDay, item.Location, item.Dosage, item.Taken, item.OwnerID); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	if err := touchMeta(tx, "schedule_saved_at"); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSchedule returns the schedule snapshot in saved order. An empty
// database yields an empty slice, not an error.
func (s *Store) LoadSchedule() ([]schedule.Item, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, title, when_at, time_of_day, location, dosage, taken, owner_id
		FROM schedule_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var items []schedule.Item
	for rows.Next() {
		var item schedule.Item
		var kind string
		var when sql.NullTime
		if err := rows.Scan(&item.ID, &kind, &item.Title, &when,
			&item.TimeOfDay, &item.Location, &item.Dosage, &item.Taken, &item.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Kind = schedule.Kind(kind)
		if when.Valid {
			t := when.Time
			item.When = &t
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveArticles replaces the article snapshot with the batch, in order.
func (s *Store) SaveArticles(articles []news.Article) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO articles (position, id, category, title, url, image_url, description, source_name, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range articles {
		var published any
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC()
		}
		if _, err := stmt.Exec(i, a.ID, a.Category, a.Title, a.URL,
			a.ImageURL, a.Description, a.SourceName, published); err != nil {
			return fmt.Errorf("failed to insert article %s: %w", a.ID, err)
		}
	}

	if err := touchMeta(tx, "articles_saved_at"); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadArticles returns the article snapshot in saved order.
func (s *Store) LoadArticles() ([]news.Article, error) {
	rows, err := s.db.Query(`
		SELECT id, category, title, url, image_url, description, source_name, published_at
		FROM articles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var articles []news.Article
	for rows.Next() {
		var a news.Article
		var published sql.NullTime
		if err := rows.Scan(&a.ID, &a.Category, &a.Title, &a.URL,
			&a.ImageURL, &a.Description, &a.SourceName, &published); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func touchMeta(tx *sql.Tx, key string) error {
	_, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to touch meta %s: %w", key, err)
	}
	return nil
}
