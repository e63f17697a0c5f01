package news

import (
	"context"
	"sync"
)

// Status is the collection lifecycle, mirroring the schedule store's.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// State is a read-only lifecycle snapshot for the UI.
type State struct {
	Status Status
	Err    string
}

// Store owns the article batch for the session. Every refresh or search
// replaces the batch wholesale; overlapping operations follow the
// last-initiated-wins rule so a slow response cannot clobber a newer one.
type Store struct {
	mu       sync.Mutex
	pipeline *Pipeline

	articles []Article
	status   Status
	err      string
	issued   uint64
	applied  uint64
}

// NewStore creates a Store over the given pipeline.
func NewStore(pipeline *Pipeline) *Store {
	return &Store{pipeline: pipeline}
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.status = StatusLoading
	return s.issued
}

func (s *Store) finish(seq uint64, articles []Article, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return
	}
	s.applied = seq
	if err != nil {
		s.status = StatusFailed
		s.err = err.Error()
		return
	}
	s.articles = articles
	s.status = StatusReady
	s.err = ""
}

// Refresh fetches the merged feed for the user's categories. The pipeline
// absorbs every failure mode, so Refresh always ends Ready.
func (s *Store) Refresh(ctx context.Context) {
	seq := s.begin()
	articles := s.pipeline.FetchForUser(ctx)
	s.finish(seq, articles, nil)
}

// Search replaces the batch with results for a free-text query. Unlike
// Refresh, a failed search is surfaced: there is no sensible default for
// "the user asked for something specific and we couldn't get it".
func (s *Store) Search(ctx context.Context, query, category string) error {
	seq := s.begin()
	articles, err := s.pipeline.Search(ctx, query, category)
	s.finish(seq, articles, err)
	return err
}

// Articles returns a copy of the current batch.
func (s *Store) Articles() []Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// State returns the collection lifecycle.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Status: s.status, Err: s.err}
}

// Seed installs snapshot articles without touching sequencing, for
// startup display before the first refresh settles.
func (s *Store) Seed(articles []Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = articles
}
