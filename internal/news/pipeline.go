// Package news builds the merged news feed: one backend request per
// selected category issued concurrently, results joined, tagged,
// deduplicated by synthesized id, sorted by recency, and capped.
//
// The pipeline is tolerant by construction. A failing category resolves
// to an empty list; only when everything fails does it fall back to the
// default category, and even then the caller sees an empty feed rather
// than an error. There is always something reasonable on screen.
package news

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/companion/internal/api"
	"github.com/abelbrown/companion/internal/logging"
)

const (
	// DefaultCategory is fetched when the user has picked nothing or
	// their preference cannot be read.
	DefaultCategory = "general"

	// DefaultPerCategory caps how many articles each category contributes.
	DefaultPerCategory = 5

	// DefaultOverallCap caps the merged feed.
	DefaultOverallCap = 20

	// fallbackCap caps the feed on the total-failure path.
	fallbackCap = 10

	// maxConcurrentFetches bounds the category fan-out.
	maxConcurrentFetches = 5

	rssTimeout = 20 * time.Second
)

// Backend is the slice of the API client the pipeline needs.
type Backend interface {
	GetNews(ctx context.Context, q api.NewsQuery) ([]api.Article, error)
	GetProfile(ctx context.Context) (api.Profile, error)
}

// Pipeline fetches and merges the user's news feed.
type Pipeline struct {
	backend     Backend
	rss         *rssFetcher
	extras      []Feed
	override    string
	perCategory int
	overallCap  int
}

// NewPipeline creates a Pipeline with the default limits. extras may be
// nil; configured RSS feeds are merged through the same fan-out as the
// backend categories.
func NewPipeline(backend Backend, extras []Feed) *Pipeline {
	return &Pipeline{
		backend:     backend,
		rss:         newRSSFetcher(rssTimeout),
		extras:      extras,
		perCategory: DefaultPerCategory,
		overallCap:  DefaultOverallCap,
	}
}

// SetCategoryOverride pins the category list, skipping the profile
// lookup on every refresh. Used when the config file names categories
// explicitly.
func (p *Pipeline) SetCategoryOverride(categories string) {
	p.override = strings.TrimSpace(categories)
}

// FetchForUser resolves the user's category preference from their profile
// and fetches the merged feed. Never returns an error: an unreadable
// profile falls back to the default category, and a dead backend yields
// an empty feed.
func (p *Pipeline) FetchForUser(ctx context.Context) []Article {
	if p.override != "" {
		return p.Fetch(ctx, p.override)
	}
	profile, err := p.backend.GetProfile(ctx)
	if err != nil {
		logging.Warn("profile unavailable, falling back to default news category", "err", err)
		return p.fallback(ctx)
	}
	categories := profile.NewsCategories
	if strings.TrimSpace(categories) == "" {
		categories = DefaultCategory
	}
	return p.Fetch(ctx, categories)
}

// Fetch retrieves the merged feed for a comma-separated category list.
// Each category is fetched concurrently and independently; one failing
// category is logged and contributes nothing.
func (p *Pipeline) Fetch(ctx context.Context, categories string) []Article {
	var cats []string
	for _, c := range strings.Split(categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		cats = []string{DefaultCategory}
	}

	// Results are indexed by fan-out slot so the merge preserves the
	// configured category order regardless of completion order. That
	// ordering is what keeps the recency sort stable for equal
	// timestamps.
	units := len(cats) + len(p.extras)
	results := make([][]Article, units)

	g, fetchCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, cat := range cats {
		g.Go(func() error {
			articles, err := p.fetchCategory(fetchCtx, cat)
			if err != nil {
				logging.Warn("news category fetch failed", "category", cat, "err", err)
				return nil // failing unit resolves to empty, never aborts the batch
			}
			results[i] = articles
			return nil
		})
	}
	for i, feed := range p.extras {
		g.Go(func() error {
			articles, err := p.rss.Fetch(fetchCtx, feed)
			if err != nil {
				logging.Warn("rss extra fetch failed", "feed", feed.Name, "err", err)
				return nil
			}
			if len(articles) > p.perCategory {
				articles = articles[:p.perCategory]
			}
			results[len(cats)+i] = articles
			return nil
		})
	}
	// Join barrier: the merge never starts before every unit settles.
	g.Wait()

	var merged []Article
	for _, articles := range results {
		merged = append(merged, articles...)
	}

	sortByRecency(merged)
	if len(merged) > p.overallCap {
		merged = merged[:p.overallCap]
	}
	return merged
}

// fetchCategory fetches one category, tags the articles, and applies the
// per-category limit.
func (p *Pipeline) fetchCategory(ctx context.Context, category string) ([]Article, error) {
	wire, err := p.backend.GetNews(ctx, api.NewsQuery{Category: category})
	if err != nil {
		return nil, err
	}
	if len(wire) > p.perCategory {
		wire = wire[:p.perCategory]
	}
	now := time.Now()
	articles := make([]Article, len(wire))
	for i, a := range wire {
		articles[i] = fromWire(a, category, now)
	}
	return articles, nil
}

// fallback is the total-failure path: the default category alone, capped
// tighter, and an empty feed if even that fails.
func (p *Pipeline) fallback(ctx context.Context) []Article {
	wire, err := p.backend.GetNews(ctx, api.NewsQuery{Category: DefaultCategory})
	if err != nil {
		logging.Error("news fallback fetch failed", "err", err)
		return []Article{}
	}
	if len(wire) > fallbackCap {
		wire = wire[:fallbackCap]
	}
	now := time.Now()
	articles := make([]Article, len(wire))
	for i, a := range wire {
		articles[i] = fromWire(a, DefaultCategory, now)
	}
	return articles
}

// Search issues a single free-text query, optionally scoped to one
// category. Results keep the backend's ranking; no merging happens here.
func (p *Pipeline) Search(ctx context.Context, query, category string) ([]Article, error) {
	wire, err := p.backend.GetNews(ctx, api.NewsQuery{Query: query, Category: category})
	if err != nil {
		return nil, err
	}
	tag := category
	if tag == "" {
		tag = "search"
	}
	now := time.Now()
	articles := make([]Article, len(wire))
	for i, a := range wire {
		articles[i] = fromWire(a, tag, now)
	}
	return articles, nil
}

// sortByRecency orders newest first. Zero timestamps sort last, and the
// sort is stable so equal timestamps keep their category-fetch order.
func sortByRecency(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b)
		}
	})
}
