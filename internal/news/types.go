package news

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/companion/internal/api"
)

// Article is one entry in the merged feed. Articles are ephemeral: a new
// fetch or search discards the previous batch wholesale, and nothing is
// ever updated in place.
type Article struct {
	// ID is synthesized at merge time when the upstream provides none:
	// category + url-or-timestamp + random salt. Unique within a batch
	// even when the same URL is fetched under two categories.
	ID string

	// Category is the category the article was fetched under. The same
	// story fetched under two categories is two distinct entries.
	Category string

	Title       string
	URL         string
	ImageURL    string
	Description string
	SourceName  string

	// PublishedAt is the sort key. Zero when the upstream value was
	// absent or unparsable; zero sorts last (treated as oldest).
	PublishedAt time.Time
}

// publishedLayouts are the timestamp shapes news providers emit.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parsePublished(s string) time.Time {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// synthesizeID builds a batch-unique id for an article with none of its
// own. The random salt keeps retried or duplicate URLs distinct.
func synthesizeID(category, url string, now time.Time) string {
	key := url
	if key == "" {
		key = now.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%s-%s-%s", category, key, uuid.NewString()[:8])
}

// fromWire converts a backend article, tagging it with the category it
// was fetched under.
func fromWire(a api.Article, category string, now time.Time) Article {
	sourceName := ""
	if a.Source != nil {
		sourceName = a.Source.Name
	}
	return Article{
		ID:          synthesizeID(category, a.URL, now),
		Category:    category,
		Title:       a.Title,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
		Description: a.Description,
		SourceName:  sourceName,
		PublishedAt: parsePublished(a.PublishedAt),
	}
}
