package news

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed is a user-configured RSS feed merged into the news view alongside
// the backend categories. Seniors who follow a church bulletin or a local
// paper keep it next to their picked categories.
type Feed struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// rssFetcher retrieves articles from RSS/Atom feeds.
type rssFetcher struct {
	client *http.Client
}

func newRSSFetcher(timeout time.Duration) *rssFetcher {
	return &rssFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves one feed and converts its entries to Articles tagged
// with the feed's category (falling back to its name).
func (f *rssFetcher) Fetch(ctx context.Context, feed Feed) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Companion/1.0 (https://github.com/abelbrown/companion)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	category := feed.Category
	if category == "" {
		category = feed.Name
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, convertFeedItem(item, feed, category))
	}
	return articles, nil
}

func convertFeedItem(item *gofeed.Item, feed Feed, category string) Article {
	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return Article{
		ID:          feedItemID(item, category),
		Category:    category,
		Title:       item.Title,
		URL:         item.Link,
		Description: item.Description,
		SourceName:  feed.Name,
		PublishedAt: published,
	}
}

// feedItemID prefers the feed's own GUID, then the link, hashed to a
// short stable id.
func feedItemID(item *gofeed.Item, category string) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	h := sha256.Sum256([]byte(key))
	return category + "-" + hex.EncodeToString(h[:8])
}
