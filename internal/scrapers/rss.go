package scrapers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"table-buzz/internal/models"

	"github.com/mmcdole/gofeed"
)

// FeedConfig is one RSS/Atom feed source. FoodFilter restricts a
// general-interest feed to food-related entries.
type FeedConfig struct {
	Name       string
	URL        string
	SourceKind models.SourceKind
	FoodFilter bool
}

// DefaultFeeds are the feeds scraped when no custom list is configured.
var DefaultFeeds = []FeedConfig{
	{Name: "BlogTO", URL: "https://feeds.feedburner.com/blogto", SourceKind: models.SourceBlog, FoodFilter: true},
	{Name: "Streets of Toronto - Food", URL: "https://streetsoftoronto.com/category/food/feed/", SourceKind: models.SourceBlog},
	{Name: "NOW Toronto", URL: "https://nowtoronto.com/feed/", SourceKind: models.SourcePress, FoodFilter: true},
	{Name: "Toronto Life - Food", URL: "https://torontolife.com/food/feed/", SourceKind: models.SourcePress},
	{Name: "Toronto Food Blog", URL: "https://torontofoodblog.com/feed/", SourceKind: models.SourceBlog},
}

// FeedScraper collects entries from RSS/Atom feeds.
type FeedScraper struct {
	parser     *gofeed.Parser
	httpClient *http.Client
	feeds      []FeedConfig
}

// NewFeedScraper creates a feed scraper over the given feed list.
func NewFeedScraper(feeds []FeedConfig) *FeedScraper {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &FeedScraper{
		parser:     gofeed.NewParser(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		feeds:      feeds,
	}
}

// ScrapeAll collects entries from every configured feed. A failing feed
// is logged and skipped.
func (f *FeedScraper) ScrapeAll(ctx context.Context, limitPerFeed int) []ScrapedContent {
	var all []ScrapedContent
	for _, feed := range f.feeds {
		content, err := f.ScrapeFeed(ctx, feed, limitPerFeed)
		if err != nil {
			log.Printf("⚠️ Failed to scrape feed %s: %v", feed.Name, err)
			continue
		}
		all = append(all, content...)
	}
	return all
}

// ScrapeFeed fetches and parses one feed.
func (f *FeedScraper) ScrapeFeed(ctx context.Context, feed FeedConfig, limit int) ([]ScrapedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var content []ScrapedContent
	for _, item := range parsed.Items {
		if limit > 0 && len(content) >= limit {
			break
		}
		c, ok := f.itemToContent(feed, item)
		if !ok {
			continue
		}
		content = append(content, c)
	}

	log.Printf("📡 Scraped %d entries from feed %s", len(content), feed.Name)
	return content, nil
}

func (f *FeedScraper) itemToContent(feed FeedConfig, item *gofeed.Item) (ScrapedContent, bool) {
	text := item.Title
	if item.Description != "" {
		text += "\n\n" + item.Description
	}
	if item.Content != "" {
		text += "\n\n" + item.Content
	}

	if feed.FoodFilter && !isFoodRelated(text) {
		return ScrapedContent{}, false
	}

	var postedAt *time.Time
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		postedAt = &t
	}

	author := ""
	if len(item.Authors) > 0 {
		author = item.Authors[0].Name
	}

	return ScrapedContent{
		SourceKind: feed.SourceKind,
		SourceURL:  item.Link,
		SourceID:   item.GUID,
		Title:      item.Title,
		RawText:    text,
		Author:     author,
		PostedAt:   postedAt,
	}, true
}
