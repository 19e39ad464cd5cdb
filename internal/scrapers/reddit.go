package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"table-buzz/internal/models"
)

const redditUserAgent = "table-buzz/1.0 (restaurant reputation tracker)"

// RedditScraper collects posts from food-related subreddits using the
// public .json listing endpoints. No API credentials required.
type RedditScraper struct {
	baseURL    string
	subreddits []string
	httpClient *http.Client
}

// NewRedditScraper creates a new Reddit scraper for the given subreddits.
func NewRedditScraper(baseURL string, subreddits []string) *RedditScraper {
	if baseURL == "" {
		baseURL = "https://old.reddit.com"
	}
	return &RedditScraper{
		baseURL:    baseURL,
		subreddits: subreddits,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// redditListing mirrors the subset of the Reddit listing payload we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// ScrapeAll collects food-related posts from all configured subreddits.
// A failing subreddit is logged and skipped; the rest still contribute.
func (r *RedditScraper) ScrapeAll(ctx context.Context, timeFilter string, limitPerSub int) []ScrapedContent {
	var all []ScrapedContent
	for _, sub := range r.subreddits {
		content, err := r.ScrapeSubreddit(ctx, sub, timeFilter, limitPerSub)
		if err != nil {
			log.Printf("⚠️ Failed to scrape r/%s: %v", sub, err)
			continue
		}
		all = append(all, content...)
	}
	return all
}

// ScrapeSubreddit fetches the top listing of one subreddit and keeps
// the food-related posts.
func (r *RedditScraper) ScrapeSubreddit(ctx context.Context, subreddit, timeFilter string, limit int) ([]ScrapedContent, error) {
	if timeFilter == "" {
		timeFilter = "month"
	}
	url := fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d", r.baseURL, subreddit, timeFilter, limit)

	listing, err := r.fetchListing(ctx, url)
	if err != nil {
		return nil, err
	}

	var content []ScrapedContent
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" { // t3 = link/self post
			continue
		}
		post := child.Data
		if !isFoodRelated(post.Title + " " + post.SelfText) {
			continue
		}
		content = append(content, r.postToContent(post))
	}

	log.Printf("📡 Scraped %d food-related posts from r/%s", len(content), subreddit)
	return content, nil
}

func (r *RedditScraper) fetchListing(ctx context.Context, url string) (*redditListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &listing, nil
}

// postToContent converts a Reddit post to a ScrapedContent record.
// Title and body are concatenated so the extractor sees both.
func (r *RedditScraper) postToContent(post redditPost) ScrapedContent {
	text := post.Title
	if post.SelfText != "" {
		text += "\n\n" + post.SelfText
	}

	var postedAt *time.Time
	if post.CreatedUTC > 0 {
		t := time.Unix(int64(post.CreatedUTC), 0).UTC()
		postedAt = &t
	}

	return ScrapedContent{
		SourceKind:    models.SourceSocial,
		SourceURL:     "https://reddit.com" + post.Permalink,
		SourceID:      post.ID,
		Title:         post.Title,
		RawText:       text,
		Author:        post.Author,
		PostedAt:      postedAt,
		Community:     post.Subreddit,
		Score:         post.Score,
		CommentsCount: post.NumComments,
	}
}
