package scrapers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"table-buzz/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// BlogPage is one curated listicle-style page worth scraping in full,
// e.g. "the best ramen in town".
type BlogPage struct {
	URL        string
	SourceKind models.SourceKind
}

// DefaultBlogPages are the curated pages fetched when no custom list is
// configured.
var DefaultBlogPages = []BlogPage{
	{URL: "https://www.blogto.com/toronto/the_best_restaurants_in_toronto/", SourceKind: models.SourceBlog},
	{URL: "https://www.blogto.com/toronto/the_best_ramen_toronto/", SourceKind: models.SourceBlog},
	{URL: "https://www.blogto.com/toronto/the_best_brunch_in_toronto/", SourceKind: models.SourceBlog},
	{URL: "https://toronto.eater.com/maps/best-restaurants-toronto", SourceKind: models.SourcePress},
}

// BlogScraper fetches individual blog pages and extracts their text.
type BlogScraper struct {
	pages      []BlogPage
	httpClient *http.Client
}

// NewBlogScraper creates a blog page scraper.
func NewBlogScraper(pages []BlogPage) *BlogScraper {
	if len(pages) == 0 {
		pages = DefaultBlogPages
	}
	return &BlogScraper{
		pages:      pages,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ScrapeAll fetches every configured page. Failures are logged and
// skipped.
func (b *BlogScraper) ScrapeAll(ctx context.Context) []ScrapedContent {
	var all []ScrapedContent
	for _, page := range b.pages {
		content, err := b.ScrapePage(ctx, page)
		if err != nil {
			log.Printf("⚠️ Failed to scrape %s: %v", page.URL, err)
			continue
		}
		all = append(all, *content)
	}
	return all
}

// ScrapePage fetches one page and extracts its title and paragraph text.
func (b *BlogScraper) ScrapePage(ctx context.Context, page BlogPage) (*ScrapedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var paragraphs []string
	doc.Find("article p, main p, .article-content p, p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 40 {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no article text found at %s", page.URL)
	}

	now := time.Now().UTC()
	return &ScrapedContent{
		SourceKind: page.SourceKind,
		SourceURL:  page.URL,
		Title:      title,
		RawText:    title + "\n\n" + strings.Join(paragraphs, "\n\n"),
		PostedAt:   &now, // curated pages rarely carry a date
	}, nil
}
