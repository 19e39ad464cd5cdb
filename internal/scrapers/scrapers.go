// Package scrapers collects raw food-related content from public
// sources: subreddit JSON listings, RSS/Atom feeds and blog pages. The
// output is uniform ScrapedContent records handed to the extraction
// pipeline; nothing here interprets the text.
package scrapers

import (
	"strings"
	"time"

	"table-buzz/internal/models"
)

// ScrapedContent is one raw content item before extraction. SourceURL
// doubles as the idempotency key for the mention it may become.
type ScrapedContent struct {
	SourceKind models.SourceKind
	SourceURL  string
	SourceID   string
	Title      string
	RawText    string
	Author     string
	PostedAt   *time.Time

	// Social-specific metadata
	Community     string
	Score         int
	CommentsCount int
}

// foodIndicators marks posts worth sending to the extraction step.
var foodIndicators = []string{
	"restaurant", "food", "eat", "dining", "brunch", "lunch", "dinner",
	"cafe", "bistro", "bar", "pub", "takeout", "delivery",
	"ramen", "sushi", "pizza", "burger", "taco", "pho", "curry",
	"best place", "recommend", "where to", "hidden gem", "date night",
}

// isFoodRelated reports whether the text looks like restaurant talk.
func isFoodRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range foodIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
