package scoring

import (
	"time"

	"table-buzz/internal/models"
)

const (
	trendingWindow      = 7 * 24 * time.Hour
	trendingMinMentions = 2
)

// IsTrending classifies a restaurant as trending when at least two of
// its mentions were posted within the last seven days. Undated mentions
// never count as recent. The classification is count-only: requiring a
// viral-score floor on top was considered and rejected because the
// conservative per-mention engagement caps keep viral scores low enough
// that a floor would make the flag unreachable.
func IsTrending(mentions []models.Mention, now time.Time) bool {
	cutoff := now.Add(-trendingWindow)

	recent := 0
	for _, m := range mentions {
		if m.PostedAt == nil {
			continue
		}
		if m.PostedAt.After(cutoff) {
			recent++
		}
	}

	return recent >= trendingMinMentions
}
