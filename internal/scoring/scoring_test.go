package scoring

import (
	"testing"
	"time"

	"table-buzz/internal/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func mention(kind models.SourceKind, sentiment *float64, postedAgo *time.Duration, score, comments int) models.Mention {
	m := models.Mention{
		RestaurantName: "Pai Northern Thai Kitchen",
		SourceKind:     kind,
		SentimentScore: sentiment,
		Score:          score,
		CommentsCount:  comments,
	}
	if postedAgo != nil {
		t := testNow.Add(-*postedAgo)
		m.PostedAt = &t
	}
	return m
}

func fptr(v float64) *float64 { return &v }

func dptr(d time.Duration) *time.Duration { return &d }

func days(n float64) *time.Duration { return dptr(time.Duration(n * 24 * float64(time.Hour))) }

func TestSentimentScoreBounds(t *testing.T) {
	tests := []struct {
		name     string
		mentions []models.Mention
	}{
		{"no mentions", nil},
		{"all unanalyzed", []models.Mention{
			mention(models.SourceSocial, nil, days(1), 10, 2),
			mention(models.SourceBlog, nil, days(3), 0, 0),
		}},
		{"very negative", []models.Mention{
			mention(models.SourceSocial, fptr(-1.0), days(1), 10, 2),
			mention(models.SourcePress, fptr(-0.9), days(2), 0, 0),
		}},
		{"very positive", []models.Mention{
			mention(models.SourcePress, fptr(1.0), days(1), 500, 100),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := SentimentScore(tt.mentions)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 10.0)
		})
	}
}

func TestSentimentScoreEmptyIsNeutral(t *testing.T) {
	assert.Equal(t, 5.0, SentimentScore(nil))
	assert.Equal(t, 5.0, SentimentScore([]models.Mention{}))

	// Mentions without sentiment are excluded entirely, not counted as
	// neutral, so an unanalyzed-only history also yields the default.
	unanalyzed := []models.Mention{
		mention(models.SourceSocial, nil, days(1), 100, 30),
	}
	assert.Equal(t, 5.0, SentimentScore(unanalyzed))
}

func TestSentimentScoreCredibilityWeighting(t *testing.T) {
	// Opposite-sign sentiment: high-credibility press says negative,
	// low-credibility manual entry says positive.
	mentions := []models.Mention{
		mention(models.SourcePress, fptr(-0.8), days(1), 0, 0),
		mention(models.SourceManual, fptr(0.8), days(1), 0, 0),
	}

	weighted := SentimentScore(mentions)
	unweighted := ((-0.8+1)*5 + (0.8+1)*5) / 2 // 5.0

	pressValue := (-0.8 + 1) * 5 // 1.0

	// The aggregate must sit closer to the press mention's value than a
	// simple mean would.
	assert.Less(t, weighted, unweighted)
	assert.Less(t, weighted-pressValue, unweighted-pressValue)
}

func TestViralScoreBounds(t *testing.T) {
	assert.Equal(t, 0.0, ViralScore(nil, testNow))
	assert.Equal(t, 0.0, ViralScore([]models.Mention{}, testNow))

	huge := []models.Mention{
		mention(models.SourceSocial, fptr(0.9), days(0.1), 1000000, 500000),
		mention(models.SourceSocial, fptr(0.9), days(0.1), 1000000, 500000),
	}
	score := ViralScore(huge, testNow)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 10.0)
}

func TestViralScoreRecencyDecay(t *testing.T) {
	fresh := []models.Mention{mention(models.SourceSocial, nil, days(1), 150, 45)}
	stale := []models.Mention{mention(models.SourceSocial, nil, days(20), 150, 45)}

	assert.Greater(t, ViralScore(fresh, testNow), ViralScore(stale, testNow),
		"identical engagement posted earlier must contribute strictly less")
}

func TestViralScoreDecayFloor(t *testing.T) {
	ancient := mention(models.SourceSocial, nil, days(90), 150, 45)
	undated := mention(models.SourceSocial, nil, nil, 150, 45)

	// Both are past the 30-day horizon conceptually; they bottom out at
	// the decay floor instead of vanishing, and at the same value.
	ancientScore := ViralScore([]models.Mention{ancient}, testNow)
	undatedScore := ViralScore([]models.Mention{undated}, testNow)

	assert.Greater(t, ancientScore, 0.0)
	assert.Equal(t, ancientScore, undatedScore)

	// An undated mention must never be treated as posted "now".
	fresh := ViralScore([]models.Mention{mention(models.SourceSocial, nil, days(0), 150, 45)}, testNow)
	assert.Less(t, undatedScore, fresh)
}

func TestProScore(t *testing.T) {
	assert.Equal(t, 0.0, ProScore(nil))
	assert.Equal(t, 0.0, ProScore([]models.Mention{
		mention(models.SourceSocial, fptr(0.9), days(1), 100, 10),
		mention(models.SourceManual, fptr(0.9), days(1), 0, 0),
	}), "social and manual mentions are not professional coverage")

	one := []models.Mention{mention(models.SourcePress, fptr(0.9), days(1), 0, 0)}
	assert.Equal(t, 3.0, ProScore(one)) // 2 for count + 1 strongly positive

	lukewarm := []models.Mention{mention(models.SourcePress, fptr(0.3), days(1), 0, 0)}
	assert.Equal(t, 2.0, ProScore(lukewarm)) // 0.3 is below the >0.5 bonus threshold

	// Ten glowing press mentions saturate at the cap.
	var many []models.Mention
	for i := 0; i < 10; i++ {
		many = append(many, mention(models.SourcePress, fptr(0.95), days(1), 0, 0))
	}
	assert.Equal(t, 10.0, ProScore(many))
}

func TestBuzzScoreMonotonic(t *testing.T) {
	base := BuzzScore(6.0, 3.0, 2.0, 10, fptr(4.0))

	assert.GreaterOrEqual(t, BuzzScore(7.0, 3.0, 2.0, 10, fptr(4.0)), base, "sentiment")
	assert.GreaterOrEqual(t, BuzzScore(6.0, 4.0, 2.0, 10, fptr(4.0)), base, "viral")
	assert.GreaterOrEqual(t, BuzzScore(6.0, 3.0, 3.0, 10, fptr(4.0)), base, "pro")
	assert.GreaterOrEqual(t, BuzzScore(6.0, 3.0, 2.0, 20, fptr(4.0)), base, "mentions")
	assert.GreaterOrEqual(t, BuzzScore(6.0, 3.0, 2.0, 10, fptr(4.5)), base, "rating")
}

func TestBuzzScoreAddingStrongMentionNeverDecreases(t *testing.T) {
	mentions := []models.Mention{
		mention(models.SourceSocial, fptr(0.6), days(5), 40, 12),
		mention(models.SourceBlog, fptr(0.7), days(12), 0, 0),
	}
	before := Compute(mentions, fptr(4.2), testNow)

	added := append(append([]models.Mention{}, mentions...),
		mention(models.SourceSocial, fptr(0.9), days(1), 300, 80))
	after := Compute(added, fptr(4.2), testNow)

	assert.GreaterOrEqual(t, after.BuzzScore, before.BuzzScore)
}

func TestBuzzScoreUnratedUsesNeutralDefault(t *testing.T) {
	unrated := BuzzScore(6.0, 3.0, 2.0, 10, nil)
	neutral := BuzzScore(6.0, 3.0, 2.0, 10, fptr(2.5)) // 2.5 * 2 = 5.0
	assert.Equal(t, neutral, unrated)
}

func TestComputeWorkedExample(t *testing.T) {
	mentions := []models.Mention{
		mention(models.SourcePress, fptr(0.9), days(2), 150, 45),
		mention(models.SourceSocial, fptr(0.85), days(10), 0, 0),
	}

	set := Compute(mentions, fptr(4.5), testNow)

	// Credibility-weighted sentiment lands between the two inputs,
	// pulled toward the press mention.
	assert.GreaterOrEqual(t, set.SentimentScore, 9.3)
	assert.LessOrEqual(t, set.SentimentScore, 9.7)

	assert.Greater(t, set.ViralScore, 0.0)
	assert.Equal(t, 2, set.TotalMentions)

	// Multi-factor combination, not a sentiment pass-through: on the
	// 0-20 scale buzz exceeds either raw sentiment rescaled alone.
	assert.Greater(t, set.BuzzScore, (0.9+1)*5)
	assert.Greater(t, set.BuzzScore, (0.85+1)*5)
}

func TestComputeEmptyHistory(t *testing.T) {
	set := Compute(nil, nil, testNow)

	assert.Equal(t, 5.0, set.SentimentScore)
	assert.Equal(t, 0.0, set.ViralScore)
	assert.Equal(t, 0.0, set.ProScore)
	assert.Equal(t, 0, set.TotalMentions)
	assert.False(t, set.IsTrending)
}

func TestIsTrending(t *testing.T) {
	tests := []struct {
		name     string
		mentions []models.Mention
		want     bool
	}{
		{"no mentions", nil, false},
		{"one recent mention", []models.Mention{
			mention(models.SourceSocial, nil, days(1), 10, 2),
		}, false},
		{"two recent mentions", []models.Mention{
			mention(models.SourceSocial, nil, days(1), 10, 2),
			mention(models.SourceBlog, nil, days(6), 0, 0),
		}, true},
		{"two old mentions", []models.Mention{
			mention(models.SourceSocial, nil, days(8), 10, 2),
			mention(models.SourceBlog, nil, days(15), 0, 0),
		}, false},
		{"undated mentions never count as recent", []models.Mention{
			mention(models.SourceSocial, nil, nil, 10, 2),
			mention(models.SourceBlog, nil, nil, 0, 0),
			mention(models.SourceSocial, nil, days(2), 5, 1),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrending(tt.mentions, testNow))
		})
	}
}

func TestDecayFactor(t *testing.T) {
	posted := testNow
	assert.Equal(t, 1.0, decayFactor(&posted, testNow))

	future := testNow.Add(2 * time.Hour)
	assert.Equal(t, 1.0, decayFactor(&future, testNow), "clock skew clamps to 1.0")

	old := testNow.Add(-45 * 24 * time.Hour)
	assert.Equal(t, decayFloor, decayFactor(&old, testNow))

	assert.Equal(t, decayFloor, decayFactor(nil, testNow))
}
