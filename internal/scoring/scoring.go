// Package scoring computes the derived reputation scores for a
// restaurant from its mention history. Everything in this package is a
// pure function of its inputs: no I/O, no clock reads. Recency decay is
// relative to an injected reference time so results are reproducible.
package scoring

import (
	"math"
	"time"

	"table-buzz/internal/models"
)

// Viral score component weights. The combined pre-decay base of a
// single mention is capped at 5, so the averaged score in practice sits
// well under the documented 10.0 ceiling.
const (
	weightRawScore       = 0.4
	weightComments       = 0.4
	weightEngagementRate = 0.2
)

// Buzz score weights. Tunable policy: any change must keep buzz
// monotonic in every input (covered by tests).
const (
	buzzWeightSentiment = 0.35
	buzzWeightViral     = 0.25
	buzzWeightMentions  = 0.20
	buzzWeightPro       = 0.10
	buzzWeightRating    = 0.10
)

const (
	maxComponent = 5.0 // per-component cap before weighting

	decayHorizon = 30 * 24 * time.Hour
	decayFloor   = 0.05 // undated mentions land here, never at 1.0

	neutralSentiment = 5.0

	maxViralScore = 10.0
	maxProScore   = 10.0
	maxBuzzScore  = 20.0
)

// sourceCredibility weights mention sentiment by how much we trust the
// source kind. Professional press outweighs enthusiastic forum posts.
var sourceCredibility = map[models.SourceKind]float64{
	models.SourcePress:  1.0,
	models.SourceBlog:   0.9,
	models.SourceSocial: 0.7,
	models.SourceManual: 0.5,
}

const defaultCredibility = 0.5

// professionalSources are the source kinds that count toward the
// professional-credibility score.
var professionalSources = map[models.SourceKind]bool{
	models.SourcePress: true,
	models.SourceBlog:  true,
}

// decayFactor returns the recency multiplier for a mention: 1.0 for a
// mention posted at the reference time, declining linearly to the floor
// at the 30-day horizon. A mention without a timestamp is treated as
// maximally stale rather than fresh, so undated content cannot inflate
// the viral score.
func decayFactor(postedAt *time.Time, now time.Time) float64 {
	if postedAt == nil {
		return decayFloor
	}
	age := now.Sub(*postedAt)
	if age < 0 {
		age = 0
	}
	factor := 1 - age.Hours()/decayHorizon.Hours()
	return math.Max(decayFloor, math.Min(factor, 1.0))
}

// ViralScore measures social engagement on a 0-10 scale. Each mention
// contributes a log-compressed score component, a comment component and
// a comments-per-score engagement rate, all capped, then decayed by
// recency. Zero mentions yield 0.0.
func ViralScore(mentions []models.Mention, now time.Time) float64 {
	if len(mentions) == 0 {
		return 0.0
	}

	var total float64
	for _, m := range mentions {
		var base float64

		if m.Score > 0 {
			// Logarithmic scale: 100 upvotes = ~2.3, 1000 = ~3.5
			base += math.Min(math.Log1p(float64(m.Score))/2, maxComponent) * weightRawScore
		}
		if m.CommentsCount > 0 {
			base += math.Min(math.Log1p(float64(m.CommentsCount))/1.5, maxComponent) * weightComments
		}
		if m.Score > 0 && m.CommentsCount > 0 {
			// Comments per 100 upvotes, capped
			rate := math.Min(float64(m.CommentsCount)/math.Max(float64(m.Score), 1)*10, maxComponent)
			base += rate * weightEngagementRate
		}

		total += base * decayFactor(m.PostedAt, now)
	}

	avg := total / float64(len(mentions))
	return round2(math.Min(avg, maxViralScore))
}

// SentimentScore averages mention sentiment on a 0-10 scale, weighted
// by source credibility. Mentions that were never analyzed are excluded
// entirely; they do not count as neutral. With no scored mentions at
// all the result is the neutral default of 5.0.
func SentimentScore(mentions []models.Mention) float64 {
	var weightedSum, weightTotal float64

	for _, m := range mentions {
		if m.SentimentScore == nil {
			continue
		}

		credibility, ok := sourceCredibility[m.SourceKind]
		if !ok {
			credibility = defaultCredibility
		}

		// Map [-1, 1] to [0, 10]
		normalized := (*m.SentimentScore + 1) * 5

		weightedSum += normalized * credibility
		weightTotal += credibility
	}

	if weightTotal == 0 {
		return neutralSentiment
	}
	return round2(weightedSum / weightTotal)
}

// ProScore reflects coverage by professional sources on a 0-10 scale:
// up to 5 points for the number of professional mentions, up to 5 more
// for how many of those are strongly positive (sentiment > 0.5). Zero
// professional mentions yield 0.0.
func ProScore(mentions []models.Mention) float64 {
	var count, positive int
	for _, m := range mentions {
		if !professionalSources[m.SourceKind] {
			continue
		}
		count++
		if m.SentimentScore != nil && *m.SentimentScore > 0.5 {
			positive++
		}
	}

	if count == 0 {
		return 0.0
	}

	base := math.Min(float64(count)*2, 5)
	bonus := math.Min(float64(positive), 5)
	return math.Min(base+bonus, maxProScore)
}

// BuzzScore combines all signals into the single 0-20 headline score.
// The mention-volume component is log-compressed and saturates around
// 100+ mentions; an absent external rating contributes the neutral 5.0
// so unrated restaurants are neither penalized nor favored. Increasing
// any one input while holding the rest fixed never decreases the result.
func BuzzScore(sentimentScore, viralScore, proScore float64, totalMentions int, rating *float64) float64 {
	mentionsComponent := math.Min(math.Log1p(float64(totalMentions))*2.5, 10)

	ratingComponent := 5.0
	if rating != nil {
		ratingComponent = *rating * 2 // 0-5 scaled to 0-10
	}

	buzz := sentimentScore*buzzWeightSentiment +
		viralScore*buzzWeightViral +
		mentionsComponent*buzzWeightMentions +
		proScore*buzzWeightPro +
		ratingComponent*buzzWeightRating

	// Scale the 0-10 weighted combination to the 0-20 output range
	return round1(math.Min(buzz*2, maxBuzzScore))
}

// Compute derives the full ScoreSet for one restaurant's mention
// history. The returned set carries no restaurant id; the caller
// attaches it when persisting.
func Compute(mentions []models.Mention, rating *float64, now time.Time) models.ScoreSet {
	sentiment := SentimentScore(mentions)
	viral := ViralScore(mentions, now)
	pro := ProScore(mentions)
	total := len(mentions)

	return models.ScoreSet{
		BuzzScore:      BuzzScore(sentiment, viral, pro, total, rating),
		SentimentScore: sentiment,
		ViralScore:     viral,
		ProScore:       pro,
		TotalMentions:  total,
		IsTrending:     IsTrending(mentions, now),
		ComputedAt:     now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
