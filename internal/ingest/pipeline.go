package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"table-buzz/internal/embeddings"
	"table-buzz/internal/llm"
	"table-buzz/internal/models"
	"table-buzz/internal/places"
	"table-buzz/internal/scoring"
	"table-buzz/internal/scrapers"
)

// maxReportedErrors bounds the error list carried in run stats.
const maxReportedErrors = 25

// embedSentimentFloor: only restaurants introduced with clearly
// positive sentiment get an embedding computed on first sight.
const embedSentimentFloor = 0.3

// PipelineStats summarizes one aggregation pass. It is the sole
// operator-visible failure signal; individual item failures degrade
// the run instead of aborting it.
type PipelineStats struct {
	ContentItems     int       `json:"content_items"`
	MentionsStored   int       `json:"mentions_stored"`
	MentionsDropped  int       `json:"mentions_dropped"`
	RestaurantsSeen  int       `json:"restaurants_seen"`
	RestaurantsNew   int       `json:"restaurants_new"`
	PlacesEnriched   int       `json:"places_enriched"`
	ScoresWritten    int       `json:"scores_written"`
	Errors           []string  `json:"errors,omitempty"`
	ErrorsTruncated  bool      `json:"errors_truncated,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

func (s *PipelineStats) addError(format string, args ...any) {
	if len(s.Errors) >= maxReportedErrors {
		s.ErrorsTruncated = true
		return
	}
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// Pipeline runs one full aggregation pass: extraction, normalization,
// identity resolution, scoring and persistence. Collaborators are
// injected so tests can run the whole pass against fakes.
type Pipeline struct {
	store       *Store
	coordinator *llm.Coordinator
	finder      places.Finder
	embedder    embeddings.Embedder
	city        string

	now func() time.Time
}

func NewPipeline(db *gorm.DB, coordinator *llm.Coordinator, finder places.Finder, embedder embeddings.Embedder, city string) *Pipeline {
	return &Pipeline{
		store:       NewStore(db),
		coordinator: coordinator,
		finder:      finder,
		embedder:    embedder,
		city:        city,
		now:         time.Now,
	}
}

// Run processes the scraped content sequentially. Extraction is the
// serialization point: the coordinator's rate floor forbids concurrent
// calls, so content items are handled one at a time. Every failure
// short of a programming error degrades to a logged stat; Run never
// returns an error for per-item problems.
func (p *Pipeline) Run(ctx context.Context, contents []scrapers.ScrapedContent) *PipelineStats {
	stats := &PipelineStats{StartedAt: p.now().UTC()}
	resolver := NewResolver(p.city)

	// One place lookup per distinct name per run.
	placeCache := make(map[string]*places.PlaceResult)

	log.Printf("🍽️ Starting aggregation pass over %d content items", len(contents))

	for _, content := range contents {
		stats.ContentItems++

		// Scrapers already fold the title into RawText, so the raw text
		// alone is the full document.
		extracted, sentiment := p.coordinator.ProcessContent(ctx, content.RawText)
		if len(extracted) == 0 {
			continue
		}

		for _, candidate := range extracted {
			place := p.lookupPlace(ctx, candidate.Name, placeCache, stats)

			mention, err := Normalize(p.rawMentionFor(content, candidate, sentiment))
			if err != nil {
				stats.MentionsDropped++
				stats.addError("mention %s: %v", content.SourceURL, err)
				log.Printf("⚠️ Dropping mention from %s: %v", content.SourceURL, err)
				continue
			}
			resolver.Add(candidate, place, mention)
		}
	}

	p.persist(ctx, resolver.Groups(), stats)

	stats.FinishedAt = p.now().UTC()
	log.Printf("✅ Aggregation pass complete: %d restaurants (%d new), %d mentions stored, %d scores written, %d errors",
		stats.RestaurantsSeen, stats.RestaurantsNew, stats.MentionsStored, stats.ScoresWritten, len(stats.Errors))
	return stats
}

func (p *Pipeline) lookupPlace(ctx context.Context, name string, cache map[string]*places.PlaceResult, stats *PipelineStats) *places.PlaceResult {
	if place, ok := cache[name]; ok {
		return place
	}
	place, err := p.finder.FindPlace(ctx, name, p.city)
	if err != nil {
		// A failed lookup is the same as a miss; the identity falls
		// back to the extracted name.
		log.Printf("⚠️ Place lookup failed for %q: %v", name, err)
		stats.addError("place lookup %q: %v", name, err)
		place = nil
	}
	if place != nil {
		stats.PlacesEnriched++
	}
	cache[name] = place
	return place
}

// rawMentionFor assembles the loosely typed record handed to the
// normalizer. The mention URL is suffixed with the restaurant slug
// when one content item names several restaurants, so each pair keeps
// its own idempotency key.
func (p *Pipeline) rawMentionFor(content scrapers.ScrapedContent, candidate llm.ExtractedRestaurant, sentiment *llm.SentimentAnalysis) RawMention {
	sourceURL := content.SourceURL
	if slug := models.Slugify(candidate.Name); slug != "" {
		sourceURL = content.SourceURL + "#" + slug
	}

	raw := RawMention{
		RestaurantName:  candidate.Name,
		SourceKind:      string(content.SourceKind),
		SourceURL:       sourceURL,
		SourceID:        content.SourceID,
		Title:           content.Title,
		RawText:         content.RawText,
		Author:          content.Author,
		Community:       content.Community,
		Score:           content.Score,
		CommentsCount:   content.CommentsCount,
		DishesMentioned: candidate.RecommendedDishes,
		PriceMentioned:  candidate.PriceHint,
		VibeExtracted:   candidate.Vibe,
		PostedAt:        content.PostedAt,
		ScrapedAt:       p.now().UTC(),
	}
	if sentiment != nil {
		raw.SentimentScore = sentiment.OverallScore
		raw.SentimentLabel = sentiment.Label
		raw.Aspects = sentiment.Aspects
	}
	return raw
}

// persist writes each resolved group: identity first, then its
// mentions, then a full score-set replace computed from the complete
// stored history (not just this run's mentions).
func (p *Pipeline) persist(ctx context.Context, groups []*ResolvedRestaurant, stats *PipelineStats) {
	now := p.now().UTC()

	for _, group := range groups {
		restaurant, created, err := p.store.UpsertRestaurant(group)
		if err != nil {
			stats.addError("restaurant %q: %v", group.Name, err)
			log.Printf("⚠️ Skipping restaurant %q: %v", group.Name, err)
			// Mentions still get stored, just without an identity link.
			for _, mention := range group.Mentions {
				if err := p.store.UpsertMention(mention, nil); err != nil {
					stats.addError("%v", err)
					log.Printf("⚠️ %v", err)
					continue
				}
				stats.MentionsStored++
			}
			continue
		}

		stats.RestaurantsSeen++
		if created {
			stats.RestaurantsNew++
		}

		for _, mention := range group.Mentions {
			if err := p.store.UpsertMention(mention, &restaurant.ID); err != nil {
				stats.addError("%v", err)
				log.Printf("⚠️ %v", err)
				continue
			}
			stats.MentionsStored++
		}

		history, err := p.store.MentionsForRestaurant(restaurant.ID)
		if err != nil {
			stats.addError("%v", err)
			log.Printf("⚠️ %v", err)
			continue
		}
		scores := scoring.Compute(history, restaurant.Rating, now)
		if err := p.store.ReplaceScoreSet(restaurant.ID, scores); err != nil {
			stats.addError("%v", err)
			log.Printf("⚠️ %v", err)
			continue
		}
		stats.ScoresWritten++

		if created && p.embedder != nil && scores.SentimentScore >= (embedSentimentFloor+1)*5 {
			p.embed(ctx, restaurant, group, stats)
		}
	}
}

func (p *Pipeline) embed(ctx context.Context, restaurant *models.Restaurant, group *ResolvedRestaurant, stats *PipelineStats) {
	text := embeddings.ProfileText(restaurant.Name, p.city, group.CuisineTags, group.RecommendedDishes, group.Vibe)
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		stats.addError("embedding %q: %v", restaurant.Name, err)
		log.Printf("⚠️ Embedding failed for %q: %v", restaurant.Name, err)
		return
	}
	if err := p.store.SaveEmbedding(restaurant.ID, vector); err != nil {
		stats.addError("%v", err)
		log.Printf("⚠️ %v", err)
	}
}

// Rescore recomputes every restaurant's scores from stored mentions
// without scraping or extraction.
func (p *Pipeline) Rescore() (int, error) {
	now := p.now().UTC()
	return p.store.RescoreAll(func(mentions []models.Mention, rating *float64) models.ScoreSet {
		return scoring.Compute(mentions, rating, now)
	})
}
