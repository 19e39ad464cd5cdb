package ingest

import (
	"strings"

	"table-buzz/internal/llm"
	"table-buzz/internal/models"
	"table-buzz/internal/places"
)

// ResolvedRestaurant is one identity group built during a pass: the
// best-known attributes for a restaurant plus every mention that
// resolved to it, in processing order.
type ResolvedRestaurant struct {
	Key  string // place id when enriched, else the extracted name
	Name string

	PlaceID      *string
	Address      string
	City         string
	Latitude     float64
	Longitude    float64
	MapsURL      string
	Rating       *float64
	ReviewsCount int
	PhotoURL     string

	PriceTier         int
	CuisineTags       []string
	Vibe              string
	RecommendedDishes []string
	Sources           []string

	Mentions []*models.Mention
}

// Resolver groups mentions under canonical restaurant keys for one
// pass. It is single-pass state: built sequentially, read once, then
// discarded.
type Resolver struct {
	city   string
	groups map[string]*ResolvedRestaurant
	order  []string
}

func NewResolver(city string) *Resolver {
	return &Resolver{
		city:   city,
		groups: make(map[string]*ResolvedRestaurant),
	}
}

// Add resolves one (extraction, enrichment, mention) triple into its
// group. The key is the place id when enrichment found one, otherwise
// the extracted name verbatim. Name matching is exact and
// case-sensitive; two casings of the same restaurant only merge when
// both enrich to the same place id.
func (r *Resolver) Add(extracted llm.ExtractedRestaurant, place *places.PlaceResult, mention *models.Mention) *ResolvedRestaurant {
	key := extracted.Name
	if place != nil && place.PlaceID != "" {
		key = place.PlaceID
	}

	group, ok := r.groups[key]
	if !ok {
		group = &ResolvedRestaurant{
			Key:       key,
			Name:      extracted.Name,
			City:      r.city,
			PriceTier: 2,
		}
		r.groups[key] = group
		r.order = append(r.order, key)
	}

	// Factual fields come from enrichment when present; the extraction
	// text is only a fallback.
	if place != nil && place.PlaceID != "" {
		group.PlaceID = &place.PlaceID
		group.Name = place.Name
		group.Address = place.Address
		group.Latitude = place.Latitude
		group.Longitude = place.Longitude
		group.MapsURL = place.MapsURL
		group.Rating = place.Rating
		group.ReviewsCount = place.ReviewsCount
		group.PhotoURL = place.PhotoURL
		if place.PriceLevel != nil {
			group.PriceTier = priceLevelToTier(*place.PriceLevel)
		}
	}

	// Subjective fields always come from the extraction; enrichment has
	// no opinion on vibe, cuisine or dishes. Latest extraction wins.
	if extracted.Vibe != "" {
		group.Vibe = extracted.Vibe
	}
	if len(extracted.CuisineTags) > 0 {
		group.CuisineTags = mergeUnique(group.CuisineTags, extracted.CuisineTags)
	}
	if len(extracted.RecommendedDishes) > 0 {
		group.RecommendedDishes = mergeUnique(group.RecommendedDishes, extracted.RecommendedDishes)
	}
	if group.PlaceID == nil && extracted.PriceHint != "" {
		if tier := priceTierFromHint(extracted.PriceHint); tier > 0 {
			group.PriceTier = tier
		}
	}

	if mention != nil {
		group.Mentions = append(group.Mentions, mention)
		group.Sources = mergeUnique(group.Sources, []string{string(mention.SourceKind)})
	}
	return group
}

// Groups returns the resolved groups in first-seen order.
func (r *Resolver) Groups() []*ResolvedRestaurant {
	out := make([]*ResolvedRestaurant, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.groups[key])
	}
	return out
}

// priceLevelToTier maps the provider's 0-4 price level onto the 1-4
// tier scale. Level 0 (free) never really applies to restaurants and
// collapses into tier 1.
func priceLevelToTier(level int) int {
	switch {
	case level <= 1:
		return 1
	case level >= 4:
		return 4
	default:
		return level
	}
}

// priceTierFromHint interprets a freeform price hint ("$$", "cheap
// eats", "fine dining"). Returns 0 when the hint carries no signal.
func priceTierFromHint(hint string) int {
	trimmed := strings.TrimSpace(hint)
	if dollars := strings.Count(trimmed, "$"); dollars > 0 && dollars == len(trimmed) {
		if dollars > 4 {
			return 4
		}
		return dollars
	}

	lower := strings.ToLower(trimmed)
	switch {
	case containsAny(lower, "cheap", "budget", "affordable", "inexpensive"):
		return 1
	case containsAny(lower, "fine dining", "high end", "high-end", "upscale", "expensive", "splurge"):
		return 4
	case containsAny(lower, "mid", "moderate", "reasonable"):
		return 2
	}
	return 0
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mergeUnique(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range incoming {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || seen[strings.ToLower(trimmed)] {
			continue
		}
		seen[strings.ToLower(trimmed)] = true
		existing = append(existing, trimmed)
	}
	return existing
}
