package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-buzz/internal/llm"
	"table-buzz/internal/models"
	"table-buzz/internal/places"
)

func testMention(name, url string) *models.Mention {
	return &models.Mention{
		RestaurantName: name,
		SourceKind:     models.SourceSocial,
		SourceURL:      url,
	}
}

func TestResolverMergesByPlaceID(t *testing.T) {
	resolver := NewResolver("Toronto")
	place := &places.PlaceResult{
		PlaceID: "place-123",
		Name:    "Pho Tien Thanh",
		Address: "57 Ossington Ave",
	}

	resolver.Add(llm.ExtractedRestaurant{Name: "Pho Tien Thanh"}, place, testMention("Pho Tien Thanh", "https://a"))
	resolver.Add(llm.ExtractedRestaurant{Name: "pho tien thanh"}, place, testMention("pho tien thanh", "https://b"))

	groups := resolver.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "place-123", groups[0].Key)
	assert.Len(t, groups[0].Mentions, 2)
}

func TestResolverNameMatchingIsCaseSensitive(t *testing.T) {
	resolver := NewResolver("Toronto")

	resolver.Add(llm.ExtractedRestaurant{Name: "Joe's Cafe"}, nil, testMention("Joe's Cafe", "https://a"))
	resolver.Add(llm.ExtractedRestaurant{Name: "joe's cafe"}, nil, testMention("joe's cafe", "https://b"))

	// Without a shared place id the two casings stay separate groups.
	assert.Len(t, resolver.Groups(), 2)
}

func TestResolverEnrichmentWinsFactualFields(t *testing.T) {
	resolver := NewResolver("Toronto")
	priceLevel := 3
	rating := 4.6
	place := &places.PlaceResult{
		PlaceID:    "place-123",
		Name:       "Pho Tien Thanh",
		Address:    "57 Ossington Ave",
		Latitude:   43.647,
		Longitude:  -79.419,
		PriceLevel: &priceLevel,
		Rating:     &rating,
	}

	group := resolver.Add(llm.ExtractedRestaurant{
		Name:        "Pho Tien Thanh Restaurant", // extraction's looser name loses
		Vibe:        "cozy, cash only",
		CuisineTags: []string{"vietnamese"},
		PriceHint:   "$", // ignored: enrichment has a price level
	}, place, testMention("Pho Tien Thanh Restaurant", "https://a"))

	assert.Equal(t, "Pho Tien Thanh", group.Name)
	assert.Equal(t, "57 Ossington Ave", group.Address)
	assert.Equal(t, 3, group.PriceTier)
	require.NotNil(t, group.Rating)
	assert.InDelta(t, 4.6, *group.Rating, 1e-9)

	// Subjective fields still come from the extraction.
	assert.Equal(t, "cozy, cash only", group.Vibe)
	assert.Equal(t, []string{"vietnamese"}, group.CuisineTags)
}

func TestResolverLatestExtractionWinsSubjectiveFields(t *testing.T) {
	resolver := NewResolver("Toronto")

	resolver.Add(llm.ExtractedRestaurant{Name: "Bar Isabel", Vibe: "loud"}, nil, testMention("Bar Isabel", "https://a"))
	group := resolver.Add(llm.ExtractedRestaurant{
		Name:        "Bar Isabel",
		Vibe:        "lively late-night tapas",
		CuisineTags: []string{"spanish", "Tapas"},
	}, nil, testMention("Bar Isabel", "https://b"))

	assert.Equal(t, "lively late-night tapas", group.Vibe)
	assert.Equal(t, []string{"spanish", "Tapas"}, group.CuisineTags)
}

func TestPriceTierFromHint(t *testing.T) {
	cases := map[string]int{
		"$":            1,
		"$$":           2,
		"$$$$":         4,
		"$$$$$":        4,
		"cheap eats":   1,
		"fine dining":  4,
		"moderate":     2,
		"great tacos":  0,
		"":             0,
	}
	for hint, want := range cases {
		assert.Equal(t, want, priceTierFromHint(hint), "hint %q", hint)
	}
}
