package ingest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"table-buzz/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func placeGroup() *ResolvedRestaurant {
	placeID := "place-123"
	rating := 4.5
	return &ResolvedRestaurant{
		Key:         placeID,
		Name:        "Pho Tien Thanh",
		PlaceID:     &placeID,
		Address:     "57 Ossington Ave",
		City:        "Toronto",
		PriceTier:   2,
		Rating:      &rating,
		CuisineTags: []string{"vietnamese"},
		Sources:     []string{"social"},
	}
}

func TestUpsertRestaurantIdempotentByPlaceID(t *testing.T) {
	store := NewStore(setupTestDB(t))

	first, created, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	store.db.Model(&models.Restaurant{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertRestaurantIdempotentByName(t *testing.T) {
	store := NewStore(setupTestDB(t))
	group := &ResolvedRestaurant{Key: "Bar Isabel", Name: "Bar Isabel", City: "Toronto", PriceTier: 2}

	first, created, err := store.UpsertRestaurant(group)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bar-isabel", first.Slug)

	_, created, err = store.UpsertRestaurant(group)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	store.db.Model(&models.Restaurant{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertRestaurantAdoptsUnenrichedRowWhenPlaceIDArrives(t *testing.T) {
	store := NewStore(setupTestDB(t))

	// First pass had no enrichment.
	unenriched := &ResolvedRestaurant{Key: "Pho Tien Thanh", Name: "Pho Tien Thanh", City: "Toronto", PriceTier: 2}
	first, _, err := store.UpsertRestaurant(unenriched)
	require.NoError(t, err)

	// Later pass resolves the same name to a place id.
	second, created, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.PlaceID)
	assert.Equal(t, "place-123", *second.PlaceID)
	assert.Equal(t, "57 Ossington Ave", second.Address)
}

func TestUpsertMentionIdempotentBySourceURL(t *testing.T) {
	store := NewStore(setupTestDB(t))
	restaurant, _, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)

	mention := &models.Mention{
		RestaurantName: "Pho Tien Thanh",
		SourceKind:     models.SourceSocial,
		SourceURL:      "https://reddit.com/r/FoodToronto/abc#pho-tien-thanh",
		Score:          10,
	}
	require.NoError(t, store.UpsertMention(mention, &restaurant.ID))

	// Re-ingesting the same URL with fresher counters updates in place.
	updated := &models.Mention{
		RestaurantName: "Pho Tien Thanh",
		SourceKind:     models.SourceSocial,
		SourceURL:      "https://reddit.com/r/FoodToronto/abc#pho-tien-thanh",
		Score:          25,
		CommentsCount:  4,
	}
	require.NoError(t, store.UpsertMention(updated, &restaurant.ID))

	var stored []models.Mention
	require.NoError(t, store.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, 25, stored[0].Score)
	assert.Equal(t, 4, stored[0].CommentsCount)
}

func TestUpsertMentionStoresOrphansWithoutLink(t *testing.T) {
	store := NewStore(setupTestDB(t))

	orphan := &models.Mention{
		RestaurantName: "Unknown Spot",
		SourceKind:     models.SourceBlog,
		SourceURL:      "https://blog.example.com/post",
	}
	require.NoError(t, store.UpsertMention(orphan, nil))

	var stored models.Mention
	require.NoError(t, store.db.First(&stored).Error)
	assert.Nil(t, stored.RestaurantID)
}

func TestReplaceScoreSetKeepsOneRowPerRestaurant(t *testing.T) {
	store := NewStore(setupTestDB(t))
	restaurant, _, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, store.ReplaceScoreSet(restaurant.ID, models.ScoreSet{
		BuzzScore: 8.2, SentimentScore: 7.1, TotalMentions: 3, ComputedAt: now,
	}))
	require.NoError(t, store.ReplaceScoreSet(restaurant.ID, models.ScoreSet{
		BuzzScore: 9.4, SentimentScore: 7.8, TotalMentions: 5, IsTrending: true, ComputedAt: now,
	}))

	var stored []models.ScoreSet
	require.NoError(t, store.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.InDelta(t, 9.4, stored[0].BuzzScore, 1e-9)
	assert.Equal(t, 5, stored[0].TotalMentions)
	assert.True(t, stored[0].IsTrending)
}

func TestMentionsForRestaurantExcludesOrphans(t *testing.T) {
	store := NewStore(setupTestDB(t))
	restaurant, _, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)

	require.NoError(t, store.UpsertMention(&models.Mention{
		RestaurantName: "Pho Tien Thanh",
		SourceKind:     models.SourceSocial,
		SourceURL:      "https://a",
	}, &restaurant.ID))
	require.NoError(t, store.UpsertMention(&models.Mention{
		RestaurantName: "Somewhere Else",
		SourceKind:     models.SourceSocial,
		SourceURL:      "https://b",
	}, nil))

	mentions, err := store.MentionsForRestaurant(restaurant.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, "https://a", mentions[0].SourceURL)
}

func TestSaveEmbedding(t *testing.T) {
	store := NewStore(setupTestDB(t))
	restaurant, _, err := store.UpsertRestaurant(placeGroup())
	require.NoError(t, err)

	require.NoError(t, store.SaveEmbedding(restaurant.ID, []float64{0.1, 0.2, 0.3}))

	var stored models.Restaurant
	require.NoError(t, store.db.First(&stored, "id = ?", restaurant.ID).Error)
	assert.Equal(t, "[0.1,0.2,0.3]", stored.Embedding)

	// Empty vectors are a no-op, not an error.
	require.NoError(t, store.SaveEmbedding(uuid.New(), nil))
}
