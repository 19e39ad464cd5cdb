package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"table-buzz/internal/models"
)

// Store is the merge/upsert coordinator. Every write is idempotent by
// key (place id or name for restaurants, source URL for mentions,
// restaurant id for score sets), so re-running a pass over the same
// input converges to the same stored state.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertRestaurant writes one resolved identity. Matching prefers the
// place id; a restaurant without one matches by exact name. Returns
// the persisted row (with its id) and whether it was newly created.
func (s *Store) UpsertRestaurant(group *ResolvedRestaurant) (*models.Restaurant, bool, error) {
	var existing models.Restaurant
	err := s.findExisting(group, &existing)
	if err == nil {
		s.applyGroup(&existing, group)
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to update restaurant %q: %w", group.Name, err)
		}
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up restaurant %q: %w", group.Name, err)
	}

	restaurant := models.Restaurant{ID: uuid.New()}
	s.applyGroup(&restaurant, group)
	if err := s.db.Create(&restaurant).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create restaurant %q: %w", group.Name, err)
	}
	return &restaurant, true, nil
}

func (s *Store) findExisting(group *ResolvedRestaurant, out *models.Restaurant) error {
	if group.PlaceID != nil {
		if err := s.db.Where("place_id = ?", *group.PlaceID).First(out).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// A row created before enrichment existed has no place id yet;
		// adopt it by name so the identity does not fork.
	}
	return s.db.Where("name = ? AND place_id IS NULL", group.Name).First(out).Error
}

func (s *Store) applyGroup(restaurant *models.Restaurant, group *ResolvedRestaurant) {
	restaurant.Name = group.Name
	restaurant.Slug = models.Slugify(group.Name)
	restaurant.City = group.City
	restaurant.PriceTier = group.PriceTier
	if group.PlaceID != nil {
		restaurant.PlaceID = group.PlaceID
		restaurant.Address = group.Address
		restaurant.Latitude = group.Latitude
		restaurant.Longitude = group.Longitude
		restaurant.MapsURL = group.MapsURL
		restaurant.Rating = group.Rating
		restaurant.ReviewsCount = group.ReviewsCount
		restaurant.PhotoURL = group.PhotoURL
	}
	if group.Vibe != "" {
		restaurant.Vibe = group.Vibe
	}
	restaurant.CuisineTags = mergeUnique(restaurant.CuisineTags, group.CuisineTags)
	restaurant.RecommendedDishes = mergeUnique(restaurant.RecommendedDishes, group.RecommendedDishes)
	restaurant.Sources = mergeUnique(restaurant.Sources, group.Sources)
	now := time.Now().UTC()
	restaurant.LastScrapedAt = &now
	if restaurant.CuisineTags == nil {
		restaurant.CuisineTags = pq.StringArray{}
	}
	if restaurant.RecommendedDishes == nil {
		restaurant.RecommendedDishes = pq.StringArray{}
	}
	if restaurant.Sources == nil {
		restaurant.Sources = pq.StringArray{}
	}
}

// UpsertMention writes one mention keyed by its source URL. A conflict
// refreshes the mutable fields instead of inserting a duplicate. The
// restaurant link may be nil for orphaned mentions; they are stored
// and excluded from scoring until a later pass resolves them.
func (s *Store) UpsertMention(mention *models.Mention, restaurantID *uuid.UUID) error {
	mention.RestaurantID = restaurantID
	if mention.ID == uuid.Nil {
		mention.ID = uuid.New()
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"restaurant_id", "restaurant_name", "title", "raw_text",
			"score", "comments_count", "sentiment_score", "sentiment_label",
			"aspects", "dishes_mentioned", "price_mentioned", "vibe_extracted",
			"engagement_score", "posted_at", "scraped_at", "updated_at",
		}),
	}).Create(mention).Error
	if err != nil {
		return fmt.Errorf("failed to upsert mention %s: %w", mention.SourceURL, err)
	}
	return nil
}

// ReplaceScoreSet swaps in a freshly computed score set for the
// restaurant. The row is replaced as a whole, never field-patched.
func (s *Store) ReplaceScoreSet(restaurantID uuid.UUID, scores models.ScoreSet) error {
	scores.RestaurantID = restaurantID

	var existing models.ScoreSet
	err := s.db.Where("restaurant_id = ?", restaurantID).First(&existing).Error
	if err == nil {
		scores.ID = existing.ID
		scores.CreatedAt = existing.CreatedAt
		if err := s.db.Save(&scores).Error; err != nil {
			return fmt.Errorf("failed to replace score set for %s: %w", restaurantID, err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up score set for %s: %w", restaurantID, err)
	}

	scores.ID = uuid.New()
	if err := s.db.Create(&scores).Error; err != nil {
		return fmt.Errorf("failed to create score set for %s: %w", restaurantID, err)
	}
	return nil
}

// SaveEmbedding stores a JSON-encoded vector on the restaurant row.
func (s *Store) SaveEmbedding(restaurantID uuid.UUID, vector []float64) error {
	if len(vector) == 0 {
		return nil
	}
	encoded, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	err = s.db.Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		Update("embedding", string(encoded)).Error
	if err != nil {
		return fmt.Errorf("failed to save embedding for %s: %w", restaurantID, err)
	}
	return nil
}

// MentionsForRestaurant loads the linked mention history used for
// scoring. Orphaned mentions (nil restaurant id) never appear here.
func (s *Store) MentionsForRestaurant(restaurantID uuid.UUID) ([]models.Mention, error) {
	var mentions []models.Mention
	err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("scraped_at ASC").
		Find(&mentions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions for %s: %w", restaurantID, err)
	}
	return mentions, nil
}

// RescoreAll recomputes and replaces the score set of every restaurant
// from its current mention history. Used by the standalone rescore run
// and after backfills.
func (s *Store) RescoreAll(computeScores func(mentions []models.Mention, rating *float64) models.ScoreSet) (int, error) {
	var restaurants []models.Restaurant
	if err := s.db.Find(&restaurants).Error; err != nil {
		return 0, fmt.Errorf("failed to list restaurants: %w", err)
	}

	updated := 0
	for _, restaurant := range restaurants {
		mentions, err := s.MentionsForRestaurant(restaurant.ID)
		if err != nil {
			log.Printf("⚠️ Skipping rescore for %s: %v", restaurant.Name, err)
			continue
		}
		if err := s.ReplaceScoreSet(restaurant.ID, computeScores(mentions, restaurant.Rating)); err != nil {
			log.Printf("⚠️ Failed to rescore %s: %v", restaurant.Name, err)
			continue
		}
		updated++
	}
	return updated, nil
}
