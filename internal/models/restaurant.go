package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Restaurant represents the canonical, deduplicated identity of one
// restaurant. When PlaceID is set it is the authoritative identity key;
// otherwise the (exact) name is.
type Restaurant struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name string    `json:"name" db:"name" gorm:"index;not null"`
	Slug string    `json:"slug" db:"slug" gorm:"index"`

	// Location
	Address   string  `json:"address" db:"address"`
	City      string  `json:"city" db:"city"`
	Latitude  float64 `json:"latitude" db:"latitude" gorm:"default:0"`
	Longitude float64 `json:"longitude" db:"longitude" gorm:"default:0"`

	// Place enrichment (external map provider)
	PlaceID      *string  `json:"place_id" db:"place_id" gorm:"uniqueIndex"`
	MapsURL      string   `json:"maps_url" db:"maps_url"`
	Rating       *float64 `json:"rating" db:"rating"` // 0-5 scale
	ReviewsCount int      `json:"reviews_count" db:"reviews_count" gorm:"default:0"`
	PhotoURL     string   `json:"photo_url" db:"photo_url"`

	// Extracted details
	PriceTier         int            `json:"price_tier" db:"price_tier" gorm:"default:2"` // 1-4
	CuisineTags       pq.StringArray `json:"cuisine_tags" db:"cuisine_tags" gorm:"type:text[]"`
	Vibe              string         `json:"vibe" db:"vibe"`
	RecommendedDishes pq.StringArray `json:"recommended_dishes" db:"recommended_dishes" gorm:"type:text[]"`
	Sources           pq.StringArray `json:"sources" db:"sources" gorm:"type:text[]"`

	// Semantic search vector, JSON-encoded float64 array (can be
	// upgraded to pgvector later)
	Embedding string `json:"-" db:"embedding" gorm:"type:text"`

	LastScrapedAt *time.Time `json:"last_scraped_at" db:"last_scraped_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Mentions []Mention `json:"mentions,omitempty" gorm:"foreignKey:RestaurantID"`
	ScoreSet *ScoreSet `json:"score_set,omitempty" gorm:"foreignKey:RestaurantID"`
}

// TableName sets the table name for the Restaurant model
func (Restaurant) TableName() string {
	return "restaurants"
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugHyphens  = regexp.MustCompile(`[\s_]+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from a restaurant name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
