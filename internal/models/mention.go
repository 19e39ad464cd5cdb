package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SourceKind classifies where a mention was observed.
type SourceKind string

const (
	SourceSocial SourceKind = "social" // forum/social posts (e.g. Reddit)
	SourceBlog   SourceKind = "blog"   // food blogs
	SourcePress  SourceKind = "press"  // professional press
	SourceManual SourceKind = "manual" // hand-entered
)

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceSocial, SourceBlog, SourcePress, SourceManual:
		return true
	}
	return false
}

// Sentiment labels produced by the analysis collaborator.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

// ValidSentimentLabel reports whether label is a known sentiment label.
func ValidSentimentLabel(label string) bool {
	switch label {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	}
	return false
}

// Mention represents one sourced observation of a restaurant. The
// source URL is globally unique: re-ingesting the same URL updates the
// existing record instead of duplicating it.
type Mention struct {
	ID           uuid.UUID  `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RestaurantID *uuid.UUID `json:"restaurant_id" db:"restaurant_id" gorm:"index"` // nil until resolved

	RestaurantName string     `json:"restaurant_name" db:"restaurant_name" gorm:"index;not null"`
	SourceKind     SourceKind `json:"source_kind" db:"source_kind" gorm:"not null"`
	SourceURL      string     `json:"source_url" db:"source_url" gorm:"uniqueIndex;not null"`
	SourceID       string     `json:"source_id" db:"source_id"`

	Title   string `json:"title" db:"title"`
	RawText string `json:"raw_text" db:"raw_text" gorm:"type:text"`
	Author  string `json:"author" db:"author"`

	// Community engagement counters (forum score / comment count)
	Community     string `json:"community" db:"community"`
	Score         int    `json:"score" db:"score" gorm:"default:0"`
	CommentsCount int    `json:"comments_count" db:"comments_count" gorm:"default:0"`

	// Sentiment analysis output; nil means the mention was never analyzed
	SentimentScore *float64 `json:"sentiment_score" db:"sentiment_score"` // [-1, 1]
	SentimentLabel *string  `json:"sentiment_label" db:"sentiment_label"`
	Aspects        string   `json:"aspects" db:"aspects" gorm:"type:text"` // JSON aspect -> score

	// Extraction output
	DishesMentioned pq.StringArray `json:"dishes_mentioned" db:"dishes_mentioned" gorm:"type:text[]"`
	PriceMentioned  string         `json:"price_mentioned" db:"price_mentioned"`
	VibeExtracted   string         `json:"vibe_extracted" db:"vibe_extracted"`

	EngagementScore float64    `json:"engagement_score" db:"engagement_score" gorm:"default:0"`
	PostedAt        *time.Time `json:"posted_at" db:"posted_at"`
	ScrapedAt       time.Time  `json:"scraped_at" db:"scraped_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Restaurant *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID;references:ID"`
}

// TableName sets the table name for the Mention model
func (Mention) TableName() string {
	return "mentions"
}
