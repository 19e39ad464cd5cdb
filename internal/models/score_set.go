package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreSet holds the derived reputation scores for one restaurant. It
// is recomputed in full on every aggregation pass and replaced as a
// whole; individual fields are never patched.
type ScoreSet struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id" gorm:"uniqueIndex;not null"`

	BuzzScore      float64 `json:"buzz_score" db:"buzz_score" gorm:"default:0"`           // 0-20
	SentimentScore float64 `json:"sentiment_score" db:"sentiment_score" gorm:"default:5"` // 0-10, neutral 5.0
	ViralScore     float64 `json:"viral_score" db:"viral_score" gorm:"default:0"`         // 0-10
	ProScore       float64 `json:"pro_score" db:"pro_score" gorm:"default:0"`             // 0-10

	TotalMentions int  `json:"total_mentions" db:"total_mentions" gorm:"default:0"`
	IsTrending    bool `json:"is_trending" db:"is_trending" gorm:"default:false"`

	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ScoreSet model
func (ScoreSet) TableName() string {
	return "score_sets"
}
