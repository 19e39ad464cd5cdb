// Package config loads application-level settings from the environment.
// Database connection settings live in internal/database; everything the
// ingestion pipeline and API need beyond that is here.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all pipeline and API configuration.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	City     string `envconfig:"CITY" default:"Toronto"`

	// LLM extraction collaborator
	LLMAPIKey  string `envconfig:"LLM_API_KEY"`
	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"llama-3.1-8b-instant"`

	// Place enrichment collaborator
	PlacesAPIKey  string `envconfig:"PLACES_API_KEY"`
	PlacesBaseURL string `envconfig:"PLACES_BASE_URL" default:"https://maps.googleapis.com/maps/api/place"`

	// Embedding collaborator
	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingModel   string `envconfig:"EMBEDDING_MODEL" default:"all-MiniLM-L6-v2"`

	// Scraping
	Subreddits     []string `envconfig:"SUBREDDITS" default:"askTO,toronto,FoodToronto,TorontoFood"`
	RedditBaseURL  string   `envconfig:"REDDIT_BASE_URL" default:"https://old.reddit.com"`
	LimitPerSource int      `envconfig:"LIMIT_PER_SOURCE" default:"50"`

	// Scheduled aggregation passes (cron spec, default nightly)
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`

	// Extraction rate limiting
	MinCallIntervalSeconds int `envconfig:"LLM_MIN_CALL_INTERVAL_SECONDS" default:"2"`
	MaxRetries             int `envconfig:"LLM_MAX_RETRIES" default:"3"`
}

// Load reads the configuration from environment variables, consulting a
// .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
