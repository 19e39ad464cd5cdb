// Package database opens, migrates and closes the PostgreSQL
// connection. Callers receive a *gorm.DB and thread it through their
// collaborators; there is no package-level connection state.
package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"table-buzz/internal/models"
)

// Config holds the connection settings, read from DB_* environment
// variables.
type Config struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME" default:"table_buzz"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// LoadConfig reads the DB_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("db", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process database config: %w", err)
	}
	return &cfg, nil
}

// DSN renders the keyword/value connection string. The password key is
// omitted entirely when empty, which keeps peer-authenticated local
// setups working.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + c.Port,
		"user=" + c.User,
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	parts = append(parts, "dbname="+c.Name, "sslmode="+c.SSLMode)
	return strings.Join(parts, " ")
}

// Connect opens a gorm connection to PostgreSQL.
func Connect(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
