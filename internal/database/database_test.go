package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNOmitsEmptyPassword(t *testing.T) {
	cfg := &Config{
		Host:    "localhost",
		Port:    "5432",
		User:    "postgres",
		Name:    "table_buzz",
		SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres dbname=table_buzz sslmode=disable",
		cfg.DSN())

	cfg.Password = "hunter2"
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=hunter2 dbname=table_buzz sslmode=disable",
		cfg.DSN())
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "buzz_test")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "buzz_test", cfg.Name)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "5432", cfg.Port) // default survives partial overrides
}
