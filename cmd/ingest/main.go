// Runs one scrape-and-aggregate pass and exits. Useful from cron or
// for backfills without keeping the server running.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"table-buzz/internal/config"
	"table-buzz/internal/database"
	"table-buzz/internal/worker"
)

func main() {
	limit := flag.Int("limit", 0, "override the per-source item limit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if *limit > 0 {
		cfg.LimitPerSource = *limit
	}

	dbConfig, err := database.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load database configuration:", err)
	}
	db, err := database.Connect(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	workerService := worker.NewWorkerService(db, cfg)
	if err := workerService.RunPass(); err != nil {
		log.Fatal("Pass failed to start:", err)
	}

	stats := workerService.LastStats()
	encoded, _ := json.MarshalIndent(stats, "", "  ")
	os.Stdout.Write(append(encoded, '\n'))
}
