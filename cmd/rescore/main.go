// Recomputes every restaurant's score set from its stored mention
// history, without scraping or extraction. Run after tuning score
// weights or backfilling mentions.
package main

import (
	"log"

	"table-buzz/internal/config"
	"table-buzz/internal/database"
	"table-buzz/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
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

	workerService := worker.NewWorkerService(db, cfg)
	updated, err := workerService.Rescore()
	if err != nil {
		log.Fatal("Rescore failed:", err)
	}

	log.Printf("✅ Rescored %d restaurants", updated)
}
