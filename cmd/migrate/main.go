// Runs database migrations and exits.
package main

import (
	"log"

	"table-buzz/internal/database"
)

func main() {
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

	log.Println("✅ Migrations complete")
}
