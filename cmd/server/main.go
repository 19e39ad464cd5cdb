package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"table-buzz/internal/config"
	"table-buzz/internal/database"
	"table-buzz/internal/embeddings"
	"table-buzz/internal/handlers"
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

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize and start the background worker
	workerService := worker.NewWorkerService(db, cfg)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background worker:", err)
	}

	setupGracefulShutdown(workerService, db)
	setupServer(cfg, db, workerService)
}

func setupGracefulShutdown(workerService *worker.WorkerService, db *gorm.DB) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")
		workerService.Stop()
		database.Close(db)
		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(cfg *config.Config, db *gorm.DB, workerService *worker.WorkerService) {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	restaurantHandler := handlers.NewRestaurantHandler(db)
	searchHandler := handlers.NewSearchHandler(db, embeddings.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModel))
	adminHandler := handlers.NewAdminHandler(db, workerService)
	docsHandler := handlers.NewDocsHandler()

	r.GET("/health", restaurantHandler.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/restaurants", restaurantHandler.ListRestaurants)
		api.GET("/restaurants/:slug", restaurantHandler.GetRestaurant)
		api.GET("/trending", restaurantHandler.GetTrending)
		api.GET("/search", searchHandler.Search)
	}

	admin := r.Group("/admin", adminHandler.AdminAuth())
	{
		admin.POST("/ingest", adminHandler.TriggerIngest)
		admin.POST("/rescore", adminHandler.TriggerRescore)
		admin.GET("/status", adminHandler.GetStatus)
	}

	r.GET("/docs/:doc", docsHandler.ServeMarkdownAsHTML)

	log.Printf("🚀 Server starting on port %s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
