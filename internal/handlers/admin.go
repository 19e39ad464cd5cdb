package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"table-buzz/internal/models"
	"table-buzz/internal/worker"
)

// AdminHandler handles the admin endpoints
type AdminHandler struct {
	db            *gorm.DB
	workerService *worker.WorkerService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, workerService *worker.WorkerService) *AdminHandler {
	return &AdminHandler{db: db, workerService: workerService}
}

// AdminAuth middleware for basic password protection
func (h *AdminHandler) AdminAuth() gin.HandlerFunc {
	return gin.BasicAuth(gin.Accounts{
		"admin": getAdminPassword(),
	})
}

// getAdminPassword returns the admin password from environment or default
func getAdminPassword() string {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123" // Default password for development
	}
	return password
}

// TriggerIngest handles POST /admin/ingest, kicking off a scrape and
// aggregation pass in the background.
func (h *AdminHandler) TriggerIngest(c *gin.Context) {
	if err := h.workerService.TriggerPass(); err != nil {
		if errors.Is(err, worker.ErrPassInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "A pass is already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to trigger pass",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "pass started"})
}

// TriggerRescore handles POST /admin/rescore, recomputing every score
// set from stored mentions without scraping.
func (h *AdminHandler) TriggerRescore(c *gin.Context) {
	updated, err := h.workerService.Rescore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to rescore",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurants_rescored": updated})
}

// GetStatus handles GET /admin/status with table counts and the stats
// of the last completed pass.
func (h *AdminHandler) GetStatus(c *gin.Context) {
	var restaurantCount, mentionCount, orphanCount int64
	h.db.Model(&models.Restaurant{}).Count(&restaurantCount)
	h.db.Model(&models.Mention{}).Count(&mentionCount)
	h.db.Model(&models.Mention{}).Where("restaurant_id IS NULL").Count(&orphanCount)

	c.JSON(http.StatusOK, gin.H{
		"restaurants":     restaurantCount,
		"mentions":        mentionCount,
		"orphan_mentions": orphanCount,
		"last_pass":       h.workerService.LastStats(),
	})
}
