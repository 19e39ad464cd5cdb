package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"table-buzz/internal/models"
)

// RestaurantHandler handles HTTP requests for restaurants and scores
type RestaurantHandler struct {
	db *gorm.DB
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(db *gorm.DB) *RestaurantHandler {
	return &RestaurantHandler{db: db}
}

// sortColumns maps the sort_by query values onto columns, with the
// natural direction for each. Scores sort high to low by default,
// price and name low to high; an explicit order param overrides.
var sortColumns = map[string]struct {
	column       string
	defaultOrder string
}{
	"buzz":      {"score_sets.buzz_score", "desc"},
	"sentiment": {"score_sets.sentiment_score", "desc"},
	"viral":     {"score_sets.viral_score", "desc"},
	"pro":       {"score_sets.pro_score", "desc"},
	"mentions":  {"score_sets.total_mentions", "desc"},
	"rating":    {"restaurants.rating", "desc"},
	"price":     {"restaurants.price_tier", "asc"},
	"name":      {"restaurants.name", "asc"},
}

// ListRestaurants handles GET /api/restaurants
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := h.db.Model(&models.Restaurant{}).
		Joins("LEFT JOIN score_sets ON score_sets.restaurant_id = restaurants.id").
		Preload("ScoreSet")

	if priceMin, err := strconv.Atoi(c.Query("price_min")); err == nil {
		if priceMin < 1 || priceMin > 4 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_min must be between 1 and 4"})
			return
		}
		query = query.Where("restaurants.price_tier >= ?", priceMin)
	}
	if priceMax, err := strconv.Atoi(c.Query("price_max")); err == nil {
		if priceMax < 1 || priceMax > 4 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_max must be between 1 and 4"})
			return
		}
		query = query.Where("restaurants.price_tier <= ?", priceMax)
	}
	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("? = ANY(restaurants.cuisine_tags)", cuisine)
	}

	sortBy := c.DefaultQuery("sort_by", "buzz")
	sort, ok := sortColumns[sortBy]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort_by value: " + sortBy})
		return
	}
	order := c.DefaultQuery("order", sort.defaultOrder)
	if order != "asc" && order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be asc or desc"})
		return
	}
	orderExpr := sort.column + " " + order

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count restaurants",
			"details": err.Error(),
		})
		return
	}

	var restaurants []models.Restaurant
	err := query.Order(orderExpr).Limit(limit).Offset(offset).Find(&restaurants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve restaurants",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetRestaurant handles GET /api/restaurants/:slug
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	slug := c.Param("slug")

	var restaurant models.Restaurant
	err := h.db.Preload("ScoreSet").
		Preload("Mentions", func(db *gorm.DB) *gorm.DB {
			return db.Order("posted_at DESC")
		}).
		Where("slug = ?", slug).
		First(&restaurant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve restaurant",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// GetTrending handles GET /api/trending
func (h *RestaurantHandler) GetTrending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}

	var restaurants []models.Restaurant
	err := h.db.Model(&models.Restaurant{}).
		Joins("JOIN score_sets ON score_sets.restaurant_id = restaurants.id").
		Where("score_sets.is_trending = ?", true).
		Order("score_sets.buzz_score DESC").
		Limit(limit).
		Preload("ScoreSet").
		Find(&restaurants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve trending restaurants",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trending": restaurants,
		"count":    len(restaurants),
	})
}

// HealthCheck handles GET /health
func (h *RestaurantHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
