package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"table-buzz/internal/embeddings"
	"table-buzz/internal/models"
)

// SearchHandler answers natural language queries by ranking stored
// restaurant embeddings against the embedded query.
type SearchHandler struct {
	db       *gorm.DB
	embedder embeddings.Embedder
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(db *gorm.DB, embedder embeddings.Embedder) *SearchHandler {
	return &SearchHandler{db: db, embedder: embedder}
}

type searchResult struct {
	models.Restaurant
	Similarity float64 `json:"similarity"`
}

// Search handles GET /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}

	queryVector, err := h.embedder.Embed(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to embed search query",
			"details": err.Error(),
		})
		return
	}
	if queryVector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Semantic search is not configured"})
		return
	}

	var restaurants []models.Restaurant
	err = h.db.Model(&models.Restaurant{}).
		Preload("ScoreSet").
		Where("embedding IS NOT NULL AND embedding != ''").
		Find(&restaurants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve restaurants",
			"details": err.Error(),
		})
		return
	}

	results := make([]searchResult, 0, len(restaurants))
	for _, restaurant := range restaurants {
		var vector []float64
		if err := json.Unmarshal([]byte(restaurant.Embedding), &vector); err != nil {
			continue
		}
		results = append(results, searchResult{
			Restaurant: restaurant,
			Similarity: embeddings.Cosine(queryVector, vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"query":   query,
	})
}
