package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-server/cache"
)

type CacheHandler struct {
	cache cache.PropertyCache
}

func NewCacheHandler(c cache.PropertyCache) *CacheHandler {
	return &CacheHandler{cache: c}
}

// GetCacheStats handles GET /api/cache/stats (admin)
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  h.cache.Stats(c.Request.Context()),
	})
}

// InvalidateProperty handles DELETE /api/cache/properties/:id (admin)
func (h *CacheHandler) InvalidateProperty(c *gin.Context) {
	h.cache.Invalidate(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

// ClearCache handles DELETE /api/cache (admin)
func (h *CacheHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		log.Printf("[cache] clear failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
