package httpHandler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rental-server/usecases"
)

type PropertyHandler struct {
	useCase *usecases.PropertyUseCase
}

func NewPropertyHandler(useCase *usecases.PropertyUseCase) *PropertyHandler {
	return &PropertyHandler{useCase: useCase}
}

// ListProperties handles GET /api/properties?limit=&offset=
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 0
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	properties, err := h.useCase.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// GetProperty handles GET /api/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.useCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// CreateProperty handles POST /api/properties (admin)
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	hostID := currentUserID(c)
	if u := currentUser(c); u != nil {
		hostID = u.ID
	}
	property, err := h.useCase.Create(c.Request.Context(), body, hostID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": property})
}

// UpdateProperty handles PUT /api/properties/:id (admin)
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	property, err := h.useCase.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// DeleteProperty handles DELETE /api/properties/:id (admin)
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	property, err := h.useCase.SoftDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Property deleted successfully",
		"property": property,
	})
}
