package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-server/usecases"
)

type NotificationHandler struct {
	useCase *usecases.NotificationUseCase
}

func NewNotificationHandler(useCase *usecases.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{useCase: useCase}
}

type CreateNotificationRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type" binding:"omitempty,oneof=security booking payment other"`
}

// GetNotifications handles GET /api/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.useCase.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// CreateNotification handles POST /api/notifications. The notification is
// addressed to the caller.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	n, err := h.useCase.Create(c.Request.Context(), currentUserID(c), req.Title, req.Message, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

// MarkAsRead handles PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.useCase.MarkRead(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// DeleteNotification handles DELETE /api/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.useCase.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
