package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-server/usecases"
)

type BookingHandler struct {
	useCase *usecases.BookingUseCase
}

func NewBookingHandler(useCase *usecases.BookingUseCase) *BookingHandler {
	return &BookingHandler{useCase: useCase}
}

type CreateBookingRequest struct {
	PropertyID      string      `json:"propertyId" binding:"required"`
	CheckIn         string      `json:"checkIn" binding:"required"`
	CheckOut        string      `json:"checkOut" binding:"required"`
	Guests          int         `json:"guests" binding:"required,min=1"`
	TotalPrice      interface{} `json:"totalPrice"`
	SpecialRequests *string     `json:"specialRequests"`
}

type UpdateBookingRequest struct {
	CheckIn         *string `json:"checkIn"`
	CheckOut        *string `json:"checkOut"`
	Guests          *int    `json:"guests" binding:"omitempty,min=1"`
	SpecialRequests *string `json:"specialRequests"`
	Status          *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.useCase.Create(c.Request.Context(), currentUserID(c), usecases.BookingInput{
		PropertyID:      req.PropertyID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		TotalPrice:      req.TotalPrice,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// GetBookings handles GET /api/bookings
func (h *BookingHandler) GetBookings(c *gin.Context) {
	bookings, err := h.useCase.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking handles GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.useCase.GetOwned(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// UpdateBooking handles PUT /api/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.useCase.Update(c.Request.Context(), c.Param("id"), currentUserID(c), usecases.BookingChanges{
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
		Status:          req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBooking handles PATCH /api/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.useCase.Cancel(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
