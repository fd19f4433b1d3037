package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-server/usecases"
)

type PaymentHandler struct {
	useCase *usecases.PaymentUseCase
}

func NewPaymentHandler(useCase *usecases.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{useCase: useCase}
}

type CreatePaymentRequest struct {
	BookingID     string      `json:"bookingId" binding:"required"`
	Amount        interface{} `json:"amount"`
	Currency      string      `json:"currency"`
	PaymentMethod string      `json:"paymentMethod"`
}

type PaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed failed refunded"`
}

// CreatePayment handles POST /api/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.useCase.Create(c.Request.Context(), currentUserID(c), usecases.PaymentInput{
		BookingID:     req.BookingID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetPayments handles GET /api/payments
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	payments, err := h.useCase.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// GetPayment handles GET /api/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.useCase.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// GetPaymentsByBooking handles GET /api/payments/booking/:id
func (h *PaymentHandler) GetPaymentsByBooking(c *gin.Context) {
	payments, err := h.useCase.ListByBooking(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// UpdatePaymentStatus handles PATCH /api/payments/:id/status
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.useCase.UpdateStatus(c.Request.Context(), c.Param("id"), currentUserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// RefundPayment handles PATCH /api/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.useCase.Refund(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
