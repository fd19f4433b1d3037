package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Payment struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	BookingID     string     `gorm:"type:varchar(36);index;not null" json:"bookingId"`
	Amount        string     `gorm:"type:varchar(32);not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	PaymentMethod string     `gorm:"type:varchar(32);not null;default:'card'" json:"paymentMethod"`
	Status        string     `gorm:"type:varchar(16);not null" json:"status"`
	TransactionID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"transactionId"`
	RefundedAt    *time.Time `json:"refundedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.TransactionID == "" {
		p.TransactionID = NewTransactionID()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = "card"
	}
	return
}

// NewTransactionID returns a gateway-style reference built from a random UUID,
// so concurrent payments never share one.
func NewTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
