package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationSecurity = "security"
	NotificationBooking  = "booking"
	NotificationPayment  = "payment"
	NotificationOther    = "other"
)

type Notification struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(16);not null" json:"type"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = NotificationOther
	}
	return
}

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationSecurity, NotificationBooking, NotificationPayment, NotificationOther:
		return true
	}
	return false
}
