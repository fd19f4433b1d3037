package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID      string    `gorm:"type:varchar(36);index;not null" json:"propertyId"`
	GuestID         string    `gorm:"type:varchar(36);index;not null" json:"guestId"`
	CheckIn         time.Time `gorm:"not null" json:"checkIn"`
	CheckOut        time.Time `gorm:"not null" json:"checkOut"`
	Guests          int       `gorm:"not null" json:"guests"`
	TotalPrice      string    `gorm:"type:varchar(32);not null" json:"totalPrice"`
	SpecialRequests *string   `gorm:"type:text" json:"specialRequests"`
	Status          string    `gorm:"type:varchar(16);index;not null" json:"status"` // pending | confirmed | cancelled
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	return
}

func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}
