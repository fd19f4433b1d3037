package repositories

import (
	"context"

	"rental-server/entities"
)

// Lookups return gorm.ErrRecordNotFound when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, property *entities.Property) error
	GetByID(ctx context.Context, id string) (*entities.Property, error)
	ListActive(ctx context.Context, limit, offset int) ([]entities.Property, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*entities.Property, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entities.Booking) error
	GetByID(ctx context.Context, id string) (*entities.Booking, error)
	GetByGuestID(ctx context.Context, guestID string) ([]entities.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) (*entities.Booking, error)
	Update(ctx context.Context, booking *entities.Booking) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id string) (*entities.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) ([]entities.Payment, error)
	GetByGuestID(ctx context.Context, guestID string) ([]entities.Payment, error)
	Update(ctx context.Context, payment *entities.Payment) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	GetByID(ctx context.Context, id string) (*entities.Notification, error)
	GetByUserID(ctx context.Context, userID string) ([]entities.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
