package repositories

import (
	"context"

	"rental-server/db"
	"rental-server/entities"
)

type paymentPgRepository struct {
	db db.Database
}

func NewPaymentPgRepository(database db.Database) PaymentRepository {
	return &paymentPgRepository{db: database}
}

func (r *paymentPgRepository) Create(ctx context.Context, payment *entities.Payment) error {
	return r.db.GetDB().WithContext(ctx).Create(payment).Error
}

func (r *paymentPgRepository) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	var payment entities.Payment
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentPgRepository) GetByBookingID(ctx context.Context, bookingID string) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := r.db.GetDB().WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// GetByGuestID returns payments made against any booking owned by guestID.
func (r *paymentPgRepository) GetByGuestID(ctx context.Context, guestID string) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := r.db.GetDB().WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.guest_id = ?", guestID).
		Order("payments.created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentPgRepository) Update(ctx context.Context, payment *entities.Payment) error {
	return r.db.GetDB().WithContext(ctx).Save(payment).Error
}
