package repositories

import (
	"context"

	"rental-server/db"
	"rental-server/entities"
)

type bookingPgRepository struct {
	db db.Database
}

func NewBookingPgRepository(database db.Database) BookingRepository {
	return &bookingPgRepository{db: database}
}

func (r *bookingPgRepository) Create(ctx context.Context, booking *entities.Booking) error {
	return r.db.GetDB().WithContext(ctx).Create(booking).Error
}

func (r *bookingPgRepository) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	var booking entities.Booking
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingPgRepository) GetByGuestID(ctx context.Context, guestID string) ([]entities.Booking, error) {
	var bookings []entities.Booking
	err := r.db.GetDB().WithContext(ctx).Where("guest_id = ?", guestID).Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (r *bookingPgRepository) UpdateStatus(ctx context.Context, id, status string) (*entities.Booking, error) {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.GetDB().WithContext(ctx).Model(booking).Update("status", status).Error; err != nil {
		return nil, err
	}
	booking.Status = status
	return booking, nil
}

func (r *bookingPgRepository) Update(ctx context.Context, booking *entities.Booking) error {
	return r.db.GetDB().WithContext(ctx).Save(booking).Error
}
