package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rental-server/db"
	"rental-server/entities"
	"rental-server/events"
	"rental-server/repositories"
)

type PaymentInput struct {
	BookingID     string
	Amount        interface{}
	Currency      string
	PaymentMethod string
}

type PaymentUseCase struct {
	DB          db.Database
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	Events      events.Publisher
	now         func() time.Time
}

func NewPaymentUseCase(database db.Database, paymentRepo repositories.PaymentRepository, bookingRepo repositories.BookingRepository, pub events.Publisher) *PaymentUseCase {
	return &PaymentUseCase{
		DB:          database,
		PaymentRepo: paymentRepo,
		BookingRepo: bookingRepo,
		Events:      pub,
		now:         time.Now,
	}
}

// Create records a simulated, always successful payment. The payment row, the
// booking confirmation and the payer's notification commit together or not at all.
func (uc *PaymentUseCase) Create(ctx context.Context, callerID string, in PaymentInput) (payment *entities.Payment, err error) {
	ctx, span := tracer.Start(ctx, "PaymentUseCase.Create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("booking.id", in.BookingID))

	if in.BookingID == "" {
		return nil, fail(ErrValidation, "bookingId is required")
	}
	amount, ok := asPositiveDecimal(in.Amount)
	if !ok {
		return nil, fail(ErrValidation, "amount must be a positive number")
	}

	booking, err := uc.ownedBooking(ctx, in.BookingID, callerID)
	if err != nil {
		return nil, err
	}
	if booking.Status == entities.BookingCancelled {
		return nil, fail(ErrConflict, "Cannot pay for a cancelled booking")
	}

	payment = &entities.Payment{
		BookingID:     booking.ID,
		Amount:        amount,
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Status:        entities.PaymentCompleted,
		TransactionID: entities.NewTransactionID(),
	}
	notification := &entities.Notification{
		UserID:  callerID,
		Title:   "Payment processed",
		Message: fmt.Sprintf("Your payment of $%s has been successfully processed.", amount),
		Type:    entities.NotificationPayment,
	}

	err = uc.DB.Transaction(func(tx db.Database) error {
		if err := repositories.NewPaymentPgRepository(tx).Create(ctx, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		if _, err := repositories.NewBookingPgRepository(tx).UpdateStatus(ctx, booking.ID, entities.BookingConfirmed); err != nil {
			return fmt.Errorf("confirm booking: %w", err)
		}
		if err := repositories.NewNotificationPgRepository(tx).Create(ctx, notification); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.transaction_id", payment.TransactionID))

	uc.Events.Publish(ctx, events.Event{
		Key:    events.PaymentProcessed,
		UserID: callerID,
		Data: events.PaymentChange{
			PaymentID:     payment.ID,
			BookingID:     payment.BookingID,
			Amount:        payment.Amount,
			Currency:      payment.Currency,
			TransactionID: payment.TransactionID,
		},
	})
	uc.Events.Publish(ctx, events.Event{
		Key:    events.NotificationCreated,
		UserID: callerID,
		Data:   events.NotificationPayload{Notification: *notification},
	})
	return payment, nil
}

func (uc *PaymentUseCase) ListByBooking(ctx context.Context, bookingID, callerID string) ([]entities.Payment, error) {
	if _, err := uc.ownedBooking(ctx, bookingID, callerID); err != nil {
		return nil, err
	}
	payments, err := uc.PaymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return nonNilPayments(payments), nil
}

func (uc *PaymentUseCase) ListByUser(ctx context.Context, callerID string) ([]entities.Payment, error) {
	payments, err := uc.PaymentRepo.GetByGuestID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return nonNilPayments(payments), nil
}

// Get returns a payment made against one of the caller's bookings.
func (uc *PaymentUseCase) Get(ctx context.Context, id, callerID string) (*entities.Payment, error) {
	payment, err := uc.PaymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Payment not found")
	}
	if _, err := uc.ownedBooking(ctx, payment.BookingID, callerID); err != nil {
		return nil, fail(ErrNotFound, "Payment not found")
	}
	return payment, nil
}

func (uc *PaymentUseCase) UpdateStatus(ctx context.Context, id, callerID, status string) (*entities.Payment, error) {
	if !entities.ValidPaymentStatus(status) {
		return nil, fail(ErrValidation, "Invalid payment status: %s", status)
	}
	payment, err := uc.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	payment.Status = status
	if status == entities.PaymentRefunded && payment.RefundedAt == nil {
		t := uc.now().UTC()
		payment.RefundedAt = &t
	}
	if err := uc.PaymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund marks a completed payment refunded. The booking keeps its status.
func (uc *PaymentUseCase) Refund(ctx context.Context, id, callerID string) (*entities.Payment, error) {
	payment, err := uc.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if payment.Status != entities.PaymentCompleted {
		return nil, fail(ErrConflict, "Only completed payments can be refunded")
	}

	t := uc.now().UTC()
	payment.Status = entities.PaymentRefunded
	payment.RefundedAt = &t
	if err := uc.PaymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	uc.Events.Publish(ctx, events.Event{
		Key:    events.PaymentRefunded,
		UserID: callerID,
		Data: events.PaymentChange{
			PaymentID:     payment.ID,
			BookingID:     payment.BookingID,
			Amount:        payment.Amount,
			Currency:      payment.Currency,
			TransactionID: payment.TransactionID,
		},
	})
	return payment, nil
}

func (uc *PaymentUseCase) ownedBooking(ctx context.Context, bookingID, callerID string) (*entities.Booking, error) {
	booking, err := uc.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "Booking not found")
	}
	if booking.GuestID != callerID {
		return nil, fail(ErrNotFound, "Booking not found")
	}
	return booking, nil
}

func nonNilPayments(p []entities.Payment) []entities.Payment {
	if p == nil {
		return []entities.Payment{}
	}
	return p
}
