package services

import (
	"context"
	"fmt"
	"log"

	"rental-server/entities"
	"rental-server/events"
	"rental-server/usecases"
)

// NotificationRecorder turns domain events into user notifications.
type NotificationRecorder struct {
	notifications *usecases.NotificationUseCase
}

func NewNotificationRecorder(notifications *usecases.NotificationUseCase) *NotificationRecorder {
	return &NotificationRecorder{notifications: notifications}
}

// Register subscribes the recorder. Payment confirmations are written inside
// the payment transaction and are not handled here.
func (nr *NotificationRecorder) Register(bus *events.Bus) {
	bus.Subscribe(events.UserRegistered, nr.onRegistered)
	bus.Subscribe(events.UserLoggedIn, nr.onLoggedIn)
	bus.Subscribe(events.BookingCreated, nr.onBookingCreated)
	bus.Subscribe(events.BookingCancelled, nr.onBookingCancelled)
	bus.Subscribe(events.PaymentRefunded, nr.onPaymentRefunded)
	log.Println("Notification recorder subscribed to domain events")
}

func (nr *NotificationRecorder) onRegistered(ctx context.Context, ev events.Event) error {
	return nr.record(ctx, ev.UserID, "Welcome to AIRBNBBM!",
		"Your account has been created successfully. Start exploring amazing places to stay.",
		entities.NotificationSecurity)
}

func (nr *NotificationRecorder) onLoggedIn(ctx context.Context, ev events.Event) error {
	return nr.record(ctx, ev.UserID, "Welcome back!",
		"You have successfully signed in to your account.",
		entities.NotificationSecurity)
}

func (nr *NotificationRecorder) onBookingCreated(ctx context.Context, ev events.Event) error {
	b, ok := ev.Data.(events.BookingChange)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Key)
	}
	return nr.record(ctx, ev.UserID, "Booking confirmed!",
		fmt.Sprintf("Your reservation at %s has been confirmed.", b.PropertyTitle),
		entities.NotificationBooking)
}

func (nr *NotificationRecorder) onBookingCancelled(ctx context.Context, ev events.Event) error {
	b, ok := ev.Data.(events.BookingChange)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Key)
	}
	msg := "Your reservation has been cancelled."
	if b.PropertyTitle != "" {
		msg = fmt.Sprintf("Your reservation at %s has been cancelled.", b.PropertyTitle)
	}
	return nr.record(ctx, ev.UserID, "Booking cancelled", msg, entities.NotificationBooking)
}

func (nr *NotificationRecorder) onPaymentRefunded(ctx context.Context, ev events.Event) error {
	p, ok := ev.Data.(events.PaymentChange)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Key)
	}
	return nr.record(ctx, ev.UserID, "Payment refunded",
		fmt.Sprintf("Your payment of $%s has been refunded.", p.Amount),
		entities.NotificationPayment)
}

func (nr *NotificationRecorder) record(ctx context.Context, userID, title, message, kind string) error {
	if _, err := nr.notifications.Create(ctx, userID, title, message, kind); err != nil {
		return fmt.Errorf("record %q for user %s: %w", title, userID, err)
	}
	return nil
}
