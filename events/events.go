package events

import (
	"time"

	"rental-server/entities"
)

// Routing keys, shared with the broker forwarder.
const (
	UserRegistered      = "user.registered"
	UserLoggedIn        = "user.logged_in"
	BookingCreated      = "booking.created"
	BookingCancelled    = "booking.cancelled"
	PaymentProcessed    = "payment.processed"
	PaymentRefunded     = "payment.refunded"
	NotificationCreated = "notification.created"

	// All subscribes a handler to every key.
	All = "*"
)

type Event struct {
	Key        string    `json:"event"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type UserAccount struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

type BookingChange struct {
	BookingID     string    `json:"bookingId"`
	PropertyID    string    `json:"propertyId"`
	PropertyTitle string    `json:"propertyTitle"`
	CheckIn       time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"checkOut"`
}

type PaymentChange struct {
	PaymentID     string `json:"paymentId"`
	BookingID     string `json:"bookingId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transactionId"`
}

type NotificationPayload struct {
	Notification entities.Notification `json:"notification"`
}
