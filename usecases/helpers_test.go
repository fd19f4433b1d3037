package usecases_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"rental-server/auth"
	"rental-server/cache"
	"rental-server/confs"
	"rental-server/db"
	"rental-server/entities"
	"rental-server/events"
	"rental-server/repositories"
	"rental-server/services"
	"rental-server/usecases"
)

const adminEmail = "admin@airbnbbm.com"

type fixture struct {
	ctx           context.Context
	db            db.Database
	bus           *events.Bus
	auth          *usecases.AuthUseCase
	properties    *usecases.PropertyUseCase
	bookings      *usecases.BookingUseCase
	payments      *usecases.PaymentUseCase
	notifications *usecases.NotificationUseCase
}

func newTestDB(t *testing.T) db.Database {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.Connect(&confs.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := newTestDB(t)
	bus := events.NewBus()

	userRepo := repositories.NewUserPgRepository(database)
	propertyRepo := repositories.NewPropertyPgRepository(database)
	bookingRepo := repositories.NewBookingPgRepository(database)
	paymentRepo := repositories.NewPaymentPgRepository(database)
	notificationRepo := repositories.NewNotificationPgRepository(database)

	f := &fixture{
		ctx:           context.Background(),
		db:            database,
		bus:           bus,
		auth:          usecases.NewAuthUseCase(userRepo, auth.NewTokenManager("test-secret", time.Hour), bus, adminEmail),
		properties:    usecases.NewPropertyUseCase(propertyRepo, cache.NewMemoryCache(time.Minute)),
		bookings:      usecases.NewBookingUseCase(bookingRepo, propertyRepo, bus),
		payments:      usecases.NewPaymentUseCase(database, paymentRepo, bookingRepo, bus),
		notifications: usecases.NewNotificationUseCase(notificationRepo, bus),
	}
	services.NewNotificationRecorder(f.notifications).Register(bus)
	return f
}

func (f *fixture) register(t *testing.T, email string) *usecases.Session {
	t.Helper()
	s, err := f.auth.Register(f.ctx, usecases.RegisterInput{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return s
}

func (f *fixture) property(t *testing.T, hostID, title, price string) *entities.Property {
	t.Helper()
	p, err := f.properties.Create(f.ctx, map[string]interface{}{
		"title":         title,
		"description":   "A nice place",
		"location":      "Lisbon",
		"pricePerNight": price,
		"maxGuests":     float64(4),
		"bedrooms":      float64(2),
		"bathrooms":     float64(1),
		"amenities":     []interface{}{"wifi", "kitchen"},
	}, hostID)
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return p
}

func (f *fixture) booking(t *testing.T, guestID, propertyID string) *entities.Booking {
	t.Helper()
	b, err := f.bookings.Create(f.ctx, guestID, usecases.BookingInput{
		PropertyID: propertyID,
		CheckIn:    "2025-07-01",
		CheckOut:   "2025-07-03",
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (f *fixture) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.GetDB().Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) titles(t *testing.T, userID string) []string {
	t.Helper()
	list, err := f.notifications.ListByUser(f.ctx, userID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Title
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
