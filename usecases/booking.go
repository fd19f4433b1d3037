package usecases

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rental-server/entities"
	"rental-server/events"
	"rental-server/repositories"
)

var tracer = otel.Tracer("rental-server/usecases")

type BookingInput struct {
	PropertyID      string
	CheckIn         string
	CheckOut        string
	Guests          int
	TotalPrice      interface{}
	SpecialRequests *string
}

// BookingChanges is a partial update. Nil fields are left alone.
type BookingChanges struct {
	CheckIn         *string
	CheckOut        *string
	Guests          *int
	SpecialRequests *string
	Status          *string
}

type BookingUseCase struct {
	BookingRepo  repositories.BookingRepository
	PropertyRepo repositories.PropertyRepository
	Events       events.Publisher
}

func NewBookingUseCase(bookingRepo repositories.BookingRepository, propertyRepo repositories.PropertyRepository, pub events.Publisher) *BookingUseCase {
	return &BookingUseCase{BookingRepo: bookingRepo, PropertyRepo: propertyRepo, Events: pub}
}

// Create books an active property for guestID.
func (uc *BookingUseCase) Create(ctx context.Context, guestID string, in BookingInput) (b *entities.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingUseCase.Create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("property.id", in.PropertyID), attribute.String("guest.id", guestID))

	if in.PropertyID == "" {
		return nil, fail(ErrValidation, "propertyId is required")
	}
	property, err := uc.PropertyRepo.GetByID(ctx, in.PropertyID)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	if !property.IsActive {
		return nil, fail(ErrNotFound, "Property not found")
	}

	checkIn, checkOut, err := parseStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	if in.Guests < 1 {
		return nil, fail(ErrValidation, "guests must be at least 1")
	}

	var total string
	if in.TotalPrice != nil {
		var ok bool
		if total, ok = asPositiveDecimal(in.TotalPrice); !ok {
			return nil, fail(ErrValidation, "totalPrice must be a positive number")
		}
	} else {
		total = stayPrice(property.PricePerNight, checkIn, checkOut)
	}

	b = &entities.Booking{
		PropertyID:      property.ID,
		GuestID:         guestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          in.Guests,
		TotalPrice:      total,
		SpecialRequests: in.SpecialRequests,
		Status:          entities.BookingPending,
	}
	if err := uc.BookingRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	uc.Events.Publish(ctx, events.Event{
		Key:    events.BookingCreated,
		UserID: guestID,
		Data: events.BookingChange{
			BookingID:     b.ID,
			PropertyID:    property.ID,
			PropertyTitle: property.Title,
			CheckIn:       b.CheckIn,
			CheckOut:      b.CheckOut,
		},
	})
	return b, nil
}

func (uc *BookingUseCase) Get(ctx context.Context, id string) (*entities.Booking, error) {
	b, err := uc.BookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Booking not found")
	}
	return b, nil
}

// GetOwned hides bookings of other guests behind not found.
func (uc *BookingUseCase) GetOwned(ctx context.Context, id, callerID string) (*entities.Booking, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.GuestID != callerID {
		return nil, fail(ErrNotFound, "Booking not found")
	}
	return b, nil
}

func (uc *BookingUseCase) ListByUser(ctx context.Context, userID string) ([]entities.Booking, error) {
	bookings, err := uc.BookingRepo.GetByGuestID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []entities.Booking{}
	}
	return bookings, nil
}

// UpdateStatus moves a booking from pending to confirmed, or from any state
// to cancelled. Nothing leaves cancelled and nothing returns to pending.
func (uc *BookingUseCase) UpdateStatus(ctx context.Context, id, status string) (*entities.Booking, error) {
	if !entities.ValidBookingStatus(status) {
		return nil, fail(ErrValidation, "Invalid booking status: %s", status)
	}
	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !canMoveBooking(current.Status, status) {
		return nil, fail(ErrConflict, "Cannot change booking from %s to %s", current.Status, status)
	}

	b, err := uc.BookingRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, notFound(err, "Booking not found")
	}
	if status == entities.BookingCancelled {
		uc.publishCancelled(ctx, b)
	}
	return b, nil
}

func canMoveBooking(from, to string) bool {
	switch to {
	case entities.BookingCancelled:
		return true
	case entities.BookingConfirmed:
		return from == entities.BookingPending
	}
	return false
}

// Cancel is idempotent for the owner.
func (uc *BookingUseCase) Cancel(ctx context.Context, id, callerID string) (*entities.Booking, error) {
	if _, err := uc.GetOwned(ctx, id, callerID); err != nil {
		return nil, err
	}
	return uc.UpdateStatus(ctx, id, entities.BookingCancelled)
}

// Update edits the stay details of the caller's booking. The only status a
// guest may request is cancelled; confirmation comes from a payment.
func (uc *BookingUseCase) Update(ctx context.Context, id, callerID string, ch BookingChanges) (*entities.Booking, error) {
	b, err := uc.GetOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if ch.Status != nil && *ch.Status != entities.BookingCancelled {
		return nil, fail(ErrValidation, "Only cancellation can be requested")
	}

	touched := ch.CheckIn != nil || ch.CheckOut != nil || ch.Guests != nil || ch.SpecialRequests != nil
	if touched {
		if b.Status == entities.BookingCancelled {
			return nil, fail(ErrConflict, "Booking is cancelled")
		}
		checkIn, checkOut := b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout)
		if ch.CheckIn != nil {
			checkIn = *ch.CheckIn
		}
		if ch.CheckOut != nil {
			checkOut = *ch.CheckOut
		}
		if ch.CheckIn != nil || ch.CheckOut != nil {
			in, out, err := parseStay(checkIn, checkOut)
			if err != nil {
				return nil, err
			}
			b.CheckIn, b.CheckOut = in, out
		}
		if ch.Guests != nil {
			if *ch.Guests < 1 {
				return nil, fail(ErrValidation, "guests must be at least 1")
			}
			b.Guests = *ch.Guests
		}
		if ch.SpecialRequests != nil {
			b.SpecialRequests = ch.SpecialRequests
		}
		if err := uc.BookingRepo.Update(ctx, b); err != nil {
			return nil, err
		}
	}

	if ch.Status != nil {
		return uc.UpdateStatus(ctx, id, *ch.Status)
	}
	return b, nil
}

func (uc *BookingUseCase) publishCancelled(ctx context.Context, b *entities.Booking) {
	change := events.BookingChange{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
	}
	if p, err := uc.PropertyRepo.GetByID(ctx, b.PropertyID); err == nil {
		change.PropertyTitle = p.Title
	}
	uc.Events.Publish(ctx, events.Event{Key: events.BookingCancelled, UserID: b.GuestID, Data: change})
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	if checkIn == "" || checkOut == "" {
		return time.Time{}, time.Time{}, fail(ErrValidation, "checkIn and checkOut are required")
	}
	in, ok := parseDate(checkIn)
	if !ok {
		return time.Time{}, time.Time{}, fail(ErrValidation, "checkIn must be a date (YYYY-MM-DD)")
	}
	out, ok := parseDate(checkOut)
	if !ok {
		return time.Time{}, time.Time{}, fail(ErrValidation, "checkOut must be a date (YYYY-MM-DD)")
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, fail(ErrValidation, "checkOut must be after checkIn")
	}
	return in, out, nil
}

// stayPrice is nights x pricePerNight, rounded to cents. Partial days count as a night.
func stayPrice(pricePerNight string, checkIn, checkOut time.Time) string {
	price, err := strconv.ParseFloat(pricePerNight, 64)
	if err != nil {
		return "0"
	}
	nights := math.Ceil(checkOut.Sub(checkIn).Hours() / 24)
	total := math.Round(nights*price*100) / 100
	return strconv.FormatFloat(total, 'f', -1, 64)
}
