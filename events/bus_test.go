package events

import (
	"context"
	"errors"
	"testing"
)

func TestBusDeliversToKeyAndWildcard(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(BookingCreated, func(ctx context.Context, ev Event) error {
		got = append(got, "key:"+ev.Key)
		return nil
	})
	bus.Subscribe(All, func(ctx context.Context, ev Event) error {
		got = append(got, "all:"+ev.Key)
		return nil
	})

	bus.Publish(context.Background(), Event{Key: BookingCreated, UserID: "u1"})
	bus.Publish(context.Background(), Event{Key: PaymentProcessed, UserID: "u1"})

	want := []string{"key:booking.created", "all:booking.created", "all:payment.processed"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBusSwallowsHandlerErrors(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(UserRegistered, func(ctx context.Context, ev Event) error {
		calls++
		return errors.New("boom")
	})
	bus.Subscribe(UserRegistered, func(ctx context.Context, ev Event) error {
		calls++
		return nil
	})

	bus.Publish(context.Background(), Event{Key: UserRegistered})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestBusAllowsNestedPublish(t *testing.T) {
	bus := NewBus()
	nested := false
	bus.Subscribe(BookingCreated, func(ctx context.Context, ev Event) error {
		bus.Publish(ctx, Event{Key: NotificationCreated})
		return nil
	})
	bus.Subscribe(NotificationCreated, func(ctx context.Context, ev Event) error {
		nested = true
		return nil
	})

	bus.Publish(context.Background(), Event{Key: BookingCreated})
	if !nested {
		t.Fatal("nested event not delivered")
	}
}

func TestBusStampsOccurredAt(t *testing.T) {
	bus := NewBus()
	var ev Event
	bus.Subscribe(UserLoggedIn, func(ctx context.Context, e Event) error {
		ev = e
		return nil
	})
	bus.Publish(context.Background(), Event{Key: UserLoggedIn})
	if ev.OccurredAt.IsZero() {
		t.Fatal("OccurredAt not set")
	}
}
