package mq

import (
	"context"
	"time"

	"rental-server/events"
)

type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Forwarder mirrors every domain event to the broker under its own routing key.
// The publish is detached from the request context so a client hanging up
// does not drop the message.
func Forwarder(p JSONPublisher, timeout time.Duration) events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return p.PublishJSON(pctx, ev.Key, ev)
	}
}
