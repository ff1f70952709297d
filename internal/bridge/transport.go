package bridge

import "context"

// Handler receives delivered events. Handlers run on the transport's
// delivery goroutine, one event at a time.
type Handler func(Event)

// Unsubscribe stops delivery to a handler. Calling it more than once is a
// no-op.
type Unsubscribe func()

// Sender posts events. Delivery is fire-and-forget: a nil error does not
// mean anyone received the event.
type Sender interface {
	Send(ctx context.Context, e Event) error
}

// Subscriber delivers events to handlers until they unsubscribe.
type Subscriber interface {
	Subscribe(ctx context.Context, h Handler) (Unsubscribe, error)
}

// Transport is a channel both sides of the bridge can use.
type Transport interface {
	Sender
	Subscriber
}
