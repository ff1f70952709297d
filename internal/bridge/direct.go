package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// Message is a raw message posted to a window along with the origin of the
// context that sent it.
type Message struct {
	Origin string
	Data   []byte
}

// Window is the receiving end of direct window messaging: the deck owner's
// context, identified by its origin. It accepts messages only from its own
// origin.
type Window struct {
	origin string
	logger *slog.Logger

	deliverMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]Handler
}

// NewWindow returns a window at origin.
func NewWindow(origin string, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{origin: NormalizeOrigin(origin), logger: logger, subs: make(map[int]Handler)}
}

// NormalizeOrigin lower-cases an origin and strips a trailing slash.
func NormalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

// Origin is the window's own origin.
func (w *Window) Origin() string { return w.origin }

// Deliver hands a message to every subscriber. Messages from another
// origin, of an unknown type or without a card are dropped silently. It
// reports whether the message was accepted.
func (w *Window) Deliver(m Message) bool {
	if NormalizeOrigin(m.Origin) != w.origin {
		w.logger.Debug("dropping message from foreign origin", "origin", m.Origin, "want", w.origin)
		return false
	}
	e, err := Decode(m.Data)
	if err != nil {
		w.logger.Debug("dropping malformed message", "error", err)
		return false
	}

	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()
	for _, h := range w.handlers() {
		h(e)
	}
	return true
}

// Send posts e from the window's own origin.
func (w *Window) Send(_ context.Context, e Event) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}
	w.Deliver(Message{Origin: w.origin, Data: data})
	return nil
}

func (w *Window) Subscribe(_ context.Context, h Handler) (Unsubscribe, error) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = h
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}, nil
}

func (w *Window) handlers() []Handler {
	w.mu.Lock()
	defer w.mu.Unlock()
	hs := make([]Handler, 0, len(w.subs))
	for id := 0; id < w.nextID; id++ {
		if h, ok := w.subs[id]; ok {
			hs = append(hs, h)
		}
	}
	return hs
}

// DirectSender is the search surface's handle on its opener. It posts to a
// fixed target origin; when the opener is not at that origin the message
// is not delivered.
type DirectSender struct {
	opener       *Window
	origin       string
	targetOrigin string
}

// NewDirectSender posts to opener as a context at origin, addressed to
// targetOrigin.
func NewDirectSender(opener *Window, origin, targetOrigin string) *DirectSender {
	return &DirectSender{
		opener:       opener,
		origin:       NormalizeOrigin(origin),
		targetOrigin: NormalizeOrigin(targetOrigin),
	}
}

func (s *DirectSender) Send(_ context.Context, e Event) error {
	if s.opener == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if s.targetOrigin != "*" && s.targetOrigin != s.opener.Origin() {
		return nil
	}
	s.opener.Deliver(Message{Origin: s.origin, Data: data})
	return nil
}
