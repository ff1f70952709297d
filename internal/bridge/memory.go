package bridge

import (
	"context"
	"sort"
	"sync"
)

// Bus is a set of in-process named broadcast channels. Contexts that ask
// for the same name share a channel.
type Bus struct {
	mu       sync.Mutex
	channels map[string]*MemoryChannel
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{channels: make(map[string]*MemoryChannel)}
}

// Channel returns the named channel, creating it on first use.
func (b *Bus) Channel(name string) *MemoryChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		ch = &MemoryChannel{name: name, subs: make(map[int]Handler)}
		b.channels[name] = ch
	}
	return ch
}

// MemoryChannel delivers synchronously, in send order, to every handler
// subscribed at send time.
type MemoryChannel struct {
	name string

	// sendMu serialises deliveries so handlers never overlap.
	sendMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]Handler
}

func (c *MemoryChannel) Name() string { return c.name }

func (c *MemoryChannel) Send(_ context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Ints(ids)

	for _, id := range ids {
		c.mu.Lock()
		h, ok := c.subs[id]
		c.mu.Unlock()
		if ok {
			h(e)
		}
	}
	return nil
}

func (c *MemoryChannel) Subscribe(_ context.Context, h Handler) (Unsubscribe, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = h
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}, nil
}

// Subscribers reports the current number of handlers.
func (c *MemoryChannel) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
