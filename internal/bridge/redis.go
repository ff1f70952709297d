package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisChannel is a named broadcast channel over Redis Pub/Sub, for search
// surfaces running in another process. Redis keeps no backlog: events
// published while nobody is subscribed are lost.
type RedisChannel struct {
	client *redis.Client
	name   string
	logger *slog.Logger
}

// NewRedisChannel returns the channel name on client.
func NewRedisChannel(client *redis.Client, name string, logger *slog.Logger) *RedisChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisChannel{client: client, name: name, logger: logger}
}

func (c *RedisChannel) Send(ctx context.Context, e Event) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}
	if err := c.client.Publish(ctx, c.name, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", c.name, err)
	}
	return nil
}

// Subscribe starts a receive loop that hands decoded events to h. Messages
// that do not decode are dropped. The loop ends on Unsubscribe or when ctx
// is cancelled, and closes the subscription on its way out.
func (c *RedisChannel) Subscribe(ctx context.Context, h Handler) (Unsubscribe, error) {
	ps := c.client.Subscribe(ctx, c.name)
	// Wait for the subscription to be confirmed so no event sent after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", c.name, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-loopCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				e, err := Decode([]byte(msg.Payload))
				if err != nil {
					c.logger.Debug("dropping bridge message", "channel", c.name, "error", err)
					continue
				}
				h(e)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}
