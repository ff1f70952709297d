package bridge

import (
	"context"
	"log/slog"

	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/deck"
)

// Picker is the deck-owning side of the bridge.
type Picker interface {
	MergePick(ctx context.Context, card cards.Card) (deck.Entry, error)
}

// Listen feeds every event delivered by sub into p.MergePick, in delivery
// order. Each event is one click; nothing is deduplicated. ctx bounds the
// subscription only: a pick that is delivered is merged and persisted even
// after ctx is cancelled.
func Listen(ctx context.Context, sub Subscriber, p Picker, logger *slog.Logger) (Unsubscribe, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pickCtx := context.WithoutCancel(ctx)
	return sub.Subscribe(ctx, func(e Event) {
		if err := e.Validate(); err != nil {
			logger.Debug("ignoring bridge event", "error", err)
			return
		}
		entry, err := p.MergePick(pickCtx, *e.Card)
		if err != nil {
			logger.Error("merge pick failed", "card", e.Card.ID, "error", err)
			return
		}
		logger.Info("card picked", "card", entry.Card.ID, "count", entry.Count)
	})
}
