// Package bridge carries card picks from a detached search surface to the
// context that owns the deck.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/youruser/hvdeck/internal/cards"
)

// TypeAddCard is the only message type the bridge carries.
const TypeAddCard = "ADD_CARD_TO_DECK"

var (
	ErrUnknownType = errors.New("bridge: unknown message type")
	ErrMissingCard = errors.New("bridge: message has no card")
)

// Event is one pick: the user clicked card in the search surface.
type Event struct {
	Type string      `json:"type"`
	Card *cards.Card `json:"card"`
}

// NewPick builds the pick event for card.
func NewPick(card cards.Card) Event {
	return Event{Type: TypeAddCard, Card: &card}
}

// Validate checks the message shape.
func (e Event) Validate() error {
	if e.Type != TypeAddCard {
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if e.Card == nil {
		return ErrMissingCard
	}
	return nil
}

// Decode parses and validates a raw message.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("bridge: decode message: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Encode validates and serialises e.
func Encode(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}
