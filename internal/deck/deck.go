// Package deck owns the user's deck: an ordered list of picked cards with
// copy counts, persisted after every change.
package deck

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/youruser/hvdeck/internal/cards"
)

const (
	// MinCount is the lowest count an entry can reach by editing. Taking an
	// entry out of the deck is Remove.
	MinCount = 1

	// MaxDeckSize is the largest deck that may be exported. The store does
	// not enforce it.
	MaxDeckSize = 40
)

var (
	ErrNotInDeck    = errors.New("deck: card not in deck")
	ErrInvalidCount = errors.New("deck: count must not be negative")
	ErrNotAdjacent  = errors.New("deck: positions are not adjacent")
	ErrDeckTooLarge = fmt.Errorf("deck: more than %d cards", MaxDeckSize)
	ErrPersist      = errors.New("deck: persist failed")
	ErrUnknownCard  = errors.New("deck: card not in catalog")
)

// Entry is one card and how many copies of it the deck holds.
type Entry struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
}

// UnmarshalJSON also accepts the flattened {...card, "count": n} shape.
// Category labels and stat names are canonicalised either way.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var nested struct {
		Card  *cards.Card `json:"card"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return err
	}
	if nested.Card != nil {
		*e = Entry{Card: nested.Card.Canonical(), Count: nested.Count}
		return nil
	}
	var flat struct {
		cards.Card
		Number string `json:"number"`
		Count  int    `json:"count"`
	}
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}
	if flat.ID == "" {
		flat.ID = flat.Number
	}
	*e = Entry{Card: flat.Card.Canonical(), Count: flat.Count}
	return nil
}

// TotalCount sums the counts of entries.
func TotalCount(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Count
	}
	return n
}

// CheckSize reports ErrDeckTooLarge when total exceeds MaxDeckSize.
func CheckSize(total int) error {
	if total > MaxDeckSize {
		return fmt.Errorf("%w: have %d", ErrDeckTooLarge, total)
	}
	return nil
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
