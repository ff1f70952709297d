package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/storage"
)

// Key is the storage key the deck is persisted under.
const Key = "deck"

// Observer is told about the deck after every mutation.
type Observer func(entries []Entry)

// Store is the single owner of the deck. Mutations run one at a time and
// each is written to storage before it returns.
type Store struct {
	kv        storage.KV
	catalog   *cards.Catalog
	logger    *slog.Logger
	observers []Observer

	mu      sync.Mutex
	entries []Entry
}

// Option configures a Store.
type Option func(*Store)

// WithCatalog lets PickByID resolve identifiers.
func WithCatalog(c *cards.Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to receive a copy of the entries after each
// mutation.
func WithObserver(fn Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, fn) }
}

// Open creates a store and loads the persisted deck.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{kv: kv, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.Load(ctx)
	return s
}

// Load replaces the in-memory deck with the persisted one. Missing or
// unreadable data leaves an empty deck.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.read(ctx)
}

func (s *Store) read(ctx context.Context) []Entry {
	data, err := s.kv.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Entry{}
	}
	if err != nil {
		s.logger.Warn("deck load failed, starting empty", "error", err)
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("deck data unreadable, starting empty", "error", err)
		return []Entry{}
	}
	return sanitize(entries)
}

// sanitize drops repeated identifiers (folding their counts into the first)
// and raises counts below MinCount.
func sanitize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Count < MinCount {
			e.Count = MinCount
		}
		if i, ok := seen[e.Card.ID]; ok {
			out[i].Count += e.Count
			continue
		}
		seen[e.Card.ID] = len(out)
		out = append(out, e)
	}
	return out
}

// Entries returns a copy of the deck in display order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.entries)
}

// TotalCount is the number of cards in the deck, counting copies.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalCount(s.entries)
}

// Len is the number of distinct entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MergePick adds one copy of card: an existing entry's count goes up by one,
// otherwise a new entry is appended.
func (s *Store) MergePick(ctx context.Context, card cards.Card) (Entry, error) {
	if card.ID == "" {
		s.logger.Warn("picked card has no identifier, merging under empty id", "name", card.Name)
	}
	var out Entry
	err := s.mutate(ctx, func(entries []Entry) ([]Entry, error) {
		if i := indexOf(entries, card.ID); i >= 0 {
			entries[i].Count++
			out = entries[i]
			return entries, nil
		}
		out = Entry{Card: card, Count: 1}
		return append(entries, out), nil
	})
	return out, err
}

// PickByID merges the catalog card with identifier id.
func (s *Store) PickByID(ctx context.Context, id string) (Entry, error) {
	card, ok := s.catalog.Lookup(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return s.MergePick(ctx, card)
}

// SetCount assigns a count. Negative counts are rejected; zero is raised to
// MinCount.
func (s *Store) SetCount(ctx context.Context, id string, n int) (Entry, error) {
	if n < 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n < MinCount {
		n = MinCount
	}
	return s.update(ctx, id, func(e *Entry) { e.Count = n })
}

// Increment adds one copy of an entry already in the deck.
func (s *Store) Increment(ctx context.Context, id string) (Entry, error) {
	return s.update(ctx, id, func(e *Entry) { e.Count++ })
}

// Decrement removes one copy, never going below MinCount.
func (s *Store) Decrement(ctx context.Context, id string) (Entry, error) {
	return s.update(ctx, id, func(e *Entry) {
		if e.Count > MinCount {
			e.Count--
		}
	})
}

// Remove deletes an entry whatever its count.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(entries []Entry) ([]Entry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotInDeck, id)
		}
		return append(entries[:i], entries[i+1:]...), nil
	})
}

// Reorder moves the entry to index, clamped to the deck bounds.
func (s *Store) Reorder(ctx context.Context, id string, index int) error {
	return s.mutate(ctx, func(entries []Entry) ([]Entry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotInDeck, id)
		}
		if index < 0 {
			index = 0
		}
		if index > len(entries)-1 {
			index = len(entries) - 1
		}
		e := entries[i]
		entries = append(entries[:i], entries[i+1:]...)
		entries = append(entries[:index], append([]Entry{e}, entries[index:]...)...)
		return entries, nil
	})
}

// SwapAdjacent exchanges the entries at positions i and j, which must be
// neighbours.
func (s *Store) SwapAdjacent(ctx context.Context, i, j int) error {
	return s.mutate(ctx, func(entries []Entry) ([]Entry, error) {
		if i < 0 || j < 0 || i >= len(entries) || j >= len(entries) {
			return nil, fmt.Errorf("%w: position out of range", ErrNotInDeck)
		}
		if i-j != 1 && j-i != 1 {
			return nil, fmt.Errorf("%w: %d and %d", ErrNotAdjacent, i, j)
		}
		entries[i], entries[j] = entries[j], entries[i]
		return entries, nil
	})
}

func (s *Store) update(ctx context.Context, id string, fn func(*Entry)) (Entry, error) {
	var out Entry
	err := s.mutate(ctx, func(entries []Entry) ([]Entry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotInDeck, id)
		}
		fn(&entries[i])
		out = entries[i]
		return entries, nil
	})
	return out, err
}

// mutate applies fn to a working copy. If fn fails the deck is unchanged.
// Otherwise the result is installed, persisted and shown to observers, all
// under the lock so observers see mutations in order. Observers must not
// call back into the store.
func (s *Store) mutate(ctx context.Context, fn func([]Entry) ([]Entry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(clone(s.entries))
	if err != nil {
		return err
	}
	s.entries = next
	perr := s.persist(ctx)
	for _, o := range s.observers {
		o(clone(next))
	}
	return perr
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.kv.Put(ctx, Key, data); err != nil {
		s.logger.Error("deck persist failed", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func indexOf(entries []Entry, id string) int {
	for i, e := range entries {
		if e.Card.ID == id {
			return i
		}
	}
	return -1
}
