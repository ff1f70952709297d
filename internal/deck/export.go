package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/youruser/hvdeck/internal/storage"
)

// SnapshotKey holds the deck handed to the export view. It is written once
// per export and never read back into a Store.
const SnapshotKey = "deckData"

// ErrNoSnapshot means nothing has been exported yet.
var ErrNoSnapshot = errors.New("deck: no exported deck")

// Export checks the deck size ceiling and writes entries as the export
// snapshot.
func Export(ctx context.Context, kv storage.KV, entries []Entry) error {
	if err := CheckSize(TotalCount(entries)); err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: deck is empty", ErrNoSnapshot)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := kv.Put(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads the last exported deck.
func ReadSnapshot(ctx context.Context, kv storage.KV) ([]Entry, error) {
	data, err := kv.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	if len(entries) == 0 {
		return nil, ErrNoSnapshot
	}
	return entries, nil
}

// ExportText renders the deck as one "<count>x<id>" line per entry, in deck
// order, under an optional "# name" header.
func ExportText(name string, entries []Entry) string {
	lines := []string{}
	if name != "" {
		lines = append(lines, "# "+name)
	}
	for _, e := range entries {
		lines = append(lines, strconv.Itoa(e.Count)+"x"+e.Card.ID)
	}
	return strings.Join(lines, "\n")
}
