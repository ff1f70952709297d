package cards

// Catalog is the read-only, already-merged sequence of card records.
type Catalog struct {
	cards []Card
	byID  map[string]int
}

// NewCatalog builds a catalog from cards in their catalog order. When an
// identifier repeats, Lookup returns the first record; the duplicates stay
// searchable. Duplicates are reported so the caller can log them.
func NewCatalog(cs []Card) (*Catalog, []string) {
	c := &Catalog{
		cards: make([]Card, len(cs)),
		byID:  make(map[string]int, len(cs)),
	}
	copy(c.cards, cs)
	var dups []string
	for i, card := range c.cards {
		if card.ID == "" {
			continue
		}
		if _, ok := c.byID[card.ID]; ok {
			dups = append(dups, card.ID)
			continue
		}
		c.byID[card.ID] = i
	}
	return c, dups
}

// All returns the cards in catalog order. Callers must not modify the slice.
func (c *Catalog) All() []Card {
	if c == nil {
		return nil
	}
	return c.cards
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

// Lookup finds a card by identifier.
func (c *Catalog) Lookup(id string) (Card, bool) {
	if c == nil {
		return Card{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}
