// Package search turns a card catalog and filter criteria into stable,
// paged result lists.
package search

import (
	"sync"

	"github.com/youruser/hvdeck/internal/cards"
)

const (
	// PageSize is the number of cards per result page.
	PageSize = 20

	defaultCacheSize = 64
)

// Result is one page of search results.
type Result struct {
	Items      []cards.Card `json:"items"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
}

// Pipeline filters, groups and paginates a fixed catalog. It keeps no
// per-caller state; see Cursor for page tracking.
type Pipeline struct {
	catalog   *cards.Catalog
	pageSize  int
	cacheSize int

	mu    sync.Mutex
	cache map[string][]cards.Card
	order []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCacheSize bounds the number of cached result sequences. Zero disables
// caching.
func WithCacheSize(n int) Option {
	return func(p *Pipeline) { p.cacheSize = n }
}

// WithPageSize overrides PageSize.
func WithPageSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// NewPipeline creates a pipeline over catalog.
func NewPipeline(catalog *cards.Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:   catalog,
		pageSize:  PageSize,
		cacheSize: defaultCacheSize,
		cache:     make(map[string][]cards.Card),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// PageSize returns the configured page size.
func (p *Pipeline) PageSize() int { return p.pageSize }

// Search runs the criteria and returns the requested page. A page past the
// end is empty; TotalPages tells the caller how far to clamp.
func (p *Pipeline) Search(c cards.Criteria, page int) Result {
	ordered := p.Ordered(c)
	return Result{
		Items:      Paginate(ordered, p.pageSize, page),
		Page:       page,
		TotalPages: TotalPages(len(ordered), p.pageSize),
		Total:      len(ordered),
	}
}

// Ordered returns every matching card in display order. The slice is shared
// with the cache and must not be modified.
func (p *Pipeline) Ordered(c cards.Criteria) []cards.Card {
	key := c.Key()
	if out, ok := p.cached(key); ok {
		return out
	}
	out := cards.Group(cards.Filter(p.catalog.All(), c))
	p.store(key, out)
	return out
}

func (p *Pipeline) cached(key string) ([]cards.Card, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.cache[key]
	return out, ok
}

func (p *Pipeline) store(key string, out []cards.Card) {
	if p.cacheSize <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.cache[key]; ok {
		return
	}
	for len(p.order) >= p.cacheSize {
		delete(p.cache, p.order[0])
		p.order = p.order[1:]
	}
	p.cache[key] = out
	p.order = append(p.order, key)
}

// CacheLen reports how many result sequences are cached.
func (p *Pipeline) CacheLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
