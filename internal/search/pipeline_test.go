package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/hvdeck/internal/cards"
)

// testCatalog mixes families so grouping has work to do.
func testCatalog(t *testing.T) *cards.Catalog {
	t.Helper()
	var cs []cards.Card
	for i := 30; i >= 1; i-- {
		cs = append(cs, cards.Card{ID: fmt.Sprintf("HV-D01-%03d", i), Name: fmt.Sprintf("starter %d", i)})
		cs = append(cs, cards.Card{ID: fmt.Sprintf("HV-P01-%03d-N", i), Name: fmt.Sprintf("main %d", i),
			Stats: map[string]cards.StatValue{cards.StatAttack: cards.Known(float64(i % 5))}})
	}
	cs = append(cs, cards.Card{ID: "ZZ-001", Name: "other"})
	cat, dups := cards.NewCatalog(cs)
	require.Empty(t, dups)
	return cat
}

func TestSearch_EmptyCriteriaIsFirstPageOfGroupedCatalog(t *testing.T) {
	cat := testCatalog(t)
	p := NewPipeline(cat)

	res := p.Search(cards.Criteria{}, 1)

	grouped := cards.Group(cat.All())
	assert.Equal(t, grouped[:PageSize], res.Items)
	assert.Equal(t, 61, res.Total)
	assert.Equal(t, 4, res.TotalPages)
	assert.Equal(t, "HV-P01-001-N", res.Items[0].ID)

	last := p.Search(cards.Criteria{}, 4)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "ZZ-001", last.Items[0].ID)
}

func TestSearch_FilterThenGroup(t *testing.T) {
	p := NewPipeline(testCatalog(t))
	min := 4.0

	res := p.Search(cards.Criteria{Stat: cards.StatAttack, Min: &min}, 1)

	require.Equal(t, 6, res.Total)
	for _, c := range res.Items {
		v, ok := c.Stat(cards.StatAttack)
		assert.True(t, ok)
		assert.Equal(t, 4.0, v)
	}
	assert.Equal(t, "HV-P01-004-N", res.Items[0].ID)
	assert.Equal(t, "HV-P01-029-N", res.Items[5].ID)
}

func TestSearch_PastLastPageIsEmpty(t *testing.T) {
	p := NewPipeline(testCatalog(t))

	res := p.Search(cards.Criteria{Keyword: "ZZ"}, 2)

	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.TotalPages)
}

func TestSearch_CacheIsBounded(t *testing.T) {
	p := NewPipeline(testCatalog(t), WithCacheSize(2))

	p.Search(cards.Criteria{Keyword: "a"}, 1)
	p.Search(cards.Criteria{Keyword: "b"}, 1)
	p.Search(cards.Criteria{Keyword: "c"}, 1)
	assert.Equal(t, 2, p.CacheLen())

	first := p.Search(cards.Criteria{Keyword: "main"}, 1)
	again := p.Search(cards.Criteria{Keyword: "MAIN"}, 1)
	assert.Equal(t, first, again)

	off := NewPipeline(testCatalog(t), WithCacheSize(0))
	off.Search(cards.Criteria{}, 1)
	assert.Equal(t, 0, off.CacheLen())
}

func TestCursor_CriteriaChangeResetsPage(t *testing.T) {
	p := NewPipeline(testCatalog(t))
	c := NewCursor(cards.Criteria{})
	c.SetPage(3)

	assert.False(t, c.SetCriteria(cards.Criteria{}))
	assert.Equal(t, 3, c.Page())

	assert.True(t, c.SetCriteria(cards.Criteria{Stat: cards.StatBlock}), "any field counts")
	assert.Equal(t, 1, c.Page())

	c.SetPage(4)
	assert.True(t, c.SetKeyword("starter"))
	assert.Equal(t, 1, c.Page())

	c.SetPage(9)
	res := c.Run(p)
	assert.Equal(t, 2, c.Page())
	assert.Equal(t, 2, res.Page)
	assert.Len(t, res.Items, 10)

	c.SetKeyword("nothing matches")
	c.SetPage(5)
	res = c.Run(p)
	assert.Equal(t, 1, c.Page())
	assert.Empty(t, res.Items)
}
