package search

import "github.com/youruser/hvdeck/internal/cards"

// Cursor is the search surface's view state: the current criteria and page.
// Changing the criteria always returns to page 1.
type Cursor struct {
	criteria cards.Criteria
	page     int
}

// NewCursor starts at page 1 of c.
func NewCursor(c cards.Criteria) *Cursor {
	return &Cursor{criteria: c, page: 1}
}

func (c *Cursor) Criteria() cards.Criteria { return c.criteria }

func (c *Cursor) Page() int { return c.page }

// SetCriteria replaces the criteria and reports whether any field changed.
// A change resets the page to 1.
func (c *Cursor) SetCriteria(cr cards.Criteria) bool {
	if sameCriteria(c.criteria, cr) {
		return false
	}
	c.criteria = cr
	c.page = 1
	return true
}

func sameCriteria(a, b cards.Criteria) bool {
	return a.Keyword == b.Keyword && a.Category == b.Category && a.Team == b.Team &&
		a.Set == b.Set && a.Stat == b.Stat && sameBound(a.Min, b.Min) && sameBound(a.Max, b.Max)
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetKeyword changes only the keyword.
func (c *Cursor) SetKeyword(kw string) bool {
	cr := c.criteria
	cr.Keyword = kw
	return c.SetCriteria(cr)
}

// SetPage moves to page p; values below 1 become 1.
func (c *Cursor) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	c.page = p
}

// Clamp keeps the page inside [1, totalPages] after the result count changed.
func (c *Cursor) Clamp(totalPages int) {
	c.page = ClampPage(c.page, totalPages)
}

// Run executes the cursor's criteria on p, clamping the page first.
func (c *Cursor) Run(p *Pipeline) Result {
	total := TotalPages(len(p.Ordered(c.criteria)), p.PageSize())
	c.Clamp(total)
	return p.Search(c.criteria, c.page)
}
