package cards

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Query is raw filter input as typed by the user. Range bounds stay strings
// until Criteria parses them.
type Query struct {
	Keyword  string `json:"keyword" form:"keyword"`
	Category string `json:"category" form:"category"`
	Team     string `json:"team" form:"team"`
	Set      string `json:"set" form:"set"`
	Stat     string `json:"stat" form:"stat"`
	Min      string `json:"min" form:"min"`
	Max      string `json:"max" form:"max"`
}

// Criteria is one parsed set of search conditions.
type Criteria struct {
	Keyword  string
	Category Category
	Team     string
	Set      string
	Stat     string
	Min      *float64
	Max      *float64
}

// Criteria converts the raw query. A bound that is not a number is dropped,
// which leaves that end of the range open.
func (q Query) Criteria() Criteria {
	c := Criteria{
		Keyword: q.Keyword,
		Team:    strings.TrimSpace(q.Team),
		Set:     strings.TrimSpace(q.Set),
		Stat:    q.Stat,
		Min:     ParseBound(q.Min),
		Max:     ParseBound(q.Max),
	}
	if strings.TrimSpace(q.Category) != "" {
		c.Category = ParseCategory(q.Category)
	}
	return c
}

// ParseBound parses a numeric range bound. Empty or invalid input is nil.
func ParseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IsEmpty reports whether no condition is set. The stat selector alone does
// not count as a condition.
func (c Criteria) IsEmpty() bool {
	return c.Keyword == "" && c.Category == "" && c.Team == "" && c.Set == "" &&
		c.Min == nil && c.Max == nil
}

// HasRange reports whether the stat dimension participates.
func (c Criteria) HasRange() bool {
	return c.Min != nil || c.Max != nil
}

// StatName returns the stat used for range filtering.
func (c Criteria) StatName() string {
	if strings.TrimSpace(c.Stat) == "" {
		return DefaultStat
	}
	return CanonicalStat(c.Stat)
}

// Key is a canonical form of the criteria. Two criteria with the same key
// select the same cards.
func (c Criteria) Key() string {
	stat := ""
	if c.HasRange() {
		stat = c.StatName()
	}
	return fmt.Sprintf("k=%q|c=%q|t=%q|s=%q|st=%q|min=%s|max=%s",
		Normalize(c.Keyword), c.Category, c.Team, c.Set, stat, boundKey(c.Min), boundKey(c.Max))
}

func boundKey(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'g', -1, 64)
}

// Normalize lower-cases text, drops whitespace and folds every dash glyph to
// an ASCII hyphen.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case isDash(r):
			b.WriteByte('-')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isDash(r rune) bool {
	switch r {
	case '-', '−', '－', 'ー':
		return true
	}
	return unicode.Is(unicode.Dash, r)
}

// Matches reports whether the card satisfies every active condition.
func Matches(card Card, c Criteria) bool {
	if c.IsEmpty() {
		return true
	}
	if c.Keyword != "" {
		kw := Normalize(c.Keyword)
		if !strings.Contains(Normalize(card.Name), kw) && !strings.Contains(Normalize(card.ID), kw) {
			return false
		}
	}
	if c.Category != "" && card.Category != c.Category {
		return false
	}
	if c.Team != "" && !strings.Contains(card.Team, c.Team) {
		return false
	}
	if c.Set != "" && card.Set != c.Set {
		return false
	}
	if c.HasRange() {
		v, ok := card.Stat(c.StatName())
		if !ok {
			return false
		}
		if c.Min != nil && v < *c.Min {
			return false
		}
		if c.Max != nil && v > *c.Max {
			return false
		}
	}
	return true
}

// Filter returns the matching cards in their original order.
func Filter(cs []Card, c Criteria) []Card {
	out := make([]Card, 0, len(cs))
	for _, card := range cs {
		if Matches(card, c) {
			out = append(out, card)
		}
	}
	return out
}
