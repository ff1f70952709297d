package cards

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Category is the card kind printed on the card.
type Category string

const (
	CategoryCharacter Category = "character"
	CategoryAction    Category = "action"
	CategoryEvent     Category = "event"
)

// ParseCategory maps catalog labels (English or Japanese) to a Category.
// Unknown labels are kept verbatim so exact-match filtering still works.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "character", "キャラ":
		return CategoryCharacter
	case "action", "アクション":
		return CategoryAction
	case "event", "イベント":
		return CategoryEvent
	}
	return Category(s)
}

// Stat names used in card stat blocks.
const (
	StatServe   = "serve"
	StatReceive = "receive"
	StatToss    = "toss"
	StatAttack  = "attack"
	StatBlock   = "block"

	DefaultStat = StatServe
)

var statAliases = map[string]string{
	"サーブ":  StatServe,
	"レシーブ": StatReceive,
	"トス":   StatToss,
	"アタック": StatAttack,
	"ブロック": StatBlock,
}

// StatNames lists the canonical stat names in display order.
var StatNames = []string{StatServe, StatReceive, StatToss, StatAttack, StatBlock}

// CanonicalStat resolves a stat label to its canonical name.
func CanonicalStat(name string) string {
	name = strings.TrimSpace(name)
	if c, ok := statAliases[name]; ok {
		return c
	}
	return strings.ToLower(name)
}

// StatValue is a stat that may be absent. Absent is distinct from zero.
type StatValue struct {
	Value float64
	Known bool
}

// Known returns a present stat value.
func Known(v float64) StatValue { return StatValue{Value: v, Known: true} }

// ParseStat reads a raw catalog cell; "-", "" and non-numbers are absent.
func ParseStat(s string) StatValue {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return StatValue{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return StatValue{}
	}
	return Known(v)
}

func (s StatValue) MarshalJSON() ([]byte, error) {
	if !s.Known {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *StatValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = StatValue{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*s = ParseStat(raw)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Known(v)
	return nil
}

// Card is one catalog record.
type Card struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Category Category             `json:"category"`
	Team     string               `json:"team,omitempty"`
	Set      string               `json:"set"`
	Stats    map[string]StatValue `json:"stats,omitempty"`
	Image    string               `json:"image,omitempty"`
}

var copySuffix = regexp.MustCompile(`_\d+$`)

// DisplayName is Name without a trailing "_<n>" copy suffix, as in "影山_2".
func (c Card) DisplayName() string {
	return copySuffix.ReplaceAllString(c.Name, "")
}

// Canonical returns c with its category label and stat names in canonical
// form.
func (c Card) Canonical() Card {
	c.Category = ParseCategory(string(c.Category))
	c.Stats = CanonicalStats(c.Stats)
	return c
}

// CanonicalStats re-keys stats by canonical stat name. Nil stays nil.
func CanonicalStats(stats map[string]StatValue) map[string]StatValue {
	if len(stats) == 0 {
		return nil
	}
	out := make(map[string]StatValue, len(stats))
	for k, v := range stats {
		out[CanonicalStat(k)] = v
	}
	return out
}

// Stat returns the card's value for the named stat, if known.
func (c Card) Stat(name string) (float64, bool) {
	v, ok := c.Stats[CanonicalStat(name)]
	if !ok || !v.Known {
		return 0, false
	}
	return v.Value, true
}
