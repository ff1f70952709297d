package cards

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReleaseFamilies are identifier prefixes in display priority order. Cards
// matching none of them are listed after all families.
var ReleaseFamilies = []string{
	"HV-P01", // first set
	"HV-D01", // starter A
	"HV-D02", // starter B
	"HV-PR",  // promo
	"HVBP",   // trial / alt promo
}

var numberPattern = regexp.MustCompile(`-(\d+)`)

// FamilyIndex returns the position of the card's release family, or
// len(ReleaseFamilies) for the catch-all bucket.
func FamilyIndex(id string) int {
	for i, p := range ReleaseFamilies {
		if strings.HasPrefix(id, p) {
			return i
		}
	}
	return len(ReleaseFamilies)
}

// CardNumber extracts the collector number, e.g. 50 from "HV-P01-050-N".
// Identifiers without a number sort as 0.
func CardNumber(id string) int {
	m := numberPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Group orders cards by release family and then by collector number. Cards
// with equal keys keep their relative order.
func Group(cs []Card) []Card {
	type keyed struct {
		card   Card
		family int
		number int
	}
	ks := make([]keyed, len(cs))
	for i, c := range cs {
		ks[i] = keyed{card: c, family: FamilyIndex(c.ID), number: CardNumber(c.ID)}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].family != ks[j].family {
			return ks[i].family < ks[j].family
		}
		return ks[i].number < ks[j].number
	})
	out := make([]Card, len(ks))
	for i, k := range ks {
		out[i] = k.card
	}
	return out
}
