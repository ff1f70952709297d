package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestGroup_FamilyOrderThenNumber(t *testing.T) {
	in := []Card{
		{ID: "XX-001"},
		{ID: "HV-D01-010-N"},
		{ID: "HV-P01-050-N"},
		{ID: "HV-D01-002-N"},
		{ID: "HV-P01-007-R"},
	}

	got := Group(in)

	assert.Equal(t, []string{
		"HV-P01-007-R",
		"HV-P01-050-N",
		"HV-D01-002-N",
		"HV-D01-010-N",
		"XX-001",
	}, ids(got))
}

func TestGroup_PromoFamiliesDoNotCollide(t *testing.T) {
	got := Group([]Card{{ID: "HVBP-002"}, {ID: "HV-PR-001"}, {ID: "HV-D02-001"}})
	assert.Equal(t, []string{"HV-D02-001", "HV-PR-001", "HVBP-002"}, ids(got))
}

func TestGroup_NoDigitsSortsFirstAndTiesAreStable(t *testing.T) {
	in := []Card{
		{ID: "HV-P01-003", Name: "a"},
		{ID: "HV-P01-003", Name: "b"},
		{ID: "HV-P01", Name: "c"},
		{ID: "HV-P01-003", Name: "d"},
	}

	got := Group(in)

	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, names)
}

func TestGroup_DoesNotModifyInput(t *testing.T) {
	in := []Card{{ID: "HV-P01-002"}, {ID: "HV-P01-001"}}
	_ = Group(in)
	assert.Equal(t, "HV-P01-002", in[0].ID)
}

func TestCardNumber(t *testing.T) {
	assert.Equal(t, 50, CardNumber("HV-P01-050-N"))
	assert.Equal(t, 3, CardNumber("HV-PR-003"))
	assert.Equal(t, 0, CardNumber("PROMO"))
	assert.Equal(t, 0, CardNumber(""))
}

func TestFamilyIndex(t *testing.T) {
	assert.Equal(t, 0, FamilyIndex("HV-P01-001"))
	assert.Equal(t, 3, FamilyIndex("HV-PR-001"))
	assert.Equal(t, len(ReleaseFamilies), FamilyIndex("ZZ-001"))
}
