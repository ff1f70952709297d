package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowURL_RoundTrip(t *testing.T) {
	u := WindowURL("http://localhost:3000/app/", "影山 HV-P01")
	assert.Equal(t, "http://localhost:3000/app/#/search?keyword=%E5%BD%B1%E5%B1%B1+HV-P01", u)
	assert.Equal(t, "影山 HV-P01", KeywordFromURL(u))
}

func TestWindowURL_DropsExistingFragment(t *testing.T) {
	assert.Equal(t, "http://h/#/search?keyword=a", WindowURL("http://h/#/deck", "a"))
}

func TestKeywordFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://h/#/search?keyword=%E5%BD%B1%E5%B1%B1", "影山"},
		{"http://h/?keyword=plain", "plain"},
		{"http://h/?keyword=outer#/search?keyword=inner", "inner"},
		{"http://h/?keyword=outer#/search", "outer"},
		{"http://h/#/search", ""},
		{"#/search?keyword=HV-P01-050-N", "HV-P01-050-N"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeywordFromURL(tt.raw), tt.raw)
	}
}
