package search

import (
	"net/url"
	"strings"
)

// WindowPath is the fragment route of the detached search window.
const WindowPath = "#/search"

// WindowURL builds the address a detached search window is opened at, with
// the keyword carried in the fragment's query.
func WindowURL(base, keyword string) string {
	base = strings.TrimSuffix(base, "#")
	if i := strings.Index(base, "#"); i >= 0 {
		base = base[:i]
	}
	return base + WindowPath + "?keyword=" + url.QueryEscape(keyword)
}

// KeywordFromURL extracts the keyword from a window address. The fragment
// query wins over the regular query; a missing or unparsable value is "".
func KeywordFromURL(raw string) string {
	frag := ""
	rest := raw
	if i := strings.Index(raw, "#"); i >= 0 {
		frag = raw[i+1:]
		rest = raw[:i]
	}
	if i := strings.Index(frag, "?"); i >= 0 {
		if q, err := url.ParseQuery(frag[i+1:]); err == nil && q.Has("keyword") {
			return q.Get("keyword")
		}
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		if q, err := url.ParseQuery(rest[i+1:]); err == nil {
			return q.Get("keyword")
		}
	}
	return ""
}
