// Package news loads, validates and pages the agent news feed.
//
// The feed is a JSON document ({schemaVersion, lastUpdated, items}) read from
// a local file or an http(s) URL. Any failure yields the built-in fallback
// feed together with the cause, so a broken feed never breaks a build.
package news

import (
	"errors"
	"sort"
	"time"

	"github.com/yushaw/howagentworks/internal/i18n"
)

// Sentinel errors for feed loading.
var (
	ErrFetch  = errors.New("fetching news feed failed")
	ErrStatus = errors.New("news feed returned non-success status")
	ErrDecode = errors.New("decoding news feed failed")
	ErrSchema = errors.New("news feed does not match schema")
)

// Source links an item to its original publication.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Item is one news entry.
type Item struct {
	ID          string             `json:"id"`
	Title       i18n.LocalizedText `json:"title"`
	Summary     i18n.LocalizedText `json:"summary"`
	Source      Source             `json:"source"`
	PublishedAt string             `json:"publishedAt"`
	Tags        []string           `json:"tags"`
	Signal      string             `json:"signal,omitempty"`
}

// Feed is the whole news document.
type Feed struct {
	SchemaVersion string `json:"schemaVersion"`
	LastUpdated   string `json:"lastUpdated"`
	Items         []Item `json:"items"`
}

// Published parses PublishedAt. Unparseable timestamps return the zero time,
// which sorts last.
func (it Item) Published() time.Time {
	t, err := time.Parse(time.RFC3339, it.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Sorted returns a copy of items ordered newest first. Items with equal
// timestamps keep their feed order.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Published().After(out[j].Published())
	})
	return out
}

// Preview returns at most n of the newest items, for the home page.
func Preview(items []Item, n int) []Item {
	sorted := Sorted(items)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
