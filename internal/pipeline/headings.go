package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// emptySlug replaces a heading id that normalizes to nothing (e.g. "!!!").
const emptySlug = "section"

// DefaultTOCMarkers are heading titles that introduce a hand-written table of
// contents. Such headings, and the block under them, are dropped from output.
var DefaultTOCMarkers = []string{"Table of Contents", "目录"}

// whitespaceRun matches runs of ASCII and Unicode separators.
var whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// HeadingSlug normalizes heading text into a base identifier: trimmed,
// whitespace runs collapsed to "-", everything except word characters,
// CJK ideographs and "-" removed, then lowercased.
func HeadingSlug(title string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSlugRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// isSlugRune reports whether r survives slug normalization.
func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	}
	return unicode.Is(unicode.Han, r)
}

// headingIDs hands out unique ids within one render.
// The first use of a base id is returned as is; repeats get "-N".
type headingIDs struct {
	occurrences map[string]int
	used        map[string]struct{}
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{
		occurrences: make(map[string]int),
		used:        make(map[string]struct{}),
	}
}

// assign returns the id for the next heading titled title.
func (h *headingIDs) assign(title string) string {
	base := HeadingSlug(title)
	if base == "" {
		base = emptySlug
	}

	n := h.occurrences[base]
	id := suffixed(base, n)
	// A literal "setup-1" heading can collide with a generated suffix.
	for {
		if _, taken := h.used[id]; !taken {
			break
		}
		n++
		id = suffixed(base, n)
	}

	h.occurrences[base] = n + 1
	h.used[id] = struct{}{}
	return id
}

func suffixed(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// sectionCounter numbers level-2 and level-3 headings.
// Level 1 carries no number and restarts both counters.
type sectionCounter struct {
	level2 int
	level3 int
}

// next advances the counters for a heading of the given level and returns
// its display label.
func (c *sectionCounter) next(level int) string {
	switch level {
	case 1:
		c.level2, c.level3 = 0, 0
		return ""
	case 2:
		c.level2++
		c.level3 = 0
		return strconv.Itoa(c.level2)
	default:
		c.level3++
		return strconv.Itoa(c.level2) + "." + strconv.Itoa(c.level3)
	}
}

// renderState is the per-call state threaded through one render.
// Nothing here outlives the call, so concurrent renders never interact.
type renderState struct {
	ids     *headingIDs
	counter sectionCounter
}

func newRenderState() *renderState {
	return &renderState{ids: newHeadingIDs()}
}

// heading assigns id and number to the next heading.
func (s *renderState) heading(level int, title string) TocEntry {
	return TocEntry{
		ID:     s.ids.assign(title),
		Title:  title,
		Level:  level,
		Number: s.counter.next(level),
	}
}

// isTOCMarker reports whether a heading title names a table of contents.
func isTOCMarker(title string, markers []string) bool {
	title = strings.TrimSpace(title)
	for _, m := range markers {
		if title == m {
			return true
		}
	}
	return false
}
