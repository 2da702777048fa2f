// Package dateutil provides date format parsing and display labels.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yushaw/howagentworks/internal/i18n"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is given without a format.
const DefaultDateFormat = "YYYY-MM-DD"

// autoPrefix marks a date resolved at print time.
const autoPrefix = "auto"

// tokens maps format tokens to Go layout fragments, longest first so
// "MMMM" wins over "MM".
var tokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets names common formats. Lookup is case-insensitive.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat turns a format such as "DD/MM/YYYY" into a Go layout.
// Text in brackets is kept literally ("[Week of] MMM D"), as is any
// character that does not start a token.
func ParseDateFormat(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	for rest := format; rest != ""; {
		if literal, ok := strings.CutPrefix(rest, "["); ok {
			text, after, closed := strings.Cut(literal, "]")
			if !closed {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			layout.WriteString(text)
			rest = after
			continue
		}
		rest = appendToken(&layout, rest)
	}
	return layout.String(), nil
}

// appendToken writes the layout for the token at the start of s, or its
// first byte when none matches, and returns the remainder.
func appendToken(b *strings.Builder, s string) string {
	for _, t := range tokens {
		if after, ok := strings.CutPrefix(s, t.token); ok {
			b.WriteString(t.layout)
			return after
		}
	}
	b.WriteByte(s[0])
	return s[1:]
}

// ResolveDate expands "auto" values against t:
//   - "auto" formats t as YYYY-MM-DD
//   - "auto:FORMAT" formats t with FORMAT or a preset name
//   - anything else is returned unchanged
func ResolveDate(value string, t time.Time) (string, error) {
	rest, isAuto := cutFold(value, autoPrefix)
	if !isAuto {
		return value, nil
	}

	format := DefaultDateFormat
	if rest != "" {
		custom, ok := strings.CutPrefix(rest, ":")
		if !ok {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		if custom == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		format = custom
		if preset, ok := DatePresets[strings.ToLower(custom)]; ok {
			format = preset
		}
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// cutFold is strings.CutPrefix with a case-insensitive prefix match.
func cutFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// Label formats per language. The short form is used for dates in the
// current year.
var labelFormats = map[i18n.Language]struct{ short, long string }{
	i18n.English: {short: "MMM D", long: "MMM D, YYYY"},
	i18n.Chinese: {short: "M[月]D[日]", long: "YYYY[年]M[月]D[日]"},
}

// inputLayouts are the accepted timestamp shapes, tried in order.
var inputLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// FormatLabel renders an ISO timestamp as a short display label:
// "Jan 16" or "1月16日" within now's year, "Jan 16, 2024" or "2024年1月16日"
// otherwise. Unparseable input is returned unchanged.
func FormatLabel(iso string, lang i18n.Language, now time.Time) string {
	t, ok := parseTimestamp(iso)
	if !ok {
		return iso
	}
	t = t.In(now.Location())

	formats, ok := labelFormats[lang]
	if !ok {
		formats = labelFormats[i18n.DefaultLanguage]
	}
	format := formats.long
	if t.Year() == now.Year() {
		format = formats.short
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return iso
	}
	return t.Format(layout)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
