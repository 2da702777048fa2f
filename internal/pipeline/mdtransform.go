package pipeline

import (
	"regexp"
	"strings"
)

// Inline code spans are swapped for Private Use Area placeholders while the
// emphasis and link rules run, then restored. The placeholders cannot collide
// with authored text and contain none of the characters those rules match.
// Link targets are hidden the same way, so emphasis markers in a URL stay
// literal.
const (
	codeStartPlaceholder = "\uE002"
	codeEndPlaceholder   = "\uE003"
	hrefStartPlaceholder = "\uE004"
	hrefEndPlaceholder   = "\uE005"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Placeholder left by extractCodeSpans
	codePlaceholderPattern = regexp.MustCompile(codeStartPlaceholder + `([0-9]+)` + codeEndPlaceholder)

	// Placeholder left by extractLinkTargets
	hrefPlaceholderPattern = regexp.MustCompile(`^` + hrefStartPlaceholder + `([0-9]+)` + hrefEndPlaceholder + `$`)
)

// utf8BOM is stripped from the start of documents saved by some editors.
const utf8BOM = "\uFEFF"

// NormalizeMarkdown prepares raw document text for rendering.
// Converts \r\n and \r to \n and drops a leading byte order mark.
func NormalizeMarkdown(content string) string {
	content = strings.TrimPrefix(content, utf8BOM)
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// htmlTextEscaper escapes the three characters that matter in element text.
// Quotes are left alone, matching how browsers serialize text nodes.
var htmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeText makes s safe to place inside an element.
func escapeText(s string) string {
	return htmlTextEscaper.Replace(s)
}

// escapeAttr makes s safe to place inside a double-quoted attribute.
func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), `"`, "&quot;")
}
