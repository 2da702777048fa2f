package pipeline

import (
	"strconv"
	"strings"
)

// renderCodeBlock emits a fenced block with one numbered span per
// non-blank line. Blank lines are dropped before numbering.
func (r *DocRenderer) renderCodeBlock(lang string, code []string) string {
	lines := make([]string, 0, len(code))
	for _, l := range code {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	contents, highlighted := r.highlight(lang, lines)

	class := "code-block"
	if highlighted {
		class += " chroma"
	}

	var b strings.Builder
	b.WriteString(`<pre class="` + class + `" data-language="` + escapeAttr(lang) + `"><code>`)
	for i, c := range contents {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(`<span class="line-number">`)
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(`</span><span class="line-content">`)
		b.WriteString(c)
		b.WriteString(`</span>`)
	}
	b.WriteString(`</code></pre>`)
	return b.String()
}

// highlight returns the HTML for each line. It falls back to plain escaping
// when no highlighter is set or the highlighter changes the line count.
func (r *DocRenderer) highlight(lang string, lines []string) ([]string, bool) {
	if r.highlighter != nil && len(lines) > 0 {
		if out := r.highlighter.HighlightLines(lang, lines); len(out) == len(lines) {
			return out, true
		}
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = escapeText(l)
	}
	return out, false
}
