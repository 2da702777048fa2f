package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	codeSpanPattern = regexp.MustCompile("`([^`]+)`")
	boldPattern     = regexp.MustCompile(`\*\*([^\n*]+?)\*\*`)
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// renderInline applies the span-level rules to one line of text, in order:
// code spans, bold, italic, bold again (for bold wrapping italic), links.
// Code span content is escaped and hidden from the later rules; link
// targets are hidden from the emphasis rules, link labels are not.
func renderInline(text string) string {
	text, spans := extractCodeSpans(text)
	text, hrefs := extractLinkTargets(text)

	text = boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	text = replaceItalic(text)
	text = boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	text = linkPattern.ReplaceAllStringFunc(text, func(m string) string {
		return renderLink(m, hrefs)
	})

	return restoreCodeSpans(text, spans)
}

// extractLinkTargets swaps the target of each [label](target) for a
// placeholder and returns the targets by index.
func extractLinkTargets(text string) (string, []string) {
	if !strings.Contains(text, "](") {
		return text, nil
	}

	var hrefs []string
	text = linkPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		hrefs = append(hrefs, sub[2])
		return "[" + sub[1] + "](" + hrefStartPlaceholder + strconv.Itoa(len(hrefs)-1) + hrefEndPlaceholder + ")"
	})
	return text, hrefs
}

// extractCodeSpans swaps each `code` span for a placeholder and returns the
// rendered spans by index.
func extractCodeSpans(text string) (string, []string) {
	if !strings.Contains(text, "`") {
		return text, nil
	}

	var spans []string
	text = codeSpanPattern.ReplaceAllStringFunc(text, func(m string) string {
		content := m[1 : len(m)-1]
		spans = append(spans, `<code class="inline-code">`+escapeText(content)+`</code>`)
		return codeStartPlaceholder + strconv.Itoa(len(spans)-1) + codeEndPlaceholder
	})
	return text, spans
}

func restoreCodeSpans(text string, spans []string) string {
	if len(spans) == 0 {
		return text
	}
	return codePlaceholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := codePlaceholderPattern.FindStringSubmatch(m)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(spans) {
			return m
		}
		return spans[idx]
	})
}

// replaceItalic wraps *text* in <em>. A marker adjacent to another '*' on
// either side does not open or close emphasis, so "**" pairs left by an
// unmatched bold are never split.
func replaceItalic(s string) string {
	if !strings.Contains(s, "*") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '*' && (i == 0 || s[i-1] != '*') {
			if j := italicClose(s, i); j > 0 {
				b.WriteString("<em>" + s[i+1:j] + "</em>")
				i = j + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// italicClose returns the index of the '*' closing an italic run opened at
// open, or -1.
func italicClose(s string, open int) int {
	rel := strings.IndexAny(s[open+1:], "*\n")
	if rel <= 0 {
		return -1
	}
	j := open + 1 + rel
	if s[j] != '*' {
		return -1
	}
	if j+1 < len(s) && s[j+1] == '*' {
		return -1
	}
	return j
}

func renderLink(m string, hrefs []string) string {
	sub := linkPattern.FindStringSubmatch(m)
	label, href := sub[1], sub[2]
	if ph := hrefPlaceholderPattern.FindStringSubmatch(href); ph != nil {
		if idx, err := strconv.Atoi(ph[1]); err == nil && idx < len(hrefs) {
			href = hrefs[idx]
		}
	}
	return `<a href="` + strings.ReplaceAll(href, `"`, "&quot;") +
		`" target="_blank" rel="noopener noreferrer">` + label + `</a>`
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// renderTableRun converts a run of pipe rows. A table needs a header row, a
// separator row and at least one body row; rows that cannot start a table
// become paragraphs.
func renderTableRun(rows []block) []string {
	var out []string
	for i := 0; i < len(rows); {
		if i+2 < len(rows) && isTableSeparator(rows[i+1].text) {
			out = append(out, renderTable(rows[i].text, rows[i+2:]))
			return out
		}
		out = append(out, paragraph(rows[i].text))
		i++
	}
	return out
}

func isTableSeparator(row string) bool {
	return tableSepLine.MatchString(row) && strings.Contains(row, "-")
}

func renderTable(header string, body []block) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, cell := range tableCells(header) {
		b.WriteString("<th>" + renderInline(cell) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range body {
		b.WriteString("<tr>")
		for _, cell := range tableCells(row.text) {
			b.WriteString("<td>" + renderInline(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// tableCells strips the outer pipes and splits on the inner ones.
// Empty interior cells are kept.
func tableCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")

	cells := strings.Split(row, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
