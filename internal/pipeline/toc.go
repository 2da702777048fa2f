package pipeline

import (
	"fmt"
	"html"
	"strings"
)

// TOCNav renders entries as the sidebar navigation. Each link targets the
// heading id and repeats the heading's section number. Level-1 entries are
// flush; deeper levels are indented by 1.5em per level.
func TOCNav(entries []TocEntry, title string) string {
	if len(entries) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc"`)
	if title != "" {
		buf.WriteString(` aria-label="`)
		buf.WriteString(html.EscapeString(title))
		buf.WriteString(`"`)
	}
	buf.WriteString(`>`)

	if title != "" {
		buf.WriteString(`<h2 class="toc-title">`)
		buf.WriteString(html.EscapeString(title))
		buf.WriteString(`</h2>`)
	}

	buf.WriteString(`<ul class="toc-list">`)
	for _, e := range entries {
		fmt.Fprintf(&buf, `<li class="toc-item toc-level-%d"`, e.Level)
		if indent := float64(e.Level-1) * 1.5; indent > 0 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, indent)
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(e.ID))
		buf.WriteString(`" data-toc-id="`)
		buf.WriteString(html.EscapeString(e.ID))
		buf.WriteString(`">`)
		if e.Number != "" {
			buf.WriteString(`<span class="toc-number">`)
			buf.WriteString(e.Number)
			buf.WriteString(`</span> `)
		}
		buf.WriteString(html.EscapeString(e.Title))
		buf.WriteString(`</a></li>`)
	}
	buf.WriteString(`</ul></nav>`)
	return buf.String()
}
