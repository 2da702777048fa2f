package pipeline

import (
	"regexp"
	"strings"
)

// TocEntry is one heading in document order.
type TocEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Number string `json:"number,omitempty"`
}

// RenderedDocument is the output of one DocRenderer.Render call.
type RenderedDocument struct {
	HTML string
	TOC  []TocEntry
}

// DocRenderer converts the long-form lifecycle document into an HTML fragment
// and a table of contents. A DocRenderer holds only configuration; each call
// builds its own counters, so one value may be shared across goroutines.
type DocRenderer struct {
	markers     []string
	highlighter CodeHighlighter
}

// RendererOption configures a DocRenderer.
type RendererOption func(*DocRenderer)

// WithTOCMarkers replaces the heading titles treated as hand-written
// tables of contents.
func WithTOCMarkers(markers ...string) RendererOption {
	return func(r *DocRenderer) {
		r.markers = append([]string(nil), markers...)
	}
}

// WithHighlighter enables syntax highlighting inside fenced code blocks.
// A nil highlighter keeps plain escaped lines.
func WithHighlighter(h CodeHighlighter) RendererOption {
	return func(r *DocRenderer) {
		r.highlighter = h
	}
}

// NewDocRenderer creates a renderer with the default TOC markers and no
// syntax highlighting.
func NewDocRenderer(opts ...RendererOption) *DocRenderer {
	r := &DocRenderer{markers: DefaultTOCMarkers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render transforms markdown into HTML and its table of contents.
// Malformed constructs degrade to paragraphs; Render never fails.
func (r *DocRenderer) Render(markdown string) RenderedDocument {
	blocks := segment(NormalizeMarkdown(markdown), r.markers)
	state := newRenderState()

	out := make([]string, 0, len(blocks))
	toc := make([]TocEntry, 0)

	for i := 0; i < len(blocks); {
		b := blocks[i]
		switch b.kind {
		case kindBlank:
			i++

		case kindFence:
			out = append(out, r.renderCodeBlock(b.lang, b.code))
			i++

		case kindHeading:
			entry := state.heading(b.level, b.text)
			toc = append(toc, entry)
			out = append(out, renderHeading(entry))
			i++

		case kindBullet, kindNumbered:
			end := runEnd(blocks, i, b.kind)
			out = append(out, renderList(blocks[i:end], b.kind))
			i = end

		case kindTableRow:
			end := runEnd(blocks, i, kindTableRow)
			out = append(out, renderTableRun(blocks[i:end])...)
			i = end

		case kindRule:
			out = append(out, "<hr />")
			i++

		case kindQuote:
			out = append(out, "<blockquote>"+renderInline(b.text)+"</blockquote>")
			i++

		case kindHTML:
			out = append(out, b.text)
			i++

		default:
			out = append(out, paragraph(b.text))
			i++
		}
	}

	return RenderedDocument{HTML: strings.Join(out, "\n"), TOC: toc}
}

// ExtractTOC returns the table of contents without building HTML.
// Ids and numbers are identical to those produced by Render.
func (r *DocRenderer) ExtractTOC(markdown string) []TocEntry {
	blocks := segment(NormalizeMarkdown(markdown), r.markers)
	state := newRenderState()

	toc := make([]TocEntry, 0)
	for _, b := range blocks {
		if b.kind == kindHeading {
			toc = append(toc, state.heading(b.level, b.text))
		}
	}
	return toc
}

// renderHeading writes the heading element for entry.
// The section label is prepended to the visible text only.
func renderHeading(entry TocEntry) string {
	tag := headingTags[entry.Level]

	var b strings.Builder
	b.WriteString("<" + tag + ` id="` + escapeAttr(entry.ID) + `">`)
	if entry.Number != "" {
		b.WriteString(`<span class="section-number">` + entry.Number + `</span> `)
	}
	b.WriteString(renderInline(entry.Title))
	b.WriteString("</" + tag + ">")
	return b.String()
}

var headingTags = map[int]string{1: "h1", 2: "h2", 3: "h3"}

// runEnd returns the index just past the run of blocks of kind starting at i.
func runEnd(blocks []block, i int, kind lineKind) int {
	for i < len(blocks) && blocks[i].kind == kind {
		i++
	}
	return i
}

func renderList(items []block, kind lineKind) string {
	tag := "ul"
	if kind == kindNumbered {
		tag = "ol"
	}

	var b strings.Builder
	b.WriteString("<" + tag + ">\n")
	for _, item := range items {
		b.WriteString("<li>" + renderInline(item.text) + "</li>\n")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func paragraph(text string) string {
	return "<p>" + renderInline(strings.TrimSpace(text)) + "</p>"
}

// ---------------------------------------------------------------------------
// Line classification
// ---------------------------------------------------------------------------

type lineKind int

const (
	kindBlank lineKind = iota
	kindFence
	kindHeading
	kindBullet
	kindNumbered
	kindRule
	kindQuote
	kindTableRow
	kindHTML
	kindText
)

// block is one classified line, or a whole fenced code block.
type block struct {
	kind  lineKind
	text  string // heading title, item/quote content, or the raw line
	level int    // heading level
	lang  string
	code  []string
}

var (
	headingLine  = regexp.MustCompile(`^(#{1,3})[ \t]+(.*\S)\s*$`)
	fenceOpen    = regexp.MustCompile("^\\s*```(.*)$")
	fenceLang    = regexp.MustCompile(`^[\w+#.-]+`)
	bulletLine   = regexp.MustCompile(`^\s*[-•]\s+(.*\S)`)
	numberedLine = regexp.MustCompile(`^\d+\.\s+(.*\S)`)
	ruleLine     = regexp.MustCompile(`^---+$`)
	quoteLine    = regexp.MustCompile(`^>\s+(.*\S)`)
	tableRowLine = regexp.MustCompile(`^\|.+\|$`)
	tableSepLine = regexp.MustCompile(`^\|[-:\s|]+\|$`)
	blockHTML    = regexp.MustCompile(`^<[hupolt]`)
)

// defaultFenceLang is reported for fences without an info string.
const defaultFenceLang = "text"

// segment splits a normalized document into blocks. Headings inside fences
// are code, not headings. A TOC marker heading and everything after it up to
// the next heading of level 2 or higher is dropped.
func segment(src string, markers []string) []block {
	lines := strings.Split(src, "\n")
	blocks := make([]block, 0, len(lines))
	suppressing := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := fenceOpen.FindStringSubmatch(line); m != nil {
			if end := fenceClose(lines, i+1); end >= 0 {
				if !suppressing {
					blocks = append(blocks, block{
						kind: kindFence,
						lang: fenceLanguage(m[1]),
						code: lines[i+1 : end],
					})
				}
				i = end
				continue
			}
			// Unclosed fence: fall through as ordinary text.
		}

		if m := headingLine.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			if isTOCMarker(title, markers) {
				suppressing = true
				continue
			}
			if suppressing && level > 2 {
				continue
			}
			suppressing = false
			blocks = append(blocks, block{kind: kindHeading, level: level, text: title})
			continue
		}

		if suppressing {
			continue
		}
		blocks = append(blocks, classify(line))
	}
	return blocks
}

// fenceClose returns the index of the closing fence at or after start,
// or -1 when the fence is never closed.
func fenceClose(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		if strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
			return j
		}
	}
	return -1
}

func fenceLanguage(info string) string {
	if lang := fenceLang.FindString(strings.TrimSpace(info)); lang != "" {
		return lang
	}
	return defaultFenceLang
}

// classify tags a non-heading, non-fence line.
func classify(line string) block {
	trimmed := strings.TrimRight(line, " \t")

	switch {
	case strings.TrimSpace(line) == "":
		return block{kind: kindBlank}
	case ruleLine.MatchString(trimmed):
		return block{kind: kindRule}
	}

	if m := bulletLine.FindStringSubmatch(line); m != nil {
		return block{kind: kindBullet, text: m[1]}
	}
	if m := numberedLine.FindStringSubmatch(line); m != nil {
		return block{kind: kindNumbered, text: m[1]}
	}
	if m := quoteLine.FindStringSubmatch(line); m != nil {
		return block{kind: kindQuote, text: m[1]}
	}
	if tableRowLine.MatchString(strings.TrimSpace(line)) {
		return block{kind: kindTableRow, text: strings.TrimSpace(line)}
	}
	if blockHTML.MatchString(line) {
		return block{kind: kindHTML, text: line}
	}
	return block{kind: kindText, text: line}
}
