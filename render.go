package howagent

import (
	"context"
	"fmt"

	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/pipeline"
)

// TocEntry is one heading of a rendered document, in document order.
// Number is the display section label ("2", "2.1"), empty for level 1.
type TocEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Number string `json:"number,omitempty"`
}

// Document is the result of one render.
type Document struct {
	HTML string
	TOC  []TocEntry
}

// Renderer converts the lifecycle document. A Renderer is safe for
// concurrent use.
type Renderer struct {
	doc *pipeline.DocRenderer
}

type renderConfig struct {
	markers   []string
	highlight bool
}

// RenderOption configures a Renderer.
type RenderOption func(*renderConfig)

// WithTOCMarkers replaces the heading titles treated as a hand-written table
// of contents. Such a heading and its section are left out of the output.
func WithTOCMarkers(markers ...string) RenderOption {
	return func(c *renderConfig) {
		c.markers = append([]string(nil), markers...)
	}
}

// WithHighlighting adds chroma token classes to fenced code lines. Pair it
// with a chroma stylesheet, see ChromaCSS.
func WithHighlighting(enabled bool) RenderOption {
	return func(c *renderConfig) {
		c.highlight = enabled
	}
}

// NewRenderer creates a Renderer. By default the English and Chinese table
// of contents headings are suppressed and code is not highlighted.
func NewRenderer(opts ...RenderOption) *Renderer {
	cfg := renderConfig{markers: i18n.TOCMarkers()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ropts := []pipeline.RendererOption{pipeline.WithTOCMarkers(cfg.markers...)}
	if cfg.highlight {
		ropts = append(ropts, pipeline.WithHighlighter(pipeline.NewChromaHighlighter()))
	}
	return &Renderer{doc: pipeline.NewDocRenderer(ropts...)}
}

// Render converts markdown into HTML and its table of contents.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, markdown string) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rendered := r.doc.Render(markdown)
	return &Document{HTML: rendered.HTML, TOC: toTocEntries(rendered.TOC)}, nil
}

// ExtractTOC returns only the table of contents. The ids match those Render
// assigns to the same input.
func (r *Renderer) ExtractTOC(markdown string) []TocEntry {
	return toTocEntries(r.doc.ExtractTOC(markdown))
}

// TOCNav renders entries as the numbered sidebar navigation used on the
// document page. title labels the navigation and may be empty.
func TOCNav(entries []TocEntry, title string) string {
	internal := make([]pipeline.TocEntry, len(entries))
	for i, e := range entries {
		internal[i] = pipeline.TocEntry(e)
	}
	return pipeline.TOCNav(internal, title)
}

// ChromaCSS returns the class-based stylesheet for a chroma style name.
// Unknown names fall back to chroma's default style.
func ChromaCSS(style string) (string, error) {
	return pipeline.ChromaCSS(style)
}

func toTocEntries(in []pipeline.TocEntry) []TocEntry {
	out := make([]TocEntry, len(in))
	for i, e := range in {
		out[i] = TocEntry(e)
	}
	return out
}
