package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var ErrHTMLConversion = errors.New("HTML conversion failed")

// ProseConverter renders the short prose pages (home, news intro) with
// goldmark. The lifecycle document goes through DocRenderer instead, which
// owns its heading ids and table of contents.
type ProseConverter struct {
	md goldmark.Markdown
}

// NewProseConverter enables GFM and footnotes, and highlights fenced code
// with chroma classes for style. Raw HTML passes through: prose is authored
// in the repository, not submitted by visitors.
func NewProseConverter(style string) *ProseConverter {
	if style == "" {
		style = DefaultChromaStyle
	}
	highlight := highlighting.NewHighlighting(
		highlighting.WithStyle(style),
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	)
	return &ProseConverter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, highlight),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithXHTML(), html.WithUnsafe()),
	)}
}

// ToHTML returns an HTML fragment. goldmark cannot be interrupted, so ctx
// is only consulted before conversion starts.
func (c *ProseConverter) ToHTML(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(NormalizeMarkdown(markdown)), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}
