// Package printer turns the standalone print document into a PDF with
// headless Chrome.
package printer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/pipeline"
)

// Sentinel errors for PDF export.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEmptyDocument  = errors.New("print document cannot be empty")
)

// DefaultTimeout bounds page load and printing.
const DefaultTimeout = 30 * time.Second

// Paper sizes in inches, portrait.
var paperSizes = map[string][2]float64{
	"a4":     {8.27, 11.69},
	"letter": {8.5, 11},
	"legal":  {8.5, 14},
}

// Extra bottom margin when the footer is shown.
const footerMarginInches = 0.25

const footerFontFamily = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`

// Footer is the running footer printed on every page.
type Footer struct {
	Position       string // left, center or right
	ShowPageNumber bool
	Date           string
	Text           string
}

// Options are the page settings of one print.
type Options struct {
	Size        string  // a4, letter or legal
	Orientation string  // portrait or landscape
	Margin      float64 // inches, all sides
	Footer      *Footer // nil prints no footer
}

// OptionsFromConfig maps the pdf config section onto Options. date is the
// already resolved footer date, empty for none.
func OptionsFromConfig(pdf config.PDFConfig, date string) *Options {
	opts := &Options{
		Size:        strings.ToLower(pdf.Page.Size),
		Orientation: strings.ToLower(pdf.Page.Orientation),
		Margin:      pdf.Page.Margin,
	}
	if pdf.Footer.Enabled {
		opts.Footer = &Footer{
			Position:       pdf.Footer.Position,
			ShowPageNumber: pdf.Footer.ShowPageNumber,
			Date:           date,
			Text:           pdf.Footer.Text,
		}
	}
	return opts
}

// paper returns width and height in inches after orientation.
func (o *Options) paper() (width, height float64) {
	size, ok := paperSizes[o.Size]
	if !ok {
		size = paperSizes["a4"]
	}
	if o.Orientation == "landscape" {
		return size[1], size[0]
	}
	return size[0], size[1]
}

// pageCSS is the @page rule matching the paper settings, so print media
// queries in the theme see the same page box Chrome prints.
func (o *Options) pageCSS() string {
	w, h := o.paper()
	return fmt.Sprintf("@page { size: %.2fin %.2fin; }", w, h)
}

// Renderer prints a local HTML file.
type Renderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error)
	Close() error
}

// Printer writes print documents to temp files and hands them to a Renderer.
type Printer struct {
	renderer Renderer
	rootDir  string
	logger   *slog.Logger
}

// Option configures a Printer.
type Option func(*Printer)

// WithRenderer replaces the headless Chrome renderer.
func WithRenderer(r Renderer) Option {
	return func(p *Printer) { p.renderer = r }
}

// WithRootDir resolves root-relative URLs (images, raw documents) against
// dir, usually the built site.
func WithRootDir(dir string) Option {
	return func(p *Printer) { p.rootDir = dir }
}

// WithLogger sets the printer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Printer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Printer. Without WithRenderer it launches Chrome lazily on
// the first print and waits at most timeout per page.
func New(timeout time.Duration, opts ...Option) *Printer {
	p := &Printer{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRodRenderer(timeout, p.logger)
	}
	return p
}

// ToPDF prints htmlContent and returns the PDF bytes.
func (p *Printer) ToPDF(ctx context.Context, htmlContent string, opts *Options) ([]byte, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, ErrEmptyDocument
	}
	if opts == nil {
		opts = OptionsFromConfig(config.DefaultConfig().PDF, "")
	}

	if p.rootDir != "" {
		rewritten, err := pipeline.RewriteForFile(htmlContent, p.rootDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
		}
		htmlContent = rewritten
	}
	htmlContent = pipeline.InjectStyle(htmlContent, opts.pageCSS())

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer cleanup()

	p.logger.Debug("printing", "file", tmpPath, "size", opts.Size, "orientation", opts.Orientation)
	return p.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close shuts the browser down.
func (p *Printer) Close() error {
	if p.renderer != nil {
		return p.renderer.Close()
	}
	return nil
}

// footerTemplate builds Chrome's native footer. pageNumber and totalPages
// are filled in by Chrome through their class names.
func footerTemplate(f *Footer) string {
	if f == nil {
		return "<span></span>"
	}

	var parts []string
	if f.ShowPageNumber {
		parts = append(parts, `<span class="pageNumber"></span>/<span class="totalPages"></span>`)
	}
	if f.Date != "" {
		parts = append(parts, html.EscapeString(f.Date))
	}
	if f.Text != "" {
		parts = append(parts, html.EscapeString(f.Text))
	}
	if len(parts) == 0 {
		return "<span></span>"
	}

	align := "right"
	switch f.Position {
	case "left", "center":
		align = f.Position
	}

	return fmt.Sprintf(`<div style="font-size: 10px; font-family: %s; color: #aaa; width: 100%%; text-align: %s; padding: 0 0.5in;">%s</div>`,
		footerFontFamily, align, strings.Join(parts, " - "))
}
