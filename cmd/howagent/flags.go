package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/printer"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags holds the content and hosting overrides.
type siteFlags struct {
	content  string
	basePath string
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common commonFlags
	site   siteFlags
	out    string
	clean  bool
	strict bool
	set    map[string]bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common    commonFlags
	output    string
	highlight bool
	markers   []string
	set       map[string]bool
}

// tocFlags holds flags for the toc command.
type tocFlags struct {
	common  commonFlags
	json    bool
	markers []string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common   commonFlags
	site     siteFlags
	addr     string
	debounce time.Duration
	set      map[string]bool
}

// pdfFlags holds flags for the pdf command.
type pdfFlags struct {
	common      commonFlags
	site        siteFlags
	lang        string
	output      string
	timeout     time.Duration
	size        string
	orientation string
	margin      float64
	date        string
	noFooter    bool
	set         map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSiteFlags adds content and hosting flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.content, "content", "", "content directory")
	fs.StringVar(&f.basePath, "base-path", "", "URL prefix when hosted under a sub-path (\"\" = domain root)")
}

// apply copies set flags onto cfg.
func (f *siteFlags) apply(cfg *config.Config, set map[string]bool) {
	if f.content != "" {
		cfg.Content.Dir = f.content
	}
	if set["base-path"] {
		cfg.Site.BasePath = f.basePath
	}
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs.Parse and marks parse failures as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// changedFlags returns the names of flags set on the command line.
func changedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, w io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newFlagSet("build", w, printBuildUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.out, "out", "o", "", "output directory")
	fs.BoolVar(&f.clean, "clean", false, "remove the output directory first")
	fs.BoolVar(&f.strict, "strict", false, "fail when a document or the news feed was unavailable")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", w, printRenderUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "write HTML to a file instead of stdout")
	fs.BoolVar(&f.highlight, "highlight", false, "add chroma classes to code lines")
	fs.StringSliceVar(&f.markers, "toc-marker", nil, "heading treated as a hand-written TOC (repeatable)")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseTOCFlags parses toc command flags and returns positional args.
func parseTOCFlags(args []string, w io.Writer) (*tocFlags, []string, error) {
	f := &tocFlags{}
	fs := newFlagSet("toc", w, printTOCUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "print entries as JSON")
	fs.StringSliceVar(&f.markers, "toc-marker", nil, "heading treated as a hand-written TOC (repeatable)")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default "+config.DefaultAddr+")")
	fs.DurationVar(&f.debounce, "debounce", 0, "wait after the last change before rebuilding")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	if f.set["debounce"] && (f.debounce < 0 || f.debounce > config.MaxDebounce) {
		return nil, nil, fmt.Errorf("%w: --debounce must be between 0 and %s", ErrUsage, config.MaxDebounce)
	}
	return f, fs.Args(), nil
}

// parsePDFFlags parses pdf command flags and returns positional args.
func parsePDFFlags(args []string, w io.Writer) (*pdfFlags, []string, error) {
	f := &pdfFlags{}
	fs := newFlagSet("pdf", w, printPDFUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.lang, "lang", "l", string(i18n.DefaultLanguage), "document language: en, zh")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default reactAgent.<lang>.pdf)")
	fs.DurationVarP(&f.timeout, "timeout", "t", printer.DefaultTimeout, "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0-3.0)")
	fs.StringVar(&f.date, "date", "", "footer date: \"auto\", \"auto:FORMAT\", or literal")
	fs.BoolVar(&f.noFooter, "no-footer", false, "disable footer")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	if f.timeout <= 0 {
		return nil, nil, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, f.timeout)
	}
	return f, fs.Args(), nil
}

// apply copies set page and footer flags onto cfg.
func (f *pdfFlags) apply(cfg *config.Config) {
	f.site.apply(cfg, f.set)
	if f.size != "" {
		cfg.PDF.Page.Size = f.size
	}
	if f.orientation != "" {
		cfg.PDF.Page.Orientation = f.orientation
	}
	if f.set["margin"] {
		cfg.PDF.Page.Margin = f.margin
	}
	if f.set["date"] {
		cfg.PDF.Footer.Date = f.date
	}
	if f.noFooter {
		cfg.PDF.Footer.Enabled = false
	}
}
