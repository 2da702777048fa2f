package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/yushaw/howagentworks/internal/dateutil"
	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/hints"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/printer"
	"github.com/yushaw/howagentworks/internal/site"
)

// runPDF prints the lifecycle document of one language to PDF.
func runPDF(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parsePDFFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: pdf takes no arguments, got %q", ErrUsage, positional)
	}

	lang, err := i18n.ParseLanguage(f.lang)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common)
	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.apply(cfg)

	builder, err := newSiteBuilder(cfg, env, logger)
	if err != nil {
		return err
	}

	var date string
	if cfg.PDF.Footer.Date != "" {
		if date, err = dateutil.ResolveDate(cfg.PDF.Footer.Date, env.Now()); err != nil {
			return err
		}
	}

	page, err := builder.PrintPage(lang, date)
	if err != nil {
		if errors.Is(err, site.ErrDocUnavailable) {
			return fmt.Errorf("%w%s", err, hints.ForContentMissing(cfg.Content.Dir))
		}
		return err
	}

	p := env.NewPrinter(f.timeout, cfg.Content.Dir, logger)
	defer func() {
		if cerr := p.Close(); cerr != nil {
			logger.Warn("closing browser", "error", cerr)
		}
	}()

	data, err := p.ToPDF(ctx, page, printer.OptionsFromConfig(cfg.PDF, date))
	if err != nil {
		return withPrinterHints(err, env.LookupEnv)
	}

	out := f.output
	if out == "" {
		out = fmt.Sprintf("reactAgent.%s.pdf", lang)
	}
	if err := fileutil.WriteFile(out, data); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s (%d bytes)\n", out, len(data))
	}
	return nil
}

// withPrinterHints appends browser setup or timeout hints.
func withPrinterHints(err error, lookup func(string) (string, bool)) error {
	switch {
	case errors.Is(err, printer.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect(hints.DetectBrowserEnv(lookup)))
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	}
	return err
}
