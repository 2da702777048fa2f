package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yushaw/howagentworks/internal/hints"
	"github.com/yushaw/howagentworks/internal/site"
)

// runBuild exports the static site.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: build takes no arguments, got %q", ErrUsage, positional)
	}

	logger := newLogger(env.Stderr, f.common)
	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.site.apply(cfg, f.set)
	if f.out != "" {
		cfg.Output.Dir = f.out
	}
	if f.clean {
		cfg.Output.Clean = true
	}

	builder, err := newSiteBuilder(cfg, env, logger)
	if err != nil {
		return err
	}

	report, err := builder.Build(ctx)
	if err != nil {
		if errors.Is(err, site.ErrWrite) {
			return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
		}
		return err
	}

	for _, docErr := range report.DocErrors {
		logger.Warn("document unavailable, wrote an error page"+hints.ForContentMissing(cfg.Content.Dir), "error", docErr)
	}
	if report.NewsError != nil {
		logger.Warn("news feed unavailable, used the built-in items", "error", report.NewsError)
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Built %d pages into %s in %s (build %s)\n",
			len(report.Pages), report.OutputDir, report.Elapsed.Round(time.Millisecond), report.BuildID)
	}

	if f.strict && (len(report.DocErrors) > 0 || report.NewsError != nil) {
		return fmt.Errorf("%w: %d document(s), news feed ok=%t", ErrIncomplete, len(report.DocErrors), report.NewsError == nil)
	}
	return nil
}
