package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/hints"
	"github.com/yushaw/howagentworks/internal/preview"
	"github.com/yushaw/howagentworks/internal/site"
)

// runServe builds the site and serves it with live rebuilds until
// interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional)
	}

	logger := newLogger(env.Stderr, f.common)
	cfg, path, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.site.apply(cfg, f.set)

	builder, err := newSiteBuilder(cfg, env, logger)
	if err != nil {
		return err
	}

	opts := []preview.Option{preview.WithLogger(logger)}
	if f.set["debounce"] {
		opts = append(opts, preview.WithDebounce(f.debounce))
	}
	if path != "" {
		opts = append(opts, preview.WithConfigReload(path, reloadBuilder(path, f, env, logger)))
	}

	srv, err := preview.New(builder, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil {
			logger.Warn("removing preview builds", "error", cerr)
		}
	}()

	addr := cfg.Serve.Addr
	if f.addr != "" {
		addr = f.addr
	}

	err = srv.Run(ctx, addr)
	switch {
	case errors.Is(err, preview.ErrListen):
		return fmt.Errorf("%w%s", err, hints.ForAddressInUse(addr))
	case err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

// reloadBuilder returns the callback the preview server runs when the
// config file changes. Command-line overrides keep winning.
func reloadBuilder(path string, f *serveFlags, env *Environment, logger *slog.Logger) func() (*site.Builder, error) {
	return func() (*site.Builder, error) {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnv(env.LookupEnv)
		f.site.apply(cfg, f.set)
		return newSiteBuilder(cfg, env, logger)
	}
}
