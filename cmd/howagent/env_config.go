package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/hints"
	"github.com/yushaw/howagentworks/internal/site"
)

// loadConfig resolves the configuration for a command. An explicit --config
// must exist; without one, howagent.yaml is looked up and the defaults apply
// when it is absent. HOWAGENT_BASE_PATH is applied last. path is the file
// read, empty when running on defaults.
func loadConfig(name string, env *Environment) (cfg *config.Config, path string, err error) {
	explicit := name != ""
	if !explicit {
		name = config.DefaultName
	}

	path, err = config.ResolvePath(name)
	if err != nil {
		if !explicit && errors.Is(err, config.ErrConfigNotFound) {
			cfg = config.DefaultConfig()
			cfg.ApplyEnv(env.LookupEnv)
			return cfg, "", nil
		}
		return nil, "", withConfigHint(err, name)
	}

	cfg, err = config.LoadConfig(path)
	if err != nil {
		return nil, "", withConfigHint(err, name)
	}
	cfg.ApplyEnv(env.LookupEnv)
	return cfg, path, nil
}

// withConfigHint appends the search-path hint to not-found errors.
func withConfigHint(err error, name string) error {
	if errors.Is(err, config.ErrConfigNotFound) {
		return fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
	}
	return err
}

// newSiteBuilder validates cfg after flag overrides and creates a builder.
func newSiteBuilder(cfg *config.Config, env *Environment, logger *slog.Logger) (*site.Builder, error) {
	warnChromaStyle(cfg.Render.ChromaStyle, logger)
	return site.NewBuilder(cfg, site.WithLogger(logger), site.WithNow(env.Now))
}

// warnChromaStyle logs when the highlight style is unknown to chroma, which
// silently falls back to its default style.
func warnChromaStyle(style string, logger *slog.Logger) {
	if style == "" || slices.Contains(styles.Names(), style) {
		return
	}
	logger.Warn("unknown chroma style, using the default"+hints.ForChromaStyle(styles.Names()), "style", style)
}
