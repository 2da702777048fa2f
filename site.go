package howagent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/site"
)

// BuildReport summarizes a finished site build.
type BuildReport struct {
	BuildID   string
	OutputDir string
	Pages     int
	DocErrors []error // one per language whose document could not be read
	NewsError error   // set when the fallback feed was used
	Elapsed   time.Duration
}

type siteConfig struct {
	configFile string
	contentDir string
	outputDir  string
	basePath   *string
	clean      bool
	logger     *slog.Logger
	now        func() time.Time
}

// SiteOption configures BuildSite.
type SiteOption func(*siteConfig)

// WithConfigFile loads settings from a YAML file path or a config name
// searched in the working directory and the user config directory.
func WithConfigFile(nameOrPath string) SiteOption {
	return func(c *siteConfig) { c.configFile = nameOrPath }
}

// WithContentDir overrides content.dir.
func WithContentDir(dir string) SiteOption {
	return func(c *siteConfig) { c.contentDir = dir }
}

// WithOutputDir overrides output.dir.
func WithOutputDir(dir string) SiteOption {
	return func(c *siteConfig) { c.outputDir = dir }
}

// WithBasePath overrides site.basePath and HOWAGENT_BASE_PATH. An empty
// value hosts the site at the domain root.
func WithBasePath(base string) SiteOption {
	return func(c *siteConfig) { c.basePath = &base }
}

// WithClean removes the output directory before writing.
func WithClean(clean bool) SiteOption {
	return func(c *siteConfig) { c.clean = clean }
}

// WithLogger sets the build logger. The default discards everything.
func WithLogger(logger *slog.Logger) SiteOption {
	return func(c *siteConfig) { c.logger = logger }
}

// WithClock sets the time used for date labels and the manifest.
func WithClock(now func() time.Time) SiteOption {
	return func(c *siteConfig) { c.now = now }
}

// BuildSite renders the whole site. Settings come from the defaults, then
// the config file, then HOWAGENT_BASE_PATH, then options.
// Recovers from internal panics to prevent crashes from propagating to callers.
func BuildSite(ctx context.Context, opts ...SiteOption) (report *BuildReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()

	var sc siteConfig
	for _, opt := range opts {
		opt(&sc)
	}

	cfg := config.DefaultConfig()
	if sc.configFile != "" {
		if cfg, err = config.LoadConfig(sc.configFile); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if sc.contentDir != "" {
		cfg.Content.Dir = sc.contentDir
	}
	if sc.outputDir != "" {
		cfg.Output.Dir = sc.outputDir
	}
	if sc.basePath != nil {
		cfg.Site.BasePath = *sc.basePath
	}
	if sc.clean {
		cfg.Output.Clean = true
	}

	builder, err := site.NewBuilder(cfg, site.WithLogger(sc.logger), site.WithNow(sc.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	r, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return &BuildReport{
		BuildID:   r.BuildID,
		OutputDir: r.OutputDir,
		Pages:     len(r.Pages),
		DocErrors: r.DocErrors,
		NewsError: r.NewsError,
		Elapsed:   r.Elapsed,
	}, nil
}
