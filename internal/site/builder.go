package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yushaw/howagentworks/internal/assets"
	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/news"
	"github.com/yushaw/howagentworks/internal/pipeline"
)

// Sentinel errors for site builds.
var (
	ErrTemplate        = errors.New("rendering page template failed")
	ErrContent         = errors.New("reading content failed")
	ErrDocUnavailable  = errors.New("lifecycle document unavailable")
	ErrWrite           = errors.New("writing output failed")
	ErrUnsafeOutputDir = errors.New("refusing to clean output directory")
)

// Builder renders the whole site from a validated configuration.
// A Builder may run several builds; each build reads content afresh.
type Builder struct {
	cfg    *config.Config
	loader assets.AssetLoader
	news   *news.Loader
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the build logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithNow sets the clock used for date labels and the manifest.
func WithNow(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithAssetLoader replaces the theme loader derived from assets.basePath.
func WithAssetLoader(loader assets.AssetLoader) Option {
	return func(b *Builder) {
		if loader != nil {
			b.loader = loader
		}
	}
}

// WithNewsLoader replaces the feed loader derived from the news settings.
func WithNewsLoader(l *news.Loader) Option {
	return func(b *Builder) {
		if l != nil {
			b.news = l
		}
	}
}

// NewBuilder validates cfg and prepares a Builder.
func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.loader == nil {
		resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
		if err != nil {
			return nil, err
		}
		b.loader = resolver
	}
	if b.news == nil {
		b.news = news.NewLoader(
			news.WithAttempts(uint(max(cfg.News.Attempts, 1))), // #nosec G115 -- bounded by Validate
			news.WithLogger(b.logger),
		)
	}
	return b, nil
}

// Config returns the configuration the Builder was created with.
func (b *Builder) Config() *config.Config {
	return b.cfg
}

// PageInfo describes one written page.
type PageInfo struct {
	Path     string        `json:"path"`
	Language i18n.Language `json:"language,omitempty"`
	SHA256   string        `json:"sha256"`
}

// Manifest is written to manifest.json at the output root.
type Manifest struct {
	BuildID     string     `json:"buildId"`
	GeneratedAt string     `json:"generatedAt"`
	BasePath    string     `json:"basePath"`
	Pages       []PageInfo `json:"pages"`
}

// Report summarizes a finished build. DocErrors and NewsError are
// non-fatal: the build still wrote an error page or the fallback feed.
type Report struct {
	BuildID   string
	OutputDir string
	Pages     []PageInfo
	DocErrors []error
	NewsError error
	Elapsed   time.Duration
}

// run holds the state of a single build.
type run struct {
	cfg       *config.Config
	id        string
	basePath  string
	now       time.Time
	templates *template.Template
	renderer  *pipeline.DocRenderer
	prose     *pipeline.ProseConverter
	feed      *news.Feed
}

func (b *Builder) newRun() (*run, error) {
	templates, err := assets.ParseTemplates(b.loader, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	markers := b.cfg.Render.TOCMarkers
	if len(markers) == 0 {
		markers = i18n.TOCMarkers()
	}
	ropts := []pipeline.RendererOption{pipeline.WithTOCMarkers(markers...)}
	if b.cfg.Render.Highlight {
		ropts = append(ropts, pipeline.WithHighlighter(pipeline.NewChromaHighlighter()))
	}

	return &run{
		cfg:       b.cfg,
		id:        uuid.NewString(),
		basePath:  fileutil.CleanBasePath(b.cfg.Site.BasePath),
		now:       b.now(),
		templates: templates,
		renderer:  pipeline.NewDocRenderer(ropts...),
		prose:     pipeline.NewProseConverter(b.cfg.Render.ChromaStyle),
		feed:      news.Fallback(),
	}, nil
}

// Build writes the site to the configured output directory.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	return b.BuildTo(ctx, b.cfg.Output.Dir)
}

// BuildTo writes the site to dir. Languages render concurrently; the first
// fatal error cancels the others.
func (b *Builder) BuildTo(ctx context.Context, dir string) (*Report, error) {
	start := time.Now()
	if dir == "" {
		dir = config.DefaultOutputDir
	}

	r, err := b.newRun()
	if err != nil {
		return nil, err
	}
	report := &Report{BuildID: r.id, OutputDir: dir}

	feed, feedErr := b.news.Load(ctx, b.cfg.NewsSource())
	if feedErr != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.logger.Warn("news feed unavailable, using fallback", "source", b.cfg.NewsSource(), "error", feedErr)
		report.NewsError = feedErr
	}
	built := *feed
	built.Items = news.Sorted(feed.Items)
	r.feed = &built

	results := make([]*languageResult, len(i18n.Languages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, lang := range i18n.Languages {
		g.Go(func() error {
			res, err := r.languagePages(gctx, lang)
			if err != nil {
				return fmt.Errorf("%s: %w", lang, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	root, err := r.rootPage()
	if err != nil {
		return nil, err
	}
	pages := []page{root}
	for i, res := range results {
		pages = append(pages, res.pages...)
		if res.docErr != nil {
			b.logger.Warn("lifecycle document unavailable", "lang", i18n.Languages[i], "error", res.docErr)
			report.DocErrors = append(report.DocErrors, res.docErr)
		}
	}

	if b.cfg.Output.Clean {
		if err := b.cleanOutputDir(dir); err != nil {
			return nil, err
		}
	}

	w := &writer{dir: dir}
	for _, p := range pages {
		html, err := pipeline.RewriteBasePath(string(p.body), r.basePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWrite, p.path, err)
		}
		sum, err := w.write(fileutil.PageFile(p.path), []byte(html))
		if err != nil {
			return nil, err
		}
		report.Pages = append(report.Pages, PageInfo{Path: p.path, Language: p.lang, SHA256: sum})
		b.logger.Debug("page written", "path", p.path)
	}

	if err := r.writeAssets(w, b.loader); err != nil {
		return nil, err
	}
	for i, res := range results {
		if res.doc == nil {
			continue
		}
		if _, err := w.write(fileutil.PageFile(RawDocPath(i18n.Languages[i])), res.doc); err != nil {
			return nil, err
		}
	}
	if err := w.writeJSON(fileutil.PageFile(FeedPath), r.feed); err != nil {
		return nil, err
	}

	sort.Slice(report.Pages, func(i, j int) bool { return report.Pages[i].Path < report.Pages[j].Path })
	manifest := Manifest{
		BuildID:     r.id,
		GeneratedAt: r.now.UTC().Format(time.RFC3339),
		BasePath:    r.basePath,
		Pages:       report.Pages,
	}
	if err := w.writeJSON(fileutil.PageFile(ManifestPath), manifest); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	b.logger.Info("site built", "dir", dir, "pages", len(report.Pages), "build", r.id, "elapsed", report.Elapsed)
	return report, nil
}

// PrintPage renders the standalone print document for lang. date is shown
// on the cover when not empty.
func (b *Builder) PrintPage(lang i18n.Language, date string) (string, error) {
	r, err := b.newRun()
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(DocSource(b.cfg.Content.Dir, lang)) // #nosec G304 -- path from config
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDocUnavailable, lang, err)
	}

	printCSS, err := b.loader.LoadStyle(assets.PrintStyle)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	chromaCSS, err := pipeline.ChromaCSS(b.cfg.Render.ChromaStyle)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	c := i18n.For(lang)
	rendered := r.renderer.Render(string(raw))
	data := printData{
		HTMLLang: lang.HTMLLang(),
		Title:    r.title(c.DocTitle),
		Copy:     c,
		CSS:      template.CSS(printCSS + "\n" + chromaCSS), // #nosec G203 -- theme CSS
		Date:     date,
		TOC:      template.HTML(pipeline.TOCNav(rendered.TOC, c.TOCTitle)), // #nosec G203 -- escaped by TOCNav
		HTML:     template.HTML(rendered.HTML),                              // #nosec G203 -- renderer escapes text
	}
	body, err := r.execute(assets.PrintTemplate, data)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// writeAssets writes the theme stylesheet, the highlight stylesheet and the
// page scripts under /assets/.
func (r *run) writeAssets(w *writer, loader assets.AssetLoader) error {
	siteCSS, err := loader.LoadStyle(assets.SiteStyle)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	chromaCSS, err := pipeline.ChromaCSS(r.cfg.Render.ChromaStyle)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	files := map[string]string{
		"site.css":   siteCSS,
		"chroma.css": chromaCSS,
	}
	for _, name := range []string{assets.PrefsScript, assets.DocScript} {
		js, err := loader.LoadScript(name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		files[name+".js"] = js
	}

	for name, content := range files {
		if _, err := w.write(fileutil.PageFile(AssetsPath+name), []byte(content)); err != nil {
			return err
		}
	}
	return nil
}

// cleanOutputDir removes dir before a build. It refuses the filesystem
// root, the working directory and the content directory.
func (b *Builder) cleanOutputDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeOutputDir, err)
	}
	cwd, _ := os.Getwd()
	content, _ := filepath.Abs(b.cfg.Content.Dir)

	switch {
	case abs == filepath.VolumeName(abs)+string(filepath.Separator):
		return fmt.Errorf("%w: %s is the filesystem root", ErrUnsafeOutputDir, abs)
	case abs == cwd:
		return fmt.Errorf("%w: %s is the working directory", ErrUnsafeOutputDir, abs)
	case abs == content || strings.HasPrefix(content, abs+string(filepath.Separator)):
		return fmt.Errorf("%w: %s holds the content directory", ErrUnsafeOutputDir, abs)
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// writer writes files below an output root and returns their digests.
type writer struct {
	dir string
}

func (w *writer) write(rel string, data []byte) (string, error) {
	if err := fileutil.WriteFile(filepath.Join(w.dir, rel), data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (w *writer) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrWrite, rel, err)
	}
	_, err = w.write(rel, append(data, '\n'))
	return err
}
