// Package config loads and validates the site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name searched when --config is not given.
const DefaultName = "howagent"

// userConfigSubdir is the directory under os.UserConfigDir searched second.
const userConfigSubdir = "howagent"

// Field length limits.
const (
	MaxTitleLength       = 100
	MaxURLLength         = 2048
	MaxPathLength        = 1024
	MaxMarkerLength      = 100
	MaxStyleLength       = 50
	MaxAddrLength        = 255
	MaxDateLength        = 30
	MaxTextLength        = 500
	MaxPageSizeLength    = 10
	MaxOrientationLength = 10
	MaxMarkers           = 10
)

// Ranges for numeric fields.
const (
	MaxNewsAttempts  = 10
	MaxNewsPageSize  = 100
	MaxPreviewCount  = 20
	MaxDebounce      = 10 * time.Second
	MinMargin        = 0.0
	MaxMargin        = 3.0
	DefaultDebounce  = 150 * time.Millisecond
	DefaultAddr      = "127.0.0.1:4173"
	DefaultOutputDir = "dist"
)

// EnvBasePath overrides site.basePath when set.
const EnvBasePath = "HOWAGENT_BASE_PATH"

// Config holds all configuration for building and serving the site.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Assets  AssetsConfig  `yaml:"assets"`
	Render  RenderConfig  `yaml:"render"`
	News    NewsConfig    `yaml:"news"`
	Serve   ServeConfig   `yaml:"serve"`
	PDF     PDFConfig     `yaml:"pdf"`
}

// SiteConfig describes where the export is hosted.
type SiteConfig struct {
	Title    string `yaml:"title"`
	BaseURL  string `yaml:"baseURL"`  // Absolute origin, used for canonical links (optional)
	BasePath string `yaml:"basePath"` // URL prefix when hosted under a sub-path, e.g. "/docs"
}

// ContentConfig locates the source content.
type ContentConfig struct {
	Dir string `yaml:"dir"` // Holds home.{lang}.md, docs/ and data/
}

// OutputConfig defines the export destination.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"` // Remove the output dir before building
}

// AssetsConfig defines theme loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded theme
}

// RenderConfig tunes the document renderer.
type RenderConfig struct {
	TOCMarkers  []string `yaml:"tocMarkers"`  // Empty = built-in markers
	Highlight   bool     `yaml:"highlight"`   // Chroma classes on code lines
	ChromaStyle string   `yaml:"chromaStyle"` // Style for assets/chroma.css
}

// NewsConfig controls the news feed.
type NewsConfig struct {
	Source       string `yaml:"source"`       // File path or http(s) URL; empty = <content>/data/agent-news.json
	Attempts     int    `yaml:"attempts"`     // Remote fetch attempts (default 1)
	PageSize     int    `yaml:"pageSize"`     // Items per archive page (default 12)
	PreviewCount int    `yaml:"previewCount"` // Items on the home page (default 3)
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Addr     string        `yaml:"addr"`
	Debounce time.Duration `yaml:"debounce"`
}

// PDFConfig controls PDF export of the lifecycle document.
type PDFConfig struct {
	Page   PageConfig   `yaml:"page"`
	Footer FooterConfig `yaml:"footer"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// FooterConfig defines the PDF page footer.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Position       string `yaml:"position"` // "left", "center", "right"
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Date           string `yaml:"date"` // "auto", "auto:FORMAT" or a literal date
	Text           string `yaml:"text"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Site:    SiteConfig{Title: "HowAgent.works"},
		Content: ContentConfig{Dir: "content"},
		Output:  OutputConfig{Dir: DefaultOutputDir},
		Render:  RenderConfig{ChromaStyle: "github"},
		News:    NewsConfig{Attempts: 1, PageSize: 12, PreviewCount: 3},
		Serve:   ServeConfig{Addr: DefaultAddr, Debounce: DefaultDebounce},
		PDF: PDFConfig{
			Page:   PageConfig{Size: "a4", Orientation: "portrait", Margin: 0.6},
			Footer: FooterConfig{Enabled: true, Position: "center", ShowPageNumber: true},
		},
	}
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("site.title", c.Site.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.baseURL", c.Site.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Site.BaseURL != "" && !fileutil.IsURL(c.Site.BaseURL) {
		return fmt.Errorf("%w: site.baseURL must start with http:// or https://, got %q", ErrInvalidValue, c.Site.BaseURL)
	}
	if err := validateFieldLength("site.basePath", c.Site.BasePath, MaxPathLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Site.BasePath, "?#") || strings.Contains(c.Site.BasePath, "://") {
		return fmt.Errorf("%w: site.basePath must be a plain path, got %q", ErrInvalidValue, c.Site.BasePath)
	}

	paths := []struct{ field, value string }{
		{"content.dir", c.Content.Dir},
		{"output.dir", c.Output.Dir},
		{"assets.basePath", c.Assets.BasePath},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.field, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	if len(c.Render.TOCMarkers) > MaxMarkers {
		return fmt.Errorf("%w: render.tocMarkers: at most %d markers, got %d", ErrInvalidValue, MaxMarkers, len(c.Render.TOCMarkers))
	}
	for i, m := range c.Render.TOCMarkers {
		if err := validateFieldLength(fmt.Sprintf("render.tocMarkers[%d]", i), m, MaxMarkerLength); err != nil {
			return err
		}
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("%w: render.tocMarkers[%d] is blank", ErrInvalidValue, i)
		}
	}
	if err := validateFieldLength("render.chromaStyle", c.Render.ChromaStyle, MaxStyleLength); err != nil {
		return err
	}

	if err := validateFieldLength("news.source", c.News.Source, MaxURLLength); err != nil {
		return err
	}
	if err := validateRange("news.attempts", c.News.Attempts, 0, MaxNewsAttempts); err != nil {
		return err
	}
	if err := validateRange("news.pageSize", c.News.PageSize, 0, MaxNewsPageSize); err != nil {
		return err
	}
	if err := validateRange("news.previewCount", c.News.PreviewCount, 0, MaxPreviewCount); err != nil {
		return err
	}

	if err := validateFieldLength("serve.addr", c.Serve.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Serve.Debounce < 0 || c.Serve.Debounce > MaxDebounce {
		return fmt.Errorf("%w: serve.debounce: must be between 0 and %s, got %s", ErrInvalidValue, MaxDebounce, c.Serve.Debounce)
	}

	return c.PDF.validate()
}

func (p *PDFConfig) validate() error {
	if err := validateFieldLength("pdf.page.size", p.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if p.Page.Size != "" {
		switch strings.ToLower(p.Page.Size) {
		case "letter", "a4", "legal":
		default:
			return fmt.Errorf("%w: pdf.page.size %q (must be letter, a4, or legal)", ErrInvalidValue, p.Page.Size)
		}
	}
	if err := validateFieldLength("pdf.page.orientation", p.Page.Orientation, MaxOrientationLength); err != nil {
		return err
	}
	if p.Page.Orientation != "" {
		switch strings.ToLower(p.Page.Orientation) {
		case "portrait", "landscape":
		default:
			return fmt.Errorf("%w: pdf.page.orientation %q (must be portrait or landscape)", ErrInvalidValue, p.Page.Orientation)
		}
	}
	if p.Page.Margin < MinMargin || p.Page.Margin > MaxMargin {
		return fmt.Errorf("%w: pdf.page.margin: must be between %.1f and %.1f, got %.2f", ErrInvalidValue, MinMargin, MaxMargin, p.Page.Margin)
	}

	if err := validateFieldLength("pdf.footer.date", p.Footer.Date, MaxDateLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.footer.text", p.Footer.Text, MaxTextLength); err != nil {
		return err
	}
	if p.Footer.Position != "" {
		switch strings.ToLower(p.Footer.Position) {
		case "left", "center", "right":
		default:
			return fmt.Errorf("%w: pdf.footer.position %q (must be left, center, or right)", ErrInvalidValue, p.Footer.Position)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateRange(fieldName string, value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s: must be between %d and %d, got %d", ErrInvalidValue, fieldName, lo, hi, value)
	}
	return nil
}

// ApplyEnv applies environment overrides. lookup is os.LookupEnv in
// production. A set HOWAGENT_BASE_PATH wins over site.basePath even when
// empty, which means "serve from the domain root".
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBasePath); ok {
		c.Site.BasePath = v
	}
}

// NewsSource returns the configured feed location, defaulting to the
// feed file under the content directory.
func (c *Config) NewsSource() string {
	if c.News.Source != "" {
		return c.News.Source
	}
	return filepath.Join(c.Content.Dir, "data", "agent-news.json")
}

// LoadConfig loads configuration from a file path or config name, applying
// defaults for unset fields. If nameOrPath contains a path separator, it's
// treated as a file path. Otherwise, it's treated as a config name and
// searched in the current directory, then the user config directory.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath, err := ResolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolvePath returns the file LoadConfig reads for nameOrPath. Paths are
// returned as given; names are looked up in SearchPaths order.
func ResolvePath(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", ErrEmptyConfigName
	}
	if isFilePath(nameOrPath) {
		return nameOrPath, nil
	}
	return resolveConfigPath(nameOrPath)
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, userConfigSubdir, name+ext))
		}
	}
	return paths
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in SearchPaths order.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
