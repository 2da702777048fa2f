package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yushaw/howagentworks/internal/assets"
	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/news"
)

// Notes:
// - Builds run against a temp content tree; the default news loader reads
//   content/data/agent-news.json, so no network is involved.
// - The clock is pinned so date labels are stable.

var buildNow = time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)

const lifecycleDoc = `# ReactAgent Lifecycle

## Table of Contents

- [Overview](#overview)

## Overview

The agent loops over **think**, act and observe.

### Step

` + "```go\nfunc main() {}\n```\n"

const homeProse = `---
title: Welcome
description: Agents, explained.
---

Start with the **lifecycle** guide.
`

func feedJSON(n int) string {
	items := make([]string, 0, n)
	for i := range n {
		items = append(items, fmt.Sprintf(`{
      "id": "item-%02d",
      "title": {"en": "Item %d", "zh": "条目 %d"},
      "summary": {"en": "s", "zh": "s"},
      "source": {"name": "Src", "url": "https://example.com/%d"},
      "publishedAt": "2025-01-%02dT00:00:00Z",
      "tags": ["t"]
    }`, i, i, i, i, i%28+1))
	}
	return `{"schemaVersion": "2025-02-01", "lastUpdated": "2025-02-01T10:00:00Z", "items": [` +
		strings.Join(items, ",") + `]}`
}

// writeContent creates a content tree and returns its directory.
func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "content")
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	return dir
}

func defaultContent() map[string]string {
	return map[string]string{
		"docs/reactAgent.en.md": lifecycleDoc,
		"docs/reactAgent.zh.md": "# ReactAgent 生命周期\n\n## 概览\n\n正文。\n",
		"home.en.md":            homeProse,
		"data/agent-news.json":  feedJSON(2),
	}
}

func newTestBuilder(t *testing.T, contentDir string, mutate func(*config.Config)) *Builder {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Content.Dir = contentDir
	if mutate != nil {
		mutate(cfg)
	}
	b, err := NewBuilder(cfg, WithNow(func() time.Time { return buildNow }))
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func readOutput(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// TestNewBuilder - Configuration validation
// ---------------------------------------------------------------------------

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		t.Parallel()
		b, err := NewBuilder(nil)
		if err != nil {
			t.Fatalf("NewBuilder(nil) error = %v", err)
		}
		if b.Config().Output.Dir != config.DefaultOutputDir {
			t.Errorf("Output.Dir = %q", b.Config().Output.Dir)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.News.PageSize = -1
		if _, err := NewBuilder(cfg); !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("NewBuilder() error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing theme directory", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Assets.BasePath = filepath.Join(t.TempDir(), "nope")
		if _, err := NewBuilder(cfg); err == nil {
			t.Error("NewBuilder() error = nil, want theme directory error")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuild - Output layout and page content
// ---------------------------------------------------------------------------

func TestBuild(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, defaultContent()), nil)

	report, err := b.BuildTo(context.Background(), out)
	if err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}
	if report.NewsError != nil {
		t.Errorf("NewsError = %v, want nil", report.NewsError)
	}
	if len(report.DocErrors) != 0 {
		t.Errorf("DocErrors = %v, want none", report.DocErrors)
	}

	for _, rel := range []string{
		"index.html",
		"404.html",
		"en/index.html",
		"zh/index.html",
		"en/news/index.html",
		"zh/news/index.html",
		"en/reactAgent/index.html",
		"zh/reactAgent/index.html",
		"docs/reactAgent.en.md",
		"docs/reactAgent.zh.md",
		"data/agent-news.json",
		"assets/site.css",
		"assets/chroma.css",
		"assets/prefs.js",
		"assets/doc.js",
		"manifest.json",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	doc := readOutput(t, out, "en/reactAgent/index.html")
	for _, want := range []string{
		`<h2 id="overview">`,
		`href="#overview"`,
		`<strong>think</strong>`,
		`href="/docs/reactAgent.en.md"`,
		`<html lang="en">`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("doc page missing %q", want)
		}
	}
	if strings.Contains(doc, "Table of Contents</h2>") {
		t.Error("hand-written TOC heading should be suppressed")
	}

	home := readOutput(t, out, "en/index.html")
	if !strings.Contains(home, "<title>Welcome · HowAgent.works</title>") {
		t.Error("home page should take its title from front matter")
	}
	if !strings.Contains(home, `content="Agents, explained."`) {
		t.Error("home page should carry the front matter description")
	}
	if !strings.Contains(home, "<strong>lifecycle</strong>") {
		t.Error("home prose should be rendered")
	}

	zhHome := readOutput(t, out, "zh/index.html")
	if !strings.Contains(zhHome, `<html lang="zh-CN">`) {
		t.Error("zh home should declare zh-CN")
	}
	if !strings.Contains(zhHome, `hreflang="en" href="/en/"`) {
		t.Error("zh home should link its English alternate")
	}

	root := readOutput(t, out, "index.html")
	if !strings.Contains(root, "howagentRedirect()") {
		t.Error("root page should run the language bootstrap")
	}
}

func TestBuild_MissingDocument(t *testing.T) {
	t.Parallel()

	files := defaultContent()
	delete(files, "docs/reactAgent.zh.md")
	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, files), nil)

	report, err := b.BuildTo(context.Background(), out)
	if err != nil {
		t.Fatalf("BuildTo() error = %v, want non-fatal document failure", err)
	}
	if len(report.DocErrors) != 1 || !errors.Is(report.DocErrors[0], ErrDocUnavailable) {
		t.Fatalf("DocErrors = %v, want one ErrDocUnavailable", report.DocErrors)
	}

	page := readOutput(t, out, "zh/reactAgent/index.html")
	if !strings.Contains(page, i18n.For(i18n.Chinese).DocError) {
		t.Error("zh document page should show the error message")
	}
	if !strings.Contains(page, `role="alert"`) {
		t.Error("error page should use the alert role")
	}
	if _, err := os.Stat(filepath.Join(out, "docs", "reactAgent.zh.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("raw zh document should not be written, stat error = %v", err)
	}

	// The other language is unaffected.
	if !strings.Contains(readOutput(t, out, "en/reactAgent/index.html"), `id="overview"`) {
		t.Error("en document should still render")
	}
}

func TestBuild_BasePath(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, defaultContent()), func(c *config.Config) {
		c.Site.BasePath = "howagent/"
		c.Site.BaseURL = "https://example.com"
	})

	if _, err := b.BuildTo(context.Background(), out); err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}

	home := readOutput(t, out, "en/index.html")
	for _, want := range []string{
		`href="/howagent/assets/site.css"`,
		`src="/howagent/assets/prefs.js"`,
		`href="/howagent/en/news/"`,
		`href="/howagent/zh/"`,
		`href="https://example.com/howagent/en/"`,
	} {
		if !strings.Contains(home, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if strings.Contains(home, `href="/assets/`) {
		t.Error("asset URLs should all carry the base path")
	}

	// In-page anchors are left alone.
	doc := readOutput(t, out, "en/reactAgent/index.html")
	if !strings.Contains(doc, `href="#overview"`) {
		t.Error("TOC anchors should not be rewritten")
	}
}

func TestBuild_NewsPagination(t *testing.T) {
	t.Parallel()

	files := defaultContent()
	files["data/agent-news.json"] = feedJSON(30)
	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, files), func(c *config.Config) {
		c.News.PageSize = 12
	})

	if _, err := b.BuildTo(context.Background(), out); err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}

	for _, rel := range []string{"en/news/index.html", "en/news/page/2/index.html", "en/news/page/3/index.html", "zh/news/page/3/index.html"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "en", "news", "page", "4")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("page 4 should not exist, stat error = %v", err)
	}

	last := readOutput(t, out, "en/news/page/3/index.html")
	if !strings.Contains(last, `href="/en/news/page/2/"`) {
		t.Error("last page should link to the previous page")
	}
	if got := strings.Count(last, `class="news-card"`); got != 6 {
		t.Errorf("last page cards = %d, want 6", got)
	}
}

func TestBuild_NewsFallback(t *testing.T) {
	t.Parallel()

	files := defaultContent()
	files["data/agent-news.json"] = `{"items": [`
	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, files), nil)

	report, err := b.BuildTo(context.Background(), out)
	if err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}
	if !errors.Is(report.NewsError, news.ErrDecode) {
		t.Errorf("NewsError = %v, want ErrDecode", report.NewsError)
	}

	var feed news.Feed
	if err := json.Unmarshal([]byte(readOutput(t, out, "data/agent-news.json")), &feed); err != nil {
		t.Fatalf("decoding written feed: %v", err)
	}
	want := news.Fallback()
	want.Items = news.Sorted(want.Items)
	if diff := cmp.Diff(want, &feed); diff != "" {
		t.Errorf("written feed mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_Manifest - Build id and page digests
// ---------------------------------------------------------------------------

func TestBuild_Manifest(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	b := newTestBuilder(t, writeContent(t, defaultContent()), func(c *config.Config) {
		c.Site.BasePath = "/docs-site"
	})

	report, err := b.BuildTo(context.Background(), out)
	if err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}

	var m Manifest
	if err := json.Unmarshal([]byte(readOutput(t, out, "manifest.json")), &m); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if m.BuildID == "" || m.BuildID != report.BuildID {
		t.Errorf("BuildID = %q, report = %q", m.BuildID, report.BuildID)
	}
	if m.GeneratedAt != "2025-02-03T12:00:00Z" {
		t.Errorf("GeneratedAt = %q", m.GeneratedAt)
	}
	if m.BasePath != "/docs-site" {
		t.Errorf("BasePath = %q", m.BasePath)
	}
	if diff := cmp.Diff(report.Pages, m.Pages); diff != "" {
		t.Errorf("manifest pages differ from report (-report +manifest):\n%s", diff)
	}
	if !sort.SliceIsSorted(m.Pages, func(i, j int) bool { return m.Pages[i].Path < m.Pages[j].Path }) {
		t.Error("manifest pages should be sorted by path")
	}

	for _, p := range m.Pages {
		rel := p.Path + "index.html"
		if p.Path == NotFoundPath {
			rel = p.Path
		}
		data := readOutput(t, out, strings.TrimPrefix(rel, "/"))
		sum := sha256.Sum256([]byte(data))
		if got := hex.EncodeToString(sum[:]); got != p.SHA256 {
			t.Errorf("%s sha256 = %s, manifest says %s", p.Path, got, p.SHA256)
		}
	}

	// Two builds never share an id.
	again, err := b.BuildTo(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("second BuildTo() error = %v", err)
	}
	if again.BuildID == report.BuildID {
		t.Error("build ids should be unique per build")
	}
}

func TestBuild_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBuilder(t, writeContent(t, defaultContent()), nil)
	_, err := b.BuildTo(ctx, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildTo() error = %v, want context.Canceled", err)
	}
}

func TestBuild_CleanGuard(t *testing.T) {
	t.Parallel()

	content := writeContent(t, defaultContent())
	b := newTestBuilder(t, content, func(c *config.Config) { c.Output.Clean = true })

	_, err := b.BuildTo(context.Background(), filepath.Dir(content))
	if !errors.Is(err, ErrUnsafeOutputDir) {
		t.Errorf("BuildTo(parent of content) error = %v, want ErrUnsafeOutputDir", err)
	}
	if _, statErr := os.Stat(filepath.Join(content, "docs", "reactAgent.en.md")); statErr != nil {
		t.Errorf("content should survive a refused clean: %v", statErr)
	}
}

func TestBuild_CleanRemovesStaleFiles(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	stale := filepath.Join(out, "stale.html")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b := newTestBuilder(t, writeContent(t, defaultContent()), func(c *config.Config) { c.Output.Clean = true })
	if _, err := b.BuildTo(context.Background(), out); err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file should be removed, stat error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestPrintPage - Standalone print document
// ---------------------------------------------------------------------------

func TestPrintPage(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, writeContent(t, defaultContent()), nil)

	html, err := b.PrintPage(i18n.English, "2025-02-03")
	if err != nil {
		t.Fatalf("PrintPage() error = %v", err)
	}
	for _, want := range []string{"<style>", `<h2 id="overview">`, "2025-02-03", `class="toc"`} {
		if !strings.Contains(html, want) {
			t.Errorf("print page missing %q", want)
		}
	}
	if strings.Contains(html, "/assets/") {
		t.Error("print page should inline its styles")
	}
}

func TestPrintPage_MissingDocument(t *testing.T) {
	t.Parallel()

	files := defaultContent()
	delete(files, "docs/reactAgent.zh.md")
	b := newTestBuilder(t, writeContent(t, files), nil)

	if _, err := b.PrintPage(i18n.Chinese, ""); !errors.Is(err, ErrDocUnavailable) {
		t.Errorf("PrintPage() error = %v, want ErrDocUnavailable", err)
	}
}

// styleOverride serves a custom site stylesheet on top of another loader.
type styleOverride struct {
	assets.AssetLoader
	css string
}

func (s styleOverride) LoadStyle(name string) (string, error) {
	if name == assets.SiteStyle {
		return s.css, nil
	}
	return s.AssetLoader.LoadStyle(name)
}

func TestBuild_CustomLoaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedJSON(4)))
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Content.Dir = writeContent(t, defaultContent())
	cfg.News.Source = srv.URL + "/agent-news.json"

	b, err := NewBuilder(cfg,
		WithNow(func() time.Time { return buildNow }),
		WithAssetLoader(styleOverride{AssetLoader: assets.NewEmbeddedLoader(), css: "body{color:teal}"}),
		WithNewsLoader(news.NewLoader(news.WithHTTPClient(srv.Client()))),
	)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	out := t.TempDir()
	report, err := b.BuildTo(context.Background(), out)
	if err != nil {
		t.Fatalf("BuildTo() error = %v", err)
	}
	if report.NewsError != nil {
		t.Fatalf("remote feed should load, got %v", report.NewsError)
	}

	if got := readOutput(t, out, "assets/site.css"); got != "body{color:teal}" {
		t.Errorf("site.css = %q, want the override", got)
	}
	if !strings.Contains(readOutput(t, out, "data/agent-news.json"), "item-03") {
		t.Error("exported feed should hold the remote items")
	}
}
