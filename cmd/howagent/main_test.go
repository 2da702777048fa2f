package main

// Notes:
// - runMain: we drive every command through the dispatcher with an injected
//   Environment and assert exit codes and output. The pdf command uses a fake
//   printer; real Chrome output is covered by the printer integration tests.
// - serve: only its argument validation is tested here; the server itself
//   is tested in internal/preview.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	howagent "github.com/yushaw/howagentworks"
	"github.com/yushaw/howagentworks/internal/printer"
)

const lifecycleDoc = "# ReactAgent Lifecycle\n" +
	"\n" +
	"## Table of Contents\n" +
	"- [Overview](#overview)\n" +
	"\n" +
	"## Overview\n" +
	"The agent **loops**.\n" +
	"\n" +
	"### Setup\n" +
	"\n" +
	"## Loop\n"

var fixedNow = time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// fakePrinter records what the pdf command asks it to print.
type fakePrinter struct {
	mu      sync.Mutex
	html    string
	opts    *printer.Options
	timeout time.Duration
	rootDir string
	err     error
	closed  bool
}

func (p *fakePrinter) ToPDF(_ context.Context, html string, opts *printer.Options) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html, p.opts = html, opts
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (p *fakePrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type testEnv struct {
	*Environment
	stdout, stderr *bytes.Buffer
	printer        *fakePrinter
}

func newTestEnv(vars map[string]string) *testEnv {
	te := &testEnv{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		printer: &fakePrinter{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		LookupEnv: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
		NewPrinter: func(timeout time.Duration, rootDir string, _ *slog.Logger) pdfPrinter {
			te.printer.timeout, te.printer.rootDir = timeout, rootDir
			return te.printer
		},
	}
	return te
}

func (te *testEnv) run(args ...string) int {
	return runMain(context.Background(), append([]string{"howagent"}, args...), te.Environment)
}

// setupTestDir creates a temp directory with the given file structure.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return dir
}

func siteContent(t *testing.T, withZh bool) string {
	t.Helper()
	files := map[string]string{
		"content/docs/reactAgent.en.md": lifecycleDoc,
		"content/data/agent-news.json":  `{"schemaVersion": "1", "lastUpdated": "2025-02-01T10:00:00Z", "items": []}`,
	}
	if withZh {
		files["content/docs/reactAgent.zh.md"] = "# ReactAgent 生命周期\n\n## 概览\n"
	}
	return filepath.Join(setupTestDir(t, files), "content")
}

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Commands, help and version
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", nil, ExitUsage, "", "Usage: howagent"},
		{"unknown command", []string{"convert"}, ExitUsage, "", "Unknown command: convert"},
		{"version", []string{"version"}, ExitSuccess, "howagent dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help for command", []string{"help", "pdf"}, ExitSuccess, "--page-size", ""},
		{"help for unknown command", []string{"help", "nope"}, ExitUsage, "", "unknown command"},
		{"command help flag", []string{"build", "--help"}, ExitSuccess, "", "Usage: howagent build"},
		{"unknown flag", []string{"build", "--nope"}, ExitUsage, "", "unknown flag"},
		{"build with argument", []string{"build", "extra"}, ExitUsage, "", "takes no arguments"},
		{"serve with argument", []string{"serve", "extra"}, ExitUsage, "", "takes no arguments"},
		{"serve bad debounce", []string{"serve", "--debounce", "1h"}, ExitUsage, "", "--debounce"},
		{"render without file", []string{"render"}, ExitUsage, "", "exactly one FILE"},
		{"toc with two files", []string{"toc", "a.md", "b.md"}, ExitUsage, "", "exactly one FILE"},
		{"pdf unknown language", []string{"pdf", "--lang", "fr"}, ExitUsage, "", "unknown language"},
		{"pdf zero timeout", []string{"pdf", "--timeout", "0s"}, ExitUsage, "", "--timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(nil)
			if code := te.run(tt.args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", te.stdout, tt.wantStdout)
			}
			if !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender / TestTOC - Single document commands
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.md": lifecycleDoc})
	te := newTestEnv(nil)

	if code := te.run("render", filepath.Join(dir, "doc.md")); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	out := te.stdout.String()
	for _, want := range []string{`<h2 id="overview">`, `<h3 id="setup">`, `<strong>loops</strong>`} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
	if strings.Contains(out, "Table of Contents") {
		t.Error("hand-written TOC section should be suppressed")
	}
}

func TestRender_Stdin(t *testing.T) {
	t.Parallel()

	te := newTestEnv(nil)
	te.Stdin = strings.NewReader("## From Stdin\n")

	if code := te.run("render", "-"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if !strings.Contains(te.stdout.String(), `id="from-stdin"`) {
		t.Errorf("stdout = %q", te.stdout)
	}
}

func TestRender_OutputFile(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.md": lifecycleDoc})
	out := filepath.Join(dir, "html", "doc.html")
	te := newTestEnv(nil)

	if code := te.run("render", filepath.Join(dir, "doc.md"), "-o", out, "--highlight"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), `id="loop"`) {
		t.Error("output file should hold the rendered HTML")
	}
	if !strings.Contains(te.stdout.String(), "Wrote "+out) {
		t.Errorf("stdout = %q", te.stdout)
	}
}

func TestRender_MissingFile(t *testing.T) {
	t.Parallel()

	te := newTestEnv(nil)
	code := te.run("render", filepath.Join(t.TempDir(), "missing.md"))
	if code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
}

func TestTOC_JSON(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.md": lifecycleDoc})
	te := newTestEnv(nil)

	if code := te.run("toc", filepath.Join(dir, "doc.md"), "--json"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	var got []howagent.TocEntry
	if err := json.Unmarshal(te.stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, te.stdout)
	}
	want := []howagent.TocEntry{
		{ID: "reactagent-lifecycle", Title: "ReactAgent Lifecycle", Level: 1},
		{ID: "overview", Title: "Overview", Level: 2, Number: "1"},
		{ID: "setup", Title: "Setup", Level: 3, Number: "1.1"},
		{ID: "loop", Title: "Loop", Level: 2, Number: "2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TOC mismatch (-want +got):\n%s", diff)
	}
}

func TestTOC_Text(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.md": "## Contents\n- x\n\n## Intro\n\n### Goal\n"})
	te := newTestEnv(nil)

	if code := te.run("toc", filepath.Join(dir, "doc.md"), "--toc-marker", "Contents"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	want := "  1 Intro  #intro\n    1.1 Goal  #goal\n"
	if diff := cmp.Diff(want, te.stdout.String()); diff != "" {
		t.Errorf("toc text mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestBuild - Site export
// ---------------------------------------------------------------------------

func TestBuild(t *testing.T) {
	t.Parallel()

	content := siteContent(t, true)
	out := filepath.Join(t.TempDir(), "dist")
	te := newTestEnv(map[string]string{"HOWAGENT_BASE_PATH": "/from-env"})

	code := te.run("build", "--content", content, "--out", out, "--base-path", "/howagent")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if !strings.HasPrefix(te.stdout.String(), "Built ") {
		t.Errorf("stdout = %q, want a build summary", te.stdout)
	}

	page, err := os.ReadFile(filepath.Join(out, "en", "reactAgent", "index.html"))
	if err != nil {
		t.Fatalf("reading doc page: %v", err)
	}
	if !strings.Contains(string(page), `href="/howagent/assets/site.css"`) {
		t.Error("--base-path should win over HOWAGENT_BASE_PATH")
	}
	if _, err := os.Stat(filepath.Join(out, "manifest.json")); err != nil {
		t.Errorf("manifest.json missing: %v", err)
	}
}

func TestBuild_EnvBasePath(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "dist")
	te := newTestEnv(map[string]string{"HOWAGENT_BASE_PATH": "/from-env"})

	if code := te.run("build", "-q", "--content", siteContent(t, true), "--out", out); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if te.stdout.Len() != 0 {
		t.Errorf("--quiet should silence stdout, got %q", te.stdout)
	}
	page, err := os.ReadFile(filepath.Join(out, "en", "index.html"))
	if err != nil {
		t.Fatalf("reading home page: %v", err)
	}
	if !strings.Contains(string(page), `href="/from-env/assets/site.css"`) {
		t.Error("HOWAGENT_BASE_PATH should set the base path")
	}
}

func TestBuild_MissingDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strict   bool
		wantCode int
	}{
		{"lenient", false, ExitSuccess},
		{"strict", true, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := []string{"build", "--content", siteContent(t, false), "--out", filepath.Join(t.TempDir(), "dist")}
			if tt.strict {
				args = append(args, "--strict")
			}
			te := newTestEnv(nil)
			if code := te.run(args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stderr.String(), "hint: expected docs/reactAgent") {
				t.Errorf("stderr should carry the content hint, got %q", te.stderr)
			}
		})
	}
}

func TestBuild_ConfigFile(t *testing.T) {
	t.Parallel()

	content := siteContent(t, true)
	dir := setupTestDir(t, map[string]string{
		"site.yaml": "site:\n  title: Test Site\noutput:\n  dir: " + filepath.ToSlash(filepath.Join(t.TempDir(), "dist")) + "\n",
		"bad.yaml":  "news:\n  pageSize: 1000\n",
	})

	tests := []struct {
		name     string
		config   string
		wantCode int
		wantErr  string
	}{
		{"valid config", filepath.Join(dir, "site.yaml"), ExitSuccess, ""},
		{"invalid value", filepath.Join(dir, "bad.yaml"), ExitUsage, "news.pageSize"},
		{"missing config", filepath.Join(dir, "missing.yaml"), ExitUsage, "hint: use --config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(nil)
			code := te.run("build", "--config", tt.config, "--content", content)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPDF - Print export through the injected printer
// ---------------------------------------------------------------------------

func TestPDF(t *testing.T) {
	t.Parallel()

	content := siteContent(t, true)
	out := filepath.Join(t.TempDir(), "pdf", "lifecycle.pdf")
	te := newTestEnv(nil)

	code := te.run("pdf", "--content", content, "-o", out, "--page-size", "Letter", "--date", "auto:iso", "--timeout", "5s")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output = %q, want the printer bytes", data)
	}

	p := te.printer
	if !p.closed {
		t.Error("printer should be closed")
	}
	if p.timeout != 5*time.Second || p.rootDir != content {
		t.Errorf("printer created with timeout=%s rootDir=%q", p.timeout, p.rootDir)
	}
	if !strings.Contains(p.html, `<h2 id="overview">`) {
		t.Error("printed HTML should hold the rendered document")
	}
	if p.opts.Size != "letter" || p.opts.Footer == nil || p.opts.Footer.Date != "2025-02-03" {
		t.Errorf("options = %+v footer = %+v", p.opts, p.opts.Footer)
	}
}

func TestPDF_NoFooterAndDefaultName(t *testing.T) {
	dir := setupTestDir(t, nil)
	content := siteContent(t, true)
	t.Chdir(dir)

	te := newTestEnv(nil)
	if code := te.run("pdf", "--content", content, "--lang", "zh", "--no-footer"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "reactAgent.zh.pdf")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
	if te.printer.opts.Footer != nil {
		t.Error("--no-footer should drop the footer")
	}
}

func TestPDF_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		withZh     bool
		printerErr error
		args       []string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "browser unavailable",
			withZh:     true,
			printerErr: errors.Join(printer.ErrBrowserConnect, errors.New("no chrome")),
			wantCode:   ExitBrowser,
			wantStderr: "failed to connect to browser",
		},
		{
			name:       "timeout",
			withZh:     true,
			printerErr: context.DeadlineExceeded,
			wantCode:   ExitGeneral,
			wantStderr: "hint: for long documents, use --timeout flag",
		},
		{
			name:       "missing document",
			withZh:     false,
			args:       []string{"--lang", "zh"},
			wantCode:   ExitIO,
			wantStderr: "hint: expected docs/reactAgent",
		},
		{
			name:       "invalid page size",
			withZh:     true,
			args:       []string{"--page-size", "a0"},
			wantCode:   ExitUsage,
			wantStderr: "pdf.page.size",
		},
		{
			name:       "invalid date format",
			withZh:     true,
			args:       []string{"--date", "auto:[YYYY"},
			wantCode:   ExitUsage,
			wantStderr: "invalid date format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(nil)
			te.printer.err = tt.printerErr
			args := append([]string{"pdf", "--content", siteContent(t, tt.withZh), "-o", filepath.Join(t.TempDir(), "out.pdf")}, tt.args...)

			if code := te.run(args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - Pre-parse verbose detection
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"build", "-v"}, true},
		{[]string{"serve", "--verbose"}, true},
		{[]string{"build"}, false},
		{[]string{"render", "--", "-v"}, false},
	}
	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
