// Package fileutil holds the file and URL path helpers shared by the site
// builder, the preview server and the printer.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrBadExtension rejects temp file extensions that are empty or could
// change the directory the file lands in.
var ErrBadExtension = errors.New("invalid temp file extension")

// WriteTempFile writes content to a new file named howagent-*.ext in the
// system temp directory. cleanup removes the file.
func WriteTempFile(content, ext string) (name string, cleanup func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}
	name, err = writeTemp("", "howagent-*."+ext, []byte(content))
	if err != nil {
		return "", nil, err
	}
	return name, func() { _ = os.Remove(name) }, nil
}

// WriteFile replaces name with data, creating parent directories. Readers
// such as the preview server see either the old or the new file, never a
// partial one.
func WriteFile(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := writeTemp(dir, ".howagent-*", data)
	if err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming into %s: %w", name, err)
	}
	return nil
}

// writeTemp creates a file from pattern in dir and fills it. Nothing is
// left behind on failure.
func writeTemp(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	_, werr := f.Write(data)
	if err := errors.Join(werr, f.Close()); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return f.Name(), nil
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ---------------------------------------------------------------------------
// URL paths
// ---------------------------------------------------------------------------

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// JoinURLPath concatenates URL path parts and collapses runs of slashes.
// Unlike path.Join it keeps a trailing slash, which the trailing-slash page
// layout relies on.
func JoinURLPath(parts ...string) string {
	return repeatedSlashes.ReplaceAllString(strings.Join(parts, "/"), "/")
}

// CleanBasePath normalizes a hosting prefix to "/x/y" form.
// Returns "" when the site is served from the domain root.
func CleanBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	base = path.Clean("/" + base)
	if base == "/" {
		return ""
	}
	return base
}

// PageFile maps a URL path in the trailing-slash layout to a file path
// relative to the output root: "/en/news/" becomes "en/news/index.html",
// "/404.html" stays a file. Cleaning as a rooted path keeps ".." segments
// from climbing out of the root.
func PageFile(urlPath string) string {
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" {
		return "index.html"
	}
	if strings.HasSuffix(urlPath, "/") || path.Ext(rel) == "" {
		return filepath.FromSlash(rel + "/index.html")
	}
	return filepath.FromSlash(rel)
}
