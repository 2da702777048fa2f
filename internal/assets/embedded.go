package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css templates/*.html scripts/*.js
var theme embed.FS

// EmbeddedLoader loads the built-in theme.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a built-in CSS style.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

// LoadTemplate loads a built-in HTML template.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

// LoadScript loads a built-in script.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	return e.load(scriptKind, name)
}

func (e *EmbeddedLoader) load(k kind, name string) (string, error) {
	file, err := k.file(name)
	if err != nil {
		return "", err
	}
	content, err := theme.ReadFile(file)
	if err != nil {
		return "", k.missing(name)
	}
	return string(content), nil
}

// Names lists the built-in assets of one type ("styles", "templates" or
// "scripts"), sorted, without extensions.
func (e *EmbeddedLoader) Names(dir string) []string {
	entries, err := fs.ReadDir(theme, dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if i := strings.LastIndexByte(name, '.'); i > 0 {
			name = name[:i]
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
