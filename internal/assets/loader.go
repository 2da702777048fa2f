package assets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrScriptNotFound   = errors.New("script not found")

	// ErrIncompleteTemplateSet is returned when a page template is missing
	// or does not parse.
	ErrIncompleteTemplateSet = errors.New("template set missing required template")

	// ErrInvalidAssetName rejects names that are empty or carry a separator,
	// a dot or a NUL byte.
	ErrInvalidAssetName = errors.New("invalid asset name")

	ErrInvalidBasePath = errors.New("invalid theme directory")
	ErrAssetRead       = errors.New("failed to read asset")

	// ErrPathTraversal is returned when a theme file resolves outside the
	// theme directory, usually through a symlink.
	ErrPathTraversal = errors.New("asset escapes theme directory")
)

// AssetLoader loads theme assets by bare name, without directory or
// extension. Implementations return the kind's not-found sentinel for a
// missing asset so that callers can layer loaders.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
	LoadScript(name string) (string, error)
}

// kind is one asset type: styles/*.css, templates/*.html or scripts/*.js.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
	scriptKind   = kind{dir: "scripts", ext: ".js", notFound: ErrScriptNotFound}
)

// file maps a bare name to its slash-separated path inside a theme.
func (k kind) file(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty %s name", ErrInvalidAssetName, k.dir)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return k.dir + "/" + name + k.ext, nil
}

func (k kind) missing(name string) error {
	return fmt.Errorf("%w: %q", k.notFound, name)
}

// IsNotFound reports whether err means the asset does not exist, as opposed
// to a bad name or an unreadable file.
func IsNotFound(err error) bool {
	for _, k := range []kind{styleKind, templateKind, scriptKind} {
		if errors.Is(err, k.notFound) {
			return true
		}
	}
	return false
}
