// Package assets provides the site theme: CSS styles, HTML page templates
// and the small browser scripts. Assets can be loaded from embedded files or
// a custom theme directory.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in theme)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - custom directory layered over the built-in theme
//
// AssetResolver is the loader used by the site builder. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset is
// not found, so a theme directory can override a single template while
// keeping the rest of the built-in theme.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # site, print
//	├── templates/
//	│   └── {name}.html      # layout, home, news, doc, error, root, notfound, print
//	└── scripts/
//	    └── {name}.js        # prefs, doc
//
// Templates use html/template syntax. layout.html defines the shared
// partials (head, header, footer) the page templates call.
//
// # Names
//
// Loaders take bare names ("site", not "styles/site.css"). A name with a
// separator, a dot or a NUL byte fails with ErrInvalidAssetName, and a
// theme file whose symlink leads outside the theme directory fails with
// ErrPathTraversal.
package assets
