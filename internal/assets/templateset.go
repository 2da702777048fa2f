package assets

import (
	"fmt"
	"html/template"
)

// Page template names. Each is loaded from templates/{name}.html.
const (
	LayoutTemplate   = "layout"
	HomeTemplate     = "home"
	NewsTemplate     = "news"
	DocTemplate      = "doc"
	ErrorTemplate    = "error"
	RootTemplate     = "root"
	NotFoundTemplate = "notfound"
	PrintTemplate    = "print"
)

// PageTemplates lists every template a theme must provide, layout first so
// the page templates can call its partials.
var PageTemplates = []string{
	LayoutTemplate,
	HomeTemplate,
	NewsTemplate,
	DocTemplate,
	ErrorTemplate,
	RootTemplate,
	NotFoundTemplate,
	PrintTemplate,
}

// ParseTemplates loads and parses every page template into one set. Each
// page is reachable by name through ExecuteTemplate. funcs may be nil.
// Returns ErrIncompleteTemplateSet if a template is missing or invalid.
func ParseTemplates(loader AssetLoader, funcs template.FuncMap) (*template.Template, error) {
	set := template.New("theme")
	if funcs != nil {
		set = set.Funcs(funcs)
	}

	for _, name := range PageTemplates {
		content, err := loader.LoadTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIncompleteTemplateSet, err)
		}
		if _, err := set.New(name).Parse(content); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrIncompleteTemplateSet, name, err)
		}
	}

	return set, nil
}
