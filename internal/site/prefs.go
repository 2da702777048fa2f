package site

import (
	"strings"

	"github.com/yushaw/howagentworks/internal/i18n"
)

// Theme is the color scheme preference.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Storage keys shared with the browser script. The language key doubles as
// the cookie name the preview server reads.
const (
	ThemeStorageKey    = "howagent.theme"
	LanguageStorageKey = "howagent.language"
)

// Preferences is the resolved theme and language for one visitor.
type Preferences struct {
	Theme    Theme
	Language i18n.Language
}

// SystemHints are the fallbacks used when nothing is stored.
type SystemHints struct {
	PrefersDark bool
	Languages   string // Accept-Language or navigator.languages joined by commas
}

// ResolvePreferences applies the stored-value-wins rule: a valid stored
// value is used as is, anything else defers to the system hint.
func ResolvePreferences(storedTheme, storedLanguage string, hints SystemHints) Preferences {
	p := Preferences{Theme: ThemeLight, Language: i18n.DetectLanguage(hints.Languages)}

	switch Theme(strings.TrimSpace(storedTheme)) {
	case ThemeLight:
		p.Theme = ThemeLight
	case ThemeDark:
		p.Theme = ThemeDark
	default:
		if hints.PrefersDark {
			p.Theme = ThemeDark
		}
	}

	if lang, err := i18n.ParseLanguage(storedLanguage); err == nil {
		p.Language = lang
	}
	return p
}
