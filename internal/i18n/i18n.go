// Package i18n holds the site's two languages and their copy tables.
package i18n

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a site language code.
type Language string

// Supported languages.
const (
	English Language = "en"
	Chinese Language = "zh"
)

// DefaultLanguage is used when nothing else decides.
const DefaultLanguage = English

// Languages lists the supported languages in build order.
var Languages = []Language{English, Chinese}

// ErrUnknownLanguage indicates a language code outside Languages.
var ErrUnknownLanguage = errors.New("unknown language")

// ParseLanguage validates a language code. Matching is case-insensitive.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Chinese:
		return Chinese, nil
	}
	return "", fmt.Errorf("%w: %q (valid: en, zh)", ErrUnknownLanguage, s)
}

// Other returns the language the toggle switches to.
func (l Language) Other() Language {
	if l == Chinese {
		return English
	}
	return Chinese
}

// HTMLLang returns the value for the <html lang> attribute.
func (l Language) HTMLLang() string {
	if l == Chinese {
		return "zh-CN"
	}
	return "en"
}

// DetectLanguage picks a language from browser language tags, such as an
// Accept-Language header or navigator.languages joined with commas.
// Any acceptable tag whose base language is Chinese selects Chinese; tags
// rejected with q=0 do not count. A list that does not parse means English.
func DetectLanguage(tags string) Language {
	parsed, weights, err := language.ParseAcceptLanguage(tags)
	if err != nil {
		return DefaultLanguage
	}
	for i, tag := range parsed {
		if weights[i] <= 0 {
			continue
		}
		if base, _ := tag.Base(); base == chineseBase {
			return Chinese
		}
	}
	return DefaultLanguage
}

var chineseBase, _ = language.Chinese.Base()

// LocalizedText carries one string per language.
type LocalizedText struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Pick returns the text for lang, falling back to English when the Chinese
// text is empty.
func (t LocalizedText) Pick(lang Language) string {
	if lang == Chinese && t.ZH != "" {
		return t.ZH
	}
	return t.EN
}
