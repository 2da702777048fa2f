package pipeline

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// CodeHighlighter turns source lines into highlighted HTML, one string per
// input line. Returning a slice of a different length disables highlighting
// for that block.
type CodeHighlighter interface {
	HighlightLines(lang string, lines []string) []string
}

// Compile-time interface check.
var _ CodeHighlighter = (*ChromaHighlighter)(nil)

// ChromaHighlighter highlights with chroma lexers and emits CSS class names,
// so the output pairs with the stylesheet from ChromaCSS.
type ChromaHighlighter struct{}

// NewChromaHighlighter creates a class-based chroma highlighter.
func NewChromaHighlighter() *ChromaHighlighter {
	return &ChromaHighlighter{}
}

// HighlightLines tokenises lines as one source and splits the result back
// into lines. Unknown languages use the plain-text fallback lexer.
func (h *ChromaHighlighter) HighlightLines(lang string, lines []string) []string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return nil
	}

	tokenLines := chroma.SplitTokensIntoLines(iterator.Tokens())
	out := make([]string, 0, len(tokenLines))
	for _, tokens := range tokenLines {
		var b strings.Builder
		for _, tok := range tokens {
			value := strings.TrimSuffix(tok.Value, "\n")
			if value == "" {
				continue
			}
			class := tokenClass(tok.Type)
			if class == "" {
				b.WriteString(escapeText(value))
				continue
			}
			b.WriteString(`<span class="` + class + `">` + escapeText(value) + `</span>`)
		}
		out = append(out, b.String())
	}
	// Lexers that force a trailing newline leave an empty last line.
	for len(out) > len(lines) && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// tokenClass maps a token type to its short CSS class, walking up to the
// sub-category and category when the exact type has none.
func tokenClass(tt chroma.TokenType) string {
	if class, ok := chroma.StandardTypes[tt]; ok {
		return class
	}
	if class, ok := chroma.StandardTypes[tt.SubCategory()]; ok {
		return class
	}
	return chroma.StandardTypes[tt.Category()]
}

// DefaultChromaStyle is used when no style is configured.
const DefaultChromaStyle = "github"

// ChromaCSS returns the class-based stylesheet for a chroma style.
// Unknown style names fall back to chroma's default style.
func ChromaCSS(styleName string) (string, error) {
	style := styles.Get(styleName)

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, style); err != nil {
		return "", fmt.Errorf("writing chroma CSS for style %q: %w", styleName, err)
	}
	return b.String(), nil
}
