package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InjectStyle adds css to htmlContent as a <style> block, placed before
// </head>, else right after the <body> tag, else in front of everything.
// The printer uses it to add its @page rule to a finished page.
func InjectStyle(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}
	block := "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>"
	at := styleOffset(htmlContent)
	return htmlContent[:at] + block + htmlContent[at:]
}

// styleOffset walks the tokens of doc and returns the byte offset where a
// style block belongs.
func styleOffset(doc string) int {
	z := html.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0
		}
		n := len(z.Raw())
		name, _ := z.TagName()
		switch a := atom.Lookup(name); {
		case tt == html.EndTagToken && a == atom.Head:
			return offset
		case tt == html.StartTagToken && a == atom.Body:
			return offset + n
		}
		offset += n
	}
}
