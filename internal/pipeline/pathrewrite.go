package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yushaw/howagentworks/internal/fileutil"
)

// urlAttr names the one URL-carrying attribute rewritten per element.
var urlAttr = map[atom.Atom]string{
	atom.A:      "href",
	atom.Link:   "href",
	atom.Img:    "src",
	atom.Script: "src",
	atom.Source: "src",
}

// rewriteFunc maps a root-relative URL to its replacement, or reports false
// to keep it.
type rewriteFunc func(rootRel string) (string, bool)

// RewriteBasePath prefixes root-relative URLs with basePath so the site can
// be served from a sub-path. URLs already under basePath keep their value,
// and an empty or "/" basePath leaves htmlContent as is.
func RewriteBasePath(htmlContent, basePath string) (string, error) {
	basePath = fileutil.CleanBasePath(basePath)
	if basePath == "" {
		return htmlContent, nil
	}
	return rewriteRootRelative(htmlContent, func(u string) (string, bool) {
		if u == basePath || strings.HasPrefix(u, basePath+"/") {
			return "", false
		}
		return fileutil.JoinURLPath(basePath, u), true
	})
}

// RewriteForFile points root-relative URLs at file:// URLs under rootDir,
// for a page opened from disk. Directory URLs get index.html appended, and
// a URL that would leave rootDir is kept.
func RewriteForFile(htmlContent, rootDir string) (string, error) {
	if rootDir == "" {
		return htmlContent, nil
	}
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return "", err
	}
	return rewriteRootRelative(htmlContent, func(u string) (string, bool) {
		u, _, _ = strings.Cut(u, "#")
		u, _, _ = strings.Cut(u, "?")
		target := filepath.Join(root, filepath.FromSlash(u))
		if strings.HasSuffix(u, "/") {
			target = filepath.Join(target, "index.html")
		}
		if rel, err := filepath.Rel(root, target); err != nil || !filepath.IsLocal(rel) {
			return "", false
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String(), true
	})
}

// rewriteRootRelative applies fn to every URL attribute starting with a
// single "/". Full documents round-trip whole; fragments are parsed in a
// <body> context and rendered without a wrapper.
func rewriteRootRelative(content string, fn rewriteFunc) (string, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	full := strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")

	var nodes []*html.Node
	if full {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return "", err
		}
		nodes = []*html.Node{doc}
	} else {
		body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
		var err error
		if nodes, err = html.ParseFragment(strings.NewReader(content), body); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for _, n := range nodes {
		walk(n, fn)
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func walk(n *html.Node, fn rewriteFunc) {
	if key, ok := urlAttr[n.DataAtom]; ok && n.Type == html.ElementNode {
		for i, a := range n.Attr {
			if a.Key != key || !strings.HasPrefix(a.Val, "/") || strings.HasPrefix(a.Val, "//") {
				continue
			}
			if v, ok := fn(a.Val); ok {
				n.Attr[i].Val = v
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
