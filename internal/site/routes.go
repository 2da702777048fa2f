package site

import (
	"path/filepath"
	"strconv"

	"github.com/yushaw/howagentworks/internal/i18n"
)

// Fixed URL paths of the export.
const (
	RootPath     = "/"
	NotFoundPath = "/404.html"
	ManifestPath = "/manifest.json"
	FeedPath     = "/data/agent-news.json"
	AssetsPath   = "/assets/"
)

// docName is the lifecycle document's base file name.
const docName = "reactAgent"

// HomePath returns the home page URL for lang.
func HomePath(lang i18n.Language) string {
	return "/" + string(lang) + "/"
}

// NewsPath returns the URL of news page n for lang. Page 1 lives at the
// archive root; later pages under page/N/.
func NewsPath(lang i18n.Language, n int) string {
	if n <= 1 {
		return "/" + string(lang) + "/news/"
	}
	return "/" + string(lang) + "/news/page/" + strconv.Itoa(n) + "/"
}

// DocPath returns the lifecycle document URL for lang.
func DocPath(lang i18n.Language) string {
	return "/" + string(lang) + "/" + docName + "/"
}

// RawDocPath returns the URL of the raw Markdown copied into the export.
func RawDocPath(lang i18n.Language) string {
	return "/docs/" + docName + "." + string(lang) + ".md"
}

// DocSource returns the lifecycle document's path under contentDir.
func DocSource(contentDir string, lang i18n.Language) string {
	return filepath.Join(contentDir, "docs", docName+"."+string(lang)+".md")
}

// HomeSource returns the home page prose path under contentDir.
func HomeSource(contentDir string, lang i18n.Language) string {
	return filepath.Join(contentDir, "home."+string(lang)+".md")
}
