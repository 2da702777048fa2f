package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yushaw/howagentworks/internal/assets"
	"github.com/yushaw/howagentworks/internal/dateutil"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/news"
	"github.com/yushaw/howagentworks/internal/pipeline"
	"github.com/yushaw/howagentworks/internal/yamlutil"
)

// Nav keys marking the active header link.
const (
	navHome = "home"
	navNews = "news"
	navDoc  = "doc"
)

// pageData feeds every language page template. Exactly one of the section
// pointers is set.
type pageData struct {
	Lang        i18n.Language
	HTMLLang    string
	AltLang     i18n.Language
	AltPath     string
	Copy        i18n.Copy
	Title       string
	Description string
	Canonical   string
	BuildID     string
	Nav         string

	Home  *homeData
	News  *newsData
	Doc   *docData
	Error *errorData
}

type homeData struct {
	Prose       template.HTML
	Preview     []newsCard
	LastUpdated string
}

type newsCard struct {
	ID         string
	Title      string
	Summary    string
	SourceName string
	SourceURL  string
	Date       string
	DateTime   string
	Signal     string
	Tags       []string
}

type pageLink struct {
	Number  int
	Path    string
	Label   string
	Current bool
}

type newsData struct {
	Cards       []newsCard
	Archive     string
	LastUpdated string
	Showing     string
	PageCount   string
	Previous    string
	Next        string
	Links       []pageLink
}

type docData struct {
	HTML    template.HTML
	TOC     template.HTML
	RawPath string
}

type errorData struct {
	Detail string
}

type alternate struct {
	Lang  i18n.Language
	Path  string
	Label string
}

type rootData struct {
	Title      string
	Alternates []alternate
}

type printData struct {
	HTMLLang string
	Title    string
	Copy     i18n.Copy
	CSS      template.CSS
	Date     string
	TOC      template.HTML
	HTML     template.HTML
}

// homeMeta is the optional front matter of home.{lang}.md.
type homeMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// page is one rendered HTML page before base-path rewriting.
type page struct {
	path string
	lang i18n.Language
	body []byte
}

// languageResult collects one language's pages and its document failure.
type languageResult struct {
	pages  []page
	doc    []byte // raw lifecycle document, nil when unavailable
	docErr error
}

// basePage fills the fields shared by every page of lang at path.
func (r *run) basePage(lang i18n.Language, path, altPath, title, nav string) pageData {
	return pageData{
		Lang:      lang,
		HTMLLang:  lang.HTMLLang(),
		AltLang:   lang.Other(),
		AltPath:   altPath,
		Copy:      i18n.For(lang),
		Title:     r.title(title),
		Canonical: r.canonical(path),
		BuildID:   r.id,
		Nav:       nav,
	}
}

// title appends the site title to a page title.
func (r *run) title(t string) string {
	switch {
	case t == "":
		return r.cfg.Site.Title
	case r.cfg.Site.Title == "":
		return t
	}
	return t + " · " + r.cfg.Site.Title
}

// canonical returns the absolute URL of path, or "" without site.baseURL.
func (r *run) canonical(path string) string {
	if r.cfg.Site.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(r.cfg.Site.BaseURL, "/") + r.basePath + path
}

func (r *run) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, name, err)
	}
	return buf.Bytes(), nil
}

// languagePages renders every page of one language.
func (r *run) languagePages(ctx context.Context, lang i18n.Language) (*languageResult, error) {
	res := &languageResult{}

	home, err := r.homePage(ctx, lang)
	if err != nil {
		return nil, err
	}
	res.pages = append(res.pages, home)

	newsPages, err := r.newsPages(lang)
	if err != nil {
		return nil, err
	}
	res.pages = append(res.pages, newsPages...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, raw, docErr := r.docPage(lang)
	if doc.body == nil {
		return nil, docErr
	}
	res.pages = append(res.pages, doc)
	res.doc = raw
	res.docErr = docErr

	// One 404 page serves the whole site, in the default language.
	if lang == i18n.DefaultLanguage {
		data := r.basePage(lang, NotFoundPath, HomePath(lang.Other()), i18n.For(lang).NotFoundTitle, "")
		body, err := r.execute(assets.NotFoundTemplate, data)
		if err != nil {
			return nil, err
		}
		res.pages = append(res.pages, page{path: NotFoundPath, lang: lang, body: body})
	}

	return res, nil
}

func (r *run) homePage(ctx context.Context, lang i18n.Language) (page, error) {
	path := HomePath(lang)
	data := r.basePage(lang, path, HomePath(lang.Other()), "", navHome)
	c := data.Copy

	home := &homeData{
		Preview:     r.cards(news.Preview(r.feed.Items, r.cfg.News.PreviewCount), lang),
		LastUpdated: c.LastUpdated(dateutil.FormatLabel(r.feed.LastUpdated, lang, r.now)),
	}

	source := HomeSource(r.cfg.Content.Dir, lang)
	content, err := os.ReadFile(source) // #nosec G304 -- path from config
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Prose is optional; the hero copy stands alone.
	case err != nil:
		return page{}, fmt.Errorf("%w: %v", ErrContent, err)
	default:
		meta, body := yamlutil.SplitFrontMatter(string(content))
		if meta != nil {
			var m homeMeta
			if err := yamlutil.Unmarshal(meta, &m); err != nil {
				return page{}, fmt.Errorf("%w: %s front matter: %v", ErrContent, source, err)
			}
			if m.Title != "" {
				data.Title = r.title(m.Title)
			}
			data.Description = m.Description
		}
		prose, err := r.prose.ToHTML(ctx, body)
		if err != nil {
			return page{}, fmt.Errorf("%w: %s: %v", ErrContent, source, err)
		}
		home.Prose = template.HTML(prose) // #nosec G203 -- rendered from trusted content
	}

	data.Home = home
	body, err := r.execute(assets.HomeTemplate, data)
	if err != nil {
		return page{}, err
	}
	return page{path: path, lang: lang, body: body}, nil
}

func (r *run) newsPages(lang i18n.Language) ([]page, error) {
	c := i18n.For(lang)
	all := news.Pages(r.feed.Items, r.cfg.News.PageSize)
	lastUpdated := c.LastUpdated(dateutil.FormatLabel(r.feed.LastUpdated, lang, r.now))

	out := make([]page, 0, len(all))
	for _, p := range all {
		path := NewsPath(lang, p.Number)
		data := r.basePage(lang, path, NewsPath(lang.Other(), p.Number), c.NavNews, navNews)

		nd := &newsData{
			Cards:       r.cards(p.Items, lang),
			Archive:     c.ArchiveCount(p.Total),
			LastUpdated: lastUpdated,
			PageCount:   c.PageCount(p.TotalPages),
		}
		if p.First > 0 {
			nd.Showing = c.ShowingRange(p.First, p.Last)
		}
		if p.HasPrevious() {
			nd.Previous = NewsPath(lang, p.Number-1)
		}
		if p.HasNext() {
			nd.Next = NewsPath(lang, p.Number+1)
		}
		for n := 1; n <= p.TotalPages; n++ {
			nd.Links = append(nd.Links, pageLink{
				Number:  n,
				Path:    NewsPath(lang, n),
				Label:   c.GoToPage(n),
				Current: n == p.Number,
			})
		}
		data.News = nd

		body, err := r.execute(assets.NewsTemplate, data)
		if err != nil {
			return nil, err
		}
		out = append(out, page{path: path, lang: lang, body: body})
	}
	return out, nil
}

// docPage renders the lifecycle document, or the error page when the
// document cannot be read. A template failure returns a zero page.
func (r *run) docPage(lang i18n.Language) (page, []byte, error) {
	path := DocPath(lang)
	data := r.basePage(lang, path, DocPath(lang.Other()), i18n.For(lang).DocTitle, navDoc)

	source := DocSource(r.cfg.Content.Dir, lang)
	raw, readErr := os.ReadFile(source) // #nosec G304 -- path from config
	if readErr != nil {
		docErr := fmt.Errorf("%w: %s: %v", ErrDocUnavailable, lang, readErr)
		data.Error = &errorData{Detail: RawDocPath(lang)}
		body, err := r.execute(assets.ErrorTemplate, data)
		if err != nil {
			return page{}, nil, err
		}
		return page{path: path, lang: lang, body: body}, nil, docErr
	}

	rendered := r.renderer.Render(string(raw))
	data.Doc = &docData{
		HTML:    template.HTML(rendered.HTML),                                      // #nosec G203 -- renderer escapes text
		TOC:     template.HTML(pipeline.TOCNav(rendered.TOC, data.Copy.TOCTitle)), // #nosec G203 -- escaped by TOCNav
		RawPath: RawDocPath(lang),
	}
	body, err := r.execute(assets.DocTemplate, data)
	if err != nil {
		return page{}, nil, err
	}
	return page{path: path, lang: lang, body: body}, raw, nil
}

func (r *run) rootPage() (page, error) {
	data := rootData{Title: r.cfg.Site.Title}
	for _, lang := range i18n.Languages {
		data.Alternates = append(data.Alternates, alternate{
			Lang:  lang,
			Path:  HomePath(lang),
			Label: i18n.For(lang.Other()).LanguageToggleLabel,
		})
	}
	body, err := r.execute(assets.RootTemplate, data)
	if err != nil {
		return page{}, err
	}
	return page{path: RootPath, body: body}, nil
}

// cards converts feed items into template cards for lang.
func (r *run) cards(items []news.Item, lang i18n.Language) []newsCard {
	out := make([]newsCard, 0, len(items))
	for _, it := range items {
		out = append(out, newsCard{
			ID:         it.ID,
			Title:      it.Title.Pick(lang),
			Summary:    it.Summary.Pick(lang),
			SourceName: it.Source.Name,
			SourceURL:  it.Source.URL,
			Date:       dateutil.FormatLabel(it.PublishedAt, lang, r.now),
			DateTime:   it.PublishedAt,
			Signal:     it.Signal,
			Tags:       it.Tags,
		})
	}
	return out
}
