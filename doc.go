// Package howagent renders the HowAgent.works lifecycle document and builds
// the bilingual static site around it.
//
// # Rendering
//
// A Renderer turns the long-form Markdown document into an HTML fragment and
// a table of contents. Heading ids are derived from the heading text and are
// unique within one render; the TOC and the HTML always agree on them.
//
//	r := howagent.NewRenderer(howagent.WithHighlighting(true))
//	doc, err := r.Render(ctx, markdown)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc.HTML)
//	for _, e := range doc.TOC {
//	    fmt.Println(e.Number, e.Title, "#"+e.ID)
//	}
//
// Rendering never fails on malformed input: unknown constructs degrade to
// paragraphs and an unclosed code fence is kept as text. Render only returns
// an error when the context is done.
//
// # Building the site
//
// BuildSite writes the full export: per-language home, news archive and
// lifecycle pages, the root language bootstrap, a 404 page, theme assets and
// a manifest with per-page digests.
//
//	report, err := howagent.BuildSite(ctx,
//	    howagent.WithConfigFile("howagent.yaml"),
//	    howagent.WithOutputDir("dist"),
//	)
//
// A lifecycle document that cannot be read produces an error page for that
// language and is listed in BuildReport.DocErrors; it does not fail the
// build. A broken news feed is replaced by the built-in fallback feed.
//
// # Hosting under a sub-path
//
// Pages are rendered with root-relative URLs. WithBasePath, the site.basePath
// setting or the HOWAGENT_BASE_PATH environment variable prefix every
// root-relative URL in the finished HTML, so the export can be served from
// e.g. https://example.com/howagent/.
package howagent
