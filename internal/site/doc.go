// Package site builds the static export: per-language home, news archive and
// lifecycle document pages, the root language bootstrap, a 404 page, theme
// assets and a build manifest.
//
// Every page is rendered from the theme templates with root-relative URLs;
// the configured base path is applied to the finished HTML as the last step,
// so templates never need to know where the site is hosted.
//
// Output layout (trailing-slash URLs map to index.html):
//
//	index.html                   language bootstrap
//	404.html
//	{lang}/index.html            home
//	{lang}/news/index.html       news page 1
//	{lang}/news/page/N/index.html
//	{lang}/reactAgent/index.html lifecycle document
//	docs/reactAgent.{lang}.md    raw documents
//	data/agent-news.json         feed as built
//	assets/                      site.css, chroma.css, prefs.js, doc.js
//	manifest.json
package site
