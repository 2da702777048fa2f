// Package pipeline implements the Markdown-to-HTML stages used by the site.
//
// Two renderers live here:
//   - DocRenderer, a line-oriented transformer for the long-form lifecycle
//     document. It assigns collision-free heading ids, numbers sections and
//     extracts a table of contents whose ids match the HTML exactly.
//   - ProseConverter, a goldmark-based CommonMark/GFM renderer for the shorter
//     prose pages (home page copy), with chroma syntax highlighting.
//
// Supporting stages:
//   - Markdown normalization (line endings, byte order mark)
//   - Numbered table-of-contents navigation markup
//   - Base-path rewriting of root-relative links for sub-path hosting
//
// Page assembly and file output are handled by internal/site.
package pipeline
