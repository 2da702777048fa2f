package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	howagent "github.com/yushaw/howagentworks"
	"github.com/yushaw/howagentworks/internal/fileutil"
)

// stdinArg names standard input as the source file.
const stdinArg = "-"

// runRender prints the HTML of one markdown document.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: render takes exactly one FILE (or - for stdin)", ErrUsage)
	}

	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}

	markers := cfg.Render.TOCMarkers
	if len(f.markers) > 0 {
		markers = f.markers
	}
	highlight := cfg.Render.Highlight
	if f.set["highlight"] {
		highlight = f.highlight
	}

	var opts []howagent.RenderOption
	if len(markers) > 0 {
		opts = append(opts, howagent.WithTOCMarkers(markers...))
	}
	opts = append(opts, howagent.WithHighlighting(highlight))

	md, err := readSource(positional[0], env.Stdin)
	if err != nil {
		return err
	}

	doc, err := howagent.NewRenderer(opts...).Render(ctx, md)
	if err != nil {
		return err
	}

	if f.output == "" {
		_, err = io.WriteString(env.Stdout, doc.HTML)
		return err
	}
	if err := fileutil.WriteFile(f.output, []byte(doc.HTML)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s (%d headings)\n", f.output, len(doc.TOC))
	}
	return nil
}

// runTOC prints the table of contents of one markdown document.
func runTOC(_ context.Context, args []string, env *Environment) error {
	f, positional, err := parseTOCFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: toc takes exactly one FILE (or - for stdin)", ErrUsage)
	}

	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	markers := cfg.Render.TOCMarkers
	if len(f.markers) > 0 {
		markers = f.markers
	}
	var opts []howagent.RenderOption
	if len(markers) > 0 {
		opts = append(opts, howagent.WithTOCMarkers(markers...))
	}

	md, err := readSource(positional[0], env.Stdin)
	if err != nil {
		return err
	}
	entries := howagent.NewRenderer(opts...).ExtractTOC(md)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return writeTOCText(env.Stdout, entries)
}

// writeTOCText prints one heading per line, indented by level.
func writeTOCText(w io.Writer, entries []howagent.TocEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.Repeat("  ", e.Level-1))
		if e.Number != "" {
			b.WriteString(e.Number)
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s  #%s\n", e.Title, e.ID)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// readSource reads a markdown file, or stdin for "-".
func readSource(name string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if name == stdinArg {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name) // #nosec G304 -- path is user-provided
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}
