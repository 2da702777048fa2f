package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Export the static site")
	fmt.Fprintln(w, "  serve      Preview the site with live rebuilds")
	fmt.Fprintln(w, "  render     Print the HTML of a markdown document")
	fmt.Fprintln(w, "  toc        Print the table of contents of a markdown document")
	fmt.Fprintln(w, "  pdf        Print the lifecycle document to PDF")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'howagent help <command>' for details on a specific command.")
}

// printCommonFlags prints flags accepted by every command.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: howagent.yaml if present)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printSiteFlags prints the content and hosting flags.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "      --content <dir>       Content directory (docs/, data/, home.*.md)")
	fmt.Fprintln(w, "      --base-path <path>    URL prefix, e.g. /howagent (\"\" = domain root)")
	fmt.Fprintln(w, "                            Overrides HOWAGENT_BASE_PATH and site.basePath")
	fmt.Fprintln(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export every page of the site as static HTML.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --out <dir>           Output directory (default: dist)")
	fmt.Fprintln(w, "      --clean               Remove the output directory first")
	fmt.Fprintln(w, "      --strict              Exit non-zero when content was unavailable")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the site locally and rebuild when content, theme or config change.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: 127.0.0.1:4173)")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before rebuilding (e.g., 300ms)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent render <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a markdown document to HTML. Use - to read stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -o, --output <path>       Write HTML to a file instead of stdout")
	fmt.Fprintln(w, "      --highlight           Add chroma classes to code lines")
	fmt.Fprintln(w, "      --toc-marker <s>      Heading treated as a hand-written TOC (repeatable)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printTOCUsage prints usage for the toc command.
func printTOCUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent toc <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the numbered table of contents of a markdown document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --json                Print entries as JSON")
	fmt.Fprintln(w, "      --toc-marker <s>      Heading treated as a hand-written TOC (repeatable)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printPDFUsage prints usage for the pdf command.
func printPDFUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: howagent pdf [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the lifecycle document to PDF with headless Chrome.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -l, --lang <code>         Language: en, zh (default: en)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: reactAgent.<lang>.pdf)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (default: 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Footer:")
	fmt.Fprintln(w, "      --date <s>            Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "      --no-footer           Disable footer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome binary to launch")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1          Disable the Chrome sandbox (Docker/CI)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "toc":
		printTOCUsage(env.Stdout)
	case "pdf":
		printPDFUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: howagent version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: howagent help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
