package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrtable <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render footnote URLs as a reference table with QR codes")
	fmt.Fprintln(w, "  list       List footnote URLs of Markdown or DOCX files with their references")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  completion Generate a shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'qrtable help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrtable render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Replace the placeholder paragraph of each Markdown file with a table of its")
	fmt.Fprintln(w, "footnote URLs: reference, page title, QR code and URL.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Documents rendered in parallel (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           PDF generation timeout (e.g., 30s)")
	fmt.Fprintln(w, "      --html                  Write HTML alongside PDF")
	fmt.Fprintln(w, "      --html-only             Write HTML only, skip PDF")
	fmt.Fprintln(w, "      --append-to <pdf>       Output = this PDF followed by the rendered pages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table:")
	fmt.Fprintln(w, "      --placeholder <s>       Paragraph text replaced by the table (default QRCodeTable)")
	fmt.Fprintln(w, "      --fallback-title <s>    Title used when none can be resolved")
	fmt.Fprintln(w, "      --css <path>            Extra CSS file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "QR codes:")
	fmt.Fprintln(w, "      --qr-size <px>          Size requested from generators (default 600)")
	fmt.Fprintln(w, "      --qr-scale <f>          Displayed fraction of --qr-size (default 0.25)")
	fmt.Fprintln(w, "      --qr-pause <d>          Pause between generator attempts (default 300ms)")
	fmt.Fprintln(w, "      --qr-failure-text <s>   Text shown when no generator succeeded")
	fmt.Fprintln(w, "      --generator <n=url>     Generator template with {data} and {size} (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Network:")
	fmt.Fprintln(w, "      --http-timeout <d>      Per-request timeout (default 15s)")
	fmt.Fprintln(w, "      --user-agent <s>        User-Agent header")
	fmt.Fprintln(w, "      --fetch-workers <n>     URLs resolved concurrently (default 4)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>         Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>       Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>            Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show rows and debug logs")
}

// printListUsage prints usage for the list command.
func printListUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrtable list <file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the footnote URLs of .md, .markdown or .docx files with the")
	fmt.Fprintln(w, "reference each would get. No network requests are made.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --yaml                  Print as YAML")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrtable config [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML, defaults filled in.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "list":
		printListUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: qrtable version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: qrtable help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
