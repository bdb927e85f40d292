package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// qrFlags holds QR acquisition and display flags.
type qrFlags struct {
	size          int
	displayScale  float64
	pause         string
	failureMarker string
	generators    []string // name=template
}

// fetchFlags holds outbound HTTP flags.
type fetchFlags struct {
	timeout   string
	userAgent string
	workers   int
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool // HTML alongside PDF
	htmlOnly bool // HTML only, skip PDF
	appendTo string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common        commonFlags
	output        string
	workers       int
	timeout       string
	placeholder   string
	fallbackTitle string
	css           string
	qr            qrFlags
	fetch         fetchFlags
	page          pageFlags
	outputMode    outputFlags
}

// listFlags holds flags for the list command.
type listFlags struct {
	yaml bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-row details and debug logs")
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

func addQRFlags(fs *flag.FlagSet, f *qrFlags) {
	fs.IntVar(&f.size, "qr-size", 0, "QR image size requested from generators, in pixels")
	fs.Float64Var(&f.displayScale, "qr-scale", 0, "displayed QR size as a fraction of --qr-size")
	fs.StringVar(&f.pause, "qr-pause", "", "pause between generator attempts (e.g., 300ms)")
	fs.StringVar(&f.failureMarker, "qr-failure-text", "", "text shown when no QR code could be generated")
	fs.StringArrayVar(&f.generators, "generator", nil, "QR generator as name=URL template (repeatable, replaces the chain)")
}

func addFetchFlags(fs *flag.FlagSet, f *fetchFlags) {
	fs.StringVar(&f.timeout, "http-timeout", "", "per-request timeout for titles and QR codes (e.g., 15s)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header for outgoing requests")
	fs.IntVar(&f.workers, "fetch-workers", 0, "URLs resolved concurrently per document")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "output HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
	fs.StringVar(&f.appendTo, "append-to", "", "existing PDF to prepend to the rendered output")
}

// newRenderFlagSet registers every render flag on a fresh FlagSet. Parsing
// and shell completion share it.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "documents rendered in parallel (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.placeholder, "placeholder", "", "paragraph text replaced by the table")
	fs.StringVar(&f.fallbackTitle, "fallback-title", "", "title shown when a page title cannot be resolved")
	fs.StringVar(&f.css, "css", "", "extra CSS file")

	addCommonFlags(fs, &f.common)
	addQRFlags(fs, &f.qr)
	addFetchFlags(fs, &f.fetch)
	addPageFlags(fs, &f.page)
	addOutputFlags(fs, &f.outputMode)
	return fs
}

func newListFlagSet(f *listFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.BoolVar(&f.yaml, "yaml", false, "print references as YAML")
	return fs
}

func newConfigFlagSet(f *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseListFlags parses list command flags and returns positional args.
func parseListFlags(args []string, stderr io.Writer) (*listFlags, []string, error) {
	f := &listFlags{}
	fs := newListFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printListUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, error) {
	f := &commonFlags{}
	fs := newConfigFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printConfigUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
