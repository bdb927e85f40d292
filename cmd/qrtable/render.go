package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-qrtable"
	"github.com/alnah/go-qrtable/internal/config"
	"github.com/alnah/go-qrtable/internal/fileutil"
	"github.com/alnah/go-qrtable/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("unsupported file extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidFlag        = errors.New("invalid flag")
	ErrAppendMultiple     = errors.New("--append-to needs exactly one input file and PDF output")
	ErrBuilderInit        = errors.New("failed to initialize builder")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// FileToRender represents a single document to process.
type FileToRender struct {
	InputPath  string
	OutputPath string
}

// RenderResult holds the outcome of a single document.
type RenderResult struct {
	InputPath      string
	OutputPath     string
	Rows           int
	QRFailures     int
	TitleFallbacks int
	Err            error
	Duration       time.Duration
}

// renderParams groups parameters shared across the batch.
type renderParams struct {
	css      string
	page     *qrtable.PageSettings
	html     bool
	htmlOnly bool
	appendTo string
	now      func() time.Time
}

// since measures elapsed time on the injected clock, or the wall clock.
func (p *renderParams) since(start time.Time) time.Duration {
	if p.now == nil {
		return time.Since(start)
	}
	return p.now().Sub(start)
}

func (p *renderParams) start() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// runRender orchestrates the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS, and
	// the runtime default then applies.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	opts, err := buildOptions(cfg, flags.timeout, logger)
	if err != nil {
		return err
	}
	page, err := buildPageSettings(cfg)
	if err != nil {
		return err
	}
	css, err := readCSS(cfg.CSS.File)
	if err != nil {
		return err
	}

	ext := ".pdf"
	if flags.outputMode.htmlOnly {
		ext = ".html"
	}
	files, err := discoverFiles(positional[0], flags.output, ext)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, positional[0])
	}
	if flags.outputMode.appendTo != "" && (len(files) != 1 || flags.outputMode.htmlOnly) {
		return ErrAppendMultiple
	}

	pool := env.NewPool(qrtable.ResolvePoolSize(flags.workers), opts...)
	defer func() { _ = pool.Close() }()
	logger.Debug("rendering", "files", len(files), "pool", pool.Size())

	params := &renderParams{
		css:      css,
		page:     page,
		html:     flags.outputMode.html,
		htmlOnly: flags.outputMode.htmlOnly,
		appendTo: flags.outputMode.appendTo,
		now:      env.Now,
	}
	results := renderBatch(ctx, pool, files, params)

	failed, firstErr := printResults(results, flags.common, env)
	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return firstErr
	default:
		return fmt.Errorf("%d of %d document(s) failed: %w", failed, len(results), firstErr)
	}
}

// discoverFiles finds the Markdown files to render. ext is the output
// extension (".pdf" or ".html").
func discoverFiles(inputPath, outputDir, ext string) ([]FileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !isMarkdownPath(inputPath) {
			return nil, fmt.Errorf("%w: %q (want .md or .markdown)", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		return []FileToRender{{InputPath: inputPath, OutputPath: resolveOutputPath(inputPath, outputDir, "", ext)}}, nil
	}

	var files []FileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdownPath(path) {
			return nil
		}
		files = append(files, FileToRender{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, inputPath, ext)})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the output path for a Markdown file.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) string {
	base := filepath.Base(fileutil.ReplaceExt(inputPath, ext))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}
	if strings.HasSuffix(outputDir, ext) {
		return outputDir
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), base)
		}
	}
	return filepath.Join(outputDir, base)
}

func isMarkdownPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > qrtable.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, qrtable.MaxPoolSize)
	}
	return nil
}

// renderBatch processes files concurrently using the Builder pool.
func renderBatch(ctx context.Context, pool Pool, files []FileToRender, params *renderParams) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]RenderResult, len(files))
	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = RenderResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrBuilderInit, err),
					}
				}
				return
			}
			defer pool.Release(r)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile builds a single document and writes its outputs.
func renderFile(ctx context.Context, r Renderer, f FileToRender, params *renderParams) RenderResult {
	start := params.start()
	result := RenderResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	fail := func(err error) RenderResult {
		result.Err = err
		result.Duration = params.since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadInput, err))
	}
	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err))
	}

	sourceDir, err := filepath.Abs(filepath.Dir(f.InputPath))
	if err != nil {
		sourceDir = filepath.Dir(f.InputPath)
	}

	res, err := r.Build(ctx, qrtable.Input{
		Markdown:  string(content),
		SourceDir: sourceDir,
		CSS:       params.css,
		Page:      params.page,
		HTMLOnly:  params.htmlOnly,
	})
	if err != nil {
		return fail(err)
	}

	result.Rows = len(res.Rows)
	for _, row := range res.Rows {
		if row.QRErr != nil {
			result.QRFailures++
		}
		if row.TitleFallback {
			result.TitleFallbacks++
		}
	}

	if params.html || params.htmlOnly {
		htmlPath := fileutil.ReplaceExt(f.OutputPath, ".html")
		if err := fileutil.WriteFileAtomic(htmlPath, res.HTML, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			result.Duration = params.since(start)
			return result
		}
	}

	if params.appendTo != "" {
		if err := qrtable.AppendPDF(ctx, params.appendTo, res.PDF, f.OutputPath); err != nil {
			return fail(err)
		}
	} else if err := fileutil.WriteFileAtomic(f.OutputPath, res.PDF, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	result.Duration = params.since(start)
	return result
}

// printResults reports each document and returns the failure count and the
// first error. Errors of a single document are left to the caller.
func printResults(results []RenderResult, f commonFlags, env *Environment) (int, error) {
	var (
		failed   int
		firstErr error
	)

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}

		if r.QRFailures > 0 && !f.quiet {
			fmt.Fprintf(env.Stderr, "%s: %d of %d QR code(s) unavailable%s\n",
				r.InputPath, r.QRFailures, r.Rows, hints.ForQRFailures(r.QRFailures))
		}
		if f.quiet {
			continue
		}
		if f.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d rows, %d untitled, %v)\n",
				r.InputPath, r.OutputPath, r.Rows, r.TitleFallbacks, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !f.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed, firstErr
}
