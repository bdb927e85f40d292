package qrtable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/alnah/go-qrtable/internal/doctree"
	"github.com/alnah/go-qrtable/internal/fetch"
	"github.com/alnah/go-qrtable/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.Preprocessor)(nil)
	_ pipeline.MarkdownConverter    = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.TableInjector        = (*pipeline.TableInjection)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ titleResolver                 = (*TitleResolver)(nil)
	_ qrAcquirer                    = (*QRAcquirer)(nil)
)

type titleResolver interface {
	Resolve(ctx context.Context, url string) string
}

type qrAcquirer interface {
	Acquire(ctx context.Context, url string, sizePx int) (*QRImage, error)
}

// Builder turns the footnote URLs of a Markdown document into a reference
// table with QR codes. Create with NewBuilder, call Build, and Close when done.
// Build may be called repeatedly but not concurrently: the browser is shared.
type Builder struct {
	cfg           builderConfig
	logger        *slog.Logger
	preprocessor  pipeline.MarkdownPreprocessor
	mdConverter   pipeline.MarkdownConverter
	tableInjector pipeline.TableInjector
	cssInjector   pipeline.CSSInjector
	titles        titleResolver
	qr            qrAcquirer
	printer       pdfPrinter
}

// NewBuilder creates a Builder. Without options it uses the built-in
// generator chain and the package defaults.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:           defaultBuilderConfig(),
		logger:        slog.New(slog.DiscardHandler),
		preprocessor:  &pipeline.Preprocessor{},
		mdConverter:   pipeline.NewGoldmarkConverter(),
		tableInjector: &pipeline.TableInjection{},
		cssInjector:   &pipeline.CSSInjection{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:   b.cfg.httpTimeout,
		UserAgent: b.cfg.userAgent,
		Client:    b.cfg.httpClient,
	})

	if b.titles == nil {
		b.titles = NewTitleResolver(fetcher, b.logger)
	}
	if b.qr == nil {
		gens := b.cfg.generators
		if gens == nil {
			gens = DefaultGenerators()
		}
		qr, err := NewQRAcquirer(fetcher, gens, FallbackPolicy{Pause: b.cfg.pause}, b.logger)
		if err != nil {
			return nil, err
		}
		b.qr = qr
	}
	if b.printer == nil {
		b.printer = newTempFilePrinter(b.cfg.timeout)
	}
	return b, nil
}

// Build runs the full pipeline. Missing URLs or placeholder abort before any
// network request. Per-row title and QR failures do not fail the build; they
// show up in Result.Rows and in the table as fallback title or failure marker.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (b *Builder) Build(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	md := b.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	parsed, err := b.mdConverter.Parse(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}

	urls := ExtractURLs(doctree.MarkdownFootnotes(parsed.Doc, parsed.Source))
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	htmlContent, err := b.mdConverter.Render(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	if err := b.tableInjector.LocatePlaceholder(ctx, htmlContent, b.cfg.placeholder); err != nil {
		if errors.Is(err, pipeline.ErrPlaceholderNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPlaceholderMissing, b.cfg.placeholder)
		}
		return nil, fmt.Errorf("locating placeholder: %w", err)
	}

	if len(urls) > MaxRefs {
		b.logger.WarnContext(ctx, "more URLs than reference numbers, extra rows share FF",
			"urls", len(urls), "max", MaxRefs)
	}

	rows := b.Resolve(ctx, urls)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.logSummary(ctx, rows)

	plan := PlanLayout(len(rows))
	htmlContent, err = b.tableInjector.InjectTable(ctx, htmlContent, b.cfg.placeholder, b.tableData(rows, plan))
	if err != nil {
		return nil, fmt.Errorf("injecting table: %w", err)
	}

	if input.SourceDir != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	// Table styles first, user CSS last so it can override.
	css := pipeline.DefaultTableCSS
	if input.CSS != "" {
		css += "\n" + input.CSS
	}
	htmlContent = b.cssInjector.InjectCSS(ctx, htmlContent, css)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &Result{
		HTML: []byte(htmlContent),
		Rows: rows,
		Plan: plan,
	}
	if input.HTMLOnly {
		return res, nil
	}

	pdf, err := b.printer.Print(ctx, htmlContent, input.Page)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	res.PDF = pdf
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (b *Builder) Close() error {
	if b.printer != nil {
		return b.printer.Close()
	}
	return nil
}

// Placeholder returns the configured placeholder marker.
func (b *Builder) Placeholder() string {
	return b.cfg.placeholder
}

// tableData converts resolved rows and the plan into renderer input.
func (b *Builder) tableData(rows []Row, plan MergePlan) *pipeline.TableData {
	data := &pipeline.TableData{
		Rows:          make([]pipeline.TableRow, len(rows)),
		Ops:           plan.cellOps(),
		QRWidth:       int(math.Round(float64(b.cfg.qrSize) * b.cfg.displayScale)),
		FailureMarker: b.cfg.failureMarker,
	}
	for i, r := range rows {
		data.Rows[i] = pipeline.TableRow{
			Ref:   string(r.Ref),
			Title: r.Title,
			URL:   r.URL,
			QR:    r.QR.DataURI(),
		}
	}
	return data
}

func (b *Builder) logSummary(ctx context.Context, rows []Row) {
	var noTitle, noQR int
	for _, r := range rows {
		if r.TitleFallback {
			noTitle++
		}
		if r.QRErr != nil {
			noQR++
		}
	}
	b.logger.InfoContext(ctx, "references resolved",
		"rows", len(rows), "title_fallbacks", noTitle, "qr_failures", noQR)
}

// validateInput checks that required fields are present and valid.
func validateInput(input Input) error {
	if strings.TrimSpace(input.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	return input.Page.Validate()
}
