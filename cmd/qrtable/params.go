package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-qrtable"
	"github.com/alnah/go-qrtable/internal/config"
)

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(f *renderFlags, cfg *config.Config) error {
	if f.placeholder != "" {
		cfg.Placeholder = f.placeholder
	}
	if f.fallbackTitle != "" {
		cfg.FallbackTitle = f.fallbackTitle
	}
	if f.css != "" {
		cfg.CSS.File = f.css
	}

	// QR flags
	if f.qr.size != 0 {
		cfg.QR.Size = f.qr.size
	}
	if f.qr.displayScale != 0 {
		cfg.QR.DisplayScale = f.qr.displayScale
	}
	if f.qr.pause != "" {
		cfg.QR.Pause = f.qr.pause
	}
	if f.qr.failureMarker != "" {
		cfg.QR.FailureMarker = f.qr.failureMarker
	}
	if len(f.qr.generators) > 0 {
		gens, err := parseGeneratorFlags(f.qr.generators)
		if err != nil {
			return err
		}
		cfg.QR.Generators = gens
	}

	// Fetch flags
	if f.fetch.timeout != "" {
		cfg.Fetch.Timeout = f.fetch.timeout
	}
	if f.fetch.userAgent != "" {
		cfg.Fetch.UserAgent = f.fetch.userAgent
	}
	if f.fetch.workers != 0 {
		cfg.Fetch.Workers = f.fetch.workers
	}

	// Page flags
	if f.page.size != "" {
		cfg.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Page.Orientation = f.page.orientation
	}
	if f.page.margin != 0 {
		cfg.Page.Margin = f.page.margin
	}
	return nil
}

// parseGeneratorFlags turns repeated name=template values into config entries.
func parseGeneratorFlags(values []string) ([]config.GeneratorConfig, error) {
	gens := make([]config.GeneratorConfig, 0, len(values))
	for _, v := range values {
		name, tmpl, ok := strings.Cut(v, "=")
		if !ok || name == "" || tmpl == "" {
			return nil, fmt.Errorf("%w: --generator %q: want name=URL", ErrInvalidFlag, v)
		}
		gens = append(gens, config.GeneratorConfig{Name: name, URL: tmpl})
	}
	return gens, nil
}

// buildOptions converts a validated config into Builder options. Zero values
// keep the library defaults.
func buildOptions(cfg *config.Config, pdfTimeout string, logger *slog.Logger) ([]qrtable.Option, error) {
	opts := []qrtable.Option{qrtable.WithLogger(logger)}

	if cfg.Placeholder != "" {
		opts = append(opts, qrtable.WithPlaceholder(cfg.Placeholder))
	}
	if cfg.FallbackTitle != "" {
		opts = append(opts, qrtable.WithFallbackTitle(cfg.FallbackTitle))
	}
	if cfg.QR.Size > 0 {
		opts = append(opts, qrtable.WithQRSize(cfg.QR.Size))
	}
	if cfg.QR.DisplayScale > 0 {
		opts = append(opts, qrtable.WithDisplayScale(cfg.QR.DisplayScale))
	}
	if cfg.QR.Pause != "" {
		d, err := cfg.QR.PauseDuration()
		if err != nil {
			return nil, err
		}
		opts = append(opts, qrtable.WithPause(d))
	}
	if cfg.QR.FailureMarker != "" {
		opts = append(opts, qrtable.WithFailureMarker(cfg.QR.FailureMarker))
	}
	if len(cfg.QR.Generators) > 0 {
		gens := make([]qrtable.Generator, 0, len(cfg.QR.Generators))
		for _, g := range cfg.QR.Generators {
			gen, err := qrtable.TemplateGenerator(g.Name, g.URL)
			if err != nil {
				return nil, err
			}
			gens = append(gens, gen)
		}
		opts = append(opts, qrtable.WithGenerators(gens...))
	}

	timeout, err := cfg.Fetch.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, qrtable.WithHTTPTimeout(timeout))
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, qrtable.WithUserAgent(cfg.Fetch.UserAgent))
	}
	if cfg.Fetch.Workers > 0 {
		opts = append(opts, qrtable.WithWorkers(cfg.Fetch.Workers))
	}

	if pdfTimeout != "" {
		d, err := time.ParseDuration(pdfTimeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: --timeout %q: want a positive duration", ErrInvalidFlag, pdfTimeout)
		}
		opts = append(opts, qrtable.WithTimeout(d))
	}
	return opts, nil
}

// buildPageSettings applies config page fields over the defaults.
func buildPageSettings(cfg *config.Config) (*qrtable.PageSettings, error) {
	page := qrtable.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = strings.ToLower(cfg.Page.Orientation)
	}
	if cfg.Page.Margin != 0 {
		page.Margin = cfg.Page.Margin
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// readCSS returns the content of the extra stylesheet, or "" when unset.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}

// effectiveConfig returns a copy of cfg with every unset field replaced by
// the value the library would use.
func effectiveConfig(cfg *config.Config) *config.Config {
	out := *cfg
	page := qrtable.DefaultPageSettings()

	if out.Placeholder == "" {
		out.Placeholder = qrtable.DefaultPlaceholder
	}
	if out.FallbackTitle == "" {
		out.FallbackTitle = qrtable.DefaultFallbackTitle
	}
	if out.QR.Size == 0 {
		out.QR.Size = qrtable.DefaultQRSize
	}
	if out.QR.DisplayScale == 0 {
		out.QR.DisplayScale = qrtable.DefaultDisplayScale
	}
	if out.QR.Pause == "" {
		out.QR.Pause = qrtable.DefaultPause.String()
	}
	if out.QR.FailureMarker == "" {
		out.QR.FailureMarker = qrtable.DefaultFailureMarker
	}
	if len(out.QR.Generators) == 0 {
		for _, g := range qrtable.DefaultGeneratorTemplates() {
			out.QR.Generators = append(out.QR.Generators, config.GeneratorConfig{Name: g.Name, URL: g.URL})
		}
	}
	if out.Fetch.Timeout == "" {
		out.Fetch.Timeout = qrtable.DefaultHTTPTimeout.String()
	}
	if out.Fetch.UserAgent == "" {
		out.Fetch.UserAgent = qrtable.DefaultUserAgent
	}
	if out.Fetch.Workers == 0 {
		out.Fetch.Workers = qrtable.DefaultWorkers
	}
	if out.Page.Size == "" {
		out.Page.Size = page.Size
	}
	if out.Page.Orientation == "" {
		out.Page.Orientation = page.Orientation
	}
	if out.Page.Margin == 0 {
		out.Page.Margin = page.Margin
	}
	return &out
}

// newLogger returns a text logger on w. Warnings are shown by default,
// --verbose adds debug records and --quiet keeps errors only.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
