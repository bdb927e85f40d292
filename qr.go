package qrtable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-qrtable/internal/fetch"
)

// QR acquisition defaults.
const (
	DefaultQRSize       = 600
	DefaultDisplayScale = 0.25
	DefaultPause        = 300 * time.Millisecond

	// maxQRBody caps a generator response.
	maxQRBody = 4 << 20

	qrAccept = "image/png,*/*;q=0.8"
)

// Generator maps a URL and pixel size to a request target of a remote QR
// code service.
type Generator struct {
	Name   string
	Target func(url string, size int) string
}

// Template placeholders understood by TemplateGenerator.
const (
	PlaceholderData = "{data}"
	PlaceholderSize = "{size}"
)

// TemplateGenerator builds a Generator from a URL template. {data} is
// replaced with the query-escaped URL and {size} with the pixel size.
func TemplateGenerator(name, tmpl string) (Generator, error) {
	if name == "" {
		return Generator{}, fmt.Errorf("%w: empty name", ErrInvalidGenerator)
	}
	if !strings.Contains(tmpl, PlaceholderData) {
		return Generator{}, fmt.Errorf("%w: %s: template must contain %s", ErrInvalidGenerator, name, PlaceholderData)
	}
	u, err := url.Parse(strings.NewReplacer(PlaceholderData, "x", PlaceholderSize, "1").Replace(tmpl))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Generator{}, fmt.Errorf("%w: %s: template must be an absolute http(s) URL", ErrInvalidGenerator, name)
	}
	return Generator{
		Name: name,
		Target: func(data string, size int) string {
			return strings.NewReplacer(
				PlaceholderData, url.QueryEscape(data),
				PlaceholderSize, strconv.Itoa(size),
			).Replace(tmpl)
		},
	}, nil
}

// GeneratorTemplate is a named URL template for TemplateGenerator.
type GeneratorTemplate struct {
	Name string
	URL  string
}

// defaultGeneratorTemplates is the built-in chain, primary first and the
// legacy chart API last.
var defaultGeneratorTemplates = []GeneratorTemplate{
	{"qrserver", "https://api.qrserver.com/v1/create-qr-code/?size={size}x{size}&data={data}"},
	{"quickchart", "https://quickchart.io/qr?size={size}&text={data}"},
	{"google-chart", "https://chart.googleapis.com/chart?cht=qr&chs={size}x{size}&chl={data}"},
}

// DefaultGeneratorTemplates returns a copy of the built-in chain templates.
func DefaultGeneratorTemplates() []GeneratorTemplate {
	return append([]GeneratorTemplate(nil), defaultGeneratorTemplates...)
}

// DefaultGenerators returns the built-in generator chain.
func DefaultGenerators() []Generator {
	gens := make([]Generator, 0, len(defaultGeneratorTemplates))
	for _, g := range defaultGeneratorTemplates {
		gen, err := TemplateGenerator(g.Name, g.URL)
		if err != nil {
			panic(err)
		}
		gens = append(gens, gen)
	}
	return gens
}

// FallbackPolicy controls the generator chain. Every generator is tried at
// most once, so the attempt limit is the chain length.
type FallbackPolicy struct {
	Pause time.Duration // fixed wait between two attempts
}

// QRAcquirer fetches QR code images through an ordered generator chain.
type QRAcquirer struct {
	fetcher    *fetch.Fetcher
	generators []Generator
	policy     FallbackPolicy
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewQRAcquirer creates a QRAcquirer. A nil logger discards output.
func NewQRAcquirer(fetcher *fetch.Fetcher, generators []Generator, policy FallbackPolicy, logger *slog.Logger) (*QRAcquirer, error) {
	if len(generators) == 0 {
		return nil, ErrNoGenerators
	}
	for _, g := range generators {
		if g.Target == nil {
			return nil, fmt.Errorf("%w: %q has no target", ErrInvalidGenerator, g.Name)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &QRAcquirer{
		fetcher:    fetcher,
		generators: generators,
		policy:     policy,
		logger:     logger,
		sleep:      sleepContext,
	}, nil
}

// Acquire returns the first valid image produced by the chain. Generators
// are tried in order, waiting policy.Pause between attempts. When all fail
// the error is a *QRGenerationError. Context cancellation stops the chain.
func (a *QRAcquirer) Acquire(ctx context.Context, rawURL string, sizePx int) (*QRImage, error) {
	var (
		errs     []error
		attempts int
	)
	for i, g := range a.generators {
		if i > 0 {
			if err := a.sleep(ctx, a.policy.Pause); err != nil {
				errs = append(errs, err)
				break
			}
		}

		attempts++
		img, err := a.attempt(ctx, g, rawURL, sizePx)
		if err == nil {
			if i > 0 {
				a.logger.InfoContext(ctx, "QR code obtained from fallback generator",
					"url", rawURL, "generator", g.Name, "attempt", i+1)
			}
			return img, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", g.Name, err))

		if ctx.Err() != nil {
			break
		}
		a.logger.WarnContext(ctx, "QR generator failed",
			"url", rawURL,
			"generator", g.Name,
			"attempt", i+1,
			"remaining", len(a.generators)-i-1,
			"error", err)
	}
	return nil, &QRGenerationError{URL: rawURL, Attempts: attempts, Errs: errs}
}

// attempt performs one generator request and validates the response.
func (a *QRAcquirer) attempt(ctx context.Context, g Generator, rawURL string, sizePx int) (*QRImage, error) {
	resp, err := a.fetcher.Get(ctx, g.Target(rawURL, sizePx), qrAccept, maxQRBody)
	if err != nil {
		return nil, err
	}
	img := &QRImage{Data: resp.Body, ContentType: resp.ContentType, Generator: g.Name}
	switch {
	case len(img.Data) == 0:
		return nil, errors.New("empty body")
	case !isImageContentType(img.ContentType):
		return nil, fmt.Errorf("unexpected content type %q", img.ContentType)
	case resp.Truncated:
		return nil, fmt.Errorf("image larger than %d bytes", maxQRBody)
	}
	return img, nil
}

// sleepContext waits d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
