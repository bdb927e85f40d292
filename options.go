package qrtable

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alnah/go-qrtable/internal/fetch"
)

// Defaults for Builder settings.
const (
	DefaultPlaceholder   = "QRCodeTable"
	DefaultFallbackTitle = "(title unavailable)"
	DefaultFailureMarker = "QR code unavailable"
	DefaultWorkers       = 4
	DefaultHTTPTimeout   = fetch.DefaultTimeout
	DefaultUserAgent     = fetch.DefaultUserAgent

	// defaultTimeout bounds PDF rendering.
	defaultTimeout = 30 * time.Second
)

// Option configures a Builder.
type Option func(*Builder)

// builderConfig holds Builder settings.
type builderConfig struct {
	timeout       time.Duration
	httpTimeout   time.Duration
	httpClient    *http.Client
	userAgent     string
	generators    []Generator
	pause         time.Duration
	qrSize        int
	displayScale  float64
	placeholder   string
	fallbackTitle string
	failureMarker string
	workers       int
}

func defaultBuilderConfig() builderConfig {
	return builderConfig{
		timeout:       defaultTimeout,
		httpTimeout:   DefaultHTTPTimeout,
		userAgent:     DefaultUserAgent,
		pause:         DefaultPause,
		qrSize:        DefaultQRSize,
		displayScale:  DefaultDisplayScale,
		placeholder:   DefaultPlaceholder,
		fallbackTitle: DefaultFallbackTitle,
		failureMarker: DefaultFailureMarker,
		workers:       DefaultWorkers,
	}
}

// WithTimeout sets the PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("qrtable: WithTimeout duration must be positive")
	}
	return func(b *Builder) {
		b.cfg.timeout = d
	}
}

// WithHTTPTimeout sets the per-request timeout for title and QR lookups.
// Ignored when WithHTTPClient is used.
func WithHTTPTimeout(d time.Duration) Option {
	return func(b *Builder) {
		b.cfg.httpTimeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHTTPClient sets the client used for title and QR requests.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Builder) {
		b.cfg.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header of outgoing requests.
func WithUserAgent(ua string) Option {
	return func(b *Builder) {
		b.cfg.userAgent = ua
	}
}

// WithGenerators replaces the QR generator chain. Order is significant.
func WithGenerators(gens ...Generator) Option {
	return func(b *Builder) {
		b.cfg.generators = append([]Generator{}, gens...)
	}
}

// WithPause sets the wait between two generator attempts for one URL.
func WithPause(d time.Duration) Option {
	return func(b *Builder) {
		b.cfg.pause = d
	}
}

// WithQRSize sets the pixel size requested from generators.
func WithQRSize(px int) Option {
	return func(b *Builder) {
		b.cfg.qrSize = px
	}
}

// WithDisplayScale sets the on-page QR size as a fraction of the requested size.
func WithDisplayScale(s float64) Option {
	return func(b *Builder) {
		b.cfg.displayScale = s
	}
}

// WithPlaceholder sets the marker text replaced by the table.
func WithPlaceholder(p string) Option {
	return func(b *Builder) {
		b.cfg.placeholder = p
	}
}

// WithFallbackTitle sets the title shown when none could be resolved.
func WithFallbackTitle(s string) Option {
	return func(b *Builder) {
		b.cfg.fallbackTitle = s
	}
}

// WithFailureMarker sets the text shown in place of a missing QR code.
func WithFailureMarker(s string) Option {
	return func(b *Builder) {
		b.cfg.failureMarker = s
	}
}

// WithWorkers bounds how many URLs are resolved concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.cfg.workers = n
	}
}

// validate reports the first invalid setting.
func (c *builderConfig) validate() error {
	switch {
	case c.qrSize <= 0:
		return fmt.Errorf("%w: QR size must be positive, got %d", ErrInvalidOption, c.qrSize)
	case c.displayScale <= 0:
		return fmt.Errorf("%w: display scale must be positive, got %g", ErrInvalidOption, c.displayScale)
	case c.pause < 0:
		return fmt.Errorf("%w: pause must not be negative, got %s", ErrInvalidOption, c.pause)
	case c.workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidOption, c.workers)
	case strings.TrimSpace(c.placeholder) == "":
		return fmt.Errorf("%w: placeholder cannot be empty", ErrInvalidOption)
	}
	return nil
}
