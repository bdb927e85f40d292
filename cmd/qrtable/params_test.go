package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-qrtable"
	"github.com/alnah/go-qrtable/internal/config"
)

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Placeholder: "FromFile", Page: config.PageConfig{Size: "a4"}}
		f := &renderFlags{
			placeholder: "FromFlag",
			qr:          qrFlags{size: 300, pause: "1s", generators: []string{"local=http://localhost/?d={data}"}},
			fetch:       fetchFlags{workers: 6, userAgent: "bot"},
			page:        pageFlags{orientation: "landscape"},
		}
		if err := mergeFlags(f, cfg); err != nil {
			t.Fatalf("mergeFlags() error = %v", err)
		}
		if cfg.Placeholder != "FromFlag" {
			t.Errorf("Placeholder = %q", cfg.Placeholder)
		}
		if cfg.Page.Size != "a4" || cfg.Page.Orientation != "landscape" {
			t.Errorf("Page = %+v", cfg.Page)
		}
		if cfg.QR.Size != 300 || cfg.QR.Pause != "1s" {
			t.Errorf("QR = %+v", cfg.QR)
		}
		if len(cfg.QR.Generators) != 1 || cfg.QR.Generators[0].Name != "local" {
			t.Errorf("Generators = %+v", cfg.QR.Generators)
		}
		if cfg.Fetch.Workers != 6 || cfg.Fetch.UserAgent != "bot" {
			t.Errorf("Fetch = %+v", cfg.Fetch)
		}
	})

	t.Run("empty flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{FallbackTitle: "untitled", QR: config.QRConfig{Size: 200}}
		if err := mergeFlags(&renderFlags{}, cfg); err != nil {
			t.Fatalf("mergeFlags() error = %v", err)
		}
		if cfg.FallbackTitle != "untitled" || cfg.QR.Size != 200 {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}

func TestParseGeneratorFlags(t *testing.T) {
	t.Parallel()

	gens, err := parseGeneratorFlags([]string{"a=https://a.test/?d={data}&x=1", "b=https://b.test/{data}"})
	if err != nil {
		t.Fatalf("parseGeneratorFlags() error = %v", err)
	}
	if gens[0].URL != "https://a.test/?d={data}&x=1" {
		t.Errorf("URL = %q, must keep later '=' signs", gens[0].URL)
	}

	for _, bad := range []string{"noequals", "=https://a.test/{data}", "name="} {
		if _, err := parseGeneratorFlags([]string{bad}); !errors.Is(err, ErrInvalidFlag) {
			t.Errorf("parseGeneratorFlags(%q) = %v, want ErrInvalidFlag", bad, err)
		}
	}
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	logger := newLogger(&bytes.Buffer{}, commonFlags{})

	tests := []struct {
		name     string
		cfg      *config.Config
		timeout  string
		wantOpts int
		wantErr  error
	}{
		{name: "defaults only add logger", cfg: &config.Config{}, wantOpts: 1},
		{
			name: "every field set",
			cfg: &config.Config{
				Placeholder:   "P",
				FallbackTitle: "F",
				QR: config.QRConfig{
					Size: 100, DisplayScale: 0.5, Pause: "0s", FailureMarker: "M",
					Generators: []config.GeneratorConfig{{Name: "g", URL: "https://g.test/?d={data}"}},
				},
				Fetch: config.FetchConfig{Timeout: "2s", UserAgent: "ua", Workers: 2},
			},
			timeout:  "1m",
			wantOpts: 12,
		},
		{
			name:    "bad generator",
			cfg:     &config.Config{QR: config.QRConfig{Generators: []config.GeneratorConfig{{Name: "g", URL: "ftp://g.test/{data}"}}}},
			wantErr: qrtable.ErrInvalidGenerator,
		},
		{name: "zero pdf timeout", cfg: &config.Config{}, timeout: "0s", wantErr: ErrInvalidFlag},
		{name: "bad pdf timeout", cfg: &config.Config{}, timeout: "later", wantErr: ErrInvalidFlag},
		{name: "bad pause", cfg: &config.Config{QR: config.QRConfig{Pause: "x"}}, wantErr: config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, err := buildOptions(tt.cfg, tt.timeout, logger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(opts) != tt.wantOpts {
				t.Errorf("len(opts) = %d, want %d", len(opts), tt.wantOpts)
			}
		})
	}
}

func TestBuildOptions_BuilderAccepts(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Placeholder: "Refs", QR: config.QRConfig{Size: 120, Pause: "10ms"}}
	opts, err := buildOptions(cfg, "", newLogger(&bytes.Buffer{}, commonFlags{}))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	b, err := qrtable.NewBuilder(opts...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	defer func() { _ = b.Close() }()
	if b.Placeholder() != "Refs" {
		t.Errorf("Placeholder() = %q, want Refs", b.Placeholder())
	}

	// Placeholder absent from the document: fails before any request.
	_, err = b.Build(context.Background(), qrtable.Input{Markdown: sampleMarkdown, HTMLOnly: true})
	if !errors.Is(err, qrtable.ErrPlaceholderMissing) {
		t.Errorf("Build() error = %v, want ErrPlaceholderMissing", err)
	}
}

func TestBuildPageSettings(t *testing.T) {
	t.Parallel()

	page, err := buildPageSettings(&config.Config{Page: config.PageConfig{Size: "A4", Margin: 1}})
	if err != nil {
		t.Fatalf("buildPageSettings() error = %v", err)
	}
	if page.Size != qrtable.PageSizeA4 || page.Margin != 1 || page.Orientation != qrtable.OrientationPortrait {
		t.Errorf("page = %+v", page)
	}

	_, err = buildPageSettings(&config.Config{Page: config.PageConfig{Size: "tabloid"}})
	if !errors.Is(err, qrtable.ErrInvalidPageSize) {
		t.Errorf("error = %v, want ErrInvalidPageSize", err)
	}
	_, err = buildPageSettings(&config.Config{Page: config.PageConfig{Margin: 9}})
	if !errors.Is(err, qrtable.ErrInvalidMargin) {
		t.Errorf("error = %v, want ErrInvalidMargin", err)
	}
}

func TestReadCSS(t *testing.T) {
	t.Parallel()

	if css, err := readCSS(""); css != "" || err != nil {
		t.Errorf("readCSS(\"\") = %q, %v", css, err)
	}
	if _, err := readCSS("/nonexistent/style.css"); !errors.Is(err, ErrReadCSS) {
		t.Errorf("error = %v, want ErrReadCSS", err)
	}
}

func TestEffectiveConfig(t *testing.T) {
	t.Parallel()

	in := &config.Config{Placeholder: "Mine", Fetch: config.FetchConfig{Workers: 9}}
	out := effectiveConfig(in)

	if out.Placeholder != "Mine" || out.Fetch.Workers != 9 {
		t.Errorf("explicit values lost: %+v", out)
	}
	if out.QR.Size != qrtable.DefaultQRSize || out.QR.Pause != "300ms" || out.Fetch.Timeout != "15s" {
		t.Errorf("defaults not filled: %+v", out)
	}
	if len(out.QR.Generators) != 3 || out.QR.Generators[0].Name != "qrserver" {
		t.Errorf("Generators = %+v", out.QR.Generators)
	}
	if in.QR.Size != 0 {
		t.Error("effectiveConfig must not modify its argument")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("effective config invalid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     commonFlags
		wantWarn  bool
		wantDebug bool
	}{
		{"default", commonFlags{}, true, false},
		{"quiet", commonFlags{quiet: true}, false, false},
		{"verbose", commonFlags{verbose: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newLogger(&buf, tt.flags)
			logger.Debug("debug-line")
			logger.Warn("warn-line")

			if got := strings.Contains(buf.String(), "warn-line"); got != tt.wantWarn {
				t.Errorf("warn shown = %v, want %v", got, tt.wantWarn)
			}
			if got := strings.Contains(buf.String(), "debug-line"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
