package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Placeholder != "" {
		t.Errorf("Placeholder = %q, want empty", cfg.Placeholder)
	}
	if cfg.QR.Size != 0 || cfg.QR.Generators != nil {
		t.Errorf("QR = %+v, want zero value", cfg.QR)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		wantMsg string
	}{
		{
			name:   "fully populated config is valid",
			mutate: func(c *Config) { *c = *populated() },
		},
		{
			name:    "blank placeholder",
			mutate:  func(c *Config) { c.Placeholder = "   " },
			wantErr: ErrInvalidValue,
			wantMsg: "placeholder",
		},
		{
			name:    "placeholder too long",
			mutate:  func(c *Config) { c.Placeholder = strings.Repeat("x", MaxPlaceholderLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "negative qr size",
			mutate:  func(c *Config) { c.QR.Size = -1 },
			wantErr: ErrInvalidValue,
			wantMsg: "qr.size",
		},
		{
			name:    "display scale above one",
			mutate:  func(c *Config) { c.QR.DisplayScale = 1.5 },
			wantErr: ErrInvalidValue,
			wantMsg: "qr.displayScale",
		},
		{
			name:    "unparseable pause",
			mutate:  func(c *Config) { c.QR.Pause = "soon" },
			wantErr: ErrInvalidValue,
			wantMsg: "qr.pause",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Fetch.Timeout = "-1s" },
			wantErr: ErrInvalidValue,
			wantMsg: "fetch.timeout",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Fetch.Workers = -2 },
			wantErr: ErrInvalidValue,
			wantMsg: "fetch.workers",
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.Page.Margin = -0.5 },
			wantErr: ErrInvalidValue,
			wantMsg: "page.margin",
		},
		{
			name:    "page size too long",
			mutate:  func(c *Config) { c.Page.Size = "enormous-sheet" },
			wantErr: ErrFieldTooLong,
		},
		{
			name: "generator without name",
			mutate: func(c *Config) {
				c.QR.Generators = []GeneratorConfig{{URL: "https://qr.test/?d={data}"}}
			},
			wantErr: ErrInvalidValue,
			wantMsg: "qr.generators[0].name",
		},
		{
			name: "generator without data placeholder",
			mutate: func(c *Config) {
				c.QR.Generators = []GeneratorConfig{{Name: "a", URL: "https://qr.test/?size={size}"}}
			},
			wantErr: ErrInvalidValue,
			wantMsg: "{data}",
		},
		{
			name: "generator with relative url",
			mutate: func(c *Config) {
				c.QR.Generators = []GeneratorConfig{{Name: "a", URL: "/qr?d={data}"}}
			},
			wantErr: ErrInvalidValue,
			wantMsg: "absolute",
		},
		{
			name: "too many generators",
			mutate: func(c *Config) {
				for i := 0; i <= MaxGenerators; i++ {
					c.QR.Generators = append(c.QR.Generators, GeneratorConfig{Name: "g", URL: "https://qr.test/?d={data}"})
				}
			},
			wantErr: ErrInvalidValue,
			wantMsg: "at most",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func populated() *Config {
	return &Config{
		Placeholder:   "RefTable",
		FallbackTitle: "untitled",
		QR: QRConfig{
			Size:          400,
			DisplayScale:  0.5,
			Pause:         "250ms",
			FailureMarker: "n/a",
			Generators: []GeneratorConfig{
				{Name: "local", URL: "http://localhost:8080/qr?s={size}&d={data}"},
			},
		},
		Fetch: FetchConfig{Timeout: "5s", UserAgent: "bot/1", Workers: 2},
		Page:  PageConfig{Size: "a4", Orientation: "landscape", Margin: 1},
		CSS:   CSSConfig{File: "extra.css"},
	}
}

func TestDurations(t *testing.T) {
	cfg := populated()

	pause, err := cfg.QR.PauseDuration()
	if err != nil || pause != 250*time.Millisecond {
		t.Errorf("PauseDuration() = %v, %v; want 250ms", pause, err)
	}
	timeout, err := cfg.Fetch.TimeoutDuration()
	if err != nil || timeout != 5*time.Second {
		t.Errorf("TimeoutDuration() = %v, %v; want 5s", timeout, err)
	}

	unset, err := DefaultConfig().QR.PauseDuration()
	if err != nil || unset != 0 {
		t.Errorf("unset PauseDuration() = %v, %v; want 0", unset, err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		p := writeConfig(t, t.TempDir(), "qr.yaml", `placeholder: "RefTable"
qr:
  size: 300
  pause: 1s
  generators:
    - name: local
      url: "http://localhost/qr?d={data}"
fetch:
  workers: 8
page:
  size: a4
`)
		cfg, err := LoadConfig(p)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Placeholder != "RefTable" {
			t.Errorf("Placeholder = %q, want %q", cfg.Placeholder, "RefTable")
		}
		if cfg.QR.Size != 300 {
			t.Errorf("QR.Size = %d, want 300", cfg.QR.Size)
		}
		if len(cfg.QR.Generators) != 1 || cfg.QR.Generators[0].Name != "local" {
			t.Errorf("QR.Generators = %+v", cfg.QR.Generators)
		}
		if cfg.Fetch.Workers != 8 {
			t.Errorf("Fetch.Workers = %d, want 8", cfg.Fetch.Workers)
		}
		if cfg.Page.Size != "a4" {
			t.Errorf("Page.Size = %q, want a4", cfg.Page.Size)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		p := writeConfig(t, t.TempDir(), "bad.yaml", "qr: [unclosed")
		_, err := LoadConfig(p)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		p := writeConfig(t, t.TempDir(), "unknown.yaml", "placeholder: X\nwatermark: DRAFT\n")
		_, err := LoadConfig(p)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		p := writeConfig(t, t.TempDir(), "neg.yaml", "qr:\n  size: -4\n")
		_, err := LoadConfig(p)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("config name resolves in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "work.yml", "placeholder: Refs\n")
		t.Chdir(dir)

		cfg, err := LoadConfig("work")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Placeholder != "Refs" {
			t.Errorf("Placeholder = %q, want Refs", cfg.Placeholder)
		}
	})

	t.Run("unknown config name lists tried paths", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := LoadConfig("missing-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "missing-name.yaml") {
			t.Errorf("error = %q, want tried paths", err)
		}
	})
}

func TestConfig_Dump(t *testing.T) {
	out, err := populated().Dump()
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"placeholder: RefTable", "displayScale: 0.5", "workers: 2"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Dump() missing %q:\n%s", want, out)
		}
	}
}
