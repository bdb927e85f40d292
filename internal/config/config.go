package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-qrtable/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPlaceholderLength = 100
	MaxTitleLength       = 200
	MaxMarkerLength      = 100
	MaxUserAgentLength   = 200
	MaxNameLength        = 50
	MaxURLLength         = 2048
	MaxPathLength        = 4096
	MaxPageSizeLength    = 10 // "letter", "a4", "legal"
	MaxOrientationLength = 10 // "portrait", "landscape"
	MaxGenerators        = 16
)

// Config holds all settings read from a qrtable YAML file.
type Config struct {
	Placeholder   string      `yaml:"placeholder"`
	FallbackTitle string      `yaml:"fallbackTitle"`
	QR            QRConfig    `yaml:"qr"`
	Fetch         FetchConfig `yaml:"fetch"`
	Page          PageConfig  `yaml:"page"`
	CSS           CSSConfig   `yaml:"css"`
}

// QRConfig defines QR code acquisition and display.
type QRConfig struct {
	Size          int               `yaml:"size"`          // pixels requested from generators
	DisplayScale  float64           `yaml:"displayScale"`  // fraction of size shown on the page
	Pause         string            `yaml:"pause"`         // Go duration between attempts, e.g. "300ms"
	FailureMarker string            `yaml:"failureMarker"` // text shown instead of a missing code
	Generators    []GeneratorConfig `yaml:"generators"`    // empty = built-in chain
}

// GeneratorConfig names one QR generation service.
// URL must contain {data} and may contain {size}.
type GeneratorConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FetchConfig defines outbound HTTP behavior.
type FetchConfig struct {
	Timeout   string `yaml:"timeout"` // Go duration per request
	UserAgent string `yaml:"userAgent"`
	Workers   int    `yaml:"workers"` // concurrent URL lookups
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// CSSConfig points at an extra stylesheet appended after the table styles.
type CSSConfig struct {
	File string `yaml:"file"`
}

// PauseDuration returns the parsed pause, or 0 when unset.
func (q QRConfig) PauseDuration() (time.Duration, error) {
	return parseDuration("qr.pause", q.Pause)
}

// TimeoutDuration returns the parsed request timeout, or 0 when unset.
func (f FetchConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("fetch.timeout", f.Timeout)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a duration", ErrInvalidValue, field, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, field, s)
	}
	return d, nil
}

// Validate checks field lengths and value ranges.
// Zero values are accepted and mean "use the built-in default".
func (c *Config) Validate() error {
	if err := validateFieldLength("placeholder", c.Placeholder, MaxPlaceholderLength); err != nil {
		return err
	}
	if c.Placeholder != "" && strings.TrimSpace(c.Placeholder) == "" {
		return fmt.Errorf("%w: placeholder: must not be blank", ErrInvalidValue)
	}
	if err := validateFieldLength("fallbackTitle", c.FallbackTitle, MaxTitleLength); err != nil {
		return err
	}

	if c.QR.Size < 0 {
		return fmt.Errorf("%w: qr.size: must be positive, got %d", ErrInvalidValue, c.QR.Size)
	}
	if c.QR.DisplayScale < 0 || c.QR.DisplayScale > 1 {
		return fmt.Errorf("%w: qr.displayScale: must be between 0 and 1, got %.2f", ErrInvalidValue, c.QR.DisplayScale)
	}
	if _, err := c.QR.PauseDuration(); err != nil {
		return err
	}
	if err := validateFieldLength("qr.failureMarker", c.QR.FailureMarker, MaxMarkerLength); err != nil {
		return err
	}
	if len(c.QR.Generators) > MaxGenerators {
		return fmt.Errorf("%w: qr.generators: at most %d entries, got %d", ErrInvalidValue, MaxGenerators, len(c.QR.Generators))
	}
	for i, g := range c.QR.Generators {
		if err := g.validate(i); err != nil {
			return err
		}
	}

	if _, err := c.Fetch.TimeoutDuration(); err != nil {
		return err
	}
	if err := validateFieldLength("fetch.userAgent", c.Fetch.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if c.Fetch.Workers < 0 {
		return fmt.Errorf("%w: fetch.workers: must be positive, got %d", ErrInvalidValue, c.Fetch.Workers)
	}

	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.orientation", c.Page.Orientation, MaxOrientationLength); err != nil {
		return err
	}
	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin: must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}

	return validateFieldLength("css.file", c.CSS.File, MaxPathLength)
}

func (g GeneratorConfig) validate(i int) error {
	field := fmt.Sprintf("qr.generators[%d]", i)
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: %s.name: required", ErrInvalidValue, field)
	}
	if err := validateFieldLength(field+".name", g.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".url", g.URL, MaxURLLength); err != nil {
		return err
	}
	if !strings.Contains(g.URL, "{data}") {
		return fmt.Errorf("%w: %s.url: missing {data} placeholder", ErrInvalidValue, field)
	}
	u, err := url.Parse(strings.NewReplacer("{data}", "x", "{size}", "1").Replace(g.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s.url: not an absolute http(s) URL", ErrInvalidValue, field)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with every field left at its zero
// value, so the library defaults apply.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched in the current directory, then ~/.config/qrtable/.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dump renders cfg as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yamlutil.Encode(c)
}

func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath tries name.yaml then name.yml, first locally and then in
// the user config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, "qrtable"))
	}

	tried := make([]string, 0, len(extensions)*len(dirs))
	for _, dir := range dirs {
		for _, ext := range extensions {
			p := filepath.Join(dir, name+ext)
			if fileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
