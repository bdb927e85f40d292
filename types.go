package qrtable

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-qrtable/internal/doctree"
)

// Footnote tree types. A footnote is a *Container; URLs live in *Text runs.
type (
	Node      = doctree.Node
	Container = doctree.Container
	Text      = doctree.Text
	Run       = doctree.Run
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	switch strings.ToLower(p.Size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Ref is a 2-character uppercase hexadecimal reference identifier.
type Ref string

// Assignment pairs a URL with the reference derived from its position.
type Assignment struct {
	Ref Ref
	URL string
}

// Entry is one logical row of the reference table.
type Entry struct {
	Ref   Ref
	URL   string
	Title string
	// TitleFallback is true when no title could be resolved and Title holds
	// the configured fallback string.
	TitleFallback bool
}

// NewEntry builds an Entry from an assignment and a resolved title.
// An empty title is replaced by fallback verbatim.
func NewEntry(a Assignment, title, fallback string) Entry {
	if title == "" {
		return Entry{Ref: a.Ref, URL: a.URL, Title: fallback, TitleFallback: true}
	}
	return Entry{Ref: a.Ref, URL: a.URL, Title: title}
}

// QRImage is a QR code raster returned by a generator.
type QRImage struct {
	Data        []byte
	ContentType string
	Generator   string // name of the generator that produced it
}

// Valid reports whether the image has data and an image content type.
func (q *QRImage) Valid() bool {
	return q != nil && len(q.Data) > 0 && isImageContentType(q.ContentType)
}

// DataURI returns the image as a data: URI for embedding in HTML.
func (q *QRImage) DataURI() template.URL {
	if !q.Valid() {
		return ""
	}
	mediaType := strings.TrimSpace(strings.SplitN(q.ContentType, ";", 2)[0])
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		mediaType = "image/png"
	}
	// #nosec G203 -- base64 payload with an image media type
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(q.Data))
}

func isImageContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "image") || strings.Contains(ct, "png")
}

// Row is a fully resolved table row.
type Row struct {
	Entry
	QR    *QRImage // nil when QRErr is set
	QRErr error
}

// Input contains build parameters.
type Input struct {
	Markdown  string        // Markdown content with footnotes (required)
	SourceDir string        // Directory for resolving relative image paths (optional)
	CSS       string        // Custom CSS appended after the table styles (optional)
	Page      *PageSettings // Page settings (optional, nil = defaults)
	HTMLOnly  bool          // Skip PDF generation
}

// Result holds the output of a build.
type Result struct {
	HTML []byte
	PDF  []byte // nil when Input.HTMLOnly is set
	Rows []Row
	Plan MergePlan
}
