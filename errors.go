package qrtable

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown      = errors.New("markdown content cannot be empty")
	ErrNoURLs             = errors.New("no URLs found in footnotes")
	ErrPlaceholderMissing = errors.New("placeholder not found in document")
	ErrQRGeneration       = errors.New("QR code generation failed")
	ErrHTMLConversion     = errors.New("HTML conversion failed")
	ErrPDFGeneration      = errors.New("PDF generation failed")
	ErrBrowserConnect     = errors.New("failed to connect to browser")
	ErrPageCreate         = errors.New("failed to create browser page")
	ErrPageLoad           = errors.New("failed to load page")
	ErrPDFMerge           = errors.New("PDF merge failed")
	ErrInvalidOption      = errors.New("invalid option")

	// Generator configuration errors.
	ErrNoGenerators     = errors.New("no QR generators configured")
	ErrInvalidGenerator = errors.New("invalid QR generator")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)

// QRGenerationError is returned by QRAcquirer.Acquire when every generator
// in the chain failed. It matches ErrQRGeneration with errors.Is.
type QRGenerationError struct {
	URL      string
	Attempts int
	Errs     []error // one per attempt, in chain order
}

func (e *QRGenerationError) Error() string {
	msg := fmt.Sprintf("QR code generation failed for %s after %d attempt(s)", e.URL, e.Attempts)
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg
}

// Is reports whether target is ErrQRGeneration.
func (e *QRGenerationError) Is(target error) bool {
	return target == ErrQRGeneration
}

// Unwrap returns the per-attempt errors.
func (e *QRGenerationError) Unwrap() []error {
	return e.Errs
}
