package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-qrtable"
	"github.com/alnah/go-qrtable/internal/config"
	"github.com/alnah/go-qrtable/internal/doctree"
	"github.com/alnah/go-qrtable/internal/hints"
)

// Exit codes for the qrtable CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Table rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitNothing = 5 // No footnote URLs or no placeholder: nothing to render
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, qrtable.ErrNoURLs) ||
		errors.Is(err, qrtable.ErrPlaceholderMissing) {
		return ExitNothing
	}

	if errors.Is(err, qrtable.ErrBrowserConnect) ||
		errors.Is(err, qrtable.ErrPageCreate) ||
		errors.Is(err, qrtable.ErrPageLoad) ||
		errors.Is(err, qrtable.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, qrtable.ErrPDFMerge) ||
		errors.Is(err, doctree.ErrNotDocx) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, qrtable.ErrEmptyMarkdown) ||
		errors.Is(err, qrtable.ErrInvalidOption) ||
		errors.Is(err, qrtable.ErrInvalidGenerator) ||
		errors.Is(err, qrtable.ErrNoGenerators) ||
		errors.Is(err, qrtable.ErrInvalidPageSize) ||
		errors.Is(err, qrtable.ErrInvalidOrientation) ||
		errors.Is(err, qrtable.ErrInvalidMargin) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrAppendMultiple) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint suffix for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, qrtable.ErrNoURLs):
		return hints.ForNoURLs()
	case errors.Is(err, qrtable.ErrPlaceholderMissing):
		return hints.ForPlaceholderMissing()
	case errors.Is(err, qrtable.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, qrtable.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
