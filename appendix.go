package qrtable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/alnah/go-qrtable/internal/fileutil"
)

// AppendPDF writes to outPath the pages of the PDF at basePath followed by
// the pages of table. outPath may equal basePath.
func AppendPDF(ctx context.Context, basePath string, table []byte, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(table) == 0 {
		return fmt.Errorf("%w: empty table PDF", ErrPDFMerge)
	}

	if err := api.ValidateFile(basePath, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPDFMerge, basePath, err)
	}

	tablePath, cleanup, err := fileutil.WriteTempFile(string(table), "pdf")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFMerge, err)
	}
	defer cleanup()

	// Merge into a sibling temp file, then rename, so basePath stays intact
	// when it is also the destination.
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".qrtable-merge-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFMerge, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := api.MergeCreateFile([]string{basePath, tablePath}, tmpPath, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFMerge, err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFMerge, err)
	}
	return nil
}
