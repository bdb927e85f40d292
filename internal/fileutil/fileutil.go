// Package fileutil provides the file helpers shared by the PDF renderer and
// the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Errors returned by ValidateExtension.
var (
	ErrExtensionEmpty         = errors.New("empty file extension")
	ErrExtensionPathTraversal = errors.New("file extension contains a path separator or NUL")
)

// WriteTempFile stores content in a new "qrtable-*.<ext>" file under the
// system temp directory. The caller runs cleanup to remove it.
func WriteTempFile(content, ext string) (string, func(), error) {
	if err := ValidateExtension(ext); err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", "qrtable-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	remove := func() { _ = os.Remove(name) }

	_, werr := f.WriteString(content)
	cerr := f.Close()
	switch {
	case werr != nil:
		remove()
		return "", nil, fmt.Errorf("write temp file: %w", werr)
	case cerr != nil:
		remove()
		return "", nil, fmt.Errorf("close temp file: %w", cerr)
	}
	return name, remove, nil
}

// WriteFileAtomic writes data next to path and renames it into place, so
// readers never see a half-written output file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// ValidateExtension rejects extensions that could escape the temp directory.
func ValidateExtension(ext string) error {
	switch {
	case ext == "":
		return ErrExtensionEmpty
	case strings.ContainsAny(ext, "/\\\x00"):
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	if info, err := os.Stat(path); err == nil {
		return !info.IsDir()
	}
	return false
}

// ReplaceExt returns path with its extension replaced by ext (".pdf").
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
