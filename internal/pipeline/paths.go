package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RewriteRelativePaths turns relative img[src] and a[href] values into
// absolute file:// URLs under sourceDir. The rendered document is printed
// from a temporary file, so relative paths would otherwise resolve against
// the temp directory. Paths escaping sourceDir are left untouched.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", fmt.Errorf("resolving source directory: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	rewrite := func(attr string) func(int, *goquery.Selection) {
		return func(_ int, s *goquery.Selection) {
			val, _ := s.Attr(attr)
			if !isRelativePath(val) {
				return
			}
			abs := filepath.Join(absDir, val)
			if !isPathUnderDir(abs, absDir) {
				return
			}
			s.SetAttr(attr, (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String())
		}
	}
	doc.Find("img[src]").Each(rewrite("src"))
	doc.Find("a[href]").Each(rewrite("href"))

	return doc.Html()
}

// isRelativePath reports whether path is a relative filesystem path, as
// opposed to a URL, an anchor, or an absolute path.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(path)
}

func isPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
