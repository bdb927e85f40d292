package qrtable

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/alnah/go-qrtable/internal/doctree"
	"github.com/alnah/go-qrtable/internal/pipeline"
)

// urlPattern matches scheme://... up to whitespace, brackets or quotes.
var urlPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.-]*://[^\s<>()\[\]{}"']+`)

// ExtractURLs returns the unique http(s) URLs found in footnotes, in order of
// first occurrence. Each footnote is walked depth-first. Within a text node,
// hyperlink targets come before URLs matched in the text itself.
func ExtractURLs(footnotes []Node) []string {
	var (
		urls []string
		seen = make(map[string]struct{})
	)
	add := func(raw string) {
		if !isHTTPURL(raw) {
			return
		}
		u := normalizeURL(raw)
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Container:
			for _, child := range n.Children {
				walk(child)
			}
		case *Text:
			for _, run := range n.Runs {
				if run.Link != "" {
					add(run.Link)
				}
			}
			for _, m := range urlPattern.FindAllString(n.String(), -1) {
				add(m)
			}
		}
	}
	for _, fn := range footnotes {
		walk(fn)
	}
	return urls
}

// isHTTPURL reports whether raw has an http or https scheme.
func isHTTPURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	i := strings.Index(raw, "://")
	if i < 0 {
		return false
	}
	scheme := strings.ToLower(raw[:i])
	return scheme == "http" || scheme == "https"
}

// normalizeURL trims raw and re-serializes it through net/url. Unparseable
// input is returned trimmed.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}

// MarkdownURLs parses markdown and returns the URLs of its footnotes.
func MarkdownURLs(ctx context.Context, markdown string) ([]string, error) {
	parsed, err := pipeline.NewGoldmarkConverter().Parse(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}
	return ExtractURLs(doctree.MarkdownFootnotes(parsed.Doc, parsed.Source)), nil
}

// DocxURLs returns the URLs of the footnotes of the .docx file at path.
func DocxURLs(path string) ([]string, error) {
	footnotes, err := doctree.ReadDocxFootnotes(path)
	if err != nil {
		return nil, err
	}
	return ExtractURLs(footnotes), nil
}
