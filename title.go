package qrtable

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alnah/go-qrtable/internal/fetch"
)

// maxTitleBody caps how much of a page is scanned for <title>.
const maxTitleBody = 2 << 20

var (
	titlePattern   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// titleEntities are decoded in this order, one pass each.
var titleEntities = [][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&quot;", `"`},
}

// TitleResolver looks up the <title> of web pages.
type TitleResolver struct {
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// NewTitleResolver creates a TitleResolver. A nil logger discards output.
func NewTitleResolver(fetcher *fetch.Fetcher, logger *slog.Logger) *TitleResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TitleResolver{fetcher: fetcher, logger: logger}
}

// Resolve fetches url and returns its cleaned title, or "" when the page
// cannot be fetched, has a status outside [200,400), or has no usable title.
func (r *TitleResolver) Resolve(ctx context.Context, url string) string {
	resp, err := r.fetcher.Get(ctx, url, "text/html,application/xhtml+xml,*/*;q=0.8", maxTitleBody)
	if err != nil {
		r.logger.DebugContext(ctx, "title lookup failed", "url", url, "error", err)
		return ""
	}
	title := extractTitle(resp.Body)
	if title == "" {
		r.logger.DebugContext(ctx, "no title found", "url", url)
	}
	return title
}

// extractTitle returns the cleaned content of the first <title> element.
func extractTitle(body []byte) string {
	m := titlePattern.FindSubmatch(body)
	if m == nil {
		return ""
	}
	title := cleanTitle(string(m[1]))
	if strings.TrimSpace(title) == "" {
		return ""
	}
	return title
}

// cleanTitle collapses whitespace, trims, and decodes a fixed set of
// entities sequentially. "&amp;lt;" therefore decodes to "<".
func cleanTitle(s string) string {
	s = strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
	for _, e := range titleEntities {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return s
}
