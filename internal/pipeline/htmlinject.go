package pipeline

import (
	"context"
	"strings"
)

// DefaultTableCSS styles the reference table. User CSS is appended after it
// and can override any rule.
const DefaultTableCSS = `table.qr-references { border-collapse: collapse; width: 100%; page-break-inside: auto; }
table.qr-references td { border: 1px solid #999; padding: 4px 8px; }
table.qr-references tr { page-break-inside: avoid; }
table.qr-references td.qr-ref { width: 3em; text-align: center; font-family: monospace; font-weight: bold; }
table.qr-references td.qr-title { font-weight: bold; }
table.qr-references td.qr-code { width: 1%; text-align: center; }
table.qr-references td.qr-url { font-size: 0.85em; word-break: break-all; }
table.qr-references td.qr-missing { color: #a00; font-style: italic; }
`

// CSSInjector adds a stylesheet to an HTML document.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection places CSS in a <style> element.
type CSSInjection struct{}

// InjectCSS puts the style element just before </head>. Without a head it
// goes right after the <body> tag, and failing that at the very start.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}
	style := "<style>" + escapeStyleClose(cssContent) + "</style>"
	at := styleInsertionPoint(htmlContent)
	return htmlContent[:at] + style + htmlContent[at:]
}

func styleInsertionPoint(doc string) int {
	lower := strings.ToLower(doc)
	if i := strings.Index(lower, "</head>"); i >= 0 {
		return i
	}
	if i := strings.Index(lower, "<body"); i >= 0 {
		if end := strings.IndexByte(doc[i:], '>'); end >= 0 {
			return i + end + 1
		}
	}
	return 0
}

// escapeStyleClose keeps user CSS from terminating the style element early.
func escapeStyleClose(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
