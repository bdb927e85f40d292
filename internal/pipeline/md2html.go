package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ErrHTMLConversion wraps goldmark renderer failures.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate is the page shell around goldmark's body fragment.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>References</title>
</head>
<body>
%s
</body>
</html>`

// Parsed is a Markdown document parsed once and shared between URL
// extraction and HTML rendering.
type Parsed struct {
	Doc    ast.Node
	Source []byte
}

// MarkdownConverter parses Markdown once and renders the same tree later.
type MarkdownConverter interface {
	Parse(ctx context.Context, content string) (*Parsed, error)
	Render(ctx context.Context, doc *Parsed) (string, error)
}

// GoldmarkConverter is the goldmark-backed MarkdownConverter.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// Raw HTML stays escaped; the table is spliced in after rendering.
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &GoldmarkConverter{md: md}
}

// Parse builds the goldmark AST for content.
func (c *GoldmarkConverter) Parse(ctx context.Context, content string) (*Parsed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := []byte(content)
	doc := c.md.Parser().Parse(text.NewReader(source))
	return &Parsed{Doc: doc, Source: source}, nil
}

func (c *GoldmarkConverter) renderBody(doc *Parsed) (string, error) {
	var body bytes.Buffer
	if err := c.md.Renderer().Render(&body, doc.Source, doc.Doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return fmt.Sprintf(htmlTemplate, body.String()), nil
}

// Render produces a standalone HTML5 document from doc. goldmark ignores
// contexts, so the render runs on its own goroutine and Render returns as
// soon as ctx is done.
func (c *GoldmarkConverter) Render(ctx context.Context, doc *Parsed) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		out    string
		outErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		out, outErr = c.renderBody(doc)
	}()

	select {
	case <-finished:
		return out, outErr
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
