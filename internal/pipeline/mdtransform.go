package pipeline

import (
	"context"
	"regexp"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// Preprocessor normalizes Markdown before parsing.
type Preprocessor struct{}

// PreprocessMarkdown converts \r\n and \r to \n and limits consecutive blank
// lines to one.
func (p *Preprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
