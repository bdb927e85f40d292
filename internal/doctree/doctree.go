// Package doctree models footnote content as a small tagged tree.
//
// A footnote is a Container whose children are either nested Containers
// (lists, block quotes, table cells) or Text nodes. A Text node holds the
// character runs of one paragraph; each run may carry the hyperlink target
// it was anchored to.
//
// Readers convert host documents into this shape:
//
//	footnotes := doctree.MarkdownFootnotes(doc, source) // goldmark AST
//	footnotes, err := doctree.ReadDocxFootnotes("report.docx")
package doctree

import "strings"

// Node is a footnote content node. The set of implementations is closed:
// *Container and *Text.
type Node interface {
	node()
}

// Container is a node with ordered children.
type Container struct {
	Children []Node
}

// Text is a text-bearing node made of character runs.
type Text struct {
	Runs []Run
}

// Run is a span of literal characters with an optional hyperlink target.
type Run struct {
	Text string
	Link string // empty when the run is not hyperlinked
}

func (*Container) node() {}
func (*Text) node()      {}

// String returns the literal characters of all runs.
func (t *Text) String() string {
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Append adds child to c, ignoring nil and empty nodes.
func (c *Container) Append(child Node) {
	switch n := child.(type) {
	case *Container:
		if n == nil || len(n.Children) == 0 {
			return
		}
	case *Text:
		if n == nil || len(n.Runs) == 0 {
			return
		}
	case nil:
		return
	}
	c.Children = append(c.Children, child)
}

// add appends a run, merging it into the previous one when both share the
// same link target.
func (t *Text) add(text, link string) {
	if text == "" && link == "" {
		return
	}
	if n := len(t.Runs); n > 0 && t.Runs[n-1].Link == link {
		t.Runs[n-1].Text += text
		return
	}
	t.Runs = append(t.Runs, Run{Text: text, Link: link})
}
