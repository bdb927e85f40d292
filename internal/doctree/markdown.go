package doctree

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// MarkdownFootnotes returns one Container per footnote of a goldmark
// document parsed with extension.Footnote, in the order goldmark numbers
// them (first reference order). Footnotes that are never referenced are
// dropped by goldmark and therefore absent here.
func MarkdownFootnotes(doc ast.Node, source []byte) []Node {
	var list ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == extast.KindFootnoteList {
			list = n
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if list == nil {
		return nil
	}

	var footnotes []Node
	for fn := list.FirstChild(); fn != nil; fn = fn.NextSibling() {
		if fn.Kind() != extast.KindFootnote {
			continue
		}
		c := &Container{}
		for child := fn.FirstChild(); child != nil; child = child.NextSibling() {
			c.Append(markdownBlock(child, source))
		}
		footnotes = append(footnotes, c)
	}
	return footnotes
}

// markdownBlock converts a block node. Blocks holding inline content become
// Text nodes; code blocks become Text nodes of their raw lines; everything
// else becomes a Container of its converted children.
func markdownBlock(n ast.Node, source []byte) Node {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		t := &Text{}
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			t.add(string(seg.Value(source)), "")
		}
		return t
	}

	if fc := n.FirstChild(); fc != nil && fc.Type() == ast.TypeInline {
		t := &Text{}
		markdownInline(t, n, source, "")
		return t
	}

	c := &Container{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.Append(markdownBlock(child, source))
	}
	return c
}

// markdownInline appends the runs of n's inline children to t. link is the
// hyperlink target inherited from an enclosing link node.
func markdownInline(t *Text, n ast.Node, source []byte, link string) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *ast.Text:
			t.add(string(v.Segment.Value(source)), link)
			if v.SoftLineBreak() || v.HardLineBreak() {
				t.add("\n", link)
			}
		case *ast.String:
			t.add(string(v.Value), link)
		case *ast.Link:
			markdownInline(t, v, source, string(v.Destination))
		case *ast.AutoLink:
			url := string(v.URL(source))
			if v.AutoLinkType == ast.AutoLinkURL {
				t.add(url, url)
			} else {
				t.add(url, link)
			}
		case *ast.RawHTML:
			// Inline tags carry no characters of their own.
		case *extast.FootnoteLink, *extast.FootnoteBacklink:
			// Cross references between footnotes are not content.
		default:
			markdownInline(t, child, source, link)
		}
	}
}
