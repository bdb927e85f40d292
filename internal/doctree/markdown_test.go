package doctree

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

func parseMarkdown(t *testing.T, src string) []Node {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	return MarkdownFootnotes(doc, source)
}

// collectLinks returns every run link in depth-first order.
func collectLinks(n Node) []string {
	var out []string
	switch v := n.(type) {
	case *Container:
		for _, c := range v.Children {
			out = append(out, collectLinks(c)...)
		}
	case *Text:
		for _, r := range v.Runs {
			if r.Link != "" {
				out = append(out, r.Link)
			}
		}
	}
	return out
}

// collectText returns the literal characters of every Text node.
func collectText(n Node) string {
	switch v := n.(type) {
	case *Container:
		var parts []string
		for _, c := range v.Children {
			parts = append(parts, collectText(c))
		}
		return strings.Join(parts, "|")
	case *Text:
		return v.String()
	}
	return ""
}

func TestMarkdownFootnotes(t *testing.T) {
	t.Parallel()

	t.Run("no footnotes", func(t *testing.T) {
		t.Parallel()
		got := parseMarkdown(t, "# Title\n\nJust text with https://body.example/ in it.\n")
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("footnotes follow reference order", func(t *testing.T) {
		t.Parallel()
		src := "First[^b] then[^a].\n\n" +
			"[^a]: Alpha https://a.example/\n" +
			"[^b]: Beta https://b.example/\n"
		got := parseMarkdown(t, src)
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if !strings.Contains(collectText(got[0]), "Beta") {
			t.Errorf("first footnote = %q, want Beta", collectText(got[0]))
		}
		if !strings.Contains(collectText(got[1]), "Alpha") {
			t.Errorf("second footnote = %q, want Alpha", collectText(got[1]))
		}
	})

	t.Run("unreferenced footnotes are dropped", func(t *testing.T) {
		t.Parallel()
		src := "Text[^used].\n\n[^used]: Used.\n[^orphan]: Orphan https://orphan.example/\n"
		got := parseMarkdown(t, src)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("links carry their destination", func(t *testing.T) {
		t.Parallel()
		src := "Ref[^1].\n\n[^1]: See [the docs](https://docs.example/guide) and <https://auto.example/>.\n"
		got := parseMarkdown(t, src)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		want := []string{"https://docs.example/guide", "https://auto.example/"}
		if links := collectLinks(got[0]); !reflect.DeepEqual(links, want) {
			t.Errorf("links = %v, want %v", links, want)
		}
		if txt := collectText(got[0]); !strings.Contains(txt, "the docs") {
			t.Errorf("text = %q, want link label included", txt)
		}
	})

	t.Run("nested blocks become containers", func(t *testing.T) {
		t.Parallel()
		src := "Ref[^1].\n\n[^1]: Intro\n\n    - item https://list.example/\n    - other\n"
		got := parseMarkdown(t, src)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		root, ok := got[0].(*Container)
		if !ok {
			t.Fatalf("footnote type = %T, want *Container", got[0])
		}
		var hasContainer bool
		for _, c := range root.Children {
			if _, ok := c.(*Container); ok {
				hasContainer = true
			}
		}
		if !hasContainer {
			t.Errorf("children = %#v, want a nested container for the list", root.Children)
		}
		if txt := collectText(got[0]); !strings.Contains(txt, "https://list.example/") {
			t.Errorf("text = %q, want list URL", txt)
		}
	})

	t.Run("code spans keep their literal text", func(t *testing.T) {
		t.Parallel()
		src := "Ref[^1].\n\n[^1]: Run `curl https://code.example/x` now.\n"
		got := parseMarkdown(t, src)
		if txt := collectText(got[0]); !strings.Contains(txt, "https://code.example/x") {
			t.Errorf("text = %q, want code span URL", txt)
		}
	})
}

func TestContainerAppend(t *testing.T) {
	t.Parallel()

	c := &Container{}
	c.Append(nil)
	c.Append(&Container{})
	c.Append(&Text{})
	c.Append(&Text{Runs: []Run{{Text: "x"}}})
	if len(c.Children) != 1 {
		t.Errorf("len = %d, want 1 (empty nodes ignored)", len(c.Children))
	}
}

func TestTextAddMergesRuns(t *testing.T) {
	t.Parallel()

	var txt Text
	txt.add("a", "")
	txt.add("b", "")
	txt.add("c", "https://x.example/")
	txt.add("d", "https://x.example/")
	txt.add("", "")
	want := []Run{{Text: "ab"}, {Text: "cd", Link: "https://x.example/"}}
	if !reflect.DeepEqual(txt.Runs, want) {
		t.Errorf("runs = %#v, want %#v", txt.Runs, want)
	}
	if txt.String() != "abcd" {
		t.Errorf("String() = %q, want %q", txt.String(), "abcd")
	}
}
