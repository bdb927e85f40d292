package doctree

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// OOXML namespaces and part names used by the footnote reader.
const (
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	footnotesPart     = "word/footnotes.xml"
	footnotesRelsPart = "word/_rels/footnotes.xml.rels"

	// maxPartSize caps how much of a single archive member is read.
	maxPartSize = 32 << 20
)

// ErrNotDocx is returned when the input is not a readable .docx archive.
var ErrNotDocx = errors.New("not a valid docx archive")

// fieldHyperlink extracts the target of a HYPERLINK field instruction.
var fieldHyperlink = regexp.MustCompile(`(?i)HYPERLINK\s+"([^"]+)"`)

// relationshipsXML maps relationship IDs to targets.
type relationshipsXML struct {
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// ReadDocxFootnotes opens a .docx file and returns its footnotes in
// document order. Separator footnotes are skipped. A document without a
// footnotes part yields an empty slice.
func ReadDocxFootnotes(path string) ([]Node, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	defer func() { _ = r.Close() }()
	return docxFootnotes(&r.Reader)
}

// ParseDocxFootnotes is ReadDocxFootnotes for an in-memory archive.
func ParseDocxFootnotes(data []byte) ([]Node, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	return docxFootnotes(r)
}

func docxFootnotes(r *zip.Reader) ([]Node, error) {
	notes, err := readPart(r, footnotesPart)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		return nil, nil
	}

	links := map[string]string{}
	if relsData, err := readPart(r, footnotesRelsPart); err != nil {
		return nil, err
	} else if relsData != nil {
		var rels relationshipsXML
		if err := xml.Unmarshal(relsData, &rels); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", footnotesRelsPart, err)
		}
		for _, rel := range rels.Relationships {
			links[rel.ID] = rel.Target
		}
	}

	return parseFootnotesXML(notes, links)
}

// readPart returns the content of the named archive member, or nil when the
// member does not exist.
func readPart(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

// complexField tracks a w:fldChar begin/separate/end field.
type complexField struct {
	instr  strings.Builder
	linked bool
}

// parseFootnotesXML walks the token stream of word/footnotes.xml. Tables
// and their rows and cells become nested Containers, paragraphs become Text
// nodes, and runs inside w:hyperlink, w:fldSimple or the result of a
// HYPERLINK complex field carry the link target. A paragraph nested in
// another one (text boxes) is emitted where it starts, splitting the outer
// paragraph so document order is kept.
func parseFootnotesXML(data []byte, links map[string]string) ([]Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		footnotes []Node
		stack     []*Container
		paras     []*Text
		inText    bool
		inInstr   bool
		linkStack []string
		fields    []*complexField
	)

	currentLink := func() string {
		if len(linkStack) == 0 {
			return ""
		}
		return linkStack[len(linkStack)-1]
	}
	para := func() *Text {
		if len(paras) == 0 {
			return nil
		}
		return paras[len(paras)-1]
	}
	emit := func(t *Text) {
		if len(stack) > 0 {
			stack[len(stack)-1].Append(t)
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", footnotesPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "footnote":
				if isSeparator(t) {
					if err := dec.Skip(); err != nil {
						return nil, fmt.Errorf("parsing %s: %w", footnotesPart, err)
					}
					continue
				}
				stack = []*Container{{}}
				paras, linkStack, fields = nil, nil, nil
			case "tbl", "tr", "tc":
				if len(stack) > 0 {
					stack = append(stack, &Container{})
				}
			case "p":
				if len(stack) == 0 {
					continue
				}
				if outer := para(); outer != nil && len(outer.Runs) > 0 {
					emit(outer)
					paras[len(paras)-1] = &Text{}
				}
				paras = append(paras, &Text{})
			case "hyperlink":
				linkStack = append(linkStack, relTarget(t, links))
			case "fldSimple":
				target := ""
				for _, a := range t.Attr {
					if a.Name.Local == "instr" {
						target = hyperlinkTarget(a.Value)
					}
				}
				linkStack = append(linkStack, target)
			case "fldChar":
				fields, linkStack = fieldChar(t, fields, linkStack)
			case "instrText":
				inInstr = len(fields) > 0
			case "t":
				inText = para() != nil
			case "tab":
				if p := para(); p != nil {
					p.add("\t", currentLink())
				}
			case "br", "cr":
				if p := para(); p != nil {
					p.add("\n", currentLink())
				}
			}

		case xml.CharData:
			switch {
			case inInstr:
				fields[len(fields)-1].instr.Write(t)
			case inText:
				para().add(string(t), currentLink())
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "instrText":
				inInstr = false
			case "hyperlink", "fldSimple":
				if len(linkStack) > 0 {
					linkStack = linkStack[:len(linkStack)-1]
				}
			case "p":
				if p := para(); p != nil {
					emit(p)
					paras = paras[:len(paras)-1]
				}
			case "tbl", "tr", "tc":
				if len(stack) > 1 {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					stack[len(stack)-1].Append(top)
				}
			case "footnote":
				if len(stack) > 0 {
					footnotes = append(footnotes, stack[0])
				}
				stack = nil
			}
		}
	}

	return footnotes, nil
}

// fieldChar applies a w:fldChar marker. The result of a HYPERLINK field,
// between "separate" and "end", is linked to the field's target.
func fieldChar(el xml.StartElement, fields []*complexField, linkStack []string) ([]*complexField, []string) {
	kind := ""
	for _, a := range el.Attr {
		if a.Name.Local == "fldCharType" {
			kind = strings.ToLower(a.Value)
		}
	}
	switch kind {
	case "begin":
		fields = append(fields, &complexField{})
	case "separate":
		if len(fields) > 0 {
			f := fields[len(fields)-1]
			if target := hyperlinkTarget(f.instr.String()); target != "" && !f.linked {
				linkStack = append(linkStack, target)
				f.linked = true
			}
		}
	case "end":
		if len(fields) > 0 {
			if fields[len(fields)-1].linked && len(linkStack) > 0 {
				linkStack = linkStack[:len(linkStack)-1]
			}
			fields = fields[:len(fields)-1]
		}
	}
	return fields, linkStack
}

// hyperlinkTarget returns the URL of a HYPERLINK field instruction, or "".
func hyperlinkTarget(instr string) string {
	if m := fieldHyperlink.FindStringSubmatch(instr); m != nil {
		return m[1]
	}
	return ""
}

// isSeparator reports whether a w:footnote element is one of Word's
// separator pseudo-footnotes.
func isSeparator(el xml.StartElement) bool {
	for _, a := range el.Attr {
		if a.Name.Local == "type" {
			v := strings.ToLower(a.Value)
			return v == "separator" || v == "continuationseparator" || v == "continuationnotice"
		}
	}
	return false
}

// relTarget resolves the r:id attribute of el to its relationship target.
func relTarget(el xml.StartElement, links map[string]string) string {
	for _, a := range el.Attr {
		if a.Name.Space == nsRelationships && a.Name.Local == "id" {
			return links[a.Value]
		}
	}
	return ""
}
