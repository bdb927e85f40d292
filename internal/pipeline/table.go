package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Sentinel errors for table injection.
var (
	ErrPlaceholderNotFound = errors.New("placeholder not found")
	ErrInvalidCellRange    = errors.New("cell range outside table")
	ErrTableRender         = errors.New("table rendering failed")
)

// TableColumns is the fixed column count of the reference table.
const TableColumns = 3

// footnotesSelector matches the section goldmark renders footnotes into.
const footnotesSelector = ".footnotes"

// CellOpKind identifies a formatting operation on a cell range.
type CellOpKind int

const (
	CellMerge CellOpKind = iota
	CellAlignMiddle
)

// CellOp is a formatting operation on a rectangular cell range.
type CellOp struct {
	Kind    CellOpKind
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// TableRow holds the content of one logical entry (two physical rows).
type TableRow struct {
	Ref   string
	Title string
	URL   string
	QR    template.URL // data: URI of the QR image; empty when unavailable
}

// TableData is everything needed to render the reference table.
type TableData struct {
	Rows          []TableRow
	Ops           []CellOp
	QRWidth       int    // rendered QR width in CSS pixels
	FailureMarker string // shown in the QR cell when QR is empty
}

// tableCell is one physical cell after the operations have been applied.
type tableCell struct {
	Class    string
	Text     string
	Href     string
	ImgSrc   template.URL
	ImgWidth int
	RowSpan  int
	ColSpan  int
	Middle   bool
	covered  bool
}

var tableTemplate = template.Must(template.New("table").Parse(`<table class="qr-references">
{{- range .}}
<tr>
{{- range .}}
<td class="{{.Class}}"{{if gt .RowSpan 1}} rowspan="{{.RowSpan}}"{{end}}{{if gt .ColSpan 1}} colspan="{{.ColSpan}}"{{end}}{{if .Middle}} style="vertical-align: middle"{{end}}>
{{- if .ImgSrc}}<img src="{{.ImgSrc}}" width="{{.ImgWidth}}" height="{{.ImgWidth}}" alt="{{.Text}}"/>
{{- else if .Href}}<a href="{{.Href}}">{{.Text}}</a>
{{- else}}{{.Text}}{{end -}}
</td>
{{- end}}
</tr>
{{- end}}
</table>`))

// TableInjector places the reference table into a rendered document.
type TableInjector interface {
	LocatePlaceholder(ctx context.Context, htmlContent, placeholder string) error
	InjectTable(ctx context.Context, htmlContent, placeholder string, data *TableData) (string, error)
}

// TableInjection implements TableInjector with goquery.
type TableInjection struct{}

// LocatePlaceholder returns ErrPlaceholderNotFound when no body paragraph
// outside the footnotes contains placeholder.
func (t *TableInjection) LocatePlaceholder(ctx context.Context, htmlContent, placeholder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}
	if findPlaceholder(doc, placeholder) == nil {
		return fmt.Errorf("%w: %q", ErrPlaceholderNotFound, placeholder)
	}
	return nil
}

// InjectTable renders data as a table and puts it where the placeholder is.
// A paragraph consisting only of the placeholder is replaced by the table.
// Otherwise the placeholder literal is removed from the paragraph and the
// table is inserted right after it.
func (t *TableInjection) InjectTable(ctx context.Context, htmlContent, placeholder string, data *TableData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tableHTML, err := RenderTable(data)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	target := findPlaceholder(doc, placeholder)
	if target == nil {
		return "", fmt.Errorf("%w: %q", ErrPlaceholderNotFound, placeholder)
	}

	if strings.TrimSpace(target.Text()) == placeholder || !removeLiteral(target.Get(0), placeholder) {
		target.ReplaceWithHtml(tableHTML)
	} else {
		target.AfterHtml(tableHTML)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return out, nil
}

// RenderTable applies data.Ops to a 3-column grid of 2*len(Rows) rows and
// renders it as an HTML table. Merges become rowspan/colspan on the range's
// top-left cell and hide the rest of the range; alignment sets
// vertical-align on every cell of the range.
func RenderTable(data *TableData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("%w: no table data", ErrTableRender)
	}

	grid := make([][]tableCell, 2*len(data.Rows))
	for i, row := range data.Rows {
		qr := tableCell{Class: "qr-code", ImgSrc: row.QR, ImgWidth: data.QRWidth, Text: "QR " + row.Ref}
		if row.QR == "" {
			qr = tableCell{Class: "qr-code qr-missing", Text: data.FailureMarker}
		}
		grid[2*i] = []tableCell{
			{Class: "qr-ref", Text: row.Ref},
			{Class: "qr-title", Text: row.Title},
			qr,
		}
		grid[2*i+1] = []tableCell{
			{Class: "qr-ref"},
			{Class: "qr-url", Text: row.URL, Href: row.URL},
			{Class: "qr-url"},
		}
	}
	for r := range grid {
		for c := range grid[r] {
			grid[r][c].RowSpan, grid[r][c].ColSpan = 1, 1
		}
	}

	for _, op := range data.Ops {
		if op.RowSpan < 1 || op.ColSpan < 1 || op.Row < 0 || op.Col < 0 ||
			op.Row+op.RowSpan > len(grid) || op.Col+op.ColSpan > TableColumns {
			return "", fmt.Errorf("%w: row %d col %d span %dx%d", ErrInvalidCellRange, op.Row, op.Col, op.RowSpan, op.ColSpan)
		}
		for r := op.Row; r < op.Row+op.RowSpan; r++ {
			for c := op.Col; c < op.Col+op.ColSpan; c++ {
				switch op.Kind {
				case CellMerge:
					if r != op.Row || c != op.Col {
						grid[r][c].covered = true
					}
				case CellAlignMiddle:
					grid[r][c].Middle = true
				}
			}
		}
		if op.Kind == CellMerge {
			grid[op.Row][op.Col].RowSpan = op.RowSpan
			grid[op.Row][op.Col].ColSpan = op.ColSpan
		}
	}

	visible := make([][]tableCell, len(grid))
	for r, row := range grid {
		for _, cell := range row {
			if !cell.covered {
				visible[r] = append(visible[r], cell)
			}
		}
	}

	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, visible); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTableRender, err)
	}
	return buf.String(), nil
}

// findPlaceholder returns the first body paragraph outside the footnotes
// whose text contains placeholder, or nil.
func findPlaceholder(doc *goquery.Document, placeholder string) *goquery.Selection {
	if placeholder == "" {
		return nil
	}
	var target *goquery.Selection
	doc.Find("body p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Closest(footnotesSelector).Length() > 0 {
			return true
		}
		if strings.Contains(s.Text(), placeholder) {
			target = s
			return false
		}
		return true
	})
	return target
}

// removeLiteral deletes the first occurrence of literal from the first text
// node under n that contains it. It reports false when the literal is split
// across several nodes.
func removeLiteral(n *html.Node, literal string) bool {
	if n.Type == html.TextNode && strings.Contains(n.Data, literal) {
		n.Data = strings.Replace(n.Data, literal, "", 1)
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if removeLiteral(c, literal) {
			return true
		}
	}
	return false
}
