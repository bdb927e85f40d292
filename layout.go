package qrtable

import "github.com/alnah/go-qrtable/internal/pipeline"

// TableColumns is the column count of the reference table:
// ref, title and QR on the top row; ref and URL on the bottom row.
const TableColumns = pipeline.TableColumns

// Op is a cell formatting operation.
type Op int

const (
	OpMerge Op = iota
	OpAlignMiddle
)

func (o Op) String() string {
	switch o {
	case OpMerge:
		return "merge"
	case OpAlignMiddle:
		return "align-middle"
	default:
		return "unknown"
	}
}

// Range is a rectangular block of cells.
type Range struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// Cell is a single table cell position.
type Cell struct {
	Row int
	Col int
}

// Instruction applies Op to Range.
type Instruction struct {
	Op    Op
	Range Range
}

// MergePlan is the ordered list of formatting instructions for a table.
type MergePlan []Instruction

// PlanLayout returns the formatting plan for a table of entryCount entries.
// Entry i occupies rows 2i (top) and 2i+1 (bottom) and gets four
// instructions: merge the ref cell down both rows, merge the URL across
// columns 1-2 of the bottom row, then middle-align the ref range and the
// title+QR range of the top row. Use AlignedCells for the per-cell view,
// which lists the ref, title and QR cells of each entry.
func PlanLayout(entryCount int) MergePlan {
	if entryCount <= 0 {
		return MergePlan{}
	}
	plan := make(MergePlan, 0, 4*entryCount)
	for i := 0; i < entryCount; i++ {
		top, bottom := 2*i, 2*i+1
		ref := Range{Row: top, Col: 0, RowSpan: 2, ColSpan: 1}
		plan = append(plan,
			Instruction{Op: OpMerge, Range: ref},
			Instruction{Op: OpMerge, Range: Range{Row: bottom, Col: 1, RowSpan: 1, ColSpan: 2}},
			Instruction{Op: OpAlignMiddle, Range: ref},
			Instruction{Op: OpAlignMiddle, Range: Range{Row: top, Col: 1, RowSpan: 1, ColSpan: 2}},
		)
	}
	return plan
}

// Merges returns the merge instructions in order.
func (p MergePlan) Merges() []Instruction {
	return p.filter(OpMerge)
}

// Alignments returns the alignment instructions in order.
func (p MergePlan) Alignments() []Instruction {
	return p.filter(OpAlignMiddle)
}

// AlignedCells lists the distinct logical cells that are middle-aligned.
// A merged range counts as one cell.
func (p MergePlan) AlignedCells() []Cell {
	merged := make(map[Cell]Range)
	for _, in := range p.Merges() {
		merged[Cell{in.Range.Row, in.Range.Col}] = in.Range
	}
	var cells []Cell
	seen := make(map[Cell]bool)
	for _, in := range p.Alignments() {
		r := in.Range
		if m, ok := merged[Cell{r.Row, r.Col}]; ok && m == r {
			if c := (Cell{r.Row, r.Col}); !seen[c] {
				seen[c] = true
				cells = append(cells, c)
			}
			continue
		}
		for row := r.Row; row < r.Row+r.RowSpan; row++ {
			for col := r.Col; col < r.Col+r.ColSpan; col++ {
				if c := (Cell{row, col}); !seen[c] {
					seen[c] = true
					cells = append(cells, c)
				}
			}
		}
	}
	return cells
}

func (p MergePlan) filter(op Op) []Instruction {
	var out []Instruction
	for _, in := range p {
		if in.Op == op {
			out = append(out, in)
		}
	}
	return out
}

// cellOps converts the plan to the table renderer's operations.
func (p MergePlan) cellOps() []pipeline.CellOp {
	ops := make([]pipeline.CellOp, len(p))
	for i, in := range p {
		kind := pipeline.CellMerge
		if in.Op == OpAlignMiddle {
			kind = pipeline.CellAlignMiddle
		}
		ops[i] = pipeline.CellOp{
			Kind:    kind,
			Row:     in.Range.Row,
			Col:     in.Range.Col,
			RowSpan: in.Range.RowSpan,
			ColSpan: in.Range.ColSpan,
		}
	}
	return ops
}
