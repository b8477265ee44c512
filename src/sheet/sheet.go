// backend/src/sheet/sheet.go
package sheet

import "strings"

// Cell is one decoded spreadsheet cell: the raw display text, a numeric
// value when the cell parsed as a number, and the percent display-format
// hint carried over from the source file. No business logic lives here.
type Cell struct {
	Raw        string
	Number     float64
	IsNumber   bool
	PercentFmt bool
}

// Text returns the trimmed cell text.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Raw)
}

// IsEmpty reports whether the cell holds nothing but whitespace.
func (c Cell) IsEmpty() bool {
	return c.Text() == ""
}

// Grid is the rectangular cell grid of one sheet. It is owned by a single
// processing pass and discarded after canonicalization.
type Grid struct {
	Name string
	Rows [][]Cell
}

// Cell returns the cell at (row, col), or a zero Cell when the coordinates
// fall outside the ragged row.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) {
		return Cell{}
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// FirstNonEmptyRow returns the index of the first row with any content,
// or -1 for a blank sheet.
func (g *Grid) FirstNonEmptyRow() int {
	for i, row := range g.Rows {
		for _, c := range row {
			if !c.IsEmpty() {
				return i
			}
		}
	}
	return -1
}

// RowText joins the non-empty cells of a row into one lowercased string,
// used by row-level pattern checks.
func (g *Grid) RowText(row int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	var parts []string
	for _, c := range g.Rows[row] {
		if !c.IsEmpty() {
			parts = append(parts, c.Text())
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
