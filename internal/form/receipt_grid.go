package form

import (
	"strconv"

	"github.com/mesh-intelligence/bbd/internal/grid"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

// Grid column titles, in display order.
const (
	ColumnReceipt  = "Receipt Number"
	ColumnItem     = "Item Number"
	ColumnTracking = "BBD"
	ColumnRowID    = "DEX_ROW_ID"
)

// ReceiptGrid maps receipt lines onto a generic grid. Rows are keyed by row
// id and the line behind each row is kept so an edit targets the row id the
// store returned, not a reparsed cell.
type ReceiptGrid struct {
	grid  *grid.Grid
	lines map[string]types.ReceiptLine
}

// NewReceiptGrid returns an empty grid with the four receipt columns.
func NewReceiptGrid() *ReceiptGrid {
	return &ReceiptGrid{
		grid: grid.New(
			grid.Column{Title: ColumnReceipt, Width: 20},
			grid.Column{Title: ColumnItem, Width: 31},
			grid.Column{Title: ColumnTracking, Width: 31},
			grid.Column{Title: ColumnRowID, Width: 12},
		),
		lines: make(map[string]types.ReceiptLine),
	}
}

// Insert adds a line as a new row.
func (g *ReceiptGrid) Insert(line types.ReceiptLine) error {
	id := strconv.FormatInt(line.RowID, 10)
	if err := g.grid.Insert(id, line.ReceiptNumber, line.ItemNumber, line.Tracking, id); err != nil {
		return err
	}
	g.lines[id] = line
	return nil
}

// Lines returns the displayed lines in display order.
func (g *ReceiptGrid) Lines() []types.ReceiptLine {
	rows := g.grid.Rows()
	out := make([]types.ReceiptLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, g.lines[r.Key])
	}
	return out
}

// Len returns the number of displayed rows.
func (g *ReceiptGrid) Len() int { return g.grid.Len() }

// Clear empties the grid.
func (g *ReceiptGrid) Clear() {
	g.grid.Clear()
	g.lines = make(map[string]types.ReceiptLine)
}

// Select marks the row at index i as selected.
func (g *ReceiptGrid) Select(i int) error { return g.grid.Select(i) }

// Deselect clears the selection.
func (g *ReceiptGrid) Deselect() { g.grid.Deselect() }

// Selected returns the line behind the selected row.
func (g *ReceiptGrid) Selected() (types.ReceiptLine, bool) {
	row, ok := g.grid.Selected()
	if !ok {
		return types.ReceiptLine{}, false
	}
	line, ok := g.lines[row.Key]
	return line, ok
}

// IndexOf returns the display position of the line with the given row id.
func (g *ReceiptGrid) IndexOf(rowID int64) (int, bool) {
	return g.grid.Index(strconv.FormatInt(rowID, 10))
}

// Sort orders the rows by column col, one of the four receipt columns in
// display order.
func (g *ReceiptGrid) Sort(col int, desc bool) error { return g.grid.Sort(col, desc) }

// Grid exposes the underlying generic grid for rendering.
func (g *ReceiptGrid) Grid() *grid.Grid { return g.grid }
