// Package grid is a generic keyed table of string cells with at most one
// selected row. It knows nothing about what the rows mean; domain adapters
// map their records onto it. It renders as a bubbles table for the
// interactive form and as a lipgloss table for plain output.
package grid

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

// Grid errors.
var (
	ErrDuplicateKey = errors.New("duplicate row key")
	ErrCellCount    = errors.New("cell count does not match columns")
	ErrOutOfRange   = errors.New("row index out of range")
)

// Column is a grid heading and its display width.
type Column struct {
	Title string
	Width int
}

// Row is one grid row. Key is unique within the grid.
type Row struct {
	Key   string
	Cells []string
}

// Grid holds the rows in insertion order.
type Grid struct {
	columns  []Column
	rows     []Row
	keys     map[string]int
	selected int // -1 when nothing is selected
}

// New returns an empty grid with the given columns.
func New(columns ...Column) *Grid {
	return &Grid{
		columns:  columns,
		keys:     make(map[string]int),
		selected: -1,
	}
}

// Columns returns the grid columns.
func (g *Grid) Columns() []Column {
	return append([]Column(nil), g.columns...)
}

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Insert appends a row. The grid is unchanged on error.
func (g *Grid) Insert(key string, cells ...string) error {
	if len(cells) != len(g.columns) {
		return fmt.Errorf("%w: got %d, want %d", ErrCellCount, len(cells), len(g.columns))
	}
	if _, ok := g.keys[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	g.keys[key] = len(g.rows)
	g.rows = append(g.rows, Row{Key: key, Cells: append([]string(nil), cells...)})
	return nil
}

// Rows returns a copy of the rows in insertion order.
func (g *Grid) Rows() []Row {
	out := make([]Row, len(g.rows))
	copy(out, g.rows)
	return out
}

// Index returns the display position of the row with the given key.
func (g *Grid) Index(key string) (int, bool) {
	i, ok := g.keys[key]
	return i, ok
}

// Clear removes every row and the selection.
func (g *Grid) Clear() {
	g.rows = nil
	g.keys = make(map[string]int)
	g.selected = -1
}

// Select marks the row at index i as selected.
func (g *Grid) Select(i int) error {
	if i < 0 || i >= len(g.rows) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	g.selected = i
	return nil
}

// Deselect clears the selection.
func (g *Grid) Deselect() { g.selected = -1 }

// Selected returns the selected row, if any.
func (g *Grid) Selected() (Row, bool) {
	if g.selected < 0 || g.selected >= len(g.rows) {
		return Row{}, false
	}
	return g.rows[g.selected], true
}

// Sort orders the rows by the cells of column col, descending when desc is
// set. Cells that both parse as integers compare numerically. Equal cells
// keep their relative order and the selection follows its row.
func (g *Grid) Sort(col int, desc bool) error {
	if col < 0 || col >= len(g.columns) {
		return fmt.Errorf("%w: column %d", ErrOutOfRange, col)
	}
	sel, hasSel := g.Selected()

	slices.SortStableFunc(g.rows, func(a, b Row) int {
		c := compareCells(a.Cells[col], b.Cells[col])
		if desc {
			return -c
		}
		return c
	})
	for i, r := range g.rows {
		g.keys[r.Key] = i
	}
	if hasSel {
		g.selected = g.keys[sel.Key]
	}
	return nil
}

func compareCells(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}

// TableColumns converts the grid columns for a bubbles table.
func (g *Grid) TableColumns() []table.Column {
	cols := make([]table.Column, len(g.columns))
	for i, c := range g.columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return cols
}

// TableRows converts the grid rows for a bubbles table.
func (g *Grid) TableRows() []table.Row {
	rows := make([]table.Row, len(g.rows))
	for i, r := range g.rows {
		rows[i] = table.Row(append([]string(nil), r.Cells...))
	}
	return rows
}

// Render draws the grid as a bordered text table.
func (g *Grid) Render() string {
	headers := make([]string, len(g.columns))
	for i, c := range g.columns {
		headers[i] = c.Title
	}
	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, r := range g.rows {
		t.Row(r.Cells...)
	}
	return t.String()
}
