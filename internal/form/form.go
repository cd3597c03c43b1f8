// Package form holds the presentation state of the receipt lookup form:
// the two filters, the displayed rows, and the selection. It is independent
// of any UI toolkit; the terminal UI and the CLI commands drive it.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/bbd/pkg/types"
)

// Form errors.
var (
	ErrBlankFilters = errors.New("receipt number and item number are both blank")
	ErrNoSelection  = errors.New("no row selected")
)

// Messages shown to the operator.
const (
	blankFiltersTitle   = "Error"
	blankFiltersMessage = "Leaving Receipt Number or Item Number blank will read millions of rows.\n" +
		"Please specify either of those."
	queryFailedTitle = "Query failed"
	editFailedTitle  = "Edit failed"
)

// Notifier surfaces messages to the operator.
type Notifier interface {
	Warn(title, message string)
	Error(title, message string)
}

// EditRequest identifies the row being edited and its current value.
// HasCurrent is false when the caller never saw the row, as with an edit by
// row id alone.
type EditRequest struct {
	RowID      int64
	Current    string
	HasCurrent bool
}

// Form is the lookup form controller.
type Form struct {
	table  types.ReceiptTable
	logger *slog.Logger
	notify Notifier
	grid   *ReceiptGrid

	receipt string
	item    string
}

// New returns a Form reading and writing through table. Population failures
// and edits are logged to logger; warnings and errors go to notify.
func New(table types.ReceiptTable, logger *slog.Logger, notify Notifier) *Form {
	return &Form{
		table:  table,
		logger: logger,
		notify: notify,
		grid:   NewReceiptGrid(),
	}
}

// SetFilters sets the receipt and item filters used by the next query.
func (f *Form) SetFilters(receipt, item string) {
	f.receipt = receipt
	f.item = item
}

// Filters returns the current receipt and item filters.
func (f *Form) Filters() (receipt, item string) {
	return f.receipt, f.item
}

// Grid returns the displayed rows.
func (f *Form) Grid() *ReceiptGrid { return f.grid }

// RequestQuery replaces the displayed rows with the lines matching the
// current filters. With both filters blank it warns the operator and returns
// ErrBlankFilters without touching the store. If a row cannot be inserted
// the failure is logged and the grid is left partially populated; that is
// not an error to the caller.
func (f *Form) RequestQuery(ctx context.Context) error {
	if f.receipt == "" && f.item == "" {
		f.notify.Warn(blankFiltersTitle, blankFiltersMessage)
		return ErrBlankFilters
	}

	lines, err := f.table.Read(ctx, f.receipt, f.item)
	if err != nil {
		f.logger.Error("query failed", "receipt", f.receipt, "item", f.item, "err", err)
		f.notify.Error(queryFailedTitle, err.Error())
		return err
	}

	f.grid.Clear()
	for _, line := range lines {
		if err := f.grid.Insert(line); err != nil {
			f.logger.Info(err.Error(), "receipt", f.receipt, "item", f.item, "shown", f.grid.Len(), "returned", len(lines))
			break
		}
	}
	return nil
}

// Select marks the displayed row at index i as selected.
func (f *Form) Select(i int) error { return f.grid.Select(i) }

// BeginEdit returns the row id and trimmed tracking value of the selected
// row, for use as the prompt's initial value.
func (f *Form) BeginEdit() (EditRequest, error) {
	line, ok := f.grid.Selected()
	if !ok {
		return EditRequest{}, ErrNoSelection
	}
	return EditRequest{RowID: line.RowID, Current: strings.TrimSpace(line.Tracking), HasCurrent: true}, nil
}

// Deselect drops the row selection without touching the rows.
func (f *Form) Deselect() { f.grid.Deselect() }

// CommitEdit writes value to the row in req and refreshes the display. An
// empty value means the prompt was cancelled and nothing is written. A
// failed write is reported to the operator and returned; the display is left
// as it was.
func (f *Form) CommitEdit(ctx context.Context, req EditRequest, value string) error {
	if value == "" {
		return nil
	}

	editID := newEditID()
	if err := f.table.Write(ctx, req.RowID, value); err != nil {
		f.logger.Error("tracking update failed", "edit_id", editID, "row_id", req.RowID, "err", err)
		f.notify.Error(editFailedTitle, editFailureMessage(req.RowID, err))
		return err
	}
	attrs := []any{"edit_id", editID, "row_id", req.RowID}
	if req.HasCurrent {
		attrs = append(attrs, "old", req.Current)
	}
	f.logger.Info("tracking updated", append(attrs, "new", value)...)

	if f.receipt == "" && f.item == "" {
		return nil
	}
	return f.RequestQuery(ctx)
}

// Clear empties both filters and the displayed rows. The store is not
// touched.
func (f *Form) Clear() {
	f.receipt = ""
	f.item = ""
	f.grid.Clear()
}

func editFailureMessage(rowID int64, err error) string {
	if errors.Is(err, types.ErrRowNotFound) {
		return fmt.Sprintf("Row %d no longer exists. Run the query again.", rowID)
	}
	return fmt.Sprintf("Could not update row %d: %v", rowID, err)
}

func newEditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
