package types

import (
	"context"
	"errors"
)

// ReceiptLine is one row of the receipt-line table. RowID is assigned by the
// store and is the only key used to target an update; ReceiptNumber and
// ItemNumber are never written.
type ReceiptLine struct {
	ReceiptNumber string `json:"receipt_number"`
	ItemNumber    string `json:"item_number"`
	Tracking      string `json:"tracking"`
	RowID         int64  `json:"row_id"`
}

// ReceiptTable reads and edits receipt lines.
type ReceiptTable interface {
	// Read returns rows whose receipt number contains receipt and, when item
	// is not empty, whose item number contains item. Order is whatever the
	// store returns. An empty receipt filter matches every row.
	Read(ctx context.Context, receipt, item string) ([]ReceiptLine, error)

	// Write sets the tracking value of the row with the given id in a
	// single-statement transaction. Returns ErrRowNotFound when no row has
	// that id.
	Write(ctx context.Context, rowID int64, value string) error
}

// Store lifecycle and operation errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrRowNotFound     = errors.New("row not found")
	ErrUnreachable     = errors.New("store unreachable")
)
