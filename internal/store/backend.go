// Package store is the data-access layer for the receipt-line table. It
// holds the single connection handle for the process, checks the live table
// against the declared schema on Attach, and runs the filtered read and the
// single-row update.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/bbd/pkg/types"
)

// ErrAmbiguousRowID is returned when an update by row id matches more than
// one row. The update is rolled back.
var ErrAmbiguousRowID = errors.New("row id matched more than one row")

// Backend implements types.ReceiptTable over database/sql.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dialect  dialect
	stmts    statements
	db       *sql.DB
}

var _ types.ReceiptTable = (*Backend)(nil)

// NewBackend creates a detached Backend. Call Attach before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates cfg, opens the store, pings it, and verifies that the
// table has the columns cfg.Schema declares. Any failure leaves the Backend
// detached with no open handle.
func (b *Backend) Attach(ctx context.Context, cfg types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return err
	}

	db, err := sql.Open(d.driverName, d.dsn(cfg))
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	// One long-lived handle; no pooling.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: %s: %w", types.ErrUnreachable, cfg.Driver, err)
	}

	stmts := buildStatements(d, cfg.Schema)
	if err := checkSchema(ctx, db, stmts.probe, cfg.Schema); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = cfg
	b.dialect = d
	b.stmts = stmts
	b.attached = true
	return nil
}

// Detach closes the connection. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.attached = false
	return err
}

// Schema returns the schema the Backend was attached with.
func (b *Backend) Schema() types.Schema {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Schema
}

// Read implements types.ReceiptTable.
func (b *Backend) Read(ctx context.Context, receipt, item string) ([]types.ReceiptLine, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	query := b.stmts.read
	args := []any{b.dialect.contains(receipt)}
	if item != "" {
		query = b.stmts.readItem
		args = append(args, b.dialect.contains(item))
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.config.Schema.Table, err)
	}
	defer rows.Close()

	lines := []types.ReceiptLine{}
	for rows.Next() {
		var line types.ReceiptLine
		var receiptNo, itemNo, tracking sql.NullString
		if err := rows.Scan(&receiptNo, &itemNo, &tracking, &line.RowID); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", b.config.Schema.Table, err)
		}
		line.ReceiptNumber = receiptNo.String
		line.ItemNumber = itemNo.String
		line.Tracking = tracking.String
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Write implements types.ReceiptTable. The update runs in its own
// transaction and commits only when exactly one row matched.
func (b *Backend) Write(ctx context.Context, rowID int64, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, b.stmts.update, value, rowID)
	if err != nil {
		return fmt.Errorf("updating row %d: %w", rowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating row %d: %w", rowID, err)
	}
	switch {
	case n == 0:
		return fmt.Errorf("%w: %d", types.ErrRowNotFound, rowID)
	case n > 1:
		return fmt.Errorf("%w: %d (%d rows)", ErrAmbiguousRowID, rowID, n)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update of row %d: %w", rowID, err)
	}
	return nil
}

// checkSchema runs the zero-row probe and compares the returned column names
// with the schema, case-insensitively.
func checkSchema(ctx context.Context, db *sql.DB, probe string, s types.Schema) error {
	rows, err := db.QueryContext(ctx, probe)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSchemaMismatch, s.Table, err)
	}
	defer rows.Close()

	got, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSchemaMismatch, s.Table, err)
	}
	want := s.Columns()
	if len(got) != len(want) {
		return fmt.Errorf("%w: %s: got columns %v, want %v", types.ErrSchemaMismatch, s.Table, got, want)
	}
	for i := range want {
		if !strings.EqualFold(got[i], want[i]) {
			return fmt.Errorf("%w: %s: column %d is %q, want %q", types.ErrSchemaMismatch, s.Table, i, got[i], want[i])
		}
	}
	return rows.Err()
}
