package types

import (
	"errors"
	"fmt"
	"regexp"
)

// SchemaVersion is the version of the receipt-line table layout this build
// understands. A Schema declaring any other version is rejected.
const SchemaVersion = 1

// Schema names the table and the four columns the store reads. It replaces
// reflecting the table at startup: the store checks the live table against
// this description and refuses to attach on mismatch.
type Schema struct {
	Version        int    `json:"version" yaml:"version"`
	Table          string `json:"table" yaml:"table"`
	ReceiptColumn  string `json:"receipt_column" yaml:"receipt_column"`
	ItemColumn     string `json:"item_column" yaml:"item_column"`
	TrackingColumn string `json:"tracking_column" yaml:"tracking_column"`
	RowIDColumn    string `json:"row_id_column" yaml:"row_id_column"`
}

// Schema errors.
var (
	ErrSchemaVersion     = errors.New("unsupported schema version")
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
	ErrSchemaMismatch    = errors.New("table does not match schema")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultSchema returns the purchase-receipt line history table layout.
func DefaultSchema() Schema {
	return Schema{
		Version:        SchemaVersion,
		Table:          "POP30310",
		ReceiptColumn:  "POPRCTNM",
		ItemColumn:     "ITEMNMBR",
		TrackingColumn: "BOLPRONUMBER",
		RowIDColumn:    "DEX_ROW_ID",
	}
}

// Columns returns the selected columns in read order: receipt, item,
// tracking, row id.
func (s Schema) Columns() []string {
	return []string{s.ReceiptColumn, s.ItemColumn, s.TrackingColumn, s.RowIDColumn}
}

// Validate checks the version and that every name is a plain identifier,
// since identifiers are quoted into SQL text rather than bound.
func (s Schema) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: %d (want %d)", ErrSchemaVersion, s.Version, SchemaVersion)
	}
	for _, name := range append([]string{s.Table}, s.Columns()...) {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return nil
}
