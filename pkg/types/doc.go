// Package types defines the receipt-line record, the table schema
// description, the ReceiptTable interface, connection configuration, and the
// sentinel errors shared by the store, form, and CLI packages.
package types
