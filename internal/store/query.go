package store

import (
	"strings"

	"github.com/mesh-intelligence/bbd/pkg/types"
)

// statements holds the SQL text prepared once per Attach from the schema.
type statements struct {
	read     string // receipt filter only
	readItem string // receipt and item filters
	update   string
	probe    string
}

func buildStatements(d dialect, s types.Schema) statements {
	cols := make([]string, 0, 4)
	for _, c := range s.Columns() {
		cols = append(cols, d.quote(c))
	}
	table := d.quote(s.Table)
	selectList := strings.Join(cols, ", ")

	like := func(col string, n int) string {
		return d.quote(col) + " LIKE " + d.placeholder(n) + " ESCAPE '" + string(likeEscape) + "'"
	}

	read := "SELECT " + selectList + " FROM " + table + " WHERE " + like(s.ReceiptColumn, 1)

	return statements{
		read:     read,
		readItem: read + " AND " + like(s.ItemColumn, 2),
		update: "UPDATE " + table + " SET " + d.quote(s.TrackingColumn) + " = " + d.placeholder(1) +
			" WHERE " + d.quote(s.RowIDColumn) + " = " + d.placeholder(2),
		probe: "SELECT " + selectList + " FROM " + table + " WHERE 1=0",
	}
}
