package sheet

import (
	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

// Table is the in-memory form of the spreadsheet: ordered columns plus one record per row.
// A row lacking a column leaves that cell empty.
type Table struct {
	Columns []string
	Rows    []*record.Record
}

// AppendRow adds row beneath the existing rows, extending the column set with
// any new keys in the order they first appear.
func (t *Table) AppendRow(row *record.Record) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, k := range row.Keys() {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		t.Columns = append(t.Columns, k)
	}
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at row i for column col, or nil when the cell is empty.
func (t *Table) Cell(i int, col string) any {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	v, _ := t.Rows[i].Get(col)
	return v
}
