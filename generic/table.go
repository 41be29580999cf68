package generic

import (
	"strings"
)

// =============================================================================
// TABLE - Loosely-typed tabular source
// =============================================================================

// Table is an ordered, string-valued record collection as it arrives from a
// spreadsheet export. Column names are uppercased and trimmed on
// construction; UNNAMED placeholder columns are dropped.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Row maps a column name to its raw cell text.
type Row map[string]string

// NewTable builds a table from a header and raw records. Records shorter
// than the header are padded with empty cells.
func NewTable(name string, header []string, records [][]string) *Table {
	t := &Table{Name: name}
	keep := make([]int, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		col := Upper(h)
		if col == "" || IsUnnamed(col) || seen[col] {
			continue
		}
		seen[col] = true
		keep = append(keep, i)
		t.Columns = append(t.Columns, col)
	}

	for _, rec := range records {
		row := make(Row, len(keep))
		for j, i := range keep {
			if i < len(rec) {
				row[t.Columns[j]] = rec[i]
			} else {
				row[t.Columns[j]] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// IsUnnamed reports whether a column name is a spreadsheet placeholder.
func IsUnnamed(col string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(col)), "UNNAMED")
}

// Empty reports whether the table is absent or has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len returns the number of rows; zero for a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether every named column exists.
func (t *Table) Has(cols ...string) bool {
	if t == nil {
		return false
	}
	for _, c := range cols {
		if !t.hasColumn(c) {
			return false
		}
	}
	return true
}

// FirstColumn returns the first candidate present in the table, in
// candidate order.
func (t *Table) FirstColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.Has(c) {
			return Upper(c), true
		}
	}
	return "", false
}

func (t *Table) hasColumn(col string) bool {
	want := Upper(col)
	for _, c := range t.Columns {
		if c == want {
			return true
		}
	}
	return false
}

// Get returns the trimmed cell of a row.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[Upper(col)])
}
