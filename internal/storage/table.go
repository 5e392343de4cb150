package storage

import (
	"fmt"
)

// Table is an in-memory tabular dataset: a header row plus data rows of
// pre-rendered cells. Row order is meaningful and preserved everywhere.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has zero data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex maps each required column name to its position, failing if any
// is missing or if a row is shorter than the header.
func (t Table) ColumnIndex(required []string) (map[string]int, error) {
	idx := make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return idx, nil
}
