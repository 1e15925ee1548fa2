package models

import (
	"time"
)

// Field is one column of a raw source row
type Field struct {
	Column string
	Value  string
}

// StagingRow is a raw source row as ordered (column, value) pairs.
// Values are kept verbatim; an empty string stays an empty string.
type StagingRow []Field

// Get returns the value of a column and whether it was present
func (r StagingRow) Get(column string) (string, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return "", false
}

// Columns returns the column names in row order
func (r StagingRow) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Lineage tags every row appended by one load
type Lineage struct {
	RunDate    time.Time
	SourceFile string
	IngestedAt time.Time
	BatchID    string
}

// StagingBatch is the parsed content of one source file
type StagingBatch struct {
	Entity     Entity
	SourceFile string
	Columns    []string
	Rows       []StagingRow
}

// Values returns the rows as a column-aligned matrix of the batch columns.
// Columns absent from a row are emitted as empty strings.
func (b *StagingBatch) Values() [][]string {
	out := make([][]string, len(b.Rows))
	for i, row := range b.Rows {
		vals := make([]string, len(b.Columns))
		for j, col := range b.Columns {
			vals[j], _ = row.Get(col)
		}
		out[i] = vals
	}
	return out
}
