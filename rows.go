package rowd

import (
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/rowdb/rowd/internal/dataset"
)

type Rows struct {
	ds   *dataset.DataSet
	next int
}

func newRows(ds *dataset.DataSet) *Rows {
	return &Rows{ds: ds}
}

// Columns returns the names of the columns. The number of
// columns of the result is inferred from the length of the
// slice. If a particular column name isn't known, an empty
// string should be returned for that entry.
func (r *Rows) Columns() []string {
	return r.ds.ColumnNames()
}

// Close closes the rows iterator.
func (r *Rows) Close() error {
	return nil
}

// Next is called to populate the next row of data into
// the provided slice. The provided slice will be the same
// size as the Columns() are wide.
//
// Next should return io.EOF when there are no more rows.
//
// The dest should not be written to outside of Next. Care
// should be taken when closing Rows not to modify
// a buffer held in dest.
func (r *Rows) Next(dest []driver.Value) error {
	if r.next >= r.ds.NumRows() {
		return io.EOF
	}

	values, err := r.ds.Row(r.next)
	if err != nil {
		return err
	}
	r.next++

	if len(values) != len(dest) {
		return fmt.Errorf("expected %d values, got %d", len(dest), len(values))
	}

	for i := range dest {
		if !values[i].Valid {
			dest[i] = nil
		} else {
			dest[i] = values[i].Value
		}
	}

	return nil
}
