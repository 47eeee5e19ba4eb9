package dataset

import (
	"fmt"

	"github.com/rowdb/rowd/internal/protocol"
)

// DataSet is the client-side shape of a query result. It is built once from
// the raw wire ResultSet and is immutable afterwards; lookups by column name
// go through a precomputed index.
type DataSet struct {
	columns      []protocol.Column
	index        map[string]int
	rows         [][]protocol.Value
	rowsAffected uint64
}

// FromResultSet reshapes a raw wire result into a DataSet. Rows shorter than
// the column list are padded with NULLs so every accessor stays in bounds.
func FromResultSet(rs protocol.ResultSet) *DataSet {
	ds := &DataSet{
		columns:      make([]protocol.Column, len(rs.Columns)),
		index:        make(map[string]int, len(rs.Columns)),
		rows:         make([][]protocol.Value, 0, len(rs.Rows)),
		rowsAffected: rs.RowsAffected,
	}
	copy(ds.columns, rs.Columns)
	for i, c := range rs.Columns {
		if _, ok := ds.index[c.Name]; !ok {
			ds.index[c.Name] = i
		}
	}
	for _, row := range rs.Rows {
		values := make([]protocol.Value, len(ds.columns))
		copy(values, row)
		ds.rows = append(ds.rows, values)
	}
	return ds
}

func (ds *DataSet) Columns() []protocol.Column {
	return ds.columns
}

func (ds *DataSet) ColumnNames() []string {
	names := make([]string, 0, len(ds.columns))
	for _, c := range ds.columns {
		names = append(names, c.Name)
	}
	return names
}

func (ds *DataSet) NumRows() int {
	return len(ds.rows)
}

func (ds *DataSet) RowsAffected() uint64 {
	return ds.rowsAffected
}

// Row returns the values of one row. The returned slice is owned by the
// DataSet and must not be modified.
func (ds *DataSet) Row(i int) ([]protocol.Value, error) {
	if i < 0 || i >= len(ds.rows) {
		return nil, fmt.Errorf("dataset: row %d out of range [0, %d)", i, len(ds.rows))
	}
	return ds.rows[i], nil
}

func (ds *DataSet) Get(row, col int) (protocol.Value, error) {
	values, err := ds.Row(row)
	if err != nil {
		return protocol.Value{}, err
	}
	if col < 0 || col >= len(ds.columns) {
		return protocol.Value{}, fmt.Errorf("dataset: column %d out of range [0, %d)", col, len(ds.columns))
	}
	return values[col], nil
}

func (ds *DataSet) GetByName(row int, column string) (protocol.Value, error) {
	col, ok := ds.index[column]
	if !ok {
		return protocol.Value{}, fmt.Errorf("dataset: no column named %q", column)
	}
	return ds.Get(row, col)
}
