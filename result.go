package rowd

import "fmt"

type Result struct {
	rowsAffected int64
}

// LastInsertId returns the database's auto-generated ID
// after, for example, an INSERT into a table with primary
// key.
func (r Result) LastInsertId() (int64, error) {
	return 0, fmt.Errorf("rowd: LastInsertId is not supported")
}

// RowsAffected returns the number of rows affected by the
// query.
func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
