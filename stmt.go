package rowd

import (
	"database/sql/driver"
	"fmt"
)

type Stmt struct {
	conn  *Conn
	query string
}

// Close closes the statement.
//
// As of Go 1.1, a Stmt will not be closed if it's in use
// by any queries.
//
// Drivers must ensure all network calls made by Close
// do not block indefinitely (e.g. apply a timeout).
func (s Stmt) Close() error {
	return nil
}

// NumInput returns the number of placeholder parameters.
//
// The wire protocol carries query text only, placeholders never reach
// the server, so this is always zero.
func (s Stmt) NumInput() int {
	return 0
}

// Exec executes a query that doesn't return rows, such
// as an INSERT or UPDATE.
//
// Deprecated: Drivers should implement StmtExecContext instead (or additionally).
func (s Stmt) Exec(args []driver.Value) (driver.Result, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("rowd: query arguments are not supported")
	}
	ds, err := s.conn.execute(s.query)
	if err != nil {
		return nil, err
	}
	return Result{rowsAffected: int64(ds.RowsAffected())}, nil
}

// Query executes a query that may return rows, such as a
// SELECT.
//
// Deprecated: Drivers should implement StmtQueryContext instead (or additionally).
func (s Stmt) Query(args []driver.Value) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("rowd: query arguments are not supported")
	}
	ds, err := s.conn.execute(s.query)
	if err != nil {
		return nil, err
	}
	return newRows(ds), nil
}
