package rowd

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/rowdb/rowd/internal/client"
	"github.com/rowdb/rowd/internal/dataset"
)

const (
	driverName = "rowd"
)

func init() {
	sql.Register(driverName, &Driver{})
}

// Driver implements the database/sql/driver.Driver interface on top of the
// rowd wire protocol. Every driver connection is one authenticated TCP
// connection, database/sql's pool does the rest.
type Driver struct{}

// Open returns a new connection to the server. The name is a DSN, see
// ParseDSN for the format.
func (d *Driver) Open(name string) (driver.Conn, error) {
	cfg, err := ParseDSN(name)
	if err != nil {
		return nil, err
	}

	opts := make([]client.Option, 0, 2)
	if cfg.DialTimeout > 0 {
		opts = append(opts, client.WithDialTimeout(cfg.DialTimeout))
	}
	if cfg.IOTimeout > 0 {
		opts = append(opts, client.WithIOTimeout(cfg.IOTimeout))
	}

	aConn, err := client.Connect(cfg.Host, cfg.Port, cfg.Username, cfg.Password, opts...)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: aConn}, nil
}

// Conn implements the database/sql/driver.Conn interface.
type Conn struct {
	conn *client.Conn
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.Ping()
}

// Close ends the session with a quit exchange and tears down the socket.
func (c *Conn) Close() error {
	return c.conn.Quit()
}

// Prepare returns a prepared statement, bound to this connection. The server
// has no prepare step, the statement just carries the query text.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{conn: c, query: query}, nil
}

// Begin starts and returns a new transaction.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *Conn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("rowd: transactions are not supported by the wire protocol")
}

// ExecContext executes a query that doesn't return rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("rowd: query arguments are not supported")
	}
	ds, err := c.conn.Execute(query)
	if err != nil {
		return nil, err
	}
	return Result{rowsAffected: int64(ds.RowsAffected())}, nil
}

// QueryContext executes a query that may return rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("rowd: query arguments are not supported")
	}
	ds, err := c.conn.Execute(query)
	if err != nil {
		return nil, err
	}
	return newRows(ds), nil
}

func (c *Conn) execute(query string) (*dataset.DataSet, error) {
	return c.conn.Execute(query)
}

// Ensure interfaces are implemented
var _ driver.Driver = (*Driver)(nil)
var _ driver.Conn = (*Conn)(nil)
var _ driver.Pinger = (*Conn)(nil)
var _ driver.ExecerContext = (*Conn)(nil)
var _ driver.QueryerContext = (*Conn)(nil)
