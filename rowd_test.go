package rowd

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowdb/rowd/internal/auth"
	"github.com/rowdb/rowd/internal/config"
	"github.com/rowdb/rowd/internal/engine"
	"github.com/rowdb/rowd/internal/protocol"
	"github.com/rowdb/rowd/internal/server"
)

// startTestServer boots a real server on a random port and returns a DSN
// pointing at it.
func startTestServer(t *testing.T) string {
	t.Helper()

	cfg := config.Default()
	cfg.Port = 0
	cfg.Greeting = "driver test server"

	aStore := auth.NewStore()
	require.NoError(t, aStore.Add("alice", "pw"))

	aMemory := engine.NewMemory()
	require.NoError(t, aMemory.CreateTable("fruits", []protocol.Column{
		{Name: "id", Kind: protocol.Int8},
		{Name: "name", Kind: protocol.Text},
		{Name: "price", Kind: protocol.Float8},
	}))
	require.NoError(t, aMemory.Insert("fruits",
		[]protocol.Value{{Valid: true, Value: int64(1)}, {Valid: true, Value: "apple"}, {Valid: true, Value: 0.5}},
		[]protocol.Value{{Valid: true, Value: int64(2)}, {Valid: true, Value: "pear"}, {}},
	))

	srv := server.New(cfg, zap.NewNop(), aStore, aMemory)
	require.NoError(t, srv.Listen())
	srv.Serve(context.Background())
	t.Cleanup(srv.Stop)

	host, portStr, err := net.SplitHostPort(srv.Addr().String())
	require.NoError(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.NoError(t, err)

	return fmt.Sprintf("rowd://alice:pw@%s:%d", host, port)
}

func TestDriverQuery(t *testing.T) {
	dsn := startTestServer(t)

	db, err := sql.Open("rowd", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	rows, err := db.Query("SELECT * FROM fruits")
	require.NoError(t, err)
	defer rows.Close()

	columns, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "price"}, columns)

	type fruit struct {
		ID    int64
		Name  string
		Price sql.NullFloat64
	}
	var fruits []fruit
	for rows.Next() {
		var f fruit
		require.NoError(t, rows.Scan(&f.ID, &f.Name, &f.Price))
		fruits = append(fruits, f)
	}
	require.NoError(t, rows.Err())

	require.Len(t, fruits, 2)
	assert.Equal(t, fruit{ID: 1, Name: "apple", Price: sql.NullFloat64{Float64: 0.5, Valid: true}}, fruits[0])
	assert.Equal(t, fruit{ID: 2, Name: "pear"}, fruits[1])
}

func TestDriverQueryError(t *testing.T) {
	dsn := startTestServer(t)

	db, err := sql.Open("rowd", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Query("BAD SQL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse query")

	// The pooled connection is still usable after a reported error.
	require.NoError(t, db.Ping())
}

func TestDriverAuthFailure(t *testing.T) {
	dsn := startTestServer(t)

	db, err := sql.Open("rowd", strings.Replace(dsn, ":pw@", ":nope@", 1))
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, db.Ping())
}

func TestDriverTransactionsUnsupported(t *testing.T) {
	dsn := startTestServer(t)

	db, err := sql.Open("rowd", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Begin()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transactions are not supported")
}

func TestDriverPreparedStatement(t *testing.T) {
	dsn := startTestServer(t)

	db, err := sql.Open("rowd", dsn)
	require.NoError(t, err)
	defer db.Close()

	stmt, err := db.Prepare("SELECT 1")
	require.NoError(t, err)
	defer stmt.Close()

	var one int64
	require.NoError(t, stmt.QueryRow().Scan(&one))
	assert.Equal(t, int64(1), one)
}
