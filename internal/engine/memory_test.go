package engine

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowdb/rowd/internal/protocol"
)

func TestMemorySelectOne(t *testing.T) {
	t.Parallel()

	aMemory := NewMemory()

	for _, query := range []string{"SELECT 1", "select 1", " select 1 ; "} {
		rs, err := aMemory.Execute(context.Background(), query)
		require.NoError(t, err, query)
		require.Len(t, rs.Rows, 1)
		assert.Equal(t, protocol.Value{Valid: true, Value: int64(1)}, rs.Rows[0][0])
	}
}

func TestMemorySelectAll(t *testing.T) {
	t.Parallel()

	aMemory := NewMemory()
	columns := []protocol.Column{
		{Name: "id", Kind: protocol.Int8},
		{Name: "name", Kind: protocol.Text},
	}
	require.NoError(t, aMemory.CreateTable("users", columns))

	name := gofakeit.Name()
	require.NoError(t, aMemory.Insert("users",
		[]protocol.Value{{Valid: true, Value: int64(1)}, {Valid: true, Value: name}},
	))

	rs, err := aMemory.Execute(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)
	assert.Equal(t, columns, rs.Columns)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, name, rs.Rows[0][1].Value)
}

func TestMemoryErrors(t *testing.T) {
	t.Parallel()

	aMemory := NewMemory()
	require.NoError(t, aMemory.CreateTable("t", []protocol.Column{{Name: "a", Kind: protocol.Int8}}))

	_, err := aMemory.Execute(context.Background(), "BAD SQL")
	assert.ErrorIs(t, err, ErrParse)

	_, err = aMemory.Execute(context.Background(), "SELECT * FROM missing")
	assert.ErrorIs(t, err, ErrTableNotFound)

	err = aMemory.CreateTable("t", nil)
	assert.Error(t, err)

	err = aMemory.Insert("t", []protocol.Value{{}, {}})
	assert.Error(t, err)

	err = aMemory.Insert("missing", []protocol.Value{{}})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestExecutorFunc(t *testing.T) {
	t.Parallel()

	called := false
	f := ExecutorFunc(func(ctx context.Context, query string) (protocol.ResultSet, error) {
		called = true
		return protocol.ResultSet{}, nil
	})

	_, err := f.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, called)
}
