package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rowdb/rowd/internal/protocol"
)

var (
	// ErrParse marks queries the engine cannot understand, as opposed to
	// queries that fail during execution.
	ErrParse = errors.New("engine: cannot parse query")

	ErrTableNotFound = errors.New("engine: table not found")
)

type table struct {
	columns []protocol.Column
	rows    [][]protocol.Value
}

// Memory is a minimal in-memory Executor. It answers `SELECT 1` and
// `SELECT * FROM <table>` over tables registered up front, which is enough to
// drive the wire protocol end to end.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]*table),
	}
}

func (m *Memory) CreateTable(name string, columns []protocol.Column) error {
	key := strings.ToLower(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[key]; ok {
		return fmt.Errorf("engine: table %q already exists", name)
	}
	m.tables[key] = &table{columns: columns}
	return nil
}

func (m *Memory) Insert(name string, rows ...[]protocol.Value) error {
	key := strings.ToLower(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	aTable, ok := m.tables[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	for _, row := range rows {
		if len(row) != len(aTable.columns) {
			return fmt.Errorf("engine: row has %d values, table %q has %d columns",
				len(row), name, len(aTable.columns))
		}
	}
	aTable.rows = append(aTable.rows, rows...)
	return nil
}

func (m *Memory) Execute(ctx context.Context, query string) (protocol.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return protocol.ResultSet{}, err
	}

	trimmed := strings.TrimSuffix(strings.TrimSpace(query), ";")
	fields := strings.Fields(trimmed)

	if len(fields) == 2 && strings.EqualFold(fields[0], "select") && fields[1] == "1" {
		return protocol.ResultSet{
			Columns: []protocol.Column{{Name: "1", Kind: protocol.Int8}},
			Rows:    [][]protocol.Value{{{Valid: true, Value: int64(1)}}},
		}, nil
	}

	if len(fields) == 4 &&
		strings.EqualFold(fields[0], "select") &&
		fields[1] == "*" &&
		strings.EqualFold(fields[2], "from") {
		return m.selectAll(fields[3])
	}

	return protocol.ResultSet{}, fmt.Errorf("%w: %q", ErrParse, query)
}

func (m *Memory) selectAll(name string) (protocol.ResultSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	aTable, ok := m.tables[strings.ToLower(name)]
	if !ok {
		return protocol.ResultSet{}, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	rs := protocol.ResultSet{
		Columns: make([]protocol.Column, len(aTable.columns)),
		Rows:    make([][]protocol.Value, len(aTable.rows)),
	}
	copy(rs.Columns, aTable.columns)
	for i, row := range aTable.rows {
		values := make([]protocol.Value, len(row))
		copy(values, row)
		rs.Rows[i] = values
	}
	return rs, nil
}
