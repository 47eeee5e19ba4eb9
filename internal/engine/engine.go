package engine

import (
	"context"

	"github.com/rowdb/rowd/internal/protocol"
)

// Executor runs one query and produces its raw wire result. The connection
// handler treats the query text as opaque, all interpretation happens behind
// this interface.
type Executor interface {
	Execute(ctx context.Context, query string) (protocol.ResultSet, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query string) (protocol.ResultSet, error)

func (f ExecutorFunc) Execute(ctx context.Context, query string) (protocol.ResultSet, error) {
	return f(ctx, query)
}
