package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// PoolAdapter adapts *pgxpool.Pool to xmlload.DBConnection, the handle the
// loader and the database manager work through.
// Safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter creates a new PoolAdapter wrapping the given pool.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &PoolAdapter{pool: pool}
}

// Exec executes a statement; the command tag carries the affected row count.
func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// QueryRow executes a query that is expected to return at most one row.
// pgx.Row already satisfies xmlload.Row.
func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) xmlload.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Acquire obtains a dedicated connection from the pool.
func (p *PoolAdapter) Acquire(ctx context.Context) (xmlload.PooledConnection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close closes the underlying pool.
func (p *PoolAdapter) Close() {
	p.pool.Close()
}

// Verify PoolAdapter implements DBConnection at compile time
var (
	_ xmlload.DBConnection     = (*PoolAdapter)(nil)
	_ xmlload.PooledConnection = (*pgxpool.Conn)(nil)
)
