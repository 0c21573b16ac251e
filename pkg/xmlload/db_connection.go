package xmlload

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection abstracts the database operations needed by the loader and
// the database manager. It decouples the public API from pgx pool types.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	// The CommandTag carries the number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Acquire obtains a dedicated connection from the pool for statements
	// that cannot run inside a transaction (CREATE DATABASE, DROP DATABASE).
	// Caller must call Release() on the returned PooledConnection when done.
	Acquire(ctx context.Context) (PooledConnection, error)
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	Scan(dest ...any) error
}

// PooledConnection represents a connection acquired from a pool.
// The caller must call Release() when done to return it to the pool.
type PooledConnection interface {
	// Exec executes a statement on this specific connection.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Release returns the connection to the pool.
	Release()
}
