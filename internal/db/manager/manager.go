package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

const (
	queryDatabaseExists       = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateConnections = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
)

// Manager implements xmlload.DatabaseManager.
// Stateless; thread safety depends on the injected DBConnection.
type Manager struct{}

// New creates a new DatabaseManager instance.
func New() xmlload.DatabaseManager {
	return &Manager{}
}

// Exists checks if a database exists.
func (m *Manager) Exists(ctx context.Context, conn xmlload.DBConnection, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w: %w", xmlload.ErrStorage, err)
	}
	return exists, nil
}

// Create creates a new database.
func (m *Manager) Create(ctx context.Context, conn xmlload.DBConnection, dbName string) error {
	return execOnDedicated(ctx, conn, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize(), "create", dbName)
}

// Drop drops the database. It fails when the database does not exist.
func (m *Manager) Drop(ctx context.Context, conn xmlload.DBConnection, dbName string) error {
	return execOnDedicated(ctx, conn, "DROP DATABASE "+pgx.Identifier{dbName}.Sanitize(), "drop", dbName)
}

// TerminateConnections terminates every other session connected to the database.
func (m *Manager) TerminateConnections(ctx context.Context, conn xmlload.DBConnection, dbName string) error {
	if _, err := conn.Exec(ctx, queryTerminateConnections, dbName); err != nil {
		return fmt.Errorf("failed to terminate connections to database %q: %w: %w", dbName, xmlload.ErrStorage, err)
	}
	return nil
}

// CREATE and DROP DATABASE cannot run inside a transaction block, so they
// get a connection of their own.
func execOnDedicated(ctx context.Context, conn xmlload.DBConnection, query, verb, dbName string) error {
	pooled, err := conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w: %w", xmlload.ErrConnectionFailed, err)
	}
	defer pooled.Release()

	if _, err := pooled.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to %s database %q: %w: %w", verb, dbName, xmlload.ErrStorage, err)
	}
	return nil
}

var _ xmlload.DatabaseManager = (*Manager)(nil)
