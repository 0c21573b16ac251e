// Package testing provides helpers for integration tests that need a real
// PostgreSQL server.
package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlload/internal/db"
	"github.com/vvka-141/xmlload/internal/db/manager"
	"github.com/vvka-141/xmlload/internal/testinfra"
)

// TestConnEnvVar names the variable that points tests at an existing server.
const TestConnEnvVar = "XMLLOAD_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: XMLLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// ForceApprover is a test approver that always approves rebuild requests.
type ForceApprover struct{}

// RequestApproval always returns true (auto-approves).
func (a *ForceApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	return true, nil
}

// CreateTestDB creates a fresh database with the given name, dropping any
// leftover from an earlier run. Returns a cleanup function.
func CreateTestDB(t *testing.T, connString, dbName string) func() {
	t.Helper()

	CleanupTestDB(t, connString, dbName)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer pool.Close()

	if err := manager.New().Create(ctx, db.NewPoolAdapter(pool), dbName); err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}
	t.Logf("Created test database %s", dbName)

	return func() {
		CleanupTestDB(t, connString, dbName)
	}
}

// CleanupTestDB drops the test database if it exists.
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	conn := db.NewPoolAdapter(pool)
	if err := manager.New().TerminateConnections(ctx, conn, dbName); err != nil {
		t.Logf("Warning: %v", err)
	}

	dropQuery := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := pool.Exec(ctx, dropQuery); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// TargetConnectionString rewrites connString to point at dbName.
func TargetConnectionString(t *testing.T, connString, dbName string) string {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	config.Database = dbName
	return db.BuildConnectionString(config)
}

// GetTestPool creates a connection pool to the specified database for testing.
// The pool is automatically closed when the test completes.
func GetTestPool(t *testing.T, connString, dbName string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), TargetConnectionString(t, connString, dbName))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int64 {
	t.Helper()

	var n int64
	query := "SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize()
	if err := pool.QueryRow(context.Background(), query).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
