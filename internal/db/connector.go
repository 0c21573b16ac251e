package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns covers the loader's single writer plus one spare for
	// management statements.
	DefaultMaxConns = 2

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps the writer connection alive while a
	// large dump file is being parsed between flushes.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// openPool parses connStr, applies the pool limits and verifies the pool
// with a ping. dial replaces the network dialer when not nil.
func openPool(ctx context.Context, connStr string, config *xmlload.ConnectionConfig, dial pgconn.DialFunc) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", xmlload.ErrInvalidConfig, err)
	}

	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if dial != nil {
		poolConfig.ConnConfig.DialFunc = dial
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return pool, nil
}

// StandardConnector implements the Connector interface for standard
// username/password authentication. It connects once; failures are returned
// to the caller as is.
type StandardConnector struct {
	config *xmlload.ConnectionConfig
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *xmlload.ConnectionConfig) *StandardConnector {
	return &StandardConnector{config: config}
}

// Connect establishes a connection pool using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return openPool(ctx, BuildConnectionString(c.config), c.config, nil)
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *xmlload.ConnectionConfig) (xmlload.Connector, error) {
	switch config.AuthMethod {
	case xmlload.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case xmlload.AuthMethodAWSIAM:
		return newAWSConnector(config)
	case xmlload.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case xmlload.AuthMethodAzureEntraID:
		return newAzureConnector(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, xmlload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable
// guidance. The result always matches xmlload.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

xmlload creates the target database itself; check that the maintenance
database (management_database in xmlload.yaml, default "postgres") exists
and that the user may connect to it.`, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf(`too many connections to database "%s"

The server's max_connections limit is reached.`, database)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", xmlload.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, xmlload.ErrConnectionFailed, err)
}
