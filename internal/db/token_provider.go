package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
// The token is used as the PostgreSQL password.
type TokenProvider interface {
	// GetToken acquires a token and returns it with its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. Must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// minTokenLifetime is the remaining lifetime below which a warning is printed.
// A pool only needs the token while opening connections, but a long load
// may open a replacement connection late.
const minTokenLifetime = 5 * time.Minute
