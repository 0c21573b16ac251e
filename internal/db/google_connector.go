package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// GoogleCloudSQLConnector connects to Google Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector, which handles
// credentials and TLS.
//
// Implements io.Closer: call Close after the pool is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	config   *xmlload.ConnectionConfig
	instance string
	dialer   *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for instance, given as
// project:region:instance.
func NewGoogleCloudSQLConnector(config *xmlload.ConnectionConfig, instance string) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, instance: instance}
}

func newGoogleConnector(config *xmlload.ConnectionConfig) (xmlload.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", xmlload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", xmlload.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

// dsn is the libpq string handed to pgx; the host is never dialed because
// the Cloud SQL dialer replaces the network connection.
func (c *GoogleCloudSQLConnector) dsn() string {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", c.instance, c.config.Username, c.config.Database)
	if c.config.AppName != "" {
		dsn += " application_name=" + c.config.AppName
	}
	return dsn
}

// Connect establishes a connection pool through the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", xmlload.ErrConnectionFailed, err)
	}

	pool, err := openPool(ctx, c.dsn(), c.config, func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
