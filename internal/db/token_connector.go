package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// TokenBasedConnector connects with a short-lived cloud token as password
// (AWS RDS IAM, Azure Entra ID).
type TokenBasedConnector struct {
	config        *xmlload.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	warnings      io.Writer
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *xmlload.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	if tokenProvider == nil {
		panic("tokenProvider cannot be nil")
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		warnings:      os.Stderr,
	}
}

// Connect acquires a token and opens a pool with it.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token from %s: %w: %w", c.providerName, c.tokenProvider, xmlload.ErrConnectionFailed, err)
	}

	if remaining := time.Until(expiresOn); remaining < minTokenLifetime {
		fmt.Fprintf(c.warnings, "Warning: %s token expires in %v\n", c.providerName, remaining.Round(time.Second))
	}

	return openPool(ctx, c.connectionString(token), c.config, nil)
}

func (c *TokenBasedConnector) connectionString(token string) string {
	withToken := *c.config
	withToken.Password = token
	if withToken.SSLMode == "" || withToken.SSLMode == "disable" || withToken.SSLMode == "prefer" {
		// Cloud providers reject IAM tokens over plaintext connections.
		withToken.SSLMode = "require"
	}
	return BuildConnectionString(&withToken)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *xmlload.ConnectionConfig) (xmlload.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM"), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID
// token provider. Service Principal credentials are used when tenant, client
// and secret are all set; otherwise the DefaultAzureCredential chain.
func newAzureConnector(config *xmlload.ConnectionConfig) (xmlload.Connector, error) {
	tokenProvider, err := NewAzureTokenProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, tokenProvider, "Azure"), nil
}
