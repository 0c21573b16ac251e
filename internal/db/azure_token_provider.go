package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AzureTokenProvider acquires Entra ID tokens scoped to Azure Database for PostgreSQL.
type AzureTokenProvider struct {
	credential  azcore.TokenCredential
	description string
}

// NewAzureTokenProvider picks the credential from what is configured.
// With tenantID, clientID and clientSecret all set it authenticates as that
// Service Principal. Otherwise it uses DefaultAzureCredential, which tries
// environment variables, workload identity, managed identity and the Azure
// CLI in turn.
func NewAzureTokenProvider(tenantID, clientID, clientSecret string) (*AzureTokenProvider, error) {
	if tenantID != "" && clientID != "" && clientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal credential: %w", err)
		}
		return &AzureTokenProvider{
			credential:  cred,
			description: fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenantID, clientID),
		}, nil
	}

	var opts *azidentity.DefaultAzureCredentialOptions
	if tenantID != "" {
		opts = &azidentity.DefaultAzureCredentialOptions{TenantID: tenantID}
	}
	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred, description: "AzureDefaultCredential"}, nil
}

// NewAzureTokenProviderFromCredential wraps an existing credential.
func NewAzureTokenProviderFromCredential(cred azcore.TokenCredential, description string) *AzureTokenProvider {
	return &AzureTokenProvider{credential: cred, description: description}
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string {
	return p.description
}
