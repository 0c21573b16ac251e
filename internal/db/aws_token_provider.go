package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// rdsTokenLifetime is how long an RDS IAM authentication token stays valid.
const rdsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider builds RDS IAM authentication tokens using the
// default AWS credential chain (environment, shared config, instance role).
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string

	loadCredentials func(ctx context.Context, region string) (aws.CredentialsProvider, error)
}

// NewAWSIAMTokenProvider creates a token provider for AWS RDS IAM authentication.
// endpoint is host:port of the RDS instance; username is the IAM-enabled database user.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port): %w", xmlload.ErrInvalidConfig)
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires region (use --aws-region or $AWS_REGION): %w", xmlload.ErrInvalidConfig)
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires database username (-U): %w", xmlload.ErrInvalidConfig)
	}

	return &AWSIAMTokenProvider{
		endpoint:        endpoint,
		region:          region,
		username:        username,
		loadCredentials: defaultAWSCredentials,
	}, nil
}

func defaultAWSCredentials(ctx context.Context, region string) (aws.CredentialsProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return cfg.Credentials, nil
}

// GetToken builds a fresh IAM authentication token.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	creds, err := p.loadCredentials(ctx, p.region)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	issuedAt := time.Now()
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, creds)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}

	return token, issuedAt.Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAM(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}
