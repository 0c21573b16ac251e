package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/xmlload/internal/config"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag. Use $PGPASSWORD, ~/.pgpass or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Database is excluded: -d selects the target database in every mode.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud authentication method from the CLI.
// At most one of Azure, AWS and Google may be set.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string // Overrides AZURE_TENANT_ID
	AzureClientID string // Overrides AZURE_CLIENT_ID

	AWS       bool
	AWSRegion string // Overrides AWS_REGION

	Google         bool
	GoogleInstance string // project:region:instance
}

func (c *CloudFlags) selected() (xmlload.AuthMethod, bool, error) {
	count := 0
	method := xmlload.AuthMethodStandard
	if c.Azure {
		count++
		method = xmlload.AuthMethodAzureEntraID
	}
	if c.AWS {
		count++
		method = xmlload.AuthMethodAWSIAM
	}
	if c.Google {
		count++
		method = xmlload.AuthMethodGoogleIAM
	}
	if count > 1 {
		return method, false, fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", xmlload.ErrInvalidConfig)
	}
	return method, count == 1, nil
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure SDK standard names
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:          region,
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection)
//  2. DATABASE_URL, when no granular flags are given
//  3. Granular flags (-h, -p, -U) over PG* environment variables over xmlload.yaml
//  4. Defaults (localhost:5432, prefer SSL)
//
// The returned config's Database is the target database: -d wins, then the
// database named by the connection string, PGDATABASE or xmlload.yaml. It is
// empty when none of them names one. The second return value is the
// maintenance database used for CREATE and DROP DATABASE: xmlload.yaml's
// management_database or "postgres".
//
// Authentication is standard unless a cloud flag, xmlload.yaml's
// auth_method, or Azure environment variables select otherwise, in that order.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*xmlload.ConnectionConfig, string, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, "", fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/stackdump\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d stackdump\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			xmlload.ErrInvalidConfig,
		)
	}

	var cfg *xmlload.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, "", err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}
	if cfg.Database == "" {
		cfg.Database = pc.Database
	}

	if cfg.SSLCert == "" {
		cfg.SSLCert = pc.SSLCert
	}
	if cfg.SSLKey == "" {
		cfg.SSLKey = pc.SSLKey
	}
	if cfg.SSLRootCert == "" {
		cfg.SSLRootCert = pc.SSLRootCert
	}

	if err := applyAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, "", err
	}

	maintenanceDB := pc.ManagementDatabase
	if maintenanceDB == "" {
		maintenanceDB = xmlload.DefaultManagementDB
	}

	return cfg, maintenanceDB, nil
}

// applyAuth picks the authentication method and attaches its parameters.
func applyAuth(cfg *xmlload.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, explicit, err := flags.selected()
	if err != nil {
		return err
	}
	if !explicit && pc.AuthMethod != "" {
		method, err = xmlload.ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		explicit = true
	}
	if !explicit && (flags.AzureTenantID != "" || flags.AzureClientID != "" || env.HasAzureCredentials()) {
		method = xmlload.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case xmlload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case xmlload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case xmlload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveFromConnectionString parses a connection string. Environment
// variables only fill in what the string leaves unset, as libpq does.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*xmlload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", xmlload.ErrInvalidConfig, err)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(envVars.PGSSLMODE, "prefer")
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}

	return cfg, nil
}

// resolveFromGranularParams builds the config from flags, PG* variables and
// xmlload.yaml, in that order of precedence, per parameter.
func resolveFromGranularParams(flags *GranularConnFlags, envVars *EnvVars, pc config.ConnectionConfig) (*xmlload.ConnectionConfig, error) {
	cfg := &xmlload.ConnectionConfig{
		AuthMethod:       xmlload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, xmlload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = envVars.PGDATABASE
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}
