package xmlload

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnType is the storage type of a column.
type ColumnType int

const (
	ColumnText    ColumnType = iota // TEXT
	ColumnInteger                   // BIGINT
)

// String returns the lowercase name used in xmlload.yaml.
func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// SQLType returns the PostgreSQL type used in DDL and insert casts.
func (t ColumnType) SQLType() string {
	if t == ColumnInteger {
		return "BIGINT"
	}
	return "TEXT"
}

// ParseColumnType parses a column type name as written in xmlload.yaml.
// Matching is case-insensitive; INT and BIGINT are accepted as integer.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "bigint":
		return ColumnInteger, nil
	case "text", "":
		return ColumnText, nil
	default:
		return ColumnText, fmt.Errorf("unsupported column type %q (expected integer or text): %w", s, ErrInvalidConfig)
	}
}

// ColumnSpec describes one column of a target table.
// Name must match the XML attribute name exactly.
type ColumnSpec struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
}

// TableDefinition maps one dump file onto one table.
// Column order defines both the DDL column order and the positional
// binding order used for inserts.
type TableDefinition struct {
	// Name is the target table name (quoted, case preserved).
	Name string

	// Columns in DDL order.
	Columns []ColumnSpec

	// Source is the dump file name relative to the dump directory, e.g. "Votes.xml".
	Source string
}

// ColumnNames returns the column names in definition order.
func (d TableDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary key column and whether one is defined.
func (d TableDefinition) PrimaryKey() (ColumnSpec, bool) {
	for _, c := range d.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Validate checks the definition and returns every problem found.
// A definition needs a name, at least one column, unique column names
// and exactly one primary key column so duplicates have a conflict target.
func (d TableDefinition) Validate() error {
	var errs []error

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, fmt.Errorf("table name is required: %w", ErrInvalidConfig))
	}
	if len(d.Columns) == 0 {
		errs = append(errs, fmt.Errorf("table %q has no columns: %w", d.Name, ErrInvalidConfig))
	}

	seen := make(map[string]bool, len(d.Columns))
	primaryKeys := 0
	for i, c := range d.Columns {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("table %q column %d has no name: %w", d.Name, i, ErrInvalidConfig))
			continue
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("table %q has duplicate column %q: %w", d.Name, c.Name, ErrInvalidConfig))
		}
		seen[c.Name] = true
		if c.PrimaryKey {
			primaryKeys++
		}
	}
	if len(d.Columns) > 0 && primaryKeys != 1 {
		errs = append(errs, fmt.Errorf("table %q must have exactly one primary key column, found %d: %w", d.Name, primaryKeys, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Record is one parsed row: attribute name to raw string value.
// A missing key means the attribute was absent and loads as NULL.
type Record map[string]string

// LoadProgress reports how far a table load has come.
// All counters are non-decreasing for the duration of one load.
type LoadProgress struct {
	Table            string        `json:"table"`
	RecordsProcessed int64         `json:"records_processed"`
	RecordsInserted  int64         `json:"records_inserted"`
	Batches          int           `json:"batches"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

// Skipped returns the number of processed records that were not inserted
// because their primary key already existed.
func (p LoadProgress) Skipped() int64 {
	return p.RecordsProcessed - p.RecordsInserted
}

// RunMode distinguishes a full rebuild from loading into an existing store.
type RunMode string

const (
	// ModeRebuild drops and recreates the target database, then loads every table.
	ModeRebuild RunMode = "rebuild"

	// ModeResume loads the selected tables without destroying existing data.
	ModeResume RunMode = "resume"
)

// RunSummary is the outcome of one run.
type RunSummary struct {
	RunID    uuid.UUID      `json:"run_id"`
	Mode     RunMode        `json:"mode"`
	Database string         `json:"database"`
	Tables   []LoadProgress `json:"tables"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
}

// TotalInserted sums inserted rows across all loaded tables.
func (s *RunSummary) TotalInserted() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.RecordsInserted
	}
	return total
}

// RunConfig contains all parameters needed for a load run.
type RunConfig struct {
	// SourcePath is the dump directory containing the XML files.
	SourcePath string

	// DatabaseName is the target database name.
	DatabaseName string

	// MaintenanceDatabase is the database to connect to for server-level operations
	// (CREATE DATABASE, DROP DATABASE). Typically "postgres".
	MaintenanceDatabase string

	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format).
	ConnectionString string

	// Rebuild drops and recreates the target database before loading all tables.
	Rebuild bool

	// Force bypasses interactive approval when used with Rebuild.
	Force bool

	// Tables restricts the run to the named tables. Empty means all tables.
	Tables []string

	// BatchSize is the number of records per flush.
	BatchSize int

	// ExtraTables are user-defined tables from xmlload.yaml.
	ExtraTables []TableDefinition

	// SourceFiles overrides the dump file path per table name.
	SourceFiles map[string]string

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Cloud authentication parameters, used according to AuthMethod.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// Mode returns the run mode implied by the configuration.
func (c *RunConfig) Mode() RunMode {
	if c.Rebuild {
		return ModeRebuild
	}
	return ModeResume
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	// Force requires Rebuild to be set
	if c.Force && !c.Rebuild {
		errs = append(errs, fmt.Errorf("force flag requires rebuild to be enabled: %w", ErrInvalidConfig))
	}

	// A rebuild empties the whole store, so it always loads every table
	if c.Rebuild && len(c.Tables) > 0 {
		errs = append(errs, fmt.Errorf("rebuild loads every table and cannot be combined with a table selection: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Client certificate authentication
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod parses the auth_method value of xmlload.yaml.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "awsiam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// IsTemplateDatabase reports whether name is one of PostgreSQL's template databases.
func IsTemplateDatabase(name string) bool {
	return strings.EqualFold(name, "template0") || strings.EqualFold(name, "template1")
}
