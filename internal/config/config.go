// Package config loads the optional xmlload.yaml project file that sits
// next to the dump files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "xmlload.yaml"

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
	SSLCert            string `yaml:"sslcert,omitempty"`
	SSLKey             string `yaml:"sslkey,omitempty"`
	SSLRootCert        string `yaml:"sslrootcert,omitempty"`
	AuthMethod         string `yaml:"auth_method,omitempty"`
	AzureTenantID      string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID      string `yaml:"azure_client_id,omitempty"`
	AWSRegion          string `yaml:"aws_region,omitempty"`
	GoogleInstance     string `yaml:"google_instance,omitempty"`
}

// ColumnConfig is one column of a user-defined table.
type ColumnConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
}

// TableConfig declares an extra table, or replaces a built-in one with the same name.
type TableConfig struct {
	Name    string         `yaml:"name"`
	Source  string         `yaml:"source"`
	Columns []ColumnConfig `yaml:"columns"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// BatchSize overrides the default number of records per flush. Zero means unset.
	BatchSize int `yaml:"batch_size,omitempty"`

	// Files maps a table name to its dump file, relative to the dump directory.
	Files map[string]string `yaml:"files,omitempty"`

	Tables []TableConfig `yaml:"tables,omitempty"`
}

// Load reads xmlload.yaml from dumpDir.
func Load(dumpDir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dumpDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", configPath, xmlload.ErrInvalidConfig, err)
	}
	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("%s: batch_size must be positive, got %d: %w", configPath, cfg.BatchSize, xmlload.ErrInvalidConfig)
	}
	return &cfg, nil
}

// LoadOptional is Load that treats a missing file as an empty configuration.
func LoadOptional(dumpDir string) (*ProjectConfig, error) {
	cfg, err := Load(dumpDir)
	if errors.Is(err, ErrConfigNotFound) {
		return &ProjectConfig{}, nil
	}
	return cfg, err
}

// TableDefinitions converts the tables section into validated definitions.
func (c *ProjectConfig) TableDefinitions() ([]xmlload.TableDefinition, error) {
	if c == nil || len(c.Tables) == 0 {
		return nil, nil
	}

	var errs []error
	defs := make([]xmlload.TableDefinition, 0, len(c.Tables))
	for _, tc := range c.Tables {
		def := xmlload.TableDefinition{Name: tc.Name, Source: tc.Source}
		for _, cc := range tc.Columns {
			colType, err := xmlload.ParseColumnType(cc.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("table %q column %q: %w", tc.Name, cc.Name, err))
				continue
			}
			def.Columns = append(def.Columns, xmlload.ColumnSpec{Name: cc.Name, Type: colType, PrimaryKey: cc.PrimaryKey})
		}
		if def.Source == "" {
			errs = append(errs, fmt.Errorf("table %q needs a source file: %w", tc.Name, xmlload.ErrInvalidConfig))
		}
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
		}
		defs = append(defs, def)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return defs, nil
}
