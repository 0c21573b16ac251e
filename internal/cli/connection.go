package cli

import (
	"fmt"
	"os"

	"github.com/vvka-141/xmlload/internal/config"
	"github.com/vvka-141/xmlload/internal/db"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// ConnectionStringEnvVar supplies a connection string when --connection is not given.
const ConnectionStringEnvVar = "XMLLOAD_CONNECTION_STRING"

// connectionFlagValues holds the connection flags shared by commands that
// talk to PostgreSQL.
type connectionFlagValues struct {
	connection, host, username, database, sslMode string
	port                                          int

	azure                        bool
	azureTenantID, azureClientID string
	aws                          bool
	awsRegion                    string
	google                       bool
	googleInstance               string
}

// resolveConnection resolves the connection and the target database.
// The returned config's Database is the target; the string is the
// maintenance database used for CREATE and DROP DATABASE.
func resolveConnection(flags connectionFlagValues, projectConfig *config.ProjectConfig, verbose bool) (*xmlload.ConnectionConfig, string, error) {
	connString := flags.connection
	if connString == "" {
		connString = os.Getenv(ConnectionStringEnvVar)
	}

	granular := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}
	cloud := &db.CloudFlags{
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
	}

	connConfig, maintenanceDB, err := db.ResolveConnectionParams(connString, granular, cloud, db.LoadFromEnvironment(), projectConfig)
	if err != nil {
		return nil, "", err
	}

	if connConfig.Database == "" {
		return nil, "", fmt.Errorf("target database name is required\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: xmlload load ./dump -d stackdump\n"+
			"  2. Connection string: xmlload load ./dump --connection \"postgresql://user@host/stackdump\"\n"+
			"  3. Environment variable: export PGDATABASE=stackdump\n"+
			"  4. database in %s: %w", config.ConfigFileName, xmlload.ErrInvalidConfig)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
		fmt.Fprintf(os.Stderr, "  Host: %s\n", connConfig.Host)
		fmt.Fprintf(os.Stderr, "  Port: %d\n", connConfig.Port)
		fmt.Fprintf(os.Stderr, "  User: %s\n", connConfig.Username)
		fmt.Fprintf(os.Stderr, "  Target Database: %s\n", connConfig.Database)
		fmt.Fprintf(os.Stderr, "  Maintenance Database: %s\n", maintenanceDB)
		fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", connConfig.SSLMode)
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", connConfig.AuthMethod)
	}

	return connConfig, maintenanceDB, nil
}
