package xmlload

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // All requested tables loaded
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or table definition
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied rebuild approval
	ExitStorageError    = 13 // Table creation or insert rejected by PostgreSQL
	ExitSourceMissing   = 14 // Source XML file not found
	ExitParseError      = 15 // Malformed or truncated XML
)

const (
	// DefaultBatchSize is the number of records accumulated before a flush.
	// Tunable per run; larger batches trade memory for fewer round trips.
	DefaultBatchSize = 10000

	// DefaultManagementDB is the default database to connect to for management operations.
	DefaultManagementDB = "postgres"

	// DefaultAppName is reported to PostgreSQL as application_name.
	DefaultAppName = "xmlload"

	// RowElement is the element name carrying one record in a dump file.
	RowElement = "row"
)
