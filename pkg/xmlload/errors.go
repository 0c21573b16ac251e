package xmlload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := service.Run(ctx, config)
//	if errors.Is(err, xmlload.ErrParse) {
//	    // the dump file is malformed; batches before the failure are committed
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrApprovalDenied indicates the user denied approval for the rebuild.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrStorage indicates PostgreSQL rejected a table creation or insert.
	ErrStorage = errors.New("storage error")

	// ErrParse indicates the source stream is not well-formed XML.
	ErrParse = errors.New("parse error")

	// ErrSourceNotFound indicates no dump file exists for a table.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrUnknownTable indicates a table name is not in the catalog.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUsage indicates invalid command-line arguments or flags.
	ErrUsage = errors.New("usage error")
)

// ParseError describes malformed XML in a dump file.
// It matches ErrParse with errors.Is.
type ParseError struct {
	File    string // Dump file name, may be empty for anonymous readers
	Line    int    // Line number (0 if unknown)
	Message string // Decoder message
	Err     error  // Underlying decoder error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	location := e.File
	if location == "" {
		location = "<stream>"
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", location, e.Line)
	}
	return fmt.Sprintf("malformed XML in %s: %s\n\nHint: the file may be truncated. Rows committed before this point are kept; fix or re-download the file and re-run for this table.", location, e.Message)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnknownTable):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrStorage):
		return ExitStorageError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
