// Package logging provides concrete implementations of the xmlload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr with thread-safe output
//   - NullLogger: Discards all messages (useful for testing)
//
// ProgressLogger turns per-batch load progress into verbose log lines for
// non-interactive runs.
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
