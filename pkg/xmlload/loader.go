package xmlload

import "context"

// RecordSource is a lazy, finite sequence of records.
// Next returns io.EOF once the source is exhausted. Any other error ends
// the sequence; malformed XML is reported as *ParseError.
type RecordSource interface {
	Next() (Record, error)
}

// ProgressReporter receives LoadProgress after every flushed batch.
// Implementations are called synchronously from the load loop and should return quickly.
type ProgressReporter interface {
	Report(progress LoadProgress)
}

// ProgressFunc adapts a function to the ProgressReporter interface.
type ProgressFunc func(LoadProgress)

// Report calls f(progress).
func (f ProgressFunc) Report(progress LoadProgress) { f(progress) }

// TableLoader streams one record source into one table.
type TableLoader interface {
	// EnsureTable creates the table if it does not exist.
	EnsureTable(ctx context.Context, def TableDefinition) error

	// Load streams src into the table in batches of batchSize, skipping
	// records whose primary key already exists.
	Load(ctx context.Context, def TableDefinition, src RecordSource, batchSize int, reporter ProgressReporter) (LoadProgress, error)
}
