package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// StreamingTableLoader loads record sources into tables over one connection.
// Not safe for concurrent use; tables are loaded one after another.
type StreamingTableLoader struct {
	conn   xmlload.DBConnection
	logger xmlload.Logger
	now    func() time.Time
}

// New creates a StreamingTableLoader writing through conn.
func New(conn xmlload.DBConnection, logger xmlload.Logger) *StreamingTableLoader {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StreamingTableLoader{conn: conn, logger: logger, now: time.Now}
}

// EnsureTable creates the table for def if it does not exist yet.
// An existing table is left untouched, even when its columns differ.
func (l *StreamingTableLoader) EnsureTable(ctx context.Context, def xmlload.TableDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	ddl := CreateTableSQL(def)
	l.logger.Verbose("Ensuring table %s", def.Name)
	if _, err := l.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %q: %w: %w", def.Name, xmlload.ErrStorage, err)
	}
	return nil
}

// Load streams src into the table described by def.
//
// Records are flushed every batchSize rows and once more for a non-empty
// remainder when src is exhausted. reporter, if not nil, is called after
// each flush. When src fails, records read since the last flush are
// discarded and the error is returned; flushed batches stay committed.
func (l *StreamingTableLoader) Load(ctx context.Context, def xmlload.TableDefinition, src xmlload.RecordSource, batchSize int, reporter xmlload.ProgressReporter) (xmlload.LoadProgress, error) {
	progress := xmlload.LoadProgress{Table: def.Name}

	if batchSize <= 0 {
		return progress, fmt.Errorf("batch size must be positive, got %d: %w", batchSize, xmlload.ErrInvalidConfig)
	}
	if len(def.Columns) == 0 {
		return progress, fmt.Errorf("table %q has no columns: %w", def.Name, xmlload.ErrInvalidConfig)
	}

	start := l.now()
	insertSQL := InsertSQL(def)
	pending := newBatch(len(def.Columns), batchSize)

	flush := func() error {
		tag, err := l.conn.Exec(ctx, insertSQL, pending.args()...)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d into %q: %w: %w", progress.Batches+1, def.Name, xmlload.ErrStorage, err)
		}

		progress.RecordsProcessed += int64(pending.len())
		progress.RecordsInserted += tag.RowsAffected()
		progress.Batches++
		progress.Elapsed = l.now().Sub(start)
		pending.reset()

		if reporter != nil {
			reporter.Report(progress)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return progress, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if pending.len() > 0 {
				l.logger.Verbose("%s: discarding %d unflushed records", def.Name, pending.len())
			}
			return progress, err
		}

		pending.add(def, rec)
		if pending.len() >= batchSize {
			if err := flush(); err != nil {
				return progress, err
			}
		}
	}

	if pending.len() > 0 {
		if err := flush(); err != nil {
			return progress, err
		}
	}

	progress.Elapsed = l.now().Sub(start)
	return progress, nil
}

// Verify StreamingTableLoader implements TableLoader at compile time
var _ xmlload.TableLoader = (*StreamingTableLoader)(nil)
