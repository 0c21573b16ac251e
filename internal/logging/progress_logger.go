package logging

import (
	"fmt"
	"time"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// ProgressLogger reports each flushed batch as a verbose log line.
type ProgressLogger struct {
	logger xmlload.Logger
}

// NewProgressLogger creates a ProgressLogger writing to logger.
func NewProgressLogger(logger xmlload.Logger) *ProgressLogger {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ProgressLogger{logger: logger}
}

// Report implements xmlload.ProgressReporter.
func (p *ProgressLogger) Report(progress xmlload.LoadProgress) {
	p.logger.Verbose("%s: batch %d, %d processed, %d inserted, %d skipped (%s, %s)",
		progress.Table,
		progress.Batches,
		progress.RecordsProcessed,
		progress.RecordsInserted,
		progress.Skipped(),
		progress.Elapsed.Round(time.Millisecond),
		FormatRate(progress.RecordsProcessed, progress.Elapsed),
	)
}

// FormatRate renders a records-per-second throughput.
func FormatRate(records int64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "- rows/s"
	}
	rate := float64(records) / elapsed.Seconds()
	switch {
	case rate >= 1e6:
		return fmt.Sprintf("%.1fM rows/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.1fk rows/s", rate/1e3)
	default:
		return fmt.Sprintf("%.0f rows/s", rate)
	}
}
