package logging

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

func TestConsoleLogger_Verbose(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"enabled", true, "[VERBOSE] loading votes: 3\n"},
		{"disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewConsoleLoggerWithWriter(&buf, tt.verbose)
			logger.Verbose("loading %s: %d", "votes", 3)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerWithWriter(&buf, false)

	logger.Info("loaded %d rows", 10)
	logger.Error("failed: %s", "boom")
	logger.Info("100% done")

	assert.Equal(t, "loaded 10 rows\n[ERROR] failed: boom\n100% done\n", buf.String())
}

func TestConsoleLogger_NilWriterPanics(t *testing.T) {
	assert.Panics(t, func() { NewConsoleLoggerWithWriter(nil, false) })
}

func TestConsoleLogger_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerWithWriter(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 100)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "message ") || strings.HasPrefix(line, "[VERBOSE] verbose "), line)
	}
}

func TestNullLogger_ConcurrentSafety(t *testing.T) {
	logger := NewNullLogger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()
}

func TestProgressLogger_Report(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressLogger(NewConsoleLoggerWithWriter(&buf, true))

	reporter.Report(xmlload.LoadProgress{
		Table:            "votes",
		RecordsProcessed: 20000,
		RecordsInserted:  19990,
		Batches:          2,
		Elapsed:          2 * time.Second,
	})

	assert.Equal(t, "[VERBOSE] votes: batch 2, 20000 processed, 19990 inserted, 10 skipped (2s, 10.0k rows/s)\n", buf.String())
}

func TestProgressLogger_QuietWithoutVerbose(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressLogger(NewConsoleLoggerWithWriter(&buf, false))
	reporter.Report(xmlload.LoadProgress{Table: "tags", Batches: 1})
	assert.Empty(t, buf.String())
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		records int64
		elapsed time.Duration
		want    string
	}{
		{0, 0, "- rows/s"},
		{500, time.Second, "500 rows/s"},
		{15000, time.Second, "15.0k rows/s"},
		{3_000_000, 2 * time.Second, "1.5M rows/s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRate(tt.records, tt.elapsed))
		})
	}
}

func ExampleNullLogger() {
	logger := NewNullLogger()
	logger.Info("This message is discarded")
	logger.Verbose("This too")
	logger.Error("And this")
	fmt.Println("Done")
	// Output:
	// Done
}
