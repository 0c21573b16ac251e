package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

type mockApprover struct {
	approved bool
	err      error
	asked    []string
}

func (m *mockApprover) RequestApproval(_ context.Context, dbName string) (bool, error) {
	m.asked = append(m.asked, dbName)
	return m.approved, m.err
}

// mockDatabaseManager records every lifecycle call as "op:db".
type mockDatabaseManager struct {
	existsResult bool
	existsErr    error
	createErr    error
	dropErr      error
	terminateErr error
	calls        []string
}

func (m *mockDatabaseManager) Exists(_ context.Context, _ xmlload.DBConnection, name string) (bool, error) {
	m.calls = append(m.calls, "exists:"+name)
	return m.existsResult, m.existsErr
}

func (m *mockDatabaseManager) Create(_ context.Context, _ xmlload.DBConnection, name string) error {
	m.calls = append(m.calls, "create:"+name)
	return m.createErr
}

func (m *mockDatabaseManager) Drop(_ context.Context, _ xmlload.DBConnection, name string) error {
	m.calls = append(m.calls, "drop:"+name)
	return m.dropErr
}

func (m *mockDatabaseManager) TerminateConnections(_ context.Context, _ xmlload.DBConnection, name string) error {
	m.calls = append(m.calls, "terminate:"+name)
	return m.terminateErr
}

type nopConnection struct{}

func (nopConnection) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (nopConnection) QueryRow(context.Context, string, ...any) xmlload.Row { return nopRow{} }

func (nopConnection) Acquire(context.Context) (xmlload.PooledConnection, error) {
	return nil, errors.New("not supported")
}

type nopRow struct{}

func (nopRow) Scan(...any) error { return nil }

// fakeConnector hands out nopConnections and tracks which databases were
// opened and whether every one was cleaned up.
type fakeConnector struct {
	mu      sync.Mutex
	err     error
	opened  []string
	open    int
	configs []xmlload.ConnectionConfig
}

func (f *fakeConnector) connect(_ context.Context, cfg *xmlload.ConnectionConfig, dbName string) (xmlload.DBConnection, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	f.opened = append(f.opened, dbName)
	f.configs = append(f.configs, *cfg)
	f.open++
	return nopConnection{}, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.open--
	}, nil
}

// fakeTableLoader drains each source and counts its records as inserted.
type fakeTableLoader struct {
	ensured   []string
	loaded    []string
	ensureErr error
}

func (f *fakeTableLoader) EnsureTable(_ context.Context, def xmlload.TableDefinition) error {
	f.ensured = append(f.ensured, def.Name)
	return f.ensureErr
}

func (f *fakeTableLoader) Load(ctx context.Context, def xmlload.TableDefinition, src xmlload.RecordSource, batchSize int, reporter xmlload.ProgressReporter) (xmlload.LoadProgress, error) {
	progress := xmlload.LoadProgress{Table: def.Name}
	for {
		_, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return progress, err
		}
		progress.RecordsProcessed++
		progress.RecordsInserted++
	}
	progress.Batches = 1
	if reporter != nil {
		reporter.Report(progress)
	}
	f.loaded = append(f.loaded, def.Name)
	return progress, nil
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) Report(p xmlload.LoadProgress) {
	r.events = append(r.events, "report:"+p.Table)
}

func (r *recordingObserver) TableStarted(table string) {
	r.events = append(r.events, "start:"+table)
}

func (r *recordingObserver) TableFinished(p xmlload.LoadProgress) {
	r.events = append(r.events, "finish:"+p.Table)
}
