package loader_test

import (
	"context"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// mockDBConnection is a test double for xmlload.DBConnection
type mockDBConnection struct {
	execFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockDBConnection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *mockDBConnection) QueryRow(ctx context.Context, sql string, args ...any) xmlload.Row {
	return nil
}

func (m *mockDBConnection) Acquire(ctx context.Context) (xmlload.PooledConnection, error) {
	return nil, nil
}

// flushRecorder captures every insert, copying the bound columns because
// the loader reuses its buffers after Exec returns.
type flushRecorder struct {
	flushes [][][]pgtype.Text
	// inserted decides RowsAffected per flush; nil means every row is new.
	inserted func(rows int) int
}

func (r *flushRecorder) conn() *mockDBConnection {
	return &mockDBConnection{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			cols := make([][]pgtype.Text, len(args))
			for i, a := range args {
				col := a.([]pgtype.Text)
				cols[i] = append([]pgtype.Text(nil), col...)
			}
			r.flushes = append(r.flushes, cols)

			rows := len(cols[0])
			n := rows
			if r.inserted != nil {
				n = r.inserted(rows)
			}
			return insertTag(n), nil
		},
	}
}

func (r *flushRecorder) sizes() []int {
	sizes := make([]int, len(r.flushes))
	for i, f := range r.flushes {
		sizes[i] = len(f[0])
	}
	return sizes
}

func insertTag(n int) pgconn.CommandTag {
	return pgconn.NewCommandTag("INSERT 0 " + strconv.Itoa(n))
}

// sliceSource yields records from memory and then fails with err, or io.EOF.
type sliceSource struct {
	records []xmlload.Record
	err     error
	pulled  int
}

func (s *sliceSource) Next() (xmlload.Record, error) {
	if s.pulled < len(s.records) {
		rec := s.records[s.pulled]
		s.pulled++
		return rec, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

// generatedSource yields n votes records without holding them in memory.
type generatedSource struct {
	n      int
	pulled int
}

func (s *generatedSource) Next() (xmlload.Record, error) {
	if s.pulled >= s.n {
		return nil, io.EOF
	}
	s.pulled++
	return xmlload.Record{"Id": strconv.Itoa(s.pulled), "PostId": "1", "VoteTypeId": "2"}, nil
}
