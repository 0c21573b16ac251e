package loader

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// batch buffers projected rows column by column.
type batch struct {
	columns [][]pgtype.Text
	rows    int
}

func newBatch(columnCount, capacity int) *batch {
	b := &batch{columns: make([][]pgtype.Text, columnCount)}
	for i := range b.columns {
		b.columns[i] = make([]pgtype.Text, 0, capacity)
	}
	return b
}

// add projects rec onto the columns of def. Absent attributes become NULL;
// attributes not named by def are dropped.
func (b *batch) add(def xmlload.TableDefinition, rec xmlload.Record) {
	for i, c := range def.Columns {
		v, ok := rec[c.Name]
		b.columns[i] = append(b.columns[i], pgtype.Text{String: v, Valid: ok})
	}
	b.rows++
}

func (b *batch) len() int { return b.rows }

// args returns one bind argument per column.
func (b *batch) args() []any {
	args := make([]any, len(b.columns))
	for i, col := range b.columns {
		args[i] = col
	}
	return args
}

// reset empties the batch, keeping the allocated buffers.
func (b *batch) reset() {
	for i := range b.columns {
		clear(b.columns[i])
		b.columns[i] = b.columns[i][:0]
	}
	b.rows = 0
}
