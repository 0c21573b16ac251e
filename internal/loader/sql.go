package loader

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// CreateTableSQL returns the idempotent DDL for def.
// Identifiers are quoted, so "PostId" keeps its case.
func CreateTableSQL(def xmlload.TableDefinition) string {
	cols := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		col := pgx.Identifier{c.Name}.Sanitize() + " " + c.Type.SQLType()
		if c.PrimaryKey {
			col += " PRIMARY KEY"
		}
		cols[i] = col
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{def.Name}.Sanitize(), strings.Join(cols, ", "))
}

// InsertSQL returns the batch insert statement for def.
//
// Parameter $n is a text[] holding column n-1 for every row of the batch;
// unnest zips the arrays back into rows and each value is cast to the
// column type. Rows whose key already exists are skipped.
func InsertSQL(def xmlload.TableDefinition) string {
	n := len(def.Columns)
	targets := make([]string, n)
	selects := make([]string, n)
	arrays := make([]string, n)
	aliases := make([]string, n)

	for i, c := range def.Columns {
		targets[i] = pgx.Identifier{c.Name}.Sanitize()
		selects[i] = fmt.Sprintf("u.c%d::%s", i, c.Type.SQLType())
		arrays[i] = fmt.Sprintf("$%d::text[]", i+1)
		aliases[i] = fmt.Sprintf("c%d", i)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM unnest(%s) AS u(%s) ON CONFLICT DO NOTHING",
		pgx.Identifier{def.Name}.Sanitize(),
		strings.Join(targets, ", "),
		strings.Join(selects, ", "),
		strings.Join(arrays, ", "),
		strings.Join(aliases, ", "),
	)
}
