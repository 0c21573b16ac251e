// Package loader streams parsed dump records into PostgreSQL tables.
//
// A StreamingTableLoader pulls one record at a time from a RecordSource,
// projects it onto the table's columns and accumulates the values in
// column-major buffers. Every full batch is written with a single
// INSERT ... SELECT FROM unnest(...) ON CONFLICT DO NOTHING statement, so a
// batch costs one round trip and one bind parameter per column regardless
// of its row count. Each flush commits on its own: when a load is
// interrupted, earlier batches remain and a re-run skips them by primary key.
//
// Peak memory is bounded by the batch size, not by the size of the dump.
package loader
