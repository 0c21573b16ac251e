// Package schema holds the catalog of table definitions a run can load.
//
// The five built-in definitions describe the Q&A site export (comments,
// posts, tags, users, votes). Projects can add tables or replace a built-in
// one through the tables section of xmlload.yaml; Merge combines both into the
// catalog used by a run.
//
// Column names match the XML attribute names exactly. The first column of
// every built-in table is the integer primary key Id.
package schema
