// Package manager implements database lifecycle operations for the load
// target: existence checks, creation, drop, and termination of other
// sessions.
//
// Statements run against the maintenance database. Identifiers are quoted
// with pgx.Identifier.Sanitize(), so names with spaces, quotes or mixed
// case are handled exactly as given.
//
//	mgr := manager.New()
//	exists, err := mgr.Exists(ctx, conn, "stackdump")
//	err = mgr.TerminateConnections(ctx, conn, "stackdump")
//	err = mgr.Drop(ctx, conn, "stackdump")
//	err = mgr.Create(ctx, conn, "stackdump")
package manager
