// Package sql implements dialect.Driver on top of database/sql.
//
// The MySQL, Postgres and SQLite drivers are registered by importing this
// package, so a dialect name can be used directly as the driver name:
//
//	drv, err := sql.OpenSettings(dialect.InMemory(), sql.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Statements are logged at debug level to the injected logger. Session
// variables attached with WithVar are set on a dedicated connection before
// each statement and reset afterwards:
//
//	ctx = sql.WithVar(ctx, "search_path", "sales")
//
// StatsDriver wraps a Driver and counts statements, errors and slow
// statements.
package sql
