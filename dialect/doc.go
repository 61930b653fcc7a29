// Package dialect describes the databases a compiled mapping can target.
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Settings carries the database part of an engine configuration: the
// dialect, the connection string and the schema and logging switches the
// engine reads. Settings are validated before they reach the engine:
//
//	s := dialect.ForPostgres("postgres://app@localhost/shop?sslmode=disable")
//	s.DefaultSchema = "sales"
//	if err := s.Validate(); err != nil {
//	    return err
//	}
//	props := s.EngineProperties()
//
// The Driver, Tx and ExecQuerier interfaces are implemented by dialect/sql
// and consumed by the schema exporter in dialect/sql/schema.
package dialect
