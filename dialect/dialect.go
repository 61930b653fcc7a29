package dialect

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/syssam/fluentmap"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for database connections.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Names returns the supported dialect names.
func Names() []string {
	return []string{MySQL, Postgres, SQLite}
}

// Engine property keys.
const (
	PropDialect          = "dialect"
	PropDriverClass      = "connection.driver_class"
	PropConnectionString = "connection.connection_string"
	PropProvider         = "connection.provider"
	PropDefaultSchema    = "default_schema"
	PropShowSQL          = "show_sql"
	PropFormatSQL        = "format_sql"
)

var engineClasses = map[string]struct{ dialect, driver string }{
	MySQL:    {"NHibernate.Dialect.MySQL57Dialect", "NHibernate.Driver.MySqlDataDriver"},
	Postgres: {"NHibernate.Dialect.PostgreSQL83Dialect", "NHibernate.Driver.NpgsqlDriver"},
	SQLite:   {"NHibernate.Dialect.SQLiteDialect", "NHibernate.Driver.SQLite20Driver"},
}

// Settings holds the database configuration handed to the engine.
type Settings struct {
	// Dialect is one of MySQL, Postgres or SQLite.
	Dialect string `yaml:"dialect" msgpack:"dialect"`
	// ConnectionString is a go-sql-driver DSN for MySQL, a URL or a
	// key=value string for Postgres and a file name or URI for SQLite.
	ConnectionString string `yaml:"connection" msgpack:"connection"`
	// DefaultSchema qualifies unqualified tables.
	DefaultSchema string `yaml:"default_schema,omitempty" msgpack:"default_schema,omitempty"`
	// ShowSQL and FormatSQL turn on statement logging in the engine.
	ShowSQL   bool `yaml:"show_sql,omitempty" msgpack:"show_sql,omitempty"`
	FormatSQL bool `yaml:"format_sql,omitempty" msgpack:"format_sql,omitempty"`
	// Properties are passed through untouched and win over derived ones.
	Properties map[string]string `yaml:"properties,omitempty" msgpack:"properties,omitempty"`
}

// ForMySQL returns MySQL settings for dsn.
func ForMySQL(dsn string) Settings {
	return Settings{Dialect: MySQL, ConnectionString: dsn}
}

// ForPostgres returns Postgres settings for a URL or key=value string.
func ForPostgres(conn string) Settings {
	return Settings{Dialect: Postgres, ConnectionString: conn}
}

// ForSQLite returns SQLite settings for the database file path.
func ForSQLite(path string) Settings {
	return Settings{Dialect: SQLite, ConnectionString: path}
}

// InMemory returns settings for a shared in-memory SQLite database.
func InMemory() Settings {
	return ForSQLite("file::memory:?cache=shared&_pragma=foreign_keys(1)")
}

// Validate checks the dialect and parses the connection string with the
// dialect's driver.
func (s Settings) Validate() error {
	if s.Dialect == "" {
		return fluentmap.NewConfigError("dialect", s.Dialect, "dialect is required")
	}
	if !slices.Contains(Names(), s.Dialect) {
		return fluentmap.NewConfigError("dialect", s.Dialect,
			fmt.Sprintf("unsupported dialect, expected one of %s", strings.Join(Names(), ", ")))
	}
	if strings.TrimSpace(s.ConnectionString) == "" {
		return fluentmap.NewConfigError("connection", "", "connection string is required")
	}
	if _, err := s.DataSource(); err != nil {
		return fluentmap.NewConfigError("connection", redact(s.ConnectionString), err.Error())
	}
	return nil
}

// DataSource returns the connection string in the form database/sql
// expects for the dialect. Postgres URLs are converted to key=value form.
func (s Settings) DataSource() (string, error) {
	switch s.Dialect {
	case MySQL:
		if _, err := mysql.ParseDSN(s.ConnectionString); err != nil {
			return "", err
		}
		return s.ConnectionString, nil
	case Postgres:
		if isURL(s.ConnectionString) {
			return pq.ParseURL(s.ConnectionString)
		}
		return s.ConnectionString, nil
	default:
		return s.ConnectionString, nil
	}
}

// Database returns the database name named by the connection string, or the
// file name for SQLite.
func (s Settings) Database() string {
	switch s.Dialect {
	case MySQL:
		if cfg, err := mysql.ParseDSN(s.ConnectionString); err == nil {
			return cfg.DBName
		}
	case Postgres:
		kv := s.ConnectionString
		if isURL(kv) {
			var err error
			if kv, err = pq.ParseURL(kv); err != nil {
				return ""
			}
		}
		for _, f := range strings.Fields(kv) {
			if v, ok := strings.CutPrefix(f, "dbname="); ok {
				return strings.Trim(v, "'")
			}
		}
	case SQLite:
		name, _, _ := strings.Cut(strings.TrimPrefix(s.ConnectionString, "file:"), "?")
		return name
	}
	return ""
}

// EngineProperties returns the engine configuration properties derived
// from s, overlaid with s.Properties.
func (s Settings) EngineProperties() map[string]string {
	props := make(map[string]string)
	if c, ok := engineClasses[s.Dialect]; ok {
		props[PropDialect] = c.dialect
		props[PropDriverClass] = c.driver
		props[PropProvider] = "NHibernate.Connection.DriverConnectionProvider"
	}
	if s.ConnectionString != "" {
		props[PropConnectionString] = s.ConnectionString
	}
	if s.DefaultSchema != "" {
		props[PropDefaultSchema] = s.DefaultSchema
	}
	if s.ShowSQL {
		props[PropShowSQL] = strconv.FormatBool(true)
	}
	if s.FormatSQL {
		props[PropFormatSQL] = strconv.FormatBool(true)
	}
	maps.Copy(props, s.Properties)
	return props
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// redact hides the password of a connection string for error messages.
func redact(conn string) string {
	if at := strings.LastIndex(conn, "@"); at > 0 {
		head := conn[:at]
		if i := strings.LastIndex(head, ":"); i > 0 && !strings.HasPrefix(head[i:], "://") {
			return head[:i+1] + "xxxxx" + conn[at:]
		}
	}
	return conn
}
