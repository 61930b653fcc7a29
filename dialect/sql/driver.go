package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/syssam/fluentmap/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue doubles single quotes and escapes backslashes for MySQL.
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Driver is a dialect.Driver implementation for SQL based databases.
type Driver struct {
	Conn
	dialect string
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger logs every statement at debug level to l.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDriver creates a new Driver with the given Conn and dialect.
func NewDriver(dialect string, c Conn, opts ...Option) *Driver {
	d := &Driver{dialect: dialect, Conn: c}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Conn.dialect = dialect
	return d
}

// Open opens a database of the given dialect. The dialect name doubles as
// the database/sql driver name.
func Open(dialect, source string, opts ...Option) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(dialect, Conn{ExecQuerier: db}, opts...), nil
}

// OpenSettings validates s and opens the database it describes.
func OpenSettings(s dialect.Settings, opts ...Option) (*Driver, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	src, err := s.DataSource()
	if err != nil {
		return nil, err
	}
	return Open(s.Dialect, src, opts...)
}

// OpenDB wraps the given database/sql.DB method with a Driver.
func OpenDB(dialect string, db *sql.DB, opts ...Option) *Driver {
	return NewDriver(dialect, Conn{ExecQuerier: db}, opts...)
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect implements the dialect.Dialect method.
func (d Driver) Dialect() string {
	for _, name := range dialect.Names() {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	d.log.DebugContext(ctx, "begin transaction", "dialect", d.dialect)
	return &Tx{
		Conn: Conn{ExecQuerier: tx, dialect: d.dialect, log: d.log},
		Tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx implements dialect.Tx interface.
type Tx struct {
	Conn
	driver.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	t.logger().Debug("commit transaction")
	return t.Tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	t.logger().Debug("rollback transaction")
	return t.Tx.Rollback()
}

type ctxVarsKey struct{}

// sessionVar is a variable attached with WithVar.
type sessionVar struct{ name, value string }

// WithVar returns a context whose statements first set the session variable
// name, for example the Postgres search_path. Later values of the same name
// win.
func WithVar(ctx context.Context, name, value string) context.Context {
	vars, _ := ctx.Value(ctxVarsKey{}).([]sessionVar)
	return context.WithValue(ctx, ctxVarsKey{}, append(slices.Clip(vars), sessionVar{name: name, value: value}))
}

// VarFromContext returns the value of the session variable name in ctx.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	vars, _ := ctx.Value(ctxVarsKey{}).([]sessionVar)
	for i := len(vars) - 1; i >= 0; i-- {
		if vars[i].name == name {
			return vars[i].value, true
		}
	}
	return "", false
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect string
	log     *slog.Logger
}

func (c Conn) logger() *slog.Logger {
	if c.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.log
}

func argList(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	return argv, nil
}

// Exec implements the dialect.Exec method. v is nil or a *Result.
func (c Conn) Exec(ctx context.Context, query string, args, v any) (err error) {
	argv, err := argList(args)
	if err != nil {
		return err
	}
	out, ok := v.(*sql.Result)
	if v != nil && !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	ex, release, err := c.session(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: set session vars: %w", err)
	}
	if release != nil {
		defer func() { err = errors.Join(err, release()) }()
	}
	c.logger().DebugContext(ctx, "exec", "query", query, "args", argv)
	res, err := ex.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if out != nil {
		*out = res
	}
	return nil
}

// Query implements the dialect.Query method. v must be a *Rows; its Close
// also releases the session connection.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	out, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	ex, release, err := c.session(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: set session vars: %w", err)
	}
	c.logger().DebugContext(ctx, "query", "query", query, "args", argv)
	rows, err := ex.QueryContext(ctx, query, argv...)
	switch {
	case err != nil && release != nil:
		return fmt.Errorf("dialect/sql: query: %w", errors.Join(err, release()))
	case err != nil:
		return fmt.Errorf("dialect/sql: query: %w", err)
	case release != nil:
		*out = Rows{rowsWithCloser{rows, release}}
	default:
		*out = Rows{rows}
	}
	return nil
}

// session returns where a statement of ctx runs. Without session variables
// that is c itself. Otherwise the variables are set on the transaction, or
// on a connection taken from the pool whose release func resets them and
// hands the connection back.
func (c Conn) session(ctx context.Context) (ExecQuerier, func() error, error) {
	vars, _ := ctx.Value(ctxVarsKey{}).([]sessionVar)
	if len(vars) == 0 {
		return c, nil, nil
	}
	if c.dialect == dialect.SQLite {
		return nil, nil, fmt.Errorf("session variables are not supported by %s", c.dialect)
	}
	for _, v := range vars {
		if !isValidIdentifier(v.name) {
			return nil, nil, fmt.Errorf("invalid session variable name: %q", v.name)
		}
	}
	var (
		ex      ExecQuerier
		release func() error
		discard = func() error { return nil }
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx:
		ex = e
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, discard = conn, conn.Close
		release = func() error { return resetVars(conn, c.dialect, vars) }
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	for _, v := range vars {
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", v.name, escapeStringValue(v.value))); err != nil {
			return nil, nil, errors.Join(err, discard())
		}
	}
	return ex, release, nil
}

// resetVars restores the variables of a pooled connection and closes it.
// It runs on its own context so a canceled statement still returns a clean
// connection to the pool.
func resetVars(conn *sql.Conn, name string, vars []sessionVar) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v.name] {
			continue
		}
		seen[v.name] = true
		var q string
		switch name {
		case dialect.Postgres:
			q = "RESET " + v.name
		case dialect.MySQL:
			q = "SET " + v.name + " = NULL"
		default:
			continue
		}
		if _, err := conn.ExecContext(ctx, q); err != nil {
			return errors.Join(err, conn.Close())
		}
	}
	return conn.Close()
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}
