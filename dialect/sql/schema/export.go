// Package schema derives a relational schema from a compiled mapping
// document and emits it as DDL for a dialect.
//
// Tables, columns, primary keys, foreign keys, unique keys and indexes are
// built as Atlas schema objects and planned with the dialect's Atlas
// planner, so the emitted statements are the ones Atlas would run:
//
//	e, err := schema.NewExporter(dialect.Postgres)
//	if err != nil {
//	    return err
//	}
//	stmts, err := e.Statements(ctx, doc)
package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/model"
)

// Exporter turns documents into tables and DDL for one dialect.
type Exporter struct {
	dialect string
	schema  string
	log     *slog.Logger
	planner migrate.PlanApplier
	parse   func(string) (schema.Type, error)
	format  func(schema.Type) (string, error)
	// maxIdent is the identifier length limit, zero if unbounded.
	maxIdent int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDefaultSchema places tables without an explicit schema in name.
func WithDefaultSchema(name string) Option {
	return func(e *Exporter) { e.schema = name }
}

// WithLogger sets the logger for planned and applied statements.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExporter returns an exporter for the named dialect.
func NewExporter(name string, opts ...Option) (*Exporter, error) {
	e := &Exporter{dialect: name, log: slog.New(slog.DiscardHandler)}
	switch name {
	case dialect.MySQL:
		e.planner, e.parse, e.format, e.maxIdent = mysql.DefaultPlan, mysql.ParseType, mysql.FormatType, 64
	case dialect.Postgres:
		e.planner, e.parse, e.format, e.maxIdent = postgres.DefaultPlan, postgres.ParseType, postgres.FormatType, 63
	case dialect.SQLite:
		e.planner, e.parse, e.format = sqlite.DefaultPlan, sqlite.ParseType, sqlite.FormatType
	default:
		return nil, fluentmap.NewConfigError("dialect", name, "unsupported dialect")
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ForSettings returns an exporter for the dialect and default schema of s.
func ForSettings(s dialect.Settings, opts ...Option) (*Exporter, error) {
	return NewExporter(s.Dialect, append([]Option{WithDefaultSchema(s.DefaultSchema)}, opts...)...)
}

// Dialect returns the target dialect.
func (e *Exporter) Dialect() string { return e.dialect }

// Tables returns the tables of doc in creation order: entity tables in
// document order with their subclass tables, then collection tables.
func (e *Exporter) Tables(doc *model.Document) ([]*schema.Table, error) {
	b := newBuilder(e)
	for _, c := range doc.Classes {
		b.register(c)
	}
	for _, c := range doc.Classes {
		b.class(c)
	}
	if err := fluentmap.NewAggregateError(b.errs...); err != nil {
		return nil, err
	}
	return b.tables, nil
}

// Statements returns the DDL creating the tables of doc.
func (e *Exporter) Statements(ctx context.Context, doc *model.Document) ([]string, error) {
	tables, err := e.Tables(doc)
	if err != nil {
		return nil, err
	}
	return e.Plan(ctx, tables)
}

// Plan returns the DDL creating tables.
func (e *Exporter) Plan(ctx context.Context, tables []*schema.Table) ([]string, error) {
	changes := make([]schema.Change, len(tables))
	for i, t := range tables {
		changes[i] = &schema.AddTable{T: t}
	}
	plan, err := e.planner.PlanChanges(ctx, "fluentmap", changes)
	if err != nil {
		return nil, fmt.Errorf("schema: plan %s: %w", e.dialect, err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	e.log.DebugContext(ctx, "schema planned", "dialect", e.dialect, "tables", len(tables), "statements", len(stmts))
	return stmts, nil
}

// WriteTo writes the DDL of doc to w, one statement per line.
func (e *Exporter) WriteTo(ctx context.Context, w io.Writer, doc *model.Document) error {
	stmts, err := e.Statements(ctx, doc)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := io.WriteString(w, s+";\n"); err != nil {
			return err
		}
	}
	return nil
}

// Apply creates the tables of doc through drv in one transaction and
// returns the executed statements.
func (e *Exporter) Apply(ctx context.Context, drv dialect.Driver, doc *model.Document) ([]string, error) {
	stmts, err := e.Statements(ctx, doc)
	if err != nil {
		return nil, err
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema: begin: %w", err)
	}
	for _, s := range stmts {
		if err := tx.Exec(ctx, s, []any{}, nil); err != nil {
			return nil, rollback(tx, fmt.Errorf("schema: apply %q: %w", s, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("schema: commit: %w", err)
	}
	e.log.InfoContext(ctx, "schema applied", "dialect", e.dialect, "statements", len(stmts))
	return stmts, nil
}

func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// unquote strips the engine's backtick quoting from an identifier.
func unquote(name string) string {
	return strings.Trim(name, "`")
}
