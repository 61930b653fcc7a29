package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	atlas "ariga.io/atlas/sql/schema"
	"github.com/davecgh/go-spew/spew"
	"go.opentelemetry.io/otel/trace"

	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/compiler/gen"
	"github.com/syssam/fluentmap/compiler/load"
	"github.com/syssam/fluentmap/contrib/graphql"
	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/dialect/sql"
	"github.com/syssam/fluentmap/dialect/sql/schema"
	"github.com/syssam/fluentmap/hbm"
	"github.com/syssam/fluentmap/model"
)

// NewLogger returns the logger described by c, writing to w.
func NewLogger(w io.Writer, c *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Result describes one compilation.
type Result struct {
	Document *model.Document
	// Mappings are the written hbm.xml files.
	Mappings []string
	// Tables are the tables of the document in the target dialect.
	Tables []*atlas.Table
	// DDL, GraphQL and Scaffold are the written files, empty when skipped.
	DDL      string
	GraphQL  string
	Scaffold string
	// Applied are the statements executed against the database.
	Applied []string
}

// Runner compiles a project and writes its outputs.
type Runner struct {
	cfg    *Config
	out    io.Writer
	log    *slog.Logger
	tracer trace.Tracer
	last   *Result
}

// NewRunner returns a runner for c. Reports such as -dump go to out.
func NewRunner(c *Config, out io.Writer, log *slog.Logger) *Runner {
	return &Runner{cfg: c, out: out, log: cmp.Or(log, slog.New(slog.DiscardHandler))}
}

// Run compiles once, or until ctx is done in watch mode.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Trace {
		tracer, shutdown := newTracer(r.log)
		defer shutdown(context.WithoutCancel(ctx))
		r.tracer = tracer
	}
	if r.cfg.Watch {
		return r.watch(ctx)
	}
	_, err := r.Once(ctx)
	return err
}

// Once loads, compiles and writes the project a single time.
func (r *Runner) Once(ctx context.Context) (*Result, error) {
	p, err := load.LoadFile(r.cfg.ProjectPath)
	if err != nil {
		return nil, err
	}
	l, err := p.Build()
	if err != nil {
		return nil, err
	}
	opts := l.Options()
	if r.tracer != nil {
		opts = append(opts, compiler.WithTracer(r.tracer))
	}
	doc, err := compiler.Compile(ctx, opts...)
	if err != nil {
		return nil, err
	}
	res := &Result{Document: doc}

	docs := []*model.Document{doc}
	if !r.cfg.Merge && !p.Output.Merge {
		docs = doc.Split()
	}
	dir := cmp.Or(r.cfg.OutDir, p.OutputDir())
	if res.Mappings, err = hbm.WriteDir(ctx, dir, docs); err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "mappings written", "dir", dir, "files", len(res.Mappings), "classes", len(doc.Classes))

	exp, err := r.exporter(p)
	if err != nil {
		return nil, err
	}
	if res.Tables, err = exp.Tables(doc); err != nil {
		return nil, err
	}
	if res.DDL = cmp.Or(r.cfg.DDL, p.OutputPath(p.Output.DDL)); res.DDL != "" {
		if err := writeFile(res.DDL, func(w io.Writer) error { return exp.WriteTo(ctx, w, doc) }); err != nil {
			return nil, err
		}
		r.log.InfoContext(ctx, "ddl written", "path", res.DDL, "dialect", exp.Dialect(), "tables", len(res.Tables))
	}
	if res.GraphQL = cmp.Or(r.cfg.GraphQL, p.OutputPath(p.Output.GraphQL)); res.GraphQL != "" {
		if err := graphql.WriteFile(res.GraphQL, doc); err != nil {
			return nil, err
		}
		r.log.InfoContext(ctx, "graphql schema written", "path", res.GraphQL)
	}
	if res.Scaffold = cmp.Or(r.cfg.Scaffold, p.OutputPath(p.Output.Scaffold)); res.Scaffold != "" {
		if err := gen.Generate(l, res.Scaffold); err != nil {
			return nil, err
		}
		r.log.InfoContext(ctx, "scaffold written", "path", res.Scaffold)
	}
	if r.cfg.Apply {
		if res.Applied, err = r.apply(ctx, p, exp, doc); err != nil {
			return nil, err
		}
	}
	if r.cfg.Dump {
		spew.Fdump(r.out, doc)
	}
	r.compare(ctx, exp, res)
	r.last = res
	return res, nil
}

func (r *Runner) exporter(p *load.Project) (*schema.Exporter, error) {
	if p.Database == nil {
		return schema.NewExporter(dialect.SQLite, schema.WithLogger(r.log))
	}
	return schema.ForSettings(*p.Database, schema.WithLogger(r.log))
}

func (r *Runner) apply(ctx context.Context, p *load.Project, exp *schema.Exporter, doc *model.Document) ([]string, error) {
	if p.Database == nil {
		return nil, errors.New("cli: -apply requires a database section in the project")
	}
	conn, err := sql.OpenSettings(*p.Database, sql.WithLogger(r.log))
	if err != nil {
		return nil, err
	}
	drv := sql.NewStatsDriver(conn, sql.WithSlowQueryLog(r.log))
	defer drv.Close()
	stmts, err := exp.Apply(ctx, drv, doc)
	if err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "schema applied", "database", p.Database.Database(), "stats", drv.QueryStats().Stats())
	return stmts, nil
}

// compare reports the schema changes since the previous compilation.
func (r *Runner) compare(ctx context.Context, exp *schema.Exporter, res *Result) {
	if r.last == nil {
		return
	}
	v := exp.ValidateDiff(r.last.Tables, res.Tables)
	switch {
	case v.HasBreakingChanges():
		r.log.WarnContext(ctx, "breaking schema change", "report", v.String())
	case v.HasErrors() || v.HasWarnings():
		r.log.InfoContext(ctx, "schema changed", "report", v.String())
	}
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
