// Package compiler turns mapping providers into a compiled model.Document.
//
// A compilation gathers the actions of every provider, files the fragments
// they produce into a model.Bucket, runs the pass chain of the visit package
// over the bucket and finally assembles the document:
//
//	c, err := compiler.New(
//		compiler.WithProviders(customerMap, orderMap),
//		compiler.WithConventions(conventions.PluralizeTableNames()),
//		compiler.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	doc, err := c.Compile(ctx)
//
// A Compiler is single use. Compilation is all or nothing: the first error
// of a provider, the automapper or a pass aborts it.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler/visit"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// ErrCompiled is returned when Compile is called twice on one Compiler.
var ErrCompiled = errors.New("fluentmap: compiler already used")

// Compiler compiles one set of providers.
type Compiler struct {
	cfg  *Config
	used atomic.Bool
}

// New returns a compiler configured by opts.
func New(opts ...Option) (*Compiler, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Compiler{cfg: cfg}, nil
}

// NewFromConfig returns a compiler using cfg as is.
func NewFromConfig(cfg *Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Config returns the compiler configuration.
func (c *Compiler) Config() *Config { return c.cfg }

// Compile runs a one-off compilation configured by opts.
func Compile(ctx context.Context, opts ...Option) (*model.Document, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx)
}

// Compile gathers the actions, assembles the bucket, runs the passes and
// returns the document.
func (c *Compiler) Compile(ctx context.Context) (*model.Document, error) {
	if !c.used.CompareAndSwap(false, true) {
		return nil, ErrCompiled
	}
	id := uuid.NewString()
	log := c.cfg.Logger.With("compilation_id", id)
	ctx, span := c.cfg.Tracer.Start(ctx, "fluentmap.compile",
		trace.WithAttributes(attribute.String("fluentmap.compilation_id", id)))
	defer span.End()

	start := time.Now()
	doc, err := c.compile(ctx, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("compilation failed", "error", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("fluentmap.classes", len(doc.Classes)),
		attribute.Int("fluentmap.filters", len(doc.Filters)),
		attribute.Int("fluentmap.imports", len(doc.Imports)),
	)
	log.Info("mappings compiled",
		"classes", len(doc.Classes),
		"filters", len(doc.Filters),
		"imports", len(doc.Imports),
		"duration", time.Since(start),
	)
	return doc, nil
}

func (c *Compiler) compile(ctx context.Context, log *slog.Logger) (*model.Document, error) {
	actions, err := c.actions(log)
	if err != nil {
		return nil, err
	}
	b, err := c.bucket(log, actions)
	if err != nil {
		return nil, err
	}
	opts := visit.Options{
		Logger:      log,
		Conventions: c.cfg.Conventions,
		Pairing:     c.cfg.Pairing,
		Validate:    c.cfg.Validate,
		Extra:       c.cfg.BucketVisitors,
	}
	for _, v := range visit.Chain(opts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.pass(ctx, log, v.Name(), func() error { return v.Visit(b) }); err != nil {
			return nil, err
		}
	}
	doc := model.NewDocument()
	for _, v := range visit.DocumentChain(opts) {
		if err := c.pass(ctx, log, v.Name(), func() error { return v.VisitDocument(doc) }); err != nil {
			return nil, err
		}
	}
	doc.Classes = append(doc.Classes, b.Classes...)
	doc.Filters = append(doc.Filters, b.Filters...)
	doc.Imports = append(doc.Imports, b.Imports...)
	for _, v := range c.cfg.Visitors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.pass(ctx, log, v.Name(), func() error { return v.VisitDocument(doc) }); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// pass runs fn inside a child span.
func (c *Compiler) pass(ctx context.Context, log *slog.Logger, name string, fn func() error) error {
	_, span := c.cfg.Tracer.Start(ctx, "fluentmap.pass."+name,
		trace.WithAttributes(attribute.String("fluentmap.pass", name)))
	defer span.End()
	start := time.Now()
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("fluentmap: %s pass: %w", name, err)
	}
	log.Debug("pass completed", "pass", name, "duration", time.Since(start))
	return nil
}

// gathered holds the actions of a compilation split by kind, each in
// discovery order.
type gathered struct {
	manual   []*fluentmap.ManualAction
	automap  []*fluentmap.AutomapAction
	partials []*fluentmap.PartialAutomapAction
}

// actions collects the actions of the registered providers, then of the
// provider sources.
func (c *Compiler) actions(log *slog.Logger) (*gathered, error) {
	providers := append([]fluentmap.Provider(nil), c.cfg.Providers...)
	for _, src := range c.cfg.Sources {
		ps := src.Providers()
		log.Debug("provider source", "source", src.Identifier(), "providers", len(ps))
		providers = append(providers, ps...)
	}
	g := &gathered{}
	for _, p := range providers {
		if v, ok := p.(interface{ Err() error }); ok {
			if err := v.Err(); err != nil {
				return nil, err
			}
		}
		if s, ok := p.(interface{ Source() fluentmap.TypeSource }); ok && s.Source() != nil {
			s.Source().LogSource(log)
		}
		switch a := p.Action().(type) {
		case *fluentmap.ManualAction:
			g.manual = append(g.manual, a)
		case *fluentmap.AutomapAction:
			g.automap = append(g.automap, a)
		case *fluentmap.PartialAutomapAction:
			g.partials = append(g.partials, a)
		default:
			return nil, fluentmap.NewUnrecognizedActionError(a)
		}
	}
	for _, p := range g.partials {
		composed := false
		for _, a := range g.automap {
			if containsType(a.Types, p.Type) {
				a.Compose(p)
				composed = true
			}
		}
		if !composed {
			log.Warn("override has no automapped type", "type", p.Type.String())
		}
	}
	return g, nil
}

// bucket files manual fragments first, then automapped ones. Types mapped
// manually are not automapped.
func (c *Compiler) bucket(log *slog.Logger, g *gathered) (*model.Bucket, error) {
	b := &model.Bucket{}
	mapped := make(map[*types.Type]bool)
	for _, a := range g.manual {
		if a.Mapping == nil {
			return nil, fluentmap.NewUnrecognizedActionError(a)
		}
		if t := entityType(a.Mapping); t != nil {
			if mapped[t] {
				return nil, fluentmap.NewDuplicateMappingError(t.String())
			}
			mapped[t] = true
		}
		b.Add(a.Mapping)
	}
	for _, a := range g.automap {
		for _, t := range a.Types {
			if mapped[t] {
				log.Debug("automapping skipped mapped type", "type", t.String())
				continue
			}
			frags, err := c.cfg.Automapper.Map(t, a.Types, a.Setup(t))
			if err != nil {
				return nil, fmt.Errorf("fluentmap: automapping %s: %w", t, err)
			}
			for _, f := range frags {
				if ft := entityType(f); ft != nil {
					mapped[ft] = true
				}
			}
			b.Add(frags...)
		}
	}
	log.Debug("bucket assembled",
		"classes", len(b.Classes),
		"subclasses", len(b.Subclasses),
		"components", len(b.Components),
		"filters", len(b.Filters),
		"imports", len(b.Imports),
	)
	return b, nil
}

// Documents returns the documents to serialize for doc: doc itself when
// mappings are merged, one document per class otherwise.
func (c *Compiler) Documents(doc *model.Document) []*model.Document {
	if c.cfg.MergeMappings {
		return []*model.Document{doc}
	}
	return doc.Split()
}

func entityType(m model.TopMapping) *types.Type {
	switch m := m.(type) {
	case *model.ClassMapping:
		return m.Type
	case *model.SubclassMapping:
		return m.Type
	}
	return nil
}

func containsType(ts []*types.Type, t *types.Type) bool {
	for _, x := range ts {
		if x.Is(t) {
			return true
		}
	}
	return false
}
