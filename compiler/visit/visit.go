// Package visit implements the passes rewriting a mapping bucket into a
// consistent, validated model.
//
// Passes run in a fixed order; each relies on the invariants established by
// the previous ones:
//
//  1. SubclassPairing builds the inheritance trees.
//  2. ComponentResolution splices external components into reference sites.
//  3. ColumnPrefix applies component column prefixes.
//  4. RelationshipPairing links the two sides of bidirectional associations.
//  5. ManyToManyTableNames names unnamed join tables.
//  6. Conventions applies the registered conventions.
//  7. KeyPairing derives key columns, using the other side where paired.
//  8. Validation checks the structural rules.
//
// Extra bucket visitors run between KeyPairing and Validation.
package visit

import (
	"log/slog"

	"github.com/syssam/fluentmap/conventions"
	"github.com/syssam/fluentmap/model"
)

// Visitor rewrites a bucket in place.
type Visitor interface {
	Name() string
	Visit(*model.Bucket) error
}

// DocumentVisitor rewrites the compiled document.
type DocumentVisitor interface {
	Name() string
	VisitDocument(*model.Document) error
}

// Func adapts a function to a Visitor.
type Func struct {
	Pass string
	Fn   func(*model.Bucket) error
}

// Name implements Visitor.
func (f Func) Name() string { return f.Pass }

// Visit implements Visitor.
func (f Func) Visit(b *model.Bucket) error { return f.Fn(b) }

// DocumentFunc adapts a function to a DocumentVisitor.
type DocumentFunc struct {
	Pass string
	Fn   func(*model.Document) error
}

// Name implements DocumentVisitor.
func (f DocumentFunc) Name() string { return f.Pass }

// VisitDocument implements DocumentVisitor.
func (f DocumentFunc) VisitDocument(d *model.Document) error { return f.Fn(d) }

// Options configure the default chain.
type Options struct {
	Logger      *slog.Logger
	Conventions *conventions.Container
	Pairing     PairingStrategy
	// Validate enables the validation pass.
	Validate bool
	// Extra visitors run after the built-in rewrites and before validation.
	Extra []Visitor
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Chain returns the bucket passes in execution order.
func Chain(o Options) []Visitor {
	l := o.logger()
	pairing := o.Pairing
	if pairing == nil {
		pairing = NoPairing
	}
	chain := []Visitor{
		&SubclassPairing{Logger: l},
		&ComponentResolution{},
		&ColumnPrefix{},
		&RelationshipPairing{Strategy: pairing, Logger: l},
		&ManyToManyTableNames{},
		&Conventions{Container: o.Conventions},
		&KeyPairing{},
	}
	chain = append(chain, o.Extra...)
	if o.Validate {
		chain = append(chain, &Validation{})
	}
	return chain
}

// DocumentChain returns the document passes in execution order.
func DocumentChain(o Options) []DocumentVisitor {
	return []DocumentVisitor{&DocumentConventions{Container: o.Conventions}}
}

// owners visits every class and subclass of the bucket's trees, passing the
// parent of each subclass.
func owners(b *model.Bucket, fn func(n model.Node, parent model.Node)) {
	var sub func(s *model.SubclassMapping, parent model.Node)
	sub = func(s *model.SubclassMapping, parent model.Node) {
		fn(s, parent)
		for _, c := range s.Subclasses {
			sub(c, s)
		}
	}
	for _, c := range b.Classes {
		fn(c, nil)
		for _, s := range c.Subclasses {
			sub(s, c)
		}
	}
}

// collections returns every collection reachable from the bucket's classes,
// in walk order.
func collections(b *model.Bucket) []*model.CollectionMapping {
	var out []*model.CollectionMapping
	for _, c := range b.Classes {
		model.Walk(c, func(n model.Node) bool {
			if col, ok := n.(*model.CollectionMapping); ok {
				out = append(out, col)
			}
			return true
		})
	}
	return out
}

// references returns every many-to-one declared on an entity, including
// those of its components and joins.
func references(b *model.Bucket) []*model.ManyToOneMapping {
	var out []*model.ManyToOneMapping
	for _, c := range b.Classes {
		model.Walk(c, func(n model.Node) bool {
			if r, ok := n.(*model.ManyToOneMapping); ok {
				out = append(out, r)
			}
			return true
		})
	}
	return out
}
