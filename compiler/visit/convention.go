package visit

import (
	"github.com/syssam/fluentmap/conventions"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Conventions applies the registered conventions to every node of the
// bucket's trees, parents before children.
type Conventions struct {
	Container *conventions.Container
}

// Name implements Visitor.
func (*Conventions) Name() string { return "conventions" }

// Visit implements Visitor.
func (v *Conventions) Visit(b *model.Bucket) error {
	if v.Container == nil || v.Container.Len() == 0 {
		return nil
	}
	for _, c := range b.Classes {
		model.WalkPath(c, func(n model.Node, path []model.Node) bool {
			conventions.Apply(v.Container, n, entityOf(n, path))
			return true
		})
	}
	return nil
}

// entityOf returns the type of the nearest class or subclass enclosing n,
// n included.
func entityOf(n model.Node, path []model.Node) *types.Type {
	switch n := n.(type) {
	case *model.ClassMapping:
		return n.Type
	case *model.SubclassMapping:
		return n.Type
	}
	for i := len(path) - 1; i >= 0; i-- {
		switch p := path[i].(type) {
		case *model.ClassMapping:
			return p.Type
		case *model.SubclassMapping:
			return p.Type
		}
	}
	return nil
}

// DocumentConventions applies document conventions to the compiled
// document.
type DocumentConventions struct {
	Container *conventions.Container
}

// Name implements DocumentVisitor.
func (*DocumentConventions) Name() string { return "document-conventions" }

// VisitDocument implements DocumentVisitor.
func (v *DocumentConventions) VisitDocument(d *model.Document) error {
	conventions.Apply(v.Container, d, nil)
	return nil
}
