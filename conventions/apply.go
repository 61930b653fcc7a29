package conventions

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Apply runs the conventions of c matching the kind of n, in registration
// order. entity is the entity owning n; it identifies the owner of ids and
// versions, which do not record it themselves. Nodes of other kinds are left
// untouched.
func Apply(c *Container, n model.Node, entity *types.Type) {
	if c == nil || c.Len() == 0 {
		return
	}
	switch n := n.(type) {
	case *model.Document:
		i := NewDocumentInstance(n)
		for _, cv := range Find[DocumentConvention](c) {
			cv.ApplyDocument(i)
		}
	case *model.ClassMapping:
		i := NewClassInstance(n)
		for _, cv := range Find[ClassConvention](c) {
			if a, ok := cv.(ClassAcceptor); ok && !a.AcceptClass(i) {
				continue
			}
			cv.ApplyClass(i)
		}
	case *model.SubclassMapping:
		i := NewSubclassInstance(n)
		for _, cv := range Find[SubclassConvention](c) {
			if a, ok := cv.(SubclassAcceptor); ok && !a.AcceptSubclass(i) {
				continue
			}
			cv.ApplySubclass(i)
		}
	case *model.IdMapping:
		i := NewIdInstance(n, entity)
		for _, cv := range Find[IdConvention](c) {
			if a, ok := cv.(IdAcceptor); ok && !a.AcceptId(i) {
				continue
			}
			cv.ApplyId(i)
		}
	case *model.PropertyMapping:
		i := NewPropertyInstance(n)
		for _, cv := range Find[PropertyConvention](c) {
			if a, ok := cv.(PropertyAcceptor); ok && !a.AcceptProperty(i) {
				continue
			}
			cv.ApplyProperty(i)
		}
	case *model.ManyToOneMapping:
		i := NewReferenceInstance(n)
		for _, cv := range Find[ReferenceConvention](c) {
			if a, ok := cv.(ReferenceAcceptor); ok && !a.AcceptReference(i) {
				continue
			}
			cv.ApplyReference(i)
		}
	case *model.OneToOneMapping:
		i := NewOneToOneInstance(n)
		for _, cv := range Find[OneToOneConvention](c) {
			if a, ok := cv.(OneToOneAcceptor); ok && !a.AcceptOneToOne(i) {
				continue
			}
			cv.ApplyOneToOne(i)
		}
	case *model.CollectionMapping:
		applyCollection(c, NewCollectionInstance(n))
	case *model.ComponentMapping:
		i := NewComponentInstance(n)
		for _, cv := range Find[ComponentConvention](c) {
			if a, ok := cv.(ComponentAcceptor); ok && !a.AcceptComponent(i) {
				continue
			}
			cv.ApplyComponent(i)
		}
	case *model.VersionMapping:
		i := NewVersionInstance(n, entity)
		for _, cv := range Find[VersionConvention](c) {
			if a, ok := cv.(VersionAcceptor); ok && !a.AcceptVersion(i) {
				continue
			}
			cv.ApplyVersion(i)
		}
	case *model.JoinMapping:
		i := NewJoinInstance(n)
		for _, cv := range Find[JoinConvention](c) {
			if a, ok := cv.(JoinAcceptor); ok && !a.AcceptJoin(i) {
				continue
			}
			cv.ApplyJoin(i)
		}
	}
}

// applyCollection runs the kind-specific aspect before the general one.
func applyCollection(c *Container, i *CollectionInstance) {
	accepts := func(cv any) bool {
		a, ok := cv.(CollectionAcceptor)
		return !ok || a.AcceptCollection(i)
	}
	if _, ok := i.m.OneToMany(); ok {
		for _, cv := range Find[HasManyConvention](c) {
			if accepts(cv) {
				cv.ApplyHasMany(i)
			}
		}
	}
	if i.IsManyToMany() {
		for _, cv := range Find[HasManyToManyConvention](c) {
			if accepts(cv) {
				cv.ApplyHasManyToMany(i)
			}
		}
	}
	for _, cv := range Find[CollectionConvention](c) {
		if accepts(cv) {
			cv.ApplyCollection(i)
		}
	}
}
