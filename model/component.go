package model

import (
	"github.com/syssam/fluentmap/types"
)

// ComponentKind distinguishes static and dynamic components.
type ComponentKind uint8

// Component kinds.
const (
	StaticComponent ComponentKind = iota
	DynamicComponent
)

// ComponentMapping is an embedded value type mapped inline.
type ComponentMapping struct {
	store
	Members
	Kind             ComponentKind
	Member           *types.Member
	Type             *types.Type
	ContainingEntity *types.Type
	Parent           *ParentMapping
}

// Component selectors.
var Component = struct {
	Name           Attr[*ComponentMapping, string]
	Access         Attr[*ComponentMapping, string]
	Class          Attr[*ComponentMapping, string]
	Insert         Attr[*ComponentMapping, bool]
	Update         Attr[*ComponentMapping, bool]
	Lazy           Attr[*ComponentMapping, bool]
	Unique         Attr[*ComponentMapping, bool]
	OptimisticLock Attr[*ComponentMapping, bool]
	// ColumnPrefix is applied to every nested column and is not serialized.
	ColumnPrefix Attr[*ComponentMapping, string]
}{
	Name:           NewAttr[*ComponentMapping, string]("name"),
	Access:         NewAttr[*ComponentMapping, string]("access"),
	Class:          NewAttr[*ComponentMapping, string]("class"),
	Insert:         NewAttr[*ComponentMapping, bool]("insert"),
	Update:         NewAttr[*ComponentMapping, bool]("update"),
	Lazy:           NewAttr[*ComponentMapping, bool]("lazy"),
	Unique:         NewAttr[*ComponentMapping, bool]("unique"),
	OptimisticLock: NewAttr[*ComponentMapping, bool]("optimistic-lock"),
	ColumnPrefix:   NewAttr[*ComponentMapping, string]("column-prefix"),
}

// NewComponent returns an inline component for m declared on entity.
func NewComponent(entity *types.Type, m *types.Member) *ComponentMapping {
	c := &ComponentMapping{Member: m, Type: m.Type, ContainingEntity: entity}
	Set(c, Component.Name, Defaults, m.Name)
	Set(c, Component.Class, Defaults, m.Type.String())
	return c
}

// MemberName returns the member the component is mapped on.
func (c *ComponentMapping) MemberName() string { return Get(c, Component.Name) }

// Clone returns a deep copy.
func (c *ComponentMapping) Clone() *ComponentMapping {
	n := &ComponentMapping{
		store:            c.clone(),
		Members:          c.Members.Clone(),
		Kind:             c.Kind,
		Member:           c.Member,
		Type:             c.Type,
		ContainingEntity: c.ContainingEntity,
	}
	if c.Parent != nil {
		n.Parent = c.Parent.Clone()
	}
	return n
}

// ReferenceComponentMapping marks a member whose component mapping is
// declared externally. It is replaced by a ComponentMapping during
// compilation.
type ReferenceComponentMapping struct {
	store
	Member           *types.Member
	Type             *types.Type
	ContainingEntity *types.Type
}

// ReferenceComponent selectors.
var ReferenceComponent = struct {
	Name         Attr[*ReferenceComponentMapping, string]
	Access       Attr[*ReferenceComponentMapping, string]
	ColumnPrefix Attr[*ReferenceComponentMapping, string]
	Insert       Attr[*ReferenceComponentMapping, bool]
	Update       Attr[*ReferenceComponentMapping, bool]
	Lazy         Attr[*ReferenceComponentMapping, bool]
	Unique       Attr[*ReferenceComponentMapping, bool]
}{
	Name:         NewAttr[*ReferenceComponentMapping, string]("name"),
	Access:       NewAttr[*ReferenceComponentMapping, string]("access"),
	ColumnPrefix: NewAttr[*ReferenceComponentMapping, string]("column-prefix"),
	Insert:       NewAttr[*ReferenceComponentMapping, bool]("insert"),
	Update:       NewAttr[*ReferenceComponentMapping, bool]("update"),
	Lazy:         NewAttr[*ReferenceComponentMapping, bool]("lazy"),
	Unique:       NewAttr[*ReferenceComponentMapping, bool]("unique"),
}

// NewReferenceComponent returns a placeholder for m declared on entity.
func NewReferenceComponent(entity *types.Type, m *types.Member) *ReferenceComponentMapping {
	r := &ReferenceComponentMapping{Member: m, Type: m.Type, ContainingEntity: entity}
	Set(r, ReferenceComponent.Name, Defaults, m.Name)
	return r
}

// MemberName returns the member the component is mapped on.
func (r *ReferenceComponentMapping) MemberName() string { return Get(r, ReferenceComponent.Name) }

// Clone returns a deep copy.
func (r *ReferenceComponentMapping) Clone() *ReferenceComponentMapping {
	return &ReferenceComponentMapping{store: r.clone(), Member: r.Member, Type: r.Type, ContainingEntity: r.ContainingEntity}
}

// Resolve builds the inline component for this reference from an external
// declaration. The declaration is cloned; attributes set on the reference
// take precedence over the declaration's at the same layer.
func (r *ReferenceComponentMapping) Resolve(ext *ExternalComponentMapping) *ComponentMapping {
	c := &ComponentMapping{
		store:            ext.clone(),
		Members:          ext.Members.Clone(),
		Member:           r.Member,
		Type:             r.Type,
		ContainingEntity: r.ContainingEntity,
	}
	if ext.Parent != nil {
		c.Parent = ext.Parent.Clone()
	}
	Set(c, Component.Class, Defaults, r.Type.String())
	c.Attrs().Merge(r.Attrs())
	return c
}

// ExternalComponentMapping is a component declared independently of any
// usage site.
type ExternalComponentMapping struct {
	store
	Members
	Type   *types.Type
	Parent *ParentMapping
}

// NewExternalComponent returns an external component declaration for t.
func NewExternalComponent(t *types.Type) *ExternalComponentMapping {
	return &ExternalComponentMapping{Type: t}
}

// AddTo files the component into b.Components.
func (e *ExternalComponentMapping) AddTo(b *Bucket) { b.Components = append(b.Components, e) }

// Clone returns a deep copy.
func (e *ExternalComponentMapping) Clone() *ExternalComponentMapping {
	n := &ExternalComponentMapping{store: e.clone(), Members: e.Members.Clone(), Type: e.Type}
	if e.Parent != nil {
		n.Parent = e.Parent.Clone()
	}
	return n
}

// ParentMapping maps a component's back reference to its owner.
type ParentMapping struct {
	store
}

// Parent selectors.
var Parent = struct {
	Name   Attr[*ParentMapping, string]
	Access Attr[*ParentMapping, string]
}{
	Name:   NewAttr[*ParentMapping, string]("name"),
	Access: NewAttr[*ParentMapping, string]("access"),
}

// Clone returns a deep copy.
func (p *ParentMapping) Clone() *ParentMapping { return &ParentMapping{store: p.clone()} }

func cloneComponent(c ComponentNode) ComponentNode {
	switch c := c.(type) {
	case *ComponentMapping:
		return c.Clone()
	case *ReferenceComponentMapping:
		return c.Clone()
	default:
		return c
	}
}
