package model

import (
	"github.com/syssam/fluentmap/types"
)

// CollectionKind is the collection element name.
type CollectionKind string

// Collection kinds.
const (
	KindBag   CollectionKind = "bag"
	KindSet   CollectionKind = "set"
	KindList  CollectionKind = "list"
	KindMap   CollectionKind = "map"
	KindArray CollectionKind = "array"
)

// Indexed reports whether the kind carries an index element.
func (k CollectionKind) Indexed() bool { return k == KindList || k == KindMap || k == KindArray }

// CollectionMapping is a persistent collection member.
type CollectionMapping struct {
	store
	Kind             CollectionKind
	Member           *types.Member
	ContainingEntity *types.Type
	ChildType        *types.Type
	Key              *KeyMapping
	Index            *IndexMapping
	// Exactly one of Element, CompositeElement and Relationship is set.
	Element          *ElementMapping
	CompositeElement *CompositeElementMapping
	Relationship     Relationship
	Cache            *CacheMapping
	Filters          []*FilterMapping
	// OtherSide is the paired collection or reference on ChildType.
	OtherSide Node
}

// Collection selectors.
var Collection = struct {
	Name           Attr[*CollectionMapping, string]
	Access         Attr[*CollectionMapping, string]
	Table          Attr[*CollectionMapping, string]
	Schema         Attr[*CollectionMapping, string]
	Catalog        Attr[*CollectionMapping, string]
	Lazy           Attr[*CollectionMapping, string]
	Inverse        Attr[*CollectionMapping, bool]
	Cascade        Attr[*CollectionMapping, string]
	Where          Attr[*CollectionMapping, string]
	BatchSize      Attr[*CollectionMapping, int]
	OrderBy        Attr[*CollectionMapping, string]
	Fetch          Attr[*CollectionMapping, string]
	Sort           Attr[*CollectionMapping, string]
	OptimisticLock Attr[*CollectionMapping, bool]
	Mutable        Attr[*CollectionMapping, bool]
	Check          Attr[*CollectionMapping, string]
	Persister      Attr[*CollectionMapping, string]
	CollectionType Attr[*CollectionMapping, string]
	Subselect      Attr[*CollectionMapping, string]
	Generic        Attr[*CollectionMapping, bool]
}{
	Name:           NewAttr[*CollectionMapping, string]("name"),
	Access:         NewAttr[*CollectionMapping, string]("access"),
	Table:          NewAttr[*CollectionMapping, string]("table"),
	Schema:         NewAttr[*CollectionMapping, string]("schema"),
	Catalog:        NewAttr[*CollectionMapping, string]("catalog"),
	Lazy:           NewAttr[*CollectionMapping, string]("lazy"),
	Inverse:        NewAttr[*CollectionMapping, bool]("inverse"),
	Cascade:        NewAttr[*CollectionMapping, string]("cascade"),
	Where:          NewAttr[*CollectionMapping, string]("where"),
	BatchSize:      NewAttr[*CollectionMapping, int]("batch-size"),
	OrderBy:        NewAttr[*CollectionMapping, string]("order-by"),
	Fetch:          NewAttr[*CollectionMapping, string]("fetch"),
	Sort:           NewAttr[*CollectionMapping, string]("sort"),
	OptimisticLock: NewAttr[*CollectionMapping, bool]("optimistic-lock"),
	Mutable:        NewAttr[*CollectionMapping, bool]("mutable"),
	Check:          NewAttr[*CollectionMapping, string]("check"),
	Persister:      NewAttr[*CollectionMapping, string]("persister"),
	CollectionType: NewAttr[*CollectionMapping, string]("collection-type"),
	Subselect:      NewAttr[*CollectionMapping, string]("subselect"),
	Generic:        NewAttr[*CollectionMapping, bool]("generic"),
}

// NewCollection returns a collection of the given kind for m declared on
// entity. The child type is the member's element type.
func NewCollection(kind CollectionKind, entity *types.Type, m *types.Member) *CollectionMapping {
	c := &CollectionMapping{
		Kind:             kind,
		Member:           m,
		ContainingEntity: entity,
		Key:              &KeyMapping{},
	}
	if m != nil {
		Set(c, Collection.Name, Defaults, m.Name)
		if m.Type != nil {
			c.ChildType = m.Type.Elem
		}
	}
	return c
}

// Name returns the property name.
func (c *CollectionMapping) Name() string { return Get(c, Collection.Name) }

// TableName returns the resolved table name.
func (c *CollectionMapping) TableName() string { return Get(c, Collection.Table) }

// IsInverse reports whether the collection is the inverse side.
func (c *CollectionMapping) IsInverse() bool { return Get(c, Collection.Inverse) }

// OneToMany returns the relationship as one-to-many, if it is one.
func (c *CollectionMapping) OneToMany() (*OneToManyMapping, bool) {
	r, ok := c.Relationship.(*OneToManyMapping)
	return r, ok
}

// ManyToMany returns the relationship as many-to-many, if it is one.
func (c *CollectionMapping) ManyToMany() (*ManyToManyMapping, bool) {
	r, ok := c.Relationship.(*ManyToManyMapping)
	return r, ok
}

// Clone returns a deep copy. OtherSide is not carried over.
func (c *CollectionMapping) Clone() *CollectionMapping {
	n := &CollectionMapping{
		store:            c.clone(),
		Kind:             c.Kind,
		Member:           c.Member,
		ContainingEntity: c.ContainingEntity,
		ChildType:        c.ChildType,
	}
	if c.Key != nil {
		n.Key = c.Key.Clone()
	}
	if c.Index != nil {
		n.Index = c.Index.Clone()
	}
	if c.Element != nil {
		n.Element = c.Element.Clone()
	}
	if c.CompositeElement != nil {
		n.CompositeElement = c.CompositeElement.Clone()
	}
	switch r := c.Relationship.(type) {
	case *OneToManyMapping:
		n.Relationship = r.Clone()
	case *ManyToManyMapping:
		n.Relationship = r.Clone()
	}
	if c.Cache != nil {
		n.Cache = c.Cache.Clone()
	}
	for _, f := range c.Filters {
		n.Filters = append(n.Filters, f.Clone())
	}
	return n
}

// KeyMapping is the foreign key of a collection, join or joined-subclass.
type KeyMapping struct {
	store
	Columns LayeredColumns
}

// Key selectors.
var Key = struct {
	ForeignKey  Attr[*KeyMapping, string]
	OnDelete    Attr[*KeyMapping, string]
	PropertyRef Attr[*KeyMapping, string]
	NotNull     Attr[*KeyMapping, bool]
	Update      Attr[*KeyMapping, bool]
	Unique      Attr[*KeyMapping, bool]
}{
	ForeignKey:  NewAttr[*KeyMapping, string]("foreign-key"),
	OnDelete:    NewAttr[*KeyMapping, string]("on-delete"),
	PropertyRef: NewAttr[*KeyMapping, string]("property-ref"),
	NotNull:     NewAttr[*KeyMapping, bool]("not-null"),
	Update:      NewAttr[*KeyMapping, bool]("update"),
	Unique:      NewAttr[*KeyMapping, bool]("unique"),
}

// ColumnSet returns the layered columns.
func (k *KeyMapping) ColumnSet() *LayeredColumns { return &k.Columns }

// Clone returns a deep copy.
func (k *KeyMapping) Clone() *KeyMapping {
	return &KeyMapping{store: k.clone(), Columns: k.Columns.Clone()}
}

// IndexKind is the element name of a collection index.
type IndexKind string

// Index kinds.
const (
	PlainIndex IndexKind = "index"
	ListIndex  IndexKind = "list-index"
	MapKey     IndexKind = "map-key"
)

// IndexMapping positions the elements of an indexed collection.
type IndexMapping struct {
	store
	Kind    IndexKind
	Columns LayeredColumns
}

// Index selectors.
var Index = struct {
	Type Attr[*IndexMapping, string]
	Base Attr[*IndexMapping, int]
}{
	Type: NewAttr[*IndexMapping, string]("type"),
	Base: NewAttr[*IndexMapping, int]("base"),
}

// ColumnSet returns the layered columns.
func (i *IndexMapping) ColumnSet() *LayeredColumns { return &i.Columns }

// Clone returns a deep copy.
func (i *IndexMapping) Clone() *IndexMapping {
	return &IndexMapping{store: i.clone(), Kind: i.Kind, Columns: i.Columns.Clone()}
}

// ElementMapping is the element of a collection of values.
type ElementMapping struct {
	store
	Columns LayeredColumns
}

// Element selectors.
var Element = struct {
	Type    Attr[*ElementMapping, string]
	Formula Attr[*ElementMapping, string]
}{
	Type:    NewAttr[*ElementMapping, string]("type"),
	Formula: NewAttr[*ElementMapping, string]("formula"),
}

// ColumnSet returns the layered columns.
func (e *ElementMapping) ColumnSet() *LayeredColumns { return &e.Columns }

// Clone returns a deep copy.
func (e *ElementMapping) Clone() *ElementMapping {
	return &ElementMapping{store: e.clone(), Columns: e.Columns.Clone()}
}

// CompositeElementMapping is the element of a collection of components.
type CompositeElementMapping struct {
	store
	Type       *types.Type
	Parent     *ParentMapping
	Properties []*PropertyMapping
	References []*ManyToOneMapping
	Nested     []*NestedCompositeElementMapping
}

// CompositeElement selectors.
var CompositeElement = struct {
	Class Attr[*CompositeElementMapping, string]
}{
	Class: NewAttr[*CompositeElementMapping, string]("class"),
}

// Clone returns a deep copy.
func (c *CompositeElementMapping) Clone() *CompositeElementMapping {
	n := &CompositeElementMapping{store: c.clone(), Type: c.Type}
	if c.Parent != nil {
		n.Parent = c.Parent.Clone()
	}
	for _, p := range c.Properties {
		n.Properties = append(n.Properties, p.Clone())
	}
	for _, r := range c.References {
		n.References = append(n.References, r.Clone())
	}
	for _, x := range c.Nested {
		n.Nested = append(n.Nested, x.Clone())
	}
	return n
}

// NestedCompositeElementMapping is a component inside a composite element.
type NestedCompositeElementMapping struct {
	CompositeElementMapping
	Member *types.Member
}

// Name returns the member name.
func (n *NestedCompositeElementMapping) Name() string {
	if n.Member == nil {
		return ""
	}
	return n.Member.Name
}

// Clone returns a deep copy.
func (n *NestedCompositeElementMapping) Clone() *NestedCompositeElementMapping {
	return &NestedCompositeElementMapping{CompositeElementMapping: *n.CompositeElementMapping.Clone(), Member: n.Member}
}

// OneToManyMapping is the element of an association collection keyed on the
// child table.
type OneToManyMapping struct {
	store
	ChildType *types.Type
}

// OneToMany selectors.
var OneToMany = struct {
	Class      Attr[*OneToManyMapping, string]
	NotFound   Attr[*OneToManyMapping, string]
	EntityName Attr[*OneToManyMapping, string]
}{
	Class:      NewAttr[*OneToManyMapping, string]("class"),
	NotFound:   NewAttr[*OneToManyMapping, string]("not-found"),
	EntityName: NewAttr[*OneToManyMapping, string]("entity-name"),
}

// NewOneToMany returns a one-to-many element for child.
func NewOneToMany(child *types.Type) *OneToManyMapping {
	o := &OneToManyMapping{ChildType: child}
	Set(o, OneToMany.Class, Defaults, child.String())
	return o
}

// Clone returns a deep copy.
func (o *OneToManyMapping) Clone() *OneToManyMapping {
	return &OneToManyMapping{store: o.clone(), ChildType: o.ChildType}
}

// ManyToManyMapping is the element of an association collection stored in a
// join table.
type ManyToManyMapping struct {
	store
	ChildType *types.Type
	Columns   LayeredColumns
}

// ManyToMany selectors.
var ManyToMany = struct {
	Class      Attr[*ManyToManyMapping, string]
	Fetch      Attr[*ManyToManyMapping, string]
	ForeignKey Attr[*ManyToManyMapping, string]
	Lazy       Attr[*ManyToManyMapping, string]
	NotFound   Attr[*ManyToManyMapping, string]
	Where      Attr[*ManyToManyMapping, string]
	OrderBy    Attr[*ManyToManyMapping, string]
	EntityName Attr[*ManyToManyMapping, string]
	Unique     Attr[*ManyToManyMapping, bool]
}{
	Class:      NewAttr[*ManyToManyMapping, string]("class"),
	Fetch:      NewAttr[*ManyToManyMapping, string]("fetch"),
	ForeignKey: NewAttr[*ManyToManyMapping, string]("foreign-key"),
	Lazy:       NewAttr[*ManyToManyMapping, string]("lazy"),
	NotFound:   NewAttr[*ManyToManyMapping, string]("not-found"),
	Where:      NewAttr[*ManyToManyMapping, string]("where"),
	OrderBy:    NewAttr[*ManyToManyMapping, string]("order-by"),
	EntityName: NewAttr[*ManyToManyMapping, string]("entity-name"),
	Unique:     NewAttr[*ManyToManyMapping, bool]("unique"),
}

// NewManyToMany returns a many-to-many element for child.
func NewManyToMany(child *types.Type) *ManyToManyMapping {
	m := &ManyToManyMapping{ChildType: child}
	Set(m, ManyToMany.Class, Defaults, child.String())
	return m
}

// ColumnSet returns the layered columns.
func (m *ManyToManyMapping) ColumnSet() *LayeredColumns { return &m.Columns }

// Clone returns a deep copy.
func (m *ManyToManyMapping) Clone() *ManyToManyMapping {
	return &ManyToManyMapping{store: m.clone(), ChildType: m.ChildType, Columns: m.Columns.Clone()}
}
