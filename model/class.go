package model

import (
	"github.com/syssam/fluentmap/types"
)

// Members holds the mapped members shared by classes, subclasses,
// components and joins.
type Members struct {
	Properties  []*PropertyMapping
	References  []*ManyToOneMapping
	OneToOnes   []*OneToOneMapping
	Components  []ComponentNode
	Anys        []*AnyMapping
	Collections []*CollectionMapping
	Joins       []*JoinMapping
	Filters     []*FilterMapping
}

// Has reports whether a member with the given name is mapped.
func (m *Members) Has(name string) bool {
	for _, p := range m.Properties {
		if p.Name() == name {
			return true
		}
	}
	for _, r := range m.References {
		if r.Name() == name {
			return true
		}
	}
	for _, o := range m.OneToOnes {
		if o.Name() == name {
			return true
		}
	}
	for _, c := range m.Components {
		if c.MemberName() == name {
			return true
		}
	}
	for _, a := range m.Anys {
		if a.Name() == name {
			return true
		}
	}
	for _, c := range m.Collections {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// AddProperty appends p, replacing a property with the same name.
func (m *Members) AddProperty(p *PropertyMapping) {
	m.Properties = replaceOrAppend(m.Properties, p, (*PropertyMapping).Name)
}

// AddReference appends r, replacing a reference with the same name.
func (m *Members) AddReference(r *ManyToOneMapping) {
	m.References = replaceOrAppend(m.References, r, (*ManyToOneMapping).Name)
}

// AddOneToOne appends o, replacing a one-to-one with the same name.
func (m *Members) AddOneToOne(o *OneToOneMapping) {
	m.OneToOnes = replaceOrAppend(m.OneToOnes, o, (*OneToOneMapping).Name)
}

// AddComponent appends c, replacing a component with the same member name.
func (m *Members) AddComponent(c ComponentNode) {
	m.Components = replaceOrAppend(m.Components, c, ComponentNode.MemberName)
}

// AddAny appends a, replacing an any mapping with the same name.
func (m *Members) AddAny(a *AnyMapping) {
	m.Anys = replaceOrAppend(m.Anys, a, (*AnyMapping).Name)
}

// AddCollection appends c, replacing a collection with the same name.
func (m *Members) AddCollection(c *CollectionMapping) {
	m.Collections = replaceOrAppend(m.Collections, c, (*CollectionMapping).Name)
}

// AddJoin appends j.
func (m *Members) AddJoin(j *JoinMapping) { m.Joins = append(m.Joins, j) }

// AddFilter appends f, replacing a filter with the same name.
func (m *Members) AddFilter(f *FilterMapping) {
	m.Filters = replaceOrAppend(m.Filters, f, (*FilterMapping).Name)
}

func replaceOrAppend[T any](list []T, v T, name func(T) string) []T {
	n := name(v)
	for i, x := range list {
		if n != "" && name(x) == n {
			list[i] = v
			return list
		}
	}
	return append(list, v)
}

// Clone returns a deep copy.
func (m Members) Clone() Members {
	c := Members{}
	for _, p := range m.Properties {
		c.Properties = append(c.Properties, p.Clone())
	}
	for _, r := range m.References {
		c.References = append(c.References, r.Clone())
	}
	for _, o := range m.OneToOnes {
		c.OneToOnes = append(c.OneToOnes, o.Clone())
	}
	for _, x := range m.Components {
		c.Components = append(c.Components, cloneComponent(x))
	}
	for _, a := range m.Anys {
		c.Anys = append(c.Anys, a.Clone())
	}
	for _, col := range m.Collections {
		c.Collections = append(c.Collections, col.Clone())
	}
	for _, j := range m.Joins {
		c.Joins = append(c.Joins, j.Clone())
	}
	for _, f := range m.Filters {
		c.Filters = append(c.Filters, f.Clone())
	}
	return c
}

// ClassMapping is a root persistent entity.
type ClassMapping struct {
	store
	Members
	Type          *types.Type
	Id            Identity
	NaturalId     *NaturalIdMapping
	Version       *VersionMapping
	Discriminator *DiscriminatorMapping
	Cache         *CacheMapping
	Subclasses    []*SubclassMapping
}

// Class selectors.
var Class = struct {
	Name               Attr[*ClassMapping, string]
	Table              Attr[*ClassMapping, string]
	Schema             Attr[*ClassMapping, string]
	Catalog            Attr[*ClassMapping, string]
	Lazy               Attr[*ClassMapping, bool]
	Mutable            Attr[*ClassMapping, bool]
	DynamicUpdate      Attr[*ClassMapping, bool]
	DynamicInsert      Attr[*ClassMapping, bool]
	SelectBeforeUpdate Attr[*ClassMapping, bool]
	DiscriminatorValue Attr[*ClassMapping, string]
	Polymorphism       Attr[*ClassMapping, string]
	Where              Attr[*ClassMapping, string]
	BatchSize          Attr[*ClassMapping, int]
	OptimisticLock     Attr[*ClassMapping, string]
	Check              Attr[*ClassMapping, string]
	Persister          Attr[*ClassMapping, string]
	Proxy              Attr[*ClassMapping, string]
	Abstract           Attr[*ClassMapping, bool]
	SchemaAction       Attr[*ClassMapping, string]
	EntityName         Attr[*ClassMapping, string]
	Subselect          Attr[*ClassMapping, string]
	UnionSubclass      Attr[*ClassMapping, bool]
}{
	Name:               NewAttr[*ClassMapping, string]("name"),
	Table:              NewAttr[*ClassMapping, string]("table"),
	Schema:             NewAttr[*ClassMapping, string]("schema"),
	Catalog:            NewAttr[*ClassMapping, string]("catalog"),
	Lazy:               NewAttr[*ClassMapping, bool]("lazy"),
	Mutable:            NewAttr[*ClassMapping, bool]("mutable"),
	DynamicUpdate:      NewAttr[*ClassMapping, bool]("dynamic-update"),
	DynamicInsert:      NewAttr[*ClassMapping, bool]("dynamic-insert"),
	SelectBeforeUpdate: NewAttr[*ClassMapping, bool]("select-before-update"),
	DiscriminatorValue: NewAttr[*ClassMapping, string]("discriminator-value"),
	Polymorphism:       NewAttr[*ClassMapping, string]("polymorphism"),
	Where:              NewAttr[*ClassMapping, string]("where"),
	BatchSize:          NewAttr[*ClassMapping, int]("batch-size"),
	OptimisticLock:     NewAttr[*ClassMapping, string]("optimistic-lock"),
	Check:              NewAttr[*ClassMapping, string]("check"),
	Persister:          NewAttr[*ClassMapping, string]("persister"),
	Proxy:              NewAttr[*ClassMapping, string]("proxy"),
	Abstract:           NewAttr[*ClassMapping, bool]("abstract"),
	SchemaAction:       NewAttr[*ClassMapping, string]("schema-action"),
	EntityName:         NewAttr[*ClassMapping, string]("entity-name"),
	Subselect:          NewAttr[*ClassMapping, string]("subselect"),
	UnionSubclass:      NewAttr[*ClassMapping, bool]("union-subclass"),
}

// NewClass returns a class mapping for t with its name and table defaulted.
func NewClass(t *types.Type) *ClassMapping {
	c := &ClassMapping{Type: t}
	Set(c, Class.Name, Defaults, t.String())
	Set(c, Class.Table, Defaults, "`"+t.ShortName()+"`")
	return c
}

// Name returns the mapped type name.
func (c *ClassMapping) Name() string { return Get(c, Class.Name) }

// TableName returns the resolved table name.
func (c *ClassMapping) TableName() string { return Get(c, Class.Table) }

// IsUnionSubclass reports whether subclasses map as union-subclass.
func (c *ClassMapping) IsUnionSubclass() bool { return Get(c, Class.UnionSubclass) }

// AddSubclass attaches s as a direct child.
func (c *ClassMapping) AddSubclass(s *SubclassMapping) {
	c.Subclasses = append(c.Subclasses, s)
}

// AddTo files the class into b.Classes.
func (c *ClassMapping) AddTo(b *Bucket) { b.Classes = append(b.Classes, c) }

// Clone returns a deep copy.
func (c *ClassMapping) Clone() *ClassMapping {
	n := &ClassMapping{
		store:   c.clone(),
		Members: c.Members.Clone(),
		Type:    c.Type,
	}
	if c.Id != nil {
		n.Id = cloneIdentity(c.Id)
	}
	if c.NaturalId != nil {
		n.NaturalId = c.NaturalId.Clone()
	}
	if c.Version != nil {
		n.Version = c.Version.Clone()
	}
	if c.Discriminator != nil {
		n.Discriminator = c.Discriminator.Clone()
	}
	if c.Cache != nil {
		n.Cache = c.Cache.Clone()
	}
	for _, s := range c.Subclasses {
		n.Subclasses = append(n.Subclasses, s.Clone())
	}
	return n
}

// SubclassType selects how a subclass is serialized.
type SubclassType uint8

// Subclass kinds.
const (
	PlainSubclass SubclassType = iota
	JoinedSubclass
	UnionSubclass
)

// String returns the element name of the kind.
func (k SubclassType) String() string {
	switch k {
	case JoinedSubclass:
		return "joined-subclass"
	case UnionSubclass:
		return "union-subclass"
	default:
		return "subclass"
	}
}

// SubclassMapping is one level of an inheritance hierarchy.
type SubclassMapping struct {
	store
	Members
	Type *types.Type
	// Extends names the parent type explicitly. It is consumed by subclass
	// pairing and never serialized.
	Extends *types.Type
	// SubclassType is assigned from the root class once the tree is built.
	SubclassType SubclassType
	// Key is the joined-subclass key.
	Key        *KeyMapping
	Subclasses []*SubclassMapping
}

// Subclass selectors.
var Subclass = struct {
	Name               Attr[*SubclassMapping, string]
	Table              Attr[*SubclassMapping, string]
	Schema             Attr[*SubclassMapping, string]
	Catalog            Attr[*SubclassMapping, string]
	Lazy               Attr[*SubclassMapping, bool]
	Proxy              Attr[*SubclassMapping, string]
	DynamicUpdate      Attr[*SubclassMapping, bool]
	DynamicInsert      Attr[*SubclassMapping, bool]
	SelectBeforeUpdate Attr[*SubclassMapping, bool]
	Abstract           Attr[*SubclassMapping, bool]
	DiscriminatorValue Attr[*SubclassMapping, string]
	Check              Attr[*SubclassMapping, string]
	Subselect          Attr[*SubclassMapping, string]
	Persister          Attr[*SubclassMapping, string]
	BatchSize          Attr[*SubclassMapping, int]
	EntityName         Attr[*SubclassMapping, string]
}{
	Name:               NewAttr[*SubclassMapping, string]("name"),
	Table:              NewAttr[*SubclassMapping, string]("table"),
	Schema:             NewAttr[*SubclassMapping, string]("schema"),
	Catalog:            NewAttr[*SubclassMapping, string]("catalog"),
	Lazy:               NewAttr[*SubclassMapping, bool]("lazy"),
	Proxy:              NewAttr[*SubclassMapping, string]("proxy"),
	DynamicUpdate:      NewAttr[*SubclassMapping, bool]("dynamic-update"),
	DynamicInsert:      NewAttr[*SubclassMapping, bool]("dynamic-insert"),
	SelectBeforeUpdate: NewAttr[*SubclassMapping, bool]("select-before-update"),
	Abstract:           NewAttr[*SubclassMapping, bool]("abstract"),
	DiscriminatorValue: NewAttr[*SubclassMapping, string]("discriminator-value"),
	Check:              NewAttr[*SubclassMapping, string]("check"),
	Subselect:          NewAttr[*SubclassMapping, string]("subselect"),
	Persister:          NewAttr[*SubclassMapping, string]("persister"),
	BatchSize:          NewAttr[*SubclassMapping, int]("batch-size"),
	EntityName:         NewAttr[*SubclassMapping, string]("entity-name"),
}

// NewSubclass returns a subclass mapping for t with its name defaulted.
func NewSubclass(t *types.Type) *SubclassMapping {
	s := &SubclassMapping{Type: t, Key: &KeyMapping{}}
	Set(s, Subclass.Name, Defaults, t.String())
	return s
}

// Name returns the mapped type name.
func (s *SubclassMapping) Name() string { return Get(s, Subclass.Name) }

// TableName returns the resolved table name.
func (s *SubclassMapping) TableName() string { return Get(s, Subclass.Table) }

// AddSubclass attaches c as a direct child.
func (s *SubclassMapping) AddSubclass(c *SubclassMapping) {
	s.Subclasses = append(s.Subclasses, c)
}

// AddTo files the subclass into b.Subclasses.
func (s *SubclassMapping) AddTo(b *Bucket) { b.Subclasses = append(b.Subclasses, s) }

// Clone returns a deep copy.
func (s *SubclassMapping) Clone() *SubclassMapping {
	n := &SubclassMapping{
		store:        s.clone(),
		Members:      s.Members.Clone(),
		Type:         s.Type,
		Extends:      s.Extends,
		SubclassType: s.SubclassType,
	}
	if s.Key != nil {
		n.Key = s.Key.Clone()
	}
	for _, c := range s.Subclasses {
		n.Subclasses = append(n.Subclasses, c.Clone())
	}
	return n
}
