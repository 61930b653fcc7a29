package model

import (
	"slices"

	"github.com/syssam/fluentmap/types"
)

// VersionMapping is the optimistic concurrency column of a class.
type VersionMapping struct {
	store
	Member  *types.Member
	Columns LayeredColumns
}

// Version selectors.
var Version = struct {
	Name         Attr[*VersionMapping, string]
	Access       Attr[*VersionMapping, string]
	Type         Attr[*VersionMapping, string]
	UnsavedValue Attr[*VersionMapping, string]
	Generated    Attr[*VersionMapping, string]
}{
	Name:         NewAttr[*VersionMapping, string]("name"),
	Access:       NewAttr[*VersionMapping, string]("access"),
	Type:         NewAttr[*VersionMapping, string]("type"),
	UnsavedValue: NewAttr[*VersionMapping, string]("unsaved-value"),
	Generated:    NewAttr[*VersionMapping, string]("generated"),
}

// NewVersion returns a version mapping for m.
func NewVersion(m *types.Member) *VersionMapping {
	v := &VersionMapping{Member: m}
	Set(v, Version.Name, Defaults, m.Name)
	Set(v, Version.Type, Defaults, EngineTypeName(m.Type))
	v.Columns.Add(Defaults, NewColumn(m.Name, Defaults))
	return v
}

// Name returns the property name.
func (v *VersionMapping) Name() string { return Get(v, Version.Name) }

// ColumnSet returns the layered columns.
func (v *VersionMapping) ColumnSet() *LayeredColumns { return &v.Columns }

// Clone returns a deep copy.
func (v *VersionMapping) Clone() *VersionMapping {
	return &VersionMapping{store: v.clone(), Member: v.Member, Columns: v.Columns.Clone()}
}

// DiscriminatorMapping selects the subclass of a table-per-hierarchy row.
type DiscriminatorMapping struct {
	store
	Columns LayeredColumns
}

// Discriminator selectors.
var Discriminator = struct {
	Type    Attr[*DiscriminatorMapping, string]
	Force   Attr[*DiscriminatorMapping, bool]
	Insert  Attr[*DiscriminatorMapping, bool]
	NotNull Attr[*DiscriminatorMapping, bool]
	Formula Attr[*DiscriminatorMapping, string]
	Length  Attr[*DiscriminatorMapping, int]
}{
	Type:    NewAttr[*DiscriminatorMapping, string]("type"),
	Force:   NewAttr[*DiscriminatorMapping, bool]("force"),
	Insert:  NewAttr[*DiscriminatorMapping, bool]("insert"),
	NotNull: NewAttr[*DiscriminatorMapping, bool]("not-null"),
	Formula: NewAttr[*DiscriminatorMapping, string]("formula"),
	Length:  NewAttr[*DiscriminatorMapping, int]("length"),
}

// NewDiscriminator returns a discriminator stored in column.
func NewDiscriminator(column string, layer Layer) *DiscriminatorMapping {
	d := &DiscriminatorMapping{}
	Set(d, Discriminator.Type, Defaults, "String")
	d.Columns.Add(layer, NewColumn(column, layer))
	return d
}

// ColumnSet returns the layered columns.
func (d *DiscriminatorMapping) ColumnSet() *LayeredColumns { return &d.Columns }

// Clone returns a deep copy.
func (d *DiscriminatorMapping) Clone() *DiscriminatorMapping {
	return &DiscriminatorMapping{store: d.clone(), Columns: d.Columns.Clone()}
}

// CacheMapping configures the second-level cache of a class or collection.
type CacheMapping struct {
	store
}

// Cache selectors.
var Cache = struct {
	Usage   Attr[*CacheMapping, string]
	Region  Attr[*CacheMapping, string]
	Include Attr[*CacheMapping, string]
}{
	Usage:   NewAttr[*CacheMapping, string]("usage"),
	Region:  NewAttr[*CacheMapping, string]("region"),
	Include: NewAttr[*CacheMapping, string]("include"),
}

// Clone returns a deep copy.
func (c *CacheMapping) Clone() *CacheMapping { return &CacheMapping{store: c.clone()} }

// NaturalIdMapping groups the members forming a natural key.
type NaturalIdMapping struct {
	store
	Properties []*PropertyMapping
	References []*ManyToOneMapping
}

// NaturalId selectors.
var NaturalId = struct {
	Mutable Attr[*NaturalIdMapping, bool]
}{
	Mutable: NewAttr[*NaturalIdMapping, bool]("mutable"),
}

// Clone returns a deep copy.
func (n *NaturalIdMapping) Clone() *NaturalIdMapping {
	c := &NaturalIdMapping{store: n.clone()}
	for _, p := range n.Properties {
		c.Properties = append(c.Properties, p.Clone())
	}
	for _, r := range n.References {
		c.References = append(c.References, r.Clone())
	}
	return c
}

// JoinMapping maps members of a class to a secondary table.
type JoinMapping struct {
	store
	Members
	ContainingEntity *types.Type
	Key              *KeyMapping
}

// Join selectors.
var Join = struct {
	Table     Attr[*JoinMapping, string]
	Schema    Attr[*JoinMapping, string]
	Catalog   Attr[*JoinMapping, string]
	Subselect Attr[*JoinMapping, string]
	Inverse   Attr[*JoinMapping, bool]
	Optional  Attr[*JoinMapping, bool]
	Fetch     Attr[*JoinMapping, string]
}{
	Table:     NewAttr[*JoinMapping, string]("table"),
	Schema:    NewAttr[*JoinMapping, string]("schema"),
	Catalog:   NewAttr[*JoinMapping, string]("catalog"),
	Subselect: NewAttr[*JoinMapping, string]("subselect"),
	Inverse:   NewAttr[*JoinMapping, bool]("inverse"),
	Optional:  NewAttr[*JoinMapping, bool]("optional"),
	Fetch:     NewAttr[*JoinMapping, string]("fetch"),
}

// NewJoin returns a join to table for entity, keyed on "<Entity>_id".
func NewJoin(entity *types.Type, table string) *JoinMapping {
	j := &JoinMapping{ContainingEntity: entity, Key: &KeyMapping{}}
	Set(j, Join.Table, UserSupplied, table)
	j.Key.Columns.Add(Defaults, NewColumn(entity.ShortName()+"_id", Defaults))
	return j
}

// TableName returns the joined table name.
func (j *JoinMapping) TableName() string { return Get(j, Join.Table) }

// Clone returns a deep copy.
func (j *JoinMapping) Clone() *JoinMapping {
	n := &JoinMapping{store: j.clone(), Members: j.Members.Clone(), ContainingEntity: j.ContainingEntity}
	if j.Key != nil {
		n.Key = j.Key.Clone()
	}
	return n
}

// FilterMapping applies a filter definition to a class or collection.
type FilterMapping struct {
	store
}

// Filter selectors.
var Filter = struct {
	Name      Attr[*FilterMapping, string]
	Condition Attr[*FilterMapping, string]
}{
	Name:      NewAttr[*FilterMapping, string]("name"),
	Condition: NewAttr[*FilterMapping, string]("condition"),
}

// NewFilter returns a filter usage.
func NewFilter(name, condition string) *FilterMapping {
	f := &FilterMapping{}
	Set(f, Filter.Name, UserSupplied, name)
	if condition != "" {
		Set(f, Filter.Condition, UserSupplied, condition)
	}
	return f
}

// Name returns the filter name.
func (f *FilterMapping) Name() string { return Get(f, Filter.Name) }

// Clone returns a deep copy.
func (f *FilterMapping) Clone() *FilterMapping { return &FilterMapping{store: f.clone()} }

// FilterDefinitionMapping declares a named filter and its parameters.
type FilterDefinitionMapping struct {
	store
	Parameters []Param
}

// FilterDefinition selectors.
var FilterDefinition = struct {
	Name      Attr[*FilterDefinitionMapping, string]
	Condition Attr[*FilterDefinitionMapping, string]
}{
	Name:      NewAttr[*FilterDefinitionMapping, string]("name"),
	Condition: NewAttr[*FilterDefinitionMapping, string]("condition"),
}

// Name returns the filter name.
func (f *FilterDefinitionMapping) Name() string { return Get(f, FilterDefinition.Name) }

// AddParameter appends a parameter with its engine type.
func (f *FilterDefinitionMapping) AddParameter(name, typ string) {
	f.Parameters = append(f.Parameters, Param{Name: name, Value: typ})
}

// AddTo files the definition into b.Filters.
func (f *FilterDefinitionMapping) AddTo(b *Bucket) { b.Filters = append(b.Filters, f) }

// Clone returns a deep copy.
func (f *FilterDefinitionMapping) Clone() *FilterDefinitionMapping {
	return &FilterDefinitionMapping{store: f.clone(), Parameters: slices.Clone(f.Parameters)}
}

// ImportMapping makes a class queryable under another name.
type ImportMapping struct {
	store
	Type *types.Type
}

// Import selectors.
var Import = struct {
	Class  Attr[*ImportMapping, string]
	Rename Attr[*ImportMapping, string]
}{
	Class:  NewAttr[*ImportMapping, string]("class"),
	Rename: NewAttr[*ImportMapping, string]("rename"),
}

// NewImport returns an import of t under its short name.
func NewImport(t *types.Type) *ImportMapping {
	i := &ImportMapping{Type: t}
	Set(i, Import.Class, Defaults, t.String())
	Set(i, Import.Rename, Defaults, t.ShortName())
	return i
}

// AddTo files the import into b.Imports.
func (i *ImportMapping) AddTo(b *Bucket) { b.Imports = append(b.Imports, i) }

// Clone returns a deep copy.
func (i *ImportMapping) Clone() *ImportMapping { return &ImportMapping{store: i.clone(), Type: i.Type} }
