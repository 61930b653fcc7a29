package model

import (
	"github.com/syssam/fluentmap/types"
)

// PropertyMapping is a scalar member.
type PropertyMapping struct {
	store
	Member           *types.Member
	ContainingEntity *types.Type
	Columns          LayeredColumns
}

// Property selectors.
var Property = struct {
	Name           Attr[*PropertyMapping, string]
	Access         Attr[*PropertyMapping, string]
	Type           Attr[*PropertyMapping, string]
	Formula        Attr[*PropertyMapping, string]
	Insert         Attr[*PropertyMapping, bool]
	Update         Attr[*PropertyMapping, bool]
	Lazy           Attr[*PropertyMapping, bool]
	OptimisticLock Attr[*PropertyMapping, bool]
	Generated      Attr[*PropertyMapping, string]
}{
	Name:           NewAttr[*PropertyMapping, string]("name"),
	Access:         NewAttr[*PropertyMapping, string]("access"),
	Type:           NewAttr[*PropertyMapping, string]("type"),
	Formula:        NewAttr[*PropertyMapping, string]("formula"),
	Insert:         NewAttr[*PropertyMapping, bool]("insert"),
	Update:         NewAttr[*PropertyMapping, bool]("update"),
	Lazy:           NewAttr[*PropertyMapping, bool]("lazy"),
	OptimisticLock: NewAttr[*PropertyMapping, bool]("optimistic-lock"),
	Generated:      NewAttr[*PropertyMapping, string]("generated"),
}

// NewProperty returns a property for m declared on entity.
func NewProperty(entity *types.Type, m *types.Member) *PropertyMapping {
	p := &PropertyMapping{Member: m, ContainingEntity: entity}
	Set(p, Property.Name, Defaults, m.Name)
	Set(p, Property.Type, Defaults, EngineTypeName(m.Type))
	p.Columns.Add(Defaults, NewColumn(m.Name, Defaults))
	return p
}

// Name returns the property name.
func (p *PropertyMapping) Name() string { return Get(p, Property.Name) }

// ColumnSet returns the layered columns.
func (p *PropertyMapping) ColumnSet() *LayeredColumns { return &p.Columns }

// IsWritable reports whether the property takes part in insert or update.
func (p *PropertyMapping) IsWritable() bool {
	if Get(p, Property.Formula) != "" {
		return false
	}
	insert, ok := Lookup(p, Property.Insert)
	if !ok {
		insert = true
	}
	update, ok := Lookup(p, Property.Update)
	if !ok {
		update = true
	}
	return insert || update
}

// Clone returns a deep copy.
func (p *PropertyMapping) Clone() *PropertyMapping {
	return &PropertyMapping{store: p.clone(), Member: p.Member, ContainingEntity: p.ContainingEntity, Columns: p.Columns.Clone()}
}

// ManyToOneMapping is a reference to another entity.
type ManyToOneMapping struct {
	store
	Member           *types.Member
	ContainingEntity *types.Type
	Columns          LayeredColumns
	// OtherSide is the collection on the referenced entity paired with this
	// reference, if any.
	OtherSide *CollectionMapping
}

// ManyToOne selectors.
var ManyToOne = struct {
	Name           Attr[*ManyToOneMapping, string]
	Access         Attr[*ManyToOneMapping, string]
	Class          Attr[*ManyToOneMapping, string]
	Cascade        Attr[*ManyToOneMapping, string]
	Fetch          Attr[*ManyToOneMapping, string]
	Lazy           Attr[*ManyToOneMapping, string]
	NotFound       Attr[*ManyToOneMapping, string]
	Insert         Attr[*ManyToOneMapping, bool]
	Update         Attr[*ManyToOneMapping, bool]
	ForeignKey     Attr[*ManyToOneMapping, string]
	PropertyRef    Attr[*ManyToOneMapping, string]
	Unique         Attr[*ManyToOneMapping, bool]
	UniqueKey      Attr[*ManyToOneMapping, string]
	Index          Attr[*ManyToOneMapping, string]
	NotNull        Attr[*ManyToOneMapping, bool]
	Formula        Attr[*ManyToOneMapping, string]
	OptimisticLock Attr[*ManyToOneMapping, bool]
	EntityName     Attr[*ManyToOneMapping, string]
}{
	Name:           NewAttr[*ManyToOneMapping, string]("name"),
	Access:         NewAttr[*ManyToOneMapping, string]("access"),
	Class:          NewAttr[*ManyToOneMapping, string]("class"),
	Cascade:        NewAttr[*ManyToOneMapping, string]("cascade"),
	Fetch:          NewAttr[*ManyToOneMapping, string]("fetch"),
	Lazy:           NewAttr[*ManyToOneMapping, string]("lazy"),
	NotFound:       NewAttr[*ManyToOneMapping, string]("not-found"),
	Insert:         NewAttr[*ManyToOneMapping, bool]("insert"),
	Update:         NewAttr[*ManyToOneMapping, bool]("update"),
	ForeignKey:     NewAttr[*ManyToOneMapping, string]("foreign-key"),
	PropertyRef:    NewAttr[*ManyToOneMapping, string]("property-ref"),
	Unique:         NewAttr[*ManyToOneMapping, bool]("unique"),
	UniqueKey:      NewAttr[*ManyToOneMapping, string]("unique-key"),
	Index:          NewAttr[*ManyToOneMapping, string]("index"),
	NotNull:        NewAttr[*ManyToOneMapping, bool]("not-null"),
	Formula:        NewAttr[*ManyToOneMapping, string]("formula"),
	OptimisticLock: NewAttr[*ManyToOneMapping, bool]("optimistic-lock"),
	EntityName:     NewAttr[*ManyToOneMapping, string]("entity-name"),
}

// NewManyToOne returns a reference for m declared on entity. The default
// column is the member name suffixed with "_id".
func NewManyToOne(entity *types.Type, m *types.Member) *ManyToOneMapping {
	r := &ManyToOneMapping{Member: m, ContainingEntity: entity}
	Set(r, ManyToOne.Name, Defaults, m.Name)
	Set(r, ManyToOne.Class, Defaults, m.Type.String())
	r.Columns.Add(Defaults, NewColumn(m.Name+"_id", Defaults))
	return r
}

// Name returns the property name.
func (r *ManyToOneMapping) Name() string { return Get(r, ManyToOne.Name) }

// ColumnSet returns the layered columns.
func (r *ManyToOneMapping) ColumnSet() *LayeredColumns { return &r.Columns }

// Target returns the referenced type.
func (r *ManyToOneMapping) Target() *types.Type {
	if r.Member == nil {
		return nil
	}
	return r.Member.Type
}

// Clone returns a deep copy. OtherSide is not carried over.
func (r *ManyToOneMapping) Clone() *ManyToOneMapping {
	return &ManyToOneMapping{store: r.clone(), Member: r.Member, ContainingEntity: r.ContainingEntity, Columns: r.Columns.Clone()}
}

// OneToOneMapping is a one-to-one association.
type OneToOneMapping struct {
	store
	Member           *types.Member
	ContainingEntity *types.Type
}

// OneToOne selectors.
var OneToOne = struct {
	Name        Attr[*OneToOneMapping, string]
	Access      Attr[*OneToOneMapping, string]
	Class       Attr[*OneToOneMapping, string]
	Cascade     Attr[*OneToOneMapping, string]
	Constrained Attr[*OneToOneMapping, bool]
	Fetch       Attr[*OneToOneMapping, string]
	ForeignKey  Attr[*OneToOneMapping, string]
	PropertyRef Attr[*OneToOneMapping, string]
	Lazy        Attr[*OneToOneMapping, string]
	EntityName  Attr[*OneToOneMapping, string]
	Formula     Attr[*OneToOneMapping, string]
}{
	Name:        NewAttr[*OneToOneMapping, string]("name"),
	Access:      NewAttr[*OneToOneMapping, string]("access"),
	Class:       NewAttr[*OneToOneMapping, string]("class"),
	Cascade:     NewAttr[*OneToOneMapping, string]("cascade"),
	Constrained: NewAttr[*OneToOneMapping, bool]("constrained"),
	Fetch:       NewAttr[*OneToOneMapping, string]("fetch"),
	ForeignKey:  NewAttr[*OneToOneMapping, string]("foreign-key"),
	PropertyRef: NewAttr[*OneToOneMapping, string]("property-ref"),
	Lazy:        NewAttr[*OneToOneMapping, string]("lazy"),
	EntityName:  NewAttr[*OneToOneMapping, string]("entity-name"),
	Formula:     NewAttr[*OneToOneMapping, string]("formula"),
}

// NewOneToOne returns a one-to-one for m declared on entity.
func NewOneToOne(entity *types.Type, m *types.Member) *OneToOneMapping {
	o := &OneToOneMapping{Member: m, ContainingEntity: entity}
	Set(o, OneToOne.Name, Defaults, m.Name)
	Set(o, OneToOne.Class, Defaults, m.Type.String())
	return o
}

// Name returns the property name.
func (o *OneToOneMapping) Name() string { return Get(o, OneToOne.Name) }

// Clone returns a deep copy.
func (o *OneToOneMapping) Clone() *OneToOneMapping {
	return &OneToOneMapping{store: o.clone(), Member: o.Member, ContainingEntity: o.ContainingEntity}
}

// AnyMapping is a polymorphic reference stored as a type column plus an id
// column.
type AnyMapping struct {
	store
	Member            *types.Member
	ContainingEntity  *types.Type
	TypeColumns       LayeredColumns
	IdentifierColumns LayeredColumns
	MetaValues        []*MetaValueMapping
}

// Any selectors.
var Any = struct {
	Name           Attr[*AnyMapping, string]
	Access         Attr[*AnyMapping, string]
	IdType         Attr[*AnyMapping, string]
	MetaType       Attr[*AnyMapping, string]
	Cascade        Attr[*AnyMapping, string]
	Insert         Attr[*AnyMapping, bool]
	Update         Attr[*AnyMapping, bool]
	Lazy           Attr[*AnyMapping, bool]
	OptimisticLock Attr[*AnyMapping, bool]
}{
	Name:           NewAttr[*AnyMapping, string]("name"),
	Access:         NewAttr[*AnyMapping, string]("access"),
	IdType:         NewAttr[*AnyMapping, string]("id-type"),
	MetaType:       NewAttr[*AnyMapping, string]("meta-type"),
	Cascade:        NewAttr[*AnyMapping, string]("cascade"),
	Insert:         NewAttr[*AnyMapping, bool]("insert"),
	Update:         NewAttr[*AnyMapping, bool]("update"),
	Lazy:           NewAttr[*AnyMapping, bool]("lazy"),
	OptimisticLock: NewAttr[*AnyMapping, bool]("optimistic-lock"),
}

// NewAny returns an any mapping for m declared on entity.
func NewAny(entity *types.Type, m *types.Member) *AnyMapping {
	a := &AnyMapping{Member: m, ContainingEntity: entity}
	Set(a, Any.Name, Defaults, m.Name)
	return a
}

// Name returns the property name.
func (a *AnyMapping) Name() string { return Get(a, Any.Name) }

// AddMetaValue appends a discriminator value to class binding.
func (a *AnyMapping) AddMetaValue(mv *MetaValueMapping) { a.MetaValues = append(a.MetaValues, mv) }

// Clone returns a deep copy.
func (a *AnyMapping) Clone() *AnyMapping {
	n := &AnyMapping{
		store:             a.clone(),
		Member:            a.Member,
		ContainingEntity:  a.ContainingEntity,
		TypeColumns:       a.TypeColumns.Clone(),
		IdentifierColumns: a.IdentifierColumns.Clone(),
	}
	for _, mv := range a.MetaValues {
		n.MetaValues = append(n.MetaValues, mv.Clone())
	}
	return n
}

// MetaValueMapping binds a stored type value to a class.
type MetaValueMapping struct {
	store
}

// MetaValue selectors.
var MetaValue = struct {
	Value Attr[*MetaValueMapping, string]
	Class Attr[*MetaValueMapping, string]
}{
	Value: NewAttr[*MetaValueMapping, string]("value"),
	Class: NewAttr[*MetaValueMapping, string]("class"),
}

// Clone returns a deep copy.
func (m *MetaValueMapping) Clone() *MetaValueMapping {
	return &MetaValueMapping{store: m.clone()}
}
