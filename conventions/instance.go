package conventions

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// set stores v at the Conventions layer. Values supplied by the user keep
// precedence.
func set[E model.Attributed, T any](e E, k model.Attr[E, T], v T) {
	model.Set(e, k, model.Conventions, v)
}

// setColumns renames the resolved columns at the Conventions layer, keeping
// their attributes. Columns declared by the user are left alone.
func setColumns(cols *model.LayeredColumns, names ...string) {
	if cols.HasUserDefined() || len(names) == 0 {
		return
	}
	current := cols.Columns()
	out := make([]*model.ColumnMapping, len(names))
	for i, n := range names {
		var c *model.ColumnMapping
		if i < len(current) {
			c = current[i].Clone()
			model.Set(c, model.Column.Name, model.Conventions, n)
		} else {
			c = model.NewColumn(n, model.Conventions)
		}
		out[i] = c
	}
	cols.Replace(model.Conventions, out...)
}

func eachColumn(cols *model.LayeredColumns, f func(*model.ColumnMapping)) {
	for _, c := range cols.All() {
		f(c)
	}
}

// ClassInstance exposes a root class to conventions.
type ClassInstance struct {
	m *model.ClassMapping
}

// NewClassInstance wraps m.
func NewClassInstance(m *model.ClassMapping) *ClassInstance { return &ClassInstance{m: m} }

// Mapping returns the wrapped class for inspection.
func (c *ClassInstance) Mapping() *model.ClassMapping { return c.m }

// EntityType returns the mapped type.
func (c *ClassInstance) EntityType() *types.Type { return c.m.Type }

// TableName returns the resolved table name.
func (c *ClassInstance) TableName() string { return c.m.TableName() }

// Table sets the table name.
func (c *ClassInstance) Table(name string) { set(c.m, model.Class.Table, name) }

// Schema sets the table schema.
func (c *ClassInstance) Schema(name string) { set(c.m, model.Class.Schema, name) }

// LazyLoad sets lazy loading.
func (c *ClassInstance) LazyLoad(v bool) { set(c.m, model.Class.Lazy, v) }

// ReadOnly marks the entity immutable.
func (c *ClassInstance) ReadOnly() { set(c.m, model.Class.Mutable, false) }

// DynamicUpdate sets dynamic updates.
func (c *ClassInstance) DynamicUpdate(v bool) { set(c.m, model.Class.DynamicUpdate, v) }

// DynamicInsert sets dynamic inserts.
func (c *ClassInstance) DynamicInsert(v bool) { set(c.m, model.Class.DynamicInsert, v) }

// BatchSize sets the batch size.
func (c *ClassInstance) BatchSize(n int) { set(c.m, model.Class.BatchSize, n) }

// Where restricts loaded rows.
func (c *ClassInstance) Where(cond string) { set(c.m, model.Class.Where, cond) }

// OptimisticLock sets the optimistic lock mode.
func (c *ClassInstance) OptimisticLock(mode string) { set(c.m, model.Class.OptimisticLock, mode) }

// Polymorphism sets the polymorphism mode.
func (c *ClassInstance) Polymorphism(mode string) { set(c.m, model.Class.Polymorphism, mode) }

// Cache enables caching with usage unless a cache is configured.
func (c *ClassInstance) Cache(usage string) {
	if c.m.Cache == nil {
		c.m.Cache = &model.CacheMapping{}
	}
	set(c.m.Cache, model.Cache.Usage, usage)
}

// SubclassInstance exposes a subclass to conventions.
type SubclassInstance struct {
	m *model.SubclassMapping
}

// NewSubclassInstance wraps m.
func NewSubclassInstance(m *model.SubclassMapping) *SubclassInstance {
	return &SubclassInstance{m: m}
}

// Mapping returns the wrapped subclass for inspection.
func (s *SubclassInstance) Mapping() *model.SubclassMapping { return s.m }

// EntityType returns the mapped type.
func (s *SubclassInstance) EntityType() *types.Type { return s.m.Type }

// SubclassType returns how the subclass is stored.
func (s *SubclassInstance) SubclassType() model.SubclassType { return s.m.SubclassType }

// Table sets the table of a joined or union subclass.
func (s *SubclassInstance) Table(name string) { set(s.m, model.Subclass.Table, name) }

// Schema sets the table schema.
func (s *SubclassInstance) Schema(name string) { set(s.m, model.Subclass.Schema, name) }

// LazyLoad sets lazy loading.
func (s *SubclassInstance) LazyLoad(v bool) { set(s.m, model.Subclass.Lazy, v) }

// DiscriminatorValue sets the discriminator value.
func (s *SubclassInstance) DiscriminatorValue(v string) {
	set(s.m, model.Subclass.DiscriminatorValue, v)
}

// Key returns the joined-subclass key.
func (s *SubclassInstance) Key() *KeyInstance { return &KeyInstance{m: s.m.Key} }

// IdInstance exposes a single-column identifier to conventions.
type IdInstance struct {
	m      *model.IdMapping
	entity *types.Type
}

// NewIdInstance wraps m declared on entity.
func NewIdInstance(m *model.IdMapping, entity *types.Type) *IdInstance {
	return &IdInstance{m: m, entity: entity}
}

// Mapping returns the wrapped identifier for inspection.
func (i *IdInstance) Mapping() *model.IdMapping { return i.m }

// EntityType returns the owning entity.
func (i *IdInstance) EntityType() *types.Type { return i.entity }

// Name returns the identifier member name.
func (i *IdInstance) Name() string { return i.m.Name() }

// Column renames the identifier column.
func (i *IdInstance) Column(name string) { setColumns(&i.m.Columns, name) }

// GeneratedBy selects the generator class unless the user chose one.
func (i *IdInstance) GeneratedBy(class string) {
	if i.m.Generator == nil {
		i.m.Generator = model.NewGenerator(class, model.Conventions)
		return
	}
	set(i.m.Generator, model.Generator.Class, class)
}

// UnsavedValue sets the transient identifier value.
func (i *IdInstance) UnsavedValue(v string) { set(i.m, model.Id.UnsavedValue, v) }

// CustomType sets the engine type.
func (i *IdInstance) CustomType(name string) { set(i.m, model.Id.Type, name) }

// Access sets the access strategy.
func (i *IdInstance) Access(strategy string) { set(i.m, model.Id.Access, strategy) }

// Length sets the column length.
func (i *IdInstance) Length(n int) {
	eachColumn(&i.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.Length, n) })
}

// PropertyInstance exposes a scalar property to conventions.
type PropertyInstance struct {
	m *model.PropertyMapping
}

// NewPropertyInstance wraps m.
func NewPropertyInstance(m *model.PropertyMapping) *PropertyInstance {
	return &PropertyInstance{m: m}
}

// Mapping returns the wrapped property for inspection.
func (p *PropertyInstance) Mapping() *model.PropertyMapping { return p.m }

// EntityType returns the declaring entity.
func (p *PropertyInstance) EntityType() *types.Type { return p.m.ContainingEntity }

// Name returns the member name.
func (p *PropertyInstance) Name() string { return p.m.Name() }

// Type returns the member type.
func (p *PropertyInstance) Type() *types.Type {
	if p.m.Member == nil {
		return nil
	}
	return p.m.Member.Type
}

// Column renames the property column.
func (p *PropertyInstance) Column(name string) { setColumns(&p.m.Columns, name) }

// Length sets the column length.
func (p *PropertyInstance) Length(n int) {
	eachColumn(&p.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.Length, n) })
}

// NotNull sets the not-null constraint.
func (p *PropertyInstance) NotNull(v bool) {
	eachColumn(&p.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.NotNull, v) })
}

// Unique sets the unique constraint.
func (p *PropertyInstance) Unique(v bool) {
	eachColumn(&p.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.Unique, v) })
}

// Index adds the columns to a named index.
func (p *PropertyInstance) Index(name string) {
	eachColumn(&p.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.Index, name) })
}

// CustomSqlType sets the column DDL type.
func (p *PropertyInstance) CustomSqlType(t string) {
	eachColumn(&p.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.SQLType, t) })
}

// CustomType sets the engine type.
func (p *PropertyInstance) CustomType(name string) { set(p.m, model.Property.Type, name) }

// Access sets the access strategy.
func (p *PropertyInstance) Access(strategy string) { set(p.m, model.Property.Access, strategy) }

// ReadOnly excludes the property from inserts and updates.
func (p *PropertyInstance) ReadOnly() {
	set(p.m, model.Property.Insert, false)
	set(p.m, model.Property.Update, false)
}

// ReferenceInstance exposes a many-to-one reference to conventions.
type ReferenceInstance struct {
	m *model.ManyToOneMapping
}

// NewReferenceInstance wraps m.
func NewReferenceInstance(m *model.ManyToOneMapping) *ReferenceInstance {
	return &ReferenceInstance{m: m}
}

// Mapping returns the wrapped reference for inspection.
func (r *ReferenceInstance) Mapping() *model.ManyToOneMapping { return r.m }

// EntityType returns the declaring entity.
func (r *ReferenceInstance) EntityType() *types.Type { return r.m.ContainingEntity }

// Name returns the member name.
func (r *ReferenceInstance) Name() string { return r.m.Name() }

// Member returns the mapped member.
func (r *ReferenceInstance) Member() *types.Member { return r.m.Member }

// Target returns the referenced type.
func (r *ReferenceInstance) Target() *types.Type { return r.m.Target() }

// Column renames the reference column.
func (r *ReferenceInstance) Column(name string) { setColumns(&r.m.Columns, name) }

// ForeignKey names the foreign key constraint.
func (r *ReferenceInstance) ForeignKey(name string) { set(r.m, model.ManyToOne.ForeignKey, name) }

// Cascade sets the cascade style.
func (r *ReferenceInstance) Cascade(style string) { set(r.m, model.ManyToOne.Cascade, style) }

// Fetch sets the fetch mode.
func (r *ReferenceInstance) Fetch(mode string) { set(r.m, model.ManyToOne.Fetch, mode) }

// LazyLoad sets the lazy mode ("proxy", "no-proxy" or "false").
func (r *ReferenceInstance) LazyLoad(mode string) { set(r.m, model.ManyToOne.Lazy, mode) }

// NotFound sets the dangling key behaviour.
func (r *ReferenceInstance) NotFound(mode string) { set(r.m, model.ManyToOne.NotFound, mode) }

// NotNull sets the not-null constraint.
func (r *ReferenceInstance) NotNull(v bool) {
	eachColumn(&r.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.NotNull, v) })
}

// Index adds the columns to a named index.
func (r *ReferenceInstance) Index(name string) {
	eachColumn(&r.m.Columns, func(c *model.ColumnMapping) { set(c, model.Column.Index, name) })
}

// Access sets the access strategy.
func (r *ReferenceInstance) Access(strategy string) { set(r.m, model.ManyToOne.Access, strategy) }

// OneToOneInstance exposes a one-to-one association to conventions.
type OneToOneInstance struct {
	m *model.OneToOneMapping
}

// NewOneToOneInstance wraps m.
func NewOneToOneInstance(m *model.OneToOneMapping) *OneToOneInstance {
	return &OneToOneInstance{m: m}
}

// Mapping returns the wrapped association for inspection.
func (o *OneToOneInstance) Mapping() *model.OneToOneMapping { return o.m }

// EntityType returns the declaring entity.
func (o *OneToOneInstance) EntityType() *types.Type { return o.m.ContainingEntity }

// Name returns the member name.
func (o *OneToOneInstance) Name() string { return o.m.Name() }

// Cascade sets the cascade style.
func (o *OneToOneInstance) Cascade(style string) { set(o.m, model.OneToOne.Cascade, style) }

// Fetch sets the fetch mode.
func (o *OneToOneInstance) Fetch(mode string) { set(o.m, model.OneToOne.Fetch, mode) }

// Constrained sets the constrained flag.
func (o *OneToOneInstance) Constrained(v bool) { set(o.m, model.OneToOne.Constrained, v) }

// ForeignKey names the foreign key constraint.
func (o *OneToOneInstance) ForeignKey(name string) { set(o.m, model.OneToOne.ForeignKey, name) }

// LazyLoad sets the lazy mode.
func (o *OneToOneInstance) LazyLoad(mode string) { set(o.m, model.OneToOne.Lazy, mode) }

// Access sets the access strategy.
func (o *OneToOneInstance) Access(strategy string) { set(o.m, model.OneToOne.Access, strategy) }

// CollectionInstance exposes a collection to conventions.
type CollectionInstance struct {
	m *model.CollectionMapping
}

// NewCollectionInstance wraps m.
func NewCollectionInstance(m *model.CollectionMapping) *CollectionInstance {
	return &CollectionInstance{m: m}
}

// Mapping returns the wrapped collection for inspection.
func (c *CollectionInstance) Mapping() *model.CollectionMapping { return c.m }

// EntityType returns the declaring entity.
func (c *CollectionInstance) EntityType() *types.Type { return c.m.ContainingEntity }

// ChildType returns the element type.
func (c *CollectionInstance) ChildType() *types.Type { return c.m.ChildType }

// Name returns the member name.
func (c *CollectionInstance) Name() string { return c.m.Name() }

// Kind returns the collection kind.
func (c *CollectionInstance) Kind() model.CollectionKind { return c.m.Kind }

// IsManyToMany reports whether the collection is stored in a join table.
func (c *CollectionInstance) IsManyToMany() bool {
	_, ok := c.m.ManyToMany()
	return ok
}

// OtherSide returns the paired side, or nil.
func (c *CollectionInstance) OtherSide() model.Node { return c.m.OtherSide }

// TableName returns the resolved table name.
func (c *CollectionInstance) TableName() string { return c.m.TableName() }

// Table sets the collection table.
func (c *CollectionInstance) Table(name string) { set(c.m, model.Collection.Table, name) }

// Schema sets the collection table schema.
func (c *CollectionInstance) Schema(name string) { set(c.m, model.Collection.Schema, name) }

// Inverse sets the inverse flag.
func (c *CollectionInstance) Inverse(v bool) { set(c.m, model.Collection.Inverse, v) }

// Cascade sets the cascade style.
func (c *CollectionInstance) Cascade(style string) { set(c.m, model.Collection.Cascade, style) }

// Fetch sets the fetch mode.
func (c *CollectionInstance) Fetch(mode string) { set(c.m, model.Collection.Fetch, mode) }

// LazyLoad sets the lazy mode ("true", "false" or "extra").
func (c *CollectionInstance) LazyLoad(mode string) { set(c.m, model.Collection.Lazy, mode) }

// BatchSize sets the batch size.
func (c *CollectionInstance) BatchSize(n int) { set(c.m, model.Collection.BatchSize, n) }

// Where restricts loaded elements.
func (c *CollectionInstance) Where(cond string) { set(c.m, model.Collection.Where, cond) }

// OrderBy sorts loaded elements.
func (c *CollectionInstance) OrderBy(expr string) { set(c.m, model.Collection.OrderBy, expr) }

// Access sets the access strategy.
func (c *CollectionInstance) Access(strategy string) { set(c.m, model.Collection.Access, strategy) }

// Key returns the collection key.
func (c *CollectionInstance) Key() *KeyInstance { return &KeyInstance{m: c.m.Key} }

// ChildKeyColumn renames the many-to-many column referencing the child.
func (c *CollectionInstance) ChildKeyColumn(name string) {
	if mm, ok := c.m.ManyToMany(); ok {
		setColumns(&mm.Columns, name)
	}
}

// Cache enables caching with usage unless a cache is configured.
func (c *CollectionInstance) Cache(usage string) {
	if c.m.Cache == nil {
		c.m.Cache = &model.CacheMapping{}
	}
	set(c.m.Cache, model.Cache.Usage, usage)
}

// KeyInstance exposes a foreign key of a collection, join or joined
// subclass.
type KeyInstance struct {
	m *model.KeyMapping
}

// Columns returns the resolved column names.
func (k *KeyInstance) Columns() []string { return k.m.Columns.Names() }

// Column renames the key columns.
func (k *KeyInstance) Column(names ...string) { setColumns(&k.m.Columns, names...) }

// ForeignKey names the constraint.
func (k *KeyInstance) ForeignKey(name string) { set(k.m, model.Key.ForeignKey, name) }

// OnDelete sets the delete action.
func (k *KeyInstance) OnDelete(action string) { set(k.m, model.Key.OnDelete, action) }

// NotNull sets the not-null constraint.
func (k *KeyInstance) NotNull(v bool) { set(k.m, model.Key.NotNull, v) }

// ComponentInstance exposes an inline component to conventions.
type ComponentInstance struct {
	m *model.ComponentMapping
}

// NewComponentInstance wraps m.
func NewComponentInstance(m *model.ComponentMapping) *ComponentInstance {
	return &ComponentInstance{m: m}
}

// Mapping returns the wrapped component for inspection.
func (c *ComponentInstance) Mapping() *model.ComponentMapping { return c.m }

// EntityType returns the declaring entity.
func (c *ComponentInstance) EntityType() *types.Type { return c.m.ContainingEntity }

// Name returns the member name.
func (c *ComponentInstance) Name() string { return c.m.MemberName() }

// Type returns the component type.
func (c *ComponentInstance) Type() *types.Type { return c.m.Type }

// Access sets the access strategy.
func (c *ComponentInstance) Access(strategy string) { set(c.m, model.Component.Access, strategy) }

// LazyLoad sets lazy loading.
func (c *ComponentInstance) LazyLoad(v bool) { set(c.m, model.Component.Lazy, v) }

// Unique sets the unique constraint across the component.
func (c *ComponentInstance) Unique(v bool) { set(c.m, model.Component.Unique, v) }

// ReadOnly excludes the component from inserts and updates.
func (c *ComponentInstance) ReadOnly() {
	set(c.m, model.Component.Insert, false)
	set(c.m, model.Component.Update, false)
}

// VersionInstance exposes a version mapping to conventions.
type VersionInstance struct {
	m      *model.VersionMapping
	entity *types.Type
}

// NewVersionInstance wraps m declared on entity.
func NewVersionInstance(m *model.VersionMapping, entity *types.Type) *VersionInstance {
	return &VersionInstance{m: m, entity: entity}
}

// Mapping returns the wrapped version for inspection.
func (v *VersionInstance) Mapping() *model.VersionMapping { return v.m }

// EntityType returns the owning entity.
func (v *VersionInstance) EntityType() *types.Type { return v.entity }

// Name returns the member name.
func (v *VersionInstance) Name() string { return v.m.Name() }

// Column renames the version column.
func (v *VersionInstance) Column(name string) { setColumns(&v.m.Columns, name) }

// UnsavedValue sets the transient version value.
func (v *VersionInstance) UnsavedValue(value string) {
	set(v.m, model.Version.UnsavedValue, value)
}

// Generated marks the version as database generated.
func (v *VersionInstance) Generated(when string) { set(v.m, model.Version.Generated, when) }

// Access sets the access strategy.
func (v *VersionInstance) Access(strategy string) { set(v.m, model.Version.Access, strategy) }

// JoinInstance exposes a secondary table join to conventions.
type JoinInstance struct {
	m *model.JoinMapping
}

// NewJoinInstance wraps m.
func NewJoinInstance(m *model.JoinMapping) *JoinInstance { return &JoinInstance{m: m} }

// Mapping returns the wrapped join for inspection.
func (j *JoinInstance) Mapping() *model.JoinMapping { return j.m }

// EntityType returns the owning entity.
func (j *JoinInstance) EntityType() *types.Type { return j.m.ContainingEntity }

// TableName returns the joined table name.
func (j *JoinInstance) TableName() string { return j.m.TableName() }

// Table renames the joined table.
func (j *JoinInstance) Table(name string) { set(j.m, model.Join.Table, name) }

// Schema sets the joined table schema.
func (j *JoinInstance) Schema(name string) { set(j.m, model.Join.Schema, name) }

// Optional sets the optional flag.
func (j *JoinInstance) Optional(v bool) { set(j.m, model.Join.Optional, v) }

// Fetch sets the fetch mode.
func (j *JoinInstance) Fetch(mode string) { set(j.m, model.Join.Fetch, mode) }

// Key returns the join key.
func (j *JoinInstance) Key() *KeyInstance { return &KeyInstance{m: j.m.Key} }

// DocumentInstance exposes the compiled document to conventions.
type DocumentInstance struct {
	m *model.Document
}

// NewDocumentInstance wraps m.
func NewDocumentInstance(m *model.Document) *DocumentInstance { return &DocumentInstance{m: m} }

// Mapping returns the wrapped document for inspection.
func (d *DocumentInstance) Mapping() *model.Document { return d.m }

// DefaultLazy sets the document-wide lazy default.
func (d *DocumentInstance) DefaultLazy(v bool) { set(d.m, model.Doc.DefaultLazy, v) }

// DefaultAccess sets the document-wide access strategy.
func (d *DocumentInstance) DefaultAccess(strategy string) { set(d.m, model.Doc.DefaultAccess, strategy) }

// DefaultCascade sets the document-wide cascade style.
func (d *DocumentInstance) DefaultCascade(style string) { set(d.m, model.Doc.DefaultCascade, style) }

// AutoImport sets auto-import.
func (d *DocumentInstance) AutoImport(v bool) { set(d.m, model.Doc.AutoImport, v) }

// Schema sets the default schema.
func (d *DocumentInstance) Schema(name string) { set(d.m, model.Doc.Schema, name) }
