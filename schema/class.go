package schema

import (
	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Polymorphism modes.
const (
	PolymorphismImplicit = "implicit"
	PolymorphismExplicit = "explicit"
)

// Optimistic lock modes.
const (
	OptimisticLockNone    = "none"
	OptimisticLockVersion = "version"
	OptimisticLockDirty   = "dirty"
	OptimisticLockAll     = "all"
)

// Mixin contributes reusable mappings to class maps.
type Mixin interface {
	Mix(*ClassMap)
}

// ClassMap declares the mapping of a root entity.
//
//	customer := schema.NewClassMap(customerType)
//	customer.Table("customers")
//	customer.Id("Id").GeneratedBy().Identity()
//	customer.Map("Name").Length(100).Not().Nullable()
//	customer.HasMany("Orders").Inverse().Cascade().All()
type ClassMap struct {
	Members
	problems  errorList
	class     part[*model.ClassMapping]
	idKind    string
	id        *IdPart
	idMember  *types.Member
	composite *CompositeIdPart
	version   *types.Member
	versionP  *VersionPart
}

// NewClassMap returns a class map for t.
func NewClassMap(t *types.Type) *ClassMap {
	c := &ClassMap{}
	c.Members = newMembers(t, &c.problems)
	return c
}

// Type returns the mapped type.
func (c *ClassMap) Type() *types.Type { return c.Members.typ }

// Mapping builds a fresh class mapping.
func (c *ClassMap) Mapping() *model.ClassMapping {
	m := model.NewClass(c.Type())
	c.applyTo(m)
	return m
}

// applyTo replays the declaration against m. Overrides use it to alter an
// automapped class.
func (c *ClassMap) applyTo(m *model.ClassMapping) {
	switch c.idKind {
	case "id":
		id := model.NewId(c.idMember)
		c.id.build(id)
		m.Id = id
	case "composite":
		cid := &model.CompositeIdMapping{}
		c.composite.apply(cid)
		m.Id = cid
	}
	if c.version != nil {
		v := model.NewVersion(c.version)
		c.versionP.apply(v)
		m.Version = v
	}
	c.Members.applyTo(&m.Members)
	c.class.apply(m)
}

// Action implements fluentmap.Provider.
func (c *ClassMap) Action() fluentmap.Action {
	return &fluentmap.ManualAction{Mapping: c.Mapping()}
}

// Err returns the errors recorded while declaring the mapping.
func (c *ClassMap) Err() error { return c.problems.err() }

// Mixin applies reusable mappings.
func (c *ClassMap) Mixin(ms ...Mixin) *ClassMap {
	for _, m := range ms {
		m.Mix(c)
	}
	return c
}

// Not negates the next boolean setter.
func (c *ClassMap) Not() *ClassMap { c.class.not = !c.class.not; return c }

func (c *ClassMap) set(f func(*model.ClassMapping)) *ClassMap {
	c.class.add(f)
	return c
}

// Table sets the table name.
func (c *ClassMap) Table(name string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Table, model.UserSupplied, name) })
}

// Schema sets the table schema.
func (c *ClassMap) Schema(name string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Schema, model.UserSupplied, name) })
}

// Catalog sets the table catalog.
func (c *ClassMap) Catalog(name string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Catalog, model.UserSupplied, name) })
}

// LazyLoad loads instances through proxies.
func (c *ClassMap) LazyLoad() *ClassMap {
	v := c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Lazy, model.UserSupplied, v) })
}

// ReadOnly marks the entity immutable.
func (c *ClassMap) ReadOnly() *ClassMap {
	v := !c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Mutable, model.UserSupplied, v) })
}

// DynamicUpdate updates only changed columns.
func (c *ClassMap) DynamicUpdate() *ClassMap {
	v := c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.DynamicUpdate, model.UserSupplied, v) })
}

// DynamicInsert inserts only non-null columns.
func (c *ClassMap) DynamicInsert() *ClassMap {
	v := c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.DynamicInsert, model.UserSupplied, v) })
}

// SelectBeforeUpdate reads the row before updating a detached instance.
func (c *ClassMap) SelectBeforeUpdate() *ClassMap {
	v := c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.SelectBeforeUpdate, model.UserSupplied, v) })
}

// Abstract marks the class as never instantiated.
func (c *ClassMap) Abstract() *ClassMap {
	v := c.class.flag()
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Abstract, model.UserSupplied, v) })
}

// Polymorphism sets the polymorphism mode.
func (c *ClassMap) Polymorphism(mode string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Polymorphism, model.UserSupplied, mode) })
}

// Where restricts loaded rows.
func (c *ClassMap) Where(cond string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Where, model.UserSupplied, cond) })
}

// BatchSize loads instances in batches.
func (c *ClassMap) BatchSize(n int) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.BatchSize, model.UserSupplied, n) })
}

// OptimisticLock sets the optimistic lock mode.
func (c *ClassMap) OptimisticLock(mode string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.OptimisticLock, model.UserSupplied, mode) })
}

// Check adds a table check constraint.
func (c *ClassMap) Check(expr string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Check, model.UserSupplied, expr) })
}

// Persister sets a custom persister class.
func (c *ClassMap) Persister(class string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Persister, model.UserSupplied, class) })
}

// Proxy sets the proxy interface.
func (c *ClassMap) Proxy(t *types.Type) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Proxy, model.UserSupplied, t.String()) })
}

// SchemaAction controls schema export ("none", "drop", "update", "export",
// "validate" or "all").
func (c *ClassMap) SchemaAction(action string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.SchemaAction, model.UserSupplied, action) })
}

// EntityName sets the entity name.
func (c *ClassMap) EntityName(name string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.EntityName, model.UserSupplied, name) })
}

// Subselect maps the entity to a SQL query instead of a table.
func (c *ClassMap) Subselect(query string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.Subselect, model.UserSupplied, query) })
}

// DiscriminatorValue sets the discriminator value of the root class.
func (c *ClassMap) DiscriminatorValue(v string) *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.DiscriminatorValue, model.UserSupplied, v) })
}

// UseUnionSubclassForInheritanceMapping maps subclasses as union
// subclasses.
func (c *ClassMap) UseUnionSubclassForInheritanceMapping() *ClassMap {
	return c.set(func(m *model.ClassMapping) { model.Set(m, model.Class.UnionSubclass, model.UserSupplied, true) })
}

// Id maps the identifier member. An empty name maps an identifier with no
// backing member.
func (c *ClassMap) Id(name string) *IdPart {
	if c.idKind == "composite" {
		c.problems.add(identityConflict(c.Type(), "composite-id"))
	}
	var mem *types.Member
	if name != "" {
		mem = c.problems.member(c.Type(), name)
	}
	if c.id == nil || c.idMember != mem {
		c.id = &IdPart{}
	}
	c.idKind, c.idMember = "id", mem
	return c.id
}

// CompositeId maps a multi-part identifier.
func (c *ClassMap) CompositeId() *CompositeIdPart {
	if c.idKind == "id" {
		c.problems.add(identityConflict(c.Type(), "id"))
	}
	if c.composite == nil {
		c.composite = &CompositeIdPart{owner: c.Type(), errs: &c.problems}
	}
	c.idKind = "composite"
	return c.composite
}

// Version maps the optimistic concurrency member.
func (c *ClassMap) Version(name string) *VersionPart {
	c.version = c.problems.member(c.Type(), name)
	c.versionP = &VersionPart{}
	return c.versionP
}

// DiscriminateSubclassesOnColumn stores the subclass of each row in column
// and makes subclasses map as table-per-hierarchy.
func (c *ClassMap) DiscriminateSubclassesOnColumn(column string) *DiscriminatorPart {
	d := &DiscriminatorPart{}
	c.set(func(m *model.ClassMapping) {
		m.Discriminator = model.NewDiscriminator(column, model.UserSupplied)
		d.apply(m.Discriminator)
	})
	return d
}

// Cache enables second-level caching.
func (c *ClassMap) Cache() *CachePart[*ClassMap] {
	cp := &CachePart[*ClassMap]{owner: c}
	c.set(func(m *model.ClassMapping) { m.Cache = cp.build() })
	return cp
}

// Join maps members to a secondary table.
func (c *ClassMap) Join(table string, configure func(*JoinPart)) *ClassMap {
	j := &JoinPart{Members: newMembers(c.Type(), &c.problems), table: table}
	configure(j)
	return c.set(func(m *model.ClassMapping) { m.AddJoin(j.build(m.Type)) })
}

// NaturalId declares the natural key.
func (c *ClassMap) NaturalId() *NaturalIdPart {
	n := &NaturalIdPart{owner: c.Type(), errs: &c.problems}
	c.set(func(m *model.ClassMapping) { m.NaturalId = n.build() })
	return n
}

// ApplyFilter applies a filter definition.
func (c *ClassMap) ApplyFilter(name, condition string) *ClassMap {
	c.Members.ApplyFilter(name, condition)
	return c
}
