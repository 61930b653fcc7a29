package schema

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// CollectionPart configures a one-to-many or many-to-many collection.
type CollectionPart struct {
	part[*model.CollectionMapping]
	kind       model.CollectionKind
	manyToMany bool
	child      *types.Type
	index      []func(*model.IndexMapping)
	indexKind  model.IndexKind
	element    *ElementPart
	composite  *CompositeElementPart
	relation   []func(model.Relationship)
	key        columnSteps
	errs       *errorList
}

func newCollectionPart(child *types.Type, manyToMany bool, errs *errorList) *CollectionPart {
	return &CollectionPart{kind: model.KindBag, child: child, manyToMany: manyToMany, errs: errs}
}

func (p *CollectionPart) build(entity *types.Type, mem *types.Member) *model.CollectionMapping {
	c := model.NewCollection(p.kind, entity, mem)
	if p.child != nil {
		c.ChildType = p.child
	}
	switch {
	case p.element != nil:
		c.Element = &model.ElementMapping{}
		model.Set(c.Element, model.Element.Type, model.Defaults, model.EngineTypeName(c.ChildType))
		p.element.apply(c.Element)
	case p.composite != nil:
		c.CompositeElement = p.composite.build()
	case p.manyToMany:
		c.Relationship = model.NewManyToMany(c.ChildType)
	default:
		c.Relationship = model.NewOneToMany(c.ChildType)
	}
	if p.kind.Indexed() {
		c.Index = &model.IndexMapping{Kind: p.indexKind}
		if c.Index.Kind == model.MapKey && mem != nil && mem.Type.Key != nil {
			model.Set(c.Index, model.Index.Type, model.Defaults, model.EngineTypeName(mem.Type.Key))
		}
		for _, f := range p.index {
			f(c.Index)
		}
	}
	for _, f := range p.relation {
		if c.Relationship != nil {
			f(c.Relationship)
		}
	}
	p.apply(c)
	p.key.applyTo(&c.Key.Columns)
	return c
}

// Not negates the next boolean setter.
func (p *CollectionPart) Not() *CollectionPart { p.not = !p.not; return p }

// AsBag maps an unordered collection allowing duplicates.
func (p *CollectionPart) AsBag() *CollectionPart { p.kind = model.KindBag; return p }

// AsSet maps an unordered collection without duplicates.
func (p *CollectionPart) AsSet() *CollectionPart { p.kind = model.KindSet; return p }

// AsList maps an ordered collection positioned by indexColumn.
func (p *CollectionPart) AsList(indexColumn string) *CollectionPart {
	p.kind, p.indexKind = model.KindList, model.PlainIndex
	p.indexColumn(indexColumn)
	return p
}

// AsArray maps a fixed array positioned by indexColumn.
func (p *CollectionPart) AsArray(indexColumn string) *CollectionPart {
	p.kind, p.indexKind = model.KindArray, model.PlainIndex
	p.indexColumn(indexColumn)
	return p
}

// AsMap maps a dictionary keyed by indexColumn.
func (p *CollectionPart) AsMap(indexColumn string) *CollectionPart {
	p.kind, p.indexKind = model.KindMap, model.MapKey
	p.indexColumn(indexColumn)
	return p
}

func (p *CollectionPart) indexColumn(name string) {
	p.index = append(p.index, func(i *model.IndexMapping) { userColumn(&i.Columns, name) })
}

// KeyColumn adds a key column referencing the owning entity.
func (p *CollectionPart) KeyColumn(name string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { userColumn(&c.Key.Columns, name) })
	return p
}

// KeyColumns replaces the key columns.
func (p *CollectionPart) KeyColumns(names ...string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) {
		c.Key.Columns.Clear(model.UserSupplied)
		userColumn(&c.Key.Columns, names...)
	})
	return p
}

// ParentKeyColumn is KeyColumn for many-to-many collections.
func (p *CollectionPart) ParentKeyColumn(name string) *CollectionPart { return p.KeyColumn(name) }

// ChildKeyColumn adds a join table column referencing the child entity.
func (p *CollectionPart) ChildKeyColumn(name string) *CollectionPart {
	p.relation = append(p.relation, func(r model.Relationship) {
		if mm, ok := r.(*model.ManyToManyMapping); ok {
			userColumn(&mm.Columns, name)
		}
	})
	return p
}

// KeyNullable allows a null key. Not().KeyNullable() adds a not-null
// constraint.
func (p *CollectionPart) KeyNullable() *CollectionPart {
	notNull := !p.flag()
	p.add(func(c *model.CollectionMapping) { model.Set(c.Key, model.Key.NotNull, model.UserSupplied, notNull) })
	p.key.add(func(col *model.ColumnMapping) { model.Set(col, model.Column.NotNull, model.UserSupplied, notNull) })
	return p
}

// ForeignKeyConstraintName names the key constraint.
func (p *CollectionPart) ForeignKeyConstraintName(name string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c.Key, model.Key.ForeignKey, model.UserSupplied, name) })
	return p
}

// ForeignKeyCascadeOnDelete deletes children through the database.
func (p *CollectionPart) ForeignKeyCascadeOnDelete() *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c.Key, model.Key.OnDelete, model.UserSupplied, "cascade") })
	return p
}

// PropertyRef keys the collection on a non-key property of the owner.
func (p *CollectionPart) PropertyRef(name string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c.Key, model.Key.PropertyRef, model.UserSupplied, name) })
	return p
}

// Table sets the collection table.
func (p *CollectionPart) Table(name string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Table, model.UserSupplied, name) })
	return p
}

// Schema sets the collection table schema.
func (p *CollectionPart) Schema(name string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Schema, model.UserSupplied, name) })
	return p
}

// Inverse marks the other side as owning the relationship.
func (p *CollectionPart) Inverse() *CollectionPart {
	v := p.flag()
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Inverse, model.UserSupplied, v) })
	return p
}

// Cascade selects the cascade style.
func (p *CollectionPart) Cascade() *CascadeExpression[*CollectionPart] {
	return cascade(p, func(v string) {
		p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Cascade, model.UserSupplied, v) })
	})
}

// LazyLoad loads the collection on first access.
func (p *CollectionPart) LazyLoad() *CollectionPart {
	v := "true"
	if !p.flag() {
		v = "false"
	}
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Lazy, model.UserSupplied, v) })
	return p
}

// ExtraLazyLoad loads elements one by one.
func (p *CollectionPart) ExtraLazyLoad() *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Lazy, model.UserSupplied, "extra") })
	return p
}

// Fetch sets the fetch mode.
func (p *CollectionPart) Fetch(mode string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Fetch, model.UserSupplied, mode) })
	return p
}

// Where restricts the loaded elements.
func (p *CollectionPart) Where(cond string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Where, model.UserSupplied, cond) })
	return p
}

// OrderBy sorts the loaded elements in SQL.
func (p *CollectionPart) OrderBy(expr string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.OrderBy, model.UserSupplied, expr) })
	return p
}

// ChildWhere restricts the joined entities of a many-to-many.
func (p *CollectionPart) ChildWhere(cond string) *CollectionPart {
	p.relation = append(p.relation, func(r model.Relationship) {
		if mm, ok := r.(*model.ManyToManyMapping); ok {
			model.Set(mm, model.ManyToMany.Where, model.UserSupplied, cond)
		}
	})
	return p
}

// NotFound sets the behaviour for dangling child keys.
func (p *CollectionPart) NotFound(mode string) *CollectionPart {
	p.relation = append(p.relation, func(r model.Relationship) {
		switch r := r.(type) {
		case *model.OneToManyMapping:
			model.Set(r, model.OneToMany.NotFound, model.UserSupplied, mode)
		case *model.ManyToManyMapping:
			model.Set(r, model.ManyToMany.NotFound, model.UserSupplied, mode)
		}
	})
	return p
}

// BatchSize loads collections in batches.
func (p *CollectionPart) BatchSize(n int) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.BatchSize, model.UserSupplied, n) })
	return p
}

// ReadOnly marks the collection immutable.
func (p *CollectionPart) ReadOnly() *CollectionPart {
	v := !p.flag()
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Mutable, model.UserSupplied, v) })
	return p
}

// OptimisticLock includes changes in version checks.
func (p *CollectionPart) OptimisticLock() *CollectionPart {
	v := p.flag()
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.OptimisticLock, model.UserSupplied, v) })
	return p
}

// Access sets the access strategy.
func (p *CollectionPart) Access(strategy string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { model.Set(c, model.Collection.Access, model.UserSupplied, strategy) })
	return p
}

// Cache enables second-level caching of the collection.
func (p *CollectionPart) Cache() *CachePart[*CollectionPart] {
	cp := &CachePart[*CollectionPart]{owner: p}
	p.add(func(c *model.CollectionMapping) { c.Cache = cp.build() })
	return cp
}

// ApplyFilter applies a filter definition to the collection.
func (p *CollectionPart) ApplyFilter(name, condition string) *CollectionPart {
	p.add(func(c *model.CollectionMapping) { c.Filters = append(c.Filters, model.NewFilter(name, condition)) })
	return p
}

// Element maps a collection of values stored in column.
func (p *CollectionPart) Element(column string, configure ...func(*ElementPart)) *CollectionPart {
	e := &ElementPart{}
	e.add(func(m *model.ElementMapping) { userColumn(&m.Columns, column) })
	for _, f := range configure {
		f(e)
	}
	p.element, p.composite = e, nil
	return p
}

// Component maps a collection of components.
func (p *CollectionPart) Component(configure func(*CompositeElementPart)) *CollectionPart {
	c := &CompositeElementPart{typ: p.child, errs: p.errs}
	configure(c)
	p.composite, p.element = c, nil
	return p
}

// ElementPart configures the element of a value collection.
type ElementPart struct {
	part[*model.ElementMapping]
}

// Type sets the element engine type.
func (e *ElementPart) Type(t *types.Type) *ElementPart {
	e.add(func(m *model.ElementMapping) { model.Set(m, model.Element.Type, model.UserSupplied, model.EngineTypeName(t)) })
	return e
}

// Formula derives the element from a SQL expression.
func (e *ElementPart) Formula(expr string) *ElementPart {
	e.add(func(m *model.ElementMapping) { model.Set(m, model.Element.Formula, model.UserSupplied, expr) })
	return e
}

// Length sets the element column length.
func (e *ElementPart) Length(n int) *ElementPart {
	e.add(func(m *model.ElementMapping) {
		for _, c := range m.Columns.All() {
			model.Set(c, model.Column.Length, model.UserSupplied, n)
		}
	})
	return e
}

// CompositeElementPart configures the element of a component collection.
type CompositeElementPart struct {
	typ    *types.Type
	errs   *errorList
	steps  []func(*model.CompositeElementMapping)
	parent string
}

func (c *CompositeElementPart) build() *model.CompositeElementMapping {
	m := &model.CompositeElementMapping{Type: c.typ}
	model.Set(m, model.CompositeElement.Class, model.Defaults, c.typ.String())
	c.fill(m)
	return m
}

func (c *CompositeElementPart) fill(m *model.CompositeElementMapping) {
	if c.parent != "" {
		m.Parent = &model.ParentMapping{}
		model.Set(m.Parent, model.Parent.Name, model.UserSupplied, c.parent)
	}
	for _, f := range c.steps {
		f(m)
	}
}

// Map adds a property of the component.
func (c *CompositeElementPart) Map(name string) *PropertyPart {
	p := &PropertyPart{}
	mem, owner := c.errs.member(c.typ, name), c.typ
	c.steps = append(c.steps, func(m *model.CompositeElementMapping) {
		if mem == nil {
			return
		}
		pm := model.NewProperty(owner, mem)
		p.build(pm)
		m.Properties = append(m.Properties, pm)
	})
	return p
}

// References adds a reference from the component to an entity.
func (c *CompositeElementPart) References(name string) *ManyToOnePart {
	p := &ManyToOnePart{}
	mem, owner := c.errs.member(c.typ, name), c.typ
	c.steps = append(c.steps, func(m *model.CompositeElementMapping) {
		if mem == nil {
			return
		}
		r := model.NewManyToOne(owner, mem)
		p.build(r)
		m.References = append(m.References, r)
	})
	return p
}

// Component adds a nested component.
func (c *CompositeElementPart) Component(name string, configure func(*CompositeElementPart)) *CompositeElementPart {
	mem := c.errs.member(c.typ, name)
	if mem == nil {
		return c
	}
	nested := &CompositeElementPart{typ: mem.Type, errs: c.errs}
	configure(nested)
	c.steps = append(c.steps, func(m *model.CompositeElementMapping) {
		n := &model.NestedCompositeElementMapping{Member: mem}
		n.Type = mem.Type
		model.Set(&n.CompositeElementMapping, model.CompositeElement.Class, model.Defaults, mem.Type.String())
		nested.fill(&n.CompositeElementMapping)
		m.Nested = append(m.Nested, n)
	})
	return c
}

// ParentReference maps the back reference to the owning entity.
func (c *CompositeElementPart) ParentReference(name string) *CompositeElementPart {
	c.parent = name
	return c
}
