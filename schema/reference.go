package schema

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// ManyToOnePart configures a reference to another entity.
type ManyToOnePart struct {
	part[*model.ManyToOneMapping]
	columns columnSteps
}

func (p *ManyToOnePart) build(m *model.ManyToOneMapping) {
	p.apply(m)
	p.columns.applyTo(&m.Columns)
}

// Not negates the next boolean setter.
func (p *ManyToOnePart) Not() *ManyToOnePart { p.not = !p.not; return p }

// Column sets the foreign key column. Repeated calls map a composite key.
func (p *ManyToOnePart) Column(name string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { userColumn(&m.Columns, name) })
	return p
}

// Columns replaces the foreign key columns.
func (p *ManyToOnePart) Columns(names ...string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) {
		m.Columns.Clear(model.UserSupplied)
		userColumn(&m.Columns, names...)
	})
	return p
}

// Class overrides the referenced entity, e.g. for a mapped subtype.
func (p *ManyToOnePart) Class(t *types.Type) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Class, model.UserSupplied, t.String()) })
	return p
}

// Cascade selects the cascade style.
func (p *ManyToOnePart) Cascade() *CascadeExpression[*ManyToOnePart] {
	return cascade(p, func(v string) {
		p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Cascade, model.UserSupplied, v) })
	})
}

// Fetch sets the fetch mode.
func (p *ManyToOnePart) Fetch(mode string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Fetch, model.UserSupplied, mode) })
	return p
}

// LazyLoad loads the reference through a proxy.
func (p *ManyToOnePart) LazyLoad() *ManyToOnePart {
	v := "proxy"
	if !p.flag() {
		v = "false"
	}
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Lazy, model.UserSupplied, v) })
	return p
}

// NotFound sets the behaviour for dangling keys.
func (p *ManyToOnePart) NotFound(mode string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.NotFound, model.UserSupplied, mode) })
	return p
}

// Nullable allows a null key. Not().Nullable() adds a not-null constraint.
func (p *ManyToOnePart) Nullable() *ManyToOnePart {
	notNull := !p.flag()
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.NotNull, model.UserSupplied, notNull) })
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.NotNull, model.UserSupplied, notNull) })
	return p
}

// Unique adds a unique constraint.
func (p *ManyToOnePart) Unique() *ManyToOnePart {
	v := p.flag()
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Unique, model.UserSupplied, v) })
	return p
}

// UniqueKey groups the columns into a named unique key.
func (p *ManyToOnePart) UniqueKey(name string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.UniqueKey, model.UserSupplied, name) })
	return p
}

// Index adds the columns to a named index.
func (p *ManyToOnePart) Index(name string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Index, model.UserSupplied, name) })
	return p
}

// ForeignKey names the foreign key constraint.
func (p *ManyToOnePart) ForeignKey(name string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.ForeignKey, model.UserSupplied, name) })
	return p
}

// PropertyRef joins on a non-key property of the referenced entity.
func (p *ManyToOnePart) PropertyRef(name string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.PropertyRef, model.UserSupplied, name) })
	return p
}

// Formula derives the key from a SQL expression.
func (p *ManyToOnePart) Formula(expr string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) {
		model.Set(m, model.ManyToOne.Formula, model.UserSupplied, expr)
		m.Columns.Clear(model.Defaults)
	})
	return p
}

// ReadOnly excludes the reference from inserts and updates.
func (p *ManyToOnePart) ReadOnly() *ManyToOnePart {
	v := !p.flag()
	p.add(func(m *model.ManyToOneMapping) {
		model.Set(m, model.ManyToOne.Insert, model.UserSupplied, v)
		model.Set(m, model.ManyToOne.Update, model.UserSupplied, v)
	})
	return p
}

// Access sets the access strategy.
func (p *ManyToOnePart) Access(strategy string) *ManyToOnePart {
	p.add(func(m *model.ManyToOneMapping) { model.Set(m, model.ManyToOne.Access, model.UserSupplied, strategy) })
	return p
}

// OneToOnePart configures a one-to-one association.
type OneToOnePart struct {
	part[*model.OneToOneMapping]
}

// Not negates the next boolean setter.
func (p *OneToOnePart) Not() *OneToOnePart { p.not = !p.not; return p }

// Constrained adds a foreign key from the primary key to the other side.
func (p *OneToOnePart) Constrained() *OneToOnePart {
	v := p.flag()
	p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.Constrained, model.UserSupplied, v) })
	return p
}

// Cascade selects the cascade style.
func (p *OneToOnePart) Cascade() *CascadeExpression[*OneToOnePart] {
	return cascade(p, func(v string) {
		p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.Cascade, model.UserSupplied, v) })
	})
}

// PropertyRef joins on a non-key property of the other side.
func (p *OneToOnePart) PropertyRef(name string) *OneToOnePart {
	p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.PropertyRef, model.UserSupplied, name) })
	return p
}

// Fetch sets the fetch mode.
func (p *OneToOnePart) Fetch(mode string) *OneToOnePart {
	p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.Fetch, model.UserSupplied, mode) })
	return p
}

// ForeignKey names the foreign key constraint.
func (p *OneToOnePart) ForeignKey(name string) *OneToOnePart {
	p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.ForeignKey, model.UserSupplied, name) })
	return p
}

// LazyLoad loads the association through a proxy.
func (p *OneToOnePart) LazyLoad() *OneToOnePart {
	v := "proxy"
	if !p.flag() {
		v = "false"
	}
	p.add(func(m *model.OneToOneMapping) { model.Set(m, model.OneToOne.Lazy, model.UserSupplied, v) })
	return p
}

// AnyPart configures a polymorphic reference.
type AnyPart struct {
	part[*model.AnyMapping]
}

// EntityTypeColumn adds a column holding the entity discriminator.
func (p *AnyPart) EntityTypeColumn(name string) *AnyPart {
	p.add(func(m *model.AnyMapping) { userColumn(&m.TypeColumns, name) })
	return p
}

// EntityIdentifierColumn adds a column holding the entity identifier.
func (p *AnyPart) EntityIdentifierColumn(name string) *AnyPart {
	p.add(func(m *model.AnyMapping) { userColumn(&m.IdentifierColumns, name) })
	return p
}

// IdentityType sets the engine type of the identifier column.
func (p *AnyPart) IdentityType(t *types.Type) *AnyPart {
	p.add(func(m *model.AnyMapping) { model.Set(m, model.Any.IdType, model.UserSupplied, model.EngineTypeName(t)) })
	return p
}

// MetaType sets the engine type of the discriminator column.
func (p *AnyPart) MetaType(name string) *AnyPart {
	p.add(func(m *model.AnyMapping) { model.Set(m, model.Any.MetaType, model.UserSupplied, name) })
	return p
}

// AddMetaValue binds a stored discriminator value to an entity type.
func (p *AnyPart) AddMetaValue(t *types.Type, value string) *AnyPart {
	p.add(func(m *model.AnyMapping) {
		mv := &model.MetaValueMapping{}
		model.Set(mv, model.MetaValue.Value, model.UserSupplied, value)
		model.Set(mv, model.MetaValue.Class, model.UserSupplied, t.String())
		m.AddMetaValue(mv)
	})
	return p
}

// Cascade selects the cascade style.
func (p *AnyPart) Cascade() *CascadeExpression[*AnyPart] {
	return cascade(p, func(v string) {
		p.add(func(m *model.AnyMapping) { model.Set(m, model.Any.Cascade, model.UserSupplied, v) })
	})
}

// Access sets the access strategy.
func (p *AnyPart) Access(strategy string) *AnyPart {
	p.add(func(m *model.AnyMapping) { model.Set(m, model.Any.Access, model.UserSupplied, strategy) })
	return p
}
