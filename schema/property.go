package schema

import (
	"github.com/syssam/fluentmap/model"
)

// PropertyPart configures a scalar member.
type PropertyPart struct {
	part[*model.PropertyMapping]
	columns columnSteps
}

func (p *PropertyPart) build(m *model.PropertyMapping) {
	p.apply(m)
	p.columns.applyTo(&m.Columns)
}

// Not negates the next boolean setter.
func (p *PropertyPart) Not() *PropertyPart { p.not = !p.not; return p }

// Column adds a column. Repeated calls map a multi-column property.
func (p *PropertyPart) Column(name string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) { userColumn(&m.Columns, name) })
	return p
}

// Columns replaces the property columns.
func (p *PropertyPart) Columns(names ...string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) {
		m.Columns.Clear(model.UserSupplied)
		userColumn(&m.Columns, names...)
	})
	return p
}

// Length sets the column length.
func (p *PropertyPart) Length(n int) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Length, model.UserSupplied, n) })
	return p
}

// Precision sets the column precision.
func (p *PropertyPart) Precision(n int) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Precision, model.UserSupplied, n) })
	return p
}

// Scale sets the column scale.
func (p *PropertyPart) Scale(n int) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Scale, model.UserSupplied, n) })
	return p
}

// Nullable allows nulls. Not().Nullable() adds a not-null constraint.
func (p *PropertyPart) Nullable() *PropertyPart {
	notNull := !p.flag()
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.NotNull, model.UserSupplied, notNull) })
	return p
}

// Unique adds a unique constraint.
func (p *PropertyPart) Unique() *PropertyPart {
	v := p.flag()
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Unique, model.UserSupplied, v) })
	return p
}

// UniqueKey groups the column into a named unique key.
func (p *PropertyPart) UniqueKey(name string) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.UniqueKey, model.UserSupplied, name) })
	return p
}

// Index adds the column to a named index.
func (p *PropertyPart) Index(name string) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Index, model.UserSupplied, name) })
	return p
}

// Check adds a check constraint.
func (p *PropertyPart) Check(expr string) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Check, model.UserSupplied, expr) })
	return p
}

// Default sets the column default expression.
func (p *PropertyPart) Default(expr string) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Default, model.UserSupplied, expr) })
	return p
}

// CustomSqlType sets the column DDL type.
func (p *PropertyPart) CustomSqlType(sqlType string) *PropertyPart {
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.SQLType, model.UserSupplied, sqlType) })
	return p
}

// CustomType sets the engine type.
func (p *PropertyPart) CustomType(name string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Type, model.UserSupplied, name) })
	return p
}

// Formula maps the property to a SQL expression instead of a column.
func (p *PropertyPart) Formula(expr string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) {
		model.Set(m, model.Property.Formula, model.UserSupplied, expr)
		m.Columns.Clear(model.Defaults)
	})
	return p
}

// Insert includes the property in inserts.
func (p *PropertyPart) Insert() *PropertyPart {
	v := p.flag()
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Insert, model.UserSupplied, v) })
	return p
}

// Update includes the property in updates.
func (p *PropertyPart) Update() *PropertyPart {
	v := p.flag()
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Update, model.UserSupplied, v) })
	return p
}

// ReadOnly excludes the property from inserts and updates.
func (p *PropertyPart) ReadOnly() *PropertyPart {
	v := !p.flag()
	p.add(func(m *model.PropertyMapping) {
		model.Set(m, model.Property.Insert, model.UserSupplied, v)
		model.Set(m, model.Property.Update, model.UserSupplied, v)
	})
	return p
}

// LazyLoad loads the property on first access.
func (p *PropertyPart) LazyLoad() *PropertyPart {
	v := p.flag()
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Lazy, model.UserSupplied, v) })
	return p
}

// OptimisticLock includes the property in version checks.
func (p *PropertyPart) OptimisticLock() *PropertyPart {
	v := p.flag()
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.OptimisticLock, model.UserSupplied, v) })
	return p
}

// Generated marks the value as database generated ("never", "insert" or
// "always").
func (p *PropertyPart) Generated(when string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Generated, model.UserSupplied, when) })
	return p
}

// Access sets the access strategy.
func (p *PropertyPart) Access(strategy string) *PropertyPart {
	p.add(func(m *model.PropertyMapping) { model.Set(m, model.Property.Access, model.UserSupplied, strategy) })
	return p
}

// VersionPart configures the version member.
type VersionPart struct {
	part[*model.VersionMapping]
}

// Column sets the version column.
func (v *VersionPart) Column(name string) *VersionPart {
	v.add(func(m *model.VersionMapping) { userColumn(&m.Columns, name) })
	return v
}

// UnsavedValue sets the value marking a transient instance.
func (v *VersionPart) UnsavedValue(value string) *VersionPart {
	v.add(func(m *model.VersionMapping) { model.Set(m, model.Version.UnsavedValue, model.UserSupplied, value) })
	return v
}

// CustomType sets the engine type.
func (v *VersionPart) CustomType(name string) *VersionPart {
	v.add(func(m *model.VersionMapping) { model.Set(m, model.Version.Type, model.UserSupplied, name) })
	return v
}

// Generated marks the version as database generated.
func (v *VersionPart) Generated(when string) *VersionPart {
	v.add(func(m *model.VersionMapping) { model.Set(m, model.Version.Generated, model.UserSupplied, when) })
	return v
}

// Access sets the access strategy.
func (v *VersionPart) Access(strategy string) *VersionPart {
	v.add(func(m *model.VersionMapping) { model.Set(m, model.Version.Access, model.UserSupplied, strategy) })
	return v
}

// DiscriminatorPart configures the discriminator of a class hierarchy.
type DiscriminatorPart struct {
	part[*model.DiscriminatorMapping]
}

// Not negates the next boolean setter.
func (d *DiscriminatorPart) Not() *DiscriminatorPart { d.not = !d.not; return d }

// AlwaysSelectWithValue forces the discriminator into every query.
func (d *DiscriminatorPart) AlwaysSelectWithValue() *DiscriminatorPart {
	v := d.flag()
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.Force, model.UserSupplied, v) })
	return d
}

// ReadOnly excludes the discriminator from inserts.
func (d *DiscriminatorPart) ReadOnly() *DiscriminatorPart {
	v := !d.flag()
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.Insert, model.UserSupplied, v) })
	return d
}

// Nullable allows nulls.
func (d *DiscriminatorPart) Nullable() *DiscriminatorPart {
	v := !d.flag()
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.NotNull, model.UserSupplied, v) })
	return d
}

// Formula derives the discriminator from a SQL expression.
func (d *DiscriminatorPart) Formula(expr string) *DiscriminatorPart {
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.Formula, model.UserSupplied, expr) })
	return d
}

// CustomType sets the engine type.
func (d *DiscriminatorPart) CustomType(name string) *DiscriminatorPart {
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.Type, model.UserSupplied, name) })
	return d
}

// Length sets the column length.
func (d *DiscriminatorPart) Length(n int) *DiscriminatorPart {
	d.add(func(m *model.DiscriminatorMapping) { model.Set(m, model.Discriminator.Length, model.UserSupplied, n) })
	return d
}
