package schema

import (
	"strconv"

	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// IdPart configures a single-column identifier.
type IdPart struct {
	part[*model.IdMapping]
	generator *GeneratorPart
	columns   columnSteps
}

func (p *IdPart) build(m *model.IdMapping) {
	p.apply(m)
	if p.generator != nil && p.generator.class != "" {
		g := model.NewGenerator(p.generator.class, model.UserSupplied)
		for _, param := range p.generator.params {
			g.AddParam(param.Name, param.Value)
		}
		m.Generator = g
	}
	p.columns.applyTo(&m.Columns)
}

// Column sets the identifier column.
func (p *IdPart) Column(name string) *IdPart {
	p.add(func(m *model.IdMapping) { userColumn(&m.Columns, name) })
	return p
}

// Length sets the column length.
func (p *IdPart) Length(n int) *IdPart {
	p.add(func(m *model.IdMapping) { model.Set(m, model.Id.Length, model.UserSupplied, n) })
	p.columns.add(func(c *model.ColumnMapping) { model.Set(c, model.Column.Length, model.UserSupplied, n) })
	return p
}

// UnsavedValue sets the identifier value of a transient instance.
func (p *IdPart) UnsavedValue(value string) *IdPart {
	p.add(func(m *model.IdMapping) { model.Set(m, model.Id.UnsavedValue, model.UserSupplied, value) })
	return p
}

// CustomType sets the engine type.
func (p *IdPart) CustomType(name string) *IdPart {
	p.add(func(m *model.IdMapping) { model.Set(m, model.Id.Type, model.UserSupplied, name) })
	return p
}

// Access sets the access strategy.
func (p *IdPart) Access(strategy string) *IdPart {
	p.add(func(m *model.IdMapping) { model.Set(m, model.Id.Access, model.UserSupplied, strategy) })
	return p
}

// GeneratedBy selects the identifier generator.
func (p *IdPart) GeneratedBy() *GeneratorPart {
	if p.generator == nil {
		p.generator = &GeneratorPart{id: p}
	}
	return p.generator
}

// GeneratorPart selects an identifier generator.
type GeneratorPart struct {
	id     *IdPart
	class  string
	params []model.Param
}

func (g *GeneratorPart) set(class string, params ...model.Param) *IdPart {
	g.class = class
	g.params = params
	return g.id
}

// Identity uses a database identity column.
func (g *GeneratorPart) Identity() *IdPart { return g.set("identity") }

// Native picks identity, sequence or hilo depending on the database.
func (g *GeneratorPart) Native() *IdPart { return g.set("native") }

// Assigned leaves identifiers to the application.
func (g *GeneratorPart) Assigned() *IdPart { return g.set("assigned") }

// Increment uses an in-process counter.
func (g *GeneratorPart) Increment() *IdPart { return g.set("increment") }

// Sequence uses a named database sequence.
func (g *GeneratorPart) Sequence(name string) *IdPart {
	return g.set("sequence", model.Param{Name: "sequence", Value: name})
}

// HiLo uses the hi/lo algorithm backed by table.column.
func (g *GeneratorPart) HiLo(table, column string, maxLo int) *IdPart {
	return g.set("hilo",
		model.Param{Name: "table", Value: table},
		model.Param{Name: "column", Value: column},
		model.Param{Name: "max_lo", Value: strconv.Itoa(maxLo)},
	)
}

// Guid generates random GUIDs.
func (g *GeneratorPart) Guid() *IdPart { return g.set("guid") }

// GuidComb generates sequential GUIDs.
func (g *GeneratorPart) GuidComb() *IdPart { return g.set("guid.comb") }

// UuidHex generates hex-encoded UUID strings.
func (g *GeneratorPart) UuidHex(format string) *IdPart {
	return g.set("uuid.hex", model.Param{Name: "format", Value: format})
}

// Foreign shares the identifier of the entity referenced by property.
func (g *GeneratorPart) Foreign(property string) *IdPart {
	return g.set("foreign", model.Param{Name: "property", Value: property})
}

// Custom uses a generator class with ordered parameters.
func (g *GeneratorPart) Custom(class string, params ...model.Param) *IdPart {
	return g.set(class, params...)
}

// CompositeIdPart configures a multi-part identifier.
type CompositeIdPart struct {
	part[*model.CompositeIdMapping]
	owner *types.Type
	errs  *errorList
}

// KeyProperty adds a scalar key part.
func (p *CompositeIdPart) KeyProperty(name string, columns ...string) *CompositeIdPart {
	mem := p.errs.member(p.owner, name)
	p.add(func(m *model.CompositeIdMapping) {
		if mem == nil {
			return
		}
		k := model.NewKeyProperty(mem)
		userColumn(&k.Columns, columns...)
		m.AddKeyProperty(k)
	})
	return p
}

// KeyReference adds a reference key part.
func (p *CompositeIdPart) KeyReference(name string, columns ...string) *CompositeIdPart {
	mem := p.errs.member(p.owner, name)
	p.add(func(m *model.CompositeIdMapping) {
		if mem == nil {
			return
		}
		k := model.NewKeyManyToOne(mem)
		userColumn(&k.Columns, columns...)
		m.AddKeyManyToOne(k)
	})
	return p
}

// Mapped marks the key as mapped by the entity's own members.
func (p *CompositeIdPart) Mapped() *CompositeIdPart {
	p.add(func(m *model.CompositeIdMapping) { model.Set(m, model.CompositeId.Mapped, model.UserSupplied, true) })
	return p
}

// UnsavedValue sets the key value of a transient instance.
func (p *CompositeIdPart) UnsavedValue(value string) *CompositeIdPart {
	p.add(func(m *model.CompositeIdMapping) { model.Set(m, model.CompositeId.UnsavedValue, model.UserSupplied, value) })
	return p
}

// Access sets the access strategy.
func (p *CompositeIdPart) Access(strategy string) *CompositeIdPart {
	p.add(func(m *model.CompositeIdMapping) { model.Set(m, model.CompositeId.Access, model.UserSupplied, strategy) })
	return p
}
