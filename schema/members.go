package schema

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Members declares the mapped members shared by class maps, subclass maps,
// components and joins.
type Members struct {
	typ   *types.Type
	errs  *errorList
	steps []func(*model.Members)
}

func newMembers(t *types.Type, errs *errorList) Members {
	return Members{typ: t, errs: errs}
}

func (m *Members) applyTo(ms *model.Members) {
	for _, f := range m.steps {
		f(ms)
	}
}

// Map maps a scalar member.
func (m *Members) Map(name string) *PropertyPart {
	p := &PropertyPart{}
	mem, owner := m.errs.member(m.typ, name), m.typ
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		pm := model.NewProperty(owner, mem)
		p.build(pm)
		ms.AddProperty(pm)
	})
	return p
}

// References maps a many-to-one reference.
func (m *Members) References(name string) *ManyToOnePart {
	p := &ManyToOnePart{}
	mem, owner := m.errs.member(m.typ, name), m.typ
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		r := model.NewManyToOne(owner, mem)
		p.build(r)
		ms.AddReference(r)
	})
	return p
}

// HasOne maps a one-to-one association.
func (m *Members) HasOne(name string) *OneToOnePart {
	p := &OneToOnePart{}
	mem, owner := m.errs.member(m.typ, name), m.typ
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		o := model.NewOneToOne(owner, mem)
		p.apply(o)
		ms.AddOneToOne(o)
	})
	return p
}

// HasMany maps a one-to-many collection.
func (m *Members) HasMany(name string) *CollectionPart {
	return m.collection(name, false)
}

// HasManyToMany maps a many-to-many collection.
func (m *Members) HasManyToMany(name string) *CollectionPart {
	return m.collection(name, true)
}

func (m *Members) collection(name string, manyToMany bool) *CollectionPart {
	mem, owner := m.errs.member(m.typ, name), m.typ
	var child *types.Type
	if mem != nil && mem.Type != nil {
		child = mem.Type.Elem
	}
	p := newCollectionPart(child, manyToMany, m.errs)
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		ms.AddCollection(p.build(owner, mem))
	})
	return p
}

// Component maps an inline component.
func (m *Members) Component(name string, configure func(*ComponentPart)) *ComponentPart {
	mem, owner := m.errs.member(m.typ, name), m.typ
	var ct *types.Type
	if mem != nil {
		ct = mem.Type
	}
	p := &ComponentPart{Members: newMembers(ct, m.errs)}
	if configure != nil {
		configure(p)
	}
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		c := model.NewComponent(owner, mem)
		p.build(c)
		ms.AddComponent(c)
	})
	return p
}

// DynamicComponent maps a map-typed member as a dynamic component.
func (m *Members) DynamicComponent(name string, configure func(*ComponentPart)) *ComponentPart {
	p := m.Component(name, configure)
	p.comp.add(func(c *model.ComponentMapping) { c.Kind = model.DynamicComponent })
	return p
}

// ComponentRef maps a member whose component is declared by a ComponentMap.
func (m *Members) ComponentRef(name string) *ReferenceComponentPart {
	p := &ReferenceComponentPart{}
	mem, owner := m.errs.member(m.typ, name), m.typ
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		r := model.NewReferenceComponent(owner, mem)
		p.apply(r)
		ms.AddComponent(r)
	})
	return p
}

// ReferencesAny maps a polymorphic reference.
func (m *Members) ReferencesAny(name string) *AnyPart {
	p := &AnyPart{}
	mem, owner := m.errs.member(m.typ, name), m.typ
	m.steps = append(m.steps, func(ms *model.Members) {
		if mem == nil {
			return
		}
		a := model.NewAny(owner, mem)
		p.apply(a)
		ms.AddAny(a)
	})
	return p
}

// ApplyFilter applies a filter definition.
func (m *Members) ApplyFilter(name, condition string) {
	m.steps = append(m.steps, func(ms *model.Members) { ms.AddFilter(model.NewFilter(name, condition)) })
}
