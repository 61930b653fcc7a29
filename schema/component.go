package schema

import (
	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// ComponentPart configures an inline component.
type ComponentPart struct {
	Members
	comp part[*model.ComponentMapping]
}

func (p *ComponentPart) build(c *model.ComponentMapping) {
	p.Members.applyTo(&c.Members)
	p.comp.apply(c)
}

// Not negates the next boolean setter.
func (p *ComponentPart) Not() *ComponentPart { p.comp.not = !p.comp.not; return p }

// ColumnPrefix prefixes every column of the component. The token
// "{property}" is replaced by the member name.
func (p *ComponentPart) ColumnPrefix(prefix string) *ComponentPart {
	p.comp.add(func(c *model.ComponentMapping) { model.Set(c, model.Component.ColumnPrefix, model.UserSupplied, prefix) })
	return p
}

// ParentReference maps the back reference to the owner.
func (p *ComponentPart) ParentReference(name string) *ComponentPart {
	p.comp.add(func(c *model.ComponentMapping) {
		c.Parent = &model.ParentMapping{}
		model.Set(c.Parent, model.Parent.Name, model.UserSupplied, name)
	})
	return p
}

// ReadOnly excludes the component from inserts and updates.
func (p *ComponentPart) ReadOnly() *ComponentPart {
	v := !p.comp.flag()
	p.comp.add(func(c *model.ComponentMapping) {
		model.Set(c, model.Component.Insert, model.UserSupplied, v)
		model.Set(c, model.Component.Update, model.UserSupplied, v)
	})
	return p
}

// Unique adds a unique constraint across the component columns.
func (p *ComponentPart) Unique() *ComponentPart {
	v := p.comp.flag()
	p.comp.add(func(c *model.ComponentMapping) { model.Set(c, model.Component.Unique, model.UserSupplied, v) })
	return p
}

// LazyLoad loads the component on first access.
func (p *ComponentPart) LazyLoad() *ComponentPart {
	v := p.comp.flag()
	p.comp.add(func(c *model.ComponentMapping) { model.Set(c, model.Component.Lazy, model.UserSupplied, v) })
	return p
}

// Access sets the access strategy.
func (p *ComponentPart) Access(strategy string) *ComponentPart {
	p.comp.add(func(c *model.ComponentMapping) { model.Set(c, model.Component.Access, model.UserSupplied, strategy) })
	return p
}

// ReferenceComponentPart configures a usage of an external component.
type ReferenceComponentPart struct {
	part[*model.ReferenceComponentMapping]
}

// Not negates the next boolean setter.
func (p *ReferenceComponentPart) Not() *ReferenceComponentPart { p.not = !p.not; return p }

// ColumnPrefix prefixes every column of the resolved component. The token
// "{property}" is replaced by the member name.
func (p *ReferenceComponentPart) ColumnPrefix(prefix string) *ReferenceComponentPart {
	p.add(func(r *model.ReferenceComponentMapping) {
		model.Set(r, model.ReferenceComponent.ColumnPrefix, model.UserSupplied, prefix)
	})
	return p
}

// ReadOnly excludes the component from inserts and updates.
func (p *ReferenceComponentPart) ReadOnly() *ReferenceComponentPart {
	v := !p.flag()
	p.add(func(r *model.ReferenceComponentMapping) {
		model.Set(r, model.ReferenceComponent.Insert, model.UserSupplied, v)
		model.Set(r, model.ReferenceComponent.Update, model.UserSupplied, v)
	})
	return p
}

// Unique adds a unique constraint across the component columns.
func (p *ReferenceComponentPart) Unique() *ReferenceComponentPart {
	v := p.flag()
	p.add(func(r *model.ReferenceComponentMapping) { model.Set(r, model.ReferenceComponent.Unique, model.UserSupplied, v) })
	return p
}

// LazyLoad loads the component on first access.
func (p *ReferenceComponentPart) LazyLoad() *ReferenceComponentPart {
	v := p.flag()
	p.add(func(r *model.ReferenceComponentMapping) { model.Set(r, model.ReferenceComponent.Lazy, model.UserSupplied, v) })
	return p
}

// Access sets the access strategy.
func (p *ReferenceComponentPart) Access(strategy string) *ReferenceComponentPart {
	p.add(func(r *model.ReferenceComponentMapping) {
		model.Set(r, model.ReferenceComponent.Access, model.UserSupplied, strategy)
	})
	return p
}

// ComponentMap declares a component once so several entities can reference
// it with ComponentRef.
type ComponentMap struct {
	Members
	problems errorList
	parent   string
}

// NewComponentMap returns an external component declaration for t.
func NewComponentMap(t *types.Type) *ComponentMap {
	c := &ComponentMap{}
	c.Members = newMembers(t, &c.problems)
	return c
}

// ParentReference maps the back reference to the owner.
func (c *ComponentMap) ParentReference(name string) *ComponentMap {
	c.parent = name
	return c
}

// Mapping builds the external component.
func (c *ComponentMap) Mapping() *model.ExternalComponentMapping {
	m := model.NewExternalComponent(c.Members.typ)
	c.Members.applyTo(&m.Members)
	if c.parent != "" {
		m.Parent = &model.ParentMapping{}
		model.Set(m.Parent, model.Parent.Name, model.UserSupplied, c.parent)
	}
	return m
}

// Action implements fluentmap.Provider.
func (c *ComponentMap) Action() fluentmap.Action {
	return &fluentmap.ManualAction{Mapping: c.Mapping()}
}

// Err returns the errors recorded while declaring members.
func (c *ComponentMap) Err() error { return c.problems.err() }
