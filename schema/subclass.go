package schema

import (
	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// SubclassMap declares one level of an inheritance hierarchy. The parent is
// found structurally unless Extends names it.
type SubclassMap struct {
	Members
	problems errorList
	sub      part[*model.SubclassMapping]
	extends  *types.Type
}

// NewSubclassMap returns a subclass map for t.
func NewSubclassMap(t *types.Type) *SubclassMap {
	s := &SubclassMap{}
	s.Members = newMembers(t, &s.problems)
	return s
}

// Type returns the mapped type.
func (s *SubclassMap) Type() *types.Type { return s.Members.typ }

// Mapping builds a fresh subclass mapping.
func (s *SubclassMap) Mapping() *model.SubclassMapping {
	m := model.NewSubclass(s.Type())
	m.Extends = s.extends
	s.Members.applyTo(&m.Members)
	s.sub.apply(m)
	return m
}

// Action implements fluentmap.Provider.
func (s *SubclassMap) Action() fluentmap.Action {
	return &fluentmap.ManualAction{Mapping: s.Mapping()}
}

// Err returns the errors recorded while declaring the mapping.
func (s *SubclassMap) Err() error { return s.problems.err() }

func (s *SubclassMap) set(f func(*model.SubclassMapping)) *SubclassMap {
	s.sub.add(f)
	return s
}

// Not negates the next boolean setter.
func (s *SubclassMap) Not() *SubclassMap { s.sub.not = !s.sub.not; return s }

// Extends names the parent type, overriding structural pairing.
func (s *SubclassMap) Extends(t *types.Type) *SubclassMap {
	s.extends = t
	return s
}

// DiscriminatorValue sets the discriminator value of the subclass.
func (s *SubclassMap) DiscriminatorValue(v string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.DiscriminatorValue, model.UserSupplied, v) })
}

// KeyColumn sets the joined-subclass key column.
func (s *SubclassMap) KeyColumn(name string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { userColumn(&m.Key.Columns, name) })
}

// Table sets the joined or union subclass table.
func (s *SubclassMap) Table(name string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.Table, model.UserSupplied, name) })
}

// Schema sets the subclass table schema.
func (s *SubclassMap) Schema(name string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.Schema, model.UserSupplied, name) })
}

// Abstract marks the subclass as never instantiated.
func (s *SubclassMap) Abstract() *SubclassMap {
	v := s.sub.flag()
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.Abstract, model.UserSupplied, v) })
}

// LazyLoad loads instances through proxies.
func (s *SubclassMap) LazyLoad() *SubclassMap {
	v := s.sub.flag()
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.Lazy, model.UserSupplied, v) })
}

// DynamicUpdate updates only changed columns.
func (s *SubclassMap) DynamicUpdate() *SubclassMap {
	v := s.sub.flag()
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.DynamicUpdate, model.UserSupplied, v) })
}

// DynamicInsert inserts only non-null columns.
func (s *SubclassMap) DynamicInsert() *SubclassMap {
	v := s.sub.flag()
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.DynamicInsert, model.UserSupplied, v) })
}

// Check adds a table check constraint.
func (s *SubclassMap) Check(expr string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.Check, model.UserSupplied, expr) })
}

// BatchSize loads instances in batches.
func (s *SubclassMap) BatchSize(n int) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.BatchSize, model.UserSupplied, n) })
}

// EntityName sets the entity name.
func (s *SubclassMap) EntityName(name string) *SubclassMap {
	return s.set(func(m *model.SubclassMapping) { model.Set(m, model.Subclass.EntityName, model.UserSupplied, name) })
}

// Join maps members to a secondary table. Joins are kept for
// table-per-hierarchy subclasses only.
func (s *SubclassMap) Join(table string, configure func(*JoinPart)) *SubclassMap {
	j := &JoinPart{Members: newMembers(s.Type(), &s.problems), table: table}
	configure(j)
	return s.set(func(m *model.SubclassMapping) { m.AddJoin(j.build(m.Type)) })
}
