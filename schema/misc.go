package schema

import (
	"errors"
	"fmt"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// errorList collects builder misuse reported by Err.
type errorList struct {
	errs []error
}

func (l *errorList) add(err error) { l.errs = append(l.errs, err) }

// member resolves name on owner, recording an error when it is missing.
func (l *errorList) member(owner *types.Type, name string) *types.Member {
	if owner == nil {
		l.add(fluentmap.NewConfigError(name, nil, "member of an unknown type"))
		return nil
	}
	m, ok := owner.Member(name)
	if !ok {
		l.add(fluentmap.NewConfigError(owner.ShortName()+"."+name, nil, "no such member"))
		return nil
	}
	return m
}

func (l *errorList) err() error { return errors.Join(l.errs...) }

// CachePart configures second-level caching and returns to its owner.
type CachePart[P any] struct {
	owner P
	attrs []func(*model.CacheMapping)
}

func (c *CachePart[P]) build() *model.CacheMapping {
	m := &model.CacheMapping{}
	for _, f := range c.attrs {
		f(m)
	}
	return m
}

func (c *CachePart[P]) usage(v string) P {
	c.attrs = append(c.attrs, func(m *model.CacheMapping) { model.Set(m, model.Cache.Usage, model.UserSupplied, v) })
	return c.owner
}

// ReadWrite caches with read-write semantics.
func (c *CachePart[P]) ReadWrite() P { return c.usage("read-write") }

// ReadOnly caches immutable data.
func (c *CachePart[P]) ReadOnly() P { return c.usage("read-only") }

// NonStrictReadWrite caches without strict isolation.
func (c *CachePart[P]) NonStrictReadWrite() P { return c.usage("nonstrict-read-write") }

// Transactional caches with a transactional provider.
func (c *CachePart[P]) Transactional() P { return c.usage("transactional") }

// Region names the cache region. Call before the usage method.
func (c *CachePart[P]) Region(name string) *CachePart[P] {
	c.attrs = append(c.attrs, func(m *model.CacheMapping) { model.Set(m, model.Cache.Region, model.UserSupplied, name) })
	return c
}

// IncludeNonLazy caches only non-lazy properties.
func (c *CachePart[P]) IncludeNonLazy() *CachePart[P] {
	c.attrs = append(c.attrs, func(m *model.CacheMapping) { model.Set(m, model.Cache.Include, model.UserSupplied, "non-lazy") })
	return c
}

// JoinPart maps members of an entity to a secondary table.
type JoinPart struct {
	Members
	table string
	join  part[*model.JoinMapping]
}

func (j *JoinPart) build(entity *types.Type) *model.JoinMapping {
	m := model.NewJoin(entity, j.table)
	j.Members.applyTo(&m.Members)
	j.join.apply(m)
	return m
}

// KeyColumn sets the join key column.
func (j *JoinPart) KeyColumn(name string) *JoinPart {
	j.join.add(func(m *model.JoinMapping) { userColumn(&m.Key.Columns, name) })
	return j
}

// Schema sets the joined table schema.
func (j *JoinPart) Schema(name string) *JoinPart {
	j.join.add(func(m *model.JoinMapping) { model.Set(m, model.Join.Schema, model.UserSupplied, name) })
	return j
}

// Optional uses an outer join and skips rows with all-null members.
func (j *JoinPart) Optional() *JoinPart {
	j.join.add(func(m *model.JoinMapping) { model.Set(m, model.Join.Optional, model.UserSupplied, true) })
	return j
}

// Inverse leaves the join table to the other side.
func (j *JoinPart) Inverse() *JoinPart {
	j.join.add(func(m *model.JoinMapping) { model.Set(m, model.Join.Inverse, model.UserSupplied, true) })
	return j
}

// Fetch sets the fetch mode.
func (j *JoinPart) Fetch(mode string) *JoinPart {
	j.join.add(func(m *model.JoinMapping) { model.Set(m, model.Join.Fetch, model.UserSupplied, mode) })
	return j
}

// NaturalIdPart declares the members forming a natural key.
type NaturalIdPart struct {
	owner   *types.Type
	errs    *errorList
	mutable bool
	steps   []func(*model.NaturalIdMapping)
}

func (n *NaturalIdPart) build() *model.NaturalIdMapping {
	m := &model.NaturalIdMapping{}
	if n.mutable {
		model.Set(m, model.NaturalId.Mutable, model.UserSupplied, true)
	}
	for _, f := range n.steps {
		f(m)
	}
	return m
}

// Property adds a property to the natural key.
func (n *NaturalIdPart) Property(name string, column ...string) *NaturalIdPart {
	mem, owner := n.errs.member(n.owner, name), n.owner
	n.steps = append(n.steps, func(m *model.NaturalIdMapping) {
		if mem == nil {
			return
		}
		p := model.NewProperty(owner, mem)
		userColumn(&p.Columns, column...)
		m.Properties = append(m.Properties, p)
	})
	return n
}

// Reference adds a reference to the natural key.
func (n *NaturalIdPart) Reference(name string, column ...string) *NaturalIdPart {
	mem, owner := n.errs.member(n.owner, name), n.owner
	n.steps = append(n.steps, func(m *model.NaturalIdMapping) {
		if mem == nil {
			return
		}
		r := model.NewManyToOne(owner, mem)
		userColumn(&r.Columns, column...)
		m.References = append(m.References, r)
	})
	return n
}

// Mutable allows natural key values to change.
func (n *NaturalIdPart) Mutable() *NaturalIdPart {
	n.mutable = true
	return n
}

// FilterDefinition declares a named filter usable by classes and
// collections.
type FilterDefinition struct {
	name      string
	condition string
	params    []model.Param
}

// NewFilterDefinition returns an empty filter definition.
func NewFilterDefinition() *FilterDefinition { return &FilterDefinition{} }

// WithName sets the filter name.
func (f *FilterDefinition) WithName(name string) *FilterDefinition {
	f.name = name
	return f
}

// WithCondition sets the default condition.
func (f *FilterDefinition) WithCondition(cond string) *FilterDefinition {
	f.condition = cond
	return f
}

// AddParameter declares a parameter and its engine type.
func (f *FilterDefinition) AddParameter(name string, t *types.Type) *FilterDefinition {
	f.params = append(f.params, model.Param{Name: name, Value: model.EngineTypeName(t)})
	return f
}

// Mapping builds the filter definition.
func (f *FilterDefinition) Mapping() *model.FilterDefinitionMapping {
	m := &model.FilterDefinitionMapping{}
	model.Set(m, model.FilterDefinition.Name, model.UserSupplied, f.name)
	if f.condition != "" {
		model.Set(m, model.FilterDefinition.Condition, model.UserSupplied, f.condition)
	}
	for _, p := range f.params {
		m.AddParameter(p.Name, p.Value)
	}
	return m
}

// Action implements fluentmap.Provider.
func (f *FilterDefinition) Action() fluentmap.Action {
	return &fluentmap.ManualAction{Mapping: f.Mapping()}
}

// Err reports a definition without a name.
func (f *FilterDefinition) Err() error {
	if f.name == "" {
		return fluentmap.NewConfigError("FilterDefinition", nil, "filter definition has no name")
	}
	return nil
}

// ImportPart imports a type under another name.
type ImportPart struct {
	typ    *types.Type
	rename string
}

// Import returns an import of t.
func Import(t *types.Type) *ImportPart { return &ImportPart{typ: t} }

// As sets the imported name.
func (i *ImportPart) As(name string) *ImportPart {
	i.rename = name
	return i
}

// Mapping builds the import.
func (i *ImportPart) Mapping() *model.ImportMapping {
	m := model.NewImport(i.typ)
	if i.rename != "" {
		model.Set(m, model.Import.Rename, model.UserSupplied, i.rename)
	}
	return m
}

// Action implements fluentmap.Provider.
func (i *ImportPart) Action() fluentmap.Action {
	return &fluentmap.ManualAction{Mapping: i.Mapping()}
}

func typeName(t *types.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func identityConflict(owner *types.Type, existing string) error {
	return fluentmap.NewConfigError(typeName(owner)+".Id", existing, fmt.Sprintf("identity already declared as %s", existing))
}
