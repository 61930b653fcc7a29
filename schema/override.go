package schema

import (
	"slices"
	"strings"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// OverrideMap alters the automapped class of one type. It accepts the same
// declarations as ClassMap; members it maps are skipped by the automapper.
type OverrideMap struct {
	*ClassMap
	ignored []func(*types.Member) bool
}

// Override returns an automapping override for t.
func Override(t *types.Type, configure func(*OverrideMap)) *OverrideMap {
	o := &OverrideMap{ClassMap: NewClassMap(t)}
	if configure != nil {
		configure(o)
	}
	return o
}

// IgnoreProperty keeps the named members out of automapping.
func (o *OverrideMap) IgnoreProperty(names ...string) *OverrideMap {
	o.ignored = append(o.ignored, func(m *types.Member) bool { return slices.Contains(names, m.Name) })
	return o
}

// IgnoreProperties keeps members matching fn out of automapping.
func (o *OverrideMap) IgnoreProperties(fn func(*types.Member) bool) *OverrideMap {
	o.ignored = append(o.ignored, fn)
	return o
}

// Action implements fluentmap.Provider.
func (o *OverrideMap) Action() fluentmap.Action {
	return &fluentmap.PartialAutomapAction{
		Type: o.Type(),
		Setup: fluentmap.AutomappingEntitySetup{
			Exclusions:          slices.Clone(o.ignored),
			Alterations:         []func(*model.ClassMapping){o.ClassMap.applyTo},
			SubclassAlterations: []func(*model.SubclassMapping) error{o.applyToSubclass},
		},
	}
}

// subclassSettings are the class settings a subclass carries as well. The
// Class and Subclass selectors share their attribute names.
var subclassSettings = []string{
	model.Subclass.Table.Name(),
	model.Subclass.Schema.Name(),
	model.Subclass.Catalog.Name(),
	model.Subclass.Lazy.Name(),
	model.Subclass.Proxy.Name(),
	model.Subclass.DynamicUpdate.Name(),
	model.Subclass.DynamicInsert.Name(),
	model.Subclass.SelectBeforeUpdate.Name(),
	model.Subclass.Abstract.Name(),
	model.Subclass.DiscriminatorValue.Name(),
	model.Subclass.Check.Name(),
	model.Subclass.Subselect.Name(),
	model.Subclass.Persister.Name(),
	model.Subclass.BatchSize.Name(),
	model.Subclass.EntityName.Name(),
}

// applyToSubclass replays the declaration against a type the automapper
// maps as a subclass. Declarations only a root class can hold are rejected.
func (o *OverrideMap) applyToSubclass(s *model.SubclassMapping) error {
	scratch := model.NewClass(s.Type)
	o.ClassMap.class.apply(scratch)
	var rootOnly []string
	if o.idKind != "" {
		rootOnly = append(rootOnly, "identifier")
	}
	if o.version != nil {
		rootOnly = append(rootOnly, "version")
	}
	if scratch.Discriminator != nil {
		rootOnly = append(rootOnly, "discriminator")
	}
	if scratch.Cache != nil {
		rootOnly = append(rootOnly, "cache")
	}
	if scratch.NaturalId != nil {
		rootOnly = append(rootOnly, "natural-id")
	}
	for _, name := range []string{model.Class.Polymorphism.Name(), model.Class.Where.Name(), model.Class.OptimisticLock.Name(), model.Class.Mutable.Name(), model.Class.SchemaAction.Name(), model.Class.UnionSubclass.Name()} {
		if scratch.Attrs().HasUserValue(name) {
			rootOnly = append(rootOnly, name)
		}
	}
	if len(rootOnly) > 0 {
		return fluentmap.NewValidationError(s.Name(), "", "automapping override of a subclass declares root class settings: "+strings.Join(rootOnly, ", "))
	}
	for _, name := range subclassSettings {
		if scratch.Attrs().HasUserValue(name) {
			s.Attrs().Set(name, model.UserSupplied, scratch.Attrs().Get(name))
		}
	}
	for _, j := range scratch.Joins {
		s.AddJoin(j)
	}
	o.ClassMap.Members.applyTo(&s.Members)
	return nil
}

// AutoPersistenceModel selects the types of a source for automapping.
//
//	schema.AutoMap(fluentmap.NewCollectionSource(customer, order)).
//		Where(func(t *types.Type) bool { return !t.Abstract }).
//		Override(customer, func(m *schema.OverrideMap) { m.Table("customers") })
type AutoPersistenceModel struct {
	source    fluentmap.TypeSource
	where     []func(*types.Type) bool
	overrides []*OverrideMap
}

// AutoMap returns an automapping provider over the types of src.
func AutoMap(src fluentmap.TypeSource) *AutoPersistenceModel {
	return &AutoPersistenceModel{source: src}
}

// Where restricts automapping to types accepted by fn.
func (a *AutoPersistenceModel) Where(fn func(*types.Type) bool) *AutoPersistenceModel {
	a.where = append(a.where, fn)
	return a
}

// Override adds an override for t.
func (a *AutoPersistenceModel) Override(t *types.Type, configure func(*OverrideMap)) *AutoPersistenceModel {
	a.overrides = append(a.overrides, Override(t, configure))
	return a
}

// Source returns the type source.
func (a *AutoPersistenceModel) Source() fluentmap.TypeSource { return a.source }

// Types returns the selected types in source order.
func (a *AutoPersistenceModel) Types() []*types.Type {
	var out []*types.Type
	for _, t := range a.source.Types() {
		if a.accepts(t) {
			out = append(out, t)
		}
	}
	return out
}

func (a *AutoPersistenceModel) accepts(t *types.Type) bool {
	for _, fn := range a.where {
		if !fn(t) {
			return false
		}
	}
	return true
}

// Action implements fluentmap.Provider.
func (a *AutoPersistenceModel) Action() fluentmap.Action {
	action := fluentmap.NewAutomapAction(a.Types()...)
	for _, o := range a.overrides {
		action.Compose(o.Action().(*fluentmap.PartialAutomapAction))
	}
	return action
}

// Err returns the errors recorded by overrides.
func (a *AutoPersistenceModel) Err() error {
	var l errorList
	for _, o := range a.overrides {
		if err := o.Err(); err != nil {
			l.add(err)
		}
	}
	return l.err()
}
