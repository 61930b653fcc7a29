// Package automap infers mappings from the type graph.
//
// The automapper maps one member kind per step: the identifier, the
// version, primitive properties, references to other automapped entities,
// collections of entities or values, and components selected by the
// configuration. Everything it writes lands on the Defaults layer, so
// overrides and conventions always win.
package automap

import (
	"log/slog"
	"slices"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Automapper implements fluentmap.Automapper.
type Automapper struct {
	Config Configuration
	Logger *slog.Logger
}

var _ fluentmap.Automapper = (*Automapper)(nil)

// New returns an automapper using cfg. A nil cfg selects
// DefaultConfiguration.
func New(cfg Configuration) *Automapper {
	if cfg == nil {
		cfg = DefaultConfiguration{}
	}
	return &Automapper{Config: cfg, Logger: slog.New(slog.DiscardHandler)}
}

func (a *Automapper) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// Map implements fluentmap.Automapper. A type descending from another
// mapped entity becomes a subclass fragment holding the members declared
// below that entity; any other type becomes a class.
func (a *Automapper) Map(t *types.Type, known []*types.Type, setup *fluentmap.AutomappingEntitySetup) ([]model.TopMapping, error) {
	if setup == nil {
		setup = &fluentmap.AutomappingEntitySetup{}
	}
	if !a.isEntity(t) {
		a.logger().Debug("automapping skipped type", "type", t.String())
		return nil, nil
	}
	m := &mapper{cfg: a.Config, known: known, setup: setup, log: a.logger()}
	if base, own := m.parent(t); base != nil {
		s := model.NewSubclass(t)
		if err := setup.ApplySubclass(s); err != nil {
			return nil, err
		}
		m.members(&s.Members, t, own)
		if m.discriminated(t) {
			model.Set(s, model.Subclass.DiscriminatorValue, model.Defaults, t.String())
		}
		a.logger().Debug("automapped subclass", "type", t.String(), "parent", base.String())
		return []model.TopMapping{s}, nil
	}
	c := model.NewClass(t)
	setup.Apply(c)
	members := t.AllMembers()
	for _, mem := range members {
		if !m.usable(mem) || c.Has(mem.Name) {
			continue
		}
		switch {
		case c.Id == nil && a.Config.IsId(mem):
			c.Id = identity(mem)
		case c.Version == nil && a.Config.IsVersion(mem):
			c.Version = model.NewVersion(mem)
		}
	}
	if c.Discriminator == nil && a.Config.IsDiscriminated(t) && m.hasSubtypes(t) {
		c.Discriminator = model.NewDiscriminator(a.Config.DiscriminatorColumn(t), model.Defaults)
		model.Set(c, model.Class.DiscriminatorValue, model.Defaults, t.String())
	}
	m.members(&c.Members, t, slices.DeleteFunc(members, func(mem *types.Member) bool {
		return isIdentity(c.Id, mem) || (c.Version != nil && c.Version.Member == mem)
	}))
	a.logger().Debug("automapped class", "type", t.String(), "members", len(c.Properties)+len(c.References)+len(c.Collections)+len(c.Components))
	return []model.TopMapping{c}, nil
}

func (a *Automapper) isEntity(t *types.Type) bool {
	switch {
	case !a.Config.ShouldMap(t), a.Config.IsComponent(t):
		return false
	case t.Abstract && a.Config.AbstractClassIsLayerSupertype(t):
		return false
	}
	return true
}

// mapper carries the state of one Map call.
type mapper struct {
	cfg   Configuration
	known []*types.Type
	setup *fluentmap.AutomappingEntitySetup
	log   *slog.Logger
}

func (m *mapper) entity(t *types.Type) bool {
	if !slices.ContainsFunc(m.known, t.Is) || !m.cfg.ShouldMap(t) || m.cfg.IsComponent(t) {
		return false
	}
	return !t.Abstract || !m.cfg.AbstractClassIsLayerSupertype(t)
}

// parent returns the nearest mapped ancestor of t and the members declared
// between it and t. Layer supertypes are skipped and contribute their
// members. A concrete base type stops the search.
func (m *mapper) parent(t *types.Type) (*types.Type, []*types.Member) {
	own := slices.Clone(t.Members)
	for _, b := range t.Ancestors() {
		if m.entity(b) {
			if m.cfg.IsConcreteBaseType(b) {
				return nil, nil
			}
			return b, own
		}
		own = append(slices.Clone(b.Members), own...)
	}
	return nil, nil
}

func (m *mapper) root(t *types.Type) *types.Type {
	for {
		b, _ := m.parent(t)
		if b == nil {
			return t
		}
		t = b
	}
}

func (m *mapper) discriminated(t *types.Type) bool {
	return m.cfg.IsDiscriminated(m.root(t))
}

func (m *mapper) hasSubtypes(t *types.Type) bool {
	for _, k := range m.known {
		if b, _ := m.parent(k); b != nil && b.Is(t) {
			return true
		}
	}
	return false
}

func (m *mapper) usable(mem *types.Member) bool {
	return m.cfg.ShouldMapMember(mem) && !m.setup.Excludes(mem)
}

// members maps each usable member of mems not already present in ms.
func (m *mapper) members(ms *model.Members, owner *types.Type, mems []*types.Member) {
	for _, mem := range mems {
		if !m.usable(mem) || ms.Has(mem.Name) {
			continue
		}
		t := mem.Type
		switch {
		case t.Kind == types.KindPrimitive:
			ms.AddProperty(model.NewProperty(owner, mem))
		case t.Kind == types.KindSlice:
			if c := m.collection(owner, mem); c != nil {
				ms.AddCollection(c)
			}
		case m.cfg.IsComponent(t):
			ms.AddComponent(m.component(owner, mem))
		case m.entity(t):
			ms.AddReference(model.NewManyToOne(owner, mem))
		default:
			m.log.Debug("automapping skipped member", "member", mem.String(), "type", t.String())
		}
	}
}

func (m *mapper) component(owner *types.Type, mem *types.Member) *model.ComponentMapping {
	c := model.NewComponent(owner, mem)
	if prefix := m.cfg.GetComponentColumnPrefix(mem); prefix != "" {
		model.Set(c, model.Component.ColumnPrefix, model.Defaults, prefix)
	}
	m.members(&c.Members, mem.Type, mem.Type.AllMembers())
	return c
}

func (m *mapper) collection(owner *types.Type, mem *types.Member) *model.CollectionMapping {
	elem := mem.Type.Elem
	c := model.NewCollection(model.KindBag, owner, mem)
	switch {
	case elem.Kind == types.KindPrimitive:
		e := &model.ElementMapping{}
		model.Set(e, model.Element.Type, model.Defaults, model.EngineTypeName(elem))
		e.Columns.Add(model.Defaults, model.NewColumn("value", model.Defaults))
		c.Element = e
		model.Set(c, model.Collection.Table, model.Defaults, owner.ShortName()+mem.Name)
	case m.cfg.IsComponent(elem):
		ce := &model.CompositeElementMapping{Type: elem}
		model.Set(ce, model.CompositeElement.Class, model.Defaults, elem.String())
		for _, f := range elem.AllMembers() {
			if f.Type.Kind == types.KindPrimitive && m.cfg.ShouldMapMember(f) {
				ce.Properties = append(ce.Properties, model.NewProperty(elem, f))
			}
		}
		c.CompositeElement = ce
		model.Set(c, model.Collection.Table, model.Defaults, owner.ShortName()+mem.Name)
	case m.entity(elem):
		if m.manyToMany(owner, elem) {
			c.Relationship = model.NewManyToMany(elem)
		} else {
			c.Relationship = model.NewOneToMany(elem)
		}
	default:
		m.log.Debug("automapping skipped collection", "member", mem.String(), "element", elem.String())
		return nil
	}
	return c
}

// manyToMany reports whether child holds a collection of owner.
func (m *mapper) manyToMany(owner, child *types.Type) bool {
	for _, mem := range child.AllMembers() {
		if mem.Type.Kind == types.KindSlice && (mem.Type.Elem.Is(owner) || owner.IsSubtypeOf(mem.Type.Elem)) {
			return true
		}
	}
	return false
}

func identity(mem *types.Member) *model.IdMapping {
	id := model.NewId(mem)
	class := "assigned"
	if isInteger(mem.Type) {
		class = "identity"
	} else if mem.Type.Is(types.UUID) {
		class = "guid.comb"
	}
	id.Generator = model.NewGenerator(class, model.Defaults)
	return id
}

func isIdentity(id model.Identity, mem *types.Member) bool {
	i, ok := id.(*model.IdMapping)
	return ok && (i.Member == mem || i.Name() == mem.Name)
}
