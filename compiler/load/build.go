package load

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/conventions"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"
	"github.com/syssam/fluentmap/types"
)

// Loaded is a project resolved against its own type graph. It is both a
// provider source and a convention source for the compiler.
type Loaded struct {
	Project  *Project
	Registry *types.Registry

	types       *resolver
	providers   []fluentmap.Provider
	conventions []any
}

var (
	_ fluentmap.ProviderSource = (*Loaded)(nil)
	_ conventions.Source       = (*Loaded)(nil)
)

// Build resolves the project. Every declaration error is reported, joined
// into one error.
func (p *Project) Build() (*Loaded, error) {
	r, reg, err := p.declare()
	if err != nil {
		return nil, err
	}
	l := &Loaded{Project: p, Registry: reg, types: r}
	b := &builder{resolver: r}
	for _, c := range p.Classes {
		if cm := b.class(c); cm != nil {
			l.providers = append(l.providers, cm)
		}
	}
	for _, s := range p.Subclasses {
		if sm := b.subclass(s); sm != nil {
			l.providers = append(l.providers, sm)
		}
	}
	for _, c := range p.Components {
		if cm := b.component(c); cm != nil {
			l.providers = append(l.providers, cm)
		}
	}
	for _, f := range p.Filters {
		if fd := b.filter(f); fd != nil {
			l.providers = append(l.providers, fd)
		}
	}
	for _, i := range p.Imports {
		t, err := r.named(i.Type)
		if err != nil {
			b.errorf("import %s: %w", i.Type, err)
			continue
		}
		imp := schema.Import(t)
		if i.As != "" {
			imp.As(i.As)
		}
		l.providers = append(l.providers, imp)
	}
	if p.Automap != nil {
		if am := b.automap(p.Automap); am != nil {
			l.providers = append(l.providers, am)
		}
	}
	for _, name := range p.Builtins {
		c, err := builtin(name)
		if err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		l.conventions = append(l.conventions, c)
	}
	for i, d := range p.Conventions {
		c, err := conventions.NewDeclarative(d)
		if err != nil {
			b.errorf("convention %d: %w", i, err)
			continue
		}
		l.conventions = append(l.conventions, c)
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	return l, nil
}

// Providers implements fluentmap.ProviderSource.
func (l *Loaded) Providers() []fluentmap.Provider { return l.providers }

// Conventions implements conventions.Source.
func (l *Loaded) Conventions() []any { return l.conventions }

// Identifier implements fluentmap.ProviderSource and conventions.Source.
func (l *Loaded) Identifier() string {
	if l.Project.Path == "" {
		return "Project"
	}
	return "Project[" + filepath.Base(l.Project.Path) + "]"
}

// Type returns a declared type by short or qualified name.
func (l *Loaded) Type(name string) (*types.Type, bool) {
	t, err := l.types.named(name)
	return t, err == nil
}

// Resolve resolves a type expression such as "[]Order" or "map[string]int"
// against the project.
func (l *Loaded) Resolve(expr string) (*types.Type, error) {
	return l.types.expr(expr)
}

// Options returns the compiler options that compile the project.
func (l *Loaded) Options() []compiler.Option {
	return []compiler.Option{
		compiler.WithSources(l),
		compiler.WithConventionSources(l),
		compiler.WithMergeMappings(l.Project.Output.Merge),
	}
}

type builder struct {
	*resolver
	errs []error
}

func (b *builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// check records the errors collected by a schema builder.
func (b *builder) check(what string, p interface{ Err() error }) bool {
	if err := p.Err(); err != nil {
		b.errorf("%s: %w", what, err)
		return false
	}
	return true
}

func (b *builder) class(s *ClassSpec) *schema.ClassMap {
	t, err := b.named(s.Type)
	if err != nil {
		b.errorf("class %s: %w", s.Type, err)
		return nil
	}
	cm := schema.NewClassMap(t)
	b.applyClass(cm, s)
	if !b.check("class "+s.Type, cm) {
		return nil
	}
	return cm
}

func (b *builder) applyClass(cm *schema.ClassMap, s *ClassSpec) {
	what := "class " + s.Type
	if s.Table != "" {
		cm.Table(s.Table)
	}
	if s.Schema != "" {
		cm.Schema(s.Schema)
	}
	if s.Lazy != nil {
		if !*s.Lazy {
			cm.Not()
		}
		cm.LazyLoad()
	}
	if s.ReadOnly {
		cm.ReadOnly()
	}
	if s.DynamicUpdate {
		cm.DynamicUpdate()
	}
	if s.DynamicInsert {
		cm.DynamicInsert()
	}
	if s.Abstract {
		cm.Abstract()
	}
	if s.Where != "" {
		cm.Where(s.Where)
	}
	if s.BatchSize > 0 {
		cm.BatchSize(s.BatchSize)
	}
	if s.Polymorphism != "" {
		cm.Polymorphism(s.Polymorphism)
	}
	if s.OptimisticLock != "" {
		cm.OptimisticLock(s.OptimisticLock)
	}
	if s.Check != "" {
		cm.Check(s.Check)
	}
	if s.DiscriminatorValue != "" {
		cm.DiscriminatorValue(s.DiscriminatorValue)
	}
	if s.UnionSubclasses {
		cm.UseUnionSubclassForInheritanceMapping()
	}
	if s.Cache != nil {
		if err := cache(cm.Cache(), s.Cache); err != nil {
			b.errorf("%s: %w", what, err)
		}
	}
	if s.Id != nil && s.CompositeId != nil {
		b.errorf("%s: id and composite_id are exclusive", what)
	}
	if s.Id != nil {
		b.id(what, cm.Id(s.Id.Name), s.Id)
	}
	if s.CompositeId != nil {
		cid := cm.CompositeId()
		for _, k := range s.CompositeId.Properties {
			cid.KeyProperty(k.Name, k.Columns...)
		}
		for _, k := range s.CompositeId.References {
			cid.KeyReference(k.Name, k.Columns...)
		}
		if s.CompositeId.Mapped {
			cid.Mapped()
		}
	}
	if v := s.Version; v != nil {
		vp := cm.Version(v.Name)
		if v.Column != "" {
			vp.Column(v.Column)
		}
		if v.UnsavedValue != "" {
			vp.UnsavedValue(v.UnsavedValue)
		}
		if v.Generated != "" {
			vp.Generated(v.Generated)
		}
	}
	if d := s.Discriminator; d != nil {
		dp := cm.DiscriminateSubclassesOnColumn(d.Column)
		if d.Type != "" {
			dp.CustomType(d.Type)
		}
		if d.Length > 0 {
			dp.Length(d.Length)
		}
		if d.Formula != "" {
			dp.Formula(d.Formula)
		}
		if d.Nullable {
			dp.Nullable()
		}
		if d.Force {
			dp.AlwaysSelectWithValue()
		}
	}
	if n := s.NaturalId; n != nil {
		np := cm.NaturalId()
		for _, k := range n.Properties {
			np.Property(k.Name, k.Columns...)
		}
		for _, k := range n.References {
			np.Reference(k.Name, k.Columns...)
		}
		if n.Mutable {
			np.Mutable()
		}
	}
	for _, j := range s.Joins {
		cm.Join(j.Table, func(jp *schema.JoinPart) { b.join(what, jp, j) })
	}
	b.members(what, &cm.Members, &s.Members)
}

func (b *builder) id(what string, p *schema.IdPart, s *IdSpec) {
	if s.Column != "" {
		p.Column(s.Column)
	}
	if s.Length > 0 {
		p.Length(s.Length)
	}
	if s.UnsavedValue != "" {
		p.UnsavedValue(s.UnsavedValue)
	}
	if s.Type != "" {
		p.CustomType(s.Type)
	}
	if s.Generator == "" {
		return
	}
	g := p.GeneratedBy()
	switch s.Generator {
	case "identity":
		g.Identity()
	case "native":
		g.Native()
	case "assigned":
		g.Assigned()
	case "increment":
		g.Increment()
	case "guid":
		g.Guid()
	case "guid.comb":
		g.GuidComb()
	case "sequence":
		g.Sequence(s.Params["sequence"])
	case "uuid.hex":
		g.UuidHex(s.Params["format"])
	case "foreign":
		g.Foreign(s.Params["property"])
	case "hilo":
		maxLo, err := strconv.Atoi(cmp.Or(s.Params["max_lo"], "32767"))
		if err != nil {
			b.errorf("%s: id: max_lo: %w", what, err)
			return
		}
		g.HiLo(s.Params["table"], s.Params["column"], maxLo)
	default:
		params := make([]model.Param, 0, len(s.Params))
		for _, k := range slices.Sorted(maps.Keys(s.Params)) {
			params = append(params, model.Param{Name: k, Value: s.Params[k]})
		}
		g.Custom(s.Generator, params...)
	}
}

func (b *builder) subclass(s *SubclassSpec) *schema.SubclassMap {
	what := "subclass " + s.Type
	t, err := b.named(s.Type)
	if err != nil {
		b.errorf("%s: %w", what, err)
		return nil
	}
	sm := schema.NewSubclassMap(t)
	if s.Extends != "" {
		parent, err := b.named(s.Extends)
		if err != nil {
			b.errorf("%s: extends: %w", what, err)
			return nil
		}
		sm.Extends(parent)
	}
	if s.DiscriminatorValue != "" {
		sm.DiscriminatorValue(s.DiscriminatorValue)
	}
	if s.KeyColumn != "" {
		sm.KeyColumn(s.KeyColumn)
	}
	if s.Table != "" {
		sm.Table(s.Table)
	}
	if s.Schema != "" {
		sm.Schema(s.Schema)
	}
	if s.Abstract {
		sm.Abstract()
	}
	if s.Lazy != nil {
		if !*s.Lazy {
			sm.Not()
		}
		sm.LazyLoad()
	}
	if s.BatchSize > 0 {
		sm.BatchSize(s.BatchSize)
	}
	for _, j := range s.Joins {
		sm.Join(j.Table, func(jp *schema.JoinPart) { b.join(what, jp, j) })
	}
	b.members(what, &sm.Members, &s.Members)
	if !b.check(what, sm) {
		return nil
	}
	return sm
}

func (b *builder) component(s *ComponentSpec) *schema.ComponentMap {
	what := "component " + s.Type
	t, err := b.named(s.Type)
	if err != nil {
		b.errorf("%s: %w", what, err)
		return nil
	}
	cm := schema.NewComponentMap(t)
	if s.ParentReference != "" {
		cm.ParentReference(s.ParentReference)
	}
	b.members(what, &cm.Members, &s.Members)
	if !b.check(what, cm) {
		return nil
	}
	return cm
}

func (b *builder) filter(s *FilterSpec) *schema.FilterDefinition {
	fd := schema.NewFilterDefinition().WithName(s.Name)
	if s.Condition != "" {
		fd.WithCondition(s.Condition)
	}
	for _, p := range s.Parameters {
		t, err := b.expr(p.Type)
		if err != nil {
			b.errorf("filter %s: parameter %s: %w", s.Name, p.Name, err)
			return nil
		}
		fd.AddParameter(p.Name, t)
	}
	if !b.check("filter "+s.Name, fd) {
		return nil
	}
	return fd
}

func (b *builder) automap(s *AutomapSpec) *schema.AutoPersistenceModel {
	ts := make([]*types.Type, 0, len(s.Types))
	for _, name := range s.Types {
		t, err := b.named(name)
		if err != nil {
			b.errorf("automap: %w", err)
			return nil
		}
		ts = append(ts, t)
	}
	am := schema.AutoMap(fluentmap.NewCollectionSource(ts...))
	for _, o := range s.Overrides {
		t, err := b.named(o.Type)
		if err != nil {
			b.errorf("automap: override %s: %w", o.Type, err)
			continue
		}
		am.Override(t, func(om *schema.OverrideMap) {
			if len(o.Ignore) > 0 {
				om.IgnoreProperty(o.Ignore...)
			}
			b.applyClass(om.ClassMap, &o.ClassSpec)
		})
	}
	if !b.check("automap", am) {
		return nil
	}
	return am
}

func (b *builder) join(what string, jp *schema.JoinPart, s *JoinSpec) {
	if s.KeyColumn != "" {
		jp.KeyColumn(s.KeyColumn)
	}
	if s.Schema != "" {
		jp.Schema(s.Schema)
	}
	if s.Optional {
		jp.Optional()
	}
	if s.Inverse {
		jp.Inverse()
	}
	if s.Fetch != "" {
		jp.Fetch(s.Fetch)
	}
	what += " join " + s.Table
	for _, p := range s.Properties {
		property(jp.Map(p.Name), p)
	}
	for _, r := range s.References {
		b.reference(what, jp.References(r.Name), r)
	}
}

func (b *builder) members(what string, m *schema.Members, s *Members) {
	for _, p := range s.Properties {
		property(m.Map(p.Name), p)
	}
	for _, r := range s.References {
		b.reference(what, m.References(r.Name), r)
	}
	for _, o := range s.HasOne {
		p := m.HasOne(o.Name)
		if o.Constrained {
			p.Constrained()
		}
		if o.PropertyRef != "" {
			p.PropertyRef(o.PropertyRef)
		}
		if o.Cascade != "" {
			p.Cascade().Combine(splitList(o.Cascade)...)
		}
		if o.Fetch != "" {
			p.Fetch(o.Fetch)
		}
		if o.ForeignKey != "" {
			p.ForeignKey(o.ForeignKey)
		}
	}
	for _, c := range s.HasMany {
		b.collection(what, m.HasMany(c.Name), c)
	}
	for _, c := range s.HasManyToMany {
		b.collection(what, m.HasManyToMany(c.Name), c)
	}
	for _, c := range s.Components {
		configure := func(cp *schema.ComponentPart) {
			b.members(what+" component "+c.Name, &cp.Members, &c.Members)
		}
		var cp *schema.ComponentPart
		if c.Dynamic {
			cp = m.DynamicComponent(c.Name, configure)
		} else {
			cp = m.Component(c.Name, configure)
		}
		if c.Prefix != "" {
			cp.ColumnPrefix(c.Prefix)
		}
		if c.ParentReference != "" {
			cp.ParentReference(c.ParentReference)
		}
		if c.Unique {
			cp.Unique()
		}
		if c.ReadOnly {
			cp.ReadOnly()
		}
	}
	for _, c := range s.ComponentRefs {
		rp := m.ComponentRef(c.Name)
		if c.Prefix != "" {
			rp.ColumnPrefix(c.Prefix)
		}
		if c.Unique {
			rp.Unique()
		}
	}
	for _, a := range s.Any {
		b.anyRef(what, m.ReferencesAny(a.Name), a)
	}
	for _, f := range s.Filters {
		m.ApplyFilter(f.Name, f.Condition)
	}
}

func property(p *schema.PropertyPart, s *PropertySpec) {
	if len(s.Columns) > 0 {
		p.Columns(s.Columns...)
	}
	if s.Length > 0 {
		p.Length(s.Length)
	}
	if s.Precision > 0 {
		p.Precision(s.Precision)
	}
	if s.Scale > 0 {
		p.Scale(s.Scale)
	}
	if s.NotNull != nil {
		if *s.NotNull {
			p.Not()
		}
		p.Nullable()
	}
	if s.Unique {
		p.Unique()
	}
	if s.UniqueKey != "" {
		p.UniqueKey(s.UniqueKey)
	}
	if s.Index != "" {
		p.Index(s.Index)
	}
	if s.Check != "" {
		p.Check(s.Check)
	}
	if s.Default != "" {
		p.Default(s.Default)
	}
	if s.SQLType != "" {
		p.CustomSqlType(s.SQLType)
	}
	if s.Type != "" {
		p.CustomType(s.Type)
	}
	if s.Formula != "" {
		p.Formula(s.Formula)
	}
	if s.ReadOnly {
		p.ReadOnly()
	}
	if s.Lazy {
		p.LazyLoad()
	}
	if s.Access != "" {
		p.Access(s.Access)
	}
}

func (b *builder) reference(what string, p *schema.ManyToOnePart, s *ReferenceSpec) {
	if len(s.Columns) > 0 {
		p.Columns(s.Columns...)
	}
	if s.Class != "" {
		t, err := b.named(s.Class)
		if err != nil {
			b.errorf("%s: reference %s: %w", what, s.Name, err)
			return
		}
		p.Class(t)
	}
	if s.Cascade != "" {
		p.Cascade().Combine(splitList(s.Cascade)...)
	}
	if s.Fetch != "" {
		p.Fetch(s.Fetch)
	}
	if s.Lazy != nil {
		if !*s.Lazy {
			p.Not()
		}
		p.LazyLoad()
	}
	if s.NotFound != "" {
		p.NotFound(s.NotFound)
	}
	if s.NotNull != nil {
		if *s.NotNull {
			p.Not()
		}
		p.Nullable()
	}
	if s.Unique {
		p.Unique()
	}
	if s.UniqueKey != "" {
		p.UniqueKey(s.UniqueKey)
	}
	if s.Index != "" {
		p.Index(s.Index)
	}
	if s.ForeignKey != "" {
		p.ForeignKey(s.ForeignKey)
	}
	if s.PropertyRef != "" {
		p.PropertyRef(s.PropertyRef)
	}
	if s.Formula != "" {
		p.Formula(s.Formula)
	}
}

func (b *builder) collection(what string, p *schema.CollectionPart, s *CollectionSpec) {
	what += " collection " + s.Name
	switch s.Kind {
	case "", "bag":
		p.AsBag()
	case "set":
		p.AsSet()
	case "list", "array", "map":
		if s.IndexColumn == "" {
			b.errorf("%s: %s requires index_column", what, s.Kind)
			return
		}
		switch s.Kind {
		case "list":
			p.AsList(s.IndexColumn)
		case "array":
			p.AsArray(s.IndexColumn)
		default:
			p.AsMap(s.IndexColumn)
		}
	default:
		b.errs = append(b.errs, fluentmap.NewConfigError(what+".kind", s.Kind, "unknown collection kind"))
		return
	}
	switch {
	case len(s.KeyColumns) > 0:
		p.KeyColumns(s.KeyColumns...)
	case s.KeyColumn != "":
		p.KeyColumn(s.KeyColumn)
	}
	if s.ChildKeyColumn != "" {
		p.ChildKeyColumn(s.ChildKeyColumn)
	}
	if s.ForeignKey != "" {
		p.ForeignKeyConstraintName(s.ForeignKey)
	}
	if s.Table != "" {
		p.Table(s.Table)
	}
	if s.Schema != "" {
		p.Schema(s.Schema)
	}
	if s.Inverse {
		p.Inverse()
	}
	if s.Cascade != "" {
		p.Cascade().Combine(splitList(s.Cascade)...)
	}
	switch {
	case s.ExtraLazy:
		p.ExtraLazyLoad()
	case s.Lazy != nil:
		if !*s.Lazy {
			p.Not()
		}
		p.LazyLoad()
	}
	if s.Fetch != "" {
		p.Fetch(s.Fetch)
	}
	if s.Where != "" {
		p.Where(s.Where)
	}
	if s.OrderBy != "" {
		p.OrderBy(s.OrderBy)
	}
	if s.BatchSize > 0 {
		p.BatchSize(s.BatchSize)
	}
	if s.Cache != nil {
		if err := cache(p.Cache(), s.Cache); err != nil {
			b.errorf("%s: %w", what, err)
		}
	}
	if e := s.Element; e != nil {
		var et *types.Type
		if e.Type != "" {
			t, err := b.expr(e.Type)
			if err != nil {
				b.errorf("%s: element: %w", what, err)
				return
			}
			et = t
		}
		p.Element(e.Column, func(ep *schema.ElementPart) {
			if et != nil {
				ep.Type(et)
			}
			if e.Length > 0 {
				ep.Length(e.Length)
			}
			if e.Formula != "" {
				ep.Formula(e.Formula)
			}
		})
	}
}

func (b *builder) anyRef(what string, p *schema.AnyPart, s *AnySpec) {
	what += " any " + s.Name
	idType, err := b.expr(s.IdType)
	if err != nil {
		b.errorf("%s: id_type: %w", what, err)
		return
	}
	p.EntityTypeColumn(s.TypeColumn).EntityIdentifierColumn(s.IdColumn).IdentityType(idType)
	if s.MetaType != "" {
		p.MetaType(s.MetaType)
	}
	for _, name := range slices.Sorted(maps.Keys(s.MetaValues)) {
		t, err := b.named(name)
		if err != nil {
			b.errorf("%s: meta value: %w", what, err)
			return
		}
		p.AddMetaValue(t, s.MetaValues[name])
	}
	if s.Cascade != "" {
		p.Cascade().Combine(splitList(s.Cascade)...)
	}
}

func cache[P any](c *schema.CachePart[P], s *CacheSpec) error {
	if s.Region != "" {
		c.Region(s.Region)
	}
	switch s.Usage {
	case "read-write":
		c.ReadWrite()
	case "read-only":
		c.ReadOnly()
	case "nonstrict-read-write":
		c.NonStrictReadWrite()
	case "transactional":
		c.Transactional()
	default:
		return fluentmap.NewConfigError("cache.usage", s.Usage, "unknown cache usage")
	}
	return nil
}

// builtin returns a predefined convention by name.
func builtin(name string) (any, error) {
	key, arg, _ := strings.Cut(name, ":")
	switch key {
	case "pluralize-table-names":
		return conventions.PluralizeTableNames(), nil
	case "default-lazy-always":
		return conventions.DefaultLazy.Always(), nil
	case "default-lazy-never":
		return conventions.DefaultLazy.Never(), nil
	case "default-cascade-all":
		return conventions.DefaultCascade.All(), nil
	case "default-cascade-save-update":
		return conventions.DefaultCascade.SaveUpdate(), nil
	case "default-cascade-none":
		return conventions.DefaultCascade.None(), nil
	case "default-access-property":
		return conventions.DefaultAccess.Property(), nil
	case "default-access-field":
		return conventions.DefaultAccess.Field(), nil
	case "foreign-key-suffix":
		if arg == "" {
			return nil, fluentmap.NewConfigError("builtin_conventions", name, "suffix is required")
		}
		return conventions.ForeignKey.EndsWith(arg), nil
	}
	return nil, fluentmap.NewConfigError("builtin_conventions", name, "unknown convention")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return slices.DeleteFunc(parts, func(p string) bool { return p == "" })
}
