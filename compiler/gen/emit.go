package gen

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/fluentmap/compiler/load"
	"github.com/syssam/fluentmap/conventions"
)

// emitter writes the declarations of a loaded project as builder calls. It
// follows the order in which load applies them so that the scaffold
// compiles to the same document.
type emitter struct {
	loaded *load.Loaded
}

// chain is a method chain on a receiver.
type chain struct {
	s *jen.Statement
}

func on(recv string) *chain { return &chain{s: jen.Id(recv)} }

func (c *chain) call(name string, args ...jen.Code) *chain {
	c.s = c.s.Dot(name).Call(args...)
	return c
}

// flag emits a negatable setting: Not() is chained first when the value
// is false.
func (c *chain) flag(name string, v bool) *chain {
	if !v {
		c.call("Not")
	}
	return c.call(name)
}

func lits[T any](vs ...T) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func tparam() jen.Code { return jen.Id("t").Op("*").Id("Types") }

func (e *emitter) named(name string) (jen.Code, error) {
	t, ok := e.loaded.Type(name)
	if !ok {
		return nil, fmt.Errorf("undeclared type %q", name)
	}
	return typeExpr(t)
}

func (e *emitter) expr(s string) (jen.Code, error) {
	t, err := e.loaded.Resolve(s)
	if err != nil {
		return nil, err
	}
	return typeExpr(t)
}

func (e *emitter) file(f *jen.File) error {
	p := e.loaded.Project
	if err := e.types(f); err != nil {
		return err
	}
	var providers []jen.Code
	for _, c := range p.Classes {
		name := exported(c.Type) + "Map"
		body, err := e.class("c", c)
		if err != nil {
			return fmt.Errorf("class %s: %w", c.Type, err)
		}
		t, err := e.named(c.Type)
		if err != nil {
			return err
		}
		f.Func().Id(name).Params(tparam()).Op("*").Qual(schemaPkg, "ClassMap").BlockFunc(func(g *jen.Group) {
			g.Id("c").Op(":=").Qual(schemaPkg, "NewClassMap").Call(t)
			g.Add(body...)
			g.Return(jen.Id("c"))
		}).Line()
		providers = append(providers, jen.Id(name).Call(jen.Id("t")))
	}
	for _, s := range p.Subclasses {
		name := exported(s.Type) + "SubclassMap"
		if err := e.subclass(f, name, s); err != nil {
			return fmt.Errorf("subclass %s: %w", s.Type, err)
		}
		providers = append(providers, jen.Id(name).Call(jen.Id("t")))
	}
	for _, c := range p.Components {
		name := exported(c.Type) + "ComponentMap"
		t, err := e.named(c.Type)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Type, err)
		}
		body, err := e.members("c", &c.Members)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Type, err)
		}
		f.Func().Id(name).Params(tparam()).Op("*").Qual(schemaPkg, "ComponentMap").BlockFunc(func(g *jen.Group) {
			g.Id("c").Op(":=").Qual(schemaPkg, "NewComponentMap").Call(t)
			if c.ParentReference != "" {
				g.Add(on("c").call("ParentReference", jen.Lit(c.ParentReference)).s)
			}
			g.Add(body...)
			g.Return(jen.Id("c"))
		}).Line()
		providers = append(providers, jen.Id(name).Call(jen.Id("t")))
	}
	for _, fs := range p.Filters {
		name := exported(fs.Name) + "Filter"
		c := &chain{s: jen.Qual(schemaPkg, "NewFilterDefinition").Call()}
		c.call("WithName", jen.Lit(fs.Name))
		if fs.Condition != "" {
			c.call("WithCondition", jen.Lit(fs.Condition))
		}
		for _, param := range fs.Parameters {
			t, err := e.expr(param.Type)
			if err != nil {
				return fmt.Errorf("filter %s: %w", fs.Name, err)
			}
			c.call("AddParameter", jen.Lit(param.Name), t)
		}
		f.Func().Id(name).Params(tparam()).Op("*").Qual(schemaPkg, "FilterDefinition").Block(
			jen.Return(c.s),
		).Line()
		providers = append(providers, jen.Id(name).Call(jen.Id("t")))
	}
	for _, i := range p.Imports {
		t, err := e.named(i.Type)
		if err != nil {
			return fmt.Errorf("import %s: %w", i.Type, err)
		}
		c := &chain{s: jen.Qual(schemaPkg, "Import").Call(t)}
		if i.As != "" {
			c.call("As", jen.Lit(i.As))
		}
		providers = append(providers, c.s)
	}
	if p.Automap != nil {
		if err := e.automap(f, p.Automap); err != nil {
			return fmt.Errorf("automap: %w", err)
		}
		providers = append(providers, jen.Id("Automapping").Call(jen.Id("t")))
	}
	f.Comment("Providers returns every mapping of the package.")
	f.Func().Id("Providers").Params(tparam()).Index().Qual(rootPkg, "Provider").Block(
		jen.Return(jen.Index().Qual(rootPkg, "Provider").ValuesFunc(func(g *jen.Group) {
			for _, p := range providers {
				g.Line().Add(p)
			}
			if len(providers) > 0 {
				g.Line()
			}
		})),
	).Line()
	return e.conventions(f)
}

// types emits the Types struct and its constructor.
func (e *emitter) types(f *jen.File) error {
	p := e.loaded.Project
	f.Comment("Types holds the declared types of the package.")
	f.Type().Id("Types").StructFunc(func(g *jen.Group) {
		for _, ts := range p.Types {
			g.Id(exported(ts.Name)).Op("*").Qual(typesPkg, "Type")
		}
	}).Line()
	var body []jen.Code
	body = append(body, jen.Id("t").Op(":=").Op("&").Id("Types").Values(jen.DictFunc(func(d jen.Dict) {
		for _, ts := range p.Types {
			ctor := "Struct"
			if ts.Interface {
				ctor = "Interface"
			}
			args := []jen.Code{jen.Lit(ts.Name), jen.Qual(typesPkg, "InPackage").Call(jen.Lit(p.Package))}
			if ts.Abstract {
				args = append(args, jen.Qual(typesPkg, "Abstract").Call())
			}
			d[jen.Id(exported(ts.Name))] = jen.Qual(typesPkg, ctor).Call(args...)
		}
	})))
	for _, ts := range p.Types {
		t, ok := e.loaded.Type(ts.Name)
		if !ok {
			return fmt.Errorf("undeclared type %q", ts.Name)
		}
		recv := jen.Id("t").Dot(exported(ts.Name))
		if t.Base != nil {
			base, err := typeExpr(t.Base)
			if err != nil {
				return err
			}
			body = append(body, jen.Add(recv).Dot("Base").Op("=").Add(base))
		}
		if len(t.Interfaces) > 0 {
			ifaces := make([]jen.Code, 0, len(t.Interfaces))
			for _, i := range t.Interfaces {
				x, err := typeExpr(i)
				if err != nil {
					return err
				}
				ifaces = append(ifaces, x)
			}
			body = append(body, jen.Add(recv).Dot("Interfaces").Op("=").Index().Op("*").Qual(typesPkg, "Type").Values(ifaces...))
		}
		for _, m := range t.Members {
			x, err := typeExpr(m.Type)
			if err != nil {
				return fmt.Errorf("type %s: field %s: %w", ts.Name, m.Name, err)
			}
			body = append(body, jen.Add(recv).Dot("AddField").Call(jen.Lit(m.Name), x))
		}
	}
	body = append(body, jen.Return(jen.Id("t")))
	f.Comment("NewTypes declares the type graph.")
	f.Func().Id("NewTypes").Params().Op("*").Id("Types").Block(body...).Line()
	return nil
}

// class emits the settings of a class or automapping override on recv.
func (e *emitter) class(recv string, s *load.ClassSpec) ([]jen.Code, error) {
	var out []jen.Code
	set := func(name string, args ...jen.Code) {
		out = append(out, on(recv).call(name, args...).s)
	}
	if s.Table != "" {
		set("Table", jen.Lit(s.Table))
	}
	if s.Schema != "" {
		set("Schema", jen.Lit(s.Schema))
	}
	if s.Lazy != nil {
		out = append(out, on(recv).flag("LazyLoad", *s.Lazy).s)
	}
	if s.ReadOnly {
		set("ReadOnly")
	}
	if s.DynamicUpdate {
		set("DynamicUpdate")
	}
	if s.DynamicInsert {
		set("DynamicInsert")
	}
	if s.Abstract {
		set("Abstract")
	}
	if s.Where != "" {
		set("Where", jen.Lit(s.Where))
	}
	if s.BatchSize > 0 {
		set("BatchSize", jen.Lit(s.BatchSize))
	}
	if s.Polymorphism != "" {
		set("Polymorphism", jen.Lit(s.Polymorphism))
	}
	if s.OptimisticLock != "" {
		set("OptimisticLock", jen.Lit(s.OptimisticLock))
	}
	if s.Check != "" {
		set("Check", jen.Lit(s.Check))
	}
	if s.DiscriminatorValue != "" {
		set("DiscriminatorValue", jen.Lit(s.DiscriminatorValue))
	}
	if s.UnionSubclasses {
		set("UseUnionSubclassForInheritanceMapping")
	}
	if s.Cache != nil {
		out = append(out, cache(on(recv).call("Cache"), s.Cache).s)
	}
	if s.Id != nil {
		id, err := e.id(recv, s.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if cid := s.CompositeId; cid != nil {
		c := on(recv).call("CompositeId")
		for _, k := range cid.Properties {
			c.call("KeyProperty", lits(append([]string{k.Name}, k.Columns...)...)...)
		}
		for _, k := range cid.References {
			c.call("KeyReference", lits(append([]string{k.Name}, k.Columns...)...)...)
		}
		if cid.Mapped {
			c.call("Mapped")
		}
		out = append(out, c.s)
	}
	if v := s.Version; v != nil {
		c := on(recv).call("Version", jen.Lit(v.Name))
		if v.Column != "" {
			c.call("Column", jen.Lit(v.Column))
		}
		if v.UnsavedValue != "" {
			c.call("UnsavedValue", jen.Lit(v.UnsavedValue))
		}
		if v.Generated != "" {
			c.call("Generated", jen.Lit(v.Generated))
		}
		out = append(out, c.s)
	}
	if d := s.Discriminator; d != nil {
		c := on(recv).call("DiscriminateSubclassesOnColumn", jen.Lit(d.Column))
		if d.Type != "" {
			c.call("CustomType", jen.Lit(d.Type))
		}
		if d.Length > 0 {
			c.call("Length", jen.Lit(d.Length))
		}
		if d.Formula != "" {
			c.call("Formula", jen.Lit(d.Formula))
		}
		if d.Nullable {
			c.call("Nullable")
		}
		if d.Force {
			c.call("AlwaysSelectWithValue")
		}
		out = append(out, c.s)
	}
	if n := s.NaturalId; n != nil {
		c := on(recv).call("NaturalId")
		for _, k := range n.Properties {
			c.call("Property", lits(append([]string{k.Name}, k.Columns...)...)...)
		}
		for _, k := range n.References {
			c.call("Reference", lits(append([]string{k.Name}, k.Columns...)...)...)
		}
		if n.Mutable {
			c.call("Mutable")
		}
		out = append(out, c.s)
	}
	joins, err := e.joins(recv, s.Joins)
	if err != nil {
		return nil, err
	}
	out = append(out, joins...)
	members, err := e.members(recv, &s.Members)
	if err != nil {
		return nil, err
	}
	return append(out, members...), nil
}

func (e *emitter) id(recv string, s *load.IdSpec) (jen.Code, error) {
	c := on(recv).call("Id", jen.Lit(s.Name))
	if s.Column != "" {
		c.call("Column", jen.Lit(s.Column))
	}
	if s.Length > 0 {
		c.call("Length", jen.Lit(s.Length))
	}
	if s.UnsavedValue != "" {
		c.call("UnsavedValue", jen.Lit(s.UnsavedValue))
	}
	if s.Type != "" {
		c.call("CustomType", jen.Lit(s.Type))
	}
	if s.Generator == "" {
		return c.s, nil
	}
	c.call("GeneratedBy")
	switch s.Generator {
	case "identity":
		c.call("Identity")
	case "native":
		c.call("Native")
	case "assigned":
		c.call("Assigned")
	case "increment":
		c.call("Increment")
	case "guid":
		c.call("Guid")
	case "guid.comb":
		c.call("GuidComb")
	case "sequence":
		c.call("Sequence", jen.Lit(s.Params["sequence"]))
	case "uuid.hex":
		c.call("UuidHex", jen.Lit(s.Params["format"]))
	case "foreign":
		c.call("Foreign", jen.Lit(s.Params["property"]))
	case "hilo":
		maxLo := 32767
		if v, ok := s.Params["max_lo"]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("id: max_lo: %w", err)
			}
			maxLo = n
		}
		c.call("HiLo", jen.Lit(s.Params["table"]), jen.Lit(s.Params["column"]), jen.Lit(maxLo))
	default:
		args := []jen.Code{jen.Lit(s.Generator)}
		for _, k := range slices.Sorted(maps.Keys(s.Params)) {
			args = append(args, jen.Qual(modelPkg, "Param").Values(jen.Dict{
				jen.Id("Name"):  jen.Lit(k),
				jen.Id("Value"): jen.Lit(s.Params[k]),
			}))
		}
		c.call("Custom", args...)
	}
	return c.s, nil
}

func (e *emitter) subclass(f *jen.File, name string, s *load.SubclassSpec) error {
	t, err := e.named(s.Type)
	if err != nil {
		return err
	}
	var out []jen.Code
	set := func(name string, args ...jen.Code) {
		out = append(out, on("s").call(name, args...).s)
	}
	if s.Extends != "" {
		parent, err := e.named(s.Extends)
		if err != nil {
			return err
		}
		set("Extends", parent)
	}
	if s.DiscriminatorValue != "" {
		set("DiscriminatorValue", jen.Lit(s.DiscriminatorValue))
	}
	if s.KeyColumn != "" {
		set("KeyColumn", jen.Lit(s.KeyColumn))
	}
	if s.Table != "" {
		set("Table", jen.Lit(s.Table))
	}
	if s.Schema != "" {
		set("Schema", jen.Lit(s.Schema))
	}
	if s.Abstract {
		set("Abstract")
	}
	if s.Lazy != nil {
		out = append(out, on("s").flag("LazyLoad", *s.Lazy).s)
	}
	if s.BatchSize > 0 {
		set("BatchSize", jen.Lit(s.BatchSize))
	}
	joins, err := e.joins("s", s.Joins)
	if err != nil {
		return err
	}
	out = append(out, joins...)
	members, err := e.members("s", &s.Members)
	if err != nil {
		return err
	}
	out = append(out, members...)
	f.Func().Id(name).Params(tparam()).Op("*").Qual(schemaPkg, "SubclassMap").BlockFunc(func(g *jen.Group) {
		g.Id("s").Op(":=").Qual(schemaPkg, "NewSubclassMap").Call(t)
		g.Add(out...)
		g.Return(jen.Id("s"))
	}).Line()
	return nil
}

func (e *emitter) automap(f *jen.File, s *load.AutomapSpec) error {
	ts := make([]jen.Code, 0, len(s.Types))
	for _, name := range s.Types {
		t, err := e.named(name)
		if err != nil {
			return err
		}
		ts = append(ts, t)
	}
	var out []jen.Code
	out = append(out, jen.Id("a").Op(":=").Qual(schemaPkg, "AutoMap").Call(
		jen.Qual(rootPkg, "NewCollectionSource").Call(ts...),
	))
	for _, o := range s.Overrides {
		t, err := e.named(o.Type)
		if err != nil {
			return err
		}
		var body []jen.Code
		if len(o.Ignore) > 0 {
			body = append(body, on("o").call("IgnoreProperty", lits(o.Ignore...)...).s)
		}
		settings, err := e.class("o", &o.ClassSpec)
		if err != nil {
			return fmt.Errorf("override %s: %w", o.Type, err)
		}
		body = append(body, settings...)
		out = append(out, on("a").call("Override", t,
			jen.Func().Params(jen.Id("o").Op("*").Qual(schemaPkg, "OverrideMap")).Block(body...),
		).s)
	}
	out = append(out, jen.Return(jen.Id("a")))
	f.Comment("Automapping maps the remaining types by convention.")
	f.Func().Id("Automapping").Params(tparam()).Op("*").Qual(schemaPkg, "AutoPersistenceModel").Block(out...).Line()
	return nil
}

func (e *emitter) joins(recv string, js []*load.JoinSpec) ([]jen.Code, error) {
	var out []jen.Code
	for _, j := range js {
		var body []jen.Code
		c := on("j")
		if j.KeyColumn != "" {
			c.call("KeyColumn", jen.Lit(j.KeyColumn))
		}
		if j.Schema != "" {
			c.call("Schema", jen.Lit(j.Schema))
		}
		if j.Optional {
			c.call("Optional")
		}
		if j.Inverse {
			c.call("Inverse")
		}
		if j.Fetch != "" {
			c.call("Fetch", jen.Lit(j.Fetch))
		}
		if j.KeyColumn != "" || j.Schema != "" || j.Optional || j.Inverse || j.Fetch != "" {
			body = append(body, c.s)
		}
		for _, p := range j.Properties {
			body = append(body, property("j", p))
		}
		for _, r := range j.References {
			ref, err := e.reference("j", r)
			if err != nil {
				return nil, fmt.Errorf("join %s: %w", j.Table, err)
			}
			body = append(body, ref)
		}
		out = append(out, on(recv).call("Join", jen.Lit(j.Table),
			jen.Func().Params(jen.Id("j").Op("*").Qual(schemaPkg, "JoinPart")).Block(body...),
		).s)
	}
	return out, nil
}

func (e *emitter) members(recv string, s *load.Members) ([]jen.Code, error) {
	var out []jen.Code
	for _, p := range s.Properties {
		out = append(out, property(recv, p))
	}
	for _, r := range s.References {
		ref, err := e.reference(recv, r)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	for _, o := range s.HasOne {
		c := on(recv).call("HasOne", jen.Lit(o.Name))
		if o.Constrained {
			c.call("Constrained")
		}
		if o.PropertyRef != "" {
			c.call("PropertyRef", jen.Lit(o.PropertyRef))
		}
		if o.Cascade != "" {
			c.call("Cascade").call("Combine", lits(splitList(o.Cascade)...)...)
		}
		if o.Fetch != "" {
			c.call("Fetch", jen.Lit(o.Fetch))
		}
		if o.ForeignKey != "" {
			c.call("ForeignKey", jen.Lit(o.ForeignKey))
		}
		out = append(out, c.s)
	}
	for _, c := range s.HasMany {
		coll, err := e.collection(on(recv).call("HasMany", jen.Lit(c.Name)), c)
		if err != nil {
			return nil, err
		}
		out = append(out, coll)
	}
	for _, c := range s.HasManyToMany {
		coll, err := e.collection(on(recv).call("HasManyToMany", jen.Lit(c.Name)), c)
		if err != nil {
			return nil, err
		}
		out = append(out, coll)
	}
	for _, c := range s.Components {
		body, err := e.members("cp", &c.Members)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", c.Name, err)
		}
		method := "Component"
		if c.Dynamic {
			method = "DynamicComponent"
		}
		ch := on(recv).call(method, jen.Lit(c.Name),
			jen.Func().Params(jen.Id("cp").Op("*").Qual(schemaPkg, "ComponentPart")).Block(body...),
		)
		if c.Prefix != "" {
			ch.call("ColumnPrefix", jen.Lit(c.Prefix))
		}
		if c.ParentReference != "" {
			ch.call("ParentReference", jen.Lit(c.ParentReference))
		}
		if c.Unique {
			ch.call("Unique")
		}
		if c.ReadOnly {
			ch.call("ReadOnly")
		}
		out = append(out, ch.s)
	}
	for _, c := range s.ComponentRefs {
		ch := on(recv).call("ComponentRef", jen.Lit(c.Name))
		if c.Prefix != "" {
			ch.call("ColumnPrefix", jen.Lit(c.Prefix))
		}
		if c.Unique {
			ch.call("Unique")
		}
		out = append(out, ch.s)
	}
	for _, a := range s.Any {
		x, err := e.anyRef(recv, a)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	for _, f := range s.Filters {
		out = append(out, on(recv).call("ApplyFilter", jen.Lit(f.Name), jen.Lit(f.Condition)).s)
	}
	return out, nil
}

func property(recv string, s *load.PropertySpec) jen.Code {
	c := on(recv).call("Map", jen.Lit(s.Name))
	if len(s.Columns) > 0 {
		c.call("Columns", lits(s.Columns...)...)
	}
	if s.Length > 0 {
		c.call("Length", jen.Lit(s.Length))
	}
	if s.Precision > 0 {
		c.call("Precision", jen.Lit(s.Precision))
	}
	if s.Scale > 0 {
		c.call("Scale", jen.Lit(s.Scale))
	}
	if s.NotNull != nil {
		c.flag("Nullable", !*s.NotNull)
	}
	if s.Unique {
		c.call("Unique")
	}
	if s.UniqueKey != "" {
		c.call("UniqueKey", jen.Lit(s.UniqueKey))
	}
	if s.Index != "" {
		c.call("Index", jen.Lit(s.Index))
	}
	if s.Check != "" {
		c.call("Check", jen.Lit(s.Check))
	}
	if s.Default != "" {
		c.call("Default", jen.Lit(s.Default))
	}
	if s.SQLType != "" {
		c.call("CustomSqlType", jen.Lit(s.SQLType))
	}
	if s.Type != "" {
		c.call("CustomType", jen.Lit(s.Type))
	}
	if s.Formula != "" {
		c.call("Formula", jen.Lit(s.Formula))
	}
	if s.ReadOnly {
		c.call("ReadOnly")
	}
	if s.Lazy {
		c.call("LazyLoad")
	}
	if s.Access != "" {
		c.call("Access", jen.Lit(s.Access))
	}
	return c.s
}

func (e *emitter) reference(recv string, s *load.ReferenceSpec) (jen.Code, error) {
	c := on(recv).call("References", jen.Lit(s.Name))
	if len(s.Columns) > 0 {
		c.call("Columns", lits(s.Columns...)...)
	}
	if s.Class != "" {
		t, err := e.named(s.Class)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", s.Name, err)
		}
		c.call("Class", t)
	}
	if s.Cascade != "" {
		c.call("Cascade").call("Combine", lits(splitList(s.Cascade)...)...)
	}
	if s.Fetch != "" {
		c.call("Fetch", jen.Lit(s.Fetch))
	}
	if s.Lazy != nil {
		c.flag("LazyLoad", *s.Lazy)
	}
	if s.NotFound != "" {
		c.call("NotFound", jen.Lit(s.NotFound))
	}
	if s.NotNull != nil {
		c.flag("Nullable", !*s.NotNull)
	}
	if s.Unique {
		c.call("Unique")
	}
	if s.UniqueKey != "" {
		c.call("UniqueKey", jen.Lit(s.UniqueKey))
	}
	if s.Index != "" {
		c.call("Index", jen.Lit(s.Index))
	}
	if s.ForeignKey != "" {
		c.call("ForeignKey", jen.Lit(s.ForeignKey))
	}
	if s.PropertyRef != "" {
		c.call("PropertyRef", jen.Lit(s.PropertyRef))
	}
	if s.Formula != "" {
		c.call("Formula", jen.Lit(s.Formula))
	}
	return c.s, nil
}

func (e *emitter) collection(c *chain, s *load.CollectionSpec) (jen.Code, error) {
	switch s.Kind {
	case "", "bag":
		c.call("AsBag")
	case "set":
		c.call("AsSet")
	case "list":
		c.call("AsList", jen.Lit(s.IndexColumn))
	case "array":
		c.call("AsArray", jen.Lit(s.IndexColumn))
	case "map":
		c.call("AsMap", jen.Lit(s.IndexColumn))
	default:
		return nil, fmt.Errorf("collection %s: unknown kind %q", s.Name, s.Kind)
	}
	switch {
	case len(s.KeyColumns) > 0:
		c.call("KeyColumns", lits(s.KeyColumns...)...)
	case s.KeyColumn != "":
		c.call("KeyColumn", jen.Lit(s.KeyColumn))
	}
	if s.ChildKeyColumn != "" {
		c.call("ChildKeyColumn", jen.Lit(s.ChildKeyColumn))
	}
	if s.ForeignKey != "" {
		c.call("ForeignKeyConstraintName", jen.Lit(s.ForeignKey))
	}
	if s.Table != "" {
		c.call("Table", jen.Lit(s.Table))
	}
	if s.Schema != "" {
		c.call("Schema", jen.Lit(s.Schema))
	}
	if s.Inverse {
		c.call("Inverse")
	}
	if s.Cascade != "" {
		c.call("Cascade").call("Combine", lits(splitList(s.Cascade)...)...)
	}
	switch {
	case s.ExtraLazy:
		c.call("ExtraLazyLoad")
	case s.Lazy != nil:
		c.flag("LazyLoad", *s.Lazy)
	}
	if s.Fetch != "" {
		c.call("Fetch", jen.Lit(s.Fetch))
	}
	if s.Where != "" {
		c.call("Where", jen.Lit(s.Where))
	}
	if s.OrderBy != "" {
		c.call("OrderBy", jen.Lit(s.OrderBy))
	}
	if s.BatchSize > 0 {
		c.call("BatchSize", jen.Lit(s.BatchSize))
	}
	if s.Cache != nil {
		cache(c.call("Cache"), s.Cache)
	}
	if el := s.Element; el != nil {
		ep := on("e")
		if el.Type != "" {
			t, err := e.expr(el.Type)
			if err != nil {
				return nil, fmt.Errorf("collection %s: element: %w", s.Name, err)
			}
			ep.call("Type", t)
		}
		if el.Length > 0 {
			ep.call("Length", jen.Lit(el.Length))
		}
		if el.Formula != "" {
			ep.call("Formula", jen.Lit(el.Formula))
		}
		args := []jen.Code{jen.Lit(el.Column)}
		if el.Type != "" || el.Length > 0 || el.Formula != "" {
			args = append(args, jen.Func().Params(jen.Id("e").Op("*").Qual(schemaPkg, "ElementPart")).Block(ep.s))
		}
		c.call("Element", args...)
	}
	return c.s, nil
}

func (e *emitter) anyRef(recv string, s *load.AnySpec) (jen.Code, error) {
	idType, err := e.expr(s.IdType)
	if err != nil {
		return nil, fmt.Errorf("any %s: %w", s.Name, err)
	}
	c := on(recv).call("ReferencesAny", jen.Lit(s.Name)).
		call("EntityTypeColumn", jen.Lit(s.TypeColumn)).
		call("EntityIdentifierColumn", jen.Lit(s.IdColumn)).
		call("IdentityType", idType)
	if s.MetaType != "" {
		c.call("MetaType", jen.Lit(s.MetaType))
	}
	for _, name := range slices.Sorted(maps.Keys(s.MetaValues)) {
		t, err := e.named(name)
		if err != nil {
			return nil, fmt.Errorf("any %s: %w", s.Name, err)
		}
		c.call("AddMetaValue", t, jen.Lit(s.MetaValues[name]))
	}
	if s.Cascade != "" {
		c.call("Cascade").call("Combine", lits(splitList(s.Cascade)...)...)
	}
	return c.s, nil
}

// cache finishes a Cache() chain with the region and usage.
func cache(c *chain, s *load.CacheSpec) *chain {
	if s.Region != "" {
		c.call("Region", jen.Lit(s.Region))
	}
	usage := map[string]string{
		"read-write":           "ReadWrite",
		"read-only":            "ReadOnly",
		"nonstrict-read-write": "NonStrictReadWrite",
		"transactional":        "Transactional",
	}[s.Usage]
	return c.call(usage)
}

// builtins maps the names of predefined conventions to their constructors.
var builtins = map[string]func(arg string) jen.Code{
	"pluralize-table-names": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "PluralizeTableNames").Call()
	},
	"default-lazy-always": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultLazy").Dot("Always").Call()
	},
	"default-lazy-never": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultLazy").Dot("Never").Call()
	},
	"default-cascade-all": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultCascade").Dot("All").Call()
	},
	"default-cascade-save-update": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultCascade").Dot("SaveUpdate").Call()
	},
	"default-cascade-none": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultCascade").Dot("None").Call()
	},
	"default-access-property": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultAccess").Dot("Property").Call()
	},
	"default-access-field": func(string) jen.Code {
		return jen.Qual(conventionsPkg, "DefaultAccess").Dot("Field").Call()
	},
	"foreign-key-suffix": func(arg string) jen.Code {
		return jen.Qual(conventionsPkg, "ForeignKey").Dot("EndsWith").Call(jen.Lit(arg))
	},
}

// conventions emits the declarations var and the Conventions function.
func (e *emitter) conventions(f *jen.File) error {
	p := e.loaded.Project
	items := make([]jen.Code, 0, len(p.Builtins))
	for _, name := range p.Builtins {
		key, arg, _ := strings.Cut(name, ":")
		build, ok := builtins[key]
		if !ok {
			return fmt.Errorf("unknown convention %q", name)
		}
		items = append(items, build(arg))
	}
	list := jen.Index().Id("any").ValuesFunc(func(g *jen.Group) {
		for _, it := range items {
			g.Line().Add(it)
		}
		if len(items) > 0 {
			g.Line()
		}
	})
	if len(p.Conventions) == 0 {
		f.Comment("Conventions returns the conventions of the package.")
		f.Func().Id("Conventions").Params().Params(jen.Index().Id("any"), jen.Error()).Block(
			jen.Return(list, jen.Nil()),
		)
		return nil
	}
	f.Var().Id("declarations").Op("=").Index().Qual(conventionsPkg, "Declaration").ValuesFunc(func(g *jen.Group) {
		for _, d := range p.Conventions {
			g.Line().Add(declaration(d))
		}
		g.Line()
	}).Line()
	f.Comment("Conventions returns the conventions of the package.")
	f.Func().Id("Conventions").Params().Params(jen.Index().Id("any"), jen.Error()).Block(
		jen.Id("cs").Op(":=").Add(list),
		jen.For(jen.List(jen.Id("_"), jen.Id("d")).Op(":=").Range().Id("declarations")).Block(
			jen.List(jen.Id("c"), jen.Err()).Op(":=").Qual(conventionsPkg, "NewDeclarative").Call(jen.Id("d")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("cs").Op("=").Append(jen.Id("cs"), jen.Id("c")),
		),
		jen.Return(jen.Id("cs"), jen.Nil()),
	)
	return nil
}

func declaration(d conventions.Declaration) jen.Code {
	return jen.ValuesFunc(func(g *jen.Group) {
		g.Id("Target").Op(":").Lit(d.Target)
		if d.When != "" {
			g.Id("When").Op(":").Lit(d.When)
		}
		g.Id("Set").Op(":").Map(jen.String()).String().Values(jen.DictFunc(func(dict jen.Dict) {
			for k, v := range d.Set {
				dict[jen.Lit(k)] = jen.Lit(v)
			}
		}))
	})
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return slices.DeleteFunc(parts, func(p string) bool { return p == "" })
}
