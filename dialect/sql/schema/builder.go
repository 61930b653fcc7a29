package schema

import (
	"fmt"
	"slices"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// entity is a mapped class or subclass and the table holding its rows.
type entity struct {
	node     model.Node
	parent   *entity
	table    *schema.Table
	pk       []*schema.Column
	building bool
}

type builder struct {
	e        *Exporter
	schemas  map[string]*schema.Schema
	tables   []*schema.Table
	entities map[string]*entity
	errs     []error
}

func newBuilder(e *Exporter) *builder {
	return &builder{
		e:        e,
		schemas:  make(map[string]*schema.Schema),
		entities: make(map[string]*entity),
	}
}

func (b *builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("schema: "+format, args...))
}

// table returns the table named name, creating it in schema ns.
func (b *builder) table(name, ns string) *schema.Table {
	name = unquote(name)
	if ns == "" {
		ns = b.e.schema
	}
	s, ok := b.schemas[ns]
	if !ok {
		s = schema.New(ns)
		b.schemas[ns] = s
	}
	if t, ok := s.Table(name); ok {
		return t
	}
	t := schema.NewTable(name)
	s.AddTables(t)
	b.tables = append(b.tables, t)
	return t
}

func (b *builder) lookup(name string) (*entity, bool) {
	ent, ok := b.entities[name]
	return ent, ok
}

// register creates the table of c and of every subclass table below it.
func (b *builder) register(c *model.ClassMapping) {
	ent := &entity{node: c, table: b.table(c.TableName(), model.Get(c, model.Class.Schema))}
	b.entities[c.Name()] = ent
	b.entities[c.Type.String()] = ent
	for _, s := range c.Subclasses {
		b.registerSubclass(s, ent)
	}
}

func (b *builder) registerSubclass(s *model.SubclassMapping, parent *entity) {
	ent := &entity{node: s, parent: parent, table: parent.table}
	if s.SubclassType != model.PlainSubclass {
		name := s.TableName()
		if name == "" {
			name = s.Type.ShortName()
		}
		ent.table = b.table(name, model.Get(s, model.Subclass.Schema))
	}
	b.entities[s.Name()] = ent
	b.entities[s.Type.String()] = ent
	for _, c := range s.Subclasses {
		b.registerSubclass(c, ent)
	}
}

// primaryKey returns the primary key columns of ent, building them on first
// use so references can be resolved in any order.
func (b *builder) primaryKey(ent *entity) []*schema.Column {
	if ent.pk != nil || ent.building {
		return ent.pk
	}
	ent.building = true
	defer func() { ent.building = false }()
	switch n := ent.node.(type) {
	case *model.ClassMapping:
		ent.pk = b.identity(ent.table, n)
	case *model.SubclassMapping:
		parent := b.primaryKey(ent.parent)
		switch n.SubclassType {
		case model.PlainSubclass:
			ent.pk = parent
		case model.JoinedSubclass:
			var cols []*model.ColumnMapping
			if n.Key != nil {
				cols = n.Key.Columns.Columns()
			}
			if len(cols) == 0 {
				for _, p := range parent {
					cols = append(cols, model.NewColumn(p.Name, model.Defaults))
				}
			}
			ent.pk = b.reference(ent.table, cols, ent.parent, "", false)
		case model.UnionSubclass:
			for _, p := range parent {
				col := schema.NewColumn(p.Name).SetType(refType(p.Type.Type)).SetNull(false)
				ent.table.AddColumns(col)
				ent.pk = append(ent.pk, col)
			}
		}
		if n.SubclassType != model.PlainSubclass && len(ent.pk) > 0 {
			ent.table.SetPrimaryKey(schema.NewPrimaryKey(ent.pk...))
		}
	}
	return ent.pk
}

func (b *builder) identity(t *schema.Table, c *model.ClassMapping) []*schema.Column {
	var pk []*schema.Column
	switch id := c.Id.(type) {
	case *model.IdMapping:
		typ := model.Get(id, model.Id.Type)
		for _, mc := range id.Columns.Columns() {
			if l, ok := model.Lookup(id, model.Id.Length); ok && !model.IsSpecified(mc, model.Column.Length) {
				mc = mc.Clone()
				model.Set(mc, model.Column.Length, model.Defaults, l)
			}
			pk = append(pk, b.column(t, mc, typ, false))
		}
		if id.Generator != nil && len(pk) == 1 {
			switch id.Generator.Class() {
			case "identity", "native":
				b.autoIncrement(pk[0])
			}
		}
	case *model.CompositeIdMapping:
		for _, k := range id.Keys {
			switch k := k.(type) {
			case *model.KeyPropertyMapping:
				typ := model.Get(k, model.KeyProperty.Type)
				for _, mc := range k.Columns.Columns() {
					pk = append(pk, b.column(t, mc, typ, false))
				}
			case *model.KeyManyToOneMapping:
				target := model.Get(k, model.KeyManyToOne.Class)
				if target == "" && k.Member != nil {
					target = k.Member.Type.String()
				}
				ref, ok := b.lookup(target)
				if !ok {
					b.errorf("%s: key reference %s targets unmapped entity %s", c.Name(), k.Name(), target)
					continue
				}
				fk := model.Get(k, model.KeyManyToOne.ForeignKey)
				pk = append(pk, b.reference(t, k.Columns.Columns(), ref, fk, false)...)
			}
		}
	}
	if len(pk) > 0 {
		t.SetPrimaryKey(schema.NewPrimaryKey(pk...))
	}
	return pk
}

func (b *builder) autoIncrement(c *schema.Column) {
	switch b.e.dialect {
	case dialect.MySQL:
		c.AddAttrs(&mysql.AutoIncrement{})
	case dialect.SQLite:
		c.Type.Type = &schema.IntegerType{T: "integer"}
		c.AddAttrs(&sqlite.AutoIncrement{})
	case dialect.Postgres:
		serial := "serial"
		if it, ok := c.Type.Type.(*schema.IntegerType); ok && it.T == "bigint" {
			serial = "bigserial"
		}
		c.Type.Type = &postgres.SerialType{T: serial}
	}
}

// class adds the members of c and its subclasses.
func (b *builder) class(c *model.ClassMapping) {
	ent := b.entities[c.Type.String()]
	b.primaryKey(ent)
	t := ent.table
	if v := c.Version; v != nil {
		for _, mc := range v.Columns.Columns() {
			b.column(t, mc, model.Get(v, model.Version.Type), false)
		}
	}
	if d := c.Discriminator; d != nil && model.Get(d, model.Discriminator.Formula) == "" {
		cols := d.Columns.Columns()
		if len(cols) == 0 {
			cols = []*model.ColumnMapping{model.NewColumn("discriminator", model.Defaults)}
		}
		notNull, set := model.Lookup(d, model.Discriminator.NotNull)
		for _, mc := range cols {
			if l, ok := model.Lookup(d, model.Discriminator.Length); ok {
				mc = mc.Clone()
				model.Set(mc, model.Column.Length, model.Defaults, l)
			}
			b.column(t, mc, model.Get(d, model.Discriminator.Type), set && !notNull)
		}
	}
	if n := c.NaturalId; n != nil {
		uk := "UK_" + t.Name + "_natural"
		for _, p := range n.Properties {
			for _, mc := range p.Columns.Columns() {
				b.uniqueKey(t, uk, b.column(t, mc, model.Get(p, model.Property.Type), false))
			}
		}
		for _, r := range n.References {
			if ref, ok := b.target(c.Name(), r); ok {
				for _, col := range b.reference(t, r.Columns.Columns(), ref, model.Get(r, model.ManyToOne.ForeignKey), false) {
					b.uniqueKey(t, uk, col)
				}
			}
		}
	}
	b.members(ent, c.Type, t, &c.Members, false)
	for _, s := range c.Subclasses {
		b.subclass(s)
	}
}

func (b *builder) subclass(s *model.SubclassMapping) {
	ent := b.entities[s.Type.String()]
	b.primaryKey(ent)
	if s.SubclassType == model.UnionSubclass {
		// A union subclass table repeats every inherited column.
		for _, col := range ent.parent.table.Columns {
			if _, ok := ent.table.Column(col.Name); !ok {
				ent.table.AddColumns(schema.NewColumn(col.Name).SetType(col.Type.Type).SetNull(col.Type.Null))
			}
		}
	}
	// Plain subclass columns share the root table and must accept rows of
	// sibling types.
	b.members(ent, s.Type, ent.table, &s.Members, s.SubclassType == model.PlainSubclass)
	for _, c := range s.Subclasses {
		b.subclass(c)
	}
}

func (b *builder) target(owner string, r *model.ManyToOneMapping) (*entity, bool) {
	name := model.Get(r, model.ManyToOne.Class)
	if name == "" && r.Target() != nil {
		name = r.Target().String()
	}
	ent, ok := b.lookup(name)
	if !ok && r.Target() != nil {
		ent, ok = b.lookup(r.Target().String())
	}
	if !ok {
		b.errorf("%s.%s references unmapped entity %s", owner, r.Name(), name)
	}
	return ent, ok
}

// members adds the columns and tables of m. owner is the entity holding the
// members and t the table receiving their columns.
func (b *builder) members(owner *entity, ownerType *types.Type, t *schema.Table, m *model.Members, nullable bool) {
	for _, p := range m.Properties {
		if model.Get(p, model.Property.Formula) != "" {
			continue
		}
		for _, mc := range p.Columns.Columns() {
			b.column(t, mc, model.Get(p, model.Property.Type), true, nullable)
		}
	}
	for _, r := range m.References {
		if model.Get(r, model.ManyToOne.Formula) != "" {
			continue
		}
		ref, ok := b.target(ownerType.String(), r)
		if !ok {
			continue
		}
		notNull := model.Get(r, model.ManyToOne.NotNull) && !nullable
		cols := b.reference(t, r.Columns.Columns(), ref, model.Get(r, model.ManyToOne.ForeignKey), !notNull)
		if model.Get(r, model.ManyToOne.Unique) {
			b.uniqueKey(t, fmt.Sprintf("%s_%s_key", t.Name, joinNames(cols)), cols...)
		}
		if uk := model.Get(r, model.ManyToOne.UniqueKey); uk != "" {
			b.uniqueKey(t, uk, cols...)
		}
		if idx := model.Get(r, model.ManyToOne.Index); idx != "" {
			b.index(t, idx, false, cols...)
		}
	}
	for _, a := range m.Anys {
		for _, mc := range a.TypeColumns.Columns() {
			b.column(t, mc, "String", true)
		}
		for _, mc := range a.IdentifierColumns.Columns() {
			b.column(t, mc, model.Get(a, model.Any.IdType), true)
		}
	}
	for _, c := range m.Components {
		switch c := c.(type) {
		case *model.ComponentMapping:
			b.members(owner, ownerType, t, &c.Members, nullable)
		case *model.ReferenceComponentMapping:
			b.errorf("%s.%s: component reference is not resolved", ownerType, c.MemberName())
		}
	}
	for _, c := range m.Collections {
		b.collection(owner, ownerType, c)
	}
	for _, j := range m.Joins {
		jt := b.table(model.Get(j, model.Join.Table), model.Get(j, model.Join.Schema))
		key := b.reference(jt, j.Key.Columns.Columns(), owner, model.Get(j.Key, model.Key.ForeignKey), false)
		if len(key) > 0 && jt.PrimaryKey == nil {
			jt.SetPrimaryKey(schema.NewPrimaryKey(key...))
		}
		b.members(owner, ownerType, jt, &j.Members, model.Get(j, model.Join.Optional))
	}
}

func (b *builder) collection(owner *entity, ownerType *types.Type, c *model.CollectionMapping) {
	fk := model.Get(c.Key, model.Key.ForeignKey)
	if otm, ok := c.OneToMany(); ok {
		child, ok := b.lookup(model.Get(otm, model.OneToMany.Class))
		if !ok && otm.ChildType != nil {
			child, ok = b.lookup(otm.ChildType.String())
		}
		if !ok {
			b.errorf("%s.%s: one-to-many targets unmapped entity %s", ownerType, c.Name(), model.Get(otm, model.OneToMany.Class))
			return
		}
		// The key and index live on the child table.
		b.reference(child.table, c.Key.Columns.Columns(), owner, fk, !model.Get(c.Key, model.Key.NotNull))
		b.collectionIndex(child.table, c, true)
		return
	}
	name := c.TableName()
	if name == "" {
		name = ownerType.ShortName() + "_" + c.Name()
	}
	ns := model.Get(c, model.Collection.Schema)
	if _, ok := b.schemaOf(ns).Table(unquote(name)); ok {
		// The other side of the association created the table.
		return
	}
	t := b.table(name, ns)
	key := b.reference(t, c.Key.Columns.Columns(), owner, fk, false)
	var element []*schema.Column
	switch {
	case c.Relationship != nil:
		mm, ok := c.ManyToMany()
		if !ok {
			return
		}
		child, ok := b.lookup(model.Get(mm, model.ManyToMany.Class))
		if !ok && mm.ChildType != nil {
			child, ok = b.lookup(mm.ChildType.String())
		}
		if !ok {
			b.errorf("%s.%s: many-to-many targets unmapped entity %s", ownerType, c.Name(), model.Get(mm, model.ManyToMany.Class))
			return
		}
		element = b.reference(t, mm.Columns.Columns(), child, model.Get(mm, model.ManyToMany.ForeignKey), false)
	case c.Element != nil:
		typ := model.Get(c.Element, model.Element.Type)
		if typ == "" && c.ChildType != nil {
			typ = model.EngineTypeName(c.ChildType)
		}
		cols := c.Element.Columns.Columns()
		if len(cols) == 0 {
			cols = []*model.ColumnMapping{model.NewColumn("value", model.Defaults)}
		}
		for _, mc := range cols {
			element = append(element, b.column(t, mc, typ, false))
		}
	case c.CompositeElement != nil:
		b.compositeElement(t, ownerType, c.CompositeElement)
	}
	index := b.collectionIndex(t, c, false)
	switch {
	case len(index) > 0:
		t.SetPrimaryKey(schema.NewPrimaryKey(append(slices.Clone(key), index...)...))
	case c.Kind == model.KindSet && len(element) > 0:
		t.SetPrimaryKey(schema.NewPrimaryKey(append(slices.Clone(key), element...)...))
	}
}

func (b *builder) compositeElement(t *schema.Table, ownerType *types.Type, ce *model.CompositeElementMapping) {
	for _, p := range ce.Properties {
		for _, mc := range p.Columns.Columns() {
			b.column(t, mc, model.Get(p, model.Property.Type), true)
		}
	}
	for _, r := range ce.References {
		if ref, ok := b.target(ownerType.String(), r); ok {
			b.reference(t, r.Columns.Columns(), ref, model.Get(r, model.ManyToOne.ForeignKey), true)
		}
	}
	for _, n := range ce.Nested {
		b.compositeElement(t, ownerType, &n.CompositeElementMapping)
	}
}

// collectionIndex adds the list index or map key columns of c to t.
func (b *builder) collectionIndex(t *schema.Table, c *model.CollectionMapping, nullable bool) []*schema.Column {
	if c.Index == nil {
		return nil
	}
	typ := model.Get(c.Index, model.Index.Type)
	if typ == "" {
		typ = "Int32"
	}
	var cols []*schema.Column
	for _, mc := range c.Index.Columns.Columns() {
		cols = append(cols, b.column(t, mc, typ, nullable))
	}
	return cols
}

func (b *builder) schemaOf(ns string) *schema.Schema {
	if ns == "" {
		ns = b.e.schema
	}
	if s, ok := b.schemas[ns]; ok {
		return s
	}
	return schema.New(ns)
}

// reference adds the columns of cols to t as a foreign key to the primary
// key of ref. Existing columns are reused.
func (b *builder) reference(t *schema.Table, cols []*model.ColumnMapping, ref *entity, symbol string, nullable bool) []*schema.Column {
	pk := b.primaryKey(ref)
	if len(pk) == 0 {
		b.errorf("%s: referenced table %s has no primary key", t.Name, ref.table.Name)
		return nil
	}
	if len(cols) == 0 {
		for _, p := range pk {
			cols = append(cols, model.NewColumn(ref.table.Name+"_"+p.Name, model.Defaults))
		}
	}
	if len(cols) != len(pk) {
		b.errorf("%s: %d columns reference the %d primary key columns of %s", t.Name, len(cols), len(pk), ref.table.Name)
		return nil
	}
	out := make([]*schema.Column, len(cols))
	for i, mc := range cols {
		name := unquote(mc.Name())
		col, ok := t.Column(name)
		if !ok {
			null := nullable && !model.Get(mc, model.Column.NotNull)
			col = schema.NewColumn(name).SetType(refType(pk[i].Type.Type)).SetNull(null)
			t.AddColumns(col)
			b.columnIndexes(t, mc, col)
		}
		out[i] = col
	}
	if symbol == "" {
		symbol = fmt.Sprintf("%s_%s_fk", t.Name, joinNames(out))
	}
	if _, ok := t.ForeignKey(symbol); !ok && !(t == ref.table && sameColumns(out, pk)) {
		t.AddForeignKeys(schema.NewForeignKey(symbol).
			AddColumns(out...).
			SetRefTable(ref.table).
			AddRefColumns(pk...))
	}
	return out
}

// refType returns the column type of a foreign key to a column of type t.
func refType(t schema.Type) schema.Type {
	if s, ok := t.(*postgres.SerialType); ok {
		if s.T == "bigserial" {
			return &schema.IntegerType{T: "bigint"}
		}
		return &schema.IntegerType{T: "integer"}
	}
	return t
}

// column adds the column mc of the given engine type to t. The optional
// forced flag makes the column nullable regardless of the mapping.
func (b *builder) column(t *schema.Table, mc *model.ColumnMapping, engineType string, nullable bool, forced ...bool) *schema.Column {
	name := unquote(mc.Name())
	if col, ok := t.Column(name); ok {
		return col
	}
	typ, err := b.e.columnType(engineType, mc)
	if err != nil {
		b.errorf("%s.%s: %v", t.Name, name, err)
		typ = &schema.StringType{T: "text"}
	}
	null := nullable && !model.Get(mc, model.Column.NotNull)
	if len(forced) > 0 && forced[0] {
		null = true
	}
	col := schema.NewColumn(name).SetType(typ).SetNull(null)
	if d := model.Get(mc, model.Column.Default); d != "" {
		col.SetDefault(&schema.RawExpr{X: d})
	}
	t.AddColumns(col)
	b.columnIndexes(t, mc, col)
	return col
}

func (b *builder) columnIndexes(t *schema.Table, mc *model.ColumnMapping, col *schema.Column) {
	if model.Get(mc, model.Column.Unique) {
		b.uniqueKey(t, fmt.Sprintf("%s_%s_key", t.Name, col.Name), col)
	}
	if uk := model.Get(mc, model.Column.UniqueKey); uk != "" {
		b.uniqueKey(t, uk, col)
	}
	if idx := model.Get(mc, model.Column.Index); idx != "" {
		b.index(t, idx, false, col)
	}
	if chk := model.Get(mc, model.Column.Check); chk != "" {
		t.AddChecks(schema.NewCheck().SetName(fmt.Sprintf("%s_%s_check", t.Name, col.Name)).SetExpr(chk))
	}
}

func (b *builder) uniqueKey(t *schema.Table, name string, cols ...*schema.Column) {
	b.index(t, name, true, cols...)
}

// index adds cols to the index name of t, creating it when missing.
func (b *builder) index(t *schema.Table, name string, unique bool, cols ...*schema.Column) {
	idx, ok := t.Index(name)
	if !ok {
		idx = schema.NewIndex(name).SetUnique(unique)
		t.AddIndexes(idx)
	}
	for _, c := range cols {
		if !hasPart(idx, c) {
			idx.AddColumns(c)
		}
	}
}

func hasPart(idx *schema.Index, c *schema.Column) bool {
	for _, p := range idx.Parts {
		if p.C == c {
			return true
		}
	}
	return false
}

func sameColumns(a, b []*schema.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinNames(cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, "_")
}
