package conventions

import (
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/fluentmap/model"
)

// Table builds class conventions naming tables.
var Table tableHelper

type tableHelper struct{}

// Is names the table of every class from fn.
func (tableHelper) Is(fn func(*ClassInstance) string) ClassConvention {
	return classFunc(func(i *ClassInstance) { i.Table(fn(i)) })
}

// PrimaryKey builds id conventions.
var PrimaryKey = struct {
	Name primaryKeyName
}{}

type primaryKeyName struct{}

// Is names the identifier column of every class from fn.
func (primaryKeyName) Is(fn func(*IdInstance) string) IdConvention {
	return idFunc(func(i *IdInstance) { i.Column(fn(i)) })
}

// ForeignKey builds conventions naming foreign key columns: reference
// columns, one-to-many keys, the child column of many-to-many tables and
// joined-subclass keys.
var ForeignKey foreignKeyHelper

type foreignKeyHelper struct{}

// EndsWith names foreign keys after the referenced type with suffix, such as
// "CustomerId" for EndsWith("Id").
func (h foreignKeyHelper) EndsWith(suffix string) *ForeignKeyConvention {
	return h.Format(func(name string) string { return name + suffix })
}

// Format names foreign keys by passing the referenced name to fn. References
// pass the member name; collections pass the type name.
func (foreignKeyHelper) Format(fn func(name string) string) *ForeignKeyConvention {
	return &ForeignKeyConvention{format: fn}
}

// ForeignKeyConvention names foreign key columns.
type ForeignKeyConvention struct {
	format func(string) string
}

func (*ForeignKeyConvention) AllowMultiple() {}

// ApplyReference implements ReferenceConvention.
func (f *ForeignKeyConvention) ApplyReference(i *ReferenceInstance) {
	i.Column(f.format(i.Name()))
}

// ApplyCollection implements CollectionConvention. The key names the
// containing entity; a many-to-many child column names the child.
func (f *ForeignKeyConvention) ApplyCollection(i *CollectionInstance) {
	if e := i.EntityType(); e != nil {
		i.Key().Column(f.format(e.ShortName()))
	}
	if i.IsManyToMany() && i.ChildType() != nil {
		i.ChildKeyColumn(f.format(i.ChildType().ShortName()))
	}
}

// ApplySubclass implements SubclassConvention.
func (f *ForeignKeyConvention) ApplySubclass(i *SubclassInstance) {
	if i.SubclassType() != model.JoinedSubclass {
		return
	}
	if i.m.Extends != nil {
		i.Key().Column(f.format(i.m.Extends.ShortName()))
		return
	}
	if base := i.EntityType().Base; base != nil {
		i.Key().Column(f.format(base.ShortName()))
	}
}

// DefaultLazy builds document conventions for the default lazy setting.
var DefaultLazy defaultLazyHelper

type defaultLazyHelper struct{}

// Always makes classes and collections lazy unless mapped otherwise.
func (defaultLazyHelper) Always() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultLazy(true) })
}

// Never disables lazy loading unless mapped otherwise.
func (defaultLazyHelper) Never() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultLazy(false) })
}

// DefaultCascade builds document conventions for the default cascade style.
var DefaultCascade defaultCascadeHelper

type defaultCascadeHelper struct{}

// All cascades every operation.
func (defaultCascadeHelper) All() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultCascade("all") })
}

// SaveUpdate cascades saves and updates.
func (defaultCascadeHelper) SaveUpdate() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultCascade("save-update") })
}

// None cascades nothing.
func (defaultCascadeHelper) None() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultCascade("none") })
}

// DefaultAccess builds document conventions for the default access strategy.
var DefaultAccess defaultAccessHelper

type defaultAccessHelper struct{}

// Property accesses members through their accessors.
func (defaultAccessHelper) Property() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultAccess("property") })
}

// Field accesses backing fields directly.
func (defaultAccessHelper) Field() DocumentConvention {
	return documentFunc(func(d *DocumentInstance) { d.DefaultAccess("field") })
}

// PluralizeTableNames names tables after the pluralized snake case entity
// name: Customer becomes customers, OrderLine becomes order_lines.
func PluralizeTableNames() ClassConvention {
	return Table.Is(func(i *ClassInstance) string {
		return TableName(i.EntityType().ShortName())
	})
}

// TableName returns the pluralized snake case form of a type name.
func TableName(name string) string {
	return strings.ToLower(inflect.Underscore(inflect.Pluralize(name)))
}

type classFunc func(*ClassInstance)

func (f classFunc) ApplyClass(i *ClassInstance) { f(i) }
func (classFunc) AllowMultiple()                {}

type idFunc func(*IdInstance)

func (f idFunc) ApplyId(i *IdInstance) { f(i) }
func (idFunc) AllowMultiple()          {}

type documentFunc func(*DocumentInstance)

func (f documentFunc) ApplyDocument(d *DocumentInstance) { f(d) }
func (documentFunc) AllowMultiple()                      {}
