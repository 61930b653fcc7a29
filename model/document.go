package model

import (
	"slices"
)

// Bucket collects the top-level fragments of one compilation before the
// inheritance tree is assembled.
type Bucket struct {
	Classes    []*ClassMapping
	Subclasses []*SubclassMapping
	Filters    []*FilterDefinitionMapping
	Components []*ExternalComponentMapping
	Imports    []*ImportMapping
}

// Add files each fragment into its category.
func (b *Bucket) Add(ms ...TopMapping) {
	for _, m := range ms {
		m.AddTo(b)
	}
}

// Document is the root of a compiled mapping, serialized as
// hibernate-mapping.
type Document struct {
	store
	Classes []*ClassMapping
	Filters []*FilterDefinitionMapping
	Imports []*ImportMapping
}

// Doc selectors.
var Doc = struct {
	DefaultAccess  Attr[*Document, string]
	DefaultCascade Attr[*Document, string]
	DefaultLazy    Attr[*Document, bool]
	AutoImport     Attr[*Document, bool]
	Schema         Attr[*Document, string]
	Catalog        Attr[*Document, string]
	Namespace      Attr[*Document, string]
	Assembly       Attr[*Document, string]
}{
	DefaultAccess:  NewAttr[*Document, string]("default-access"),
	DefaultCascade: NewAttr[*Document, string]("default-cascade"),
	DefaultLazy:    NewAttr[*Document, bool]("default-lazy"),
	AutoImport:     NewAttr[*Document, bool]("auto-import"),
	Schema:         NewAttr[*Document, string]("schema"),
	Catalog:        NewAttr[*Document, string]("catalog"),
	Namespace:      NewAttr[*Document, string]("namespace"),
	Assembly:       NewAttr[*Document, string]("assembly"),
}

// NewDocument returns an empty document.
func NewDocument() *Document { return &Document{} }

// Name identifies the document: the short name of its first class, or
// "mappings" when it holds no class.
func (d *Document) Name() string {
	if len(d.Classes) == 0 {
		return "mappings"
	}
	return d.Classes[0].Type.ShortName()
}

// Class returns the class mapping with the given name.
func (d *Document) Class(name string) (*ClassMapping, bool) {
	for _, c := range d.Classes {
		if c.Name() == name || c.Type.ShortName() == name {
			return c, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	n := &Document{store: d.clone()}
	for _, c := range d.Classes {
		n.Classes = append(n.Classes, c.Clone())
	}
	for _, f := range d.Filters {
		n.Filters = append(n.Filters, f.Clone())
	}
	for _, i := range d.Imports {
		n.Imports = append(n.Imports, i.Clone())
	}
	return n
}

// Split returns one document per class. Imports travel with the class they
// name; filter definitions and unmatched imports go to a trailing document.
func (d *Document) Split() []*Document {
	var docs []*Document
	rest := &Document{store: d.clone(), Filters: d.Filters}
	imports := slices.Clone(d.Imports)
	for _, c := range d.Classes {
		doc := &Document{store: d.clone(), Classes: []*ClassMapping{c}}
		imports = slices.DeleteFunc(imports, func(i *ImportMapping) bool {
			if i.Type.Is(c.Type) {
				doc.Imports = append(doc.Imports, i)
				return true
			}
			return false
		})
		docs = append(docs, doc)
	}
	rest.Imports = imports
	if len(rest.Filters) > 0 || len(rest.Imports) > 0 {
		docs = append(docs, rest)
	}
	return docs
}

// Merge combines documents into one, keeping the attributes of the first.
func Merge(docs ...*Document) *Document {
	out := NewDocument()
	for i, d := range docs {
		if i == 0 {
			out.store = d.clone()
		}
		out.Classes = append(out.Classes, d.Classes...)
		out.Filters = append(out.Filters, d.Filters...)
		out.Imports = append(out.Imports, d.Imports...)
	}
	return out
}
