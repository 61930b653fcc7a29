// Package hbm serializes compiled documents to the engine's
// hibernate-mapping XML.
//
// Elements follow model.Children, which yields them in the order the mapping
// schema requires (cache first under class, identifier before properties,
// properties before collections, subclasses last). Attributes are the
// resolved attribute values of each node, named by their selectors.
package hbm

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/syssam/fluentmap/model"
)

// Namespace is the mapping schema namespace.
const Namespace = "urn:nhibernate-mapping-2.2"

// UnresolvedComponentError reports a component reference left in a
// document. References are resolved during compilation, so one can only be
// met in a hand-built document.
type UnresolvedComponentError struct {
	Member string
}

// Error implements the error interface.
func (e *UnresolvedComponentError) Error() string {
	return fmt.Sprintf("hbm: component reference %q is not resolved", e.Member)
}

// Marshal returns the XML form of doc.
func Marshal(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the XML form of doc to w.
func Write(w io.Writer, doc *model.Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encode(enc, doc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encode(enc *xml.Encoder, n model.Node) error {
	if r, ok := n.(*model.ReferenceComponentMapping); ok {
		return &UnresolvedComponentError{Member: r.MemberName()}
	}
	start := xml.StartElement{Name: xml.Name{Local: elementName(n)}, Attr: attributes(n)}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range model.Children(n) {
		if err := encode(enc, c); err != nil {
			return err
		}
	}
	if err := params(enc, n); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// params writes the parameter lists that are not nodes.
func params(enc *xml.Encoder, n model.Node) error {
	var (
		name string
		list []model.Param
		attr string
	)
	switch n := n.(type) {
	case *model.GeneratorMapping:
		name, list = "param", n.Params
	case *model.FilterDefinitionMapping:
		name, list, attr = "filter-param", n.Parameters, "type"
	default:
		return nil
	}
	for _, p := range list {
		start := xml.StartElement{Name: xml.Name{Local: name}}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: p.Name})
		if attr != "" {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attr}, Value: p.Value})
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if attr == "" {
			if err := enc.EncodeToken(xml.CharData(p.Value)); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	return nil
}

func elementName(n model.Node) string {
	switch n := n.(type) {
	case *model.Document:
		return "hibernate-mapping"
	case *model.ClassMapping:
		return "class"
	case *model.SubclassMapping:
		return n.SubclassType.String()
	case *model.IdMapping:
		return "id"
	case *model.GeneratorMapping:
		return "generator"
	case *model.CompositeIdMapping:
		return "composite-id"
	case *model.KeyPropertyMapping:
		return "key-property"
	case *model.KeyManyToOneMapping:
		return "key-many-to-one"
	case *model.DiscriminatorMapping:
		return "discriminator"
	case *model.VersionMapping:
		return "version"
	case *model.CacheMapping:
		return "cache"
	case *model.NaturalIdMapping:
		return "natural-id"
	case *model.PropertyMapping:
		return "property"
	case *model.ColumnMapping:
		return "column"
	case *model.ManyToOneMapping:
		return "many-to-one"
	case *model.OneToOneMapping:
		return "one-to-one"
	case *model.AnyMapping:
		return "any"
	case *model.MetaValueMapping:
		return "meta-value"
	case *model.ComponentMapping:
		if n.Kind == model.DynamicComponent {
			return "dynamic-component"
		}
		return "component"
	case *model.ParentMapping:
		return "parent"
	case *model.CollectionMapping:
		return string(n.Kind)
	case *model.KeyMapping:
		return "key"
	case *model.IndexMapping:
		if n.Kind == "" {
			return string(model.PlainIndex)
		}
		return string(n.Kind)
	case *model.ElementMapping:
		return "element"
	case *model.CompositeElementMapping:
		return "composite-element"
	case *model.NestedCompositeElementMapping:
		return "nested-composite-element"
	case *model.OneToManyMapping:
		return "one-to-many"
	case *model.ManyToManyMapping:
		return "many-to-many"
	case *model.JoinMapping:
		return "join"
	case *model.FilterMapping:
		return "filter"
	case *model.FilterDefinitionMapping:
		return "filter-def"
	case *model.ImportMapping:
		return "import"
	}
	return "unknown"
}

// skipped lists the attributes that steer compilation and have no place in
// the element.
func skipped(n model.Node) []string {
	switch n := n.(type) {
	case *model.ClassMapping:
		return []string{model.Class.UnionSubclass.Name()}
	case *model.ComponentMapping:
		return []string{model.Component.ColumnPrefix.Name()}
	case *model.SubclassMapping:
		if n.SubclassType == model.PlainSubclass {
			return []string{
				model.Subclass.Table.Name(), model.Subclass.Schema.Name(), model.Subclass.Catalog.Name(),
				model.Subclass.Check.Name(), model.Subclass.Subselect.Name(),
			}
		}
		return []string{model.Subclass.DiscriminatorValue.Name()}
	}
	return nil
}

// attributes returns the resolved attributes of n, name first and the rest
// sorted.
func attributes(n model.Node) []xml.Attr {
	var out []xml.Attr
	if _, ok := n.(*model.Document); ok {
		out = append(out, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace})
	}
	skip := skipped(n)
	names := n.Attrs().Names()
	if i := slices.Index(names, "name"); i > 0 {
		names = append([]string{"name"}, slices.Delete(names, i, i+1)...)
	}
	for _, name := range names {
		if slices.Contains(skip, name) {
			continue
		}
		v, ok := format(n.Attrs().Get(name))
		if !ok {
			continue
		}
		out = append(out, xml.Attr{Name: xml.Name{Local: name}, Value: v})
	}
	if nested, ok := n.(*model.NestedCompositeElementMapping); ok && !slices.Contains(names, "name") {
		out = append([]xml.Attr{{Name: xml.Name{Local: "name"}, Value: nested.Name()}}, out...)
	}
	return out
}

func format(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
