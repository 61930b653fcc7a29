package model

import (
	"slices"

	"github.com/syssam/fluentmap/types"
)

// IdMapping is a single-column identifier.
type IdMapping struct {
	store
	Member    *types.Member
	Columns   LayeredColumns
	Generator *GeneratorMapping
}

// Id selectors.
var Id = struct {
	Name         Attr[*IdMapping, string]
	Access       Attr[*IdMapping, string]
	Type         Attr[*IdMapping, string]
	UnsavedValue Attr[*IdMapping, string]
	Length       Attr[*IdMapping, int]
}{
	Name:         NewAttr[*IdMapping, string]("name"),
	Access:       NewAttr[*IdMapping, string]("access"),
	Type:         NewAttr[*IdMapping, string]("type"),
	UnsavedValue: NewAttr[*IdMapping, string]("unsaved-value"),
	Length:       NewAttr[*IdMapping, int]("length"),
}

// NewId returns an identifier for member m with a default column and type.
// A nil member maps an identifier with no backing property.
func NewId(m *types.Member) *IdMapping {
	id := &IdMapping{Member: m}
	if m != nil {
		Set(id, Id.Name, Defaults, m.Name)
		Set(id, Id.Type, Defaults, EngineTypeName(m.Type))
		id.Columns.Add(Defaults, NewColumn(m.Name, Defaults))
	}
	return id
}

// Name returns the identifier property name.
func (i *IdMapping) Name() string { return Get(i, Id.Name) }

// ColumnSet returns the layered columns.
func (i *IdMapping) ColumnSet() *LayeredColumns { return &i.Columns }

// Clone returns a deep copy.
func (i *IdMapping) Clone() *IdMapping {
	n := &IdMapping{store: i.clone(), Member: i.Member, Columns: i.Columns.Clone()}
	if i.Generator != nil {
		n.Generator = i.Generator.Clone()
	}
	return n
}

// Param is an ordered generator parameter.
type Param struct {
	Name  string
	Value string
}

// GeneratorMapping describes how identifier values are produced.
type GeneratorMapping struct {
	store
	Params []Param
}

// Generator selectors.
var Generator = struct {
	Class Attr[*GeneratorMapping, string]
}{
	Class: NewAttr[*GeneratorMapping, string]("class"),
}

// NewGenerator returns a generator of the given class at layer.
func NewGenerator(class string, layer Layer) *GeneratorMapping {
	g := &GeneratorMapping{}
	Set(g, Generator.Class, layer, class)
	return g
}

// Class returns the generator class.
func (g *GeneratorMapping) Class() string { return Get(g, Generator.Class) }

// AddParam appends or replaces a parameter.
func (g *GeneratorMapping) AddParam(name, value string) {
	for i, p := range g.Params {
		if p.Name == name {
			g.Params[i].Value = value
			return
		}
	}
	g.Params = append(g.Params, Param{Name: name, Value: value})
}

// Clone returns a deep copy.
func (g *GeneratorMapping) Clone() *GeneratorMapping {
	return &GeneratorMapping{store: g.clone(), Params: slices.Clone(g.Params)}
}

// CompositeIdMapping is a multi-part identifier.
type CompositeIdMapping struct {
	store
	Member *types.Member
	Keys   []Node // *KeyPropertyMapping or *KeyManyToOneMapping
}

// CompositeId selectors.
var CompositeId = struct {
	Name         Attr[*CompositeIdMapping, string]
	Access       Attr[*CompositeIdMapping, string]
	Class        Attr[*CompositeIdMapping, string]
	Mapped       Attr[*CompositeIdMapping, bool]
	UnsavedValue Attr[*CompositeIdMapping, string]
}{
	Name:         NewAttr[*CompositeIdMapping, string]("name"),
	Access:       NewAttr[*CompositeIdMapping, string]("access"),
	Class:        NewAttr[*CompositeIdMapping, string]("class"),
	Mapped:       NewAttr[*CompositeIdMapping, bool]("mapped"),
	UnsavedValue: NewAttr[*CompositeIdMapping, string]("unsaved-value"),
}

// AddKeyProperty appends a key property.
func (c *CompositeIdMapping) AddKeyProperty(k *KeyPropertyMapping) { c.Keys = append(c.Keys, k) }

// AddKeyManyToOne appends a key reference.
func (c *CompositeIdMapping) AddKeyManyToOne(k *KeyManyToOneMapping) { c.Keys = append(c.Keys, k) }

// Clone returns a deep copy.
func (c *CompositeIdMapping) Clone() *CompositeIdMapping {
	n := &CompositeIdMapping{store: c.clone(), Member: c.Member}
	for _, k := range c.Keys {
		switch k := k.(type) {
		case *KeyPropertyMapping:
			n.Keys = append(n.Keys, k.Clone())
		case *KeyManyToOneMapping:
			n.Keys = append(n.Keys, k.Clone())
		}
	}
	return n
}

// KeyPropertyMapping is a scalar part of a composite identifier.
type KeyPropertyMapping struct {
	store
	Member  *types.Member
	Columns LayeredColumns
}

// KeyProperty selectors.
var KeyProperty = struct {
	Name   Attr[*KeyPropertyMapping, string]
	Access Attr[*KeyPropertyMapping, string]
	Type   Attr[*KeyPropertyMapping, string]
	Length Attr[*KeyPropertyMapping, int]
}{
	Name:   NewAttr[*KeyPropertyMapping, string]("name"),
	Access: NewAttr[*KeyPropertyMapping, string]("access"),
	Type:   NewAttr[*KeyPropertyMapping, string]("type"),
	Length: NewAttr[*KeyPropertyMapping, int]("length"),
}

// NewKeyProperty returns a key property for m.
func NewKeyProperty(m *types.Member) *KeyPropertyMapping {
	k := &KeyPropertyMapping{Member: m}
	Set(k, KeyProperty.Name, Defaults, m.Name)
	Set(k, KeyProperty.Type, Defaults, EngineTypeName(m.Type))
	k.Columns.Add(Defaults, NewColumn(m.Name, Defaults))
	return k
}

// Name returns the property name.
func (k *KeyPropertyMapping) Name() string { return Get(k, KeyProperty.Name) }

// ColumnSet returns the layered columns.
func (k *KeyPropertyMapping) ColumnSet() *LayeredColumns { return &k.Columns }

// Clone returns a deep copy.
func (k *KeyPropertyMapping) Clone() *KeyPropertyMapping {
	return &KeyPropertyMapping{store: k.clone(), Member: k.Member, Columns: k.Columns.Clone()}
}

// KeyManyToOneMapping is a reference part of a composite identifier.
type KeyManyToOneMapping struct {
	store
	Member  *types.Member
	Columns LayeredColumns
}

// KeyManyToOne selectors.
var KeyManyToOne = struct {
	Name       Attr[*KeyManyToOneMapping, string]
	Access     Attr[*KeyManyToOneMapping, string]
	Class      Attr[*KeyManyToOneMapping, string]
	ForeignKey Attr[*KeyManyToOneMapping, string]
	Lazy       Attr[*KeyManyToOneMapping, string]
	NotFound   Attr[*KeyManyToOneMapping, string]
}{
	Name:       NewAttr[*KeyManyToOneMapping, string]("name"),
	Access:     NewAttr[*KeyManyToOneMapping, string]("access"),
	Class:      NewAttr[*KeyManyToOneMapping, string]("class"),
	ForeignKey: NewAttr[*KeyManyToOneMapping, string]("foreign-key"),
	Lazy:       NewAttr[*KeyManyToOneMapping, string]("lazy"),
	NotFound:   NewAttr[*KeyManyToOneMapping, string]("not-found"),
}

// NewKeyManyToOne returns a key reference for m.
func NewKeyManyToOne(m *types.Member) *KeyManyToOneMapping {
	k := &KeyManyToOneMapping{Member: m}
	Set(k, KeyManyToOne.Name, Defaults, m.Name)
	Set(k, KeyManyToOne.Class, Defaults, m.Type.String())
	k.Columns.Add(Defaults, NewColumn(m.Name+"_id", Defaults))
	return k
}

// Name returns the property name.
func (k *KeyManyToOneMapping) Name() string { return Get(k, KeyManyToOne.Name) }

// ColumnSet returns the layered columns.
func (k *KeyManyToOneMapping) ColumnSet() *LayeredColumns { return &k.Columns }

// Clone returns a deep copy.
func (k *KeyManyToOneMapping) Clone() *KeyManyToOneMapping {
	return &KeyManyToOneMapping{store: k.clone(), Member: k.Member, Columns: k.Columns.Clone()}
}

func cloneIdentity(id Identity) Identity {
	switch id := id.(type) {
	case *IdMapping:
		return id.Clone()
	case *CompositeIdMapping:
		return id.Clone()
	default:
		return nil
	}
}

// EngineTypeName returns the engine type name for t. Non-primitive types
// map to their qualified name.
func EngineTypeName(t *types.Type) string {
	if t == nil {
		return ""
	}
	if t.Engine != "" {
		return t.Engine
	}
	return t.String()
}
