// Package types provides the abstract type graph that mappings are declared
// against. Each Type records its declared base type, declared interfaces and
// members once, so inheritance questions are answered by walking explicit
// edges instead of querying a runtime type system.
package types

import (
	"slices"
	"strings"
)

// Kind classifies a Type.
type Kind uint8

// Type kinds.
const (
	KindStruct Kind = iota
	KindInterface
	KindPrimitive
	KindSlice
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindPrimitive:
		return "primitive"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Type is a node in the type graph.
type Type struct {
	Name    string
	Package string
	Kind    Kind
	// Base is the declared base type. A nil Base means Object.
	Base *Type
	// Interfaces lists the interfaces declared directly on the type. For an
	// interface type these are the interfaces it extends.
	Interfaces []*Type
	Abstract   bool
	Members    []*Member
	// Key and Elem describe collection types.
	Key  *Type
	Elem *Type
	// Engine is the engine's type name for primitives (e.g. "Int32").
	Engine string
}

// Member is a field declared on a Type.
type Member struct {
	Name          string
	Type          *Type
	DeclaringType *Type
}

// String returns "Declaring.Name".
func (m *Member) String() string {
	if m == nil {
		return ""
	}
	if m.DeclaringType == nil {
		return m.Name
	}
	return m.DeclaringType.Name + "." + m.Name
}

// IsCollection reports whether the member holds a slice or map.
func (m *Member) IsCollection() bool {
	return m != nil && m.Type != nil && (m.Type.Kind == KindSlice || m.Type.Kind == KindMap)
}

// Object is the implicit root of every base-type chain.
var Object = &Type{Name: "object", Kind: KindStruct}

// String returns the qualified type name.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindSlice:
		return "[]" + t.Elem.String()
	case KindMap:
		return "map[" + t.Key.String() + "]" + t.Elem.String()
	}
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// Is reports whether t and u denote the same type.
func (t *Type) Is(u *Type) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil {
		return false
	}
	return t.Kind == u.Kind && t.String() == u.String()
}

// IsInterface reports whether t is an interface type.
func (t *Type) IsInterface() bool { return t != nil && t.Kind == KindInterface }

// IsObject reports whether t is the Object root.
func (t *Type) IsObject() bool { return t == nil || t == Object }

// BaseType returns the declared base type, or Object.
func (t *Type) BaseType() *Type {
	if t == nil || t == Object || t.Base == nil {
		return Object
	}
	return t.Base
}

// Ancestors returns the base-type chain from the direct base upwards,
// excluding Object.
func (t *Type) Ancestors() []*Type {
	var chain []*Type
	for b := t.BaseType(); !b.IsObject(); b = b.BaseType() {
		chain = append(chain, b)
	}
	return chain
}

// IsSubtypeOf reports whether base appears in t's base-type chain.
func (t *Type) IsSubtypeOf(base *Type) bool {
	return slices.ContainsFunc(t.Ancestors(), base.Is)
}

// Implements reports whether t implements iface directly, through an
// inherited interface, or through any type in its base chain.
func (t *Type) Implements(iface *Type) bool {
	if t == nil || !iface.IsInterface() {
		return false
	}
	seen := make(map[*Type]bool)
	var visit func(*Type) bool
	visit = func(x *Type) bool {
		if x == nil || seen[x] {
			return false
		}
		seen[x] = true
		if x != t && x.Is(iface) {
			return true
		}
		for _, i := range x.Interfaces {
			if visit(i) {
				return true
			}
		}
		if x.Kind != KindInterface && !x.BaseType().IsObject() {
			return visit(x.BaseType())
		}
		return false
	}
	return visit(t)
}

// AssignableTo reports whether a value of t can stand in for u.
func (t *Type) AssignableTo(u *Type) bool {
	if t.Is(u) {
		return true
	}
	if u.IsInterface() {
		return t.Implements(u)
	}
	return t.IsSubtypeOf(u)
}

// Member returns the member with the given name, searching base types.
func (t *Type) Member(name string) (*Member, bool) {
	for x := t; x != nil && !x.IsObject(); x = x.BaseType() {
		for _, m := range x.Members {
			if m.Name == name {
				return m, true
			}
		}
	}
	return nil, false
}

// MustMember is like Member but panics when the member is missing.
func (t *Type) MustMember(name string) *Member {
	m, ok := t.Member(name)
	if !ok {
		panic("types: " + t.String() + " has no member " + name)
	}
	return m
}

// AllMembers returns the inherited members followed by the type's own.
func (t *Type) AllMembers() []*Member {
	var out []*Member
	chain := append([]*Type{t}, t.Ancestors()...)
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Members...)
	}
	return out
}

// ShortName returns the unqualified name, or the element name for
// collection types.
func (t *Type) ShortName() string {
	switch {
	case t == nil:
		return ""
	case t.Kind == KindSlice || t.Kind == KindMap:
		return t.Elem.ShortName()
	}
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}
