// Package model defines the mapping model: the intermediate representation
// produced by mapping providers, rewritten by the compiler passes and
// consumed by the serializers.
package model

import (
	"maps"
	"reflect"
	"slices"
)

// Layer is a precedence level for attribute values. Higher layers win.
type Layer int

// Precedence layers, lowest first.
const (
	Defaults Layer = iota
	Conventions
	UserSupplied
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case Defaults:
		return "defaults"
	case Conventions:
		return "conventions"
	case UserSupplied:
		return "user-supplied"
	default:
		return "unknown"
	}
}

// Attributes is a layered attribute store. Each attribute keeps one value per
// layer and resolves to the value of the highest layer present.
type Attributes struct {
	values map[string]map[Layer]any
}

// NewAttributes returns an empty store.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]map[Layer]any)}
}

// Set stores v for name at the given layer. Values at higher layers are left
// untouched and keep precedence.
func (a *Attributes) Set(name string, layer Layer, v any) {
	if a.values == nil {
		a.values = make(map[string]map[Layer]any)
	}
	layers, ok := a.values[name]
	if !ok {
		layers = make(map[Layer]any, 1)
		a.values[name] = layers
	}
	layers[layer] = v
}

// Get returns the value at the highest layer, or nil.
func (a *Attributes) Get(name string) any {
	v, _, _ := a.Lookup(name)
	return v
}

// Lookup returns the resolved value and the layer it came from.
func (a *Attributes) Lookup(name string) (any, Layer, bool) {
	if a == nil {
		return nil, Defaults, false
	}
	layers, ok := a.values[name]
	if !ok || len(layers) == 0 {
		return nil, Defaults, false
	}
	top := Layer(-1)
	for l := range layers {
		if l > top {
			top = l
		}
	}
	return layers[top], top, true
}

// IsSpecified reports whether any layer has set name.
func (a *Attributes) IsSpecified(name string) bool {
	if a == nil {
		return false
	}
	return len(a.values[name]) > 0
}

// HasValue is an alias of IsSpecified used by inspection code.
func (a *Attributes) HasValue(name string) bool { return a.IsSpecified(name) }

// HasUserValue reports whether name was set at the UserSupplied layer.
func (a *Attributes) HasUserValue(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.values[name][UserSupplied]
	return ok
}

// Unset removes the value stored for name at the given layer.
func (a *Attributes) Unset(name string, layer Layer) {
	if a == nil {
		return
	}
	delete(a.values[name], layer)
	if len(a.values[name]) == 0 {
		delete(a.values, name)
	}
}

// Names returns the specified attribute names in sorted order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.values))
}

// Clone returns an independent copy of the store.
func (a *Attributes) Clone() *Attributes {
	c := NewAttributes()
	if a == nil {
		return c
	}
	for name, layers := range a.values {
		c.values[name] = maps.Clone(layers)
	}
	return c
}

// Merge copies every value of other into a, layer by layer. Values already
// present in a at the same layer are overwritten.
func (a *Attributes) Merge(other *Attributes) {
	if other == nil {
		return
	}
	for name, layers := range other.values {
		for l, v := range layers {
			a.Set(name, l, v)
		}
	}
}

// Equal reports whether both stores resolve every attribute to deeply equal
// values. Layers are not compared.
func (a *Attributes) Equal(other *Attributes) bool {
	names := a.Names()
	if !slices.Equal(names, other.Names()) {
		return false
	}
	for _, n := range names {
		if !reflect.DeepEqual(a.Get(n), other.Get(n)) {
			return false
		}
	}
	return true
}
