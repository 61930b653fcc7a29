package model

// Attributed is implemented by every mapping entity backed by an attribute
// store.
type Attributed interface {
	Attrs() *Attributes
}

// Attr is a typed attribute selector bound to entity type E with value type
// T. Selectors are declared once per entity (see Class, Property, ...) so a
// selector for one entity cannot be used with another.
type Attr[E Attributed, T any] struct {
	name string
}

// NewAttr declares a selector. The name doubles as the serialized attribute
// name.
func NewAttr[E Attributed, T any](name string) Attr[E, T] {
	return Attr[E, T]{name: name}
}

// Name returns the attribute name.
func (k Attr[E, T]) Name() string { return k.name }

// Get returns the resolved value of k on e, or the zero value of T.
func Get[E Attributed, T any](e E, k Attr[E, T]) T {
	v, _ := e.Attrs().Get(k.name).(T)
	return v
}

// Lookup returns the resolved value and whether any layer set it.
func Lookup[E Attributed, T any](e E, k Attr[E, T]) (T, bool) {
	v, _, ok := e.Attrs().Lookup(k.name)
	t, _ := v.(T)
	return t, ok
}

// Set stores v for k on e at the given layer.
func Set[E Attributed, T any](e E, k Attr[E, T], layer Layer, v T) {
	e.Attrs().Set(k.name, layer, v)
}

// IsSpecified reports whether any layer set k on e.
func IsSpecified[E Attributed, T any](e E, k Attr[E, T]) bool {
	return e.Attrs().IsSpecified(k.name)
}

// HasUserValue reports whether k was set on e at the UserSupplied layer.
func HasUserValue[E Attributed, T any](e E, k Attr[E, T]) bool {
	return e.Attrs().HasUserValue(k.name)
}

// LayerOf returns the layer k currently resolves from.
func LayerOf[E Attributed, T any](e E, k Attr[E, T]) (Layer, bool) {
	_, l, ok := e.Attrs().Lookup(k.name)
	return l, ok
}

// store is embedded by every entity to provide Attrs.
type store struct {
	attributes *Attributes
}

// Attrs returns the entity's attribute store, allocating it on first use.
func (s *store) Attrs() *Attributes {
	if s.attributes == nil {
		s.attributes = NewAttributes()
	}
	return s.attributes
}

func (s store) clone() store {
	return store{attributes: s.attributes.Clone()}
}
