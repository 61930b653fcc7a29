package types

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"
)

// Registry interns types by name and builds them from Go values.
// Types captured through reflection are cached, so repeated lookups of the
// same Go type return the same *Type.
type Registry struct {
	mu         sync.Mutex
	byName     map[string]*Type
	byReflect  map[reflect.Type]*Type
	interfaces []reflect.Type
	order      []*Type
}

// NewRegistry returns an empty registry seeded with the primitives.
func NewRegistry() *Registry {
	r := &Registry{
		byName:    make(map[string]*Type),
		byReflect: make(map[reflect.Type]*Type),
	}
	for _, p := range Primitives {
		r.byName[p.Name] = p
	}
	return r
}

// Add registers declared types. Registering a second, distinct type under an
// existing name is an error.
func (r *Registry) Add(ts ...*Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range ts {
		if prev, ok := r.byName[t.String()]; ok {
			if prev != t {
				return fmt.Errorf("types: %s already registered", t)
			}
			continue
		}
		r.byName[t.String()] = t
		r.order = append(r.order, t)
	}
	return nil
}

// Lookup returns the registered type with the given qualified name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byName[name]
	return t, ok
}

// Types returns the declared types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// RegisterInterface records an interface to test struct types against, given
// as a nil pointer: RegisterInterface((*Entity)(nil)).
func (r *Registry) RegisterInterface(ptr any) *Type {
	rt := reflect.TypeOf(ptr)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Interface {
		panic(fmt.Sprintf("types: %s is not an interface", rt))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byReflect[rt]; ok {
		return t
	}
	t := &Type{Name: rt.Name(), Package: rt.PkgPath(), Kind: KindInterface}
	r.byReflect[rt] = t
	r.interfaces = append(r.interfaces, rt)
	r.byName[t.String()] = t
	r.order = append(r.order, t)
	return t
}

// Of returns the Type for the dynamic type of v.
func (r *Registry) Of(v any) *Type {
	return r.TypeOf(reflect.TypeOf(v))
}

// TypeOf returns the Type for rt. The first embedded struct field is taken
// as the base type; the remaining exported fields become members.
func (r *Registry) TypeOf(rt reflect.Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typeOf(rt)
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

func (r *Registry) typeOf(rt reflect.Type) *Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if t, ok := r.byReflect[rt]; ok {
		return t
	}
	switch {
	case rt == timeType:
		return Time
	case rt == durationType:
		return Duration
	case rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8:
		return Bytes
	case rt.Kind() == reflect.Array && rt.Len() == 16 && rt.Name() == "UUID":
		return UUID
	}
	switch rt.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Uint, reflect.Uint32, reflect.Int16, reflect.Uint16, reflect.Int8, reflect.Uint8:
		return Int
	case reflect.Int32:
		return Int32
	case reflect.Int64, reflect.Uint64:
		return Int64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Slice, reflect.Array:
		return SliceOf(r.typeOf(rt.Elem()))
	case reflect.Map:
		return MapOf(r.typeOf(rt.Key()), r.typeOf(rt.Elem()))
	case reflect.Interface:
		t := &Type{Name: rt.Name(), Package: rt.PkgPath(), Kind: KindInterface}
		r.byReflect[rt] = t
		return t
	}
	t := &Type{Name: rt.Name(), Package: rt.PkgPath(), Kind: KindStruct}
	r.byReflect[rt] = t
	r.byName[t.String()] = t
	r.order = append(r.order, t)
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.Anonymous && t.Base == nil && indirect(f.Type).Kind() == reflect.Struct {
			t.Base = r.typeOf(f.Type)
			continue
		}
		if !f.IsExported() {
			continue
		}
		t.Members = append(t.Members, &Member{Name: f.Name, Type: r.typeOf(f.Type), DeclaringType: t})
	}
	for _, it := range r.interfaces {
		if !reflect.PointerTo(rt).Implements(it) {
			continue
		}
		iface := r.byReflect[it]
		if t.Base != nil && t.Base.Implements(iface) {
			continue
		}
		t.Interfaces = append(t.Interfaces, iface)
	}
	return t
}

func indirect(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}
