package types

// Option configures a Type built by Struct or Interface.
type Option func(*Type)

// Struct declares a class type.
func Struct(name string, opts ...Option) *Type {
	t := &Type{Name: name, Kind: KindStruct}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interface declares an interface type.
func Interface(name string, opts ...Option) *Type {
	t := &Type{Name: name, Kind: KindInterface}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Extends sets the declared base type.
func Extends(base *Type) Option {
	return func(t *Type) { t.Base = base }
}

// Implements adds declared interfaces.
func Implements(ifaces ...*Type) Option {
	return func(t *Type) { t.Interfaces = append(t.Interfaces, ifaces...) }
}

// Abstract marks the type abstract.
func Abstract() Option {
	return func(t *Type) { t.Abstract = true }
}

// InPackage sets the package qualifier.
func InPackage(pkg string) Option {
	return func(t *Type) { t.Package = pkg }
}

// Field adds a member of the given type.
func Field(name string, typ *Type) Option {
	return func(t *Type) {
		t.Members = append(t.Members, &Member{Name: name, Type: typ, DeclaringType: t})
	}
}

// AddField appends a member after construction. It is used when two types
// reference each other.
func (t *Type) AddField(name string, typ *Type) *Member {
	m := &Member{Name: name, Type: typ, DeclaringType: t}
	t.Members = append(t.Members, m)
	return m
}

// SliceOf returns a slice type of elem.
func SliceOf(elem *Type) *Type {
	return &Type{Name: "[]" + elem.Name, Kind: KindSlice, Elem: elem}
}

// MapOf returns a map type.
func MapOf(key, elem *Type) *Type {
	return &Type{Name: "map", Kind: KindMap, Key: key, Elem: elem}
}

func primitive(name, engine string) *Type {
	return &Type{Name: name, Kind: KindPrimitive, Engine: engine}
}

// Primitive types with their engine type names.
var (
	String   = primitive("string", "String")
	Int      = primitive("int", "Int32")
	Int32    = primitive("int32", "Int32")
	Int64    = primitive("int64", "Int64")
	Bool     = primitive("bool", "Boolean")
	Float32  = primitive("float32", "Single")
	Float64  = primitive("float64", "Double")
	Decimal  = primitive("decimal", "Decimal")
	Time     = primitive("time.Time", "DateTime")
	Duration = primitive("time.Duration", "TimeSpan")
	UUID     = primitive("uuid.UUID", "Guid")
	Bytes    = primitive("[]byte", "BinaryBlob")
)

// Primitives lists every predeclared primitive.
var Primitives = []*Type{String, Int, Int32, Int64, Bool, Float32, Float64, Decimal, Time, Duration, UUID, Bytes}

// PrimitiveByName returns the primitive with the given Go or engine name.
func PrimitiveByName(name string) (*Type, bool) {
	for _, p := range Primitives {
		if p.Name == name || p.Engine == name {
			return p, true
		}
	}
	return nil, false
}
