package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_Implements(t *testing.T) {
	entity := Interface("Entity")
	named := Interface("Named", Implements(entity))
	base := Struct("Base", Implements(named))
	mid := Struct("Mid", Extends(base))
	leaf := Struct("Leaf", Extends(mid))
	other := Struct("Other")

	tests := []struct {
		name  string
		typ   *Type
		iface *Type
		want  bool
	}{
		{"direct", base, named, true},
		{"through interface", base, entity, true},
		{"through base chain", leaf, entity, true},
		{"unrelated", other, entity, false},
		{"interface extends", named, entity, true},
		{"not an interface", leaf, base, false},
		{"self", entity, entity, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Implements(tt.iface))
		})
	}
}

func TestType_Ancestors(t *testing.T) {
	require := require.New(t)
	a := Struct("A")
	b := Struct("B", Extends(a))
	c := Struct("C", Extends(b))

	require.Equal([]*Type{b, a}, c.Ancestors())
	require.Empty(a.Ancestors())
	require.True(c.IsSubtypeOf(a))
	require.False(a.IsSubtypeOf(c))
	require.True(Object.Is(a.BaseType()))
	require.True(c.AssignableTo(a))
	require.True(c.AssignableTo(c))
}

func TestType_Members(t *testing.T) {
	require := require.New(t)
	a := Struct("A", Field("ID", Int64))
	b := Struct("B", Extends(a), Field("Name", String))

	m, ok := b.Member("ID")
	require.True(ok)
	require.Equal(a, m.DeclaringType)
	require.Equal("A.ID", m.String())

	names := make([]string, 0)
	for _, m := range b.AllMembers() {
		names = append(names, m.Name)
	}
	require.Equal([]string{"ID", "Name"}, names)
	require.Panics(func() { b.MustMember("Missing") })

	orders := b.AddField("Orders", SliceOf(a))
	require.True(orders.IsCollection())
	require.Equal("A", orders.Type.ShortName())
}

type entity interface{ isEntity() }

type model struct {
	ID int64
}

func (*model) isEntity() {}

type customer struct {
	model
	Name    string
	Created time.Time
	Orders  []*order
	secret  string
}

type order struct {
	model
	Customer *customer
	Total    float64
}

func TestRegistry_TypeOf(t *testing.T) {
	require := require.New(t)
	r := NewRegistry()
	iface := r.RegisterInterface((*entity)(nil))

	c := r.Of(customer{})
	require.Equal("customer", c.Name)
	require.Equal(KindStruct, c.Kind)
	require.NotNil(c.Base)
	require.Equal("model", c.Base.Name)
	require.True(c.Implements(iface))
	require.Empty(c.Interfaces, "interfaces satisfied by the base are not redeclared")
	require.Equal([]*Type{iface}, c.Base.Interfaces)

	created, ok := c.Member("Created")
	require.True(ok)
	require.Equal(Time, created.Type)
	_, ok = c.Member("secret")
	require.False(ok)

	orders := c.MustMember("Orders")
	require.Equal(KindSlice, orders.Type.Kind)
	o := orders.Type.Elem
	require.Same(c, o.MustMember("Customer").Type)
	require.Same(o, r.Of(&order{}))

	found, ok := r.Lookup(c.String())
	require.True(ok)
	require.Same(c, found)
}

func TestRegistry_Add(t *testing.T) {
	require := require.New(t)
	r := NewRegistry()
	a := Struct("A", InPackage("app"))
	require.NoError(r.Add(a, a))
	require.Error(r.Add(Struct("A", InPackage("app"))))
	require.Equal([]*Type{a}, r.Types())

	p, ok := PrimitiveByName("Int64")
	require.True(ok)
	require.Equal(Int64, p)
}
