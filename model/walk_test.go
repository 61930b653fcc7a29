package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap/types"
)

func sampleClass() *ClassMapping {
	address := types.Struct("Address", types.Field("Street", types.String))
	order := types.Struct("Order")
	customer := types.Struct("Customer",
		types.Field("Id", types.Int64),
		types.Field("Name", types.String),
		types.Field("Version", types.Int),
		types.Field("Address", address),
		types.Field("Orders", types.SliceOf(order)),
	)
	order.AddField("Customer", customer)

	c := NewClass(customer)
	c.Id = NewId(customer.MustMember("Id"))
	c.Id.(*IdMapping).Generator = NewGenerator("identity", UserSupplied)
	c.Version = NewVersion(customer.MustMember("Version"))
	c.AddProperty(NewProperty(customer, customer.MustMember("Name")))
	comp := NewComponent(customer, customer.MustMember("Address"))
	comp.AddProperty(NewProperty(address, address.MustMember("Street")))
	c.AddComponent(comp)
	orders := NewCollection(KindBag, customer, customer.MustMember("Orders"))
	orders.Relationship = NewOneToMany(order)
	c.AddCollection(orders)
	c.Cache = &CacheMapping{}
	Set(c.Cache, Cache.Usage, UserSupplied, "read-write")
	return c
}

func kindOf(n Node) string {
	return fmt.Sprintf("%T", n)
}

func TestChildren_ClassOrder(t *testing.T) {
	require := require.New(t)
	c := sampleClass()

	var got []string
	for _, n := range Children(c) {
		got = append(got, kindOf(n))
	}
	require.Equal([]string{
		"*model.CacheMapping",
		"*model.IdMapping",
		"*model.VersionMapping",
		"*model.PropertyMapping",
		"*model.ComponentMapping",
		"*model.CollectionMapping",
	}, got)
}

func TestWalk(t *testing.T) {
	require := require.New(t)
	c := sampleClass()

	var columns []string
	Walk(c, func(n Node) bool {
		if col, ok := n.(*ColumnMapping); ok {
			columns = append(columns, col.Name())
		}
		_, isComponent := n.(*ComponentMapping)
		return !isComponent
	})
	require.Equal([]string{"Id", "Version", "Name"}, columns)

	var depth []int
	WalkPath(c, func(n Node, path []Node) bool {
		if col, ok := n.(*ColumnMapping); ok && col.Name() == "Street" {
			depth = append(depth, len(path))
		}
		return true
	})
	require.Equal([]int{3}, depth, "class > component > property > column")
}

func TestClone_Independent(t *testing.T) {
	require := require.New(t)
	c := sampleClass()
	clone := c.Clone()

	require.Equal(c.TableName(), clone.TableName())
	Set(clone, Class.Table, UserSupplied, "clients")
	require.Equal("`Customer`", c.TableName())

	p := clone.Properties[0]
	Set(p, Property.Type, UserSupplied, "AnsiString")
	require.Equal("String", Get(c.Properties[0], Property.Type))

	clone.Collections[0].Key.Columns.Add(UserSupplied, NewColumn("CustomerId", UserSupplied))
	require.Empty(c.Collections[0].Key.Columns.Columns())
	require.Equal("identity", clone.Id.(*IdMapping).Generator.Class())
}

func TestDocument_SplitMerge(t *testing.T) {
	require := require.New(t)
	c := sampleClass()
	other := NewClass(types.Struct("Product"))
	doc := NewDocument()
	Set(doc, Doc.DefaultLazy, UserSupplied, false)
	doc.Classes = []*ClassMapping{c, other}
	doc.Imports = []*ImportMapping{NewImport(other.Type), NewImport(types.Struct("Report"))}
	def := &FilterDefinitionMapping{}
	Set(def, FilterDefinition.Name, UserSupplied, "active")
	doc.Filters = []*FilterDefinitionMapping{def}

	parts := doc.Split()
	require.Len(parts, 3)
	require.Equal("Customer", parts[0].Name())
	require.Empty(parts[0].Imports)
	require.Len(parts[1].Imports, 1)
	require.Equal("mappings", parts[2].Name())
	require.Len(parts[2].Imports, 1)
	require.Len(parts[2].Filters, 1)
	for _, p := range parts {
		v, ok := Lookup(p, Doc.DefaultLazy)
		require.True(ok)
		require.False(v)
	}

	merged := Merge(parts...)
	require.Len(merged.Classes, 2)
	require.Len(merged.Imports, 2)
	require.Len(merged.Filters, 1)
	found, ok := merged.Class("Product")
	require.True(ok)
	require.Same(other, found)
}

func TestBucket_Add(t *testing.T) {
	require := require.New(t)
	var b Bucket
	sub := NewSubclass(types.Struct("Gold"))
	b.Add(
		NewClass(types.Struct("Customer")),
		sub,
		NewExternalComponent(types.Struct("Address")),
		NewImport(types.Struct("Customer")),
		&FilterDefinitionMapping{},
	)
	require.Len(b.Classes, 1)
	require.Equal([]*SubclassMapping{sub}, b.Subclasses)
	require.Len(b.Components, 1)
	require.Len(b.Imports, 1)
	require.Len(b.Filters, 1)

	var count int
	WalkBucket(&b, func(Node) bool { count++; return true })
	require.Equal(5, count, "a plain subclass serializes no key")
}
