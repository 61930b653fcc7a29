package load_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/compiler/load"
	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

func TestLoadFile(t *testing.T) {
	require := require.New(t)
	p, err := load.LoadFile("testdata/shop")
	require.NoError(err)
	require.Equal(filepath.Join("testdata", "shop", load.DefaultFile), p.Path)
	require.Equal("shop", p.Package)
	require.Len(p.Types, 7)
	require.Len(p.Classes, 2)
	require.Equal("Id", p.Classes[1].Id.Name, "id name defaults to Id")
	require.Equal(&dialect.Settings{Dialect: dialect.SQLite, ConnectionString: ":memory:"}, p.Database)
	require.Equal(filepath.Join("testdata", "shop", "out"), p.OutputDir())

	customer := p.Types[3]
	require.Equal("Customer", customer.Name)
	names := make([]string, len(customer.Fields))
	for i, f := range customer.Fields {
		names[i] = f.Name
	}
	require.Equal([]string{"Id", "Name", "Email", "Version", "Region", "Address", "Tags", "Orders"}, names)

	_, err = load.LoadFile("testdata/missing.yaml")
	require.Error(err)
}

func TestParse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		p, err := load.Parse(nil)
		require.NoError(t, err)
		require.Equal(t, "mappings", p.Output.Dir)
		require.Equal(t, "mappings", p.OutputDir())
	})
	t.Run("UnknownKey", func(t *testing.T) {
		data, err := os.ReadFile("testdata/invalid/unknown_key.yaml")
		require.NoError(t, err)
		_, err = load.Parse(data)
		require.ErrorContains(t, err, "colour")
	})
	t.Run("FieldsMustBeMapping", func(t *testing.T) {
		_, err := load.Parse([]byte("types:\n  - name: A\n    fields: [Id]\n"))
		require.ErrorContains(t, err, "fields must be a mapping")
	})
	t.Run("Marshal", func(t *testing.T) {
		p, err := load.Parse([]byte("package: shop\ntypes:\n  - name: A\n    fields:\n      Z: string\n      A: int\n"))
		require.NoError(t, err)
		out, err := load.Marshal(p)
		require.NoError(t, err)
		require.Less(t, strings.Index(string(out), "Z: string"), strings.Index(string(out), "A: int"))
	})
}

func TestBuild(t *testing.T) {
	require := require.New(t)
	p, err := load.LoadFile("testdata/shop")
	require.NoError(err)
	l, err := p.Build()
	require.NoError(err)
	require.Equal("Project[fluentmap.yaml]", l.Identifier())
	require.Len(l.Providers(), 7)
	require.Len(l.Conventions(), 2)

	vip, ok := l.Type("VipCustomer")
	require.True(ok)
	customer, ok := l.Type("shop.Customer")
	require.True(ok)
	require.Same(customer, vip.Base)
	require.Len(customer.Interfaces, 1)
	orders := customer.MustMember("Orders")
	require.Equal(types.KindSlice, orders.Type.Kind)
	order, _ := l.Type("Order")
	require.Same(order, orders.Type.Elem)
	_, ok = l.Registry.Lookup("shop.Product")
	require.True(ok)

	_, ok = l.Type("Country")
	require.False(ok)
}

func TestBuild_Compile(t *testing.T) {
	require := require.New(t)
	p, err := load.LoadFile("testdata/shop")
	require.NoError(err)
	l, err := p.Build()
	require.NoError(err)

	doc, err := compiler.Compile(context.Background(), l.Options()...)
	require.NoError(err)
	names := make([]string, len(doc.Classes))
	for i, c := range doc.Classes {
		names[i] = c.Type.ShortName()
	}
	require.ElementsMatch([]string{"Customer", "Order", "Region", "Product"}, names)

	customer, ok := doc.Class("Customer")
	require.True(ok)
	require.Equal("clients", customer.TableName())
	require.Len(customer.Subclasses, 1)
	require.NotNil(customer.Discriminator)

	product, ok := doc.Class("Product")
	require.True(ok)
	require.Equal("products", product.TableName())
	var name *model.PropertyMapping
	for _, prop := range product.Properties {
		if prop.Name() == "Name" {
			name = prop
		}
	}
	require.NotNil(name)
	require.Equal(200, model.Get(name.Columns.Columns()[0], model.Column.Length))
	require.Len(doc.Filters, 1)
	require.Len(doc.Imports, 1)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("Undeclared", func(t *testing.T) {
		p, err := load.LoadFile("testdata/invalid/undeclared.yaml")
		require.NoError(t, err)
		_, err = p.Build()
		require.True(t, fluentmap.IsConfigError(err))
		require.ErrorContains(t, err, "Country")
	})
	t.Run("Mappings", func(t *testing.T) {
		p, err := load.LoadFile("testdata/invalid/mappings.yaml")
		require.NoError(t, err)
		_, err = p.Build()
		require.Error(t, err)
		for _, want := range []string{"Title", "requires index_column", "convention 0", "shout-table-names"} {
			require.ErrorContains(t, err, want)
		}
	})
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"Duplicate", "types:\n  - name: A\n  - name: A\n", "declared twice"},
		{"Primitive", "types:\n  - name: string\n", "shadows a primitive"},
		{"Cycle", "types:\n  - name: A\n    base: B\n  - name: B\n    base: A\n", "cannot extend itself"},
		{"NotInterface", "types:\n  - name: A\n  - name: B\n    implements: [A]\n", "not an interface"},
		{"BadMap", "types:\n  - name: A\n    fields:\n      M: map[string\n", "malformed map type"},
		{"IdAndCompositeId", "types:\n  - name: A\n    fields:\n      Id: int\nclasses:\n  - type: A\n    id: {}\n    composite_id: {properties: [{name: Id}]}\n", "exclusive"},
		{"CacheUsage", "types:\n  - name: A\n    fields:\n      Id: int\nclasses:\n  - type: A\n    id: {}\n    cache: {usage: sometimes}\n", "unknown cache usage"},
		{"CollectionKind", "types:\n  - name: A\n    fields:\n      Id: int\n      Bs: \"[]A\"\nclasses:\n  - type: A\n    id: {}\n    has_many: [{name: Bs, kind: heap}]\n", "unknown collection kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := load.Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = p.Build()
			require.ErrorContains(t, err, tt.want)
		})
	}
}
