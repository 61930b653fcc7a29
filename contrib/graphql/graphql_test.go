package graphql_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/compiler/load"
	"github.com/syssam/fluentmap/contrib/graphql"
	"github.com/syssam/fluentmap/model"
)

func compileShop(t *testing.T) *model.Document {
	t.Helper()
	p, err := load.LoadFile("../../compiler/load/testdata/shop")
	require.NoError(t, err)
	l, err := p.Build()
	require.NoError(t, err)
	doc, err := compiler.Compile(context.Background(), l.Options()...)
	require.NoError(t, err)
	return doc
}

func loadSDL(t *testing.T, sdl string) *ast.Schema {
	t.Helper()
	s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	return s
}

func fieldType(t *testing.T, d *ast.Definition, name string) string {
	t.Helper()
	require.NotNil(t, d)
	f := d.Fields.ForName(name)
	require.NotNil(t, f, "%s.%s", d.Name, name)
	return f.Type.String()
}

func TestSDL(t *testing.T) {
	require := require.New(t)
	sdl, err := graphql.SDL(compileShop(t))
	require.NoError(err)
	s := loadSDL(t, sdl)

	customer := s.Types["Customer"]
	require.NotNil(customer)
	require.Equal(ast.Object, customer.Kind)
	require.Contains(customer.Interfaces, graphql.NodeInterface)
	require.Equal("Mapped to table clients.", customer.Description)
	require.Equal("ID!", fieldType(t, customer, "id"))
	require.Equal("String!", fieldType(t, customer, "name"))
	require.Equal("String", fieldType(t, customer, "email"))
	require.Equal("Region", fieldType(t, customer, "region"))
	require.Equal("Address", fieldType(t, customer, "address"))
	require.Equal("[Order!]!", fieldType(t, customer, "orders"))
	require.Equal("[String!]!", fieldType(t, customer, "tags"))

	require.Equal("String", fieldType(t, s.Types["Address"], "street"))
	require.Equal("Customer!", fieldType(t, s.Types["Order"], "customer"))
	require.Equal("[Product!]!", fieldType(t, s.Types["Order"], "products"))

	vip := s.Types["VipCustomer"]
	require.Contains(vip.Interfaces, graphql.NodeInterface)
	require.Equal("String!", fieldType(t, vip, "name"))
	require.Equal("Decimal", fieldType(t, vip, "discount"))
	require.Equal(ast.Scalar, s.Types["Decimal"].Kind)

	require.NotNil(s.Query)
	require.Equal("[Customer!]!", fieldType(t, s.Query, "customers"))
	require.Equal("[Region!]!", fieldType(t, s.Query, "regions"))
}

func TestSDL_Options(t *testing.T) {
	doc := compileShop(t)
	t.Run("NoRelay", func(t *testing.T) {
		sdl, err := graphql.SDL(doc, graphql.WithRelaySpec(false), graphql.WithQueryField(false))
		require.NoError(t, err)
		s := loadSDL(t, sdl)
		require.Nil(t, s.Types[graphql.NodeInterface])
		require.Equal(t, "Int!", fieldType(t, s.Types["Customer"], "id"))
	})
	t.Run("Scalar", func(t *testing.T) {
		sdl, err := graphql.SDL(doc, graphql.WithRelaySpec(false), graphql.WithScalar("Int32", "Long"))
		require.NoError(t, err)
		s := loadSDL(t, sdl)
		require.Equal(t, "Long!", fieldType(t, s.Types["Customer"], "id"))
		require.Equal(t, ast.Scalar, s.Types["Long"].Kind)
	})
	t.Run("InvalidScalar", func(t *testing.T) {
		_, err := graphql.SDL(doc, graphql.WithScalar("Int32", ""))
		require.True(t, fluentmap.IsConfigError(err))
	})
}

func TestWriteFile(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "api", "schema.graphql")
	require.NoError(graphql.WriteFile(path, compileShop(t)))
	data, err := os.ReadFile(path)
	require.NoError(err)
	loadSDL(t, string(data))
}

func TestGQLGenConfig(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "gqlgen.yml")
	cfg, err := graphql.LoadGQLGenConfig(path)
	require.NoError(err)
	require.Empty(cfg.Models)

	sd, err := graphql.Schema(compileShop(t), graphql.WithRelaySpec(false), graphql.WithScalar("Int32", "Int64"))
	require.NoError(err)
	cfg.BindScalars("schema.graphql", sd)
	cfg.BindScalars("schema.graphql", sd)
	require.Equal(graphql.StringList{"schema.graphql"}, cfg.SchemaFilename)
	require.Equal(graphql.StringList{"github.com/99designs/gqlgen/graphql.Int64"}, cfg.Models["Int64"].Model)
	_, ok := cfg.Models["Decimal"]
	require.False(ok)

	require.NoError(graphql.SaveGQLGenConfig(path, cfg))
	loaded, err := graphql.LoadGQLGenConfig(path)
	require.NoError(err)
	require.Equal(cfg.SchemaFilename, loaded.SchemaFilename)
	require.Equal(cfg.Models["Int64"].Model, loaded.Models["Int64"].Model)
}

func TestGQLGenConfig_KeepsUnknownKeys(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "gqlgen.yml")
	src := "schema: api/*.graphql\nexec:\n  filename: generated.go\nmodels:\n  Time:\n    model: [a.Time, b.Time]\n"
	require.NoError(os.WriteFile(path, []byte(src), 0o644))

	cfg, err := graphql.LoadGQLGenConfig(path)
	require.NoError(err)
	require.Equal(graphql.StringList{"api/*.graphql"}, cfg.SchemaFilename)
	require.Equal(graphql.StringList{"a.Time", "b.Time"}, cfg.Models["Time"].Model)
	require.Contains(cfg.Rest, "exec")

	cfg.BindObjects("example.com/shop", &ast.SchemaDocument{Definitions: ast.DefinitionList{
		{Kind: ast.Object, Name: graphql.QueryType},
		{Kind: ast.Object, Name: "Client"},
		{Kind: ast.Enum, Name: "Status"},
	}})
	cfg.AddAutobind("example.com/shop")
	cfg.AddAutobind("example.com/shop")
	require.Equal([]string{"example.com/shop"}, cfg.Autobind)
	require.Equal(graphql.StringList{"example.com/shop.Client"}, cfg.Models["Client"].Model)
	require.NotContains(cfg.Models, graphql.QueryType)
	require.NotContains(cfg.Models, "Status")

	require.NoError(graphql.SaveGQLGenConfig(path, cfg))
	data, err := os.ReadFile(path)
	require.NoError(err)
	require.Contains(string(data), "filename: generated.go")
	require.Contains(string(data), "schema: api/*.graphql")
}

func TestGQLGenConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gqlgen.yml")
	require.NoError(t, os.WriteFile(path, []byte("schema: {a: b}\n"), 0o644))
	_, err := graphql.LoadGQLGenConfig(path)
	require.ErrorContains(t, err, "expected a string or a list of strings")
}
