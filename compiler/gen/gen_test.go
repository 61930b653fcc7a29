package gen_test

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler/gen"
	"github.com/syssam/fluentmap/compiler/load"
)

func loadShop(t *testing.T) *load.Loaded {
	t.Helper()
	p, err := load.LoadFile("../load/testdata/shop")
	require.NoError(t, err)
	l, err := p.Build()
	require.NoError(t, err)
	return l
}

func TestGenerator_Source(t *testing.T) {
	require := require.New(t)
	g, err := gen.New(loadShop(t))
	require.NoError(err)
	src, err := g.Source()
	require.NoError(err)

	f, err := parser.ParseFile(token.NewFileSet(), "mappings.go", src, parser.ParseComments)
	require.NoError(err)
	require.Equal("shop", f.Name.Name)

	for _, want := range []string{
		"// " + gen.DefaultHeader,
		"func NewTypes() *Types",
		"types.Interface(\"Billable\", types.InPackage(\"shop\"))",
		"t.VipCustomer.Base = t.Customer",
		"t.Customer.Interfaces = []*types.Type{t.Billable}",
		"t.Customer.AddField(\"Tags\", types.SliceOf(types.String))",
		"t.Order.AddField(\"Products\", types.SliceOf(t.Product))",
		"func CustomerMap(t *Types) *schema.ClassMap",
		"c := schema.NewClassMap(t.Customer)",
		"c.Table(\"clients\")",
		"c.Id(\"Id\").GeneratedBy().Identity()",
		"c.DiscriminateSubclassesOnColumn(\"Kind\").Length(20)",
		"c.Map(\"Name\").Length(100).Not().Nullable()",
		"c.References(\"Region\").Cascade().Combine(\"save-update\")",
		"c.HasMany(\"Orders\").AsBag().KeyColumn(\"Customer_id\").Inverse()",
		"c.ComponentRef(\"Address\").ColumnPrefix(\"Home\")",
		"c.HasManyToMany(\"Products\").AsBag().KeyColumn(\"Order_id\").ChildKeyColumn(\"Product_id\").Table(\"OrderToProduct\")",
		"func VipCustomerSubclassMap(t *Types) *schema.SubclassMap",
		"s.DiscriminatorValue(\"vip\")",
		"s.Map(\"Discount\").Precision(5).Scale(2)",
		"func AddressComponentMap(t *Types) *schema.ComponentMap",
		"func ByRegionFilter(t *Types) *schema.FilterDefinition",
		"AddParameter(\"region\", types.Int)",
		"schema.Import(t.Product).As(\"Item\")",
		"schema.AutoMap(fluentmap.NewCollectionSource(t.Region, t.Product))",
		"o.IgnoreProperty(\"Orders\")",
		"o.Table(\"products\")",
		"conventions.DefaultLazy.Never()",
		"conventions.NewDeclarative(d)",
		"func Providers(t *Types) []fluentmap.Provider",
	} {
		require.Contains(string(src), want)
	}
}

func TestGenerator_Options(t *testing.T) {
	l := loadShop(t)
	t.Run("Package", func(t *testing.T) {
		g, err := gen.New(l, gen.WithPackage("mappings"), gen.WithHeader(""))
		require.NoError(t, err)
		src, err := g.Source()
		require.NoError(t, err)
		f, err := parser.ParseFile(token.NewFileSet(), "mappings.go", src, parser.ParseComments)
		require.NoError(t, err)
		require.Equal(t, "mappings", f.Name.Name)
		require.NotContains(t, string(src), gen.DefaultHeader)
	})
	t.Run("InvalidPackage", func(t *testing.T) {
		_, err := gen.New(l, gen.WithPackage("my-shop"), gen.WithFilename(""))
		require.True(t, fluentmap.IsConfigError(err))
		require.ErrorContains(t, err, "Go identifier")
		require.ErrorContains(t, err, "file name")
	})
	t.Run("NilProject", func(t *testing.T) {
		_, err := gen.New(nil)
		require.True(t, fluentmap.IsConfigError(err))
	})
}

func TestGenerate(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "shop", "mappings.go")
	require.NoError(gen.Generate(loadShop(t), path))
	src, err := os.ReadFile(path)
	require.NoError(err)
	require.Contains(string(src), "func Providers(t *Types)")
}

func TestGenerate_WriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err := gen.Generate(loadShop(t), filepath.Join(blocker, "mappings.go"))
	require.True(t, gen.IsGenerationError(err))
	require.True(t, errors.Is(err, gen.ErrGenerationFailed))
	require.ErrorContains(t, err, "write")
}
