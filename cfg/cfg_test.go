package cfg_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/cfg"
	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/schema"
)

func shopMappings(d *shop.Domain) func(*cfg.MappingConfiguration) {
	return func(m *cfg.MappingConfiguration) {
		customer := schema.NewClassMap(d.Customer)
		customer.Table("clients")
		customer.Id("Id").GeneratedBy().Identity()
		customer.Map("Name").Length(100)
		customer.References("Region")
		region := schema.NewClassMap(d.Region)
		region.Id("Id").GeneratedBy().Assigned()
		region.Map("Name")
		m.FluentMappings().Add(customer, region)
	}
}

func TestBuildConfiguration(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	var steps []string

	c, err := cfg.Fluently().
		PostConfigure(func(c *cfg.Configuration) error {
			steps = append(steps, "post")
			return nil
		}).
		ExposeConfiguration(func(c *cfg.Configuration) {
			require.True(c.IsRegistered("shop.Customer"))
			steps = append(steps, "expose")
		}).
		Database(dialect.InMemory()).
		Mappings(shopMappings(shop.New())).
		Mappings(func(m *cfg.MappingConfiguration) { m.FluentMappings().ExportTo(dir) }).
		PreConfigure(func(c *cfg.Configuration) error {
			require.False(c.IsRegistered("shop.Customer"))
			_, ok := c.Property(dialect.PropDialect)
			require.False(ok, "database settings come after pre-configuration")
			steps = append(steps, "pre")
			return nil
		}).
		BuildConfiguration(context.Background())
	require.NoError(err)
	require.Equal([]string{"pre", "expose", "post"}, steps)
	require.False(c.FromCache())

	v, _ := c.Property(dialect.PropDialect)
	require.Equal("NHibernate.Dialect.SQLiteDialect", v)
	require.Equal([]string{"shop.Customer", "shop.Region"}, c.Entities())
	require.Len(c.Mappings(), 2)
	require.Contains(string(c.Mappings()[0].XML), `table="clients"`)
	customer, ok := c.ClassMapping("shop.Customer")
	require.True(ok)
	require.Equal("clients", customer.TableName())

	files, err := os.ReadDir(dir)
	require.NoError(err)
	require.Len(files, 2)
}

func TestBuildConfiguration_MergeMappings(t *testing.T) {
	c, err := cfg.Fluently().
		Mappings(shopMappings(shop.New())).
		Mappings(func(m *cfg.MappingConfiguration) { m.MergeMappings() }).
		BuildConfiguration(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Mappings(), 1)
	require.Equal(t, []string{"shop.Customer", "shop.Region"}, c.Mappings()[0].Entities)
}

func TestBuildConfiguration_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := cfg.Fluently().Database(dialect.Settings{Dialect: "oracle", ConnectionString: "x"}).BuildConfiguration(ctx)
	require.True(t, fluentmap.IsConfigError(err))

	_, err = cfg.Fluently().
		Mappings(func(m *cfg.MappingConfiguration) { m.FluentMappings().Add(nil) }).
		BuildConfiguration(ctx)
	require.True(t, fluentmap.IsConfigError(err))

	_, err = cfg.Fluently().
		PostConfigure(func(*cfg.Configuration) error { return os.ErrPermission }).
		BuildConfiguration(ctx)
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestConfiguration_AddDocument(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	existing, err := cfg.Fluently().Mappings(shopMappings(shop.New())).BuildConfiguration(ctx)
	require.NoError(err)

	// Registering the same entities again is a no-op.
	c, err := cfg.Configure(existing).Mappings(shopMappings(shop.New())).BuildConfiguration(ctx)
	require.NoError(err)
	require.Same(existing, c)
	require.Len(c.Mappings(), 2)
	require.Equal([]string{"shop.Customer", "shop.Region"}, c.Entities())
}

func TestBuildConfiguration_Cache(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.msgpack")
	build := func(s dialect.Settings, mappings func(*cfg.MappingConfiguration)) *cfg.Configuration {
		f := cfg.Fluently().Database(s).CacheTo(path)
		if mappings != nil {
			f.Mappings(mappings)
		}
		c, err := f.BuildConfiguration(ctx)
		require.NoError(err)
		return c
	}

	first := build(dialect.InMemory(), shopMappings(shop.New()))
	require.False(first.FromCache())
	require.FileExists(path)

	cached := build(dialect.InMemory(), nil)
	require.True(cached.FromCache())
	require.Equal(first.Entities(), cached.Entities())
	require.Equal(first.Mappings(), cached.Mappings())
	_, ok := cached.ClassMapping("shop.Customer")
	require.False(ok)

	stale := build(dialect.ForSQLite("other.db"), nil)
	require.False(stale.FromCache())
	require.Empty(stale.Entities())
}

func TestDirCache(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := &cfg.DirCache{Dir: filepath.Join(t.TempDir(), "cache")}

	v, err := c.Get(ctx, "missing")
	require.NoError(err)
	require.Nil(v)
	require.NoError(c.Set(ctx, "k", []byte("v1")))
	require.NoError(c.Set(ctx, "k", []byte("v2")))
	v, err = c.Get(ctx, "k")
	require.NoError(err)
	require.Equal([]byte("v2"), v)
	require.NoError(c.Delete(ctx, "k"))
	require.NoError(c.Delete(ctx, "k"))
	v, _ = c.Get(ctx, "k")
	require.Nil(v)
}
