package schema_test

import (
	"testing"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassMap_Mapping(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	c := schema.NewClassMap(d.Customer)
	c.Table("customers")
	c.Id("Id").GeneratedBy().Identity()
	c.Map("Name").Length(100).Not().Nullable()
	c.References("Region").Column("region_ref")
	c.HasMany("Orders").Inverse().Cascade().All()
	require.NoError(c.Err())

	m := c.Mapping()
	require.Equal("customers", m.TableName())
	require.True(model.HasUserValue(m, model.Class.Table))

	id, ok := m.Id.(*model.IdMapping)
	require.True(ok)
	require.Equal("Id", id.Name())
	require.Equal("identity", id.Generator.Class())

	require.Len(m.Properties, 1)
	col := m.Properties[0].Columns.Columns()[0]
	require.Equal("Name", col.Name())
	require.Equal(100, model.Get(col, model.Column.Length))
	require.True(model.Get(col, model.Column.NotNull))

	require.Len(m.References, 1)
	require.Equal([]string{"region_ref"}, m.References[0].Columns.Names())

	require.Len(m.Collections, 1)
	orders := m.Collections[0]
	require.Equal(model.KindBag, orders.Kind)
	require.True(orders.IsInverse())
	require.Equal(schema.CascadeAll, model.Get(orders, model.Collection.Cascade))
	_, ok = orders.OneToMany()
	require.True(ok)
	require.Same(d.Order, orders.ChildType)
}

func TestClassMap_MappingIsFresh(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c := schema.NewClassMap(d.Customer)
	c.Table("customers")
	c.Map("Name")

	first, second := c.Mapping(), c.Mapping()
	require.NotSame(first, second)
	model.Set(first, model.Class.Table, model.UserSupplied, "changed")
	first.Properties[0].Columns.Replace(model.UserSupplied, model.NewColumn("x", model.UserSupplied))

	require.Equal("customers", second.TableName())
	require.Equal([]string{"Name"}, second.Properties[0].Columns.Names())
}

func TestClassMap_Not(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c := schema.NewClassMap(d.Customer)
	c.Not().LazyLoad().DynamicUpdate().ReadOnly()

	m := c.Mapping()
	require.False(model.Get(m, model.Class.Lazy))
	require.True(model.IsSpecified(m, model.Class.Lazy))
	require.True(model.Get(m, model.Class.DynamicUpdate))
	require.False(model.Get(m, model.Class.Mutable))
}

func TestClassMap_Errors(t *testing.T) {
	d := shop.New()
	tests := []struct {
		name    string
		declare func(*schema.ClassMap)
	}{
		{
			name:    "unknown property",
			declare: func(c *schema.ClassMap) { c.Map("Nickname") },
		},
		{
			name:    "unknown collection",
			declare: func(c *schema.ClassMap) { c.HasMany("Invoices") },
		},
		{
			name: "id then composite id",
			declare: func(c *schema.ClassMap) {
				c.Id("Id")
				c.CompositeId().KeyProperty("Name")
			},
		},
		{
			name: "composite id then id",
			declare: func(c *schema.ClassMap) {
				c.CompositeId().KeyProperty("Name")
				c.Id("Id")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := schema.NewClassMap(d.Customer)
			tt.declare(c)
			err := c.Err()
			require.Error(t, err)
			assert.True(t, fluentmap.IsConfigError(err))
		})
	}
}

func TestClassMap_UnknownMemberIsSkipped(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c := schema.NewClassMap(d.Customer)
	c.Map("Nickname")
	c.Map("Name")

	m := c.Mapping()
	require.Len(m.Properties, 1)
	require.Equal("Name", m.Properties[0].Name())
}

func TestClassMap_CompositeId(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c := schema.NewClassMap(d.OrderLine)
	c.CompositeId().
		KeyProperty("Quantity").
		KeyReference("Product", "product_id")
	require.NoError(c.Err())

	cid, ok := c.Mapping().Id.(*model.CompositeIdMapping)
	require.True(ok)
	require.Len(cid.Keys, 2)
	kp, ok := cid.Keys[0].(*model.KeyPropertyMapping)
	require.True(ok)
	require.Equal("Quantity", kp.Name())
	km, ok := cid.Keys[1].(*model.KeyManyToOneMapping)
	require.True(ok)
	require.Equal([]string{"product_id"}, km.Columns.Names())
}

func TestClassMap_Parts(t *testing.T) {
	d := shop.New()

	t.Run("Version", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.Version("Version").Column("ver")
		m := c.Mapping()
		require.NotNil(t, m.Version)
		assert.Equal(t, []string{"ver"}, m.Version.Columns.Names())
	})

	t.Run("Discriminator", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.DiscriminateSubclassesOnColumn("kind").Not().Nullable().Length(16)
		m := c.Mapping()
		require.NotNil(t, m.Discriminator)
		assert.Equal(t, []string{"kind"}, m.Discriminator.Columns.Names())
		assert.True(t, model.Get(m.Discriminator, model.Discriminator.NotNull))
		assert.Equal(t, 16, model.Get(m.Discriminator, model.Discriminator.Length))
	})

	t.Run("Cache", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.Cache().Region("customers").ReadWrite().Table("customers")
		m := c.Mapping()
		require.NotNil(t, m.Cache)
		assert.Equal(t, "read-write", model.Get(m.Cache, model.Cache.Usage))
		assert.Equal(t, "customers", model.Get(m.Cache, model.Cache.Region))
		assert.Equal(t, "customers", m.TableName())
	})

	t.Run("Join", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.Join("customer_contact", func(j *schema.JoinPart) {
			j.KeyColumn("customer_ref")
			j.Map("Email")
		})
		m := c.Mapping()
		require.Len(t, m.Joins, 1)
		assert.Equal(t, "customer_contact", m.Joins[0].TableName())
		assert.Equal(t, []string{"customer_ref"}, m.Joins[0].Key.Columns.Names())
		require.Len(t, m.Joins[0].Properties, 1)
		assert.Equal(t, "Email", m.Joins[0].Properties[0].Name())
	})

	t.Run("NaturalId", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.NaturalId().Property("Email", "email").Mutable()
		m := c.Mapping()
		require.NotNil(t, m.NaturalId)
		require.Len(t, m.NaturalId.Properties, 1)
		assert.True(t, model.Get(m.NaturalId, model.NaturalId.Mutable))
	})

	t.Run("Component", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.Component("Address", func(p *schema.ComponentPart) {
			p.Map("Street")
			p.Map("City").Length(60)
		}).ColumnPrefix("address_")
		m := c.Mapping()
		require.Len(t, m.Components, 1)
		comp, ok := m.Components[0].(*model.ComponentMapping)
		require.True(t, ok)
		assert.Len(t, comp.Properties, 2)
		assert.Equal(t, "address_", model.Get(comp, model.Component.ColumnPrefix))
	})

	t.Run("ComponentRef", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.ComponentRef("Address").ColumnPrefix("{property}_")
		m := c.Mapping()
		require.Len(t, m.Components, 1)
		ref, ok := m.Components[0].(*model.ReferenceComponentMapping)
		require.True(t, ok)
		assert.Same(t, d.Address, ref.Type)
		assert.Equal(t, "{property}_", model.Get(ref, model.ReferenceComponent.ColumnPrefix))
	})

	t.Run("Filter", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.ApplyFilter("active", "deleted = 0").Table("customers")
		m := c.Mapping()
		require.Len(t, m.Filters, 1)
		assert.Equal(t, "active", m.Filters[0].Name())
	})

	t.Run("UnionSubclass", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.UseUnionSubclassForInheritanceMapping()
		assert.True(t, c.Mapping().IsUnionSubclass())
	})
}

func TestClassMap_Collections(t *testing.T) {
	d := shop.New()

	t.Run("ManyToMany", func(t *testing.T) {
		c := schema.NewClassMap(d.Order)
		c.HasManyToMany("Products").
			Table("order_products").
			ParentKeyColumn("order_id").
			ChildKeyColumn("product_id").
			AsSet()
		col := c.Mapping().Collections[0]
		assert.Equal(t, model.KindSet, col.Kind)
		assert.Equal(t, "order_products", col.TableName())
		assert.Equal(t, []string{"order_id"}, col.Key.Columns.Names())
		mm, ok := col.ManyToMany()
		require.True(t, ok)
		assert.Equal(t, []string{"product_id"}, mm.Columns.Names())
	})

	t.Run("List", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.HasMany("Orders").AsList("position")
		col := c.Mapping().Collections[0]
		assert.Equal(t, model.KindList, col.Kind)
		require.NotNil(t, col.Index)
		assert.Equal(t, model.PlainIndex, col.Index.Kind)
		assert.Equal(t, []string{"position"}, col.Index.Columns.Names())
	})

	t.Run("Elements", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.HasMany("Tags").Element("tag", func(e *schema.ElementPart) { e.Length(30) }).Table("customer_tags")
		col := c.Mapping().Collections[0]
		require.NotNil(t, col.Element)
		assert.Nil(t, col.Relationship)
		assert.Equal(t, "String", model.Get(col.Element, model.Element.Type))
		assert.Equal(t, []string{"tag"}, col.Element.Columns.Names())
	})

	t.Run("CompositeElements", func(t *testing.T) {
		c := schema.NewClassMap(d.Order)
		c.HasMany("Lines").Component(func(e *schema.CompositeElementPart) {
			e.Map("Quantity")
			e.References("Product")
		})
		col := c.Mapping().Collections[0]
		require.NotNil(t, col.CompositeElement)
		assert.Len(t, col.CompositeElement.Properties, 1)
		assert.Len(t, col.CompositeElement.References, 1)
		assert.Equal(t, "shop.OrderLine", model.Get(col.CompositeElement, model.CompositeElement.Class))
	})

	t.Run("LazyLoad", func(t *testing.T) {
		c := schema.NewClassMap(d.Customer)
		c.HasMany("Orders").Not().LazyLoad().Fetch(schema.FetchJoin)
		col := c.Mapping().Collections[0]
		assert.Equal(t, "false", model.Get(col, model.Collection.Lazy))
		assert.Equal(t, schema.FetchJoin, model.Get(col, model.Collection.Fetch))
	})
}

func TestClassMap_Action(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c := schema.NewClassMap(d.Customer)

	action, ok := c.Action().(*fluentmap.ManualAction)
	require.True(ok)
	class, ok := action.Mapping.(*model.ClassMapping)
	require.True(ok)
	require.Same(d.Customer, class.Type)
}
