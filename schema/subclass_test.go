package schema_test

import (
	"testing"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"
	"github.com/syssam/fluentmap/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubclassMap(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	s := schema.NewSubclassMap(d.GoldMember)
	s.Extends(d.Customer).
		DiscriminatorValue("gold").
		KeyColumn("member_id").
		Table("gold_members")
	s.Map("Concierge").Length(80)
	require.NoError(s.Err())

	m := s.Mapping()
	require.Same(d.GoldMember, m.Type)
	require.Same(d.Customer, m.Extends)
	require.Equal("gold", model.Get(m, model.Subclass.DiscriminatorValue))
	require.Equal("gold_members", m.TableName())
	require.Equal([]string{"member_id"}, m.Key.Columns.Names())
	require.Len(m.Properties, 1)
	require.Equal(model.PlainSubclass, m.SubclassType)
}

func TestSubclassMap_InheritedMembers(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	s := schema.NewSubclassMap(d.VipCustomer)
	s.Map("Discount")
	s.Map("Email")
	require.NoError(s.Err())
	require.Len(s.Mapping().Properties, 2)
}

func TestSubclassMap_Not(t *testing.T) {
	d := shop.New()
	s := schema.NewSubclassMap(d.VipCustomer)
	s.Not().LazyLoad().Abstract()
	m := s.Mapping()
	assert.False(t, model.Get(m, model.Subclass.Lazy))
	assert.True(t, model.Get(m, model.Subclass.Abstract))
}

func TestComponentMap(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	c := schema.NewComponentMap(d.Address)
	c.Map("Street").Length(120)
	c.Map("City")
	c.ParentReference("Owner")
	require.NoError(c.Err())

	action, ok := c.Action().(*fluentmap.ManualAction)
	require.True(ok)
	ext, ok := action.Mapping.(*model.ExternalComponentMapping)
	require.True(ok)
	require.Same(d.Address, ext.Type)
	require.Len(ext.Properties, 2)
	require.NotNil(ext.Parent)
	require.Equal("Owner", model.Get(ext.Parent, model.Parent.Name))

	var b model.Bucket
	b.Add(ext)
	require.Len(b.Components, 1)
}

func TestComponentMap_UnknownMember(t *testing.T) {
	d := shop.New()
	c := schema.NewComponentMap(d.Address)
	c.Map("Country")
	require.True(t, fluentmap.IsConfigError(c.Err()))
}

func TestFilterDefinition(t *testing.T) {
	require := require.New(t)

	f := schema.NewFilterDefinition().
		WithName("tenant").
		WithCondition("tenant_id = :tenant").
		AddParameter("tenant", types.Int)
	require.NoError(f.Err())

	m := f.Mapping()
	require.Equal("tenant", m.Name())
	require.Equal("tenant_id = :tenant", model.Get(m, model.FilterDefinition.Condition))
	require.Equal([]model.Param{{Name: "tenant", Value: "Int32"}}, m.Parameters)

	require.True(fluentmap.IsConfigError(schema.NewFilterDefinition().Err()))
}

func TestImport(t *testing.T) {
	d := shop.New()

	m := schema.Import(d.Customer).Mapping()
	assert.Equal(t, "Customer", model.Get(m, model.Import.Rename))
	assert.False(t, model.HasUserValue(m, model.Import.Rename))

	m = schema.Import(d.Customer).As("Client").Mapping()
	assert.Equal(t, "Client", model.Get(m, model.Import.Rename))
	assert.Equal(t, "shop.Customer", model.Get(m, model.Import.Class))
}
