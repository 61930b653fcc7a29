package schema_test

import (
	"testing"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"
	"github.com/syssam/fluentmap/types"

	"github.com/stretchr/testify/require"
)

func TestOverride(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	o := schema.Override(d.Customer, func(m *schema.OverrideMap) {
		m.IgnoreProperty("Tags", "Version")
		m.Table("clients")
		m.Map("Email").Unique()
	})
	require.NoError(o.Err())

	partial, ok := o.Action().(*fluentmap.PartialAutomapAction)
	require.True(ok)
	require.Same(d.Customer, partial.Type)

	tags, _ := d.Customer.Member("Tags")
	name, _ := d.Customer.Member("Name")
	require.True(partial.Setup.Excludes(tags))
	require.False(partial.Setup.Excludes(name))

	class := model.NewClass(d.Customer)
	partial.Setup.Apply(class)
	require.Equal("clients", class.TableName())
	require.True(class.Has("Email"))
	require.Nil(class.Id)
}

func TestAutoMap(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	src := fluentmap.NewCollectionSource(d.Region, d.Customer, d.Order, d.Address)
	auto := schema.AutoMap(src).
		Where(func(t *types.Type) bool { return t != d.Address }).
		Override(d.Customer, func(m *schema.OverrideMap) { m.Table("clients") }).
		Override(d.Customer, func(m *schema.OverrideMap) { m.IgnoreProperty("Tags") })
	require.NoError(auto.Err())
	require.Equal([]*types.Type{d.Region, d.Customer, d.Order}, auto.Types())

	action, ok := auto.Action().(*fluentmap.AutomapAction)
	require.True(ok)
	require.Len(action.Types, 3)

	setup := action.Setup(d.Customer)
	require.Len(setup.Alterations, 2)
	require.Len(setup.SubclassAlterations, 2)
	require.Len(setup.Exclusions, 1)
	require.Empty(action.Setup(d.Order).Alterations)
}

func TestOverride_Subclass(t *testing.T) {
	d := shop.New()
	setupFor := func(configure func(*schema.OverrideMap)) *fluentmap.AutomappingEntitySetup {
		action := fluentmap.NewAutomapAction(d.VipCustomer)
		action.Compose(schema.Override(d.VipCustomer, configure).Action().(*fluentmap.PartialAutomapAction))
		return action.Setup(d.VipCustomer)
	}

	t.Run("replayed", func(t *testing.T) {
		require := require.New(t)
		s := model.NewSubclass(d.VipCustomer)
		err := setupFor(func(m *schema.OverrideMap) {
			m.Table("vips").BatchSize(10)
			m.Not().LazyLoad()
			m.Map("Discount").Column("disc")
		}).ApplySubclass(s)
		require.NoError(err)
		require.Equal("vips", s.TableName())
		require.Equal(10, model.Get(s, model.Subclass.BatchSize))
		lazy, ok := model.Lookup(s, model.Subclass.Lazy)
		require.True(ok)
		require.False(lazy)
		require.True(model.HasUserValue(s, model.Subclass.Table))
		require.Len(s.Properties, 1)
		require.Equal([]string{"disc"}, s.Properties[0].Columns.Names())
	})

	t.Run("root settings", func(t *testing.T) {
		require := require.New(t)
		err := setupFor(func(m *schema.OverrideMap) {
			m.Polymorphism(schema.PolymorphismExplicit)
			m.DiscriminateSubclassesOnColumn("kind")
		}).ApplySubclass(model.NewSubclass(d.VipCustomer))
		require.True(fluentmap.IsValidationError(err))
		require.ErrorContains(err, "discriminator, polymorphism")
	})
}

func TestAutoMap_OverrideErrors(t *testing.T) {
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Customer)).
		Override(d.Customer, func(m *schema.OverrideMap) { m.Map("Nickname") })
	require.True(t, fluentmap.IsConfigError(auto.Err()))
}
