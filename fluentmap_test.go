package fluentmap_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

func TestAutomapAction_Compose(t *testing.T) {
	t.Parallel()
	in := types.InPackage("shop")
	customer := types.Struct("Customer", in)
	order := types.Struct("Order", in)
	a := fluentmap.NewAutomapAction(customer, order)
	assert.Equal(t, "automap(2 types)", a.String())

	var altered []string
	a.Compose(&fluentmap.PartialAutomapAction{
		Type: customer,
		Setup: fluentmap.AutomappingEntitySetup{
			Exclusions:  []func(*types.Member) bool{func(m *types.Member) bool { return m.Name == "Orders" }},
			Alterations: []func(*model.ClassMapping){func(*model.ClassMapping) { altered = append(altered, "first") }},
		},
	})
	a.Compose(&fluentmap.PartialAutomapAction{
		Type: customer,
		Setup: fluentmap.AutomappingEntitySetup{
			Exclusions:  []func(*types.Member) bool{func(m *types.Member) bool { return m.Name == "Tags" }},
			Alterations: []func(*model.ClassMapping){func(*model.ClassMapping) { altered = append(altered, "second") }},
		},
	})

	s := a.Setup(customer)
	require.Len(t, s.Exclusions, 2)
	assert.True(t, s.Excludes(&types.Member{Name: "Orders"}))
	assert.True(t, s.Excludes(&types.Member{Name: "Tags"}))
	assert.False(t, s.Excludes(&types.Member{Name: "Name"}))
	s.Apply(model.NewClass(customer))
	assert.Equal(t, []string{"first", "second"}, altered)

	empty := a.Setup(order)
	assert.Empty(t, empty.Exclusions)
	assert.False(t, empty.Excludes(&types.Member{Name: "Orders"}))
}

func TestAutomappingEntitySetup_ApplySubclass(t *testing.T) {
	t.Parallel()
	in := types.InPackage("shop")
	customer := types.Struct("Customer", in)
	vip := types.Struct("VipCustomer", in, types.Extends(customer))
	a := fluentmap.NewAutomapAction(customer, vip)
	a.Compose(&fluentmap.PartialAutomapAction{
		Type: vip,
		Setup: fluentmap.AutomappingEntitySetup{
			SubclassAlterations: []func(*model.SubclassMapping) error{func(s *model.SubclassMapping) error {
				model.Set(s, model.Subclass.Table, model.UserSupplied, "vips")
				return nil
			}},
		},
	})
	a.Compose(&fluentmap.PartialAutomapAction{
		Type: vip,
		Setup: fluentmap.AutomappingEntitySetup{
			SubclassAlterations: []func(*model.SubclassMapping) error{func(*model.SubclassMapping) error {
				return fluentmap.NewValidationError("shop.VipCustomer", "", "no root settings")
			}},
		},
	})

	s := model.NewSubclass(vip)
	err := a.Setup(vip).ApplySubclass(s)
	assert.Equal(t, "vips", s.TableName(), "every alteration runs")
	assert.True(t, fluentmap.IsValidationError(err))
	assert.NoError(t, a.Setup(customer).ApplySubclass(model.NewSubclass(customer)))
}

func TestAutomapAction_ZeroValue(t *testing.T) {
	t.Parallel()
	customer := types.Struct("Customer")
	a := &fluentmap.AutomapAction{Types: []*types.Type{customer}}
	a.Compose(&fluentmap.PartialAutomapAction{Type: customer})
	assert.NotNil(t, a.Setup(customer))
}

func TestManual(t *testing.T) {
	t.Parallel()
	c := model.NewClass(types.Struct("Customer", types.InPackage("shop")))
	action := fluentmap.Manual(c).Action()
	manual, ok := action.(*fluentmap.ManualAction)
	require.True(t, ok)
	assert.Same(t, c, manual.Mapping)
	assert.Equal(t, "manual(*model.ClassMapping)", manual.String())
}

func TestSources(t *testing.T) {
	t.Parallel()
	in := types.InPackage("shop")
	region := types.Struct("Region", in)
	billable := types.Interface("Billable", in)
	product := types.Struct("Product", in)

	collection := fluentmap.NewCollectionSource(region, product)
	assert.Equal(t, "Collection[Region, Product]", collection.Identifier())
	assert.Equal(t, []*types.Type{region, product}, collection.Types())

	reg := types.NewRegistry()
	require.NoError(t, reg.Add(billable, region))
	registry := &fluentmap.RegistrySource{Registry: reg}
	assert.Equal(t, "Registry", registry.Identifier())
	assert.Equal(t, []*types.Type{region}, registry.Types())

	combined := fluentmap.CombinedSource{collection, &fluentmap.RegistrySource{Registry: reg, Name: "shop"}}
	assert.Equal(t, "Combined[Collection[Region, Product], shop]", combined.Identifier())
	assert.Equal(t, []*types.Type{region, product, region}, combined.Types())

	var buf bytes.Buffer
	combined.LogSource(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	assert.Contains(t, buf.String(), "source=shop")
	assert.Contains(t, buf.String(), "types=2")
}

func TestProviderList(t *testing.T) {
	t.Parallel()
	p := fluentmap.Manual(model.NewClass(types.Struct("Customer")))
	list := &fluentmap.ProviderList{Name: "manual", Items: []fluentmap.Provider{p}}
	assert.Equal(t, "manual", list.Identifier())
	assert.Len(t, list.Providers(), 1)
}
