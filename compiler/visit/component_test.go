package visit_test

import (
	"testing"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler/visit"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"

	"github.com/stretchr/testify/require"
)

func addressComponent(d *shop.Domain) *model.ExternalComponentMapping {
	ext := model.NewExternalComponent(d.Address)
	ext.AddProperty(model.NewProperty(d.Address, d.Address.MustMember("Street")))
	ext.AddProperty(model.NewProperty(d.Address, d.Address.MustMember("City")))
	return ext
}

func propertyNames(ps []*model.PropertyMapping) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}

func TestComponentResolution(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	in := types.InPackage(shop.Package)
	supplier := types.Struct("Supplier", in,
		types.Field("Id", types.Int),
		types.Field("Address", d.Address),
	)

	customer := model.NewClass(d.Customer)
	customer.AddComponent(model.NewReferenceComponent(d.Customer, d.Customer.MustMember("Address")))
	other := model.NewClass(supplier)
	ref := model.NewReferenceComponent(supplier, supplier.MustMember("Address"))
	model.Set(ref, model.ReferenceComponent.Access, model.UserSupplied, "field")
	other.AddComponent(ref)

	b := &model.Bucket{}
	b.Add(customer, other, addressComponent(d))
	require.NoError((&visit.ComponentResolution{}).Visit(b))

	first, ok := customer.Components[0].(*model.ComponentMapping)
	require.True(ok)
	second, ok := other.Components[0].(*model.ComponentMapping)
	require.True(ok)
	require.Equal([]string{"Street", "City"}, propertyNames(first.Properties))
	require.Equal(propertyNames(first.Properties), propertyNames(second.Properties))
	require.NotSame(first.Properties[0], second.Properties[0])
	require.Equal("Address", first.MemberName())
	require.Same(supplier, second.ContainingEntity)
	require.Equal("field", model.Get(second, model.Component.Access))
}

func TestComponentResolution_Nested(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	in := types.InPackage(shop.Package)
	geo := types.Struct("Geo", in, types.Field("Lat", types.Decimal))
	d.Address.AddField("Geo", geo)

	addr := addressComponent(d)
	addr.AddComponent(model.NewReferenceComponent(d.Address, d.Address.MustMember("Geo")))
	geoExt := model.NewExternalComponent(geo)
	geoExt.AddProperty(model.NewProperty(geo, geo.MustMember("Lat")))

	customer := model.NewClass(d.Customer)
	customer.AddComponent(model.NewReferenceComponent(d.Customer, d.Customer.MustMember("Address")))
	b := &model.Bucket{}
	b.Add(customer, addr, geoExt)
	require.NoError((&visit.ComponentResolution{}).Visit(b))

	outer := customer.Components[0].(*model.ComponentMapping)
	require.Len(outer.Components, 1)
	inner, ok := outer.Components[0].(*model.ComponentMapping)
	require.True(ok)
	require.Equal([]string{"Lat"}, propertyNames(inner.Properties))
	_, ok = addr.Components[0].(*model.ReferenceComponentMapping)
	require.True(ok, "external declaration must not be rewritten")
}

func TestComponentResolution_Errors(t *testing.T) {
	d := shop.New()
	tests := []struct {
		name       string
		components func() []model.TopMapping
		check      func(error) bool
	}{
		{
			name:       "Missing",
			components: func() []model.TopMapping { return nil },
			check:      fluentmap.IsMissingComponent,
		},
		{
			name: "Ambiguous",
			components: func() []model.TopMapping {
				return []model.TopMapping{addressComponent(d), addressComponent(d)}
			},
			check: fluentmap.IsAmbiguousComponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			customer := model.NewClass(d.Customer)
			customer.AddComponent(model.NewReferenceComponent(d.Customer, d.Customer.MustMember("Address")))
			b := &model.Bucket{}
			b.Add(customer)
			b.Add(tt.components()...)
			err := (&visit.ComponentResolution{}).Visit(b)
			require.Error(err)
			require.True(tt.check(err))
			require.Contains(err.Error(), "shop.Address")
			require.Contains(err.Error(), "shop.Customer.Address")
		})
	}
}

func TestComponentResolution_Cycle(t *testing.T) {
	require := require.New(t)
	in := types.InPackage(shop.Package)
	left := types.Struct("Left", in)
	right := types.Struct("Right", in)
	left.AddField("Right", right)
	right.AddField("Left", left)
	owner := types.Struct("Owner", in, types.Field("Left", left))

	l := model.NewExternalComponent(left)
	l.AddComponent(model.NewReferenceComponent(left, left.MustMember("Right")))
	r := model.NewExternalComponent(right)
	r.AddComponent(model.NewReferenceComponent(right, right.MustMember("Left")))
	c := model.NewClass(owner)
	c.AddComponent(model.NewReferenceComponent(owner, owner.MustMember("Left")))

	b := &model.Bucket{}
	b.Add(c, l, r)
	err := (&visit.ComponentResolution{}).Visit(b)
	require.True(fluentmap.IsComponentCycle(err))
	var cycle *fluentmap.ComponentCycleError
	require.ErrorAs(err, &cycle)
	require.Equal([]string{"shop.Left", "shop.Right", "shop.Left"}, cycle.Path)
}

func TestColumnPrefix(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	in := types.InPackage(shop.Package)
	geo := types.Struct("Geo", in, types.Field("Lat", types.Decimal))
	d.Address.AddField("Geo", geo)

	addr := model.NewComponent(d.Customer, d.Customer.MustMember("Address"))
	model.Set(addr, model.Component.ColumnPrefix, model.UserSupplied, "{property}_")
	street := model.NewProperty(d.Address, d.Address.MustMember("Street"))
	city := model.NewProperty(d.Address, d.Address.MustMember("City"))
	city.Columns.Replace(model.UserSupplied, model.NewColumn("town", model.UserSupplied))
	addr.AddProperty(street)
	addr.AddProperty(city)
	nested := model.NewComponent(d.Address, d.Address.MustMember("Geo"))
	model.Set(nested, model.Component.ColumnPrefix, model.UserSupplied, "geo_")
	lat := model.NewProperty(geo, geo.MustMember("Lat"))
	nested.AddProperty(lat)
	addr.AddComponent(nested)

	customer := model.NewClass(d.Customer)
	name := model.NewProperty(d.Customer, d.Customer.MustMember("Name"))
	customer.AddProperty(name)
	customer.AddComponent(addr)

	b := &model.Bucket{}
	b.Add(customer)
	require.NoError((&visit.ColumnPrefix{}).Visit(b))

	require.Equal([]string{"Address_Street"}, street.Columns.Names())
	require.Equal([]string{"Address_town"}, city.Columns.Names())
	require.True(city.Columns.HasUserDefined())
	require.Equal([]string{"Address_geo_Lat"}, lat.Columns.Names())
	require.Equal([]string{"Name"}, name.Columns.Names())
}
