package visit_test

import (
	"testing"

	"github.com/syssam/fluentmap/compiler/visit"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"

	"github.com/stretchr/testify/require"
)

func pairSubclasses(t *testing.T, b *model.Bucket) {
	t.Helper()
	require.NoError(t, (&visit.SubclassPairing{}).Visit(b))
}

func subclassNames(subs []*model.SubclassMapping) []string {
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Type.ShortName()
	}
	return names
}

func TestSubclassPairing_NearestParent(t *testing.T) {
	d := shop.New()
	orders := [][]*types.Type{
		{d.VipCustomer, d.GoldMember},
		{d.GoldMember, d.VipCustomer},
	}
	for _, order := range orders {
		t.Run(order[0].ShortName()+"First", func(t *testing.T) {
			require := require.New(t)
			b := &model.Bucket{}
			customer := model.NewClass(d.Customer)
			b.Add(customer)
			for _, typ := range order {
				b.Add(model.NewSubclass(typ))
			}
			pairSubclasses(t, b)

			require.Equal([]string{"VipCustomer"}, subclassNames(customer.Subclasses))
			vip := customer.Subclasses[0]
			require.Equal([]string{"GoldMember"}, subclassNames(vip.Subclasses))
			require.Empty(vip.Subclasses[0].Subclasses)
			require.Empty(b.Subclasses)
		})
	}
}

func TestSubclassPairing_ExplicitExtends(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	in := types.InPackage(shop.Package)
	unrelated := types.Struct("Legacy", in)
	partner := types.Struct("Partner", in, types.Extends(unrelated))

	b := &model.Bucket{}
	customer := model.NewClass(d.Customer)
	order := model.NewClass(d.Order)
	b.Add(customer, order)
	s := model.NewSubclass(partner)
	s.Extends = d.Customer
	b.Add(s, model.NewSubclass(d.VipCustomer))
	pairSubclasses(t, b)

	require.ElementsMatch([]string{"VipCustomer", "Partner"}, subclassNames(customer.Subclasses))
	require.Empty(order.Subclasses)
}

func TestSubclassPairing_ExtendsSubclass(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	b := &model.Bucket{}
	customer := model.NewClass(d.Customer)
	b.Add(customer)
	gold := model.NewSubclass(d.GoldMember)
	gold.Extends = d.VipCustomer
	b.Add(gold, model.NewSubclass(d.VipCustomer))
	pairSubclasses(t, b)

	require.Equal([]string{"VipCustomer"}, subclassNames(customer.Subclasses))
	require.Equal([]string{"GoldMember"}, subclassNames(customer.Subclasses[0].Subclasses))
}

func TestSubclassPairing_Interface(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	b := &model.Bucket{}
	billable := model.NewClass(d.Billable)
	b.Add(billable)
	b.Add(model.NewSubclass(d.GoldMember), model.NewSubclass(d.Customer), model.NewSubclass(d.VipCustomer))
	pairSubclasses(t, b)

	require.Equal([]string{"Customer"}, subclassNames(billable.Subclasses))
	customer := billable.Subclasses[0]
	require.Equal([]string{"VipCustomer"}, subclassNames(customer.Subclasses))
	require.Equal([]string{"GoldMember"}, subclassNames(customer.Subclasses[0].Subclasses))
}

func TestSubclassPairing_InterfaceUnmappedBase(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	b := &model.Bucket{}
	billable := model.NewClass(d.Billable)
	b.Add(billable, model.NewSubclass(d.GoldMember))
	pairSubclasses(t, b)

	require.Equal([]string{"GoldMember"}, subclassNames(billable.Subclasses))
}

func TestSubclassPairing_Unrelated(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	b := &model.Bucket{}
	customer := model.NewClass(d.Customer)
	b.Add(customer, model.NewSubclass(d.Product))
	pairSubclasses(t, b)

	require.Empty(customer.Subclasses)
	require.Empty(b.Subclasses)
	var found bool
	model.Walk(customer, func(n model.Node) bool {
		if s, ok := n.(*model.SubclassMapping); ok && s.Type.Is(d.Product) {
			found = true
		}
		return true
	})
	require.False(found)
}

func TestSubclassPairing_Ties(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	in := types.InPackage(shop.Package)
	guest := types.Struct("Guest", in, types.Extends(d.Customer))

	b := &model.Bucket{}
	customer := model.NewClass(d.Customer)
	b.Add(customer, model.NewSubclass(d.VipCustomer), model.NewSubclass(guest))
	pairSubclasses(t, b)

	require.Equal([]string{"VipCustomer", "Guest"}, subclassNames(customer.Subclasses))
}

func TestSubclassPairing_SubclassType(t *testing.T) {
	d := shop.New()
	tests := []struct {
		name  string
		setup func(*model.ClassMapping)
		want  model.SubclassType
	}{
		{
			name:  "Joined",
			setup: func(*model.ClassMapping) {},
			want:  model.JoinedSubclass,
		},
		{
			name: "Discriminated",
			setup: func(c *model.ClassMapping) {
				c.Discriminator = model.NewDiscriminator("kind", model.UserSupplied)
			},
			want: model.PlainSubclass,
		},
		{
			name: "Union",
			setup: func(c *model.ClassMapping) {
				c.Discriminator = model.NewDiscriminator("kind", model.UserSupplied)
				model.Set(c, model.Class.UnionSubclass, model.UserSupplied, true)
			},
			want: model.UnionSubclass,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			b := &model.Bucket{}
			customer := model.NewClass(d.Customer)
			tt.setup(customer)
			b.Add(customer, model.NewSubclass(d.VipCustomer), model.NewSubclass(d.GoldMember))
			pairSubclasses(t, b)

			vip := customer.Subclasses[0]
			require.Equal(tt.want, vip.SubclassType)
			require.Equal(tt.want, vip.Subclasses[0].SubclassType)
		})
	}
}
