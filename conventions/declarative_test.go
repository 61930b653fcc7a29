package conventions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
)

func TestNewDeclarative_Errors(t *testing.T) {
	tests := []struct {
		name string
		decl Declaration
	}{
		{"UnknownTarget", Declaration{Target: "table"}},
		{"UnknownKey", Declaration{Target: TargetProperty, Set: map[string]string{"colour": "red"}}},
		{"BadBool", Declaration{Target: TargetProperty, Set: map[string]string{"not-null": "yes please"}}},
		{"BadInt", Declaration{Target: TargetClass, Set: map[string]string{"batch-size": "ten"}}},
		{"BadExpression", Declaration{Target: TargetClass, When: "name ==", Set: map[string]string{"table": "x"}}},
		{"UnknownVariable", Declaration{Target: TargetClass, When: "colour == 'red'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDeclarative(tt.decl)
			require.Error(t, err)
			require.True(t, fluentmap.IsConfigError(err))
		})
	}
}

func TestDeclarative_Property(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	conv, err := NewDeclarative(Declaration{
		Target: TargetProperty,
		When:   `name == "Email" && entity == "Customer"`,
		Set:    map[string]string{"length": "320", "not-null": "true", "column": "email_address"},
	})
	require.NoError(err)
	c := MustNew(conv)

	email := model.NewProperty(d.Customer, d.Customer.MustMember("Email"))
	name := model.NewProperty(d.Customer, d.Customer.MustMember("Name"))
	Apply(c, email, d.Customer)
	Apply(c, name, d.Customer)

	col := email.Columns.Columns()[0]
	require.Equal("email_address", col.Name())
	require.Equal(320, model.Get(col, model.Column.Length))
	require.True(model.Get(col, model.Column.NotNull))
	require.False(model.IsSpecified(name.Columns.Columns()[0], model.Column.Length))
}

func TestDeclarative_TargetMismatch(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	conv, err := NewDeclarative(Declaration{Target: TargetProperty, Set: map[string]string{"access": "field"}})
	require.NoError(err)
	class := model.NewClass(d.Customer)
	Apply(MustNew(conv), class, d.Customer)
	require.Equal("`Customer`", class.TableName())
}

func TestDeclarative_ClassAndCollection(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	tables, err := NewDeclarative(Declaration{
		Target: TargetClass,
		When:   `entity.startsWith("Cust")`,
		Set:    map[string]string{"table": "clients", "batch-size": "50"},
	})
	require.NoError(err)
	m2m, err := NewDeclarative(Declaration{
		Target: TargetCollection,
		When:   "many_to_many",
		Set:    map[string]string{"table": "order_products", "cascade": "all"},
	})
	require.NoError(err)
	c := MustNew(tables, m2m)

	customer, order := model.NewClass(d.Customer), model.NewClass(d.Order)
	Apply(c, customer, d.Customer)
	Apply(c, order, d.Order)
	require.Equal("clients", customer.TableName())
	require.Equal(50, model.Get(customer, model.Class.BatchSize))
	require.Equal("`Order`", order.TableName())

	products := model.NewCollection(model.KindSet, d.Order, d.Order.MustMember("Products"))
	products.Relationship = model.NewManyToMany(d.Product)
	lines := model.NewCollection(model.KindBag, d.Order, d.Order.MustMember("Lines"))
	lines.Relationship = model.NewOneToMany(d.OrderLine)
	Apply(c, products, d.Order)
	Apply(c, lines, d.Order)
	require.Equal("order_products", products.TableName())
	require.Equal("all", model.Get(products, model.Collection.Cascade))
	require.False(model.IsSpecified(lines, model.Collection.Cascade))
}
