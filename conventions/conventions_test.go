package conventions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
)

type upperTables struct{}

func (upperTables) ApplyClass(i *ClassInstance) { i.Table("T_" + i.EntityType().ShortName()) }

type lengths struct{ n int }

func (l *lengths) ApplyProperty(i *PropertyInstance) { i.Length(l.n) }
func (*lengths) AllowMultiple()                      {}

func TestContainer_Add(t *testing.T) {
	require := require.New(t)
	c, err := New(upperTables{}, upperTables{}, &lengths{n: 1}, &lengths{n: 2})
	require.NoError(err)
	require.Equal(3, c.Len())
	require.Len(Find[ClassConvention](c), 1)
	props := Find[PropertyConvention](c)
	require.Len(props, 2)
	require.Equal(1, props[0].(*lengths).n)
	require.Equal(2, props[1].(*lengths).n)

	err = c.Add("not a convention")
	require.Error(err)
	require.True(fluentmap.IsConfigError(err))
	require.Nil(Find[ClassConvention](nil))
}

type source struct{}

func (source) Conventions() []any { return []any{DefaultLazy.Always(), 42} }
func (source) Identifier() string { return "test-source" }

func TestContainer_Source(t *testing.T) {
	require := require.New(t)
	c := MustNew()
	err := c.AddSource(source{})
	require.Error(err)
	require.Contains(err.Error(), "test-source")
	require.True(fluentmap.IsConfigError(err))

	require.NoError(c.Setup(func(c *Container) error {
		return c.Add(PluralizeTableNames(), DefaultCascade.All())
	}))
	require.Equal(3, c.Len())
}

func TestApply_Class(t *testing.T) {
	d := shop.New()
	t.Run("Convention", func(t *testing.T) {
		require := require.New(t)
		m := model.NewClass(d.Customer)
		Apply(MustNew(upperTables{}), m, d.Customer)
		require.Equal("T_Customer", m.TableName())
		layer, _ := model.LayerOf(m, model.Class.Table)
		require.Equal(model.Conventions, layer)
	})
	t.Run("UserValueWins", func(t *testing.T) {
		require := require.New(t)
		m := model.NewClass(d.Customer)
		model.Set(m, model.Class.Table, model.UserSupplied, "clients")
		Apply(MustNew(upperTables{}, PluralizeTableNames()), m, d.Customer)
		require.Equal("clients", m.TableName())
	})
	t.Run("Pluralize", func(t *testing.T) {
		require := require.New(t)
		m := model.NewClass(d.OrderLine)
		Apply(MustNew(PluralizeTableNames()), m, d.OrderLine)
		require.Equal("order_lines", m.TableName())
	})
	t.Run("RegistrationOrder", func(t *testing.T) {
		require := require.New(t)
		m := model.NewClass(d.Customer)
		Apply(MustNew(PluralizeTableNames(), upperTables{}), m, d.Customer)
		require.Equal("T_Customer", m.TableName())
	})
	t.Run("When", func(t *testing.T) {
		require := require.New(t)
		c := MustNew(Class.When(
			func(i *ClassInstance) bool { return i.EntityType() == d.Order },
			func(i *ClassInstance) { i.BatchSize(25) },
		))
		order, customer := model.NewClass(d.Order), model.NewClass(d.Customer)
		Apply(c, order, d.Order)
		Apply(c, customer, d.Customer)
		require.Equal(25, model.Get(order, model.Class.BatchSize))
		require.False(model.IsSpecified(customer, model.Class.BatchSize))
	})
}

func TestApply_Id(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	id := model.NewId(d.Customer.MustMember("Id"))
	c := MustNew(
		PrimaryKey.Name.Is(func(i *IdInstance) string { return i.EntityType().ShortName() + "Id" }),
		Id.Always(func(i *IdInstance) { i.GeneratedBy("identity") }),
	)
	Apply(c, id, d.Customer)
	require.Equal([]string{"CustomerId"}, id.Columns.Names())
	require.Equal("identity", id.Generator.Class())

	user := model.NewId(d.Customer.MustMember("Id"))
	user.Columns.Add(model.UserSupplied, model.NewColumn("customer_key", model.UserSupplied))
	user.Generator = model.NewGenerator("assigned", model.UserSupplied)
	Apply(c, user, d.Customer)
	require.Equal([]string{"customer_key"}, user.Columns.Names())
	require.Equal("assigned", user.Generator.Class())
}

func TestApply_Property(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	email := model.NewProperty(d.Customer, d.Customer.MustMember("Email"))
	name := model.NewProperty(d.Customer, d.Customer.MustMember("Name"))
	c := MustNew(Property.When(
		func(i *PropertyInstance) bool { return i.Name() == "Email" },
		func(i *PropertyInstance) {
			i.Column("email_address")
			i.Length(320)
			i.NotNull(true)
		},
	))
	Apply(c, email, d.Customer)
	Apply(c, name, d.Customer)

	cols := email.Columns.Columns()
	require.Len(cols, 1)
	require.Equal("email_address", cols[0].Name())
	require.Equal(320, model.Get(cols[0], model.Column.Length))
	require.True(model.Get(cols[0], model.Column.NotNull))
	require.Equal([]string{"Name"}, name.Columns.Names())
}

func TestApply_ForeignKey(t *testing.T) {
	d := shop.New()
	c := MustNew(ForeignKey.EndsWith("Id"))
	t.Run("Reference", func(t *testing.T) {
		require := require.New(t)
		r := model.NewManyToOne(d.Order, d.Order.MustMember("Customer"))
		Apply(c, r, d.Order)
		require.Equal([]string{"CustomerId"}, r.Columns.Names())
	})
	t.Run("HasMany", func(t *testing.T) {
		require := require.New(t)
		col := model.NewCollection(model.KindBag, d.Customer, d.Customer.MustMember("Orders"))
		col.Relationship = model.NewOneToMany(d.Order)
		Apply(c, col, d.Customer)
		require.Equal([]string{"CustomerId"}, col.Key.Columns.Names())
	})
	t.Run("HasManyToMany", func(t *testing.T) {
		require := require.New(t)
		col := model.NewCollection(model.KindBag, d.Order, d.Order.MustMember("Products"))
		mm := model.NewManyToMany(d.Product)
		col.Relationship = mm
		Apply(c, col, d.Order)
		require.Equal([]string{"OrderId"}, col.Key.Columns.Names())
		require.Equal([]string{"ProductId"}, mm.Columns.Names())
	})
	t.Run("JoinedSubclass", func(t *testing.T) {
		require := require.New(t)
		s := model.NewSubclass(d.VipCustomer)
		s.SubclassType = model.JoinedSubclass
		Apply(c, s, d.VipCustomer)
		require.Equal([]string{"CustomerId"}, s.Key.Columns.Names())

		plain := model.NewSubclass(d.VipCustomer)
		Apply(c, plain, d.VipCustomer)
		require.Zero(plain.Key.Columns.Len())
	})
}

func TestApply_CollectionAspects(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	var calls []string
	c := MustNew(
		HasMany.Always(func(*CollectionInstance) { calls = append(calls, "has-many") }),
		HasManyToMany.Always(func(*CollectionInstance) { calls = append(calls, "many-to-many") }),
		HasManyToMany.When(
			func(i *CollectionInstance) bool { return i.Name() == "Nope" },
			func(*CollectionInstance) { calls = append(calls, "rejected") },
		),
	)
	orders := model.NewCollection(model.KindBag, d.Customer, d.Customer.MustMember("Orders"))
	orders.Relationship = model.NewOneToMany(d.Order)
	products := model.NewCollection(model.KindSet, d.Order, d.Order.MustMember("Products"))
	products.Relationship = model.NewManyToMany(d.Product)
	Apply(c, orders, d.Customer)
	Apply(c, products, d.Order)
	require.Equal([]string{"has-many", "many-to-many"}, calls)
}

func TestApply_Document(t *testing.T) {
	require := require.New(t)
	doc := model.NewDocument()
	Apply(MustNew(DefaultLazy.Never(), DefaultAccess.Property(), DefaultCascade.SaveUpdate()), doc, nil)
	require.False(model.Get(doc, model.Doc.DefaultLazy))
	require.True(model.IsSpecified(doc, model.Doc.DefaultLazy))
	require.Equal("property", model.Get(doc, model.Doc.DefaultAccess))
	require.Equal("save-update", model.Get(doc, model.Doc.DefaultCascade))
}

func TestApply_Version(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	v := model.NewVersion(d.Customer.MustMember("Version"))
	Apply(MustNew(Version.Always(func(i *VersionInstance) {
		i.Column("row_version")
		i.UnsavedValue("0")
	})), v, d.Customer)
	require.Equal([]string{"row_version"}, v.Columns.Names())
	require.Equal("0", model.Get(v, model.Version.UnsavedValue))
}

func TestApply_Empty(t *testing.T) {
	d := shop.New()
	m := model.NewClass(d.Customer)
	Apply(nil, m, d.Customer)
	Apply(MustNew(), m, d.Customer)
	require.Equal(t, "`Customer`", m.TableName())
}
