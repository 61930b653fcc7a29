package schema

import (
	"bytes"
	"context"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/require"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/dialect/sql"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

func identity(t *types.Type) *model.IdMapping {
	id := model.NewId(t.MustMember("Id"))
	id.Generator = model.NewGenerator("identity", model.UserSupplied)
	return id
}

func property(t *types.Type, name string) *model.PropertyMapping {
	return model.NewProperty(t, t.MustMember(name))
}

func column(c model.Columned) *model.ColumnMapping {
	return c.ColumnSet().Columns()[0]
}

func shopDocument(d *shop.Domain) *model.Document {
	region := model.NewClass(d.Region)
	region.Id = identity(d.Region)
	region.AddProperty(property(d.Region, "Name"))

	customer := model.NewClass(d.Customer)
	model.Set(customer, model.Class.Table, model.UserSupplied, "clients")
	customer.Id = identity(d.Customer)
	name := property(d.Customer, "Name")
	model.Set(column(name), model.Column.Length, model.UserSupplied, 100)
	model.Set(column(name), model.Column.NotNull, model.UserSupplied, true)
	customer.AddProperty(name)
	email := property(d.Customer, "Email")
	model.Set(column(email), model.Column.Unique, model.UserSupplied, true)
	customer.AddProperty(email)
	customer.AddReference(model.NewManyToOne(d.Customer, d.Customer.MustMember("Region")))
	orders := model.NewCollection(model.KindBag, d.Customer, d.Customer.MustMember("Orders"))
	orders.Relationship = model.NewOneToMany(d.Order)
	orders.Key.Columns.Add(model.UserSupplied, model.NewColumn("Customer_id", model.UserSupplied))
	customer.AddCollection(orders)

	vip := model.NewSubclass(d.VipCustomer)
	vip.SubclassType = model.JoinedSubclass
	model.Set(vip, model.Subclass.Table, model.UserSupplied, "vips")
	vip.Key.Columns.Add(model.UserSupplied, model.NewColumn("Customer_id", model.UserSupplied))
	vip.AddProperty(property(d.VipCustomer, "Discount"))
	customer.AddSubclass(vip)

	order := model.NewClass(d.Order)
	order.Id = identity(d.Order)
	order.AddProperty(property(d.Order, "Number"))
	order.AddReference(model.NewManyToOne(d.Order, d.Order.MustMember("Customer")))
	products := model.NewCollection(model.KindBag, d.Order, d.Order.MustMember("Products"))
	mm := model.NewManyToMany(d.Product)
	mm.Columns.Add(model.UserSupplied, model.NewColumn("Product_id", model.UserSupplied))
	products.Relationship = mm
	model.Set(products, model.Collection.Table, model.UserSupplied, "OrderToProduct")
	products.Key.Columns.Add(model.UserSupplied, model.NewColumn("Order_id", model.UserSupplied))
	order.AddCollection(products)

	product := model.NewClass(d.Product)
	product.Id = identity(d.Product)
	product.AddProperty(property(d.Product, "Price"))

	doc := model.NewDocument()
	doc.Classes = []*model.ClassMapping{region, customer, order, product}
	return doc
}

func tableNames(tables []*schema.Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func TestNewExporter(t *testing.T) {
	for _, name := range dialect.Names() {
		e, err := NewExporter(name)
		require.NoError(t, err)
		require.Equal(t, name, e.Dialect())
	}
	_, err := NewExporter("oracle")
	require.True(t, fluentmap.IsConfigError(err))

	e, err := ForSettings(dialect.Settings{Dialect: dialect.Postgres, DefaultSchema: "sales"})
	require.NoError(t, err)
	require.Equal(t, "sales", e.schema)
}

func TestExporter_Tables(t *testing.T) {
	require := require.New(t)
	e, err := NewExporter(dialect.SQLite)
	require.NoError(err)

	tables, err := e.Tables(shopDocument(shop.New()))
	require.NoError(err)
	require.Equal([]string{"Region", "clients", "vips", "Order", "Product", "OrderToProduct"}, tableNames(tables))

	clients := tables[1]
	require.Len(clients.PrimaryKey.Parts, 1)
	require.Equal("Id", clients.PrimaryKey.Parts[0].C.Name)
	name, ok := clients.Column("Name")
	require.True(ok)
	require.False(name.Type.Null)
	email, _ := clients.Column("Email")
	require.True(email.Type.Null)
	idx, ok := clients.Index("clients_Email_key")
	require.True(ok)
	require.True(idx.Unique)
	fk, ok := clients.ForeignKey("clients_Region_id_fk")
	require.True(ok)
	require.Equal("Region", fk.RefTable.Name)

	vips := tables[2]
	require.Equal("Customer_id", vips.PrimaryKey.Parts[0].C.Name)
	require.Len(vips.ForeignKeys, 1)
	require.Same(clients, vips.ForeignKeys[0].RefTable)

	// The collection key and the reference share one column.
	order := tables[3]
	require.Len(order.Columns, 3)
	require.Len(order.ForeignKeys, 1)

	join := tables[5]
	require.Len(join.Columns, 2)
	require.Len(join.ForeignKeys, 2)
	require.Nil(join.PrimaryKey, "bags have no primary key")
}

func TestExporter_Statements(t *testing.T) {
	tests := []struct {
		dialect string
		want    []string
	}{
		{dialect.SQLite, []string{"CREATE TABLE `clients`", "REFERENCES `Region`", "AUTOINCREMENT"}},
		{dialect.Postgres, []string{`CREATE TABLE "clients"`, "serial", `REFERENCES "Region"`}},
		{dialect.MySQL, []string{"CREATE TABLE `clients`", "AUTO_INCREMENT", "varchar(100)"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			require := require.New(t)
			e, err := NewExporter(tt.dialect)
			require.NoError(err)
			stmts, err := e.Statements(context.Background(), shopDocument(shop.New()))
			require.NoError(err)
			require.NotEmpty(stmts)
			ddl := ""
			for _, s := range stmts {
				ddl += s + "\n"
			}
			for _, w := range tt.want {
				require.Contains(ddl, w)
			}
		})
	}
}

func TestExporter_WriteTo(t *testing.T) {
	e, err := NewExporter(dialect.Postgres)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, e.WriteTo(context.Background(), &buf, shopDocument(shop.New())))
	require.Contains(t, buf.String(), ";\n")
}

func TestExporter_SQLType(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	doc := shopDocument(d)
	region, _ := doc.Class(d.Region.String())
	model.Set(column(region.Properties[0]), model.Column.SQLType, model.UserSupplied, "varchar(42)")

	e, err := NewExporter(dialect.MySQL)
	require.NoError(err)
	tables, err := e.Tables(doc)
	require.NoError(err)
	name, ok := tables[0].Column("Name")
	require.True(ok)
	require.Equal(&schema.StringType{T: "varchar", Size: 42}, name.Type.Type)
}

func TestExporter_TablePerHierarchy(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	doc := shopDocument(d)
	customer, _ := doc.Class(d.Customer.String())
	customer.Discriminator = model.NewDiscriminator("Kind", model.UserSupplied)
	customer.Subclasses[0].SubclassType = model.PlainSubclass

	e, err := NewExporter(dialect.Postgres)
	require.NoError(err)
	tables, err := e.Tables(doc)
	require.NoError(err)
	require.Equal([]string{"Region", "clients", "Order", "Product", "OrderToProduct"}, tableNames(tables))
	discount, ok := tables[1].Column("Discount")
	require.True(ok)
	require.True(discount.Type.Null)
	kind, ok := tables[1].Column("Kind")
	require.True(ok)
	require.False(kind.Type.Null)
}

func TestExporter_Errors(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	doc := shopDocument(d)
	doc.Classes = doc.Classes[1:]

	e, err := NewExporter(dialect.SQLite)
	require.NoError(err)
	_, err = e.Tables(doc)
	require.ErrorContains(err, "unmapped entity shop.Region")
}

func TestExporter_Apply(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	drv, err := sql.OpenSettings(dialect.ForSQLite(":memory:"))
	require.NoError(err)
	defer drv.Close()
	drv.DB().SetMaxOpenConns(1)

	e, err := NewExporter(dialect.SQLite)
	require.NoError(err)
	stmts, err := e.Apply(ctx, drv, shopDocument(shop.New()))
	require.NoError(err)
	require.Len(stmts, 7, "six tables and one unique index")

	rows := &sql.Rows{}
	require.NoError(drv.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name", []any{}, rows))
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(rows.Err())
	require.Equal([]string{"Order", "OrderToProduct", "Product", "Region", "clients", "vips"}, names)
}
