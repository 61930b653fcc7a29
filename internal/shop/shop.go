// Package shop declares a small retail domain in the type graph. It is
// shared by tests across packages.
package shop

import "github.com/syssam/fluentmap/types"

// Package is the package qualifier of every shop type.
const Package = "shop"

// Domain holds the shop types.
type Domain struct {
	Region      *types.Type
	Address     *types.Type
	Customer    *types.Type
	VipCustomer *types.Type
	GoldMember  *types.Type
	Order       *types.Type
	OrderLine   *types.Type
	Product     *types.Type
	Post        *types.Type
	Billable    *types.Type
}

// New returns a fresh domain. Types are rebuilt on every call so tests can
// mutate them freely.
func New() *Domain {
	in := types.InPackage(Package)
	d := &Domain{}
	d.Billable = types.Interface("Billable", in)
	d.Region = types.Struct("Region", in,
		types.Field("Id", types.Int),
		types.Field("Name", types.String),
	)
	d.Address = types.Struct("Address", in,
		types.Field("Street", types.String),
		types.Field("City", types.String),
		types.Field("Zip", types.String),
	)
	d.Customer = types.Struct("Customer", in, types.Implements(d.Billable),
		types.Field("Id", types.Int),
		types.Field("Name", types.String),
		types.Field("Email", types.String),
		types.Field("Version", types.Int),
		types.Field("Region", d.Region),
		types.Field("Address", d.Address),
		types.Field("Tags", types.SliceOf(types.String)),
	)
	d.VipCustomer = types.Struct("VipCustomer", in, types.Extends(d.Customer),
		types.Field("Discount", types.Decimal),
	)
	d.GoldMember = types.Struct("GoldMember", in, types.Extends(d.VipCustomer),
		types.Field("Concierge", types.String),
	)
	d.Product = types.Struct("Product", in,
		types.Field("Id", types.Int),
		types.Field("Name", types.String),
		types.Field("Price", types.Decimal),
	)
	d.OrderLine = types.Struct("OrderLine", in,
		types.Field("Quantity", types.Int),
		types.Field("Product", d.Product),
	)
	d.Order = types.Struct("Order", in,
		types.Field("Id", types.Int),
		types.Field("Number", types.String),
		types.Field("Customer", d.Customer),
		types.Field("Lines", types.SliceOf(d.OrderLine)),
		types.Field("Products", types.SliceOf(d.Product)),
	)
	d.Customer.AddField("Orders", types.SliceOf(d.Order))
	d.Product.AddField("Orders", types.SliceOf(d.Order))
	d.Post = types.Struct("Post", in,
		types.Field("Id", types.Int64),
		types.Field("Title", types.String),
		types.Field("CreatedAt", types.Time),
		types.Field("UpdatedAt", types.Time),
		types.Field("DeletedAt", types.Time),
		types.Field("Version", types.Int),
	)
	return d
}

// Entities returns the entity types in declaration order.
func (d *Domain) Entities() []*types.Type {
	return []*types.Type{d.Region, d.Customer, d.VipCustomer, d.GoldMember, d.Order, d.Product}
}
