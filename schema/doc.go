// Package schema provides the fluent builders used to declare mappings.
//
// Each builder records the calls made on it and replays them against a
// fresh mapping fragment whenever Mapping or Action is called, so a builder
// can be compiled any number of times with identical results. Every value a
// builder sets is stored at the UserSupplied layer.
//
// # Quick Start
//
//	customer := schema.NewClassMap(customerType)
//	customer.Table("customers")
//	customer.Id("Id").GeneratedBy().Identity()
//	customer.Map("Email").Length(255).Unique()
//	customer.References("Region").Not().Nullable()
//	customer.HasMany("Orders").KeyColumn("customer_id").Inverse().Cascade().All()
//	customer.Component("Address", func(c *schema.ComponentPart) {
//	    c.Map("Street")
//	    c.Map("City")
//	}).ColumnPrefix("address_")
//
// Inheritance is declared with independent subclass maps that the compiler
// pairs to their nearest mapped ancestor:
//
//	vip := schema.NewSubclassMap(vipCustomerType)
//	vip.DiscriminatorValue("vip")
//	vip.Map("Discount")
//
// Automapped entities are adjusted with overrides:
//
//	schema.AutoMap(source).Override(customerType, func(m *schema.OverrideMap) {
//	    m.IgnoreProperty("Cached")
//	    m.Table("customers")
//	})
//
// Misuse such as naming a member the type does not declare does not panic.
// It is recorded and reported by the builder's Err method, which the
// compiler checks before compiling.
package schema
