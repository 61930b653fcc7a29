// Package fluentmap builds object-relational mappings in code and compiles
// them into the engine's hbm.xml format.
//
// Mappings are declared with the builders in the schema package, inferred by
// the automapper, or loaded from YAML. Every declaration is a Provider whose
// Action describes how it contributes to a compilation:
//
//	customer := schema.NewClassMap(customerType)
//	customer.Id("Id").GeneratedBy().Identity()
//	customer.Map("Name").Length(100).Not().Nullable()
//	customer.HasMany("Orders").Inverse().Cascade().All()
//
//	doc, err := compiler.Compile(ctx,
//		compiler.WithProviders(customer),
//		compiler.WithConventions(conventions.PluralizeTableNames()),
//	)
//
// The compiler gathers actions into a Bucket, runs the pass chain in
// compiler/visit (subclass pairing, component resolution, column prefixes,
// relationship pairing, many-to-many table names, conventions, key pairing
// and validation) and returns a model.Document ready for the hbm package.
//
// # Layers
//
// Every attribute is stored at a precedence layer. Builders write at
// model.UserSupplied, conventions at model.Conventions and the automapper
// and built-in defaults at model.Defaults. The highest layer wins, so a
// convention never overrides an explicit setting.
package fluentmap
