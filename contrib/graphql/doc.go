// Package graphql exports compiled mappings as a GraphQL schema.
//
// Every class of a document becomes an object type. Subclasses become
// object types carrying the fields of their parents, components become
// object types shared by every usage site and polymorphic references become
// unions of their meta value classes.
//
// # Usage
//
//	doc, err := compiler.Compile(ctx, compiler.WithProviders(customerMap, orderMap))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := graphql.WriteFile("schema.graphql", doc); err != nil {
//	    log.Fatal(err)
//	}
//
// # Type mapping
//
// Primitive members map through their engine type:
//
//	String      String
//	Int32       Int
//	Int64       Int64 (custom scalar)
//	Boolean     Boolean
//	Single      Float
//	Double      Float
//	Decimal     Decimal (custom scalar)
//	DateTime    Time (custom scalar)
//	TimeSpan    Duration (custom scalar)
//	Guid        UUID (custom scalar)
//	BinaryBlob  Bytes (custom scalar)
//
// Use WithScalar to change a mapping. Custom scalars are declared once in
// the exported schema. A property is non-null when one of its columns is
// not-null; collections are always non-null lists of non-null elements.
//
// # Relay
//
// With WithRelaySpec (the default), classes with a single-column id
// implement the Node interface and expose their id as "id: ID!".
//
// # gqlgen
//
// LoadGQLGenConfig, BindScalars and BindObjects keep a gqlgen.yml in sync with the
// exported schema:
//
//	cfg, err := graphql.LoadGQLGenConfig("gqlgen.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sd, err := graphql.Schema(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.BindScalars("schema.graphql", sd)
//	err = graphql.SaveGQLGenConfig("gqlgen.yml", cfg)
package graphql
