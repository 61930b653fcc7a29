// Package gen scaffolds Go mapping code from a declarative project.
//
// The generated file declares the project's type graph with the types
// builders and one provider function per declaration:
//
//	func CustomerMap(t *Types) *schema.ClassMap {
//		c := schema.NewClassMap(t.Customer)
//		c.Table("clients")
//		c.Id("Id").GeneratedBy().Identity()
//		c.Map("Name").Length(100).Not().Nullable()
//		return c
//	}
//
// Providers returns every provider of the file, so a compiler can be built
// with compiler.WithProviders(Providers(NewTypes())...). The scaffold is a
// starting point for hand-written mappings: once edited, it replaces the
// project file.
//
// # Pipeline
//
//	fluentmap.yaml
//	        ↓
//	   load.Project (parsed declarations)
//	        ↓
//	   load.Loaded (resolved types, validated builders)
//	        ↓
//	   Generator (jennifer statements)
//	        ↓
//	   goimports formatting
//
// Generation only starts from a project that built without errors, so the
// emitter does not validate declarations again.
package gen
