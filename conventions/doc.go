// Package conventions holds the rules applied to every compiled mapping
// before validation.
//
// A convention is any value implementing one or more aspect interfaces
// (ClassConvention, PropertyConvention, ...). Conventions write at the
// Conventions layer, so values set by mapping declarations always win and
// automapper defaults always lose:
//
//	c := conventions.MustNew(
//		conventions.PluralizeTableNames(),
//		conventions.PrimaryKey.Name.Is(func(i *conventions.IdInstance) string { return "id" }),
//		conventions.ForeignKey.EndsWith("Id"),
//		conventions.DefaultLazy.Always(),
//	)
//
// Conventions are applied in registration order. Registering a second value
// of the same concrete type is ignored unless the type implements Multiple.
package conventions
