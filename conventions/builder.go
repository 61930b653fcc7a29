package conventions

// Builders for lambda conventions. Each builder returns a convention of one
// aspect, optionally guarded by an acceptance criterion:
//
//	conventions.Property.When(
//		func(p *conventions.PropertyInstance) bool { return p.Name() == "Email" },
//		func(p *conventions.PropertyInstance) { p.Length(320) },
//	)
var (
	Class         classBuilder
	Subclass      subclassBuilder
	Id            idBuilder
	Property      propertyBuilder
	Reference     referenceBuilder
	HasMany       hasManyBuilder
	HasManyToMany hasManyToManyBuilder
	Component     componentBuilder
	Version       versionBuilder
)

type classBuilder struct{}

// Always applies fn to every class.
func (classBuilder) Always(fn func(*ClassInstance)) ClassConvention {
	return &builtClass{apply: fn}
}

// When applies fn to the classes accepted by accept.
func (classBuilder) When(accept func(*ClassInstance) bool, fn func(*ClassInstance)) ClassConvention {
	return &builtClass{accept: accept, apply: fn}
}

type builtClass struct {
	accept func(*ClassInstance) bool
	apply  func(*ClassInstance)
}

func (b *builtClass) AcceptClass(i *ClassInstance) bool { return b.accept == nil || b.accept(i) }
func (b *builtClass) ApplyClass(i *ClassInstance)       { b.apply(i) }
func (*builtClass) AllowMultiple()                      {}

type subclassBuilder struct{}

// Always applies fn to every subclass.
func (subclassBuilder) Always(fn func(*SubclassInstance)) SubclassConvention {
	return &builtSubclass{apply: fn}
}

// When applies fn to the subclasses accepted by accept.
func (subclassBuilder) When(accept func(*SubclassInstance) bool, fn func(*SubclassInstance)) SubclassConvention {
	return &builtSubclass{accept: accept, apply: fn}
}

type builtSubclass struct {
	accept func(*SubclassInstance) bool
	apply  func(*SubclassInstance)
}

func (b *builtSubclass) AcceptSubclass(i *SubclassInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtSubclass) ApplySubclass(i *SubclassInstance) { b.apply(i) }
func (*builtSubclass) AllowMultiple()                      {}

type idBuilder struct{}

// Always applies fn to every identifier.
func (idBuilder) Always(fn func(*IdInstance)) IdConvention {
	return &builtId{apply: fn}
}

// When applies fn to the identifiers accepted by accept.
func (idBuilder) When(accept func(*IdInstance) bool, fn func(*IdInstance)) IdConvention {
	return &builtId{accept: accept, apply: fn}
}

type builtId struct {
	accept func(*IdInstance) bool
	apply  func(*IdInstance)
}

func (b *builtId) AcceptId(i *IdInstance) bool { return b.accept == nil || b.accept(i) }
func (b *builtId) ApplyId(i *IdInstance)       { b.apply(i) }
func (*builtId) AllowMultiple()                {}

type propertyBuilder struct{}

// Always applies fn to every property.
func (propertyBuilder) Always(fn func(*PropertyInstance)) PropertyConvention {
	return &builtProperty{apply: fn}
}

// When applies fn to the properties accepted by accept.
func (propertyBuilder) When(accept func(*PropertyInstance) bool, fn func(*PropertyInstance)) PropertyConvention {
	return &builtProperty{accept: accept, apply: fn}
}

type builtProperty struct {
	accept func(*PropertyInstance) bool
	apply  func(*PropertyInstance)
}

func (b *builtProperty) AcceptProperty(i *PropertyInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtProperty) ApplyProperty(i *PropertyInstance) { b.apply(i) }
func (*builtProperty) AllowMultiple()                      {}

type referenceBuilder struct{}

// Always applies fn to every reference.
func (referenceBuilder) Always(fn func(*ReferenceInstance)) ReferenceConvention {
	return &builtReference{apply: fn}
}

// When applies fn to the references accepted by accept.
func (referenceBuilder) When(accept func(*ReferenceInstance) bool, fn func(*ReferenceInstance)) ReferenceConvention {
	return &builtReference{accept: accept, apply: fn}
}

type builtReference struct {
	accept func(*ReferenceInstance) bool
	apply  func(*ReferenceInstance)
}

func (b *builtReference) AcceptReference(i *ReferenceInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtReference) ApplyReference(i *ReferenceInstance) { b.apply(i) }
func (*builtReference) AllowMultiple()                        {}

type hasManyBuilder struct{}

// Always applies fn to every one-to-many collection.
func (hasManyBuilder) Always(fn func(*CollectionInstance)) HasManyConvention {
	return &builtHasMany{apply: fn}
}

// When applies fn to the one-to-many collections accepted by accept.
func (hasManyBuilder) When(accept func(*CollectionInstance) bool, fn func(*CollectionInstance)) HasManyConvention {
	return &builtHasMany{accept: accept, apply: fn}
}

type builtHasMany struct {
	accept func(*CollectionInstance) bool
	apply  func(*CollectionInstance)
}

func (b *builtHasMany) AcceptCollection(i *CollectionInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtHasMany) ApplyHasMany(i *CollectionInstance) { b.apply(i) }
func (*builtHasMany) AllowMultiple()                       {}

type hasManyToManyBuilder struct{}

// Always applies fn to every many-to-many collection.
func (hasManyToManyBuilder) Always(fn func(*CollectionInstance)) HasManyToManyConvention {
	return &builtHasManyToMany{apply: fn}
}

// When applies fn to the many-to-many collections accepted by accept.
func (hasManyToManyBuilder) When(accept func(*CollectionInstance) bool, fn func(*CollectionInstance)) HasManyToManyConvention {
	return &builtHasManyToMany{accept: accept, apply: fn}
}

type builtHasManyToMany struct {
	accept func(*CollectionInstance) bool
	apply  func(*CollectionInstance)
}

func (b *builtHasManyToMany) AcceptCollection(i *CollectionInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtHasManyToMany) ApplyHasManyToMany(i *CollectionInstance) { b.apply(i) }
func (*builtHasManyToMany) AllowMultiple()                             {}

type componentBuilder struct{}

// Always applies fn to every component.
func (componentBuilder) Always(fn func(*ComponentInstance)) ComponentConvention {
	return &builtComponent{apply: fn}
}

// When applies fn to the components accepted by accept.
func (componentBuilder) When(accept func(*ComponentInstance) bool, fn func(*ComponentInstance)) ComponentConvention {
	return &builtComponent{accept: accept, apply: fn}
}

type builtComponent struct {
	accept func(*ComponentInstance) bool
	apply  func(*ComponentInstance)
}

func (b *builtComponent) AcceptComponent(i *ComponentInstance) bool {
	return b.accept == nil || b.accept(i)
}
func (b *builtComponent) ApplyComponent(i *ComponentInstance) { b.apply(i) }
func (*builtComponent) AllowMultiple()                        {}

type versionBuilder struct{}

// Always applies fn to every version.
func (versionBuilder) Always(fn func(*VersionInstance)) VersionConvention {
	return &builtVersion{apply: fn}
}

// When applies fn to the versions accepted by accept.
func (versionBuilder) When(accept func(*VersionInstance) bool, fn func(*VersionInstance)) VersionConvention {
	return &builtVersion{accept: accept, apply: fn}
}

type builtVersion struct {
	accept func(*VersionInstance) bool
	apply  func(*VersionInstance)
}

func (b *builtVersion) AcceptVersion(i *VersionInstance) bool { return b.accept == nil || b.accept(i) }
func (b *builtVersion) ApplyVersion(i *VersionInstance)       { b.apply(i) }
func (*builtVersion) AllowMultiple()                          {}
