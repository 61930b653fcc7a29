package conventions

// Aspect interfaces. A convention implements one or more of them; the
// compiler applies it to every node of the matching kind.
type (
	// ClassConvention alters root classes.
	ClassConvention interface {
		ApplyClass(*ClassInstance)
	}
	// SubclassConvention alters subclasses of every kind.
	SubclassConvention interface {
		ApplySubclass(*SubclassInstance)
	}
	// IdConvention alters single-column identifiers.
	IdConvention interface {
		ApplyId(*IdInstance)
	}
	// PropertyConvention alters scalar properties.
	PropertyConvention interface {
		ApplyProperty(*PropertyInstance)
	}
	// ReferenceConvention alters many-to-one references.
	ReferenceConvention interface {
		ApplyReference(*ReferenceInstance)
	}
	// OneToOneConvention alters one-to-one associations.
	OneToOneConvention interface {
		ApplyOneToOne(*OneToOneInstance)
	}
	// HasManyConvention alters one-to-many collections.
	HasManyConvention interface {
		ApplyHasMany(*CollectionInstance)
	}
	// HasManyToManyConvention alters many-to-many collections.
	HasManyToManyConvention interface {
		ApplyHasManyToMany(*CollectionInstance)
	}
	// CollectionConvention alters every collection, including value
	// collections.
	CollectionConvention interface {
		ApplyCollection(*CollectionInstance)
	}
	// ComponentConvention alters inline components.
	ComponentConvention interface {
		ApplyComponent(*ComponentInstance)
	}
	// VersionConvention alters version mappings.
	VersionConvention interface {
		ApplyVersion(*VersionInstance)
	}
	// JoinConvention alters secondary table joins.
	JoinConvention interface {
		ApplyJoin(*JoinInstance)
	}
	// DocumentConvention alters the compiled document.
	DocumentConvention interface {
		ApplyDocument(*DocumentInstance)
	}
)

// Acceptance criteria. A convention implementing the acceptor of an aspect
// is only applied to the instances it accepts.
type (
	ClassAcceptor interface {
		AcceptClass(*ClassInstance) bool
	}
	SubclassAcceptor interface {
		AcceptSubclass(*SubclassInstance) bool
	}
	IdAcceptor interface {
		AcceptId(*IdInstance) bool
	}
	PropertyAcceptor interface {
		AcceptProperty(*PropertyInstance) bool
	}
	ReferenceAcceptor interface {
		AcceptReference(*ReferenceInstance) bool
	}
	OneToOneAcceptor interface {
		AcceptOneToOne(*OneToOneInstance) bool
	}
	CollectionAcceptor interface {
		AcceptCollection(*CollectionInstance) bool
	}
	ComponentAcceptor interface {
		AcceptComponent(*ComponentInstance) bool
	}
	VersionAcceptor interface {
		AcceptVersion(*VersionInstance) bool
	}
	JoinAcceptor interface {
		AcceptJoin(*JoinInstance) bool
	}
)

// Multiple is implemented by conventions that may be registered more than
// once. Other conventions are de-duplicated by concrete type.
type Multiple interface {
	AllowMultiple()
}

// isConvention reports whether v implements at least one aspect.
func isConvention(v any) bool {
	switch v.(type) {
	case ClassConvention, SubclassConvention, IdConvention, PropertyConvention,
		ReferenceConvention, OneToOneConvention, HasManyConvention,
		HasManyToManyConvention, CollectionConvention, ComponentConvention,
		VersionConvention, JoinConvention, DocumentConvention:
		return true
	}
	return false
}
