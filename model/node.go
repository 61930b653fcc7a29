package model

// Node is a mapping model entity. The set of implementations is closed:
// passes switch on the concrete type and fall through to a no-op default.
type Node interface {
	Attributed
	node()
}

// TopMapping is a fragment that can stand alone in a Bucket.
type TopMapping interface {
	Node
	// AddTo files the fragment into the matching Bucket category.
	AddTo(*Bucket)
}

// ComponentNode is either an inline component or a reference to an
// externally declared component.
type ComponentNode interface {
	Node
	MemberName() string
	componentNode()
}

// Relationship is the element of a one-to-many or many-to-many collection.
type Relationship interface {
	Node
	relationship()
}

// Identity is a simple or composite identifier.
type Identity interface {
	Node
	identity()
}

func (*Document) node()                  {}
func (*ClassMapping) node()              {}
func (*SubclassMapping) node()           {}
func (*IdMapping) node()                 {}
func (*CompositeIdMapping) node()        {}
func (*KeyPropertyMapping) node()        {}
func (*KeyManyToOneMapping) node()       {}
func (*GeneratorMapping) node()          {}
func (*DiscriminatorMapping) node()      {}
func (*VersionMapping) node()            {}
func (*CacheMapping) node()              {}
func (*NaturalIdMapping) node()          {}
func (*PropertyMapping) node()           {}
func (*ColumnMapping) node()             {}
func (*ManyToOneMapping) node()          {}
func (*OneToOneMapping) node()           {}
func (*AnyMapping) node()                {}
func (*MetaValueMapping) node()          {}
func (*ComponentMapping) node()          {}
func (*ReferenceComponentMapping) node() {}
func (*ExternalComponentMapping) node()  {}
func (*ParentMapping) node()             {}
func (*CollectionMapping) node()         {}
func (*KeyMapping) node()                {}
func (*IndexMapping) node()              {}
func (*ElementMapping) node()            {}
func (*CompositeElementMapping) node()   {}
func (*OneToManyMapping) node()          {}
func (*ManyToManyMapping) node()         {}
func (*JoinMapping) node()               {}
func (*FilterMapping) node()             {}
func (*FilterDefinitionMapping) node()   {}
func (*ImportMapping) node()             {}

func (*ComponentMapping) componentNode()          {}
func (*ReferenceComponentMapping) componentNode() {}

func (*OneToManyMapping) relationship()  {}
func (*ManyToManyMapping) relationship() {}

func (*IdMapping) identity()          {}
func (*CompositeIdMapping) identity() {}
