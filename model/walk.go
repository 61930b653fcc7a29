package model

// Children returns the direct children of n in serialized element order:
// identity before properties, properties before relationships, and
// relationships before nested collections and subclasses.
func Children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, x := range ns {
			if !isNil(x) {
				out = append(out, x)
			}
		}
	}
	switch n := n.(type) {
	case *Document:
		add(nodes(n.Imports)...)
		add(nodes(n.Classes)...)
		add(nodes(n.Filters)...)
	case *ClassMapping:
		add(n.Cache)
		if n.Id != nil {
			add(n.Id)
		}
		add(n.Discriminator, n.NaturalId, n.Version)
		add(members(&n.Members, true)...)
		add(nodes(n.Joins)...)
		add(nodes(n.Subclasses)...)
		add(nodes(n.Filters)...)
	case *SubclassMapping:
		if n.SubclassType == JoinedSubclass {
			add(n.Key)
		}
		add(members(&n.Members, true)...)
		if n.SubclassType == PlainSubclass {
			add(nodes(n.Joins)...)
		}
		add(nodes(n.Subclasses)...)
	case *IdMapping:
		add(nodes(n.Columns.Columns())...)
		add(n.Generator)
	case *CompositeIdMapping:
		add(n.Keys...)
	case *KeyPropertyMapping:
		add(nodes(n.Columns.Columns())...)
	case *KeyManyToOneMapping:
		add(nodes(n.Columns.Columns())...)
	case *DiscriminatorMapping:
		add(nodes(n.Columns.Columns())...)
	case *VersionMapping:
		add(nodes(n.Columns.Columns())...)
	case *NaturalIdMapping:
		add(nodes(n.Properties)...)
		add(nodes(n.References)...)
	case *PropertyMapping:
		add(nodes(n.Columns.Columns())...)
	case *ManyToOneMapping:
		add(nodes(n.Columns.Columns())...)
	case *AnyMapping:
		add(nodes(n.MetaValues)...)
		add(nodes(n.TypeColumns.Columns())...)
		add(nodes(n.IdentifierColumns.Columns())...)
	case *ComponentMapping:
		add(n.Parent)
		add(members(&n.Members, true)...)
	case *ExternalComponentMapping:
		add(n.Parent)
		add(members(&n.Members, true)...)
	case *CollectionMapping:
		add(n.Cache, n.Key, n.Index)
		switch {
		case n.Element != nil:
			add(n.Element)
		case n.CompositeElement != nil:
			add(n.CompositeElement)
		case n.Relationship != nil:
			add(n.Relationship)
		}
		add(nodes(n.Filters)...)
	case *KeyMapping:
		add(nodes(n.Columns.Columns())...)
	case *IndexMapping:
		add(nodes(n.Columns.Columns())...)
	case *ElementMapping:
		add(nodes(n.Columns.Columns())...)
	case *ManyToManyMapping:
		add(nodes(n.Columns.Columns())...)
	case *CompositeElementMapping:
		add(compositeChildren(n)...)
	case *NestedCompositeElementMapping:
		add(compositeChildren(&n.CompositeElementMapping)...)
	case *JoinMapping:
		add(n.Key)
		add(members(&n.Members, false)...)
	}
	return out
}

func compositeChildren(c *CompositeElementMapping) []Node {
	var out []Node
	if c.Parent != nil {
		out = append(out, c.Parent)
	}
	out = append(out, nodes(c.Properties)...)
	out = append(out, nodes(c.References)...)
	out = append(out, nodes(c.Nested)...)
	return out
}

func members(m *Members, collections bool) []Node {
	var out []Node
	out = append(out, nodes(m.Properties)...)
	out = append(out, nodes(m.References)...)
	out = append(out, nodes(m.OneToOnes)...)
	out = append(out, nodes(m.Components)...)
	out = append(out, nodes(m.Anys)...)
	if collections {
		out = append(out, nodes(m.Collections)...)
	}
	return out
}

func nodes[T Node](list []T) []Node {
	out := make([]Node, len(list))
	for i, x := range list {
		out[i] = x
	}
	return out
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *CacheMapping:
		return n == nil
	case *DiscriminatorMapping:
		return n == nil
	case *NaturalIdMapping:
		return n == nil
	case *VersionMapping:
		return n == nil
	case *GeneratorMapping:
		return n == nil
	case *ParentMapping:
		return n == nil
	case *KeyMapping:
		return n == nil
	case *IndexMapping:
		return n == nil
	}
	return false
}

// Walk traverses n depth-first in element order. fn is called for every
// node; returning false skips that node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// WalkPath is like Walk but also passes the chain of ancestors, outermost
// first. The slice is reused between calls.
func WalkPath(n Node, fn func(n Node, path []Node) bool) {
	var path []Node
	var walk func(Node)
	walk = func(n Node) {
		if !fn(n, path) {
			return
		}
		path = append(path, n)
		for _, c := range Children(n) {
			walk(c)
		}
		path = path[:len(path)-1]
	}
	if n != nil {
		walk(n)
	}
}

// WalkBucket walks every fragment held by b.
func WalkBucket(b *Bucket, fn func(Node) bool) {
	for _, c := range b.Classes {
		Walk(c, fn)
	}
	for _, s := range b.Subclasses {
		Walk(s, fn)
	}
	for _, c := range b.Components {
		Walk(c, fn)
	}
	for _, f := range b.Filters {
		Walk(f, fn)
	}
	for _, i := range b.Imports {
		Walk(i, fn)
	}
}
