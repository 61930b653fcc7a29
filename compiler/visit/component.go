package visit

import (
	"slices"
	"strings"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// ComponentResolution replaces every component reference with a copy of
// the single external component declared for its type. Spliced content is
// resolved in turn; a component reaching itself again is a cycle.
type ComponentResolution struct {
	external []*model.ExternalComponentMapping
}

// Name implements Visitor.
func (*ComponentResolution) Name() string { return "component-resolution" }

// Visit implements Visitor.
func (v *ComponentResolution) Visit(b *model.Bucket) error {
	v.external = b.Components
	for _, c := range b.Classes {
		if err := v.class(c); err != nil {
			return err
		}
	}
	return nil
}

func (v *ComponentResolution) class(c *model.ClassMapping) error {
	if err := v.members(&c.Members, nil); err != nil {
		return err
	}
	for _, s := range c.Subclasses {
		if err := v.subclass(s); err != nil {
			return err
		}
	}
	return nil
}

func (v *ComponentResolution) subclass(s *model.SubclassMapping) error {
	if err := v.members(&s.Members, nil); err != nil {
		return err
	}
	for _, c := range s.Subclasses {
		if err := v.subclass(c); err != nil {
			return err
		}
	}
	return nil
}

// members resolves the components of m. stack holds the external component
// types being resolved, outermost first.
func (v *ComponentResolution) members(m *model.Members, stack []*types.Type) error {
	for i, c := range m.Components {
		switch c := c.(type) {
		case *model.ReferenceComponentMapping:
			resolved, err := v.resolve(c, stack)
			if err != nil {
				return err
			}
			m.Components[i] = resolved
		case *model.ComponentMapping:
			if err := v.members(&c.Members, stack); err != nil {
				return err
			}
		}
	}
	for _, j := range m.Joins {
		if err := v.members(&j.Members, stack); err != nil {
			return err
		}
	}
	return nil
}

func (v *ComponentResolution) resolve(r *model.ReferenceComponentMapping, stack []*types.Type) (*model.ComponentMapping, error) {
	entity := r.ContainingEntity.String()
	if i := slices.IndexFunc(stack, r.Type.Is); i >= 0 {
		path := make([]string, 0, len(stack)-i+1)
		for _, t := range stack[i:] {
			path = append(path, t.String())
		}
		return nil, fluentmap.NewComponentCycleError(append(path, r.Type.String())...)
	}
	var matches []*model.ExternalComponentMapping
	for _, e := range v.external {
		if e.Type.Is(r.Type) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fluentmap.NewMissingExternalComponentError(r.Type.String(), entity, r.MemberName())
	case 1:
	default:
		return nil, fluentmap.NewAmbiguousComponentReferenceError(r.Type.String(), entity, r.MemberName(), len(matches))
	}
	c := r.Resolve(matches[0])
	if err := v.members(&c.Members, append(stack, r.Type)); err != nil {
		return nil, err
	}
	return c, nil
}

// ColumnPrefix prefixes the columns of component members with the column
// prefix of every enclosing component. The token {property} in a prefix is
// replaced by the component's member name.
type ColumnPrefix struct{}

// Name implements Visitor.
func (*ColumnPrefix) Name() string { return "column-prefix" }

// Visit implements Visitor.
func (v *ColumnPrefix) Visit(b *model.Bucket) error {
	for _, c := range b.Classes {
		model.Walk(c, func(n model.Node) bool {
			switch n := n.(type) {
			case *model.ClassMapping, *model.SubclassMapping, *model.JoinMapping:
				return true
			case *model.ComponentMapping:
				prefixComponent(n, "")
			}
			return false
		})
	}
	return nil
}

// prefixComponent applies the accumulated prefix to the columns owned by c
// and recurses into nested components.
func prefixComponent(c *model.ComponentMapping, outer string) {
	prefix := outer + strings.ReplaceAll(model.Get(c, model.Component.ColumnPrefix), "{property}", c.MemberName())
	for _, n := range c.Components {
		if nested, ok := n.(*model.ComponentMapping); ok {
			prefixComponent(nested, prefix)
		}
	}
	if prefix == "" {
		return
	}
	var sets []*model.LayeredColumns
	for _, p := range c.Properties {
		sets = append(sets, &p.Columns)
	}
	for _, r := range c.References {
		sets = append(sets, &r.Columns)
	}
	for _, a := range c.Anys {
		sets = append(sets, &a.TypeColumns, &a.IdentifierColumns)
	}
	for _, cols := range sets {
		for _, col := range cols.All() {
			layer, ok := model.LayerOf(col, model.Column.Name)
			if !ok {
				continue
			}
			model.Set(col, model.Column.Name, layer, prefix+col.Name())
		}
	}
}
