package visit

import (
	"log/slog"
	"slices"

	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// SubclassPairing attaches every subclass fragment of the bucket to its
// nearest mapped parent and assigns the subclass kind of each tree.
//
// A subclass whose Extends names the parent is always attached. Other
// subclasses are ranked by their distance to the parent and only the
// nearest are attached; farther ones are picked up under the nearer parent.
// Subclasses matching no parent are dropped.
type SubclassPairing struct {
	Logger *slog.Logger
}

// Name implements Visitor.
func (*SubclassPairing) Name() string { return "subclass-pairing" }

// Visit implements Visitor.
func (v *SubclassPairing) Visit(b *model.Bucket) error {
	mapped := make([]*types.Type, len(b.Subclasses))
	for i, s := range b.Subclasses {
		mapped[i] = s.Type
	}
	pool := slices.Clone(b.Subclasses)
	var attach func(parent *types.Type, add func(*model.SubclassMapping))
	attach = func(parent *types.Type, add func(*model.SubclassMapping)) {
		children := closest(parent, pool, mapped)
		pool = slices.DeleteFunc(pool, func(s *model.SubclassMapping) bool {
			return slices.Contains(children, s)
		})
		for _, s := range children {
			add(s)
		}
		for _, s := range children {
			attach(s.Type, s.AddSubclass)
		}
	}
	for _, c := range b.Classes {
		attach(c.Type, c.AddSubclass)
		setSubclassType(c.Subclasses, subclassType(c))
	}
	for _, s := range pool {
		v.logger().Debug("subclass dropped: no mapped parent", "type", s.Type.String())
	}
	b.Subclasses = nil
	return nil
}

func (v *SubclassPairing) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return v.Logger
}

// closest returns the subclasses of pool that are direct children of
// parent: those extending it explicitly, preceded by the structural
// candidates at the minimum distance. mapped lists every subclass type of
// the bucket.
func closest(parent *types.Type, pool []*model.SubclassMapping, mapped []*types.Type) []*model.SubclassMapping {
	var explicit []*model.SubclassMapping
	byDistance := make(map[int][]*model.SubclassMapping)
	lowest := -1
	for _, s := range pool {
		if s.Extends != nil {
			if s.Extends.Is(parent) {
				explicit = append(explicit, s)
			}
			continue
		}
		d, ok := distance(parent, s.Type, mapped)
		if !ok {
			continue
		}
		byDistance[d] = append(byDistance[d], s)
		if lowest < 0 || d < lowest {
			lowest = d
		}
	}
	if lowest < 0 {
		return explicit
	}
	return append(byDistance[lowest], explicit...)
}

// distance reports whether sub descends from parent and how many mapped
// types lie between them.
//
// For an interface parent, the walk climbs sub's base chain while the base
// is mapped, counting each step. For a class parent, the walk climbs from
// sub's base to parent, counting every mapped type passed on the way.
func distance(parent, sub *types.Type, mapped []*types.Type) (int, bool) {
	isMapped := func(t *types.Type) bool { return slices.ContainsFunc(mapped, t.Is) }
	if parent.IsInterface() {
		if !sub.Implements(parent) {
			return 0, false
		}
		level := 0
		for t := sub; !t.IsObject() && isMapped(t.BaseType()); t = t.BaseType() {
			level++
			if !t.BaseType().Implements(parent) {
				break
			}
		}
		return level, true
	}
	level := 0
	for t := sub.BaseType(); ; t = t.BaseType() {
		if t.Is(parent) {
			return level, true
		}
		if t.IsObject() {
			return 0, false
		}
		if isMapped(t) {
			level++
		}
	}
}

func subclassType(c *model.ClassMapping) model.SubclassType {
	switch {
	case c.IsUnionSubclass():
		return model.UnionSubclass
	case c.Discriminator == nil:
		return model.JoinedSubclass
	default:
		return model.PlainSubclass
	}
}

func setSubclassType(subs []*model.SubclassMapping, kind model.SubclassType) {
	for _, s := range subs {
		s.SubclassType = kind
		setSubclassType(s.Subclasses, kind)
	}
}
