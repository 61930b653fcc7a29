package visit

import (
	"log/slog"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/syssam/fluentmap/model"
)

// PairingStrategy chooses the other side of a bidirectional association.
// Candidates are the many-to-many collections of the child type pointing
// back at the side's entity, or, for one-to-many sides, the references of
// the child type targeting it. Returning nil leaves the side unpaired.
type PairingStrategy interface {
	Pair(side *model.CollectionMapping, candidates []model.Node) model.Node
}

// PairingFunc adapts a function to a PairingStrategy.
type PairingFunc func(side *model.CollectionMapping, candidates []model.Node) model.Node

// Pair implements PairingStrategy.
func (f PairingFunc) Pair(side *model.CollectionMapping, candidates []model.Node) model.Node {
	return f(side, candidates)
}

var (
	// NoPairing never pairs.
	NoPairing PairingStrategy = PairingFunc(func(*model.CollectionMapping, []model.Node) model.Node { return nil })

	// ByTypePairing pairs a side with its only candidate.
	ByTypePairing PairingStrategy = PairingFunc(func(_ *model.CollectionMapping, candidates []model.Node) model.Node {
		if len(candidates) == 1 {
			return candidates[0]
		}
		return nil
	})

	// LikenessPairing pairs a side with the candidate whose names read most
	// alike: the candidate's member name against the side's entity, and the
	// side's member name against the candidate's entity. Ties go to the first
	// candidate.
	LikenessPairing PairingStrategy = PairingFunc(likeness)
)

func likeness(side *model.CollectionMapping, candidates []model.Node) model.Node {
	var (
		best  model.Node
		score = -1
	)
	for _, c := range candidates {
		name, entity := nameAndEntity(c)
		d := levenshtein.ComputeDistance(name, side.ContainingEntity.ShortName()) +
			levenshtein.ComputeDistance(side.Name(), entity)
		if score < 0 || d < score {
			best, score = c, d
		}
	}
	return best
}

func nameAndEntity(n model.Node) (string, string) {
	switch n := n.(type) {
	case *model.CollectionMapping:
		return n.Name(), n.ContainingEntity.ShortName()
	case *model.ManyToOneMapping:
		return n.Name(), n.ContainingEntity.ShortName()
	}
	return "", ""
}

// RelationshipPairing links the two sides of bidirectional many-to-many
// and one-to-many associations through OtherSide.
type RelationshipPairing struct {
	Strategy PairingStrategy
	Logger   *slog.Logger
}

// Name implements Visitor.
func (*RelationshipPairing) Name() string { return "relationship-pairing" }

// Visit implements Visitor.
func (v *RelationshipPairing) Visit(b *model.Bucket) error {
	if v.Strategy == nil {
		return nil
	}
	cols := collections(b)
	refs := references(b)
	paired := make(map[model.Node]bool)
	for _, side := range cols {
		if side.OtherSide != nil || side.ContainingEntity == nil || side.ChildType == nil {
			continue
		}
		var candidates []model.Node
		switch side.Relationship.(type) {
		case *model.ManyToManyMapping:
			for _, c := range cols {
				if c == side || paired[c] || c.OtherSide != nil {
					continue
				}
				if _, ok := c.ManyToMany(); ok && c.ContainingEntity.Is(side.ChildType) && c.ChildType.Is(side.ContainingEntity) {
					candidates = append(candidates, c)
				}
			}
		case *model.OneToManyMapping:
			for _, r := range refs {
				if paired[r] || r.OtherSide != nil {
					continue
				}
				if r.ContainingEntity.Is(side.ChildType) && r.Target().Is(side.ContainingEntity) {
					candidates = append(candidates, r)
				}
			}
		default:
			continue
		}
		if len(candidates) == 0 {
			continue
		}
		other := v.Strategy.Pair(side, candidates)
		if other == nil || !slices.Contains(candidates, other) {
			continue
		}
		side.OtherSide = other
		paired[side], paired[other] = true, true
		switch o := other.(type) {
		case *model.CollectionMapping:
			o.OtherSide = side
		case *model.ManyToOneMapping:
			o.OtherSide = side
		}
		if v.Logger != nil {
			on, oe := nameAndEntity(other)
			v.Logger.Debug("relationship paired",
				"side", side.ContainingEntity.ShortName()+"."+side.Name(),
				"other", oe+"."+on)
		}
	}
	return nil
}

// ManyToManyTableNames names the join table of every many-to-many
// collection lacking one. Unpaired sides use "<Entity>To<Child>"; paired
// sides share the table named by the other side, or "<A>To<B>" with the
// entity names sorted. Names set above the default layer are kept.
type ManyToManyTableNames struct{}

// Name implements Visitor.
func (*ManyToManyTableNames) Name() string { return "many-to-many-table-names" }

// Visit implements Visitor.
func (*ManyToManyTableNames) Visit(b *model.Bucket) error {
	for _, c := range collections(b) {
		if _, ok := c.ManyToMany(); !ok || c.ContainingEntity == nil || c.ChildType == nil {
			continue
		}
		if l, ok := model.LayerOf(c, model.Collection.Table); ok && l > model.Defaults {
			continue
		}
		other, _ := c.OtherSide.(*model.CollectionMapping)
		if other == nil {
			model.Set(c, model.Collection.Table, model.Defaults, c.ContainingEntity.ShortName()+"To"+c.ChildType.ShortName())
			continue
		}
		if l, ok := model.LayerOf(other, model.Collection.Table); ok && l > model.Defaults {
			model.Set(c, model.Collection.Table, l, other.TableName())
			continue
		}
		names := []string{c.ContainingEntity.ShortName(), other.ContainingEntity.ShortName()}
		slices.Sort(names)
		model.Set(c, model.Collection.Table, model.Defaults, names[0]+"To"+names[1])
	}
	return nil
}
