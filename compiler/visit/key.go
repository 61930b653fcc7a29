package visit

import (
	"github.com/syssam/fluentmap/model"
)

// KeyPairing derives the key columns left unset once conventions have run.
//
// A collection key takes the columns of a paired reference when they were
// named above the default layer, and "<Entity>_id" otherwise. The child
// column of a many-to-many table mirrors the key of the paired side, or
// defaults to "<Child>_id". A joined-subclass key defaults to
// "<Parent>_id".
type KeyPairing struct{}

// Name implements Visitor.
func (*KeyPairing) Name() string { return "key-pairing" }

// Visit implements Visitor.
func (*KeyPairing) Visit(b *model.Bucket) error {
	for _, c := range collections(b) {
		collectionKey(c)
	}
	for _, c := range collections(b) {
		if mm, ok := c.ManyToMany(); ok {
			childColumn(c, mm)
		}
	}
	owners(b, func(n, parent model.Node) {
		s, ok := n.(*model.SubclassMapping)
		if !ok || s.SubclassType != model.JoinedSubclass || s.Key.Columns.Len() > 0 {
			return
		}
		var name string
		switch p := parent.(type) {
		case *model.ClassMapping:
			name = p.Type.ShortName()
		case *model.SubclassMapping:
			name = p.Type.ShortName()
		}
		s.Key.Columns.Add(model.Defaults, model.NewColumn(name+"_id", model.Defaults))
	})
	return nil
}

func collectionKey(c *model.CollectionMapping) {
	if r, ok := c.OtherSide.(*model.ManyToOneMapping); ok {
		if copyColumns(&c.Key.Columns, &r.Columns) {
			return
		}
	}
	if c.Key.Columns.Len() == 0 && c.ContainingEntity != nil {
		c.Key.Columns.Add(model.Defaults, model.NewColumn(c.ContainingEntity.ShortName()+"_id", model.Defaults))
	}
}

func childColumn(c *model.CollectionMapping, mm *model.ManyToManyMapping) {
	if other, ok := c.OtherSide.(*model.CollectionMapping); ok {
		if copyColumns(&mm.Columns, &other.Key.Columns) {
			return
		}
	}
	if mm.Columns.Len() == 0 && c.ChildType != nil {
		mm.Columns.Add(model.Defaults, model.NewColumn(c.ChildType.ShortName()+"_id", model.Defaults))
	}
}

// copyColumns copies the columns of src into dst at the Conventions layer
// when src was named above the default layer and dst was not. It reports
// whether dst now holds columns named above the default layer.
func copyColumns(dst, src *model.LayeredColumns) bool {
	if l, ok := dst.Layer(); ok && l > model.Defaults {
		return true
	}
	l, ok := src.Layer()
	if !ok || l == model.Defaults {
		return false
	}
	cols := src.Columns()
	out := make([]*model.ColumnMapping, len(cols))
	for i, col := range cols {
		out[i] = model.NewColumn(col.Name(), model.Conventions)
	}
	dst.Replace(model.Conventions, out...)
	return true
}
