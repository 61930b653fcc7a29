package visit

import (
	"fmt"
	"strings"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
)

// Validation checks the assembled trees and reports every violation as one
// error. It never repairs the model.
//
//   - a class maps exactly one identifier;
//   - a composite identifier holds at least one key;
//   - a table segment maps no column twice, ignoring read-only members;
//   - the two sides of a pairing are not both inverse.
type Validation struct{}

// Name implements Visitor.
func (*Validation) Name() string { return "validation" }

// Visit implements Visitor.
func (*Validation) Visit(b *model.Bucket) error {
	var errs []error
	report := func(entity, member, format string, args ...any) {
		errs = append(errs, fluentmap.NewValidationError(entity, member, fmt.Sprintf(format, args...)))
	}
	for _, c := range b.Classes {
		entity := c.Type.String()
		switch id := c.Id.(type) {
		case nil:
			report(entity, "", "class has no identifier")
		case *model.CompositeIdMapping:
			if len(id.Keys) == 0 {
				report(entity, "", "composite identifier has no key")
			}
		}
		seg := newSegment(c.TableName())
		if id, ok := c.Id.(*model.IdMapping); ok {
			seg.add(id.Name(), &id.Columns)
		}
		if id, ok := c.Id.(*model.CompositeIdMapping); ok {
			for _, k := range id.Keys {
				switch k := k.(type) {
				case *model.KeyPropertyMapping:
					seg.add(k.Name(), &k.Columns)
				case *model.KeyManyToOneMapping:
					seg.add(k.Name(), &k.Columns)
				}
			}
		}
		if d := c.Discriminator; d != nil && model.Get(d, model.Discriminator.Formula) == "" {
			if insert, ok := model.Lookup(d, model.Discriminator.Insert); !ok || insert {
				seg.add("discriminator", &d.Columns)
			}
		}
		if v := c.Version; v != nil {
			seg.add(v.Name(), &v.Columns)
		}
		if n := c.NaturalId; n != nil {
			for _, p := range n.Properties {
				seg.property(p)
			}
			for _, r := range n.References {
				seg.reference(r)
			}
		}
		seg.members(&c.Members)
		for _, j := range c.Joins {
			js := newSegment(j.TableName())
			js.members(&j.Members)
			for _, d := range js.dups {
				report(entity, d.member, "column %q mapped twice in table %s", d.column, js.table)
			}
		}
		segments := []*segment{seg}
		var sub func(parent *segment, s *model.SubclassMapping)
		sub = func(parent *segment, s *model.SubclassMapping) {
			ss := parent
			if s.SubclassType != model.PlainSubclass {
				ss = newSegment(s.TableName())
				segments = append(segments, ss)
			}
			ss.members(&s.Members)
			for _, child := range s.Subclasses {
				sub(ss, child)
			}
		}
		for _, s := range c.Subclasses {
			sub(seg, s)
		}
		for _, s := range segments {
			for _, d := range s.dups {
				report(entity, d.member, "column %q mapped twice in table %s", d.column, s.table)
			}
		}
	}
	reported := make(map[*model.CollectionMapping]bool)
	for _, c := range collections(b) {
		other, ok := c.OtherSide.(*model.CollectionMapping)
		if ok && !reported[c] && c.IsInverse() && other.IsInverse() {
			reported[other] = true
			report(c.ContainingEntity.String(), c.Name(), "both sides of the association with %s.%s are inverse",
				other.ContainingEntity.ShortName(), other.Name())
		}
	}
	return fluentmap.NewAggregateError(errs...)
}

type duplicate struct {
	member string
	column string
}

// segment collects the columns written to one table.
type segment struct {
	table string
	seen  map[string]string
	dups  []duplicate
}

func newSegment(table string) *segment {
	return &segment{table: table, seen: make(map[string]string)}
}

func (s *segment) add(member string, cols *model.LayeredColumns) {
	for _, c := range cols.Columns() {
		key := strings.ToLower(strings.Trim(c.Name(), "`"))
		if _, ok := s.seen[key]; ok {
			s.dups = append(s.dups, duplicate{member: member, column: c.Name()})
			continue
		}
		s.seen[key] = member
	}
}

func (s *segment) property(p *model.PropertyMapping) {
	if p.IsWritable() {
		s.add(p.Name(), &p.Columns)
	}
}

func (s *segment) reference(r *model.ManyToOneMapping) {
	if model.Get(r, model.ManyToOne.Formula) != "" {
		return
	}
	insert, ok := model.Lookup(r, model.ManyToOne.Insert)
	if !ok {
		insert = true
	}
	update, ok := model.Lookup(r, model.ManyToOne.Update)
	if !ok {
		update = true
	}
	if insert || update {
		s.add(r.Name(), &r.Columns)
	}
}

func (s *segment) members(m *model.Members) {
	for _, p := range m.Properties {
		s.property(p)
	}
	for _, r := range m.References {
		s.reference(r)
	}
	for _, a := range m.Anys {
		s.add(a.Name(), &a.TypeColumns)
		s.add(a.Name(), &a.IdentifierColumns)
	}
	for _, c := range m.Components {
		if comp, ok := c.(*model.ComponentMapping); ok {
			insert, ok := model.Lookup(comp, model.Component.Insert)
			if !ok {
				insert = true
			}
			update, ok := model.Lookup(comp, model.Component.Update)
			if !ok {
				update = true
			}
			if insert || update {
				s.members(&comp.Members)
			}
		}
	}
}
