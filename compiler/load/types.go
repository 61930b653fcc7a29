package load

import (
	"fmt"
	"strings"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/types"
)

// resolver turns type expressions into types of the project.
type resolver struct {
	pkg      string
	declared map[string]*types.Type
}

// declare creates every declared type before members are resolved so that
// types may reference each other in any order.
func (p *Project) declare() (*resolver, *types.Registry, error) {
	r := &resolver{pkg: p.Package, declared: make(map[string]*types.Type, len(p.Types))}
	reg := types.NewRegistry()
	for _, ts := range p.Types {
		if ts.Name == "" {
			return nil, nil, fluentmap.NewConfigError("types.name", "", "type name is required")
		}
		if _, ok := r.declared[ts.Name]; ok {
			return nil, nil, fluentmap.NewConfigError("types.name", ts.Name, "type declared twice")
		}
		if _, ok := types.PrimitiveByName(ts.Name); ok {
			return nil, nil, fluentmap.NewConfigError("types.name", ts.Name, "type shadows a primitive")
		}
		var t *types.Type
		if ts.Interface {
			t = types.Interface(ts.Name, types.InPackage(p.Package))
		} else {
			t = types.Struct(ts.Name, types.InPackage(p.Package))
		}
		t.Abstract = ts.Abstract
		r.declared[ts.Name] = t
	}
	for _, ts := range p.Types {
		t := r.declared[ts.Name]
		if ts.Base != "" {
			base, err := r.named(ts.Base)
			if err != nil {
				return nil, nil, fmt.Errorf("type %s: base: %w", ts.Name, err)
			}
			if base == t || base.IsSubtypeOf(t) {
				return nil, nil, fluentmap.NewConfigError("types.base", ts.Base, fmt.Sprintf("%s cannot extend itself", ts.Name))
			}
			t.Base = base
		}
		for _, name := range ts.Implements {
			iface, err := r.named(name)
			if err != nil {
				return nil, nil, fmt.Errorf("type %s: implements: %w", ts.Name, err)
			}
			if !iface.IsInterface() {
				return nil, nil, fluentmap.NewConfigError("types.implements", name, "not an interface")
			}
			t.Interfaces = append(t.Interfaces, iface)
		}
		for _, f := range ts.Fields {
			ft, err := r.expr(f.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("type %s: field %s: %w", ts.Name, f.Name, err)
			}
			t.AddField(f.Name, ft)
		}
		if err := reg.Add(t); err != nil {
			return nil, nil, err
		}
	}
	return r, reg, nil
}

// named returns a declared type by short or qualified name.
func (r *resolver) named(name string) (*types.Type, error) {
	if t, ok := r.declared[strings.TrimPrefix(name, r.pkg+".")]; ok {
		return t, nil
	}
	return nil, fluentmap.NewConfigError("type", name, "undeclared type")
}

// expr resolves primitives, declared types, slices and maps.
func (r *resolver) expr(s string) (*types.Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "[]") && s != "[]byte":
		elem, err := r.expr(s[2:])
		if err != nil {
			return nil, err
		}
		return types.SliceOf(elem), nil
	case strings.HasPrefix(s, "map["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fluentmap.NewConfigError("type", s, "malformed map type")
		}
		key, err := r.expr(s[4:end])
		if err != nil {
			return nil, err
		}
		elem, err := r.expr(s[end+1:])
		if err != nil {
			return nil, err
		}
		return types.MapOf(key, elem), nil
	case strings.HasPrefix(s, "*"):
		return r.expr(s[1:])
	}
	if p, ok := types.PrimitiveByName(s); ok {
		return p, nil
	}
	return r.named(s)
}
