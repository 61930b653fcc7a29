package fluentmap

import (
	"log/slog"
	"strings"

	"github.com/syssam/fluentmap/types"
)

// TypeSource supplies candidate types for automapping and discovery.
type TypeSource interface {
	Types() []*types.Type
	Identifier() string
	LogSource(*slog.Logger)
}

// ProviderSource supplies mapping providers discovered outside of explicit
// registration, such as a package registry or a declarative file.
type ProviderSource interface {
	Providers() []Provider
	Identifier() string
}

// CollectionSource is a TypeSource over a fixed list of types.
type CollectionSource struct {
	types []*types.Type
}

// NewCollectionSource returns a source over ts.
func NewCollectionSource(ts ...*types.Type) *CollectionSource {
	return &CollectionSource{types: ts}
}

// Types implements TypeSource.
func (s *CollectionSource) Types() []*types.Type { return s.types }

// Identifier implements TypeSource. It lists the short names of the types.
func (s *CollectionSource) Identifier() string {
	names := make([]string, len(s.types))
	for i, t := range s.types {
		names[i] = t.ShortName()
	}
	return "Collection[" + strings.Join(names, ", ") + "]"
}

// LogSource implements TypeSource.
func (s *CollectionSource) LogSource(l *slog.Logger) {
	l.Debug("type source", "source", s.Identifier(), "types", len(s.types))
}

// RegistrySource is a TypeSource over every type declared in a registry.
type RegistrySource struct {
	Registry *types.Registry
	Name     string
}

// Types implements TypeSource. Primitives and interfaces are left out.
func (s *RegistrySource) Types() []*types.Type {
	var out []*types.Type
	for _, t := range s.Registry.Types() {
		if t.Kind == types.KindStruct {
			out = append(out, t)
		}
	}
	return out
}

// Identifier implements TypeSource.
func (s *RegistrySource) Identifier() string {
	if s.Name != "" {
		return s.Name
	}
	return "Registry"
}

// LogSource implements TypeSource.
func (s *RegistrySource) LogSource(l *slog.Logger) {
	l.Debug("type source", "source", s.Identifier(), "types", len(s.Types()))
}

// CombinedSource concatenates several sources.
type CombinedSource []TypeSource

// Types implements TypeSource.
func (c CombinedSource) Types() []*types.Type {
	var out []*types.Type
	for _, s := range c {
		out = append(out, s.Types()...)
	}
	return out
}

// Identifier implements TypeSource.
func (c CombinedSource) Identifier() string {
	ids := make([]string, len(c))
	for i, s := range c {
		ids[i] = s.Identifier()
	}
	return "Combined[" + strings.Join(ids, ", ") + "]"
}

// LogSource implements TypeSource.
func (c CombinedSource) LogSource(l *slog.Logger) {
	for _, s := range c {
		s.LogSource(l)
	}
}

// ProviderList is a ProviderSource over a fixed list.
type ProviderList struct {
	Name  string
	Items []Provider
}

// Providers implements ProviderSource.
func (p *ProviderList) Providers() []Provider { return p.Items }

// Identifier implements ProviderSource.
func (p *ProviderList) Identifier() string { return p.Name }
