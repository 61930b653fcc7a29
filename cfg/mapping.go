package cfg

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/hbm"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"
)

// MappingConfiguration collects the fluent and automapped providers of a
// configuration.
type MappingConfiguration struct {
	fluent  *FluentMappingsContainer
	auto    *AutoMappingsContainer
	merge   bool
	options []compiler.Option
}

func newMappingConfiguration() *MappingConfiguration {
	return &MappingConfiguration{
		fluent: &FluentMappingsContainer{},
		auto:   &AutoMappingsContainer{},
	}
}

// FluentMappings returns the container of hand-written mappings.
func (m *MappingConfiguration) FluentMappings() *FluentMappingsContainer { return m.fluent }

// AutoMappings returns the container of automapping models.
func (m *MappingConfiguration) AutoMappings() *AutoMappingsContainer { return m.auto }

// MergeMappings registers every class in a single mapping document instead
// of one document per class.
func (m *MappingConfiguration) MergeMappings() *MappingConfiguration {
	m.merge = true
	return m
}

// CompileWith adds options passed to the mapping compiler.
func (m *MappingConfiguration) CompileWith(opts ...compiler.Option) *MappingConfiguration {
	m.options = append(m.options, opts...)
	return m
}

// WasUsed reports whether any mapping was added.
func (m *MappingConfiguration) WasUsed() bool {
	return len(m.fluent.providers)+len(m.fluent.sources) > 0 || len(m.auto.models) > 0
}

// apply compiles the mappings, registers the documents in c and returns
// them for the exporters.
func (m *MappingConfiguration) apply(ctx context.Context, c *Configuration, log *slog.Logger) ([]*model.Document, error) {
	if !m.WasUsed() {
		return nil, nil
	}
	providers := slices.Clone(m.fluent.providers)
	for _, a := range m.auto.models {
		providers = append(providers, a)
	}
	opts := []compiler.Option{
		compiler.WithLogger(log),
		compiler.WithMergeMappings(m.merge),
		compiler.WithProviders(providers...),
		compiler.WithSources(m.fluent.sources...),
	}
	if len(m.fluent.conventions) > 0 {
		opts = append(opts, compiler.WithConventions(m.fluent.conventions...))
	}
	comp, err := compiler.New(append(opts, m.options...)...)
	if err != nil {
		return nil, err
	}
	doc, err := comp.Compile(ctx)
	if err != nil {
		return nil, err
	}
	docs := comp.Documents(doc)
	for _, d := range docs {
		if _, err := c.AddDocument(d); err != nil {
			return nil, fmt.Errorf("cfg: register %s: %w", d.Name(), err)
		}
	}
	return docs, nil
}

// exportDirs returns the distinct export directories of both containers.
func (m *MappingConfiguration) exportDirs() []string {
	var dirs []string
	for _, d := range []string{m.fluent.exportDir, m.auto.exportDir} {
		if d != "" && !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func (m *MappingConfiguration) export(ctx context.Context, docs []*model.Document, log *slog.Logger) error {
	for _, dir := range m.exportDirs() {
		files, err := hbm.WriteDir(ctx, dir, docs)
		if err != nil {
			return fmt.Errorf("cfg: export mappings: %w", err)
		}
		log.Info("mappings exported", "dir", dir, "files", len(files))
	}
	return nil
}

// FluentMappingsContainer holds hand-written class maps, subclass maps,
// component maps, filters and imports.
type FluentMappingsContainer struct {
	providers   []fluentmap.Provider
	sources     []fluentmap.ProviderSource
	conventions []any
	exportDir   string
}

// Add registers provider instances.
func (f *FluentMappingsContainer) Add(ps ...fluentmap.Provider) *FluentMappingsContainer {
	f.providers = append(f.providers, ps...)
	return f
}

// AddFromSource registers every provider discovered by src.
func (f *FluentMappingsContainer) AddFromSource(src fluentmap.ProviderSource) *FluentMappingsContainer {
	f.sources = append(f.sources, src)
	return f
}

// Conventions adds conventions applied to all mappings.
func (f *FluentMappingsContainer) Conventions(cs ...any) *FluentMappingsContainer {
	f.conventions = append(f.conventions, cs...)
	return f
}

// ExportTo writes the compiled mappings to dir as hbm.xml files.
func (f *FluentMappingsContainer) ExportTo(dir string) *FluentMappingsContainer {
	f.exportDir = dir
	return f
}

// AutoMappingsContainer holds automapping models.
type AutoMappingsContainer struct {
	models    []*schema.AutoPersistenceModel
	exportDir string
}

// Add registers automapping models.
func (a *AutoMappingsContainer) Add(ms ...*schema.AutoPersistenceModel) *AutoMappingsContainer {
	a.models = append(a.models, ms...)
	return a
}

// ExportTo writes the compiled mappings to dir as hbm.xml files.
func (a *AutoMappingsContainer) ExportTo(dir string) *AutoMappingsContainer {
	a.exportDir = dir
	return a
}
