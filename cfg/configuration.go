package cfg

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/syssam/fluentmap/hbm"
	"github.com/syssam/fluentmap/model"
)

// Mapping is one serialized hibernate-mapping document registered in a
// Configuration.
type Mapping struct {
	Name     string   `msgpack:"name"`
	Entities []string `msgpack:"entities"`
	XML      []byte   `msgpack:"xml"`
}

// Configuration collects the engine properties and the mapping documents
// registered for the engine. An entity is registered at most once.
type Configuration struct {
	properties map[string]string
	mappings   []Mapping
	entities   map[string]struct{}
	classes    map[string]*model.ClassMapping
	cached     bool
	log        *slog.Logger
}

// NewConfiguration returns an empty configuration.
func NewConfiguration() *Configuration {
	return &Configuration{
		properties: make(map[string]string),
		entities:   make(map[string]struct{}),
		classes:    make(map[string]*model.ClassMapping),
		log:        slog.New(slog.DiscardHandler),
	}
}

// SetProperty sets an engine property.
func (c *Configuration) SetProperty(name, value string) *Configuration {
	c.properties[name] = value
	return c
}

// SetProperties sets every property of props.
func (c *Configuration) SetProperties(props map[string]string) *Configuration {
	maps.Copy(c.properties, props)
	return c
}

// Property returns an engine property.
func (c *Configuration) Property(name string) (string, bool) {
	v, ok := c.properties[name]
	return v, ok
}

// Properties returns a copy of the engine properties.
func (c *Configuration) Properties() map[string]string {
	return maps.Clone(c.properties)
}

// IsRegistered reports whether a mapping for the named entity was added.
func (c *Configuration) IsRegistered(entity string) bool {
	_, ok := c.entities[entity]
	return ok
}

// AddDocument registers the classes of doc that are not registered yet and
// returns how many were added. A document whose classes are all registered
// is skipped unless it carries filters or imports.
func (c *Configuration) AddDocument(doc *model.Document) (int, error) {
	fresh := doc.Clone()
	fresh.Classes = slices.DeleteFunc(fresh.Classes, func(cm *model.ClassMapping) bool {
		if c.IsRegistered(cm.Name()) {
			c.log.Debug("mapping already registered", "entity", cm.Name())
			return true
		}
		return false
	})
	if len(fresh.Classes) == 0 && len(fresh.Filters) == 0 && len(fresh.Imports) == 0 {
		return 0, nil
	}
	xml, err := hbm.Marshal(fresh)
	if err != nil {
		return 0, err
	}
	m := Mapping{Name: fresh.Name(), XML: xml}
	for _, cm := range fresh.Classes {
		c.entities[cm.Name()] = struct{}{}
		c.classes[cm.Name()] = cm
		m.Entities = append(m.Entities, cm.Name())
	}
	c.mappings = append(c.mappings, m)
	c.log.Debug("mapping registered", "document", m.Name, "entities", len(m.Entities))
	return len(m.Entities), nil
}

// Mappings returns the registered mapping documents in registration order.
func (c *Configuration) Mappings() []Mapping {
	return slices.Clone(c.mappings)
}

// ClassMapping returns the compiled class of a registered entity. Classes
// are not available on a configuration restored from a cache.
func (c *Configuration) ClassMapping(entity string) (*model.ClassMapping, bool) {
	cm, ok := c.classes[entity]
	return cm, ok
}

// Entities returns the registered entity names in registration order.
func (c *Configuration) Entities() []string {
	var names []string
	for _, m := range c.mappings {
		names = append(names, m.Entities...)
	}
	return names
}

// FromCache reports whether the configuration was restored from a cache.
func (c *Configuration) FromCache() bool { return c.cached }
