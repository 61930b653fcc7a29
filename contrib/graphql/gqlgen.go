package graphql

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"
)

// GQLGenConfig is a gqlgen.yml file. The exporter maintains the schema list
// and the model bindings; every other key is kept as is in Rest.
type GQLGenConfig struct {
	SchemaFilename StringList              `yaml:"schema,omitempty"`
	Autobind       []string                `yaml:"autobind,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`
	Rest           map[string]any          `yaml:",inline"`
}

// TypeMapEntry binds a GraphQL type to Go models.
type TypeMapEntry struct {
	Model  StringList              `yaml:"model,omitempty"`
	Fields map[string]TypeMapField `yaml:"fields,omitempty"`
}

// TypeMapField configures one field of a bound type.
type TypeMapField struct {
	Resolver  bool   `yaml:"resolver,omitempty"`
	FieldName string `yaml:"fieldName,omitempty"`
}

// StringList is a YAML scalar or sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("graphql: line %d: expected a string or a list of strings", node.Line)
}

// MarshalYAML implements yaml.Marshaler. Single entries are written as a
// scalar.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig reads the gqlgen.yml at path. A missing file yields an
// empty config.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	cfg := &GQLGenConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("graphql: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("graphql: parse %s: %w", path, err)
		}
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return cfg, nil
}

// SaveGQLGenConfig writes cfg to path, creating its directory.
func SaveGQLGenConfig(path string, cfg *GQLGenConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("graphql: marshal gqlgen config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("graphql: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath appends path to the schema list once.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// AddAutobind appends pkg to the autobind list once.
func (c *GQLGenConfig) AddAutobind(pkg string) {
	if !slices.Contains(c.Autobind, pkg) {
		c.Autobind = append(c.Autobind, pkg)
	}
}

// SetModel binds typeName to the Go type at modelPath.
func (c *GQLGenConfig) SetModel(typeName, modelPath string) {
	if c.Models == nil {
		c.Models = make(map[string]TypeMapEntry)
	}
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, modelPath) {
		entry.Model = append(entry.Model, modelPath)
	}
	c.Models[typeName] = entry
}

// scalarModels binds the custom scalars of the exporter to gqlgen's
// marshalers. Decimal and Duration have no gqlgen counterpart and are left
// to the caller.
var scalarModels = map[string]string{
	"Int64": "github.com/99designs/gqlgen/graphql.Int64",
	"Time":  "github.com/99designs/gqlgen/graphql.Time",
	"UUID":  "github.com/99designs/gqlgen/graphql.UUID",
}

// BindScalars adds schemaPath to the schema list and binds the scalars
// declared in sd that gqlgen can marshal.
func (c *GQLGenConfig) BindScalars(schemaPath string, sd *ast.SchemaDocument) {
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	for _, d := range sd.Definitions {
		if m, ok := scalarModels[d.Name]; ok && d.Kind == ast.Scalar {
			c.SetModel(d.Name, m)
		}
	}
}

// BindObjects binds every object type of sd to the Go type of the same name
// in pkg, the package the mapped entities live in. Root operation types are
// skipped.
func (c *GQLGenConfig) BindObjects(pkg string, sd *ast.SchemaDocument) {
	for _, d := range sd.Definitions {
		if d.Kind == ast.Object && d.Name != QueryType {
			c.SetModel(d.Name, pkg+"."+d.Name)
		}
	}
}
