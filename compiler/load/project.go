// Package load reads declarative fluentmap project files.
//
// A project file declares the type graph and the mappings over it in YAML:
//
//	package: shop
//	types:
//	  - name: Customer
//	    fields:
//	      Id: int64
//	      Name: string
//	      Orders: "[]Order"
//	classes:
//	  - type: Customer
//	    table: clients
//	    id: {name: Id, generator: identity}
//	    properties:
//	      - {name: Name, length: 100, not_null: true}
//	    has_many:
//	      - {name: Orders, key_column: Customer_id}
//
// Build resolves the declarations into types, providers and conventions
// ready for the compiler.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syssam/fluentmap/conventions"
	"github.com/syssam/fluentmap/dialect"
)

// DefaultFile is the project file name looked up in a directory.
const DefaultFile = "fluentmap.yaml"

// Project is a parsed project file.
type Project struct {
	// Path is the file the project was read from, if any.
	Path        string                    `yaml:"-"`
	Package     string                    `yaml:"package"`
	Types       []*TypeSpec               `yaml:"types"`
	Classes     []*ClassSpec              `yaml:"classes,omitempty"`
	Subclasses  []*SubclassSpec           `yaml:"subclasses,omitempty"`
	Components  []*ComponentSpec          `yaml:"components,omitempty"`
	Filters     []*FilterSpec             `yaml:"filters,omitempty"`
	Imports     []*ImportSpec             `yaml:"imports,omitempty"`
	Automap     *AutomapSpec              `yaml:"automap,omitempty"`
	Conventions []conventions.Declaration `yaml:"conventions,omitempty"`
	Builtins    []string                  `yaml:"builtin_conventions,omitempty"`
	Database    *dialect.Settings         `yaml:"database,omitempty"`
	Output      Output                    `yaml:"output,omitempty"`
}

// Output configures what the command line tool writes.
type Output struct {
	// Dir receives the hbm.xml files. Relative paths are resolved against
	// the project file.
	Dir string `yaml:"dir,omitempty"`
	// Merge writes a single document instead of one per class.
	Merge bool `yaml:"merge,omitempty"`
	// DDL, GraphQL and Scaffold are optional output files.
	DDL      string `yaml:"ddl,omitempty"`
	GraphQL  string `yaml:"graphql,omitempty"`
	Scaffold string `yaml:"scaffold,omitempty"`
}

// TypeSpec declares a struct or interface type.
type TypeSpec struct {
	Name       string   `yaml:"name"`
	Base       string   `yaml:"base,omitempty"`
	Interface  bool     `yaml:"interface,omitempty"`
	Abstract   bool     `yaml:"abstract,omitempty"`
	Implements []string `yaml:"implements,omitempty"`
	Fields     Fields   `yaml:"fields,omitempty"`
}

// Field is a name and a type expression such as "string", "[]Order" or
// "map[string]int".
type Field struct {
	Name string
	Type string
}

// Fields keeps the declaration order of a YAML mapping.
type Fields []Field

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping, got %v", node.Line, node.Kind)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: type of field %q must be a string", v.Line, k.Value)
		}
		out = append(out, Field{Name: k.Value, Type: v.Value})
	}
	*f = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, fd := range f {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: fd.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: fd.Type},
		)
	}
	return node, nil
}

// Members are the member declarations shared by classes, subclasses and
// components.
type Members struct {
	Properties    []*PropertySpec      `yaml:"properties,omitempty"`
	References    []*ReferenceSpec     `yaml:"references,omitempty"`
	HasOne        []*OneToOneSpec      `yaml:"has_one,omitempty"`
	HasMany       []*CollectionSpec    `yaml:"has_many,omitempty"`
	HasManyToMany []*CollectionSpec    `yaml:"has_many_to_many,omitempty"`
	Components    []*InlineComponent   `yaml:"components,omitempty"`
	ComponentRefs []*ComponentRefSpec  `yaml:"component_refs,omitempty"`
	Any           []*AnySpec           `yaml:"any,omitempty"`
	Filters       []*AppliedFilterSpec `yaml:"apply_filters,omitempty"`
}

// ClassSpec declares a class map.
type ClassSpec struct {
	Type               string             `yaml:"type"`
	Table              string             `yaml:"table,omitempty"`
	Schema             string             `yaml:"schema,omitempty"`
	Lazy               *bool              `yaml:"lazy,omitempty"`
	ReadOnly           bool               `yaml:"read_only,omitempty"`
	DynamicUpdate      bool               `yaml:"dynamic_update,omitempty"`
	DynamicInsert      bool               `yaml:"dynamic_insert,omitempty"`
	Abstract           bool               `yaml:"abstract,omitempty"`
	Where              string             `yaml:"where,omitempty"`
	BatchSize          int                `yaml:"batch_size,omitempty"`
	Polymorphism       string             `yaml:"polymorphism,omitempty"`
	OptimisticLock     string             `yaml:"optimistic_lock,omitempty"`
	Check              string             `yaml:"check,omitempty"`
	DiscriminatorValue string             `yaml:"discriminator_value,omitempty"`
	UnionSubclasses    bool               `yaml:"union_subclasses,omitempty"`
	Cache              *CacheSpec         `yaml:"cache,omitempty"`
	Id                 *IdSpec            `yaml:"id,omitempty"`
	CompositeId        *CompositeIdSpec   `yaml:"composite_id,omitempty"`
	Version            *VersionSpec       `yaml:"version,omitempty"`
	Discriminator      *DiscriminatorSpec `yaml:"discriminator,omitempty"`
	NaturalId          *NaturalIdSpec     `yaml:"natural_id,omitempty"`
	Joins              []*JoinSpec        `yaml:"joins,omitempty"`
	Members            `yaml:",inline"`
}

// SubclassSpec declares a subclass map.
type SubclassSpec struct {
	Type               string      `yaml:"type"`
	Extends            string      `yaml:"extends,omitempty"`
	DiscriminatorValue string      `yaml:"discriminator_value,omitempty"`
	KeyColumn          string      `yaml:"key_column,omitempty"`
	Table              string      `yaml:"table,omitempty"`
	Schema             string      `yaml:"schema,omitempty"`
	Abstract           bool        `yaml:"abstract,omitempty"`
	Lazy               *bool       `yaml:"lazy,omitempty"`
	BatchSize          int         `yaml:"batch_size,omitempty"`
	Joins              []*JoinSpec `yaml:"joins,omitempty"`
	Members            `yaml:",inline"`
}

// ComponentSpec declares an external component map.
type ComponentSpec struct {
	Type            string `yaml:"type"`
	ParentReference string `yaml:"parent_reference,omitempty"`
	Members         `yaml:",inline"`
}

// InlineComponent maps a member as a component declared in place.
type InlineComponent struct {
	Name            string `yaml:"name"`
	Prefix          string `yaml:"prefix,omitempty"`
	ParentReference string `yaml:"parent_reference,omitempty"`
	Unique          bool   `yaml:"unique,omitempty"`
	ReadOnly        bool   `yaml:"read_only,omitempty"`
	Dynamic         bool   `yaml:"dynamic,omitempty"`
	Members         `yaml:",inline"`
}

// ComponentRefSpec maps a member to an external component.
type ComponentRefSpec struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix,omitempty"`
	Unique bool   `yaml:"unique,omitempty"`
}

// IdSpec declares a single-column identifier.
type IdSpec struct {
	Name         string            `yaml:"name"`
	Column       string            `yaml:"column,omitempty"`
	Length       int               `yaml:"length,omitempty"`
	UnsavedValue string            `yaml:"unsaved_value,omitempty"`
	Type         string            `yaml:"type,omitempty"`
	Generator    string            `yaml:"generator,omitempty"`
	Params       map[string]string `yaml:"params,omitempty"`
}

// KeySpec is one part of a composite identifier or natural id.
type KeySpec struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns,omitempty"`
}

// CompositeIdSpec declares a multi-part identifier.
type CompositeIdSpec struct {
	Properties []KeySpec `yaml:"properties,omitempty"`
	References []KeySpec `yaml:"references,omitempty"`
	Mapped     bool      `yaml:"mapped,omitempty"`
}

// VersionSpec declares the optimistic concurrency member.
type VersionSpec struct {
	Name         string `yaml:"name"`
	Column       string `yaml:"column,omitempty"`
	UnsavedValue string `yaml:"unsaved_value,omitempty"`
	Generated    string `yaml:"generated,omitempty"`
}

// DiscriminatorSpec declares the table-per-hierarchy discriminator.
type DiscriminatorSpec struct {
	Column   string `yaml:"column"`
	Type     string `yaml:"type,omitempty"`
	Length   int    `yaml:"length,omitempty"`
	Formula  string `yaml:"formula,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Force    bool   `yaml:"force,omitempty"`
}

// NaturalIdSpec declares the natural identifier.
type NaturalIdSpec struct {
	Properties []KeySpec `yaml:"properties,omitempty"`
	References []KeySpec `yaml:"references,omitempty"`
	Mutable    bool      `yaml:"mutable,omitempty"`
}

// CacheSpec configures the second-level cache.
type CacheSpec struct {
	Usage  string `yaml:"usage"`
	Region string `yaml:"region,omitempty"`
}

// PropertySpec maps a scalar member.
type PropertySpec struct {
	Name      string   `yaml:"name"`
	Columns   []string `yaml:"columns,omitempty"`
	Length    int      `yaml:"length,omitempty"`
	Precision int      `yaml:"precision,omitempty"`
	Scale     int      `yaml:"scale,omitempty"`
	NotNull   *bool    `yaml:"not_null,omitempty"`
	Unique    bool     `yaml:"unique,omitempty"`
	UniqueKey string   `yaml:"unique_key,omitempty"`
	Index     string   `yaml:"index,omitempty"`
	Check     string   `yaml:"check,omitempty"`
	Default   string   `yaml:"default,omitempty"`
	SQLType   string   `yaml:"sql_type,omitempty"`
	Type      string   `yaml:"type,omitempty"`
	Formula   string   `yaml:"formula,omitempty"`
	ReadOnly  bool     `yaml:"read_only,omitempty"`
	Lazy      bool     `yaml:"lazy,omitempty"`
	Access    string   `yaml:"access,omitempty"`
}

// ReferenceSpec maps a many-to-one reference.
type ReferenceSpec struct {
	Name        string   `yaml:"name"`
	Columns     []string `yaml:"columns,omitempty"`
	Class       string   `yaml:"class,omitempty"`
	Cascade     string   `yaml:"cascade,omitempty"`
	Fetch       string   `yaml:"fetch,omitempty"`
	Lazy        *bool    `yaml:"lazy,omitempty"`
	NotFound    string   `yaml:"not_found,omitempty"`
	NotNull     *bool    `yaml:"not_null,omitempty"`
	Unique      bool     `yaml:"unique,omitempty"`
	UniqueKey   string   `yaml:"unique_key,omitempty"`
	Index       string   `yaml:"index,omitempty"`
	ForeignKey  string   `yaml:"foreign_key,omitempty"`
	PropertyRef string   `yaml:"property_ref,omitempty"`
	Formula     string   `yaml:"formula,omitempty"`
}

// OneToOneSpec maps a one-to-one association.
type OneToOneSpec struct {
	Name        string `yaml:"name"`
	Constrained bool   `yaml:"constrained,omitempty"`
	PropertyRef string `yaml:"property_ref,omitempty"`
	Cascade     string `yaml:"cascade,omitempty"`
	Fetch       string `yaml:"fetch,omitempty"`
	ForeignKey  string `yaml:"foreign_key,omitempty"`
}

// CollectionSpec maps a one-to-many or many-to-many collection.
type CollectionSpec struct {
	Name           string       `yaml:"name"`
	Kind           string       `yaml:"kind,omitempty"`
	IndexColumn    string       `yaml:"index_column,omitempty"`
	KeyColumns     []string     `yaml:"key_columns,omitempty"`
	KeyColumn      string       `yaml:"key_column,omitempty"`
	ChildKeyColumn string       `yaml:"child_key_column,omitempty"`
	ForeignKey     string       `yaml:"foreign_key,omitempty"`
	Table          string       `yaml:"table,omitempty"`
	Schema         string       `yaml:"schema,omitempty"`
	Inverse        bool         `yaml:"inverse,omitempty"`
	Cascade        string       `yaml:"cascade,omitempty"`
	Lazy           *bool        `yaml:"lazy,omitempty"`
	ExtraLazy      bool         `yaml:"extra_lazy,omitempty"`
	Fetch          string       `yaml:"fetch,omitempty"`
	Where          string       `yaml:"where,omitempty"`
	OrderBy        string       `yaml:"order_by,omitempty"`
	BatchSize      int          `yaml:"batch_size,omitempty"`
	Cache          *CacheSpec   `yaml:"cache,omitempty"`
	Element        *ElementSpec `yaml:"element,omitempty"`
}

// ElementSpec maps the values of a collection of scalars.
type ElementSpec struct {
	Column  string `yaml:"column"`
	Type    string `yaml:"type,omitempty"`
	Length  int    `yaml:"length,omitempty"`
	Formula string `yaml:"formula,omitempty"`
}

// AnySpec maps a polymorphic reference.
type AnySpec struct {
	Name       string            `yaml:"name"`
	TypeColumn string            `yaml:"type_column"`
	IdColumn   string            `yaml:"id_column"`
	IdType     string            `yaml:"id_type"`
	MetaType   string            `yaml:"meta_type,omitempty"`
	MetaValues map[string]string `yaml:"meta_values,omitempty"`
	Cascade    string            `yaml:"cascade,omitempty"`
}

// JoinSpec maps members to a secondary table.
type JoinSpec struct {
	Table     string `yaml:"table"`
	KeyColumn string `yaml:"key_column,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"`
	Inverse   bool   `yaml:"inverse,omitempty"`
	Fetch     string `yaml:"fetch,omitempty"`

	Properties []*PropertySpec  `yaml:"properties,omitempty"`
	References []*ReferenceSpec `yaml:"references,omitempty"`
}

// AppliedFilterSpec enables a declared filter on an entity or collection.
type AppliedFilterSpec struct {
	Name      string `yaml:"name"`
	Condition string `yaml:"condition,omitempty"`
}

// FilterSpec declares a filter definition.
type FilterSpec struct {
	Name       string `yaml:"name"`
	Condition  string `yaml:"condition,omitempty"`
	Parameters Fields `yaml:"parameters,omitempty"`
}

// ImportSpec imports a type under an alias for queries.
type ImportSpec struct {
	Type string `yaml:"type"`
	As   string `yaml:"as,omitempty"`
}

// AutomapSpec automaps types without a class map.
type AutomapSpec struct {
	Types     []string        `yaml:"types"`
	Overrides []*OverrideSpec `yaml:"overrides,omitempty"`
}

// OverrideSpec adjusts an automapped type. It accepts every class setting
// plus the members to leave out.
type OverrideSpec struct {
	ClassSpec `yaml:",inline"`
	Ignore    []string `yaml:"ignore,omitempty"`
}

// LoadFile reads the project at path. A directory is resolved to its
// DefaultFile.
func LoadFile(path string) (*Project, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read project %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse parses a project from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Project, error) {
	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	applyDefaults(&p)
	return &p, nil
}

// Marshal encodes p as YAML.
func Marshal(p *Project) ([]byte, error) {
	return yaml.Marshal(p)
}

// OutputDir returns the output directory resolved against the project file.
func (p *Project) OutputDir() string {
	return p.resolve(p.Output.Dir)
}

// OutputPath resolves an output file such as Output.DDL against the project
// file. Empty paths stay empty.
func (p *Project) OutputPath(path string) string {
	return p.resolve(path)
}

func (p *Project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(p.Path), path)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(p *Project) {
	if p.Output.Dir == "" {
		p.Output.Dir = "mappings"
	}
	for _, c := range p.Classes {
		if c.Id != nil && c.Id.Name == "" {
			c.Id.Name = "Id"
		}
	}
}
