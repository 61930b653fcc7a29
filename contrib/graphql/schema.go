package graphql

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// GraphQL names used by the exporter.
const (
	// NodeInterface is the Relay node interface.
	NodeInterface = "Node"
	// FieldID is the identifier field of Relay nodes.
	FieldID = "id"
	// QueryType is the root query type.
	QueryType = "Query"
)

// builtinScalars are the scalars every GraphQL schema declares.
var builtinScalars = map[string]bool{"String": true, "Int": true, "Float": true, "Boolean": true, "ID": true}

// Config configures the export.
type Config struct {
	// RelaySpec adds the Node interface to classes with a single-column id.
	RelaySpec bool
	// QueryField adds a Query type with one list field per class.
	QueryField bool
	// Scalars maps engine type names (e.g. "Int64") to GraphQL scalars.
	Scalars map[string]string
}

// Option configures the export.
type Option func(*Config) error

// WithRelaySpec toggles the Node interface.
func WithRelaySpec(enabled bool) Option {
	return func(c *Config) error {
		c.RelaySpec = enabled
		return nil
	}
}

// WithQueryField toggles the Query type.
func WithQueryField(enabled bool) Option {
	return func(c *Config) error {
		c.QueryField = enabled
		return nil
	}
}

// WithScalar maps an engine type name to a GraphQL scalar.
func WithScalar(engine, scalar string) Option {
	return func(c *Config) error {
		if engine == "" || scalar == "" {
			return fluentmap.NewConfigError("Scalar", engine+"="+scalar, "engine type and scalar are required")
		}
		c.Scalars[engine] = scalar
		return nil
	}
}

// DefaultScalars maps the engine types of the predeclared primitives.
func DefaultScalars() map[string]string {
	return map[string]string{
		"String":     "String",
		"Int32":      "Int",
		"Int64":      "Int64",
		"Boolean":    "Boolean",
		"Single":     "Float",
		"Double":     "Float",
		"Decimal":    "Decimal",
		"DateTime":   "Time",
		"TimeSpan":   "Duration",
		"Guid":       "UUID",
		"BinaryBlob": "Bytes",
	}
}

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{RelaySpec: true, QueryField: true, Scalars: DefaultScalars()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// exporter builds one schema document.
type exporter struct {
	cfg     *Config
	defs    map[string]*ast.Definition
	order   []string
	scalars map[string]bool
}

// Schema exports the classes of doc as a GraphQL schema document. Every
// class and subclass becomes an object type; components become object types
// shared by every usage site.
func Schema(doc *model.Document, opts ...Option) (*ast.SchemaDocument, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	e := &exporter{cfg: cfg, defs: make(map[string]*ast.Definition), scalars: make(map[string]bool)}
	for _, c := range doc.Classes {
		if err := e.class(c); err != nil {
			return nil, err
		}
	}
	if cfg.QueryField && len(doc.Classes) > 0 {
		q := &ast.Definition{Kind: ast.Object, Name: QueryType}
		for _, c := range doc.Classes {
			name := c.Type.ShortName()
			q.Fields = append(q.Fields, &ast.FieldDefinition{
				Name: inflect.Pluralize(inflect.CamelizeDownFirst(name)),
				Type: ast.NonNullListType(ast.NonNullNamedType(name, nil), nil),
			})
		}
		e.add(q)
	}
	sd := &ast.SchemaDocument{}
	if cfg.RelaySpec && e.usesNode() {
		sd.Definitions = append(sd.Definitions, &ast.Definition{
			Kind:        ast.Interface,
			Name:        NodeInterface,
			Description: "An object with a unique identifier.",
			Fields:      ast.FieldList{{Name: FieldID, Type: ast.NonNullNamedType("ID", nil)}},
		})
	}
	for _, s := range slices.Sorted(maps.Keys(e.scalars)) {
		sd.Definitions = append(sd.Definitions, &ast.Definition{Kind: ast.Scalar, Name: s})
	}
	for _, name := range e.order {
		sd.Definitions = append(sd.Definitions, e.defs[name])
	}
	return sd, nil
}

// SDL exports doc as GraphQL schema text. The text is validated before it is
// returned.
func SDL(doc *model.Document, opts ...Option) (string, error) {
	sd, err := Schema(doc, opts...)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(sd)
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: buf.String()}); err != nil {
		return "", fmt.Errorf("graphql: invalid schema: %w", err)
	}
	return buf.String(), nil
}

// WriteFile writes the schema of doc to path, creating its directory.
func WriteFile(path string, doc *model.Document, opts ...Option) error {
	sdl, err := SDL(doc, opts...)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("graphql: create directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(sdl), 0o644)
}

func (e *exporter) add(d *ast.Definition) {
	if _, ok := e.defs[d.Name]; !ok {
		e.order = append(e.order, d.Name)
	}
	e.defs[d.Name] = d
}

func (e *exporter) usesNode() bool {
	for _, d := range e.defs {
		if slices.Contains(d.Interfaces, NodeInterface) {
			return true
		}
	}
	return false
}

func (e *exporter) class(c *model.ClassMapping) error {
	d := &ast.Definition{Kind: ast.Object, Name: c.Type.ShortName()}
	if table := strings.Trim(c.TableName(), "`"); table != "" {
		d.Description = "Mapped to table " + table + "."
	}
	fields, err := e.identity(d, c.Id)
	if err != nil {
		return fmt.Errorf("graphql: class %s: %w", d.Name, err)
	}
	if c.Version != nil && c.Version.Member != nil {
		fields = append(fields, &ast.FieldDefinition{
			Name: fieldName(c.Version.Member.Name),
			Type: ast.NonNullNamedType("Int", nil),
		})
	}
	members, err := e.members(&c.Members)
	if err != nil {
		return fmt.Errorf("graphql: class %s: %w", d.Name, err)
	}
	d.Fields = append(fields, members...)
	e.add(d)
	for _, s := range c.Subclasses {
		if err := e.subclass(d, s); err != nil {
			return err
		}
	}
	return nil
}

// subclass emits s with the fields of its parent followed by its own.
func (e *exporter) subclass(parent *ast.Definition, s *model.SubclassMapping) error {
	d := &ast.Definition{
		Kind:        ast.Object,
		Name:        s.Type.ShortName(),
		Description: "Subclass of " + parent.Name + ".",
		Interfaces:  slices.Clone(parent.Interfaces),
	}
	members, err := e.members(&s.Members)
	if err != nil {
		return fmt.Errorf("graphql: subclass %s: %w", d.Name, err)
	}
	d.Fields = append(slices.Clone(parent.Fields), members...)
	e.add(d)
	for _, child := range s.Subclasses {
		if err := e.subclass(d, child); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) identity(d *ast.Definition, id model.Identity) (ast.FieldList, error) {
	switch id := id.(type) {
	case *model.IdMapping:
		if e.cfg.RelaySpec {
			d.Interfaces = append(d.Interfaces, NodeInterface)
			return ast.FieldList{{Name: FieldID, Type: ast.NonNullNamedType("ID", nil)}}, nil
		}
		if id.Member == nil {
			return nil, nil
		}
		t, err := e.scalar(id.Member.Type)
		if err != nil {
			return nil, err
		}
		return ast.FieldList{{Name: fieldName(id.Name()), Type: ast.NonNullNamedType(t, nil)}}, nil
	case *model.CompositeIdMapping:
		var fields ast.FieldList
		for _, k := range id.Keys {
			switch k := k.(type) {
			case *model.KeyPropertyMapping:
				t, err := e.scalar(k.Member.Type)
				if err != nil {
					return nil, err
				}
				fields = append(fields, &ast.FieldDefinition{Name: fieldName(k.Name()), Type: ast.NonNullNamedType(t, nil)})
			case *model.KeyManyToOneMapping:
				fields = append(fields, &ast.FieldDefinition{Name: fieldName(k.Name()), Type: ast.NonNullNamedType(k.Member.Type.ShortName(), nil)})
			}
		}
		return fields, nil
	}
	return nil, nil
}

func (e *exporter) members(m *model.Members) (ast.FieldList, error) {
	var fields ast.FieldList
	for _, p := range m.Properties {
		t, err := e.scalar(p.Member.Type)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name(), err)
		}
		fields = append(fields, &ast.FieldDefinition{Name: fieldName(p.Name()), Type: nullable(t, notNull(&p.Columns))})
	}
	for _, r := range m.References {
		fields = append(fields, &ast.FieldDefinition{
			Name: fieldName(r.Name()),
			Type: nullable(r.Target().ShortName(), model.Get(r, model.ManyToOne.NotNull) || notNull(&r.Columns)),
		})
	}
	for _, o := range m.OneToOnes {
		fields = append(fields, &ast.FieldDefinition{Name: fieldName(o.Name()), Type: ast.NamedType(o.Member.Type.ShortName(), nil)})
	}
	for _, n := range m.Components {
		c, ok := n.(*model.ComponentMapping)
		if !ok {
			// Unresolved reference components have no members to export.
			continue
		}
		if err := e.component(c.Type, &c.Members); err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldDefinition{Name: fieldName(c.MemberName()), Type: ast.NamedType(c.Type.ShortName(), nil)})
	}
	for _, a := range m.Anys {
		f, err := e.anyField(a)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	for _, c := range m.Collections {
		f, err := e.collection(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	for _, j := range m.Joins {
		joined, err := e.members(&j.Members)
		if err != nil {
			return nil, err
		}
		fields = append(fields, joined...)
	}
	return fields, nil
}

func (e *exporter) component(t *types.Type, m *model.Members) error {
	name := t.ShortName()
	if _, ok := e.defs[name]; ok {
		return nil
	}
	// Reserve the name so that self-referencing components terminate.
	e.add(&ast.Definition{Kind: ast.Object, Name: name})
	fields, err := e.members(m)
	if err != nil {
		return fmt.Errorf("component %s: %w", name, err)
	}
	e.defs[name].Fields = fields
	return nil
}

func (e *exporter) collection(c *model.CollectionMapping) (*ast.FieldDefinition, error) {
	var elem string
	switch {
	case c.Relationship != nil:
		elem = c.ChildType.ShortName()
	case c.CompositeElement != nil:
		elem = c.CompositeElement.Type.ShortName()
		ce := c.CompositeElement
		if err := e.component(ce.Type, &model.Members{Properties: ce.Properties, References: ce.References}); err != nil {
			return nil, err
		}
	default:
		t, err := e.scalar(c.ChildType)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Name(), err)
		}
		elem = t
	}
	return &ast.FieldDefinition{
		Name: fieldName(c.Name()),
		Type: ast.NonNullListType(ast.NonNullNamedType(elem, nil), nil),
	}, nil
}

// anyField exports a polymorphic reference as a union of its meta value
// classes.
func (e *exporter) anyField(a *model.AnyMapping) (*ast.FieldDefinition, error) {
	owner := a.ContainingEntity.ShortName()
	union := &ast.Definition{Kind: ast.Union, Name: owner + inflect.Camelize(a.Name()) + "Target"}
	for _, mv := range a.MetaValues {
		class := model.Get(mv, model.MetaValue.Class)
		union.Types = append(union.Types, class[strings.LastIndexByte(class, '.')+1:])
	}
	if len(union.Types) == 0 {
		return nil, fmt.Errorf("any %s: no meta values to export", a.Name())
	}
	e.add(union)
	return &ast.FieldDefinition{Name: fieldName(a.Name()), Type: ast.NamedType(union.Name, nil)}, nil
}

// scalar returns the GraphQL scalar of a primitive member type and records
// custom scalars for declaration.
func (e *exporter) scalar(t *types.Type) (string, error) {
	if t == nil || t.Kind != types.KindPrimitive {
		return "", fmt.Errorf("type %v has no scalar", t)
	}
	s, ok := e.cfg.Scalars[t.Engine]
	if !ok {
		return "", fmt.Errorf("no scalar for engine type %s", t.Engine)
	}
	if !builtinScalars[s] {
		e.scalars[s] = true
	}
	return s, nil
}

func fieldName(name string) string { return inflect.CamelizeDownFirst(name) }

func nullable(name string, notNull bool) *ast.Type {
	if notNull {
		return ast.NonNullNamedType(name, nil)
	}
	return ast.NamedType(name, nil)
}

func notNull(cols *model.LayeredColumns) bool {
	for _, c := range cols.Columns() {
		if model.Get(c, model.Column.NotNull) {
			return true
		}
	}
	return false
}
