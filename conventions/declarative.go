package conventions

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/model"
)

// Declarative targets.
const (
	TargetClass      = "class"
	TargetId         = "id"
	TargetProperty   = "property"
	TargetReference  = "reference"
	TargetCollection = "collection"
)

// Declaration is a convention read from a project file:
//
//	target: property
//	when: name == "Email" && entity == "Customer"
//	set:
//	  length: "320"
//	  not-null: "true"
//
// The when expression is CEL over the variables name, entity, class, table,
// column, child, kind and many_to_many. An empty expression matches every
// node of the target.
type Declaration struct {
	Target string            `yaml:"target"`
	When   string            `yaml:"when,omitempty"`
	Set    map[string]string `yaml:"set"`
}

// Declarative is a compiled Declaration.
type Declarative struct {
	decl    Declaration
	program cel.Program
	setters []setter
}

type setter struct {
	key   string
	apply func(any)
}

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func celEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("name", cel.StringType),
			cel.Variable("entity", cel.StringType),
			cel.Variable("class", cel.StringType),
			cel.Variable("table", cel.StringType),
			cel.Variable("column", cel.StringType),
			cel.Variable("child", cel.StringType),
			cel.Variable("kind", cel.StringType),
			cel.Variable("many_to_many", cel.BoolType),
		)
	})
	return env, envErr
}

// NewDeclarative compiles d. Unknown targets, unknown keys, malformed values
// and invalid expressions are reported as configuration errors.
func NewDeclarative(d Declaration) (*Declarative, error) {
	table, ok := declarativeSetters[d.Target]
	if !ok {
		return nil, fluentmap.NewConfigError("convention.target", d.Target, "unknown convention target")
	}
	c := &Declarative{decl: d}
	keys := make([]string, 0, len(d.Set))
	for k := range d.Set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		build, ok := table[k]
		if !ok {
			return nil, fluentmap.NewConfigError("convention.set", k, fmt.Sprintf("unknown %s setting", d.Target))
		}
		apply, err := build(d.Set[k])
		if err != nil {
			return nil, fluentmap.NewConfigError("convention.set."+k, d.Set[k], err.Error())
		}
		c.setters = append(c.setters, setter{key: k, apply: apply})
	}
	if d.When != "" {
		e, err := celEnv()
		if err != nil {
			return nil, fmt.Errorf("conventions: cel environment: %w", err)
		}
		ast, iss := e.Compile(d.When)
		if iss != nil && iss.Err() != nil {
			return nil, fluentmap.NewConfigError("convention.when", d.When, iss.Err().Error())
		}
		prg, err := e.Program(ast)
		if err != nil {
			return nil, fluentmap.NewConfigError("convention.when", d.When, err.Error())
		}
		c.program = prg
	}
	return c, nil
}

// Declaration returns the source declaration.
func (c *Declarative) Declaration() Declaration { return c.decl }

func (*Declarative) AllowMultiple() {}

// matches evaluates the when expression. Evaluation errors and non-boolean
// results do not match.
func (c *Declarative) matches(vars map[string]any) bool {
	if c.program == nil {
		return true
	}
	for _, k := range []string{"name", "entity", "class", "table", "column", "child", "kind"} {
		if _, ok := vars[k]; !ok {
			vars[k] = ""
		}
	}
	if _, ok := vars["many_to_many"]; !ok {
		vars["many_to_many"] = false
	}
	out, _, err := c.program.Eval(vars)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func (c *Declarative) run(target string, vars map[string]any, instance any) {
	if c.decl.Target != target || !c.matches(vars) {
		return
	}
	for _, s := range c.setters {
		s.apply(instance)
	}
}

// ApplyClass implements ClassConvention.
func (c *Declarative) ApplyClass(i *ClassInstance) {
	c.run(TargetClass, map[string]any{
		"name":   i.EntityType().ShortName(),
		"entity": i.EntityType().ShortName(),
		"class":  i.EntityType().String(),
		"table":  i.TableName(),
	}, i)
}

// ApplyId implements IdConvention.
func (c *Declarative) ApplyId(i *IdInstance) {
	vars := map[string]any{
		"name":   i.Name(),
		"column": first(i.m.Columns.Names()),
		"class":  model.Get(i.m, model.Id.Type),
	}
	if i.EntityType() != nil {
		vars["entity"] = i.EntityType().ShortName()
	}
	c.run(TargetId, vars, i)
}

// ApplyProperty implements PropertyConvention.
func (c *Declarative) ApplyProperty(i *PropertyInstance) {
	vars := map[string]any{
		"name":   i.Name(),
		"column": first(i.m.Columns.Names()),
		"class":  model.Get(i.m, model.Property.Type),
	}
	if i.EntityType() != nil {
		vars["entity"] = i.EntityType().ShortName()
	}
	c.run(TargetProperty, vars, i)
}

// ApplyReference implements ReferenceConvention.
func (c *Declarative) ApplyReference(i *ReferenceInstance) {
	vars := map[string]any{
		"name":   i.Name(),
		"column": first(i.m.Columns.Names()),
		"class":  i.Target().ShortName(),
		"child":  i.Target().ShortName(),
	}
	if i.EntityType() != nil {
		vars["entity"] = i.EntityType().ShortName()
	}
	c.run(TargetReference, vars, i)
}

// ApplyCollection implements CollectionConvention.
func (c *Declarative) ApplyCollection(i *CollectionInstance) {
	vars := map[string]any{
		"name":         i.Name(),
		"table":        i.TableName(),
		"kind":         string(i.Kind()),
		"many_to_many": i.IsManyToMany(),
	}
	if i.EntityType() != nil {
		vars["entity"] = i.EntityType().ShortName()
	}
	if i.ChildType() != nil {
		vars["child"] = i.ChildType().ShortName()
		vars["class"] = i.ChildType().String()
	}
	c.run(TargetCollection, vars, i)
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Setting builders keyed by target then by key. A builder parses the raw
// value once and returns the setter.
var declarativeSetters = map[string]map[string]func(string) (func(any), error){
	TargetClass: {
		"table":          str(func(i *ClassInstance, v string) { i.Table(v) }),
		"schema":         str(func(i *ClassInstance, v string) { i.Schema(v) }),
		"where":          str(func(i *ClassInstance, v string) { i.Where(v) }),
		"cache":          str(func(i *ClassInstance, v string) { i.Cache(v) }),
		"lazy":           boolean(func(i *ClassInstance, v bool) { i.LazyLoad(v) }),
		"dynamic-update": boolean(func(i *ClassInstance, v bool) { i.DynamicUpdate(v) }),
		"dynamic-insert": boolean(func(i *ClassInstance, v bool) { i.DynamicInsert(v) }),
		"batch-size":     integer(func(i *ClassInstance, v int) { i.BatchSize(v) }),
	},
	TargetId: {
		"column":        str(func(i *IdInstance, v string) { i.Column(v) }),
		"generator":     str(func(i *IdInstance, v string) { i.GeneratedBy(v) }),
		"unsaved-value": str(func(i *IdInstance, v string) { i.UnsavedValue(v) }),
		"access":        str(func(i *IdInstance, v string) { i.Access(v) }),
		"length":        integer(func(i *IdInstance, v int) { i.Length(v) }),
	},
	TargetProperty: {
		"column":   str(func(i *PropertyInstance, v string) { i.Column(v) }),
		"access":   str(func(i *PropertyInstance, v string) { i.Access(v) }),
		"type":     str(func(i *PropertyInstance, v string) { i.CustomType(v) }),
		"sql-type": str(func(i *PropertyInstance, v string) { i.CustomSqlType(v) }),
		"index":    str(func(i *PropertyInstance, v string) { i.Index(v) }),
		"length":   integer(func(i *PropertyInstance, v int) { i.Length(v) }),
		"not-null": boolean(func(i *PropertyInstance, v bool) { i.NotNull(v) }),
		"unique":   boolean(func(i *PropertyInstance, v bool) { i.Unique(v) }),
	},
	TargetReference: {
		"column":      str(func(i *ReferenceInstance, v string) { i.Column(v) }),
		"cascade":     str(func(i *ReferenceInstance, v string) { i.Cascade(v) }),
		"fetch":       str(func(i *ReferenceInstance, v string) { i.Fetch(v) }),
		"foreign-key": str(func(i *ReferenceInstance, v string) { i.ForeignKey(v) }),
		"lazy":        str(func(i *ReferenceInstance, v string) { i.LazyLoad(v) }),
		"not-found":   str(func(i *ReferenceInstance, v string) { i.NotFound(v) }),
		"not-null":    boolean(func(i *ReferenceInstance, v bool) { i.NotNull(v) }),
	},
	TargetCollection: {
		"table":      str(func(i *CollectionInstance, v string) { i.Table(v) }),
		"cascade":    str(func(i *CollectionInstance, v string) { i.Cascade(v) }),
		"fetch":      str(func(i *CollectionInstance, v string) { i.Fetch(v) }),
		"lazy":       str(func(i *CollectionInstance, v string) { i.LazyLoad(v) }),
		"order-by":   str(func(i *CollectionInstance, v string) { i.OrderBy(v) }),
		"key-column": str(func(i *CollectionInstance, v string) { i.Key().Column(v) }),
		"inverse":    boolean(func(i *CollectionInstance, v bool) { i.Inverse(v) }),
		"batch-size": integer(func(i *CollectionInstance, v int) { i.BatchSize(v) }),
	},
}

func str[I any](fn func(I, string)) func(string) (func(any), error) {
	return func(raw string) (func(any), error) {
		return func(i any) { fn(i.(I), raw) }, nil
	}
}

func boolean[I any](fn func(I, bool)) func(string) (func(any), error) {
	return func(raw string) (func(any), error) {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return func(i any) { fn(i.(I), v) }, nil
	}
}

func integer[I any](fn func(I, int)) func(string) (func(any), error) {
	return func(raw string) (func(any), error) {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return func(i any) { fn(i.(I), v) }, nil
	}
}
