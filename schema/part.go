package schema

import (
	"strings"

	"github.com/syssam/fluentmap/model"
)

// part records builder calls as steps replayed against a fresh model
// fragment each time a mapping is produced.
type part[T any] struct {
	steps []func(T)
	not   bool
}

func (p *part[T]) add(f func(T)) { p.steps = append(p.steps, f) }

func (p *part[T]) apply(t T) {
	for _, f := range p.steps {
		f(t)
	}
}

// flag consumes a pending Not and returns the value to store.
func (p *part[T]) flag() bool {
	v := !p.not
	p.not = false
	return v
}

// columnSteps collects column attributes applied to every column of a
// member once its columns are final.
type columnSteps struct {
	steps []func(*model.ColumnMapping)
}

func (c *columnSteps) add(f func(*model.ColumnMapping)) { c.steps = append(c.steps, f) }

func (c *columnSteps) applyTo(cols *model.LayeredColumns) {
	for _, col := range cols.All() {
		for _, f := range c.steps {
			f(col)
		}
	}
}

func userColumn(cols *model.LayeredColumns, names ...string) {
	for _, n := range names {
		cols.Add(model.UserSupplied, model.NewColumn(n, model.UserSupplied))
	}
}

// Cascade values.
const (
	CascadeAll             = "all"
	CascadeAllDeleteOrphan = "all-delete-orphan"
	CascadeNone            = "none"
	CascadeSaveUpdate      = "save-update"
	CascadeDelete          = "delete"
	CascadeMerge           = "merge"
)

// CascadeExpression sets a cascade style and returns to its owner.
type CascadeExpression[P any] struct {
	owner P
	set   func(string)
}

func cascade[P any](owner P, set func(string)) *CascadeExpression[P] {
	return &CascadeExpression[P]{owner: owner, set: set}
}

// All cascades every operation.
func (c *CascadeExpression[P]) All() P { c.set(CascadeAll); return c.owner }

// AllDeleteOrphan cascades every operation and deletes orphans.
func (c *CascadeExpression[P]) AllDeleteOrphan() P { c.set(CascadeAllDeleteOrphan); return c.owner }

// None disables cascading.
func (c *CascadeExpression[P]) None() P { c.set(CascadeNone); return c.owner }

// SaveUpdate cascades saves and updates.
func (c *CascadeExpression[P]) SaveUpdate() P { c.set(CascadeSaveUpdate); return c.owner }

// Delete cascades deletes.
func (c *CascadeExpression[P]) Delete() P { c.set(CascadeDelete); return c.owner }

// Merge cascades merges.
func (c *CascadeExpression[P]) Merge() P { c.set(CascadeMerge); return c.owner }

// Combine sets several styles at once.
func (c *CascadeExpression[P]) Combine(styles ...string) P {
	c.set(strings.Join(styles, ","))
	return c.owner
}

// Access strategies.
const (
	AccessProperty        = "property"
	AccessField           = "field"
	AccessBackField       = "backfield"
	AccessReadOnly        = "readonly"
	AccessNoSetter        = "nosetter.camelcase"
	AccessCamelCaseField  = "field.camelcase"
	AccessLowerCaseField  = "field.lowercase"
	AccessPascalCaseField = "field.pascalcase-underscore"
)

// Fetch modes.
const (
	FetchSelect    = "select"
	FetchJoin      = "join"
	FetchSubselect = "subselect"
)

// NotFound behaviours.
const (
	NotFoundIgnore    = "ignore"
	NotFoundException = "exception"
)
