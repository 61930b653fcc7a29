package mixin

import (
	"github.com/syssam/fluentmap/schema"
)

// Schema is the no-op mixin. Custom mixins embed it and override Mix.
type Schema struct{}

// Mix implements schema.Mixin.
func (Schema) Mix(*schema.ClassMap) {}

var _ schema.Mixin = (*Schema)(nil)

// Func adapts a function to a mixin.
type Func func(*schema.ClassMap)

// Mix implements schema.Mixin.
func (f Func) Mix(c *schema.ClassMap) { f(c) }

// Compose returns a mixin applying ms in order.
func Compose(ms ...schema.Mixin) schema.Mixin {
	return Func(func(c *schema.ClassMap) { c.Mixin(ms...) })
}

// =============================================================================
// Built-in Mixins
// =============================================================================

// Time maps the CreatedAt and UpdatedAt members to created_at and
// updated_at. created_at is never updated.
//
//	orders.Mixin(mixin.Time{})
type Time struct {
	Schema
}

// Mix implements schema.Mixin.
func (Time) Mix(c *schema.ClassMap) {
	CreateTime{}.Mix(c)
	UpdateTime{}.Mix(c)
}

// CreateTime maps only CreatedAt.
type CreateTime struct {
	Schema
}

// Mix implements schema.Mixin.
func (CreateTime) Mix(c *schema.ClassMap) {
	c.Map("CreatedAt").Column("created_at").Not().Nullable().Not().Update()
}

// UpdateTime maps only UpdatedAt.
type UpdateTime struct {
	Schema
}

// Mix implements schema.Mixin.
func (UpdateTime) Mix(c *schema.ClassMap) {
	c.Map("UpdatedAt").Column("updated_at").Not().Nullable()
}

// SoftDelete maps DeletedAt to deleted_at and hides deleted rows.
type SoftDelete struct {
	Schema
}

// Mix implements schema.Mixin.
func (SoftDelete) Mix(c *schema.ClassMap) {
	c.Map("DeletedAt").Column("deleted_at").Nullable()
	c.Where("deleted_at IS NULL")
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Mix implements schema.Mixin.
func (TimeSoftDelete) Mix(c *schema.ClassMap) {
	c.Mixin(Time{}, SoftDelete{})
}

// Versioned maps the Version member as the optimistic lock.
type Versioned struct {
	Schema
}

// Mix implements schema.Mixin.
func (Versioned) Mix(c *schema.ClassMap) {
	c.Version("Version").Column("version").UnsavedValue("0")
	c.OptimisticLock(schema.OptimisticLockVersion)
}
