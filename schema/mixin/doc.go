// Package mixin provides reusable class map fragments.
//
// A mixin maps members that several entities share. Custom mixins embed
// Schema and implement Mix:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Mix(c *schema.ClassMap) {
//	    c.Map("CreatedBy").Column("created_by").Length(64)
//	    c.Map("UpdatedBy").Column("updated_by").Length(64)
//	}
//
// Using mixins:
//
//	order := schema.NewClassMap(orderType)
//	order.Mixin(mixin.Time{}, mixin.SoftDelete{}, Audit{})
//
// The mapped type must declare every member a mixin maps. Missing members
// are reported by the class map's Err method.
package mixin
