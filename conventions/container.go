package conventions

import (
	"fmt"
	"reflect"

	"github.com/syssam/fluentmap"
)

// Source supplies conventions discovered outside of explicit registration,
// such as a package registry or a declarative project file.
type Source interface {
	Conventions() []any
	Identifier() string
}

// Container holds the registered conventions in registration order.
type Container struct {
	list []any
	seen map[reflect.Type]bool
}

// New returns a container holding conventions.
func New(conventions ...any) (*Container, error) {
	c := &Container{seen: make(map[reflect.Type]bool)}
	if err := c.Add(conventions...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(conventions ...any) *Container {
	c, err := New(conventions...)
	if err != nil {
		panic(err)
	}
	return c
}

// Add registers conventions. A value implementing no aspect is rejected. A
// second value of the same concrete type is ignored unless the type
// implements Multiple.
func (c *Container) Add(conventions ...any) error {
	if c.seen == nil {
		c.seen = make(map[reflect.Type]bool)
	}
	for _, v := range conventions {
		if v == nil || !isConvention(v) {
			return fluentmap.NewConfigError("convention", fmt.Sprintf("%T", v), "value implements no convention aspect")
		}
		t := reflect.TypeOf(v)
		if _, multi := v.(Multiple); !multi {
			if c.seen[t] {
				continue
			}
			c.seen[t] = true
		}
		c.list = append(c.list, v)
	}
	return nil
}

// AddSource registers the conventions of src.
func (c *Container) AddSource(src Source) error {
	if err := c.Add(src.Conventions()...); err != nil {
		return fmt.Errorf("convention source %s: %w", src.Identifier(), err)
	}
	return nil
}

// Setup runs fn against the container. It groups lambda conventions:
//
//	c.Setup(func(c *conventions.Container) error {
//		return c.Add(conventions.Table.Is(func(i *conventions.ClassInstance) string {
//			return "tbl_" + i.EntityType().ShortName()
//		}))
//	})
func (c *Container) Setup(fn func(*Container) error) error {
	return fn(c)
}

// Len returns the number of registered conventions.
func (c *Container) Len() int { return len(c.list) }

// All returns the registered conventions in registration order.
func (c *Container) All() []any {
	out := make([]any, len(c.list))
	copy(out, c.list)
	return out
}

// Find returns the registered conventions implementing T in registration
// order. A nil container holds none.
func Find[T any](c *Container) []T {
	if c == nil {
		return nil
	}
	var out []T
	for _, v := range c.list {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
