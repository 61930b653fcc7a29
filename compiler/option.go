package compiler

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/automap"
	"github.com/syssam/fluentmap/compiler/visit"
	"github.com/syssam/fluentmap/conventions"
)

// Config holds the settings of one compilation.
type Config struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	// Validate enables the validation pass. It is on by default.
	Validate bool
	// MergeMappings selects one document for all classes in Documents.
	MergeMappings bool
	Pairing       visit.PairingStrategy
	Automapper    fluentmap.Automapper
	Conventions   *conventions.Container
	// Providers are registered instances, compiled before Sources.
	Providers []fluentmap.Provider
	Sources   []fluentmap.ProviderSource
	// BucketVisitors rewrite the bucket after the built-in passes and
	// before validation.
	BucketVisitors []visit.Visitor
	// Visitors run over the assembled document after the built-in
	// document passes.
	Visitors []visit.DocumentVisitor
}

// Option configures a compilation.
type Option func(*Config) error

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return fluentmap.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithTracer sets the tracer used for compilation and pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) error {
		if t == nil {
			return fluentmap.NewConfigError("Tracer", nil, "tracer cannot be nil")
		}
		c.Tracer = t
		return nil
	}
}

// WithValidation enables or disables the validation pass.
func WithValidation(enabled bool) Option {
	return func(c *Config) error {
		c.Validate = enabled
		return nil
	}
}

// WithMergeMappings selects a single merged document instead of one
// document per class.
func WithMergeMappings(merge bool) Option {
	return func(c *Config) error {
		c.MergeMappings = merge
		return nil
	}
}

// WithPairing sets the relationship pairing strategy. Without it no
// relationship is paired.
func WithPairing(s visit.PairingStrategy) Option {
	return func(c *Config) error {
		if s == nil {
			return fluentmap.NewConfigError("Pairing", nil, "pairing strategy cannot be nil")
		}
		c.Pairing = s
		return nil
	}
}

// WithAutomapper replaces the default automapper.
func WithAutomapper(a fluentmap.Automapper) Option {
	return func(c *Config) error {
		if a == nil {
			return fluentmap.NewConfigError("Automapper", nil, "automapper cannot be nil")
		}
		c.Automapper = a
		return nil
	}
}

// WithProviders registers mapping providers.
func WithProviders(ps ...fluentmap.Provider) Option {
	return func(c *Config) error {
		for _, p := range ps {
			if p == nil {
				return fluentmap.NewConfigError("Providers", nil, "provider cannot be nil")
			}
		}
		c.Providers = append(c.Providers, ps...)
		return nil
	}
}

// WithSources registers provider sources, compiled after the registered
// providers in order.
func WithSources(srcs ...fluentmap.ProviderSource) Option {
	return func(c *Config) error {
		c.Sources = append(c.Sources, srcs...)
		return nil
	}
}

// WithConventions registers conventions in order.
func WithConventions(cs ...any) Option {
	return func(c *Config) error {
		return c.Conventions.Add(cs...)
	}
}

// WithConventionSources registers every convention of the given sources.
func WithConventionSources(srcs ...conventions.Source) Option {
	return func(c *Config) error {
		for _, s := range srcs {
			if err := c.Conventions.AddSource(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithConventionContainer replaces the convention container.
func WithConventionContainer(ct *conventions.Container) Option {
	return func(c *Config) error {
		if ct == nil {
			return fluentmap.NewConfigError("Conventions", nil, "container cannot be nil")
		}
		c.Conventions = ct
		return nil
	}
}

// WithVisitors adds document visitors.
func WithVisitors(vs ...visit.DocumentVisitor) Option {
	return func(c *Config) error {
		c.Visitors = append(c.Visitors, vs...)
		return nil
	}
}

// WithBucketVisitors adds bucket visitors. They see the rewritten bucket
// and their output is validated.
func WithBucketVisitors(vs ...visit.Visitor) Option {
	return func(c *Config) error {
		c.BucketVisitors = append(c.BucketVisitors, vs...)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig returns the default config with opts applied. Defaults are a
// discarding logger, a no-op tracer, validation enabled, no pairing and the
// automap package's automapper.
func NewConfig(opts ...Option) (*Config, error) {
	logger := slog.New(slog.DiscardHandler)
	c := &Config{
		Logger:      logger,
		Tracer:      noop.NewTracerProvider().Tracer("fluentmap/compiler"),
		Validate:    true,
		Pairing:     visit.NoPairing,
		Conventions: conventions.MustNew(),
	}
	a := automap.New(nil)
	c.Automapper = a
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if a == c.Automapper {
		a.Logger = c.Logger
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on error.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
