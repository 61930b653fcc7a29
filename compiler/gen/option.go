package gen

import (
	"errors"
	"go/token"

	"github.com/syssam/fluentmap"
)

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by fluentmap. DO NOT EDIT."

// Config configures code generation.
type Config struct {
	// Package is the Go package name of the generated file. It defaults to
	// the package of the project.
	Package string
	// Header is written above the package clause. An empty header is left
	// out.
	Header string
	// Filename is used by WriteTo callers and by the formatter.
	Filename string
}

// Option configures code generation.
type Option func(*Config) error

// WithPackage sets the package name of the generated file.
func WithPackage(name string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(name) {
			return fluentmap.NewConfigError("Package", name, "package name must be a Go identifier")
		}
		c.Package = name
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithFilename sets the name of the generated file.
func WithFilename(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return fluentmap.NewConfigError("Filename", nil, "file name cannot be empty")
		}
		c.Filename = name
		return nil
	}
}

// NewConfig returns the default configuration with opts applied. Every
// option error is reported.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Header: DefaultHeader, Filename: "mappings.go"}
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}
