package gen

import (
	"errors"
	"strings"
)

// ErrGenerationFailed is matched by every GenerationError.
var ErrGenerationFailed = errors.New("gen: code generation failed")

// GenerationError reports a failure while emitting or writing a file.
type GenerationError struct {
	File  string
	Stage string // "render", "format" or "write"
	Cause error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("gen: ")
	b.WriteString(e.Stage)
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// IsGenerationError reports whether err is or wraps a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
