package fluentmap

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	// ErrUnrecognizedAction is returned when a provider yields an action the
	// compiler cannot dispatch.
	ErrUnrecognizedAction = errors.New("fluentmap: unrecognized action")

	// ErrMissingComponent is returned when a component reference has no
	// external declaration.
	ErrMissingComponent = errors.New("fluentmap: missing external component")

	// ErrAmbiguousComponent is returned when a component reference matches
	// more than one external declaration.
	ErrAmbiguousComponent = errors.New("fluentmap: ambiguous component reference")

	// ErrComponentCycle is returned when external components reference each
	// other.
	ErrComponentCycle = errors.New("fluentmap: component reference cycle")

	// ErrValidation is returned when the assembled model violates a
	// structural rule.
	ErrValidation = errors.New("fluentmap: validation failed")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("fluentmap: invalid configuration")

	// ErrDuplicateMapping is returned when an entity is registered twice with
	// an engine configuration.
	ErrDuplicateMapping = errors.New("fluentmap: duplicate mapping")
)

// UnrecognizedActionError reports an action kind the compiler cannot handle.
type UnrecognizedActionError struct {
	Action string
}

// Error implements the error interface.
func (e *UnrecognizedActionError) Error() string {
	return fmt.Sprintf("fluentmap: unrecognized action %s", e.Action)
}

// Is reports whether target is ErrUnrecognizedAction.
func (e *UnrecognizedActionError) Is(target error) bool {
	return target == ErrUnrecognizedAction
}

// NewUnrecognizedActionError returns an UnrecognizedActionError for action.
func NewUnrecognizedActionError(action any) *UnrecognizedActionError {
	return &UnrecognizedActionError{Action: fmt.Sprintf("%T", action)}
}

// MissingExternalComponentError reports a component reference with no
// matching declaration.
type MissingExternalComponentError struct {
	Type   string // Component type
	Entity string // Entity holding the reference
	Member string // Referencing member
}

// Error implements the error interface.
func (e *MissingExternalComponentError) Error() string {
	return fmt.Sprintf("fluentmap: no external component declared for %s referenced by %s.%s", e.Type, e.Entity, e.Member)
}

// Is reports whether target is ErrMissingComponent.
func (e *MissingExternalComponentError) Is(target error) bool {
	return target == ErrMissingComponent
}

// NewMissingExternalComponentError returns a MissingExternalComponentError.
func NewMissingExternalComponentError(typ, entity, member string) *MissingExternalComponentError {
	return &MissingExternalComponentError{Type: typ, Entity: entity, Member: member}
}

// IsMissingComponent reports whether err is a MissingExternalComponentError.
func IsMissingComponent(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingExternalComponentError
	return errors.As(err, &e) || errors.Is(err, ErrMissingComponent)
}

// AmbiguousComponentReferenceError reports a component reference matched by
// several declarations.
type AmbiguousComponentReferenceError struct {
	Type    string
	Entity  string
	Member  string
	Matches int
}

// Error implements the error interface.
func (e *AmbiguousComponentReferenceError) Error() string {
	return fmt.Sprintf("fluentmap: %d external components declared for %s referenced by %s.%s", e.Matches, e.Type, e.Entity, e.Member)
}

// Is reports whether target is ErrAmbiguousComponent.
func (e *AmbiguousComponentReferenceError) Is(target error) bool {
	return target == ErrAmbiguousComponent
}

// NewAmbiguousComponentReferenceError returns an AmbiguousComponentReferenceError.
func NewAmbiguousComponentReferenceError(typ, entity, member string, matches int) *AmbiguousComponentReferenceError {
	return &AmbiguousComponentReferenceError{Type: typ, Entity: entity, Member: member, Matches: matches}
}

// IsAmbiguousComponent reports whether err is an AmbiguousComponentReferenceError.
func IsAmbiguousComponent(err error) bool {
	if err == nil {
		return false
	}
	var e *AmbiguousComponentReferenceError
	return errors.As(err, &e) || errors.Is(err, ErrAmbiguousComponent)
}

// ComponentCycleError reports external components that reference each other.
type ComponentCycleError struct {
	Path []string // Component types, first repeated at the end
}

// Error implements the error interface.
func (e *ComponentCycleError) Error() string {
	return "fluentmap: component reference cycle: " + strings.Join(e.Path, " -> ")
}

// Is reports whether target is ErrComponentCycle.
func (e *ComponentCycleError) Is(target error) bool {
	return target == ErrComponentCycle
}

// NewComponentCycleError returns a ComponentCycleError for path.
func NewComponentCycleError(path ...string) *ComponentCycleError {
	return &ComponentCycleError{Path: path}
}

// IsComponentCycle reports whether err is a ComponentCycleError.
func IsComponentCycle(err error) bool {
	if err == nil {
		return false
	}
	var e *ComponentCycleError
	return errors.As(err, &e) || errors.Is(err, ErrComponentCycle)
}

// ValidationError reports a structural rule violated by the mapping model.
type ValidationError struct {
	Entity  string // Entity type
	Member  string // Member, if applicable
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("fluentmap: validation failed for ")
	b.WriteString(e.Entity)
	if e.Member != "" {
		b.WriteString(".")
		b.WriteString(e.Member)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError returns a ValidationError.
func NewValidationError(entity, member, message string) *ValidationError {
	return &ValidationError{Entity: entity, Member: member, Message: message}
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("fluentmap: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("fluentmap: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError returns a ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e) || errors.Is(err, ErrConfig)
}

// DuplicateMappingError reports an entity mapped more than once.
type DuplicateMappingError struct {
	Entity string
}

// Error implements the error interface.
func (e *DuplicateMappingError) Error() string {
	return fmt.Sprintf("fluentmap: %s is already mapped", e.Entity)
}

// Is reports whether target is ErrDuplicateMapping.
func (e *DuplicateMappingError) Is(target error) bool {
	return target == ErrDuplicateMapping
}

// NewDuplicateMappingError returns a DuplicateMappingError.
func NewDuplicateMappingError(entity string) *DuplicateMappingError {
	return &DuplicateMappingError{Entity: entity}
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "fluentmap: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("fluentmap: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns an AggregateError if there are several errors,
// the error itself if there is one, and nil otherwise.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
