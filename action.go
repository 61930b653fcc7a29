package fluentmap

import (
	"errors"
	"fmt"

	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Provider is implemented by every mapping declaration: class maps,
// subclass maps, component maps, filter definitions, imports and automapping
// overrides.
type Provider interface {
	Action() Action
}

// Action describes how a provider contributes to a compilation. The
// compiler understands ManualAction and AutomapAction; PartialAutomapAction
// values are composed into the AutomapAction before compilation. Any other
// implementation is rejected with an UnrecognizedActionError.
type Action interface {
	fmt.Stringer
}

// ManualAction wraps a fully built top-level fragment.
type ManualAction struct {
	Mapping model.TopMapping
}

// String implements Action.
func (a *ManualAction) String() string {
	return fmt.Sprintf("manual(%T)", a.Mapping)
}

// AutomapAction maps a set of types through the automapper.
type AutomapAction struct {
	Types  []*types.Type
	setups map[*types.Type]*AutomappingEntitySetup
}

// NewAutomapAction returns an action mapping ts.
func NewAutomapAction(ts ...*types.Type) *AutomapAction {
	return &AutomapAction{Types: ts, setups: make(map[*types.Type]*AutomappingEntitySetup)}
}

// String implements Action.
func (a *AutomapAction) String() string {
	return fmt.Sprintf("automap(%d types)", len(a.Types))
}

// Compose folds a partial action into a. Setups for the same type are
// concatenated in composition order.
func (a *AutomapAction) Compose(p *PartialAutomapAction) {
	if a.setups == nil {
		a.setups = make(map[*types.Type]*AutomappingEntitySetup)
	}
	s, ok := a.setups[p.Type]
	if !ok {
		s = &AutomappingEntitySetup{}
		a.setups[p.Type] = s
	}
	s.Exclusions = append(s.Exclusions, p.Setup.Exclusions...)
	s.Alterations = append(s.Alterations, p.Setup.Alterations...)
	s.SubclassAlterations = append(s.SubclassAlterations, p.Setup.SubclassAlterations...)
}

// Setup returns the composed setup for t. The zero setup is returned for
// types without overrides.
func (a *AutomapAction) Setup(t *types.Type) *AutomappingEntitySetup {
	if s, ok := a.setups[t]; ok {
		return s
	}
	return &AutomappingEntitySetup{}
}

// PartialAutomapAction scopes automapping overrides to a single type.
type PartialAutomapAction struct {
	Type  *types.Type
	Setup AutomappingEntitySetup
}

// String implements Action.
func (a *PartialAutomapAction) String() string {
	return "partial-automap(" + a.Type.String() + ")"
}

// AutomappingEntitySetup holds overrides for one automapped entity.
type AutomappingEntitySetup struct {
	// Exclusions reject members before the automapper sees them.
	Exclusions []func(*types.Member) bool
	// Alterations run against the entity's class mapping before members
	// are automapped. Members they map are skipped by the automapper.
	Alterations []func(*model.ClassMapping)
	// SubclassAlterations run instead when the entity is automapped as a
	// subclass. An error rejects the override.
	SubclassAlterations []func(*model.SubclassMapping) error
}

// Excludes reports whether m is rejected by any exclusion.
func (s *AutomappingEntitySetup) Excludes(m *types.Member) bool {
	for _, ex := range s.Exclusions {
		if ex(m) {
			return true
		}
	}
	return false
}

// Apply runs the alterations against c in order.
func (s *AutomappingEntitySetup) Apply(c *model.ClassMapping) {
	for _, alter := range s.Alterations {
		alter(c)
	}
}

// ApplySubclass runs the subclass alterations against m in order and joins
// their errors.
func (s *AutomappingEntitySetup) ApplySubclass(m *model.SubclassMapping) error {
	var errs []error
	for _, alter := range s.SubclassAlterations {
		if err := alter(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func() Action

// Action implements Provider.
func (f ProviderFunc) Action() Action { return f() }

// Manual returns a provider yielding a ManualAction for m.
func Manual(m model.TopMapping) Provider {
	return ProviderFunc(func() Action { return &ManualAction{Mapping: m} })
}
