package fluentmap

import (
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/types"
)

// Automapper maps types that have no manual mapping. known lists every type
// of the automapping action, so references and inheritance between them can
// be recognized. A type the automapper declines yields no fragment.
type Automapper interface {
	Map(t *types.Type, known []*types.Type, setup *AutomappingEntitySetup) ([]model.TopMapping, error)
}

// AutomapperFunc adapts a function to an Automapper.
type AutomapperFunc func(t *types.Type, known []*types.Type, setup *AutomappingEntitySetup) ([]model.TopMapping, error)

// Map implements Automapper.
func (f AutomapperFunc) Map(t *types.Type, known []*types.Type, setup *AutomappingEntitySetup) ([]model.TopMapping, error) {
	return f(t, known, setup)
}
