package automap

import (
	"github.com/syssam/fluentmap/types"
)

// Configuration decides which types and members the automapper maps.
// Embed DefaultConfiguration and override the methods that differ.
type Configuration interface {
	// ShouldMap reports whether t is an entity candidate.
	ShouldMap(t *types.Type) bool
	// ShouldMapMember reports whether m is mapped at all.
	ShouldMapMember(m *types.Member) bool
	// IsId reports whether m is the identifier.
	IsId(m *types.Member) bool
	// IsVersion reports whether m is the optimistic lock version.
	IsVersion(m *types.Member) bool
	// IsComponent reports whether t is mapped inline as a component.
	IsComponent(t *types.Type) bool
	// AbstractClassIsLayerSupertype reports whether an abstract t only
	// contributes members to its subtypes instead of being mapped.
	AbstractClassIsLayerSupertype(t *types.Type) bool
	// IsConcreteBaseType reports whether subtypes of t are mapped as
	// standalone classes rather than subclasses of t.
	IsConcreteBaseType(t *types.Type) bool
	// IsDiscriminated reports whether the hierarchy rooted at t is stored
	// in one table.
	IsDiscriminated(t *types.Type) bool
	// DiscriminatorColumn names the discriminator of a discriminated root.
	DiscriminatorColumn(t *types.Type) string
	// GetComponentColumnPrefix returns the column prefix of a component
	// member.
	GetComponentColumnPrefix(m *types.Member) string
}

// DefaultConfiguration maps every struct type. Members named "Id" are
// identifiers and integer members named "Version" are versions. Abstract
// types are layer supertypes and hierarchies map as joined subclasses.
type DefaultConfiguration struct{}

var _ Configuration = DefaultConfiguration{}

// ShouldMap implements Configuration.
func (DefaultConfiguration) ShouldMap(t *types.Type) bool {
	return t != nil && t.Kind == types.KindStruct && !t.IsObject()
}

// ShouldMapMember implements Configuration.
func (DefaultConfiguration) ShouldMapMember(m *types.Member) bool {
	return m.Name != "" && m.Name[0] >= 'A' && m.Name[0] <= 'Z'
}

// IsId implements Configuration.
func (DefaultConfiguration) IsId(m *types.Member) bool { return m.Name == "Id" }

// IsVersion implements Configuration.
func (DefaultConfiguration) IsVersion(m *types.Member) bool {
	return m.Name == "Version" && isInteger(m.Type)
}

// IsComponent implements Configuration.
func (DefaultConfiguration) IsComponent(*types.Type) bool { return false }

// AbstractClassIsLayerSupertype implements Configuration.
func (DefaultConfiguration) AbstractClassIsLayerSupertype(*types.Type) bool { return true }

// IsConcreteBaseType implements Configuration.
func (DefaultConfiguration) IsConcreteBaseType(*types.Type) bool { return false }

// IsDiscriminated implements Configuration.
func (DefaultConfiguration) IsDiscriminated(*types.Type) bool { return false }

// DiscriminatorColumn implements Configuration.
func (DefaultConfiguration) DiscriminatorColumn(*types.Type) string { return "discriminator" }

// GetComponentColumnPrefix implements Configuration.
func (DefaultConfiguration) GetComponentColumnPrefix(*types.Member) string { return "" }

func isInteger(t *types.Type) bool {
	return t.Is(types.Int) || t.Is(types.Int32) || t.Is(types.Int64)
}
