package registry

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/typesystem"
)

// Capability is the closed set of block capability kinds.
type Capability string

const (
	CapabilityPure     Capability = "pure"
	CapabilityState    Capability = "state"
	CapabilityTime     Capability = "time"
	CapabilityIdentity Capability = "identity"
)

// LoweringPurity discriminates whether a block's lower procedure may
// request stateful effects.
type LoweringPurity string

const (
	LoweringPure     LoweringPurity = "pure"
	LoweringStateful LoweringPurity = "stateful"
)

// CombineMode selects how a multi-edge input port reduces its
// incoming values into one.
type CombineMode string

const (
	CombineLast CombineMode = "last"
	CombineFirst CombineMode = "first"
	CombineSum  CombineMode = "sum"
	CombineMult CombineMode = "mult"
)

// CardinalityMode is the block-level policy for how a block's
// cardinality-preserving ports relate to each other.
type CardinalityMode string

const (
	CardinalityModePreserve   CardinalityMode = "preserve"
	CardinalityModeTransform  CardinalityMode = "transform"
	CardinalityModeSignalOnly CardinalityMode = "signalOnly"
)

// CardinalityPolicy is a block definition's declared cardinality
// behavior.
type CardinalityPolicy struct {
	Mode             CardinalityMode
	LaneCoupling     string
	BroadcastPolicy  string
}

// DefaultSource describes what to synthesize for an unconnected input
// port: either a literal constant or a reference to another block's
// output (e.g. a time root's phase channel).
type DefaultSource struct {
	Kind          string // "const" | "blockOutputRef"
	ConstValue    any
	RefBlockType  string
	RefOutputPort string
}

// CollectSpec marks a port as a variable-arity aggregator (e.g. "sum
// every incoming edge instead of just combining the declared ports").
type CollectSpec struct {
	Enabled bool
	Combine CombineMode
}

// PortDef is shared shape between input and output port declarations.
type PortDef struct {
	Type           inference.InferenceCanonicalType
	ExposedAsPort  bool
	UIHint         string
}

// InputDef is an input port's declaration.
type InputDef struct {
	PortDef
	DefaultSource *DefaultSource
	Combine       CombineMode
	Collect       *CollectSpec
}

// OutputDef is an output port's declaration.
type OutputDef struct {
	PortDef
}

// AdapterSpec declares a block as a total converter from one
// canonical-type shape to another, for use by the obligations
// adapter-insertion policy.
type AdapterSpec struct {
	FromPayload PayloadMatch
	FromUnit    UnitMatch
	ToUnit      UnitMatch
	ToContract  typesystem.ValueContract
	Priority    int
}

// PayloadMatch selects how an adapter's declared source payload
// matches a concrete candidate: "any" accepts every payload, "same"
// requires equality with the edge's existing payload, a concrete
// PayloadType requires exactly that payload.
type PayloadMatch struct {
	Any     bool
	Same    bool
	Payload typesystem.PayloadType
}

// UnitMatch is the unit-domain analog of PayloadMatch.
type UnitMatch struct {
	Any  bool
	Same bool
	Unit typesystem.UnitType
}

func matchesPayload(m PayloadMatch, candidate, reference typesystem.PayloadType) bool {
	switch {
	case m.Any:
		return true
	case m.Same:
		return candidate == reference
	default:
		return candidate == m.Payload
	}
}

func matchesUnit(m UnitMatch, candidate, reference typesystem.UnitType) bool {
	switch {
	case m.Any:
		return true
	case m.Same:
		return typesystem.UnitsEqual(candidate, reference)
	default:
		return typesystem.UnitsEqual(candidate, m.Unit)
	}
}

// Matches reports whether this adapter spec can convert fromType to
// toType: source payload/unit compatibility, then destination
// unit-and-contract compatibility.
func (spec *AdapterSpec) Matches(fromType, toType typesystem.CanonicalType) bool {
	if !matchesPayload(spec.FromPayload, fromType.Payload, fromType.Payload) {
		return false
	}
	if !matchesUnit(spec.FromUnit, fromType.Unit, fromType.Unit) {
		return false
	}
	if !matchesUnit(spec.ToUnit, toType.Unit, toType.Unit) {
		return false
	}
	if spec.ToContract != typesystem.ContractNone && spec.ToContract != toType.Contract {
		return false
	}
	return true
}

// PayloadMetadata enumerates the payload combinations a block actually
// supports, narrower than what the bare inference type alone permits.
type PayloadMetadata struct {
	AllowedPayloads map[string][]typesystem.PayloadType // portId -> allowed payloads
	RequireUnitless map[string]bool                      // portId -> must resolve to unit "none"
}

// BlockDefinition is the immutable, declarative description a block
// type registers into the Registry.
type BlockDefinition struct {
	Type           string
	Category       string
	Capability     Capability
	LoweringPurity LoweringPurity

	Inputs  map[string]InputDef
	Outputs map[string]OutputDef

	AdapterSpec     *AdapterSpec
	PayloadMetadata *PayloadMetadata
	Cardinality     CardinalityPolicy

	Lower ir.LowerFunc
}
