// Package facts derives, per port, whether its type has resolved to a
// canonical value yet or is still only an inference-world guess.
package facts

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/typesystem"
)

// ResolutionLevel names how far toward a canonical type a port has
// progressed. Obligation dependencies (internal/obligations) gate on
// a specific level being reached before a policy may fire.
type ResolutionLevel string

const (
	PortCanonicalizable ResolutionLevel = "portCanonicalizable"
	PortPayloadResolved ResolutionLevel = "portPayloadResolved"
	PortUnitResolved    ResolutionLevel = "portUnitResolved"
	PortAxisResolved    ResolutionLevel = "portAxisResolved"
)

// FactDependency is one condition an Obligation requires before its
// policy may run: the named port must have reached level.
type FactDependency struct {
	PortKey string
	Level   ResolutionLevel
}

// PortTypeHint is a port's resolution status: either a fully resolved
// canonical type, or the inference type it's still stuck at.
type PortTypeHint struct {
	OK        bool
	Canonical typesystem.CanonicalType
	Inference inference.InferenceCanonicalType
}

// Derive computes base's PortTypeHint after substitution: apply
// whatever subst can resolve, then attempt finalization. A successful
// finalization yields ok(canonical); anything left unresolved yields
// unknown(inference) carrying the partially-substituted type.
func Derive(base inference.InferenceCanonicalType, subst *inference.Substitution) PortTypeHint {
	partial := inference.ApplyPartialSubstitution(base, subst)
	if canonical, err := inference.FinalizeInferenceType(partial, subst); err == nil {
		return PortTypeHint{OK: true, Canonical: canonical}
	}
	return PortTypeHint{OK: false, Inference: partial}
}

// Satisfies reports whether hint has reached dep's required level.
func Satisfies(hint PortTypeHint, dep FactDependency) bool {
	switch dep.Level {
	case PortCanonicalizable:
		return hint.OK
	case PortPayloadResolved:
		return hint.OK || !hint.Inference.Payload.IsVar()
	case PortUnitResolved:
		return hint.OK || !hint.Inference.Unit.IsVar()
	case PortAxisResolved:
		return hint.OK
	default:
		return false
	}
}
