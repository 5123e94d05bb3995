package typesystem

import "fmt"

// InstanceRef identifies which field/perspective/branch instance a value
// belongs to: a domain type plus a specific instance within that domain.
type InstanceRef struct {
	DomainTypeID string
	InstanceID   string
}

// Cardinality is the closed set of values the cardinality axis can take.
type Cardinality string

const (
	CardinalityZero Cardinality = "zero"
	CardinalityOne  Cardinality = "one"
	CardinalityMany Cardinality = "many"
)

// Temporality is the closed set of values the temporality axis can take.
type Temporality string

const (
	TemporalityContinuous Temporality = "continuous"
	TemporalityDiscrete   Temporality = "discrete"
)

// Binding is the closed set of values the binding axis can take.
type Binding string

const (
	BindingUnbound  Binding = "unbound"
	BindingWeak     Binding = "weak"
	BindingStrong   Binding = "strong"
	BindingIdentity Binding = "identity"
)

// PerspectiveKind and BranchKind share the same "default or a specific
// instance" shape.
type PerspectiveKind string

const (
	PerspectiveDefault  PerspectiveKind = "default"
	PerspectiveSpecific PerspectiveKind = "specific"
)

type BranchKind string

const (
	BranchDefault  BranchKind = "default"
	BranchSpecific BranchKind = "specific"
)

// noVar is the Var value of an instantiated extent axis. Each of the
// five axes is either instantiated (Var == noVar, value fields
// meaningful) or a variable awaiting resolution (Var != noVar).
const noVar = 0

// CardinalityAxis is either an instantiated Cardinality (with its
// instance ref when Value == CardinalityMany) or an unresolved variable.
type CardinalityAxis struct {
	Var      int
	Value    Cardinality
	Instance InstanceRef
}

func InstantiatedCardinality(c Cardinality, inst InstanceRef) CardinalityAxis {
	return CardinalityAxis{Value: c, Instance: inst}
}

func VarCardinality(v int) CardinalityAxis { return CardinalityAxis{Var: v} }

func (a CardinalityAxis) IsVar() bool { return a.Var != noVar }

// TemporalityAxis is either instantiated or a variable.
type TemporalityAxis struct {
	Var   int
	Value Temporality
}

func InstantiatedTemporality(t Temporality) TemporalityAxis { return TemporalityAxis{Value: t} }
func VarTemporality(v int) TemporalityAxis                  { return TemporalityAxis{Var: v} }
func (a TemporalityAxis) IsVar() bool                        { return a.Var != noVar }

// BindingAxis is either instantiated or a variable.
type BindingAxis struct {
	Var   int
	Value Binding
}

func InstantiatedBinding(b Binding) BindingAxis { return BindingAxis{Value: b} }
func VarBinding(v int) BindingAxis              { return BindingAxis{Var: v} }
func (a BindingAxis) IsVar() bool               { return a.Var != noVar }

// PerspectiveAxis is either instantiated or a variable.
type PerspectiveAxis struct {
	Var      int
	Value    PerspectiveKind
	Instance InstanceRef
}

func InstantiatedPerspective(p PerspectiveKind, inst InstanceRef) PerspectiveAxis {
	return PerspectiveAxis{Value: p, Instance: inst}
}
func VarPerspective(v int) PerspectiveAxis { return PerspectiveAxis{Var: v} }
func (a PerspectiveAxis) IsVar() bool      { return a.Var != noVar }

// BranchAxis is either instantiated or a variable.
type BranchAxis struct {
	Var      int
	Value    BranchKind
	Instance InstanceRef
}

func InstantiatedBranch(b BranchKind, inst InstanceRef) BranchAxis {
	return BranchAxis{Value: b, Instance: inst}
}
func VarBranch(v int) BranchAxis { return BranchAxis{Var: v} }
func (a BranchAxis) IsVar() bool { return a.Var != noVar }

// Extent is the five-axis "where/when/who/which" of a value.
type Extent struct {
	Cardinality CardinalityAxis
	Temporality TemporalityAxis
	Binding     BindingAxis
	Perspective PerspectiveAxis
	Branch      BranchAxis
}

// DefaultExtent is (one, continuous, unbound, default, default) — the
// extent assigned when a CanonicalType is built without an override.
func DefaultExtent() Extent {
	return Extent{
		Cardinality: InstantiatedCardinality(CardinalityOne, InstanceRef{}),
		Temporality: InstantiatedTemporality(TemporalityContinuous),
		Binding:     InstantiatedBinding(BindingUnbound),
		Perspective: InstantiatedPerspective(PerspectiveDefault, InstanceRef{}),
		Branch:      InstantiatedBranch(BranchDefault, InstanceRef{}),
	}
}

// RequireInstCardinality fails when the axis is still a variable,
// rather than an instantiated value.
func RequireInstCardinality(a CardinalityAxis) (Cardinality, error) {
	if a.IsVar() {
		return "", fmt.Errorf("typesystem: requireInst(cardinality): axis is a variable (var=%d)", a.Var)
	}
	return a.Value, nil
}

func RequireInstTemporality(a TemporalityAxis) (Temporality, error) {
	if a.IsVar() {
		return "", fmt.Errorf("typesystem: requireInst(temporality): axis is a variable (var=%d)", a.Var)
	}
	return a.Value, nil
}

func RequireInstBinding(a BindingAxis) (Binding, error) {
	if a.IsVar() {
		return "", fmt.Errorf("typesystem: requireInst(binding): axis is a variable (var=%d)", a.Var)
	}
	return a.Value, nil
}

// IsSignal reports whether the extent describes a signal: cardinality
// one, continuous temporality.
func (e Extent) IsSignal() bool {
	return !e.Cardinality.IsVar() && e.Cardinality.Value == CardinalityOne &&
		!e.Temporality.IsVar() && e.Temporality.Value == TemporalityContinuous
}

// IsField reports whether the extent describes a field: cardinality
// many, continuous temporality.
func (e Extent) IsField() bool {
	return !e.Cardinality.IsVar() && e.Cardinality.Value == CardinalityMany &&
		!e.Temporality.IsVar() && e.Temporality.Value == TemporalityContinuous
}

// IsEvent reports whether the extent describes an event: discrete
// temporality, any cardinality.
func (e Extent) IsEvent() bool {
	return !e.Temporality.IsVar() && e.Temporality.Value == TemporalityDiscrete
}

// extentFullyInstantiated reports whether every axis of e is instantiated.
func extentFullyInstantiated(e Extent) bool {
	return !e.Cardinality.IsVar() && !e.Temporality.IsVar() && !e.Binding.IsVar() &&
		!e.Perspective.IsVar() && !e.Branch.IsVar()
}

// extentsEqual is deep structural equality; both extents must be fully
// instantiated or this rejects (mirrors CanonicalType's "never contains
// variables" invariant).
func extentsEqual(a, b Extent) bool {
	if a.Cardinality.IsVar() || b.Cardinality.IsVar() ||
		a.Temporality.IsVar() || b.Temporality.IsVar() ||
		a.Binding.IsVar() || b.Binding.IsVar() ||
		a.Perspective.IsVar() || b.Perspective.IsVar() ||
		a.Branch.IsVar() || b.Branch.IsVar() {
		return false
	}
	if a.Cardinality.Value != b.Cardinality.Value || a.Cardinality.Instance != b.Cardinality.Instance {
		return false
	}
	if a.Temporality.Value != b.Temporality.Value {
		return false
	}
	if a.Binding.Value != b.Binding.Value {
		return false
	}
	if a.Perspective.Value != b.Perspective.Value || a.Perspective.Instance != b.Perspective.Instance {
		return false
	}
	if a.Branch.Value != b.Branch.Value || a.Branch.Instance != b.Branch.Instance {
		return false
	}
	return true
}
