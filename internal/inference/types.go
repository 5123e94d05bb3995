package inference

import (
	"fmt"

	"github.com/flowgraph/core/internal/typesystem"
)

// PayloadRef is either a concrete payload or a variable awaiting
// resolution by the solver.
type PayloadRef struct {
	Var     VarID
	Concrete typesystem.PayloadType
}

func ConcretePayload(p typesystem.PayloadType) PayloadRef { return PayloadRef{Concrete: p} }
func VarPayload(v VarID) PayloadRef                       { return PayloadRef{Var: v} }
func (r PayloadRef) IsVar() bool                          { return r.Var != 0 }

// UnitRef is either a concrete unit or a variable awaiting resolution.
type UnitRef struct {
	Var      VarID
	Concrete typesystem.UnitType
}

func ConcreteUnit(u typesystem.UnitType) UnitRef { return UnitRef{Concrete: u} }
func VarUnit(v VarID) UnitRef                    { return UnitRef{Var: v} }
func (r UnitRef) IsVar() bool                    { return r.Var != 0 }

// InferenceCanonicalType is a CanonicalType whose payload and/or unit may
// still be variables. It never appears outside block definitions and the
// solver; lowering only ever sees CanonicalType.
type InferenceCanonicalType struct {
	Payload  PayloadRef
	Unit     UnitRef
	Extent   typesystem.Extent
	Contract typesystem.ValueContract
}

// Concrete builds an already-fully-resolved InferenceCanonicalType from a
// CanonicalType, useful when a port's declared type has no polymorphism.
func Concrete(t typesystem.CanonicalType) InferenceCanonicalType {
	return InferenceCanonicalType{
		Payload:  ConcretePayload(t.Payload),
		Unit:     ConcreteUnit(t.Unit),
		Extent:   t.Extent,
		Contract: t.Contract,
	}
}

// Substitution maps payload and unit variables to their resolved concrete
// types. The two maps are independent numbering spaces.
type Substitution struct {
	Payloads map[VarID]typesystem.PayloadType
	Units    map[VarID]typesystem.UnitType
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{
		Payloads: make(map[VarID]typesystem.PayloadType),
		Units:    make(map[VarID]typesystem.UnitType),
	}
}

// UnresolvedPayloadError / UnresolvedUnitError are the error kinds raised
// by FinalizeInferenceType when a variable survives substitution.
type UnresolvedPayloadError struct{ Var VarID }

func (e *UnresolvedPayloadError) Error() string {
	return fmt.Sprintf("inference: unresolved payload variable %d", e.Var)
}

type UnresolvedUnitError struct{ Var VarID }

func (e *UnresolvedUnitError) Error() string {
	return fmt.Sprintf("inference: unresolved unit variable %d", e.Var)
}

// resolvePayload substitutes r if it is a variable, leaving concretes
// untouched. ok is false only when r is a variable absent from subst.
func resolvePayload(r PayloadRef, subst *Substitution) (typesystem.PayloadType, bool) {
	if !r.IsVar() {
		return r.Concrete, true
	}
	p, ok := subst.Payloads[r.Var]
	return p, ok
}

func resolveUnit(r UnitRef, subst *Substitution) (typesystem.UnitType, bool) {
	if !r.IsVar() {
		return r.Concrete, true
	}
	u, ok := subst.Units[r.Var]
	return u, ok
}

// FinalizeInferenceType substitutes every variable in t and returns the
// resulting CanonicalType. It is the single border between inference-
// world and canonical-world. It fails with UnresolvedPayloadError or
// UnresolvedUnitError if a variable has no entry in subst, and with the
// usual typesystem construction error if the resolved (payload, unit)
// pairing is invalid.
//
// When t is already fully concrete (no variables at all), finalization is
// a pure pass-through and is bit-identical to t reinterpreted as a
// CanonicalType.
func FinalizeInferenceType(t InferenceCanonicalType, subst *Substitution) (typesystem.CanonicalType, error) {
	payload, ok := resolvePayload(t.Payload, subst)
	if !ok {
		return typesystem.CanonicalType{}, &UnresolvedPayloadError{Var: t.Payload.Var}
	}
	unit, ok := resolveUnit(t.Unit, subst)
	if !ok {
		return typesystem.CanonicalType{}, &UnresolvedUnitError{Var: t.Unit.Var}
	}
	if !typesystem.IsValidPayloadUnit(payload, unit) {
		return typesystem.CanonicalType{}, fmt.Errorf("inference: finalized (payload=%s, unit=%s) pairing invalid", payload, unit.Kind)
	}
	return typesystem.CanonicalType{
		Payload:  payload,
		Unit:     unit,
		Extent:   t.Extent,
		Contract: t.Contract,
	}, nil
}

// ApplyPartialSubstitution substitutes whatever subst can resolve and
// leaves the rest as variables, never failing.
func ApplyPartialSubstitution(t InferenceCanonicalType, subst *Substitution) InferenceCanonicalType {
	out := t
	if t.Payload.IsVar() {
		if p, ok := subst.Payloads[t.Payload.Var]; ok {
			out.Payload = ConcretePayload(p)
		}
	}
	if t.Unit.IsVar() {
		if u, ok := subst.Units[t.Unit.Var]; ok {
			out.Unit = ConcreteUnit(u)
		}
	}
	return out
}

// IsInferenceCanonicalizable reports whether FinalizeInferenceType(t,
// subst) would succeed, without constructing the result.
func IsInferenceCanonicalizable(t InferenceCanonicalType, subst *Substitution) bool {
	payload, ok := resolvePayload(t.Payload, subst)
	if !ok {
		return false
	}
	unit, ok := resolveUnit(t.Unit, subst)
	if !ok {
		return false
	}
	return typesystem.IsValidPayloadUnit(payload, unit)
}
