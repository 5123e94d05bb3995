package inference

import (
	"testing"

	"github.com/flowgraph/core/internal/typesystem"
)

func TestFinalizeInferenceTypeIdempotentOnConcrete(t *testing.T) {
	ct, err := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	if err != nil {
		t.Fatal(err)
	}
	it := Concrete(ct)
	subst := NewSubstitution()
	out, err := FinalizeInferenceType(it, subst)
	if err != nil {
		t.Fatal(err)
	}
	if !typesystem.TypesEqual(ct, out) {
		t.Error("expected finalizing an already-concrete type to be a no-op")
	}
}

func TestFinalizeInferenceTypeFailsOnUnresolvedVar(t *testing.T) {
	minter := NewMinter()
	v := minter.Fresh()
	it := InferenceCanonicalType{
		Payload: VarPayload(v),
		Unit:    ConcreteUnit(typesystem.NoneUnit()),
		Extent:  typesystem.DefaultExtent(),
	}
	_, err := FinalizeInferenceType(it, NewSubstitution())
	if err == nil {
		t.Fatal("expected error finalizing an unresolved payload variable")
	}
	var target *UnresolvedPayloadError
	if !asUnresolvedPayload(err, &target) {
		t.Errorf("expected UnresolvedPayloadError, got %T: %v", err, err)
	}
}

func asUnresolvedPayload(err error, target **UnresolvedPayloadError) bool {
	if e, ok := err.(*UnresolvedPayloadError); ok {
		*target = e
		return true
	}
	return false
}

func TestApplyPartialSubstitutionLeavesUnknownVars(t *testing.T) {
	minter := NewMinter()
	pv := minter.Fresh()
	uv := minter.Fresh()
	it := InferenceCanonicalType{
		Payload: VarPayload(pv),
		Unit:    VarUnit(uv),
		Extent:  typesystem.DefaultExtent(),
	}
	subst := NewSubstitution()
	subst.Payloads[pv] = typesystem.PayloadFloat
	out := ApplyPartialSubstitution(it, subst)
	if out.Payload.IsVar() {
		t.Error("expected payload to be resolved")
	}
	if !out.Unit.IsVar() {
		t.Error("expected unit to remain a variable")
	}
}

func TestIsInferenceCanonicalizable(t *testing.T) {
	minter := NewMinter()
	v := minter.Fresh()
	it := InferenceCanonicalType{
		Payload: VarPayload(v),
		Unit:    ConcreteUnit(typesystem.NoneUnit()),
		Extent:  typesystem.DefaultExtent(),
	}
	subst := NewSubstitution()
	if IsInferenceCanonicalizable(it, subst) {
		t.Error("expected not canonicalizable before resolution")
	}
	subst.Payloads[v] = typesystem.PayloadFloat
	if !IsInferenceCanonicalizable(it, subst) {
		t.Error("expected canonicalizable after resolution")
	}
}

func TestAlphaRenameAndVarTableStability(t *testing.T) {
	name := AlphaRename("blockA", "clamp_U")
	table := NewVarTable(NewMinter())
	first := table.Resolve(name)
	second := table.Resolve(name)
	if first != second {
		t.Error("expected the same alpha-renamed name to resolve to the same VarID")
	}
	otherBlockName := AlphaRename("blockB", "clamp_U")
	other := table.Resolve(otherBlockName)
	if other == first {
		t.Error("expected different block instances to get distinct variable ids for the same var name")
	}
}
