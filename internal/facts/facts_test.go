package facts

import (
	"testing"

	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/typesystem"
)

func TestDeriveOKWhenFullySubstituted(t *testing.T) {
	ct, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	hint := Derive(inference.Concrete(ct), inference.NewSubstitution())
	if !hint.OK {
		t.Fatal("expected a concrete type to resolve ok")
	}
	if !typesystem.TypesEqual(hint.Canonical, ct) {
		t.Error("expected the resolved canonical type to match the input")
	}
}

func TestDeriveUnknownWhenVariableUnresolved(t *testing.T) {
	minter := inference.NewMinter()
	v := minter.Fresh()
	base := inference.InferenceCanonicalType{
		Payload: inference.VarPayload(v),
		Unit:    inference.ConcreteUnit(typesystem.NoneUnit()),
		Extent:  typesystem.DefaultExtent(),
	}
	hint := Derive(base, inference.NewSubstitution())
	if hint.OK {
		t.Fatal("expected an unresolved variable to stay unknown")
	}
}

func TestSatisfiesPortPayloadResolved(t *testing.T) {
	minter := inference.NewMinter()
	pv := minter.Fresh()
	uv := minter.Fresh()
	base := inference.InferenceCanonicalType{
		Payload: inference.VarPayload(pv),
		Unit:    inference.VarUnit(uv),
		Extent:  typesystem.DefaultExtent(),
	}
	subst := inference.NewSubstitution()
	subst.Payloads[pv] = typesystem.PayloadFloat
	hint := Derive(base, subst)
	if hint.OK {
		t.Fatal("expected overall hint to remain unknown while the unit variable is unresolved")
	}
	if !Satisfies(hint, FactDependency{Level: PortPayloadResolved}) {
		t.Error("expected payload-resolved dependency to be satisfied once the payload variable is bound")
	}
	if Satisfies(hint, FactDependency{Level: PortUnitResolved}) {
		t.Error("expected unit-resolved dependency to remain unsatisfied")
	}
}
