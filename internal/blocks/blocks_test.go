package blocks

import (
	"testing"

	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

func TestRegisterBuiltinsRegistersEveryCatalogType(t *testing.T) {
	reg := registry.New()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatal(err)
	}
	for _, typ := range []string{
		"Const", "Add", "InfiniteTimeRoot", "Adapter_PhaseToRadians",
		"PayloadAnchorFloat", "Ellipse", "Array", "FieldMap",
	} {
		if _, err := reg.RequireBlockDef(typ); err != nil {
			t.Errorf("expected %q to be registered: %v", typ, err)
		}
	}
}

func TestRegisterBuiltinsRejectsDuplicateRegistration(t *testing.T) {
	reg := registry.New()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatal(err)
	}
	if err := RegisterBuiltins(reg); err == nil {
		t.Error("expected registering the catalog twice into the same registry to fail on the duplicate type")
	}
}

func TestAdapterPhaseToRadiansIsDiscoverableByFindAdapter(t *testing.T) {
	reg := registry.New()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatal(err)
	}
	phase01 := mustCanonical(typesystem.PayloadFloat, unitPtr(typesystem.AngleUnitOf(typesystem.AnglePhase01)), nil, typesystem.ContractWrap01)
	radians := mustCanonical(typesystem.PayloadFloat, unitPtr(typesystem.AngleUnitOf(typesystem.AngleRadians)), nil, typesystem.ContractNone)

	def, ok := reg.FindAdapter(phase01, radians)
	if !ok {
		t.Fatal("expected adapters.v1's registered adapter to be discoverable for phase01 -> radians")
	}
	if def.Type != "Adapter_PhaseToRadians" {
		t.Errorf("expected Adapter_PhaseToRadians to win, got %q", def.Type)
	}
}

func TestConstLowerEmitsAConstantNode(t *testing.T) {
	def := constDef()
	outType := mustCanonical(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	ctx := testCtx(outType)
	res, err := def.Lower(ctx, nil, map[string]any{"value": 3.5})
	if err != nil {
		t.Fatal(err)
	}
	out, ok := res.OutputsByID["out"]
	if !ok {
		t.Fatal("expected an \"out\" output")
	}
	if ctx.B.Exprs()[out.ID].ConstValue != 3.5 {
		t.Errorf("expected the constant 3.5 to have been recorded, got %v", ctx.B.Exprs()[out.ID].ConstValue)
	}
}
