package registry

import (
	"testing"

	"github.com/flowgraph/core/internal/typesystem"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	def := BlockDefinition{Type: "const", Category: "source", Capability: CapabilityPure}
	if err := r.Register(def); err != nil {
		t.Fatal(err)
	}
	got, ok := r.Get("const")
	if !ok || got.Type != "const" {
		t.Fatalf("expected to find registered block, got %+v, %v", got, ok)
	}
}

func TestRegisterRejectsDuplicateType(t *testing.T) {
	r := New()
	def := BlockDefinition{Type: "const"}
	if err := r.Register(def); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(def); err == nil {
		t.Error("expected an error registering a duplicate block type")
	}
}

func TestFindAdapterPrioritizesLowerPriorityThenLexicographic(t *testing.T) {
	r := New()
	low := BlockDefinition{
		Type: "zAdapter",
		AdapterSpec: &AdapterSpec{
			FromPayload: PayloadMatch{Any: true},
			FromUnit:    UnitMatch{Any: true},
			ToUnit:      UnitMatch{Any: true},
			Priority:    1,
		},
	}
	high := BlockDefinition{
		Type: "aAdapter",
		AdapterSpec: &AdapterSpec{
			FromPayload: PayloadMatch{Any: true},
			FromUnit:    UnitMatch{Any: true},
			ToUnit:      UnitMatch{Any: true},
			Priority:    5,
		},
	}
	if err := r.Register(low); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(high); err != nil {
		t.Fatal(err)
	}

	src, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	dst, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)

	def, ok := r.FindAdapter(src, dst)
	if !ok {
		t.Fatal("expected an adapter match")
	}
	if def.Type != "zAdapter" {
		t.Errorf("expected the lower-priority adapter zAdapter to win, got %s", def.Type)
	}
}

func TestFindAdapterNoneWhenNoMatch(t *testing.T) {
	r := New()
	src, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	dst, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	if _, ok := r.FindAdapter(src, dst); ok {
		t.Error("expected no adapter match in an empty registry")
	}
}
