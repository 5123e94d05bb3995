package constraints

import (
	"testing"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

func floatOutType() inference.InferenceCanonicalType {
	ct, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	return inference.Concrete(ct)
}

func TestExtractEmitsConcretePayloadForDeclaredPorts(t *testing.T) {
	reg := registry.New()
	def := registry.BlockDefinition{
		Type: "const",
		Outputs: map[string]registry.OutputDef{
			"out": {PortDef: registry.PortDef{Type: floatOutType()}},
		},
	}
	if err := reg.Register(def); err != nil {
		t.Fatal(err)
	}

	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "c1", Type: "const"})
	minter := inference.NewMinter()
	vars := inference.NewVarTable(minter)

	ex, err := Extract(g, reg, vars)
	if err != nil {
		t.Fatal(err)
	}
	if len(ex.Constraints) == 0 {
		t.Fatal("expected at least one constraint for the declared concrete output port")
	}
	if _, ok := ex.PortBaseTypes["c1:out"]; !ok {
		t.Error("expected a recorded base type for c1:out")
	}
}

func TestExtractEmitsEqConstraintsForEdges(t *testing.T) {
	reg := registry.New()
	_ = reg.Register(registry.BlockDefinition{
		Type:    "const",
		Outputs: map[string]registry.OutputDef{"out": {PortDef: registry.PortDef{Type: floatOutType()}}},
	})
	_ = reg.Register(registry.BlockDefinition{
		Type:   "add",
		Inputs: map[string]registry.InputDef{"a": {PortDef: registry.PortDef{Type: floatOutType()}}},
	})

	g := draftgraph.New().
		WithBlock(draftgraph.Block{ID: "c1", Type: "const"}).
		WithBlock(draftgraph.Block{ID: "a1", Type: "add"})
	g, err := g.AddEdge("e1", draftgraph.PortRef{BlockID: "c1", PortID: "out"}, draftgraph.PortRef{BlockID: "a1", PortID: "a"}, 0)
	if err != nil {
		t.Fatal(err)
	}

	vars := inference.NewVarTable(inference.NewMinter())
	ex, err := Extract(g, reg, vars)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, c := range ex.Constraints {
		if c.Kind == "payloadEq" && c.Origin == "edge:e1" {
			found = true
		}
	}
	if !found {
		t.Error("expected a payloadEq constraint with origin edge:e1")
	}
}

func TestExtractFailsOnUnknownBlockType(t *testing.T) {
	reg := registry.New()
	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "x", Type: "nonexistent"})
	vars := inference.NewVarTable(inference.NewMinter())
	if _, err := Extract(g, reg, vars); err == nil {
		t.Error("expected an error for a block referencing an unregistered type")
	}
}
