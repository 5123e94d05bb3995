package fixpoint

import (
	"context"
	"testing"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/obligations"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

func floatPort() inference.InferenceCanonicalType {
	ct, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	return inference.Concrete(ct)
}

func radiansPort() inference.InferenceCanonicalType {
	unit := typesystem.AngleUnitOf(typesystem.AngleRadians)
	ct, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, &unit, nil, typesystem.ContractNone)
	return inference.Concrete(ct)
}

func allPolicies() *obligations.Registry {
	return obligations.NewRegistry(obligations.AdaptersV1(), obligations.DefaultSourcesV1(), obligations.PayloadAnchorV1())
}

func TestRunConvergesWithNoObligations(t *testing.T) {
	reg := registry.New()
	_ = reg.Register(registry.BlockDefinition{
		Type:    "const",
		Outputs: map[string]registry.OutputDef{"out": {PortDef: registry.PortDef{Type: floatPort()}}},
	})
	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "c1", Type: "const"})
	vars := inference.NewVarTable(inference.NewMinter())

	outcome, err := Run(context.Background(), g, reg, vars, allPolicies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.LoopConverged {
		t.Fatal("expected the loop to converge")
	}
	if outcome.Strict == nil {
		t.Fatal("expected a strict typed graph with no obligations pending")
	}
	if outcome.Iterations != 1 {
		t.Errorf("expected a single iteration for a graph with no obligations, got %d", outcome.Iterations)
	}
}

func TestRunDischargesDefaultSourceObligation(t *testing.T) {
	reg := registry.New()
	defaultVal := registry.DefaultSource{Kind: "const", ConstValue: 1.0}
	_ = reg.Register(registry.BlockDefinition{
		Type:    "const",
		Outputs: map[string]registry.OutputDef{"out": {PortDef: registry.PortDef{Type: floatPort()}}},
	})
	_ = reg.Register(registry.BlockDefinition{
		Type:    "add",
		Inputs:  map[string]registry.InputDef{"a": {PortDef: registry.PortDef{Type: floatPort()}, DefaultSource: &defaultVal}},
		Outputs: map[string]registry.OutputDef{"out": {PortDef: registry.PortDef{Type: floatPort()}}},
	})
	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "a1", Type: "add"})
	vars := inference.NewVarTable(inference.NewMinter())

	outcome, err := Run(context.Background(), g, reg, vars, allPolicies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.LoopConverged || outcome.Strict == nil {
		t.Fatalf("expected convergence with a strict graph, got %+v", outcome)
	}
	if len(outcome.Strict.Draft.Blocks) != 2 {
		t.Errorf("expected a synthesized const source block to have been added, got %d blocks", len(outcome.Strict.Draft.Blocks))
	}
}

func TestRunDischargesAdapterObligation(t *testing.T) {
	reg := registry.New()
	_ = reg.Register(registry.BlockDefinition{
		Type:    "timeRoot",
		Outputs: map[string]registry.OutputDef{"phaseA": {PortDef: registry.PortDef{Type: floatPort()}}},
	})
	_ = reg.Register(registry.BlockDefinition{
		Type:   "ellipse",
		Inputs: map[string]registry.InputDef{"phase": {PortDef: registry.PortDef{Type: radiansPort()}}},
	})
	_ = reg.Register(registry.BlockDefinition{
		Type: "phaseToRadians",
		AdapterSpec: &registry.AdapterSpec{
			FromPayload: registry.PayloadMatch{Any: true},
			FromUnit:    registry.UnitMatch{Any: true},
			ToUnit:      registry.UnitMatch{Unit: typesystem.AngleUnitOf(typesystem.AngleRadians)},
		},
	})

	g := draftgraph.New().
		WithBlock(draftgraph.Block{ID: "t1", Type: "timeRoot"}).
		WithBlock(draftgraph.Block{ID: "e1", Type: "ellipse"})
	g, err := g.AddEdge("edge1", draftgraph.PortRef{BlockID: "t1", PortID: "phaseA"}, draftgraph.PortRef{BlockID: "e1", PortID: "phase"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	vars := inference.NewVarTable(inference.NewMinter())

	outcome, err := Run(context.Background(), g, reg, vars, allPolicies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.LoopConverged || outcome.Strict == nil {
		t.Fatalf("expected convergence with a strict graph, got %+v", outcome)
	}
	if len(outcome.Strict.Draft.Blocks) != 3 {
		t.Errorf("expected the adapter block to have been spliced in, got %d blocks", len(outcome.Strict.Draft.Blocks))
	}
}
