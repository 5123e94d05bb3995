package obligations

import (
	"testing"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/facts"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

func floatType(t *testing.T) typesystem.CanonicalType {
	ct, err := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	if err != nil {
		t.Fatal(err)
	}
	return ct
}

func radiansType(t *testing.T) typesystem.CanonicalType {
	unit := typesystem.AngleUnitOf(typesystem.AngleRadians)
	ct, err := typesystem.NewCanonicalType(typesystem.PayloadFloat, &unit, nil, typesystem.ContractNone)
	if err != nil {
		t.Fatal(err)
	}
	return ct
}

func TestAdaptersV1PlansInsertionWhenAdapterFound(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(registry.BlockDefinition{
		Type: "phaseToRadians",
		AdapterSpec: &registry.AdapterSpec{
			FromPayload: registry.PayloadMatch{Any: true},
			FromUnit:    registry.UnitMatch{Any: true},
			ToUnit:      registry.UnitMatch{Unit: typesystem.AngleUnitOf(typesystem.AngleRadians)},
		},
	}); err != nil {
		t.Fatal(err)
	}

	g := draftgraph.New().
		WithBlock(draftgraph.Block{ID: "a", Type: "const"}).
		WithBlock(draftgraph.Block{ID: "b", Type: "ellipse"})
	g, err := g.AddEdge("e1", draftgraph.PortRef{BlockID: "a", PortID: "out"}, draftgraph.PortRef{BlockID: "b", PortID: "phase"}, 0)
	if err != nil {
		t.Fatal(err)
	}

	ob := draftgraph.Obligation{
		ID:         "ob1",
		PolicyName: AdaptersV1Name,
		Subject:    draftgraph.ObligationSubject{Kind: draftgraph.SubjectEdge, EdgeID: "e1"},
	}
	ctx := &Context{
		Draft:    g,
		Registry: reg,
		Hints: map[string]facts.PortTypeHint{
			"a:out":   {OK: true, Canonical: floatType(t)},
			"b:phase": {OK: true, Canonical: radiansType(t)},
		},
	}

	result := AdaptersV1().Plan(ob, ctx)
	if result.Outcome != Planned {
		t.Fatalf("expected Planned, got %v (%s)", result.Outcome, result.Diagnostic)
	}
	if result.Plan.Kind != PlanInsertAdapter || result.Plan.AdapterBlockType != "phaseToRadians" {
		t.Errorf("unexpected plan: %+v", result.Plan)
	}

	g2, err := Apply(g, *result.Plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(g2.Edges) != 2 {
		t.Errorf("expected the adapter splice to leave two edges, got %d", len(g2.Edges))
	}
}

func TestAdaptersV1BlocksWhenNoAdapterRegistered(t *testing.T) {
	reg := registry.New()
	g := draftgraph.New().
		WithBlock(draftgraph.Block{ID: "a", Type: "const"}).
		WithBlock(draftgraph.Block{ID: "b", Type: "ellipse"})
	g, _ = g.AddEdge("e1", draftgraph.PortRef{BlockID: "a", PortID: "out"}, draftgraph.PortRef{BlockID: "b", PortID: "phase"}, 0)

	ob := draftgraph.Obligation{PolicyName: AdaptersV1Name, Subject: draftgraph.ObligationSubject{Kind: draftgraph.SubjectEdge, EdgeID: "e1"}}
	ctx := &Context{
		Draft:    g,
		Registry: reg,
		Hints: map[string]facts.PortTypeHint{
			"a:out":   {OK: true, Canonical: floatType(t)},
			"b:phase": {OK: true, Canonical: radiansType(t)},
		},
	}

	result := AdaptersV1().Plan(ob, ctx)
	if result.Outcome != Blocked {
		t.Fatalf("expected Blocked, got %v", result.Outcome)
	}
}

func TestDefaultSourcesV1PlansConstSynthesis(t *testing.T) {
	reg := registry.New()
	defaultVal := registry.DefaultSource{Kind: "const", ConstValue: 0.5}
	if err := reg.Register(registry.BlockDefinition{
		Type:   "ellipse",
		Inputs: map[string]registry.InputDef{"radius": {DefaultSource: &defaultVal}},
	}); err != nil {
		t.Fatal(err)
	}

	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "b", Type: "ellipse"})
	ob := draftgraph.Obligation{
		PolicyName: DefaultSourcesV1Name,
		Subject:    draftgraph.ObligationSubject{Kind: draftgraph.SubjectPort, Port: draftgraph.PortRef{BlockID: "b", PortID: "radius"}},
	}
	ctx := &Context{Draft: g, Registry: reg}

	result := DefaultSourcesV1().Plan(ob, ctx)
	if result.Outcome != Planned {
		t.Fatalf("expected Planned, got %v (%s)", result.Outcome, result.Diagnostic)
	}

	g2, err := Apply(g, *result.Plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(g2.Blocks) != 2 {
		t.Errorf("expected a synthesized source block, got %d blocks", len(g2.Blocks))
	}
	edges := g2.EdgesIntoPort(draftgraph.PortRef{BlockID: "b", PortID: "radius"})
	if len(edges) != 1 {
		t.Errorf("expected exactly one edge wired into the default-source port, got %d", len(edges))
	}
}

func TestDefaultSourcesV1BlocksWhenNoDefaultDeclared(t *testing.T) {
	reg := registry.New()
	_ = reg.Register(registry.BlockDefinition{Type: "ellipse"})
	g := draftgraph.New().WithBlock(draftgraph.Block{ID: "b", Type: "ellipse"})
	ob := draftgraph.Obligation{
		PolicyName: DefaultSourcesV1Name,
		Subject:    draftgraph.ObligationSubject{Kind: draftgraph.SubjectPort, Port: draftgraph.PortRef{BlockID: "b", PortID: "radius"}},
	}
	result := DefaultSourcesV1().Plan(ob, &Context{Draft: g, Registry: reg})
	if result.Outcome != Blocked {
		t.Fatalf("expected Blocked, got %v", result.Outcome)
	}
}

func TestPayloadAnchorV1AlwaysEmitsDiagnostic(t *testing.T) {
	g := draftgraph.New().
		WithBlock(draftgraph.Block{ID: "a", Type: "ident"}).
		WithBlock(draftgraph.Block{ID: "b", Type: "ident"})
	g, _ = g.AddEdge("e1", draftgraph.PortRef{BlockID: "a", PortID: "out"}, draftgraph.PortRef{BlockID: "b", PortID: "in"}, 0)

	ob := draftgraph.Obligation{PolicyName: PayloadAnchorV1Name, Subject: draftgraph.ObligationSubject{Kind: draftgraph.SubjectEdge, EdgeID: "e1"}}
	result := PayloadAnchorV1().Plan(ob, &Context{Draft: g})
	if result.Outcome != Planned {
		t.Fatalf("expected Planned, got %v", result.Outcome)
	}
	if result.Diagnostic == "" {
		t.Error("expected payloadAnchor.v1 to always emit a diagnostic warning")
	}
	if result.Plan.AdapterBlockType != PayloadAnchorBlockType {
		t.Errorf("expected the anchor block type, got %q", result.Plan.AdapterBlockType)
	}
}

func TestRegistryPlanDispatchesByName(t *testing.T) {
	reg := NewRegistry(AdaptersV1(), DefaultSourcesV1(), PayloadAnchorV1())
	result := reg.Plan(draftgraph.Obligation{PolicyName: "nonexistent.v1"}, &Context{})
	if result.Outcome != Noop {
		t.Errorf("expected Noop for an unregistered policy name, got %v", result.Outcome)
	}
}

func TestCompilePredicateClamp01(t *testing.T) {
	p, err := CompilePredicate(typesystem.ContractClamp01)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := p.Evaluate(0.5)
	if err != nil || !ok {
		t.Errorf("expected 0.5 to satisfy clamp01, got ok=%v err=%v", ok, err)
	}
	ok, err = p.Evaluate(1.5)
	if err != nil || ok {
		t.Errorf("expected 1.5 to violate clamp01, got ok=%v err=%v", ok, err)
	}
}

func TestCompilePredicateNoneAlwaysHolds(t *testing.T) {
	p, err := CompilePredicate(typesystem.ContractNone)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := p.Evaluate(-999)
	if err != nil || !ok {
		t.Errorf("expected ContractNone to always hold, got ok=%v err=%v", ok, err)
	}
}
