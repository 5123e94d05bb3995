package ir

import (
	"testing"

	"github.com/flowgraph/core/internal/typesystem"
)

func floatType() typesystem.CanonicalType {
	ct, _ := typesystem.NewCanonicalType(typesystem.PayloadFloat, nil, nil, typesystem.ContractNone)
	return ct
}

func fieldFloatType(instance typesystem.InstanceRef) typesystem.CanonicalType {
	ct := floatType()
	ct.Extent.Cardinality = typesystem.InstantiatedCardinality(typesystem.CardinalityMany, instance)
	return ct
}

func TestBuilderAssignsIncreasingIDs(t *testing.T) {
	b := NewBuilder()
	first := b.Constant(1.0, floatType())
	second := b.Constant(2.0, floatType())
	if second <= first {
		t.Errorf("expected increasing ids, got %d then %d", first, second)
	}
	if len(b.Exprs()) != 2 {
		t.Errorf("expected 2 exprs recorded, got %d", len(b.Exprs()))
	}
}

func TestAlignInputsSignalSignalPassesThrough(t *testing.T) {
	b := NewBuilder()
	a := b.Constant(1.0, floatType())
	c := b.Constant(2.0, floatType())
	a2, c2, err := AlignInputs(b, a, floatType(), c, floatType(), floatType())
	if err != nil {
		t.Fatal(err)
	}
	if a2 != a || c2 != c {
		t.Error("expected signal+signal to pass through unchanged")
	}
}

func TestAlignInputsBroadcastsSignalToField(t *testing.T) {
	b := NewBuilder()
	inst := typesystem.InstanceRef{DomainTypeID: "d", InstanceID: "i"}
	signal := b.Constant(1.0, floatType())
	field := b.Constant(2.0, fieldFloatType(inst))
	_, c2, err := AlignInputs(b, signal, floatType(), field, fieldFloatType(inst), fieldFloatType(inst))
	if err != nil {
		t.Fatal(err)
	}
	if c2 != field {
		t.Error("expected the field input to pass through unchanged")
	}
	exprs := b.Exprs()
	if exprs[len(exprs)-1].Kind != ExprBroadcast {
		t.Errorf("expected a broadcast node to have been emitted, got %s", exprs[len(exprs)-1].Kind)
	}
}

func TestAlignInputsRejectsMismatchedFieldDomains(t *testing.T) {
	b := NewBuilder()
	instA := typesystem.InstanceRef{DomainTypeID: "d", InstanceID: "a"}
	instB := typesystem.InstanceRef{DomainTypeID: "d", InstanceID: "b"}
	fa := b.Constant(1.0, fieldFloatType(instA))
	fb := b.Constant(2.0, fieldFloatType(instB))
	_, _, err := AlignInputs(b, fa, fieldFloatType(instA), fb, fieldFloatType(instB), fieldFloatType(instA))
	if err == nil {
		t.Error("expected error for mismatched field instance domains")
	}
}

func TestZipAutoDirectWhenOutputIsSignal(t *testing.T) {
	b := NewBuilder()
	a := b.Constant(1.0, floatType())
	c := b.Constant(2.0, floatType())
	id, err := ZipAuto(b, []ValueExprID{a, c}, []typesystem.CanonicalType{floatType(), floatType()}, "add", floatType())
	if err != nil {
		t.Fatal(err)
	}
	if b.Exprs()[id].Kind != ExprKernelZip {
		t.Errorf("expected kernelZip, got %s", b.Exprs()[id].Kind)
	}
}

func TestZipAutoMixedUsesKernelZipSig(t *testing.T) {
	b := NewBuilder()
	inst := typesystem.InstanceRef{DomainTypeID: "d", InstanceID: "i"}
	field := b.Constant(1.0, fieldFloatType(inst))
	signal := b.Constant(2.0, floatType())
	id, err := ZipAuto(b, []ValueExprID{field, signal}, []typesystem.CanonicalType{fieldFloatType(inst), floatType()}, "add", fieldFloatType(inst))
	if err != nil {
		t.Fatal(err)
	}
	if b.Exprs()[id].Kind != ExprKernelZipSig {
		t.Errorf("expected kernelZipSig, got %s", b.Exprs()[id].Kind)
	}
}

func TestTopologicalOrderIsDeterministic(t *testing.T) {
	g := NewDependencyGraph()
	for _, id := range []string{"c", "a", "b", "d"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")
	g.AddEdge("c", "d")

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 4 || order[0] != "a" || order[len(order)-1] != "d" {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestTopologicalOrderDetectsCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	if _, err := g.TopologicalOrder(); err == nil {
		t.Error("expected an error for a cyclic dependency graph")
	}
}
