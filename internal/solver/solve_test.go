package solver

import (
	"testing"

	"github.com/flowgraph/core/internal/typesystem"
)

func TestSolveConcretePayloadPropagatesThroughChain(t *testing.T) {
	a := PayloadPortNode("a.out")
	b := PayloadPortNode("b.in")
	c := PayloadPortNode("b.out")
	d := PayloadPortNode("c.in")

	result := Solve([]Constraint{
		ConcretePayload(a, typesystem.PayloadFloat, "edge:1"),
		PayloadEq(a, b, "edge:1"),
		PayloadEq(b, c, "block:b"),
		PayloadEq(c, d, "edge:2"),
	})

	for _, node := range []string{"a.out", "b.in", "b.out", "c.in"} {
		if result.PortPayloads[node] != typesystem.PayloadFloat {
			t.Errorf("expected %s to resolve to float, got %s", node, result.PortPayloads[node])
		}
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestSolveConflictingPayloadsClassifiedAsUserPatchTypeError(t *testing.T) {
	a := PayloadPortNode("x.out")

	result := Solve([]Constraint{
		ConcretePayload(a, typesystem.PayloadFloat, "edge:1"),
		ConcretePayload(a, typesystem.PayloadInt, "edge:2"),
	})

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", result.Errors)
	}
	if result.Errors[0].Kind != ErrConflictingPayloads {
		t.Errorf("expected ConflictingPayloads, got %s", result.Errors[0].Kind)
	}
	if result.Errors[0].Classification != UserPatchTypeError {
		t.Errorf("expected UserPatchTypeError, got %s", result.Errors[0].Classification)
	}
}

func TestSolveDefaultsToFirstAllowedPayload(t *testing.T) {
	node := PayloadPortNode("p.in")
	result := Solve([]Constraint{
		RequirePayloadIn(node, []typesystem.PayloadType{typesystem.PayloadVec2, typesystem.PayloadVec3}, "block:adapter"),
	})
	if result.PortPayloads["p.in"] != typesystem.PayloadVec2 {
		t.Errorf("expected default to first allowed payload vec2, got %s", result.PortPayloads["p.in"])
	}
}

func TestSolveEmptyAllowedSetReportsError(t *testing.T) {
	node := PayloadPortNode("p.in")
	result := Solve([]Constraint{
		RequirePayloadIn(node, []typesystem.PayloadType{typesystem.PayloadVec2}, "payloadMetadata:b:p"),
		RequirePayloadIn(node, []typesystem.PayloadType{typesystem.PayloadBool}, "payloadMetadata:b:p"),
	})
	if len(result.Errors) != 1 || result.Errors[0].Kind != ErrEmptyAllowedSet {
		t.Fatalf("expected a single EmptyAllowedSet error, got %v", result.Errors)
	}
	if result.Errors[0].Classification != BlockDefTooSpecific {
		t.Errorf("expected BlockDefTooSpecific, got %s", result.Errors[0].Classification)
	}
}

func TestSolveUnitlessMismatch(t *testing.T) {
	node := UnitPortNode("p.in")
	result := Solve([]Constraint{
		ConcreteUnit(node, typesystem.AngleUnitOf(typesystem.AngleRadians), "edge:1"),
		RequireUnitless(node, "block:sink"),
	})
	if len(result.Errors) != 1 || result.Errors[0].Kind != ErrUnitlessMismatch {
		t.Fatalf("expected a single UnitlessMismatch error, got %v", result.Errors)
	}
}

func TestSolveUnconstrainedUnresolvedPayloadDefaultsToFloat(t *testing.T) {
	node := PayloadPortNode("free.out")
	result := Solve([]Constraint{
		PayloadEq(node, node, "noop"),
	})
	if result.PortPayloads["free.out"] != typesystem.PayloadFloat {
		t.Errorf("expected unconstrained unresolved payload to default to float, got %s", result.PortPayloads["free.out"])
	}
}

func TestSolveIsPermutationInvariantModuloErrorOrdering(t *testing.T) {
	constraintsA := []Constraint{
		ConcretePayload(PayloadPortNode("a"), typesystem.PayloadFloat, "edge:1"),
		PayloadEq(PayloadPortNode("a"), PayloadPortNode("b"), "edge:1"),
		PayloadEq(PayloadPortNode("b"), PayloadPortNode("c"), "edge:2"),
	}
	constraintsB := []Constraint{
		PayloadEq(PayloadPortNode("b"), PayloadPortNode("c"), "edge:2"),
		PayloadEq(PayloadPortNode("a"), PayloadPortNode("b"), "edge:1"),
		ConcretePayload(PayloadPortNode("a"), typesystem.PayloadFloat, "edge:1"),
	}
	resultA := Solve(constraintsA)
	resultB := Solve(constraintsB)
	for _, node := range []string{"a", "b", "c"} {
		if resultA.PortPayloads[node] != resultB.PortPayloads[node] {
			t.Errorf("node %s: expected permutation-invariant result, got %s vs %s", node, resultA.PortPayloads[node], resultB.PortPayloads[node])
		}
	}
}
