package solver

import "github.com/flowgraph/core/internal/typesystem"

// ConstraintKind discriminates the shape of a Constraint.
type ConstraintKind string

const (
	ConstraintConcretePayload  ConstraintKind = "concretePayload"
	ConstraintConcreteUnit     ConstraintKind = "concreteUnit"
	ConstraintPayloadEq        ConstraintKind = "payloadEq"
	ConstraintUnitEq           ConstraintKind = "unitEq"
	ConstraintRequirePayloadIn ConstraintKind = "requirePayloadIn"
	ConstraintRequireUnitless  ConstraintKind = "requireUnitless"
)

// Constraint is one fact extracted about a payload or unit node.
// Exactly the fields relevant to Kind are meaningful, the same closed-
// discriminated-struct shape used throughout this codebase's type
// representations.
type Constraint struct {
	Kind ConstraintKind

	// Node is the subject for ConcretePayload, ConcreteUnit,
	// RequirePayloadIn and RequireUnitless.
	Node string

	// NodeA / NodeB are the two sides of PayloadEq / UnitEq.
	NodeA string
	NodeB string

	Payload typesystem.PayloadType
	Unit    typesystem.UnitType

	AllowedPayloads []typesystem.PayloadType

	// Origin identifies where this constraint came from (an edge id,
	// a block definition field, a payload-metadata entry, ...) and
	// drives error classification.
	Origin string
}

func ConcretePayload(node string, p typesystem.PayloadType, origin string) Constraint {
	return Constraint{Kind: ConstraintConcretePayload, Node: node, Payload: p, Origin: origin}
}

func ConcreteUnit(node string, u typesystem.UnitType, origin string) Constraint {
	return Constraint{Kind: ConstraintConcreteUnit, Node: node, Unit: u, Origin: origin}
}

func PayloadEq(a, b string, origin string) Constraint {
	return Constraint{Kind: ConstraintPayloadEq, NodeA: a, NodeB: b, Origin: origin}
}

func UnitEq(a, b string, origin string) Constraint {
	return Constraint{Kind: ConstraintUnitEq, NodeA: a, NodeB: b, Origin: origin}
}

func RequirePayloadIn(node string, allowed []typesystem.PayloadType, origin string) Constraint {
	return Constraint{Kind: ConstraintRequirePayloadIn, Node: node, AllowedPayloads: allowed, Origin: origin}
}

func RequireUnitless(node string, origin string) Constraint {
	return Constraint{Kind: ConstraintRequireUnitless, Node: node, Origin: origin}
}

// OriginKind buckets a constraint's Origin string for error
// classification (§4.5: edge origins outrank payloadMetadata origins,
// which outrank everything else). Origins are produced by
// internal/constraints as "edge:{id}", "payloadMetadata:{blockId}:{portId}",
// or any other free-form string for lower-priority origins.
func OriginKind(origin string) string {
	switch {
	case len(origin) >= 5 && origin[:5] == "edge:":
		return "edge"
	case len(origin) >= 16 && origin[:16] == "payloadMetadata:":
		return "payloadMetadata"
	default:
		return "other"
	}
}
