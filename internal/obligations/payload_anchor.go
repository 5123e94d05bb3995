package obligations

import (
	"fmt"

	"github.com/flowgraph/core/internal/draftgraph"
)

// PayloadAnchorV1Name is the registered policy name payloadAnchor.v1
// discharges under.
const PayloadAnchorV1Name = "payloadAnchor.v1"

// PayloadAnchorBlockType is the identity block payloadAnchor.v1
// splices onto an edge to break a polymorphic chain: it declares a
// concrete float payload on both its input and output, forcing the
// chain's shared payload variable to resolve instead of defaulting
// silently.
const PayloadAnchorBlockType = "PayloadAnchorFloat"

// payloadAnchorV1 is the last-resort policy: invoked only once the
// fixpoint driver has confirmed no other obligation can make progress
// on a chain of unresolved payload variables, it breaks the deadlock by
// anchoring one edge to float and always emits a diagnostic warning,
// since this is a defaulting decision rather than a type actually
// demanded anywhere in the graph.
type payloadAnchorV1 struct{}

// PayloadAnchorV1 is the built-in policy that anchors a stalled
// polymorphic chain to float.
func PayloadAnchorV1() Policy { return payloadAnchorV1{} }

func (payloadAnchorV1) Name() string { return PayloadAnchorV1Name }

func (payloadAnchorV1) Plan(ob draftgraph.Obligation, ctx *Context) PolicyResult {
	if ob.Subject.Kind != draftgraph.SubjectEdge {
		return PolicyResult{Outcome: Noop, Diagnostic: "payloadAnchor.v1: obligation subject is not an edge"}
	}
	edge, ok := ctx.Draft.Edges[ob.Subject.EdgeID]
	if !ok {
		return PolicyResult{Outcome: Noop, Diagnostic: fmt.Sprintf("payloadAnchor.v1: edge %q no longer exists", ob.Subject.EdgeID)}
	}

	newBlockID := ContentID(PayloadAnchorV1Name, ob.Subject)
	diagnostic := fmt.Sprintf(
		"payloadAnchor.v1: edge %q carries an unresolved payload variable with no other constraint; defaulting to float",
		edge.ID,
	)
	return PolicyResult{
		Outcome: Planned,
		Plan: &ElaborationPlan{
			Kind:             PlanInsertPayloadAnchor,
			EdgeID:           edge.ID,
			NewBlockID:       newBlockID,
			AdapterBlockType: PayloadAnchorBlockType,
		},
		Diagnostic: diagnostic,
	}
}
