package obligations

import (
	"fmt"

	"github.com/flowgraph/core/internal/draftgraph"
)

// AdaptersV1Name is the registered policy name adapters.v1 discharges
// under.
const AdaptersV1Name = "adapters.v1"

// adaptersV1 splices a registry-discovered adapter block onto an edge
// whose endpoints have both resolved to canonical types that disagree.
// It is only ever invoked once its obligation's dependencies — both
// endpoints reaching portCanonicalizable — are satisfied, so Plan can
// assume both hints are OK.
type adaptersV1 struct{}

// AdaptersV1 is the built-in policy that inserts a type adapter between
// two resolved-but-incompatible port types.
func AdaptersV1() Policy { return adaptersV1{} }

func (adaptersV1) Name() string { return AdaptersV1Name }

func (adaptersV1) Plan(ob draftgraph.Obligation, ctx *Context) PolicyResult {
	if ob.Subject.Kind != draftgraph.SubjectEdge {
		return PolicyResult{Outcome: Noop, Diagnostic: "adapters.v1: obligation subject is not an edge"}
	}
	edge, ok := ctx.Draft.Edges[ob.Subject.EdgeID]
	if !ok {
		return PolicyResult{Outcome: Noop, Diagnostic: fmt.Sprintf("adapters.v1: edge %q no longer exists", ob.Subject.EdgeID)}
	}
	srcHint, ok := ctx.Hints[edge.From.Key()]
	if !ok || !srcHint.OK {
		return PolicyResult{Outcome: Noop, Diagnostic: "adapters.v1: source type not yet resolved"}
	}
	tgtHint, ok := ctx.Hints[edge.To.Key()]
	if !ok || !tgtHint.OK {
		return PolicyResult{Outcome: Noop, Diagnostic: "adapters.v1: target type not yet resolved"}
	}

	def, found := ctx.Registry.FindAdapter(srcHint.Canonical, tgtHint.Canonical)
	if !found {
		return PolicyResult{
			Outcome:    Blocked,
			Diagnostic: fmt.Sprintf("adapters.v1: no registered adapter converts %s to %s on edge %q", srcHint.Canonical.Payload, tgtHint.Canonical.Payload, edge.ID),
		}
	}

	newBlockID := ContentIDWithTypes(AdaptersV1Name, ob.Subject, fmt.Sprintf("%s>%s", srcHint.Canonical.Payload, tgtHint.Canonical.Payload))
	return PolicyResult{
		Outcome: Planned,
		Plan: &ElaborationPlan{
			Kind:             PlanInsertAdapter,
			EdgeID:           edge.ID,
			NewBlockID:       newBlockID,
			AdapterBlockType: def.Type,
		},
	}
}
