// Package obligations turns pending elaboration tasks (an edge needing
// an adapter, a port needing a default source, a polymorphic chain
// needing a payload anchor) into concrete draft-graph mutations. Each
// built-in policy mirrors one normalization rule: given an Obligation
// whose dependencies are already satisfied, decide whether to plan a
// mutation, block with a diagnostic, or leave it open.
package obligations

import (
	"fmt"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/facts"
	"github.com/flowgraph/core/internal/registry"
)

// Outcome is what a policy decided to do with one obligation.
type Outcome string

const (
	Planned Outcome = "planned"
	Blocked Outcome = "blocked"
	Noop    Outcome = "noop"
)

// PlanKind discriminates the shape of draft-graph mutation a plan
// describes.
type PlanKind string

const (
	PlanInsertAdapter       PlanKind = "insertAdapter"
	PlanSynthesizeSource    PlanKind = "synthesizeSource"
	PlanInsertPayloadAnchor PlanKind = "insertPayloadAnchor"
)

// ElaborationPlan is a declarative description of one draft-graph
// mutation a policy wants applied. Exactly the fields relevant to Kind
// are populated.
type ElaborationPlan struct {
	Kind PlanKind

	// PlanInsertAdapter, PlanInsertPayloadAnchor
	EdgeID           string
	NewBlockID       string
	AdapterBlockType string

	// PlanSynthesizeSource
	TargetPort       draftgraph.PortRef
	SourceBlock      draftgraph.Block
	SourceOutputPort string
	NewEdgeID        string
	Override         registry.DefaultSource
}

// PolicyResult is what a Policy's Plan returned for one obligation.
type PolicyResult struct {
	Outcome    Outcome
	Plan       *ElaborationPlan
	Diagnostic string
}

// Context is the read-only view a policy needs of the surrounding
// normalization state: the draft graph being elaborated, the block
// registry, and the current per-port type hints (from the most recent
// solver pass).
type Context struct {
	Draft    draftgraph.DraftGraph
	Registry *registry.Registry
	Hints    map[string]facts.PortTypeHint
}

// Policy decides what, if anything, to do about one obligation whose
// Dependencies have already been verified satisfied by the fixpoint
// driver.
type Policy interface {
	Name() string
	Plan(ob draftgraph.Obligation, ctx *Context) PolicyResult
}

// Apply executes plan against g, returning the mutated draft graph.
func Apply(g draftgraph.DraftGraph, plan ElaborationPlan) (draftgraph.DraftGraph, error) {
	switch plan.Kind {
	case PlanInsertAdapter, PlanInsertPayloadAnchor:
		return g.InsertAdapterBetween(plan.EdgeID, plan.NewBlockID, plan.AdapterBlockType)
	case PlanSynthesizeSource:
		outPort := plan.SourceOutputPort
		if outPort == "" {
			outPort = "out"
		}
		out := g.WithBlock(plan.SourceBlock)
		out, err := out.AddEdge(plan.NewEdgeID, draftgraph.PortRef{BlockID: plan.SourceBlock.ID, PortID: outPort}, plan.TargetPort, 0)
		if err != nil {
			return g, err
		}
		return out.AttachDefaultSource(plan.TargetPort, plan.Override)
	default:
		return g, fmt.Errorf("obligations: apply: unknown plan kind %q", plan.Kind)
	}
}

// Registry holds the ordered set of policies a fixpoint iteration
// consults, in the order that determines obligation-discharge priority
// when more than one policy could apply to the same subject kind.
type Registry struct {
	policies []Policy
}

// NewRegistry builds a policy registry holding policies in evaluation
// order.
func NewRegistry(policies ...Policy) *Registry {
	return &Registry{policies: policies}
}

// Plan finds the policy named ob.PolicyName and invokes it, or returns
// a Noop result if no such policy is registered.
func (r *Registry) Plan(ob draftgraph.Obligation, ctx *Context) PolicyResult {
	for _, p := range r.policies {
		if p.Name() == ob.PolicyName {
			return p.Plan(ob, ctx)
		}
	}
	return PolicyResult{Outcome: Noop, Diagnostic: fmt.Sprintf("obligations: no policy registered for %q", ob.PolicyName)}
}
