// Package fixpoint drives the bounded extract → solve → derive-facts →
// derive-obligations → plan → apply loop that normalizes a draft graph
// into a strictly typed one, or reports why it couldn't.
package fixpoint

import (
	"context"
	"sort"

	"github.com/flowgraph/core/internal/constraints"
	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/facts"
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/observability"
	"github.com/flowgraph/core/internal/obligations"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/solver"
	"github.com/flowgraph/core/internal/typesystem"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxIterations bounds the fixpoint loop when Options.MaxIterations
// is left at zero.
const DefaultMaxIterations = 32

// Options configures one driver run.
type Options struct {
	MaxIterations int
	Trace         bool
	Observer      observability.CompileObserver
}

// StrictTypedGraph is the compiler's handoff to lowering: a draft graph
// every one of whose ports has resolved to a canonical type, with no
// obligation left open.
type StrictTypedGraph struct {
	Draft     draftgraph.DraftGraph
	PortTypes map[string]typesystem.CanonicalType
}

// Outcome is the driver's total result. LoopConverged reports whether
// the loop exited because no iteration could make further progress
// (true) or because MaxIterations was exhausted first (false, the
// NonConvergence case). Strict is non-nil only when the converged
// draft is also fully resolved with no open obligations; a converged
// loop can still fail to strictly finalize if the solver reported
// unrecoverable errors (e.g. an empty allowed-payload set) that leave
// some port's hint stuck at unknown forever.
type Outcome struct {
	Draft        draftgraph.DraftGraph
	Hints        map[string]facts.PortTypeHint
	SolverErrors []solver.PUSolveError
	Strict       *StrictTypedGraph
	LoopConverged bool
	Iterations   int
}

// Run executes the bounded normalization loop over draft, mutating a
// working copy (draft itself is never mutated — each iteration's
// result threads through as a fresh value) until it converges, fails
// to converge within opts.MaxIterations, or a gross internal error
// (an unregistered block type) aborts the run early.
func Run(ctx context.Context, draft draftgraph.DraftGraph, reg *registry.Registry, vars *inference.VarTable, policies *obligations.Registry, opts Options) (Outcome, error) {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	observer := opts.Observer
	if observer == nil {
		observer = observability.NullObserver{}
	}

	ctx, span := observability.StartCompileSpan(ctx)
	defer span.End()

	var lastHints map[string]facts.PortTypeHint
	var lastSolverErrors []solver.PUSolveError
	var lastPortKeys []string

	for iteration := 0; iteration < maxIterations; iteration++ {
		observer.OnIterationStart(iteration, countOpen(draft))

		var iterSpan trace.Span
		if opts.Trace {
			_, iterSpan = observability.StartIterationSpan(ctx, iteration)
		}

		ex, err := constraints.Extract(draft, reg, vars)
		if err != nil {
			return Outcome{}, err
		}
		lastPortKeys = portKeys(ex.PortBaseTypes)

		result := solver.Solve(ex.Constraints)
		hints := computeHints(ex.PortBaseTypes, result.Substitution)
		lastHints = hints
		lastSolverErrors = result.Errors

		derived := obligations.Derive(draft, reg, hints, result)
		newCount := 0
		for _, ob := range derived {
			if _, exists := draft.Obligations[ob.ID]; !exists {
				draft = draft.WithObligation(ob)
				newCount++
			}
		}
		observer.OnObligationsDerived(iteration, newCount, len(draft.Obligations))

		applied, blocked := 0, 0
		for _, id := range sortedOpenObligationIDs(draft) {
			ob := draft.Obligations[id]
			if ob.Status != draftgraph.ObligationOpen {
				continue
			}
			if !depsSatisfied(ob.Dependencies, hints) {
				continue
			}
			planCtx := &obligations.Context{Draft: draft, Registry: reg, Hints: hints}
			res := policies.Plan(ob, planCtx)
			observability.LogPolicyDebug(ob.PolicyName, ob.ID, string(res.Outcome))
			switch res.Outcome {
			case obligations.Planned:
				newDraft, applyErr := obligations.Apply(draft, *res.Plan)
				if applyErr != nil {
					ob.Status = draftgraph.ObligationBlocked
					ob.Diagnostic = applyErr.Error()
					draft = draft.WithObligation(ob)
					observability.LogDiagnosticWarn(ob.PolicyName, ob.Diagnostic)
					blocked++
					continue
				}
				draft = newDraft
				ob.Status = draftgraph.ObligationDischarged
				draft = draft.WithObligation(ob)
				applied++
			case obligations.Blocked:
				ob.Status = draftgraph.ObligationBlocked
				ob.Diagnostic = res.Diagnostic
				draft = draft.WithObligation(ob)
				observability.LogDiagnosticWarn(ob.PolicyName, ob.Diagnostic)
				blocked++
			case obligations.Noop:
				// leave open; dependencies were satisfied but the
				// policy had nothing to do yet (e.g. stale subject).
			}
		}
		observer.OnPlansApplied(iteration, applied, blocked)
		observability.LogIterationDebug(iteration, countOpen(draft), newCount, applied)
		if iterSpan != nil {
			observability.AnnotateIterationSpan(iterSpan, countOpen(draft), applied)
			iterSpan.End()
		}

		if applied == 0 && newCount == 0 {
			observer.OnConverged(iteration)
			strict := tryFinalizeStrict(draft, hints, lastPortKeys)
			return Outcome{
				Draft:         draft,
				Hints:         hints,
				SolverErrors:  result.Errors,
				Strict:        strict,
				LoopConverged: true,
				Iterations:    iteration + 1,
			}, nil
		}
	}

	observer.OnNonConvergence(maxIterations, countOpen(draft))
	observability.LogNonConvergence(maxIterations, countOpen(draft))
	return Outcome{
		Draft:         draft,
		Hints:         lastHints,
		SolverErrors:  lastSolverErrors,
		Strict:        nil,
		LoopConverged: false,
		Iterations:    maxIterations,
	}, nil
}

func countOpen(g draftgraph.DraftGraph) int {
	n := 0
	for _, ob := range g.Obligations {
		if ob.Status == draftgraph.ObligationOpen {
			n++
		}
	}
	return n
}

func sortedOpenObligationIDs(g draftgraph.DraftGraph) []string {
	ids := make([]string, 0, len(g.Obligations))
	for id, ob := range g.Obligations {
		if ob.Status == draftgraph.ObligationOpen {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func portKeys(m map[string]inference.InferenceCanonicalType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func computeHints(base map[string]inference.InferenceCanonicalType, subst *inference.Substitution) map[string]facts.PortTypeHint {
	out := make(map[string]facts.PortTypeHint, len(base))
	for portKey, t := range base {
		out[portKey] = facts.Derive(t, subst)
	}
	return out
}

func depsSatisfied(deps []facts.FactDependency, hints map[string]facts.PortTypeHint) bool {
	for _, dep := range deps {
		hint, ok := hints[dep.PortKey]
		if !ok || !facts.Satisfies(hint, dep) {
			return false
		}
	}
	return true
}

// tryFinalizeStrict succeeds iff every known port's hint is ok and no
// open obligation remains.
func tryFinalizeStrict(draft draftgraph.DraftGraph, hints map[string]facts.PortTypeHint, portKeys []string) *StrictTypedGraph {
	for _, ob := range draft.Obligations {
		if ob.Status == draftgraph.ObligationOpen {
			return nil
		}
	}
	portTypes := make(map[string]typesystem.CanonicalType, len(portKeys))
	for _, key := range portKeys {
		hint, ok := hints[key]
		if !ok || !hint.OK {
			return nil
		}
		portTypes[key] = hint.Canonical
	}
	return &StrictTypedGraph{Draft: draft, PortTypes: portTypes}
}
