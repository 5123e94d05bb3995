// Package compiler is the public façade over the internal
// normalization pipeline: give it a draft graph and a block registry,
// get back a strictly typed, lowered program or the diagnostics
// explaining why you can't have one yet. It plays the role this
// repository's root `dataflow` package plays for workflow execution,
// adapted from "wrap internal domain types behind a public interface"
// to "wrap an internal multi-stage compile behind one function call".
package compiler

import (
	"context"
	"sort"

	"github.com/flowgraph/core/internal/blocks"
	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/fixpoint"
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/observability"
	"github.com/flowgraph/core/internal/obligations"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/solver"
	"github.com/flowgraph/core/internal/typesystem"
)

// DraftGraph, Block, Edge, and PortRef re-export the authoring model
// callers build against; they are the same types the internal
// packages use, not a parallel copy, so there is no conversion step
// between building a draft and compiling it.
type (
	DraftGraph = draftgraph.DraftGraph
	Block      = draftgraph.Block
	Edge       = draftgraph.Edge
	PortRef    = draftgraph.PortRef
)

// Registry re-exports the block registry type. Use NewRegistry to
// build one with the demonstration catalog pre-registered, or
// registry.New() plus your own registrations for a bespoke one.
type Registry = registry.Registry

// NewRegistry creates a registry with the built-in demonstration
// block catalog (§12) already registered.
func NewRegistry() (*Registry, error) {
	reg := registry.New()
	if err := blocks.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Options configures one Compile call.
type Options struct {
	// MaxIterations bounds the fixpoint loop; zero uses
	// fixpoint.DefaultMaxIterations.
	MaxIterations int
	// Trace enables a tracing span per fixpoint iteration in addition
	// to the one root span every Compile call gets.
	Trace bool
	// Observer receives breadcrumbs for each iteration, obligation
	// batch, and terminal outcome. Defaults to a no-op.
	Observer observability.CompileObserver
}

// DiagnosticSeverity classifies how serious a Diagnostic is.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// Diagnostic is one surfaced problem: a blocked obligation, a solver
// error, or the compile failing to converge at all.
type Diagnostic struct {
	Severity DiagnosticSeverity
	Code     string
	Message  string
	EdgeID   string
	Port     PortRef
}

// CompileResult is what a converged, strictly typed compile hands to
// a downstream lowering consumer.
type CompileResult struct {
	Draft      DraftGraph
	PortTypes  map[string]typesystem.CanonicalType
	Program    *ir.Program
	Iterations int
}

// Compile runs the full extract/solve/elaborate/lower pipeline to a
// fixpoint and, if it reaches a strictly typed graph, lowers it.
// A non-nil CompileResult is only ever returned alongside a
// diagnostics slice containing no Severity: SeverityError entries;
// a failed or non-converged compile returns a nil result and at
// least one error diagnostic explaining why.
func Compile(ctx context.Context, draft DraftGraph, reg *Registry, opts Options) (*CompileResult, []Diagnostic) {
	vars := inference.NewVarTable(inference.NewMinter())
	policies := obligations.NewRegistry(obligations.AdaptersV1(), obligations.DefaultSourcesV1(), obligations.PayloadAnchorV1())

	outcome, err := fixpoint.Run(ctx, draft, reg, vars, policies, fixpoint.Options{
		MaxIterations: opts.MaxIterations,
		Trace:         opts.Trace,
		Observer:      opts.Observer,
	})
	if err != nil {
		return nil, []Diagnostic{{Severity: SeverityError, Code: "InternalError", Message: err.Error()}}
	}

	diags := diagnosticsFromOutcome(outcome)
	if !outcome.LoopConverged {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     "NonConvergence",
			Message:  "fixpoint did not converge within the iteration bound",
		})
		return nil, diags
	}
	if outcome.Strict == nil {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     "IncompleteGraph",
			Message:  "the graph converged but at least one port never resolved to a concrete type",
		})
		return nil, diags
	}
	for _, d := range diags {
		if d.Severity == SeverityError {
			return nil, diags
		}
	}

	program, err := ir.LowerGraph(outcome.Strict.Draft, outcome.Strict.PortTypes, reg)
	if err != nil {
		diags = append(diags, Diagnostic{Severity: SeverityError, Code: "LoweringFailed", Message: err.Error()})
		return nil, diags
	}

	return &CompileResult{
		Draft:      outcome.Strict.Draft,
		PortTypes:  outcome.Strict.PortTypes,
		Program:    program,
		Iterations: outcome.Iterations,
	}, diags
}

func diagnosticsFromOutcome(outcome fixpoint.Outcome) []Diagnostic {
	var diags []Diagnostic
	for _, id := range sortedObligationIDs(outcome.Draft) {
		ob := outcome.Draft.Obligations[id]
		if ob.Status != draftgraph.ObligationBlocked {
			continue
		}
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     "BlockedObligation:" + ob.PolicyName,
			Message:  ob.Diagnostic,
			EdgeID:   ob.Subject.EdgeID,
			Port:     ob.Subject.Port,
		})
	}
	for _, e := range outcome.SolverErrors {
		severity := SeverityError
		if e.Classification == solver.Unresolved {
			severity = SeverityWarning
		}
		diags = append(diags, Diagnostic{
			Severity: severity,
			Code:     string(e.Kind),
			Message:  e.Node + ": " + e.Detail,
		})
	}
	return diags
}

func sortedObligationIDs(draft draftgraph.DraftGraph) []string {
	ids := make([]string, 0, len(draft.Obligations))
	for id := range draft.Obligations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
