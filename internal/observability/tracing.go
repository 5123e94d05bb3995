package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this module's spans in whatever exporter a
// caller wires up. No exporter is configured here: otel.Tracer returns
// a no-op tracer until the embedding process calls
// otel.SetTracerProvider itself, the same "bring your own provider"
// posture this codebase's tracing package sets up explicitly for HTTP
// workflows.
const tracerName = "github.com/flowgraph/core/compiler"

// StartCompileSpan opens the root span around one Compile call.
func StartCompileSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "compile")
}

// StartIterationSpan opens a child span for one fixpoint iteration,
// only meaningful when Options.Trace is set — callers skip this
// otherwise to avoid the per-iteration span overhead on the hot path.
func StartIterationSpan(ctx context.Context, iteration int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "compile.iteration", trace.WithAttributes(
		attribute.Int("iteration", iteration),
	))
}

// AnnotateIterationSpan records the per-iteration attributes the
// fixpoint driver only knows after running the iteration's phases.
func AnnotateIterationSpan(span trace.Span, openObligations, plansApplied int) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int("open_obligations", openObligations),
		attribute.Int("plans_applied", plansApplied),
	)
}
