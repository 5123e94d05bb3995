// Package observability carries the fixpoint-loop breadcrumb observer,
// the compile-level OpenTelemetry span helpers, and the zerolog
// wiring every package-level entry point logs through.
package observability

// CompileObserver is the fixpoint-loop analogue of this codebase's
// execution-event observer (internal/infrastructure/monitoring's
// ExecutionObserver): one method per breadcrumb the driver emits.
// Implementations must be safe for the driver to call synchronously,
// once per event, in iteration order.
type CompileObserver interface {
	OnIterationStart(iteration int, openObligations int)
	OnObligationsDerived(iteration int, derived int, total int)
	OnPlansApplied(iteration int, applied int, blocked int)
	OnConverged(iteration int)
	OnNonConvergence(iteration int, openObligations int)
}

// NullObserver discards every breadcrumb. It is the default when a
// caller doesn't supply one.
type NullObserver struct{}

func (NullObserver) OnIterationStart(iteration int, openObligations int)          {}
func (NullObserver) OnObligationsDerived(iteration int, derived int, total int)    {}
func (NullObserver) OnPlansApplied(iteration int, applied int, blocked int)        {}
func (NullObserver) OnConverged(iteration int)                                    {}
func (NullObserver) OnNonConvergence(iteration int, openObligations int)          {}
