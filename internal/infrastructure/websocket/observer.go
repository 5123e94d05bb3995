package websocket

import (
	"github.com/flowgraph/core/internal/observability"
)

// Ensure SocketObserver implements observability.CompileObserver
var _ observability.CompileObserver = (*SocketObserver)(nil)

// SocketObserver implements observability.CompileObserver and broadcasts
// fixpoint-loop progress for one compile run to WebSocket clients watching
// its graph or its compile ID.
type SocketObserver struct {
	hub       Broadcaster
	graphID   string
	compileID string
}

// NewSocketObserver creates a SocketObserver scoped to one compile run.
func NewSocketObserver(hub Broadcaster, graphID, compileID string) *SocketObserver {
	return &SocketObserver{hub: hub, graphID: graphID, compileID: compileID}
}

func (so *SocketObserver) OnIterationStart(iteration, openObligations int) {
	event := NewWSEvent(EventIterationProgress, so.graphID, so.compileID)
	event.Iteration = iteration
	event.OpenObligations = openObligations
	so.hub.Broadcast("", so.graphID, so.compileID, event)
}

func (so *SocketObserver) OnObligationsDerived(iteration, derived, total int) {
	event := NewWSEvent(EventObligationsDerived, so.graphID, so.compileID)
	event.Iteration = iteration
	event.NewObligations = derived
	event.TotalObligations = total
	so.hub.Broadcast("", so.graphID, so.compileID, event)
}

func (so *SocketObserver) OnPlansApplied(iteration, applied, blocked int) {
	event := NewWSEvent(EventPlansApplied, so.graphID, so.compileID)
	event.Iteration = iteration
	event.PlansApplied = applied
	event.PlansBlocked = blocked
	so.hub.Broadcast("", so.graphID, so.compileID, event)
}

func (so *SocketObserver) OnConverged(iteration int) {
	event := NewWSEvent(EventCompileConverged, so.graphID, so.compileID)
	event.Iteration = iteration
	event.Converged = true
	so.hub.Broadcast("", so.graphID, so.compileID, event)
}

func (so *SocketObserver) OnNonConvergence(maxIterations, openObligations int) {
	event := NewWSEvent(EventCompileFailed, so.graphID, so.compileID)
	event.MaxIterations = maxIterations
	event.OpenObligations = openObligations
	so.hub.Broadcast("", so.graphID, so.compileID, event)
}
