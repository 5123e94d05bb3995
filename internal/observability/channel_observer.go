package observability

// BreadcrumbKind discriminates the events ChannelObserver forwards.
type BreadcrumbKind string

const (
	BreadcrumbIterationStart     BreadcrumbKind = "iterationStart"
	BreadcrumbObligationsDerived BreadcrumbKind = "obligationsDerived"
	BreadcrumbPlansApplied       BreadcrumbKind = "plansApplied"
	BreadcrumbConverged          BreadcrumbKind = "converged"
	BreadcrumbNonConvergence     BreadcrumbKind = "nonConvergence"
)

// Breadcrumb is one fixpoint-loop event, flattened for transport over
// the WebSocket front door's compile-progress channel.
type Breadcrumb struct {
	Kind            BreadcrumbKind
	Iteration       int
	OpenObligations int
	Derived         int
	Total           int
	Applied         int
	Blocked         int
}

// ChannelObserver forwards every breadcrumb onto a channel instead of
// logging it, for a front door streaming compile progress to a
// connected editor over WebSocket. Sends are non-blocking: a full
// channel drops the breadcrumb rather than stalling the compile, since
// a client that isn't keeping up with a progress stream should see a
// late snapshot, not back-pressure the compiler.
type ChannelObserver struct {
	C chan Breadcrumb
}

// NewChannelObserver creates a ChannelObserver buffered to size.
func NewChannelObserver(size int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Breadcrumb, size)}
}

func (o *ChannelObserver) send(b Breadcrumb) {
	select {
	case o.C <- b:
	default:
	}
}

func (o *ChannelObserver) OnIterationStart(iteration int, openObligations int) {
	o.send(Breadcrumb{Kind: BreadcrumbIterationStart, Iteration: iteration, OpenObligations: openObligations})
}

func (o *ChannelObserver) OnObligationsDerived(iteration int, derived int, total int) {
	o.send(Breadcrumb{Kind: BreadcrumbObligationsDerived, Iteration: iteration, Derived: derived, Total: total})
}

func (o *ChannelObserver) OnPlansApplied(iteration int, applied int, blocked int) {
	o.send(Breadcrumb{Kind: BreadcrumbPlansApplied, Iteration: iteration, Applied: applied, Blocked: blocked})
}

func (o *ChannelObserver) OnConverged(iteration int) {
	o.send(Breadcrumb{Kind: BreadcrumbConverged, Iteration: iteration})
}

func (o *ChannelObserver) OnNonConvergence(iteration int, openObligations int) {
	o.send(Breadcrumb{Kind: BreadcrumbNonConvergence, Iteration: iteration, OpenObligations: openObligations})
}
