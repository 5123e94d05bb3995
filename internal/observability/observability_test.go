package observability

import "testing"

func TestNullObserverIsANoop(t *testing.T) {
	var o CompileObserver = NullObserver{}
	o.OnIterationStart(0, 0)
	o.OnObligationsDerived(0, 0, 0)
	o.OnPlansApplied(0, 0, 0)
	o.OnConverged(0)
	o.OnNonConvergence(0, 0)
}

func TestChannelObserverForwardsBreadcrumbs(t *testing.T) {
	o := NewChannelObserver(4)
	o.OnIterationStart(1, 3)
	o.OnConverged(2)

	b := <-o.C
	if b.Kind != BreadcrumbIterationStart || b.Iteration != 1 || b.OpenObligations != 3 {
		t.Errorf("unexpected first breadcrumb: %+v", b)
	}
	b = <-o.C
	if b.Kind != BreadcrumbConverged || b.Iteration != 2 {
		t.Errorf("unexpected second breadcrumb: %+v", b)
	}
}

func TestChannelObserverDropsWhenFull(t *testing.T) {
	o := NewChannelObserver(1)
	o.OnIterationStart(1, 0)
	o.OnIterationStart(2, 0) // dropped, channel already holds one

	if len(o.C) != 1 {
		t.Fatalf("expected exactly one buffered breadcrumb, got %d", len(o.C))
	}
	b := <-o.C
	if b.Iteration != 1 {
		t.Errorf("expected the first breadcrumb to have survived, got iteration %d", b.Iteration)
	}
}
