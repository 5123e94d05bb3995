package websocket

import (
	"sync"
	"testing"

	"github.com/flowgraph/core/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster is a mock implementation of the Broadcaster interface
type mockBroadcaster struct {
	mu         sync.Mutex
	events     []*WSEvent
	userIDs    []string
	graphIDs   []string
	compileIDs []string
	received   chan *WSEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		events:     make([]*WSEvent, 0),
		userIDs:    make([]string, 0),
		graphIDs:   make([]string, 0),
		compileIDs: make([]string, 0),
		received:   make(chan *WSEvent, 100),
	}
}

func (m *mockBroadcaster) Broadcast(userID, graphID, compileID string, event *WSEvent) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.userIDs = append(m.userIDs, userID)
	m.graphIDs = append(m.graphIDs, graphID)
	m.compileIDs = append(m.compileIDs, compileID)
	m.mu.Unlock()

	select {
	case m.received <- event:
	default:
	}
}

func (m *mockBroadcaster) lastEvent() *WSEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func (m *mockBroadcaster) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestSocketObserver_ImplementsInterface(t *testing.T) {
	var _ observability.CompileObserver = (*SocketObserver)(nil)
}

func TestNewSocketObserver(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-1", "c-1")

	assert.NotNil(t, observer)
	assert.Equal(t, broadcaster, observer.hub)
	assert.Equal(t, "g-1", observer.graphID)
	assert.Equal(t, "c-1", observer.compileID)
}

func TestSocketObserver_OnIterationStart(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnIterationStart(2, 5)

	event := broadcaster.lastEvent()
	require.NotNil(t, event)

	assert.Equal(t, EventIterationProgress, event.Type)
	assert.Equal(t, "g-123", event.GraphID)
	assert.Equal(t, "c-456", event.CompileID)
	assert.Equal(t, 2, event.Iteration)
	assert.Equal(t, 5, event.OpenObligations)
}

func TestSocketObserver_OnObligationsDerived(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnObligationsDerived(1, 3, 7)

	event := broadcaster.lastEvent()
	require.NotNil(t, event)

	assert.Equal(t, EventObligationsDerived, event.Type)
	assert.Equal(t, 1, event.Iteration)
	assert.Equal(t, 3, event.NewObligations)
	assert.Equal(t, 7, event.TotalObligations)
}

func TestSocketObserver_OnPlansApplied(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnPlansApplied(1, 2, 1)

	event := broadcaster.lastEvent()
	require.NotNil(t, event)

	assert.Equal(t, EventPlansApplied, event.Type)
	assert.Equal(t, 2, event.PlansApplied)
	assert.Equal(t, 1, event.PlansBlocked)
}

func TestSocketObserver_OnConverged(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnConverged(4)

	event := broadcaster.lastEvent()
	require.NotNil(t, event)

	assert.Equal(t, EventCompileConverged, event.Type)
	assert.Equal(t, 4, event.Iteration)
	assert.True(t, event.Converged)
}

func TestSocketObserver_OnNonConvergence(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnNonConvergence(32, 6)

	event := broadcaster.lastEvent()
	require.NotNil(t, event)

	assert.Equal(t, EventCompileFailed, event.Type)
	assert.Equal(t, 32, event.MaxIterations)
	assert.Equal(t, 6, event.OpenObligations)
}

func TestSocketObserver_BroadcastParameters(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-123", "c-456")

	observer.OnIterationStart(0, 0)

	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()

	require.Len(t, broadcaster.userIDs, 1)
	require.Len(t, broadcaster.graphIDs, 1)
	require.Len(t, broadcaster.compileIDs, 1)

	assert.Empty(t, broadcaster.userIDs[0])
	assert.Equal(t, "g-123", broadcaster.graphIDs[0])
	assert.Equal(t, "c-456", broadcaster.compileIDs[0])
}

func TestSocketObserver_FullIterationSequence(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g-1", "c-1")

	observer.OnIterationStart(0, 2)
	observer.OnObligationsDerived(0, 2, 2)
	observer.OnPlansApplied(0, 1, 0)
	observer.OnConverged(1)

	assert.Equal(t, 4, broadcaster.eventCount())

	broadcaster.mu.Lock()
	events := broadcaster.events
	broadcaster.mu.Unlock()

	assert.Equal(t, EventIterationProgress, events[0].Type)
	assert.Equal(t, EventObligationsDerived, events[1].Type)
	assert.Equal(t, EventPlansApplied, events[2].Type)
	assert.Equal(t, EventCompileConverged, events[3].Type)
}

func TestSocketObserver_ConcurrentBroadcasts(t *testing.T) {
	broadcaster := newMockBroadcaster()
	observer := NewSocketObserver(broadcaster, "g", "c")

	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				observer.OnIterationStart(idx, j)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, numGoroutines*eventsPerGoroutine, broadcaster.eventCount())
}
