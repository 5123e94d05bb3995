package ir

import (
	"fmt"
	"sort"
)

// DependencyGraph is the block-dependency DAG lowering walks: an edge
// from→to means "from must be lowered before to" (to reads one of
// from's outputs). Adapted from this codebase's engine graph, which
// uses the same Kahn's-algorithm shape over a smaller NodeRef/EdgeRef
// pair; the nodes here are block ids instead.
type DependencyGraph struct {
	nodes map[string]struct{}
	out   map[string][]string
	in    map[string][]string
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]struct{}),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
}

func (g *DependencyGraph) AddNode(blockID string) {
	g.nodes[blockID] = struct{}{}
}

func (g *DependencyGraph) AddEdge(from, to string) {
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// TopologicalOrder returns a lowering order for every node, breaking
// ties between simultaneously-ready nodes by ascending block id so the
// result is fully deterministic regardless of insertion order. It
// fails if the graph has a cycle.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	indeg := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indeg[id] = 0
	}
	for to, froms := range g.in {
		indeg[to] = len(froms)
	}

	ready := make([]string, 0)
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var newlyReady []string
		for _, m := range g.out[n] {
			indeg[m]--
			if indeg[m] == 0 {
				newlyReady = append(newlyReady, m)
			}
		}
		if len(newlyReady) > 0 {
			ready = append(ready, newlyReady...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("ir: dependency graph has a cycle (%d/%d nodes ordered)", len(order), len(g.nodes))
	}
	return order, nil
}
