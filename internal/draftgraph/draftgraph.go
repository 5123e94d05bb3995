// Package draftgraph is the mutable-from-the-user's-perspective
// authoring model: blocks, edges and pending obligations. Every
// mutation returns a fresh DraftGraph value rather than mutating in
// place, the same "aggregate owns its children, mutation yields a new
// state" discipline this codebase's workflow aggregate follows,
// generalized from copy-in-place to copy-on-write because the
// normalization fixpoint needs to keep the pre-mutation draft around
// for diagnosing non-convergence.
package draftgraph

import (
	"fmt"

	"github.com/flowgraph/core/internal/facts"
	"github.com/flowgraph/core/internal/registry"
)

// PortRef identifies one port of one block.
type PortRef struct {
	BlockID string
	PortID  string
}

// Key returns the "{blockId}:{portId}" string used as a port's node
// key across constraint extraction and the solver.
func (p PortRef) Key() string {
	return p.BlockID + ":" + p.PortID
}

// InputPortConfig is a block's per-instance override for one input
// port: a default-source override, the combine mode for multi-edges,
// and any attached lenses (free-form transform names applied before
// combining).
type InputPortConfig struct {
	DefaultSourceOverride *registry.DefaultSource
	Combine               registry.CombineMode
	Lenses                []string
}

// Block is one node of the draft graph.
type Block struct {
	ID          string
	Type        string
	DisplayName string
	InputConfig map[string]InputPortConfig
	Params      map[string]any
}

// Edge connects one output port to one input port. SortKey totally
// orders multiple edges landing on the same input port.
type Edge struct {
	ID      string
	From    PortRef
	To      PortRef
	SortKey int
}

// ObligationStatus is the lifecycle state of a pending elaboration task.
type ObligationStatus string

const (
	ObligationOpen        ObligationStatus = "open"
	ObligationDischarged  ObligationStatus = "discharged"
	ObligationBlocked     ObligationStatus = "blocked"
)

// Obligation is a pending elaboration task gated on facts about one or
// more ports reaching a given resolution level.
type Obligation struct {
	ID           string
	PolicyName   string
	Subject      ObligationSubject
	Dependencies []facts.FactDependency
	Status       ObligationStatus
	Diagnostic   string
}

// ObligationSubjectKind discriminates what an obligation is about.
type ObligationSubjectKind string

const (
	SubjectEdge     ObligationSubjectKind = "edge"
	SubjectPort     ObligationSubjectKind = "port"
)

// ObligationSubject identifies what needs to change: an edge needing
// an adapter spliced in, or a port needing a default source.
type ObligationSubject struct {
	Kind   ObligationSubjectKind
	EdgeID string
	Port   PortRef
}

// DraftGraph is the immutable authoring tuple (blocks, edges,
// obligations). The zero value is an empty, usable graph.
type DraftGraph struct {
	Blocks      map[string]Block
	Edges       map[string]Edge
	Obligations map[string]Obligation
}

// New creates an empty draft graph.
func New() DraftGraph {
	return DraftGraph{
		Blocks:      make(map[string]Block),
		Edges:       make(map[string]Edge),
		Obligations: make(map[string]Obligation),
	}
}

func (g DraftGraph) clone() DraftGraph {
	blocks := make(map[string]Block, len(g.Blocks))
	for k, v := range g.Blocks {
		blocks[k] = v
	}
	edges := make(map[string]Edge, len(g.Edges))
	for k, v := range g.Edges {
		edges[k] = v
	}
	obligations := make(map[string]Obligation, len(g.Obligations))
	for k, v := range g.Obligations {
		obligations[k] = v
	}
	return DraftGraph{Blocks: blocks, Edges: edges, Obligations: obligations}
}

// WithBlock returns a copy of g with b inserted or replaced.
func (g DraftGraph) WithBlock(b Block) DraftGraph {
	out := g.clone()
	out.Blocks[b.ID] = b
	return out
}

// WithoutBlock returns a copy of g with the named block, and every
// edge touching it, removed.
func (g DraftGraph) WithoutBlock(blockID string) DraftGraph {
	out := g.clone()
	delete(out.Blocks, blockID)
	for id, e := range out.Edges {
		if e.From.BlockID == blockID || e.To.BlockID == blockID {
			delete(out.Edges, id)
		}
	}
	return out
}

// AddEdge returns a copy of g with a new edge from->to inserted under
// id, failing if either endpoint's block doesn't exist.
func (g DraftGraph) AddEdge(id string, from, to PortRef, sortKey int) (DraftGraph, error) {
	if _, ok := g.Blocks[from.BlockID]; !ok {
		return g, fmt.Errorf("draftgraph: addEdge: source block %q does not exist", from.BlockID)
	}
	if _, ok := g.Blocks[to.BlockID]; !ok {
		return g, fmt.Errorf("draftgraph: addEdge: target block %q does not exist", to.BlockID)
	}
	out := g.clone()
	out.Edges[id] = Edge{ID: id, From: from, To: to, SortKey: sortKey}
	return out, nil
}

// RemoveEdge returns a copy of g with edgeID removed.
func (g DraftGraph) RemoveEdge(edgeID string) DraftGraph {
	out := g.clone()
	delete(out.Edges, edgeID)
	return out
}

// InsertAdapterBetween splices a new block of type adapterBlockType
// onto edge, rewriting edge into two edges: original.From -> adapter,
// adapter -> original.To. The adapter's single input/output ports are
// both named "value" by convention; callers needing different port
// names should use AddEdge directly instead.
func (g DraftGraph) InsertAdapterBetween(edgeID, newBlockID, adapterBlockType string) (DraftGraph, error) {
	edge, ok := g.Edges[edgeID]
	if !ok {
		return g, fmt.Errorf("draftgraph: insertAdapterBetween: edge %q does not exist", edgeID)
	}
	out := g.clone()
	out.Blocks[newBlockID] = Block{ID: newBlockID, Type: adapterBlockType, InputConfig: make(map[string]InputPortConfig)}
	delete(out.Edges, edgeID)
	out.Edges[edgeID+":in"] = Edge{ID: edgeID + ":in", From: edge.From, To: PortRef{BlockID: newBlockID, PortID: "value"}, SortKey: edge.SortKey}
	out.Edges[edgeID+":out"] = Edge{ID: edgeID + ":out", From: PortRef{BlockID: newBlockID, PortID: "value"}, To: edge.To, SortKey: edge.SortKey}
	return out, nil
}

// AttachDefaultSource returns a copy of g with port's declared default
// source overridden to source.
func (g DraftGraph) AttachDefaultSource(port PortRef, source registry.DefaultSource) (DraftGraph, error) {
	block, ok := g.Blocks[port.BlockID]
	if !ok {
		return g, fmt.Errorf("draftgraph: attachDefaultSource: block %q does not exist", port.BlockID)
	}
	out := g.clone()
	b := out.Blocks[block.ID]
	if b.InputConfig == nil {
		b.InputConfig = make(map[string]InputPortConfig)
	} else {
		configCopy := make(map[string]InputPortConfig, len(b.InputConfig))
		for k, v := range b.InputConfig {
			configCopy[k] = v
		}
		b.InputConfig = configCopy
	}
	cfg := b.InputConfig[port.PortID]
	cfg.DefaultSourceOverride = &source
	b.InputConfig[port.PortID] = cfg
	out.Blocks[b.ID] = b
	return out, nil
}

// WithObligation returns a copy of g with ob inserted or replaced.
func (g DraftGraph) WithObligation(ob Obligation) DraftGraph {
	out := g.clone()
	out.Obligations[ob.ID] = ob
	return out
}

// EdgesIntoPort returns every edge landing on port, sorted by SortKey.
func (g DraftGraph) EdgesIntoPort(port PortRef) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.To == port {
			out = append(out, e)
		}
	}
	sortEdgesBySortKey(out)
	return out
}

func sortEdgesBySortKey(edges []Edge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edges[j].SortKey < edges[j-1].SortKey; j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}
