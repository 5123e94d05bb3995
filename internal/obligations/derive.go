package obligations

import (
	"fmt"
	"sort"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/facts"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/solver"
	"github.com/flowgraph/core/internal/typesystem"
)

// Derive scans the draft graph against the latest solver result and
// type facts and returns every obligation the three built-in policies'
// trigger conditions currently justify, in deterministic (sorted) id
// order. The fixpoint driver deduplicates the result against
// already-open-or-discharged obligations by id before merging it in.
func Derive(g draftgraph.DraftGraph, reg *registry.Registry, hints map[string]facts.PortTypeHint, result solver.Result) []draftgraph.Obligation {
	var out []draftgraph.Obligation
	out = append(out, deriveAdapterObligations(g, hints)...)
	out = append(out, deriveDefaultSourceObligations(g, reg)...)
	out = append(out, derivePayloadAnchorObligations(g, result)...)

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func deriveAdapterObligations(g draftgraph.DraftGraph, hints map[string]facts.PortTypeHint) []draftgraph.Obligation {
	var out []draftgraph.Obligation
	for _, edgeID := range sortedEdgeIDs(g) {
		e := g.Edges[edgeID]
		srcHint, srcOK := hints[e.From.Key()]
		tgtHint, tgtOK := hints[e.To.Key()]
		if !srcOK || !tgtOK || !srcHint.OK || !tgtHint.OK {
			continue
		}
		if typesystem.TypesEqual(srcHint.Canonical, tgtHint.Canonical) {
			continue
		}
		subject := draftgraph.ObligationSubject{Kind: draftgraph.SubjectEdge, EdgeID: e.ID}
		sig := fmt.Sprintf("%s/%s>%s/%s", srcHint.Canonical.Payload, srcHint.Canonical.Unit.Kind, tgtHint.Canonical.Payload, tgtHint.Canonical.Unit.Kind)
		out = append(out, draftgraph.Obligation{
			ID:         ContentIDWithTypes(AdaptersV1Name, subject, sig),
			PolicyName: AdaptersV1Name,
			Subject:    subject,
			Dependencies: []facts.FactDependency{
				{PortKey: e.From.Key(), Level: facts.PortCanonicalizable},
				{PortKey: e.To.Key(), Level: facts.PortCanonicalizable},
			},
			Status: draftgraph.ObligationOpen,
		})
	}
	return out
}

func deriveDefaultSourceObligations(g draftgraph.DraftGraph, reg *registry.Registry) []draftgraph.Obligation {
	var out []draftgraph.Obligation
	for _, blockID := range sortedBlockIDs(g) {
		block := g.Blocks[blockID]
		def, ok := reg.Get(block.Type)
		if !ok {
			continue
		}
		portIDs := make([]string, 0, len(def.Inputs))
		for portID := range def.Inputs {
			portIDs = append(portIDs, portID)
		}
		sort.Strings(portIDs)
		for _, portID := range portIDs {
			port := draftgraph.PortRef{BlockID: blockID, PortID: portID}
			if len(g.EdgesIntoPort(port)) > 0 {
				continue
			}
			if resolveDefaultSource(block, portID, reg) == nil {
				continue
			}
			subject := draftgraph.ObligationSubject{Kind: draftgraph.SubjectPort, Port: port}
			out = append(out, draftgraph.Obligation{
				ID:         ContentID(DefaultSourcesV1Name, subject),
				PolicyName: DefaultSourcesV1Name,
				Subject:    subject,
				Status:     draftgraph.ObligationOpen,
			})
		}
	}
	return out
}

// derivePayloadAnchorObligations groups the solver's defaulted-payload
// ports into connected chains (via the edges joining them, and through
// any block that has defaulted ports on more than one such edge) and
// emits one obligation per chain, anchored on the lexicographically
// smallest edge id in that chain so the choice is deterministic.
func derivePayloadAnchorObligations(g draftgraph.DraftGraph, result solver.Result) []draftgraph.Obligation {
	if len(result.DefaultedPayloadPorts) == 0 {
		return nil
	}

	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	var candidateEdgeIDs []string
	for _, edgeID := range sortedEdgeIDs(g) {
		e := g.Edges[edgeID]
		from, to := e.From.Key(), e.To.Key()
		if !result.DefaultedPayloadPorts[from] || !result.DefaultedPayloadPorts[to] {
			continue
		}
		if _, ok := parent[from]; !ok {
			parent[from] = from
		}
		if _, ok := parent[to]; !ok {
			parent[to] = to
		}
		union(from, to)
		candidateEdgeIDs = append(candidateEdgeIDs, edgeID)
	}

	firstPortByBlock := make(map[string]string)
	for _, edgeID := range candidateEdgeIDs {
		e := g.Edges[edgeID]
		for _, p := range []draftgraph.PortRef{e.From, e.To} {
			if first, ok := firstPortByBlock[p.BlockID]; ok {
				union(first, p.Key())
			} else {
				firstPortByBlock[p.BlockID] = p.Key()
			}
		}
	}

	anchorByRoot := make(map[string]string)
	for _, edgeID := range candidateEdgeIDs {
		e := g.Edges[edgeID]
		root := find(e.From.Key())
		if existing, ok := anchorByRoot[root]; !ok || edgeID < existing {
			anchorByRoot[root] = edgeID
		}
	}

	roots := make([]string, 0, len(anchorByRoot))
	for root := range anchorByRoot {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	var out []draftgraph.Obligation
	for _, root := range roots {
		edgeID := anchorByRoot[root]
		subject := draftgraph.ObligationSubject{Kind: draftgraph.SubjectEdge, EdgeID: edgeID}
		out = append(out, draftgraph.Obligation{
			ID:         ContentID(PayloadAnchorV1Name, subject),
			PolicyName: PayloadAnchorV1Name,
			Subject:    subject,
			Status:     draftgraph.ObligationOpen,
		})
	}
	return out
}

func sortedEdgeIDs(g draftgraph.DraftGraph) []string {
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedBlockIDs(g draftgraph.DraftGraph) []string {
	ids := make([]string, 0, len(g.Blocks))
	for id := range g.Blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
