package ir

import (
	"fmt"
	"sort"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// Program is the whole-graph lowering result: every block's output
// port resolved to a ValueExprID, plus the accumulated side effects,
// ready for a downstream runtime to evaluate in builder order.
type Program struct {
	Builder     *Builder
	OutputExprs map[string]ValueExprID // portKey -> expr
	Effects     Effects
}

// LowerGraph walks draft's blocks in dependency order and invokes each
// block definition's Lower procedure, wiring inputs from already-
// lowered upstream outputs. portTypes supplies every port's finalized
// canonical type (typically StrictTypedGraph.PortTypes). Every
// declared input port must have at least one incoming edge by this
// point; the fixpoint driver's obligations (adapters.v1,
// defaultSources.v1) are responsible for guaranteeing that before
// lowering ever runs.
func LowerGraph(draft draftgraph.DraftGraph, portTypes map[string]typesystem.CanonicalType, reg *registry.Registry) (*Program, error) {
	b := NewBuilder()
	dep := NewDependencyGraph()
	for id := range draft.Blocks {
		dep.AddNode(id)
	}
	for _, e := range draft.Edges {
		if e.From.BlockID != e.To.BlockID {
			dep.AddEdge(e.From.BlockID, e.To.BlockID)
		}
	}
	order, err := dep.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("ir: lowerGraph: %w", err)
	}

	outputExprs := make(map[string]ValueExprID)
	var effects Effects

	for _, blockID := range order {
		block := draft.Blocks[blockID]
		def, err := reg.RequireBlockDef(block.Type)
		if err != nil {
			return nil, fmt.Errorf("ir: lowerGraph: block %q: %w", blockID, err)
		}

		inputIDs := sortedKeys(def.Inputs)
		inputsByID := make(map[string]ValueExprID, len(inputIDs))
		for _, portID := range inputIDs {
			portKey := draftgraph.PortRef{BlockID: blockID, PortID: portID}.Key()
			edges := draft.EdgesIntoPort(draftgraph.PortRef{BlockID: blockID, PortID: portID})
			if len(edges) == 0 {
				return nil, fmt.Errorf("ir: lowerGraph: block %q input %q has no incoming edge", blockID, portID)
			}
			combine := def.Inputs[portID].Combine
			if cfg, ok := block.InputConfig[portID]; ok && cfg.Combine != "" {
				combine = cfg.Combine
			}
			exprID, err := combineEdges(b, edges, outputExprs, portTypes, combine, portTypes[portKey])
			if err != nil {
				return nil, fmt.Errorf("ir: lowerGraph: block %q input %q: %w", blockID, portID, err)
			}
			inputsByID[portID] = exprID
		}

		outIDs := sortedKeys(def.Outputs)
		outTypes := make([]typesystem.CanonicalType, 0, len(outIDs))
		for _, portID := range outIDs {
			outTypes = append(outTypes, portTypes[draftgraph.PortRef{BlockID: blockID, PortID: portID}.Key()])
		}

		ctx := &Ctx{B: b, OutTypes: outTypes, InstanceID: blockID, AddressRegistry: outputExprs}
		res, err := def.Lower(ctx, inputsByID, block.Params)
		if err != nil {
			return nil, fmt.Errorf("ir: lowerGraph: block %q: lower: %w", blockID, err)
		}
		for portID, po := range res.OutputsByID {
			outputExprs[draftgraph.PortRef{BlockID: blockID, PortID: portID}.Key()] = po.ID
		}
		effects.SlotRequests = append(effects.SlotRequests, res.Effects.SlotRequests...)
		effects.StateDecls = append(effects.StateDecls, res.Effects.StateDecls...)
		effects.StepRequests = append(effects.StepRequests, res.Effects.StepRequests...)
		effects.InstanceContexts = append(effects.InstanceContexts, res.Effects.InstanceContexts...)
	}

	return &Program{Builder: b, OutputExprs: outputExprs, Effects: effects}, nil
}

// combineEdges reduces one or more edges landing on the same input
// port into a single value expression, aligning cardinality as needed
// and reducing multi-edges per combine.
func combineEdges(b *Builder, edges []draftgraph.Edge, outputExprs map[string]ValueExprID, portTypes map[string]typesystem.CanonicalType, combine registry.CombineMode, outType typesystem.CanonicalType) (ValueExprID, error) {
	sourceExpr := func(e draftgraph.Edge) (ValueExprID, typesystem.CanonicalType, error) {
		key := e.From.Key()
		id, ok := outputExprs[key]
		if !ok {
			return 0, typesystem.CanonicalType{}, fmt.Errorf("source port %q not yet lowered", key)
		}
		return id, portTypes[key], nil
	}

	if len(edges) == 1 {
		id, srcType, err := sourceExpr(edges[0])
		if err != nil {
			return 0, err
		}
		if !srcType.Extent.IsField() && outType.Extent.IsField() {
			return b.Broadcast(id, outType), nil
		}
		return id, nil
	}

	ids := make([]ValueExprID, 0, len(edges))
	types := make([]typesystem.CanonicalType, 0, len(edges))
	for _, e := range edges {
		id, srcType, err := sourceExpr(e)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
		types = append(types, srcType)
	}

	fn := string(combine)
	if fn == "" {
		fn = string(registry.CombineLast)
	}
	if fn == string(registry.CombineLast) {
		return ids[len(ids)-1], nil
	}
	if fn == string(registry.CombineFirst) {
		return ids[0], nil
	}
	return ZipAuto(b, ids, types, fn, outType)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
