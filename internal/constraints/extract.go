// Package constraints walks a draft graph and its block definitions
// to emit the PayloadUnitConstraints the solver consumes, plus a
// portBaseType table recording each port's pre-substitution inference
// type for later fact derivation.
package constraints

import (
	"fmt"
	"sort"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/solver"
)

// Extraction is constraint extraction's output: the raw constraints
// plus the base inference type recorded for every port, before any
// substitution is applied.
type Extraction struct {
	Constraints   []solver.Constraint
	PortBaseTypes map[string]inference.InferenceCanonicalType
	CountByOrigin map[string]int
}

// Extract walks every block in g and every edge, alpha-renaming
// block-local variables through vars, and returns the full constraint
// set.
func Extract(g draftgraph.DraftGraph, reg *registry.Registry, vars *inference.VarTable) (Extraction, error) {
	ex := Extraction{
		PortBaseTypes: make(map[string]inference.InferenceCanonicalType),
		CountByOrigin: make(map[string]int),
	}

	blockIDs := make([]string, 0, len(g.Blocks))
	for id := range g.Blocks {
		blockIDs = append(blockIDs, id)
	}
	sort.Strings(blockIDs)

	for _, blockID := range blockIDs {
		block := g.Blocks[blockID]
		def, err := reg.RequireBlockDef(block.Type)
		if err != nil {
			return ex, fmt.Errorf("constraints: block %q: %w", blockID, err)
		}
		ex.extractBlock(block, def, vars)
	}

	edgeIDs := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)

	for _, edgeID := range edgeIDs {
		e := g.Edges[edgeID]
		origin := "edge:" + e.ID
		srcNode := e.From.Key()
		tgtNode := e.To.Key()
		ex.add(solver.PayloadEq(solver.PayloadPortNode(srcNode), solver.PayloadPortNode(tgtNode), origin), origin)
		ex.add(solver.UnitEq(solver.UnitPortNode(srcNode), solver.UnitPortNode(tgtNode), origin), origin)
	}

	return ex, nil
}

func (ex *Extraction) add(c solver.Constraint, origin string) {
	ex.Constraints = append(ex.Constraints, c)
	ex.CountByOrigin[solver.OriginKind(origin)]++
}

func (ex *Extraction) extractBlock(block draftgraph.Block, def registry.BlockDefinition, vars *inference.VarTable) {
	portTypes := make(map[string]inference.InferenceCanonicalType, len(def.Inputs)+len(def.Outputs))

	for portID, in := range def.Inputs {
		portTypes[portID] = alphaRename(block.ID, in.Type, vars)
	}
	for portID, out := range def.Outputs {
		portTypes[portID] = alphaRename(block.ID, out.Type, vars)
	}

	portIDs := make([]string, 0, len(portTypes))
	for portID := range portTypes {
		portIDs = append(portIDs, portID)
	}
	sort.Strings(portIDs)

	for _, portID := range portIDs {
		t := portTypes[portID]
		portKey := draftgraph.PortRef{BlockID: block.ID, PortID: portID}.Key()
		ex.PortBaseTypes[portKey] = t

		if !t.Payload.IsVar() {
			ex.add(solver.ConcretePayload(solver.PayloadPortNode(portKey), t.Payload.Concrete, "portDef:"+portKey), "portDef:"+portKey)
		}
		if !t.Unit.IsVar() {
			ex.add(solver.ConcreteUnit(solver.UnitPortNode(portKey), t.Unit.Concrete, "portDef:"+portKey), "portDef:"+portKey)
		}
	}

	if def.PayloadMetadata != nil {
		for portID, allowed := range def.PayloadMetadata.AllowedPayloads {
			portKey := draftgraph.PortRef{BlockID: block.ID, PortID: portID}.Key()
			origin := fmt.Sprintf("payloadMetadata:%s:%s", block.ID, portID)
			ex.add(solver.RequirePayloadIn(solver.PayloadPortNode(portKey), allowed, origin), origin)
		}
		for portID, required := range def.PayloadMetadata.RequireUnitless {
			if !required {
				continue
			}
			portKey := draftgraph.PortRef{BlockID: block.ID, PortID: portID}.Key()
			origin := "blockRule:" + block.ID
			ex.add(solver.RequireUnitless(solver.UnitPortNode(portKey), origin), origin)
		}
	}

	groupBySharedVar(block.ID, portTypes, ex)
}

// groupBySharedVar emits payloadEq/unitEq among ports that share the
// same (alpha-renamed) payload or unit variable within one block
// instance.
func groupBySharedVar(blockID string, portTypes map[string]inference.InferenceCanonicalType, ex *Extraction) {
	byPayloadVar := make(map[inference.VarID][]string)
	byUnitVar := make(map[inference.VarID][]string)
	for portID, t := range portTypes {
		if t.Payload.IsVar() {
			byPayloadVar[t.Payload.Var] = append(byPayloadVar[t.Payload.Var], portID)
		}
		if t.Unit.IsVar() {
			byUnitVar[t.Unit.Var] = append(byUnitVar[t.Unit.Var], portID)
		}
	}
	origin := "blockRule:samePayloadVar:" + blockID

	for _, ports := range byPayloadVar {
		sort.Strings(ports)
		for i := 1; i < len(ports); i++ {
			a := draftgraph.PortRef{BlockID: blockID, PortID: ports[0]}.Key()
			b := draftgraph.PortRef{BlockID: blockID, PortID: ports[i]}.Key()
			ex.add(solver.PayloadEq(solver.PayloadPortNode(a), solver.PayloadPortNode(b), origin), origin)
		}
	}
	for _, ports := range byUnitVar {
		sort.Strings(ports)
		for i := 1; i < len(ports); i++ {
			a := draftgraph.PortRef{BlockID: blockID, PortID: ports[0]}.Key()
			b := draftgraph.PortRef{BlockID: blockID, PortID: ports[i]}.Key()
			ex.add(solver.UnitEq(solver.UnitPortNode(a), solver.UnitPortNode(b), origin), origin)
		}
	}
}

func alphaRename(blockID string, t inference.InferenceCanonicalType, vars *inference.VarTable) inference.InferenceCanonicalType {
	out := t
	if t.Payload.IsVar() {
		name := inference.AlphaRename(blockID, fmt.Sprintf("payload:%d", t.Payload.Var))
		out.Payload = inference.VarPayload(vars.Resolve(name))
	}
	if t.Unit.IsVar() {
		name := inference.AlphaRename(blockID, fmt.Sprintf("unit:%d", t.Unit.Var))
		out.Unit = inference.VarUnit(vars.Resolve(name))
	}
	return out
}
