package solver

import (
	"fmt"

	"github.com/flowgraph/core/internal/inference"
)

// PayloadPortNode builds the payload-domain node id for a port, keyed
// by a caller-supplied portKey (typically "{blockId}:{portId}").
func PayloadPortNode(portKey string) string {
	return "payload:port:" + portKey
}

// PayloadVarNode builds the payload-domain node id for an inference
// variable. Variable ids are already globally unique per compile (see
// inference.VarTable), so no block id needs folding in here.
func PayloadVarNode(v inference.VarID) string {
	return fmt.Sprintf("payload:var:%d", v)
}

// UnitPortNode builds the unit-domain node id for a port.
func UnitPortNode(portKey string) string {
	return "unit:port:" + portKey
}

// UnitVarNode builds the unit-domain node id for an inference variable.
func UnitVarNode(v inference.VarID) string {
	return fmt.Sprintf("unit:var:%d", v)
}
