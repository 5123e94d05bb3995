package ir

import "github.com/flowgraph/core/internal/typesystem"

// Ctx is passed to every block's lower procedure.
type Ctx struct {
	B                *Builder
	OutTypes         []typesystem.CanonicalType
	InstanceID       string
	InferredInstance *typesystem.InstanceRef
	AddressRegistry  map[string]ValueExprID
}

// LowerFunc is the declarative lowering procedure a BlockDefinition
// carries: given the per-block context, the resolved input value
// expressions keyed by port id, and the block's free-form config, it
// produces the block's output expressions and any side-effect
// requests.
type LowerFunc func(ctx *Ctx, inputsByID map[string]ValueExprID, config map[string]any) (LowerResult, error)
