package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// fieldMapDef applies a per-element transform to a field, preserving
// whichever instance domain the upstream field actually carries
// (read off the wired value expression rather than the
// BlockDefinition's static declared type, since that declared type
// can't know which Array instance will ever feed it).
func fieldMapDef() registry.BlockDefinition {
	return registry.BlockDefinition{
		Type:           "FieldMap",
		Category:       "cardinality",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Cardinality:    registry.CardinalityPolicy{Mode: registry.CardinalityModePreserve},
		Inputs: map[string]registry.InputDef{
			"in": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		Outputs: map[string]registry.OutputDef{
			"out": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		PayloadMetadata: &registry.PayloadMetadata{
			AllowedPayloads: map[string][]typesystem.PayloadType{"in": polymorphicPayloads, "out": polymorphicPayloads},
		},
		Lower: fieldMapLower,
	}
}

func fieldMapLower(ctx *ir.Ctx, inputs map[string]ir.ValueExprID, config map[string]any) (ir.LowerResult, error) {
	inID := inputs["in"]
	inType := ctx.B.Exprs()[inID].Type
	fn, _ := config["fn"].(string)
	if fn == "" {
		fn = "identity"
	}
	id := ir.MapAuto(ctx.B, inID, fn, inType)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"out": {ID: id, Type: inType, Stride: inType.Stride()},
		},
	}, nil
}
