package blocks

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// ellipseDef stands in for the real shape catalog's camera-projection
// producers: a zero-input signal carrying an NDC-space vec2, enough
// to exercise a field-broadcast scenario downstream without pulling
// in the full shape/topology system.
func ellipseDef() registry.BlockDefinition {
	shapeType := mustCanonical(typesystem.PayloadVec2, unitPtr(typesystem.SpaceUnitOf(typesystem.SpaceNDC, 2)), nil, typesystem.ContractNone)
	return registry.BlockDefinition{
		Type:           "Ellipse",
		Category:       "shape",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Outputs: map[string]registry.OutputDef{
			"shape": {PortDef: registry.PortDef{Type: inference.Concrete(shapeType)}},
		},
		Lower: ellipseLower,
	}
}

func ellipseLower(ctx *ir.Ctx, _ map[string]ir.ValueExprID, config map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id := ctx.B.ShapeRef("ellipse", config, outType, nil)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"shape": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
