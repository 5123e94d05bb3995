package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// arrayDef turns one signal into a field over a fresh per-instance
// domain, count elements wide. The field's instance identity is
// minted at lowering time from the block's own id (ctx.InstanceID),
// never declared statically on the BlockDefinition, since every Array
// instance in a graph must own a distinct domain.
func arrayDef() registry.BlockDefinition {
	return registry.BlockDefinition{
		Type:           "Array",
		Category:       "cardinality",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Cardinality:    registry.CardinalityPolicy{Mode: registry.CardinalityModeTransform},
		Inputs: map[string]registry.InputDef{
			"in": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		Outputs: map[string]registry.OutputDef{
			"out": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		PayloadMetadata: &registry.PayloadMetadata{
			AllowedPayloads: map[string][]typesystem.PayloadType{"in": polymorphicPayloads, "out": polymorphicPayloads},
		},
		Lower: arrayLower,
	}
}

func arrayLower(ctx *ir.Ctx, inputs map[string]ir.ValueExprID, config map[string]any) (ir.LowerResult, error) {
	count, _ := config["count"].(int)
	if count <= 0 {
		count = 1
	}
	inst := typesystem.InstanceRef{DomainTypeID: "array", InstanceID: ctx.InstanceID}
	outType := ctx.OutTypes[0]
	outType.Extent.Cardinality = typesystem.InstantiatedCardinality(typesystem.CardinalityMany, inst)
	id := ctx.B.ShapeRef("array", map[string]any{"count": count, "seed": inputs["in"]}, outType, nil)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"out": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
