package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// constDef is a zero-input literal source, polymorphic over every
// payload the catalog knows how to carry. The solver pins its payload
// and unit variables the moment some downstream port constrains them.
func constDef() registry.BlockDefinition {
	return registry.BlockDefinition{
		Type:           "Const",
		Category:       "source",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Outputs: map[string]registry.OutputDef{
			"out": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		PayloadMetadata: &registry.PayloadMetadata{
			AllowedPayloads: map[string][]typesystem.PayloadType{"out": polymorphicPayloads},
		},
		Lower: constLower,
	}
}

func constLower(ctx *ir.Ctx, _ map[string]ir.ValueExprID, config map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id := ctx.B.Constant(config["value"], outType)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"out": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
