package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// addDef sums two ports that share one payload variable; its "a"
// input defaults to a constant 1.0 when left unconnected, exercising
// defaultSources.v1.
func addDef() registry.BlockDefinition {
	defaultA := registry.DefaultSource{Kind: "const", ConstValue: 1.0}
	return registry.BlockDefinition{
		Type:           "Add",
		Category:       "arithmetic",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Inputs: map[string]registry.InputDef{
			"a": {PortDef: registry.PortDef{Type: varField(1, 1)}, DefaultSource: &defaultA, Combine: registry.CombineLast},
			"b": {PortDef: registry.PortDef{Type: varField(1, 1)}, Combine: registry.CombineLast},
		},
		Outputs: map[string]registry.OutputDef{
			"out": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		PayloadMetadata: &registry.PayloadMetadata{
			AllowedPayloads: map[string][]typesystem.PayloadType{
				"a": polymorphicPayloads, "b": polymorphicPayloads, "out": polymorphicPayloads,
			},
		},
		Lower: addLower,
	}
}

func addLower(ctx *ir.Ctx, inputs map[string]ir.ValueExprID, _ map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id, err := ir.ZipAuto(ctx.B, []ir.ValueExprID{inputs["a"], inputs["b"]}, []typesystem.CanonicalType{outType, outType}, "add", outType)
	if err != nil {
		return ir.LowerResult{}, err
	}
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"out": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
