package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// payloadAnchorFloatDef is an identity pass-through block
// payloadAnchor.v1 splices onto a polymorphic chain that never picked
// up concrete payload evidence, pinning it to float. Its
// payloadMetadata requires float to be the first allowed payload so
// the anchor's intent ("this chain defaults to float") is visible in
// the registry, not just in the obligation's diagnostic text.
func payloadAnchorFloatDef() registry.BlockDefinition {
	return registry.BlockDefinition{
		Type:           "PayloadAnchorFloat",
		Category:       "adapter",
		Capability:     registry.CapabilityIdentity,
		LoweringPurity: registry.LoweringPure,
		Inputs: map[string]registry.InputDef{
			"value": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		Outputs: map[string]registry.OutputDef{
			"value": {PortDef: registry.PortDef{Type: varField(1, 1)}},
		},
		PayloadMetadata: &registry.PayloadMetadata{
			AllowedPayloads: map[string][]typesystem.PayloadType{
				// float first: this is where an unconstrained chain lands.
				"value": polymorphicPayloads,
			},
		},
		Lower: payloadAnchorFloatLower,
	}
}

func payloadAnchorFloatLower(ctx *ir.Ctx, inputs map[string]ir.ValueExprID, _ map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id := inputs["value"]
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"value": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
