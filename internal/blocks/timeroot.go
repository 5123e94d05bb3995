package blocks

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// infiniteTimeRootDef is a zero-input time source producing a
// normalized phase signal, the base case for the adapter-insertion
// scenario (its phase01 output needs radians downstream).
func infiniteTimeRootDef() registry.BlockDefinition {
	phaseType := mustCanonical(typesystem.PayloadFloat, unitPtr(typesystem.AngleUnitOf(typesystem.AnglePhase01)), nil, typesystem.ContractWrap01)
	return registry.BlockDefinition{
		Type:           "InfiniteTimeRoot",
		Category:       "time",
		Capability:     registry.CapabilityTime,
		LoweringPurity: registry.LoweringPure,
		Outputs: map[string]registry.OutputDef{
			"phaseA": {PortDef: registry.PortDef{Type: inference.Concrete(phaseType)}},
		},
		Lower: infiniteTimeRootLower,
	}
}

func unitPtr(u typesystem.UnitType) *typesystem.UnitType { return &u }

func infiniteTimeRootLower(ctx *ir.Ctx, _ map[string]ir.ValueExprID, _ map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id := ctx.B.SigTime(outType)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"phaseA": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
