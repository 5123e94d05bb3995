package blocks

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

// adapterPhaseToRadiansDef is the adapters.v1 workhorse: a total
// float(phase01) -> float(radians) converter. Adapter blocks always
// name their single input and output "value", per
// draftgraph.InsertAdapterBetween's convention.
func adapterPhaseToRadiansDef() registry.BlockDefinition {
	fromType := mustCanonical(typesystem.PayloadFloat, unitPtr(typesystem.AngleUnitOf(typesystem.AnglePhase01)), nil, typesystem.ContractNone)
	toType := mustCanonical(typesystem.PayloadFloat, unitPtr(typesystem.AngleUnitOf(typesystem.AngleRadians)), nil, typesystem.ContractNone)
	return registry.BlockDefinition{
		Type:           "Adapter_PhaseToRadians",
		Category:       "adapter",
		Capability:     registry.CapabilityPure,
		LoweringPurity: registry.LoweringPure,
		Inputs: map[string]registry.InputDef{
			"value": {PortDef: registry.PortDef{Type: inference.Concrete(fromType)}},
		},
		Outputs: map[string]registry.OutputDef{
			"value": {PortDef: registry.PortDef{Type: inference.Concrete(toType)}},
		},
		AdapterSpec: &registry.AdapterSpec{
			FromPayload: registry.PayloadMatch{Payload: typesystem.PayloadFloat},
			FromUnit:    registry.UnitMatch{Unit: typesystem.AngleUnitOf(typesystem.AnglePhase01)},
			ToUnit:      registry.UnitMatch{Unit: typesystem.AngleUnitOf(typesystem.AngleRadians)},
			Priority:    10,
		},
		Lower: adapterPhaseToRadiansLower,
	}
}

func adapterPhaseToRadiansLower(ctx *ir.Ctx, inputs map[string]ir.ValueExprID, _ map[string]any) (ir.LowerResult, error) {
	outType := ctx.OutTypes[0]
	id := ctx.B.KernelMap(inputs["value"], "phase01ToRadians", outType)
	return ir.LowerResult{
		OutputsByID: map[string]ir.PortOutput{
			"value": {ID: id, Type: outType, Stride: outType.Stride()},
		},
	}, nil
}
