// Package blocks registers the small, real demonstration catalog that
// exercises every constraint-extraction rule, every obligation policy,
// and every IR lowering helper at least once. It stands in for the
// full block catalog, which this repository does not ship (the
// visual editor owns it).
package blocks

import (
	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/registry"
	"github.com/flowgraph/core/internal/typesystem"
)

var polymorphicPayloads = []typesystem.PayloadType{
	typesystem.PayloadFloat,
	typesystem.PayloadInt,
	typesystem.PayloadVec2,
	typesystem.PayloadVec3,
	typesystem.PayloadColor,
}

func mustCanonical(payload typesystem.PayloadType, unit *typesystem.UnitType, overrides *typesystem.ExtentOverrides, contract typesystem.ValueContract) typesystem.CanonicalType {
	ct, err := typesystem.NewCanonicalType(payload, unit, overrides, contract)
	if err != nil {
		panic(err)
	}
	return ct
}

// RegisterBuiltins registers the demonstration catalog into reg. It
// stops at the first registration error and returns it, e.g. when a
// builtin's Type is already registered in reg.
func RegisterBuiltins(reg *registry.Registry) error {
	defs := []registry.BlockDefinition{
		constDef(),
		addDef(),
		infiniteTimeRootDef(),
		adapterPhaseToRadiansDef(),
		payloadAnchorFloatDef(),
		ellipseDef(),
		arrayDef(),
		fieldMapDef(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func varField(payloadVar, unitVar inference.VarID) inference.InferenceCanonicalType {
	return inference.InferenceCanonicalType{
		Payload: inference.VarPayload(payloadVar),
		Unit:    inference.VarUnit(unitVar),
		Extent:  typesystem.DefaultExtent(),
	}
}
