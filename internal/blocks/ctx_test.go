package blocks

import (
	"github.com/flowgraph/core/internal/ir"
	"github.com/flowgraph/core/internal/typesystem"
)

func testCtx(outTypes ...typesystem.CanonicalType) *ir.Ctx {
	return &ir.Ctx{
		B:               ir.NewBuilder(),
		OutTypes:        outTypes,
		InstanceID:      "test-block",
		AddressRegistry: make(map[string]ir.ValueExprID),
	}
}
