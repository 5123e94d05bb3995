package storage

import (
	"github.com/flowgraph/core/internal/ir"
)

// ProgramSnapshot is the JSON-serializable rendering of a lowered
// *ir.Program: ir.Builder keeps its accumulated expressions behind an
// unexported slice, so persisting a compile result means flattening
// them out explicitly rather than marshaling the program as-is.
type ProgramSnapshot struct {
	Exprs       []ir.ValueExpr           `json:"exprs"`
	OutputExprs map[string]ir.ValueExprID `json:"output_exprs"`
	Effects     ir.Effects                `json:"effects"`
}

func NewProgramSnapshot(p *ir.Program) *ProgramSnapshot {
	if p == nil {
		return nil
	}
	snap := &ProgramSnapshot{
		OutputExprs: p.OutputExprs,
		Effects:     p.Effects,
	}
	if p.Builder != nil {
		snap.Exprs = p.Builder.Exprs()
	}
	return snap
}
