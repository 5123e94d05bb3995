package obligations

import (
	"fmt"

	"github.com/flowgraph/core/internal/draftgraph"
	"github.com/flowgraph/core/internal/registry"
)

// DefaultSourcesV1Name is the registered policy name defaultSources.v1
// discharges under.
const DefaultSourcesV1Name = "defaultSources.v1"

// defaultSourcesV1 synthesizes a source block for an input port that
// has no incoming edge but declares (or was given) a default source —
// a literal constant, or a reference to another block's output such as
// a shared time root's phase channel.
type defaultSourcesV1 struct{}

// DefaultSourcesV1 is the built-in policy that wires an unconnected
// input port to its declared default.
func DefaultSourcesV1() Policy { return defaultSourcesV1{} }

func (defaultSourcesV1) Name() string { return DefaultSourcesV1Name }

func (defaultSourcesV1) Plan(ob draftgraph.Obligation, ctx *Context) PolicyResult {
	if ob.Subject.Kind != draftgraph.SubjectPort {
		return PolicyResult{Outcome: Noop, Diagnostic: "defaultSources.v1: obligation subject is not a port"}
	}
	port := ob.Subject.Port
	block, ok := ctx.Draft.Blocks[port.BlockID]
	if !ok {
		return PolicyResult{Outcome: Noop, Diagnostic: fmt.Sprintf("defaultSources.v1: block %q no longer exists", port.BlockID)}
	}
	if len(ctx.Draft.EdgesIntoPort(port)) > 0 {
		return PolicyResult{Outcome: Noop, Diagnostic: "defaultSources.v1: port is now connected"}
	}

	source := resolveDefaultSource(block, port.PortID, ctx.Registry)
	if source == nil {
		return PolicyResult{
			Outcome:    Blocked,
			Diagnostic: fmt.Sprintf("defaultSources.v1: port %q has no default source and no incoming edge", port.Key()),
		}
	}

	sourceBlockID := ContentID(DefaultSourcesV1Name, ob.Subject)
	sourceBlock, outPort, err := synthesizeSourceBlock(sourceBlockID, *source)
	if err != nil {
		return PolicyResult{Outcome: Blocked, Diagnostic: "defaultSources.v1: " + err.Error()}
	}

	return PolicyResult{
		Outcome: Planned,
		Plan: &ElaborationPlan{
			Kind:             PlanSynthesizeSource,
			TargetPort:       port,
			SourceBlock:      sourceBlock,
			SourceOutputPort: outPort,
			NewEdgeID:        sourceBlockID + ":edge",
			Override:         *source,
		},
	}
}

func resolveDefaultSource(block draftgraph.Block, portID string, reg *registry.Registry) *registry.DefaultSource {
	if cfg, ok := block.InputConfig[portID]; ok && cfg.DefaultSourceOverride != nil {
		return cfg.DefaultSourceOverride
	}
	def, ok := reg.Get(block.Type)
	if !ok {
		return nil
	}
	in, ok := def.Inputs[portID]
	if !ok {
		return nil
	}
	return in.DefaultSource
}

// synthesizeSourceBlock builds the draft-graph block a default source
// description elaborates to: a literal "const" emitter, or a reference
// to an existing block type's output port (instantiated fresh so every
// unconnected port that wants one gets its own instance).
func synthesizeSourceBlock(id string, source registry.DefaultSource) (draftgraph.Block, string, error) {
	switch source.Kind {
	case "const":
		return draftgraph.Block{
			ID:     id,
			Type:   "const",
			Params: map[string]any{"value": source.ConstValue},
		}, "out", nil
	case "blockOutputRef":
		if source.RefBlockType == "" || source.RefOutputPort == "" {
			return draftgraph.Block{}, "", fmt.Errorf("blockOutputRef default source missing RefBlockType/RefOutputPort")
		}
		return draftgraph.Block{ID: id, Type: source.RefBlockType}, source.RefOutputPort, nil
	default:
		return draftgraph.Block{}, "", fmt.Errorf("unknown default source kind %q", source.Kind)
	}
}
