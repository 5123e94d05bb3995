// Package ir builds the SSA-like value-expression graph blocks lower
// into, plus the cardinality-aware helpers (alignInputs, zipAuto,
// mapAuto) and the topological walk that drives lowering order.
package ir

import "github.com/flowgraph/core/internal/typesystem"

// ValueExprID is an opaque, builder-assigned identifier for a value
// expression node. Ids are unique within one Builder/compile only.
type ValueExprID int

// ValueExprKind discriminates the shape of a ValueExpr. Only the
// fields relevant to Kind are meaningful.
type ValueExprKind string

const (
	ExprConstant       ValueExprKind = "constant"
	ExprOpcode         ValueExprKind = "opcode"
	ExprKernelMap      ValueExprKind = "kernelMap"
	ExprKernelZip      ValueExprKind = "kernelZip"
	ExprKernelZipSig   ValueExprKind = "kernelZipSig"
	ExprBroadcast      ValueExprKind = "broadcast"
	ExprConstruct      ValueExprKind = "construct"
	ExprExtract        ValueExprKind = "extract"
	ExprShapeRef       ValueExprKind = "shapeRef"
	ExprStateRead      ValueExprKind = "stateRead"
	ExprEventRead      ValueExprKind = "eventRead"
	ExprEventPulse     ValueExprKind = "eventPulse"
	ExprPathDerivative ValueExprKind = "pathDerivative"
	ExprIntrinsic      ValueExprKind = "intrinsic"
	ExprSigTime        ValueExprKind = "sigTime"
)

// ValueExpr is one node of the lowered graph.
type ValueExpr struct {
	ID   ValueExprID
	Kind ValueExprKind
	Type typesystem.CanonicalType

	ConstValue any
	Op         string
	Fn         string
	Inputs     []ValueExprID
	Field      ValueExprID
	Signals    []ValueExprID
	Signal     ValueExprID
	Components []ValueExprID
	Index      int
	TopologyID string
	Params     map[string]any
	ControlPts []ValueExprID
	StateKey   string
	EventKey   string
	Order      int
	Name       string
}

// StepRequest is a side-effecting action lowering asks the runtime to
// perform once per evaluation step (e.g. a state write).
type StepRequest struct {
	StateKey string
	Value    ValueExprID
}

// SlotRequest reserves a named output slot for a block's output port.
type SlotRequest struct {
	Slot string
	Expr ValueExprID
}

// StateDecl declares a piece of persistent state a block instance owns.
type StateDecl struct {
	Key          string
	Type         typesystem.CanonicalType
	InitialValue any
}

// InstanceContext carries the stable identity a stateful block
// instance needs to key its state across recompiles.
type InstanceContext struct {
	InstanceID string
	Domain     typesystem.InstanceRef
}

// Effects bundles every side-effect request a block's lower procedure
// emits alongside its pure output expressions.
type Effects struct {
	SlotRequests     []SlotRequest
	StateDecls       []StateDecl
	StepRequests     []StepRequest
	InstanceContexts []InstanceContext
}

// PortOutput is what lower reports for one output port.
type PortOutput struct {
	ID     ValueExprID
	Slot   *string
	Type   typesystem.CanonicalType
	Stride int
}

// LowerResult is the return value of a block's lower procedure.
type LowerResult struct {
	OutputsByID map[string]PortOutput
	Effects     Effects
}

// Builder accumulates ValueExpr nodes and assigns fresh ids. One
// Builder is shared by every block instance lowered in a single
// compile.
type Builder struct {
	exprs  []ValueExpr
	nextID ValueExprID
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Exprs returns every node built so far, in id order.
func (b *Builder) Exprs() []ValueExpr {
	return b.exprs
}

func (b *Builder) emit(e ValueExpr) ValueExprID {
	e.ID = b.nextID
	b.exprs = append(b.exprs, e)
	b.nextID++
	return e.ID
}

func (b *Builder) Constant(value any, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprConstant, Type: t, ConstValue: value})
}

func (b *Builder) Opcode(op string, inputs []ValueExprID, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprOpcode, Type: t, Op: op, Inputs: inputs})
}

func (b *Builder) KernelMap(input ValueExprID, fn string, outType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprKernelMap, Type: outType, Fn: fn, Inputs: []ValueExprID{input}})
}

func (b *Builder) KernelZip(inputs []ValueExprID, fn string, outType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprKernelZip, Type: outType, Fn: fn, Inputs: inputs})
}

func (b *Builder) KernelZipSig(field ValueExprID, signals []ValueExprID, fn string, outType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprKernelZipSig, Type: outType, Fn: fn, Field: field, Signals: signals})
}

func (b *Builder) Broadcast(signal ValueExprID, fieldType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprBroadcast, Type: fieldType, Signal: signal})
}

func (b *Builder) Construct(components []ValueExprID, vecType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprConstruct, Type: vecType, Components: components})
}

func (b *Builder) Extract(input ValueExprID, index int, scalarType typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprExtract, Type: scalarType, Inputs: []ValueExprID{input}, Index: index})
}

func (b *Builder) ShapeRef(topologyID string, params map[string]any, outType typesystem.CanonicalType, controlPoints []ValueExprID) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprShapeRef, Type: outType, TopologyID: topologyID, Params: params, ControlPts: controlPoints})
}

func (b *Builder) StateRead(stateKey string, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprStateRead, Type: t, StateKey: stateKey})
}

func (b *Builder) EventRead(eventKey string, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprEventRead, Type: t, EventKey: eventKey})
}

func (b *Builder) EventPulse(eventKey string, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprEventPulse, Type: t, EventKey: eventKey})
}

func (b *Builder) PathDerivative(input ValueExprID, order int, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprPathDerivative, Type: t, Inputs: []ValueExprID{input}, Order: order})
}

func (b *Builder) Intrinsic(name string, inputs []ValueExprID, t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprIntrinsic, Type: t, Name: name, Inputs: inputs})
}

func (b *Builder) SigTime(t typesystem.CanonicalType) ValueExprID {
	return b.emit(ValueExpr{Kind: ExprSigTime, Type: t})
}
