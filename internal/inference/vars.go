// Package inference overlays the canonical type system (internal/typesystem)
// with payload and unit variables. It is the only place in the compiler
// where an unresolved type variable is allowed to exist; the border back
// into canonical-world is FinalizeInferenceType.
package inference

import (
	"fmt"
	"sync/atomic"
)

// VarID identifies a payload or unit variable. Payload and unit variables
// live in separate numbering spaces (a PayloadVarID and a UnitVarID with
// the same integer value are unrelated).
type VarID int64

// Minter mints fresh variable ids. Each compile invocation owns its own
// Minter so variables never leak across compiles or collide with a
// concurrent one, unlike a global uuid.New()-style generator; a plain
// atomic counter scoped to one Minter instance is cheaper and still
// collision-free within a compile.
type Minter struct {
	next int64
}

// NewMinter creates a fresh variable minter.
func NewMinter() *Minter {
	return &Minter{}
}

// Fresh mints a new, never-before-seen variable id.
func (m *Minter) Fresh() VarID {
	return VarID(atomic.AddInt64(&m.next, 1))
}

// AlphaRename qualifies a block-local variable name with its owning
// block instance id, producing "u:{blockId}:{varName}". Block
// definitions may reuse string var names (e.g. "clamp_U") across
// instances, and the solver must not unify those instances' variables
// with each other. Names are resolved into VarIDs through a per-compile
// table (see VarTable) rather than encoded literally, since VarID must
// stay a cheap integer for the union-find node keys in internal/solver.
func AlphaRename(blockID, varName string) string {
	return fmt.Sprintf("u:%s:%s", blockID, varName)
}

// VarTable resolves alpha-renamed variable names to stable VarIDs within
// one compile invocation, minting a fresh id the first time a name is
// seen and returning the same id on every subsequent lookup.
type VarTable struct {
	minter *Minter
	byName map[string]VarID
}

// NewVarTable creates an empty table backed by the given minter.
func NewVarTable(minter *Minter) *VarTable {
	return &VarTable{minter: minter, byName: make(map[string]VarID)}
}

// Resolve returns the VarID for name, minting one if this is the first
// time name has been seen by this table.
func (t *VarTable) Resolve(name string) VarID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := t.minter.Fresh()
	t.byName[name] = id
	return id
}
