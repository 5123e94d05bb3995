// Package registry holds the global, immutable-per-entry catalog of
// block definitions blocks are instantiated from.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flowgraph/core/internal/typesystem"
)

// Registry is a load-time-populated, read-mostly map from block-type
// strings to their definitions, the same RWMutex+map shape used
// elsewhere in this codebase for lookup-heavy catalogs.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]BlockDefinition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]BlockDefinition)}
}

// Register adds def to the registry. It fails if def.Type is empty or
// already registered — block definitions are meant to be registered
// once at process startup, not mutated afterward.
func (r *Registry) Register(def BlockDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("registry: block definition has empty type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("registry: block type %q already registered", def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Get returns the definition for blockType, if any.
func (r *Registry) Get(blockType string) (BlockDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[blockType]
	return def, ok
}

// RequireBlockDef returns the definition for blockType or an error.
func (r *Registry) RequireBlockDef(blockType string) (BlockDefinition, error) {
	def, ok := r.Get(blockType)
	if !ok {
		return BlockDefinition{}, fmt.Errorf("registry: unknown block type %q", blockType)
	}
	return def, nil
}

// BlockTypesByCategory returns every registered type in category, sorted.
func (r *Registry) BlockTypesByCategory(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for t, def := range r.defs {
		if def.Category == category {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// FindAdapter scans every registered block carrying an AdapterSpec and
// returns the best match for converting fromType to toType, or false
// if none is total over the requested pairing. Matching proceeds:
//  1. source payload compatibility (wildcard, or equal to fromType.Payload);
//  2. source unit compatibility (wildcard, concrete match, or "same");
//  3. destination unit-and-contract compatibility;
//  4. tie-break by ascending priority, then lexicographically by type
//     string when priorities are equal.
func (r *Registry) FindAdapter(fromType, toType typesystem.CanonicalType) (BlockDefinition, bool) {
	r.mu.RLock()
	candidates := make([]BlockDefinition, 0)
	for _, def := range r.defs {
		if def.AdapterSpec != nil {
			candidates = append(candidates, def)
		}
	}
	r.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AdapterSpec.Priority != candidates[j].AdapterSpec.Priority {
			return candidates[i].AdapterSpec.Priority < candidates[j].AdapterSpec.Priority
		}
		return candidates[i].Type < candidates[j].Type
	})

	for _, def := range candidates {
		if def.AdapterSpec.Matches(fromType, toType) {
			return def, true
		}
	}
	return BlockDefinition{}, false
}
