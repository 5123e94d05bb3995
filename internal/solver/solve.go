package solver

import (
	"sort"
	"strings"

	"github.com/flowgraph/core/internal/inference"
	"github.com/flowgraph/core/internal/typesystem"
)

// payloadMeta is the per-root metadata for the payload forest.
type payloadMeta struct {
	value   *typesystem.PayloadType
	allowed *[]typesystem.PayloadType // nil = unconstrained
	origins []string
}

// unitMeta is the per-root metadata for the unit forest.
type unitMeta struct {
	value          *typesystem.UnitType
	mustBeUnitless bool
	origins        []string
}

// Result is the solver's total output: substitutions for every
// variable touched, resolved (payload, unit) pairs for every port
// touched, and a sorted list of errors. It is produced for every
// constraint set handed to Solve — the solver never panics or returns
// a Go error; failures are always PUSolveErrors inside Result.
type Result struct {
	Substitution *inference.Substitution
	PortPayloads map[string]typesystem.PayloadType
	PortUnits    map[string]typesystem.UnitType
	Errors       []PUSolveError

	// DefaultedPayloadPorts holds every port-key node whose payload
	// group reached Phase 2 unconstrained and unresolved — bound to
	// float only because nothing else pinned it. payloadAnchor.v1
	// consults this to find chains defaulting silently instead of on
	// real evidence.
	DefaultedPayloadPorts map[string]bool
}

// Solve runs both phases of the union-find algorithm over constraints
// and returns a total result. Constraint order does not affect the
// final groupings (union-find merges are commutative and associative);
// it can affect which origin ends up first in a group's origin list,
// which in turn never changes classification (classification only
// checks for presence of an origin kind, not its position).
func Solve(constraints []Constraint) Result {
	payloads := newDSU[payloadMeta]()
	units := newDSU[unitMeta]()

	ensurePayload := func(node string) {
		payloads.ensure(node, func() *payloadMeta { return &payloadMeta{} })
	}
	ensureUnit := func(node string) {
		units.ensure(node, func() *unitMeta { return &unitMeta{} })
	}

	var errs []PUSolveError

	for _, c := range constraints {
		switch c.Kind {
		case ConstraintConcretePayload:
			ensurePayload(c.Node)
			m := payloads.metaOf(c.Node)
			if m.value != nil && *m.value != c.Payload {
				errs = append(errs, PUSolveError{
					Kind:           ErrConflictingPayloads,
					Node:           c.Node,
					Classification: ClassifyOrigins(append(append([]string{}, m.origins...), c.Origin)),
					Detail:         string(*m.value) + " vs " + string(c.Payload),
				})
				continue
			}
			v := c.Payload
			m.value = &v
			m.origins = append(m.origins, c.Origin)

		case ConstraintConcreteUnit:
			ensureUnit(c.Node)
			m := units.metaOf(c.Node)
			if m.value != nil && !typesystem.UnitsEqual(*m.value, c.Unit) {
				errs = append(errs, PUSolveError{
					Kind:           ErrConflictingUnits,
					Node:           c.Node,
					Classification: ClassifyOrigins(append(append([]string{}, m.origins...), c.Origin)),
					Detail:         string(m.value.Kind) + " vs " + string(c.Unit.Kind),
				})
				continue
			}
			v := c.Unit
			m.value = &v
			m.origins = append(m.origins, c.Origin)

		case ConstraintPayloadEq:
			ensurePayload(c.NodeA)
			ensurePayload(c.NodeB)
			payloads.union(c.NodeA, c.NodeB, func(survivor, absorbed *payloadMeta) *payloadMeta {
				return mergePayloadMeta(survivor, absorbed, c.Origin)
			})

		case ConstraintUnitEq:
			ensureUnit(c.NodeA)
			ensureUnit(c.NodeB)
			units.union(c.NodeA, c.NodeB, func(survivor, absorbed *unitMeta) *unitMeta {
				return mergeUnitMeta(survivor, absorbed, c.Origin)
			})

		case ConstraintRequirePayloadIn:
			ensurePayload(c.Node)
			m := payloads.metaOf(c.Node)
			m.allowed = intersectAllowed(m.allowed, c.AllowedPayloads)
			m.origins = append(m.origins, c.Origin)

		case ConstraintRequireUnitless:
			ensureUnit(c.Node)
			m := units.metaOf(c.Node)
			m.mustBeUnitless = true
			m.origins = append(m.origins, c.Origin)
		}
	}

	subst := inference.NewSubstitution()
	portPayloads := make(map[string]typesystem.PayloadType)
	portUnits := make(map[string]typesystem.UnitType)

	resolvedPayloadGroups := make(map[string]typesystem.PayloadType)
	defaultedGroups := make(map[string]bool)
	defaultedPorts := make(map[string]bool)
	resolvedUnitGroups := make(map[string]typesystem.UnitType)

	for _, node := range sortedNodes(payloads) {
		root := payloads.find(node)
		value, ok := resolvedPayloadGroups[root]
		if !ok {
			m := payloads.meta[root]
			var groupErrs []PUSolveError
			var defaulted bool
			value, defaulted, groupErrs = resolvePayloadGroup(root, m)
			errs = append(errs, groupErrs...)
			resolvedPayloadGroups[root] = value
			defaultedGroups[root] = defaulted
		}
		assignPayloadNode(node, value, subst, portPayloads)
		if defaultedGroups[root] && strings.HasPrefix(node, "payload:port:") {
			defaultedPorts[strings.TrimPrefix(node, "payload:port:")] = true
		}
	}

	for _, node := range sortedNodes(units) {
		root := units.find(node)
		value, ok := resolvedUnitGroups[root]
		if !ok {
			m := units.meta[root]
			var groupErrs []PUSolveError
			value, groupErrs = resolveUnitGroup(root, m)
			errs = append(errs, groupErrs...)
			resolvedUnitGroups[root] = value
		}
		assignUnitNode(node, value, subst, portUnits)
	}

	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Kind != errs[j].Kind {
			return errs[i].Kind < errs[j].Kind
		}
		return errs[i].Node < errs[j].Node
	})

	return Result{
		Substitution:          subst,
		PortPayloads:          portPayloads,
		PortUnits:             portUnits,
		Errors:                errs,
		DefaultedPayloadPorts: defaultedPorts,
	}
}

func mergePayloadMeta(survivor, absorbed *payloadMeta, origin string) *payloadMeta {
	out := &payloadMeta{
		value:   survivor.value,
		allowed: survivor.allowed,
		origins: append(append(append([]string{}, survivor.origins...), absorbed.origins...), origin),
	}
	if out.value == nil {
		out.value = absorbed.value
	}
	out.allowed = intersectAllowedPtr(out.allowed, absorbed.allowed)
	return out
}

func mergeUnitMeta(survivor, absorbed *unitMeta, origin string) *unitMeta {
	out := &unitMeta{
		value:          survivor.value,
		mustBeUnitless: survivor.mustBeUnitless || absorbed.mustBeUnitless,
		origins:        append(append(append([]string{}, survivor.origins...), absorbed.origins...), origin),
	}
	if out.value == nil {
		out.value = absorbed.value
	}
	return out
}

// intersectAllowed intersects a possibly-nil current allowed set with
// a new required set, treating nil as "everything allowed".
func intersectAllowed(current *[]typesystem.PayloadType, required []typesystem.PayloadType) *[]typesystem.PayloadType {
	if current == nil {
		out := append([]typesystem.PayloadType{}, required...)
		return &out
	}
	return intersectAllowedPtr(current, &required)
}

func intersectAllowedPtr(a, b *[]typesystem.PayloadType) *[]typesystem.PayloadType {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	set := make(map[typesystem.PayloadType]bool, len(*b))
	for _, p := range *b {
		set[p] = true
	}
	var out []typesystem.PayloadType
	for _, p := range *a {
		if set[p] {
			out = append(out, p)
		}
	}
	if out == nil {
		out = []typesystem.PayloadType{}
	}
	return &out
}

// resolvePayloadGroup implements Phase 2 for a single payload group.
// The returned bool reports whether this group was bound purely by the
// unconstrained-and-unresolved default rule, with no concrete or
// allowed-set evidence pinning it at all.
func resolvePayloadGroup(root string, m *payloadMeta) (typesystem.PayloadType, bool, []PUSolveError) {
	if m.value != nil {
		value := *m.value
		if m.allowed != nil && !payloadInSet(value, *m.allowed) {
			return value, false, []PUSolveError{{
				Kind:           ErrPayloadNotInAllowedSet,
				Node:           root,
				Classification: ClassifyOrigins(m.origins),
				Detail:         string(value),
			}}
		}
		return value, false, nil
	}
	if m.allowed != nil {
		switch len(*m.allowed) {
		case 0:
			return typesystem.PayloadType(""), false, []PUSolveError{{
				Kind:           ErrEmptyAllowedSet,
				Node:           root,
				Classification: ClassifyOrigins(m.origins),
			}}
		default:
			// Documented defaulting: size 1 binds that payload; size > 1
			// with no concrete evidence binds the first entry.
			return (*m.allowed)[0], false, nil
		}
	}
	// Unconstrained and unresolved: default to float, with no evidence
	// behind it at all.
	return typesystem.PayloadFloat, true, nil
}

func resolveUnitGroup(root string, m *unitMeta) (typesystem.UnitType, []PUSolveError) {
	var value typesystem.UnitType
	if m.value != nil {
		value = *m.value
	} else if m.mustBeUnitless {
		value = typesystem.NoneUnit()
	} else {
		value = typesystem.NoneUnit()
	}
	if m.mustBeUnitless && value.Kind != typesystem.UnitNone {
		return value, []PUSolveError{{
			Kind:           ErrUnitlessMismatch,
			Node:           root,
			Classification: ClassifyOrigins(m.origins),
			Detail:         string(value.Kind),
		}}
	}
	return value, nil
}

func payloadInSet(p typesystem.PayloadType, set []typesystem.PayloadType) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}

func sortedNodes[M any](d *dsu[M]) []string {
	nodes := d.nodes()
	sort.Strings(nodes)
	return nodes
}

func assignPayloadNode(node string, value typesystem.PayloadType, subst *inference.Substitution, portPayloads map[string]typesystem.PayloadType) {
	switch {
	case strings.HasPrefix(node, "payload:port:"):
		portPayloads[strings.TrimPrefix(node, "payload:port:")] = value
	case strings.HasPrefix(node, "payload:var:"):
		if v, ok := parseVarID(strings.TrimPrefix(node, "payload:var:")); ok {
			subst.Payloads[v] = value
		}
	}
}

func assignUnitNode(node string, value typesystem.UnitType, subst *inference.Substitution, portUnits map[string]typesystem.UnitType) {
	switch {
	case strings.HasPrefix(node, "unit:port:"):
		portUnits[strings.TrimPrefix(node, "unit:port:")] = value
	case strings.HasPrefix(node, "unit:var:"):
		if v, ok := parseVarID(strings.TrimPrefix(node, "unit:var:")); ok {
			subst.Units[v] = value
		}
	}
}

func parseVarID(s string) (inference.VarID, bool) {
	var n int64
	var neg bool
	if len(s) == 0 {
		return 0, false
	}
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return inference.VarID(n), true
}
