package ir

import (
	"fmt"

	"github.com/flowgraph/core/internal/typesystem"
)

// AlignInputs reconciles two inputs' cardinalities before they are
// combined: signal+signal and field+field pass through unchanged
// (field+field additionally validates the two share an instance
// domain); a signal paired with a field is broadcast up to the
// field's extent. Mismatched field domains fail.
func AlignInputs(b *Builder, a ValueExprID, aType typesystem.CanonicalType, c ValueExprID, cType typesystem.CanonicalType, outType typesystem.CanonicalType) (ValueExprID, ValueExprID, error) {
	aIsField := aType.Extent.IsField()
	cIsField := cType.Extent.IsField()

	switch {
	case !aIsField && !cIsField:
		return a, c, nil
	case aIsField && cIsField:
		if aType.Extent.Cardinality.Instance != cType.Extent.Cardinality.Instance {
			return 0, 0, fmt.Errorf("ir: alignInputs: mismatched field instance domains %+v vs %+v",
				aType.Extent.Cardinality.Instance, cType.Extent.Cardinality.Instance)
		}
		return a, c, nil
	case aIsField && !cIsField:
		return a, b.Broadcast(c, aType), nil
	default: // cIsField && !aIsField
		return b.Broadcast(a, cType), c, nil
	}
}

// ZipAuto selects the right kernel shape for combining inputs of
// mixed cardinality:
//   - output is not "many" => a direct zip;
//   - every input is a field => a plain kernelZip;
//   - exactly one field among signals => kernelZipSig;
//   - more than one field among signals => broadcast every signal to
//     the (shared) field extent first, then a plain zip.
func ZipAuto(b *Builder, inputs []ValueExprID, inputTypes []typesystem.CanonicalType, fn string, outType typesystem.CanonicalType) (ValueExprID, error) {
	if len(inputs) != len(inputTypes) {
		return 0, fmt.Errorf("ir: zipAuto: inputs/inputTypes length mismatch")
	}
	if !outType.Extent.IsField() {
		return b.KernelZip(inputs, fn, outType), nil
	}

	var fieldIdx []int
	for i, t := range inputTypes {
		if t.Extent.IsField() {
			fieldIdx = append(fieldIdx, i)
		}
	}

	switch len(fieldIdx) {
	case len(inputs):
		return b.KernelZip(inputs, fn, outType), nil
	case 1:
		field := inputs[fieldIdx[0]]
		signals := make([]ValueExprID, 0, len(inputs)-1)
		for i, in := range inputs {
			if i != fieldIdx[0] {
				signals = append(signals, in)
			}
		}
		return b.KernelZipSig(field, signals, fn, outType), nil
	default:
		fieldType := inputTypes[fieldIdx[0]]
		broadcasted := make([]ValueExprID, len(inputs))
		for i, in := range inputs {
			if inputTypes[i].Extent.IsField() {
				broadcasted[i] = in
			} else {
				broadcasted[i] = b.Broadcast(in, fieldType)
			}
		}
		return b.KernelZip(broadcasted, fn, outType), nil
	}
}

// MapAuto applies fn per-element over whatever cardinality input
// already has.
func MapAuto(b *Builder, input ValueExprID, fn string, outType typesystem.CanonicalType) ValueExprID {
	return b.KernelMap(input, fn, outType)
}
