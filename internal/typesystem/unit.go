package typesystem

// UnitKind is the closed set of top-level unit discriminants.
type UnitKind string

const (
	UnitNone  UnitKind = "none"
	UnitScalar UnitKind = "scalar"
	UnitNorm01 UnitKind = "norm01"
	UnitCount  UnitKind = "count"
	UnitAngle  UnitKind = "angle"
	UnitTime   UnitKind = "time"
	UnitSpace  UnitKind = "space"
	UnitColor  UnitKind = "color"
)

// IsValid reports whether k is one of the closed set of unit kinds.
func (k UnitKind) IsValid() bool {
	switch k {
	case UnitNone, UnitScalar, UnitNorm01, UnitCount, UnitAngle, UnitTime, UnitSpace, UnitColor:
		return true
	default:
		return false
	}
}

// AngleUnit is the sub-discriminant for UnitAngle.
type AngleUnit string

const (
	AngleRadians AngleUnit = "radians"
	AngleDegrees AngleUnit = "degrees"
	AnglePhase01 AngleUnit = "phase01"
)

// TimeUnit is the sub-discriminant for UnitTime.
type TimeUnit string

const (
	TimeMilliseconds TimeUnit = "ms"
	TimeSeconds      TimeUnit = "seconds"
)

// SpaceUnit is the sub-discriminant for UnitSpace.
type SpaceUnit string

const (
	SpaceNDC   SpaceUnit = "ndc"
	SpaceWorld SpaceUnit = "world"
	SpaceView  SpaceUnit = "view"
)

// ColorUnit is the sub-discriminant for UnitColor. There is exactly one
// member today; it exists as a type so a future addition doesn't change
// UnitType's shape.
type ColorUnit string

const ColorRGBA01 ColorUnit = "rgba01"

// UnitType is a closed discriminated struct: only the field matching Kind
// is meaningful. This mirrors the "closed struct with a Kind discriminant"
// shape used elsewhere in this codebase for join/error-strategy configs,
// generalized here to carry payload-specific sub-units instead of a bare
// string.
type UnitType struct {
	Kind  UnitKind
	Angle AngleUnit
	Time  TimeUnit
	Space SpaceUnit
	Color ColorUnit
	Dims  int // meaningful only when Kind == UnitSpace; one of 2 or 3
}

// NoneUnit is the unit carried by unitless values.
func NoneUnit() UnitType { return UnitType{Kind: UnitNone} }

// ScalarUnit is a dimensionless real-number unit distinct from "none":
// none means "must not carry any semantic unit", scalar means "carries a
// semantic unit, but an unconstrained one".
func ScalarUnit() UnitType { return UnitType{Kind: UnitScalar} }

// Norm01Unit is the [0,1]-normalized unit.
func Norm01Unit() UnitType { return UnitType{Kind: UnitNorm01} }

// CountUnit is the non-negative-integer-count unit.
func CountUnit() UnitType { return UnitType{Kind: UnitCount} }

// AngleUnitOf builds an angle unit of the given sub-kind.
func AngleUnitOf(sub AngleUnit) UnitType { return UnitType{Kind: UnitAngle, Angle: sub} }

// TimeUnitOf builds a time unit of the given sub-kind.
func TimeUnitOf(sub TimeUnit) UnitType { return UnitType{Kind: UnitTime, Time: sub} }

// SpaceUnitOf builds a space unit of the given sub-kind and dimensionality.
func SpaceUnitOf(sub SpaceUnit, dims int) UnitType {
	return UnitType{Kind: UnitSpace, Space: sub, Dims: dims}
}

// ColorUnitOf builds a color unit (there is only one sub-kind today).
func ColorUnitOf() UnitType { return UnitType{Kind: UnitColor, Color: ColorRGBA01} }

// UnitsEqual is structural equality, recursing into whichever sub-unit
// field Kind selects.
func UnitsEqual(a, b UnitType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case UnitAngle:
		return a.Angle == b.Angle
	case UnitTime:
		return a.Time == b.Time
	case UnitSpace:
		return a.Space == b.Space && a.Dims == b.Dims
	case UnitColor:
		return a.Color == b.Color
	default:
		return true
	}
}

// allowedUnits constrains which (payload, unit) pairings may ever be
// constructed.
var allowedUnits = map[PayloadType][]UnitKind{
	PayloadFloat:            {UnitNone, UnitScalar, UnitNorm01, UnitCount, UnitAngle, UnitTime},
	PayloadInt:              {UnitNone, UnitScalar, UnitCount},
	PayloadBool:             {UnitNone},
	PayloadVec2:             {UnitNone, UnitSpace},
	PayloadVec3:             {UnitNone, UnitSpace},
	PayloadColor:            {UnitNone, UnitColor},
	PayloadCameraProjection: {UnitNone},
}

// IsValidPayloadUnit reports whether the (payload, unit) pairing is one
// the type system permits to be constructed at all.
func IsValidPayloadUnit(payload PayloadType, unit UnitType) bool {
	kinds, ok := allowedUnits[payload]
	if !ok {
		return false
	}
	for _, k := range kinds {
		if k == unit.Kind {
			if unit.Kind == UnitSpace {
				return payload == PayloadVec2 && unit.Dims == 2 || payload == PayloadVec3 && unit.Dims == 3
			}
			return true
		}
	}
	return false
}

// DefaultUnitFor returns the unit a payload is given when the caller
// doesn't specify one explicitly.
func DefaultUnitFor(payload PayloadType) UnitType {
	switch payload {
	case PayloadVec2:
		return SpaceUnitOf(SpaceNDC, 2)
	case PayloadVec3:
		return SpaceUnitOf(SpaceNDC, 3)
	case PayloadColor:
		return ColorUnitOf()
	default:
		return NoneUnit()
	}
}
