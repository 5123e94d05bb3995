package solver

import "fmt"

// ErrorKind enumerates the ways a payload/unit group can fail to
// resolve.
type ErrorKind string

const (
	ErrConflictingPayloads   ErrorKind = "ConflictingPayloads"
	ErrConflictingUnits      ErrorKind = "ConflictingUnits"
	ErrEmptyAllowedSet       ErrorKind = "EmptyAllowedSet"
	ErrPayloadNotInAllowedSet ErrorKind = "PayloadNotInAllowedSet"
	ErrUnitlessMismatch      ErrorKind = "UnitlessMismatch"
	ErrUnresolvedPayload     ErrorKind = "UnresolvedPayload"
	ErrUnresolvedUnit        ErrorKind = "UnresolvedUnit"
)

// Classification buckets an error by the worst origin kind feeding its
// group: any edge origin makes it a user-visible patch error; else any
// payloadMetadata origin makes it a too-specific block definition;
// otherwise it is simply unresolved.
type Classification string

const (
	UserPatchTypeError Classification = "UserPatchTypeError"
	BlockDefTooSpecific Classification = "BlockDefTooSpecific"
	Unresolved          Classification = "Unresolved"
)

// ClassifyOrigins picks the classification for a group from the list
// of constraint origins that fed it.
func ClassifyOrigins(origins []string) Classification {
	sawPayloadMetadata := false
	for _, o := range origins {
		switch OriginKind(o) {
		case "edge":
			return UserPatchTypeError
		case "payloadMetadata":
			sawPayloadMetadata = true
		}
	}
	if sawPayloadMetadata {
		return BlockDefTooSpecific
	}
	return Unresolved
}

// PUSolveError is one solver-reported failure, always data, never a Go
// error thrown out of Solve.
type PUSolveError struct {
	Kind           ErrorKind
	Node           string
	Classification Classification
	Detail         string
}

func (e PUSolveError) String() string {
	return fmt.Sprintf("%s[%s] at %s: %s", e.Kind, e.Classification, e.Node, e.Detail)
}
