package validate

// ErrorKind tags the reason a single flag or positional failed validation.
type ErrorKind string

const (
	UnknownFlag               ErrorKind = "UnknownFlag"
	TypeMismatch              ErrorKind = "TypeMismatch"
	IntOutOfRange             ErrorKind = "IntOutOfRange"
	EnumValueInvalid          ErrorKind = "EnumValueInvalid"
	DuplicateFlagNotAllowed   ErrorKind = "DuplicateFlagNotAllowed"
	MissingRequiredFlag       ErrorKind = "MissingRequiredFlag"
	MissingRequiredPositional ErrorKind = "MissingRequiredPositional"
	TooManyPositionals        ErrorKind = "TooManyPositionals"
	MutualExclusionViolation  ErrorKind = "MutualExclusionViolation"
)

// Error is one validation failure. Context names the offending flag or
// positional. Validate returns these as a slice — never raises on the
// first failure — so a producer can fix every problem in one pass.
type Error struct {
	Kind    ErrorKind
	Context string
}

func (e Error) Error() string {
	return string(e.Kind) + ": " + e.Context
}
