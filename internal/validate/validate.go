// Package validate implements the pure, allocation-minimal checks that
// decide whether a (ToolSchema, ParsedArgs) pair may become a Command.
// Validate never raises on the first failure — it returns every failure in
// one pass so an AI producer can correct them all at once.
package validate

import (
	"strconv"

	"github.com/wardhq/ward/internal/schema"
)

// ParsedFlag is one flag occurrence as supplied by the producer, in the
// order the producer supplied it.
type ParsedFlag struct {
	Name  string
	Value *string // nil for a bare toggle flag
}

// ParsedArgs is the producer's structured description of one invocation's
// arguments, prior to validation or building.
type ParsedArgs struct {
	Flags       []ParsedFlag
	Positionals []string
}

// Validate runs the ordered checks from spec.md §4.2 against parsed and
// returns every failure found. A nil/empty return means parsed would build
// cleanly against s.
func Validate(s *schema.ToolSchema, parsed ParsedArgs) []Error {
	var failures []Error

	seen := make(map[string]int, len(parsed.Flags))

	for _, pf := range parsed.Flags {
		fd := s.FlagByName(pf.Name)
		if fd == nil {
			failures = append(failures, Error{Kind: UnknownFlag, Context: pf.Name})
			continue
		}
		seen[pf.Name]++

		if kind, ok := checkType(fd, pf); !ok {
			failures = append(failures, Error{Kind: kind, Context: pf.Name})
		}
	}

	for name, count := range seen {
		fd := s.FlagByName(name)
		if fd != nil && count > 1 && !fd.Multiple {
			failures = append(failures, Error{Kind: DuplicateFlagNotAllowed, Context: name})
		}
	}

	for _, fd := range s.Flags {
		if fd.Required && seen[fd.Name] == 0 {
			failures = append(failures, Error{Kind: MissingRequiredFlag, Context: fd.Name})
		}
	}

	required := s.RequiredPositionalCount()
	if len(parsed.Positionals) < required {
		missingName := ""
		if len(parsed.Positionals) < len(s.Positionals) {
			missingName = s.Positionals[len(parsed.Positionals)].Name
		}
		failures = append(failures, Error{Kind: MissingRequiredPositional, Context: missingName})
	}
	if len(parsed.Positionals) > len(s.Positionals) {
		failures = append(failures, Error{Kind: TooManyPositionals, Context: ""})
	}

	for _, group := range s.ExclusiveGroups {
		count := 0
		for _, member := range group {
			if seen[member] > 0 {
				count++
			}
		}
		if count > 1 {
			context := ""
			if len(group) > 0 {
				context = group[0]
			}
			failures = append(failures, Error{Kind: MutualExclusionViolation, Context: context})
		}
	}

	return failures
}

// checkType applies the type-conformance rule for fd's arg_type to pf's
// value. ok is false iff a failure should be recorded with the returned
// kind.
func checkType(fd *schema.FlagDef, pf ParsedFlag) (ErrorKind, bool) {
	if pf.Value == nil {
		if fd.ArgType == schema.ArgBool {
			return "", true // toggle form
		}
		return TypeMismatch, false
	}

	value := *pf.Value
	switch fd.ArgType {
	case schema.ArgBool:
		if value != "true" && value != "false" {
			return TypeMismatch, false
		}
	case schema.ArgInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return TypeMismatch, false
		}
		if fd.RangeMin != nil && n < *fd.RangeMin {
			return IntOutOfRange, false
		}
		if fd.RangeMax != nil && n > *fd.RangeMax {
			return IntOutOfRange, false
		}
	case schema.ArgFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return TypeMismatch, false
		}
	case schema.ArgEnum:
		if !containsExact(fd.EnumValues, value) {
			return EnumValueInvalid, false
		}
	case schema.ArgString, schema.ArgPath:
		// any non-absent value accepted
	}
	return "", true
}

func containsExact(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
