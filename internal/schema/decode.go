package schema

import "encoding/json"

// decodeDocument parses raw into a ToolSchema, running structural
// pre-validation against the meta-schema first, then a typed json.Decode,
// then the semantic consistency checks spec.md §4.1 requires.
func decodeDocument(raw []byte) (*ToolSchema, error) {
	if err := validateStructure(raw); err != nil {
		return nil, err
	}

	var s ToolSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &MalformedError{Cause: err}
	}

	if err := checkConsistency(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// checkConsistency enforces the invariants in spec.md §3: exclusive groups
// only name declared flags, and enum-typed flags/positionals carry a
// non-empty enum_values list.
func checkConsistency(s *ToolSchema) error {
	for _, group := range s.ExclusiveGroups {
		for _, flagName := range group {
			if s.FlagByName(flagName) == nil {
				return &InconsistentError{
					Reason: "exclusive group references undeclared flag " + flagName,
				}
			}
		}
	}

	for _, f := range s.Flags {
		if f.ArgType == ArgEnum && len(f.EnumValues) == 0 {
			return &InconsistentError{
				Reason: "flag " + f.Name + " has arg_type enum but no enum_values",
			}
		}
		if f.RangeMin != nil || f.RangeMax != nil {
			if f.ArgType != ArgInt && f.ArgType != ArgFloat {
				return &InconsistentError{
					Reason: "flag " + f.Name + " has range bounds but is not int/float",
				}
			}
		}
	}

	for _, p := range s.Positionals {
		if p.ArgType == ArgEnum && len(p.EnumValues) == 0 {
			return &InconsistentError{
				Reason: "positional " + p.Name + " has arg_type enum but no enum_values",
			}
		}
	}

	return nil
}
