// Package schema defines the typed tool ontology ward validates and builds
// commands against: ArgType/RiskLevel tags, flag and positional definitions,
// and the ToolSchema they compose into.
package schema

// ArgType tags the shape of a flag or positional's value.
type ArgType string

const (
	ArgBool   ArgType = "bool"
	ArgString ArgType = "string"
	ArgInt    ArgType = "int"
	ArgFloat  ArgType = "float"
	ArgPath   ArgType = "path"
	ArgEnum   ArgType = "enum"
)

// RiskLevel is ordered metadata describing the blast radius of a tool
// invocation. It is metadata only: neither validation nor the
// Authority/Enforcer layer reads it.
type RiskLevel string

const (
	RiskSafe        RiskLevel = "safe"
	RiskLocalWrite  RiskLevel = "local_write"
	RiskSharedWrite RiskLevel = "shared_write"
	RiskDestructive RiskLevel = "destructive"
)

// Rank returns the ordinal position of r in the safe < local_write <
// shared_write < destructive order, or -1 if r is not a known level.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskSafe:
		return 0
	case RiskLocalWrite:
		return 1
	case RiskSharedWrite:
		return 2
	case RiskDestructive:
		return 3
	default:
		return -1
	}
}

// FlagDef describes one named flag a tool schema accepts.
type FlagDef struct {
	Name        string   `json:"name"`
	Short       *byte    `json:"short,omitempty"`
	ArgType     ArgType  `json:"arg_type"`
	Required    bool     `json:"required"`
	EnumValues  []string `json:"enum_values,omitempty"`
	RangeMin    *int64   `json:"range_min,omitempty"`
	RangeMax    *int64   `json:"range_max,omitempty"`
	Multiple    bool     `json:"multiple"`
	Description string   `json:"description,omitempty"`
}

// PositionalDef describes one positional argument slot a tool schema
// accepts, in declared order.
type PositionalDef struct {
	Name       string   `json:"name"`
	ArgType    ArgType  `json:"arg_type"`
	Required   bool     `json:"required"`
	EnumValues []string `json:"enum_values,omitempty"`
}

// ToolSchema is the trusted, versioned contract describing how a tool's
// command line is built and interpreted.
type ToolSchema struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Binary          string          `json:"binary"`
	Version         uint32          `json:"version"`
	Risk            RiskLevel       `json:"risk"`
	Capabilities    []string        `json:"capabilities,omitempty"`
	Flags           []FlagDef       `json:"flags,omitempty"`
	Positionals     []PositionalDef `json:"positionals,omitempty"`
	ExclusiveGroups [][]string      `json:"exclusive_groups,omitempty"`
}

// FlagByName returns the FlagDef named name, or nil if the schema has none.
func (s *ToolSchema) FlagByName(name string) *FlagDef {
	for i := range s.Flags {
		if s.Flags[i].Name == name {
			return &s.Flags[i]
		}
	}
	return nil
}

// RequiredPositionalCount returns how many of the schema's positionals are
// marked required, wherever they appear in the declared order.
func (s *ToolSchema) RequiredPositionalCount() int {
	n := 0
	for _, p := range s.Positionals {
		if p.Required {
			n++
		}
	}
	return n
}
