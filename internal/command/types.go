// Package command defines structured invocations (ParsedArgs) and the
// discrete-argv Command they build into, and the CommandBuilder that does
// the building. No element of a built Command ever contains a field
// separator for downstream code to re-split.
package command

import "github.com/wardhq/ward/internal/validate"

// ParsedFlag is one flag occurrence as supplied by the producer, in the
// order the producer supplied it.
type ParsedFlag = validate.ParsedFlag

// ParsedArgs is the producer's structured description of one invocation's
// arguments, prior to validation or building.
type ParsedArgs = validate.ParsedArgs

// EnvPair is one entry in a Command's additive environment delta.
type EnvPair struct {
	Key   string
	Value string
}

// Command is a fully built, immutable, structured invocation: every
// argument is a discrete slice element, never a concatenated string a
// downstream shell would need to re-split.
type Command struct {
	ToolID               string
	Binary               string
	Args                 []string
	Cwd                  string
	EnvDelta             []EnvPair
	RequestedCapabilities []string
}
