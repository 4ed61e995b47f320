// Package plan validates and runs Plans: ordered sequences of tool
// invocations submitted by a producer that need not be trusted, an AI
// agent among them. Validation never stops at the first bad step — every
// step is checked so a producer can see every problem in one response
// (spec.md invariant I7) — but Run only executes a Plan whose every step
// validated cleanly.
package plan

import (
	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/command"
	"github.com/wardhq/ward/internal/validate"
)

// PlanStep is one untrusted step of a Plan, prior to validation. It
// carries no cwd of its own: spec.md §4.5 binds every step's provisional
// authority check to the plan's fs_root, independent of any per-step
// override, and the wire format (spec.md §6) never declares one.
type PlanStep struct {
	ToolID             string
	Args               command.ParsedArgs
	Justification      string
	RiskScore          float64
	CapabilityRequests []string
}

// Plan is the full untrusted document a producer submits.
type Plan struct {
	ID          string
	Description string
	Steps       []PlanStep
}

// StepOutcome tags which of the four mutually exclusive verdicts a step
// received.
type StepOutcome string

const (
	StepValid           StepOutcome = "valid"
	StepUnknownTool     StepOutcome = "unknown_tool"
	StepSchemaInvalid   StepOutcome = "schema_invalid"
	StepAuthorityDenied StepOutcome = "authority_denied"
)

// StepValidation is the outcome of validating one PlanStep. Exactly one
// of Result's four tags applies; Failures is populated only for
// StepSchemaInvalid and DenialReason only for StepAuthorityDenied.
type StepValidation struct {
	Index        int
	ToolID       string
	Result       StepOutcome
	Failures     []validate.Error
	DenialReason authority.DenialReason
	Detail       string
}

// PlanValidation is the outcome of validating an entire Plan. AllValid is
// true only if every step validated cleanly; FailedCount is the number
// of steps whose Result is not StepValid.
type PlanValidation struct {
	PlanID      string
	AllValid    bool
	FailedCount int
	Steps       []StepValidation
}

// StepResult is the outcome of running one PlanStep that reached the
// Executor. A step skipped because the Plan failed validation has no
// corresponding StepResult.
type StepResult struct {
	Index    int
	ToolID   string
	ExitCode int
	TimedOut bool
	Stdout   string
	Stderr   string
	Err      error
}
