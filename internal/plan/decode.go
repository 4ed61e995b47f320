package plan

import (
	"encoding/json"
	"fmt"

	"github.com/wardhq/ward/internal/command"
)

// wireParam, wireStep, and wirePlan mirror the untrusted JSON a plan
// document submits (spec.md §6). Unknown top-level keys are ignored by
// json.Unmarshal rather than rejected: the plan protocol treats forward-
// compatible producer fields as the document's business, not ward's.
type wireParam struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

type wireStep struct {
	ToolID              string      `json:"tool_id"`
	Params              []wireParam `json:"params"`
	Positionals         []string    `json:"positionals"`
	Justification       string      `json:"justification"`
	RiskScore           float64     `json:"risk_score"`
	CapabilityRequests  []string    `json:"capability_requests"`
}

type wirePlan struct {
	PlanID      string     `json:"plan_id"`
	Description string     `json:"description"`
	Steps       []wireStep `json:"steps"`
}

// Decode parses raw into a Plan. It returns an error only on structurally
// invalid JSON or a missing required field — never on an unrecognized
// step-level tool_id, which is a validation-time concern, not a decode
// error.
func Decode(raw []byte) (*Plan, error) {
	var wire wirePlan
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	if wire.PlanID == "" {
		return nil, fmt.Errorf("plan: decode: missing plan_id")
	}

	p := &Plan{ID: wire.PlanID, Description: wire.Description, Steps: make([]PlanStep, 0, len(wire.Steps))}
	for _, ws := range wire.Steps {
		if ws.ToolID == "" {
			return nil, fmt.Errorf("plan: decode: step missing tool_id")
		}
		step := PlanStep{
			ToolID:             ws.ToolID,
			Justification:      ws.Justification,
			RiskScore:          ws.RiskScore,
			CapabilityRequests: ws.CapabilityRequests,
		}
		step.Args.Positionals = ws.Positionals
		for _, wp := range ws.Params {
			step.Args.Flags = append(step.Args.Flags, command.ParsedFlag{Name: wp.Name, Value: wp.Value})
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}
