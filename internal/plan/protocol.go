package plan

import (
	"context"

	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/command"
	"github.com/wardhq/ward/internal/executor"
	"github.com/wardhq/ward/internal/schema"
)

// Protocol validates and runs Plans against a fixed schema Store,
// Enforcer, and Executor. Every call takes the AuthorityToken that
// applies to it, so one Protocol serves concurrent requests scoped to
// different projects.
type Protocol struct {
	store *schema.Store
	enf   *authority.Enforcer
	exec  *executor.Executor
}

// New builds a Protocol over store, enf, and exec.
func New(store *schema.Store, enf *authority.Enforcer, exec *executor.Executor) *Protocol {
	return &Protocol{store: store, enf: enf, exec: exec}
}

// Validate checks every step of p against token, in document order,
// without stopping at the first invalid step (spec.md invariant I7): a
// producer gets back a verdict for every step in one response.
//
// The per-step authority check (spec.md §4.5 step 3) binds a provisional
// Command with empty args and cwd = token.FsRoot, independent of
// anything the step itself declares: validation asks only "could this
// tool ever run under this authority," not "would this exact
// invocation's cwd be allowed," since a step's real cwd is not part of
// the wire format at all.
func (p *Protocol) Validate(ctx context.Context, token *authority.AuthorityToken, plan *Plan) *PlanValidation {
	result := &PlanValidation{PlanID: plan.ID, AllValid: true}

	for i, step := range plan.Steps {
		sv := StepValidation{Index: i, ToolID: step.ToolID}

		s, ok := p.store.Get(step.ToolID)
		if !ok {
			sv.Result = StepUnknownTool
			sv.Detail = step.ToolID
			result.Steps = append(result.Steps, sv)
			result.AllValid = false
			result.FailedCount++
			continue
		}

		cmd, err := command.Build(s, step.Args, "", nil)
		if err != nil {
			sv.Result = StepSchemaInvalid
			if vf, ok := err.(*command.ValidationFailure); ok {
				sv.Failures = vf.Failures
			}
			result.Steps = append(result.Steps, sv)
			result.AllValid = false
			result.FailedCount++
			continue
		}

		provisional := &command.Command{
			ToolID: cmd.ToolID,
			Binary: cmd.Binary,
			Cwd:    token.FsRoot,
		}

		decision := p.enf.Check(token, provisional)
		if !decision.Allowed {
			sv.Result = StepAuthorityDenied
			sv.DenialReason = decision.Reason
			sv.Detail = decision.Detail
			result.Steps = append(result.Steps, sv)
			result.AllValid = false
			result.FailedCount++
			continue
		}

		sv.Result = StepValid
		result.Steps = append(result.Steps, sv)
	}

	return result
}

// Run validates plan and, only if every step is valid, executes its
// steps in order through the Protocol's Executor, stopping at the first
// step whose execution returns an error. Run never executes any step of
// a plan that failed Validate.
func (p *Protocol) Run(ctx context.Context, token *authority.AuthorityToken, plan *Plan, cfg executor.ExecConfig) (*PlanValidation, []*StepResult) {
	validation := p.Validate(ctx, token, plan)
	if !validation.AllValid {
		return validation, nil
	}

	results := make([]*StepResult, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		s, _ := p.store.Get(step.ToolID)
		cmd, err := command.Build(s, step.Args, token.FsRoot, nil)
		if err != nil {
			results = append(results, &StepResult{Index: i, ToolID: step.ToolID, Err: err})
			return validation, results
		}

		execResult, err := p.exec.Execute(ctx, token, cmd, cfg)
		sr := &StepResult{Index: i, ToolID: step.ToolID, Err: err}
		if execResult != nil {
			sr.ExitCode = execResult.ExitCode
			sr.TimedOut = execResult.TimedOut
			sr.Stdout = execResult.Stdout
			sr.Stderr = execResult.Stderr
		}
		results = append(results, sr)

		if err != nil {
			return validation, results
		}
	}

	return validation, results
}
