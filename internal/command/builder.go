package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wardhq/ward/internal/schema"
	"github.com/wardhq/ward/internal/validate"
)

// ErrSchemaValidationFailed wraps the validation failures that stopped
// Build from producing a Command. Build never partially builds: on any
// failure the returned Command is nil.
var ErrSchemaValidationFailed = errors.New("command: parsed args failed schema validation")

// ValidationFailure carries the full failure list behind
// ErrSchemaValidationFailed so callers can errors.As into it.
type ValidationFailure struct {
	Failures []validate.Error
}

func (f *ValidationFailure) Error() string {
	return fmt.Sprintf("%v: %d failure(s)", ErrSchemaValidationFailed, len(f.Failures))
}

func (f *ValidationFailure) Unwrap() error {
	return ErrSchemaValidationFailed
}

// Build validates parsed against s and, if it passes, produces a Command
// whose Args hold the tail of the tool's dotted id as a leading subcommand
// token (s.ID "git.commit" -> "commit"; no leading element when s.ID has
// no dot), followed by long-form flags in the order parsed supplied them,
// followed by positionals in order. Two calls with the same schema and
// parsed value always build the same Args (spec.md invariant I2).
func Build(s *schema.ToolSchema, parsed ParsedArgs, cwd string, envDelta []EnvPair) (*Command, error) {
	if failures := validate.Validate(s, parsed); len(failures) > 0 {
		return nil, &ValidationFailure{Failures: failures}
	}

	args := make([]string, 0, 1+2*len(parsed.Flags)+len(parsed.Positionals))
	if i := strings.LastIndexByte(s.ID, '.'); i >= 0 {
		args = append(args, s.ID[i+1:])
	}

	for _, pf := range parsed.Flags {
		args = append(args, "--"+pf.Name)
		if pf.Value != nil {
			args = append(args, *pf.Value)
		}
	}
	args = append(args, parsed.Positionals...)

	return &Command{
		ToolID:                s.ID,
		Binary:                s.Binary,
		Args:                  args,
		Cwd:                   cwd,
		EnvDelta:              envDelta,
		RequestedCapabilities: s.Capabilities,
	}, nil
}
