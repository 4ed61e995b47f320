package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wardhq/ward/internal/audit"
	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/command"
)

// Executor spawns Commands that have already cleared an Enforcer.Check.
// It re-checks the same Enforcer immediately before spawning (spec.md
// invariant I4): a Command approved at plan-validation time is never
// trusted to still be approved at run time without asking again.
type Executor struct {
	enf    *authority.Enforcer
	audit  audit.Writer
	logger *zap.Logger
}

// New builds an Executor over enf — the single authority gate this
// Executor re-checks before every spawn.
func New(enf *authority.Enforcer, w audit.Writer, logger *zap.Logger) *Executor {
	if w == nil {
		w = audit.NewLogWriter(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{enf: enf, audit: w, logger: logger}
}

// Execute re-checks cmd against token, and only on a fresh allow spawns
// it as a direct child process — no shell is ever invoked. cmd.Args
// become exec.CommandContext's argv tail verbatim. cfg.TimeoutMS == 0
// means Execute waits for the child indefinitely, per spec.md §9. The
// child runs in its own process group (see setupProcessGroup) so a
// timeout kills the whole group, not just the direct child. The child's
// environment is never the full parent environment — see buildEnv.
func (x *Executor) Execute(ctx context.Context, token *authority.AuthorityToken, cmd *command.Command, cfg ExecConfig) (*ExecResult, error) {
	decision := x.enf.Check(token, cmd)
	if !decision.Allowed {
		return nil, &ExecError{Kind: "AuthorityDenied", Err: errors.New(string(decision.Reason))}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout := cfg.Timeout(); timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Cwd
	c.Env = buildEnv(cmd.EnvDelta)
	setupProcessGroup(c)
	c.Cancel = func() error { return killProcessGroup(c) }

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	runErr := c.Run()
	duration := time.Since(start)

	if spawnErr, ok := asSpawnFailure(runErr); ok {
		return nil, &ExecError{Kind: "SpawnFailed", Err: spawnErr}
	}

	result := &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
		TimedOut: runCtx.Err() == context.DeadlineExceeded,
	}
	result.ExitCode, result.Class = classifyExit(result.TimedOut, runErr)

	event := audit.NewEvent(cmd.ToolID, authority.ProjectIDHex(token.ProjectID), "executor", "allow")
	event.ExitCode = result.ExitCode
	event.DurationMs = float64(duration.Microseconds()) / 1000.0
	x.audit.Write(event)

	return result, nil
}

// baseEnvKeys is the fixed, minimal set of the parent (ward server)
// process's environment variables a spawned child inherits before
// cmd.EnvDelta is applied on top: PATH so the OS can resolve a bare
// binary name, HOME/TMPDIR/LANG/TERM so well-behaved CLI tools don't fall
// back to surprising locale or scratch-space defaults. This resolves
// spec.md §9's environment-base Open Question as a defined minimal base,
// not full os.Environ() inheritance — see DESIGN.md's executor entry.
// Anything a tool needs beyond this list must arrive as an explicit
// EnvPair in the Command's EnvDelta, per spec.md §1's Non-goal
// "environment inheritance beyond an explicit delta": a secret or API key
// sitting in ward's own process environment is never handed to a
// spawned tool by default.
var baseEnvKeys = []string{"PATH", "HOME", "TMPDIR", "LANG", "TERM"}

func buildEnv(delta []command.EnvPair) []string {
	env := make([]string, 0, len(baseEnvKeys)+len(delta))
	for _, key := range baseEnvKeys {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	for _, pair := range delta {
		env = append(env, pair.Key+"="+pair.Value)
	}
	return env
}

// setupProcessGroup puts c in its own process group so a timeout (or any
// other cancellation) can kill every process the child spawned, not just
// the direct child — grounded on the same Setpgid pattern
// theRebelliousNerd-codenerd/internal/tactile uses for its own sandboxed
// command execution.
func setupProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to c's entire process group. Used as
// c.Cancel so a context deadline kills the group, not merely c.Process.
// It always returns nil: the point is the side effect of killing, not
// reporting a cancellation error — the real exit status classifyExit
// needs comes from the process's own Wait(), once the SIGKILL lands.
func killProcessGroup(c *exec.Cmd) error {
	if c.Process == nil {
		return nil
	}
	if pgid, err := syscall.Getpgid(c.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	} else {
		_ = c.Process.Kill()
	}
	return nil
}

// asSpawnFailure reports whether runErr means the OS never managed to
// start the child at all (binary missing, permission denied) — spec.md
// §4.6's SpawnFailed, distinct from a child that started and was later
// killed, stopped, or exited non-zero.
func asSpawnFailure(runErr error) (error, bool) {
	if runErr == nil {
		return nil, false
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return nil, false
	}
	return runErr, true
}

// classifyExit maps a Run error to the exit code and class spec.md's
// Executor section names: a clean exit reports its own code, a timed-out
// or otherwise signaled process reports 128, a stopped process reports
// 127, and anything exec/os doesn't explain reports 1.
func classifyExit(timedOut bool, runErr error) (int, ExitClass) {
	if runErr == nil {
		return 0, ExitExited
	}

	if timedOut {
		return 128, ExitKilledBySignal
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			switch {
			case status.Signaled():
				return 128, ExitKilledBySignal
			case status.Stopped():
				return 127, ExitStopped
			}
			return status.ExitStatus(), ExitExited
		}
		return exitErr.ExitCode(), ExitExited
	}

	return 1, ExitUnknown
}
