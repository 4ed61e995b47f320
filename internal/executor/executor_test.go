package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/command"
)

func allowAllToken(binary string) *authority.AuthorityToken {
	return &authority.AuthorityToken{
		Level:        authority.LevelScopedCommands,
		AllowedTools: []string{"sh.true", "sh.false", "sh.sleep"},
		AllowedBins:  []string{binary},
	}
}

func TestExecuteExitZero(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.true", Binary: "true"}

	result, err := x.Execute(context.Background(), allowAllToken("true"), cmd, ExecConfig{TimeoutMS: 2000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 || result.Class != ExitExited || result.TimedOut {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.false", Binary: "false"}

	result, err := x.Execute(context.Background(), allowAllToken("false"), cmd, ExecConfig{TimeoutMS: 2000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 1 || result.Class != ExitExited {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExecuteTimeoutKillsChild(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.sleep", Binary: "sleep", Args: []string{"5"}}

	result, err := x.Execute(context.Background(), allowAllToken("sleep"), cmd, ExecConfig{TimeoutMS: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Class != ExitKilledBySignal || result.ExitCode != 128 || !result.TimedOut {
		t.Fatalf("expected a killed-by-timeout result, got %+v", result)
	}
}

func TestExecuteZeroTimeoutMeansNoTimeout(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.true", Binary: "true"}

	result, err := x.Execute(context.Background(), allowAllToken("true"), cmd, ExecConfig{TimeoutMS: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TimedOut {
		t.Fatal("TimeoutMS=0 must never time out")
	}
}

func TestExecuteReChecksAuthority(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.true", Binary: "true"}
	tok := &authority.AuthorityToken{Level: authority.LevelObserve}

	_, err := x.Execute(context.Background(), tok, cmd, ExecConfig{TimeoutMS: 1000})
	if err == nil {
		t.Fatal("expected an observe-level token to be denied at execution time")
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) || execErr.Kind != "AuthorityDenied" {
		t.Fatalf("expected AuthorityDenied ExecError, got %T: %v", err, err)
	}
}

func TestExecuteSpawnFailedForMissingBinary(t *testing.T) {
	enf := authority.NewEnforcer(nil)
	x := New(enf, nil, nil)
	cmd := &command.Command{ToolID: "sh.missing", Binary: "/no/such/binary-ward-test"}
	tok := &authority.AuthorityToken{
		Level:        authority.LevelScopedCommands,
		AllowedTools: []string{"sh.missing"},
		AllowedBins:  []string{"/no/such/binary-ward-test"},
	}

	_, err := x.Execute(context.Background(), tok, cmd, ExecConfig{TimeoutMS: 1000})
	if err == nil {
		t.Fatal("expected a spawn failure for a nonexistent binary")
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) || execErr.Kind != "SpawnFailed" {
		t.Fatalf("expected SpawnFailed ExecError, got %T: %v", err, err)
	}
}
