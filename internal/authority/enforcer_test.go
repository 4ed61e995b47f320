package authority

import (
	"testing"
	"time"

	"github.com/wardhq/ward/internal/command"
)

func gitCommitCommand(args ...string) *command.Command {
	return &command.Command{ToolID: "git.commit", Binary: "/usr/bin/git", Args: args, Cwd: "/home/project"}
}

func baseToken() *AuthorityToken {
	return &AuthorityToken{
		Level:        LevelParameterizedTools,
		AllowedTools: []string{"git.commit"},
		AllowedBins:  []string{"/usr/bin/git"},
		FsRoot:       "/home/project",
	}
}

func TestEnforcerNoTokenDenies(t *testing.T) {
	e := NewEnforcer(nil)
	d := e.Check(nil, gitCommitCommand())
	if d.Allowed || d.Reason != DenyNoAuthorityLoaded {
		t.Fatalf("expected DenyNoAuthorityLoaded, got %+v", d)
	}
}

func TestEnforcerObserveDeniesExecution(t *testing.T) {
	tok := baseToken()
	tok.Level = LevelObserve
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if d.Allowed {
		t.Fatal("expected observe-level token to deny execution")
	}
	if d.Reason != DenyInsufficientLevel {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}

func TestEnforcerToolNotInAllowList(t *testing.T) {
	tok := baseToken()
	tok.AllowedTools = []string{"git.status"}
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if d.Allowed || d.Reason != DenyToolNotInAllowList {
		t.Fatalf("expected DenyToolNotInAllowList, got %+v", d)
	}
}

func TestEnforcerEmptyAllowListDeniesEverything(t *testing.T) {
	tok := baseToken()
	tok.AllowedTools = nil
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if d.Allowed {
		t.Fatal("expected an empty allow-list to deny, not implicitly allow")
	}
}

func TestEnforcerBinaryNotInAllowList(t *testing.T) {
	tok := baseToken()
	tok.AllowedBins = []string{"/usr/bin/ls"}
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if d.Allowed || d.Reason != DenyBinaryNotInAllowList {
		t.Fatalf("expected DenyBinaryNotInAllowList, got %+v", d)
	}
}

func TestEnforcerCwdOutsideFsRoot(t *testing.T) {
	tok := baseToken()
	cmd := gitCommitCommand()
	cmd.Cwd = "/home/other-project"
	e := NewEnforcer(nil)

	d := e.Check(tok, cmd)
	if d.Allowed || d.Reason != DenyCwdOutsideFsRoot {
		t.Fatalf("expected DenyCwdOutsideFsRoot, got %+v", d)
	}
}

func TestEnforcerCwdPrefixBoundaryIsPathAware(t *testing.T) {
	tok := baseToken()
	tok.FsRoot = "/home/project"
	cmd := gitCommitCommand()
	cmd.Cwd = "/home/projectEvil"

	e := NewEnforcer(nil)
	d := e.Check(tok, cmd)
	if d.Allowed || d.Reason != DenyCwdOutsideFsRoot {
		t.Fatalf("expected /home/projectEvil to be rejected as outside /home/project, got %+v", d)
	}
}

func TestEnforcerExpiredTokenDenies(t *testing.T) {
	tok := baseToken()
	tok.Expiration = time.Now().Add(-time.Hour).Unix()
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if d.Allowed || d.Reason != DenyAuthorityExpired {
		t.Fatalf("expected DenyAuthorityExpired, got %+v", d)
	}
}

func TestEnforcerToolsOnlyForbidsArgs(t *testing.T) {
	tok := baseToken()
	tok.Level = LevelToolsOnly
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand("--message", "hi"))
	if d.Allowed || d.Reason != DenyInsufficientLevel {
		t.Fatalf("expected tools_only to deny parameterised args, got %+v", d)
	}
}

func TestEnforcerToolsOnlyAllowsBareInvocation(t *testing.T) {
	tok := baseToken()
	tok.Level = LevelToolsOnly
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand())
	if !d.Allowed {
		t.Fatalf("expected tools_only to allow an unparameterised invocation, got %+v", d)
	}
}

func TestEnforcerAllowsWithinGrant(t *testing.T) {
	tok := baseToken()
	e := NewEnforcer(nil)

	d := e.Check(tok, gitCommitCommand("--message", "hi"))
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
}
