package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wardhq/ward/internal/schema"
)

func gitCommitSchema() *schema.ToolSchema {
	return &schema.ToolSchema{
		ID:      "git.commit",
		Name:    "Git commit",
		Binary:  "git",
		Version: 1,
		Risk:    schema.RiskLocalWrite,
		Flags: []schema.FlagDef{
			{Name: "message", ArgType: schema.ArgString, Required: true},
			{Name: "all", ArgType: schema.ArgBool},
		},
	}
}

func strPtr(s string) *string { return &s }

func TestBuildDeterministicArgv(t *testing.T) {
	s := gitCommitSchema()
	parsed := ParsedArgs{
		Flags: []ParsedFlag{
			{Name: "message", Value: strPtr("test commit")},
			{Name: "all"},
		},
	}

	cmd, err := Build(s, parsed, "/repo", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"commit", "--message", "test commit", "--all"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("got %v, want %v", cmd.Args, want)
	}
	if cmd.Binary != "git" || cmd.ToolID != "git.commit" || cmd.Cwd != "/repo" {
		t.Fatalf("unexpected command fields: %+v", cmd)
	}

	cmd2, err := Build(s, parsed, "/repo", nil)
	if err != nil {
		t.Fatalf("unexpected error on rebuild: %v", err)
	}
	if !reflect.DeepEqual(cmd.Args, cmd2.Args) {
		t.Fatalf("two builds from identical input diverged: %v vs %v", cmd.Args, cmd2.Args)
	}
}

func TestBuildNoLeadingTokenWithoutDottedID(t *testing.T) {
	s := &schema.ToolSchema{
		ID:      "true",
		Name:    "True",
		Binary:  "/bin/true",
		Version: 1,
		Risk:    schema.RiskSafe,
	}

	cmd, err := Build(s, ParsedArgs{}, "/tmp", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmd.Args) != 0 {
		t.Fatalf("expected no leading subcommand token for undotted id, got %v", cmd.Args)
	}
}

func TestBuildRejectsInvalidArgs(t *testing.T) {
	s := gitCommitSchema()
	_, err := Build(s, ParsedArgs{}, "/repo", nil)
	if err == nil {
		t.Fatal("expected an error for missing required flag")
	}
	var vf *ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("expected *ValidationFailure, got %T", err)
	}
	if len(vf.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", vf.Failures)
	}
}
