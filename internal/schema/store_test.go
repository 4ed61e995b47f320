package schema

import (
	"strconv"
	"testing"
)

func trueSchemaJSON(version int) []byte {
	return []byte(`{
		"id": "test.true",
		"name": "true",
		"binary": "/bin/true",
		"version": ` + strconv.Itoa(version) + `,
		"risk": "safe",
		"flags": [],
		"positionals": []
	}`)
}

func TestStoreLoadHappyPath(t *testing.T) {
	s := NewStore(nil)
	if err := s.Load(trueSchemaJSON(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("expected count 1, got %d", s.Count())
	}
	got, ok := s.Get("test.true")
	if !ok {
		t.Fatal("expected tool to be present")
	}
	if got.Binary != "/bin/true" {
		t.Fatalf("unexpected binary: %s", got.Binary)
	}
}

func TestStoreVersionDowngradeRejected(t *testing.T) {
	s := NewStore(nil)
	if err := s.Load(trueSchemaJSON(1)); err != nil {
		t.Fatalf("unexpected error loading v1: %v", err)
	}
	err := s.Load(trueSchemaJSON(1))
	if err == nil {
		t.Fatal("expected a version downgrade error")
	}
	if _, ok := err.(*VersionDowngradeError); !ok {
		t.Fatalf("expected VersionDowngradeError, got %T: %v", err, err)
	}
	got, _ := s.Get("test.true")
	if got.Version != 1 {
		t.Fatalf("store should still hold v1, got v%d", got.Version)
	}
}

func TestStoreVersionUpgradeAccepted(t *testing.T) {
	s := NewStore(nil)
	if err := s.Load(trueSchemaJSON(1)); err != nil {
		t.Fatalf("unexpected error loading v1: %v", err)
	}
	if err := s.Load(trueSchemaJSON(2)); err != nil {
		t.Fatalf("unexpected error loading v2: %v", err)
	}
	got, _ := s.Get("test.true")
	if got.Version != 2 {
		t.Fatalf("expected v2, got v%d", got.Version)
	}
}

func TestStoreRejectsMalformedDocument(t *testing.T) {
	s := NewStore(nil)
	err := s.Load([]byte(`{"id": "x"}`))
	if err == nil {
		t.Fatal("expected malformed error")
	}
	if _, ok := err.(*MalformedError); !ok {
		t.Fatalf("expected *MalformedError, got %T", err)
	}
}

func TestStoreRejectsExclusiveGroupWithUndeclaredFlag(t *testing.T) {
	s := NewStore(nil)
	raw := []byte(`{
		"id": "git.commit",
		"name": "commit",
		"binary": "git",
		"version": 1,
		"risk": "local_write",
		"flags": [{"name": "message", "arg_type": "string", "required": true}],
		"exclusive_groups": [["message", "amend"]]
	}`)
	err := s.Load(raw)
	if err == nil {
		t.Fatal("expected inconsistency error")
	}
	if _, ok := err.(*InconsistentError); !ok {
		t.Fatalf("expected *InconsistentError, got %T", err)
	}
}
