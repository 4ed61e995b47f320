package plan

import "testing"

func TestDecodeHappyPath(t *testing.T) {
	raw := []byte(`{
		"plan_id": "plan-xyz",
		"description": "commit and push",
		"steps": [
			{"tool_id": "git.commit", "params": [{"name": "message", "value": "fix bug"}], "positionals": []},
			{"tool_id": "git.push", "params": [{"name": "force", "value": null}], "justification": "ship the fix", "risk_score": 0.4}
		]
	}`)

	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "plan-xyz" {
		t.Fatalf("unexpected id: %s", p.ID)
	}
	if p.Description != "commit and push" {
		t.Fatalf("unexpected description: %s", p.Description)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(p.Steps))
	}
	if p.Steps[0].Args.Flags[0].Name != "message" || *p.Steps[0].Args.Flags[0].Value != "fix bug" {
		t.Fatalf("unexpected first step flags: %+v", p.Steps[0].Args.Flags)
	}
	if p.Steps[1].Args.Flags[0].Value != nil {
		t.Fatalf("expected a bare toggle param to decode with a nil value")
	}
	if p.Steps[1].Justification != "ship the fix" || p.Steps[1].RiskScore != 0.4 {
		t.Fatalf("unexpected second step: %+v", p.Steps[1])
	}
}

func TestDecodeRejectsMissingPlanID(t *testing.T) {
	_, err := Decode([]byte(`{"steps": []}`))
	if err == nil {
		t.Fatal("expected an error for missing plan_id")
	}
}

func TestDecodeRejectsStepMissingToolID(t *testing.T) {
	_, err := Decode([]byte(`{"plan_id": "p", "steps": [{"params": []}]}`))
	if err == nil {
		t.Fatal("expected an error for a step missing tool_id")
	}
}

func TestDecodeIgnoresUnknownTopLevelKeys(t *testing.T) {
	raw := []byte(`{"plan_id": "p", "steps": [], "producer": "some-ai-agent", "metadata": {"x": 1}}`)
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p" {
		t.Fatalf("unexpected id: %s", p.ID)
	}
}
