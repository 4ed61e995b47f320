package httpsurface

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/executor"
	"github.com/wardhq/ward/internal/plan"
	"github.com/wardhq/ward/internal/schema"
)

type staticAllowVerifier struct{}

func (staticAllowVerifier) Verify(_ context.Context, _ string) (string, bool) { return "proj", true }

type staticTokenResolver struct {
	token authority.AuthorityToken
	found bool
}

func (r staticTokenResolver) Resolve(_ context.Context, _ string) (authority.AuthorityToken, bool, error) {
	return r.token, r.found, nil
}

func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	store := schema.NewStore(nil)
	if err := store.Load([]byte(`{
		"id": "git.commit", "name": "commit", "binary": "git", "version": 1,
		"risk": "local_write",
		"flags": [{"name": "message", "arg_type": "string", "required": true}]
	}`)); err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}

	enf := authority.NewEnforcer(nil)
	exec := executor.New(enf, nil, zap.NewNop())
	proto := plan.New(store, enf, exec)

	tok := authority.AuthorityToken{
		Level:        authority.LevelScopedCommands,
		AllowedTools: []string{"git.commit"},
		AllowedBins:  []string{"git"},
	}

	return &Dependencies{
		Store:    store,
		Protocol: proto,
		Tokens:   staticTokenResolver{token: tok, found: true},
		Verifier: staticAllowVerifier{},
		Logger:   zap.NewNop(),
	}
}

func TestHealthzDoesNotRequireAuth(t *testing.T) {
	deps := newTestDeps(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidatePlanRequiresAuth(t *testing.T) {
	deps := newTestDeps(t)
	body, _ := json.Marshal(ValidatePlanRequest{Plan: []byte(`{"plan_id":"p","steps":[]}`)})
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/validate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a bearer token, got %d", rec.Code)
	}
}

func TestValidatePlanHappyPath(t *testing.T) {
	deps := newTestDeps(t)
	body, _ := json.Marshal(ValidatePlanRequest{Plan: []byte(`{
		"plan_id": "p",
		"steps": [{"tool_id": "git.commit", "params": [{"name": "message", "value": "ok"}]}]
	}`)})
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/validate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result plan.PlanValidation
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.AllValid {
		t.Fatalf("expected the plan to validate cleanly, got %+v", result)
	}
}

func TestValidatePlanDeniesUnknownProject(t *testing.T) {
	deps := newTestDeps(t)
	deps.Tokens = staticTokenResolver{found: false}

	body, _ := json.Marshal(ValidatePlanRequest{Plan: []byte(`{"plan_id":"p","steps":[]}`)})
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/validate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an unresolved project, got %d", rec.Code)
	}
}
