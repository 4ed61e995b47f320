package httpsurface

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wardhq/ward/internal/audit"
	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/executor"
	"github.com/wardhq/ward/internal/plan"
)

// handleValidatePlan implements POST /v1/plans/validate: decode, then
// validate every step, never short-circuiting, so the producer sees a
// verdict for the whole document in one response.
func (d *Dependencies) handleValidatePlan(w http.ResponseWriter, r *http.Request) {
	var req ValidatePlanRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "invalid JSON body"})
		return
	}

	p, err := plan.Decode(req.Plan)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	token, ok := d.resolveToken(w, r)
	if !ok {
		return
	}

	result := d.Protocol.Validate(r.Context(), token, p)
	writeJSON(w, http.StatusOK, result)
}

// handleExecutePlan implements POST /v1/plans/execute: the same pipeline
// as validate, but on a clean verdict it also runs every step.
func (d *Dependencies) handleExecutePlan(w http.ResponseWriter, r *http.Request) {
	var req ExecutePlanRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "invalid JSON body"})
		return
	}

	p, err := plan.Decode(req.Plan)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	token, ok := d.resolveToken(w, r)
	if !ok {
		return
	}

	validation, results := d.Protocol.Run(r.Context(), token, p, executor.ExecConfig{TimeoutMS: 30000})
	writeJSON(w, http.StatusOK, map[string]any{
		"validation": validation,
		"results":    results,
	})
}

// resolveToken looks up the AuthorityToken for the request's bearer-auth-
// verified project ID. It writes an error response and returns ok=false
// if no token resolves — a project with no loaded authority document gets
// the same denial as a project that doesn't exist: ward never falls back
// to an implicit default grant over HTTP.
func (d *Dependencies) resolveToken(w http.ResponseWriter, r *http.Request) (*authority.AuthorityToken, bool) {
	projectID, ok := projectIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "no project resolved for this request"})
		return nil, false
	}

	tok, found, err := d.Tokens.Resolve(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to resolve authority token"})
		return nil, false
	}
	if !found {
		writeJSON(w, http.StatusForbidden, ErrorResp{Detail: "no authority token loaded for this project"})
		return nil, false
	}
	return &tok, true
}

// handleListSchemas implements GET /v1/schemas.
func (d *Dependencies) handleListSchemas(w http.ResponseWriter, _ *http.Request) {
	ids := d.Store.IDs()
	schemas := make([]any, 0, len(ids))
	for _, id := range ids {
		if s, ok := d.Store.Get(id); ok {
			schemas = append(schemas, s)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": schemas})
}

// handleListAuditEvents implements GET /v1/audit/events.
func (d *Dependencies) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "audit query store not configured"})
		return
	}

	params := audit.ListEventsParams{Page: 1, PageSize: 50}
	q := r.URL.Query()
	if v := q.Get("tool_id"); v != "" {
		params.ToolID = &v
	}
	if v := q.Get("decision"); v != "" {
		params.Decision = &v
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.PageSize = n
		}
	}

	events, total, err := d.Reader.ListEvents(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to query audit events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "total": total})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
