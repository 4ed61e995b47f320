package httpsurface

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type contextKey int

const projectIDCtxKey contextKey = iota

// APIKeyVerifier checks a bearer token against a stored bcrypt hash and
// returns the project ID it belongs to.
type APIKeyVerifier interface {
	Verify(ctx context.Context, token string) (projectID string, ok bool)
}

// StaticKeyVerifier checks every incoming token against one bcrypt hash,
// for single-tenant deployments where a Postgres-backed verifier would be
// overkill.
type StaticKeyVerifier struct {
	ProjectID string
	KeyHash   []byte
}

func (v StaticKeyVerifier) Verify(_ context.Context, token string) (string, bool) {
	if bcrypt.CompareHashAndPassword(v.KeyHash, []byte(token)) != nil {
		return "", false
	}
	return v.ProjectID, true
}

func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

func projectIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(projectIDCtxKey).(string)
	return v, ok
}

// requireAuth validates the request's bearer token against verifier and
// injects the resolved project ID into the request context.
func requireAuth(verifier APIKeyVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "missing or invalid Authorization header"})
			return
		}

		projectID, ok := verifier.Verify(r.Context(), token)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "invalid API key"})
			return
		}

		ctx := context.WithValue(r.Context(), projectIDCtxKey, projectID)
		next(w, r.WithContext(ctx))
	}
}
