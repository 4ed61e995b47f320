package httpsurface

import (
	"context"
	"encoding/json"

	"github.com/wardhq/ward/internal/authority"
)

// TokenResolver resolves a bearer-auth-verified project ID to the
// AuthorityToken that governs it. wardcfg.PostgresTokenStore and
// wardcfg.LoadFile-backed stores both satisfy this.
type TokenResolver interface {
	Resolve(ctx context.Context, projectID string) (authority.AuthorityToken, bool, error)
}

// ErrorResp is the JSON body returned on any non-2xx response.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// ValidatePlanRequest is the POST /v1/plans/validate request body: a raw
// plan document, decoded by the plan package's own decoder rather than
// this package's types.
type ValidatePlanRequest struct {
	Plan json.RawMessage `json:"plan"`
}

// ExecutePlanRequest is the POST /v1/plans/execute request body.
type ExecutePlanRequest struct {
	Plan json.RawMessage `json:"plan"`
}
