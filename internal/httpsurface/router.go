package httpsurface

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wardhq/ward/internal/audit"
	"github.com/wardhq/ward/internal/plan"
	"github.com/wardhq/ward/internal/schema"
)

// Dependencies holds shared state injected into every HTTP handler.
type Dependencies struct {
	Store    *schema.Store
	Protocol *plan.Protocol
	Tokens   TokenResolver
	Reader   *audit.Reader // nil if ClickHouse is unavailable
	Verifier APIKeyVerifier
	Logger   *zap.Logger
}

// NewRouter builds the HTTP mux with every ward route wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/plans/validate", requireAuth(deps.Verifier, deps.handleValidatePlan))
	mux.HandleFunc("POST /v1/plans/execute", requireAuth(deps.Verifier, deps.handleExecutePlan))
	mux.HandleFunc("GET /v1/schemas", requireAuth(deps.Verifier, deps.handleListSchemas))
	mux.HandleFunc("GET /v1/audit/events", requireAuth(deps.Verifier, deps.handleListAuditEvents))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogging(mux, deps.Logger)
}

func requestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
