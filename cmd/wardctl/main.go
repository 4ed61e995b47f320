// Command wardctl runs the ward HTTP submission surface: schema loading,
// plan validation and execution, and audit querying, behind a single
// bearer-token-authenticated API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"github.com/wardhq/ward/internal/audit"
	"github.com/wardhq/ward/internal/authority"
	"github.com/wardhq/ward/internal/executor"
	"github.com/wardhq/ward/internal/httpsurface"
	"github.com/wardhq/ward/internal/plan"
	"github.com/wardhq/ward/internal/schema"
	"github.com/wardhq/ward/internal/wardcfg"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-api-key" {
		runHashAPIKey(os.Args[2:])
		return
	}

	logger := mustBuildLogger(envOrDefault("WARD_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	httpPort := envOrDefault("WARD_HTTP_PORT", "8080")
	schemaDir := envOrDefault("WARD_SCHEMA_DIR", "./schemas")
	authorityPath := envOrDefault("WARD_AUTHORITY_FILE", "./ward.yaml")
	projectRoot := envOrDefault("WARD_PROJECT_ROOT", ".")
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	postgresDSN := os.Getenv("POSTGRES_DSN")
	cacheTTL := envOrDefaultInt("WARD_AUTH_CACHE_TTL_S", 30)
	apiKeyHash := os.Getenv("WARD_API_KEY_HASH")

	logger.Info("starting ward",
		zap.String("http_port", httpPort),
		zap.String("schema_dir", schemaDir),
	)

	store := schema.NewStore(logger)
	loaded, errs := store.LoadDir(context.Background(), schemaDir)
	for _, err := range errs {
		logger.Warn("schema load failed", zap.Error(err))
	}
	logger.Info("schemas loaded", zap.Int("count", loaded))

	// Audit sink — ClickHouse or LogWriter fallback.
	var auditWriter audit.Writer
	if clickhouseDSN != "" {
		chWriter, err := audit.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer", zap.Error(err))
			auditWriter = audit.NewLogWriter(logger)
		} else {
			auditWriter = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		auditWriter = audit.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer auditWriter.Close()

	var auditReader *audit.Reader
	if clickhouseDSN != "" {
		var err error
		auditReader, err = audit.NewReader(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse reader connection failed", zap.Error(err))
		} else {
			defer func() { _ = auditReader.Close() }()
			logger.Info("clickhouse reader connected")
		}
	}

	enf := authority.NewEnforcer(auditWriter)
	exec := executor.New(enf, auditWriter, logger)
	proto := plan.New(store, enf, exec)

	// Token resolution — Postgres-backed multi-tenant lookup when
	// configured, otherwise a single authority file (WARD_AUTHORITY_FILE,
	// ./ward.yaml by default) bound to WARD_PROJECT_ROOT.
	var tokens httpsurface.TokenResolver
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		tokens = wardcfg.NewPostgresTokenStore(wardcfg.PostgresTokenStoreConfig{
			DB:       db,
			CacheTTL: time.Duration(cacheTTL) * time.Second,
			Logger:   logger,
		})
		logger.Info("postgres connected, using per-project authority lookup")
	} else {
		tok, err := wardcfg.LoadFile(authorityPath, projectRoot)
		if err != nil {
			logger.Fatal("failed to load authority file", zap.Error(err))
		}
		tokens = singleProjectResolver{token: tok}
		logger.Info("using single-project authority file",
			zap.String("path", authorityPath),
			zap.String("level", string(tok.Level)),
		)
	}

	if apiKeyHash == "" {
		logger.Fatal("WARD_API_KEY_HASH is required")
	}

	deps := &httpsurface.Dependencies{
		Store:    store,
		Protocol: proto,
		Tokens:   tokens,
		Reader:   auditReader,
		Verifier: httpsurface.StaticKeyVerifier{ProjectID: "default", KeyHash: []byte(apiKeyHash)},
		Logger:   logger,
	}

	httpServer := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      httpsurface.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("ward stopped")
}

// singleProjectResolver always resolves to the same token, for a
// single-tenant deployment driven by one ward.yaml rather than Postgres.
type singleProjectResolver struct {
	token authority.AuthorityToken
}

func (r singleProjectResolver) Resolve(_ context.Context, _ string) (authority.AuthorityToken, bool, error) {
	return r.token, true, nil
}

// runHashAPIKey implements `wardctl hash-api-key <plaintext>`: an operator
// utility for minting the WARD_API_KEY_HASH value the server reads at
// startup. It prints the hash to stdout and exits — it never touches the
// schema store, authority config, or HTTP surface main otherwise builds.
func runHashAPIKey(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: wardctl hash-api-key <plaintext>")
		os.Exit(2)
	}
	hash, err := hashAPIKey(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash-api-key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// hashAPIKey bcrypt-hashes plaintext into the form WARD_API_KEY_HASH
// expects; httpsurface.StaticKeyVerifier compares incoming bearer tokens
// against this hash with bcrypt.CompareHashAndPassword.
func hashAPIKey(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
