package wardcfg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wardhq/ward/internal/authority"
)

// ProjectTokenStore abstracts the DB query behind PostgresTokenStore, for
// testability.
type ProjectTokenStore interface {
	LookupByProjectID(ctx context.Context, projectID string) (*AuthorityDocument, error)
}

type sqlProjectTokenStore struct {
	db *sql.DB
}

func (s *sqlProjectTokenStore) LookupByProjectID(ctx context.Context, projectID string) (*AuthorityDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT authority_yaml FROM ward_projects WHERE project_id = $1
	`, projectID)

	var raw string
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}

	var doc AuthorityDocument
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode authority document: %w", err)
	}
	return &doc, nil
}

// PostgresTokenStore resolves a project ID to an AuthorityToken, caching
// hits and misses alike behind a TokenCache so the hot path never blocks
// on Postgres once warm.
type PostgresTokenStore struct {
	store  ProjectTokenStore
	cache  *TokenCache
	logger *zap.Logger
}

// PostgresTokenStoreConfig configures a PostgresTokenStore.
type PostgresTokenStoreConfig struct {
	DB       *sql.DB
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewPostgresTokenStore builds a PostgresTokenStore over cfg.DB.
func NewPostgresTokenStore(cfg PostgresTokenStoreConfig) *PostgresTokenStore {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresTokenStore{
		store:  &sqlProjectTokenStore{db: cfg.DB},
		cache:  NewTokenCache(ttl),
		logger: logger,
	}
}

// NewPostgresTokenStoreWithStore builds a PostgresTokenStore over a
// caller-supplied ProjectTokenStore, for tests.
func NewPostgresTokenStoreWithStore(store ProjectTokenStore, cacheTTL time.Duration, logger *zap.Logger) *PostgresTokenStore {
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresTokenStore{store: store, cache: NewTokenCache(cacheTTL), logger: logger}
}

// Resolve returns the AuthorityToken for projectID, serving from cache
// when possible and triggering a background refresh on a stale hit.
func (s *PostgresTokenStore) Resolve(ctx context.Context, projectID string) (authority.AuthorityToken, bool, error) {
	cached := s.cache.Get(projectID)
	if cached.Hit {
		if cached.NeedsRefresh {
			go s.refreshInBackground(projectID)
		}
		if cached.Token == nil {
			return authority.AuthorityToken{}, false, nil
		}
		return *cached.Token, true, nil
	}

	tok, found, err := s.resolveFromDB(ctx, projectID)
	if err != nil {
		return authority.AuthorityToken{}, false, fmt.Errorf("Resolve: %w", err)
	}
	if !found {
		s.cache.Set(projectID, nil)
		return authority.AuthorityToken{}, false, nil
	}
	s.cache.Set(projectID, &tok)
	return tok, true, nil
}

// resolveFromDB trusts the row's fs_root as already canonical: the
// Postgres-backed path is operator-managed (rows are written by the same
// tooling that would otherwise write a ward.yaml to disk), so
// canonicalisation happens once, at write time, rather than on every
// read.
func (s *PostgresTokenStore) resolveFromDB(ctx context.Context, projectID string) (authority.AuthorityToken, bool, error) {
	doc, err := s.store.LookupByProjectID(ctx, projectID)
	if err == sql.ErrNoRows {
		return authority.AuthorityToken{}, false, nil
	}
	if err != nil {
		return authority.AuthorityToken{}, false, err
	}
	tok, err := doc.ToToken(doc.FsRoot)
	if err != nil {
		return authority.AuthorityToken{}, false, err
	}
	return tok, true, nil
}

func (s *PostgresTokenStore) refreshInBackground(projectID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, found, err := s.resolveFromDB(ctx, projectID)
	if err != nil {
		s.logger.Warn("background token refresh failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	if !found {
		s.cache.Set(projectID, nil)
		return
	}
	s.cache.Set(projectID, &tok)
}
