package wardcfg

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wardhq/ward/internal/authority"
)

// TokenCache is a TTL-based in-memory cache over Postgres-backed
// AuthorityToken lookups, with stale-while-revalidate semantics: an
// expired entry keeps being served to every caller while a single
// background refresh is in flight, rather than making every caller in the
// expiry window block on the database.
type TokenCache struct {
	store sync.Map // map[string]*tokenCacheEntry
	ttl   time.Duration
}

type tokenCacheEntry struct {
	token      *authority.AuthorityToken // nil = negative cache (project not found)
	expiresAt  time.Time
	refreshing atomic.Bool
}

// TokenCacheGetResult holds the result of a cache lookup.
type TokenCacheGetResult struct {
	Token        *authority.AuthorityToken
	Hit          bool
	NeedsRefresh bool
}

// NewTokenCache creates a cache with the given TTL.
func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{ttl: ttl}
}

// Get performs a non-blocking cache lookup. An expired entry is still
// returned so the caller can keep serving it; NeedsRefresh is true only
// for the one caller that wins the CAS and should refresh in the
// background.
func (c *TokenCache) Get(projectID string) TokenCacheGetResult {
	val, ok := c.store.Load(projectID)
	if !ok {
		return TokenCacheGetResult{Hit: false}
	}

	entry := val.(*tokenCacheEntry)
	if time.Now().Before(entry.expiresAt) {
		return TokenCacheGetResult{Token: entry.token, Hit: true}
	}

	needsRefresh := entry.refreshing.CompareAndSwap(false, true)
	return TokenCacheGetResult{Token: entry.token, Hit: true, NeedsRefresh: needsRefresh}
}

// Set stores a token with a fresh TTL. Passing nil stores a negative
// cache entry.
func (c *TokenCache) Set(projectID string, tok *authority.AuthorityToken) {
	c.store.Store(projectID, &tokenCacheEntry{token: tok, expiresAt: time.Now().Add(c.ttl)})
}

// Delete removes an entry from the cache.
func (c *TokenCache) Delete(projectID string) {
	c.store.Delete(projectID)
}
