package http

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// reportCache memoizes rendered report payloads outside the pure engine.
// Keys hash the full query shape; mutations bust the whole cache.
type reportCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]cacheItem
}

type cacheItem struct {
	payload []byte
	expires time.Time
}

var statementCache = newReportCache(defaultCacheTTL)

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}
}

func (c *reportCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.payload, true
}

func (c *reportCache) Set(key string, payload []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = cacheItem{payload: payload, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *reportCache) Bust() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
}

// BustStatementCache invalidates every cached report payload. Called after
// any trial-balance or elimination mutation.
func BustStatementCache() {
	statementCache.Bust()
}

// SetStatementCacheTTL overrides the payload lifetime. Existing entries keep
// their original expiry.
func SetStatementCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	statementCache.mu.Lock()
	statementCache.ttl = ttl
	statementCache.mu.Unlock()
}

// buildCacheKey hashes the full request shape. The variant (statement type,
// cash-flow basis) gets its own segment so caller-supplied tokens can never
// alias a key across report variants.
func buildCacheKey(report string, companyID int64, period, variant string, tokens []string) string {
	token := "none"
	if len(tokens) > 0 {
		sorted := append([]string(nil), tokens...)
		sort.Strings(sorted)
		token = strings.Join(sorted, ",")
	}
	return fmt.Sprintf("consol:%s:%d|%s|%s|%s", report, companyID, period, variant, token)
}
