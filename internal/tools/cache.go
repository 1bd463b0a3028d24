package tools

import (
	"strings"
	"sync"
	"time"
)

// cacheEntry holds a cached read-only tool result keyed by
// (canonical_name, args, target_path, workspace_root).
type cacheEntry struct {
	json      string
	targetPath string
	storedAt  time.Time
}

// resultCache is the read-only tool result cache from §4.6: populated on
// successful cacheable calls, consulted before dispatch, and invalidated
// whenever a tool call reports a modified file whose path the entry's
// target path intersects.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func cacheKey(canonicalName, argsKey, targetPath, workspaceRoot string) string {
	return canonicalName + "\x00" + argsKey + "\x00" + targetPath + "\x00" + workspaceRoot
}

func (c *resultCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		return "", false
	}
	return e.json, true
}

func (c *resultCache) put(key, targetPath, json string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{json: json, targetPath: targetPath, storedAt: time.Now()}
}

// invalidateByModifiedPaths drops every entry whose target path intersects
// any of the given modified file paths (prefix match in either direction,
// so a cached directory listing is invalidated by a file write beneath it).
func (c *resultCache) invalidateByModifiedPaths(modified []string) {
	if len(modified) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		for _, m := range modified {
			if pathsIntersect(e.targetPath, m) {
				delete(c.entries, key)
				break
			}
		}
	}
}

func pathsIntersect(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
