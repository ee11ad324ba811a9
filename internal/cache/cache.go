// Package cache memoizes completion responses. A memory layer serves
// repeats within a process; an optional disk layer serves repeats across
// process runs. Keys cover the provider, model, and the full prompt pair,
// so any change to a prompt is a miss.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/krisis/internal/llm"
)

// ResponseCache stores completion responses keyed by provider, model and
// prompt pair, so repeated runs over the same context skip the API call.
type ResponseCache struct {
	memory *gocache.Cache
	disk   *diskStore // nil when no directory is configured
	ttl    time.Duration
}

// New creates a response cache with the given TTL. An empty dir disables
// the disk layer.
func New(dir string, ttl time.Duration) *ResponseCache {
	c := &ResponseCache{
		memory: gocache.New(ttl, 10*time.Minute),
		ttl:    ttl,
	}
	if dir != "" {
		c.disk = &diskStore{dir: dir}
	}
	return c
}

// Get returns the cached response for the request. Memory is consulted
// first; a disk hit is promoted to memory.
func (c *ResponseCache) Get(provider, model, system, user string) (*llm.CompletionResponse, bool) {
	k := requestKey(provider, model, system, user)

	if v, ok := c.memory.Get(k); ok {
		resp := v.(llm.CompletionResponse)
		return &resp, true
	}

	if c.disk == nil {
		return nil, false
	}
	resp, ok := c.disk.load(k)
	if !ok {
		return nil, false
	}
	c.memory.Set(k, *resp, c.ttl)
	return resp, true
}

// Set stores the response in every layer.
func (c *ResponseCache) Set(provider, model, system, user string, resp *llm.CompletionResponse) error {
	k := requestKey(provider, model, system, user)
	c.memory.Set(k, *resp, c.ttl)
	if c.disk == nil {
		return nil
	}
	return c.disk.store(k, resp, time.Now().Add(c.ttl))
}

// Clear drops every layer.
func (c *ResponseCache) Clear() error {
	c.memory.Flush()
	if c.disk == nil {
		return nil
	}
	return c.disk.clear()
}

// requestKey derives the cache key for one completion request. NUL
// separators keep the field boundaries unambiguous; the version prefix
// invalidates every old entry if the key scheme changes.
func requestKey(provider, model, system, user string) string {
	h := sha256.New()
	h.Write([]byte("krisis:v1"))
	for _, field := range []string{provider, model, system, user} {
		h.Write([]byte{0})
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
