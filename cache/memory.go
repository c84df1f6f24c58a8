package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process Cache used when Redis is not configured.
type MemoryCache struct {
	c   *gocache.Cache
	gen atomic.Uint64
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *MemoryCache) Generation(context.Context) (uint64, bool) {
	return m.gen.Load(), true
}

func (m *MemoryCache) Invalidate(_ context.Context, prefixes ...string) {
	m.gen.Add(1)
	for key := range m.c.Items() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				m.c.Delete(key)
				break
			}
		}
	}
}
