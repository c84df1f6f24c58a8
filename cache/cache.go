// Package cache holds serialized read responses keyed by request, dropped
// whenever a mutation commits.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixProperty = "property:"
	PrefixCity     = "city:"
)

// generationKey holds the invalidation counter. It matches no read prefix.
const generationKey = "cache-generation"

// Cache stores read responses under generation-scoped keys. A reader takes
// the generation before loading and builds its key from it; Invalidate bumps
// the generation first, so a load that raced a mutation is stored under a key
// no later reader asks for.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Generation reports the current generation. ok is false when it cannot
	// be read, in which case callers bypass the cache.
	Generation(ctx context.Context) (gen uint64, ok bool)
	// Invalidate bumps the generation and drops every key starting with one
	// of the prefixes.
	Invalidate(ctx context.Context, prefixes ...string)
}

// Key derives a stable cache key from a generation, a scope (e.g. a path) and
// the query.
func Key(prefix string, gen uint64, scope string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(gen, 10))
	sb.WriteString("|")
	sb.WriteString(scope)
	sb.WriteString("?")

	for _, key := range keys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return prefix + hex.EncodeToString(sum[:])
}
