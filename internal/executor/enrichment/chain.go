package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the per-source rate limiter is saturated;
// callers should treat it as retryable.
var ErrRateLimited = errors.New("enrichment: rate limit exceeded, retry")

// Resolver runs the three-strategy fallback chain (lookup by identifier,
// then by name, then by name prefix) against a Source, caching hits and
// applying backpressure per §5's "per-source rate limit; when saturated,
// fail fast with a retryable error kind".
type Resolver struct {
	source  Source
	cache   *lru.Cache[string, Record]
	limiter *rate.Limiter
}

// NewResolver builds a Resolver over source with a bounded LRU cache of the
// given size and a token-bucket limiter allowing ratePerSecond requests per
// second with the given burst.
func NewResolver(source Source, cacheSize int, ratePerSecond float64, burst int) (*Resolver, error) {
	cache, err := lru.New[string, Record](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("enrichment: building cache: %w", err)
	}
	return &Resolver{
		source:  source,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}, nil
}

// Resolve runs the fallback chain for a single entity hint. identifier,
// name, and namePrefix are each optional; strategies whose input is empty
// are skipped. Resolve never errors on an expected-empty outcome: ok is
// simply false.
func (r *Resolver) Resolve(ctx context.Context, identifier, name, namePrefix string) (Record, bool, error) {
	if identifier != "" {
		if rec, ok, found := r.fromCache(identifier); found {
			return rec, ok, nil
		}
		if !r.limiter.Allow() {
			return Record{}, false, ErrRateLimited
		}
		rec, ok, err := r.source.ByIdentifier(ctx, identifier)
		if err != nil {
			return Record{}, false, fmt.Errorf("enrichment: lookup by identifier: %w", err)
		}
		if ok {
			r.cache.Add(cacheKey(identifier), rec)
			return rec, true, nil
		}
	}

	if name != "" {
		if rec, ok, found := r.fromCache(name); found {
			return rec, ok, nil
		}
		if !r.limiter.Allow() {
			return Record{}, false, ErrRateLimited
		}
		rec, ok, err := r.source.ByName(ctx, name)
		if err != nil {
			return Record{}, false, fmt.Errorf("enrichment: lookup by name: %w", err)
		}
		if ok {
			r.cache.Add(cacheKey(name), rec)
			return rec, true, nil
		}
	}

	prefix := namePrefix
	if prefix == "" {
		prefix = firstToken(name)
	}
	if prefix == "" {
		return Record{}, false, nil
	}
	if !r.limiter.Allow() {
		return Record{}, false, ErrRateLimited
	}
	candidates, err := r.source.ByNamePrefix(ctx, prefix, 1)
	if err != nil {
		return Record{}, false, fmt.Errorf("enrichment: lookup by name prefix: %w", err)
	}
	if len(candidates) == 0 {
		return Record{}, false, nil
	}
	r.cache.Add(cacheKey(candidates[0].Identifier), candidates[0])
	return candidates[0], true, nil
}

func (r *Resolver) fromCache(key string) (Record, bool, bool) {
	rec, found := r.cache.Get(cacheKey(key))
	return rec, found, found
}

func cacheKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
