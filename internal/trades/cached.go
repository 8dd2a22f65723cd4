package trades

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"immersion/internal/search/ports"
)

// DefaultCacheTTL bounds how long a resolved mapping is served from cache.
// The referential changes rarely; an hour keeps restarts cheap without
// serving stale data for long after a referential import.
const DefaultCacheTTL = time.Hour

// CachedResolver caches resolutions in Redis in front of a slower resolver.
// Cache failures degrade to the inner resolver, never to a caller error.
type CachedResolver struct {
	inner  ports.TradeResolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type CachedResolverOption func(*CachedResolver)

func WithCacheTTL(ttl time.Duration) CachedResolverOption {
	return func(r *CachedResolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CachedResolverOption {
	return func(r *CachedResolver) {
		r.logger = logger
	}
}

func NewCachedResolver(inner ports.TradeResolver, client *redis.Client, opts ...CachedResolverOption) *CachedResolver {
	r := &CachedResolver{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CachedResolver) RomeForAppellations(ctx context.Context, appellationCodes []string) (string, error) {
	key := cacheKey(appellationCodes)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil && r.logger != nil {
		r.logger.WarnContext(ctx, "rome cache read failed", "error", err)
	}

	rome, err := r.inner.RomeForAppellations(ctx, appellationCodes)
	if err != nil {
		return "", err
	}

	if err := r.client.Set(ctx, key, rome, r.ttl).Err(); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "rome cache write failed", "error", err)
	}
	return rome, nil
}

// cacheKey is order-insensitive so permutations of the same filter share an
// entry.
func cacheKey(appellationCodes []string) string {
	codes := append([]string{}, appellationCodes...)
	sort.Strings(codes)
	return "rome:appellations:" + strings.Join(codes, ",")
}
