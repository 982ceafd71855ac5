package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/railwatch/railwatch/pkg/redis_client"
	"github.com/railwatch/railwatch/pkg/rtdf"
)

const routeCacheExpiration = 30 * time.Minute

// CachedRouteStore fronts a RouteStore with a Redis cache. Routes change
// rarely compared to how often reports arrive for them.
type CachedRouteStore struct {
	upstream RouteStore
	cache    *cache.Cache[string]
}

func NewCachedRouteStore(upstream RouteStore) *CachedRouteStore {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(routeCacheExpiration))

	return &CachedRouteStore{
		upstream: upstream,
		cache:    cache.New[string](redisStore),
	}
}

func (s *CachedRouteStore) Route(ctx context.Context, identifier string) (*rtdf.Route, error) {
	cacheKey := fmt.Sprintf("route:%s", identifier)

	cached, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		if cached == "N/A" {
			return nil, nil
		}

		var route rtdf.Route
		if err := json.Unmarshal([]byte(cached), &route); err == nil {
			return &route, nil
		}
	}

	route, err := s.upstream.Route(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if route == nil {
		s.cache.Set(ctx, cacheKey, "N/A")
		return nil, nil
	}

	routeJSON, marshalErr := json.Marshal(route)
	if marshalErr == nil {
		s.cache.Set(ctx, cacheKey, string(routeJSON))
	}

	return route, nil
}
