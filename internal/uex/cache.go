package uex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sc-trade-advisor/internal/logger"
)

// MarketDataTTL is how long each cached collection stays valid. UEX refreshes
// its aggregates on a similar cadence, so staleness inside the window is
// acceptable.
const MarketDataTTL = 5 * time.Minute

// routeEntry holds one commodity's cached routes with its fetch time.
type routeEntry struct {
	routes    []Route
	fetchedAt time.Time
}

// marketCache holds the three TTL slots: the commodity list, the ranking
// list, and a per-commodity route map. Writes are idempotent wholesale
// replacements; there is no explicit invalidation, only expiry.
type marketCache struct {
	mu            sync.RWMutex
	commodities   []Commodity
	commoditiesAt time.Time
	ranking       []RankingSignal
	rankingAt     time.Time
	routes        map[int64]routeEntry
}

func newMarketCache() *marketCache {
	return &marketCache{routes: make(map[int64]routeEntry)}
}

// CachedClient decorates a Client with TTL memoization of the three UEX
// collections. Concurrent fetches of the same expired slot are coalesced
// with singleflight; the underlying data is idempotent, so last-write-wins
// on the cache itself is fine. A flight serves every coalesced caller, so
// it runs detached from whichever caller's context started it; the client
// timeout bounds the fetch instead.
type CachedClient struct {
	client *Client
	cache  *marketCache
	ttl    time.Duration
	group  singleflight.Group

	// now is the cache clock, replaceable in tests.
	now func() time.Time
}

// NewCachedClient wraps client with TTL caching. A non-positive ttl selects
// MarketDataTTL.
func NewCachedClient(client *Client, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = MarketDataTTL
	}
	return &CachedClient{
		client: client,
		cache:  newMarketCache(),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (cc *CachedClient) fresh(fetchedAt time.Time) bool {
	return !fetchedAt.IsZero() && cc.now().Sub(fetchedAt) < cc.ttl
}

// HealthCheck passes through to the underlying client.
func (cc *CachedClient) HealthCheck(ctx context.Context) bool {
	return cc.client.HealthCheck(ctx)
}

// Commodities returns the cached commodity list, refetching after expiry.
func (cc *CachedClient) Commodities(ctx context.Context) ([]Commodity, error) {
	cc.cache.mu.RLock()
	cached, at := cc.cache.commodities, cc.cache.commoditiesAt
	cc.cache.mu.RUnlock()
	if cc.fresh(at) {
		return cached, nil
	}

	result, err, _ := cc.group.Do("commodities", func() (interface{}, error) {
		commodities, err := cc.client.Commodities(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		cc.cache.mu.Lock()
		cc.cache.commodities = commodities
		cc.cache.commoditiesAt = cc.now()
		cc.cache.mu.Unlock()
		logger.Debugf("UEX", "commodity cache refresh: %d entries", len(commodities))
		return commodities, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Commodity), nil
}

// CommodityRanking returns the cached ranking list, refetching after expiry.
func (cc *CachedClient) CommodityRanking(ctx context.Context) ([]RankingSignal, error) {
	cc.cache.mu.RLock()
	cached, at := cc.cache.ranking, cc.cache.rankingAt
	cc.cache.mu.RUnlock()
	if cc.fresh(at) {
		return cached, nil
	}

	result, err, _ := cc.group.Do("ranking", func() (interface{}, error) {
		ranking, err := cc.client.CommodityRanking(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		cc.cache.mu.Lock()
		cc.cache.ranking = ranking
		cc.cache.rankingAt = cc.now()
		cc.cache.mu.Unlock()
		logger.Debugf("UEX", "ranking cache refresh: %d entries", len(ranking))
		return ranking, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]RankingSignal), nil
}

// CommodityRoutes returns a commodity's cached routes, refetching after
// expiry. The route map is keyed by commodity id and never evicted; the id
// space is small and bounded by the UEX catalog.
func (cc *CachedClient) CommodityRoutes(ctx context.Context, commodityID int64) ([]Route, error) {
	cc.cache.mu.RLock()
	entry, ok := cc.cache.routes[commodityID]
	cc.cache.mu.RUnlock()
	if ok && cc.fresh(entry.fetchedAt) {
		return entry.routes, nil
	}

	key := fmt.Sprintf("routes:%d", commodityID)
	result, err, _ := cc.group.Do(key, func() (interface{}, error) {
		routes, err := cc.client.CommodityRoutes(context.WithoutCancel(ctx), commodityID)
		if err != nil {
			return nil, err
		}
		cc.cache.mu.Lock()
		cc.cache.routes[commodityID] = routeEntry{routes: routes, fetchedAt: cc.now()}
		cc.cache.mu.Unlock()
		return routes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Route), nil
}
