// Package engine holds the trade-route recommendation core: commodity
// selection, per-route economics, and the batched, deadline-bounded scan
// across the UEX catalog.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sc-trade-advisor/internal/logger"
	"sc-trade-advisor/internal/uex"
)

// ErrInvalidCargo is returned when the requested ship capacity is not a
// positive number.
var ErrInvalidCargo = errors.New("ship cargo capacity must be a positive number")

// MarketSource supplies the three UEX collections the advisor consumes.
// *uex.CachedClient is the production implementation.
type MarketSource interface {
	Commodities(ctx context.Context) ([]uex.Commodity, error)
	CommodityRanking(ctx context.Context) ([]uex.RankingSignal, error)
	CommodityRoutes(ctx context.Context, commodityID int64) ([]uex.Route, error)
}

// Advisor recommends the most profitable cargo routes for a given ship size.
type Advisor struct {
	Market MarketSource

	// Timeout and Delay default to OverallTimeout and BatchDelay; tests
	// shrink them.
	Timeout time.Duration
	Delay   time.Duration
}

// NewAdvisor creates an Advisor over the given market source.
func NewAdvisor(market MarketSource) *Advisor {
	return &Advisor{Market: market}
}

func (a *Advisor) timeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return OverallTimeout
}

func (a *Advisor) delay() time.Duration {
	if a.Delay > 0 {
		return a.Delay
	}
	return BatchDelay
}

// Recommend runs the full pipeline: fetch commodity list and ranking,
// select the interesting legal and illegal commodities, scan their routes in
// paced batches, and return the top-3 routes per legality class by ROI.
// The whole pipeline runs under one wall-clock deadline; on expiry the
// context cancels in-flight fetches and the caller gets
// context.DeadlineExceeded.
func (a *Advisor) Recommend(ctx context.Context, shipSCU float64) (*TradeRouteReport, error) {
	if shipSCU <= 0 {
		return nil, ErrInvalidCargo
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	started := time.Now()

	var commodities []uex.Commodity
	var ranking []uex.RankingSignal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commodities, err = a.Market.Commodities(gctx)
		if err != nil {
			return fmt.Errorf("fetch commodities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ranking, err = a.Market.CommodityRanking(gctx)
		if err != nil {
			return fmt.Errorf("fetch commodity ranking: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	legal := SelectCommodities(commodities, ranking, false)
	illegal := SelectCommodities(commodities, ranking, true)
	selection := append(append([]RankedCommodity{}, legal...), illegal...)
	logger.Debugf("ENGINE", "selected %d legal + %d illegal commodities", len(legal), len(illegal))

	legalRoutes, illegalRoutes, err := a.scanRoutes(ctx, selection, shipSCU)
	if err != nil {
		return nil, err
	}

	sortRoutes(legalRoutes)
	sortRoutes(illegalRoutes)
	legalRoutes = truncate(legalRoutes, MaxRoutesPerMode)
	illegalRoutes = truncate(illegalRoutes, MaxRoutesPerMode)

	logger.Infof("ENGINE", "scan complete: scu=%.0f legal=%d illegal=%d in %dms",
		shipSCU, len(legalRoutes), len(illegalRoutes), time.Since(started).Milliseconds())

	return &TradeRouteReport{
		ShipSCU:   shipSCU,
		Legal:     legalRoutes,
		Illegal:   illegalRoutes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// scanRoutes fetches and evaluates routes for the selected commodities in
// batches of MaxConcurrency, pausing Delay between batches (not after the
// last). A failed fetch contributes zero routes and never fails the scan;
// only context expiry aborts it.
func (a *Advisor) scanRoutes(ctx context.Context, selection []RankedCommodity, shipSCU float64) (legal, illegal []EvaluatedTradeRoute, err error) {
	seen := make(map[string]bool)

	for start := 0; start < len(selection); start += MaxConcurrency {
		end := start + MaxConcurrency
		if end > len(selection) {
			end = len(selection)
		}
		batch := selection[start:end]

		fetched := make([][]uex.Route, len(batch))
		var wg sync.WaitGroup
		for i, commodity := range batch {
			wg.Add(1)
			go func(i int, commodity RankedCommodity) {
				defer wg.Done()
				routes, ferr := a.Market.CommodityRoutes(ctx, commodity.ID)
				if ferr != nil {
					logger.Warnf("ENGINE", "routes for %s (id=%d) unavailable: %v", commodity.Name, commodity.ID, ferr)
					return
				}
				fetched[i] = routes
			}(i, commodity)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		for i, commodity := range batch {
			evaluated := EvaluateRoutes(fetched[i], commodity, shipSCU, seen)
			if commodity.IsIllegal {
				illegal = append(illegal, evaluated...)
			} else {
				legal = append(legal, evaluated...)
			}
		}

		if end < len(selection) {
			select {
			case <-time.After(a.delay()):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}
	}
	return legal, illegal, nil
}

// sortRoutes orders by ROI descending, ties broken by profit descending.
func sortRoutes(routes []EvaluatedTradeRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].ROI != routes[j].ROI {
			return routes[i].ROI > routes[j].ROI
		}
		return routes[i].Profit > routes[j].Profit
	})
}

func truncate(routes []EvaluatedTradeRoute, limit int) []EvaluatedTradeRoute {
	if routes == nil {
		return []EvaluatedTradeRoute{}
	}
	if len(routes) > limit {
		return routes[:limit]
	}
	return routes
}
