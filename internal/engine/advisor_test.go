package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"sc-trade-advisor/internal/uex"
)

// fakeSource is an in-memory MarketSource for advisor tests.
type fakeSource struct {
	commodities []uex.Commodity
	ranking     []uex.RankingSignal
	routes      map[int64][]uex.Route

	failRoutesFor map[int64]bool
	delay         time.Duration
	routeFetches  int64
}

func (f *fakeSource) Commodities(ctx context.Context) ([]uex.Commodity, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.commodities, nil
}

func (f *fakeSource) CommodityRanking(ctx context.Context) ([]uex.RankingSignal, error) {
	return f.ranking, nil
}

func (f *fakeSource) CommodityRoutes(ctx context.Context, commodityID int64) ([]uex.Route, error) {
	atomic.AddInt64(&f.routeFetches, 1)
	if f.failRoutesFor[commodityID] {
		return nil, errors.New("upstream unavailable")
	}
	return f.routes[commodityID], nil
}

func simpleSource() *fakeSource {
	return &fakeSource{
		commodities: []uex.Commodity{
			tradeable(1, "Agricium", false),
			tradeable(2, "WiDoW", true),
		},
		routes: map[int64][]uex.Route{
			1: {{OriginID: 1, DestinationID: 2, Origin: "Port Olisar", Destination: "Area18 TDD", PriceBuy: 10, PriceSell: 25, CargoSCU: 100}},
			2: {{OriginID: 3, DestinationID: 4, PriceBuy: 100, PriceSell: 180, CargoSCU: 40}},
		},
	}
}

func testAdvisor(src MarketSource) *Advisor {
	return &Advisor{Market: src, Timeout: 5 * time.Second, Delay: time.Millisecond}
}

func TestRecommend_EndToEnd(t *testing.T) {
	advisor := testAdvisor(simpleSource())

	report, err := advisor.Recommend(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if report.ShipSCU != 100 {
		t.Errorf("ShipSCU = %v", report.ShipSCU)
	}
	if report.Timestamp <= 0 {
		t.Error("Timestamp not set")
	}
	if len(report.Legal) != 1 || len(report.Illegal) != 1 {
		t.Fatalf("legal=%d illegal=%d, want 1/1", len(report.Legal), len(report.Illegal))
	}
	if report.Legal[0].Profit != 1500 || report.Legal[0].ROI != 150 {
		t.Errorf("legal[0] = %+v", report.Legal[0])
	}
	if !report.Illegal[0].IsIllegal {
		t.Errorf("illegal[0] = %+v", report.Illegal[0])
	}
}

func TestRecommend_InvalidCargo(t *testing.T) {
	advisor := testAdvisor(simpleSource())
	if _, err := advisor.Recommend(context.Background(), 0); !errors.Is(err, ErrInvalidCargo) {
		t.Errorf("err = %v, want ErrInvalidCargo", err)
	}
}

func TestRecommend_SortedAndTruncated(t *testing.T) {
	src := &fakeSource{
		commodities: []uex.Commodity{tradeable(1, "Agricium", false)},
		routes:      map[int64][]uex.Route{1: nil},
	}
	// Five profitable routes with ROIs 100..400%; only three survive
	// truncation and two share the top ROI, so profit breaks the tie.
	for i := 1; i <= 4; i++ {
		src.routes[1] = append(src.routes[1], uex.Route{
			OriginID: int64(i), DestinationID: 100,
			PriceBuy: 10, PriceSell: 10 + float64(i)*10, CargoSCU: 100,
		})
	}
	src.routes[1] = append(src.routes[1], uex.Route{
		OriginID: 5, DestinationID: 100,
		PriceBuy: 20, PriceSell: 100, CargoSCU: 25, // same 400% ROI as route 4, smaller profit
	})

	report, err := testAdvisor(src).Recommend(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(report.Legal) != MaxRoutesPerMode {
		t.Fatalf("len = %d, want %d", len(report.Legal), MaxRoutesPerMode)
	}
	for i := 1; i < len(report.Legal); i++ {
		prev, cur := report.Legal[i-1], report.Legal[i]
		if cur.ROI > prev.ROI {
			t.Errorf("not sorted by ROI desc at %d: %v > %v", i, cur.ROI, prev.ROI)
		}
		if cur.ROI == prev.ROI && cur.Profit > prev.Profit {
			t.Errorf("tie not broken by profit desc at %d", i)
		}
	}
	if report.Legal[0].ROI != 400 {
		t.Errorf("top ROI = %v, want 400", report.Legal[0].ROI)
	}
	// The tie at 400% ROI resolves toward the bigger haul.
	if report.Legal[0].Profit != 4000 {
		t.Errorf("top profit = %v, want 4000", report.Legal[0].Profit)
	}
}

func TestRecommend_UniqueRouteIDs(t *testing.T) {
	src := simpleSource()
	// Same explicit route id listed under both commodities.
	src.routes[1] = []uex.Route{{ID: 9, PriceBuy: 1, PriceSell: 2}}
	src.routes[2] = []uex.Route{{ID: 9, PriceBuy: 1, PriceSell: 2}}

	report, err := testAdvisor(src).Recommend(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	ids := map[string]bool{}
	for _, r := range append(report.Legal, report.Illegal...) {
		if ids[r.ID] {
			t.Errorf("duplicate route id %q in response", r.ID)
		}
		ids[r.ID] = true
	}
	if len(ids) != 1 {
		t.Errorf("distinct ids = %d, want 1", len(ids))
	}
}

func TestRecommend_PartialFetchFailureTolerated(t *testing.T) {
	src := simpleSource()
	src.failRoutesFor = map[int64]bool{2: true}

	report, err := testAdvisor(src).Recommend(context.Background(), 100)
	if err != nil {
		t.Fatalf("a single commodity failure must not fail the request: %v", err)
	}
	if len(report.Legal) != 1 {
		t.Errorf("legal = %+v", report.Legal)
	}
	if len(report.Illegal) != 0 {
		t.Errorf("failed commodity should contribute zero routes, got %+v", report.Illegal)
	}
}

func TestRecommend_Timeout(t *testing.T) {
	src := simpleSource()
	src.delay = 500 * time.Millisecond

	advisor := &Advisor{Market: src, Timeout: 20 * time.Millisecond, Delay: time.Millisecond}
	_, err := advisor.Recommend(context.Background(), 100)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestRecommend_EmptySlicesNotNil(t *testing.T) {
	src := &fakeSource{commodities: nil}
	report, err := testAdvisor(src).Recommend(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if report.Legal == nil || report.Illegal == nil {
		t.Error("empty result lists must be [] in JSON, not null")
	}
}

func TestScanRoutes_BatchesAllSelected(t *testing.T) {
	src := &fakeSource{routes: map[int64][]uex.Route{}}
	var selection []RankedCommodity
	for i := int64(1); i <= 14; i++ {
		selection = append(selection, RankedCommodity{ID: i, Name: fmt.Sprintf("C%d", i)})
		src.routes[i] = []uex.Route{{OriginID: i, DestinationID: 100, PriceBuy: 1, PriceSell: 2}}
	}

	advisor := testAdvisor(src)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	legal, illegal, err := advisor.scanRoutes(ctx, selection, 10)
	if err != nil {
		t.Fatalf("scanRoutes: %v", err)
	}
	if got := atomic.LoadInt64(&src.routeFetches); got != 14 {
		t.Errorf("route fetches = %d, want 14", got)
	}
	if len(legal)+len(illegal) != 14 {
		t.Errorf("evaluated routes = %d, want 14", len(legal)+len(illegal))
	}
}
