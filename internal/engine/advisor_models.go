package engine

import "time"

const (
	// MaxCommoditiesPerMode caps how many ranked commodities are scanned per
	// legality class.
	MaxCommoditiesPerMode = 20
	// MaxRoutesPerMode caps how many evaluated routes are returned per
	// legality class.
	MaxRoutesPerMode = 3
	// MaxConcurrency is the route-fetch batch size.
	MaxConcurrency = 6
	// BatchDelay is the pause between route-fetch batches, keeping the scan
	// inside UEX's implicit rate limits.
	BatchDelay = 250 * time.Millisecond
	// OverallTimeout is the wall-clock deadline for a whole recommendation.
	OverallTimeout = 28 * time.Second
)

// Risk/escort thresholds. Consumers see these in every response; changing
// them is a product decision.
const (
	mediumRiskROI    = 25.0
	mediumRiskProfit = 100_000.0
	escortROI        = 35.0
	escortProfit     = 200_000.0
)

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Escort recommendations.
const (
	EscortRecommended = "Recommended"
	EscortOptional    = "Optional"
	EscortNotNeeded   = "Not Needed"
)

// RankedCommodity is a commodity selected for route scanning, in ranking
// order.
type RankedCommodity struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsIllegal bool   `json:"isIllegal"`
}

// EvaluatedTradeRoute is one profitable route, sized to the player's ship.
type EvaluatedTradeRoute struct {
	ID                   string  `json:"id"`
	CommodityName        string  `json:"commodityName"`
	IsIllegal            bool    `json:"isIllegal"`
	Origin               string  `json:"origin"`
	Destination          string  `json:"destination"`
	Profit               float64 `json:"profit"`
	ROI                  float64 `json:"roi"`
	Distance             string  `json:"distance"`
	RiskLevel            string  `json:"riskLevel"`
	EscortRecommendation string  `json:"escortRecommendation"`
	UsableSCU            float64 `json:"usableScu"`
}

// TradeRouteReport is the full response for one recommendation request.
type TradeRouteReport struct {
	ShipSCU   float64               `json:"shipScu"`
	Legal     []EvaluatedTradeRoute `json:"legal"`
	Illegal   []EvaluatedTradeRoute `json:"illegal"`
	Timestamp int64                 `json:"timestamp"`
}
