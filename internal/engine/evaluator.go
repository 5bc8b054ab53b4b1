package engine

import (
	"fmt"
	"strings"

	"sc-trade-advisor/internal/uex"
)

// EvaluateRoutes sizes a commodity's raw routes to the player's cargo hold
// and keeps only the profitable ones. The seen set is shared across every
// commodity of one request so that a route id never appears twice in a
// response, even when cache overlap delivers the same raw route more than
// once.
func EvaluateRoutes(routes []uex.Route, commodity RankedCommodity, shipSCU float64, seen map[string]bool) []EvaluatedTradeRoute {
	var out []EvaluatedTradeRoute
	for _, r := range routes {
		if r.PriceBuy <= 0 || r.PriceSell <= 0 {
			continue
		}

		usable := shipSCU
		if r.CargoSCU > 0 && r.CargoSCU < usable {
			usable = r.CargoSCU
		}
		if usable <= 0 {
			continue
		}

		investment := r.PriceBuy * usable
		if investment <= 0 {
			continue
		}
		revenue := r.PriceSell * usable
		profit := revenue - investment
		if profit <= 0 {
			continue
		}
		roi := profit / investment * 100

		id := routeID(r, commodity.ID)
		if seen[id] {
			continue
		}
		seen[id] = true

		out = append(out, EvaluatedTradeRoute{
			ID:                   id,
			CommodityName:        commodity.Name,
			IsIllegal:            commodity.IsIllegal,
			Origin:               r.Origin,
			Destination:          r.Destination,
			Profit:               profit,
			ROI:                  roi,
			Distance:             r.Distance,
			RiskLevel:            riskLevel(r, commodity.IsIllegal, roi, profit),
			EscortRecommendation: escortRecommendation(commodity.IsIllegal, roi, profit),
			UsableSCU:            usable,
		})
	}
	return out
}

// routeID is stable across fetches: the provider's route id when present,
// else a commodity/origin/destination composite.
func routeID(r uex.Route, commodityID int64) string {
	if r.ID > 0 {
		return fmt.Sprintf("%d", r.ID)
	}
	return fmt.Sprintf("%d-%d-%d", commodityID, r.OriginID, r.DestinationID)
}

// riskLevel prefers the provider's explicit risk (numeric, then textual) and
// falls back to a heuristic on legality and margin.
func riskLevel(r uex.Route, illegal bool, roi, profit float64) string {
	if r.Risk != nil {
		switch {
		case *r.Risk <= 1:
			return RiskLow
		case *r.Risk == 2:
			return RiskMedium
		default:
			return RiskHigh
		}
	}
	switch strings.ToLower(r.RiskLabel) {
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	}
	if illegal {
		return RiskHigh
	}
	if roi >= mediumRiskROI || profit >= mediumRiskProfit {
		return RiskMedium
	}
	return RiskLow
}

// escortRecommendation: hauling contraband always warrants an escort; big
// legal hauls make one worth considering.
func escortRecommendation(illegal bool, roi, profit float64) string {
	if illegal {
		return EscortRecommended
	}
	if profit >= escortProfit || roi >= escortROI {
		return EscortOptional
	}
	return EscortNotNeeded
}
