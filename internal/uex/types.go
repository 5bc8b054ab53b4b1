package uex

import (
	"fmt"
	"strconv"
	"strings"
)

// Commodity is a tradeable good as listed by UEX, reduced to the flags the
// selector cares about. Availability falls back from the live flag to the
// general flag and defaults to available; visibility defaults to visible.
type Commodity struct {
	ID        int64
	Name      string
	IsIllegal bool
	Buyable   bool
	Sellable  bool
	Temporary bool
	Available bool
	Visible   bool
}

// RankingSignal is one entry of the commodity desirability ranking after
// score extraction. Higher Score is always better: rank-style fields
// (lower is better) are negated at extraction time.
type RankingSignal struct {
	CommodityID int64 // 0 when the provider keyed the entry by name only
	Name        string
	Score       float64
}

// Route is a single buy-here-sell-there listing for one commodity.
// Zero prices mean the field could not be resolved from any known name.
type Route struct {
	ID            int64
	CommodityID   int64
	OriginID      int64
	DestinationID int64
	Origin        string
	Destination   string
	PriceBuy      float64
	PriceSell     float64
	CargoSCU      float64 // reachable cargo, 0 = unknown
	Distance      string
	Risk          *int   // explicit numeric risk, nil when absent
	RiskLabel     string // explicit textual risk, "" when absent
}

// record is one loosely-typed row from the UEX API. Providers disagree on
// field names and on whether booleans arrive as bools, 0/1 numbers, or
// strings, so every accessor below works through fallback chains.
type record map[string]interface{}

func (r record) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func (r record) str(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

// flag resolves a boolean field, treating non-zero numbers and "1"/"true"
// strings as true. The def value applies when no listed key is present.
func (r record) flag(def bool, keys ...string) bool {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case float64:
			return b != 0
		case string:
			s := strings.ToLower(strings.TrimSpace(b))
			return s == "1" || s == "true" || s == "yes"
		}
	}
	return def
}

// normalizeCommodity maps a raw commodity row to a Commodity.
// Rows without a positive id and a name are unusable and dropped.
func normalizeCommodity(r record) (Commodity, bool) {
	id, _ := r.num("id", "id_commodity", "commodity_id")
	name, _ := r.str("name", "commodity_name")
	if id <= 0 || name == "" {
		return Commodity{}, false
	}

	available := r.flag(true, "is_available_live")
	if _, hasLive := r["is_available_live"]; !hasLive {
		available = r.flag(true, "is_available")
	}

	return Commodity{
		ID:        int64(id),
		Name:      name,
		IsIllegal: r.flag(false, "is_illegal", "illegal"),
		Buyable:   r.flag(false, "is_buyable"),
		Sellable:  r.flag(false, "is_sellable"),
		Temporary: r.flag(false, "is_temporary"),
		Available: available,
		Visible:   r.flag(true, "is_visible"),
	}, true
}

// rankFields are tried first: lower is better, so values are negated.
var rankFields = []string{"rank", "ranking", "position", "rank_position"}

// scoreFields are tried when no rank field matches: higher is better.
var scoreFields = []string{"score", "rating", "value", "weight"}

// normalizeRanking maps a raw ranking row to a RankingSignal.
// Rows carrying neither a rank nor a score field are discarded.
func normalizeRanking(r record) (RankingSignal, bool) {
	name, _ := r.str("commodity_name", "name", "commodity")
	id, _ := r.num("id_commodity", "commodity_id", "id")

	if rank, ok := r.num(rankFields...); ok {
		return RankingSignal{CommodityID: int64(id), Name: name, Score: -rank}, true
	}
	if score, ok := r.num(scoreFields...); ok {
		return RankingSignal{CommodityID: int64(id), Name: name, Score: score}, true
	}
	return RankingSignal{}, false
}

// normalizeRoute maps a raw route row to a Route for the given commodity.
func normalizeRoute(r record, commodityID int64) Route {
	route := Route{CommodityID: commodityID}

	if id, ok := r.num("id", "id_route", "route_id"); ok {
		route.ID = int64(id)
	}
	if v, ok := r.num("id_terminal_origin", "id_origin", "origin_id"); ok {
		route.OriginID = int64(v)
	}
	if v, ok := r.num("id_terminal_destination", "id_destination", "destination_id"); ok {
		route.DestinationID = int64(v)
	}
	if v, ok := r.num("price_origin", "price_buy", "buy_price", "price_buy_avg"); ok {
		route.PriceBuy = v
	}
	if v, ok := r.num("price_destination", "price_sell", "sell_price", "price_sell_avg"); ok {
		route.PriceSell = v
	}
	if v, ok := r.num("scu_reachable", "scu_available", "cargo_scu", "scu"); ok {
		route.CargoSCU = v
	}

	route.Origin = locationName(r, "origin_terminal_name", "terminal_origin_name", "origin_name", "origin")
	route.Destination = locationName(r, "destination_terminal_name", "terminal_destination_name", "destination_name", "destination")
	route.Distance = distanceString(r)

	if v, ok := r.num("risk", "risk_level", "risk_score"); ok {
		risk := int(v)
		route.Risk = &risk
	} else if s, ok := r.str("risk", "risk_level", "risk_label"); ok {
		route.RiskLabel = s
	}

	return route
}

func locationName(r record, keys ...string) string {
	if name, ok := r.str(keys...); ok {
		return name
	}
	return "Unknown"
}

// distanceString renders a human-readable distance: AU preferred, then km,
// then a generic value+unit pair, else "Unknown". A bare number with no unit
// is meaningless to the player and falls through to "Unknown".
func distanceString(r record) string {
	if au, ok := r.num("distance_au"); ok {
		return fmt.Sprintf("%.2f AU", au)
	}
	if km, ok := r.num("distance_km"); ok {
		return fmt.Sprintf("%.0f km", km)
	}
	if v, ok := r.num("distance"); ok {
		if unit, ok := r.str("distance_unit", "unit"); ok {
			return fmt.Sprintf("%g %s", v, unit)
		}
	}
	return "Unknown"
}
