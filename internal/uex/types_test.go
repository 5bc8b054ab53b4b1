package uex

import (
	"testing"
)

func TestNormalizeCommodity_Defaults(t *testing.T) {
	c, ok := normalizeCommodity(record{
		"id": float64(12), "name": "Agricium",
		"is_buyable": float64(1), "is_sellable": float64(1),
	})
	if !ok {
		t.Fatal("expected commodity to normalize")
	}
	if c.ID != 12 || c.Name != "Agricium" {
		t.Errorf("commodity = %+v", c)
	}
	if !c.Available || !c.Visible {
		t.Errorf("missing availability/visibility should default to true, got %+v", c)
	}
	if c.IsIllegal || c.Temporary {
		t.Errorf("missing illegal/temporary should default to false, got %+v", c)
	}
}

func TestNormalizeCommodity_LiveAvailabilityPreferred(t *testing.T) {
	c, ok := normalizeCommodity(record{
		"id": float64(3), "name": "WiDoW",
		"is_buyable": float64(1), "is_sellable": float64(1),
		"is_available": float64(1), "is_available_live": float64(0),
	})
	if !ok {
		t.Fatal("expected commodity to normalize")
	}
	if c.Available {
		t.Error("live availability 0 must win over general availability 1")
	}
}

func TestNormalizeCommodity_RejectsUnusableRows(t *testing.T) {
	if _, ok := normalizeCommodity(record{"name": "NoID"}); ok {
		t.Error("row without id should be dropped")
	}
	if _, ok := normalizeCommodity(record{"id": float64(5)}); ok {
		t.Error("row without name should be dropped")
	}
}

func TestNormalizeRanking_RankNegated(t *testing.T) {
	a, ok := normalizeRanking(record{"commodity_name": "Gold", "rank": float64(1)})
	if !ok {
		t.Fatal("rank entry should normalize")
	}
	b, _ := normalizeRanking(record{"commodity_name": "Iron", "rank": float64(5)})
	if a.Score <= b.Score {
		t.Errorf("rank 1 must score higher than rank 5: %v vs %v", a.Score, b.Score)
	}
}

func TestNormalizeRanking_ScoreFieldsUsedAsIs(t *testing.T) {
	s, ok := normalizeRanking(record{"name": "Laranite", "score": float64(87.5)})
	if !ok {
		t.Fatal("score entry should normalize")
	}
	if s.Score != 87.5 {
		t.Errorf("Score = %v, want 87.5", s.Score)
	}
}

func TestNormalizeRanking_RankBeatsScore(t *testing.T) {
	s, ok := normalizeRanking(record{"name": "Quantainium", "rank": float64(2), "score": float64(999)})
	if !ok {
		t.Fatal("entry should normalize")
	}
	if s.Score != -2 {
		t.Errorf("Score = %v, want -2 (rank field takes priority and is negated)", s.Score)
	}
}

func TestNormalizeRanking_NoSignalDiscarded(t *testing.T) {
	if _, ok := normalizeRanking(record{"commodity_name": "Medical Supplies"}); ok {
		t.Error("entry without rank or score fields should be discarded")
	}
}

func TestNormalizeRoute_FieldFallbacks(t *testing.T) {
	r := normalizeRoute(record{
		"id_route":                  float64(77),
		"id_terminal_origin":        float64(4),
		"id_terminal_destination":   float64(9),
		"origin_terminal_name":      "Port Olisar",
		"destination_terminal_name": "Area18 TDD",
		"price_origin":              float64(10),
		"price_destination":         float64(25),
		"scu_reachable":             float64(100),
	}, 12)
	if r.ID != 77 || r.OriginID != 4 || r.DestinationID != 9 {
		t.Errorf("ids = %+v", r)
	}
	if r.Origin != "Port Olisar" || r.Destination != "Area18 TDD" {
		t.Errorf("names = %q / %q", r.Origin, r.Destination)
	}
	if r.PriceBuy != 10 || r.PriceSell != 25 || r.CargoSCU != 100 {
		t.Errorf("economics = %+v", r)
	}
	if r.CommodityID != 12 {
		t.Errorf("CommodityID = %d, want 12", r.CommodityID)
	}
}

func TestNormalizeRoute_AlternateFieldNames(t *testing.T) {
	r := normalizeRoute(record{
		"buy_price":  "4.5",
		"sell_price": float64(9),
		"origin":     "Lorville",
	}, 3)
	if r.PriceBuy != 4.5 || r.PriceSell != 9 {
		t.Errorf("prices = %v / %v", r.PriceBuy, r.PriceSell)
	}
	if r.Origin != "Lorville" {
		t.Errorf("Origin = %q", r.Origin)
	}
	if r.Destination != "Unknown" {
		t.Errorf("missing destination should read %q, got %q", "Unknown", r.Destination)
	}
}

func TestNormalizeRoute_RiskFields(t *testing.T) {
	numeric := normalizeRoute(record{"risk": float64(2)}, 1)
	if numeric.Risk == nil || *numeric.Risk != 2 {
		t.Errorf("numeric risk = %v", numeric.Risk)
	}

	textual := normalizeRoute(record{"risk_level": "High"}, 1)
	if textual.Risk != nil || textual.RiskLabel != "High" {
		t.Errorf("textual risk = %v / %q", textual.Risk, textual.RiskLabel)
	}
}

func TestDistanceString(t *testing.T) {
	tests := []struct {
		name string
		rec  record
		want string
	}{
		{"au preferred", record{"distance_au": float64(3.417), "distance_km": float64(5)}, "3.42 AU"},
		{"km fallback", record{"distance_km": float64(120000)}, "120000 km"},
		{"generic pair", record{"distance": float64(42), "distance_unit": "Gm"}, "42 Gm"},
		{"bare value without unit", record{"distance": float64(7)}, "Unknown"},
		{"unknown", record{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distanceString(tt.rec); got != tt.want {
				t.Errorf("distanceString = %q, want %q", got, tt.want)
			}
		})
	}
}
