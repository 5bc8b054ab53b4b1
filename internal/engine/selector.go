package engine

import (
	"sort"
	"strings"

	"sc-trade-advisor/internal/uex"
)

// SelectCommodities picks the most interesting commodities of one legality
// class: filter by tradeability flags, join against the ranking signal, order
// by score, and cap at MaxCommoditiesPerMode. When no ranking entry joins to
// any filtered commodity, the first MaxCommoditiesPerMode filtered commodities
// are returned unranked, in their original order.
func SelectCommodities(commodities []uex.Commodity, ranking []uex.RankingSignal, illegal bool) []RankedCommodity {
	filtered := make([]uex.Commodity, 0, len(commodities))
	for _, c := range commodities {
		if !c.Buyable || !c.Sellable || c.Temporary || !c.Available || !c.Visible {
			continue
		}
		if c.IsIllegal != illegal {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil
	}

	byID := make(map[int64]uex.Commodity, len(filtered))
	byName := make(map[string]uex.Commodity, len(filtered))
	for _, c := range filtered {
		byID[c.ID] = c
		byName[normalizeName(c.Name)] = c
	}

	type scored struct {
		commodity uex.Commodity
		score     float64
	}
	// Duplicate signals for one commodity keep the strongest score.
	joined := make([]scored, 0, len(ranking))
	index := make(map[int64]int, len(ranking))
	for _, signal := range ranking {
		commodity, ok := byID[signal.CommodityID]
		if !ok {
			commodity, ok = byName[normalizeName(signal.Name)]
		}
		if !ok {
			continue
		}
		if i, dup := index[commodity.ID]; dup {
			if signal.Score > joined[i].score {
				joined[i].score = signal.Score
			}
			continue
		}
		index[commodity.ID] = len(joined)
		joined = append(joined, scored{commodity: commodity, score: signal.Score})
	}

	if len(joined) == 0 {
		// No usable ranking signal: fall back to the filtered list as-is.
		return toRanked(filtered)
	}

	sort.SliceStable(joined, func(i, j int) bool {
		return joined[i].score > joined[j].score
	})
	if len(joined) > MaxCommoditiesPerMode {
		joined = joined[:MaxCommoditiesPerMode]
	}

	out := make([]RankedCommodity, 0, len(joined))
	for _, s := range joined {
		out = append(out, RankedCommodity{ID: s.commodity.ID, Name: s.commodity.Name, IsIllegal: s.commodity.IsIllegal})
	}
	return out
}

func toRanked(commodities []uex.Commodity) []RankedCommodity {
	if len(commodities) > MaxCommoditiesPerMode {
		commodities = commodities[:MaxCommoditiesPerMode]
	}
	out := make([]RankedCommodity, 0, len(commodities))
	for _, c := range commodities {
		out = append(out, RankedCommodity{ID: c.ID, Name: c.Name, IsIllegal: c.IsIllegal})
	}
	return out
}

// normalizeName lowercases and strips non-alphanumerics so that ranking
// providers with divergent spellings still join ("Agricium (Ore)" vs
// "agricium ore").
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
