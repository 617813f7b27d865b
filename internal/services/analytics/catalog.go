package analytics

import (
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
	"PriceSignal/pkg/util"
)

const (
	// TrendWindowDays is how far back observations are read for price trends.
	TrendWindowDays = 30

	trendRecentDays = 7
	trendBand       = 0.05
)

const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendStable  = "stable"
	TrendUnknown = "unknown"
)

type groupKey struct{ ingredient, category string }

// Summaries builds the ingredient catalog. recent holds observations of the last
// TrendWindowDays used to derive each group's price trend.
func Summaries(groups []models.CatalogGroup, recent []models.Observation, asOf time.Time) []models.IngredientSummary {
	cut := util.DaysAgo(asOf, trendRecentDays)
	from := util.DaysAgo(asOf, TrendWindowDays)

	type split struct{ recent, prior []float64 }
	byGroup := make(map[groupKey]*split)
	for _, o := range inWindow(recent, from, asOf) {
		k := groupKey{o.Ingredient, o.Category}
		s, ok := byGroup[k]
		if !ok {
			s = &split{}
			byGroup[k] = s
		}
		if o.ScrapedAt.After(cut) {
			s.recent = append(s.recent, o.EffectivePrice())
		} else {
			s.prior = append(s.prior, o.EffectivePrice())
		}
	}

	out := make([]models.IngredientSummary, 0, len(groups))
	for _, g := range groups {
		row := models.IngredientSummary{
			Ingredient:   g.Ingredient,
			Category:     g.Category,
			ProductCount: g.ProductCount,
			StandardUnit: StandardUnit(g.Units),
			PriceTrend:   TrendUnknown,
		}
		if g.MinEffectivePrice != nil {
			row.MinEffectivePrice = moneyPtr(*g.MinEffectivePrice)
		}
		if s, ok := byGroup[groupKey{g.Ingredient, g.Category}]; ok {
			row.PriceTrend = Trend(s.recent, s.prior)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ingredient != out[j].Ingredient {
			return out[i].Ingredient < out[j].Ingredient
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Trend compares the recent average price with the prior average.
func Trend(recent, prior []float64) string {
	if len(recent) == 0 || len(prior) == 0 {
		return TrendUnknown
	}
	r, p := mean(recent), mean(prior)
	if p == 0 {
		return TrendUnknown
	}
	change := (r - p) / p
	switch {
	case change > trendBand:
		return TrendUp
	case change < -trendBand:
		return TrendDown
	default:
		return TrendStable
	}
}
