package analytics

import (
	"fmt"
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
	"PriceSignal/pkg/util"
)

const (
	// BuyWindowDays is the lookback used for buy and wait signals.
	BuyWindowDays = 60

	nearLowFactor    = 1.05
	greatDealPct     = 20.0
	excellentDealPct = 25.0
	buyLimit         = 20
)

// Buy-now ranking tiers.
const (
	RankHistoricLow   = 1
	RankExcellentDeal = 2
	RankOther         = 3
)

// BuyNow classifies every SKU in the 60-day window ending at asOf and returns the
// top buy-now signals ordered by rank tier, then potential savings.
func BuyNow(obs []models.Observation, asOf time.Time) []models.BuyNowSignal {
	window := inWindow(obs, util.DaysAgo(asOf, BuyWindowDays), asOf)
	type ranked struct {
		sig     models.BuyNowSignal
		savings float64 // unrounded avg - current
	}
	rows := make([]ranked, 0)
	for _, s := range groupBySKU(window) {
		latest := s.latest()
		prices := s.prices()
		cur := latest.EffectivePrice()
		low, _ := minMax(prices)
		avg := mean(prices)
		p25 := PercentileCont(prices, 0.25)
		savings := latest.Savings()

		nearLow := cur <= low*nearLowFactor
		bottomQuartile := cur <= p25
		greatDeal := savings >= greatDealPct
		if !nearLow && !bottomQuartile && !greatDeal {
			continue
		}

		rank := RankOther
		switch {
		case nearLow:
			rank = RankHistoricLow
		case savings >= excellentDealPct:
			rank = RankExcellentDeal
		}

		rows = append(rows, ranked{savings: avg - cur, sig: models.BuyNowSignal{
			SKU:              latest.SKU,
			Ingredient:       latest.Ingredient,
			Category:         latest.Category,
			Brand:            latest.Brand,
			FullName:         latest.FullName,
			CurrentPrice:     money(cur),
			HistoricLow:      money(low),
			AvgPrice:         money(avg),
			Percentile25:     money(p25),
			DealSavings:      latest.DealSavings,
			Reason:           buyReason(cur, low, p25, savings),
			Rank:             rank,
			PotentialSavings: money(avg - cur),
		}})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].sig.Rank != rows[j].sig.Rank {
			return rows[i].sig.Rank < rows[j].sig.Rank
		}
		if rows[i].savings != rows[j].savings {
			return rows[i].savings > rows[j].savings
		}
		return rows[i].sig.SKU < rows[j].sig.SKU
	})
	if len(rows) > buyLimit {
		rows = rows[:buyLimit]
	}
	out := make([]models.BuyNowSignal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.sig)
	}
	return out
}

func buyReason(cur, low, p25, savings float64) string {
	switch {
	case cur <= low:
		return "At historic low"
	case cur <= low*nearLowFactor:
		return "Near historic low"
	case cur <= p25:
		return "In bottom 25% of 60-day prices"
	case savings >= excellentDealPct:
		return fmt.Sprintf("Excellent deal: %.0f%% off", savings)
	case savings >= greatDealPct:
		return fmt.Sprintf("Great deal: %.0f%% off", savings)
	default:
		return "Good value"
	}
}
