package analytics

import (
	"fmt"
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
	"PriceSignal/pkg/util"
)

const (
	waitDealPct = 15.0

	// aboveAvgFilter decides membership, aboveAvgNarrative only picks the reason text.
	// They differ on purpose; keep both.
	aboveAvgFilter    = 1.15
	aboveAvgNarrative = 1.10

	frequentDealCount = 3
	dueDealDays       = 14
	dueDealCount      = 2
	waitLimit         = 15
)

// Wait returns SKUs whose current price makes buying now a poor choice, over the
// 60-day window ending at asOf.
func Wait(obs []models.Observation, asOf time.Time) []models.WaitSignal {
	window := inWindow(obs, util.DaysAgo(asOf, BuyWindowDays), asOf)
	type ranked struct {
		sig models.WaitSignal
		gap float64 // unrounded current - min
	}
	rows := make([]ranked, 0)
	for _, s := range groupBySKU(window) {
		latest := s.latest()
		prices := s.prices()
		cur := latest.EffectivePrice()
		low, _ := minMax(prices)
		avg := mean(prices)
		p75 := PercentileCont(prices, 0.75)

		deals := 0
		var lastDeal time.Time
		for _, o := range s.obs {
			if o.Savings() > waitDealPct {
				deals++
				if o.ScrapedAt.After(lastDeal) {
					lastDeal = o.ScrapedAt
				}
			}
		}
		var daysSince *int
		if deals > 0 {
			d := util.DaysBetween(lastDeal, asOf)
			daysSince = &d
		}

		frequentExpensive := cur >= p75 && deals >= frequentDealCount
		wellAbove := cur > avg*aboveAvgFilter
		dealDue := daysSince != nil && *daysSince >= dueDealDays && deals >= dueDealCount
		if !frequentExpensive && !wellAbove && !dealDue {
			continue
		}

		rows = append(rows, ranked{gap: cur - low, sig: models.WaitSignal{
			SKU:               latest.SKU,
			Ingredient:        latest.Ingredient,
			Category:          latest.Category,
			Brand:             latest.Brand,
			FullName:          latest.FullName,
			CurrentPrice:      money(cur),
			AvgPrice:          money(avg),
			MinPrice:          money(low),
			Percentile75:      money(p75),
			DealCount:         deals,
			DaysSinceLastDeal: daysSince,
			Reason:            waitReason(cur, avg, p75, deals, daysSince),
			ExpectedPrice:     money(low),
		}})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].gap != rows[j].gap {
			return rows[i].gap > rows[j].gap
		}
		di, dj := rows[i].sig.DaysSinceLastDeal, rows[j].sig.DaysSinceLastDeal
		switch {
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		case di != nil && dj != nil && *di != *dj:
			return *di > *dj
		}
		return rows[i].sig.SKU < rows[j].sig.SKU
	})
	if len(rows) > waitLimit {
		rows = rows[:waitLimit]
	}
	out := make([]models.WaitSignal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.sig)
	}
	return out
}

func waitReason(cur, avg, p75 float64, deals int, daysSince *int) string {
	switch {
	case cur >= p75 && deals >= frequentDealCount:
		return fmt.Sprintf("Frequent deals (%d in 60 days), currently expensive", deals)
	case cur > avg*aboveAvgNarrative:
		return fmt.Sprintf("Price %.0f%% above average", (cur/avg-1)*100)
	case daysSince != nil && *daysSince >= dueDealDays && deals >= dueDealCount:
		return fmt.Sprintf("Deal likely soon (last deal %d days ago)", *daysSince)
	default:
		return "Above typical price"
	}
}
