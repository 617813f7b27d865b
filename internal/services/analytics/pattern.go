package analytics

import (
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
	"PriceSignal/pkg/util"
)

const (
	// PatternWindowDays is the fixed lookback of the deal-pattern analysis.
	PatternWindowDays = 90
	// PatternMinSavings is the exclusive savings threshold of a qualifying deal.
	PatternMinSavings = 15.0

	frequentDeals   = 4
	occasionalDeals = 2
	overdueFactor   = 1.5
)

const (
	RecommendWaitSoon   = "Deal likely soon, consider waiting"
	RecommendRegular    = "Regular deal pattern, buy when discounted"
	RecommendOccasional = "Buy at 15%+ discount"
	RecommendRare       = "Buy when needed, deals are unpredictable"
	RecommendUnknown    = "Unable to analyze deal pattern"
)

// UnknownPattern is the degraded result used when the analysis cannot run.
func UnknownPattern() models.DealPattern {
	return models.DealPattern{Frequency: models.DealUnknown, Recommendation: RecommendUnknown}
}

// ClassifyDeals derives the deal cadence of an ingredient from its observations.
// Every observation inside the 90-day window with savings > 15% is a qualifying deal;
// gaps are whole days between consecutive deal dates, so same-day deals give 0.
func ClassifyDeals(obs []models.Observation, asOf time.Time) models.DealPattern {
	from := util.DaysAgo(asOf, PatternWindowDays)
	var days []time.Time
	for _, o := range inWindow(obs, from, asOf) {
		if o.Savings() <= PatternMinSavings {
			continue
		}
		days = append(days, util.StartOfDay(o.ScrapedAt))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	p := models.DealPattern{DealCount: len(days)}
	switch {
	case len(days) >= frequentDeals:
		p.Frequency = models.DealFrequent
	case len(days) >= occasionalDeals:
		p.Frequency = models.DealOccasional
	default:
		p.Frequency = models.DealRare
	}

	if len(days) > 0 {
		since := util.DaysBetween(days[len(days)-1], asOf)
		p.DaysSinceLastDeal = &since
	}
	if len(days) > 1 {
		var total int
		for i := 1; i < len(days); i++ {
			total += util.DaysBetween(days[i-1], days[i])
		}
		avg := float64(total) / float64(len(days)-1)
		avg = money(avg)
		p.AvgDaysBetweenDeals = &avg
	}

	switch p.Frequency {
	case models.DealFrequent:
		if p.AvgDaysBetweenDeals != nil && float64(*p.DaysSinceLastDeal) > *p.AvgDaysBetweenDeals*overdueFactor {
			p.Recommendation = RecommendWaitSoon
		} else {
			p.Recommendation = RecommendRegular
		}
	case models.DealOccasional:
		p.Recommendation = RecommendOccasional
	default:
		p.Recommendation = RecommendRare
	}
	return p
}
