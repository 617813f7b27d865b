package analytics

import (
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
	"PriceSignal/pkg/util"
)

const (
	expiryHorizonDays = 5
	expiryMinSavings  = 10.0
	expiryLimit       = 20
)

// Expiring keeps latest observations whose deal ends within [today, today+5] and
// saves more than 10%.
func Expiring(latest []models.Observation, asOf time.Time) []models.ExpiringDeal {
	out := make([]models.ExpiringDeal, 0)
	for _, o := range latest {
		if o.DealValidTill == nil || o.Savings() <= expiryMinSavings {
			continue
		}
		days := util.DaysBetween(asOf, *o.DealValidTill)
		if days < 0 || days > expiryHorizonDays {
			continue
		}
		out = append(out, models.ExpiringDeal{
			SKU:             o.SKU,
			Ingredient:      o.Ingredient,
			Category:        o.Category,
			Brand:           o.Brand,
			FullName:        o.FullName,
			Price:           o.Price,
			LoyaltyPrice:    o.LoyaltyPrice,
			EffectivePrice:  o.EffectivePrice(),
			DealSavings:     o.Savings(),
			DealValidUntil:  util.StartOfDay(*o.DealValidTill),
			DaysUntilExpiry: days,
			ScrapedAt:       o.ScrapedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DealValidUntil.Equal(out[j].DealValidUntil) {
			return out[i].DealValidUntil.Before(out[j].DealValidUntil)
		}
		if out[i].DealSavings != out[j].DealSavings {
			return out[i].DealSavings > out[j].DealSavings
		}
		return out[i].SKU < out[j].SKU
	})
	if len(out) > expiryLimit {
		out = out[:expiryLimit]
	}
	return out
}
