package analytics

import (
	"sort"

	"PriceSignal/internal/domain/models"
)

// BuildHistory annotates windowed observations with per-unit prices and summarizes them.
// current is the latest observation of the ingredient regardless of the window.
func BuildHistory(window []models.Observation, current *models.Observation) ([]models.PricePoint, models.PriceStats) {
	points := make([]models.PricePoint, 0, len(window))
	prices := make([]float64, 0, len(window))
	stats := models.PriceStats{}

	for _, o := range window {
		eff := o.EffectivePrice()
		prices = append(prices, eff)
		if o.Savings() > 0 {
			stats.DealCount++
		}
		points = append(points, models.PricePoint{
			SKU:                  o.SKU,
			Ingredient:           o.Ingredient,
			Category:             o.Category,
			Brand:                o.Brand,
			FullName:             o.FullName,
			PackageSize:          o.PackageSize,
			Unit:                 o.Unit,
			ScrapedAt:            o.ScrapedAt,
			Price:                o.Price,
			LoyaltyPrice:         o.LoyaltyPrice,
			EffectivePrice:       eff,
			DealSavings:          o.DealSavings,
			DealValidUntil:       o.DealValidTill,
			PricePerStandardUnit: money(PricePerStandardUnit(eff, o.PackageSize, o.Unit)),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].ScrapedAt.Equal(points[j].ScrapedAt) {
			return points[i].ScrapedAt.Before(points[j].ScrapedAt)
		}
		return points[i].Brand < points[j].Brand
	})

	stats.Count = len(prices)
	if len(prices) > 0 {
		lo, hi := minMax(prices)
		stats.MinPrice = moneyPtr(lo)
		stats.MaxPrice = moneyPtr(hi)
		stats.AvgPrice = moneyPtr(mean(prices))
	}
	if current != nil {
		stats.CurrentPrice = moneyPtr(current.EffectivePrice())
	}
	return points, stats
}
