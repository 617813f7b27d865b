package analytics

import (
	"time"

	"PriceSignal/internal/domain/models"
)

var asOf = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type obsOpt func(*models.Observation)

func withSavings(p float64) obsOpt {
	return func(o *models.Observation) { o.DealSavings = &p }
}

func withLoyalty(p float64) obsOpt {
	return func(o *models.Observation) { o.LoyaltyPrice = &p }
}

func withValidUntil(t time.Time) obsOpt {
	return func(o *models.Observation) { o.DealValidTill = &t }
}

func withProduct(ingredient, brand string, size float64, unit models.Unit) obsOpt {
	return func(o *models.Observation) {
		o.Ingredient = ingredient
		o.Brand = brand
		o.PackageSize = size
		o.Unit = unit
	}
}

func obs(sku string, daysAgo int, price float64, opts ...obsOpt) models.Observation {
	o := models.Observation{
		Product: models.Product{
			SKU:         sku,
			Ingredient:  "Milk",
			Category:    "Dairy",
			Brand:       "Brand " + sku,
			FullName:    "Milk " + sku,
			PackageSize: 1,
			Unit:        models.UnitLitre,
		},
		PriceObservation: models.PriceObservation{
			ScrapedAt: asOf.AddDate(0, 0, -daysAgo),
			Price:     price,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
