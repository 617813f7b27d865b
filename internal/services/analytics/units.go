// Package analytics holds the pure price-signal computations. Every function works on
// observations already read from the store and an explicit as-of time, so results are
// deterministic for a given store snapshot.
package analytics

import (
	"PriceSignal/internal/domain/models"

	"github.com/shopspring/decimal"
)

// PricePerStandardUnit normalizes an effective price to per-kilogram or per-litre.
// Gram and millilitre packages scale by 1000/size, kilogram and litre packages by 1/size.
// Each-priced products, and packages without a positive size, keep the price as is.
func PricePerStandardUnit(effective, packageSize float64, unit models.Unit) float64 {
	if packageSize <= 0 {
		return effective
	}
	switch unit {
	case models.UnitGram, models.UnitMillilitre:
		return effective / packageSize * 1000
	case models.UnitKilogram, models.UnitLitre:
		return effective / packageSize
	default:
		return effective
	}
}

// StandardUnit picks the display unit for a group of products from its unit counts.
func StandardUnit(units map[models.Unit]int) string {
	mass := units[models.UnitGram] + units[models.UnitKilogram]
	volume := units[models.UnitMillilitre] + units[models.UnitLitre]
	each := units[models.UnitEach]
	switch {
	case mass == 0 && volume == 0:
		return "each"
	case mass >= volume && mass >= each:
		return "kg"
	case volume >= each:
		return "L"
	default:
		return "each"
	}
}

// money rounds to cents.
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func moneyPtr(v float64) *float64 {
	m := money(v)
	return &m
}
