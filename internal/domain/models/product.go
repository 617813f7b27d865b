package models

import (
	"time"

	"PriceSignal/pkg/util"
)

// Unit is the package unit of a product as scraped from the retailer.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMillilitre Unit = "ml"
	UnitLitre      Unit = "l"
	UnitEach       Unit = "each"
)

// NormalizeUnit maps raw scraped units onto the known set. Unknown values become UnitEach.
func NormalizeUnit(s string) Unit {
	switch util.FoldKey(s) {
	case "g", "gram", "grams":
		return UnitGram
	case "kg", "kilogram", "kilograms":
		return UnitKilogram
	case "ml", "millilitre", "milliliter":
		return UnitMillilitre
	case "l", "litre", "liter":
		return UnitLitre
	default:
		return UnitEach
	}
}

// Product is one stock-keeping unit.
type Product struct {
	SKU         string
	Ingredient  string
	Category    string
	Brand       string
	FullName    string
	PackageSize float64
	Unit        Unit
}

// PriceObservation is a single scraped price point. The owning SKU lives on
// the Product it is joined with.
type PriceObservation struct {
	ScrapedAt     time.Time
	Price         float64
	LoyaltyPrice  *float64
	DealSavings   *float64 // percentage, 0-100
	DealValidTill *time.Time
}

// EffectivePrice is the loyalty price when present, otherwise the base price.
func (o PriceObservation) EffectivePrice() float64 {
	if o.LoyaltyPrice != nil {
		return *o.LoyaltyPrice
	}
	return o.Price
}

// Savings returns the deal savings percentage, or 0 when none was scraped.
func (o PriceObservation) Savings() float64 {
	if o.DealSavings == nil {
		return 0
	}
	return *o.DealSavings
}

// Observation is a price point joined with its product attributes.
type Observation struct {
	Product
	PriceObservation
}

// CatalogGroup is the raw (ingredient, category) aggregate read from the store.
type CatalogGroup struct {
	Ingredient        string
	Category          string
	ProductCount      int
	MinEffectivePrice *float64
	Units             map[Unit]int
}
