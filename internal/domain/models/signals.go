package models

import "time"

// Results of the analytics engine. JSON tags define the public wire format.

type IngredientSummary struct {
	Ingredient        string   `json:"ingredient"`
	Category          string   `json:"category"`
	ProductCount      int      `json:"product_count"`
	MinEffectivePrice *float64 `json:"min_effective_price"`
	StandardUnit      string   `json:"standard_unit"`
	PriceTrend        string   `json:"price_trend"`
}

type PricePoint struct {
	SKU                  string     `json:"sku"`
	Ingredient           string     `json:"ingredient"`
	Category             string     `json:"category"`
	Brand                string     `json:"brand"`
	FullName             string     `json:"full_name"`
	PackageSize          float64    `json:"package_size"`
	Unit                 Unit       `json:"unit"`
	ScrapedAt            time.Time  `json:"scraped_at"`
	Price                float64    `json:"price"`
	LoyaltyPrice         *float64   `json:"loyalty_price"`
	EffectivePrice       float64    `json:"effective_price"`
	DealSavings          *float64   `json:"deal_savings_percentage"`
	DealValidUntil       *time.Time `json:"deal_valid_until"`
	PricePerStandardUnit float64    `json:"price_per_standard_unit"`
}

type PriceStats struct {
	Count        int      `json:"count"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	AvgPrice     *float64 `json:"avg_price"`
	CurrentPrice *float64 `json:"current_price"`
	DealCount    int      `json:"deal_count"`
}

type DealFrequency string

const (
	DealFrequent   DealFrequency = "FREQUENT"
	DealOccasional DealFrequency = "OCCASIONAL"
	DealRare       DealFrequency = "RARE"
	DealUnknown    DealFrequency = "UNKNOWN"
)

type DealPattern struct {
	Frequency           DealFrequency `json:"frequency"`
	DealCount           int           `json:"deal_count"`
	AvgDaysBetweenDeals *float64      `json:"avg_days_between_deals"`
	DaysSinceLastDeal   *int          `json:"days_since_last_deal"`
	Recommendation      string        `json:"recommendation"`
}

type PriceHistory struct {
	PriceHistory []PricePoint `json:"price_history"`
	Stats        PriceStats   `json:"stats"`
	DealPattern  DealPattern  `json:"deal_pattern"`
}

type BuyNowSignal struct {
	SKU              string   `json:"sku"`
	Ingredient       string   `json:"ingredient"`
	Category         string   `json:"category"`
	Brand            string   `json:"brand"`
	FullName         string   `json:"full_name"`
	CurrentPrice     float64  `json:"current_price"`
	HistoricLow      float64  `json:"historic_low"`
	AvgPrice         float64  `json:"avg_price"`
	Percentile25     float64  `json:"percentile_25"`
	DealSavings      *float64 `json:"deal_savings_percentage"`
	Reason           string   `json:"reason"`
	Rank             int      `json:"rank"`
	PotentialSavings float64  `json:"potential_savings"`
}

type WaitSignal struct {
	SKU               string  `json:"sku"`
	Ingredient        string  `json:"ingredient"`
	Category          string  `json:"category"`
	Brand             string  `json:"brand"`
	FullName          string  `json:"full_name"`
	CurrentPrice      float64 `json:"current_price"`
	AvgPrice          float64 `json:"avg_price"`
	MinPrice          float64 `json:"min_price"`
	Percentile75      float64 `json:"percentile_75"`
	DealCount         int     `json:"deal_count"`
	DaysSinceLastDeal *int    `json:"days_since_last_deal"`
	Reason            string  `json:"reason"`
	ExpectedPrice     float64 `json:"expected_price"`
}

type ExpiringDeal struct {
	SKU             string    `json:"sku"`
	Ingredient      string    `json:"ingredient"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	FullName        string    `json:"full_name"`
	Price           float64   `json:"price"`
	LoyaltyPrice    *float64  `json:"loyalty_price"`
	EffectivePrice  float64   `json:"effective_price"`
	DealSavings     float64   `json:"deal_savings_percentage"`
	DealValidUntil  time.Time `json:"deal_valid_until"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	ScrapedAt       time.Time `json:"scraped_at"`
}
