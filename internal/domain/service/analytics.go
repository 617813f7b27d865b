package service

import (
	"context"
	"time"

	"PriceSignal/internal/domain/models"
)

// PriceAnalytics computes the derived price views at a given as-of time.
type PriceAnalytics interface {
	Ingredients(ctx context.Context, asOf time.Time) ([]models.IngredientSummary, error)
	PriceHistory(ctx context.Context, ingredient string, days int, asOf time.Time) (*models.PriceHistory, error)
	DealPattern(ctx context.Context, ingredient string, asOf time.Time) models.DealPattern
	BuyNowSignals(ctx context.Context, asOf time.Time) ([]models.BuyNowSignal, error)
	WaitSignals(ctx context.Context, asOf time.Time) ([]models.WaitSignal, error)
	ExpiringDeals(ctx context.Context, asOf time.Time) ([]models.ExpiringDeal, error)
	Health(ctx context.Context) error
}
