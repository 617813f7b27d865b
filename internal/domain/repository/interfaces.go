package repository

import (
	"context"
	"time"

	"PriceSignal/internal/domain/models"
)

// ObservationFilter selects price observations joined with their products.
// Products without an ingredient are always excluded.
type ObservationFilter struct {
	Ingredient string // case-insensitive exact match; empty means all ingredients
	From       time.Time
	To         time.Time
	MinSavings *float64 // strictly greater than, when set
}

// PriceStore provides read-only access to the scraped catalog and price history.
type PriceStore interface {
	CatalogGroups(ctx context.Context, asOf time.Time) ([]models.CatalogGroup, error)
	Observations(ctx context.Context, f ObservationFilter) ([]models.Observation, error)
	LatestObservation(ctx context.Context, ingredient string, asOf time.Time) (*models.Observation, error)
	LatestPerSKU(ctx context.Context, asOf time.Time) ([]models.Observation, error)
	Health(ctx context.Context) error
}

// Metrics records operational metrics for the analytics service.
type Metrics interface {
	RecordQuery(op string, seconds float64, err error)
	RecordError(kind string)
	RecordAlertsPublished(kind string, n int)
}
