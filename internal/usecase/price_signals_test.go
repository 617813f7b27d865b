package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSignal/internal/domain/models"
	domrepo "PriceSignal/internal/domain/repository"
	"PriceSignal/internal/services/analytics"
)

var asOf = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	groups  []models.CatalogGroup
	obs     []models.Observation
	latest  *models.Observation
	perSKU  []models.Observation
	obsErr  error
	dealErr error
	filters []domrepo.ObservationFilter
}

func (f *fakeStore) CatalogGroups(context.Context, time.Time) ([]models.CatalogGroup, error) {
	return f.groups, nil
}

func (f *fakeStore) Observations(_ context.Context, flt domrepo.ObservationFilter) ([]models.Observation, error) {
	f.filters = append(f.filters, flt)
	if flt.MinSavings != nil && f.dealErr != nil {
		return nil, f.dealErr
	}
	if f.obsErr != nil {
		return nil, f.obsErr
	}
	return f.obs, nil
}

func (f *fakeStore) LatestObservation(context.Context, string, time.Time) (*models.Observation, error) {
	return f.latest, nil
}

func (f *fakeStore) LatestPerSKU(context.Context, time.Time) ([]models.Observation, error) {
	return f.perSKU, nil
}

func (f *fakeStore) Health(context.Context) error { return nil }

type countingMetrics struct{ errs []string }

func (c *countingMetrics) RecordQuery(string, float64, error) {}
func (c *countingMetrics) RecordError(kind string)            { c.errs = append(c.errs, kind) }
func (c *countingMetrics) RecordAlertsPublished(string, int)  {}

func observation(sku string, at time.Time, price float64, savings *float64) models.Observation {
	return models.Observation{
		Product: models.Product{SKU: sku, Ingredient: "Milk", Category: "Dairy", Brand: "B", PackageSize: 1, Unit: models.UnitLitre},
		PriceObservation: models.PriceObservation{
			ScrapedAt:   at,
			Price:       price,
			DealSavings: savings,
		},
	}
}

func pct(v float64) *float64 { return &v }

func newService(s *fakeStore) (*PriceSignals, *countingMetrics) {
	m := &countingMetrics{}
	svc := NewPriceSignals(s, nil, m)
	svc.SetClock(func() time.Time { return asOf })
	return svc, m
}

func TestPriceHistory_ZeroDays(t *testing.T) {
	cur := observation("a", asOf.Add(-time.Hour), 2.40, nil)
	s := &fakeStore{latest: &cur}
	svc, _ := newService(s)

	h, err := svc.PriceHistory(context.Background(), "milk", 0, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, h.PriceHistory)
	assert.NotNil(t, h.PriceHistory, "serializes as []")
	assert.Equal(t, 0, h.Stats.Count)
	assert.Nil(t, h.Stats.AvgPrice)
	require.NotNil(t, h.Stats.CurrentPrice)
	assert.InDelta(t, 2.40, *h.Stats.CurrentPrice, 1e-9)

	// only the deal-pattern lookup hits Observations
	require.Len(t, s.filters, 1)
	require.NotNil(t, s.filters[0].MinSavings)
	assert.Equal(t, analytics.PatternMinSavings, *s.filters[0].MinSavings)
}

func TestPriceHistory_Window(t *testing.T) {
	s := &fakeStore{obs: []models.Observation{
		observation("a", asOf.AddDate(0, 0, -3), 2.00, pct(20)),
		observation("a", asOf.AddDate(0, 0, -1), 3.00, nil),
	}}
	svc, _ := newService(s)

	h, err := svc.PriceHistory(context.Background(), "Milk", 7, asOf)
	require.NoError(t, err)
	assert.Len(t, h.PriceHistory, 2)
	assert.Equal(t, 1, h.Stats.DealCount)
	assert.Nil(t, h.Stats.CurrentPrice)

	assert.Equal(t, "Milk", s.filters[0].Ingredient)
	assert.True(t, s.filters[0].From.Equal(time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)), "window starts at today minus days")
	assert.True(t, s.filters[0].To.Equal(asOf))
	assert.Equal(t, models.DealRare, h.DealPattern.Frequency)
}

func TestPriceHistory_NegativeDays(t *testing.T) {
	svc, _ := newService(&fakeStore{})
	_, err := svc.PriceHistory(context.Background(), "milk", -1, asOf)
	assert.Error(t, err)
}

func TestPriceHistory_DealPatternDegrades(t *testing.T) {
	s := &fakeStore{dealErr: errors.New("relation does not exist")}
	svc, m := newService(s)

	h, err := svc.PriceHistory(context.Background(), "milk", 30, asOf)
	require.NoError(t, err)
	assert.Equal(t, models.DealUnknown, h.DealPattern.Frequency)
	assert.Equal(t, "Unable to analyze deal pattern", h.DealPattern.Recommendation)
	assert.Equal(t, []string{"deal_pattern"}, m.errs)
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	s := &fakeStore{obsErr: boom}
	svc, m := newService(s)
	ctx := context.Background()

	_, err := svc.BuyNowSignals(ctx, asOf)
	assert.ErrorIs(t, err, boom)
	_, err = svc.WaitSignals(ctx, asOf)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Ingredients(ctx, asOf)
	assert.ErrorIs(t, err, boom)
	_, err = svc.PriceHistory(ctx, "milk", 10, asOf)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"buy_now", "wait", "ingredients", "price_history"}, m.errs)
}

func TestSignalsUseWindowAndClock(t *testing.T) {
	s := &fakeStore{obs: []models.Observation{
		observation("a", asOf.AddDate(0, 0, -20), 3.00, nil),
		observation("a", asOf.AddDate(0, 0, -1), 2.00, nil),
	}}
	svc, _ := newService(s)

	buy, err := svc.BuyNowSignals(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, buy, 1)
	assert.Equal(t, "At historic low", buy[0].Reason)
	assert.True(t, s.filters[0].From.Equal(asOf.Add(-60*24*time.Hour)))

	wait, err := svc.WaitSignals(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, wait)
	assert.NotNil(t, wait)
}

func TestExpiringDeals(t *testing.T) {
	until := asOf.AddDate(0, 0, 1)
	o := observation("a", asOf, 2.00, pct(30))
	o.DealValidTill = &until
	svc, _ := newService(&fakeStore{perSKU: []models.Observation{o}})

	got, err := svc.ExpiringDeals(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].DaysUntilExpiry)
}
