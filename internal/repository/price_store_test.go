package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSignal/internal/domain/models"
	domrepo "PriceSignal/internal/domain/repository"
	"PriceSignal/pkg/sqlite"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

type row struct {
	sku        string
	at         time.Time
	price      float64
	loyalty    *float64
	savings    *float64
	validUntil *time.Time
}

func newStore(t *testing.T) *SQLPriceStore {
	t.Helper()
	c, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.InitSchema(ctx))

	products := [][]any{
		{"MILK-1", "Milk", "Dairy", "Acme", "Acme Milk 2L", 2.0, "L"},
		{"MILK-2", "milk", "Dairy", "Brandy", "Brandy Milk 500ml", 500.0, "ml"},
		{"EGG-1", "Eggs", "Dairy", "Hen", "Hen Eggs 12", 12.0, "each"},
		{"SALT-1", "Salt", "Pantry", "Sea", "Sea Salt", 1.0, "kg"},
		{"MISC-1", nil, "Misc", "None", "Unclassified", 1.0, "each"},
	}
	for _, p := range products {
		_, err := c.DB().ExecContext(ctx,
			`INSERT INTO products (sku, ingredient, category, brand, full_name, package_size, unit) VALUES (?, ?, ?, ?, ?, ?, ?)`, p...)
		require.NoError(t, err)
	}

	until := now.AddDate(0, 0, 2)
	rows := []row{
		{sku: "MILK-1", at: now.AddDate(0, 0, -10), price: 3.00},
		{sku: "MILK-1", at: now.AddDate(0, 0, -2), price: 3.20, loyalty: f64(2.50), savings: f64(22), validUntil: &until},
		{sku: "MILK-2", at: now.AddDate(0, 0, -2), price: 1.10},
		{sku: "MILK-2", at: now.AddDate(0, 0, -1), price: 1.20},
		{sku: "EGG-1", at: now.AddDate(0, 0, -40), price: 4.00},
		{sku: "MISC-1", at: now.AddDate(0, 0, -1), price: 0.10},
		// after asOf, must be invisible
		{sku: "MILK-1", at: now.Add(time.Hour), price: 0.50},
	}
	for _, r := range rows {
		var vu any
		if r.validUntil != nil {
			vu = *r.validUntil
		}
		var lp, sv any
		if r.loyalty != nil {
			lp = *r.loyalty
		}
		if r.savings != nil {
			sv = *r.savings
		}
		_, err := c.DB().ExecContext(ctx,
			`INSERT INTO price_history (sku, scraped_at, price, loyalty_price, deal_savings_percentage, deal_valid_until) VALUES (?, ?, ?, ?, ?, ?)`,
			r.sku, r.at, r.price, lp, sv, vu)
		require.NoError(t, err)
	}

	return NewSQLPriceStore(c.DB(), DialectSQLite)
}

func TestCatalogGroups(t *testing.T) {
	s := newStore(t)
	groups, err := s.CatalogGroups(context.Background(), now)
	require.NoError(t, err)

	byName := map[string]models.CatalogGroup{}
	for _, g := range groups {
		byName[g.Ingredient] = g
	}
	require.Len(t, groups, 4, "null ingredient is excluded, ingredient text is kept as stored")

	milk := byName["Milk"]
	assert.Equal(t, 1, milk.ProductCount)
	require.NotNil(t, milk.MinEffectivePrice)
	assert.InDelta(t, 2.50, *milk.MinEffectivePrice, 1e-9)
	assert.Equal(t, 1, milk.Units[models.UnitLitre])

	salt := byName["Salt"]
	assert.Equal(t, 1, salt.ProductCount)
	assert.Nil(t, salt.MinEffectivePrice, "no observations yields null minimum")

	eggs := byName["Eggs"]
	require.NotNil(t, eggs.MinEffectivePrice)
	assert.InDelta(t, 4.00, *eggs.MinEffectivePrice, 1e-9)
}

func TestObservations_CaseInsensitiveWindow(t *testing.T) {
	s := newStore(t)
	got, err := s.Observations(context.Background(), domrepo.ObservationFilter{
		Ingredient: "MILK",
		From:       now.AddDate(0, 0, -5),
		To:         now,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// ordered by scraped_at, then brand
	assert.Equal(t, "MILK-1", got[0].SKU)
	assert.Equal(t, "MILK-2", got[1].SKU)
	assert.Equal(t, "MILK-2", got[2].SKU)

	assert.True(t, got[0].ScrapedAt.Equal(now.AddDate(0, 0, -2)))
	require.NotNil(t, got[0].LoyaltyPrice)
	assert.InDelta(t, 2.50, got[0].EffectivePrice(), 1e-9)
	assert.InDelta(t, 22, got[0].Savings(), 1e-9)
	require.NotNil(t, got[0].DealValidTill)
	assert.True(t, got[0].DealValidTill.Equal(now.AddDate(0, 0, 2)))
	assert.Equal(t, models.UnitLitre, got[0].Unit)
	assert.Equal(t, models.UnitMillilitre, got[1].Unit)
	assert.Nil(t, got[1].DealSavings)
}

func TestObservations_MinSavings(t *testing.T) {
	s := newStore(t)
	got, err := s.Observations(context.Background(), domrepo.ObservationFilter{
		From:       now.AddDate(0, 0, -90),
		To:         now,
		MinSavings: f64(15),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MILK-1", got[0].SKU)
}

func TestLatestObservation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	o, err := s.LatestObservation(ctx, "milk", now)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "MILK-2", o.SKU)
	assert.InDelta(t, 1.20, o.EffectivePrice(), 1e-9)

	o, err = s.LatestObservation(ctx, "salt", now)
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestLatestPerSKU(t *testing.T) {
	s := newStore(t)
	got, err := s.LatestPerSKU(context.Background(), now)
	require.NoError(t, err)

	skus := make([]string, 0, len(got))
	for _, o := range got {
		skus = append(skus, o.SKU)
	}
	assert.Equal(t, []string{"EGG-1", "MILK-1", "MILK-2"}, skus)
	assert.InDelta(t, 3.20, got[1].Price, 1e-9, "future row is ignored")
}

func TestHealth(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.Health(context.Background()))

	down := errors.New("connection refused")
	s.SetHealthCheck(func(context.Context) error { return down })
	err := s.Health(context.Background())
	assert.ErrorIs(t, err, down)
	assert.ErrorContains(t, err, "store health")
}

type recMetrics struct{ ops []string }

func (r *recMetrics) RecordQuery(op string, _ float64, _ error) { r.ops = append(r.ops, op) }
func (r *recMetrics) RecordError(string)                      {}
func (r *recMetrics) RecordAlertsPublished(string, int)       {}

func TestMetricsRecorded(t *testing.T) {
	s := newStore(t)
	m := &recMetrics{}
	s.SetMetrics(m)
	_, err := s.LatestPerSKU(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"latest_per_sku"}, m.ops)
}
