package api

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSignal/internal/repository"
	"PriceSignal/internal/service/cache"
	"PriceSignal/internal/usecase"
	xhttp "PriceSignal/pkg/http"
	"PriceSignal/pkg/sqlite"
)

// sqliteEcho serves the handlers over a real SQL store seeded with one milk SKU.
func sqliteEcho(t *testing.T, c cache.BytesCache, ttl time.Duration) *echo.Echo {
	t.Helper()
	client, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.InitSchema(ctx))
	_, err = client.DB().ExecContext(ctx,
		`INSERT INTO products (sku, ingredient, category, brand, full_name, package_size, unit) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"MILK-1", "Milk", "Dairy", "Acme", "Acme Milk 1L", 1.0, "l")
	require.NoError(t, err)
	_, err = client.DB().ExecContext(ctx,
		`INSERT INTO price_history (sku, scraped_at, price) VALUES (?, ?, ?)`,
		"MILK-1", clock.AddDate(0, 0, -2), 2.50)
	require.NoError(t, err)

	signals := usecase.NewPriceSignals(repository.NewSQLPriceStore(client.DB(), repository.DialectSQLite), nil, nil)
	signals.SetClock(func() time.Time { return clock })

	e := echo.New()
	e.HTTPErrorHandler = xhttp.HTTPErrorHandler
	h := NewPricesEchoHandler(nil, signals).WithClock(signals.Now).WithCache(c, ttl)
	h.RegisterRoutes(e)
	return e
}

func TestCachedAndUncachedBodiesMatch(t *testing.T) {
	cached := sqliteEcho(t, cache.NewTTLCache(16), time.Minute)
	uncached := sqliteEcho(t, nil, 0)

	paths := []string{
		"/api/ingredient-price-history/milk/30",
		"/api/ingredient-price-history/milk%20/30",
		"/api/ingredient-price-history/MILK/30",
		"/api/deal-pattern/milk",
		"/api/deal-pattern/milk%20",
	}
	for _, p := range paths {
		get(cached, p)
	}
	for _, p := range paths {
		want := get(uncached, p)
		got := get(cached, p)
		require.Equal(t, want.Code, got.Code, p)
		assert.Equal(t, "HIT", got.Header().Get("X-Cache"), p)
		assert.JSONEq(t, want.Body.String(), got.Body.String(), p)
	}

	spaced := get(uncached, "/api/ingredient-price-history/milk%20/30")
	assert.Contains(t, spaced.Body.String(), `"price_history":[]`)
	plain := get(uncached, "/api/ingredient-price-history/milk/30")
	assert.Contains(t, plain.Body.String(), `"current_price":2.5`)
}
