package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PriceSignal/internal/domain/models"
	domrepo "PriceSignal/internal/domain/repository"
	applogger "PriceSignal/pkg/logger"
)

const observationColumns = `
        p.sku, p.ingredient, COALESCE(p.category, ''), COALESCE(p.brand, ''), COALESCE(p.full_name, ''),
        COALESCE(p.package_size, 0), COALESCE(p.unit, ''),
        ph.scraped_at, ph.price, ph.loyalty_price, ph.deal_savings_percentage, ph.deal_valid_until`

// SQLPriceStore implements PriceStore over database/sql. The SQL it issues is
// portable across PostgreSQL, ClickHouse and SQLite.
type SQLPriceStore struct {
	db      *sql.DB
	dialect Dialect
	l       *applogger.Logger
	m       domrepo.Metrics
	timeout time.Duration
	ping    func(ctx context.Context) error
}

func NewSQLPriceStore(db *sql.DB, dialect Dialect) *SQLPriceStore {
	return &SQLPriceStore{db: db, dialect: dialect}
}

// SetLogger injects a structured logger.
func (s *SQLPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *SQLPriceStore) SetMetrics(m domrepo.Metrics) { s.m = m }

// SetHealthCheck replaces the default *sql.DB ping with the backend client's own check.
func (s *SQLPriceStore) SetHealthCheck(fn func(ctx context.Context) error) { s.ping = fn }

// SetQueryTimeout bounds every query. Zero disables the bound.
func (s *SQLPriceStore) SetQueryTimeout(d time.Duration) { s.timeout = d }

func (s *SQLPriceStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLPriceStore) CatalogGroups(ctx context.Context, asOf time.Time) ([]models.CatalogGroup, error) {
	start := time.Now()
	const q = `
        SELECT p.ingredient, COALESCE(p.category, ''), COALESCE(p.unit, ''),
               COUNT(DISTINCT p.sku), MIN(COALESCE(ph.loyalty_price, ph.price))
        FROM products p
        LEFT JOIN price_history ph ON ph.sku = p.sku AND ph.scraped_at <= ?
        WHERE p.ingredient IS NOT NULL
        GROUP BY p.ingredient, p.category, p.unit
        ORDER BY p.ingredient ASC
    `
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, q), asOf.UTC())
	if err != nil {
		s.fail("catalog_groups", "query", start, err)
		return nil, fmt.Errorf("catalog groups: %w", err)
	}
	defer rows.Close()

	type key struct{ ingredient, category string }
	idx := make(map[key]int)
	out := make([]models.CatalogGroup, 0, 64)
	for rows.Next() {
		var (
			ingredient, category, unit string
			count                      int
			minPrice                   sql.NullFloat64
		)
		if err := rows.Scan(&ingredient, &category, &unit, &count, &minPrice); err != nil {
			s.fail("catalog_groups", "scan", start, err)
			return nil, fmt.Errorf("scan catalog group: %w", err)
		}
		k := key{ingredient, category}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, models.CatalogGroup{Ingredient: ingredient, Category: category, Units: map[models.Unit]int{}})
		}
		g := &out[i]
		// a SKU has exactly one unit, so per-unit distinct counts add up
		g.ProductCount += count
		g.Units[models.NormalizeUnit(unit)] += count
		if minPrice.Valid && (g.MinEffectivePrice == nil || minPrice.Float64 < *g.MinEffectivePrice) {
			v := minPrice.Float64
			g.MinEffectivePrice = &v
		}
	}
	if err := rows.Err(); err != nil {
		s.fail("catalog_groups", "rows", start, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.ok("catalog_groups", start, len(out))
	return out, nil
}

func (s *SQLPriceStore) Observations(ctx context.Context, f domrepo.ObservationFilter) ([]models.Observation, error) {
	start := time.Now()
	var b strings.Builder
	b.WriteString("SELECT" + observationColumns + `
        FROM price_history ph
        JOIN products p ON p.sku = ph.sku
        WHERE p.ingredient IS NOT NULL AND ph.scraped_at >= ? AND ph.scraped_at <= ?`)
	args := []any{f.From.UTC(), f.To.UTC()}
	if f.Ingredient != "" {
		b.WriteString(" AND LOWER(p.ingredient) = LOWER(?)")
		args = append(args, f.Ingredient)
	}
	if f.MinSavings != nil {
		b.WriteString(" AND ph.deal_savings_percentage > ?")
		args = append(args, *f.MinSavings)
	}
	b.WriteString(" ORDER BY ph.scraped_at ASC, p.brand ASC")

	out, err := s.queryObservations(ctx, b.String(), args...)
	if err != nil {
		s.fail("observations", "query", start, err, applogger.String("ingredient", f.Ingredient))
		return nil, fmt.Errorf("observations: %w", err)
	}
	s.ok("observations", start, len(out), applogger.String("ingredient", f.Ingredient))
	return out, nil
}

func (s *SQLPriceStore) LatestObservation(ctx context.Context, ingredient string, asOf time.Time) (*models.Observation, error) {
	start := time.Now()
	q := "SELECT" + observationColumns + `
        FROM price_history ph
        JOIN products p ON p.sku = ph.sku
        WHERE p.ingredient IS NOT NULL AND LOWER(p.ingredient) = LOWER(?) AND ph.scraped_at <= ?
        ORDER BY ph.scraped_at DESC
        LIMIT 1`
	out, err := s.queryObservations(ctx, q, ingredient, asOf.UTC())
	if err != nil {
		s.fail("latest_observation", "query", start, err, applogger.String("ingredient", ingredient))
		return nil, fmt.Errorf("latest observation: %w", err)
	}
	s.ok("latest_observation", start, len(out), applogger.String("ingredient", ingredient))
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (s *SQLPriceStore) LatestPerSKU(ctx context.Context, asOf time.Time) ([]models.Observation, error) {
	start := time.Now()
	q := "SELECT" + observationColumns + `
        FROM price_history ph
        JOIN (
            SELECT sku, MAX(scraped_at) AS latest_at
            FROM price_history
            WHERE scraped_at <= ?
            GROUP BY sku
        ) l ON l.sku = ph.sku AND l.latest_at = ph.scraped_at
        JOIN products p ON p.sku = ph.sku
        WHERE p.ingredient IS NOT NULL
        ORDER BY ph.sku ASC`
	out, err := s.queryObservations(ctx, q, asOf.UTC())
	if err != nil {
		s.fail("latest_per_sku", "query", start, err)
		return nil, fmt.Errorf("latest per sku: %w", err)
	}
	s.ok("latest_per_sku", start, len(out))
	return out, nil
}

func (s *SQLPriceStore) Health(ctx context.Context) error {
	ping := s.db.PingContext
	if s.ping != nil {
		ping = s.ping
	}
	if err := ping(ctx); err != nil {
		return fmt.Errorf("store health: %w", err)
	}
	return nil
}

func (s *SQLPriceStore) queryObservations(ctx context.Context, q string, args ...any) ([]models.Observation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Observation, 0, 256)
	for rows.Next() {
		var (
			o          models.Observation
			unit       string
			loyalty    sql.NullFloat64
			savings    sql.NullFloat64
			validUntil sql.NullTime
		)
		if err := rows.Scan(
			&o.SKU, &o.Ingredient, &o.Category, &o.Brand, &o.FullName,
			&o.PackageSize, &unit,
			&o.ScrapedAt, &o.Price, &loyalty, &savings, &validUntil,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Unit = models.NormalizeUnit(unit)
		o.ScrapedAt = o.ScrapedAt.UTC()
		if loyalty.Valid {
			v := loyalty.Float64
			o.LoyaltyPrice = &v
		}
		if savings.Valid {
			v := savings.Float64
			o.DealSavings = &v
		}
		if validUntil.Valid {
			v := validUntil.Time.UTC()
			o.DealValidTill = &v
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLPriceStore) ok(op string, start time.Time, n int, fields ...applogger.Field) {
	if s.m != nil {
		s.m.RecordQuery(op, time.Since(start).Seconds(), nil)
	}
	if s.l != nil {
		fields = append(fields,
			applogger.String("op", op),
			applogger.String("dialect", string(s.dialect)),
			applogger.Int("rows", n),
			applogger.Duration("duration_ms", time.Since(start)),
		)
		s.l.Debug("price store query ok", fields...)
	}
}

func (s *SQLPriceStore) fail(op, stage string, start time.Time, err error, fields ...applogger.Field) {
	if s.m != nil {
		s.m.RecordQuery(op, time.Since(start).Seconds(), err)
	}
	if s.l != nil {
		fields = append(fields,
			applogger.String("op", op),
			applogger.String("stage", stage),
			applogger.String("dialect", string(s.dialect)),
			applogger.Error(err),
		)
		s.l.Error("price store query error", fields...)
	}
}

var _ domrepo.PriceStore = (*SQLPriceStore)(nil)
