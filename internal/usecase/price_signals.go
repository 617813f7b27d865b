package usecase

import (
	"context"
	"fmt"
	"time"

	"PriceSignal/internal/domain/models"
	domrepo "PriceSignal/internal/domain/repository"
	domsvc "PriceSignal/internal/domain/service"
	"PriceSignal/internal/services/analytics"
	applogger "PriceSignal/pkg/logger"
	"PriceSignal/pkg/util"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// SystemClock is UTC wall time truncated to whole seconds.
func SystemClock() time.Time { return time.Now().UTC().Truncate(time.Second) }

// PriceSignals reads from the price store and runs the pure analytics over the rows.
type PriceSignals struct {
	store domrepo.PriceStore
	l     *applogger.Logger
	m     domrepo.Metrics
	now   Clock
}

func NewPriceSignals(store domrepo.PriceStore, l *applogger.Logger, m domrepo.Metrics) *PriceSignals {
	if l == nil {
		l = applogger.Nop()
	}
	return &PriceSignals{store: store, l: l, m: m, now: SystemClock}
}

// SetClock overrides the clock used when callers pass a zero asOf.
func (p *PriceSignals) SetClock(c Clock) { p.now = c }

// Now reports the service's current as-of time.
func (p *PriceSignals) Now() time.Time { return p.now() }

func (p *PriceSignals) resolve(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return p.now()
	}
	return asOf.UTC()
}

func (p *PriceSignals) Ingredients(ctx context.Context, asOf time.Time) ([]models.IngredientSummary, error) {
	asOf = p.resolve(asOf)
	groups, err := p.store.CatalogGroups(ctx, asOf)
	if err != nil {
		p.recordError("ingredients")
		return nil, err
	}
	recent, err := p.store.Observations(ctx, domrepo.ObservationFilter{
		From: util.DaysAgo(asOf, analytics.TrendWindowDays),
		To:   asOf,
	})
	if err != nil {
		p.recordError("ingredients")
		return nil, err
	}
	return analytics.Summaries(groups, recent, asOf), nil
}

func (p *PriceSignals) PriceHistory(ctx context.Context, ingredient string, days int, asOf time.Time) (*models.PriceHistory, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must be non-negative, got %d", days)
	}
	asOf = p.resolve(asOf)

	// the window is anchored to the start of the as-of day
	var window []models.Observation
	if days > 0 {
		var err error
		window, err = p.store.Observations(ctx, domrepo.ObservationFilter{
			Ingredient: ingredient,
			From:       util.DaysAgo(util.StartOfDay(asOf), days),
			To:         asOf,
		})
		if err != nil {
			p.recordError("price_history")
			return nil, err
		}
	}
	current, err := p.store.LatestObservation(ctx, ingredient, asOf)
	if err != nil {
		p.recordError("price_history")
		return nil, err
	}

	points, stats := analytics.BuildHistory(window, current)
	return &models.PriceHistory{
		PriceHistory: points,
		Stats:        stats,
		DealPattern:  p.DealPattern(ctx, ingredient, asOf),
	}, nil
}

// DealPattern never fails; store errors degrade to the UNKNOWN pattern.
func (p *PriceSignals) DealPattern(ctx context.Context, ingredient string, asOf time.Time) models.DealPattern {
	asOf = p.resolve(asOf)
	minSavings := analytics.PatternMinSavings
	deals, err := p.store.Observations(ctx, domrepo.ObservationFilter{
		Ingredient: ingredient,
		From:       util.DaysAgo(asOf, analytics.PatternWindowDays),
		To:         asOf,
		MinSavings: &minSavings,
	})
	if err != nil {
		p.recordError("deal_pattern")
		p.l.Warn("deal pattern unavailable",
			applogger.String("ingredient", ingredient),
			applogger.Error(err),
		)
		return analytics.UnknownPattern()
	}
	return analytics.ClassifyDeals(deals, asOf)
}

func (p *PriceSignals) BuyNowSignals(ctx context.Context, asOf time.Time) ([]models.BuyNowSignal, error) {
	asOf = p.resolve(asOf)
	obs, err := p.window(ctx, asOf, analytics.BuyWindowDays)
	if err != nil {
		p.recordError("buy_now")
		return nil, err
	}
	return analytics.BuyNow(obs, asOf), nil
}

func (p *PriceSignals) WaitSignals(ctx context.Context, asOf time.Time) ([]models.WaitSignal, error) {
	asOf = p.resolve(asOf)
	obs, err := p.window(ctx, asOf, analytics.BuyWindowDays)
	if err != nil {
		p.recordError("wait")
		return nil, err
	}
	return analytics.Wait(obs, asOf), nil
}

func (p *PriceSignals) ExpiringDeals(ctx context.Context, asOf time.Time) ([]models.ExpiringDeal, error) {
	asOf = p.resolve(asOf)
	latest, err := p.store.LatestPerSKU(ctx, asOf)
	if err != nil {
		p.recordError("expiring_deals")
		return nil, err
	}
	return analytics.Expiring(latest, asOf), nil
}

func (p *PriceSignals) Health(ctx context.Context) error {
	return p.store.Health(ctx)
}

func (p *PriceSignals) window(ctx context.Context, asOf time.Time, days int) ([]models.Observation, error) {
	return p.store.Observations(ctx, domrepo.ObservationFilter{
		From: util.DaysAgo(asOf, days),
		To:   asOf,
	})
}

func (p *PriceSignals) recordError(kind string) {
	if p.m != nil {
		p.m.RecordError(kind)
	}
}

var _ domsvc.PriceAnalytics = (*PriceSignals)(nil)
