package api

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	models "PriceSignal/internal/domain/models"
	domsvc "PriceSignal/internal/domain/service"
	"PriceSignal/internal/service/cache"
	svcmetrics "PriceSignal/internal/service/metrics"
	xhttp "PriceSignal/pkg/http"
	httpmw "PriceSignal/pkg/http/middleware"
	xlogger "PriceSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	EndpointIngredients  = "ingredients"
	EndpointPriceHistory = "price_history"
	EndpointDealPattern  = "deal_pattern"
	EndpointBuyNow       = "buy_now"
	EndpointWait         = "wait"
	EndpointExpiring     = "expiring_deals"
)

// PricesEchoHandler serves the read-only analytics endpoints.
type PricesEchoHandler struct {
	logger   *xlogger.Logger
	engine   domsvc.PriceAnalytics
	cache    cache.BytesCache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewPricesEchoHandler(logger *xlogger.Logger, engine domsvc.PriceAnalytics) *PricesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PricesEchoHandler{
		logger: logger,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// WithCache memoizes serialized responses for ttl. Implicit as-of times are
// bucketed to ttl so a cached body is exactly what a fresh computation returns.
func (h *PricesEchoHandler) WithCache(c cache.BytesCache, ttl time.Duration) *PricesEchoHandler {
	if c != nil && ttl > 0 {
		h.cache, h.cacheTTL = c, ttl
	}
	return h
}

// WithClock overrides the clock used when a request carries no as_of.
func (h *PricesEchoHandler) WithClock(now func() time.Time) *PricesEchoHandler {
	h.now = now
	return h
}

func (h *PricesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/ingredients", h.Ingredients)
	g.GET("/ingredient-price-history/:ingredient/:days", h.PriceHistory)
	g.GET("/deal-pattern/:ingredient", h.DealPattern)
	g.GET("/buy-now-signals", h.BuyNow)
	g.GET("/wait-signals", h.Wait)
	g.GET("/expiring-deals", h.Expiring)
}

func (h *PricesEchoHandler) Ingredients(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.respond(c, EndpointIngredients, req.AsOf, nil, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.Ingredients(ctx, asOf)
	})
}

func (h *PricesEchoHandler) PriceHistory(c echo.Context) error {
	req := &models.PriceHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params := []string{req.Ingredient, strconv.Itoa(req.Days)}
	return h.respond(c, EndpointPriceHistory, req.AsOf, params, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.PriceHistory(ctx, req.Ingredient, req.Days, asOf)
	})
}

func (h *PricesEchoHandler) DealPattern(c echo.Context) error {
	req := &models.DealPatternRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.respond(c, EndpointDealPattern, req.AsOf, []string{req.Ingredient}, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.DealPattern(ctx, req.Ingredient, asOf), nil
	})
}

func (h *PricesEchoHandler) BuyNow(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.respond(c, EndpointBuyNow, req.AsOf, nil, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.BuyNowSignals(ctx, asOf)
	})
}

func (h *PricesEchoHandler) Wait(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.respond(c, EndpointWait, req.AsOf, nil, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.WaitSignals(ctx, asOf)
	})
}

func (h *PricesEchoHandler) Expiring(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.respond(c, EndpointExpiring, req.AsOf, nil, func(ctx context.Context, asOf time.Time) (any, error) {
		return h.engine.ExpiringDeals(ctx, asOf)
	})
}

type computeFunc func(ctx context.Context, asOf time.Time) (any, error)

func (h *PricesEchoHandler) respond(c echo.Context, endpoint, rawAsOf string, params []string, compute computeFunc) error {
	start := time.Now()
	ctx := c.Request().Context()

	asOf, verr := h.resolveAsOf(rawAsOf)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var key string
	if h.cache != nil {
		key = cache.Key(endpoint, asOf, params...)
		b, ok, err := h.cache.GetBytes(ctx, key)
		if err != nil {
			h.logger.Warn("response cache read failed", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		}
		svcmetrics.CacheResult(endpoint, ok)
		if ok {
			c.Response().Header().Set("X-Cache", "HIT")
			svcmetrics.Observe(endpoint, start, nil)
			return xhttp.BlobResponse(c, b)
		}
	}

	res, err := compute(ctx, asOf)
	if err == nil {
		var body []byte
		body, err = json.Marshal(res)
		if err == nil {
			svcmetrics.Observe(endpoint, start, nil)
			if h.cache != nil {
				if cerr := h.cache.SetBytes(ctx, key, body, h.cacheTTL); cerr != nil {
					h.logger.Warn("response cache write failed", xlogger.String("endpoint", endpoint), xlogger.Error(cerr))
				}
				c.Response().Header().Set("X-Cache", "MISS")
			}
			return xhttp.BlobResponse(c, body)
		}
	}

	svcmetrics.Observe(endpoint, start, err)
	h.logger.Error(endpoint+" usecase error",
		xlogger.String("request_id", httpmw.RequestIDFrom(c)),
		xlogger.Any("params", params),
		xlogger.Error(err),
	)
	return xhttp.InternalServerErrorResponse(c, err)
}

// resolveAsOf parses an explicit as_of or falls back to the clock. With a cache
// configured the implicit time is bucketed to the cache TTL.
func (h *PricesEchoHandler) resolveAsOf(raw string) (time.Time, []xhttp.ValidationError) {
	if raw != "" {
		t, ok := xhttp.ParseTime(raw)
		if !ok {
			return time.Time{}, []xhttp.ValidationError{{
				Code:    "ERR_TIME",
				Field:   "as_of",
				Message: "as_of must be RFC3339, YYYY-MM-DD or unix seconds",
			}}
		}
		return t.UTC(), nil
	}
	now := h.now()
	if h.cache != nil {
		now = cache.Bucket(now, h.cacheTTL)
	}
	return now, nil
}
