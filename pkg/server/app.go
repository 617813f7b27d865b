package server

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"PriceSignal/internal/service/ratelimit"
	"PriceSignal/internal/usecase"
	"PriceSignal/pkg/config"
	xhttp "PriceSignal/pkg/http"
	applogger "PriceSignal/pkg/logger"
)

const limiterSweepEvery = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	alerts     *usecase.AlertPublisher
	limiter    *ratelimit.Limiter
}

// New creates a new App instance. alerts and limiter may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	alerts *usecase.AlertPublisher,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		alerts:     alerts,
		limiter:    limiter,
	}
}

// HTTPServer exposes the server, mainly for tests.
func (a *App) HTTPServer() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.alerts != nil {
		go a.alerts.Run(bg)
		a.log.Info("alert publisher started",
			applogger.String("topic", a.cfg.Alerts.Topic),
			applogger.Duration("interval_ms", a.cfg.Alerts.Interval),
		)
	}
	if a.limiter != nil {
		go a.sweepLimiter(bg)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("service started",
		applogger.String("backend", a.cfg.Store.Backend),
		applogger.Bool("cache", a.cfg.Cache.Enabled),
		applogger.Bool("alerts", a.alerts != nil),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(5 * limiterSweepEvery); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops the HTTP server. Clients are closed by the DI cleanup.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
