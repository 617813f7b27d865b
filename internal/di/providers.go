package di

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PriceSignal/internal/domain/repository"
	"PriceSignal/internal/handler/api"
	internalrepo "PriceSignal/internal/repository"
	"PriceSignal/internal/service/cache"
	svcmetrics "PriceSignal/internal/service/metrics"
	"PriceSignal/internal/service/ratelimit"
	"PriceSignal/internal/usecase"
	pkgch "PriceSignal/pkg/clickhouse"
	"PriceSignal/pkg/config"
	xhttp "PriceSignal/pkg/http"
	pkgkafka "PriceSignal/pkg/kafka"
	applogger "PriceSignal/pkg/logger"
	"PriceSignal/pkg/metrics"
	pkgpg "PriceSignal/pkg/postgres"
	"PriceSignal/pkg/server"
	pkgsqlite "PriceSignal/pkg/sqlite"

	"github.com/labstack/echo/v4"
)

// StoreConn is an open database handle together with its SQL dialect.
type StoreConn struct {
	DB      *sql.DB
	Dialect internalrepo.Dialect
	Health  func(ctx context.Context) error
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", api.ServiceName), applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if cfg.Metrics.Enabled {
		svcmetrics.Register()
	}
	return metrics.New()
}

// ProvideStoreConn opens the configured backend.
func ProvideStoreConn(cfg *config.Config, l *applogger.Logger) (*StoreConn, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		client, err := pkgpg.NewClient(
			pkgpg.WithURL(cfg.Postgres.URL),
			pkgpg.WithHost(cfg.Postgres.Host, cfg.Postgres.Port),
			pkgpg.WithDatabase(cfg.Postgres.Database),
			pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
			pkgpg.WithSSLMode(cfg.Postgres.SSLMode),
			pkgpg.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
			pkgpg.WithStatementTimeout(cfg.Postgres.StatementTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres client: %w", err)
		}
		l.Info("store connected", applogger.String("backend", cfg.Store.Backend))
		return &StoreConn{DB: client.DB(), Dialect: internalrepo.DialectPostgres, Health: client.Health}, closer(l, "postgres", client.Close), nil

	case config.BackendClickHouse:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithReadOnly(true),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		l.Info("store connected", applogger.String("backend", cfg.Store.Backend))
		return &StoreConn{DB: client.DB(), Dialect: internalrepo.DialectClickHouse, Health: client.Health}, closer(l, "clickhouse", client.Close), nil

	case config.BackendSQLite:
		client, err := pkgsqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite client: %w", err)
		}
		if cfg.SQLite.InitSchema {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.InitSchema(ctx); err != nil {
				_ = client.Close()
				return nil, nil, fmt.Errorf("sqlite schema: %w", err)
			}
		}
		l.Info("store connected", applogger.String("backend", cfg.Store.Backend), applogger.String("path", cfg.SQLite.Path))
		return &StoreConn{DB: client.DB(), Dialect: internalrepo.DialectSQLite, Health: client.Health}, closer(l, "sqlite", client.Close), nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// ProvidePriceStore builds the SQL price store over the open connection.
func ProvidePriceStore(conn *StoreConn, cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.PriceStore {
	s := internalrepo.NewSQLPriceStore(conn.DB, conn.Dialect)
	s.SetLogger(l)
	s.SetMetrics(m)
	s.SetQueryTimeout(cfg.Store.QueryTimeout)
	if conn.Health != nil {
		s.SetHealthCheck(conn.Health)
	}
	return s
}

// ProvidePriceSignals creates the analytics use case.
func ProvidePriceSignals(store repository.PriceStore, l *applogger.Logger, m repository.Metrics) *usecase.PriceSignals {
	return usecase.NewPriceSignals(store, l, m)
}

// ProvideResponseCache returns nil when caching is disabled.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Cache.Driver == config.CacheMemory {
		return cache.NewTTLCache(cfg.Cache.MaxEntries), func() {}, nil
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:      cfg.Cache.Redis.Addr,
		Password:  cfg.Cache.Redis.Password,
		DB:        cfg.Cache.Redis.DB,
		KeyPrefix: cfg.Cache.Redis.KeyPrefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("response cache enabled", applogger.String("driver", cfg.Cache.Driver), applogger.Duration("ttl_ms", cfg.Cache.TTL))
	return rc, closer(l, "redis", rc.Close), nil
}

// ProvideHTTPHandler registers the analytics and health routes.
func ProvideHTTPHandler(cfg *config.Config, l *applogger.Logger, signals *usecase.PriceSignals, c cache.BytesCache) xhttp.Handler {
	prices := api.NewPricesEchoHandler(l, signals).WithClock(signals.Now)
	if c != nil {
		prices.WithCache(c, cfg.Cache.TTL)
	}
	return xhttp.Handlers{prices, api.NewHealthEchoHandler(l, signals)}
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithLogger(l),
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(len(cfg.Server.CORSOrigins) > 0, cfg.Server.CORSOrigins...),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.SlowThreshold),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(ratelimit.Middleware(limiter, skipRateLimit)))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideKafkaProducer returns nil when alerts are disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Alerts.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.AutoCreateTopic),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("alert producer ready", applogger.Strings("brokers", cfg.Kafka.Brokers), applogger.String("topic", cfg.Alerts.Topic))
	return producer, closer(l, "kafka producer", producer.Close), nil
}

// ProvideAlertPublisher returns nil when alerts are disabled.
func ProvideAlertPublisher(cfg *config.Config, signals *usecase.PriceSignals, producer *pkgkafka.Producer, l *applogger.Logger, m repository.Metrics) *usecase.AlertPublisher {
	if producer == nil {
		return nil
	}
	return usecase.NewAlertPublisher(signals, producer, cfg.Alerts.Topic, cfg.Alerts.Interval, l, m)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, alerts *usecase.AlertPublisher, limiter *ratelimit.Limiter) *server.App {
	return server.New(cfg, l, srv, alerts, limiter)
}

// health checks and metric scrapes are never throttled
func skipRateLimit(c echo.Context) bool {
	switch c.Path() {
	case "/health", "/metrics":
		return true
	}
	return false
}

func closer(l *applogger.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			l.Warn(name+" close error", applogger.Error(err))
		}
	}
}
