package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled" default:"true"`
		SlowThreshold time.Duration `yaml:"slow_threshold" default:"1s"`
	} `yaml:"metrics"`
	Store struct {
		Backend      string        `yaml:"backend" default:"postgres"`
		QueryTimeout time.Duration `yaml:"query_timeout" default:"15s"`
	} `yaml:"store"`
	Postgres struct {
		URL              string        `yaml:"url"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"5432"`
		Database         string        `yaml:"database" default:"grocery"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		SSLMode          string        `yaml:"sslmode" default:"disable"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		StatementTimeout time.Duration `yaml:"statement_timeout" default:"15s"`
	} `yaml:"postgres"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path       string `yaml:"path" default:":memory:"`
		InitSchema bool   `yaml:"init_schema" default:"true"`
	} `yaml:"sqlite"`
	Cache struct {
		Enabled    bool          `yaml:"enabled"`
		Driver     string        `yaml:"driver" default:"memory"`
		TTL        time.Duration `yaml:"ttl" default:"60s"`
		MaxEntries int           `yaml:"max_entries" default:"1024"`
		Redis      struct {
			Addr      string `yaml:"addr" default:"localhost:6379"`
			Password  string `yaml:"password"`
			DB        int    `yaml:"db"`
			KeyPrefix string `yaml:"key_prefix" default:"pricesignal:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps" default:"10"`
		Burst   int     `yaml:"burst" default:"20"`
	} `yaml:"rate_limit"`
	Alerts struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval" default:"15m"`
		Topic    string        `yaml:"topic" default:"price-alerts"`
	} `yaml:"alerts"`
	Kafka struct {
		Brokers         []string      `yaml:"brokers"`
		ClientID        string        `yaml:"client_id" default:"price-signal-api"`
		RequiredAcks    int           `yaml:"required_acks" default:"-1"`
		Compression     string        `yaml:"compression" default:"snappy"`
		MaxAttempts     int           `yaml:"max_attempts" default:"3"`
		BatchSize       int           `yaml:"batch_size" default:"100"`
		BatchBytes      int           `yaml:"batch_bytes" default:"1048576"`
		BatchTimeout    time.Duration `yaml:"batch_timeout" default:"50ms"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		AutoCreateTopic bool          `yaml:"auto_create_topic"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file, fills defaults and validates.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, applies environment overrides, then validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path == "" {
		return &c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("ENVIRONMENT", &c.Environment)
	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_BACKEND", &c.Store.Backend)
	str("DATABASE_URL", &c.Postgres.URL)
	str("POSTGRES_HOST", &c.Postgres.Host)
	str("POSTGRES_DB", &c.Postgres.Database)
	str("POSTGRES_USER", &c.Postgres.User)
	str("POSTGRES_PASSWORD", &c.Postgres.Password)
	str("CLICKHOUSE_HOST", &c.ClickHouse.Host)
	str("CLICKHOUSE_DB", &c.ClickHouse.Database)
	str("CLICKHOUSE_USER", &c.ClickHouse.User)
	str("CLICKHOUSE_PASSWORD", &c.ClickHouse.Password)
	str("SQLITE_PATH", &c.SQLite.Path)
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Driver = CacheRedis
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	for key, dst := range map[string]*int{
		"PORT":            &c.Server.Port,
		"POSTGRES_PORT":   &c.Postgres.Port,
		"CLICKHOUSE_PORT": &c.ClickHouse.Port,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Postgres.URL == "" && c.Postgres.Host == "" {
			return fmt.Errorf("postgres.url or postgres.host is required")
		}
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required")
		}
	default:
		return fmt.Errorf("store.backend must be 'postgres', 'clickhouse' or 'sqlite', got '%s'", c.Store.Backend)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive")
		}
		switch c.Cache.Driver {
		case CacheMemory:
		case CacheRedis:
			if c.Cache.Redis.Addr == "" {
				return fmt.Errorf("cache.redis.addr is required")
			}
		default:
			return fmt.Errorf("cache.driver must be 'memory' or 'redis', got '%s'", c.Cache.Driver)
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}
	if c.Alerts.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when alerts are enabled")
		}
		if c.Alerts.Topic == "" {
			return fmt.Errorf("alerts.topic is required")
		}
	}
	return nil
}
