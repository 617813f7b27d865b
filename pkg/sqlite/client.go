// Package sqlite opens an embedded SQLite database through modernc.org/sqlite.
// It backs local runs and repository tests with the same schema as the
// production stores.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Schema is the products/price_history layout the price store reads.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
        sku          TEXT PRIMARY KEY,
        ingredient   TEXT,
        category     TEXT,
        brand        TEXT,
        full_name    TEXT,
        package_size REAL,
        unit         TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS price_history (
        sku                     TEXT NOT NULL REFERENCES products(sku),
        scraped_at              TIMESTAMP NOT NULL,
        price                   REAL NOT NULL,
        loyalty_price           REAL,
        deal_savings_percentage REAL,
        deal_valid_until        TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_sku_scraped ON price_history (sku, scraped_at)`,
}

// Client wraps a single-connection SQLite handle.
type Client struct {
	db *sql.DB
}

// Open opens path (":memory:" for an ephemeral database) and applies pragmas.
func Open(path string) (*Client, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// an in-memory database lives on a single connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &Client{db: db}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB { return c.db }

// InitSchema creates the tables when missing.
func (c *Client) InitSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error { return c.db.PingContext(ctx) }

// Close closes the database.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
