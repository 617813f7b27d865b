package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryAndInitSchema(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.InitSchema(ctx))
	// idempotent
	require.NoError(t, c.InitSchema(ctx))
	require.NoError(t, c.Health(ctx))

	var n int
	require.NoError(t, c.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('products', 'price_history')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.InitSchema(context.Background()))

	_, err = c.DB().Exec(`INSERT INTO price_history (sku, scraped_at, price) VALUES ('NOPE', CURRENT_TIMESTAMP, 1.0)`)
	assert.Error(t, err)
}

func TestOpenFileUsesWAL(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "prices.db"))
	require.NoError(t, err)
	defer c.Close()

	var mode string
	require.NoError(t, c.DB().QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, (&Client{}).Close())
}
