package postgres

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN_FromFields(t *testing.T) {
	dsn, err := buildDSN(ClientConfig{
		Host:           "db",
		Port:           5432,
		Database:       "grocery",
		User:           "api",
		Password:       "secret",
		SSLMode:        "disable",
		ConnectTimeout: 3 * time.Second,
	})
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/grocery", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "3", u.Query().Get("connect_timeout"))
	assert.Equal(t, "on", u.Query().Get("default_transaction_read_only"))
}

func TestBuildDSN_URLKeepsExplicitSSLMode(t *testing.T) {
	dsn, err := buildDSN(ClientConfig{
		URL:              "postgres://u:p@host:6543/db?sslmode=require",
		SSLMode:          "disable",
		StatementTimeout: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "host:6543", u.Host)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	assert.Equal(t, "1500", u.Query().Get("statement_timeout"))
}

func TestNewClient_RequiresTarget(t *testing.T) {
	_, err := NewClient()
	assert.EqualError(t, err, "url or host is required")
}
