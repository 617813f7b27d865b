package cache

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds a response cache key. params are used verbatim, exactly as they
// reach the store, and asOf is expected to be already bucketed by the caller,
// so equal keys always describe equal results.
func Key(endpoint string, asOf time.Time, params ...string) string {
	var b strings.Builder
	b.WriteString("ps:")
	b.WriteString(endpoint)
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(p)
	}
	b.WriteByte('@')
	b.WriteString(strconv.FormatInt(asOf.UTC().Unix(), 10))
	return b.String()
}

// Bucket truncates t to a multiple of ttl. A non-positive ttl leaves t unchanged.
func Bucket(t time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return t
	}
	return t.UTC().Truncate(ttl)
}
