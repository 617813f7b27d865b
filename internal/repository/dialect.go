package repository

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour of the backing store.
type Dialect string

const (
	DialectPostgres   Dialect = "postgres"
	DialectClickHouse Dialect = "clickhouse"
	DialectSQLite     Dialect = "sqlite"
)

// rebind rewrites '?' placeholders into the dialect's bind syntax.
// Queries in this package never contain '?' inside string literals.
func rebind(d Dialect, q string) string {
	if d != DialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
