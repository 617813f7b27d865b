package http

import (
	"time"

	xutil "PriceSignal/pkg/util"
)

// ParseTime tries RFC3339, RFC3339Nano, date-only and unix seconds.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
