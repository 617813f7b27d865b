package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWith(reg)

	r.RecordQuery("observations", 0.01, nil)
	r.RecordQuery("observations", 0.02, errors.New("boom"))
	r.RecordError("store")
	r.RecordAlertsPublished("buy_now", 3)
	r.RecordAlertsPublished("buy_now", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.queryErrors.WithLabelValues("observations")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("store")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.alertsPublished.WithLabelValues("buy_now")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.queryLatency))
}
