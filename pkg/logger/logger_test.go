package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel).With(String("service", "price-signal"))

	l.Info("query done",
		String("op", "observations"),
		Int("rows", 3),
		Float64("ratio", 0.5),
		Duration("duration_ms", 1500*time.Millisecond),
		Bool("cached", true),
		Error(errors.New("boom")),
	)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "query done", got["message"])
	assert.Equal(t, "price-signal", got["service"])
	assert.Equal(t, "observations", got["op"])
	assert.Equal(t, 3.0, got["rows"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, 1500.0, got["duration_ms"])
	assert.Equal(t, true, got["cached"])
	assert.Equal(t, "boom", got["error"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}
