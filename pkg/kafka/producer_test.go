package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := encode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encode("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(b))

	b, err = encode(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(b))

	_, err = encode(make(chan int))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Gzip, parseCompression("gzip"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Snappy, parseCompression("unknown"))
}

func TestNewProducer(t *testing.T) {
	_, err := NewProducer()
	assert.EqualError(t, err, "brokers are required")

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithClientID("price-signal"), WithCompression("lz4"))
	require.NoError(t, err)
	assert.Equal(t, "lz4", p.comp)
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	require.NoError(t, p.Close())
}
