package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInfoCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := newTestLogger(&buf)

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithUserID(ctx, "10")
	ctx = logg.WithOrderID(ctx, 42)
	logg.Info(ctx, "order.approved")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "10", entry["user_id"])
	assert.Equal(t, float64(42), entry["order_id"])
	assert.Equal(t, "order.approved", entry["message"])
	assert.Equal(t, "test", entry["service"])
}

func TestErrorIncludesErrAndStack(t *testing.T) {
	var buf bytes.Buffer
	logg := newTestLogger(&buf)

	logg.Error(context.Background(), "audit.write_failed", errors.New("disk full"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "disk full", entry["error"])
	assert.NotEmpty(t, entry["stack"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestContextWithoutEntryFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logg := newTestLogger(&buf)

	logg.Info(context.Background(), "plain")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "plain", entry["message"])
}
