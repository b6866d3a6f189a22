package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "tubevault-test"})

	ctx := l.WithContext(context.Background())
	ctx = SetVideoID(ctx, "abc123")
	ctx = SetOperation(ctx, "add_video")

	With(Fields{FieldCount: 2}).WithStatus("ok").Info(ctx, "added %s", "abc123")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "added abc123", line["message"])
	assert.Equal(t, "tubevault-test", line["service"])
	assert.Equal(t, "abc123", line[FieldVideoID])
	assert.Equal(t, "add_video", line[FieldOperation])
	assert.Equal(t, float64(2), line[FieldCount])
	assert.Equal(t, "ok", line[FieldStatus])
	assert.Contains(t, line, "timestamp")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Equal(t, "", GetVideoID(context.Background()))
}

func TestGetRequestID(t *testing.T) {
	ctx := SetRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestNewFromEnv_ExplicitOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromEnv(&EnvConfig{Level: "warn", Format: "text", Output: &buf, ServiceName: "svc"})

	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "service=svc")
}
