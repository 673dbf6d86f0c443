package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := New(zap.New(core))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.Info(ctx, "hello", zap.String("case_id", "case-001"))
	logger.Warn(context.Background(), "no id")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()[requestIDField])
	assert.Equal(t, "case-001", entries[0].ContextMap()["case_id"])

	_, has := entries[1].ContextMap()[requestIDField]
	assert.False(t, has)
}

func TestRequestIDFromContext(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = RequestIDFromContext(ContextWithRequestID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := RequestIDFromContext(ContextWithRequestID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
