package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })
	return logs
}

func TestFromContextCarriesAttachedFields(t *testing.T) {
	logs := observe(t)

	ctx := NewContext(context.Background(), zap.String("httpRequestID", "req-1"))
	ctx = NewContext(ctx, zap.String("actor", "alice@example.com"))
	FromContext(ctx).Info("approval recorded", zap.String("requestID", "r1"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["httpRequestID"])
	assert.Equal(t, "alice@example.com", fields["actor"])
	assert.Equal(t, "r1", fields["requestID"])
}

func TestFromContextSurvivesDetachedContext(t *testing.T) {
	logs := observe(t)

	parent, cancel := context.WithCancel(NewContext(context.Background(), zap.String("httpRequestID", "req-2")))
	cancel()
	FromContext(context.WithoutCancel(parent)).Warn("side effect failed")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-2", logs.All()[0].ContextMap()["httpRequestID"])
}

func TestNewContextDoesNotShareFields(t *testing.T) {
	logs := observe(t)

	base := NewContext(context.Background(), zap.String("httpRequestID", "req-3"))
	a := NewContext(base, zap.String("actor", "a@example.com"))
	_ = NewContext(base, zap.String("actor", "b@example.com"))
	FromContext(a).Info("a")
	FromContext(context.Background()).Info("bare")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "a@example.com", logs.All()[0].ContextMap()["actor"])
	assert.Empty(t, logs.All()[1].ContextMap())
}
