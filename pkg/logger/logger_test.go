package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"taskforge-controlplane/pkg/config"
)

func TestNewReplacesGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	cfg := &config.Config{AppEnv: "production", AppName: "taskforge"}
	log, err := New(ConfigParams{Cfg: cfg})
	require.NoError(t, err)
	require.Same(t, log, zap.L())
}

func TestFromContextWithoutSpan(t *testing.T) {
	require.Same(t, zap.L(), FromContext(context.Background()))
}

func TestFromContextWithSpan(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	require.NotSame(t, zap.L(), FromContext(ctx))
}

func TestTraceFields(t *testing.T) {
	require.Empty(t, TraceFields(context.Background()))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	fields := TraceFields(trace.ContextWithSpanContext(context.Background(), sc))
	require.Len(t, fields, 2)
	require.Equal(t, "trace_id", fields[0].Key)
}
