package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestZapGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapGormLogger(zap.New(core), gormlogger.Warn, false)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	// fast and successful: nothing below Info is recorded
	l.Trace(context.Background(), time.Now(), sql, nil)
	require.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	require.Zero(t, logs.Len())

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: trace.TraceID{9}, SpanID: trace.SpanID{9}})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.Trace(ctx, time.Now(), sql, errors.New("no such table"))
	require.Equal(t, 1, logs.FilterMessage("gorm.query").FilterField(zap.String("trace_id", sc.TraceID().String())).Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm.slow_query").Len())

	require.Zero(t, logs.FilterMessage("gorm.query").FilterField(zap.String("sql", "SELECT 2")).Len())
}

func TestZapGormLoggerShowSQL(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapGormLogger(zap.New(core), gormlogger.Info, true)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm.query").Len())

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
}
