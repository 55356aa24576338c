package db

import (
	"context"
	"errors"
	"time"

	"taskforge-controlplane/pkg/logger"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const defaultSlowThreshold = 200 * time.Millisecond

// ZapGormLogger implements gorm.io/gorm/logger.Interface on top of zap.
type ZapGormLogger struct {
	Zap           *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	ShowSQL       bool
}

func NewZapGormLogger(z *zap.Logger, logLevel gormlogger.LogLevel, showSQL bool) *ZapGormLogger {
	return &ZapGormLogger{
		Zap:           z.WithOptions(zap.AddCallerSkip(3)),
		LogLevel:      logLevel,
		ShowSQL:       showSQL,
		SlowThreshold: defaultSlowThreshold,
	}
}

func (l *ZapGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *ZapGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.Zap.Sugar().Infof(msg, data...)
	}
}

func (l *ZapGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.Zap.Sugar().Warnf(msg, data...)
	}
}

func (l *ZapGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.Zap.Sugar().Errorf(msg, data...)
	}
}

// Trace logs failed statements as errors and slow ones as warnings. Every
// other statement is logged at debug level only when ShowSQL is set.
func (l *ZapGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.SlowThreshold != 0 && elapsed > l.SlowThreshold
	if !failed && !slow && !(l.ShowSQL && l.LogLevel == gormlogger.Info) {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("file", utils.FileWithLineNum()),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
	}

	log := l.withTrace(ctx)
	switch {
	case failed:
		log.Error("gorm.query", append(fields, zap.Error(err))...)
	case slow:
		log.Warn("gorm.slow_query", append(fields, zap.Duration("threshold", l.SlowThreshold))...)
	default:
		log.Debug("gorm.query", fields...)
	}
}

func (l *ZapGormLogger) withTrace(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.Zap
	}
	if fields := logger.TraceFields(ctx); len(fields) > 0 {
		return l.Zap.With(fields...)
	}
	return l.Zap
}
