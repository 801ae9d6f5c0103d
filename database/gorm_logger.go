package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger routes GORM log output to slog.
type gormLogger struct {
	logger               *slog.Logger
	logLevel             logger.LogLevel
	ignoreRecordNotFound bool
	slowThreshold        time.Duration
}

// NewGormLogger creates a GORM logger backed by l.
func NewGormLogger(l *slog.Logger) logger.Interface {
	if l == nil {
		l = slog.Default()
	}
	return &gormLogger{
		logger:               l,
		logLevel:             logger.Warn,
		ignoreRecordNotFound: true,
		slowThreshold:        SlowThreshold,
	}
}

// LogMode sets the log level
func (gl *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *gl
	newLogger.logLevel = level
	return &newLogger
}

func (gl *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if gl.logLevel >= logger.Info {
		gl.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (gl *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if gl.logLevel >= logger.Warn {
		gl.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (gl *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if gl.logLevel >= logger.Error {
		gl.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs SQL statements issued through GORM with execution time.
func (gl *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if gl.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []slog.Attr{
		slog.Float64("duration_ms", float64(elapsed.Nanoseconds())/1e6),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}

	switch {
	case err != nil && gl.logLevel >= logger.Error && (!gl.ignoreRecordNotFound || !errors.Is(err, gorm.ErrRecordNotFound)):
		attrs = append(attrs, slog.String("error", err.Error()))
		gl.logger.LogAttrs(ctx, slog.LevelError, "database query failed", attrs...)
	case elapsed > gl.slowThreshold && gl.logLevel >= logger.Warn:
		gl.logger.LogAttrs(ctx, slog.LevelWarn, "slow SQL query detected", attrs...)
	case gl.logLevel >= logger.Info:
		gl.logger.LogAttrs(ctx, slog.LevelDebug, "SQL query executed", attrs...)
	}
}
