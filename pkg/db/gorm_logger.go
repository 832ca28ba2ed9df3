package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eliteacai/pdv-backend/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// gormLogger routes gorm query traces into the service logger. Only failed and
// slow statements are emitted; bound values are never logged.
type gormLogger struct {
	logg          *logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	return &gormLogger{logg: logg, level: gormlogger.Warn, slowThreshold: slow}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Info {
		return
	}
	l.logg.Zerolog(ctx).Info().Str("component", "gorm").Interface("data", data).Msg(msg)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Warn {
		return
	}
	l.logg.Zerolog(ctx).Warn().Str("component", "gorm").Interface("data", data).Msg(msg)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Error {
		return
	}
	l.logg.Zerolog(ctx).Error().Str("component", "gorm").Interface("data", data).Msg(msg)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.emit(ctx, zerolog.ErrorLevel, fc, elapsed, err)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.emit(ctx, zerolog.WarnLevel, fc, elapsed, nil)
	case l.level >= gormlogger.Info:
		l.emit(ctx, zerolog.DebugLevel, fc, elapsed, nil)
	}
}

func (l *gormLogger) emit(ctx context.Context, level zerolog.Level, fc func() (string, int64), elapsed time.Duration, err error) {
	sql, rows := fc()
	event := l.logg.Zerolog(ctx).WithLevel(level).
		Str("component", "gorm").
		Str("sql", strings.TrimSpace(sql)).
		Str("operation", operationFromSQL(sql)).
		Int64("duration_ms", elapsed.Milliseconds())
	if rows >= 0 {
		event = event.Int64("rows_affected", rows)
	}
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("gorm.query")
}

func operationFromSQL(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		token = strings.Trim(token, "();")
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return token
		}
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*gormLogger)(nil)
