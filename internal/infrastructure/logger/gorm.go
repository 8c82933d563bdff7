package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// DefaultSlowQuery is used when SQLLogConfig.SlowThreshold is left zero
const DefaultSlowQuery = 200 * time.Millisecond

// SQLLogConfig controls which statements the GORM adapter reports
type SQLLogConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// LogNotFound reports gorm.ErrRecordNotFound as an error. Lookups by
	// referral code miss routinely, so it is off by default.
	LogNotFound bool
}

// SQLLogger adapts zap to gorm's logger.Interface
type SQLLogger struct {
	log *zap.Logger
	cfg SQLLogConfig
}

func NewSQLLogger(base *zap.Logger, cfg SQLLogConfig) *SQLLogger {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowQuery
	}
	return &SQLLogger{log: base.Named("gorm"), cfg: cfg}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.cfg.Level = level
	return &cp
}

func (l *SQLLogger) Info(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Info, msg, data)
}

func (l *SQLLogger) Warn(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Warn, msg, data)
}

func (l *SQLLogger) Error(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Error, msg, data)
}

func (l *SQLLogger) printf(level gormlogger.LogLevel, msg string, data []any) {
	if l.cfg.Level < level {
		return
	}
	s := l.log.Sugar()
	switch level {
	case gormlogger.Error:
		s.Errorf(msg, data...)
	case gormlogger.Warn:
		s.Warnf(msg, data...)
	default:
		s.Infof(msg, data...)
	}
}

// Trace reports failed and slow statements at Error and Warn. Every other
// statement is a debug entry, emitted only at gorm's Info level.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	lvl, msg := l.classify(elapsed, err)
	if msg == "" {
		return
	}
	ce := l.log.Check(lvl, msg)
	if ce == nil {
		return
	}

	query, rows := fc()
	fields := append(ContextFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", query),
		zap.String("caller", utils.FileWithLineNum()),
	)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

func (l *SQLLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string) {
	switch {
	case l.cfg.Level <= gormlogger.Silent:
		return 0, ""
	case err != nil:
		if l.cfg.Level < gormlogger.Error || (!l.cfg.LogNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
			return 0, ""
		}
		return zapcore.ErrorLevel, "SQL Error"
	case elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn:
		return zapcore.WarnLevel, "SLOW SQL >= " + l.cfg.SlowThreshold.String()
	case l.cfg.Level >= gormlogger.Info:
		return zapcore.DebugLevel, "SQL Query"
	}
	return 0, ""
}

// ParseSQLLogLevel maps the application log level onto gorm's levels
func ParseSQLLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
