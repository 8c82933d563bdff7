package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/englishbooster/affiliate/internal/infrastructure/config"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the PostgreSQL pool shared by every repository
type Database struct {
	DB   *gorm.DB
	pool *sql.DB
}

// Options tune the connection beyond the DSN
type Options struct {
	Logger        *zap.Logger
	LogLevel      string
	SlowThreshold time.Duration
	// TraceEnabled turns every query into a span
	TraceEnabled bool
}

func (o Options) gormConfig() *gorm.Config {
	cfg := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	if o.Logger != nil {
		cfg.Logger = logger.NewSQLLogger(o.Logger, logger.SQLLogConfig{
			Level:         logger.ParseSQLLogLevel(o.LogLevel),
			SlowThreshold: o.SlowThreshold,
		})
	}
	return cfg
}

// NewDatabase opens the pool, sizes it from cfg and pings once
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts.TraceEnabled {
		if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.DBName))); err != nil {
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, pool: pool}, nil
}

func (d *Database) Close() error {
	return d.pool.Close()
}

// Ping checks the pool can reach the server before ctx expires
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

// Stats reports connection pool usage
func (d *Database) Stats() sql.DBStats {
	return d.pool.Stats()
}

// SQL exposes the pool for tools that work below gorm, such as migrations
func (d *Database) SQL() *sql.DB {
	return d.pool
}
