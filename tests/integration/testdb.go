// Package integration runs the affiliate API against a real PostgreSQL
// started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/englishbooster/affiliate/internal/infrastructure/config"
	"github.com/englishbooster/affiliate/internal/infrastructure/migration"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "affiliate_test"
	pgUser     = "postgres"
	pgPassword = "admin123"
)

// pgServer is the one container every test in the package shares. It is
// started and migrated on first use.
var pgServer struct {
	mu        sync.Mutex
	container *tcpostgres.PostgresContainer
	cfg       config.DatabaseConfig
}

// TestDB is a pooled connection to the shared, migrated database
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// NewSharedTestDB connects to the shared container, starting it if needed.
// Callers that write should CleanTables first.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	cfg, err := sharedDatabase(context.Background())
	require.NoError(t, err, "Failed to start PostgreSQL container")

	db, err := persistence.NewDatabase(&cfg, persistence.Options{})
	require.NoError(t, err, "Failed to connect to database")
	if os.Getenv("TEST_DB_DEBUG") != "" {
		db.DB = db.DB.Debug()
	}
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{Database: db, t: t}
}

func sharedDatabase(ctx context.Context) (config.DatabaseConfig, error) {
	pgServer.mu.Lock()
	defer pgServer.mu.Unlock()

	if pgServer.container != nil {
		return pgServer.cfg, nil
	}

	container, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase(pgDatabase),
		tcpostgres.WithUsername(pgUser),
		tcpostgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return config.DatabaseConfig{}, err
	}

	cfg, err := containerConfig(ctx, container)
	if err == nil {
		err = migrate(&cfg)
	}
	if err != nil {
		_ = container.Terminate(ctx)
		return config.DatabaseConfig{}, err
	}

	pgServer.container, pgServer.cfg = container, cfg
	return cfg, nil
}

func containerConfig(ctx context.Context, c *tcpostgres.PostgresContainer) (config.DatabaseConfig, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		DBName:          pgDatabase,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}, nil
}

func migrate(cfg *config.DatabaseConfig) error {
	path := findMigrationsPath()
	if path == "" {
		return fmt.Errorf("migrations directory not found")
	}

	db, err := persistence.NewDatabase(cfg, persistence.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migration.New(db.SQL(), path, zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

// CleanTables truncates every table except the migration bookkeeping
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to list tables")
	if len(tables) == 0 {
		return
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	stmt := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	require.NoError(tdb.t, tdb.DB.Exec(stmt).Error, "Failed to truncate tables")
}

// findMigrationsPath walks up from this file to the repository's migrations/
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(filename)
	for range 5 {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	pgServer.mu.Lock()
	defer pgServer.mu.Unlock()

	if pgServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pgServer.container.Terminate(ctx)
	pgServer.container = nil
}
