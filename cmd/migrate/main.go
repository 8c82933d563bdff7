package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/englishbooster/affiliate/internal/infrastructure/config"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/infrastructure/migration"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/seed"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("invalid arguments")

// env is what every command may use. Commands that need a migrator get one
// opened on the configured database before run is called.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	path     string
	migrator *migration.Migrator
}

type command struct {
	args     string
	help     string
	migrator bool
	run      func(e *env, args []string) error
}

var commands = map[string]command{
	"up":         {help: "Apply all pending migrations", migrator: true, run: func(e *env, _ []string) error { return e.migrator.Up() }},
	"down":       {help: "Roll back all migrations", migrator: true, run: func(e *env, _ []string) error { return e.migrator.Down() }},
	"step":       {args: "<n>", help: "Apply n migrations (positive=up, negative=down)", migrator: true, run: runStep},
	"goto":       {args: "<version>", help: "Migrate to a specific version", migrator: true, run: runGoto},
	"version":    {help: "Show current migration version", migrator: true, run: runVersion},
	"force":      {args: "<version>", help: "Force set migration version (use with caution)", migrator: true, run: runForce},
	"create":     {args: "<name> [desc]", help: "Create a new migration file pair", run: runCreate},
	"list":       {help: "List available migrations", run: runList},
	"seed":       {help: "Upsert the program catalog", run: runSeedPrograms},
	"seed-admin": {args: "<email> <password> [name]", help: "Create or promote the administrator account", run: runSeedAdmin},
}

var commandOrder = []string{"up", "down", "step", "goto", "version", "force", "create", "list", "seed", "seed-admin"}

func main() {
	pathFlag := flag.String("path", "", "Path to migrations directory (default: ./migrations)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := execute(log, *pathFlag, args[0], cmd, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage: migrate %s %s\n", args[0], cmd.args)
		}
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func execute(log *zap.Logger, pathFlag, name string, cmd command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	path, err := resolveMigrationsPath(pathFlag)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	log.Info("Migration CLI started", zap.String("command", name), zap.String("migrations_path", path))

	e := &env{cfg: cfg, log: log, path: path}
	if cmd.migrator {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if e.migrator, err = migration.New(db, path, log); err != nil {
			return err
		}
		defer e.migrator.Close()
	}
	return cmd.run(e, args)
}

func argInt(args []string, bits int) (int64, error) {
	if len(args) < 1 {
		return 0, errUsage
	}
	n, err := strconv.ParseInt(args[0], 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func runStep(e *env, args []string) error {
	n, err := argInt(args, 32)
	if err != nil {
		return err
	}
	return e.migrator.Steps(int(n))
}

func runGoto(e *env, args []string) error {
	v, err := argInt(args, 32)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: version must not be negative", errUsage)
	}
	return e.migrator.GoTo(uint(v))
}

func runForce(e *env, args []string) error {
	v, err := argInt(args, 32)
	if err != nil {
		return err
	}
	return e.migrator.Force(int(v))
}

func runVersion(e *env, _ []string) error {
	status, err := e.migrator.Status()
	if err != nil {
		return err
	}
	if status.Version == 0 {
		e.log.Info("No migrations applied")
		return nil
	}
	e.log.Info("Current migration version", zap.Uint("version", status.Version), zap.Bool("dirty", status.Dirty))
	return nil
}

func runCreate(e *env, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(e.path, args[0], description)
	if err != nil {
		return err
	}
	e.log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(e *env, _ []string) error {
	migrations, err := migration.ListMigrations(e.path)
	if err != nil {
		return err
	}
	e.log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Printf("  - %06d_%s\n", m.Version, m.Name)
	}
	return nil
}

func withDatabase(e *env, fn func(ctx context.Context, db *persistence.Database) error) error {
	db, err := persistence.NewDatabase(&e.cfg.Database, persistence.Options{Logger: e.log, LogLevel: "warn"})
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(context.Background(), db)
}

func runSeedPrograms(e *env, _ []string) error {
	return withDatabase(e, func(ctx context.Context, db *persistence.Database) error {
		n, err := seed.SeedPrograms(ctx, persistence.NewGormProgramRepository(db.DB), seed.DefaultPrograms, e.log)
		if err != nil {
			return err
		}
		e.log.Info("Programs seeded", zap.Int("count", n))
		return nil
	})
}

func runSeedAdmin(e *env, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	name := "Administrator"
	if len(args) > 2 {
		name = args[2]
	}
	return withDatabase(e, func(ctx context.Context, db *persistence.Database) error {
		_, err := seed.SeedAdmin(ctx, persistence.NewGormUserRepository(db.DB), name, args[0], args[1], e.log)
		return err
	})
}

// resolveMigrationsPath prefers ./migrations, then the directory two levels
// above the executable.
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	candidates := []string{defaultMigrationsPath}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return filepath.Abs(c)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Affiliate Database Migration Tool")
	fmt.Fprintln(out, "\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range commandOrder {
		c := commands[name]
		usage := name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(out, "  %-38s %s\n", usage, c.help)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, `
Environment Variables:
  AFF_DATABASE_HOST, AFF_DATABASE_PORT, AFF_DATABASE_USER,
  AFF_DATABASE_PASSWORD, AFF_DATABASE_DBNAME, AFF_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_payout_table "Track commission payouts"
  migrate seed-admin owner@englishbooster.id 'a-strong-password' "Owner"`)
}
