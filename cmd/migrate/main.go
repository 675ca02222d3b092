package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/barcode/internal/infrastructure/config"
	"github.com/erp/barcode/internal/infrastructure/logger"
	"github.com/erp/barcode/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("invalid usage")

// fileCommands only read or write the migrations directory
var fileCommands = map[string]func(log *zap.Logger, dir string, args []string) error{
	"create": createMigration,
	"list":   listMigrations,
}

// schemaCommands run against the configured postgres database
var schemaCommands = map[string]func(log *zap.Logger, m *migration.Migrator, args []string) error{
	"up":      func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() },
	"down":    func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() },
	"step":    stepMigrations,
	"version": showStatus,
	"status":  showStatus,
	"force":   forceVersion,
}

func main() {
	path := flag.String("path", "", "Path to migrations directory (default: ./migrations)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, *path, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger, path, command string, args []string) error {
	dir, err := resolveMigrationsPath(path)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	log.Debug("Migration CLI started", zap.String("command", command), zap.String("migrations_path", dir))

	if cmd, ok := fileCommands[command]; ok {
		return cmd(log, dir, args)
	}
	cmd, ok := schemaCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("SQL migrations need the postgres driver, got %q; sqlite schemas are created by the server", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return cmd(log, m, args)
}

func createMigration(log *zap.Logger, dir string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: create needs a migration name", errUsage)
	}
	mf, err := migration.CreateMigration(dir, args[0])
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Int("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(log *zap.Logger, dir string, _ []string) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Printf("  %06d  %s\n", m.Version, m.Name)
	}
	return nil
}

func stepMigrations(_ *zap.Logger, m *migration.Migrator, args []string) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	return m.Steps(n)
}

func forceVersion(_ *zap.Logger, m *migration.Migrator, args []string) error {
	version, err := intArg(args, "version")
	if err != nil {
		return err
	}
	return m.Force(version)
}

func showStatus(log *zap.Logger, m *migration.Migrator, _ []string) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	if !status.Applied {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current schema version",
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}

func intArg(args []string, name string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%w: %s required", errUsage, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, name, args[0])
	}
	return n, nil
}

// resolveMigrationsPath finds the migrations directory in the working
// directory or two levels above the executable
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	fmt.Println(`Barcode Service Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  status                Show the recorded schema version (alias: version)
  force <version>       Record a schema version without running migrations
  create <name>         Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  BARCODE_DATABASE_HOST, BARCODE_DATABASE_PORT, BARCODE_DATABASE_USER,
  BARCODE_DATABASE_PASSWORD, BARCODE_DATABASE_DBNAME, BARCODE_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_part_revision`)
}
