// Command migrate manages the pricing schema: exchange rates, payment plans,
// commission rules and the sale ledger.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/phonestore/backend/internal/infrastructure/config"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/phonestore/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// command is one CLI verb. Commands with a nil db run against the files only.
type command struct {
	args  string
	help  string
	needs int
	files func(dir string, args []string, log *zap.Logger) error
	db    func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up":      {help: "Apply all pending migrations", db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down":    {help: "Roll back all migrations", db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step":    {args: "<n>", help: "Apply n migrations (negative rolls back)", needs: 1, db: runStep},
	"goto":    {args: "<version>", help: "Migrate to a specific version", needs: 1, db: runGoto},
	"version": {help: "Show the applied version", db: runVersion},
	"force":   {args: "<version>", help: "Set the version without running migrations", needs: 1, db: runForce},
	"create":  {args: "<name> [desc]", help: "Create a new migration pair", needs: 1, files: runCreate},
	"list":    {help: "List migrations on disk", files: runList},
}

var commandOrder = []string{"up", "down", "step", "goto", "version", "force", "create", "list"}

func main() {
	path := flag.String("path", "", "Migrations directory (default: ./migrations)")
	embedded := flag.Bool("embedded", false, "Use the migrations compiled into the binary instead of -path")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

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

	err = run(flag.Args(), resolveDir(*path), *embedded, log)
	_ = log.Sync()
	switch {
	case errors.Is(err, errUsage):
		printUsage()
		os.Exit(2)
	case err != nil:
		log.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(args []string, dir string, embedded bool, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		log.Error("Unknown command", zap.String("command", name))
		return errUsage
	}
	if len(rest) < cmd.needs {
		return fmt.Errorf("%s requires %s: %w", name, cmd.args, errUsage)
	}

	log.Info("Migration CLI started",
		zap.String("command", name),
		zap.String("migrations_path", dir),
		zap.Bool("embedded", embedded),
	)

	if cmd.files != nil {
		return cmd.files(dir, rest, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if embedded {
		m, err = migration.NewEmbedded(db, log)
	} else {
		m, err = migration.New(db, dir, log)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return cmd.db(m, rest, log)
}

// resolveDir picks -path, then ./migrations, then migrations two levels
// above the executable (bin/<os>/migrate in the release layout).
func resolveDir(flagPath string) string {
	const defaultDir = "migrations"

	dir := flagPath
	if dir == "" {
		dir = defaultDir
		if _, err := os.Stat(defaultDir); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultDir)
				if _, err := os.Stat(candidate); err == nil {
					dir = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func runStep(m *migration.Migrator, args []string, _ *zap.Logger) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid step count %q: %w", args[0], errUsage)
	}
	return m.Steps(n)
}

func runGoto(m *migration.Migrator, args []string, _ *zap.Logger) error {
	version, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], errUsage)
	}
	return m.GoTo(uint(version))
}

func runForce(m *migration.Migrator, args []string, log *zap.Logger) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], errUsage)
	}
	log.Warn("Forcing migration version", zap.Int("version", version))
	return m.Force(version)
}

func runVersion(m *migration.Migrator, _ []string, log *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runCreate(dir string, args []string, log *zap.Logger) error {
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(dir string, _ []string, log *zap.Logger) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Migrations on disk", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		suffix := ""
		if !m.HasDown {
			suffix = " (no down)"
		}
		fmt.Printf("  - %s%s\n", m, suffix)
	}
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Pricing schema migration tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(os.Stderr, "  %-22s%s\n", name+" "+cmd.args, cmd.help)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Database settings come from PHS_DATABASE_HOST, PHS_DATABASE_PORT,
PHS_DATABASE_USER, PHS_DATABASE_PASSWORD, PHS_DATABASE_DBNAME and
PHS_DATABASE_SSLMODE.`)
}
