package surveyweb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Config holds the settings used when applying schema migrations.
type Config struct {
	// ctx is the context for all operations.
	ctx context.Context

	// logger is the logger used for logging messages.
	logger *slog.Logger

	// MigrationsTable records applied schema versions.
	// Default is "schema_migrations".
	MigrationsTable string

	// db is the database connection used for migrations.
	db *sql.DB
}

func NewConfig(ctx context.Context, db *sql.DB) *Config {
	return &Config{
		ctx:             ctx,
		logger:          slog.Default(),
		MigrationsTable: "schema_migrations",
		db:              db,
	}
}

// SetMigrationsTable sets the table golang-migrate tracks versions in.
func (c *Config) SetMigrationsTable(table string) {
	c.MigrationsTable = table
}

// SetDB sets the database connection.
func (c *Config) SetDB(db *sql.DB) {
	c.db = db
}

// SetLogger sets the logger.
func (c *Config) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// MigrateUp applies every pending migration.
func (c *Config) MigrateUp() error {
	migrator, err := c.migrator()
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		c.logger.InfoContext(c.ctx, "schema already up to date")
	case err != nil:
		return fmt.Errorf("applying migrations: %w", err)
	default:
		c.logger.InfoContext(c.ctx, "migrations applied")
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func (c *Config) MigrateDown(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	migrator, err := c.migrator()
	if err != nil {
		return err
	}

	if err := migrator.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rolling back migrations: %w", err)
	}
	c.logger.InfoContext(c.ctx, "migrations rolled back", "steps", steps)
	return nil
}

func (c *Config) migrator() (*migrate.Migrate, error) {
	if c.db == nil {
		return nil, errors.New("no database connection configured")
	}

	src, err := iofs.New(MigrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}

	dst, err := postgres.WithInstance(c.db, &postgres.Config{MigrationsTable: c.MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("preparing migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "postgres", dst)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return migrator, nil
}
