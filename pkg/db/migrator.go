package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// DefaultMigrationsTable records applied migrations.
const DefaultMigrationsTable = "migrations"

// Migration is one applied or pending migration.
type Migration struct {
	Version int64
	Path    string
	Applied bool
}

// Migrator applies the SQL migrations of a directory.
type Migrator struct {
	provider *goose.Provider
	logger   *slog.Logger
}

// MigratorOption configures a Migrator.
type MigratorOption func(*migratorConfig)

type migratorConfig struct {
	table  string
	logger *slog.Logger
}

// WithTable sets the migrations table.
func WithTable(name string) MigratorOption {
	return func(c *migratorConfig) {
		if name != "" {
			c.table = name
		}
	}
}

// WithMigratorLogger logs applied migrations.
func WithMigratorLogger(l *slog.Logger) MigratorOption {
	return func(c *migratorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewMigrator creates a migrator for the migrations in fsys over pool.
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS, opts ...MigratorOption) (*Migrator, error) {
	if fsys == nil {
		return nil, ErrNoMigrations
	}
	return newMigrator(stdlib.OpenDBFromPool(pool), fsys, opts...)
}

func newMigrator(db *sql.DB, fsys fs.FS, opts ...MigratorOption) (*Migrator, error) {
	cfg := migratorConfig{table: DefaultMigrationsTable, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&cfg)
	}

	store, err := database.NewStore(database.DialectPostgres, cfg.table)
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}
	provider, err := goose.NewProvider("", db, fsys, goose.WithStore(store))
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}
	return &Migrator{provider: provider, logger: cfg.logger}, nil
}

// Up applies every pending migration and returns the applied versions.
func (m *Migrator) Up(ctx context.Context) ([]int64, error) {
	results, err := m.provider.Up(ctx)
	return m.report(ctx, "up", results, err)
}

// Down rolls back the latest migration.
func (m *Migrator) Down(ctx context.Context) ([]int64, error) {
	res, err := m.provider.Down(ctx)
	var results []*goose.MigrationResult
	if res != nil {
		results = append(results, res)
	}
	return m.report(ctx, "down", results, err)
}

// Reset rolls back every migration.
func (m *Migrator) Reset(ctx context.Context) ([]int64, error) {
	results, err := m.provider.DownTo(ctx, 0)
	return m.report(ctx, "down", results, err)
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}
	return v, nil
}

// Status lists every known migration.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}
	out := make([]Migration, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Migration{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

func (m *Migrator) report(ctx context.Context, direction string, results []*goose.MigrationResult, err error) ([]int64, error) {
	versions := make([]int64, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		versions = append(versions, r.Source.Version)
		m.logger.InfoContext(ctx, "migration applied",
			slog.String("direction", direction),
			slog.Int64("version", r.Source.Version),
			slog.Duration("took", r.Duration),
		)
	}
	if err != nil {
		return versions, fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}
	return versions, nil
}
