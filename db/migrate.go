package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations discovers the bundled SQL migrations. Files named *.tx.up.sql
// and *.tx.down.sql run inside a transaction.
func Migrations() (*migrate.Migrations, error) {
	dir, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations directory: %w", err)
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(dir); err != nil {
		return nil, fmt.Errorf("failed to discover migrations: %w", err)
	}
	return migrations, nil
}

// Migrator runs the bundled migrations over an existing pool. Applied
// migrations are tracked in bun_migrations. The pool is not closed here.
type Migrator struct {
	migrator *migrate.Migrator
}

func NewMigrator(sqlDB *sql.DB) (*Migrator, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	bunDB := bun.NewDB(sqlDB, pgdialect.New())
	return &Migrator{migrator: migrate.NewMigrator(bunDB, migrations)}, nil
}

func (m *Migrator) init(ctx context.Context) error {
	if err := m.migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to create migration tables: %w", err)
	}
	return nil
}

// Migrate applies every pending migration as one group and returns the
// applied names. An empty slice means the schema is up to date.
func (m *Migrator) Migrate(ctx context.Context) ([]string, error) {
	if err := m.init(ctx); err != nil {
		return nil, err
	}
	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return groupNames(group), nil
}

// Rollback reverts the last applied group.
func (m *Migrator) Rollback(ctx context.Context) ([]string, error) {
	if err := m.init(ctx); err != nil {
		return nil, err
	}
	group, err := m.migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return groupNames(group), nil
}

// Pending lists the migrations not applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.init(ctx); err != nil {
		return nil, err
	}
	ms, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}
	return migrationNames(ms.Unapplied()), nil
}

// Migrate applies every pending bundled migration.
func Migrate(ctx context.Context, sqlDB *sql.DB) ([]string, error) {
	m, err := NewMigrator(sqlDB)
	if err != nil {
		return nil, err
	}
	return m.Migrate(ctx)
}

func groupNames(group *migrate.MigrationGroup) []string {
	if group == nil || group.IsZero() {
		return []string{}
	}
	return migrationNames(group.Migrations)
}

func migrationNames(ms migrate.MigrationSlice) []string {
	names := make([]string, 0, len(ms))
	for _, mg := range ms {
		names = append(names, mg.String())
	}
	return names
}
