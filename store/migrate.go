package store

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

func newMigrator(db *bun.DB) (*migrate.Migrator, error) {
	dir, err := DialectMigrationsFS(db.Dialect().Name())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load migrations")
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(dir); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to discover migrations")
	}

	return migrate.NewMigrator(db, migrations), nil
}

// Migrate applies every pending migration for the database dialect
func Migrate(ctx context.Context, db *bun.DB, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := migrator.Init(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to init migration tables")
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to run migrations")
	}

	if group.IsZero() {
		logger.Debug("no new migrations to run")
		return nil
	}

	logger.Info("migrations applied", "group", group.String())
	return nil
}

// Rollback reverts the last applied migration group
func Rollback(ctx context.Context, db *bun.DB, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := migrator.Init(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to init migration tables")
	}

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rollback migrations")
	}

	if group.IsZero() {
		logger.Info("nothing to rollback")
		return nil
	}

	logger.Info("migrations rolled back", "group", group.String())
	return nil
}
