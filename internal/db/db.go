package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/sqlflash/internal/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	Dialect Dialect
	log     *logger.Logger
}

// Open connects to the database, configures the pool and applies pending
// migrations.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	log := logger.FromContext(ctx).WithPrefix("db")

	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	log.Info("opening %s database", dialect.Driver)
	sqlDB, err := sql.Open(dialect.Driver, dialect.DSN(dsn))
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	dialect.configure(sqlDB)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		log.Error("failed to ping database: %v", err)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect, log: log}

	if _, err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		log.Error("failed to apply migrations: %v", err)
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

// Builder returns a squirrel statement builder using the dialect's
// placeholder format.
func (db *DB) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(db.Dialect.Placeholder)
}

// Migrate applies embedded migrations not yet recorded in schema_migrations
// and returns the versions it applied.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir(db.Dialect.migrations)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var applied []string
	for _, entry := range entries {
		version := entry.Name()
		done, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return applied, err
		}
		if done {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}

		sqlBytes, err := migrationsFS.ReadFile(db.Dialect.migrations + "/" + version)
		if err != nil {
			return applied, err
		}

		db.log.Info("applying migration: %s", version)
		err = db.Tx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
				return fmt.Errorf("apply migration %s: %w", version, err)
			}
			query, args, err := db.Builder().Insert("schema_migrations").Columns("version").Values(version).ToSql()
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			db.log.Error("migration %s failed: %v", version, err)
			return applied, err
		}
		applied = append(applied, version)
	}
	return applied, nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := db.Builder().Select("COUNT(*)").From("schema_migrations").Where(squirrel.Eq{"version": version}).ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Tx runs fn inside a transaction, committing when it returns nil.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		db.log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		db.log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}
