// Package database owns the relational store: connection setup for
// PostgreSQL (lib/pq) or SQLite (modernc), schema migrations and the two
// statement helpers the repositories are built on.
package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/database/migrations"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured driver and applies pool settings.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, errx.Wrap(err, "failed to connect to database", errx.TypeInternal).
			WithDetail("driver", cfg.Driver)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer; busy_timeout in the DSN handles the rest
		db.SetMaxOpenConns(1)
		return db, nil
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dialect := "postgres"
	if db.DriverName() == config.DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return errx.Wrap(err, "failed to set migration dialect", errx.TypeInternal)
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return errx.Wrap(err, "failed to run migrations", errx.TypeInternal)
	}
	return nil
}

// Execute runs a named statement and returns the number of affected rows.
func Execute(ctx context.Context, db sqlx.ExtContext, query string, arg any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, db, query, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueryOne scans the first row into a T. No row yields nil, nil.
func QueryOne[T any](ctx context.Context, db sqlx.QueryerContext, query string, args ...any) (*T, error) {
	var dest T
	if err := sqlx.GetContext(ctx, db, &dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &dest, nil
}

// IsUniqueViolation reports whether err is a unique constraint failure on
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) { logx.Debugf("goose: "+format, v...) }
func (gooseLogger) Fatalf(format string, v ...any) { logx.Fatalf("goose: "+format, v...) }
