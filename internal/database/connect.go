package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	sqldblogger "github.com/simukti/sqldb-logger"
)

const (
	SqlDialect          = "postgres"
	SqlConnectionString = "host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC"

	connectAttempts = 5
)

var (
	//go:embed migrations/*.sql
	migrations embed.FS

	dbLogger = logger.Get("DB")

	ErrNotConnected = errors.New("DB manager has not yet connected")
)

type (
	SqlLogger struct {
		logger logger.Logger
	}

	Manager struct {
		rawDb *sql.DB
		db    *sqlx.DB

		retryDelay time.Duration
	}
)

func New() *Manager {
	return &Manager{retryDelay: time.Second * 3}
}

// Connect opens a connection to the Postgres server described by the config,
// retrying a handful of times to allow for the server still starting up,
// and then executes any pending migrations.
func (db *Manager) Connect(ctx context.Context, config DatabaseConfig) error {
	dsn := fmt.Sprintf(SqlConnectionString, config.Host, config.User, config.Password, config.Name, config.Port)
	sql, err := sql.Open(SqlDialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	sql = sqldblogger.OpenDriver(dsn, sql.Driver(), &SqlLogger{dbLogger})

	attempt := 1
	for {
		err := sql.PingContext(ctx)
		if err == nil {
			break
		}

		if attempt >= connectAttempts {
			dbLogger.Emit(logger.ERROR, "All attempts FAILED!\n")
			return err
		}

		dbLogger.Emit(logger.WARNING, "Attempt (%v/%v) failed... Retrying in %s\n", attempt, connectAttempts, db.retryDelay)
		attempt++
		select {
		case <-time.After(db.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	db.rawDb = sql
	db.db = sqlx.NewDb(sql, SqlDialect)

	if err := db.ExecuteMigrations(); err != nil {
		return err
	}

	dbLogger.Emit(logger.SUCCESS, "Database connection complete!\n")
	return nil
}

// ExecuteMigrations uses the comp-time embedded SQL migrations (found in the 'migrations'
// dir in this package) and runs them against the current DB instance.
//
// Note that this method must only be called following a successful DB connection.
func (db *Manager) ExecuteMigrations() error {
	rawDb := db.rawDb
	if rawDb == nil {
		return fmt.Errorf("cannot execute migrations: %w", ErrNotConnected)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(dbLogger)
	if err := goose.SetDialect(SqlDialect); err != nil {
		return fmt.Errorf("failed to set dialect for DB migration: %w", err)
	}

	dbLogger.Emit(logger.INFO, "Checking for pending DB migrations...\n")
	if err := goose.Up(rawDb, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}

	dbLogger.Emit(logger.SUCCESS, "DB Goose migration complete!\n")
	return nil
}

// GetSqlxDb returns the sqlx database connection if
// one has been opened using 'Connect'. Otherwise, nil is returned
func (db *Manager) GetSqlxDb() *sqlx.DB {
	return db.db
}

func (db *Manager) Close() error {
	if db.db == nil {
		return nil
	}

	return db.db.Close()
}

func (l *SqlLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	template := "%s - %v\n"
	switch level {
	case sqldblogger.LevelTrace:
		l.logger.Verbosef(template, msg, data)
	case sqldblogger.LevelDebug, sqldblogger.LevelInfo:
		duration := data["duration"]
		query, ok := data["query"]
		if ok {
			l.logger.Debugf("%s [%.2fms] -- %s\n", msg, duration, query)
		} else {
			l.logger.Debugf("%s [%.2fms]\n", msg, duration)
		}
	case sqldblogger.LevelError:
		l.logger.Errorf(template, msg, data)
	}
}

// WrapTx starts a transaction against the provided DB, and then calls the user
// provided function. If this function errors, the transaction is rolled back - otherwise
// the transaction is committed.
func WrapTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, f func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		dbLogger.Debugf("Transaction failed... rolling back. Error: %s\n", err.Error())
		return err
	}

	return tx.Commit()
}
