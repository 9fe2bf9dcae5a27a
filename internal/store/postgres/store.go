// Package postgres provides a store.Store backed by PostgreSQL. The schema is
// owned by the database package migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/database"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// catalogLockKey is the advisory lock taken by every write transaction. It
// serializes writers across every process sharing the database.
const catalogLockKey int64 = 0x5265656c

const uniqueViolation = "23505"

var (
	log = logger.Get("PgStore")

	psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	return database.WrapTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(tx *sqlx.Tx) error {
		return fn(&pgTx{ctx: ctx, tx: tx, readOnly: true})
	})
}

func (s *Store) Transaction(ctx context.Context, fn func(store.Tx) error) error {
	return database.WrapTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, catalogLockKey); err != nil {
			return fmt.Errorf("failed to acquire catalog lock: %w", err)
		}

		return fn(&pgTx{ctx: ctx, tx: tx})
	})
}

func (s *Store) InsertUser(ctx context.Context, u *user.User) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users(id, username, email, role, password, salt, created_at, updated_at)
		VALUES (:id, :username, :email, :role, :password, :salt, :created_at, :updated_at)
	`, u)
	if isUniqueViolation(err) {
		log.Debugf("Rejected user %s as the username or email is taken\n", u.Username)
		return user.ErrUserExists
	}

	return err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, squirrel.Eq{"id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, squirrel.Eq{"email": user.NormalizeEmail(email)})
}

func (s *Store) getUser(ctx context.Context, where squirrel.Sqlizer) (*user.User, error) {
	query, args, err := psql.Select("*").From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct select user query: %w", err)
	}

	var result user.User
	if err := s.db.GetContext(ctx, &result, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}

		return nil, err
	}

	return &result, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash []byte, salt []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password=$1, salt=$2, updated_at=current_timestamp WHERE id=$3
	`, hash, salt, id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
