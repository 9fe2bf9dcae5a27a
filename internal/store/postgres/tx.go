package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/jmoiron/sqlx"
)

var tables = map[ident.Kind]string{
	ident.Movie:      "movie",
	ident.Director:   "director",
	ident.Genre:      "genre",
	ident.Collection: "collection",
}

type pgTx struct {
	ctx      context.Context
	tx       *sqlx.Tx
	readOnly bool
}

func (tx *pgTx) writable() error {
	if tx.readOnly {
		return store.ErrReadOnly
	}

	return nil
}

func (tx *pgTx) get(dest any, builder squirrel.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to construct query: %w", err)
	}

	return tx.tx.GetContext(tx.ctx, dest, query, args...)
}

func (tx *pgTx) selectAll(dest any, builder squirrel.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to construct query: %w", err)
	}

	return tx.tx.SelectContext(tx.ctx, dest, query, args...)
}

// exec runs the statement and returns the number of rows it affected.
func (tx *pgTx) exec(builder squirrel.Sqlizer) (int64, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to construct query: %w", err)
	}

	res, err := tx.tx.ExecContext(tx.ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (tx *pgTx) namedExec(query string, arg any) (int64, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}

	res, err := tx.tx.NamedExecContext(tx.ctx, query, arg)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// count runs a COUNT(*) over the table with the conditions provided.
func (tx *pgTx) count(table string, where squirrel.Sqlizer) (int, error) {
	var total int
	if err := tx.get(&total, psql.Select("COUNT(*)").From(table).Where(where)); err != nil {
		return 0, err
	}

	return total, nil
}

func (tx *pgTx) deleteByID(kind ident.Kind, id string) error {
	n, err := tx.exec(psql.Delete(tables[kind]).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}

	return requireAffected(n, kind, id)
}

func (tx *pgTx) NextID(kind ident.Kind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("cannot allocate id for unknown kind %s", kind)
	}

	var existing []string
	if err := tx.selectAll(&existing, psql.Select("id").From(table)); err != nil {
		return "", err
	}

	return ident.Next(kind, existing), nil
}

func (tx *pgTx) AdjustFilmCount(kind ident.Kind, id string, delta int) error {
	return tx.updateFilmCount(kind, id, squirrel.Expr("film_count + ?", delta))
}

func (tx *pgTx) SetFilmCount(kind ident.Kind, id string, count int) error {
	return tx.updateFilmCount(kind, id, count)
}

func (tx *pgTx) updateFilmCount(kind ident.Kind, id string, value any) error {
	if kind == ident.Movie {
		return fmt.Errorf("%s records do not carry a film count", kind)
	}

	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("unknown kind %s", kind)
	}

	n, err := tx.exec(psql.Update(table).Set("film_count", value).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}

	return requireAffected(n, kind, id)
}

// page applies the ORDER BY, LIMIT and OFFSET for the params to the select
// provided. Ties are broken on id so that pages never overlap.
func page(builder squirrel.SelectBuilder, columns map[string]string, params query.Params) (squirrel.SelectBuilder, error) {
	column, ok := columns[params.Sort]
	if !ok {
		return builder, &query.ParamError{Param: "sort", Message: fmt.Sprintf("cannot sort by '%s'", params.Sort)}
	}

	direction := "ASC"
	if params.Order == query.Desc {
		direction = "DESC"
	}

	return builder.
		OrderBy(column+" "+direction, "id ASC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset())), nil
}

// escapeLike escapes the LIKE wildcards in s so it is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func notFound(err error, kind ident.Kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}

	return err
}

func requireAffected(n int64, kind ident.Kind, id string) error {
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}

	return nil
}

func conflict(err error, kind ident.Kind, id string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrConflict)
	}

	return err
}
