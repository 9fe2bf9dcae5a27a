package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
)

var genreSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"film_count": "film_count",
}

func (tx *pgTx) GetGenre(id string) (*media.Genre, error) {
	var genre media.Genre
	if err := tx.get(&genre, psql.Select("*").From("genre").Where(squirrel.Eq{"id": id})); err != nil {
		return nil, notFound(err, ident.Genre, id)
	}

	return &genre, nil
}

func (tx *pgTx) FindGenreByName(name string) (*media.Genre, error) {
	var genre media.Genre
	err := tx.get(&genre, psql.Select("*").From("genre").Where(squirrel.Eq{"LOWER(TRIM(name))": media.NormalizeGenreName(name)}))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("genre named %q: %w", name, store.ErrNotFound)
		}

		return nil, err
	}

	return &genre, nil
}

func (tx *pgTx) ListGenres(params query.Params) (query.Result[*media.Genre], error) {
	total, err := tx.count("genre", squirrel.And{})
	if err != nil {
		return query.Result[*media.Genre]{}, err
	}

	builder, err := page(psql.Select("*").From("genre"), genreSortColumns, params)
	if err != nil {
		return query.Result[*media.Genre]{}, err
	}

	genres := make([]*media.Genre, 0)
	if err := tx.selectAll(&genres, builder); err != nil {
		return query.Result[*media.Genre]{}, err
	}

	return query.Result[*media.Genre]{Items: genres, Total: total}, nil
}

func (tx *pgTx) AllGenres() ([]*media.Genre, error) {
	genres := make([]*media.Genre, 0)
	if err := tx.selectAll(&genres, psql.Select("*").From("genre").OrderBy("id")); err != nil {
		return nil, err
	}

	return genres, nil
}

// InsertGenre relies on the genre_name_unique index to reject
// names which differ only by case or surrounding whitespace.
func (tx *pgTx) InsertGenre(genre *media.Genre) error {
	_, err := tx.namedExec(`
		INSERT INTO genre(id, name, description, film_count)
		VALUES (:id, :name, :description, :film_count)
	`, genre)

	return conflict(err, ident.Genre, genre.ID)
}

func (tx *pgTx) UpdateGenre(genre *media.Genre) error {
	n, err := tx.namedExec(`
		UPDATE genre SET name=:name, description=:description, film_count=:film_count
		WHERE id=:id
	`, genre)
	if err != nil {
		return conflict(err, ident.Genre, genre.ID)
	}

	return requireAffected(n, ident.Genre, genre.ID)
}

func (tx *pgTx) DeleteGenre(id string) error {
	return tx.deleteByID(ident.Genre, id)
}
