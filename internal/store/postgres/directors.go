package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
)

var directorSortColumns = map[string]string{
	"id":          "id",
	"last_name":   "last_name",
	"first_name":  "first_name",
	"nationality": "nationality",
	"birth_date":  "COALESCE(birth_date, '-infinity')",
	"film_count":  "film_count",
}

func (tx *pgTx) GetDirector(id string) (*media.Director, error) {
	var director media.Director
	if err := tx.get(&director, psql.Select("*").From("director").Where(squirrel.Eq{"id": id})); err != nil {
		return nil, notFound(err, ident.Director, id)
	}

	return &director, nil
}

func (tx *pgTx) ListDirectors(params query.Params) (query.Result[*media.Director], error) {
	total, err := tx.count("director", squirrel.And{})
	if err != nil {
		return query.Result[*media.Director]{}, err
	}

	builder, err := page(psql.Select("*").From("director"), directorSortColumns, params)
	if err != nil {
		return query.Result[*media.Director]{}, err
	}

	directors := make([]*media.Director, 0)
	if err := tx.selectAll(&directors, builder); err != nil {
		return query.Result[*media.Director]{}, err
	}

	return query.Result[*media.Director]{Items: directors, Total: total}, nil
}

func (tx *pgTx) AllDirectors() ([]*media.Director, error) {
	directors := make([]*media.Director, 0)
	if err := tx.selectAll(&directors, psql.Select("*").From("director").OrderBy("id")); err != nil {
		return nil, err
	}

	return directors, nil
}

func (tx *pgTx) InsertDirector(director *media.Director) error {
	_, err := tx.namedExec(`
		INSERT INTO director(id, last_name, first_name, birth_date, nationality, biography, photo_url, film_count)
		VALUES (:id, :last_name, :first_name, :birth_date, :nationality, :biography, :photo_url, :film_count)
	`, director)

	return conflict(err, ident.Director, director.ID)
}

func (tx *pgTx) UpdateDirector(director *media.Director) error {
	n, err := tx.namedExec(`
		UPDATE director SET
			last_name=:last_name, first_name=:first_name, birth_date=:birth_date, nationality=:nationality,
			biography=:biography, photo_url=:photo_url, film_count=:film_count
		WHERE id=:id
	`, director)
	if err != nil {
		return err
	}

	return requireAffected(n, ident.Director, director.ID)
}

func (tx *pgTx) DeleteDirector(id string) error {
	return tx.deleteByID(ident.Director, id)
}
