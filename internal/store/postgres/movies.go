package postgres

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/lib/pq"
)

// movieRow is the database representation of a movie, where the
// set-like fields are stored as TEXT[] columns.
type movieRow struct {
	media.Movie
	GenreIDs pq.StringArray `db:"genre_ids"`
	Tags     pq.StringArray `db:"tags"`
}

var movieSortColumns = map[string]string{
	"id":           "id",
	"title":        "title",
	"status":       "status",
	"year":         "year",
	"duration":     "COALESCE(duration, 0)",
	"rating":       "COALESCE(rating, 0)",
	"date_added":   "date_added",
	"date_watched": "COALESCE(date_watched, '-infinity')",
}

func newMovieRow(movie *media.Movie) *movieRow {
	row := &movieRow{Movie: *movie.Clone()}
	row.GenreIDs = pq.StringArray(row.Movie.GenreIDs)
	row.Tags = pq.StringArray(row.Movie.Tags)

	return row
}

func (row *movieRow) toMovie() *media.Movie {
	movie := row.Movie
	movie.GenreIDs = []string(row.GenreIDs)
	movie.Tags = []string(row.Tags)

	return movie.Clone()
}

func toMovies(rows []*movieRow) []*media.Movie {
	out := make([]*media.Movie, len(rows))
	for i, row := range rows {
		out[i] = row.toMovie()
	}

	return out
}

func movieConditions(filter media.MovieFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.Status != "" {
		conds = append(conds, squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.GenreID != "" {
		conds = append(conds, squirrel.Expr("? = ANY(genre_ids)", filter.GenreID))
	}
	if filter.DirectorID != "" {
		conds = append(conds, squirrel.Eq{"director_id": filter.DirectorID})
	}
	if filter.CollectionID != "" {
		conds = append(conds, squirrel.Expr("id = ANY(?)", pq.Array(filter.CollectionMovieIDs)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conds = append(conds, squirrel.ILike{"title": "%" + escapeLike(search) + "%"})
	}

	return conds
}

func (tx *pgTx) GetMovie(id string) (*media.Movie, error) {
	var row movieRow
	if err := tx.get(&row, psql.Select("*").From("movie").Where(squirrel.Eq{"id": id})); err != nil {
		return nil, notFound(err, ident.Movie, id)
	}

	return row.toMovie(), nil
}

func (tx *pgTx) ListMovies(filter media.MovieFilter, params query.Params) (query.Result[*media.Movie], error) {
	conds := movieConditions(filter)
	total, err := tx.count("movie", conds)
	if err != nil {
		return query.Result[*media.Movie]{}, err
	}

	builder, err := page(psql.Select("*").From("movie").Where(conds), movieSortColumns, params)
	if err != nil {
		return query.Result[*media.Movie]{}, err
	}

	var rows []*movieRow
	if err := tx.selectAll(&rows, builder); err != nil {
		return query.Result[*media.Movie]{}, err
	}

	return query.Result[*media.Movie]{Items: toMovies(rows), Total: total}, nil
}

func (tx *pgTx) CountMovies(filter media.MovieFilter) (int, error) {
	return tx.count("movie", movieConditions(filter))
}

func (tx *pgTx) AllMovies() ([]*media.Movie, error) {
	var rows []*movieRow
	if err := tx.selectAll(&rows, psql.Select("*").From("movie").OrderBy("id")); err != nil {
		return nil, err
	}

	return toMovies(rows), nil
}

func (tx *pgTx) InsertMovie(movie *media.Movie) error {
	_, err := tx.namedExec(`
		INSERT INTO movie(id, title, year, director_id, genre_ids, duration, synopsis, status, rating,
			comment, poster_url, tmdb_id, tags, date_added, date_watched)
		VALUES (:id, :title, :year, :director_id, :genre_ids, :duration, :synopsis, :status, :rating,
			:comment, :poster_url, :tmdb_id, :tags, :date_added, :date_watched)
	`, newMovieRow(movie))

	return conflict(err, ident.Movie, movie.ID)
}

func (tx *pgTx) UpdateMovie(movie *media.Movie) error {
	n, err := tx.namedExec(`
		UPDATE movie SET
			title=:title, year=:year, director_id=:director_id, genre_ids=:genre_ids,
			duration=:duration, synopsis=:synopsis, status=:status, rating=:rating,
			comment=:comment, poster_url=:poster_url, tmdb_id=:tmdb_id, tags=:tags,
			date_added=:date_added, date_watched=:date_watched
		WHERE id=:id
	`, newMovieRow(movie))
	if err != nil {
		return err
	}

	return requireAffected(n, ident.Movie, movie.ID)
}

func (tx *pgTx) DeleteMovie(id string) error {
	return tx.deleteByID(ident.Movie, id)
}
