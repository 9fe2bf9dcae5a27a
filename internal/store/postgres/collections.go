package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/lib/pq"
)

type collectionRow struct {
	media.Collection
	MovieIDs pq.StringArray `db:"movie_ids"`
}

var collectionSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"film_count": "film_count",
	"created_at": "created_at",
}

func newCollectionRow(collection *media.Collection) *collectionRow {
	row := &collectionRow{Collection: *collection.Clone()}
	row.MovieIDs = pq.StringArray(row.Collection.MovieIDs)

	return row
}

func (row *collectionRow) toCollection() *media.Collection {
	collection := row.Collection
	collection.MovieIDs = []string(row.MovieIDs)

	return collection.Clone()
}

func toCollections(rows []*collectionRow) []*media.Collection {
	out := make([]*media.Collection, len(rows))
	for i, row := range rows {
		out[i] = row.toCollection()
	}

	return out
}

func (tx *pgTx) GetCollection(id string) (*media.Collection, error) {
	var row collectionRow
	if err := tx.get(&row, psql.Select("*").From("collection").Where(squirrel.Eq{"id": id})); err != nil {
		return nil, notFound(err, ident.Collection, id)
	}

	return row.toCollection(), nil
}

func (tx *pgTx) ListCollections(params query.Params) (query.Result[*media.Collection], error) {
	total, err := tx.count("collection", squirrel.And{})
	if err != nil {
		return query.Result[*media.Collection]{}, err
	}

	builder, err := page(psql.Select("*").From("collection"), collectionSortColumns, params)
	if err != nil {
		return query.Result[*media.Collection]{}, err
	}

	var rows []*collectionRow
	if err := tx.selectAll(&rows, builder); err != nil {
		return query.Result[*media.Collection]{}, err
	}

	return query.Result[*media.Collection]{Items: toCollections(rows), Total: total}, nil
}

func (tx *pgTx) AllCollections() ([]*media.Collection, error) {
	var rows []*collectionRow
	if err := tx.selectAll(&rows, psql.Select("*").From("collection").OrderBy("id")); err != nil {
		return nil, err
	}

	return toCollections(rows), nil
}

func (tx *pgTx) CollectionsContaining(movieID string) ([]*media.Collection, error) {
	var rows []*collectionRow
	builder := psql.Select("*").From("collection").Where(squirrel.Expr("? = ANY(movie_ids)", movieID)).OrderBy("id")
	if err := tx.selectAll(&rows, builder); err != nil {
		return nil, err
	}

	return toCollections(rows), nil
}

func (tx *pgTx) InsertCollection(collection *media.Collection) error {
	_, err := tx.namedExec(`
		INSERT INTO collection(id, name, description, is_public, created_at, film_count, movie_ids)
		VALUES (:id, :name, :description, :is_public, :created_at, :film_count, :movie_ids)
	`, newCollectionRow(collection))

	return conflict(err, ident.Collection, collection.ID)
}

func (tx *pgTx) UpdateCollection(collection *media.Collection) error {
	n, err := tx.namedExec(`
		UPDATE collection SET
			name=:name, description=:description, is_public=:is_public, created_at=:created_at,
			film_count=:film_count, movie_ids=:movie_ids
		WHERE id=:id
	`, newCollectionRow(collection))
	if err != nil {
		return err
	}

	return requireAffected(n, ident.Collection, collection.ID)
}

func (tx *pgTx) DeleteCollection(id string) error {
	return tx.deleteByID(ident.Collection, id)
}
