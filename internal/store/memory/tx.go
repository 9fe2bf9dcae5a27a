package memory

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
)

type memTx struct {
	state    *state
	readOnly bool
}

func nowUTC() time.Time { return time.Now().UTC() }

func (tx *memTx) writable() error {
	if tx.readOnly {
		return store.ErrReadOnly
	}

	return nil
}

func (tx *memTx) NextID(kind ident.Kind) (string, error) {
	var existing []string
	switch kind {
	case ident.Movie:
		existing = keys(tx.state.movies)
	case ident.Director:
		existing = keys(tx.state.directors)
	case ident.Genre:
		existing = keys(tx.state.genres)
	case ident.Collection:
		existing = keys(tx.state.collections)
	default:
		return "", fmt.Errorf("cannot allocate id for unknown kind %s", kind)
	}

	return ident.Next(kind, existing), nil
}

func (tx *memTx) AdjustFilmCount(kind ident.Kind, id string, delta int) error {
	return tx.mutateFilmCount(kind, id, func(current int) int { return current + delta })
}

func (tx *memTx) SetFilmCount(kind ident.Kind, id string, count int) error {
	return tx.mutateFilmCount(kind, id, func(int) int { return count })
}

func (tx *memTx) mutateFilmCount(kind ident.Kind, id string, fn func(int) int) error {
	if err := tx.writable(); err != nil {
		return err
	}

	switch kind {
	case ident.Director:
		if d, ok := tx.state.directors[id]; ok {
			d.FilmCount = fn(d.FilmCount)
			return nil
		}
	case ident.Genre:
		if g, ok := tx.state.genres[id]; ok {
			g.FilmCount = fn(g.FilmCount)
			return nil
		}
	case ident.Collection:
		if c, ok := tx.state.collections[id]; ok {
			c.FilmCount = fn(c.FilmCount)
			return nil
		}
	default:
		return fmt.Errorf("%s records do not carry a film count", kind)
	}

	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

// ** Movies ** //

func (tx *memTx) GetMovie(id string) (*media.Movie, error) {
	if m, ok := tx.state.movies[id]; ok {
		return m.Clone(), nil
	}

	return nil, fmt.Errorf("movie %s: %w", id, store.ErrNotFound)
}

func (tx *memTx) ListMovies(filter media.MovieFilter, params query.Params) (query.Result[*media.Movie], error) {
	res := query.Apply(values(tx.state.movies), filter.Matches, media.MovieSchema, params)
	return cloneResult(res, (*media.Movie).Clone), nil
}

func (tx *memTx) CountMovies(filter media.MovieFilter) (int, error) {
	count := 0
	for _, m := range tx.state.movies {
		if filter.Matches(m) {
			count++
		}
	}

	return count, nil
}

func (tx *memTx) AllMovies() ([]*media.Movie, error) {
	return cloneAll(tx.state.movies, (*media.Movie).Clone), nil
}

func (tx *memTx) InsertMovie(movie *media.Movie) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.movies[movie.ID]; exists {
		return fmt.Errorf("movie %s: %w", movie.ID, store.ErrConflict)
	}

	tx.state.movies[movie.ID] = movie.Clone()
	return nil
}

func (tx *memTx) UpdateMovie(movie *media.Movie) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.movies[movie.ID]; !exists {
		return fmt.Errorf("movie %s: %w", movie.ID, store.ErrNotFound)
	}

	tx.state.movies[movie.ID] = movie.Clone()
	return nil
}

func (tx *memTx) DeleteMovie(id string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.movies[id]; !exists {
		return fmt.Errorf("movie %s: %w", id, store.ErrNotFound)
	}

	delete(tx.state.movies, id)
	return nil
}

// ** Directors ** //

func (tx *memTx) GetDirector(id string) (*media.Director, error) {
	if d, ok := tx.state.directors[id]; ok {
		return d.Clone(), nil
	}

	return nil, fmt.Errorf("director %s: %w", id, store.ErrNotFound)
}

func (tx *memTx) ListDirectors(params query.Params) (query.Result[*media.Director], error) {
	res := query.Apply(values(tx.state.directors), nil, media.DirectorSchema, params)
	return cloneResult(res, (*media.Director).Clone), nil
}

func (tx *memTx) AllDirectors() ([]*media.Director, error) {
	return cloneAll(tx.state.directors, (*media.Director).Clone), nil
}

func (tx *memTx) InsertDirector(director *media.Director) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.directors[director.ID]; exists {
		return fmt.Errorf("director %s: %w", director.ID, store.ErrConflict)
	}

	tx.state.directors[director.ID] = director.Clone()
	return nil
}

func (tx *memTx) UpdateDirector(director *media.Director) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.directors[director.ID]; !exists {
		return fmt.Errorf("director %s: %w", director.ID, store.ErrNotFound)
	}

	tx.state.directors[director.ID] = director.Clone()
	return nil
}

func (tx *memTx) DeleteDirector(id string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.directors[id]; !exists {
		return fmt.Errorf("director %s: %w", id, store.ErrNotFound)
	}

	delete(tx.state.directors, id)
	return nil
}

// ** Genres ** //

func (tx *memTx) GetGenre(id string) (*media.Genre, error) {
	if g, ok := tx.state.genres[id]; ok {
		return g.Clone(), nil
	}

	return nil, fmt.Errorf("genre %s: %w", id, store.ErrNotFound)
}

func (tx *memTx) FindGenreByName(name string) (*media.Genre, error) {
	normalized := media.NormalizeGenreName(name)
	for _, g := range tx.state.genres {
		if media.NormalizeGenreName(g.Name) == normalized {
			return g.Clone(), nil
		}
	}

	return nil, fmt.Errorf("genre named %q: %w", name, store.ErrNotFound)
}

func (tx *memTx) ListGenres(params query.Params) (query.Result[*media.Genre], error) {
	res := query.Apply(values(tx.state.genres), nil, media.GenreSchema, params)
	return cloneResult(res, (*media.Genre).Clone), nil
}

func (tx *memTx) AllGenres() ([]*media.Genre, error) {
	return cloneAll(tx.state.genres, (*media.Genre).Clone), nil
}

func (tx *memTx) InsertGenre(genre *media.Genre) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.genres[genre.ID]; exists {
		return fmt.Errorf("genre %s: %w", genre.ID, store.ErrConflict)
	}
	if err := tx.checkGenreNameFree(genre); err != nil {
		return err
	}

	tx.state.genres[genre.ID] = genre.Clone()
	return nil
}

func (tx *memTx) UpdateGenre(genre *media.Genre) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.genres[genre.ID]; !exists {
		return fmt.Errorf("genre %s: %w", genre.ID, store.ErrNotFound)
	}
	if err := tx.checkGenreNameFree(genre); err != nil {
		return err
	}

	tx.state.genres[genre.ID] = genre.Clone()
	return nil
}

func (tx *memTx) checkGenreNameFree(genre *media.Genre) error {
	normalized := media.NormalizeGenreName(genre.Name)
	for _, g := range tx.state.genres {
		if g.ID != genre.ID && media.NormalizeGenreName(g.Name) == normalized {
			return fmt.Errorf("genre name %q: %w", genre.Name, store.ErrConflict)
		}
	}

	return nil
}

func (tx *memTx) DeleteGenre(id string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.genres[id]; !exists {
		return fmt.Errorf("genre %s: %w", id, store.ErrNotFound)
	}

	delete(tx.state.genres, id)
	return nil
}

// ** Collections ** //

func (tx *memTx) GetCollection(id string) (*media.Collection, error) {
	if c, ok := tx.state.collections[id]; ok {
		return c.Clone(), nil
	}

	return nil, fmt.Errorf("collection %s: %w", id, store.ErrNotFound)
}

func (tx *memTx) ListCollections(params query.Params) (query.Result[*media.Collection], error) {
	res := query.Apply(values(tx.state.collections), nil, media.CollectionSchema, params)
	return cloneResult(res, (*media.Collection).Clone), nil
}

func (tx *memTx) AllCollections() ([]*media.Collection, error) {
	return cloneAll(tx.state.collections, (*media.Collection).Clone), nil
}

func (tx *memTx) CollectionsContaining(movieID string) ([]*media.Collection, error) {
	out := make([]*media.Collection, 0)
	for _, c := range tx.state.collections {
		if c.Contains(movieID) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (tx *memTx) InsertCollection(collection *media.Collection) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.collections[collection.ID]; exists {
		return fmt.Errorf("collection %s: %w", collection.ID, store.ErrConflict)
	}

	tx.state.collections[collection.ID] = collection.Clone()
	return nil
}

func (tx *memTx) UpdateCollection(collection *media.Collection) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.collections[collection.ID]; !exists {
		return fmt.Errorf("collection %s: %w", collection.ID, store.ErrNotFound)
	}

	tx.state.collections[collection.ID] = collection.Clone()
	return nil
}

func (tx *memTx) DeleteCollection(id string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.state.collections[id]; !exists {
		return fmt.Errorf("collection %s: %w", id, store.ErrNotFound)
	}

	delete(tx.state.collections, id)
	return nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

// values returns the map values ordered by key, so that the input to
// sorting is the same regardless of map iteration order.
func values[V any](m map[string]V) []V {
	ks := keys(m)
	slices.Sort(ks)

	out := make([]V, 0, len(m))
	for _, k := range ks {
		out = append(out, m[k])
	}

	return out
}

func cloneAll[V any](m map[string]V, clone func(V) V) []V {
	vs := values(m)
	for i, v := range vs {
		vs[i] = clone(v)
	}

	return vs
}

func cloneResult[V any](res query.Result[V], clone func(V) V) query.Result[V] {
	items := make([]V, len(res.Items))
	for i, v := range res.Items {
		items[i] = clone(v)
	}

	return query.Result[V]{Items: items, Total: res.Total}
}
