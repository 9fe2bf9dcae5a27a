// Package store defines the persistence contract for the catalog. Two
// implementations exist: a PostgreSQL store (see store/postgres) and an
// in-memory store with optional JSON file persistence (see store/memory).
//
// Every interaction happens inside a transaction. Records returned from a
// Tx are always fresh copies, mutating them has no effect until they're
// written back with the matching Update method.
package store

import (
	"context"
	"errors"

	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/user"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing record")
	ErrReadOnly = errors.New("write attempted inside a read-only transaction")
)

type (
	Store interface {
		user.Repository

		// View runs fn inside a read-only transaction. Any attempt to write
		// using the Tx fails with ErrReadOnly.
		View(ctx context.Context, fn func(Tx) error) error

		// Transaction runs fn inside a read-write transaction. Writers are
		// serialized: no two transactions run concurrently, and none of the
		// changes made by fn are visible to others unless fn returns nil.
		Transaction(ctx context.Context, fn func(Tx) error) error
	}

	Tx interface {
		MovieTx
		DirectorTx
		GenreTx
		CollectionTx

		// NextID allocates the next identifier for the kind given. The id
		// is only reserved once a record using it is inserted in the same
		// transaction.
		NextID(kind ident.Kind) (string, error)

		// AdjustFilmCount adds delta to the film count of the director,
		// genre or collection with the id provided.
		AdjustFilmCount(kind ident.Kind, id string, delta int) error

		// SetFilmCount overwrites the film count of the director, genre or
		// collection with the id provided.
		SetFilmCount(kind ident.Kind, id string, count int) error
	}

	MovieTx interface {
		GetMovie(id string) (*media.Movie, error)
		ListMovies(filter media.MovieFilter, params query.Params) (query.Result[*media.Movie], error)
		CountMovies(filter media.MovieFilter) (int, error)
		AllMovies() ([]*media.Movie, error)
		InsertMovie(movie *media.Movie) error
		UpdateMovie(movie *media.Movie) error
		DeleteMovie(id string) error
	}

	DirectorTx interface {
		GetDirector(id string) (*media.Director, error)
		ListDirectors(params query.Params) (query.Result[*media.Director], error)
		AllDirectors() ([]*media.Director, error)
		InsertDirector(director *media.Director) error
		UpdateDirector(director *media.Director) error
		DeleteDirector(id string) error
	}

	GenreTx interface {
		GetGenre(id string) (*media.Genre, error)
		// FindGenreByName looks up a genre by name, ignoring case and
		// surrounding whitespace.
		FindGenreByName(name string) (*media.Genre, error)
		ListGenres(params query.Params) (query.Result[*media.Genre], error)
		AllGenres() ([]*media.Genre, error)
		InsertGenre(genre *media.Genre) error
		UpdateGenre(genre *media.Genre) error
		DeleteGenre(id string) error
	}

	CollectionTx interface {
		GetCollection(id string) (*media.Collection, error)
		ListCollections(params query.Params) (query.Result[*media.Collection], error)
		AllCollections() ([]*media.Collection, error)
		// CollectionsContaining returns every collection whose movie list
		// includes the movie provided, ordered by id.
		CollectionsContaining(movieID string) ([]*media.Collection, error)
		InsertCollection(collection *media.Collection) error
		UpdateCollection(collection *media.Collection) error
		DeleteCollection(id string) error
	}
)
