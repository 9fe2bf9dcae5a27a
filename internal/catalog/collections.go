package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
)

func (service *Service) ListCollections(ctx context.Context, params query.Params) (query.Result[*media.Collection], error) {
	var result query.Result[*media.Collection]
	err := service.view(ctx, func(tx store.Tx) error {
		res, err := tx.ListCollections(params)
		result = res
		return err
	})

	return result, err
}

func (service *Service) GetCollection(ctx context.Context, id string) (*media.Collection, error) {
	var collection *media.Collection
	err := service.view(ctx, func(tx store.Tx) error {
		c, err := tx.GetCollection(id)
		if err != nil {
			return primary(err, ident.Collection, id)
		}

		collection = c
		return nil
	})

	return collection, err
}

// CollectionMovies returns the movies of the collection in the order
// they were added.
func (service *Service) CollectionMovies(ctx context.Context, id string) ([]*media.Movie, error) {
	var movies []*media.Movie
	err := service.view(ctx, func(tx store.Tx) error {
		collection, err := tx.GetCollection(id)
		if err != nil {
			return primary(err, ident.Collection, id)
		}

		movies = make([]*media.Movie, 0, len(collection.MovieIDs))
		for _, movieID := range collection.MovieIDs {
			movie, err := tx.GetMovie(movieID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			} else if err != nil {
				return err
			}

			movies = append(movies, movie)
		}

		return nil
	})

	return movies, err
}

func (service *Service) CreateCollection(ctx context.Context, input CollectionInput) (*media.Collection, error) {
	collection := &media.Collection{MovieIDs: []string{}}
	input.applyTo(collection)
	collection.CreatedAt = service.now()
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	err := service.transaction(ctx, func(tx store.Tx) error {
		if err := checkCollectionMovies(tx, collection.MovieIDs); err != nil {
			return err
		}

		id, err := tx.NextID(ident.Collection)
		if err != nil {
			return err
		}

		collection.ID = id
		return tx.InsertCollection(collection)
	})
	if err != nil {
		return nil, err
	}

	log.Emit(logger.NEW, "Created collection %s (%s)\n", collection.ID, collection.Name)
	service.dispatch(event.COLLECTION_CREATED, event.Change{ID: collection.ID})
	return collection, nil
}

func (service *Service) UpdateCollection(ctx context.Context, id string, input CollectionInput) (*media.Collection, error) {
	var updated *media.Collection
	err := service.transaction(ctx, func(tx store.Tx) error {
		collection, err := tx.GetCollection(id)
		if err != nil {
			return primary(err, ident.Collection, id)
		}

		input.applyTo(collection)
		if err := validateCollection(collection); err != nil {
			return err
		}
		if input.MovieIDs != nil {
			if err := checkCollectionMovies(tx, collection.MovieIDs); err != nil {
				return err
			}
		}

		updated = collection
		return tx.UpdateCollection(collection)
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.COLLECTION_UPDATED, event.Change{ID: id})
	return updated, nil
}

func (service *Service) DeleteCollection(ctx context.Context, id string) error {
	err := service.transaction(ctx, func(tx store.Tx) error {
		if err := tx.DeleteCollection(id); err != nil {
			return primary(err, ident.Collection, id)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Emit(logger.REMOVE, "Deleted collection %s\n", id)
	service.dispatch(event.COLLECTION_DELETED, event.Change{ID: id})
	return nil
}

// AddMovieToCollection appends the movie to the end of the collection.
func (service *Service) AddMovieToCollection(ctx context.Context, id string, movieID string) (*media.Collection, error) {
	movieID = strings.TrimSpace(movieID)

	var updated *media.Collection
	err := service.transaction(ctx, func(tx store.Tx) error {
		collection, err := tx.GetCollection(id)
		if err != nil {
			return primary(err, ident.Collection, id)
		}

		if movieID == "" {
			return validationError("movie_id is required", map[string]any{"movie_id": "is required"})
		}
		if _, err := tx.GetMovie(movieID); err != nil {
			return primary(err, ident.Movie, movieID)
		}
		if collection.Contains(movieID) {
			return &Error{
				Code:    CodeAlreadyInCollection,
				Message: "movie is already in the collection",
				Details: map[string]any{"movie_id": movieID},
			}
		}

		collection.SetMovies(append(collection.MovieIDs, movieID))
		updated = collection
		return tx.UpdateCollection(collection)
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.COLLECTION_MOVIE_ADDED, event.Change{ID: id, RelatedID: movieID})
	return updated, nil
}

func (service *Service) RemoveMovieFromCollection(ctx context.Context, id string, movieID string) (*media.Collection, error) {
	var updated *media.Collection
	err := service.transaction(ctx, func(tx store.Tx) error {
		collection, err := tx.GetCollection(id)
		if err != nil {
			return primary(err, ident.Collection, id)
		}

		if !collection.Contains(movieID) {
			return &Error{
				Code:    CodeNotInCollection,
				Message: "movie is not in the collection",
				Details: map[string]any{"movie_id": movieID},
			}
		}

		collection.SetMovies(slices.DeleteFunc(collection.MovieIDs, func(m string) bool { return m == movieID }))
		updated = collection
		return tx.UpdateCollection(collection)
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.COLLECTION_MOVIE_REMOVED, event.Change{ID: id, RelatedID: movieID})
	return updated, nil
}

func checkCollectionMovies(tx store.Tx, movieIDs []string) error {
	missing := make([]string, 0)
	for _, movieID := range movieIDs {
		if _, err := tx.GetMovie(movieID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			missing = append(missing, movieID)
		}
	}

	if len(missing) > 0 {
		return referenceError("one or more movies do not exist", map[string]any{"movie_ids": missing})
	}

	return nil
}
