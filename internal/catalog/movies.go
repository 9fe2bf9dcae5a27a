package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
)

// MovieDetail is a movie alongside the records it references, and the
// collections which reference it. Director is nil if the movie references
// a director which no longer exists.
type MovieDetail struct {
	Movie       *media.Movie
	Director    *media.Director
	Genres      []*media.Genre
	Collections []*media.Collection
}

// ListMovies returns the page of movies matching the filter. Filtering by
// a collection which does not exist yields an empty result.
func (service *Service) ListMovies(ctx context.Context, filter media.MovieFilter, params query.Params) (query.Result[*media.Movie], error) {
	var result query.Result[*media.Movie]
	err := service.view(ctx, func(tx store.Tx) error {
		if filter.CollectionID != "" {
			collection, err := tx.GetCollection(filter.CollectionID)
			if errors.Is(err, store.ErrNotFound) {
				result = query.Result[*media.Movie]{Items: []*media.Movie{}, Total: 0}
				return nil
			} else if err != nil {
				return err
			}

			filter.CollectionMovieIDs = collection.MovieIDs
		}

		res, err := tx.ListMovies(filter, params)
		result = res
		return err
	})

	return result, err
}

func (service *Service) GetMovie(ctx context.Context, id string) (*MovieDetail, error) {
	var detail *MovieDetail
	err := service.view(ctx, func(tx store.Tx) error {
		movie, err := tx.GetMovie(id)
		if err != nil {
			return primary(err, ident.Movie, id)
		}

		detail = &MovieDetail{Movie: movie, Genres: make([]*media.Genre, 0, len(movie.GenreIDs))}
		if director, err := tx.GetDirector(movie.DirectorID); err == nil {
			detail.Director = director
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		for _, genreID := range movie.GenreIDs {
			if genre, err := tx.GetGenre(genreID); err == nil {
				detail.Genres = append(detail.Genres, genre)
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		detail.Collections, err = tx.CollectionsContaining(id)
		return err
	})

	return detail, err
}

// CreateMovie validates and inserts a new movie, incrementing the film
// count of its director and each of its genres.
func (service *Service) CreateMovie(ctx context.Context, input MovieInput) (*media.Movie, error) {
	movie := &media.Movie{Status: media.ToWatch, GenreIDs: []string{}, Tags: []string{}}
	input.applyTo(movie)
	movie.DateAdded = service.now()
	if err := validateMovie(movie, movie.DateAdded); err != nil {
		return nil, err
	}

	err := service.transaction(ctx, func(tx store.Tx) error {
		if err := checkMovieReferences(tx, movie); err != nil {
			return err
		}

		id, err := tx.NextID(ident.Movie)
		if err != nil {
			return err
		}

		movie.ID = id
		if err := tx.InsertMovie(movie); err != nil {
			return err
		}

		return adjustMovieCounters(tx, movie, 1)
	})
	if err != nil {
		return nil, err
	}

	log.Emit(logger.NEW, "Created %s\n", movie)
	service.dispatch(event.MOVIE_CREATED, event.Change{ID: movie.ID})
	return movie, nil
}

// UpdateMovie merges the input in to the existing movie. If the director
// or genres change, only the counters of the records which gained or lost
// the movie are adjusted.
func (service *Service) UpdateMovie(ctx context.Context, id string, input MovieInput) (*media.Movie, error) {
	var updated *media.Movie
	err := service.transaction(ctx, func(tx store.Tx) error {
		existing, err := tx.GetMovie(id)
		if err != nil {
			return primary(err, ident.Movie, id)
		}

		movie := existing.Clone()
		input.applyTo(movie)
		if err := validateMovie(movie, service.now()); err != nil {
			return err
		}
		if err := checkMovieReferences(tx, movie); err != nil {
			return err
		}

		if err := tx.UpdateMovie(movie); err != nil {
			return err
		}

		if movie.DirectorID != existing.DirectorID {
			if err := adjustCounter(tx, ident.Director, existing.DirectorID, -1); err != nil {
				return err
			}
			if err := adjustCounter(tx, ident.Director, movie.DirectorID, 1); err != nil {
				return err
			}
		}

		for _, genreID := range existing.GenreIDs {
			if !movie.HasGenre(genreID) {
				if err := adjustCounter(tx, ident.Genre, genreID, -1); err != nil {
					return err
				}
			}
		}
		for _, genreID := range movie.GenreIDs {
			if !existing.HasGenre(genreID) {
				if err := adjustCounter(tx, ident.Genre, genreID, 1); err != nil {
					return err
				}
			}
		}

		updated = movie
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.MOVIE_UPDATED, event.Change{ID: id})
	return updated, nil
}

// DeleteMovie removes the movie from every collection containing it, then
// deletes it and decrements the counters of its director and genres.
func (service *Service) DeleteMovie(ctx context.Context, id string) error {
	err := service.transaction(ctx, func(tx store.Tx) error {
		movie, err := tx.GetMovie(id)
		if err != nil {
			return primary(err, ident.Movie, id)
		}

		collections, err := tx.CollectionsContaining(id)
		if err != nil {
			return err
		}
		for _, collection := range collections {
			collection.SetMovies(slices.DeleteFunc(collection.MovieIDs, func(movieID string) bool { return movieID == id }))
			if err := tx.UpdateCollection(collection); err != nil {
				return err
			}
		}

		if err := tx.DeleteMovie(id); err != nil {
			return err
		}

		return adjustMovieCounters(tx, movie, -1)
	})
	if err != nil {
		return err
	}

	log.Emit(logger.REMOVE, "Deleted movie %s\n", id)
	service.dispatch(event.MOVIE_DELETED, event.Change{ID: id})
	return nil
}

func checkMovieReferences(tx store.Tx, movie *media.Movie) error {
	if _, err := tx.GetDirector(movie.DirectorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return referenceError("director not found", map[string]any{"director_id": movie.DirectorID})
		}

		return err
	}

	missing := make([]string, 0)
	for _, genreID := range movie.GenreIDs {
		if _, err := tx.GetGenre(genreID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			missing = append(missing, genreID)
		}
	}
	if len(missing) > 0 {
		return referenceError("one or more genres do not exist", map[string]any{"genre_ids": missing})
	}

	return nil
}

func adjustMovieCounters(tx store.Tx, movie *media.Movie, delta int) error {
	if err := adjustCounter(tx, ident.Director, movie.DirectorID, delta); err != nil {
		return fmt.Errorf("failed to adjust director film count: %w", err)
	}

	for _, genreID := range movie.GenreIDs {
		if err := adjustCounter(tx, ident.Genre, genreID, delta); err != nil {
			return fmt.Errorf("failed to adjust genre film count: %w", err)
		}
	}

	return nil
}
