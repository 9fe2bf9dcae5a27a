package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
)

func (service *Service) ListGenres(ctx context.Context, params query.Params) (query.Result[*media.Genre], error) {
	var result query.Result[*media.Genre]
	err := service.view(ctx, func(tx store.Tx) error {
		res, err := tx.ListGenres(params)
		result = res
		return err
	})

	return result, err
}

func (service *Service) GetGenre(ctx context.Context, id string) (*media.Genre, error) {
	var genre *media.Genre
	err := service.view(ctx, func(tx store.Tx) error {
		g, err := tx.GetGenre(id)
		if err != nil {
			return primary(err, ident.Genre, id)
		}

		genre = g
		return nil
	})

	return genre, err
}

// GenreMovies returns a page of the movies tagged with the genre.
func (service *Service) GenreMovies(ctx context.Context, id string, params query.Params) (query.Result[*media.Movie], error) {
	var result query.Result[*media.Movie]
	err := service.view(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGenre(id); err != nil {
			return primary(err, ident.Genre, id)
		}

		res, err := tx.ListMovies(media.MovieFilter{GenreID: id}, params)
		result = res
		return err
	})

	return result, err
}

// CreateGenre inserts a new genre. Genre names are unique, ignoring case
// and surrounding whitespace.
func (service *Service) CreateGenre(ctx context.Context, input GenreInput) (*media.Genre, error) {
	genre := &media.Genre{}
	input.applyTo(genre)
	if err := validateGenre(genre); err != nil {
		return nil, err
	}

	err := service.transaction(ctx, func(tx store.Tx) error {
		if err := checkGenreName(tx, genre); err != nil {
			return err
		}

		id, err := tx.NextID(ident.Genre)
		if err != nil {
			return err
		}

		genre.ID = id
		return duplicateName(tx.InsertGenre(genre), genre.Name)
	})
	if err != nil {
		return nil, err
	}

	log.Emit(logger.NEW, "Created genre %s (%s)\n", genre.ID, genre.Name)
	service.dispatch(event.GENRE_CREATED, event.Change{ID: genre.ID})
	return genre, nil
}

func (service *Service) UpdateGenre(ctx context.Context, id string, input GenreInput) (*media.Genre, error) {
	var updated *media.Genre
	err := service.transaction(ctx, func(tx store.Tx) error {
		genre, err := tx.GetGenre(id)
		if err != nil {
			return primary(err, ident.Genre, id)
		}

		input.applyTo(genre)
		if err := validateGenre(genre); err != nil {
			return err
		}
		if err := checkGenreName(tx, genre); err != nil {
			return err
		}

		updated = genre
		return duplicateName(tx.UpdateGenre(genre), genre.Name)
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.GENRE_UPDATED, event.Change{ID: id})
	return updated, nil
}

// DeleteGenre deletes the genre, provided no movie references it.
func (service *Service) DeleteGenre(ctx context.Context, id string) error {
	err := service.transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGenre(id); err != nil {
			return primary(err, ident.Genre, id)
		}

		blocking, err := tx.CountMovies(media.MovieFilter{GenreID: id})
		if err != nil {
			return err
		}
		if blocking > 0 {
			return dependentsError(ident.Genre, blocking)
		}

		return tx.DeleteGenre(id)
	})
	if err != nil {
		return err
	}

	log.Emit(logger.REMOVE, "Deleted genre %s\n", id)
	service.dispatch(event.GENRE_DELETED, event.Change{ID: id})
	return nil
}

func checkGenreName(tx store.Tx, genre *media.Genre) error {
	existing, err := tx.FindGenreByName(genre.Name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	if existing.ID != genre.ID {
		return duplicateNameError(genre.Name, existing.ID)
	}

	return nil
}

// duplicateName converts a store conflict (raised by a concurrent writer
// or a unique index) in to a DUPLICATE_NAME error.
func duplicateName(err error, name string) error {
	if errors.Is(err, store.ErrConflict) {
		return duplicateNameError(name, "")
	}

	return err
}

func duplicateNameError(name string, existingID string) *Error {
	details := map[string]any{"name": name}
	if existingID != "" {
		details["existing_id"] = existingID
	}

	return &Error{
		Code:    CodeDuplicateName,
		Message: fmt.Sprintf("a genre named '%s' already exists", name),
		Details: details,
	}
}
