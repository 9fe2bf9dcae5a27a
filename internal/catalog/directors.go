package catalog

import (
	"context"
	"fmt"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
)

// DirectorDetail is a director alongside every movie they directed,
// ordered by release year.
type DirectorDetail struct {
	Director *media.Director
	Movies   []*media.Movie
}

func (service *Service) ListDirectors(ctx context.Context, params query.Params) (query.Result[*media.Director], error) {
	var result query.Result[*media.Director]
	err := service.view(ctx, func(tx store.Tx) error {
		res, err := tx.ListDirectors(params)
		result = res
		return err
	})

	return result, err
}

func (service *Service) GetDirector(ctx context.Context, id string) (*DirectorDetail, error) {
	var detail *DirectorDetail
	err := service.view(ctx, func(tx store.Tx) error {
		director, err := tx.GetDirector(id)
		if err != nil {
			return primary(err, ident.Director, id)
		}

		movies, err := tx.AllMovies()
		if err != nil {
			return err
		}

		filter := media.MovieFilter{DirectorID: id}
		directed := make([]*media.Movie, 0)
		for _, movie := range movies {
			if filter.Matches(movie) {
				directed = append(directed, movie)
			}
		}
		query.Sort(directed, media.MovieSchema, "year", query.Asc)

		detail = &DirectorDetail{Director: director, Movies: directed}
		return nil
	})

	return detail, err
}

// DirectorMovies returns a page of the movies directed by the director.
func (service *Service) DirectorMovies(ctx context.Context, id string, params query.Params) (query.Result[*media.Movie], error) {
	var result query.Result[*media.Movie]
	err := service.view(ctx, func(tx store.Tx) error {
		if _, err := tx.GetDirector(id); err != nil {
			return primary(err, ident.Director, id)
		}

		res, err := tx.ListMovies(media.MovieFilter{DirectorID: id}, params)
		result = res
		return err
	})

	return result, err
}

func (service *Service) CreateDirector(ctx context.Context, input DirectorInput) (*media.Director, error) {
	director := &media.Director{}
	input.applyTo(director)
	if err := validateDirector(director); err != nil {
		return nil, err
	}

	err := service.transaction(ctx, func(tx store.Tx) error {
		id, err := tx.NextID(ident.Director)
		if err != nil {
			return err
		}

		director.ID = id
		return tx.InsertDirector(director)
	})
	if err != nil {
		return nil, err
	}

	log.Emit(logger.NEW, "Created director %s (%s)\n", director.ID, director.FullName())
	service.dispatch(event.DIRECTOR_CREATED, event.Change{ID: director.ID})
	return director, nil
}

func (service *Service) UpdateDirector(ctx context.Context, id string, input DirectorInput) (*media.Director, error) {
	var updated *media.Director
	err := service.transaction(ctx, func(tx store.Tx) error {
		director, err := tx.GetDirector(id)
		if err != nil {
			return primary(err, ident.Director, id)
		}

		input.applyTo(director)
		if err := validateDirector(director); err != nil {
			return err
		}

		updated = director
		return tx.UpdateDirector(director)
	})
	if err != nil {
		return nil, err
	}

	service.dispatch(event.DIRECTOR_UPDATED, event.Change{ID: id})
	return updated, nil
}

// DeleteDirector deletes the director, provided no movie references them.
func (service *Service) DeleteDirector(ctx context.Context, id string) error {
	err := service.transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetDirector(id); err != nil {
			return primary(err, ident.Director, id)
		}

		blocking, err := tx.CountMovies(media.MovieFilter{DirectorID: id})
		if err != nil {
			return err
		}
		if blocking > 0 {
			return dependentsError(ident.Director, blocking)
		}

		return tx.DeleteDirector(id)
	})
	if err != nil {
		return err
	}

	log.Emit(logger.REMOVE, "Deleted director %s\n", id)
	service.dispatch(event.DIRECTOR_DELETED, event.Change{ID: id})
	return nil
}

func dependentsError(kind ident.Kind, blocking int) *Error {
	return &Error{
		Code:    CodeHasDependents,
		Message: fmt.Sprintf("cannot delete %s: %d movie(s) still reference it", kind, blocking),
		Details: map[string]any{"blocking_movies": blocking},
	}
}
