package collections

import (
	"slices"
	"time"

	"github.com/hbomb79/Reel/internal/api/controllers/movies"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
)

type (
	Dto struct {
		ID          string        `json:"id"`
		Name        string        `json:"name"`
		Description string        `json:"description"`
		IsPublic    bool          `json:"is_public"`
		CreatedAt   time.Time     `json:"created_at"`
		FilmCount   int           `json:"film_count"`
		MovieIDs    []string      `json:"movie_ids"`
		Links       hateoas.Links `json:"_links"`
	}

	MoviesDto struct {
		Total  int           `json:"total"`
		Movies []movies.Dto  `json:"movies"`
		Links  hateoas.Links `json:"_links"`
	}
)

func NewDto(collection *media.Collection) Dto {
	movieIDs := slices.Clone(collection.MovieIDs)
	if movieIDs == nil {
		movieIDs = []string{}
	}

	return Dto{
		ID:          collection.ID,
		Name:        collection.Name,
		Description: collection.Description,
		IsPublic:    collection.IsPublic,
		CreatedAt:   collection.CreatedAt,
		FilmCount:   collection.FilmCount,
		MovieIDs:    movieIDs,
		Links:       hateoas.Collection(collection),
	}
}

func (request Request) toInput() catalog.CollectionInput {
	return catalog.CollectionInput{
		Name:        request.Name,
		Description: request.Description,
		IsPublic:    request.IsPublic,
		MovieIDs:    request.MovieIDs,
	}
}
