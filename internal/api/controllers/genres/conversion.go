package genres

import (
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
)

type Dto struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	FilmCount   int           `json:"film_count"`
	Links       hateoas.Links `json:"_links"`
}

func NewDto(genre *media.Genre) Dto {
	return Dto{
		ID:          genre.ID,
		Name:        genre.Name,
		Description: genre.Description,
		FilmCount:   genre.FilmCount,
		Links:       hateoas.Genre(genre),
	}
}

func (request Request) toInput() catalog.GenreInput {
	return catalog.GenreInput{Name: request.Name, Description: request.Description}
}
