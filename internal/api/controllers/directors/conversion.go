package directors

import (
	"time"

	"github.com/hbomb79/Reel/internal/api/controllers/movies"
	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
)

type (
	Dto struct {
		ID          string        `json:"id"`
		LastName    string        `json:"last_name"`
		FirstName   string        `json:"first_name"`
		FullName    string        `json:"full_name"`
		BirthDate   *time.Time    `json:"birth_date"`
		Nationality string        `json:"nationality"`
		Biography   string        `json:"biography"`
		PhotoURL    string        `json:"photo_url"`
		FilmCount   int           `json:"film_count"`
		Links       hateoas.Links `json:"_links"`
	}

	// DetailDto is a director alongside every movie they directed, oldest
	// first.
	DetailDto struct {
		Dto
		Movies []movies.Dto `json:"movies"`
	}
)

func NewDto(director *media.Director) Dto {
	return Dto{
		ID:          director.ID,
		LastName:    director.LastName,
		FirstName:   director.FirstName,
		FullName:    director.FullName(),
		BirthDate:   director.BirthDate,
		Nationality: director.Nationality,
		Biography:   director.Biography,
		PhotoURL:    director.PhotoURL,
		FilmCount:   director.FilmCount,
		Links:       hateoas.Director(director),
	}
}

func NewDetailDto(detail *catalog.DirectorDetail) DetailDto {
	return DetailDto{
		Dto:    NewDto(detail.Director),
		Movies: util.ApplyConversion(detail.Movies, movies.NewDto),
	}
}

func (request Request) toInput() catalog.DirectorInput {
	return catalog.DirectorInput{
		LastName:    request.LastName,
		FirstName:   request.FirstName,
		BirthDate:   util.TimePtr(request.BirthDate),
		Nationality: request.Nationality,
		Biography:   request.Biography,
		PhotoURL:    request.PhotoURL,
	}
}
