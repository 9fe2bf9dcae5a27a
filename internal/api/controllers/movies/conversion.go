package movies

import (
	"net/http"
	"slices"
	"time"

	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
)

type (
	Dto struct {
		ID          string        `json:"id"`
		Title       string        `json:"title"`
		Year        int           `json:"year"`
		DirectorID  string        `json:"director_id"`
		GenreIDs    []string      `json:"genre_ids"`
		Duration    *int          `json:"duration"`
		Synopsis    string        `json:"synopsis"`
		Status      media.Status  `json:"status"`
		Rating      *float64      `json:"rating"`
		Comment     string        `json:"comment"`
		PosterURL   string        `json:"poster_url"`
		TmdbID      *int          `json:"tmdb_id"`
		Tags        []string      `json:"tags"`
		DateAdded   time.Time     `json:"date_added"`
		DateWatched *time.Time    `json:"date_watched"`
		Links       hateoas.Links `json:"_links"`
	}

	// DetailDto is a movie with the records it references embedded. The
	// director is null if the movie references one which does not exist.
	DetailDto struct {
		Dto
		Director    *RelatedDto  `json:"director"`
		Genres      []RelatedDto `json:"genres"`
		Collections []RelatedDto `json:"collections"`
	}

	// RelatedDto is the abbreviated form of a record embedded in another.
	RelatedDto struct {
		ID   string       `json:"id"`
		Name string       `json:"name"`
		Link hateoas.Link `json:"_link"`
	}
)

func NewDto(movie *media.Movie) Dto {
	return Dto{
		ID:          movie.ID,
		Title:       movie.Title,
		Year:        movie.Year,
		DirectorID:  movie.DirectorID,
		GenreIDs:    nonNil(movie.GenreIDs),
		Duration:    movie.Duration,
		Synopsis:    movie.Synopsis,
		Status:      movie.Status,
		Rating:      movie.Rating,
		Comment:     movie.Comment,
		PosterURL:   movie.PosterURL,
		TmdbID:      movie.TmdbID,
		Tags:        nonNil(movie.Tags),
		DateAdded:   movie.DateAdded,
		DateWatched: movie.DateWatched,
		Links:       hateoas.Movie(movie),
	}
}

func NewDetailDto(detail *catalog.MovieDetail) DetailDto {
	dto := DetailDto{
		Dto: NewDto(detail.Movie),
		Genres: util.ApplyConversion(detail.Genres, func(g *media.Genre) RelatedDto {
			return related("genres", g.ID, g.Name)
		}),
		Collections: util.ApplyConversion(detail.Collections, func(c *media.Collection) RelatedDto {
			return related("collections", c.ID, c.Name)
		}),
	}
	if detail.Director != nil {
		director := related("directors", detail.Director.ID, detail.Director.FullName())
		dto.Director = &director
	}

	return dto
}

func related(resource string, id string, name string) RelatedDto {
	return RelatedDto{
		ID:   id,
		Name: name,
		Link: hateoas.NewLink(hateoas.BasePath+"/"+resource+"/"+id, http.MethodGet, "self"),
	}
}

func (request Request) toInput() catalog.MovieInput {
	return catalog.MovieInput{
		Title:       request.Title,
		Year:        request.Year,
		DirectorID:  request.DirectorID,
		GenreIDs:    request.GenreIDs,
		Duration:    request.Duration,
		Synopsis:    request.Synopsis,
		Status:      request.Status,
		Rating:      request.Rating,
		Comment:     request.Comment,
		PosterURL:   request.PosterURL,
		TmdbID:      request.TmdbID,
		Tags:        request.Tags,
		DateWatched: util.TimePtr(request.DateWatched),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return slices.Clone(values)
}
