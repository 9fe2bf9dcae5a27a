package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/hbomb79/Reel/internal/media"
)

// The inputs below carry the client-writable fields of each entity. A nil
// field is left unchanged on update, and takes its default on create.
// Identifiers, creation dates and film counts are never client-writable.
type (
	MovieInput struct {
		Title       *string
		Year        *int
		DirectorID  *string
		GenreIDs    *[]string
		Duration    *int
		Synopsis    *string
		Status      *media.Status
		Rating      *float64
		Comment     *string
		PosterURL   *string
		TmdbID      *int
		Tags        *[]string
		DateWatched *time.Time
	}

	DirectorInput struct {
		LastName    *string
		FirstName   *string
		BirthDate   *time.Time
		Nationality *string
		Biography   *string
		PhotoURL    *string
	}

	GenreInput struct {
		Name        *string
		Description *string
	}

	CollectionInput struct {
		Name        *string
		Description *string
		IsPublic    *bool
		MovieIDs    *[]string
	}
)

func (input MovieInput) applyTo(movie *media.Movie) {
	set(&movie.Title, input.Title, strings.TrimSpace)
	set(&movie.Year, input.Year, nil)
	set(&movie.DirectorID, input.DirectorID, strings.TrimSpace)
	set(&movie.Synopsis, input.Synopsis, nil)
	set(&movie.Status, input.Status, nil)
	set(&movie.Comment, input.Comment, nil)
	set(&movie.PosterURL, input.PosterURL, strings.TrimSpace)
	if input.GenreIDs != nil {
		movie.GenreIDs = trimAll(*input.GenreIDs)
	}
	if input.Tags != nil {
		movie.Tags = normalizeTags(*input.Tags)
	}
	if input.Duration != nil {
		movie.Duration = clone(input.Duration)
	}
	if input.Rating != nil {
		movie.Rating = clone(input.Rating)
	}
	if input.TmdbID != nil {
		movie.TmdbID = clone(input.TmdbID)
	}
	if input.DateWatched != nil {
		movie.DateWatched = clone(input.DateWatched)
	}
}

func (input DirectorInput) applyTo(director *media.Director) {
	set(&director.LastName, input.LastName, strings.TrimSpace)
	set(&director.FirstName, input.FirstName, strings.TrimSpace)
	set(&director.Nationality, input.Nationality, strings.TrimSpace)
	set(&director.Biography, input.Biography, nil)
	set(&director.PhotoURL, input.PhotoURL, strings.TrimSpace)
	if input.BirthDate != nil {
		director.BirthDate = clone(input.BirthDate)
	}
}

func (input GenreInput) applyTo(genre *media.Genre) {
	set(&genre.Name, input.Name, strings.TrimSpace)
	set(&genre.Description, input.Description, nil)
}

func (input CollectionInput) applyTo(collection *media.Collection) {
	set(&collection.Name, input.Name, strings.TrimSpace)
	set(&collection.Description, input.Description, nil)
	set(&collection.IsPublic, input.IsPublic, nil)
	if input.MovieIDs != nil {
		collection.SetMovies(trimAll(*input.MovieIDs))
	}
}

// validateMovie checks the field level rules of a movie. References to
// other records are checked separately, inside the write transaction.
func validateMovie(movie *media.Movie, now time.Time) error {
	problems := map[string]any{}
	if movie.Title == "" {
		problems["title"] = "is required"
	}
	if maxYear := media.MaxFilmYear(now); movie.Year < media.FirstFilmYear || movie.Year > maxYear {
		problems["year"] = fmt.Sprintf("must be between %d and %d", media.FirstFilmYear, maxYear)
	}
	if movie.DirectorID == "" {
		problems["director_id"] = "is required"
	}
	if !movie.Status.Valid() {
		problems["status"] = fmt.Sprintf("must be one of %s, %s or %s", media.ToWatch, media.Watched, media.InProgress)
	}
	if movie.Duration != nil && *movie.Duration < 1 {
		problems["duration"] = "must be at least 1 minute"
	}
	if movie.Rating != nil && (*movie.Rating < 0 || *movie.Rating > 10) {
		problems["rating"] = "must be between 0 and 10"
	}
	if dup, ok := firstDuplicate(movie.GenreIDs); ok {
		problems["genre_ids"] = fmt.Sprintf("contains duplicate genre %s", dup)
	}

	if len(problems) > 0 {
		return validationError("movie is invalid", problems)
	}

	return nil
}

func validateDirector(director *media.Director) error {
	problems := map[string]any{}
	if director.LastName == "" {
		problems["last_name"] = "is required"
	}
	if director.FirstName == "" {
		problems["first_name"] = "is required"
	}

	if len(problems) > 0 {
		return validationError("director is invalid", problems)
	}

	return nil
}

func validateGenre(genre *media.Genre) error {
	if genre.Name == "" {
		return validationError("genre is invalid", map[string]any{"name": "is required"})
	}

	return nil
}

func validateCollection(collection *media.Collection) error {
	problems := map[string]any{}
	if collection.Name == "" {
		problems["name"] = "is required"
	}
	if dup, ok := firstDuplicate(collection.MovieIDs); ok {
		problems["movie_ids"] = fmt.Sprintf("contains duplicate movie %s", dup)
	}

	if len(problems) > 0 {
		return validationError("collection is invalid", problems)
	}

	return nil
}

func set[T any](dst *T, src *T, normalize func(T) T) {
	if src == nil {
		return
	}

	if normalize != nil {
		*dst = normalize(*src)
	} else {
		*dst = *src
	}
}

func clone[T any](p *T) *T {
	v := *p
	return &v
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}

	return out
}

// normalizeTags trims every tag, dropping empty and repeated
// tags while keeping the first occurrence order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}

	return "", false
}
