package media

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hbomb79/Reel/internal/query"
)

type Status string

const (
	ToWatch    Status = "to-watch"
	Watched    Status = "watched"
	InProgress Status = "in-progress"
)

// FirstFilmYear is the earliest release year a movie may have.
const FirstFilmYear = 1888

func (s Status) Valid() bool {
	switch s {
	case ToWatch, Watched, InProgress:
		return true
	}

	return false
}

// MaxFilmYear is the latest release year accepted at the
// time provided.
func MaxFilmYear(now time.Time) int { return now.Year() + 5 }

type Movie struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Year        int        `json:"year" db:"year"`
	DirectorID  string     `json:"director_id" db:"director_id"`
	GenreIDs    []string   `json:"genre_ids" db:"-"`
	Duration    *int       `json:"duration,omitempty" db:"duration"`
	Synopsis    string     `json:"synopsis,omitempty" db:"synopsis"`
	Status      Status     `json:"status" db:"status"`
	Rating      *float64   `json:"rating,omitempty" db:"rating"`
	Comment     string     `json:"comment,omitempty" db:"comment"`
	PosterURL   string     `json:"poster_url,omitempty" db:"poster_url"`
	TmdbID      *int       `json:"tmdb_id,omitempty" db:"tmdb_id"`
	Tags        []string   `json:"tags" db:"-"`
	DateAdded   time.Time  `json:"date_added" db:"date_added"`
	DateWatched *time.Time `json:"date_watched,omitempty" db:"date_watched"`
}

func (movie *Movie) String() string {
	return fmt.Sprintf("Movie{ID=%s Title=%s Year=%d}", movie.ID, movie.Title, movie.Year)
}

// Clone returns a deep copy of the movie.
func (movie *Movie) Clone() *Movie {
	c := *movie
	c.GenreIDs = slices.Clone(movie.GenreIDs)
	c.Tags = slices.Clone(movie.Tags)
	c.Duration = clonePtr(movie.Duration)
	c.Rating = clonePtr(movie.Rating)
	c.TmdbID = clonePtr(movie.TmdbID)
	c.DateWatched = clonePtr(movie.DateWatched)
	if c.GenreIDs == nil {
		c.GenreIDs = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	return &c
}

func (movie *Movie) HasGenre(genreID string) bool {
	return slices.Contains(movie.GenreIDs, genreID)
}

// MovieFilter holds the conjunctive filters which can be applied
// when listing movies. Empty fields do not filter.
//
// CollectionMovieIDs is populated by the caller after resolving
// CollectionID, as membership requires a lookup against the collection.
type MovieFilter struct {
	Status       Status
	GenreID      string
	DirectorID   string
	CollectionID string
	Search       string

	CollectionMovieIDs []string
}

// Matches reports whether the movie satisfies every filter. The
// CollectionID filter is honoured through CollectionMovieIDs.
func (filter MovieFilter) Matches(movie *Movie) bool {
	if filter.Status != "" && movie.Status != filter.Status {
		return false
	}
	if filter.GenreID != "" && !movie.HasGenre(filter.GenreID) {
		return false
	}
	if filter.DirectorID != "" && movie.DirectorID != filter.DirectorID {
		return false
	}
	if filter.CollectionID != "" && !slices.Contains(filter.CollectionMovieIDs, movie.ID) {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(movie.Title), strings.ToLower(strings.TrimSpace(filter.Search))) {
		return false
	}

	return true
}

// QueryValues returns the filters as URL query parameters, suitable for
// preserving them in pagination links.
func (filter MovieFilter) QueryValues() map[string]string {
	values := map[string]string{}
	if filter.Status != "" {
		values["status"] = string(filter.Status)
	}
	if filter.GenreID != "" {
		values["genre_id"] = filter.GenreID
	}
	if filter.DirectorID != "" {
		values["director_id"] = filter.DirectorID
	}
	if filter.CollectionID != "" {
		values["collection_id"] = filter.CollectionID
	}
	if filter.Search != "" {
		values["search"] = filter.Search
	}

	return values
}

var MovieSchema = query.Schema[*Movie]{
	DefaultSort:  "date_added",
	DefaultOrder: query.Desc,
	ID:           func(m *Movie) string { return m.ID },
	Fields: map[string]query.Field[*Movie]{
		"id":           {Kind: query.StringField, String: func(m *Movie) string { return m.ID }},
		"title":        {Kind: query.StringField, String: func(m *Movie) string { return m.Title }},
		"status":       {Kind: query.StringField, String: func(m *Movie) string { return string(m.Status) }},
		"year":         {Kind: query.NumberField, Number: func(m *Movie) float64 { return float64(m.Year) }},
		"duration":     {Kind: query.NumberField, Number: func(m *Movie) float64 { return float64(derefOr(m.Duration, 0)) }},
		"rating":       {Kind: query.NumberField, Number: func(m *Movie) float64 { return derefOr(m.Rating, 0) }},
		"date_added":   {Kind: query.TimeField, Time: func(m *Movie) time.Time { return m.DateAdded }},
		"date_watched": {Kind: query.TimeField, Time: func(m *Movie) time.Time { return derefOr(m.DateWatched, time.Time{}) }},
	},
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p
	return &v
}

func derefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}

	return *p
}
