package media

import (
	"slices"
	"time"

	"github.com/hbomb79/Reel/internal/query"
)

type Collection struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	FilmCount   int       `json:"film_count" db:"film_count"`
	MovieIDs    []string  `json:"movie_ids" db:"-"`
}

func (collection *Collection) Clone() *Collection {
	c := *collection
	c.MovieIDs = slices.Clone(collection.MovieIDs)
	if c.MovieIDs == nil {
		c.MovieIDs = []string{}
	}

	return &c
}

func (collection *Collection) Contains(movieID string) bool {
	return slices.Contains(collection.MovieIDs, movieID)
}

// SetMovies replaces the movie list and brings the film count
// in line with it.
func (collection *Collection) SetMovies(movieIDs []string) {
	collection.MovieIDs = slices.Clone(movieIDs)
	if collection.MovieIDs == nil {
		collection.MovieIDs = []string{}
	}
	collection.FilmCount = len(collection.MovieIDs)
}

var CollectionSchema = query.Schema[*Collection]{
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	ID:           func(c *Collection) string { return c.ID },
	Fields: map[string]query.Field[*Collection]{
		"id":         {Kind: query.StringField, String: func(c *Collection) string { return c.ID }, DefaultOrder: query.Asc},
		"name":       {Kind: query.StringField, String: func(c *Collection) string { return c.Name }, DefaultOrder: query.Asc},
		"film_count": {Kind: query.NumberField, Number: func(c *Collection) float64 { return float64(c.FilmCount) }},
		"created_at": {Kind: query.TimeField, Time: func(c *Collection) time.Time { return c.CreatedAt }},
	},
}
