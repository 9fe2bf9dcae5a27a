package media

import (
	"strings"

	"github.com/hbomb79/Reel/internal/query"
)

type Genre struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	FilmCount   int    `json:"film_count" db:"film_count"`
}

func (genre *Genre) Clone() *Genre {
	c := *genre
	return &c
}

// NormalizeGenreName is the form used to compare genre names for
// uniqueness.
func NormalizeGenreName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var GenreSchema = query.Schema[*Genre]{
	DefaultSort:  "film_count",
	DefaultOrder: query.Desc,
	ID:           func(g *Genre) string { return g.ID },
	Fields: map[string]query.Field[*Genre]{
		"id":         {Kind: query.StringField, String: func(g *Genre) string { return g.ID }, DefaultOrder: query.Asc},
		"name":       {Kind: query.StringField, String: func(g *Genre) string { return g.Name }, DefaultOrder: query.Asc},
		"film_count": {Kind: query.NumberField, Number: func(g *Genre) float64 { return float64(g.FilmCount) }},
	},
}
