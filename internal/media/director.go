package media

import (
	"strings"
	"time"

	"github.com/hbomb79/Reel/internal/query"
)

type Director struct {
	ID          string     `json:"id" db:"id"`
	LastName    string     `json:"last_name" db:"last_name"`
	FirstName   string     `json:"first_name" db:"first_name"`
	BirthDate   *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Nationality string     `json:"nationality,omitempty" db:"nationality"`
	Biography   string     `json:"biography,omitempty" db:"biography"`
	PhotoURL    string     `json:"photo_url,omitempty" db:"photo_url"`
	FilmCount   int        `json:"film_count" db:"film_count"`
}

// FullName joins the first and last name, omitting either if blank.
func (director *Director) FullName() string {
	return strings.TrimSpace(director.FirstName + " " + director.LastName)
}

func (director *Director) Clone() *Director {
	c := *director
	c.BirthDate = clonePtr(director.BirthDate)

	return &c
}

var DirectorSchema = query.Schema[*Director]{
	DefaultSort:  "last_name",
	DefaultOrder: query.Asc,
	ID:           func(d *Director) string { return d.ID },
	Fields: map[string]query.Field[*Director]{
		"id":          {Kind: query.StringField, String: func(d *Director) string { return d.ID }},
		"last_name":   {Kind: query.StringField, String: func(d *Director) string { return d.LastName }},
		"first_name":  {Kind: query.StringField, String: func(d *Director) string { return d.FirstName }},
		"nationality": {Kind: query.StringField, String: func(d *Director) string { return d.Nationality }},
		"birth_date":  {Kind: query.TimeField, Time: func(d *Director) time.Time { return derefOr(d.BirthDate, time.Time{}) }},
		"film_count":  {Kind: query.NumberField, Number: func(d *Director) float64 { return float64(d.FilmCount) }, DefaultOrder: query.Desc},
	},
}
