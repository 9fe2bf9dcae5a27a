package importer

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hbomb79/Reel/internal/media"
	"github.com/mitchellh/mapstructure"
)

// The legacy data files are JSON arrays of records keyed in French. Records
// are decoded loosely: numbers given as strings are accepted, and unknown
// keys (such as createdAt from older exports) are ignored.
type (
	legacyDirector struct {
		ID          string     `mapstructure:"id"`
		LastName    string     `mapstructure:"nom"`
		FirstName   string     `mapstructure:"prenom"`
		BirthDate   *time.Time `mapstructure:"date_naissance"`
		Nationality string     `mapstructure:"nationalite"`
		Biography   string     `mapstructure:"biographie"`
		PhotoURL    string     `mapstructure:"photo_url"`
	}

	legacyGenre struct {
		ID          string `mapstructure:"id"`
		Name        string `mapstructure:"nom"`
		Description string `mapstructure:"description"`
	}

	legacyMovie struct {
		ID          string     `mapstructure:"id"`
		Title       string     `mapstructure:"titre"`
		Year        int        `mapstructure:"annee"`
		DirectorID  string     `mapstructure:"director_id"`
		GenreIDs    []string   `mapstructure:"genre_ids"`
		Duration    *int       `mapstructure:"duree"`
		Synopsis    string     `mapstructure:"synopsis"`
		Status      string     `mapstructure:"statut"`
		Rating      *float64   `mapstructure:"note"`
		Comment     string     `mapstructure:"commentaire"`
		PosterURL   string     `mapstructure:"affiche_url"`
		TmdbID      *int       `mapstructure:"tmdb_id"`
		Tags        []string   `mapstructure:"tags"`
		DateAdded   *time.Time `mapstructure:"date_ajout"`
		DateWatched *time.Time `mapstructure:"date_visionnage"`
	}

	legacyCollection struct {
		ID          string     `mapstructure:"id"`
		Name        string     `mapstructure:"nom"`
		Description string     `mapstructure:"description"`
		IsPublic    bool       `mapstructure:"is_public"`
		CreatedAt   *time.Time `mapstructure:"date_creation"`
		MovieIDs    []string   `mapstructure:"movie_ids"`
	}
)

var legacyStatuses = map[string]media.Status{
	"a_voir":   media.ToWatch,
	"vu":       media.Watched,
	"en_cours": media.InProgress,
}

// decodeRecord decodes a single raw JSON object in to the legacy struct
// provided.
func decodeRecord(raw map[string]any, dst any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       legacyTimeHook,
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

// legacyTimeHook parses the timestamps found in the legacy files, which are
// either full ISO-8601 timestamps or bare dates.
func legacyTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	value := strings.TrimSpace(data.(string))
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return nil, fmt.Errorf("unrecognised date '%s'", value)
}

func (d *legacyDirector) toDirector() *media.Director {
	return &media.Director{
		ID:          d.ID,
		LastName:    strings.TrimSpace(d.LastName),
		FirstName:   strings.TrimSpace(d.FirstName),
		BirthDate:   d.BirthDate,
		Nationality: d.Nationality,
		Biography:   d.Biography,
		PhotoURL:    d.PhotoURL,
	}
}

func (g *legacyGenre) toGenre() *media.Genre {
	return &media.Genre{ID: g.ID, Name: strings.TrimSpace(g.Name), Description: g.Description}
}

func (m *legacyMovie) toMovie(now time.Time) (*media.Movie, error) {
	status := media.ToWatch
	if m.Status != "" {
		s, ok := legacyStatuses[m.Status]
		if !ok {
			// Accept records which were already migrated to the new values
			if s = media.Status(m.Status); !s.Valid() {
				return nil, fmt.Errorf("unknown status '%s'", m.Status)
			}
		}
		status = s
	}

	dateAdded := now
	if m.DateAdded != nil {
		dateAdded = *m.DateAdded
	}

	return &media.Movie{
		ID:          m.ID,
		Title:       strings.TrimSpace(m.Title),
		Year:        m.Year,
		DirectorID:  m.DirectorID,
		GenreIDs:    m.GenreIDs,
		Duration:    m.Duration,
		Synopsis:    m.Synopsis,
		Status:      status,
		Rating:      m.Rating,
		Comment:     m.Comment,
		PosterURL:   m.PosterURL,
		TmdbID:      m.TmdbID,
		Tags:        m.Tags,
		DateAdded:   dateAdded,
		DateWatched: m.DateWatched,
	}, nil
}

func (c *legacyCollection) toCollection(now time.Time) *media.Collection {
	createdAt := now
	if c.CreatedAt != nil {
		createdAt = *c.CreatedAt
	}

	collection := &media.Collection{
		ID:          c.ID,
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		IsPublic:    c.IsPublic,
		CreatedAt:   createdAt,
	}
	collection.SetMovies(c.MovieIDs)

	return collection
}
