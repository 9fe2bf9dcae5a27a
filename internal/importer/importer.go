// Package importer loads the catalog from the legacy JSON data files
// (directors.json, genres.json, movies.json and collections.json). Records
// keep their identifiers. Film counters found in the files are discarded and
// recomputed once the import has been committed.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/mitchellh/go-homedir"
)

var log = logger.Get("Importer")

const (
	directorsFile   = "directors.json"
	genresFile      = "genres.json"
	moviesFile      = "movies.json"
	collectionsFile = "collections.json"
)

type (
	Recounter interface {
		Recount(ctx context.Context) (*catalog.RecountReport, error)
	}

	// Skipped describes a record which was not imported.
	Skipped struct {
		File   string `json:"file"`
		ID     string `json:"id"`
		Reason string `json:"reason"`
	}

	Report struct {
		Directors   int       `json:"directors"`
		Genres      int       `json:"genres"`
		Movies      int       `json:"movies"`
		Collections int       `json:"collections"`
		Skipped     []Skipped `json:"skipped"`
		Corrections int       `json:"corrections"`
	}

	Importer struct {
		store     store.Store
		recounter Recounter
		now       func() time.Time
	}

	// records holds the raw objects read from each of the data files.
	records map[string][]map[string]any
)

func New(store store.Store, recounter Recounter) *Importer {
	return &Importer{store: store, recounter: recounter, now: func() time.Time { return time.Now().UTC() }}
}

// ImportDir imports every data file found in dir. Missing files are
// skipped, as are individual records which are invalid, reference records
// which do not exist, or clash with a record already in the catalog. The
// import itself is a single transaction.
func (importer *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand import directory: %w", err)
	}

	raw := make(records)
	for _, name := range []string{directorsFile, genresFile, moviesFile, collectionsFile} {
		objects, err := readFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		raw[name] = objects
	}

	log.Emit(logger.NEW, "Importing legacy catalog from %s\n", dir)
	report := &Report{}
	if err := importer.store.Transaction(ctx, func(tx store.Tx) error {
		*report = Report{Skipped: make([]Skipped, 0)}
		return importer.importAll(tx, raw, report)
	}); err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	recount, err := importer.recounter.Recount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to recount imported catalog: %w", err)
	}
	report.Corrections = len(recount.Corrections)

	for _, skip := range report.Skipped {
		log.Warnf("Skipped %s record '%s': %s\n", skip.File, skip.ID, skip.Reason)
	}
	log.Emit(logger.SUCCESS, "Imported %d directors, %d genres, %d movies and %d collections (%d skipped)\n",
		report.Directors, report.Genres, report.Movies, report.Collections, len(report.Skipped))

	return report, nil
}

func readFile(path string) ([]map[string]any, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warnf("Legacy data file %s does not exist, skipping\n", path)
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(contents, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return objects, nil
}

func (importer *Importer) importAll(tx store.Tx, raw records, report *Report) error {
	skip := func(file string, obj map[string]any, reason string) {
		id, _ := obj["id"].(string)
		report.Skipped = append(report.Skipped, Skipped{File: file, ID: id, Reason: reason})
	}

	for _, obj := range raw[directorsFile] {
		var legacy legacyDirector
		if err := decodeRecord(obj, &legacy); err != nil {
			skip(directorsFile, obj, err.Error())
			continue
		}

		director := legacy.toDirector()
		if reason := validateID(tx, ident.Director, director.ID); reason != "" {
			skip(directorsFile, obj, reason)
			continue
		}
		if director.LastName == "" || director.FirstName == "" {
			skip(directorsFile, obj, "first and last name are required")
			continue
		}
		if err := tx.InsertDirector(director); err != nil {
			return err
		}
		report.Directors++
	}

	for _, obj := range raw[genresFile] {
		var legacy legacyGenre
		if err := decodeRecord(obj, &legacy); err != nil {
			skip(genresFile, obj, err.Error())
			continue
		}

		genre := legacy.toGenre()
		if reason := validateID(tx, ident.Genre, genre.ID); reason != "" {
			skip(genresFile, obj, reason)
			continue
		}
		if genre.Name == "" {
			skip(genresFile, obj, "name is required")
			continue
		}
		if _, err := tx.FindGenreByName(genre.Name); err == nil {
			skip(genresFile, obj, fmt.Sprintf("genre name '%s' is already taken", genre.Name))
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.InsertGenre(genre); err != nil {
			return err
		}
		report.Genres++
	}

	for _, obj := range raw[moviesFile] {
		var legacy legacyMovie
		if err := decodeRecord(obj, &legacy); err != nil {
			skip(moviesFile, obj, err.Error())
			continue
		}

		movie, err := legacy.toMovie(importer.now())
		if err != nil {
			skip(moviesFile, obj, err.Error())
			continue
		}
		if reason := validateID(tx, ident.Movie, movie.ID); reason != "" {
			skip(moviesFile, obj, reason)
			continue
		}
		if reason := validateMovie(tx, movie, importer.now()); reason != "" {
			skip(moviesFile, obj, reason)
			continue
		}
		if err := tx.InsertMovie(movie); err != nil {
			return err
		}
		report.Movies++
	}

	for _, obj := range raw[collectionsFile] {
		var legacy legacyCollection
		if err := decodeRecord(obj, &legacy); err != nil {
			skip(collectionsFile, obj, err.Error())
			continue
		}

		collection := legacy.toCollection(importer.now())
		if reason := validateID(tx, ident.Collection, collection.ID); reason != "" {
			skip(collectionsFile, obj, reason)
			continue
		}
		if collection.Name == "" {
			skip(collectionsFile, obj, "name is required")
			continue
		}
		if err := tx.InsertCollection(collection); err != nil {
			return err
		}
		report.Collections++
	}

	return nil
}

// validateID returns a reason the identifier can't be imported, or an empty
// string if it can.
func validateID(tx store.Tx, kind ident.Kind, id string) string {
	if k, _, ok := ident.Parse(id); !ok || k != kind {
		return fmt.Sprintf("'%s' is not a valid %s id", id, kind)
	}

	exists, err := recordExists(tx, kind, id)
	if err != nil {
		return err.Error()
	} else if exists {
		return fmt.Sprintf("%s %s already exists", kind, id)
	}

	return ""
}

func recordExists(tx store.Tx, kind ident.Kind, id string) (bool, error) {
	var err error
	switch kind {
	case ident.Movie:
		_, err = tx.GetMovie(id)
	case ident.Director:
		_, err = tx.GetDirector(id)
	case ident.Genre:
		_, err = tx.GetGenre(id)
	case ident.Collection:
		_, err = tx.GetCollection(id)
	}

	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

// validateMovie checks the movie is acceptable to the catalog. Genres which
// do not exist are dropped from the movie rather than rejecting it.
func validateMovie(tx store.Tx, movie *media.Movie, now time.Time) string {
	if movie.Title == "" {
		return "title is required"
	}
	if movie.Year < media.FirstFilmYear || movie.Year > media.MaxFilmYear(now) {
		return fmt.Sprintf("year %d is out of range", movie.Year)
	}
	if movie.Rating != nil && (*movie.Rating < 0 || *movie.Rating > 10) {
		return "rating must be between 0 and 10"
	}
	if movie.Duration != nil && *movie.Duration < 1 {
		return "duration must be positive"
	}
	if exists, err := recordExists(tx, ident.Director, movie.DirectorID); err != nil {
		return err.Error()
	} else if !exists {
		return fmt.Sprintf("director '%s' does not exist", movie.DirectorID)
	}

	genreIDs := make([]string, 0, len(movie.GenreIDs))
	for _, genreID := range movie.GenreIDs {
		if exists, err := recordExists(tx, ident.Genre, genreID); err == nil && exists {
			genreIDs = append(genreIDs, genreID)
		} else {
			log.Warnf("Dropping unknown genre %s from movie %s\n", genreID, movie.ID)
		}
	}
	movie.GenreIDs = genreIDs

	return ""
}
