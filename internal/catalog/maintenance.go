package catalog

import (
	"context"
	"slices"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/store"
)

type (
	// Correction records a film counter which did not match the
	// catalog and was overwritten.
	Correction struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
		Was  int    `json:"was"`
		Now  int    `json:"now"`
	}

	RecountReport struct {
		Directors   int          `json:"directors"`
		Genres      int          `json:"genres"`
		Collections int          `json:"collections"`
		Corrections []Correction `json:"corrections"`
	}
)

// Recount recomputes every film counter from the movies and collections
// themselves, overwriting any which have drifted. Collections referencing
// movies which no longer exist have those references dropped.
//
// For a catalog only ever mutated through this Service, Recount
// reports no corrections.
func (service *Service) Recount(ctx context.Context) (*RecountReport, error) {
	report := &RecountReport{Corrections: make([]Correction, 0)}
	err := service.transaction(ctx, func(tx store.Tx) error {
		report.Corrections = report.Corrections[:0]

		movies, err := tx.AllMovies()
		if err != nil {
			return err
		}

		directorCounts := make(map[string]int)
		genreCounts := make(map[string]int)
		movieIDs := make(map[string]struct{}, len(movies))
		for _, movie := range movies {
			movieIDs[movie.ID] = struct{}{}
			directorCounts[movie.DirectorID]++
			for _, genreID := range movie.GenreIDs {
				genreCounts[genreID]++
			}
		}

		directors, err := tx.AllDirectors()
		if err != nil {
			return err
		}
		report.Directors = len(directors)
		for _, director := range directors {
			if err := report.reconcile(tx, ident.Director, director.ID, director.FilmCount, directorCounts[director.ID]); err != nil {
				return err
			}
		}

		genres, err := tx.AllGenres()
		if err != nil {
			return err
		}
		report.Genres = len(genres)
		for _, genre := range genres {
			if err := report.reconcile(tx, ident.Genre, genre.ID, genre.FilmCount, genreCounts[genre.ID]); err != nil {
				return err
			}
		}

		collections, err := tx.AllCollections()
		if err != nil {
			return err
		}
		report.Collections = len(collections)
		for _, collection := range collections {
			was := collection.FilmCount
			kept := slices.DeleteFunc(slices.Clone(collection.MovieIDs), func(id string) bool {
				_, exists := movieIDs[id]
				return !exists
			})
			if len(kept) == len(collection.MovieIDs) && was == len(kept) {
				continue
			}

			collection.SetMovies(kept)
			if err := tx.UpdateCollection(collection); err != nil {
				return err
			}
			report.Corrections = append(report.Corrections, Correction{ident.Collection.String(), collection.ID, was, collection.FilmCount})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.Corrections) > 0 {
		log.Warnf("Recount corrected %d film counter(s)\n", len(report.Corrections))
	} else {
		log.Infof("Recount found all film counters consistent\n")
	}

	service.dispatch(event.CATALOG_RECOUNTED, len(report.Corrections))
	return report, nil
}

func (report *RecountReport) reconcile(tx store.Tx, kind ident.Kind, id string, was int, expected int) error {
	if was == expected {
		return nil
	}

	if err := tx.SetFilmCount(kind, id, expected); err != nil {
		return err
	}

	report.Corrections = append(report.Corrections, Correction{kind.String(), id, was, expected})
	return nil
}
