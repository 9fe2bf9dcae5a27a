package catalog

import (
	"context"
	"math"
	"sort"

	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/store"
)

const topRankingSize = 5

type (
	RankedGenre struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		FilmCount int    `json:"film_count"`
	}

	RankedDirector struct {
		ID        string `json:"id"`
		FullName  string `json:"full_name"`
		FilmCount int    `json:"film_count"`
	}

	Stats struct {
		TotalMovies int `json:"total_movies"`
		Watched     int `json:"watched"`
		ToWatch     int `json:"to_watch"`
		InProgress  int `json:"in_progress"`
		// AverageRating is the mean rating of watched movies which have
		// a rating, rounded to one decimal place. A rating of 0 is a
		// rating and counts towards the mean; only a missing rating is
		// skipped. Zero if there are none.
		AverageRating     float64          `json:"average_rating"`
		TopGenres         []RankedGenre    `json:"top_genres"`
		TopDirectors      []RankedDirector `json:"top_directors"`
		TotalWatchMinutes int              `json:"total_watch_minutes"`
	}
)

func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := service.view(ctx, func(tx store.Tx) error {
		movies, err := tx.AllMovies()
		if err != nil {
			return err
		}

		ratingSum, rated := 0.0, 0
		for _, movie := range movies {
			switch movie.Status {
			case media.Watched:
				stats.Watched++
				if movie.Rating != nil {
					ratingSum += *movie.Rating
					rated++
				}
				if movie.Duration != nil {
					stats.TotalWatchMinutes += *movie.Duration
				}
			case media.ToWatch:
				stats.ToWatch++
			case media.InProgress:
				stats.InProgress++
			}
		}
		stats.TotalMovies = len(movies)
		if rated > 0 {
			stats.AverageRating = math.Round(ratingSum/float64(rated)*10) / 10
		}

		genres, err := tx.AllGenres()
		if err != nil {
			return err
		}
		sort.SliceStable(genres, func(i, j int) bool { return genres[i].FilmCount > genres[j].FilmCount })
		stats.TopGenres = make([]RankedGenre, 0, topRankingSize)
		for _, genre := range genres[:min(len(genres), topRankingSize)] {
			stats.TopGenres = append(stats.TopGenres, RankedGenre{genre.ID, genre.Name, genre.FilmCount})
		}

		directors, err := tx.AllDirectors()
		if err != nil {
			return err
		}
		sort.SliceStable(directors, func(i, j int) bool { return directors[i].FilmCount > directors[j].FilmCount })
		stats.TopDirectors = make([]RankedDirector, 0, topRankingSize)
		for _, director := range directors[:min(len(directors), topRankingSize)] {
			stats.TopDirectors = append(stats.TopDirectors, RankedDirector{director.ID, director.FullName(), director.FilmCount})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
