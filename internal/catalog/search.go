package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/store"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50

	// searchThreshold is the minimum score for a record to be
	// included in the search results.
	searchThreshold = 0.5
)

type SearchHit struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Search ranks the movies, directors and genres of the catalog by how
// closely their title/name resembles the text provided, returning at most
// limit hits, best first.
func (service *Service) Search(ctx context.Context, text string, limit int) ([]SearchHit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("search query is required", map[string]any{"q": "is required"})
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, validationError("search limit is out of range", map[string]any{"limit": "must be between 1 and 50"})
	}

	hits := make([]SearchHit, 0)
	err := service.view(ctx, func(tx store.Tx) error {
		movies, err := tx.AllMovies()
		if err != nil {
			return err
		}
		for _, movie := range movies {
			hits = appendHit(hits, ident.Movie, movie.ID, movie.Title, text)
		}

		directors, err := tx.AllDirectors()
		if err != nil {
			return err
		}
		for _, director := range directors {
			hits = appendHit(hits, ident.Director, director.ID, director.FullName(), text)
		}

		genres, err := tx.AllGenres()
		if err != nil {
			return err
		}
		for _, genre := range genres {
			hits = appendHit(hits, ident.Genre, genre.ID, genre.Name, text)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}

		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}

func appendHit(hits []SearchHit, kind ident.Kind, id string, label string, text string) []SearchHit {
	score := similarity(label, text)
	if score < searchThreshold {
		return hits
	}

	return append(hits, SearchHit{Kind: kind.String(), ID: id, Label: label, Score: score})
}

// similarity scores the label against the query text in the range [0, 1].
// A label containing the text verbatim always scores at least 0.75, while
// misspellings are caught by comparing the text to each individual word.
func similarity(label string, text string) float64 {
	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false

	score := strutil.Similarity(label, text, metric)
	if strings.Contains(strings.ToLower(label), strings.ToLower(text)) {
		score = max(score, 0.75+0.25*score)
	}

	for _, word := range strings.Fields(label) {
		score = max(score, 0.9*strutil.Similarity(word, text, metric))
	}

	return score
}
