package api_test

import (
	"net/http"
	"testing"

	"github.com/hbomb79/Reel/internal/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtures creates a director and two genres, returning their ids.
func fixtures(t *testing.T, client *apitest.Client) (string, string, string) {
	t.Helper()

	director := apitest.Object(t, client.Post("/api/directors", map[string]any{
		"first_name": "Christopher", "last_name": "Nolan", "nationality": "British",
	}), http.StatusCreated)
	scifi := apitest.Object(t, client.Post("/api/genres", map[string]any{"name": "Sci-Fi"}), http.StatusCreated)
	drama := apitest.Object(t, client.Post("/api/genres", map[string]any{"name": "Drama"}), http.StatusCreated)

	return director["id"].(string), scifi["id"].(string), drama["id"].(string)
}

func createMovie(t *testing.T, client *apitest.Client, body map[string]any) map[string]any {
	t.Helper()
	return apitest.Object(t, client.Post("/api/movies", body), http.StatusCreated)
}

func TestMovies_CRUD(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, scifiID, dramaID := fixtures(t, client)

	created := createMovie(t, client, map[string]any{
		"title":       "Inception",
		"year":        2010,
		"director_id": directorID,
		"genre_ids":   []string{scifiID},
		"duration":    148,
		"status":      "watched",
		"rating":      9,
		"tags":        []string{"dreams"},
	})
	movieID := created["id"].(string)
	assert.Equal(t, "mov_001", movieID)
	assert.Equal(t, "Inception", created["title"])
	assert.Contains(t, created["_links"], "self")

	t.Run("Get embeds related records", func(t *testing.T) {
		detail := apitest.Object(t, client.Get("/api/movies/"+movieID), http.StatusOK)
		assert.Equal(t, "Inception", detail["title"])

		director := detail["director"].(map[string]any)
		assert.Equal(t, "Christopher Nolan", director["name"])
		genres := detail["genres"].([]any)
		require.Len(t, genres, 1)
		assert.Equal(t, "Sci-Fi", genres[0].(map[string]any)["name"])
		assert.Empty(t, detail["collections"])
	})

	t.Run("Update merges fields and moves counters", func(t *testing.T) {
		updated := apitest.Object(t, client.Put("/api/movies/"+movieID, map[string]any{
			"genre_ids": []string{dramaID},
			"comment":   "Rewatch soon",
		}), http.StatusOK)
		assert.Equal(t, "Inception", updated["title"], "omitted fields are unchanged")
		assert.Equal(t, "Rewatch soon", updated["comment"])
		assert.Equal(t, []any{dramaID}, updated["genre_ids"])

		scifi := apitest.Object(t, client.Get("/api/genres/"+scifiID), http.StatusOK)
		drama := apitest.Object(t, client.Get("/api/genres/"+dramaID), http.StatusOK)
		assert.EqualValues(t, 0, scifi["film_count"])
		assert.EqualValues(t, 1, drama["film_count"])
	})

	t.Run("Delete", func(t *testing.T) {
		resp := client.Delete("/api/movies/" + movieID)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		apitest.AssertErrorResponse(t, client.Get("/api/movies/"+movieID), http.StatusNotFound, "movie not found", "NOT_FOUND")
		director := apitest.Object(t, client.Get("/api/directors/"+directorID), http.StatusOK)
		assert.EqualValues(t, 0, director["film_count"])
	})
}

func TestMovies_CreateValidation(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, scifiID, _ := fixtures(t, client)

	tests := []struct {
		name    string
		body    any
		message string
		code    string
		field   string
	}{
		{"Malformed JSON", `{"title": `, "", "VALIDATION", ""},
		{"Rating out of range", map[string]any{"title": "X", "year": 2000, "director_id": directorID, "rating": 11}, "request body failed validation", "VALIDATION", "rating"},
		{"Unknown status", map[string]any{"title": "X", "year": 2000, "director_id": directorID, "status": "maybe"}, "request body failed validation", "VALIDATION", "status"},
		{"Year too early", map[string]any{"title": "X", "year": 1800, "director_id": directorID}, "request body failed validation", "VALIDATION", "year"},
		{"Missing title", map[string]any{"year": 2000, "director_id": directorID}, "movie is invalid", "VALIDATION", "title"},
		{"Unknown director", map[string]any{"title": "X", "year": 2000, "director_id": "dir_999"}, "director not found", "REFERENCE_NOT_FOUND", "director_id"},
		{"Unknown genre", map[string]any{"title": "X", "year": 2000, "director_id": directorID, "genre_ids": []string{scifiID, "gen_999"}}, "one or more genres do not exist", "REFERENCE_NOT_FOUND", "genre_ids"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := client.Post("/api/movies", test.body)
			if test.message == "" {
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, test.code, apitest.ExtractErrorResponse(t, resp.Body).Code)
				return
			}

			apiErr := apitest.AssertErrorResponse(t, resp, http.StatusBadRequest, test.message, test.code)
			assert.Contains(t, apiErr.Details, test.field)
		})
	}

	list := apitest.Object(t, client.Get("/api/movies"), http.StatusOK)
	assert.EqualValues(t, 0, list["total"], "rejected movies must not be stored")
}

func TestMovies_ListFilterSortPaginate(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, scifiID, dramaID := fixtures(t, client)

	for _, movie := range []map[string]any{
		{"title": "Memento", "year": 2000, "status": "watched", "rating": 8.5, "genre_ids": []string{dramaID}},
		{"title": "Interstellar", "year": 2014, "status": "watched", "rating": 9, "genre_ids": []string{scifiID, dramaID}},
		{"title": "Tenet", "year": 2020, "status": "to-watch", "genre_ids": []string{scifiID}},
		{"title": "Oppenheimer", "year": 2023, "status": "in-progress"},
	} {
		movie["director_id"] = directorID
		createMovie(t, client, movie)
	}

	t.Run("Sorted by year descending", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/movies?sort=year&order=desc"), http.StatusOK)
		assert.EqualValues(t, 4, list["total"])

		titles := make([]any, 0)
		for _, m := range list["movies"].([]any) {
			titles = append(titles, m.(map[string]any)["title"])
		}
		assert.Equal(t, []any{"Oppenheimer", "Tenet", "Interstellar", "Memento"}, titles)
	})

	t.Run("Filters are conjunctive", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/movies?status=watched&genre_id="+scifiID), http.StatusOK)
		assert.EqualValues(t, 1, list["total"])
		assert.Equal(t, "Interstellar", list["movies"].([]any)[0].(map[string]any)["title"])
	})

	t.Run("Search is a case-insensitive substring", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/movies?search=TEN"), http.StatusOK)
		assert.EqualValues(t, 1, list["total"])
	})

	t.Run("Pagination links", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/movies?limit=2&page=1&status=watched"), http.StatusOK)
		assert.EqualValues(t, 2, list["total"])
		assert.EqualValues(t, 1, list["page"])
		assert.EqualValues(t, 2, list["limit"])
		assert.Empty(t, list["movies"])

		links := list["_links"].(map[string]any)
		assert.Contains(t, links, "prev")
		assert.NotContains(t, links, "next")
		assert.Contains(t, links["first"].(map[string]any)["href"], "status=watched")
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		resp := client.Get("/api/movies?sort=colour")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, apitest.ExtractErrorResponse(t, resp.Body).Details, "sort")

		apitest.AssertErrorResponse(t, client.Get("/api/movies?limit=1000"), http.StatusBadRequest,
			"invalid query parameter 'limit': must be an integer between 1 and 100", "VALIDATION")
		apitest.AssertErrorResponse(t, client.Get("/api/movies?status=unknown"), http.StatusBadRequest,
			"invalid query parameter 'status': must be one of: to-watch, watched, in-progress", "VALIDATION")
		apitest.AssertErrorResponse(t, client.Get("/api/movies?page=9223372036854775807&limit=2"), http.StatusBadRequest,
			"invalid query parameter 'page': must be at most 1000000000", "VALIDATION")
		apitest.AssertErrorResponse(t, client.Get("/api/directors?page=4611686018427387904&limit=2"), http.StatusBadRequest,
			"invalid query parameter 'page': must be at most 1000000000", "VALIDATION")

		beyond := apitest.Object(t, client.Get("/api/movies?page=1000000000&limit=100"), http.StatusOK)
		assert.Empty(t, beyond["movies"])
	})
}
