package api_test

import (
	"net/http"
	"testing"

	"github.com/hbomb79/Reel/internal/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCode(t *testing.T, response *apitest.Response) string {
	t.Helper()
	return apitest.ExtractErrorResponse(t, response.Body).Code
}

func TestDirectors(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, _, _ := fixtures(t, client)

	created := apitest.Object(t, client.Post("/api/directors", map[string]any{
		"first_name": "Denis", "last_name": "Villeneuve", "birth_date": "1967-10-03",
	}), http.StatusCreated)
	assert.Equal(t, "Denis Villeneuve", created["full_name"])
	assert.Equal(t, "1967-10-03T00:00:00Z", created["birth_date"])

	createMovie(t, client, map[string]any{"title": "Dunkirk", "year": 2017, "director_id": directorID})
	createMovie(t, client, map[string]any{"title": "Insomnia", "year": 2002, "director_id": directorID})

	t.Run("Detail embeds movies", func(t *testing.T) {
		detail := apitest.Object(t, client.Get("/api/directors/"+directorID), http.StatusOK)
		assert.EqualValues(t, 2, detail["film_count"])
		assert.Len(t, detail["movies"], 2)
	})

	t.Run("Movies sub-resource is paginated", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/directors/"+directorID+"/movies?limit=1&sort=year&order=asc"), http.StatusOK)
		assert.EqualValues(t, 2, list["total"])
		require.Len(t, list["movies"], 1)
		assert.Equal(t, "Insomnia", list["movies"].([]any)[0].(map[string]any)["title"])
		assert.Contains(t, list["_links"], "next")

		apitest.AssertErrorResponse(t, client.Get("/api/directors/dir_999/movies"), http.StatusNotFound, "director not found", "NOT_FOUND")
	})

	t.Run("Delete is blocked while movies reference it", func(t *testing.T) {
		resp := client.Delete("/api/directors/" + directorID)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "HAS_DEPENDENTS", errorCode(t, resp))

		assert.Equal(t, http.StatusNoContent, client.Delete("/api/directors/"+created["id"].(string)).StatusCode)
	})

	t.Run("Update", func(t *testing.T) {
		updated := apitest.Object(t, client.Put("/api/directors/"+directorID, map[string]any{"biography": "Director of Memento"}), http.StatusOK)
		assert.Equal(t, "Christopher Nolan", updated["full_name"])
		assert.Equal(t, "Director of Memento", updated["biography"])

		resp := client.Put("/api/directors/"+directorID, map[string]any{"photo_url": "not a url"})
		apiErr := apitest.AssertErrorResponse(t, resp, http.StatusBadRequest, "request body failed validation", "VALIDATION")
		assert.Equal(t, "must be a valid URL", apiErr.Details["photo_url"])
	})
}

func TestGenres(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, scifiID, _ := fixtures(t, client)

	t.Run("Names are unique ignoring case", func(t *testing.T) {
		resp := client.Post("/api/genres", map[string]any{"name": "  sci-fi "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_NAME", errorCode(t, resp))
	})

	t.Run("Listing defaults to most films first", func(t *testing.T) {
		createMovie(t, client, map[string]any{"title": "Tenet", "year": 2020, "director_id": directorID, "genre_ids": []string{scifiID}})

		list := apitest.Object(t, client.Get("/api/genres"), http.StatusOK)
		assert.EqualValues(t, 2, list["total"])
		assert.Equal(t, "Sci-Fi", list["genres"].([]any)[0].(map[string]any)["name"])
	})

	t.Run("Movies sub-resource", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/genres/"+scifiID+"/movies"), http.StatusOK)
		assert.EqualValues(t, 1, list["total"])
	})

	t.Run("Delete is blocked while movies reference it", func(t *testing.T) {
		resp := client.Delete("/api/genres/" + scifiID)
		assert.Equal(t, "HAS_DEPENDENTS", errorCode(t, resp))
	})
}

func TestCollections(t *testing.T) {
	env := apitest.NewEnv(t, false)
	client := env.Client(t)
	directorID, _, _ := fixtures(t, client)

	first := createMovie(t, client, map[string]any{"title": "Following", "year": 1998, "director_id": directorID})["id"].(string)
	second := createMovie(t, client, map[string]any{"title": "Memento", "year": 2000, "director_id": directorID})["id"].(string)

	collection := apitest.Object(t, client.Post("/api/collections", map[string]any{
		"name": "Favourites", "is_public": true, "movie_ids": []string{second},
	}), http.StatusCreated)
	collectionID := collection["id"].(string)
	assert.EqualValues(t, 1, collection["film_count"])
	assert.Equal(t, true, collection["is_public"])

	t.Run("Add appends to the end", func(t *testing.T) {
		updated := apitest.Object(t, client.Post("/api/collections/"+collectionID+"/movies", map[string]any{"movie_id": first}), http.StatusOK)
		assert.Equal(t, []any{second, first}, updated["movie_ids"])
		assert.EqualValues(t, 2, updated["film_count"])

		movies := apitest.Object(t, client.Get("/api/collections/"+collectionID+"/movies"), http.StatusOK)
		assert.EqualValues(t, 2, movies["total"])
		assert.Equal(t, "Memento", movies["movies"].([]any)[0].(map[string]any)["title"])
	})

	t.Run("Membership errors", func(t *testing.T) {
		resp := client.Post("/api/collections/"+collectionID+"/movies", map[string]any{"movie_id": first})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "ALREADY_IN_COLLECTION", errorCode(t, resp))

		resp = client.Post("/api/collections/"+collectionID+"/movies", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = client.Post("/api/collections/"+collectionID+"/movies", map[string]any{"movie_id": "mov_999"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = client.Delete("/api/collections/col_999/movies/" + first)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Filtering movies by collection", func(t *testing.T) {
		list := apitest.Object(t, client.Get("/api/movies?collection_id="+collectionID), http.StatusOK)
		assert.EqualValues(t, 2, list["total"])

		list = apitest.Object(t, client.Get("/api/movies?collection_id=col_999"), http.StatusOK)
		assert.EqualValues(t, 0, list["total"])
	})

	t.Run("Deleting a movie removes it from collections", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, client.Delete("/api/movies/"+second).StatusCode)

		updated := apitest.Object(t, client.Get("/api/collections/"+collectionID), http.StatusOK)
		assert.Equal(t, []any{first}, updated["movie_ids"])
		assert.EqualValues(t, 1, updated["film_count"])
	})

	t.Run("Remove", func(t *testing.T) {
		updated := apitest.Object(t, client.Delete("/api/collections/"+collectionID+"/movies/"+first), http.StatusOK)
		assert.Empty(t, updated["movie_ids"])

		resp := client.Delete("/api/collections/" + collectionID + "/movies/" + first)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_IN_COLLECTION", errorCode(t, resp))
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, client.Delete("/api/collections/"+collectionID).StatusCode)
		assert.Equal(t, http.StatusNotFound, client.Get("/api/collections/"+collectionID).StatusCode)
	})
}
