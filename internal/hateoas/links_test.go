package hateoas_test

import (
	"testing"

	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieLinks(t *testing.T) {
	links := hateoas.Movie(&media.Movie{ID: "mov_001", DirectorID: "dir_002", GenreIDs: []string{"gen_001", "gen_003"}})

	assert.Equal(t, hateoas.Link{Href: "/api/movies/mov_001", Method: "GET", Rel: "self"}, links["self"])
	assert.Equal(t, hateoas.Link{Href: "/api/movies/mov_001", Method: "PUT", Rel: "update"}, links["update"])
	assert.Equal(t, hateoas.Link{Href: "/api/movies/mov_001", Method: "DELETE", Rel: "delete"}, links["delete"])
	assert.Equal(t, hateoas.Link{Href: "/api/directors/dir_002", Method: "GET", Rel: "director"}, links["director"])

	genres, ok := links["genres"].([]hateoas.Link)
	require.True(t, ok)
	require.Len(t, genres, 2)
	assert.Equal(t, "/api/genres/gen_003", genres[1].Href)
}

func TestMovieLinks_OmitAbsentRelations(t *testing.T) {
	links := hateoas.Movie(&media.Movie{ID: "mov_001"})
	assert.NotContains(t, links, "director")
	assert.NotContains(t, links, "genres")
}

func TestCollectionLinks(t *testing.T) {
	links := hateoas.Collection(&media.Collection{ID: "col_004"})
	assert.Equal(t, hateoas.Link{Href: "/api/collections/col_004/movies", Method: "POST", Rel: "add_movie"}, links["add_movie"])
	assert.Equal(t, hateoas.Link{Href: "/api/collections/col_004/movies", Method: "GET", Rel: "movies"}, links["movies"])
}

func TestDirectorAndGenreLinks(t *testing.T) {
	d := hateoas.Director(&media.Director{ID: "dir_001"})
	assert.Equal(t, "/api/directors/dir_001/movies", d["movies"].(hateoas.Link).Href)

	g := hateoas.Genre(&media.Genre{ID: "gen_001"})
	assert.Equal(t, "DELETE", g["delete"].(hateoas.Link).Method)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		summary     string
		page, total int
		present     []string
		absent      []string
		last        string
	}{
		{"first of three", 0, 50, []string{"self", "first", "next", "last"}, []string{"prev"}, "/api/movies?limit=20&page=2&status=watched"},
		{"middle", 1, 50, []string{"self", "first", "prev", "next", "last"}, nil, "/api/movies?limit=20&page=2&status=watched"},
		{"last", 2, 50, []string{"self", "first", "prev", "last"}, []string{"next"}, "/api/movies?limit=20&page=2&status=watched"},
		{"empty", 0, 0, []string{"self", "first", "last"}, []string{"prev", "next"}, "/api/movies?limit=20&page=0&status=watched"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			params := query.Params{Sort: "title", Order: query.Asc, Page: test.page, Limit: 20}
			links := hateoas.Pagination("/api/movies", params, test.total, map[string]string{"status": "watched"})

			for _, rel := range test.present {
				assert.Contains(t, links, rel)
			}
			for _, rel := range test.absent {
				assert.NotContains(t, links, rel)
			}
			assert.Equal(t, test.last, links["last"].(hateoas.Link).Href)
		})
	}
}

func TestPagination_PrevBeyondLastPage(t *testing.T) {
	tests := []struct {
		page, total int
		prev        string
	}{
		{1000, 1, "/api/genres?limit=20&page=0"},
		{5, 50, "/api/genres?limit=20&page=2"},
		{3, 0, "/api/genres?limit=20&page=0"},
		{2, 50, "/api/genres?limit=20&page=1"},
	}

	for _, test := range tests {
		params := query.Params{Page: test.page, Limit: 20}
		links := hateoas.Pagination("/api/genres", params, test.total, nil)

		require.Contains(t, links, "prev")
		assert.Equal(t, test.prev, links["prev"].(hateoas.Link).Href, "page %d of %d records", test.page, test.total)
		assert.NotContains(t, links, "next")
	}
}

func TestStatsLinks(t *testing.T) {
	links := hateoas.Stats()
	assert.Len(t, links, 5)
	assert.Equal(t, "/api/collections", links["collections"].(hateoas.Link).Href)
}
