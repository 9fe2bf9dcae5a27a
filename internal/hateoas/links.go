// Package hateoas builds the navigational links attached to every resource
// returned by the REST API.
package hateoas

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
)

const BasePath = "/api"

type (
	Link struct {
		Href   string `json:"href"`
		Method string `json:"method"`
		Rel    string `json:"rel,omitempty"`
	}

	// Links maps a relation to a Link, or to a list of Links
	// for to-many relations.
	Links map[string]any
)

func NewLink(href string, method string, rel string) Link {
	return Link{Href: href, Method: method, Rel: rel}
}

func Movie(movie *media.Movie) Links {
	self := BasePath + "/movies/" + movie.ID
	links := Links{
		"self":   NewLink(self, http.MethodGet, "self"),
		"update": NewLink(self, http.MethodPut, "update"),
		"delete": NewLink(self, http.MethodDelete, "delete"),
		"all":    NewLink(BasePath+"/movies", http.MethodGet, "all"),
	}

	if movie.DirectorID != "" {
		links["director"] = NewLink(BasePath+"/directors/"+movie.DirectorID, http.MethodGet, "director")
	}

	if len(movie.GenreIDs) > 0 {
		genres := make([]Link, len(movie.GenreIDs))
		for i, genreID := range movie.GenreIDs {
			genres[i] = NewLink(BasePath+"/genres/"+genreID, http.MethodGet, "genre")
		}
		links["genres"] = genres
	}

	return links
}

func Director(director *media.Director) Links {
	return resourceLinks(BasePath+"/directors/"+director.ID, "/directors")
}

func Genre(genre *media.Genre) Links {
	return resourceLinks(BasePath+"/genres/"+genre.ID, "/genres")
}

func Collection(collection *media.Collection) Links {
	self := BasePath + "/collections/" + collection.ID
	links := resourceLinks(self, "/collections")
	links["add_movie"] = NewLink(self+"/movies", http.MethodPost, "add_movie")

	return links
}

func resourceLinks(self string, all string) Links {
	return Links{
		"self":   NewLink(self, http.MethodGet, "self"),
		"movies": NewLink(self+"/movies", http.MethodGet, "movies"),
		"update": NewLink(self, http.MethodPut, "update"),
		"delete": NewLink(self, http.MethodDelete, "delete"),
		"all":    NewLink(BasePath+all, http.MethodGet, "all"),
	}
}

// Pagination builds the self/first/prev/next/last links for a paginated
// listing at path. The extra query parameters (filters, sorting) are
// carried in to every link so that navigating keeps the same view.
//
// An empty listing has a single page, so last points at page 0.
func Pagination(path string, params query.Params, total int, extra map[string]string) Links {
	lastPage := params.LastPage(total)
	build := func(page int) string {
		values := url.Values{}
		for k, v := range extra {
			values.Set(k, v)
		}
		values.Set("page", strconv.Itoa(page))
		values.Set("limit", strconv.Itoa(params.Limit))

		return path + "?" + values.Encode()
	}

	links := Links{
		"self":  NewLink(build(params.Page), http.MethodGet, "self"),
		"first": NewLink(build(0), http.MethodGet, "first"),
		"last":  NewLink(build(lastPage), http.MethodGet, "last"),
	}
	// Past the end, prev leads back to the last page holding records.
	if params.Page > 0 {
		links["prev"] = NewLink(build(min(params.Page-1, lastPage)), http.MethodGet, "prev")
	}
	if params.Page < lastPage {
		links["next"] = NewLink(build(params.Page+1), http.MethodGet, "next")
	}

	return links
}

func Stats() Links {
	return Links{
		"self":        NewLink(BasePath+"/stats", http.MethodGet, "self"),
		"movies":      NewLink(BasePath+"/movies", http.MethodGet, "movies"),
		"directors":   NewLink(BasePath+"/directors", http.MethodGet, "directors"),
		"genres":      NewLink(BasePath+"/genres", http.MethodGet, "genres"),
		"collections": NewLink(BasePath+"/collections", http.MethodGet, "collections"),
	}
}
