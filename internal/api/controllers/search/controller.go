package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/labstack/echo/v4"
)

type (
	Service interface {
		Search(ctx context.Context, text string, limit int) ([]catalog.SearchHit, error)
	}

	HitDto struct {
		catalog.SearchHit
		Link hateoas.Link `json:"_link"`
	}

	Dto struct {
		Query   string        `json:"query"`
		Results []HitDto      `json:"results"`
		Links   hateoas.Links `json:"_links"`
	}

	Controller struct{ service Service }
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.search)
}

func (controller *Controller) search(ec echo.Context) error {
	text := strings.TrimSpace(ec.QueryParam("q"))
	limit := catalog.DefaultSearchLimit
	if raw := ec.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return &query.ParamError{Param: "limit", Message: "must be an integer"}
		}
		limit = parsed
	}

	hits, err := controller.service.Search(ec.Request().Context(), text, limit)
	if err != nil {
		return err
	}

	results := make([]HitDto, 0, len(hits))
	for _, hit := range hits {
		results = append(results, HitDto{
			SearchHit: hit,
			Link:      hateoas.NewLink(hateoas.BasePath+"/"+hit.Kind+"s/"+hit.ID, http.MethodGet, "self"),
		})
	}

	self := url.Values{"q": {text}, "limit": {strconv.Itoa(limit)}}
	return ec.JSON(http.StatusOK, Dto{
		Query:   text,
		Results: results,
		Links:   hateoas.Links{"self": hateoas.NewLink(hateoas.BasePath+"/search?"+self.Encode(), http.MethodGet, "self")},
	})
}
