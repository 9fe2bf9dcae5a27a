package movies

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/labstack/echo/v4"
)

type (
	// Request is the body accepted when creating or updating a movie. On
	// update, fields which are omitted are left unchanged.
	Request struct {
		Title       *string       `json:"title" validate:"omitempty,max=300"`
		Year        *int          `json:"year" validate:"omitempty,movieyear"`
		DirectorID  *string       `json:"director_id"`
		GenreIDs    *[]string     `json:"genre_ids" validate:"omitempty,dive,required"`
		Duration    *int          `json:"duration" validate:"omitempty,min=1"`
		Synopsis    *string       `json:"synopsis"`
		Status      *media.Status `json:"status" validate:"omitempty,oneof=to-watch watched in-progress"`
		Rating      *float64      `json:"rating" validate:"omitempty,min=0,max=10"`
		Comment     *string       `json:"comment"`
		PosterURL   *string       `json:"poster_url" validate:"omitempty,url"`
		TmdbID      *int          `json:"tmdb_id" validate:"omitempty,min=1"`
		Tags        *[]string     `json:"tags"`
		DateWatched *util.Date    `json:"date_watched"`
	}

	Service interface {
		ListMovies(ctx context.Context, filter media.MovieFilter, params query.Params) (query.Result[*media.Movie], error)
		GetMovie(ctx context.Context, id string) (*catalog.MovieDetail, error)
		CreateMovie(ctx context.Context, input catalog.MovieInput) (*media.Movie, error)
		UpdateMovie(ctx context.Context, id string, input catalog.MovieInput) (*media.Movie, error)
		DeleteMovie(ctx context.Context, id string) error
	}

	Controller struct {
		service  Service
		validate *validator.Validate
	}
)

func New(validate *validator.Validate, service Service) *Controller {
	return &Controller{service: service, validate: validate}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.list)
	eg.POST("/", controller.create)
	eg.GET("/:id/", controller.get)
	eg.PUT("/:id/", controller.update)
	eg.DELETE("/:id/", controller.delete)
}

func (controller *Controller) list(ec echo.Context) error {
	params, err := query.ParseParams(ec.QueryParams(), media.MovieSchema)
	if err != nil {
		return err
	}

	filter, err := parseFilter(ec)
	if err != nil {
		return err
	}

	result, err := controller.service.ListMovies(ec.Request().Context(), filter, params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/movies", params, result.Total, util.QueryExtras(params, filter.QueryValues()))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("movies", result, params, links), NewDto))
}

func (controller *Controller) get(ec echo.Context) error {
	detail, err := controller.service.GetMovie(ec.Request().Context(), ec.Param("id"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDetailDto(detail))
}

func (controller *Controller) create(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	movie, err := controller.service.CreateMovie(ec.Request().Context(), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, NewDto(movie))
}

func (controller *Controller) update(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	movie, err := controller.service.UpdateMovie(ec.Request().Context(), ec.Param("id"), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(movie))
}

func (controller *Controller) delete(ec echo.Context) error {
	if err := controller.service.DeleteMovie(ec.Request().Context(), ec.Param("id")); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}

// parseFilter extracts the movie filters from the query string. An
// unrecognised status is rejected rather than silently matching nothing.
func parseFilter(ec echo.Context) (media.MovieFilter, error) {
	filter := media.MovieFilter{
		Status:       media.Status(strings.TrimSpace(ec.QueryParam("status"))),
		GenreID:      strings.TrimSpace(ec.QueryParam("genre_id")),
		DirectorID:   strings.TrimSpace(ec.QueryParam("director_id")),
		CollectionID: strings.TrimSpace(ec.QueryParam("collection_id")),
		Search:       strings.TrimSpace(ec.QueryParam("search")),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return filter, &query.ParamError{Param: "status", Message: "must be one of: to-watch, watched, in-progress"}
	}

	return filter, nil
}
