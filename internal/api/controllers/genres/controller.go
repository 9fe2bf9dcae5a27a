package genres

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Reel/internal/api/controllers/movies"
	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/labstack/echo/v4"
)

type (
	Request struct {
		Name        *string `json:"name" validate:"omitempty,max=50"`
		Description *string `json:"description"`
	}

	Service interface {
		ListGenres(ctx context.Context, params query.Params) (query.Result[*media.Genre], error)
		GetGenre(ctx context.Context, id string) (*media.Genre, error)
		GenreMovies(ctx context.Context, id string, params query.Params) (query.Result[*media.Movie], error)
		CreateGenre(ctx context.Context, input catalog.GenreInput) (*media.Genre, error)
		UpdateGenre(ctx context.Context, id string, input catalog.GenreInput) (*media.Genre, error)
		DeleteGenre(ctx context.Context, id string) error
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
	eg.GET("/:id/movies/", controller.listMovies)
	eg.PUT("/:id/", controller.update)
	eg.DELETE("/:id/", controller.delete)
}

func (controller *Controller) list(ec echo.Context) error {
	params, err := query.ParseParams(ec.QueryParams(), media.GenreSchema)
	if err != nil {
		return err
	}

	result, err := controller.service.ListGenres(ec.Request().Context(), params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/genres", params, result.Total, util.QueryExtras(params, nil))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("genres", result, params, links), NewDto))
}

func (controller *Controller) get(ec echo.Context) error {
	genre, err := controller.service.GetGenre(ec.Request().Context(), ec.Param("id"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(genre))
}

func (controller *Controller) listMovies(ec echo.Context) error {
	params, err := query.ParseParams(ec.QueryParams(), media.MovieSchema)
	if err != nil {
		return err
	}

	id := ec.Param("id")
	result, err := controller.service.GenreMovies(ec.Request().Context(), id, params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/genres/"+id+"/movies", params, result.Total, util.QueryExtras(params, nil))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("movies", result, params, links), movies.NewDto))
}

func (controller *Controller) create(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	genre, err := controller.service.CreateGenre(ec.Request().Context(), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, NewDto(genre))
}

func (controller *Controller) update(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	genre, err := controller.service.UpdateGenre(ec.Request().Context(), ec.Param("id"), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(genre))
}

func (controller *Controller) delete(ec echo.Context) error {
	if err := controller.service.DeleteGenre(ec.Request().Context(), ec.Param("id")); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}
