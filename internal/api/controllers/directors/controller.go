package directors

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
		LastName    *string    `json:"last_name" validate:"omitempty,max=100"`
		FirstName   *string    `json:"first_name" validate:"omitempty,max=100"`
		BirthDate   *util.Date `json:"birth_date"`
		Nationality *string    `json:"nationality" validate:"omitempty,max=100"`
		Biography   *string    `json:"biography"`
		PhotoURL    *string    `json:"photo_url" validate:"omitempty,url"`
	}

	Service interface {
		ListDirectors(ctx context.Context, params query.Params) (query.Result[*media.Director], error)
		GetDirector(ctx context.Context, id string) (*catalog.DirectorDetail, error)
		DirectorMovies(ctx context.Context, id string, params query.Params) (query.Result[*media.Movie], error)
		CreateDirector(ctx context.Context, input catalog.DirectorInput) (*media.Director, error)
		UpdateDirector(ctx context.Context, id string, input catalog.DirectorInput) (*media.Director, error)
		DeleteDirector(ctx context.Context, id string) error
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
	params, err := query.ParseParams(ec.QueryParams(), media.DirectorSchema)
	if err != nil {
		return err
	}

	result, err := controller.service.ListDirectors(ec.Request().Context(), params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/directors", params, result.Total, util.QueryExtras(params, nil))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("directors", result, params, links), NewDto))
}

func (controller *Controller) get(ec echo.Context) error {
	detail, err := controller.service.GetDirector(ec.Request().Context(), ec.Param("id"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDetailDto(detail))
}

// listMovies pages through the director's movies. Sorting defaults to
// the movie listing's own defaults.
func (controller *Controller) listMovies(ec echo.Context) error {
	params, err := query.ParseParams(ec.QueryParams(), media.MovieSchema)
	if err != nil {
		return err
	}

	id := ec.Param("id")
	result, err := controller.service.DirectorMovies(ec.Request().Context(), id, params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/directors/"+id+"/movies", params, result.Total, util.QueryExtras(params, nil))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("movies", result, params, links), movies.NewDto))
}

func (controller *Controller) create(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	director, err := controller.service.CreateDirector(ec.Request().Context(), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, NewDto(director))
}

func (controller *Controller) update(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	director, err := controller.service.UpdateDirector(ec.Request().Context(), ec.Param("id"), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(director))
}

func (controller *Controller) delete(ec echo.Context) error {
	if err := controller.service.DeleteDirector(ec.Request().Context(), ec.Param("id")); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}
