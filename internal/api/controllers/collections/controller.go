package collections

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
		Name        *string   `json:"name" validate:"omitempty,max=100"`
		Description *string   `json:"description"`
		IsPublic    *bool     `json:"is_public"`
		MovieIDs    *[]string `json:"movie_ids" validate:"omitempty,dive,required"`
	}

	// MembershipRequest is the body accepted when adding a movie to a
	// collection. A missing movie_id is reported by the catalog.
	MembershipRequest struct {
		MovieID string `json:"movie_id"`
	}

	Service interface {
		ListCollections(ctx context.Context, params query.Params) (query.Result[*media.Collection], error)
		GetCollection(ctx context.Context, id string) (*media.Collection, error)
		CollectionMovies(ctx context.Context, id string) ([]*media.Movie, error)
		CreateCollection(ctx context.Context, input catalog.CollectionInput) (*media.Collection, error)
		UpdateCollection(ctx context.Context, id string, input catalog.CollectionInput) (*media.Collection, error)
		DeleteCollection(ctx context.Context, id string) error
		AddMovieToCollection(ctx context.Context, id string, movieID string) (*media.Collection, error)
		RemoveMovieFromCollection(ctx context.Context, id string, movieID string) (*media.Collection, error)
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
	eg.GET("/:id/movies/", controller.listMovies)
	eg.POST("/:id/movies/", controller.addMovie)
	eg.DELETE("/:id/movies/:movieId/", controller.removeMovie)
}

func (controller *Controller) list(ec echo.Context) error {
	params, err := query.ParseParams(ec.QueryParams(), media.CollectionSchema)
	if err != nil {
		return err
	}

	result, err := controller.service.ListCollections(ec.Request().Context(), params)
	if err != nil {
		return err
	}

	links := hateoas.Pagination(hateoas.BasePath+"/collections", params, result.Total, util.QueryExtras(params, nil))
	return ec.JSON(http.StatusOK, util.ConvertList(util.NewListDto("collections", result, params, links), NewDto))
}

func (controller *Controller) get(ec echo.Context) error {
	collection, err := controller.service.GetCollection(ec.Request().Context(), ec.Param("id"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(collection))
}

// listMovies returns every movie of the collection in the order they
// were added. Collections are small, so this is not paginated.
func (controller *Controller) listMovies(ec echo.Context) error {
	id := ec.Param("id")
	movieModels, err := controller.service.CollectionMovies(ec.Request().Context(), id)
	if err != nil {
		return err
	}

	self := hateoas.BasePath + "/collections/" + id
	return ec.JSON(http.StatusOK, MoviesDto{
		Total:  len(movieModels),
		Movies: util.ApplyConversion(movieModels, movies.NewDto),
		Links: hateoas.Links{
			"self":       hateoas.NewLink(self+"/movies", http.MethodGet, "self"),
			"collection": hateoas.NewLink(self, http.MethodGet, "collection"),
		},
	})
}

func (controller *Controller) create(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	collection, err := controller.service.CreateCollection(ec.Request().Context(), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, NewDto(collection))
}

func (controller *Controller) update(ec echo.Context) error {
	var request Request
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	collection, err := controller.service.UpdateCollection(ec.Request().Context(), ec.Param("id"), request.toInput())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(collection))
}

func (controller *Controller) delete(ec echo.Context) error {
	if err := controller.service.DeleteCollection(ec.Request().Context(), ec.Param("id")); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}

func (controller *Controller) addMovie(ec echo.Context) error {
	var request MembershipRequest
	if err := util.BindAndValidate(ec, controller.validate, &request); err != nil {
		return err
	}

	collection, err := controller.service.AddMovieToCollection(ec.Request().Context(), ec.Param("id"), request.MovieID)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(collection))
}

func (controller *Controller) removeMovie(ec echo.Context) error {
	collection, err := controller.service.RemoveMovieFromCollection(ec.Request().Context(), ec.Param("id"), ec.Param("movieId"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDto(collection))
}
