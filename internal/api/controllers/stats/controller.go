package stats

import (
	"context"
	"net/http"

	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/labstack/echo/v4"
)

type (
	Service interface {
		Stats(ctx context.Context) (*catalog.Stats, error)
	}

	Dto struct {
		*catalog.Stats
		Links hateoas.Links `json:"_links"`
	}

	Controller struct{ service Service }
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.get)
}

func (controller *Controller) get(ec echo.Context) error {
	stats, err := controller.service.Stats(ec.Request().Context())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, Dto{Stats: stats, Links: hateoas.Stats()})
}
