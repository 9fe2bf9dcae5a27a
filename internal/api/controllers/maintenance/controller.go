package maintenance

import (
	"context"
	"net/http"

	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/labstack/echo/v4"
)

type (
	Service interface {
		Recount(ctx context.Context) (*catalog.RecountReport, error)
	}

	// Controller exposes administrative operations. Access control is
	// applied by the group it is mounted on.
	Controller struct{ service Service }
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/recount/", controller.recount)
}

func (controller *Controller) recount(ec echo.Context) error {
	report, err := controller.service.Recount(ec.Request().Context())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, report)
}
