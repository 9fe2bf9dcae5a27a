package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/api/controllers/auth"
	"github.com/hbomb79/Reel/internal/api/controllers/collections"
	"github.com/hbomb79/Reel/internal/api/controllers/directors"
	"github.com/hbomb79/Reel/internal/api/controllers/genres"
	"github.com/hbomb79/Reel/internal/api/controllers/maintenance"
	"github.com/hbomb79/Reel/internal/api/controllers/movies"
	"github.com/hbomb79/Reel/internal/api/controllers/search"
	"github.com/hbomb79/Reel/internal/api/controllers/stats"
	"github.com/hbomb79/Reel/internal/api/util"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/http/websocket"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	log     = logger.Get("API")
	httpLog = logger.Get("HTTP")
)

type (
	RestConfig struct {
		HostAddr string `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// CatalogService represents a union of all the controller service requirements.
	CatalogService interface {
		movies.Service
		directors.Service
		genres.Service
		collections.Service
		stats.Service
		search.Service
		maintenance.Service
	}

	AuthProvider interface {
		auth.AuthProvider
		Middleware() echo.MiddlewareFunc
		RequireAuthForWrites() echo.MiddlewareFunc
		RequireRole(role user.Role) echo.MiddlewareFunc
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole responsibility
	// is to create the routes Reel exposes, manage ongoing web socket connections and events,
	// and to enforce authc + authz middleware where applicable.
	RestGateway struct {
		*broadcaster
		config *RestConfig
		ec     *echo.Echo
		socket *websocket.SocketHub
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers. When requireAuthForWrites is
// set, any mutation of the catalog requires an authenticated user.
func NewRestGateway(
	config *RestConfig,
	authProvider AuthProvider,
	requireAuthForWrites bool,
	catalogService CatalogService,
	userService auth.UserService,
) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.HTTPErrorHandler = apierr.GetHTTPErrorHandler()

	socket := websocket.New()
	gateway := &RestGateway{
		broadcaster: newBroadcaster(socket),
		config:      config,
		ec:          ec,
		socket:      socket,
	}
	socket.WithConnectionCallback(func() map[string]any {
		return map[string]any{"events": gateway.EventNames()}
	})

	ec.Pre(middleware.AddTrailingSlash())
	ec.Use(middleware.Recover())
	ec.Use(requestLogger())
	ec.Use(authProvider.Middleware())

	validate := util.NewValidator()
	writeGuard := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if requireAuthForWrites {
		writeGuard = authProvider.RequireAuthForWrites()
	} else {
		log.Warnf("Catalog writes do NOT require authentication\n")
	}

	api := ec.Group(hateoas.BasePath)
	api.GET("/health/", gateway.health)
	api.GET("/activity/ws/", func(ec echo.Context) error {
		gateway.socket.UpgradeToSocket(ec.Response(), ec.Request())
		return nil
	})

	routes := []struct {
		prefix     string
		controller controller
		middleware []echo.MiddlewareFunc
	}{
		{"/movies", movies.New(validate, catalogService), []echo.MiddlewareFunc{writeGuard}},
		{"/directors", directors.New(validate, catalogService), []echo.MiddlewareFunc{writeGuard}},
		{"/genres", genres.New(validate, catalogService), []echo.MiddlewareFunc{writeGuard}},
		{"/collections", collections.New(validate, catalogService), []echo.MiddlewareFunc{writeGuard}},
		{"/stats", stats.New(catalogService), nil},
		{"/search", search.New(catalogService), nil},
		{"/auth", auth.New(validate, authProvider, userService), nil},
		{"/maintenance", maintenance.New(catalogService), []echo.MiddlewareFunc{authProvider.RequireRole(user.RoleAdmin)}},
	}
	for _, route := range routes {
		route.controller.SetRoutes(api.Group(route.prefix, route.middleware...))
	}

	return gateway
}

// ServeHTTP allows the gateway to be driven directly, without a listener.
func (gateway *RestGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gateway.ec.ServeHTTP(w, r)
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.NEW, "Listening on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	// Start websocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		gateway.socket.Start(ctx)
	}()

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

func (gateway *RestGateway) health(ec echo.Context) error {
	return ec.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"activity": gateway.socket.IsRunning(),
		"time":     time.Now().UTC(),
	})
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Status >= http.StatusInternalServerError {
				httpLog.Warnf("%s %s -> %d (%s)\n", v.Method, v.URI, v.Status, v.Latency)
			} else {
				httpLog.Verbosef("%s %s -> %d (%s)\n", v.Method, v.URI, v.Status, v.Latency)
			}

			return nil
		},
	})
}
