package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/hbomb79/Reel/internal/api"
	"github.com/hbomb79/Reel/internal/api/jwt"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/database"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/importer"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/internal/store/memory"
	"github.com/hbomb79/Reel/internal/store/postgres"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	RestGateway interface {
		RunnableService
		broadcaster
	}
)

// Reel represents the top-level object for the server, and is responsible
// for initialising the store, services, event handling, et cetera...
type Reel struct {
	config   *ReelConfig
	eventBus event.EventCoordinator
	db       *database.Manager
	store    store.Store
	watcher  RunnableService

	catalog     *catalog.Service
	users       *user.Service
	restGateway RestGateway
	activity    *activityService
}

// New constructs Reel using the configuration provided, connecting to
// the database (and migrating it) when the postgres driver is selected.
func New(ctx context.Context, config *ReelConfig) (*Reel, error) {
	log.Emit(logger.DEBUG, "Bootstrapping Reel services using store driver %s\n", config.Store.Driver)
	reel := &Reel{config: config, eventBus: event.New()}

	if err := reel.initialiseStore(ctx); err != nil {
		return nil, err
	}

	lifespan, err := jwt.ParseLifespan(config.Auth.ExpiresIn)
	if err != nil {
		return nil, err
	}
	secret := config.Auth.Secret
	if secret == "" {
		log.Emit(logger.WARNING, "No JWT_SECRET configured, falling back to an insecure default secret!\n")
		secret = jwt.DefaultSecret
	}

	reel.catalog = catalog.New(reel.store, reel.eventBus)
	reel.users = user.NewService(reel.store)
	gateway := api.NewRestGateway(
		&config.RestConfig,
		jwt.NewJwtAuth([]byte(secret), lifespan),
		config.Auth.RequireForWrites,
		reel.catalog,
		reel.users,
	)
	reel.restGateway = gateway
	reel.activity = newActivityService(gateway, reel.eventBus)

	return reel, nil
}

func (reel *Reel) initialiseStore(ctx context.Context) error {
	switch reel.config.Store.Driver {
	case DriverPostgres:
		log.Emit(logger.NEW, "Connecting to database...\n")
		reel.db = database.New()
		if err := reel.db.Connect(ctx, reel.config.Database); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		reel.store = postgres.New(reel.db.GetSqlxDb())
	case DriverMemory:
		if reel.config.Store.DataFile == "" {
			log.Emit(logger.WARNING, "Using in-memory store WITHOUT persistence, data will be lost on shutdown\n")
			reel.store = memory.New()
			return nil
		}

		mem, err := memory.NewWithFile(reel.config.Store.DataFile)
		if err != nil {
			return err
		}
		reel.store = mem
		if reel.config.Store.WatchFile {
			reel.watcher = mem
		}
	default:
		return fmt.Errorf("unknown store driver '%s'", reel.config.Store.Driver)
	}

	return nil
}

// Run will start all of Reel by bringing up all required services.
//
// This function will not return until Reel is stopped.
// To stop Reel, the provided context must be cancelled. Errors from which Reel cannot recover
// will also cause Reel to stop.
func (reel *Reel) Run(parent context.Context) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)
	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel(fmt.Errorf("%s: %w", label, err))
	}

	wg := &sync.WaitGroup{}
	reel.spawnAsyncService(ctx, wg, reel.activity, "activity-service", crashHandler)
	reel.spawnAsyncService(ctx, wg, reel.restGateway, "rest-gateway", crashHandler)
	if reel.watcher != nil {
		reel.spawnAsyncService(ctx, wg, reel.watcher, "data-file-watcher", crashHandler)
	}
	log.Emit(logger.SUCCESS, "Reel services spawned!\n")

	wg.Wait()
	reel.close()

	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// Import loads the legacy JSON data files found in dir in to the catalog.
func (reel *Reel) Import(ctx context.Context, dir string) (*importer.Report, error) {
	defer reel.close()
	return importer.New(reel.store, reel.catalog).ImportDir(ctx, dir)
}

func (reel *Reel) close() {
	if reel.db == nil {
		return
	}

	if err := reel.db.Close(); err != nil {
		log.Warnf("Failed to close database connection: %v\n", err)
	}
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the Reel service waitgroup is updated correctly
func (reel *Reel) spawnAsyncService(ctx context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		if err := service.Run(ctx); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
