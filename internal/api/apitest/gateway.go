// Package apitest provides helpers for driving the REST gateway in tests,
// backed by an in-memory store.
package apitest

import (
	"testing"
	"time"

	"github.com/hbomb79/Reel/internal/api"
	"github.com/hbomb79/Reel/internal/api/jwt"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/store/memory"
	"github.com/hbomb79/Reel/internal/user"
)

const TestSecret = "reel-test-secret"

type Env struct {
	Gateway *api.RestGateway
	Catalog *catalog.Service
	Users   *user.Service
	Store   *memory.Store
	Events  event.EventCoordinator
}

// NewEnv constructs a gateway over a fresh in-memory catalog. Every catalog
// event is forwarded straight to the gateway's activity feed.
func NewEnv(t *testing.T, requireAuthForWrites bool) *Env {
	t.Helper()

	st := memory.New()
	bus := event.New()
	env := &Env{
		Catalog: catalog.New(st, bus),
		Users:   user.NewService(st),
		Store:   st,
		Events:  bus,
	}
	env.Gateway = api.NewRestGateway(
		&api.RestConfig{HostAddr: "127.0.0.1:0"},
		jwt.NewJwtAuth([]byte(TestSecret), time.Hour),
		requireAuthForWrites,
		env.Catalog,
		env.Users,
	)

	for _, ev := range event.All {
		bus.RegisterHandlerFunction(ev, func(ev event.Event, payload event.Payload) {
			if err := env.Gateway.BroadcastCatalogEvent(ev, payload); err != nil {
				t.Errorf("broadcast of %s failed: %v", ev, err)
			}
		})
	}

	return env
}

// Client returns an anonymous client for the gateway.
func (env *Env) Client(t *testing.T) *Client {
	return &Client{t: t, handler: env.Gateway}
}
