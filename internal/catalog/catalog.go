// Package catalog implements the operations of the movie catalog on top of a
// store.Store. It owns referential integrity between records and keeps the
// denormalized film counters consistent: every mutation runs inside a single
// store transaction, so either all of its writes are committed or none are.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Catalog")

type Service struct {
	store  store.Store
	events event.EventDispatcher
	now    func() time.Time
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(event.Event, event.Payload) {}

// New creates a catalog service using the store provided. Events for every
// committed mutation are sent to the dispatcher, which may be nil.
func New(store store.Store, events event.EventDispatcher) *Service {
	if events == nil {
		events = noopDispatcher{}
	}

	return &Service{store: store, events: events, now: func() time.Time { return time.Now().UTC() }}
}

func (service *Service) dispatch(ev event.Event, payload event.Payload) {
	service.events.Dispatch(ev, payload)
}

// adjustCounter changes the film count of the record, tolerating the record
// having vanished (possible only for imported data which never went through
// the integrity checks). Recount repairs any such drift.
func adjustCounter(tx store.Tx, kind ident.Kind, id string, delta int) error {
	if id == "" {
		return nil
	}

	if err := tx.AdjustFilmCount(kind, id, delta); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warnf("Cannot adjust film count of missing %s %s\n", kind, id)
			return nil
		}

		return err
	}

	return nil
}

func (service *Service) view(ctx context.Context, fn func(store.Tx) error) error {
	return service.store.View(ctx, fn)
}

func (service *Service) transaction(ctx context.Context, fn func(store.Tx) error) error {
	return service.store.Transaction(ctx, fn)
}
