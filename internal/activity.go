package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/pkg/logger"
)

const (
	DEBOUNCE_DURATION  time.Duration = time.Millisecond * 500
	MAX_TIMER_DURATION time.Duration = time.Second * 2
)

type (
	broadcaster interface {
		BroadcastCatalogEvent(event.Event, event.Payload) error
	}

	eventKey struct {
		ev event.Event
		id string
	}

	// activityService forwards catalog events to the activity feed. Bursts
	// of updates to the same record are debounced in to a single message,
	// whereas every other event is broadcast as soon as it arrives.
	activityService struct {
		*sync.Mutex
		broadcaster
		eventBus       event.EventHandler
		debounceTimers map[eventKey]*time.Timer
		maxTimers      map[eventKey]*time.Timer
		debounceTime   time.Duration
		maxTime        time.Duration
	}
)

func newActivityService(broadcaster broadcaster, eventBus event.EventHandler) *activityService {
	return &activityService{
		Mutex:          &sync.Mutex{},
		broadcaster:    broadcaster,
		eventBus:       eventBus,
		debounceTimers: make(map[eventKey]*time.Timer),
		maxTimers:      make(map[eventKey]*time.Timer),
		debounceTime:   DEBOUNCE_DURATION,
		maxTime:        MAX_TIMER_DURATION,
	}
}

func (service *activityService) Run(ctx context.Context) error {
	messageChan := make(event.HandlerChannel, 100)
	service.eventBus.RegisterHandlerChannel(messageChan, event.All...)

	log.Emit(logger.NEW, "Activity service started\n")
	for {
		select {
		case ev := <-messageChan:
			if err := service.handleEvent(ev); err != nil {
				log.Emit(logger.ERROR, "Handling of event %v failed: %v\n", ev, err)
			}
		case <-ctx.Done():
			service.stopTimers()
			log.Emit(logger.STOP, "Activity service closed\n")
			return nil
		}
	}
}

func (service *activityService) handleEvent(ev event.HandlerEvent) error {
	switch ev.Event {
	case event.MOVIE_UPDATED, event.DIRECTOR_UPDATED, event.GENRE_UPDATED, event.COLLECTION_UPDATED:
		change, ok := ev.Payload.(event.Change)
		if !ok {
			return fmt.Errorf("illegal payload %T (expected Change)", ev.Payload)
		}

		service.scheduleEventBroadcast(eventKey{ev: ev.Event, id: change.ID}, ev.Payload)
		return nil
	default:
		return service.BroadcastCatalogEvent(ev.Event, ev.Payload)
	}
}

func (service *activityService) scheduleEventBroadcast(resourceKey eventKey, payload event.Payload) {
	service.Lock()
	defer service.Unlock()

	broadcaster := func() { service.broadcast(resourceKey, payload) }

	// Cancel and re-set a debounce timer
	if t, ok := service.debounceTimers[resourceKey]; ok {
		t.Stop()
	}
	service.debounceTimers[resourceKey] = time.AfterFunc(service.debounceTime, broadcaster)

	// Set a max timer if not already set
	if _, ok := service.maxTimers[resourceKey]; !ok {
		service.maxTimers[resourceKey] = time.AfterFunc(service.maxTime, broadcaster)
	}
}

// broadcast sends the debounced event, unless one of the timers for the
// key has already done so.
func (service *activityService) broadcast(resourceKey eventKey, payload event.Payload) {
	service.Lock()
	_, pending := service.debounceTimers[resourceKey]
	service.clearTimers(resourceKey)
	service.Unlock()

	if !pending {
		return
	}
	if err := service.BroadcastCatalogEvent(resourceKey.ev, payload); err != nil {
		log.Emit(logger.ERROR, "Broadcast of %s for %s failed: %v\n", resourceKey.ev, resourceKey.id, err)
	}
}

func (service *activityService) clearTimers(resourceKey eventKey) {
	if t, ok := service.debounceTimers[resourceKey]; ok {
		t.Stop()
		delete(service.debounceTimers, resourceKey)
	}

	if t, ok := service.maxTimers[resourceKey]; ok {
		t.Stop()
		delete(service.maxTimers, resourceKey)
	}
}

func (service *activityService) stopTimers() {
	service.Lock()
	defer service.Unlock()

	for key := range service.debounceTimers {
		service.clearTimers(key)
	}
	for key := range service.maxTimers {
		service.clearTimers(key)
	}
}
