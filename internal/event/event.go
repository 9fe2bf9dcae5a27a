// A collection of event names and common methods used to handle the events, typically
// redirecting the handling to another part of Reel (such as the activity feed) via the
// handler functions and channels registered against the bus.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Events")

// Events emitted by the catalog whenever a mutation is committed. Listeners
// (the activity feed) subscribe to the events they're interested in.
type (
	Event         string
	Payload       any
	HandlerMethod func(Event, Payload)

	HandlerChannel chan HandlerEvent
	HandlerEvent   struct {
		Event   Event
		Payload Payload
	}

	// Change is the payload for every catalog mutation event. RelatedID
	// is only populated for collection membership events, where it
	// holds the id of the movie added to or removed from the collection.
	Change struct {
		ID        string
		RelatedID string
	}

	EventDispatcher interface {
		Dispatch(Event, Payload)
	}

	EventHandler interface {
		RegisterAsyncHandlerFunction(Event, HandlerMethod)
		RegisterHandlerFunction(Event, HandlerMethod)
		RegisterHandlerChannel(HandlerChannel, ...Event)
	}

	EventCoordinator interface {
		EventDispatcher
		EventHandler
	}

	eventHandler struct {
		mu           sync.RWMutex
		fnHandlers   map[Event][]handlerMethod
		chanHandlers map[Event][]HandlerChannel
	}

	handlerMethod struct {
		handle HandlerMethod
		async  bool
	}
)

const (
	MOVIE_CREATED Event = "movie:created"
	MOVIE_UPDATED Event = "movie:updated"
	MOVIE_DELETED Event = "movie:deleted"

	DIRECTOR_CREATED Event = "director:created"
	DIRECTOR_UPDATED Event = "director:updated"
	DIRECTOR_DELETED Event = "director:deleted"

	GENRE_CREATED Event = "genre:created"
	GENRE_UPDATED Event = "genre:updated"
	GENRE_DELETED Event = "genre:deleted"

	COLLECTION_CREATED       Event = "collection:created"
	COLLECTION_UPDATED       Event = "collection:updated"
	COLLECTION_DELETED       Event = "collection:deleted"
	COLLECTION_MOVIE_ADDED   Event = "collection:movie:added"
	COLLECTION_MOVIE_REMOVED Event = "collection:movie:removed"

	// CATALOG_RECOUNTED carries the number of counters which
	// had drifted and were corrected (an int).
	CATALOG_RECOUNTED Event = "catalog:recounted"
)

// All is every event the catalog may dispatch.
var All = []Event{
	MOVIE_CREATED, MOVIE_UPDATED, MOVIE_DELETED,
	DIRECTOR_CREATED, DIRECTOR_UPDATED, DIRECTOR_DELETED,
	GENRE_CREATED, GENRE_UPDATED, GENRE_DELETED,
	COLLECTION_CREATED, COLLECTION_UPDATED, COLLECTION_DELETED,
	COLLECTION_MOVIE_ADDED, COLLECTION_MOVIE_REMOVED,
	CATALOG_RECOUNTED,
}

func New() EventCoordinator {
	return &eventHandler{
		fnHandlers:   make(map[Event][]handlerMethod),
		chanHandlers: make(map[Event][]HandlerChannel),
	}
}

// RegisterHandlerChannel takes an event type and a channel and will send Event messages on
// the channel any time a Dispatch for the provided event occurs.
// This method can be used multiple times for different events on the same channel.
//
// If the channel is BLOCKED when the event bus attempts to send the message on the handler channel,
// then the thread dispatching the event will also be BLOCKED. It is recommended to buffer the handler channels
// appropriately to avoid dispatcher-side blocking.
func (handler *eventHandler) RegisterHandlerChannel(handle HandlerChannel, events ...Event) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	for _, event := range events {
		handler.chanHandlers[event] = append(handler.chanHandlers[event], handle)
	}
}

// RegisterHandlerFunction takes an event type and a handler method which will be stored
// and called with the payload for the event whenever it is dispatched.
// The handle provided should be guaranteed to return quickly, else other threads calling
// Dispatch on this event bus will be blocked.
func (handler *eventHandler) RegisterHandlerFunction(event Event, handle HandlerMethod) {
	handler.registerHandlerMethod(event, handlerMethod{handle, false})
}

// RegisterAsyncHandlerFunction accepts an Event and a HandlerMethod which will be stored and
// called inside of a goroutine when the event is handled.
func (handler *eventHandler) RegisterAsyncHandlerFunction(event Event, handle HandlerMethod) {
	handler.registerHandlerMethod(event, handlerMethod{handle, true})
}

func (handler *eventHandler) registerHandlerMethod(event Event, handle handlerMethod) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	handler.fnHandlers[event] = append(handler.fnHandlers[event], handle)
}

// Dispatch takes an event type and a payload and passes the payload to every handler
// registered for the event type provided.
// Note that this method WILL block if a synchronous handler function is blocking, or if channel
// handlers are blocked.
func (handler *eventHandler) Dispatch(event Event, payload Payload) {
	if err := validatePayload(event, payload); err != nil {
		log.Emit(logger.ERROR, "Dispatch for event %v FAILED validation: %v\n", event, err)
		return
	}

	handler.mu.RLock()
	fnHandles := handler.fnHandlers[event]
	chanHandles := handler.chanHandlers[event]
	handler.mu.RUnlock()

	for _, handle := range fnHandles {
		if handle.async {
			go handle.handle(event, payload)
		} else {
			handle.handle(event, payload)
		}
	}

	if len(chanHandles) > 0 {
		payload := HandlerEvent{event, payload}
		for _, handle := range chanHandles {
			handle <- payload
		}
	}
}

// validatePayload ensures that the payload provided is valid for the event specified. An error
// will be returned if the payload is not valid, and the event should not be sent to the registered
// handlers in this case.
func validatePayload(event Event, payload Payload) error {
	var payloadTypeName string
	if t := reflect.TypeOf(payload); t != nil {
		payloadTypeName = t.Name()
	} else {
		payloadTypeName = "Nil"
	}

	switch event {
	case MOVIE_CREATED, MOVIE_UPDATED, MOVIE_DELETED,
		DIRECTOR_CREATED, DIRECTOR_UPDATED, DIRECTOR_DELETED,
		GENRE_CREATED, GENRE_UPDATED, GENRE_DELETED,
		COLLECTION_CREATED, COLLECTION_UPDATED, COLLECTION_DELETED:
		change, ok := payload.(Change)
		if !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected Change payload", payloadTypeName, event)
		}
		if change.ID == "" {
			return fmt.Errorf("%s event payload is missing the record id", event)
		}

		return nil
	case COLLECTION_MOVIE_ADDED, COLLECTION_MOVIE_REMOVED:
		change, ok := payload.(Change)
		if !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected Change payload", payloadTypeName, event)
		}
		if change.ID == "" || change.RelatedID == "" {
			return fmt.Errorf("%s event payload requires both a collection and a movie id", event)
		}

		return nil
	case CATALOG_RECOUNTED:
		if _, ok := payload.(int); !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected int payload", payloadTypeName, event)
		}

		return nil
	}

	return errors.New("event type not recognized for validation")
}
