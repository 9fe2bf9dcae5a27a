package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_DeliversToFunctionsAndChannels(t *testing.T) {
	bus := event.New()

	var received []event.Payload
	bus.RegisterHandlerFunction(event.MOVIE_CREATED, func(_ event.Event, p event.Payload) {
		received = append(received, p)
	})

	ch := make(event.HandlerChannel, 1)
	bus.RegisterHandlerChannel(ch, event.MOVIE_CREATED, event.MOVIE_DELETED)

	bus.Dispatch(event.MOVIE_CREATED, event.Change{ID: "mov_001"})

	require.Len(t, received, 1)
	assert.Equal(t, event.Change{ID: "mov_001"}, received[0])

	select {
	case ev := <-ch:
		assert.Equal(t, event.MOVIE_CREATED, ev.Event)
	case <-time.After(time.Second):
		t.Fatal("channel handler did not receive event")
	}
}

func TestDispatch_Async(t *testing.T) {
	bus := event.New()

	wg := sync.WaitGroup{}
	wg.Add(1)
	bus.RegisterAsyncHandlerFunction(event.CATALOG_RECOUNTED, func(_ event.Event, p event.Payload) {
		defer wg.Done()
		assert.Equal(t, 3, p)
	})

	bus.Dispatch(event.CATALOG_RECOUNTED, 3)
	wg.Wait()
}

func TestDispatch_DropsInvalidPayloads(t *testing.T) {
	tests := []struct {
		summary string
		event   event.Event
		payload event.Payload
	}{
		{"wrong payload type", event.MOVIE_UPDATED, "mov_001"},
		{"missing id", event.GENRE_DELETED, event.Change{}},
		{"membership missing movie", event.COLLECTION_MOVIE_ADDED, event.Change{ID: "col_001"}},
		{"recount with change", event.CATALOG_RECOUNTED, event.Change{ID: "x"}},
		{"unknown event", event.Event("nope"), event.Change{ID: "x"}},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			bus := event.New()
			called := false
			bus.RegisterHandlerFunction(test.event, func(event.Event, event.Payload) { called = true })

			bus.Dispatch(test.event, test.payload)
			assert.False(t, called)
		})
	}
}
