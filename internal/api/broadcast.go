package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/http/websocket"
)

type broadcaster struct {
	socketHub *websocket.SocketHub
}

func newBroadcaster(socketHub *websocket.SocketHub) *broadcaster {
	return &broadcaster{socketHub}
}

// EventNames lists the titles of every update message the activity feed
// may broadcast.
func (hub *broadcaster) EventNames() []string {
	names := make([]string, 0, len(event.All))
	for _, ev := range event.All {
		names = append(names, string(ev))
	}

	return names
}

// BroadcastCatalogEvent sends an update to every connected client
// describing the catalog event provided. The message title is the
// name of the event.
func (hub *broadcaster) BroadcastCatalogEvent(ev event.Event, payload event.Payload) error {
	body := make(map[string]any)
	switch p := payload.(type) {
	case event.Change:
		body["id"] = p.ID
		if resource, ok := resourceOf(ev); ok {
			body["_link"] = hateoas.NewLink(fmt.Sprintf("%s/%s/%s", hateoas.BasePath, resource, p.ID), http.MethodGet, "self")
		}
		if p.RelatedID != "" {
			body["movie_id"] = p.RelatedID
		}
	case int:
		body["corrections"] = p
	default:
		return fmt.Errorf("cannot broadcast %s event with payload of type %T", ev, payload)
	}

	hub.socketHub.Send(&websocket.SocketMessage{
		Title: string(ev),
		Body:  body,
		Type:  websocket.Update,
	})
	return nil
}

// resourceOf returns the collection path of the record an event is
// about. Deleted records have no resource to link to.
func resourceOf(ev event.Event) (string, bool) {
	kind, action, _ := strings.Cut(string(ev), ":")
	if action == "deleted" || kind == "catalog" {
		return "", false
	}

	return kind + "s", true
}
