package websocket_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/hbomb79/Reel/internal/http/websocket"
	"github.com/hbomb79/go-chanassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchMessage(title string, typ websocket.SocketMessageType) chanassert.Matcher[websocket.SocketMessage] {
	return chanassert.MatchStructPartial(websocket.SocketMessage{Title: title, Type: typ})
}

func startHub(t *testing.T, configure func(*websocket.SocketHub)) (*websocket.SocketHub, string, context.CancelFunc) {
	hub := websocket.New()
	if configure != nil {
		configure(hub)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Start(ctx)
	require.Eventually(t, hub.IsRunning, time.Second, 5*time.Millisecond, "hub never started")

	srv := httptest.NewServer(http.HandlerFunc(hub.UpgradeToSocket))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *gws.Conn {
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func read(t *testing.T, conn *gws.Conn) websocket.SocketMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message websocket.SocketMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestHub_WelcomesClientsWithConnectionState(t *testing.T) {
	_, url, _ := startHub(t, func(hub *websocket.SocketHub) {
		hub.WithConnectionCallback(func() map[string]any { return map[string]any{"movies": 3} })
	})

	welcome := read(t, dial(t, url))
	assert.True(t, matchMessage("CONNECTION_ESTABLISHED", websocket.Welcome).DoesMatch(welcome))
	assert.EqualValues(t, 3, welcome.Body["movies"])
	assert.NotEmpty(t, welcome.Body["client"])
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub, url, _ := startHub(t, nil)

	first, second := dial(t, url), dial(t, url)
	read(t, first)
	read(t, second)

	hub.Send(&websocket.SocketMessage{
		Title: "movie:created",
		Body:  map[string]any{"id": "mov_001"},
		Type:  websocket.Update,
	})

	createdMovie := chanassert.MatchPredicate(func(message websocket.SocketMessage) bool {
		return message.Title == "movie:created" && message.Type == websocket.Update && message.Body["id"] == "mov_001"
	})
	assert.True(t, createdMovie.DoesMatch(read(t, first)))
	assert.True(t, createdMovie.DoesMatch(read(t, second)))
}

func TestHub_Commands(t *testing.T) {
	_, url, _ := startHub(t, func(hub *websocket.SocketHub) {
		hub.BindCommand("PING", func(hub *websocket.SocketHub, command *websocket.SocketMessage) error {
			hub.Send(command.FormReply("PONG", map[string]any{}, websocket.Response))
			return nil
		})
		hub.BindCommand("FAIL", func(*websocket.SocketHub, *websocket.SocketMessage) error {
			return errors.New("nope")
		})
	})

	conn := dial(t, url)
	read(t, conn)

	tests := []struct {
		command string
		title   string
		typ     websocket.SocketMessageType
		error   string
	}{
		{command: "PING", title: "PONG", typ: websocket.Response},
		{command: "FAIL", title: "COMMAND_FAILURE", typ: websocket.ErrorResponse, error: "nope"},
		{command: "UNKNOWN", title: "COMMAND_FAILURE", typ: websocket.ErrorResponse, error: "Unknown command"},
	}
	for i, test := range tests {
		t.Run(test.command, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(websocket.SocketMessage{Title: test.command, Type: websocket.Command, Id: i + 1}))

			reply := read(t, conn)
			assert.True(t, matchMessage(test.title, test.typ).DoesMatch(reply), "unexpected reply %#v", reply)
			assert.Equal(t, i+1, reply.Id)
			if test.error != "" {
				assert.Equal(t, test.error, reply.Body["error"])
			}
		})
	}
}

func TestHub_ClosesClientsOnShutdown(t *testing.T) {
	hub, url, cancel := startHub(t, nil)

	conn := dial(t, url)
	read(t, conn)

	cancel()
	require.Eventually(t, func() bool { return !hub.IsRunning() }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "expected connection to be closed by the hub")
}
