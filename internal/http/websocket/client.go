package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errHubClosed = errors.New("socket hub closed")

type socketClient struct {
	id      uuid.UUID
	socket  *websocket.Conn
	writeMu sync.Mutex
}

// SendMessage writes the message to the client as JSON. Safe for
// concurrent use, as gorilla connections support only one writer.
func (client *socketClient) SendMessage(message *SocketMessage) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	return client.socket.WriteJSON(message)
}

// Read starts a read-loop on the client's connection, emitting every
// received message on the channel provided. The loop returns when the
// connection fails, a message cannot be decoded, or done is closed. It is
// the responsibility of the caller to deregister the client afterwards.
func (client *socketClient) Read(receiveCh chan<- *SocketMessage, done <-chan struct{}) error {
	for {
		var recv SocketMessage
		if err := client.socket.ReadJSON(&recv); err != nil {
			return err
		}

		origin := client.id
		recv.Origin = &origin
		select {
		case receiveCh <- &recv:
		case <-done:
			return errHubClosed
		}
	}
}

func (client *socketClient) Close() {
	client.socket.Close()
}
