package websocket

import (
	"context"
	"net/http"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hbomb79/Reel/pkg/logger"
)

var socketLogger = logger.Get("WebSocket")

type SocketHandler func(*SocketHub, *SocketMessage) error

// SocketHub manages the upgrading of HTTP connections to websockets, and
// the delivery of messages to and from the connected clients. All client
// bookkeeping happens on the goroutine running Start.
type SocketHub struct {
	handlers           map[string]SocketHandler
	upgrader           *websocket.Upgrader
	clients            []*socketClient
	registerCh         chan *socketClient
	deregisterCh       chan *socketClient
	sendCh             chan *SocketMessage
	receiveCh          chan *SocketMessage
	doneCh             chan struct{}
	connectionCallback func() map[string]any
	running            atomic.Bool
}

func New() *SocketHub {
	return &SocketHub{
		handlers: make(map[string]SocketHandler),
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendCh:       make(chan *SocketMessage),
		receiveCh:    make(chan *SocketMessage),
		registerCh:   make(chan *socketClient),
		deregisterCh: make(chan *socketClient),
		doneCh:       make(chan struct{}),
	}
}

// WithConnectionCallback sets a callback executed each time a new client
// connects. The map returned is sent to the client as the body of its
// welcome message, allowing it to be furnished with the current state.
func (hub *SocketHub) WithConnectionCallback(callback func() map[string]any) {
	hub.connectionCallback = callback
}

// BindCommand binds the command title provided to a handler. Must be
// called before Start.
func (hub *SocketHub) BindCommand(command string, handler SocketHandler) *SocketHub {
	hub.handlers[command] = handler
	return hub
}

// IsRunning reports whether the hub is accepting clients and messages.
func (hub *SocketHub) IsRunning() bool { return hub.running.Load() }

// Start runs the hub until the context is cancelled, at which point every
// client is closed. A hub cannot be restarted once closed.
func (hub *SocketHub) Start(ctx context.Context) {
	if ctx.Err() != nil {
		socketLogger.Emit(logger.STOP, "Refusing to start socket hub as provided context is already cancelled\n")
		return
	}
	select {
	case <-hub.doneCh:
		socketLogger.Emit(logger.WARNING, "Refusing to restart a socket hub which has been closed\n")
		return
	default:
	}
	if !hub.running.CompareAndSwap(false, true) {
		socketLogger.Emit(logger.WARNING, "Attempting to start socket hub when already running! Ignoring request.\n")
		return
	}

	socketLogger.Emit(logger.INFO, "Opening socket hub\n")
	hub.clients = make([]*socketClient, 0)
	defer hub.close()

	for {
		select {
		case message := <-hub.sendCh:
			if message.Target != nil {
				if _, client := hub.findClient(*message.Target); client != nil {
					if err := client.SendMessage(message); err != nil {
						socketLogger.Emit(logger.ERROR, "Failed to send message to target {%v}: %v\n", *message.Target, err)
					}
				} else {
					socketLogger.Emit(logger.WARNING, "Attempted to send message to target {%v}, but no matching client was found\n", *message.Target)
				}

				continue
			}

			hub.broadcastMessage(message)
		case message := <-hub.receiveCh:
			go hub.handleMessage(message)
		case client := <-hub.registerCh:
			if idx, _ := hub.findClient(client.id); idx > -1 {
				socketLogger.Emit(logger.ERROR, "Attempted to register client {%v} which is already registered\n", client.id)
				client.Close()
				continue
			}

			hub.clients = append(hub.clients, client)
			socketLogger.Emit(logger.NEW, "Registered new client {%v}\n", client.id)
		case client := <-hub.deregisterCh:
			if idx, _ := hub.findClient(client.id); idx != -1 {
				hub.clients = slices.Delete(hub.clients, idx, idx+1)
				socketLogger.Emit(logger.REMOVE, "Deregistered client {%v}\n", client.id)
				continue
			}

			socketLogger.Emit(logger.WARNING, "Attempted to deregister unknown client {%v}\n", client.id)
		case <-ctx.Done():
			socketLogger.Emit(logger.REMOVE, "Shutting down socket hub! Closing all clients.\n")
			return
		}
	}
}

// Send queues a message for delivery. A message with a Target is only
// delivered to the client with the matching id, otherwise it is broadcast
// to every client. Messages sent while the hub is offline are dropped.
func (hub *SocketHub) Send(message *SocketMessage) {
	if !hub.running.Load() {
		socketLogger.Emit(logger.VERBOSE, "Dropping socket message %s as the hub is offline\n", message.Title)
		return
	}

	select {
	case hub.sendCh <- message:
	case <-hub.doneCh:
	}
}

// UpgradeToSocket upgrades the HTTP request to a websocket and registers
// the new client with the hub. Blocks until the client disconnects.
func (hub *SocketHub) UpgradeToSocket(w http.ResponseWriter, r *http.Request) {
	if !hub.running.Load() {
		socketLogger.Emit(logger.ERROR, "Failed to upgrade incoming HTTP request to a websocket: socket hub has not been started\n")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	sock, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		socketLogger.Emit(logger.ERROR, "Failed to upgrade incoming HTTP request to a websocket: %v\n", err)
		return
	}

	client := &socketClient{id: uuid.New(), socket: sock}
	select {
	case hub.registerCh <- client:
	case <-hub.doneCh:
		client.Close()
		return
	}

	body := map[string]any{}
	if hub.connectionCallback != nil {
		if state := hub.connectionCallback(); state != nil {
			body = state
		}
	}
	body["client"] = client.id

	target := client.id
	hub.Send(&SocketMessage{
		Title:  "CONNECTION_ESTABLISHED",
		Body:   body,
		Target: &target,
		Type:   Welcome,
	})

	defer func() {
		select {
		case hub.deregisterCh <- client:
		case <-hub.doneCh:
		}
		client.Close()
	}()

	if err := client.Read(hub.receiveCh, hub.doneCh); err != nil {
		socketLogger.Emit(logger.DEBUG, "Client {%v} closed: %v\n", client.id, err)
	}
}

func (hub *SocketHub) close() {
	for _, client := range hub.clients {
		client.Close()
	}

	hub.clients = nil
	hub.running.Store(false)
	close(hub.doneCh)
	socketLogger.Emit(logger.STOP, "Socket hub is now closed\n")
}

// handleMessage forwards a command received from a client to the handler
// bound to its title, replying with a COMMAND_FAILURE if there is none or
// the handler fails.
func (hub *SocketHub) handleMessage(command *SocketMessage) {
	if command.Type != Command {
		socketLogger.Emit(logger.WARNING, "Socket hub received a message from client {%v} of type {%v} - only commands can be sent to the server\n", command.Origin, command.Type)
		return
	}

	replyWithError := func(err string) {
		hub.Send(command.FormReply("COMMAND_FAILURE", map[string]any{"error": err}, ErrorResponse))
	}

	handler, ok := hub.handlers[command.Title]
	if !ok {
		socketLogger.Emit(logger.WARNING, "No handler found for command '%v'\n", command.Title)
		replyWithError("Unknown command")
		return
	}

	if err := handler(hub, command); err != nil {
		socketLogger.Emit(logger.ERROR, "Handler for command '%v' returned error - %v\n", command.Title, err)
		replyWithError(err.Error())
		return
	}

	socketLogger.Emit(logger.DEBUG, "Handler for command '%v' executed successfully\n", command.Title)
}

func (hub *SocketHub) findClient(id uuid.UUID) (int, *socketClient) {
	for idx, client := range hub.clients {
		if client.id == id {
			return idx, client
		}
	}

	return -1, nil
}

// broadcastMessage sends the message to every connected client. A client
// which cannot be written to is skipped, its read loop will notice the
// broken connection and deregister it.
func (hub *SocketHub) broadcastMessage(message *SocketMessage) {
	for _, client := range hub.clients {
		if err := client.SendMessage(message); err != nil {
			socketLogger.Emit(logger.WARNING, "Failed to broadcast %s to client {%v}: %v\n", message.Title, client.id, err)
		}
	}
}
