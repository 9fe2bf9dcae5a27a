package websocket

import "github.com/google/uuid"

type SocketMessageType int

const (
	Update SocketMessageType = iota
	Command
	Response
	ErrorResponse
	Welcome
)

// SocketMessage is the envelope for everything sent over the activity
// socket. The Id field is echoed back in replies so a client can pair a
// response with the command it sent. Origin and Target are never
// serialised: Origin is the client a message was received from, and
// Target restricts delivery to a single client.
type SocketMessage struct {
	Title  string            `json:"title"`
	Body   map[string]any    `json:"arguments"`
	Id     int               `json:"id"`
	Type   SocketMessageType `json:"type"`
	Origin *uuid.UUID        `json:"-"`
	Target *uuid.UUID        `json:"-"`
}

// FormReply returns a new message addressed to the origin of this one,
// carrying the same Id so the client can correlate it.
func (message *SocketMessage) FormReply(replyTitle string, replyBody map[string]any, replyType SocketMessageType) *SocketMessage {
	if replyBody != nil {
		replyBody["command"] = message.Body
	}

	return &SocketMessage{
		Title:  replyTitle,
		Body:   replyBody,
		Type:   replyType,
		Id:     message.Id,
		Target: message.Origin,
	}
}
