// Package room implements the client-side room engine: the connection
// manager that establishes or resumes a session, the room handle that
// routes server messages to listeners, and the replicated-state mirror
// kept current from server pushes.
package room

import (
	"context"

	"github.com/haystack-game/haystack-client/internal/protocol"
)

// Transport is the single-connection message pipe the room engine
// runs on. *client.Client satisfies it.
type Transport interface {
	SendMessage(*protocol.Message) error
	Receive(ctx context.Context) (*protocol.Message, error)
	Close()
}

// Room is the handle for one joined room: it owns the listener
// registry and forwards outbound commands to the transport. The
// handle persists across games in the same room; only its listeners
// are torn down and re-armed between games.
//
// Dispatch runs on a single goroutine owned by the caller, so handlers
// never execute concurrently and may register or remove listeners from
// within a callback.
type Room struct {
	ID        string
	SessionID string

	transport Transport
	handlers  map[protocol.MessageType][]func(*protocol.Message)
}

// NewRoom wraps an established connection in a room handle.
func NewRoom(id, sessionID string, transport Transport) *Room {
	return &Room{
		ID:        id,
		SessionID: sessionID,
		transport: transport,
		handlers:  make(map[protocol.MessageType][]func(*protocol.Message)),
	}
}

// OnMessage registers a listener for a message type. Listeners for the
// same type run in registration order.
func (r *Room) OnMessage(msgType protocol.MessageType, fn func(*protocol.Message)) {
	r.handlers[msgType] = append(r.handlers[msgType], fn)
}

// RemoveAllListeners drops every registered listener. Used between
// games so the next game starts with a fresh subscription set.
func (r *Room) RemoveAllListeners() {
	r.handlers = make(map[protocol.MessageType][]func(*protocol.Message))
}

// Send forwards a command to the server.
func (r *Room) Send(msgType protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return r.transport.SendMessage(msg)
}

// Dispatch delivers one server message to its listeners. The handler
// list is copied first so a listener may re-arm the registry while a
// dispatch is in flight.
func (r *Room) Dispatch(msg *protocol.Message) {
	fns := r.handlers[msg.Type]
	if len(fns) == 0 {
		return
	}
	snapshot := make([]func(*protocol.Message), len(fns))
	copy(snapshot, fns)
	for _, fn := range snapshot {
		fn(msg)
	}
}

// Leave closes the underlying connection.
func (r *Room) Leave() {
	r.transport.Close()
}
