// Package protocol defines the wire contract between the haystack
// client and the room server: the message envelope, the named message
// types, and their payloads. The server is the sole authority for game
// sequencing; the client only sends commands and mirrors pushed state.
package protocol

import "encoding/json"

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType names a message.
type MessageType string

// Client → server: matchmaking requests.
const (
	MsgRoomCreate    MessageType = "room/create"    // open a brand-new room
	MsgRoomJoin      MessageType = "room/join"      // join an existing room by id
	MsgRoomReconnect MessageType = "room/reconnect" // resume a previous session
)

// Client → server: room commands. All of these are gated client-side
// (admin / in-game / guessing-active) before they are sent.
const (
	MsgSettingsUpdate MessageType = "settings/update"
	MsgGameStart      MessageType = "game/start"
	MsgRoundStart     MessageType = "round/start"
	MsgGuessSubmit    MessageType = "guess/submit"
	MsgScoresSend     MessageType = "scores/send"
	MsgRoundFinish    MessageType = "round/finish"
	MsgGameCancel     MessageType = "game/cancel"
)

// Server → client: matchmaking and errors.
const (
	MsgRoomJoined MessageType = "room/joined"
	MsgError      MessageType = "error"
)

// Server → client: replicated-state sync.
const (
	MsgStateSnapshot MessageType = "state/snapshot"       // full mirror, first one per connection
	MsgStateRoom     MessageType = "state/room"           // room-level field patch
	MsgPlayerAdded   MessageType = "state/player_added"   // structural add with full player
	MsgPlayerRemoved MessageType = "state/player_removed" // structural remove
	MsgPlayerPatched MessageType = "state/player"         // field-level player patch
)

// Server → client: round lifecycle and roster notifications.
const (
	MsgRoundPrepared   MessageType = "round/prepared"
	MsgRoundStarted    MessageType = "round/started"
	MsgRoundCompleted  MessageType = "round/completed"
	MsgScoresSent      MessageType = "scores/sent"
	MsgGameCompleted   MessageType = "game/completed"
	MsgGameCancelled   MessageType = "game/cancelled"
	MsgSettingsUpdated MessageType = "settings/updated"
	MsgPlayerFinished  MessageType = "player/finished"
	MsgPlayerLeft      MessageType = "player/left"
	MsgPlayerRejoined  MessageType = "player/rejoined"
)

// NewMessage builds a message, marshalling the payload.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage builds a message and panics on marshal failure. Only
// for payload types known to marshal cleanly.
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode serializes the message for the wire.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire frame into a message.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ParsePayload unmarshals a message payload into the given type.
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, err
		}
	}
	return &payload, nil
}
