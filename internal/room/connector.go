package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/haystack-game/haystack-client/internal/apperrors"
	"github.com/haystack-game/haystack-client/internal/logger"
	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/session"
)

// NoticeLevel grades a user-facing notice.
type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeWarning
	NoticeDanger
)

// NoticeFunc receives transient user-facing notices. Rendering is the
// caller's concern.
type NoticeFunc func(level NoticeLevel, text string)

// Connector establishes room connections: create-new or join-existing,
// with an automatic reconnect-by-session-id attempt before falling
// back to a fresh join. It performs no persistence; callers save the
// resulting (roomId, sessionId, playerName) triple themselves.
type Connector struct {
	transport Transport

	// stored is the session triple read once at startup, or nil.
	stored *session.Session

	// OnNotice, if set, receives the transient "session expired"
	// notice emitted between a failed reconnect and the fresh join.
	OnNotice NoticeFunc
}

// NewConnector creates a connector over an established transport.
func NewConnector(transport Transport, stored *session.Session) *Connector {
	return &Connector{transport: transport, stored: stored}
}

// CreateRoom requests a brand-new room seeded with playerName. There
// is no preceding session to restore, so no reconnect is attempted.
func (c *Connector) CreateRoom(ctx context.Context, playerName string) (*Room, error) {
	joined, err := c.call(ctx, protocol.MsgRoomCreate, protocol.RoomCreatePayload{
		RequestID:  uuid.NewString(),
		PlayerName: playerName,
	})
	if err != nil {
		return nil, err
	}
	return NewRoom(joined.RoomID, joined.SessionID, c.transport), nil
}

// JoinRoom joins the given room. If the stored session matches the
// requested room id, a reconnect with the stored session id is tried
// first; on any reconnect failure a transient notice is emitted and
// the join falls through to a fresh attempt. The result is always the
// fresh join's outcome, never a stale session error.
func (c *Connector) JoinRoom(ctx context.Context, roomID, playerName string) (*Room, error) {
	if c.stored != nil && c.stored.RoomID == roomID && c.stored.SessionID != "" {
		joined, err := c.call(ctx, protocol.MsgRoomReconnect, protocol.RoomReconnectPayload{
			RequestID: uuid.NewString(),
			RoomID:    roomID,
			SessionID: c.stored.SessionID,
		})
		if err == nil {
			return NewRoom(joined.RoomID, joined.SessionID, c.transport), nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		logger.LogInfo("reconnect to room %s failed, joining fresh: %v", roomID, err)
		c.notify(NoticeDanger, "Session expired, joining as a new user")
	}

	joined, err := c.call(ctx, protocol.MsgRoomJoin, protocol.RoomJoinPayload{
		RequestID:  uuid.NewString(),
		RoomID:     roomID,
		PlayerName: playerName,
	})
	if err != nil {
		return nil, err
	}
	return NewRoom(joined.RoomID, joined.SessionID, c.transport), nil
}

func (c *Connector) notify(level NoticeLevel, text string) {
	if c.OnNotice != nil {
		c.OnNotice(level, text)
	}
}

// call sends one matchmaking request and blocks until the matching
// room/joined or error response arrives. These calls are the only
// suspension points in the engine; cancellation comes from ctx, the
// engine imposes no deadline of its own.
func (c *Connector) call(ctx context.Context, msgType protocol.MessageType, payload any) (*protocol.RoomJoinedPayload, error) {
	requestID := requestIDOf(payload)

	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, apperrors.Unknown(err)
	}
	if err := c.transport.SendMessage(msg); err != nil {
		return nil, apperrors.Unknown(err)
	}

	for {
		resp, err := c.transport.Receive(ctx)
		if err != nil {
			return nil, apperrors.Unknown(err)
		}

		switch resp.Type {
		case protocol.MsgRoomJoined:
			joined, err := protocol.ParsePayload[protocol.RoomJoinedPayload](resp)
			if err != nil {
				return nil, apperrors.Unknown(err)
			}
			if joined.RequestID != "" && joined.RequestID != requestID {
				continue
			}
			return joined, nil

		case protocol.MsgError:
			errPayload, err := protocol.ParsePayload[protocol.ErrorPayload](resp)
			if err != nil {
				return nil, apperrors.Unknown(err)
			}
			if errPayload.RequestID != "" && errPayload.RequestID != requestID {
				continue
			}
			return nil, classify(errPayload)

		default:
			// State pushes may already be in flight; matchmaking only
			// consumes its own responses.
			continue
		}
	}
}

// classify maps a server rejection to the three error kinds callers
// discriminate on. This is the single place wire codes are interpreted.
func classify(p *protocol.ErrorPayload) *apperrors.JoinError {
	switch {
	case p.Code == protocol.ErrCodeRoomNotFound:
		return apperrors.ErrRoomNotFound
	case p.Code == protocol.ErrCodeBadRequest && p.Message == protocol.MsgUsernameTaken:
		return apperrors.ErrUsernameTaken
	case p.Code == protocol.ErrCodeSessionExpired:
		return apperrors.ErrSessionExpired
	default:
		return apperrors.Unknown(fmt.Errorf("server rejected request: %d %s", p.Code, p.Message))
	}
}

func requestIDOf(payload any) string {
	switch p := payload.(type) {
	case protocol.RoomCreatePayload:
		return p.RequestID
	case protocol.RoomJoinPayload:
		return p.RequestID
	case protocol.RoomReconnectPayload:
		return p.RequestID
	default:
		return ""
	}
}
