// Package apperrors classifies the failures a caller of the
// connection layer must discriminate on. Everything else stays an
// opaque cause inside JoinError.
package apperrors

import (
	"errors"
	"fmt"
)

// JoinKind is the discriminant for join/create/reconnect failures.
type JoinKind int

const (
	// KindUnknown covers every failure the caller has no special
	// handling for; the cause is preserved for logging.
	KindUnknown JoinKind = iota
	// KindRoomNotFound: the requested room id does not exist.
	KindRoomNotFound
	// KindUsernameTaken: the name is already in use in the room.
	KindUsernameTaken
	// KindSessionExpired: a reconnect attempt was rejected. Recovered
	// locally by a fresh join, never surfaced as a terminal result.
	KindSessionExpired
)

// JoinError is a classified connection failure.
type JoinError struct {
	Kind  JoinKind
	Cause error
}

func (e *JoinError) Error() string {
	switch e.Kind {
	case KindRoomNotFound:
		return "room not found"
	case KindUsernameTaken:
		return "username already taken in room"
	case KindSessionExpired:
		return "session expired"
	default:
		if e.Cause != nil {
			return fmt.Sprintf("join failed: %v", e.Cause)
		}
		return "join failed"
	}
}

func (e *JoinError) Unwrap() error { return e.Cause }

// Predefined classified errors for errors.Is checks.
var (
	ErrRoomNotFound   = &JoinError{Kind: KindRoomNotFound}
	ErrUsernameTaken  = &JoinError{Kind: KindUsernameTaken}
	ErrSessionExpired = &JoinError{Kind: KindSessionExpired}
)

// Is matches two JoinErrors by kind, so
// errors.Is(err, apperrors.ErrRoomNotFound) works regardless of cause.
func (e *JoinError) Is(target error) bool {
	var t *JoinError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Unknown wraps an unclassified cause.
func Unknown(cause error) *JoinError {
	return &JoinError{Kind: KindUnknown, Cause: cause}
}
