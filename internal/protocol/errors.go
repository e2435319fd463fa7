package protocol

// Wire error codes the client must recognize. Anything else is passed
// through as an opaque failure.
const (
	ErrCodeRoomNotFound   = 4212
	ErrCodeBadRequest     = 400
	ErrCodeSessionExpired = 4213
)

// MsgUsernameTaken is the message tag the server pairs with
// ErrCodeBadRequest when the name is already in use in the room.
const MsgUsernameTaken = "usernameTaken"
