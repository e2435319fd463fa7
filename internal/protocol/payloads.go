package protocol

import "github.com/haystack-game/haystack-client/internal/geo"

// --- Client request payloads ---

// RoomCreatePayload seeds a brand-new room with its first player.
type RoomCreatePayload struct {
	RequestID  string `json:"request_id"`
	PlayerName string `json:"player_name"`
}

// RoomJoinPayload joins an existing room as a fresh session.
type RoomJoinPayload struct {
	RequestID  string `json:"request_id"`
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

// RoomReconnectPayload resumes a previous session in a room.
type RoomReconnectPayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
	SessionID string `json:"session_id"`
}

// Settings is the room configuration an admin can change.
type Settings struct {
	Rounds int `json:"rounds"`
}

// SettingsUpdatePayload is shared by settings/update and game/start.
type SettingsUpdatePayload struct {
	Settings Settings `json:"settings"`
}

// GuessSubmitPayload carries a guess coordinate.
type GuessSubmitPayload struct {
	LatLng geo.LatLng `json:"latLng"`
}

// --- Server response payloads ---

// RoomJoinedPayload answers room/create, room/join and room/reconnect.
type RoomJoinedPayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
	SessionID string `json:"session_id"`
}

// ErrorPayload is the server-side rejection envelope. Code and Message
// are transport-defined tags; the client maps the known ones to its
// join-error kinds and treats the rest as opaque.
type ErrorPayload struct {
	RequestID string `json:"request_id,omitempty"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}

// --- Replicated-state payloads ---

// PlayerState is the replicated per-player record, keyed by session
// id. Round-scoped fields are meaningful only while the game is active
// and the player is in it.
type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`

	Admin  bool `json:"admin"`
	InGame bool `json:"in_game"`

	RoundDone    bool    `json:"round_done"`
	LastGuessLat float64 `json:"last_guess_lat"`
	LastGuessLng float64 `json:"last_guess_lng"`
	LastDistance float64 `json:"last_distance"`
	LastScore    int     `json:"last_score"`

	Score int `json:"score"`

	DisconnectedPreviously bool `json:"disconnected_previously"`
	DisconnectedCurrently  bool `json:"disconnected_currently"`

	TimeJoined int64 `json:"time_joined"`
}

// RoomState is the replicated room-level record. LastTargetLat/Lng are
// revealed by the server only once a round completes.
type RoomState struct {
	SettingRounds       int     `json:"setting_rounds"`
	CurrentRoundCounter int     `json:"current_round_counter"`
	GameActive          bool    `json:"game_active"`
	GuessingActive      bool    `json:"guessing_active"`
	CurrentTarget       string  `json:"current_target"`
	LastTargetLat       float64 `json:"last_target_lat"`
	LastTargetLng       float64 `json:"last_target_lng"`
}

// StateSnapshotPayload is the full mirror pushed after connecting and
// whenever the server decides to resync.
type StateSnapshotPayload struct {
	Room    RoomState     `json:"room"`
	Players []PlayerState `json:"players"`
}

// StateRoomPayload patches the room-level record wholesale. The server
// sends the complete record; the client overwrites its mirror copy.
type StateRoomPayload struct {
	Room RoomState `json:"room"`
}

// PlayerAddedPayload announces a new player entry.
type PlayerAddedPayload struct {
	Player PlayerState `json:"player"`
}

// PlayerRemovedPayload announces a permanently departed player.
type PlayerRemovedPayload struct {
	Player string `json:"player"` // session id
}

// PlayerPatchedPayload replaces a single player's record.
type PlayerPatchedPayload struct {
	Player PlayerState `json:"player"`
}

// --- Notification payloads ---

// SettingsUpdatedPayload confirms a settings change to all members.
type SettingsUpdatedPayload struct {
	Settings Settings `json:"settings"`
}

// PlayerRefPayload carries a session id, used by player/left and
// player/rejoined.
type PlayerRefPayload struct {
	Player string `json:"player"`
}
