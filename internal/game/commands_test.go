package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystack-game/haystack-client/internal/geo"
	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/testutil"
)

func geoPoint(lat, lng float64) geo.LatLng {
	return geo.LatLng{Lat: lat, Lng: lng}
}

func asAdmin(t *testing.T) (*Machine, *testutil.FakeTransport) {
	t.Helper()
	m, _, r, ft := newTestMachine(t)
	r.Dispatch(stateMsg(protocol.RoomState{},
		protocol.PlayerState{ID: "me", Name: "Alice", Admin: true, InGame: true}))
	return m, ft
}

func asMember(t *testing.T) (*Machine, *testutil.FakeTransport) {
	t.Helper()
	m, _, r, ft := newTestMachine(t)
	r.Dispatch(stateMsg(protocol.RoomState{},
		protocol.PlayerState{ID: "me", Name: "Alice", InGame: true}))
	return m, ft
}

func sentSettings(t *testing.T, ft *testutil.FakeTransport) protocol.Settings {
	t.Helper()
	require.NotEmpty(t, ft.Sent)
	payload, err := protocol.ParsePayload[protocol.SettingsUpdatePayload](ft.Sent[len(ft.Sent)-1])
	require.NoError(t, err)
	return payload.Settings
}

func TestCoerceRounds(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"missing", 0, 1},
		{"negative", -3, 1},
		{"lower bound", 1, 1},
		{"normal", 5, 5},
		{"upper bound", 20, 20},
		{"above upper bound", 21, 1},
		{"far above", 1000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceRounds(tt.in))
		})
	}
}

func TestCommands_AdminOnlyGuards(t *testing.T) {
	m, ft := asMember(t)

	require.NoError(t, m.UpdateSettings(5))
	require.NoError(t, m.StartGame(5))
	require.NoError(t, m.StartRound())
	require.NoError(t, m.SendScores())
	require.NoError(t, m.FinishRound())
	require.NoError(t, m.CancelGame())

	assert.Empty(t, ft.Sent, "guard failures send nothing and return no error")
}

func TestCommands_InGameGuards(t *testing.T) {
	m, _, r, ft := newTestMachine(t)
	// Admin who sat the game out.
	r.Dispatch(stateMsg(protocol.RoomState{GameActive: true},
		protocol.PlayerState{ID: "me", Name: "Alice", Admin: true}))

	require.NoError(t, m.StartRound())
	require.NoError(t, m.SendScores())
	require.NoError(t, m.FinishRound())
	require.NoError(t, m.CancelGame())
	assert.Empty(t, ft.Sent)

	// Settings and game start do not need the in-game role.
	require.NoError(t, m.StartGame(3))
	assert.Equal(t, []protocol.MessageType{protocol.MsgGameStart}, ft.SentTypes())
}

func TestCommands_UpdateSettingsCoercesRounds(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero becomes one", 0, 1},
		{"above range becomes one", 21, 1},
		{"valid passes through", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ft := asAdmin(t)
			require.NoError(t, m.UpdateSettings(tt.in))
			assert.Equal(t, tt.want, sentSettings(t, ft).Rounds)
		})
	}
}

func TestCommands_StartGameCoercesRounds(t *testing.T) {
	m, ft := asAdmin(t)

	require.NoError(t, m.StartGame(0))
	assert.Equal(t, 1, sentSettings(t, ft).Rounds)

	require.NoError(t, m.StartGame(10))
	assert.Equal(t, 10, sentSettings(t, ft).Rounds)
}

func TestCommands_RoundControls(t *testing.T) {
	m, ft := asAdmin(t)

	require.NoError(t, m.StartRound())
	require.NoError(t, m.FinishRound())
	require.NoError(t, m.SendScores())
	require.NoError(t, m.CancelGame())

	assert.Equal(t, []protocol.MessageType{
		protocol.MsgRoundStart,
		protocol.MsgRoundFinish,
		protocol.MsgScoresSend,
		protocol.MsgGameCancel,
	}, ft.SentTypes())
}

func TestSubmitGuess_RequiresActiveGuessing(t *testing.T) {
	m, _, r, ft := newTestMachine(t)
	r.Dispatch(stateMsg(protocol.RoomState{GameActive: true},
		protocol.PlayerState{ID: "me", Name: "Alice", InGame: true}))

	require.NoError(t, m.SubmitGuess(geoPoint(10, 20)))
	assert.Empty(t, ft.Sent)
	_, ok := m.PendingGuess()
	assert.False(t, ok)
}

func TestSubmitGuess_LastSubmitWins(t *testing.T) {
	m, _, r, ft := newTestMachine(t)
	r.Dispatch(stateMsg(protocol.RoomState{GameActive: true, GuessingActive: true},
		protocol.PlayerState{ID: "me", Name: "Alice", InGame: true}))

	var placed []geo.LatLng
	m.OnGuessPlaced = func(p geo.LatLng) { placed = append(placed, p) }

	require.NoError(t, m.SubmitGuess(geoPoint(10, 20)))
	require.NoError(t, m.SubmitGuess(geoPoint(-5, 140)))

	require.Len(t, ft.Sent, 2, "every submission reaches the server")
	assert.Len(t, placed, 2)

	pending, ok := m.PendingGuess()
	require.True(t, ok)
	assert.Equal(t, geoPoint(-5, 140), pending, "the marker follows the newest submit")

	payload, err := protocol.ParsePayload[protocol.GuessSubmitPayload](ft.Sent[1])
	require.NoError(t, err)
	assert.Equal(t, geoPoint(-5, 140), payload.LatLng)
}
