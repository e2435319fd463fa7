package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/room"
	"github.com/haystack-game/haystack-client/internal/testutil"
)

func newTestMachine(t *testing.T) (*Machine, *room.Sync, *room.Room, *testutil.FakeTransport) {
	t.Helper()
	ft := testutil.NewFakeTransport()
	r := room.NewRoom("ROOM1", "me", ft)
	s := room.NewSync(r)
	m := NewMachine(s)
	return m, s, r, ft
}

func stateMsg(state protocol.RoomState, players ...protocol.PlayerState) *protocol.Message {
	return protocol.MustNewMessage(protocol.MsgStateSnapshot, protocol.StateSnapshotPayload{
		Room:    state,
		Players: players,
	})
}

func lifecycleMsg(msgType protocol.MessageType) *protocol.Message {
	return protocol.MustNewMessage(msgType, nil)
}

func TestMachine_FullRoundLifecycle(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	var visited []Phase
	var rounds []int
	var targets []string
	m.OnRoundPrepared = func(round int) {
		visited = append(visited, m.Phase())
		rounds = append(rounds, round)
	}
	m.OnRoundStarted = func(target string) {
		visited = append(visited, m.Phase())
		targets = append(targets, target)
	}
	m.OnRoundCompleted = func(Reveal) { visited = append(visited, m.Phase()) }
	m.OnScores = func([]protocol.PlayerState) { visited = append(visited, m.Phase()) }
	m.OnLobby = func() { visited = append(visited, m.Phase()) }

	assert.Equal(t, PhaseLobby, m.Phase())

	r.Dispatch(stateMsg(protocol.RoomState{CurrentRoundCounter: 1, GameActive: true}))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundPrepared))

	r.Dispatch(stateMsg(protocol.RoomState{
		CurrentRoundCounter: 1, GameActive: true, GuessingActive: true, CurrentTarget: "Lisbon",
	}))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))

	r.Dispatch(lifecycleMsg(protocol.MsgRoundCompleted))
	r.Dispatch(lifecycleMsg(protocol.MsgScoresSent))
	r.Dispatch(lifecycleMsg(protocol.MsgGameCompleted))

	assert.Equal(t, []Phase{
		PhaseRoundPrepare,
		PhaseRoundActive,
		PhaseRoundComplete,
		PhaseShowScores,
		PhaseLobby,
	}, visited)
	assert.Equal(t, []int{1}, rounds)
	assert.Equal(t, []string{"Lisbon"}, targets)
	assert.Equal(t, PhaseLobby, m.Phase())
}

func TestMachine_CancellationFallsBackToLobby(t *testing.T) {
	m, s, r, _ := newTestMachine(t)

	var notices []string
	s.OnNotice = func(_ room.NoticeLevel, text string) { notices = append(notices, text) }

	var order []string
	m.OnCancelled = func() { order = append(order, "cancelled") }
	m.OnLobby = func() { order = append(order, "lobby") }

	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))
	assert.Equal(t, PhaseRoundActive, m.Phase())

	r.Dispatch(lifecycleMsg(protocol.MsgGameCancelled))

	assert.Equal(t, []string{"cancelled", "lobby"}, order,
		"cancellation is signalled distinctly before the lobby fallback")
	assert.Contains(t, notices, "The game was cancelled")
	assert.Equal(t, PhaseLobby, m.Phase())
}

func TestMachine_RepeatedMessageReRunsEntryAction(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	started := 0
	m.OnRoundStarted = func(string) { started++ }

	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))

	assert.Equal(t, 2, started)
	assert.Equal(t, PhaseRoundActive, m.Phase())
}

func TestMachine_OutOfSequenceMessageIsAccepted(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	completed := 0
	m.OnRoundCompleted = func(Reveal) { completed++ }

	// Straight from the lobby, with no prepare or start seen.
	r.Dispatch(lifecycleMsg(protocol.MsgRoundCompleted))

	assert.Equal(t, 1, completed)
	assert.Equal(t, PhaseRoundComplete, m.Phase())
}

func TestMachine_RebindsAfterCompletion(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	prepared := 0
	m.OnRoundPrepared = func(int) { prepared++ }

	// Completion re-arms the subscription set; the next game's messages
	// must still reach the machine.
	r.Dispatch(lifecycleMsg(protocol.MsgGameCompleted))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundPrepared))

	assert.Equal(t, 1, prepared)
	assert.Equal(t, PhaseRoundPrepare, m.Phase())
}

func TestMachine_RebindsAfterCancellation(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))
	r.Dispatch(lifecycleMsg(protocol.MsgGameCancelled))

	r.Dispatch(lifecycleMsg(protocol.MsgRoundPrepared))
	assert.Equal(t, PhaseRoundPrepare, m.Phase())
}

func TestMachine_PendingGuessClearedBetweenRounds(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	r.Dispatch(stateMsg(protocol.RoomState{GuessingActive: true},
		protocol.PlayerState{ID: "me", Name: "Alice", InGame: true}))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundStarted))

	require.NoError(t, m.SubmitGuess(geoPoint(10, 20)))
	_, ok := m.PendingGuess()
	require.True(t, ok)

	r.Dispatch(lifecycleMsg(protocol.MsgRoundCompleted))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundPrepared))

	_, ok = m.PendingGuess()
	assert.False(t, ok, "markers do not carry into the next round")
}

func TestMachine_RevealBuiltFromMirror(t *testing.T) {
	m, _, r, _ := newTestMachine(t)

	var reveal Reveal
	m.OnRoundCompleted = func(rv Reveal) { reveal = rv }

	r.Dispatch(stateMsg(
		protocol.RoomState{
			CurrentTarget: "Suva",
			LastTargetLat: -18.1,
			LastTargetLng: 178.4,
		},
		protocol.PlayerState{
			ID: "me", Name: "Alice", InGame: true,
			LastGuessLat: -17.7, LastGuessLng: -179.9, LastDistance: 250, LastScore: 4800,
		},
		protocol.PlayerState{ID: "p2", Name: "Bob"}, // spectator
	))
	r.Dispatch(lifecycleMsg(protocol.MsgRoundCompleted))

	assert.Equal(t, "Suva", reveal.Target)
	require.Len(t, reveal.Guesses, 1, "spectators are excluded")
	assert.Equal(t, "Alice", reveal.Guesses[0].Player.Name)
	assert.InDelta(t, 180.1, reveal.Guesses[0].LatLng.Lng, 1e-9,
		"guess re-expressed in the world copy nearest the target")
}
