package game

import (
	"github.com/haystack-game/haystack-client/internal/geo"
	"github.com/haystack-game/haystack-client/internal/protocol"
)

// Outbound commands. Each checks its role/state guard and silently
// does nothing when the guard fails: the server would reject the
// command anyway, and an unauthorized button press is not an error.

const (
	minRounds = 1
	maxRounds = 20
)

// CoerceRounds forces the rounds setting into validity: anything
// missing or outside [1, 20] becomes 1. This is the only client-side
// input validation.
func CoerceRounds(rounds int) int {
	if rounds < minRounds || rounds > maxRounds {
		return minRounds
	}
	return rounds
}

// UpdateSettings sends a settings change. Admin only.
func (m *Machine) UpdateSettings(rounds int) error {
	if !m.sync.IsAdmin() {
		return nil
	}
	return m.sync.Send(protocol.MsgSettingsUpdate, protocol.SettingsUpdatePayload{
		Settings: protocol.Settings{Rounds: CoerceRounds(rounds)},
	})
}

// StartGame starts a game with the given settings. Admin only; the
// game is not yet active, so no in-game check applies.
func (m *Machine) StartGame(rounds int) error {
	if !m.sync.IsAdmin() {
		return nil
	}
	return m.sync.Send(protocol.MsgGameStart, protocol.SettingsUpdatePayload{
		Settings: protocol.Settings{Rounds: CoerceRounds(rounds)},
	})
}

// StartRound asks the server to start the prepared round. Admin and
// in-game.
func (m *Machine) StartRound() error {
	if !m.sync.IsAdmin() || !m.sync.IsInGame() {
		return nil
	}
	return m.sync.Send(protocol.MsgRoundStart, nil)
}

// SubmitGuess submits a guess coordinate while guessing is active. A
// new submit replaces the pending local marker; the client assumes
// last-submit-wins but the server decides what is scored.
func (m *Machine) SubmitGuess(latLng geo.LatLng) error {
	if !m.sync.State().GuessingActive {
		return nil
	}

	guess := latLng
	m.pendingGuess = &guess
	if m.OnGuessPlaced != nil {
		m.OnGuessPlaced(guess)
	}

	return m.sync.Send(protocol.MsgGuessSubmit, protocol.GuessSubmitPayload{LatLng: latLng})
}

// SendScores asks the server to publish the leaderboard. Admin and
// in-game.
func (m *Machine) SendScores() error {
	if !m.sync.IsAdmin() || !m.sync.IsInGame() {
		return nil
	}
	return m.sync.Send(protocol.MsgScoresSend, nil)
}

// FinishRound ends the active round early. Admin and in-game.
func (m *Machine) FinishRound() error {
	if !m.sync.IsAdmin() || !m.sync.IsInGame() {
		return nil
	}
	return m.sync.Send(protocol.MsgRoundFinish, nil)
}

// CancelGame aborts the running game. Admin and in-game.
func (m *Machine) CancelGame() error {
	if !m.sync.IsAdmin() || !m.sync.IsInGame() {
		return nil
	}
	return m.sync.Send(protocol.MsgGameCancel, nil)
}
