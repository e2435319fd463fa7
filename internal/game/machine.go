// Package game drives the round lifecycle: a phase state machine
// advanced exclusively by named server messages, plus the guarded
// outbound commands a viewer may send. The server is the single
// writer of phase sequencing; the machine rejects nothing and re-runs
// entry actions idempotently when a message repeats.
package game

import (
	"github.com/haystack-game/haystack-client/internal/geo"
	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/room"
)

// Phase is where the current round is in its lifecycle.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseRoundPrepare  Phase = "round-prepare"
	PhaseRoundActive   Phase = "round-active"
	PhaseRoundComplete Phase = "round-complete"
	PhaseShowScores    Phase = "show-scores"
	// PhaseCancelled is terminal for the current game; the machine
	// falls back to the lobby immediately after signalling it.
	PhaseCancelled Phase = "cancelled"
)

// phaseFor is the transition table: inbound message name → phase
// entered. The current phase never vetoes a transition.
var phaseFor = map[protocol.MessageType]Phase{
	protocol.MsgRoundPrepared:  PhaseRoundPrepare,
	protocol.MsgRoundStarted:   PhaseRoundActive,
	protocol.MsgRoundCompleted: PhaseRoundComplete,
	protocol.MsgScoresSent:     PhaseShowScores,
	protocol.MsgGameCompleted:  PhaseLobby,
	protocol.MsgGameCancelled:  PhaseCancelled,
}

// Machine is the round-phase state machine for one room connection.
type Machine struct {
	sync  *room.Sync
	phase Phase

	// pendingGuess is the single local guess marker; a new submit
	// replaces it. The server stays authoritative on which guess, if
	// any, is scored.
	pendingGuess *geo.LatLng

	// Phase-entry callbacks, consumed by presentation. Each carries
	// the data the entry action derives from the mirror.
	OnLobby          func()
	OnRoundPrepared  func(round int)
	OnRoundStarted   func(target string)
	OnRoundCompleted func(Reveal)
	OnScores         func(rows []protocol.PlayerState)
	OnCancelled      func()

	// OnGuessPlaced fires when a local guess marker is placed or
	// replaced, so the presentation can redraw it.
	OnGuessPlaced func(geo.LatLng)
}

// NewMachine creates the machine in the lobby phase and binds it to
// the sync's message stream.
func NewMachine(s *room.Sync) *Machine {
	m := &Machine{sync: s, phase: PhaseLobby}
	m.bind()
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// PendingGuess returns the local guess marker, if one is placed.
func (m *Machine) PendingGuess() (geo.LatLng, bool) {
	if m.pendingGuess == nil {
		return geo.LatLng{}, false
	}
	return *m.pendingGuess, true
}

func (m *Machine) bind() {
	for msgType := range phaseFor {
		t := msgType
		m.sync.OnGameMessage(t, func(*protocol.Message) {
			m.advance(t)
		})
	}
}

// advance enters the phase named by the message and runs its entry
// action. Entry actions are idempotent: an out-of-sequence or repeated
// server message re-runs them rather than being rejected.
func (m *Machine) advance(msgType protocol.MessageType) {
	next, ok := phaseFor[msgType]
	if !ok {
		return
	}
	m.phase = next

	switch next {
	case PhaseRoundPrepare:
		m.enterRoundPrepare()
	case PhaseRoundActive:
		m.enterRoundActive()
	case PhaseRoundComplete:
		m.enterRoundComplete()
	case PhaseShowScores:
		m.enterShowScores()
	case PhaseLobby:
		m.enterLobby()
	case PhaseCancelled:
		m.enterCancelled()
	}
}

func (m *Machine) enterRoundPrepare() {
	m.pendingGuess = nil
	if m.OnRoundPrepared != nil {
		m.OnRoundPrepared(m.sync.State().CurrentRoundCounter)
	}
}

func (m *Machine) enterRoundActive() {
	// Stale markers from a previous round are discarded here too, in
	// case the prepare message was missed during a reconnect.
	m.pendingGuess = nil
	if m.OnRoundStarted != nil {
		m.OnRoundStarted(m.sync.State().CurrentTarget)
	}
}

func (m *Machine) enterRoundComplete() {
	if m.OnRoundCompleted != nil {
		m.OnRoundCompleted(BuildReveal(m.sync.State(), m.sync.Players()))
	}
}

func (m *Machine) enterShowScores() {
	if m.OnScores != nil {
		m.OnScores(Leaderboard(m.sync.Players()))
	}
}

// enterLobby tears the round subscriptions down and re-arms a fresh
// set for the next game in the same room.
func (m *Machine) enterLobby() {
	m.teardown()
	if m.OnLobby != nil {
		m.OnLobby()
	}
}

func (m *Machine) enterCancelled() {
	if m.OnCancelled != nil {
		m.OnCancelled()
	}
	m.sync.Notify(room.NoticeDanger, "The game was cancelled")

	// Cancellation ends the game the same way completion does.
	m.phase = PhaseLobby
	m.enterLobby()
}

func (m *Machine) teardown() {
	m.pendingGuess = nil
	m.sync.Rearm()
	m.bind()
}
