package room

import (
	"fmt"

	"github.com/haystack-game/haystack-client/internal/logger"
	"github.com/haystack-game/haystack-client/internal/protocol"
)

// Sync owns the local mirror of replicated room and player state and
// the subscriptions that keep it current. All mutation happens on the
// room's dispatch goroutine.
type Sync struct {
	room *Room

	state   protocol.RoomState
	players map[string]*protocol.PlayerState
	order   []string // session ids in server insertion order

	// readyFired survives re-arms: the ready event fires exactly once
	// per connection, never again even if state is later reset.
	readyFired bool
	wasAdmin   bool

	// Structural events. Each delivery carries a materialized snapshot
	// of the player at the moment of the event.
	OnPlayerAdded   func(protocol.PlayerState)
	OnPlayerRemoved func(protocol.PlayerState)

	// OnReady fires on the first state snapshot after connecting.
	OnReady func()

	// OnRoomChanged fires whenever the room-level record changes.
	OnRoomChanged func(protocol.RoomState)

	// OnRosterChanged signals that the member list view should be
	// rebuilt from the mirror.
	OnRosterChanged func()

	// OnNotice receives user-facing join/leave/rejoin notices.
	OnNotice NoticeFunc

	fieldSubs map[string][]func(protocol.PlayerState)
}

// NewSync creates the mirror for a room handle and installs its
// subscriptions.
func NewSync(r *Room) *Sync {
	s := &Sync{
		room:      r,
		players:   make(map[string]*protocol.PlayerState),
		fieldSubs: make(map[string][]func(protocol.PlayerState)),
	}
	s.install()
	return s
}

// Room returns the underlying room handle.
func (s *Sync) Room() *Room { return s.room }

// SessionID returns the viewer's session id.
func (s *Sync) SessionID() string { return s.room.SessionID }

// State returns a copy of the room-level mirror.
func (s *Sync) State() protocol.RoomState { return s.state }

// Players returns snapshots of all player entries in the server's
// insertion order.
func (s *Sync) Players() []protocol.PlayerState {
	out := make([]protocol.PlayerState, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.players[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Player returns a snapshot of one player entry.
func (s *Sync) Player(id string) (protocol.PlayerState, bool) {
	p, ok := s.players[id]
	if !ok {
		return protocol.PlayerState{}, false
	}
	return *p, true
}

// OnPlayerFieldChange registers a field-level change callback for one
// player. Structural add/remove events force an immediate synchronous
// evaluation of these callbacks so dependent updates land in the same
// turn as the structural change.
func (s *Sync) OnPlayerFieldChange(id string, fn func(protocol.PlayerState)) {
	s.fieldSubs[id] = append(s.fieldSubs[id], fn)
}

// OnGameMessage subscribes a handler to a named server message. Round
// lifecycle consumers register through here so a re-arm can start them
// from a clean slate.
func (s *Sync) OnGameMessage(msgType protocol.MessageType, fn func(*protocol.Message)) {
	s.room.OnMessage(msgType, fn)
}

// Send forwards a recognized command to the server. Unrecognized
// commands are dropped with a diagnostic log and no error: guarded
// callers should never produce them, and a typo must not take the
// client down.
func (s *Sync) Send(cmd protocol.MessageType, payload any) error {
	if !outboundCommands[cmd] {
		logger.LogError("dropping unrecognized outbound command %q", cmd)
		return nil
	}
	return s.room.Send(cmd, payload)
}

// Notify emits a user-facing notice.
func (s *Sync) Notify(level NoticeLevel, text string) {
	if s.OnNotice != nil {
		s.OnNotice(level, text)
	}
}

// Rearm removes every listener from the room handle and installs a
// fresh subscription set for the next game in the same room. The
// mirror and the ready flag persist.
func (s *Sync) Rearm() {
	s.room.RemoveAllListeners()
	s.install()
}

var outboundCommands = map[protocol.MessageType]bool{
	protocol.MsgSettingsUpdate: true,
	protocol.MsgGameStart:      true,
	protocol.MsgRoundStart:     true,
	protocol.MsgGuessSubmit:    true,
	protocol.MsgScoresSend:     true,
	protocol.MsgRoundFinish:    true,
	protocol.MsgGameCancel:     true,
}

func (s *Sync) install() {
	s.room.OnMessage(protocol.MsgStateSnapshot, s.handleSnapshot)
	s.room.OnMessage(protocol.MsgStateRoom, s.handleRoomPatch)
	s.room.OnMessage(protocol.MsgPlayerAdded, s.handlePlayerAdded)
	s.room.OnMessage(protocol.MsgPlayerRemoved, s.handlePlayerRemoved)
	s.room.OnMessage(protocol.MsgPlayerPatched, s.handlePlayerPatched)
	s.room.OnMessage(protocol.MsgSettingsUpdated, s.handleSettingsUpdated)
	s.room.OnMessage(protocol.MsgPlayerFinished, s.handlePlayerFinished)
	s.room.OnMessage(protocol.MsgPlayerLeft, s.handlePlayerLeft)
	s.room.OnMessage(protocol.MsgPlayerRejoined, s.handlePlayerRejoined)
}

// --- Message handlers ---

func (s *Sync) handleSnapshot(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.StateSnapshotPayload](msg)
	if err != nil {
		logger.LogError("bad state snapshot: %v", err)
		return
	}

	oldPlayers := s.players
	oldOrder := s.order

	s.state = payload.Room
	s.players = make(map[string]*protocol.PlayerState, len(payload.Players))
	s.order = make([]string, 0, len(payload.Players))
	for _, p := range payload.Players {
		cp := p
		s.players[p.ID] = &cp
		s.order = append(s.order, p.ID)
	}

	// Entries that vanished between snapshots left permanently.
	for _, id := range oldOrder {
		if _, ok := s.players[id]; !ok {
			s.emitRemoved(*oldPlayers[id])
		}
	}
	for _, p := range payload.Players {
		if _, ok := oldPlayers[p.ID]; !ok {
			s.emitAdded(p)
		}
	}

	if !s.readyFired {
		s.readyFired = true
		s.wasAdmin = s.IsAdmin()
		if s.OnReady != nil {
			s.OnReady()
		}
	}
	s.roomChanged()
	s.rosterChanged()
}

func (s *Sync) handleRoomPatch(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.StateRoomPayload](msg)
	if err != nil {
		logger.LogError("bad room patch: %v", err)
		return
	}
	s.state = payload.Room
	s.roomChanged()
}

func (s *Sync) handlePlayerAdded(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayerAddedPayload](msg)
	if err != nil {
		logger.LogError("bad player add: %v", err)
		return
	}

	p := payload.Player
	if _, ok := s.players[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	cp := p
	s.players[p.ID] = &cp

	s.emitAdded(p)
	s.rosterChanged()
}

func (s *Sync) handlePlayerRemoved(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayerRemovedPayload](msg)
	if err != nil {
		logger.LogError("bad player remove: %v", err)
		return
	}

	entry, ok := s.players[payload.Player]
	if !ok {
		return
	}
	last := *entry

	delete(s.players, payload.Player)
	for i, id := range s.order {
		if id == payload.Player {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.emitRemoved(last)
	s.checkAdminHandover()
	s.rosterChanged()
}

func (s *Sync) handlePlayerPatched(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayerPatchedPayload](msg)
	if err != nil {
		logger.LogError("bad player patch: %v", err)
		return
	}

	p := payload.Player
	if _, ok := s.players[p.ID]; !ok {
		// A patch for an unknown player implies a missed add; treat it
		// as one so the mirror converges.
		s.handlePlayerAdded(protocol.MustNewMessage(protocol.MsgPlayerAdded,
			protocol.PlayerAddedPayload{Player: p}))
		return
	}
	cp := p
	s.players[p.ID] = &cp

	s.triggerFields(p.ID, p)
	s.rosterChanged()
}

func (s *Sync) handleSettingsUpdated(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SettingsUpdatedPayload](msg)
	if err != nil {
		logger.LogError("bad settings update: %v", err)
		return
	}
	s.state.SettingRounds = payload.Settings.Rounds
	s.roomChanged()
}

func (s *Sync) handlePlayerFinished(_ *protocol.Message) {
	s.rosterChanged()
}

// handlePlayerLeft marks a transient disconnect. The entry is NOT
// removed; permanent departure arrives as state/player_removed.
func (s *Sync) handlePlayerLeft(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayerRefPayload](msg)
	if err != nil {
		logger.LogError("bad player/left: %v", err)
		return
	}

	if entry, ok := s.players[payload.Player]; ok {
		entry.DisconnectedCurrently = true
		s.triggerFields(entry.ID, *entry)
		s.Notify(NoticeWarning, fmt.Sprintf("%s has disconnected", entry.Name))
	}

	s.checkAdminHandover()
	s.rosterChanged()
}

func (s *Sync) handlePlayerRejoined(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayerRefPayload](msg)
	if err != nil {
		logger.LogError("bad player/rejoined: %v", err)
		return
	}

	if entry, ok := s.players[payload.Player]; ok {
		entry.DisconnectedCurrently = false
		entry.DisconnectedPreviously = true
		s.triggerFields(entry.ID, *entry)

		if entry.ID == s.room.SessionID {
			s.Notify(NoticeSuccess, "You have rejoined successfully")
		} else {
			s.Notify(NoticeSuccess, fmt.Sprintf("%s has rejoined", entry.Name))
		}
	}

	s.rosterChanged()
}

// --- Event emission ---

func (s *Sync) emitAdded(p protocol.PlayerState) {
	if s.OnPlayerAdded != nil {
		s.OnPlayerAdded(p)
	}
	// Force field callbacks now rather than on the next patch.
	s.triggerFields(p.ID, p)

	// Joining notices. Rejoins are announced via player/rejoined, so a
	// re-added entry with the previously-disconnected flag stays quiet.
	if p.DisconnectedPreviously {
		return
	}
	if p.ID == s.room.SessionID {
		s.Notify(NoticeSuccess, "You have joined the room")
	} else if viewer, ok := s.players[s.room.SessionID]; ok && p.TimeJoined > viewer.TimeJoined {
		s.Notify(NoticeSuccess, fmt.Sprintf("%s has joined", p.Name))
	}
}

func (s *Sync) emitRemoved(last protocol.PlayerState) {
	if s.OnPlayerRemoved != nil {
		s.OnPlayerRemoved(last)
	}
	s.triggerFields(last.ID, last)
	delete(s.fieldSubs, last.ID)

	s.Notify(NoticeWarning, fmt.Sprintf("%s has left", last.Name))
}

func (s *Sync) triggerFields(id string, snapshot protocol.PlayerState) {
	for _, fn := range s.fieldSubs[id] {
		fn(snapshot)
	}
}

func (s *Sync) roomChanged() {
	if s.OnRoomChanged != nil {
		s.OnRoomChanged(s.state)
	}
}

func (s *Sync) rosterChanged() {
	if s.OnRosterChanged != nil {
		s.OnRosterChanged()
	}
}

// checkAdminHandover re-derives the viewer's admin role after the
// collection changed, announcing a fresh promotion exactly once.
func (s *Sync) checkAdminHandover() {
	nowAdmin := s.IsAdmin()
	if nowAdmin && !s.wasAdmin {
		s.Notify(NoticeSuccess, "You are now the admin")
	}
	s.wasAdmin = nowAdmin
}
