package room

// Role predicates, recomputed on demand from the mirror and never
// cached: the server may transfer the admin role at any time. Both
// tolerate the viewer's entry being momentarily absent (right after a
// reconnect, before the first snapshot) by returning false.

// IsAdmin reports whether the viewer's player entry holds the admin
// role.
func (s *Sync) IsAdmin() bool {
	p, ok := s.players[s.room.SessionID]
	return ok && p.Admin
}

// IsInGame reports whether the viewer opted into the current round
// sequence.
func (s *Sync) IsInGame() bool {
	p, ok := s.players[s.room.SessionID]
	return ok && p.InGame
}
