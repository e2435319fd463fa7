package game

import (
	"sort"

	"github.com/haystack-game/haystack-client/internal/geo"
	"github.com/haystack-game/haystack-client/internal/protocol"
)

// Leaderboard returns players ordered by cumulative score descending.
// The sort is stable: ties keep the server's insertion order.
func Leaderboard(players []protocol.PlayerState) []protocol.PlayerState {
	rows := make([]protocol.PlayerState, len(players))
	copy(rows, players)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	return rows
}

// PlayerGuess is one in-game player's revealed result for a round.
// LatLng is the guess re-expressed in the copy of the world nearest
// the target, so a line to the target never crosses the antimeridian
// the wrong way.
type PlayerGuess struct {
	Player   protocol.PlayerState
	LatLng   geo.LatLng
	Distance float64
	Score    int
}

// Reveal is the truth data shown when a round completes: the target
// location, every in-game player's guess, and the bounding box for
// fitting the result view.
type Reveal struct {
	Target       string
	TargetLatLng geo.LatLng
	Guesses      []PlayerGuess
	BoundsSW     geo.LatLng
	BoundsNE     geo.LatLng
}

// BuildReveal assembles the round-complete view from the mirror.
func BuildReveal(state protocol.RoomState, players []protocol.PlayerState) Reveal {
	target := geo.LatLng{Lat: state.LastTargetLat, Lng: state.LastTargetLng}
	r := Reveal{
		Target:       state.CurrentTarget,
		TargetLatLng: target,
	}

	bounds := []geo.LatLng{target}
	for _, p := range players {
		if !p.InGame {
			continue
		}
		wrapped := geo.WrapNear(target, geo.LatLng{Lat: p.LastGuessLat, Lng: p.LastGuessLng})
		r.Guesses = append(r.Guesses, PlayerGuess{
			Player:   p,
			LatLng:   wrapped,
			Distance: p.LastDistance,
			Score:    p.LastScore,
		})
		bounds = append(bounds, wrapped)
	}

	r.BoundsSW, r.BoundsNE, _ = geo.BoundsOf(bounds)
	return r
}
