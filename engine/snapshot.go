package engine

import "encoding/json"

// PlayerSnapshot is the one-way display form of one player.
type PlayerSnapshot struct {
	Name   string            `json:"name"`
	Hand   []Card            `json:"hand"`
	Foot   []Card            `json:"foot"`
	Books  map[string][]Card `json:"books"`
	Points int               `json:"points"`
}

// GameSnapshot is the one-way display form of a game, for debugging and
// presentation. It is never decoded back into a Game.
type GameSnapshot struct {
	DiscardPile []Card           `json:"discard_pile"`
	Players     []PlayerSnapshot `json:"players"`
}

// Snapshot captures the current display state. The discard pile is listed
// bottom to top.
func (g *Game) Snapshot() GameSnapshot {
	snap := GameSnapshot{
		DiscardPile: g.DiscardPile(),
		Players:     make([]PlayerSnapshot, 0, len(g.players)),
	}
	for _, p := range g.players {
		ps := PlayerSnapshot{
			Name:   p.name,
			Hand:   p.Hand(),
			Foot:   p.Foot(),
			Books:  make(map[string][]Card, len(p.books)),
			Points: p.points,
		}
		for rank, b := range p.books {
			ps.Books[RankName(rank)] = b.Cards()
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

// MarshalPretty renders the snapshot as indented JSON. Map keys serialize
// in sorted order, so identical states produce identical bytes.
func (s GameSnapshot) MarshalPretty() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
